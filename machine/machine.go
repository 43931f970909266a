// Package machine wires together the bus, VIC-II, CIAs, and CPU into a
// single Commodore 64. It is the Go replacement for the process-wide
// singletons the original design used to cross-reference these
// subsystems: every cross-reference here is an explicit, borrowed
// interface handed to a constructor, never a package-level variable.
package machine

import (
	"log"
	"os"

	"github.com/sixfour/c64core/cia"
	"github.com/sixfour/c64core/cpu"
	"github.com/sixfour/c64core/memory"
	"github.com/sixfour/c64core/vic"
)

// Logger is the warning sink shared by the bus, VIC, and CIAs.
type Logger interface {
	Warnf(format string, args ...any)
}

// defaultLogger routes warnings to the standard library logger, the
// only logging facility used anywhere in the example corpus.
type defaultLogger struct {
	*log.Logger
}

func (l defaultLogger) Warnf(format string, args ...any) {
	l.Printf("WARNING: "+format, args...)
}

// NewDefaultLogger creates a Logger that writes to stderr.
func NewDefaultLogger() Logger {
	return defaultLogger{log.New(os.Stderr, "", log.LstdFlags)}
}

// cpuIRQAdapter lets CIA1 (IRQ) and CIA2 (NMI) request interrupts on
// the CPU without CIA importing package cpu.
type cpuIRQAdapter struct {
	c *cpu.CPU
}

func (a cpuIRQAdapter) Irq() { a.c.Irq() }
func (a cpuIRQAdapter) Nmi() { a.c.Nmi() }

// Machine is a complete, wired-together Commodore 64: bus, VIC-II, two
// CIAs, a keyboard, and a 6510.
type Machine struct {
	Bus      *memory.Bus
	VIC      *vic.VIC
	CIA1     *cia.CIA1
	CIA2     *cia.CIA2
	Keyboard *cia.KeyboardState
	CPU      *cpu.CPU

	logger Logger
}

// New constructs a fully wired Machine. ROMs must still be loaded with
// LoadROMs before Reset.
func New() *Machine {
	logger := NewDefaultLogger()

	bus := memory.NewBus(logger)
	kb := cia.NewKeyboardState()

	c := cpu.NewCPU(bus)

	cia1 := cia.NewCIA1(kb, logger, cpuIRQAdapter{c})
	cia2 := cia.NewCIA2(logger, cpuIRQAdapter{c})

	v := vic.New(bus, cia2, logger)

	bus.AttachVIC(v)
	bus.AttachCIA1(cia1)
	bus.AttachCIA2(cia2)

	c.AttachVideoTicker(v)
	c.AttachPeripheralTicker(peripheralTickerPair{cia1, cia2})

	return &Machine{
		Bus:      bus,
		VIC:      v,
		CIA1:     cia1,
		CIA2:     cia2,
		Keyboard: kb,
		CPU:      c,
		logger:   logger,
	}
}

// peripheralTickerPair ticks both CIAs from a single cpu.PeripheralTicker
// attachment point.
type peripheralTickerPair struct {
	cia1 *cia.CIA1
	cia2 *cia.CIA2
}

func (p peripheralTickerPair) Cycle() {
	p.cia1.Cycle()
	p.cia2.Cycle()
}

// LoadROMs installs the KERNAL, BASIC, and CHAR ROM blobs.
func (m *Machine) LoadROMs(kernal, basic, char []byte) error {
	return m.Bus.LoadROMs(kernal, basic, char)
}

// LoadPRG loads a PRG image into RAM and returns its load address.
func (m *Machine) LoadPRG(data []byte) (uint16, error) {
	return m.Bus.LoadPRG(data)
}

// Reset performs a hardware reset: the CPU port latches to their
// documented power-up values and the CPU itself resets and loads PC
// from the reset vector.
func (m *Machine) Reset() {
	m.Bus.ResetCPUPort()
	m.CPU.Reset()
}

// Step executes a single CPU instruction (which in turn ticks the VIC
// and, at coarse granularity, the CIAs). It returns the CPU's
// *cpu.ExecutionError, if any, unmodified and without attempting
// recovery, per the propagation policy: only the top of the run loop
// catches it.
func (m *Machine) Step() *cpu.ExecutionError {
	return m.CPU.Step()
}

// Run executes instructions until CPU.Step reports an ExecutionError.
func (m *Machine) Run() *cpu.ExecutionError {
	for {
		if err := m.CPU.Step(); err != nil {
			return err
		}
	}
}

// FrameBuffer returns the VIC's live frame buffer, 3 bytes per pixel,
// row-major, safe for a single reader goroutine to read with
// whole-frame semantics while the CPU goroutine continues to run.
func (m *Machine) FrameBuffer() []byte {
	return m.VIC.FrameBuffer()
}
