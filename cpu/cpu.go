// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cpu implements the fetch-decode-execute loop of the MOS 6510,
// the CPU at the heart of the Commodore 64: an NMOS 6502 core with an
// on-die 8-bit I/O port. The port itself lives on the bus (see package
// memory); this package is chip-generic 6502/6510 instruction-set
// emulation only.
package cpu

import "fmt"

// VideoTicker is implemented by a video subsystem that must be advanced
// once per CPU instruction. It lets CPU drive a rasterizer without
// importing it.
type VideoTicker interface {
	Refresh(cycles uint64)
}

// PeripheralTicker is implemented by peripheral timers (the CIAs) that
// need a coarse, wall-clock-paced tick.
type PeripheralTicker interface {
	Cycle()
}

// Interrupt and reset vectors.
const (
	VectorNMI   uint16 = 0xfffa
	VectorReset uint16 = 0xfffc
	VectorIRQ   uint16 = 0xfffe
	VectorBRK   uint16 = 0xfffe
)

// CPU represents a single emulated MOS 6510. It holds no memory of its
// own; all reads and writes flow through Mem.
type CPU struct {
	Reg     Registers
	Mem     Memory
	Cycles  uint64
	InstSet *InstructionSet

	videoTicker      VideoTicker
	peripheralTicker PeripheralTicker
	lastTickMicros   int64
	nowMicros        func() int64

	pageCrossed bool
	deltaCycles int8
}

// NewCPU creates a 6510 bound to the given memory. The instruction set
// is the shared, immutable NMOS 6502 table.
func NewCPU(m Memory) *CPU {
	return &CPU{
		Mem:       m,
		InstSet:   GetInstructionSet(),
		nowMicros: defaultNowMicros,
	}
}

// AttachVideoTicker arranges for Refresh to be called, with the running
// cycle count, after every instruction the CPU executes.
func (c *CPU) AttachVideoTicker(t VideoTicker) {
	c.videoTicker = t
}

// AttachPeripheralTicker arranges for Cycle to be called at a coarse,
// roughly-microsecond wall-clock cadence as the CPU runs.
func (c *CPU) AttachPeripheralTicker(t PeripheralTicker) {
	c.peripheralTicker = t
}

// Reset performs a hardware reset: registers are restored to their
// power-up state and PC is loaded from the reset vector.
func (c *CPU) Reset() {
	c.Reg.Reset()
	c.Cycles = 0
	c.Reg.PC = c.Mem.LoadAddress(VectorReset)
}

// ExecutionError is returned by Step when the CPU cannot continue: an
// opcode has no entry in the instruction table. It carries enough state
// to print a full diagnostic (a register dump, the offending opcode,
// and a window of memory around PC) without requiring a separate
// disassembler, which is out of this package's scope.
type ExecutionError struct {
	Reg       Registers
	PC        uint16
	Opcode    byte
	MemWindow [16]byte // memory at PC-8..PC+7, wrapping at 0/0xffff
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("cpu: no instruction registered for opcode $%02X at PC=$%04X", e.Opcode, e.PC)
}

// String renders a full diagnostic: the error, a register dump, and the
// surrounding memory window.
func (e *ExecutionError) String() string {
	r := e.Reg
	return fmt.Sprintf(
		"%s\n"+
			"  A=$%02X X=$%02X Y=$%02X SP=$%02X PC=$%04X\n"+
			"  flags: N=%d V=%d -=1 B=? D=%d I=%d Z=%d C=%d\n"+
			"  mem[$%04X..]: % 02X",
		e.Error(),
		r.A, r.X, r.Y, r.SP, e.PC,
		boolToByte(r.Sign), boolToByte(r.Overflow), boolToByte(r.Decimal),
		boolToByte(r.InterruptDisable), boolToByte(r.Zero), boolToByte(r.Carry),
		e.PC-8, e.MemWindow[:],
	)
}

func (c *CPU) executionError(opcode byte) *ExecutionError {
	e := &ExecutionError{
		Reg:    c.Reg,
		PC:     c.Reg.PC,
		Opcode: opcode,
	}
	start := c.Reg.PC - 8
	for i := range e.MemWindow {
		e.MemWindow[i] = c.Mem.LoadByte(start + uint16(i))
	}
	return e
}

// Step executes a single instruction. It returns a non-nil
// *ExecutionError if the opcode at PC has no entry in the instruction
// table; callers should treat that as fatal to the run loop, per the
// propagation policy: nothing below the top of the run loop should try
// to recover from it.
func (c *CPU) Step() *ExecutionError {
	opcode := c.Mem.LoadByte(c.Reg.PC)
	inst := c.InstSet.Lookup(opcode)
	if inst.Name == "" {
		return c.executionError(opcode)
	}

	var buf [2]byte
	operand := buf[:inst.Length-1]
	if inst.Length > 1 {
		c.Mem.LoadBytes(c.Reg.PC+1, operand)
	}
	c.Reg.PC += uint16(inst.Length)

	c.pageCrossed = false
	c.deltaCycles = 0

	switch inst.Kind {
	case Implicit:
		inst.implicit(c, inst, operand)
	case Read:
		v := c.load(inst.Mode, operand)
		inst.read(c, v)
	case ReadModifyWrite:
		c.readModifyWrite(inst, operand)
	}

	c.Cycles += uint64(int8(inst.Cycles) + c.deltaCycles)
	if c.pageCrossed {
		c.Cycles += uint64(inst.BPCycles)
	}

	if c.videoTicker != nil {
		c.videoTicker.Refresh(c.Cycles)
	}
	if c.peripheralTicker != nil {
		c.tickPeripherals()
	}

	return nil
}

// tickPeripherals calls the peripheral ticker's Cycle method at most
// once per elapsed wall-clock microsecond, matching the coarse interval
// granularity the CIAs need for their timers.
func (c *CPU) tickPeripherals() {
	now := c.nowMicros()
	if now != c.lastTickMicros {
		c.lastTickMicros = now
		c.peripheralTicker.Cycle()
	}
}

// Irq requests a maskable interrupt. It has no effect if the interrupt
// disable flag is set.
func (c *CPU) Irq() {
	if !c.Reg.InterruptDisable {
		c.handleInterrupt(false, VectorIRQ)
	}
}

// Nmi requests a non-maskable interrupt.
func (c *CPU) Nmi() {
	c.handleInterrupt(false, VectorNMI)
}

func (c *CPU) handleInterrupt(brk bool, vector uint16) {
	c.pushAddress(c.Reg.PC)
	c.push(c.Reg.SavePS(brk))
	c.Reg.InterruptDisable = true
	c.Reg.PC = c.Mem.LoadAddress(vector)
}

// --- Operand resolution -----------------------------------------------

// load resolves a byte value for a Read-kind instruction under the
// given addressing mode.
func (c *CPU) load(mode Mode, operand []byte) byte {
	switch mode {
	case IMM:
		return operand[0]
	case ZPG:
		return c.Mem.LoadByte(operandToAddress(operand))
	case ZPX:
		addr := offsetZeroPage(operandToAddress(operand), c.Reg.X)
		return c.Mem.LoadByte(addr)
	case ZPY:
		addr := offsetZeroPage(operandToAddress(operand), c.Reg.Y)
		return c.Mem.LoadByte(addr)
	case ABS:
		return c.Mem.LoadByte(operandToAddress(operand))
	case ABX:
		addr, crossed := offsetAddress(operandToAddress(operand), c.Reg.X)
		c.pageCrossed = crossed
		return c.Mem.LoadByte(addr)
	case ABY:
		addr, crossed := offsetAddress(operandToAddress(operand), c.Reg.Y)
		c.pageCrossed = crossed
		return c.Mem.LoadByte(addr)
	case IDX:
		zp := offsetZeroPage(operandToAddress(operand), c.Reg.X)
		addr := c.Mem.LoadAddress(zp)
		return c.Mem.LoadByte(addr)
	case IDY:
		base := c.Mem.LoadAddress(operandToAddress(operand))
		addr, crossed := offsetAddress(base, c.Reg.Y)
		c.pageCrossed = crossed
		return c.Mem.LoadByte(addr)
	case ACC:
		return c.Reg.A
	default:
		panic("cpu: invalid addressing mode for read")
	}
}

// resolveAddress resolves a memory address for a store or an RMW's
// memory variant. ACC and IMM are not valid here; callers handle ACC
// separately, and no instruction stores to an immediate operand.
func (c *CPU) resolveAddress(mode Mode, operand []byte) uint16 {
	switch mode {
	case ZPG:
		return operandToAddress(operand)
	case ZPX:
		return offsetZeroPage(operandToAddress(operand), c.Reg.X)
	case ZPY:
		return offsetZeroPage(operandToAddress(operand), c.Reg.Y)
	case ABS:
		return operandToAddress(operand)
	case ABX:
		addr, crossed := offsetAddress(operandToAddress(operand), c.Reg.X)
		c.pageCrossed = crossed
		return addr
	case ABY:
		addr, crossed := offsetAddress(operandToAddress(operand), c.Reg.Y)
		c.pageCrossed = crossed
		return addr
	case IDX:
		zp := offsetZeroPage(operandToAddress(operand), c.Reg.X)
		return c.Mem.LoadAddress(zp)
	case IDY:
		base := c.Mem.LoadAddress(operandToAddress(operand))
		addr, crossed := offsetAddress(base, c.Reg.Y)
		c.pageCrossed = crossed
		return addr
	default:
		panic("cpu: invalid addressing mode for address resolution")
	}
}

// readModifyWrite implements run-loop step 4 of the spec: resolve the
// operand, fetch the byte, invoke the handler, then store the returned
// byte back to the same location (the accumulator for ACC mode, memory
// otherwise).
func (c *CPU) readModifyWrite(inst *Instruction, operand []byte) {
	if inst.Mode == ACC {
		c.Reg.A = inst.rmw(c, c.Reg.A)
		return
	}
	addr := c.resolveAddress(inst.Mode, operand)
	v := c.Mem.LoadByte(addr)
	c.Mem.StoreByte(addr, inst.rmw(c, v))
}

// branch applies a taken branch's relative offset and accounts for its
// extra cycle (+1 taken, +1 more if the branch crosses a page).
func (c *CPU) branch(operand []byte) {
	offset := operand[0]
	oldPC := c.Reg.PC
	if offset < 0x80 {
		c.Reg.PC += uint16(offset)
	} else {
		c.Reg.PC -= uint16(0x100 - uint16(offset))
	}
	c.deltaCycles++
	if (c.Reg.PC^oldPC)&0xff00 != 0 {
		c.deltaCycles++
	}
}

func (c *CPU) push(v byte) {
	c.Mem.StoreByte(stackAddress(c.Reg.SP), v)
	c.Reg.SP--
}

func (c *CPU) pushAddress(addr uint16) {
	c.push(byte(addr >> 8))
	c.push(byte(addr))
}

func (c *CPU) pop() byte {
	c.Reg.SP++
	return c.Mem.LoadByte(stackAddress(c.Reg.SP))
}

func (c *CPU) popAddress() uint16 {
	lo := c.pop()
	hi := c.pop()
	return uint16(lo) | uint16(hi)<<8
}
