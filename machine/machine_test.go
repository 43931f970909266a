package machine_test

import (
	"testing"

	"github.com/sixfour/c64core/machine"
)

// newTestMachine builds a machine whose KERNAL ROM's reset/IRQ/BRK
// vectors point at $1000/$2000 in RAM, since the vectors live at
// $FFFC-$FFFF which read from KERNAL ROM once Reset has set HIRAM.
func newTestMachine(t *testing.T) *machine.Machine {
	t.Helper()
	m := machine.New()
	kernal := make([]byte, 8192)
	kernal[0x1ffc] = 0x00 // $FFFC
	kernal[0x1ffd] = 0x10 // $FFFD -> reset vector $1000
	kernal[0x1ffe] = 0x00 // $FFFE
	kernal[0x1fff] = 0x20 // $FFFF -> IRQ/BRK vector $2000
	basic := make([]byte, 8192)
	char := make([]byte, 4096)
	if err := m.LoadROMs(kernal, basic, char); err != nil {
		t.Fatalf("LoadROMs: %v", err)
	}
	return m
}

func TestResetVector(t *testing.T) {
	m := newTestMachine(t)

	m.Reset()

	if m.CPU.Reg.PC != 0x1000 {
		t.Errorf("PC after reset incorrect. exp: $1000, got: $%04X", m.CPU.Reg.PC)
	}
	if got := m.Bus.LoadByte(0x0000); got != 0x27 {
		t.Errorf("$0000 after reset incorrect. exp: $27, got: $%02X", got)
	}
	if got := m.Bus.LoadByte(0x0001); got != 0x37 {
		t.Errorf("$0001 after reset incorrect. exp: $37, got: $%02X", got)
	}
}

func TestLdaStaBrkScenario(t *testing.T) {
	m := newTestMachine(t)
	m.Reset()

	code := []byte{0xa9, 0x42, 0x8d, 0x00, 0x02, 0x00}
	m.Bus.StoreBytes(0x1000, code)

	for i := 0; i < 3; i++ {
		if err := m.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	if got := m.Bus.LoadByte(0x0200); got != 0x42 {
		t.Errorf("memory[$0200] incorrect. exp: $42, got: $%02X", got)
	}
	if m.CPU.Reg.A != 0x42 {
		t.Errorf("A incorrect. exp: $42, got: $%02X", m.CPU.Reg.A)
	}
	if m.CPU.Reg.Zero {
		t.Error("Z should be clear")
	}
	if m.CPU.Reg.Sign {
		t.Error("N should be clear")
	}
	if m.CPU.Cycles != 2+4+7 {
		t.Errorf("cycles incorrect. exp: 13, got: %d", m.CPU.Cycles)
	}
}

func TestBankSwitchScenario(t *testing.T) {
	m := newTestMachine(t)
	m.Reset()

	m.Bus.StoreByte(0xe000, 0x99) // always lands in the RAM shadow
	m.Bus.StoreByte(0x0001, 0x30)
	if got := m.Bus.LoadByte(0xe000); got != 0x99 {
		t.Errorf("with HIRAM clear, $E000 should read RAM, got $%02X", got)
	}

	m.Bus.StoreByte(0x0001, 0x37)
	if got := m.Bus.LoadByte(0xe000); got != 0x00 {
		t.Errorf("with HIRAM set, $E000 should read KERNAL ROM (0x00 in this fixture), got $%02X", got)
	}
}

func TestFrameBufferIsLiveSlice(t *testing.T) {
	m := newTestMachine(t)
	fb1 := m.FrameBuffer()
	fb2 := m.FrameBuffer()
	if &fb1[0] != &fb2[0] {
		t.Error("FrameBuffer should return the same backing array on each call")
	}
}
