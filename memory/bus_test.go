package memory_test

import (
	"testing"

	"github.com/sixfour/c64core/memory"
)

func newTestBus(t *testing.T) *memory.Bus {
	t.Helper()
	b := memory.NewBus(nil)
	kernal := make([]byte, memory.KernalROMSize)
	basic := make([]byte, memory.BasicROMSize)
	char := make([]byte, memory.CharROMSize)
	for i := range kernal {
		kernal[i] = 0xee
	}
	if err := b.LoadROMs(kernal, basic, char); err != nil {
		t.Fatalf("LoadROMs: %v", err)
	}
	b.ResetCPUPort()
	return b
}

func TestResetVectorDefaultBanking(t *testing.T) {
	b := newTestBus(t)

	if got := b.LoadByte(0x0000); got != 0x27 {
		t.Errorf("$0000 DDR incorrect. exp: $27, got: $%02X", got)
	}
	if got := b.LoadByte(0x0001); got != 0x37 {
		t.Errorf("$0001 data incorrect. exp: $37, got: $%02X", got)
	}
	if got := b.LoadByte(0xe000); got != 0xee {
		t.Errorf("$E000 should read KERNAL ROM by default, got $%02X", got)
	}
}

func TestBankSwitchKernalVsRAM(t *testing.T) {
	b := newTestBus(t)

	b.StoreByte(0x0001, 0x30)
	if got := b.LoadByte(0xe000); got != 0x00 {
		t.Errorf("with HIRAM clear, $E000 should read RAM (0x00), got $%02X", got)
	}

	b.StoreByte(0x0001, 0x37)
	if got := b.LoadByte(0xe000); got != 0xee {
		t.Errorf("with HIRAM set, $E000 should read KERNAL ROM (0xEE), got $%02X", got)
	}
}

func TestColorRAMLowNibble(t *testing.T) {
	b := newTestBus(t)
	b.StoreByte(0xd800, 0xff)
	if got := b.LoadByte(0xd800); got != 0x0f {
		t.Errorf("color RAM should mask to low nibble. exp: $0F, got: $%02X", got)
	}
}

func TestPRGLoad(t *testing.T) {
	b := newTestBus(t)
	prg := []byte{0x00, 0x10, 0xa9, 0x42}
	addr, err := b.LoadPRG(prg)
	if err != nil {
		t.Fatalf("LoadPRG: %v", err)
	}
	if addr != 0x1000 {
		t.Errorf("load address incorrect. exp: $1000, got: $%04X", addr)
	}
	if got := b.LoadByte(0x1000); got != 0xa9 {
		t.Errorf("PRG payload not written. exp: $A9, got: $%02X", got)
	}
	if got := b.LoadByte(0x1001); got != 0x42 {
		t.Errorf("PRG payload not written. exp: $42, got: $%02X", got)
	}
}

func TestLoadROMsRejectsWrongSize(t *testing.T) {
	b := memory.NewBus(nil)
	err := b.LoadROMs(make([]byte, 10), make([]byte, memory.BasicROMSize), make([]byte, memory.CharROMSize))
	if err == nil {
		t.Fatal("expected a ConfigError for a wrong-sized KERNAL blob")
	}
}

func TestFetchVideoByteBypassesBankSwitch(t *testing.T) {
	b := newTestBus(t)
	b.StoreByte(0x0001, 0x37) // KERNAL visible at $E000
	b.StoreBytes(0xe000, []byte{0x11})
	if got := b.FetchVideoByte(0xe000); got != 0x11 {
		t.Errorf("FetchVideoByte should see raw RAM regardless of bank switching, got $%02X", got)
	}
}
