package cpu_test

import (
	"testing"

	"github.com/sixfour/c64core/cpu"
)

func loadCPU(code []byte, origin uint16) *cpu.CPU {
	mem := cpu.NewFlatMemory()
	mem.StoreBytes(origin, code)
	mem.StoreByte(cpu.VectorReset, byte(origin))
	mem.StoreByte(cpu.VectorReset+1, byte(origin>>8))

	c := cpu.NewCPU(mem)
	c.Reset()
	return c
}

func stepCPU(t *testing.T, c *cpu.CPU, steps int) {
	t.Helper()
	for i := 0; i < steps; i++ {
		if err := c.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
}

func expectPC(t *testing.T, c *cpu.CPU, pc uint16) {
	t.Helper()
	if c.Reg.PC != pc {
		t.Errorf("PC incorrect. exp: $%04X, got: $%04X", pc, c.Reg.PC)
	}
}

func expectCycles(t *testing.T, c *cpu.CPU, cycles uint64) {
	t.Helper()
	if c.Cycles != cycles {
		t.Errorf("Cycles incorrect. exp: %d, got: %d", cycles, c.Cycles)
	}
}

func expectACC(t *testing.T, c *cpu.CPU, acc byte) {
	t.Helper()
	if c.Reg.A != acc {
		t.Errorf("Accumulator incorrect. exp: $%02X, got: $%02X", acc, c.Reg.A)
	}
}

func expectSP(t *testing.T, c *cpu.CPU, sp byte) {
	t.Helper()
	if c.Reg.SP != sp {
		t.Errorf("stack pointer incorrect. exp: $%02X, got: $%02X", sp, c.Reg.SP)
	}
}

func expectMem(t *testing.T, c *cpu.CPU, addr uint16, v byte) {
	t.Helper()
	got := c.Mem.LoadByte(addr)
	if got != v {
		t.Errorf("Memory at $%04X incorrect. exp: $%02X, got: $%02X", addr, v, got)
	}
}

func TestAccumulator(t *testing.T) {
	code := []byte{
		0xa9, 0x5e, // LDA #$5E
		0x85, 0x15, // STA $15
		0x8d, 0x00, 0x15, // STA $1500
	}
	c := loadCPU(code, 0x1000)
	stepCPU(t, c, 3)

	expectPC(t, c, 0x1007)
	expectCycles(t, c, 9)
	expectACC(t, c, 0x5e)
	expectMem(t, c, 0x15, 0x5e)
	expectMem(t, c, 0x1500, 0x5e)
}

func TestStack(t *testing.T) {
	code := []byte{
		0xa9, 0x11, 0x48, // LDA #$11 : PHA
		0xa9, 0x12, 0x48, // LDA #$12 : PHA
		0xa9, 0x13, 0x48, // LDA #$13 : PHA
		0x68, 0x8d, 0x00, 0x20, // PLA : STA $2000
		0x68, 0x8d, 0x01, 0x20, // PLA : STA $2001
		0x68, 0x8d, 0x02, 0x20, // PLA : STA $2002
	}
	c := loadCPU(code, 0x1000)
	stepCPU(t, c, 6)

	expectSP(t, c, 0xfa)
	expectACC(t, c, 0x13)
	expectMem(t, c, 0x1fd, 0x11)
	expectMem(t, c, 0x1fc, 0x12)
	expectMem(t, c, 0x1fb, 0x13)

	stepCPU(t, c, 6)
	expectACC(t, c, 0x11)
	expectSP(t, c, 0xfd)
	expectMem(t, c, 0x2000, 0x13)
	expectMem(t, c, 0x2001, 0x12)
	expectMem(t, c, 0x2002, 0x11)
}

func TestIndirect(t *testing.T) {
	code := []byte{
		0xa2, 0x80, // LDX #$80
		0xa0, 0x40, // LDY #$40
		0xa9, 0xee, // LDA #$EE
		0x9d, 0x00, 0x20, // STA $2000,X
		0x99, 0x00, 0x20, // STA $2000,Y
		0xa9, 0x11, // LDA #$11
		0x85, 0x06, // STA $06
		0xa9, 0x05, // LDA #$05
		0x85, 0x07, // STA $07
		0xa2, 0x01, // LDX #$01
		0xa0, 0x01, // LDY #$01
		0xa9, 0xbb, // LDA #$BB
		0x81, 0x05, // STA ($05,X)
		0x91, 0x06, // STA ($06),Y
	}
	c := loadCPU(code, 0x1000)
	stepCPU(t, c, 14)

	expectMem(t, c, 0x2080, 0xee)
	expectMem(t, c, 0x2040, 0xee)
	expectMem(t, c, 0x0511, 0xbb)
	expectMem(t, c, 0x0512, 0xbb)
}

func TestPageCross(t *testing.T) {
	code := []byte{
		0xa9, 0x55, // LDA #$55 (2)
		0x8d, 0x01, 0x11, // STA $1101 (4)
		0xa9, 0x00, // LDA #$00 (2)
		0xa2, 0xff, // LDX #$FF (2)
		0xbd, 0x02, 0x10, // LDA $1002,X (5, page crossed)
	}
	c := loadCPU(code, 0x1000)
	stepCPU(t, c, 5)

	expectPC(t, c, 0x100c)
	expectCycles(t, c, 15)
	expectACC(t, c, 0x55)
	expectMem(t, c, 0x1101, 0x55)
}

func TestUndefinedOpcode(t *testing.T) {
	code := []byte{0x02} // never assigned on the NMOS 6502
	c := loadCPU(code, 0x1000)

	err := c.Step()
	if err == nil {
		t.Fatal("expected an execution error for an undefined opcode")
	}
	if err.Opcode != 0x02 {
		t.Errorf("opcode incorrect. exp: $02, got: $%02X", err.Opcode)
	}
	if err.PC != 0x1000 {
		t.Errorf("PC incorrect. exp: $1000, got: $%04X", err.PC)
	}
}

func TestBrkPushesReturnAddressPlusTwo(t *testing.T) {
	code := []byte{0x00, 0xff} // BRK, padding byte
	c := loadCPU(code, 0x1000)
	c.Mem.StoreByte(cpu.VectorBRK, 0x00)
	c.Mem.StoreByte(cpu.VectorBRK+1, 0x20)

	stepCPU(t, c, 1)

	expectPC(t, c, 0x2000)
	if !c.Reg.InterruptDisable {
		t.Error("expected interrupt-disable flag set after BRK")
	}
	lo := c.Mem.LoadByte(0x1fc)
	hi := c.Mem.LoadByte(0x1fd)
	addr := uint16(lo) | uint16(hi)<<8
	if addr != 0x1002 {
		t.Errorf("pushed return address incorrect. exp: $1002, got: $%04X", addr)
	}
}

func TestDecimalAdc(t *testing.T) {
	code := []byte{
		0xf8,       // SED
		0x38,       // SEC (carry=1, cleared again by the CLC below: we want carry=0)
		0x18,       // CLC
		0xa9, 0x58, // LDA #$58 (BCD 58)
		0x69, 0x46, // ADC #$46 (BCD 46) -> BCD 104, carry set
	}
	c := loadCPU(code, 0x1000)
	stepCPU(t, c, 5)

	expectACC(t, c, 0x04)
	if !c.Reg.Carry {
		t.Error("expected carry set from decimal ADC producing a BCD value >= 100")
	}
}

func TestJmpIndirectPageWrapBug(t *testing.T) {
	code := []byte{0x6c, 0xff, 0x20} // JMP ($20FF)
	c := loadCPU(code, 0x1000)
	c.Mem.StoreByte(0x20ff, 0x00)
	c.Mem.StoreByte(0x2000, 0x80) // high byte incorrectly fetched from $2000, not $2100

	stepCPU(t, c, 1)

	expectPC(t, c, 0x8000)
}
