// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

// This file implements every opcode handler referenced by
// instructionTable in instructions.go. Decimal-mode ADC/SBC are
// re-derived to match the same chip-accurate BCD behavior as the
// teacher's reference emulation; the JMP-indirect page-wrap bug reuses
// LoadAddress's own wrap, ported nearly verbatim. Both are
// chip-accurate behaviors with nothing C64-specific to adapt.

// --- Load / store -------------------------------------------------------

func (c *CPU) lda(v byte) {
	c.Reg.A = v
	c.Reg.setNZFromValue(v)
}

func (c *CPU) ldx(v byte) {
	c.Reg.X = v
	c.Reg.setNZFromValue(v)
}

func (c *CPU) ldy(v byte) {
	c.Reg.Y = v
	c.Reg.setNZFromValue(v)
}

func (c *CPU) sta(inst *Instruction, operand []byte) {
	c.Mem.StoreByte(c.resolveAddress(inst.Mode, operand), c.Reg.A)
}

func (c *CPU) stx(inst *Instruction, operand []byte) {
	c.Mem.StoreByte(c.resolveAddress(inst.Mode, operand), c.Reg.X)
}

func (c *CPU) sty(inst *Instruction, operand []byte) {
	c.Mem.StoreByte(c.resolveAddress(inst.Mode, operand), c.Reg.Y)
}

// --- Register transfers --------------------------------------------------

func (c *CPU) tax(inst *Instruction, operand []byte) {
	c.Reg.X = c.Reg.A
	c.Reg.setNZFromValue(c.Reg.X)
}

func (c *CPU) tay(inst *Instruction, operand []byte) {
	c.Reg.Y = c.Reg.A
	c.Reg.setNZFromValue(c.Reg.Y)
}

func (c *CPU) txa(inst *Instruction, operand []byte) {
	c.Reg.A = c.Reg.X
	c.Reg.setNZFromValue(c.Reg.A)
}

func (c *CPU) tya(inst *Instruction, operand []byte) {
	c.Reg.A = c.Reg.Y
	c.Reg.setNZFromValue(c.Reg.A)
}

func (c *CPU) tsx(inst *Instruction, operand []byte) {
	c.Reg.X = c.Reg.SP
	c.Reg.setNZFromValue(c.Reg.X)
}

func (c *CPU) txs(inst *Instruction, operand []byte) {
	c.Reg.SP = c.Reg.X
}

// --- Arithmetic and logic -------------------------------------------------

func (c *CPU) adc(v byte) {
	if c.Reg.Decimal {
		c.adcDecimal(v)
		return
	}
	sum := uint16(c.Reg.A) + uint16(v)
	if c.Reg.Carry {
		sum++
	}
	result := byte(sum)
	c.Reg.Overflow = (c.Reg.A^v)&0x80 == 0 && (c.Reg.A^result)&0x80 != 0
	c.Reg.Carry = sum > 0xff
	c.Reg.A = result
	c.Reg.setNZFromValue(c.Reg.A)
}

func (c *CPU) adcDecimal(v byte) {
	carry := byte(0)
	if c.Reg.Carry {
		carry = 1
	}

	lo := (c.Reg.A & 0x0f) + (v & 0x0f) + carry
	hi := (c.Reg.A >> 4) + (v >> 4)

	if lo > 9 {
		lo += 6
		hi++
	}

	c.Reg.Overflow = (c.Reg.A^v)&0x80 == 0 && (c.Reg.A^(hi<<4))&0x80 != 0

	if hi > 9 {
		hi += 6
	}
	c.Reg.Carry = hi > 15

	c.Reg.A = (hi << 4) | (lo & 0x0f)
	c.Reg.setNZFromValue(c.Reg.A)
}

func (c *CPU) sbc(v byte) {
	if c.Reg.Decimal {
		c.sbcDecimal(v)
		return
	}
	borrow := uint16(0)
	if !c.Reg.Carry {
		borrow = 1
	}
	diff := uint16(c.Reg.A) - uint16(v) - borrow
	result := byte(diff)
	c.Reg.Overflow = (c.Reg.A^v)&0x80 != 0 && (c.Reg.A^result)&0x80 != 0
	c.Reg.Carry = diff < 0x100
	c.Reg.A = result
	c.Reg.setNZFromValue(c.Reg.A)
}

func (c *CPU) sbcDecimal(v byte) {
	borrow := byte(0)
	if !c.Reg.Carry {
		borrow = 1
	}

	lo := int8(c.Reg.A&0x0f) - int8(v&0x0f) - int8(borrow)
	hi := int8(c.Reg.A>>4) - int8(v>>4)

	if lo < 0 {
		lo -= 6
		hi--
	}
	if hi < 0 {
		hi -= 6
	}

	binary := uint16(c.Reg.A) - uint16(v) - uint16(borrow)
	c.Reg.Overflow = (c.Reg.A^v)&0x80 != 0 && (c.Reg.A^byte(binary))&0x80 != 0
	c.Reg.Carry = binary < 0x100

	c.Reg.A = (byte(hi) << 4) | (byte(lo) & 0x0f)
	c.Reg.setNZFromValue(c.Reg.A)
}

func (c *CPU) and(v byte) {
	c.Reg.A &= v
	c.Reg.setNZFromValue(c.Reg.A)
}

func (c *CPU) ora(v byte) {
	c.Reg.A |= v
	c.Reg.setNZFromValue(c.Reg.A)
}

func (c *CPU) eor(v byte) {
	c.Reg.A ^= v
	c.Reg.setNZFromValue(c.Reg.A)
}

func (c *CPU) bit(v byte) {
	c.Reg.Zero = (c.Reg.A & v) == 0
	c.Reg.Overflow = (v & 0x40) != 0
	c.Reg.Sign = (v & 0x80) != 0
}

func (c *CPU) compare(reg, v byte) {
	diff := uint16(reg) - uint16(v)
	c.Reg.Carry = reg >= v
	c.Reg.setNZFromValue(byte(diff))
}

func (c *CPU) cmp(v byte) { c.compare(c.Reg.A, v) }
func (c *CPU) cpx(v byte) { c.compare(c.Reg.X, v) }
func (c *CPU) cpy(v byte) { c.compare(c.Reg.Y, v) }

// --- Increments / decrements ----------------------------------------------

func (c *CPU) inc(v byte) byte {
	v++
	c.Reg.setNZFromValue(v)
	return v
}

func (c *CPU) dec(v byte) byte {
	v--
	c.Reg.setNZFromValue(v)
	return v
}

func (c *CPU) inx(inst *Instruction, operand []byte) {
	c.Reg.X++
	c.Reg.setNZFromValue(c.Reg.X)
}

func (c *CPU) iny(inst *Instruction, operand []byte) {
	c.Reg.Y++
	c.Reg.setNZFromValue(c.Reg.Y)
}

func (c *CPU) dex(inst *Instruction, operand []byte) {
	c.Reg.X--
	c.Reg.setNZFromValue(c.Reg.X)
}

func (c *CPU) dey(inst *Instruction, operand []byte) {
	c.Reg.Y--
	c.Reg.setNZFromValue(c.Reg.Y)
}

// --- Shifts and rotates -----------------------------------------------------

func (c *CPU) asl(v byte) byte {
	c.Reg.Carry = (v & 0x80) != 0
	v <<= 1
	c.Reg.setNZFromValue(v)
	return v
}

func (c *CPU) lsr(v byte) byte {
	c.Reg.Carry = (v & 0x01) != 0
	v >>= 1
	c.Reg.setNZFromValue(v)
	return v
}

func (c *CPU) rol(v byte) byte {
	carryIn := byte(0)
	if c.Reg.Carry {
		carryIn = 1
	}
	c.Reg.Carry = (v & 0x80) != 0
	v = (v << 1) | carryIn
	c.Reg.setNZFromValue(v)
	return v
}

func (c *CPU) ror(v byte) byte {
	carryIn := byte(0)
	if c.Reg.Carry {
		carryIn = 0x80
	}
	c.Reg.Carry = (v & 0x01) != 0
	v = (v >> 1) | carryIn
	c.Reg.setNZFromValue(v)
	return v
}

// --- Branches ----------------------------------------------------------

func (c *CPU) bcc(inst *Instruction, operand []byte) {
	if !c.Reg.Carry {
		c.branch(operand)
	}
}

func (c *CPU) bcs(inst *Instruction, operand []byte) {
	if c.Reg.Carry {
		c.branch(operand)
	}
}

func (c *CPU) beq(inst *Instruction, operand []byte) {
	if c.Reg.Zero {
		c.branch(operand)
	}
}

func (c *CPU) bne(inst *Instruction, operand []byte) {
	if !c.Reg.Zero {
		c.branch(operand)
	}
}

func (c *CPU) bmi(inst *Instruction, operand []byte) {
	if c.Reg.Sign {
		c.branch(operand)
	}
}

func (c *CPU) bpl(inst *Instruction, operand []byte) {
	if !c.Reg.Sign {
		c.branch(operand)
	}
}

func (c *CPU) bvc(inst *Instruction, operand []byte) {
	if !c.Reg.Overflow {
		c.branch(operand)
	}
}

func (c *CPU) bvs(inst *Instruction, operand []byte) {
	if c.Reg.Overflow {
		c.branch(operand)
	}
}

// --- Jumps and calls ------------------------------------------------------

func (c *CPU) jmp(inst *Instruction, operand []byte) {
	c.Reg.PC = operandToAddress(operand)
}

// jmpIndirect reproduces the NMOS 6502's indirect-JMP page-wrap bug: if
// the low byte of the pointer is 0xff, the high byte of the target is
// fetched from the start of the same page rather than the next page.
func (c *CPU) jmpIndirect(inst *Instruction, operand []byte) {
	ptr := operandToAddress(operand)
	c.Reg.PC = c.Mem.LoadAddress(ptr)
}

func (c *CPU) jsr(inst *Instruction, operand []byte) {
	c.pushAddress(c.Reg.PC - 1)
	c.Reg.PC = operandToAddress(operand)
}

func (c *CPU) rts(inst *Instruction, operand []byte) {
	c.Reg.PC = c.popAddress() + 1
}

// --- Stack ---------------------------------------------------------------

func (c *CPU) pha(inst *Instruction, operand []byte) {
	c.push(c.Reg.A)
}

func (c *CPU) pla(inst *Instruction, operand []byte) {
	c.Reg.A = c.pop()
	c.Reg.setNZFromValue(c.Reg.A)
}

func (c *CPU) php(inst *Instruction, operand []byte) {
	c.push(c.Reg.SavePS(true))
}

func (c *CPU) plp(inst *Instruction, operand []byte) {
	c.Reg.RestorePS(c.pop())
}

// --- Status flags ----------------------------------------------------------

func (c *CPU) clc(inst *Instruction, operand []byte) { c.Reg.Carry = false }
func (c *CPU) sec(inst *Instruction, operand []byte) { c.Reg.Carry = true }
func (c *CPU) cli(inst *Instruction, operand []byte) { c.Reg.InterruptDisable = false }
func (c *CPU) sei(inst *Instruction, operand []byte) { c.Reg.InterruptDisable = true }
func (c *CPU) cld(inst *Instruction, operand []byte) { c.Reg.Decimal = false }
func (c *CPU) sed(inst *Instruction, operand []byte) { c.Reg.Decimal = true }
func (c *CPU) clv(inst *Instruction, operand []byte) { c.Reg.Overflow = false }

// --- System ----------------------------------------------------------------

func (c *CPU) nop(inst *Instruction, operand []byte) {}

// brk forces a software interrupt. PC was already advanced past the BRK
// opcode byte itself by Step; the 6502 additionally skips a padding
// byte, so the pushed return address is PC+1.
func (c *CPU) brk(inst *Instruction, operand []byte) {
	c.pushAddress(c.Reg.PC + 1)
	c.push(c.Reg.SavePS(true))
	c.Reg.InterruptDisable = true
	c.Reg.PC = c.Mem.LoadAddress(VectorBRK)
}

func (c *CPU) rti(inst *Instruction, operand []byte) {
	c.Reg.RestorePS(c.pop())
	c.Reg.PC = c.popAddress()
}
