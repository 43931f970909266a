// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

import "fmt"

// Mode describes a memory addressing mode.
type Mode byte

// All addressing modes supported by the MOS 6510.
const (
	IMP Mode = iota // Implicit (no operand)
	ACC             // Accumulator (no operand)
	IMM             // Immediate
	ZPG             // Zero Page
	ZPX             // Zero Page,X
	ZPY             // Zero Page,Y
	ABS             // Absolute
	ABX             // Absolute,X
	ABY             // Absolute,Y
	IND             // (Indirect) -- JMP only
	IDX             // (Indirect,X)
	IDY             // (Indirect),Y
	REL             // Relative -- branches only
)

// Kind classifies how an instruction consumes its resolved operand. This
// is the tagged-variant replacement for a per-opcode handler type
// hierarchy: every opcode is exactly one of these three shapes, and
// CPU.Step dispatches on Kind with a bounded switch instead of a virtual
// call.
type Kind byte

const (
	// Implicit instructions take no resolved byte value. They either
	// have no operand at all (CLC, TAX, PHA, ...), or they resolve and
	// consume their own operand address directly (STA/STX/STY, JMP,
	// JSR, and the conditional branches).
	Implicit Kind = iota

	// Read instructions consume one resolved byte value and produce no
	// new value to store (LDA, ADC, CMP, BIT, ...).
	Read

	// ReadModifyWrite instructions consume one resolved byte value and
	// produce a replacement value that the run loop stores back to the
	// same location (ASL, INC, ROR, ...).
	ReadModifyWrite
)

type implicitFunc func(c *CPU, inst *Instruction, operand []byte)
type readFunc func(c *CPU, v byte)
type rmwFunc func(c *CPU, v byte) byte

// Instruction describes one (opcode, addressing-mode) pair: its name,
// its cycle cost, and its implementation.
type Instruction struct {
	Name     string // all-caps mnemonic
	Mode     Mode
	Opcode   byte
	Length   byte // total instruction length in bytes, including opcode
	Cycles   byte // base CPU cycle cost
	BPCycles byte // extra cycles if a page boundary is crossed
	Kind     Kind

	implicit implicitFunc
	read     readFunc
	rmw      rmwFunc
}

// opcodeEntry is the data used to build one Instruction.
type opcodeEntry struct {
	name     string
	mode     Mode
	opcode   byte
	length   byte
	cycles   byte
	bpcycles byte
	kind     Kind
	implicit implicitFunc
	read     readFunc
	rmw      rmwFunc
}

// instructionTable lists every documented NMOS 6502/6510 opcode. Unlisted
// opcodes remain the zero Instruction (Name == "") and are treated as
// undefined by CPU.Step.
var instructionTable = []opcodeEntry{
	// Load / store
	{"LDA", IMM, 0xa9, 2, 2, 0, Read, nil, (*CPU).lda, nil},
	{"LDA", ZPG, 0xa5, 2, 3, 0, Read, nil, (*CPU).lda, nil},
	{"LDA", ZPX, 0xb5, 2, 4, 0, Read, nil, (*CPU).lda, nil},
	{"LDA", ABS, 0xad, 3, 4, 0, Read, nil, (*CPU).lda, nil},
	{"LDA", ABX, 0xbd, 3, 4, 1, Read, nil, (*CPU).lda, nil},
	{"LDA", ABY, 0xb9, 3, 4, 1, Read, nil, (*CPU).lda, nil},
	{"LDA", IDX, 0xa1, 2, 6, 0, Read, nil, (*CPU).lda, nil},
	{"LDA", IDY, 0xb1, 2, 5, 1, Read, nil, (*CPU).lda, nil},

	{"LDX", IMM, 0xa2, 2, 2, 0, Read, nil, (*CPU).ldx, nil},
	{"LDX", ZPG, 0xa6, 2, 3, 0, Read, nil, (*CPU).ldx, nil},
	{"LDX", ZPY, 0xb6, 2, 4, 0, Read, nil, (*CPU).ldx, nil},
	{"LDX", ABS, 0xae, 3, 4, 0, Read, nil, (*CPU).ldx, nil},
	{"LDX", ABY, 0xbe, 3, 4, 1, Read, nil, (*CPU).ldx, nil},

	{"LDY", IMM, 0xa0, 2, 2, 0, Read, nil, (*CPU).ldy, nil},
	{"LDY", ZPG, 0xa4, 2, 3, 0, Read, nil, (*CPU).ldy, nil},
	{"LDY", ZPX, 0xb4, 2, 4, 0, Read, nil, (*CPU).ldy, nil},
	{"LDY", ABS, 0xac, 3, 4, 0, Read, nil, (*CPU).ldy, nil},
	{"LDY", ABX, 0xbc, 3, 4, 1, Read, nil, (*CPU).ldy, nil},

	{"STA", ZPG, 0x85, 2, 3, 0, Implicit, (*CPU).sta, nil, nil},
	{"STA", ZPX, 0x95, 2, 4, 0, Implicit, (*CPU).sta, nil, nil},
	{"STA", ABS, 0x8d, 3, 4, 0, Implicit, (*CPU).sta, nil, nil},
	{"STA", ABX, 0x9d, 3, 5, 0, Implicit, (*CPU).sta, nil, nil},
	{"STA", ABY, 0x99, 3, 5, 0, Implicit, (*CPU).sta, nil, nil},
	{"STA", IDX, 0x81, 2, 6, 0, Implicit, (*CPU).sta, nil, nil},
	{"STA", IDY, 0x91, 2, 6, 0, Implicit, (*CPU).sta, nil, nil},

	{"STX", ZPG, 0x86, 2, 3, 0, Implicit, (*CPU).stx, nil, nil},
	{"STX", ZPY, 0x96, 2, 4, 0, Implicit, (*CPU).stx, nil, nil},
	{"STX", ABS, 0x8e, 3, 4, 0, Implicit, (*CPU).stx, nil, nil},

	{"STY", ZPG, 0x84, 2, 3, 0, Implicit, (*CPU).sty, nil, nil},
	{"STY", ZPX, 0x94, 2, 4, 0, Implicit, (*CPU).sty, nil, nil},
	{"STY", ABS, 0x8c, 3, 4, 0, Implicit, (*CPU).sty, nil, nil},

	// Register transfers
	{"TAX", IMP, 0xaa, 1, 2, 0, Implicit, (*CPU).tax, nil, nil},
	{"TAY", IMP, 0xa8, 1, 2, 0, Implicit, (*CPU).tay, nil, nil},
	{"TXA", IMP, 0x8a, 1, 2, 0, Implicit, (*CPU).txa, nil, nil},
	{"TYA", IMP, 0x98, 1, 2, 0, Implicit, (*CPU).tya, nil, nil},
	{"TSX", IMP, 0xba, 1, 2, 0, Implicit, (*CPU).tsx, nil, nil},
	{"TXS", IMP, 0x9a, 1, 2, 0, Implicit, (*CPU).txs, nil, nil},

	// Arithmetic and logic
	{"ADC", IMM, 0x69, 2, 2, 0, Read, nil, (*CPU).adc, nil},
	{"ADC", ZPG, 0x65, 2, 3, 0, Read, nil, (*CPU).adc, nil},
	{"ADC", ZPX, 0x75, 2, 4, 0, Read, nil, (*CPU).adc, nil},
	{"ADC", ABS, 0x6d, 3, 4, 0, Read, nil, (*CPU).adc, nil},
	{"ADC", ABX, 0x7d, 3, 4, 1, Read, nil, (*CPU).adc, nil},
	{"ADC", ABY, 0x79, 3, 4, 1, Read, nil, (*CPU).adc, nil},
	{"ADC", IDX, 0x61, 2, 6, 0, Read, nil, (*CPU).adc, nil},
	{"ADC", IDY, 0x71, 2, 5, 1, Read, nil, (*CPU).adc, nil},

	{"SBC", IMM, 0xe9, 2, 2, 0, Read, nil, (*CPU).sbc, nil},
	{"SBC", ZPG, 0xe5, 2, 3, 0, Read, nil, (*CPU).sbc, nil},
	{"SBC", ZPX, 0xf5, 2, 4, 0, Read, nil, (*CPU).sbc, nil},
	{"SBC", ABS, 0xed, 3, 4, 0, Read, nil, (*CPU).sbc, nil},
	{"SBC", ABX, 0xfd, 3, 4, 1, Read, nil, (*CPU).sbc, nil},
	{"SBC", ABY, 0xf9, 3, 4, 1, Read, nil, (*CPU).sbc, nil},
	{"SBC", IDX, 0xe1, 2, 6, 0, Read, nil, (*CPU).sbc, nil},
	{"SBC", IDY, 0xf1, 2, 5, 1, Read, nil, (*CPU).sbc, nil},

	{"AND", IMM, 0x29, 2, 2, 0, Read, nil, (*CPU).and, nil},
	{"AND", ZPG, 0x25, 2, 3, 0, Read, nil, (*CPU).and, nil},
	{"AND", ZPX, 0x35, 2, 4, 0, Read, nil, (*CPU).and, nil},
	{"AND", ABS, 0x2d, 3, 4, 0, Read, nil, (*CPU).and, nil},
	{"AND", ABX, 0x3d, 3, 4, 1, Read, nil, (*CPU).and, nil},
	{"AND", ABY, 0x39, 3, 4, 1, Read, nil, (*CPU).and, nil},
	{"AND", IDX, 0x21, 2, 6, 0, Read, nil, (*CPU).and, nil},
	{"AND", IDY, 0x31, 2, 5, 1, Read, nil, (*CPU).and, nil},

	{"ORA", IMM, 0x09, 2, 2, 0, Read, nil, (*CPU).ora, nil},
	{"ORA", ZPG, 0x05, 2, 3, 0, Read, nil, (*CPU).ora, nil},
	{"ORA", ZPX, 0x15, 2, 4, 0, Read, nil, (*CPU).ora, nil},
	{"ORA", ABS, 0x0d, 3, 4, 0, Read, nil, (*CPU).ora, nil},
	{"ORA", ABX, 0x1d, 3, 4, 1, Read, nil, (*CPU).ora, nil},
	{"ORA", ABY, 0x19, 3, 4, 1, Read, nil, (*CPU).ora, nil},
	{"ORA", IDX, 0x01, 2, 6, 0, Read, nil, (*CPU).ora, nil},
	{"ORA", IDY, 0x11, 2, 5, 1, Read, nil, (*CPU).ora, nil},

	{"EOR", IMM, 0x49, 2, 2, 0, Read, nil, (*CPU).eor, nil},
	{"EOR", ZPG, 0x45, 2, 3, 0, Read, nil, (*CPU).eor, nil},
	{"EOR", ZPX, 0x55, 2, 4, 0, Read, nil, (*CPU).eor, nil},
	{"EOR", ABS, 0x4d, 3, 4, 0, Read, nil, (*CPU).eor, nil},
	{"EOR", ABX, 0x5d, 3, 4, 1, Read, nil, (*CPU).eor, nil},
	{"EOR", ABY, 0x59, 3, 4, 1, Read, nil, (*CPU).eor, nil},
	{"EOR", IDX, 0x41, 2, 6, 0, Read, nil, (*CPU).eor, nil},
	{"EOR", IDY, 0x51, 2, 5, 1, Read, nil, (*CPU).eor, nil},

	{"BIT", ZPG, 0x24, 2, 3, 0, Read, nil, (*CPU).bit, nil},
	{"BIT", ABS, 0x2c, 3, 4, 0, Read, nil, (*CPU).bit, nil},

	{"CMP", IMM, 0xc9, 2, 2, 0, Read, nil, (*CPU).cmp, nil},
	{"CMP", ZPG, 0xc5, 2, 3, 0, Read, nil, (*CPU).cmp, nil},
	{"CMP", ZPX, 0xd5, 2, 4, 0, Read, nil, (*CPU).cmp, nil},
	{"CMP", ABS, 0xcd, 3, 4, 0, Read, nil, (*CPU).cmp, nil},
	{"CMP", ABX, 0xdd, 3, 4, 1, Read, nil, (*CPU).cmp, nil},
	{"CMP", ABY, 0xd9, 3, 4, 1, Read, nil, (*CPU).cmp, nil},
	{"CMP", IDX, 0xc1, 2, 6, 0, Read, nil, (*CPU).cmp, nil},
	{"CMP", IDY, 0xd1, 2, 5, 1, Read, nil, (*CPU).cmp, nil},

	{"CPX", IMM, 0xe0, 2, 2, 0, Read, nil, (*CPU).cpx, nil},
	{"CPX", ZPG, 0xe4, 2, 3, 0, Read, nil, (*CPU).cpx, nil},
	{"CPX", ABS, 0xec, 3, 4, 0, Read, nil, (*CPU).cpx, nil},

	{"CPY", IMM, 0xc0, 2, 2, 0, Read, nil, (*CPU).cpy, nil},
	{"CPY", ZPG, 0xc4, 2, 3, 0, Read, nil, (*CPU).cpy, nil},
	{"CPY", ABS, 0xcc, 3, 4, 0, Read, nil, (*CPU).cpy, nil},

	// Increments / decrements
	{"INC", ZPG, 0xe6, 2, 5, 0, ReadModifyWrite, nil, nil, (*CPU).inc},
	{"INC", ZPX, 0xf6, 2, 6, 0, ReadModifyWrite, nil, nil, (*CPU).inc},
	{"INC", ABS, 0xee, 3, 6, 0, ReadModifyWrite, nil, nil, (*CPU).inc},
	{"INC", ABX, 0xfe, 3, 7, 0, ReadModifyWrite, nil, nil, (*CPU).inc},

	{"DEC", ZPG, 0xc6, 2, 5, 0, ReadModifyWrite, nil, nil, (*CPU).dec},
	{"DEC", ZPX, 0xd6, 2, 6, 0, ReadModifyWrite, nil, nil, (*CPU).dec},
	{"DEC", ABS, 0xce, 3, 6, 0, ReadModifyWrite, nil, nil, (*CPU).dec},
	{"DEC", ABX, 0xde, 3, 7, 0, ReadModifyWrite, nil, nil, (*CPU).dec},

	{"INX", IMP, 0xe8, 1, 2, 0, Implicit, (*CPU).inx, nil, nil},
	{"INY", IMP, 0xc8, 1, 2, 0, Implicit, (*CPU).iny, nil, nil},
	{"DEX", IMP, 0xca, 1, 2, 0, Implicit, (*CPU).dex, nil, nil},
	{"DEY", IMP, 0x88, 1, 2, 0, Implicit, (*CPU).dey, nil, nil},

	// Shifts
	{"ASL", ACC, 0x0a, 1, 2, 0, ReadModifyWrite, nil, nil, (*CPU).asl},
	{"ASL", ZPG, 0x06, 2, 5, 0, ReadModifyWrite, nil, nil, (*CPU).asl},
	{"ASL", ZPX, 0x16, 2, 6, 0, ReadModifyWrite, nil, nil, (*CPU).asl},
	{"ASL", ABS, 0x0e, 3, 6, 0, ReadModifyWrite, nil, nil, (*CPU).asl},
	{"ASL", ABX, 0x1e, 3, 7, 0, ReadModifyWrite, nil, nil, (*CPU).asl},

	{"LSR", ACC, 0x4a, 1, 2, 0, ReadModifyWrite, nil, nil, (*CPU).lsr},
	{"LSR", ZPG, 0x46, 2, 5, 0, ReadModifyWrite, nil, nil, (*CPU).lsr},
	{"LSR", ZPX, 0x56, 2, 6, 0, ReadModifyWrite, nil, nil, (*CPU).lsr},
	{"LSR", ABS, 0x4e, 3, 6, 0, ReadModifyWrite, nil, nil, (*CPU).lsr},
	{"LSR", ABX, 0x5e, 3, 7, 0, ReadModifyWrite, nil, nil, (*CPU).lsr},

	{"ROL", ACC, 0x2a, 1, 2, 0, ReadModifyWrite, nil, nil, (*CPU).rol},
	{"ROL", ZPG, 0x26, 2, 5, 0, ReadModifyWrite, nil, nil, (*CPU).rol},
	{"ROL", ZPX, 0x36, 2, 6, 0, ReadModifyWrite, nil, nil, (*CPU).rol},
	{"ROL", ABS, 0x2e, 3, 6, 0, ReadModifyWrite, nil, nil, (*CPU).rol},
	{"ROL", ABX, 0x3e, 3, 7, 0, ReadModifyWrite, nil, nil, (*CPU).rol},

	{"ROR", ACC, 0x6a, 1, 2, 0, ReadModifyWrite, nil, nil, (*CPU).ror},
	{"ROR", ZPG, 0x66, 2, 5, 0, ReadModifyWrite, nil, nil, (*CPU).ror},
	{"ROR", ZPX, 0x76, 2, 6, 0, ReadModifyWrite, nil, nil, (*CPU).ror},
	{"ROR", ABS, 0x6e, 3, 6, 0, ReadModifyWrite, nil, nil, (*CPU).ror},
	{"ROR", ABX, 0x7e, 3, 7, 0, ReadModifyWrite, nil, nil, (*CPU).ror},

	// Branches. The +1/+1 taken/page-crossing cycle cost is computed by
	// CPU.branch itself (via deltaCycles), not by the BPCycles column.
	{"BCC", REL, 0x90, 2, 2, 0, Implicit, (*CPU).bcc, nil, nil},
	{"BCS", REL, 0xb0, 2, 2, 0, Implicit, (*CPU).bcs, nil, nil},
	{"BEQ", REL, 0xf0, 2, 2, 0, Implicit, (*CPU).beq, nil, nil},
	{"BNE", REL, 0xd0, 2, 2, 0, Implicit, (*CPU).bne, nil, nil},
	{"BMI", REL, 0x30, 2, 2, 0, Implicit, (*CPU).bmi, nil, nil},
	{"BPL", REL, 0x10, 2, 2, 0, Implicit, (*CPU).bpl, nil, nil},
	{"BVC", REL, 0x50, 2, 2, 0, Implicit, (*CPU).bvc, nil, nil},
	{"BVS", REL, 0x70, 2, 2, 0, Implicit, (*CPU).bvs, nil, nil},

	// Jumps and calls
	{"JMP", ABS, 0x4c, 3, 3, 0, Implicit, (*CPU).jmp, nil, nil},
	{"JMP", IND, 0x6c, 3, 5, 0, Implicit, (*CPU).jmpIndirect, nil, nil},
	{"JSR", ABS, 0x20, 3, 6, 0, Implicit, (*CPU).jsr, nil, nil},
	{"RTS", IMP, 0x60, 1, 6, 0, Implicit, (*CPU).rts, nil, nil},

	// Stack
	{"PHA", IMP, 0x48, 1, 3, 0, Implicit, (*CPU).pha, nil, nil},
	{"PLA", IMP, 0x68, 1, 4, 0, Implicit, (*CPU).pla, nil, nil},
	{"PHP", IMP, 0x08, 1, 3, 0, Implicit, (*CPU).php, nil, nil},
	{"PLP", IMP, 0x28, 1, 4, 0, Implicit, (*CPU).plp, nil, nil},

	// Status flags
	{"CLC", IMP, 0x18, 1, 2, 0, Implicit, (*CPU).clc, nil, nil},
	{"SEC", IMP, 0x38, 1, 2, 0, Implicit, (*CPU).sec, nil, nil},
	{"CLI", IMP, 0x58, 1, 2, 0, Implicit, (*CPU).cli, nil, nil},
	{"SEI", IMP, 0x78, 1, 2, 0, Implicit, (*CPU).sei, nil, nil},
	{"CLD", IMP, 0xd8, 1, 2, 0, Implicit, (*CPU).cld, nil, nil},
	{"SED", IMP, 0xf8, 1, 2, 0, Implicit, (*CPU).sed, nil, nil},
	{"CLV", IMP, 0xb8, 1, 2, 0, Implicit, (*CPU).clv, nil, nil},

	// System
	{"NOP", IMP, 0xea, 1, 2, 0, Implicit, (*CPU).nop, nil, nil},
	{"BRK", IMP, 0x00, 1, 7, 0, Implicit, (*CPU).brk, nil, nil},
	{"RTI", IMP, 0x40, 1, 6, 0, Implicit, (*CPU).rti, nil, nil},
}

// InstructionSet is the fully built 256-entry opcode table for the
// MOS 6510.
type InstructionSet struct {
	instructions [256]Instruction
}

// Lookup returns the instruction registered for opcode. If the opcode is
// undefined, the returned Instruction has an empty Name.
func (s *InstructionSet) Lookup(opcode byte) *Instruction {
	return &s.instructions[opcode]
}

var sharedInstructionSet = newInstructionSet()

// GetInstructionSet returns the singleton 6510 instruction set. The set
// itself is immutable once built, so sharing it across CPU instances is
// safe.
func GetInstructionSet() *InstructionSet {
	return sharedInstructionSet
}

// newInstructionSet builds the opcode table from instructionTable.
// Registering the same opcode twice is a configuration error and
// aborts initialization, per the spec's opcode-table invariant: there
// is no runtime caller that could sensibly recover from a malformed
// opcode table, so this fails fast at init time instead of returning
// an error nobody can act on.
func newInstructionSet() *InstructionSet {
	set := &InstructionSet{}
	var seen [256]bool

	for _, e := range instructionTable {
		if seen[e.opcode] {
			panic(fmt.Sprintf("cpu: opcode $%02X registered more than once (duplicate %s)", e.opcode, e.name))
		}
		seen[e.opcode] = true

		set.instructions[e.opcode] = Instruction{
			Name:     e.name,
			Mode:     e.mode,
			Opcode:   e.opcode,
			Length:   e.length,
			Cycles:   e.cycles,
			BPCycles: e.bpcycles,
			Kind:     e.kind,
			implicit: e.implicit,
			read:     e.read,
			rmw:      e.rmw,
		}
	}

	return set
}
