// This file is part of DynGB.
//
// DynGB is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// DynGB is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with DynGB.  If not, see <https://www.gnu.org/licenses/>.

package decoder

import "fmt"

// Kind classifies a decoded instruction.
type Kind int

const (
	Invalid Kind = iota
	Nop
	Stop
	Halt

	Ld8      // Dst <- Src
	Ld8Imm   // Dst <- Imm8
	Ld16Imm  // Pair <- Imm16
	LdToInd  // (Ind) <- Src
	LdFromInd // Dst <- (Ind)
	LdImmToHLInd // (HL) <- Imm8
	LdAToMem   // (Imm16) <- A
	LdAFromMem // A <- (Imm16)
	LdhToC     // (0xff00+C) <- A
	LdhFromC   // A <- (0xff00+C)
	LdhToImm   // (0xff00+Imm8) <- A
	LdhFromImm // A <- (0xff00+Imm8)
	LdSPToMem  // (Imm16) <- SP
	LdHLSPOffset // HL <- SP+Rel
	LdSPHL     // SP <- HL

	Inc8
	Dec8
	Inc16
	Dec16
	IncHLInd
	DecHLInd

	Add
	AddImm
	AddInd
	Adc
	AdcImm
	AdcInd
	Sub
	SubImm
	SubInd
	Sbc
	SbcImm
	SbcInd
	And
	AndImm
	AndInd
	Or
	OrImm
	OrInd
	Xor
	XorImm
	XorInd
	Cp
	CpImm
	CpInd
	AddHL
	AddSP

	Daa
	Cpl
	Scf
	Ccf

	Rlca
	Rla
	Rrca
	Rra
	Rlc
	RlcInd
	Rl
	RlInd
	Rrc
	RrcInd
	Rr
	RrInd
	Sla
	SlaInd
	Sra
	SraInd
	Srl
	SrlInd
	Swap
	SwapInd
	Bit
	BitInd
	Res
	ResInd
	Set
	SetInd

	Jp
	JpHL
	Jr
	Call
	Ret
	Reti
	Rst
	Push
	Pop
	Ei
	Di
)

// Instruction is one decoded guest instruction. Operand fields are only
// meaningful for the kinds that use them.
type Instruction struct {
	Kind Kind

	Dst  Reg8
	Src  Reg8
	Pair Reg16
	Ind  Indirect
	Cond Condition
	Bit  uint8
	Imm8 uint8
	Imm16 uint16
	Rel  int8

	// encoded length in bytes
	Length int

	// clock cycles consumed. for conditional control flow Cycles is the
	// not-taken cost and Extra is added when the branch is taken
	Cycles int
	Extra  int
}

// IsBlockEnd returns true if the instruction terminates a basic block.
// Control flow, halt states, interrupt enable changes and invalid opcodes
// all end the block.
func (ins Instruction) IsBlockEnd() bool {
	switch ins.Kind {
	case Jp, JpHL, Jr, Call, Ret, Reti, Rst, Ei, Di, Stop, Halt, Invalid:
		return true
	}
	return false
}

func (ins Instruction) String() string {
	switch ins.Kind {
	case Invalid:
		return "INVALID"
	case Nop:
		return "NOP"
	case Stop:
		return "STOP 0"
	case Halt:
		return "HALT"
	case Ld8:
		return fmt.Sprintf("LD %s, %s", ins.Dst, ins.Src)
	case Ld8Imm:
		return fmt.Sprintf("LD %s, %#02x", ins.Dst, ins.Imm8)
	case Ld16Imm:
		return fmt.Sprintf("LD %s, %#04x", ins.Pair, ins.Imm16)
	case LdToInd:
		return fmt.Sprintf("LD %s, %s", ins.Ind, ins.Src)
	case LdFromInd:
		return fmt.Sprintf("LD %s, %s", ins.Dst, ins.Ind)
	case LdImmToHLInd:
		return fmt.Sprintf("LD (HL), %#02x", ins.Imm8)
	case LdAToMem:
		return fmt.Sprintf("LD (%#04x), A", ins.Imm16)
	case LdAFromMem:
		return fmt.Sprintf("LD A, (%#04x)", ins.Imm16)
	case LdhToC:
		return "LD (C), A"
	case LdhFromC:
		return "LD A, (C)"
	case LdhToImm:
		return fmt.Sprintf("LDH (%#02x), A", ins.Imm8)
	case LdhFromImm:
		return fmt.Sprintf("LDH A, (%#02x)", ins.Imm8)
	case LdSPToMem:
		return fmt.Sprintf("LD (%#04x), SP", ins.Imm16)
	case LdHLSPOffset:
		return fmt.Sprintf("LD HL, SP%+d", ins.Rel)
	case LdSPHL:
		return "LD SP, HL"
	case Inc8:
		return fmt.Sprintf("INC %s", ins.Dst)
	case Dec8:
		return fmt.Sprintf("DEC %s", ins.Dst)
	case Inc16:
		return fmt.Sprintf("INC %s", ins.Pair)
	case Dec16:
		return fmt.Sprintf("DEC %s", ins.Pair)
	case IncHLInd:
		return "INC (HL)"
	case DecHLInd:
		return "DEC (HL)"
	case Add:
		return fmt.Sprintf("ADD A, %s", ins.Src)
	case AddImm:
		return fmt.Sprintf("ADD A, %#02x", ins.Imm8)
	case AddInd:
		return "ADD A, (HL)"
	case Adc:
		return fmt.Sprintf("ADC A, %s", ins.Src)
	case AdcImm:
		return fmt.Sprintf("ADC A, %#02x", ins.Imm8)
	case AdcInd:
		return "ADC A, (HL)"
	case Sub:
		return fmt.Sprintf("SUB %s", ins.Src)
	case SubImm:
		return fmt.Sprintf("SUB %#02x", ins.Imm8)
	case SubInd:
		return "SUB (HL)"
	case Sbc:
		return fmt.Sprintf("SBC A, %s", ins.Src)
	case SbcImm:
		return fmt.Sprintf("SBC A, %#02x", ins.Imm8)
	case SbcInd:
		return "SBC A, (HL)"
	case And:
		return fmt.Sprintf("AND %s", ins.Src)
	case AndImm:
		return fmt.Sprintf("AND %#02x", ins.Imm8)
	case AndInd:
		return "AND (HL)"
	case Or:
		return fmt.Sprintf("OR %s", ins.Src)
	case OrImm:
		return fmt.Sprintf("OR %#02x", ins.Imm8)
	case OrInd:
		return "OR (HL)"
	case Xor:
		return fmt.Sprintf("XOR %s", ins.Src)
	case XorImm:
		return fmt.Sprintf("XOR %#02x", ins.Imm8)
	case XorInd:
		return "XOR (HL)"
	case Cp:
		return fmt.Sprintf("CP %s", ins.Src)
	case CpImm:
		return fmt.Sprintf("CP %#02x", ins.Imm8)
	case CpInd:
		return "CP (HL)"
	case AddHL:
		return fmt.Sprintf("ADD HL, %s", ins.Pair)
	case AddSP:
		return fmt.Sprintf("ADD SP, %+d", ins.Rel)
	case Daa:
		return "DAA"
	case Cpl:
		return "CPL"
	case Scf:
		return "SCF"
	case Ccf:
		return "CCF"
	case Rlca:
		return "RLCA"
	case Rla:
		return "RLA"
	case Rrca:
		return "RRCA"
	case Rra:
		return "RRA"
	case Rlc:
		return fmt.Sprintf("RLC %s", ins.Dst)
	case RlcInd:
		return "RLC (HL)"
	case Rl:
		return fmt.Sprintf("RL %s", ins.Dst)
	case RlInd:
		return "RL (HL)"
	case Rrc:
		return fmt.Sprintf("RRC %s", ins.Dst)
	case RrcInd:
		return "RRC (HL)"
	case Rr:
		return fmt.Sprintf("RR %s", ins.Dst)
	case RrInd:
		return "RR (HL)"
	case Sla:
		return fmt.Sprintf("SLA %s", ins.Dst)
	case SlaInd:
		return "SLA (HL)"
	case Sra:
		return fmt.Sprintf("SRA %s", ins.Dst)
	case SraInd:
		return "SRA (HL)"
	case Srl:
		return fmt.Sprintf("SRL %s", ins.Dst)
	case SrlInd:
		return "SRL (HL)"
	case Swap:
		return fmt.Sprintf("SWAP %s", ins.Dst)
	case SwapInd:
		return "SWAP (HL)"
	case Bit:
		return fmt.Sprintf("BIT %d, %s", ins.Bit, ins.Dst)
	case BitInd:
		return fmt.Sprintf("BIT %d, (HL)", ins.Bit)
	case Res:
		return fmt.Sprintf("RES %d, %s", ins.Bit, ins.Dst)
	case ResInd:
		return fmt.Sprintf("RES %d, (HL)", ins.Bit)
	case Set:
		return fmt.Sprintf("SET %d, %s", ins.Bit, ins.Dst)
	case SetInd:
		return fmt.Sprintf("SET %d, (HL)", ins.Bit)
	case Jp:
		if ins.Cond == Always {
			return fmt.Sprintf("JP %#04x", ins.Imm16)
		}
		return fmt.Sprintf("JP %s, %#04x", ins.Cond, ins.Imm16)
	case JpHL:
		return "JP (HL)"
	case Jr:
		if ins.Cond == Always {
			return fmt.Sprintf("JR %+d", ins.Rel)
		}
		return fmt.Sprintf("JR %s, %+d", ins.Cond, ins.Rel)
	case Call:
		if ins.Cond == Always {
			return fmt.Sprintf("CALL %#04x", ins.Imm16)
		}
		return fmt.Sprintf("CALL %s, %#04x", ins.Cond, ins.Imm16)
	case Ret:
		if ins.Cond == Always {
			return "RET"
		}
		return fmt.Sprintf("RET %s", ins.Cond)
	case Reti:
		return "RETI"
	case Rst:
		return fmt.Sprintf("RST %#02x", ins.Imm16)
	case Push:
		return fmt.Sprintf("PUSH %s", ins.Pair)
	case Pop:
		return fmt.Sprintf("POP %s", ins.Pair)
	case Ei:
		return "EI"
	case Di:
		return "DI"
	}
	return "unknown"
}
