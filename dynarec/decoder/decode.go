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

// Package decoder decodes SM83 machine code into a structured form shared
// by the translator, the reference interpreter and the disassembler.
package decoder

// source/destination register order used by the regular opcode ranges.
// index 6 is the (HL) memory operand
var regOrder = [8]Reg8{B, C, D, E, H, L, 0, A}

// register pairs selected by bits 4-5 of the 16-bit opcodes
var pairOrder = [4]Reg16{BC, DE, HL, SP}

// push/pop use AF in place of SP
var stackPairOrder = [4]Reg16{BC, DE, HL, AF}

var condOrder = [4]Condition{NonZero, Zero, NoCarry, Carry}

func imm8(data []byte) uint8 {
	if len(data) < 2 {
		return 0
	}
	return data[1]
}

func imm16(data []byte) uint16 {
	if len(data) < 3 {
		return uint16(imm8(data))
	}
	return uint16(data[2])<<8 | uint16(data[1])
}

// Decode decodes the instruction at the start of data. The slice should
// hold at least three bytes when they exist in the address space; missing
// immediate bytes decode as zero.
//
// Decode never fails. Illegal opcodes produce an Invalid instruction of
// length one with the offending opcode in Imm8.
func Decode(data []byte) Instruction {
	if len(data) == 0 {
		return Instruction{Kind: Invalid, Length: 1, Cycles: 4}
	}

	opc := data[0]

	switch {
	case opc == 0x76:
		return Instruction{Kind: Halt, Length: 1, Cycles: 4}

	case opc >= 0x40 && opc <= 0x7f:
		return decodeLoad(opc)

	case opc >= 0x80 && opc <= 0xbf:
		return decodeALU(opc)
	}

	switch opc {
	case 0x00:
		return Instruction{Kind: Nop, Length: 1, Cycles: 4}
	case 0x10:
		// the second byte is expected to be 0x00 but is skipped either way
		return Instruction{Kind: Stop, Length: 2, Cycles: 4}

	case 0x01, 0x11, 0x21, 0x31:
		return Instruction{Kind: Ld16Imm, Pair: pairOrder[opc>>4], Imm16: imm16(data), Length: 3, Cycles: 12}

	case 0x02:
		return Instruction{Kind: LdToInd, Ind: IndBC, Src: A, Length: 1, Cycles: 8}
	case 0x12:
		return Instruction{Kind: LdToInd, Ind: IndDE, Src: A, Length: 1, Cycles: 8}
	case 0x22:
		return Instruction{Kind: LdToInd, Ind: IndHLInc, Src: A, Length: 1, Cycles: 8}
	case 0x32:
		return Instruction{Kind: LdToInd, Ind: IndHLDec, Src: A, Length: 1, Cycles: 8}

	case 0x0a:
		return Instruction{Kind: LdFromInd, Dst: A, Ind: IndBC, Length: 1, Cycles: 8}
	case 0x1a:
		return Instruction{Kind: LdFromInd, Dst: A, Ind: IndDE, Length: 1, Cycles: 8}
	case 0x2a:
		return Instruction{Kind: LdFromInd, Dst: A, Ind: IndHLInc, Length: 1, Cycles: 8}
	case 0x3a:
		return Instruction{Kind: LdFromInd, Dst: A, Ind: IndHLDec, Length: 1, Cycles: 8}

	case 0x03, 0x13, 0x23, 0x33:
		return Instruction{Kind: Inc16, Pair: pairOrder[opc>>4], Length: 1, Cycles: 8}
	case 0x0b, 0x1b, 0x2b, 0x3b:
		return Instruction{Kind: Dec16, Pair: pairOrder[opc>>4], Length: 1, Cycles: 8}

	case 0x04, 0x0c, 0x14, 0x1c, 0x24, 0x2c, 0x3c:
		return Instruction{Kind: Inc8, Dst: regOrder[opc>>3], Length: 1, Cycles: 4}
	case 0x34:
		return Instruction{Kind: IncHLInd, Length: 1, Cycles: 12}
	case 0x05, 0x0d, 0x15, 0x1d, 0x25, 0x2d, 0x3d:
		return Instruction{Kind: Dec8, Dst: regOrder[opc>>3], Length: 1, Cycles: 4}
	case 0x35:
		return Instruction{Kind: DecHLInd, Length: 1, Cycles: 12}

	case 0x06, 0x0e, 0x16, 0x1e, 0x26, 0x2e, 0x3e:
		return Instruction{Kind: Ld8Imm, Dst: regOrder[opc>>3], Imm8: imm8(data), Length: 2, Cycles: 8}
	case 0x36:
		return Instruction{Kind: LdImmToHLInd, Imm8: imm8(data), Length: 2, Cycles: 12}

	case 0x07:
		return Instruction{Kind: Rlca, Length: 1, Cycles: 4}
	case 0x0f:
		return Instruction{Kind: Rrca, Length: 1, Cycles: 4}
	case 0x17:
		return Instruction{Kind: Rla, Length: 1, Cycles: 4}
	case 0x1f:
		return Instruction{Kind: Rra, Length: 1, Cycles: 4}

	case 0x08:
		return Instruction{Kind: LdSPToMem, Imm16: imm16(data), Length: 3, Cycles: 20}

	case 0x09, 0x19, 0x29, 0x39:
		return Instruction{Kind: AddHL, Pair: pairOrder[opc>>4], Length: 1, Cycles: 8}

	case 0x18:
		return Instruction{Kind: Jr, Cond: Always, Rel: int8(imm8(data)), Length: 2, Cycles: 12}
	case 0x20, 0x28, 0x30, 0x38:
		return Instruction{Kind: Jr, Cond: condOrder[(opc>>3)&0x03], Rel: int8(imm8(data)), Length: 2, Cycles: 8, Extra: 4}

	case 0x27:
		return Instruction{Kind: Daa, Length: 1, Cycles: 4}
	case 0x2f:
		return Instruction{Kind: Cpl, Length: 1, Cycles: 4}
	case 0x37:
		return Instruction{Kind: Scf, Length: 1, Cycles: 4}
	case 0x3f:
		return Instruction{Kind: Ccf, Length: 1, Cycles: 4}

	case 0xc0, 0xc8, 0xd0, 0xd8:
		return Instruction{Kind: Ret, Cond: condOrder[(opc>>3)&0x03], Length: 1, Cycles: 8, Extra: 12}
	case 0xc9:
		return Instruction{Kind: Ret, Cond: Always, Length: 1, Cycles: 16}
	case 0xd9:
		return Instruction{Kind: Reti, Length: 1, Cycles: 16}

	case 0xc1, 0xd1, 0xe1, 0xf1:
		return Instruction{Kind: Pop, Pair: stackPairOrder[(opc>>4)&0x03], Length: 1, Cycles: 12}
	case 0xc5, 0xd5, 0xe5, 0xf5:
		return Instruction{Kind: Push, Pair: stackPairOrder[(opc>>4)&0x03], Length: 1, Cycles: 16}

	case 0xc3:
		return Instruction{Kind: Jp, Cond: Always, Imm16: imm16(data), Length: 3, Cycles: 16}
	case 0xc2, 0xca, 0xd2, 0xda:
		return Instruction{Kind: Jp, Cond: condOrder[(opc>>3)&0x03], Imm16: imm16(data), Length: 3, Cycles: 12, Extra: 4}
	case 0xe9:
		return Instruction{Kind: JpHL, Length: 1, Cycles: 4}

	case 0xcd:
		return Instruction{Kind: Call, Cond: Always, Imm16: imm16(data), Length: 3, Cycles: 24}
	case 0xc4, 0xcc, 0xd4, 0xdc:
		return Instruction{Kind: Call, Cond: condOrder[(opc>>3)&0x03], Imm16: imm16(data), Length: 3, Cycles: 12, Extra: 12}

	case 0xc7, 0xcf, 0xd7, 0xdf, 0xe7, 0xef, 0xf7, 0xff:
		return Instruction{Kind: Rst, Imm16: uint16(opc & 0x38), Length: 1, Cycles: 16}

	case 0xc6:
		return Instruction{Kind: AddImm, Imm8: imm8(data), Length: 2, Cycles: 8}
	case 0xce:
		return Instruction{Kind: AdcImm, Imm8: imm8(data), Length: 2, Cycles: 8}
	case 0xd6:
		return Instruction{Kind: SubImm, Imm8: imm8(data), Length: 2, Cycles: 8}
	case 0xde:
		return Instruction{Kind: SbcImm, Imm8: imm8(data), Length: 2, Cycles: 8}
	case 0xe6:
		return Instruction{Kind: AndImm, Imm8: imm8(data), Length: 2, Cycles: 8}
	case 0xee:
		return Instruction{Kind: XorImm, Imm8: imm8(data), Length: 2, Cycles: 8}
	case 0xf6:
		return Instruction{Kind: OrImm, Imm8: imm8(data), Length: 2, Cycles: 8}
	case 0xfe:
		return Instruction{Kind: CpImm, Imm8: imm8(data), Length: 2, Cycles: 8}

	case 0xe0:
		return Instruction{Kind: LdhToImm, Imm8: imm8(data), Length: 2, Cycles: 12}
	case 0xf0:
		return Instruction{Kind: LdhFromImm, Imm8: imm8(data), Length: 2, Cycles: 12}
	case 0xe2:
		return Instruction{Kind: LdhToC, Length: 1, Cycles: 8}
	case 0xf2:
		return Instruction{Kind: LdhFromC, Length: 1, Cycles: 8}

	case 0xea:
		return Instruction{Kind: LdAToMem, Imm16: imm16(data), Length: 3, Cycles: 16}
	case 0xfa:
		return Instruction{Kind: LdAFromMem, Imm16: imm16(data), Length: 3, Cycles: 16}

	case 0xe8:
		return Instruction{Kind: AddSP, Rel: int8(imm8(data)), Length: 2, Cycles: 16}
	case 0xf8:
		return Instruction{Kind: LdHLSPOffset, Rel: int8(imm8(data)), Length: 2, Cycles: 12}
	case 0xf9:
		return Instruction{Kind: LdSPHL, Length: 1, Cycles: 8}

	case 0xf3:
		return Instruction{Kind: Di, Length: 1, Cycles: 4}
	case 0xfb:
		return Instruction{Kind: Ei, Length: 1, Cycles: 4}

	case 0xcb:
		return decodeCB(imm8(data))
	}

	// 0xd3, 0xdb, 0xdd, 0xe3, 0xe4, 0xeb, 0xec, 0xed, 0xf4, 0xfc, 0xfd
	return Instruction{Kind: Invalid, Imm8: opc, Length: 1, Cycles: 4}
}

// decodeLoad handles the regular 0x40-0x7f LD block. 0x76 (LD (HL),(HL))
// is HALT and is handled by the caller.
func decodeLoad(opc uint8) Instruction {
	src := opc & 0x07
	dst := (opc >> 3) & 0x07

	switch {
	case dst == 6:
		return Instruction{Kind: LdToInd, Ind: IndHL, Src: regOrder[src], Length: 1, Cycles: 8}
	case src == 6:
		return Instruction{Kind: LdFromInd, Dst: regOrder[dst], Ind: IndHL, Length: 1, Cycles: 8}
	}
	return Instruction{Kind: Ld8, Dst: regOrder[dst], Src: regOrder[src], Length: 1, Cycles: 4}
}

// decodeALU handles the regular 0x80-0xbf arithmetic block.
func decodeALU(opc uint8) Instruction {
	reg := []Kind{Add, Adc, Sub, Sbc, And, Xor, Or, Cp}
	ind := []Kind{AddInd, AdcInd, SubInd, SbcInd, AndInd, XorInd, OrInd, CpInd}

	op := (opc >> 3) & 0x07
	src := opc & 0x07

	if src == 6 {
		return Instruction{Kind: ind[op], Length: 1, Cycles: 8}
	}
	return Instruction{Kind: reg[op], Src: regOrder[src], Length: 1, Cycles: 4}
}

// decodeCB handles the 0xcb-prefixed opcode page.
func decodeCB(opc uint8) Instruction {
	ind := opc&0x07 == 6
	reg := regOrder[opc&0x07]
	bit := (opc >> 3) & 0x07

	switch opc >> 6 {
	case 1:
		if ind {
			return Instruction{Kind: BitInd, Bit: bit, Length: 2, Cycles: 12}
		}
		return Instruction{Kind: Bit, Bit: bit, Dst: reg, Length: 2, Cycles: 8}
	case 2:
		if ind {
			return Instruction{Kind: ResInd, Bit: bit, Length: 2, Cycles: 16}
		}
		return Instruction{Kind: Res, Bit: bit, Dst: reg, Length: 2, Cycles: 8}
	case 3:
		if ind {
			return Instruction{Kind: SetInd, Bit: bit, Length: 2, Cycles: 16}
		}
		return Instruction{Kind: Set, Bit: bit, Dst: reg, Length: 2, Cycles: 8}
	}

	regKind := []Kind{Rlc, Rrc, Rl, Rr, Sla, Sra, Swap, Srl}
	indKind := []Kind{RlcInd, RrcInd, RlInd, RrInd, SlaInd, SraInd, SwapInd, SrlInd}

	if ind {
		return Instruction{Kind: indKind[bit], Length: 2, Cycles: 16}
	}
	return Instruction{Kind: regKind[bit], Dst: reg, Length: 2, Cycles: 8}
}
