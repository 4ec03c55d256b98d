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

// Reg8 identifies an 8-bit guest register.
type Reg8 int

const (
	A Reg8 = iota
	B
	C
	D
	E
	H
	L
)

func (r Reg8) String() string {
	return [...]string{"A", "B", "C", "D", "E", "H", "L"}[r]
}

// Reg16 identifies a 16-bit guest register pair.
type Reg16 int

const (
	AF Reg16 = iota
	BC
	DE
	HL
	SP
)

func (r Reg16) String() string {
	return [...]string{"AF", "BC", "DE", "HL", "SP"}[r]
}

// Indirect identifies a memory operand addressed through a register pair,
// optionally post-incrementing or post-decrementing HL.
type Indirect int

const (
	IndBC Indirect = iota
	IndDE
	IndHL
	IndHLInc
	IndHLDec
)

func (i Indirect) String() string {
	return [...]string{"(BC)", "(DE)", "(HL)", "(HL+)", "(HL-)"}[i]
}

// Condition guards conditional jumps, calls and returns.
type Condition int

const (
	Always Condition = iota
	Zero
	NonZero
	Carry
	NoCarry
)

func (c Condition) String() string {
	return [...]string{"", "Z", "NZ", "C", "NC"}[c]
}
