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

// Package video emulates the DMG picture processor: the LCD control and
// status registers, the scanline mode state machine and background
// rendering into a double-buffered frame store.
//
// Rendering covers the background layer only. Sprites and the window are
// not drawn, although the associated registers exist and hold their
// values. Mode 3 and mode 0 have a variable split on real hardware; here
// each is assigned a fixed 188 dots of their combined 376.
package video

import "github.com/dyngb/dyngb/hardware/interrupts"

// mode 3 + mode 0 = 376 dots, split evenly
const (
	oamDots      = 80
	transferDots = 188
	hblankDots   = 188
	lineDots     = 456
)

// STAT interrupt select bits.
const (
	statHBlank = 0x08
	statVBlank = 0x10
	statOAM    = 0x20
	statLYC    = 0x40
)

// Video is the picture processor state.
type Video struct {
	lcd *lcd

	control uint8
	statSel uint8
	scrollX uint8
	scrollY uint8
	lyc     uint8
	bgp     uint8
	objp    [2]uint8
	windowX uint8
	windowY uint8

	// derived from the control register
	tileAddressOffset int
	firstTileOffset   int
	bgMapOffset       int
	windowMapOffset   int

	mode     uint8
	modeDots int
	line     int

	// background fetch state for the current line
	nextTileX int
	tileCache uint16

	// completed frames since power on
	frames uint64
}

// NewVideo is the preferred method of initialisation for the Video type.
func NewVideo() *Video {
	v := &Video{lcd: newLCD()}
	v.Reset()
	return v
}

// Reset restores the power-on state. The machine starts at the beginning
// of the vertical blank.
func (v *Video) Reset() {
	lcd := v.lcd
	if lcd == nil {
		lcd = newLCD()
	}
	*v = Video{
		lcd:             lcd,
		bgMapOffset:     0x1800,
		windowMapOffset: 0x1800,
		mode:            1,
		line:            144,
	}
}

// SetControl handles a write to the LCDC register.
func (v *Video) SetControl(value uint8) {
	v.lcd.enabled = value&0x80 != 0

	if value&0x10 == 0 {
		v.tileAddressOffset = 0x800
		v.firstTileOffset = 0x800
	} else {
		v.tileAddressOffset = 0
		v.firstTileOffset = 0
	}
	if value&0x08 == 0 {
		v.bgMapOffset = 0x1800
	} else {
		v.bgMapOffset = 0x1c00
	}
	if value&0x40 == 0 {
		v.windowMapOffset = 0x1800
	} else {
		v.windowMapOffset = 0x1c00
	}
	v.control = value
}

// Control returns the LCDC register value.
func (v *Video) Control() uint8 { return v.control }

// SetStatus handles a write to the STAT register. Only the interrupt
// select bits are writable.
func (v *Video) SetStatus(value uint8) {
	v.statSel = value & 0x78
}

// Status returns the STAT register value.
func (v *Video) Status() uint8 {
	s := v.statSel | v.mode
	if v.lyc == uint8(v.line) {
		s |= 0x04
	}
	return s
}

func (v *Video) SetScrollX(value uint8) { v.scrollX = value }
func (v *Video) ScrollX() uint8         { return v.scrollX }
func (v *Video) SetScrollY(value uint8) { v.scrollY = value }
func (v *Video) ScrollY() uint8         { return v.scrollY }

// LY returns the current scanline.
func (v *Video) LY() uint8 { return uint8(v.line) }

// SetLYC handles a write to the LYC register.
func (v *Video) SetLYC(value uint8) interrupts.Flag {
	v.lyc = value
	if v.statSel&statLYC != 0 && v.lyc == uint8(v.line) {
		return interrupts.LCDStat
	}
	return 0
}

// LYC returns the LYC register value.
func (v *Video) LYC() uint8 { return v.lyc }

func (v *Video) SetBGP(value uint8)  { v.bgp = value }
func (v *Video) BGP() uint8          { return v.bgp }
func (v *Video) SetWindowX(value uint8) { v.windowX = value }
func (v *Video) WindowX() uint8         { return v.windowX }
func (v *Video) SetWindowY(value uint8) { v.windowY = value }
func (v *Video) WindowY() uint8         { return v.windowY }

// SetOBJPalette handles a write to OBP0 or OBP1.
func (v *Video) SetOBJPalette(n int, value uint8) { v.objp[n&1] = value }

// OBJPalette returns OBP0 or OBP1.
func (v *Video) OBJPalette(n int) uint8 { return v.objp[n&1] }

// Frame returns the most recently completed frame. Pixels are shade
// indexes 0 to 3 after background palette mapping.
func (v *Video) Frame() []uint8 { return v.lcd.visible }

// Frames returns the number of frames completed since power on.
func (v *Video) Frames() uint64 { return v.frames }

// tileAddress returns the VRAM offset of the tile with the given map
// index, honouring the signed tile addressing mode selected by LCDC.
func (v *Video) tileAddress(index int) int {
	return (v.firstTileOffset+index*16)&0xfff + v.tileAddressOffset
}

// tileRow fetches one row of a tile and interleaves its bitplanes.
func (v *Video) tileRow(vram []uint8, tile int, row int) uint16 {
	addr := v.tileAddress(tile) + row*2
	return interleave(vram[addr], vram[addr+1])
}

func (v *Video) cacheNextTileRow(vram []uint8) {
	y := (v.line + int(v.scrollY)) & 0xff
	tileX := (v.nextTileX + int(v.scrollX)>>3) & 0x1f
	tile := int(vram[v.bgMapOffset+(y>>3)*32+tileX])
	v.tileCache = v.tileRow(vram, tile, y&7)
	v.nextTileX++
}

// shadeAt extracts the leftmost remaining pixel from the tile cache and
// applies the background palette.
func (v *Video) shiftShade() uint8 {
	c := uint8(v.tileCache>>14) & 0x03
	v.tileCache <<= 2
	return (v.bgp >> (c * 2)) & 0x03
}

// Step advances the picture processor by the given number of clock
// cycles. One clock cycle is one dot. Returns the interrupts raised.
func (v *Video) Step(cycles uint32, vram []uint8) interrupts.Flag {
	var flags interrupts.Flag

	for dots := int(cycles); dots > 0; dots -= 4 {
		prevDots := v.modeDots
		v.modeDots += 4

		switch v.mode {
		case 0:
			if v.modeDots >= hblankDots {
				v.modeDots -= hblankDots
				if v.line < 143 {
					v.line++
					v.mode = 2
					flags |= v.statMode(statOAM)
					flags |= v.checkLYC()
				} else {
					v.line++
					v.mode = 1
					v.lcd.swap()
					v.frames++
					flags |= interrupts.VBlank
					flags |= v.statMode(statVBlank)
					flags |= v.checkLYC()
				}
			}
		case 1:
			if v.modeDots >= lineDots {
				v.modeDots -= lineDots
				if v.line < 153 {
					v.line++
					flags |= v.checkLYC()
				} else {
					v.line = 0
					v.mode = 2
					flags |= v.statMode(statOAM)
					flags |= v.checkLYC()
				}
			}
		case 2:
			if v.modeDots >= oamDots {
				v.modeDots -= oamDots
				v.mode = 3
				v.nextTileX = 0
				v.cacheNextTileRow(vram)
			}
		case 3:
			if v.modeDots >= transferDots {
				v.modeDots -= transferDots
				v.mode = 0
				flags |= v.statMode(statHBlank)
			} else if prevDots < Width && v.line < Height {
				v.draw(prevDots, vram)
			}
		}
	}

	return flags
}

// draw renders four dots of the current line starting at the given x
// position.
func (v *Video) draw(x int, vram []uint8) {
	line := v.lcd.line(v.line)
	tileX := x & 7

	for remaining := 4; remaining > 0; {
		for tileX < 8 && remaining > 0 {
			line[x] = v.shiftShade()
			tileX++
			x++
			remaining--
		}
		if tileX == 8 {
			v.cacheNextTileRow(vram)
			tileX = 0
			if remaining == 0 {
				return
			}
		}
	}
}

func (v *Video) statMode(sel uint8) interrupts.Flag {
	if v.statSel&sel != 0 {
		return interrupts.LCDStat
	}
	return 0
}

func (v *Video) checkLYC() interrupts.Flag {
	if v.statSel&statLYC != 0 && v.lyc == uint8(v.line) {
		return interrupts.LCDStat
	}
	return 0
}

// Snapshot creates a copy of the picture processor state.
func (v *Video) Snapshot() *Video {
	n := *v
	n.lcd = v.lcd.snapshot()
	return &n
}
