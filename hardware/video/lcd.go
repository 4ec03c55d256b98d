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

package video

// LCD dimensions.
const (
	Width  = 160
	Height = 144
)

// lcd is the double-buffered frame store. Scanlines are rendered into the
// writing buffer; the buffers swap on entry to the vertical blank so the
// visible buffer is always a complete frame.
type lcd struct {
	visible []uint8
	writing []uint8
	enabled bool
}

func newLCD() *lcd {
	return &lcd{
		visible: make([]uint8, Width*Height),
		writing: make([]uint8, Width*Height),
		enabled: true,
	}
}

func (l *lcd) line(y int) []uint8 {
	return l.writing[y*Width : (y+1)*Width]
}

func (l *lcd) swap() {
	l.visible, l.writing = l.writing, l.visible
}

func (l *lcd) snapshot() *lcd {
	return &lcd{
		visible: append([]uint8(nil), l.visible...),
		writing: append([]uint8(nil), l.writing...),
		enabled: l.enabled,
	}
}
