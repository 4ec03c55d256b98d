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

// Package sdl is the windowed shell. It presents the LCD frame buffer
// through a streaming SDL texture and maps the keyboard onto the
// joypad.
//
// All SDL calls must happen on the main thread; Run() assumes it has
// been called from there.
package sdl

import (
	"unsafe"

	"github.com/dyngb/dyngb/curated"
	"github.com/dyngb/dyngb/hardware"
	"github.com/dyngb/dyngb/hardware/joypad"
	"github.com/dyngb/dyngb/hardware/video"
	"github.com/dyngb/dyngb/performance/limiter"
	"github.com/veandco/go-sdl2/sdl"
)

const windowTitle = "DynGB"

const pixelDepth = 4

// the frame rate of the console. the pace the display runs at
const framesPerSecond = float64(hardware.ClockHz) / float64(hardware.FrameCycles)

// the classic green-tinted shades of the original LCD, indexed by the
// 2-bit shade the picture processor produces. ABGR byte order
var shades = [4][pixelDepth]byte{
	{0x9b, 0xbc, 0x0f, 0xff},
	{0x8b, 0xac, 0x0f, 0xff},
	{0x30, 0x62, 0x30, 0xff},
	{0x0f, 0x38, 0x0f, 0xff},
}

// Display is an SDL window showing the LCD output.
type Display struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture

	pixels []byte

	lim *limiter.Limiter
}

// NewDisplay is the preferred method of initialisation for the Display
// type.
func NewDisplay(scale int) (*Display, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, curated.Errorf("sdl: %v", err)
	}

	scr := &Display{
		pixels: make([]byte, video.Width*video.Height*pixelDepth),
		lim:    limiter.NewLimiter(framesPerSecond),
	}

	var err error

	scr.window, err = sdl.CreateWindow(windowTitle,
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(video.Width*scale), int32(video.Height*scale),
		sdl.WINDOW_SHOWN)
	if err != nil {
		return nil, curated.Errorf("sdl: %v", err)
	}

	scr.renderer, err = sdl.CreateRenderer(scr.window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		return nil, curated.Errorf("sdl: %v", err)
	}

	scr.texture, err = scr.renderer.CreateTexture(uint32(sdl.PIXELFORMAT_ABGR8888),
		int(sdl.TEXTUREACCESS_STREAMING), int32(video.Width), int32(video.Height))
	if err != nil {
		return nil, curated.Errorf("sdl: %v", err)
	}

	return scr, nil
}

// Destroy the window and release SDL resources.
func (scr *Display) Destroy() {
	scr.texture.Destroy()
	scr.renderer.Destroy()
	scr.window.Destroy()
	sdl.Quit()
}

// Present converts a frame of LCD shades to pixels and shows it,
// blocking until the frame limiter ticks.
func (scr *Display) Present(frame []uint8) error {
	for i, shade := range frame {
		copy(scr.pixels[i*pixelDepth:], shades[shade&0x03][:])
	}

	if err := scr.texture.Update(nil, unsafe.Pointer(&scr.pixels[0]), video.Width*pixelDepth); err != nil {
		return curated.Errorf("sdl: %v", err)
	}
	if err := scr.renderer.Copy(scr.texture, nil, nil); err != nil {
		return curated.Errorf("sdl: %v", err)
	}

	scr.lim.Wait()
	scr.renderer.Present()

	return nil
}

// Service polls and reacts to SDL events. Returns false when the
// window has been closed.
func (scr *Display) Service(pad *joypad.Joypad) bool {
	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		switch ev := ev.(type) {
		case *sdl.QuitEvent:
			return false

		case *sdl.KeyboardEvent:
			b, ok := buttonFor(ev.Keysym.Sym)
			if !ok {
				continue
			}
			if ev.Type == sdl.KEYDOWN && ev.Repeat == 0 {
				pad.Press(b)
			} else if ev.Type == sdl.KEYUP {
				pad.Release(b)
			}
		}
	}

	return true
}

func buttonFor(key sdl.Keycode) (joypad.Button, bool) {
	switch key {
	case sdl.K_UP:
		return joypad.Up, true
	case sdl.K_DOWN:
		return joypad.Down, true
	case sdl.K_LEFT:
		return joypad.Left, true
	case sdl.K_RIGHT:
		return joypad.Right, true
	case sdl.K_x:
		return joypad.A, true
	case sdl.K_z:
		return joypad.B, true
	case sdl.K_RETURN:
		return joypad.Start, true
	case sdl.K_RSHIFT:
		return joypad.Select, true
	}
	return 0, false
}

// Run the cartridge in a window until it is closed or the machine
// locks up.
func Run(cartridgeFile string, scale int) error {
	dmg, err := hardware.NewDMG()
	if err != nil {
		return curated.Errorf("sdl: %v", err)
	}
	defer dmg.End()

	if err := dmg.AttachFile(cartridgeFile); err != nil {
		return curated.Errorf("sdl: %v", err)
	}

	scr, err := NewDisplay(scale)
	if err != nil {
		return err
	}
	defer scr.Destroy()

	for {
		if !scr.Service(dmg.Mem.Joypad) {
			return nil
		}

		if err := dmg.RunForFrames(1); err != nil {
			return curated.Errorf("sdl: %v", err)
		}
		if dmg.Locked() {
			return curated.Errorf("sdl: machine locked by illegal opcode")
		}

		if err := scr.Present(dmg.Mem.Video.Frame()); err != nil {
			return err
		}
	}
}
