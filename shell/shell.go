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

// Package shell runs the emulation without a display. It is the
// harness for test cartridges that report their result over the serial
// port, and the engine behind the SDL shell in the sdl sub-package.
package shell

import (
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/dyngb/dyngb/curated"
	"github.com/dyngb/dyngb/hardware"
	"github.com/dyngb/dyngb/logger"
)

// Options control how long a headless session runs for.
type Options struct {
	// stop after this many machine cycles. zero means no limit, which
	// only makes sense with a serial condition or an interactive signal
	MaxCycles uint64

	// stop when the accumulated serial output contains this string
	SerialCondition string

	// serial output is echoed here as it arrives. may be nil
	SerialOutput io.Writer
}

// Run the cartridge without a display until an Options condition is
// met, the machine locks up, or the process is interrupted.
func Run(cartridgeFile string, opts Options) error {
	dmg, err := hardware.NewDMG()
	if err != nil {
		return curated.Errorf("shell: %v", err)
	}
	defer dmg.End()

	if err := dmg.AttachFile(cartridgeFile); err != nil {
		return curated.Errorf("shell: %v", err)
	}

	intr := make(chan os.Signal, 1)
	signal.Notify(intr, os.Interrupt)
	defer signal.Stop(intr)

	var serial strings.Builder
	dmg.Mem.Serial.Sink = func(b uint8) {
		serial.WriteByte(b)
		if opts.SerialOutput != nil {
			opts.SerialOutput.Write([]byte{b})
		}
	}

	var cycles uint64
	for {
		select {
		case <-intr:
			logger.Log(logger.Allow, "shell", "interrupted")
			return nil
		default:
		}

		c, err := dmg.Run(hardware.FrameCycles)
		if err != nil {
			return curated.Errorf("shell: %v", err)
		}
		cycles += uint64(c)

		if dmg.Locked() {
			return curated.Errorf("shell: machine locked by illegal opcode")
		}

		if opts.MaxCycles > 0 && cycles >= opts.MaxCycles {
			logger.Logf(logger.Allow, "shell", "cycle budget reached (%d)", cycles)
			return nil
		}

		if opts.SerialCondition != "" && strings.Contains(serial.String(), opts.SerialCondition) {
			logger.Logf(logger.Allow, "shell", "serial condition met after %d cycles", cycles)
			return nil
		}
	}
}
