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

package performance

import (
	"fmt"
	"io"
	"time"

	"github.com/dyngb/dyngb/curated"
	"github.com/dyngb/dyngb/hardware"
	"github.com/dyngb/dyngb/statsview"
)

// the frame rate of the real console, used as the reference for the
// accuracy figure
const referenceFPS = float64(hardware.ClockHz) / float64(hardware.FrameCycles)

// Check runs the machine with the named cartridge, flat out, for the
// given wall-clock duration and reports the achieved performance.
//
// When profile is true, CPU and memory profiles are written to
// cpu.profile and mem.profile in the working directory.
func Check(output io.Writer, profile bool, cartridgeFile string, runTime string, launchStats bool) error {
	duration, err := time.ParseDuration(runTime)
	if err != nil {
		return curated.Errorf("performance: %v", err)
	}

	if launchStats {
		statsview.Launch(output)
	}

	dmg, err := hardware.NewDMG()
	if err != nil {
		return curated.Errorf("performance: %v", err)
	}
	defer dmg.End()

	if err := dmg.AttachFile(cartridgeFile); err != nil {
		return curated.Errorf("performance: %v", err)
	}

	var cycles uint64
	var elapsed time.Duration
	startFrames := dmg.Mem.Video.Frames()

	run := func() error {
		start := time.Now()
		deadline := start.Add(duration)

		for time.Now().Before(deadline) && !dmg.Locked() {
			c, err := dmg.Run(hardware.FrameCycles)
			if err != nil {
				return err
			}
			cycles += uint64(c)
		}

		elapsed = time.Since(start)
		return nil
	}

	if err := profileCPU(profile, "cpu.profile", run); err != nil {
		return curated.Errorf("performance: %v", err)
	}
	if err := profileMemory(profile, "mem.profile"); err != nil {
		return curated.Errorf("performance: %v", err)
	}

	frames := dmg.Mem.Video.Frames() - startFrames
	seconds := elapsed.Seconds()

	fps := float64(frames) / seconds
	cps := float64(cycles) / seconds

	fmt.Fprintf(output, "%d frames in %.2fs\n", frames, seconds)
	fmt.Fprintf(output, "%.2f fps (%.1f%% of real console)\n", fps, 100*fps/referenceFPS)
	fmt.Fprintf(output, "%.0f cycles/sec (%.1f%% of real console)\n", cps, 100*cps/float64(hardware.ClockHz))

	return nil
}
