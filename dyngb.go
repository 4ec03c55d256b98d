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

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dyngb/dyngb/debugger"
	"github.com/dyngb/dyngb/debugger/terminal"
	"github.com/dyngb/dyngb/debugger/terminal/colorterm"
	"github.com/dyngb/dyngb/debugger/terminal/plainterm"
	"github.com/dyngb/dyngb/disassembly"
	"github.com/dyngb/dyngb/hardware"
	"github.com/dyngb/dyngb/logger"
	"github.com/dyngb/dyngb/modalflag"
	"github.com/dyngb/dyngb/performance"
	"github.com/dyngb/dyngb/regression"
	"github.com/dyngb/dyngb/shell"
	"github.com/dyngb/dyngb/shell/sdl"
	"github.com/dyngb/dyngb/version"
)

// SDL requires window handling to happen in the main thread, so the
// mode functions are called from main() directly rather than from a
// goroutine.
func main() {
	md := &modalflag.Modes{Output: os.Stdout}
	md.NewArgs(os.Args[1:])
	md.NewMode()
	md.AddSubModes("RUN", "DEBUG", "DISASM", "PERFORMANCE", "REGRESS", "VERSION")

	var err error

	p, _ := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		os.Exit(0)

	case modalflag.ParseError:
		os.Exit(10)
	}

	switch md.Mode() {
	case "RUN":
		err = run(md)

	case "DEBUG":
		err = debug(md)

	case "DISASM":
		err = disasm(md)

	case "PERFORMANCE":
		err = perform(md)

	case "REGRESS":
		err = regress(md)

	case "VERSION":
		ver, rev, _ := version.Version()
		fmt.Printf("%s (%s)\n", ver, rev)
	}

	if err != nil {
		fmt.Printf("* error in %s mode: %s\n", md.String(), err)
		os.Exit(20)
	}
}

func run(md *modalflag.Modes) error {
	md.NewMode()

	headless := md.AddBool("headless", false, "run without a display")
	scale := md.AddInt("scale", 4, "display scaling")
	cycles := md.AddInt64("cycles", 0, "stop after this many machine cycles (headless only, 0 = no limit)")
	serialStop := md.AddString("serialstop", "", "stop when serial output contains this string (headless only)")
	log := md.AddBool("log", false, "echo debugging log to stdout")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if *log {
		logger.SetEcho(os.Stdout, true)
	}

	if len(md.RemainingArgs()) != 1 {
		return fmt.Errorf("cartridge required for %s mode", md)
	}

	if *headless {
		return shell.Run(md.GetArg(0), shell.Options{
			MaxCycles:       uint64(*cycles),
			SerialCondition: *serialStop,
			SerialOutput:    os.Stdout,
		})
	}

	return sdl.Run(md.GetArg(0), *scale)
}

func debug(md *modalflag.Modes) error {
	md.NewMode()

	termType := md.AddString("term", "COLOR", "terminal type to use in debug mode: COLOR, PLAIN")
	log := md.AddBool("log", false, "echo debugging log to stdout")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if *log {
		logger.SetEcho(logger.NewColorizer(os.Stdout), true)
	}

	if len(md.RemainingArgs()) != 1 {
		return fmt.Errorf("cartridge required for %s mode", md)
	}

	dmg, err := hardware.NewDMG()
	if err != nil {
		return err
	}
	defer dmg.End()

	if err := dmg.AttachFile(md.GetArg(0)); err != nil {
		return err
	}

	var term terminal.Terminal
	switch *termType {
	case "COLOR":
		term = &colorterm.ColorTerminal{}
	case "PLAIN":
		term = &plainterm.PlainTerminal{}
	default:
		return fmt.Errorf("unknown terminal type (%s)", *termType)
	}

	return debugger.NewDebugger(dmg).Start(term)
}

func disasm(md *modalflag.Modes) error {
	md.NewMode()

	bank := md.AddInt("bank", -1, "disassemble a single bank")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if len(md.RemainingArgs()) != 1 {
		return fmt.Errorf("cartridge required for %s mode", md)
	}

	dsm, err := disassembly.FromFile(md.GetArg(0))
	if err != nil {
		return err
	}

	if *bank >= 0 {
		return dsm.WriteBank(os.Stdout, *bank)
	}
	return dsm.Write(os.Stdout)
}

func perform(md *modalflag.Modes) error {
	md.NewMode()

	duration := md.AddString("duration", "5s", "run duration (with an additional second for initialisation)")
	profile := md.AddBool("profile", false, "write CPU and memory profiles")
	stats := md.AddBool("statsview", false, "launch the statistics server")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if len(md.RemainingArgs()) != 1 {
		return fmt.Errorf("cartridge required for %s mode", md)
	}

	return performance.Check(os.Stdout, *profile, md.GetArg(0), *duration, *stats)
}

// yesReader always returns 'y'. used to automate confirmation requests.
type yesReader struct{}

func (*yesReader) Read(p []byte) (n int, err error) {
	p[0] = 'y'
	return 1, nil
}

func regress(md *modalflag.Modes) error {
	md.NewMode()
	md.AddSubModes("RUN", "LIST", "DELETE", "ADD")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	switch md.Mode() {
	case "RUN":
		md.NewMode()

		verbose := md.AddBool("verbose", false, "output more detail (eg. error messages)")

		p, err := md.Parse()
		if err != nil || p != modalflag.ParseContinue {
			return err
		}

		return regression.RegressRun(md.Output, *verbose, md.RemainingArgs())

	case "LIST":
		md.NewMode()

		// no additional arguments

		p, err := md.Parse()
		if err != nil || p != modalflag.ParseContinue {
			return err
		}

		if len(md.RemainingArgs()) != 0 {
			return fmt.Errorf("no additional arguments required for %s mode", md)
		}

		return regression.RegressList(md.Output)

	case "DELETE":
		md.NewMode()

		answerYes := md.AddBool("yes", false, "answer yes to confirmation")

		p, err := md.Parse()
		if err != nil || p != modalflag.ParseContinue {
			return err
		}

		switch len(md.RemainingArgs()) {
		case 0:
			return fmt.Errorf("database key required for %s mode", md)
		case 1:
			// use stdin for confirmation unless "yes" flag has been sent
			var confirmation io.Reader
			if *answerYes {
				confirmation = &yesReader{}
			} else {
				confirmation = os.Stdin
			}

			return regression.RegressDelete(md.Output, confirmation, md.GetArg(0))
		default:
			return fmt.Errorf("only one entry can be deleted at a time")
		}

	case "ADD":
		return regressAdd(md)
	}

	return nil
}

func regressAdd(md *modalflag.Modes) error {
	md.NewMode()

	numFrames := md.AddInt("frames", 10, "number of frames to run")
	passage := md.AddString("passage", "", "add a serial test: pass when this text appears on the serial port")

	md.AdditionalHelp(
		`By default a video test is added: the cartridge is run for the specified number of
frames and a hash of the video output is recorded.

If the -passage flag is given a serial test is added instead. The test succeeds when the
text appears in the cartridge's serial output. The -frames flag then acts as the budget
after which the test is considered to have failed.`)

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if len(md.RemainingArgs()) != 1 {
		return fmt.Errorf("cartridge required for %s mode", md)
	}

	var reg regression.Regressor

	if *passage != "" {
		reg = &regression.SerialRegression{
			CartridgeFile: md.GetArg(0),
			Passage:       *passage,
			MaxFrames:     *numFrames,
		}
	} else {
		reg = &regression.VideoRegression{
			CartridgeFile: md.GetArg(0),
			NumFrames:     *numFrames,
		}
	}

	return regression.RegressAdd(md.Output, reg)
}
