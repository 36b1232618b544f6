// This file is part of Gopher2600.
//
// Gopher2600 is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Gopher2600 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Gopher2600.  If not, see <https://www.gnu.org/licenses/>.

// Command avremu runs ATtiny1626/QUTy firmware against a scripted stimulus
// timeline: avremu [OPTIONS] <FIRMWARE>. Grounded on the teacher's
// gopher2600.go entrypoint, which parses flags, builds a hardware instance
// from a cartridge image, runs it to completion or interruption, and maps
// the result to an os.Exit status; generalised here from the teacher's
// modalflag sub-mode dispatch (RUN/PLAY/DEBUG/...) to a single flat flag set,
// since avremu has one mode of operation, not several.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/qut-emu/avremu/avrerr"
	"github.com/qut-emu/avremu/console"
	"github.com/qut-emu/avremu/curated"
	"github.com/qut-emu/avremu/eventscript"
	"github.com/qut-emu/avremu/firmware"
	"github.com/qut-emu/avremu/logger"
	"github.com/qut-emu/avremu/machine"
)

// Exit codes, per the simulator's defined taxonomy.
const (
	exitNormal       = 0
	exitLoadError    = 2
	exitEventParse   = 3
	exitIllegalInstr = 4
	exitUsage        = 64
)

// defaultMaxCycles bounds a run with no -t given: generous enough for any
// firmware that isn't simply spinning forever with no wake path.
const defaultMaxCycles = 1_000_000_000

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("avremu", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		eventsFile  string
		timeout     uint64
		dumpStack   bool
		dumpRegs    bool
		dumpStdout  bool
		debug       bool
		interactive bool
	)

	fs.StringVar(&eventsFile, "events", "", "stimulus event script `FILE`")
	fs.StringVar(&eventsFile, "e", "", "shorthand for --events")
	fs.Uint64Var(&timeout, "timeout", 0, "maximum cycle count before stopping (0: no explicit limit)")
	fs.Uint64Var(&timeout, "t", 0, "shorthand for --timeout")
	fs.BoolVar(&dumpStack, "dump-stack", false, "print the stack window on exit")
	fs.BoolVar(&dumpStack, "s", false, "shorthand for --dump-stack")
	fs.BoolVar(&dumpRegs, "dump-regs", false, "print the register file on exit")
	fs.BoolVar(&dumpRegs, "r", false, "shorthand for --dump-regs")
	fs.BoolVar(&dumpStdout, "dump-stdout", false, "write accumulated USART0 TX bytes to stdout.txt")
	fs.BoolVar(&dumpStdout, "o", false, "shorthand for --dump-stdout")
	fs.BoolVar(&debug, "debug", false, "trace every executed instruction to stderr")
	fs.BoolVar(&debug, "d", false, "shorthand for --debug")
	fs.BoolVar(&interactive, "interactive", false, "show a live terminal dashboard while running")
	fs.BoolVar(&interactive, "i", false, "shorthand for --interactive")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: avremu [OPTIONS] <FIRMWARE>")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	firmwarePath := fs.Arg(0)
	if firmwarePath == "" || fs.NArg() > 1 {
		fs.Usage()
		return exitUsage
	}

	image, err := firmware.Load(firmwarePath)
	if err != nil {
		logger.Logf("avremu", "load: %v", err)
		fmt.Fprintf(os.Stderr, "* load error: %v\n", err)
		return exitLoadError
	}

	var events []eventscript.Event
	if eventsFile != "" {
		var diags []eventscript.Diagnostic
		events, diags, err = eventscript.Load(eventsFile)
		for _, d := range diags {
			logger.Logf("avremu", "events: %s", d.String())
			fmt.Fprintf(os.Stderr, "* %s\n", d.String())
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "* event script error: %v\n", err)
			return exitEventParse
		}
	}

	m := machine.New(image)
	if debug {
		m.Trace = func(pc uint16, mnemonic string, cycles int) {
			fmt.Fprintf(os.Stderr, "%#04x: %-24s (%d cycles)\n", pc, mnemonic, cycles)
		}
	}

	maxCycles := uint64(defaultMaxCycles)
	if timeout > 0 {
		maxCycles = timeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt)
	go func() {
		<-sigc
		cancel()
	}()

	var dash *console.Dashboard
	if interactive {
		dash, err = console.New(m, cancel)
		if err != nil {
			fmt.Fprintf(os.Stderr, "* interactive console error: %v\n", err)
			return exitUsage
		}
		defer dash.Close()
		go func() {
			_ = dash.Run()
		}()
	}

	result := m.Run(ctx, events, maxCycles)

	if dumpRegs {
		fmt.Print(m.DumpRegisters())
	}
	if dumpStack {
		fmt.Print(m.DumpStack(16))
	}
	if dumpStdout {
		f, ferr := os.Create("stdout.txt")
		if ferr == nil {
			defer f.Close()
			_ = m.Serial.Flush(f)
		} else {
			logger.Logf("avremu", "dump-stdout: %v", ferr)
		}
	}

	return exitCode(result.Err)
}

// exitCode maps a Machine.Run result to the simulator's defined exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitNormal
	case curated.Is(err, avrerr.TimeoutReached), curated.Is(err, avrerr.HaltReached):
		return exitNormal
	case curated.Is(err, avrerr.IllegalInstruction):
		return exitIllegalInstr
	case curated.Is(err, avrerr.EventParseError):
		return exitEventParse
	case curated.Is(err, avrerr.LoadError):
		return exitLoadError
	default:
		fmt.Fprintf(os.Stderr, "* error: %v\n", err)
		return exitUsage
	}
}
