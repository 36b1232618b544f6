// Package console implements the simulator's optional live dashboard
// (--interactive): a gocui terminal UI showing the register file, SREG,
// the LED/display state and accumulated serial output while the machine
// runs in the background. Grounded on the teacher pdp11 example's
// console/console.go and main.go layout: a fixed set of gocui views laid
// out by a manager func, refreshed on a ticker via g.Update, with Ctrl-C
// bound to a clean quit.
package console

import (
	"fmt"
	"time"

	"github.com/jroimartin/gocui"

	"github.com/qut-emu/avremu/machine"
)

// Dashboard is the interactive terminal UI wrapping a Machine.
type Dashboard struct {
	g  *gocui.Gui
	m  *machine.Machine
	cancel func()
}

// New constructs a Dashboard over m. cancel is called when the user quits
// the dashboard (Ctrl-C), so the caller can stop the machine's Run loop.
func New(m *machine.Machine, cancel func()) (*Dashboard, error) {
	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return nil, fmt.Errorf("console: %w", err)
	}
	d := &Dashboard{g: g, m: m, cancel: cancel}
	g.SetManagerFunc(d.layout)
	if err := g.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, d.quit); err != nil {
		g.Close()
		return nil, fmt.Errorf("console: %w", err)
	}
	return d, nil
}

// Close releases the terminal.
func (d *Dashboard) Close() { d.g.Close() }

// Run starts the refresh ticker and blocks in gocui's main loop until the
// user quits or the dashboard is closed from outside.
func (d *Dashboard) Run() error {
	d.startTicker()
	if err := d.g.MainLoop(); err != nil && err != gocui.ErrQuit {
		return err
	}
	return nil
}

func (d *Dashboard) quit(g *gocui.Gui, v *gocui.View) error {
	if d.cancel != nil {
		d.cancel()
	}
	return gocui.ErrQuit
}

func (d *Dashboard) layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	if v, err := g.SetView("registers", 0, 0, maxX-1, 9); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "CPU"
	}
	if v, err := g.SetView("devices", 0, 10, maxX-1, 15); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Devices"
	}
	if v, err := g.SetView("serial", 0, 16, maxX-1, maxY-1); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Serial (USART0 TX)"
	}
	return nil
}

func (d *Dashboard) startTicker() {
	ticker := time.NewTicker(100 * time.Millisecond)
	go func() {
		for range ticker.C {
			d.g.Update(d.refresh)
		}
	}()
}

func (d *Dashboard) refresh(g *gocui.Gui) error {
	if v, err := g.View("registers"); err == nil {
		v.Clear()
		fmt.Fprint(v, d.m.DumpRegisters())
		fmt.Fprintf(v, "Cycles: %d\n", d.m.Cycles)
	}
	if v, err := g.View("devices"); err == nil {
		v.Clear()
		fmt.Fprintf(v, "LED0: %v\n", d.m.LED.On())
		fmt.Fprintf(v, "P1 (buzzer): %v\n", d.m.Buzzer.On())
		frames := d.m.SevenSeg.Frames()
		if len(frames) > 0 {
			fmt.Fprintf(v, "DISP0: %c\n", frames[len(frames)-1].Glyph)
		}
	}
	if v, err := g.View("serial"); err == nil {
		v.Clear()
		fmt.Fprint(v, d.m.Serial.String())
	}
	return nil
}
