// Copyright 2018 Brett Vickers.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package host provides a small scriptable console for driving a
// Commodore 64 core by hand: load ROMs and PRGs, run or single-step
// the CPU, inspect registers and memory, and dump a screenshot of the
// current frame. It reuses the command-tree idiom of a much larger
// 6502 debugger, trimmed to the handful of operations a bank-switched
// bus and a raster video chip actually call for.
package host

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"strconv"

	"github.com/beevik/cmd"

	"github.com/sixfour/c64core/machine"
)

var cmds *cmd.Tree

func init() {
	cmds = cmd.NewTree("c64", []cmd.Command{
		{
			Name:     "help",
			Shortcut: "?",
			Data:     (*Host).cmdHelp,
		},
		{
			Name:  "load",
			Brief: "Load ROMs or a PRG image",
			Subcommands: cmd.NewTree("Load", []cmd.Command{
				{
					Name:     "rom",
					Brief:    "Load the KERNAL, BASIC, and CHAR ROM images",
					HelpText: "load rom <kernal> <basic> <char>",
					Data:     (*Host).cmdLoadROM,
				},
				{
					Name:     "prg",
					Brief:    "Load a PRG image into RAM",
					HelpText: "load prg <filename>",
					Data:     (*Host).cmdLoadPRG,
				},
			}),
		},
		{
			Name:     "reset",
			Brief:    "Reset the machine",
			HelpText: "reset",
			Data:     (*Host).cmdReset,
		},
		{
			Name:     "run",
			Brief:    "Run the CPU until it halts on an execution error",
			HelpText: "run",
			Data:     (*Host).cmdRun,
		},
		{
			Name:     "step",
			Shortcut: "s",
			Brief:    "Execute a single instruction",
			HelpText: "step [<count>]",
			Data:     (*Host).cmdStep,
		},
		{
			Name:     "regs",
			Shortcut: "r",
			Brief:    "Display register contents",
			HelpText: "regs",
			Data:     (*Host).cmdRegs,
		},
		{
			Name:     "peek",
			Brief:    "Display a byte of memory",
			HelpText: "peek <address>",
			Data:     (*Host).cmdPeek,
		},
		{
			Name:     "poke",
			Brief:    "Store a byte of memory",
			HelpText: "poke <address> <value>",
			Data:     (*Host).cmdPoke,
		},
		{
			Name:     "screenshot",
			Brief:    "Write the current frame to a PNG file",
			HelpText: "screenshot <filename>",
			Data:     (*Host).cmdScreenshot,
		},
		{
			Name:     "quit",
			Shortcut: "q",
			Brief:    "Quit the program",
			HelpText: "quit",
			Data:     (*Host).cmdQuit,
		},
	})
}

// A Host drives a machine.Machine from a stream of text commands.
type Host struct {
	input       *bufio.Scanner
	output      *bufio.Writer
	interactive bool
	m           *machine.Machine
	lastCmd     *cmd.Selection
	running     bool
}

// New creates a Host wrapping a freshly wired, unloaded machine.
func New() *Host {
	return &Host{m: machine.New()}
}

// Machine returns the underlying machine, for callers (such as a
// terminal front end) that need direct access to the frame buffer.
func (h *Host) Machine() *machine.Machine {
	return h.m
}

// Break stops a "run" in progress, e.g. from a Ctrl-C handler.
func (h *Host) Break() {
	h.running = false
}

// RunCommands reads commands from r and writes output to w. When
// interactive is true a prompt is displayed before each command.
func (h *Host) RunCommands(r io.Reader, w io.Writer, interactive bool) {
	h.input = bufio.NewScanner(r)
	h.output = bufio.NewWriter(w)
	h.interactive = interactive

	for {
		h.prompt()

		line, err := h.getLine()
		if err != nil {
			break
		}

		var c cmd.Selection
		if line != "" {
			c, err = cmds.Lookup(line)
			switch {
			case errors.Is(err, cmd.ErrNotFound):
				h.println("command not found.")
				continue
			case errors.Is(err, cmd.ErrAmbiguous):
				h.println("command is ambiguous.")
				continue
			case err != nil:
				h.printf("error: %v.\n", err)
				continue
			}
		} else if h.lastCmd != nil {
			c = *h.lastCmd
		}

		if c.Command == nil {
			continue
		}
		h.lastCmd = &c

		handler := c.Command.Data.(func(*Host, cmd.Selection) error)
		if err := handler(h, c); err != nil {
			break
		}
	}

	h.flush()
}

func (h *Host) print(args ...any)                 { fmt.Fprint(h.output, args...); h.flush() }
func (h *Host) printf(format string, args ...any) { fmt.Fprintf(h.output, format, args...); h.flush() }
func (h *Host) println(args ...any)               { fmt.Fprintln(h.output, args...); h.flush() }
func (h *Host) flush()                            { h.output.Flush() }

func (h *Host) getLine() (string, error) {
	if h.input.Scan() {
		return h.input.Text(), nil
	}
	if h.input.Err() != nil {
		return "", h.input.Err()
	}
	return "", io.EOF
}

func (h *Host) prompt() {
	if h.interactive {
		h.printf("* ")
	}
}

func (h *Host) displayHelpText(c *cmd.Command) {
	h.printf("usage: %s\n", c.HelpText)
}

func (h *Host) cmdHelp(c cmd.Selection) error {
	h.println("commands:")
	for _, sub := range cmds.Commands {
		if sub.Brief != "" {
			h.printf("  %-12s %s\n", sub.Name, sub.Brief)
		}
	}
	return nil
}

func (h *Host) cmdLoadROM(c cmd.Selection) error {
	if len(c.Args) < 3 {
		h.displayHelpText(c.Command)
		return nil
	}
	kernal, err := os.ReadFile(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}
	basic, err := os.ReadFile(c.Args[1])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}
	char, err := os.ReadFile(c.Args[2])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}
	if err := h.m.LoadROMs(kernal, basic, char); err != nil {
		h.printf("%v\n", err)
		return nil
	}
	h.println("ROMs loaded.")
	return nil
}

func (h *Host) cmdLoadPRG(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText(c.Command)
		return nil
	}
	data, err := os.ReadFile(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}
	addr, err := h.m.LoadPRG(data)
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}
	h.printf("loaded at $%04X.\n", addr)
	return nil
}

func (h *Host) cmdReset(c cmd.Selection) error {
	h.m.Reset()
	h.displayRegs()
	return nil
}

func (h *Host) cmdRun(c cmd.Selection) error {
	h.running = true
	for h.running {
		if err := h.m.Step(); err != nil {
			h.running = false
			h.println(err.String())
			return nil
		}
	}
	return nil
}

func (h *Host) cmdStep(c cmd.Selection) error {
	count := 1
	if len(c.Args) > 0 {
		n, err := strconv.Atoi(c.Args[0])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		count = n
	}
	for i := 0; i < count; i++ {
		if err := h.m.Step(); err != nil {
			h.println(err.String())
			return nil
		}
	}
	h.displayRegs()
	return nil
}

func (h *Host) cmdRegs(c cmd.Selection) error {
	h.displayRegs()
	return nil
}

func (h *Host) displayRegs() {
	r := h.m.CPU.Reg
	h.printf("A=$%02X X=$%02X Y=$%02X SP=$%02X PC=$%04X cycles=%d\n",
		r.A, r.X, r.Y, r.SP, r.PC, h.m.CPU.Cycles)
}

func (h *Host) cmdPeek(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText(c.Command)
		return nil
	}
	addr, err := parseAddress(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}
	h.printf("$%04X: $%02X\n", addr, h.m.Bus.LoadByte(addr))
	return nil
}

func (h *Host) cmdPoke(c cmd.Selection) error {
	if len(c.Args) < 2 {
		h.displayHelpText(c.Command)
		return nil
	}
	addr, err := parseAddress(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}
	val, err := strconv.ParseUint(c.Args[1], 0, 8)
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}
	h.m.Bus.StoreByte(addr, byte(val))
	return nil
}

func (h *Host) cmdScreenshot(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText(c.Command)
		return nil
	}
	f, err := os.Create(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}
	defer f.Close()

	img := h.frameImage()
	if err := png.Encode(f, img); err != nil {
		h.printf("%v\n", err)
		return nil
	}
	h.printf("wrote %s.\n", c.Args[0])
	return nil
}

// frameImage converts the machine's live RGB frame buffer into an
// image.RGBA snapshot suitable for encoding.
func (h *Host) frameImage() image.Image {
	fb := h.m.FrameBuffer()
	const w, h2 = 405, 284
	img := image.NewRGBA(image.Rect(0, 0, w, h2))
	for y := 0; y < h2; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 3
			j := img.PixOffset(x, y)
			img.Pix[j+0] = fb[i+0]
			img.Pix[j+1] = fb[i+1]
			img.Pix[j+2] = fb[i+2]
			img.Pix[j+3] = 0xff
		}
	}
	return img
}

func (h *Host) cmdQuit(c cmd.Selection) error {
	return errors.New("exiting")
}

func parseAddress(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("host: invalid address %q: %w", s, err)
	}
	return uint16(v), nil
}
