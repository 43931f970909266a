// Copyright 2018 Brett Vickers.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/beevik/term"

	"github.com/sixfour/c64core/host"
)

var (
	kernalPath string
	basicPath  string
	charPath   string
	prgPath    string
	script     string
)

func init() {
	flag.StringVar(&kernalPath, "kernal", "", "path to the KERNAL ROM image")
	flag.StringVar(&basicPath, "basic", "", "path to the BASIC ROM image")
	flag.StringVar(&charPath, "char", "", "path to the character ROM image")
	flag.StringVar(&prgPath, "prg", "", "optional PRG image to autoload after reset")
	flag.StringVar(&script, "script", "", "file of host commands to run before the interactive prompt")
	flag.CommandLine.Usage = func() {
		fmt.Println("Usage: c64 [-kernal path] [-basic path] [-char path] [-prg path] [-script path]\nOptions:")
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()

	h := host.New()

	var boot strings.Builder
	if kernalPath != "" && basicPath != "" && charPath != "" {
		fmt.Fprintf(&boot, "load rom %s %s %s\nreset\n", kernalPath, basicPath, charPath)
	}
	if prgPath != "" {
		fmt.Fprintf(&boot, "load prg %s\n", prgPath)
	}
	if boot.Len() > 0 {
		h.RunCommands(strings.NewReader(boot.String()), os.Stdout, false)
	}

	if script != "" {
		file, err := os.Open(script)
		if err != nil {
			exitOnError(err)
		}
		h.RunCommands(file, os.Stdout, false)
		file.Close()
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go handleInterrupt(h, c)

	if term.IsTerminal(int(os.Stdin.Fd())) {
		oldState, err := term.MakeRawInput(int(os.Stdin.Fd()))
		if err == nil {
			defer term.Restore(int(os.Stdin.Fd()), oldState)
		}
	}

	h.RunCommands(os.Stdin, os.Stdout, true)
}

func handleInterrupt(h *host.Host, c chan os.Signal) {
	for {
		<-c
		h.Break()
	}
}

func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
