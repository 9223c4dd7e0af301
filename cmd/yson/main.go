package main

import (
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/grimdork/climate/arg"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/Urethramancer/furst/assembler"
	"github.com/Urethramancer/furst/disassembler"
)

const defaultOutput = "yson_output.fbin"

func main() {
	opt := arg.New("yson")
	opt.SetDefaultHelp(true)
	opt.SetOption(arg.GroupDefault, "n", "no-symbols", "Leave the symbol tables out of the image.", false, false, arg.VarBool, nil)
	opt.SetOption(arg.GroupDefault, "s", "silent", "Don't print the summary.", false, false, arg.VarBool, nil)
	opt.SetOption(arg.GroupDefault, "d", "disassemble", "Print a listing of the image.", false, false, arg.VarBool, nil)
	opt.SetOption(arg.GroupDefault, "x", "hex", "Print a hex dump of the image.", false, false, arg.VarBool, nil)
	opt.SetOption(arg.GroupDefault, "D", "dump", "Dump the program and symbol tables.", false, false, arg.VarBool, nil)
	opt.SetOption(arg.GroupDefault, "v", "verbose", "Log each assembly phase.", false, false, arg.VarBool, nil)
	opt.SetPositional("INPUT", "Assembly source file.", "", true, arg.VarString)
	opt.SetPositional("OUTPUT", "Binary image to write.", defaultOutput, false, arg.VarString)

	err := opt.Parse(os.Args)
	if err != nil {
		if err == arg.ErrNoArgs {
			opt.PrintHelp()
			return
		}

		fmt.Fprintf(os.Stderr, "Error parsing arguments: %s\n", err)
		os.Exit(2)
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if opt.GetBool("verbose") {
		log.SetLevel(logrus.DebugLevel)
	}

	in := opt.GetPosString("INPUT")
	out := opt.GetPosString("OUTPUT")
	if out == "" {
		out = defaultOutput
	}

	asm, err := assembler.AssembleFile(in, out,
		assembler.WithSymbols(!opt.GetBool("no-symbols")),
		assembler.WithLogger(log),
	)
	if err != nil {
		log.WithField("input", in).Error(err)
		os.Exit(1)
	}

	if opt.GetBool("dump") {
		spew.Dump(asm.Program(), asm.Symbols().Labels(), asm.Symbols().Macros())
	}

	if opt.GetBool("disassemble") {
		listing, err := disassembler.Disassemble(asm.Image())
		if err != nil {
			log.Error(err)
			os.Exit(1)
		}
		fmt.Print(listing)
	}

	if opt.GetBool("hex") {
		fmt.Print(disassembler.HexDump(asm.Image(), rowWidth()))
	}

	if !opt.GetBool("silent") {
		fmt.Print(asm.Stats().Summary(in, out))
	}
}

func rowWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 16
	}
	w, _, err := term.GetSize(fd)
	if err != nil {
		return 16
	}
	return disassembler.HexRowWidth(w)
}
