package main

import (
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/grimdork/climate/arg"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/Urethramancer/furst/disassembler"
)

func main() {
	opt := arg.New("disfbin")
	opt.SetDefaultHelp(true)
	opt.SetOption(arg.GroupDefault, "m", "metadata", "Only print the metadata and symbol tables.", false, false, arg.VarBool, nil)
	opt.SetOption(arg.GroupDefault, "x", "hex", "Append a hex dump of the image.", false, false, arg.VarBool, nil)
	opt.SetOption(arg.GroupDefault, "D", "dump", "Dump the decoded image.", false, false, arg.VarBool, nil)
	opt.SetPositional("INPUT", "Binary image to read.", "", true, arg.VarString)
	opt.SetPositional("OUTPUT", "File for the listing. Standard output if omitted.", "", false, arg.VarString)

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

	in := opt.GetPosString("INPUT")
	data, err := os.ReadFile(in)
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}

	img, err := disassembler.Decode(data)
	if err != nil {
		log.WithField("input", in).Error(err)
		os.Exit(1)
	}
	if err := img.Validate(); err != nil {
		log.WithField("input", in).Warn(err)
	}

	if opt.GetBool("dump") {
		spew.Dump(img)
		return
	}

	var text string
	if opt.GetBool("metadata") {
		text = disassembler.FormatMetadata(img)
	} else {
		text = disassembler.Listing(img)
	}
	if opt.GetBool("hex") {
		text += "\n" + disassembler.HexDump(data, rowWidth())
	}

	out := opt.GetPosString("OUTPUT")
	if out == "" {
		fmt.Print(text)
		return
	}
	if err := os.WriteFile(out, []byte(text), 0o644); err != nil {
		log.Error(err)
		os.Exit(1)
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
