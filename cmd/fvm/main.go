package main

import (
	"fmt"
	"os"

	"github.com/grimdork/climate/arg"
	"github.com/sirupsen/logrus"

	"github.com/Urethramancer/furst/cpu"
	"github.com/Urethramancer/furst/disassembler"
)

func main() {
	opt := arg.New("fvm")
	opt.SetDefaultHelp(true)
	opt.SetOption(arg.GroupDefault, "t", "trace", "Log every executed instruction.", false, false, arg.VarBool, nil)
	opt.SetOption(arg.GroupDefault, "m", "memory", "RAM size in bytes.", cpu.DefaultMemory, false, arg.VarInt, nil)
	opt.SetOption(arg.GroupDefault, "l", "limit", "Stop after this many steps. 0 runs until die.", 0, false, arg.VarInt, nil)
	opt.SetPositional("INPUT", "Binary image to run.", "", true, arg.VarString)

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

	// Refuse images the decoder rejects before running anything.
	img, err := disassembler.Decode(data)
	if err == nil {
		err = img.Validate()
	}
	if err != nil {
		log.WithField("input", in).Error(err)
		os.Exit(1)
	}

	c := cpu.New(opt.GetInt("memory"))
	c.Log = log
	if opt.GetBool("trace") {
		c.Trace = true
		log.SetLevel(logrus.TraceLevel)
	}
	if err := c.LoadImage(data); err != nil {
		log.Error(err)
		os.Exit(1)
	}

	limit := opt.GetInt("limit")
	if limit < 0 {
		limit = 0
	}
	if err := c.Run(uint64(limit)); err != nil {
		log.WithFields(logrus.Fields{"pc": c.PC, "steps": c.Steps}).Error(err)
		os.Exit(1)
	}

	top, err := c.Top()
	if err != nil {
		fmt.Printf("furst-vm ran successfully, %d steps, stack empty\n", c.Steps)
		return
	}
	fmt.Printf("furst-vm ran successfully, %d steps, top of stack: %d\n", c.Steps, top)
}
