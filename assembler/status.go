package assembler

import (
	"fmt"
	"strings"
)

// Stats describes the output of the last assembly run.
type Stats struct {
	Instructions int
	// ProgramBytes is the size of the instruction stream.
	ProgramBytes uint32
	// MetadataBytes counts the metadata block and the symbol segment.
	MetadataBytes int
	TotalBytes    int
	SymbolsKept   bool
	// SymbolOffset is how far addresses moved to make room for symbols.
	SymbolOffset uint32
}

// Stats returns the statistics of the last run.
func (asm *Assembler) Stats() Stats {
	return asm.stats
}

// Summary formats the stats as a report for the terminal.
func (s Stats) Summary(in, out string) string {
	keep := "no"
	if s.SymbolsKept {
		keep = "yes"
	}

	var b strings.Builder
	b.WriteString("Assembly successful\n")
	b.WriteString("-------------------\n")
	fmt.Fprintf(&b, "symbols included:  %s\n", keep)
	fmt.Fprintf(&b, "input:             %s\n", in)
	fmt.Fprintf(&b, "output:            %s\n", out)
	fmt.Fprintf(&b, "program bytes:     %d\n", s.ProgramBytes)
	fmt.Fprintf(&b, "metadata bytes:    %d\n", s.MetadataBytes)
	fmt.Fprintf(&b, "total bytes:       %d\n", s.TotalBytes)
	fmt.Fprintf(&b, "instructions:      %d\n", s.Instructions)
	return b.String()
}
