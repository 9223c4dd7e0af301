package disassembler

import (
	"fmt"
	"strings"
)

// addrQueue is a simple worklist queue for addresses to decode.
type addrQueue struct {
	items []uint32
	seen  map[uint32]bool
}

func newQueue() *addrQueue {
	return &addrQueue{seen: make(map[uint32]bool)}
}

func (q *addrQueue) push(addr uint32) {
	if !q.seen[addr] {
		q.items = append(q.items, addr)
		q.seen[addr] = true
	}
}

func (q *addrQueue) pop() (uint32, bool) {
	if len(q.items) == 0 {
		return 0, false
	}
	a := q.items[0]
	q.items = q.items[1:]
	return a, true
}

// labelName generates a label string based on the address and its context.
func labelName(addr uint32, labelType LabelType) string {
	switch labelType {
	case EntryPoint:
		return "main"
	case SubroutineEntry:
		return fmt.Sprintf("sub_%04X", addr)
	}
	return fmt.Sprintf("loc_%04X", addr)
}

// formatHeader renders the metadata and symbol tables as comment lines.
func formatHeader(img *Image) string {
	var b strings.Builder
	m := img.Metadata
	fmt.Fprintf(&b, "# start %d, program %d bytes, created %s\n", m.Start, m.ProgramSize, m.Created)
	if img.Symbols == nil {
		b.WriteString("# no symbols\n\n")
		return b.String()
	}

	fmt.Fprintf(&b, "# %d labels, %d macros\n", len(img.Symbols.Labels), len(img.Symbols.Macros))
	for _, s := range img.Symbols.Macros {
		fmt.Fprintf(&b, "# macro %s %s %d\n", s.Name, s.Kind, s.Value)
	}
	b.WriteByte('\n')
	return b.String()
}

// FormatMetadata renders the metadata and symbol segment as a report.
func FormatMetadata(img *Image) string {
	var b strings.Builder
	m := img.Metadata
	fmt.Fprintf(&b, "start:          %d\n", m.Start)
	fmt.Fprintf(&b, "program size:   %d\n", m.ProgramSize)
	fmt.Fprintf(&b, "flags:          %#04x\n", m.Flags)
	fmt.Fprintf(&b, "created:        %s\n", m.Created)
	fmt.Fprintf(&b, "program offset: %d\n", img.ProgramOffset)
	fmt.Fprintf(&b, "instructions:   %d\n", len(img.Instructions))
	if img.Symbols == nil {
		return b.String()
	}

	fmt.Fprintf(&b, "symbol segment: %d bytes\n", img.Symbols.SegmentSize())
	b.WriteString("\nLABELS\n")
	for _, s := range img.Symbols.Labels {
		fmt.Fprintf(&b, "  %-40s %d\n", s.Name, s.Value)
	}
	b.WriteString("\nMACROS\n")
	for _, s := range img.Symbols.Macros {
		fmt.Fprintf(&b, "  %-40s %-8s %d\n", s.Name, s.Kind, s.Value)
	}
	return b.String()
}

// HexDump renders b with the given number of bytes per row.
func HexDump(b []byte, width int) string {
	if width <= 0 {
		width = 16
	}
	var out strings.Builder
	for off := 0; off < len(b); off += width {
		end := off + width
		if end > len(b) {
			end = len(b)
		}
		fmt.Fprintf(&out, "%08x  % x\n", off, b[off:end])
	}
	return out.String()
}

// HexRowWidth returns how many bytes fit on a HexDump row of the given
// terminal width, in multiples of four. Zero or small widths give 16.
func HexRowWidth(columns int) int {
	n := (columns - 10) / 3
	n -= n % 4
	if n < 4 {
		return 16
	}
	return n
}
