package fbin

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"github.com/Urethramancer/furst/cpu"
)

// ErrBadSymbolSegment is returned for a symbol segment that cannot be parsed.
var ErrBadSymbolSegment = errors.New("malformed symbol segment")

// Symbol is one entry of a serialized label or macro mapping.
type Symbol struct {
	Name  string
	Kind  cpu.SignKind
	Value int64
}

// EntrySize returns the encoded size of s: name length (u16), name
// bytes, kind tag (u8) and a 4-byte value. It depends only on the name,
// so adding an offset to Value never changes it.
func (s Symbol) EntrySize() int {
	return 2 + len(s.Name) + 1 + cpu.WordSize
}

// EncodeSymbols serializes a mapping as a sequence of entries. The entry
// count is implied by the byte length.
func EncodeSymbols(syms []Symbol) ([]byte, error) {
	size := 0
	for _, s := range syms {
		size += s.EntrySize()
	}
	out := make([]byte, 0, size)
	for _, s := range syms {
		if len(s.Name) == 0 || len(s.Name) > math.MaxUint16 {
			return nil, errors.Errorf("symbol name length %d", len(s.Name))
		}
		if !s.Kind.Valid() {
			return nil, errors.Errorf("symbol %q has kind %s", s.Name, s.Kind)
		}
		out = binary.LittleEndian.AppendUint16(out, uint16(len(s.Name)))
		out = append(out, s.Name...)
		out = append(out, byte(s.Kind))
		var err error
		out, err = cpu.AppendOperand(out, s.Kind, s.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "symbol %q", s.Name)
		}
	}
	return out, nil
}

// DecodeSymbols reads entries until b is exhausted.
func DecodeSymbols(b []byte) ([]Symbol, error) {
	var syms []Symbol
	for pos := 0; pos < len(b); {
		if len(b)-pos < 2 {
			return nil, errors.Wrapf(ErrBadSymbolSegment, "entry at %d: truncated name length", pos)
		}
		n := int(binary.LittleEndian.Uint16(b[pos:]))
		pos += 2
		if n == 0 || len(b)-pos < n+1+cpu.WordSize {
			return nil, errors.Wrapf(ErrBadSymbolSegment, "entry at %d: truncated", pos-2)
		}
		name := string(b[pos : pos+n])
		pos += n
		kind := cpu.SignKind(b[pos])
		pos++
		if !kind.Valid() {
			return nil, errors.Wrapf(ErrBadSymbolSegment, "symbol %q: kind tag %d", name, kind)
		}
		_, v := cpu.ReadOperand(b[pos:], kind)
		pos += cpu.WordSize
		syms = append(syms, Symbol{Name: name, Kind: kind, Value: v})
	}
	return syms, nil
}

// SymbolSegment is the decoded optional segment between the metadata and
// the instruction stream.
type SymbolSegment struct {
	Labels []Symbol
	Macros []Symbol
}

// Lookup finds a label, then a macro, by name.
func (s *SymbolSegment) Lookup(name string) (Symbol, bool) {
	for _, l := range s.Labels {
		if l.Name == name {
			return l, true
		}
	}
	for _, m := range s.Macros {
		if m.Name == name {
			return m, true
		}
	}
	return Symbol{}, false
}

// MarshalBinary encodes the three size fields followed by both mappings.
func (s SymbolSegment) MarshalBinary() ([]byte, error) {
	labels, err := EncodeSymbols(s.Labels)
	if err != nil {
		return nil, errors.Wrap(err, "label table")
	}
	macros, err := EncodeSymbols(s.Macros)
	if err != nil {
		return nil, errors.Wrap(err, "macro table")
	}
	total := SymbolHeaderSize + len(labels) + len(macros)
	out := make([]byte, 0, total)
	out = binary.LittleEndian.AppendUint32(out, uint32(total))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(labels)))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(macros)))
	out = append(out, labels...)
	out = append(out, macros...)
	return out, nil
}

// SegmentSize returns the encoded size of s without encoding it.
func (s SymbolSegment) SegmentSize() int {
	n := SymbolHeaderSize
	for _, l := range s.Labels {
		n += l.EntrySize()
	}
	for _, m := range s.Macros {
		n += m.EntrySize()
	}
	return n
}

// ReadSymbolSegment parses a symbol segment at the start of b and returns
// it with the number of bytes it occupies.
func ReadSymbolSegment(b []byte) (*SymbolSegment, int, error) {
	if len(b) < SymbolHeaderSize {
		return nil, 0, errors.Wrap(ErrBadSymbolSegment, "truncated size fields")
	}
	total := int64(binary.LittleEndian.Uint32(b[0:]))
	nl := int64(binary.LittleEndian.Uint32(b[4:]))
	nm := int64(binary.LittleEndian.Uint32(b[8:]))
	if total != SymbolHeaderSize+nl+nm {
		return nil, 0, errors.Wrapf(ErrBadSymbolSegment, "total %d != %d + %d + %d", total, SymbolHeaderSize, nl, nm)
	}
	if total > int64(len(b)) {
		return nil, 0, errors.Wrapf(ErrBadSymbolSegment, "segment of %d bytes, %d available", total, len(b))
	}
	labelEnd := SymbolHeaderSize + nl
	labels, err := DecodeSymbols(b[SymbolHeaderSize:labelEnd])
	if err != nil {
		return nil, 0, errors.Wrap(err, "label table")
	}
	macros, err := DecodeSymbols(b[labelEnd:total])
	if err != nil {
		return nil, 0, errors.Wrap(err, "macro table")
	}
	return &SymbolSegment{Labels: labels, Macros: macros}, int(total), nil
}
