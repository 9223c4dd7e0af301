// Package fbin defines the furst binary image container: a fixed
// metadata segment, an optional symbol segment and the instruction stream.
package fbin

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// .FBIN MEMORY MAP
//
//	0x00                      METADATA (start, program size, flags, date)
//	0x0C                      TOTAL_SYMTAB_SIZE  --
//	0x10                      LABEL_TABLE_SIZE     |
//	0x14                      MACRO_TABLE_SIZE     |-- symbol segment
//	0x18                      LABEL_TABLE          |
//	0x18 + LABEL_TABLE_SIZE   MACRO_TABLE        --
//	0x0C + TOTAL_SYMTAB_SIZE  first instruction
const (
	// MetadataSize is the size of the fixed metadata segment.
	MetadataSize = 12
	// SymbolHeaderSize is the size of the three size fields opening the symbol segment.
	SymbolHeaderSize = 12
	// FlagSymbols marks an image that carries a symbol segment.
	FlagSymbols uint16 = 1 << 0
)

// ErrShortMetadata is returned when fewer than MetadataSize bytes are available.
var ErrShortMetadata = errors.New("metadata segment truncated")

// Metadata is the fixed 12-byte header of every image.
type Metadata struct {
	// Start is the address of the entry point label.
	Start uint32
	// ProgramSize is the byte length of the instruction stream.
	ProgramSize uint32
	Flags       uint16
	Created     Date
}

// HasSymbols reports whether the symbol segment follows the metadata.
func (m Metadata) HasSymbols() bool {
	return m.Flags&FlagSymbols != 0
}

// MarshalBinary encodes the metadata in little-endian order.
func (m Metadata) MarshalBinary() ([]byte, error) {
	b := make([]byte, MetadataSize)
	binary.LittleEndian.PutUint32(b[0:], m.Start)
	binary.LittleEndian.PutUint32(b[4:], m.ProgramSize)
	binary.LittleEndian.PutUint16(b[8:], m.Flags)
	binary.LittleEndian.PutUint16(b[10:], m.Created.Pack())
	return b, nil
}

// UnmarshalBinary decodes the first MetadataSize bytes of b.
func (m *Metadata) UnmarshalBinary(b []byte) error {
	if len(b) < MetadataSize {
		return errors.Wrapf(ErrShortMetadata, "%d of %d bytes", len(b), MetadataSize)
	}
	m.Start = binary.LittleEndian.Uint32(b[0:])
	m.ProgramSize = binary.LittleEndian.Uint32(b[4:])
	m.Flags = binary.LittleEndian.Uint16(b[8:])
	m.Created = UnpackDate(binary.LittleEndian.Uint16(b[10:]))
	return nil
}

// Date is the day-resolution creation stamp stored in the metadata.
type Date struct {
	Year  int
	Month int
	Day   int
}

// DateOf truncates t to a Date.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: int(m), Day: d}
}

// Pack encodes the date as bits 0-4 day, 5-8 month, 9-15 year minus 2000.
// Years outside 2000-2127 are clamped.
func (d Date) Pack() uint16 {
	y := d.Year - 2000
	switch {
	case y < 0:
		y = 0
	case y > 0x7F:
		y = 0x7F
	}
	return uint16(y)<<9 | uint16(d.Month&0xF)<<5 | uint16(d.Day&0x1F)
}

// UnpackDate reverses Pack.
func UnpackDate(v uint16) Date {
	return Date{
		Year:  int(v>>9) + 2000,
		Month: int(v>>5) & 0xF,
		Day:   int(v) & 0x1F,
	}
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}
