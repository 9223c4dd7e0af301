package cpu

import "strings"

// SignKind tags how a 4-byte operand value is written and read.
type SignKind uint8

// The numeric values are the tags stored in the symbol segment.
const (
	// KindInvalid is the zero value and never appears in a valid image.
	KindInvalid SignKind = iota
	// Signed values are two's complement.
	Signed
	// Unsigned values are plain 32-bit words.
	Unsigned
	// NoSign is the parse-time state of a literal without a prefix.
	// It resolves to Unsigned before anything is encoded.
	NoSign
	// Address values are unsigned and get relocated by the symbol segment size.
	Address
)

var kindNames = map[SignKind]string{
	Signed:   "signed",
	Unsigned: "unsigned",
	NoSign:   "nosign",
	Address:  "address",
}

// String returns the lower-case name of the kind.
func (k SignKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "invalid"
}

// Resolve collapses NoSign to Unsigned.
func (k SignKind) Resolve() SignKind {
	if k == NoSign {
		return Unsigned
	}
	return k
}

// Valid reports whether k may appear in an encoded image.
func (k SignKind) Valid() bool {
	return k == Signed || k == Unsigned || k == Address
}

// KindSet is a small bit set of sign kinds.
type KindSet uint8

// Kinds builds a set from the given kinds.
func Kinds(kinds ...SignKind) KindSet {
	var s KindSet
	for _, k := range kinds {
		s |= 1 << k
	}
	return s
}

// Has reports whether k is in the set.
func (s KindSet) Has(k SignKind) bool {
	return s&(1<<k) != 0
}

// Len returns the number of kinds in the set.
func (s KindSet) Len() int {
	n := 0
	for k := Signed; k <= Address; k++ {
		if s.Has(k) {
			n++
		}
	}
	return n
}

// String lists the set members separated by '|'.
func (s KindSet) String() string {
	var parts []string
	for k := Signed; k <= Address; k++ {
		if s.Has(k) {
			parts = append(parts, k.String())
		}
	}
	return strings.Join(parts, "|")
}
