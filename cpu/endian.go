package cpu

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// ErrOperandRange is returned when a value does not fit a 4-byte operand of its kind.
var ErrOperandRange = errors.New("value out of range for operand")

// FitsOperand reports whether value can be encoded as a 4-byte operand of the given kind.
func FitsOperand(kind SignKind, value int64) bool {
	switch kind.Resolve() {
	case Signed:
		return value >= math.MinInt32 && value <= math.MaxInt32
	case Unsigned, Address:
		return value >= 0 && value <= math.MaxUint32
	}
	return false
}

// PutOperand writes value into dst[0:4] in little-endian order: two's
// complement for Signed, plain unsigned for Unsigned and Address.
func PutOperand(dst []byte, kind SignKind, value int64) error {
	if len(dst) < WordSize {
		return errors.Errorf("operand buffer is %d bytes", len(dst))
	}
	if !FitsOperand(kind, value) {
		return errors.Wrapf(ErrOperandRange, "%d as %s", value, kind.Resolve())
	}
	if kind.Resolve() == Signed {
		binary.LittleEndian.PutUint32(dst, uint32(int32(value)))
		return nil
	}
	binary.LittleEndian.PutUint32(dst, uint32(value))
	return nil
}

// AppendOperand appends the 4-byte encoding of value to dst.
func AppendOperand(dst []byte, kind SignKind, value int64) ([]byte, error) {
	var buf [WordSize]byte
	if err := PutOperand(buf[:], kind, value); err != nil {
		return dst, err
	}
	return append(dst, buf[:]...), nil
}

// OperandValue interprets a raw 32-bit word according to kind.
func OperandValue(raw uint32, kind SignKind) int64 {
	if kind.Resolve() == Signed {
		return int64(int32(raw))
	}
	return int64(raw)
}

// ReadOperand reads a 4-byte little-endian operand from src.
// The caller checks the length.
func ReadOperand(src []byte, kind SignKind) (uint32, int64) {
	raw := binary.LittleEndian.Uint32(src)
	return raw, OperandValue(raw, kind)
}
