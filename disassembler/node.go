package disassembler

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/Urethramancer/furst/cpu"
	"github.com/Urethramancer/furst/fbin"
)

// Image is a decoded binary image.
type Image struct {
	Metadata fbin.Metadata
	// Symbols is nil when the image carries no symbol segment.
	Symbols *fbin.SymbolSegment
	// ProgramOffset is the address of the first instruction.
	ProgramOffset uint32
	Instructions  []Instruction
}

// Instruction is one decoded instruction at its image address.
type Instruction struct {
	Address  uint32
	Op       cpu.Opcode
	Operands []Operand
}

// Size returns the encoded size of the instruction.
func (in Instruction) Size() uint32 {
	return cpu.OpcodeSize + uint32(len(in.Operands))*cpu.WordSize
}

func (in Instruction) String() string {
	if len(in.Operands) == 0 {
		return in.Op.String()
	}
	parts := make([]string, len(in.Operands))
	for i, o := range in.Operands {
		parts[i] = o.String()
	}
	return in.Op.String() + " " + strings.Join(parts, " ")
}

// Operand is a raw 4-byte operand and the kind used to read it.
type Operand struct {
	Kind cpu.SignKind
	Raw  uint32
}

// Value interprets the raw word according to Kind.
func (o Operand) Value() int64 {
	return cpu.OperandValue(o.Raw, o.Kind)
}

// String renders the operand with the literal prefix of its kind.
func (o Operand) String() string {
	switch o.Kind {
	case cpu.Signed:
		return fmt.Sprintf("$%d", o.Value())
	case cpu.Address:
		return fmt.Sprintf("@%d", o.Raw)
	}
	return fmt.Sprintf("%%%d", o.Raw)
}

// InstructionAt returns the instruction starting at addr.
func (img *Image) InstructionAt(addr uint32) (Instruction, bool) {
	lo, hi := 0, len(img.Instructions)
	for lo < hi {
		mid := (lo + hi) / 2
		switch a := img.Instructions[mid].Address; {
		case a == addr:
			return img.Instructions[mid], true
		case a < addr:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return Instruction{}, false
}

// Validate checks that the entry point falls on an instruction boundary.
func (img *Image) Validate() error {
	if _, ok := img.InstructionAt(img.Metadata.Start); !ok {
		return errors.Wrapf(ErrCorrupt, "start address %d is not an instruction boundary", img.Metadata.Start)
	}
	return nil
}
