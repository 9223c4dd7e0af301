package disassembler

import (
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/Urethramancer/furst/cpu"
	"github.com/Urethramancer/furst/fbin"
)

// Decoding failures.
var (
	ErrTruncated     = errors.New("image truncated")
	ErrUnknownOpcode = errors.New("unknown opcode")
	ErrCorrupt       = errors.New("image corrupt")
)

// imageError matches a decoding sentinel and unwraps to the format error
// underneath it.
type imageError struct {
	kind  error
	cause error
}

func (e imageError) Error() string {
	return fmt.Sprintf("%v: %v", e.kind, e.cause)
}

func (e imageError) Is(target error) bool {
	return target == e.kind
}

func (e imageError) Unwrap() error {
	return e.cause
}

// Decode parses a complete binary image. Operands are read as unsigned
// unless the instruction only accepts signed values in that position, so
// the raw words always match what was written.
func Decode(b []byte) (*Image, error) {
	img := &Image{}
	if err := img.Metadata.UnmarshalBinary(b); err != nil {
		return nil, imageError{kind: ErrTruncated, cause: err}
	}

	pos := fbin.MetadataSize
	if img.Metadata.HasSymbols() {
		seg, n, err := readSymbols(b[pos:])
		if err != nil {
			return nil, err
		}
		img.Symbols = seg
		pos += n
	}
	img.ProgramOffset = uint32(pos)

	program := b[pos:]
	if uint32(len(program)) < img.Metadata.ProgramSize {
		return nil, errors.Wrapf(ErrTruncated, "program size is %d, metadata says %d", len(program), img.Metadata.ProgramSize)
	}
	if uint32(len(program)) != img.Metadata.ProgramSize {
		return nil, errors.Wrapf(ErrCorrupt, "program size is %d, metadata says %d", len(program), img.Metadata.ProgramSize)
	}

	for pc := 0; pc < len(program); {
		addr := uint32(pos + pc)
		op := cpu.Opcode(program[pc])
		d, ok := cpu.Lookup(op)
		if !ok {
			return nil, errors.Wrapf(ErrUnknownOpcode, "%d at address %d", op, addr)
		}
		if pc+int(d.Size) > len(program) {
			return nil, errors.Wrapf(ErrTruncated, "%s at address %d needs %d bytes, %d left", d.Mnemonic, addr, d.Size, len(program)-pc)
		}

		in := Instruction{Address: addr, Op: op}
		for i := 0; i < d.Operands; i++ {
			kind := d.DecodeKind(i)
			raw, _ := cpu.ReadOperand(program[pc+cpu.OpcodeSize+i*cpu.WordSize:], kind)
			in.Operands = append(in.Operands, Operand{Kind: kind, Raw: raw})
		}
		img.Instructions = append(img.Instructions, in)
		pc += int(d.Size)
	}
	return img, nil
}

// readSymbols separates a segment that runs past the end of the image
// from one whose size fields disagree.
func readSymbols(b []byte) (*fbin.SymbolSegment, int, error) {
	if len(b) < fbin.SymbolHeaderSize {
		return nil, 0, errors.Wrap(ErrTruncated, "symbol segment header")
	}
	seg, n, err := fbin.ReadSymbolSegment(b)
	if err != nil {
		return nil, 0, imageError{kind: ErrCorrupt, cause: err}
	}
	return seg, n, nil
}

// DecodeFile reads and decodes the image at path.
func DecodeFile(path string) (*Image, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading image")
	}
	return Decode(b)
}
