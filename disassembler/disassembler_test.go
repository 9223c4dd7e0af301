package disassembler_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/Urethramancer/furst/assembler"
	"github.com/Urethramancer/furst/cpu"
	"github.com/Urethramancer/furst/disassembler"
	"github.com/Urethramancer/furst/fbin"
)

const roundTripSource = `
macro LIMIT @100
macro COUNT 3
macro NEG $-5

main:	psh NEG
	psh COUNT
	setr LIMIT -1
	loop COUNT body done
body:	inc
	lcont
done:	call fn
	jls main
	die
fn:	pshfr @0
	ret
`

func rawOf(o assembler.Operand) uint32 {
	if o.Kind == cpu.Signed {
		return uint32(int32(o.Value))
	}
	return uint32(o.Value)
}

func TestRoundTrip(t *testing.T) {
	for _, keep := range []bool{false, true} {
		asm := assembler.New(assembler.WithSymbols(keep))
		code, err := asm.Assemble(roundTripSource)
		require.NoError(t, err)

		img, err := disassembler.Decode(code)
		require.NoError(t, err)
		require.NoError(t, img.Validate())

		main, ok := asm.Symbols().Label("main")
		require.True(t, ok)
		require.EqualValues(t, main.Value, img.Metadata.Start)
		require.Equal(t, asm.Stats().ProgramBytes, img.Metadata.ProgramSize)
		require.Equal(t, keep, img.Metadata.HasSymbols())
		require.EqualValues(t, asm.Stats().MetadataBytes, img.ProgramOffset)

		if keep {
			require.NotNil(t, img.Symbols)
			require.Equal(t, asm.Symbols().Labels(), img.Symbols.Labels)
			require.Equal(t, asm.Symbols().Macros(), img.Symbols.Macros)
		} else {
			require.Nil(t, img.Symbols)
		}

		prog := asm.Program()
		require.Len(t, img.Instructions, len(prog))
		for i, n := range prog {
			in := img.Instructions[i]
			require.Equal(t, n.Op, in.Op)
			require.Equal(t, n.Address+asm.Stats().SymbolOffset, in.Address)
			require.Len(t, in.Operands, len(n.Operands))
			for j, o := range n.Operands {
				require.Equal(t, rawOf(o), in.Operands[j].Raw, "%s operand %d", n, j)
			}
		}
	}
}

func TestOperandValue(t *testing.T) {
	require.EqualValues(t, -1, disassembler.Operand{Kind: cpu.Signed, Raw: 0xFFFFFFFF}.Value())
	require.EqualValues(t, 0xFFFFFFFF, disassembler.Operand{Kind: cpu.Unsigned, Raw: 0xFFFFFFFF}.Value())
	require.Equal(t, "$-1", disassembler.Operand{Kind: cpu.Signed, Raw: 0xFFFFFFFF}.String())
	require.Equal(t, "%7", disassembler.Operand{Kind: cpu.Unsigned, Raw: 7}.String())
	require.Equal(t, "@7", disassembler.Operand{Kind: cpu.Address, Raw: 7}.String())
}

func image(t *testing.T, m fbin.Metadata, rest ...[]byte) []byte {
	t.Helper()
	b, err := m.MarshalBinary()
	require.NoError(t, err)
	for _, r := range rest {
		b = append(b, r...)
	}
	return b
}

func TestDecodeErrors(t *testing.T) {
	seg, err := fbin.SymbolSegment{Labels: []fbin.Symbol{{Name: "main", Kind: cpu.Address, Value: 35}}}.MarshalBinary()
	require.NoError(t, err)
	badSeg := append([]byte(nil), seg...)
	badSeg[0]++

	withSyms := fbin.Metadata{Start: 35, ProgramSize: 1, Flags: fbin.FlagSymbols}
	plain := fbin.Metadata{Start: 12, ProgramSize: 1}

	tests := []struct {
		name string
		b    []byte
		err  error
	}{
		{"Empty", nil, disassembler.ErrTruncated},
		{"ShortMetadata", make([]byte, 11), disassembler.ErrTruncated},
		{"ShortSymbolHeader", image(t, withSyms, []byte{1, 2, 3}), disassembler.ErrTruncated},
		{"BadSymbolTotal", image(t, withSyms, badSeg, []byte{0}), disassembler.ErrCorrupt},
		{"ProgramShorter", image(t, fbin.Metadata{Start: 12, ProgramSize: 6}, []byte{0}), disassembler.ErrTruncated},
		{"ProgramLonger", image(t, plain, []byte{0, 0}), disassembler.ErrCorrupt},
		{"UnknownOpcode", image(t, plain, []byte{0xFF}), disassembler.ErrUnknownOpcode},
		{"BrkpIsUnknown", image(t, plain, []byte{60}), disassembler.ErrUnknownOpcode},
		{"TruncatedOperand", image(t, fbin.Metadata{Start: 12, ProgramSize: 3}, []byte{byte(cpu.OpPsh), 5, 0}), disassembler.ErrTruncated},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := disassembler.Decode(tc.b)
			require.True(t, errors.Is(err, tc.err), "got %v", err)
		})
	}

	_, err = disassembler.Decode(make([]byte, 11))
	require.True(t, errors.Is(err, fbin.ErrShortMetadata))
	_, err = disassembler.Decode(image(t, withSyms, badSeg, []byte{0}))
	require.True(t, errors.Is(err, fbin.ErrBadSymbolSegment))

	img, err := disassembler.Decode(image(t, withSyms, seg, []byte{0}))
	require.NoError(t, err)
	require.NoError(t, img.Validate())
}

func TestValidate(t *testing.T) {
	b := image(t, fbin.Metadata{Start: 13, ProgramSize: 6}, []byte{byte(cpu.OpPsh), 1, 0, 0, 0, 0})
	img, err := disassembler.Decode(b)
	require.NoError(t, err)
	require.True(t, errors.Is(img.Validate(), disassembler.ErrCorrupt))

	in, ok := img.InstructionAt(17)
	require.True(t, ok)
	require.Equal(t, cpu.OpDie, in.Op)
	_, ok = img.InstructionAt(13)
	require.False(t, ok)
}

func TestListing(t *testing.T) {
	src := "main: jmp end\n nop\nend: call fn\n die\nfn: ret"

	code, err := assembler.New(assembler.WithSymbols(false)).Assemble(src)
	require.NoError(t, err)
	text, err := disassembler.Disassemble(code)
	require.NoError(t, err)
	require.Contains(t, text, "# no symbols")
	require.Contains(t, text, "main:\n    jmp      loc_0012\n")
	require.Contains(t, text, "# unreachable")
	require.Contains(t, text, "loc_0012:\n    call     sub_0018\n")
	require.Contains(t, text, "sub_0018:\n    ret\n")

	code, err = assembler.New().Assemble(src)
	require.NoError(t, err)
	text, err = disassembler.Disassemble(code)
	require.NoError(t, err)
	require.Contains(t, text, "# 3 labels, 0 macros")
	require.Contains(t, text, "main:\n    jmp      end\n")
	require.Contains(t, text, "end:\n    call     fn\n")
	require.NotContains(t, text, "loc_")
}

func TestListingSignedReading(t *testing.T) {
	code, err := assembler.New().Assemble("macro NEG $-5\nmain: psh NEG\n psh 7\n die")
	require.NoError(t, err)
	text, err := disassembler.Disassemble(code)
	require.NoError(t, err)
	require.Contains(t, text, "    psh      %4294967291")
	require.Contains(t, text, "# $-5\n")
	require.Contains(t, text, "    psh      %7\n")
}

func TestFormatMetadata(t *testing.T) {
	code, err := assembler.New().Assemble("macro N 4\nmain: psh N\n die")
	require.NoError(t, err)
	img, err := disassembler.Decode(code)
	require.NoError(t, err)

	text := disassembler.FormatMetadata(img)
	require.Contains(t, text, "flags:          0x0001")
	require.Contains(t, text, "instructions:   2")
	require.Contains(t, text, "MACROS\n  N")
}

func TestHexDump(t *testing.T) {
	require.Equal(t, "00000000  00 01 02 03\n00000004  04\n", disassembler.HexDump([]byte{0, 1, 2, 3, 4}, 4))
	require.Equal(t, 16, disassembler.HexRowWidth(0))
	require.Equal(t, 20, disassembler.HexRowWidth(80))
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "prog.ys")
	out := filepath.Join(dir, "prog.fbin")
	require.NoError(t, os.WriteFile(src, []byte("main: psh 1\n die\n"), 0o644))

	asm, err := assembler.AssembleFile(src, out)
	require.NoError(t, err)
	require.EqualValues(t, 2, asm.Stats().Instructions)

	img, err := disassembler.DecodeFile(out)
	require.NoError(t, err)
	require.Len(t, img.Instructions, 2)
	require.True(t, img.Metadata.HasSymbols())

	_, err = assembler.AssembleFile(filepath.Join(dir, "missing.ys"), out)
	require.Equal(t, assembler.IOError, assembler.KindOf(err))

	_, err = assembler.AssembleFile(src, filepath.Join(dir, "no", "such", "dir.fbin"))
	require.Equal(t, assembler.IOError, assembler.KindOf(err))

	bad := filepath.Join(dir, "bad.ys")
	require.NoError(t, os.WriteFile(bad, []byte("start: die\n"), 0o644))
	_, err = assembler.AssembleFile(bad, filepath.Join(dir, "bad.fbin"))
	require.Equal(t, assembler.SemanticError, assembler.KindOf(err))
	_, err = os.Stat(filepath.Join(dir, "bad.fbin"))
	require.True(t, os.IsNotExist(err))

	_, err = disassembler.DecodeFile(filepath.Join(dir, "missing.fbin"))
	require.Error(t, err)
}
