package assembler_test

import (
	"math/rand"
	"strings"
	"testing"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/Urethramancer/furst/assembler"
	"github.com/Urethramancer/furst/cpu"
)

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		id  string
		err error
	}{
		{"a", nil},
		{"_x", nil},
		{"x1", nil},
		{"main", nil},
		{"macro", nil},
		{"PSH", nil},
		{"ünïcödé", nil},
		{strings.Repeat("a", assembler.MaxIdentLen), nil},
		{strings.Repeat("é", assembler.MaxIdentLen), nil},
		{strings.Repeat("a", assembler.MaxIdentLen+1), assembler.ErrIdentTooLong},
		{"", assembler.ErrIdentTooShort},
		{"1x", assembler.ErrIdentLeadingDigit},
		{"a-b", assembler.ErrIdentIllegalChar},
		{"a:b", assembler.ErrIdentIllegalChar},
		{"add", assembler.ErrIdentReserved},
		{"test_die", assembler.ErrIdentReserved},
		{"macro", assembler.ErrIdentReserved},
	}
	for _, tc := range tests {
		err := assembler.ValidateIdentifier(tc.id)
		if tc.err == nil {
			require.NoError(t, err, tc.id)
			require.True(t, assembler.IsIdentifier(tc.id))
			continue
		}
		require.True(t, errors.Is(err, tc.err), "%q: got %v", tc.id, err)
		require.False(t, assembler.IsIdentifier(tc.id))
	}
}

// Random strings over a mixed alphabet agree with the plain-language rule.
func TestIdentifierRule(t *testing.T) {
	alphabet := []rune("abcxyzAZ_0189-:#%$@ éß")
	mnemonics := []string{"psh", "add", "die", "jmp", "lcont"}
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 5000; i++ {
		var id string
		if i%50 == 0 {
			id = mnemonics[rng.Intn(len(mnemonics))]
		} else {
			n := rng.Intn(assembler.MaxIdentLen + 5)
			var b strings.Builder
			for j := 0; j < n; j++ {
				b.WriteRune(alphabet[rng.Intn(len(alphabet))])
			}
			id = b.String()
		}

		n := utf8.RuneCountInString(id)
		want := n >= 1 && n <= assembler.MaxIdentLen && !cpu.IsMnemonic(id) && id != assembler.MacroKeyword
		for j, r := range id {
			if j == 0 && unicode.IsDigit(r) {
				want = false
			}
			if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				want = false
			}
		}
		require.Equal(t, want, assembler.IsIdentifier(id), "%q", id)
	}
}

func TestParseInteger(t *testing.T) {
	tests := []struct {
		tok   string
		ok    bool
		kind  cpu.SignKind
		value int64
		err   error
	}{
		{"5", true, cpu.NoSign, 5, nil},
		{"%5", true, cpu.Unsigned, 5, nil},
		{"$5", true, cpu.Signed, 5, nil},
		{"$-5", true, cpu.Signed, -5, nil},
		{"$+5", true, cpu.Signed, 5, nil},
		{"-5", true, cpu.Signed, -5, nil},
		{"+5", true, cpu.Signed, 5, nil},
		{"-0", true, cpu.Signed, 0, nil},
		{"@0x10", true, cpu.Address, 16, nil},
		{"0X1f", true, cpu.NoSign, 31, nil},
		{"0xFFFFFFFF", true, cpu.NoSign, 0xFFFFFFFF, nil},
		{"%4294967295", true, cpu.Unsigned, 4294967295, nil},
		{"$-2147483648", true, cpu.Signed, -2147483648, nil},
		{"%4294967296", true, cpu.Unsigned, 4294967296, assembler.ErrOutOfRange},
		{"$2147483648", true, cpu.Signed, 2147483648, assembler.ErrOutOfRange},
		{"$-2147483649", true, cpu.Signed, -2147483649, assembler.ErrOutOfRange},
		{"@-1", false, 0, 0, nil},
		{"99999999999999999999999", true, cpu.NoSign, 1<<63 - 1, assembler.ErrOutOfRange},
		{"%", false, 0, 0, nil},
		{"-", false, 0, 0, nil},
		{"0x", false, 0, 0, nil},
		{"0xg", false, 0, 0, nil},
		{"%-5", false, 0, 0, nil},
		{"abc", false, 0, 0, nil},
		{"12a", false, 0, 0, nil},
		{"", false, 0, 0, nil},
	}
	for _, tc := range tests {
		lit, ok, err := assembler.ParseInteger(tc.tok)
		require.Equal(t, tc.ok, ok, tc.tok)
		if tc.err != nil {
			require.True(t, errors.Is(err, tc.err), "%q: got %v", tc.tok, err)
		} else {
			require.NoError(t, err, tc.tok)
		}
		if ok {
			require.Equal(t, tc.kind, lit.Kind, tc.tok)
			require.Equal(t, tc.value, lit.Value, tc.tok)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		tok  string
		typ  assembler.TokenType
		text string
	}{
		{"#", assembler.TokenComment, "#"},
		{"#main:", assembler.TokenComment, "#main:"},
		{"end:", assembler.TokenLabel, "end"},
		{"macro", assembler.TokenMacro, "macro"},
		{"psh", assembler.TokenMnemonic, "psh"},
		{"%3", assembler.TokenInteger, "%3"},
		{"foo", assembler.TokenIdent, "foo"},
		{"PSH", assembler.TokenIdent, "PSH"},
	}
	for _, tc := range tests {
		tok, err := assembler.Classify(tc.tok)
		require.NoError(t, err, tc.tok)
		require.Equal(t, tc.typ, tok.Type, tc.tok)
		require.Equal(t, tc.text, tok.Text, tc.tok)
	}

	tok, err := assembler.Classify("add")
	require.NoError(t, err)
	require.Equal(t, cpu.OpAdd, tok.Op)

	_, err = assembler.Classify("loop:")
	require.True(t, errors.Is(err, assembler.ErrIdentReserved))
	_, err = assembler.Classify("a-b")
	require.True(t, errors.Is(err, assembler.ErrBadToken))
	require.True(t, errors.Is(err, assembler.ErrIdentIllegalChar))
	_, err = assembler.Classify("macro:")
	require.True(t, errors.Is(err, assembler.ErrIdentReserved))
	_, err = assembler.Classify("%99999999999")
	require.True(t, errors.Is(err, assembler.ErrOutOfRange))
}

func TestTokenize(t *testing.T) {
	require.Equal(t, []string{"main:", "psh", "1"}, assembler.Tokenize("  main:\tpsh 1   # c d"))
	require.Equal(t, []string{"die"}, assembler.Tokenize("die #"))
	require.Empty(t, assembler.Tokenize("#x y"))
	require.Empty(t, assembler.Tokenize("   "))
}
