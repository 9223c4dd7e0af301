package assembler

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/Urethramancer/furst/cpu"
)

// Grammar constants.
const (
	MinIdentLen    = 1
	MaxIdentLen    = 40
	EntryPoint     = "main"
	MacroKeyword   = "macro"
	LabelSuffix    = ":"
	CommentPrefix  = "#"
	UnsignedPrefix = '%'
	SignedPrefix   = '$'
	AddressPrefix  = '@'
	hexBodyPrefix  = "0x"
)

// ValidateIdentifier returns nil if id is a legal label or macro name,
// otherwise the reason it is not.
func ValidateIdentifier(id string) error {
	n := utf8.RuneCountInString(id)
	if n < MinIdentLen {
		return ErrIdentTooShort
	}
	if n > MaxIdentLen {
		return ErrIdentTooLong
	}
	first, _ := utf8.DecodeRuneInString(id)
	if unicode.IsDigit(first) {
		return ErrIdentLeadingDigit
	}
	for _, r := range id {
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return ErrIdentIllegalChar
		}
	}
	if id == MacroKeyword || cpu.IsMnemonic(id) {
		return ErrIdentReserved
	}
	return nil
}

// IsIdentifier reports whether id is a legal label or macro name.
func IsIdentifier(id string) bool {
	return ValidateIdentifier(id) == nil
}

// Literal is a parsed integer token.
type Literal struct {
	Kind  cpu.SignKind
	Value int64
}

// ParseInteger parses a decimal or hexadecimal literal with an optional
// sign-kind prefix:
//
//	%  unsigned
//	$  signed (the body may carry its own sign)
//	+  signed
//	-  signed, negated
//	@  address
//
// Without a prefix the kind is NoSign, which resolves to unsigned. The
// body is decimal, or hexadecimal when it starts with 0x. ok is false when
// the token is not an integer at all; err is set when it is one but does
// not fit a 4-byte operand of its kind.
func ParseInteger(tok string) (lit Literal, ok bool, err error) {
	if tok == "" {
		return Literal{}, false, nil
	}

	kind := cpu.NoSign
	body := tok
	negate := false
	switch tok[0] {
	case UnsignedPrefix:
		kind, body = cpu.Unsigned, tok[1:]
	case SignedPrefix:
		kind, body = cpu.Signed, tok[1:]
		if body != "" && (body[0] == '-' || body[0] == '+') {
			negate = body[0] == '-'
			body = body[1:]
		}
	case '+':
		kind, body = cpu.Signed, tok[1:]
	case '-':
		kind, body, negate = cpu.Signed, tok[1:], true
	case AddressPrefix:
		kind, body = cpu.Address, tok[1:]
	}

	v, ok := parseBody(body)
	if !ok {
		return Literal{}, false, nil
	}
	if negate {
		v = -v
	}
	lit = Literal{Kind: kind, Value: v}
	if !cpu.FitsOperand(kind, v) {
		return lit, true, errors.Wrapf(ErrOutOfRange, "%d does not fit a %s operand", v, kind.Resolve())
	}
	return lit, true, nil
}

// parseBody parses an unsigned decimal or 0x-prefixed hexadecimal number.
// Values beyond 64 bits are reported as the largest int64 so range
// checks fail instead of the token being treated as an identifier.
func parseBody(s string) (int64, bool) {
	base := 10
	digits := s
	if strings.HasPrefix(strings.ToLower(s), hexBodyPrefix) {
		base = 16
		digits = s[len(hexBodyPrefix):]
	}
	if digits == "" {
		return 0, false
	}
	for _, r := range digits {
		if !isDigit(r, base) {
			return 0, false
		}
	}
	v, err := strconv.ParseUint(digits, base, 64)
	if err != nil || v > 1<<63-1 {
		return 1<<63 - 1, true
	}
	return int64(v), true
}

func isDigit(r rune, base int) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case base == 16 && r >= 'a' && r <= 'f':
		return true
	case base == 16 && r >= 'A' && r <= 'F':
		return true
	}
	return false
}

// TokenType is the lexical class of a source token.
type TokenType int

const (
	// TokenComment starts a comment running to the end of the line.
	TokenComment TokenType = iota
	// TokenLabel declares a label; Text holds the name without the suffix.
	TokenLabel
	// TokenMacro is the macro keyword.
	TokenMacro
	// TokenMnemonic names an instruction.
	TokenMnemonic
	// TokenInteger is an integer literal.
	TokenInteger
	// TokenIdent is a reference to a label or macro.
	TokenIdent
)

// Token is one classified source token.
type Token struct {
	Type    TokenType
	Text    string
	Op      cpu.Opcode
	Literal Literal
}

// Tokenize splits a source line on whitespace and drops everything from
// the first comment token on.
func Tokenize(line string) []string {
	fields := strings.Fields(line)
	for i, f := range fields {
		if strings.HasPrefix(f, CommentPrefix) {
			return fields[:i]
		}
	}
	return fields
}

// Classify determines the lexical class of a single token, checking in
// order: comment, label declaration, macro keyword, mnemonic, integer,
// identifier. Context rules (what may follow what) are the caller's job.
func Classify(tok string) (Token, error) {
	switch {
	case strings.HasPrefix(tok, CommentPrefix):
		return Token{Type: TokenComment, Text: tok}, nil

	case strings.HasSuffix(tok, LabelSuffix):
		id := strings.TrimSuffix(tok, LabelSuffix)
		if err := ValidateIdentifier(id); err != nil {
			return Token{}, err
		}
		return Token{Type: TokenLabel, Text: id}, nil

	case tok == MacroKeyword:
		return Token{Type: TokenMacro, Text: tok}, nil
	}

	if op, ok := cpu.ByMnemonic(tok); ok {
		return Token{Type: TokenMnemonic, Text: tok, Op: op}, nil
	}

	lit, ok, err := ParseInteger(tok)
	if err != nil {
		return Token{}, err
	}
	if ok {
		return Token{Type: TokenInteger, Text: tok, Literal: lit}, nil
	}

	if err := ValidateIdentifier(tok); err != nil {
		return Token{}, badToken{reason: err}
	}
	return Token{Type: TokenIdent, Text: tok}, nil
}
