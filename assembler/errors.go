package assembler

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies an assembly failure.
type Kind int

const (
	// SyntaxError is a malformed token or line.
	SyntaxError Kind = iota + 1
	// SemanticError is a well-formed program that breaks a symbol or entry point rule.
	SemanticError
	// EncodingError is an internal failure while packing bytes.
	EncodingError
	// IOError is a failure to read the source or write the image.
	IOError
)

func (k Kind) String() string {
	switch k {
	case SyntaxError:
		return "syntax error"
	case SemanticError:
		return "semantic error"
	case EncodingError:
		return "encoding error"
	case IOError:
		return "i/o error"
	}
	return "error"
}

// Identifier rejection reasons.
var (
	ErrIdentTooShort     = errors.New("identifier too short")
	ErrIdentTooLong      = errors.New("identifier too long")
	ErrIdentLeadingDigit = errors.New("identifier starts with a digit")
	ErrIdentIllegalChar  = errors.New("identifier contains an illegal character")
	ErrIdentReserved     = errors.New("identifier is a reserved word")
)

// Syntax errors.
var (
	ErrBadToken     = errors.New("unrecognised token")
	ErrTwoMnemonics = errors.New("only one instruction per line")
	ErrNoOperation  = errors.New("operand has no instruction")
	ErrMacroSyntax  = errors.New("macro declaration needs an identifier and an integer")
	ErrOperandCount = errors.New("wrong number of operands")
	ErrOutOfRange   = errors.New("integer out of range")
)

// badToken matches ErrBadToken and unwraps to the identifier reason.
type badToken struct {
	reason error
}

func (b badToken) Error() string {
	return fmt.Sprintf("%v: %v", ErrBadToken, b.reason)
}

func (b badToken) Is(target error) bool {
	return target == ErrBadToken
}

func (b badToken) Unwrap() error {
	return b.reason
}

// Semantic errors.
var (
	ErrDuplicateLabel    = errors.New("label already declared")
	ErrDuplicateMacro    = errors.New("macro already declared")
	ErrSymbolClash       = errors.New("identifier already used by another symbol")
	ErrMacroAfterProgram = errors.New("macros must be declared before the first label or instruction")
	ErrMissingEntryPoint = errors.New("missing entry point: no main label declared")
	ErrUnresolved        = errors.New("unresolved identifier")
	ErrOperandKind       = errors.New("operand sign kind not permitted")
	ErrEmptyProgram      = errors.New("no program data to assemble")
	ErrAddressOverflow   = errors.New("address does not fit 32 bits once the symbol segment is placed")
)

// OverflowError names the symbol that relocation pushed out of range.
type OverflowError struct {
	Name  string
	Value int64
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("symbol %q at %d: %v", e.Name, e.Value, ErrAddressOverflow)
}

func (e *OverflowError) Is(target error) bool {
	return target == ErrAddressOverflow
}

// Error is the error type returned by Assemble.
type Error struct {
	Kind Kind
	// Line is the 1-based source line, or 0 when the error is not tied to one.
	Line  int
	Token string
	Err   error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Line > 0 {
		msg = fmt.Sprintf("%s on line %d", msg, e.Line)
	}
	if e.Token != "" {
		msg = fmt.Sprintf("%s: [%s]", msg, e.Token)
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

func syntaxErr(line int, tok string, err error) *Error {
	return &Error{Kind: SyntaxError, Line: line, Token: tok, Err: err}
}

func semanticErr(line int, tok string, err error) *Error {
	return &Error{Kind: SemanticError, Line: line, Token: tok, Err: err}
}

func encodingErr(err error) *Error {
	return &Error{Kind: EncodingError, Err: err}
}

// KindOf returns the Kind of an assembly error, or 0 if err is not one.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
