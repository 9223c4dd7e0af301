package assembler

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Urethramancer/furst/cpu"
	"github.com/Urethramancer/furst/fbin"
)

// Assembler holds the state for one assembly run. Assemble resets it, so
// an Assembler may be reused sequentially but not shared between goroutines.
type Assembler struct {
	keepSymbols bool
	now         func() time.Time
	log         logrus.FieldLogger

	symbols  *SymbolTable
	program  []*Node
	image    []byte
	nextAddr uint32
	started  bool
	stats    Stats
	// declared maps each symbol to its source line.
	declared map[string]int
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithSymbols selects whether the symbol segment is written to the image.
// Symbols are kept by default.
func WithSymbols(keep bool) Option {
	return func(asm *Assembler) {
		asm.keepSymbols = keep
	}
}

// WithClock sets the source of the creation date stamp.
func WithClock(now func() time.Time) Option {
	return func(asm *Assembler) {
		if now != nil {
			asm.now = now
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l logrus.FieldLogger) Option {
	return func(asm *Assembler) {
		if l != nil {
			asm.log = l
		}
	}
}

// New creates a new Assembler instance.
func New(opts ...Option) *Assembler {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	asm := &Assembler{
		keepSymbols: true,
		now:         time.Now,
		log:         quiet,
	}
	for _, o := range opts {
		o(asm)
	}
	asm.reset()
	return asm
}

func (asm *Assembler) reset() {
	asm.symbols = NewSymbolTable()
	asm.program = nil
	asm.image = nil
	asm.nextAddr = fbin.MetadataSize
	asm.started = false
	asm.declared = make(map[string]int)
	asm.stats = Stats{SymbolsKept: asm.keepSymbols}
}

// Assemble turns source text into a binary image.
func (asm *Assembler) Assemble(src string) ([]byte, error) {
	asm.reset()
	lines := strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")
	for i, line := range lines {
		if err := asm.assembleLine(i+1, line); err != nil {
			return nil, err
		}
	}
	asm.log.WithFields(logrus.Fields{
		"lines":        len(lines),
		"instructions": len(asm.program),
		"labels":       len(asm.symbols.labels),
		"macros":       len(asm.symbols.macros),
	}).Debug("scan complete")
	return asm.build()
}

// assembleLine scans one line, collecting at most one instruction.
func (asm *Assembler) assembleLine(num int, text string) error {
	fields := Tokenize(text)
	var cur *Node

scan:
	for i := 0; i < len(fields); i++ {
		tok := fields[i]
		t, err := Classify(tok)
		if err != nil {
			return syntaxErr(num, tok, err)
		}

		switch t.Type {
		case TokenComment:
			break scan

		case TokenLabel:
			if err := asm.declareLabel(num, t.Text); err != nil {
				return err
			}

		case TokenMacro:
			if cur != nil {
				return semanticErr(num, tok, errors.Wrap(ErrMacroAfterProgram, "macro is a keyword, not an operand"))
			}
			if asm.started {
				return semanticErr(num, tok, ErrMacroAfterProgram)
			}
			n, err := asm.declareMacro(num, fields[i+1:])
			if err != nil {
				return err
			}
			i += n

		case TokenMnemonic:
			if cur != nil {
				return syntaxErr(num, tok, ErrTwoMnemonics)
			}
			cur = &Node{Line: num, Op: t.Op}

		case TokenInteger:
			if cur == nil {
				return syntaxErr(num, tok, ErrNoOperation)
			}
			cur.Operands = append(cur.Operands, Operand{Kind: t.Literal.Kind.Resolve(), Value: t.Literal.Value})

		case TokenIdent:
			if cur == nil {
				return syntaxErr(num, tok, ErrNoOperation)
			}
			cur.Operands = append(cur.Operands, Operand{Ref: t.Text})
		}
	}

	if cur == nil {
		return nil
	}
	return asm.appendNode(cur)
}

func (asm *Assembler) declareLabel(num int, id string) error {
	if err := asm.symbols.DeclareLabel(id, asm.nextAddr); err != nil {
		return semanticErr(num, id, err)
	}
	asm.started = true
	asm.declared[id] = num
	asm.log.WithFields(logrus.Fields{"line": num, "label": id, "address": asm.nextAddr}).Debug("label declared")
	return nil
}

// appendNode checks the operands against the descriptor, places the
// instruction at the running address and advances it.
func (asm *Assembler) appendNode(n *Node) error {
	d, _ := cpu.Lookup(n.Op)
	if len(n.Operands) != d.Operands {
		return syntaxErr(n.Line, n.Op.String(),
			errors.Wrapf(ErrOperandCount, "%s takes %d, got %d", d.Mnemonic, d.Operands, len(n.Operands)))
	}
	for i, o := range n.Operands {
		if !o.Pending() && !d.Permits(i, o.Kind) {
			return semanticErr(n.Line, n.Op.String(),
				errors.Wrapf(ErrOperandKind, "operand %d is %s, %s accepts %s", i+1, o.Kind, d.Mnemonic, d.Kinds[i]))
		}
	}

	n.Address = asm.nextAddr
	asm.nextAddr += d.Size
	asm.program = append(asm.program, n)
	asm.started = true
	asm.stats.Instructions++
	asm.stats.ProgramBytes += d.Size
	return nil
}

// build finalizes the symbol table, resolves pending operands and packs
// metadata, symbol segment and instructions, in that order.
func (asm *Assembler) build() ([]byte, error) {
	if len(asm.program) == 0 {
		return nil, semanticErr(0, "", ErrEmptyProgram)
	}
	if _, ok := asm.symbols.Label(EntryPoint); !ok {
		return nil, semanticErr(0, EntryPoint, ErrMissingEntryPoint)
	}

	seg, err := asm.symbols.Finalize(asm.keepSymbols)
	if err != nil {
		var oe *OverflowError
		if errors.As(err, &oe) {
			return nil, semanticErr(asm.declared[oe.Name], oe.Name, err)
		}
		return nil, encodingErr(err)
	}
	asm.stats.SymbolOffset = asm.symbols.Offset()
	asm.log.WithFields(logrus.Fields{
		"keep":   asm.keepSymbols,
		"offset": asm.symbols.Offset(),
	}).Debug("symbol table finalized")

	if err := asm.resolve(); err != nil {
		return nil, err
	}

	main, _ := asm.symbols.Label(EntryPoint)
	meta := fbin.Metadata{
		Start:       uint32(main.Value),
		ProgramSize: asm.stats.ProgramBytes,
		Created:     fbin.DateOf(asm.now()),
	}
	if asm.keepSymbols {
		meta.Flags |= fbin.FlagSymbols
	}

	out, err := meta.MarshalBinary()
	if err != nil {
		return nil, encodingErr(err)
	}
	out = append(out, seg...)
	asm.stats.MetadataBytes = len(out)

	for _, n := range asm.program {
		out, err = packNode(out, n)
		if err != nil {
			return nil, encodingErr(errors.Wrapf(err, "line %d", n.Line))
		}
	}
	asm.stats.TotalBytes = len(out)
	asm.image = out
	asm.log.WithFields(logrus.Fields{
		"start": meta.Start,
		"bytes": len(out),
	}).Debug("image packed")
	return out, nil
}

// resolve replaces every pending operand with the value of its symbol,
// labels taking precedence over macros.
func (asm *Assembler) resolve() error {
	for _, n := range asm.program {
		d, _ := cpu.Lookup(n.Op)
		for i := range n.Operands {
			o := &n.Operands[i]
			if !o.Pending() {
				continue
			}
			sym, ok := asm.symbols.Resolve(o.Ref)
			if !ok {
				return semanticErr(n.Line, o.Ref, ErrUnresolved)
			}
			if !d.Permits(i, sym.Kind) {
				return semanticErr(n.Line, o.Ref,
					errors.Wrapf(ErrOperandKind, "operand %d is %s, %s accepts %s", i+1, sym.Kind, d.Mnemonic, d.Kinds[i]))
			}
			*o = Operand{Kind: sym.Kind, Value: sym.Value}
		}
	}
	return nil
}

// Program returns the instructions of the last run. After a successful
// run every operand is resolved.
func (asm *Assembler) Program() []*Node {
	return asm.program
}

// Image returns the bytes produced by the last successful run.
func (asm *Assembler) Image() []byte {
	return asm.image
}

// Symbols returns the symbol table of the last run.
func (asm *Assembler) Symbols() *SymbolTable {
	return asm.symbols
}

// AssembleFile assembles the file at in and writes the image to out.
// Nothing is written when assembly fails.
func AssembleFile(in, out string, opts ...Option) (*Assembler, error) {
	src, err := os.ReadFile(in)
	if err != nil {
		return nil, &Error{Kind: IOError, Err: errors.Wrap(err, "reading source")}
	}

	asm := New(opts...)
	code, err := asm.Assemble(string(src))
	if err != nil {
		return asm, err
	}

	if err := writeImage(out, code); err != nil {
		return asm, &Error{Kind: IOError, Err: err}
	}
	return asm, nil
}

func writeImage(path string, code []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating output")
	}
	if _, err := f.Write(code); err != nil {
		f.Close()
		return errors.Wrap(err, "writing output")
	}
	return errors.Wrap(f.Close(), "closing output")
}
