package assembler

import (
	"math"

	"github.com/pkg/errors"

	"github.com/Urethramancer/furst/cpu"
	"github.com/Urethramancer/furst/fbin"
)

// SymbolTable owns the labels and macros of one assembly run. Both
// mappings keep declaration order so serialization is deterministic.
type SymbolTable struct {
	labels     []fbin.Symbol
	macros     []fbin.Symbol
	labelIndex map[string]int
	macroIndex map[string]int

	offset    uint32
	segment   []byte
	finalized bool
}

// NewSymbolTable returns an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		labelIndex: make(map[string]int),
		macroIndex: make(map[string]int),
	}
}

// DeclareLabel binds id to a provisional address.
func (st *SymbolTable) DeclareLabel(id string, addr uint32) error {
	if _, ok := st.labelIndex[id]; ok {
		return ErrDuplicateLabel
	}
	if _, ok := st.macroIndex[id]; ok {
		return errors.Wrap(ErrSymbolClash, "already a macro")
	}
	st.labelIndex[id] = len(st.labels)
	st.labels = append(st.labels, fbin.Symbol{Name: id, Kind: cpu.Address, Value: int64(addr)})
	return nil
}

// DeclareMacro binds id to a constant. NoSign literals are stored as unsigned.
func (st *SymbolTable) DeclareMacro(id string, lit Literal) error {
	if _, ok := st.macroIndex[id]; ok {
		return ErrDuplicateMacro
	}
	if _, ok := st.labelIndex[id]; ok {
		return errors.Wrap(ErrSymbolClash, "already a label")
	}
	st.macroIndex[id] = len(st.macros)
	st.macros = append(st.macros, fbin.Symbol{Name: id, Kind: lit.Kind.Resolve(), Value: lit.Value})
	return nil
}

// Label looks up a label.
func (st *SymbolTable) Label(id string) (fbin.Symbol, bool) {
	i, ok := st.labelIndex[id]
	if !ok {
		return fbin.Symbol{}, false
	}
	return st.labels[i], true
}

// Macro looks up a macro.
func (st *SymbolTable) Macro(id string) (fbin.Symbol, bool) {
	i, ok := st.macroIndex[id]
	if !ok {
		return fbin.Symbol{}, false
	}
	return st.macros[i], true
}

// Resolve looks up id as a label first, then as a macro.
func (st *SymbolTable) Resolve(id string) (fbin.Symbol, bool) {
	if s, ok := st.Label(id); ok {
		return s, true
	}
	return st.Macro(id)
}

// Labels returns a copy of the labels in declaration order.
func (st *SymbolTable) Labels() []fbin.Symbol {
	return append([]fbin.Symbol(nil), st.labels...)
}

// Macros returns a copy of the macros in declaration order.
func (st *SymbolTable) Macros() []fbin.Symbol {
	return append([]fbin.Symbol(nil), st.macros...)
}

// Len returns the number of labels plus macros.
func (st *SymbolTable) Len() int {
	return len(st.labels) + len(st.macros)
}

// Finalize fixes every address in the table. When the symbols are kept
// in the image they sit in front of the instruction stream, so every
// label and every address-kind macro moves forward by the size of the
// serialized segment. That size is measured on the unshifted tables and
// must not change after the shift; the fixed-width value field
// guarantees it, and Finalize checks it anyway.
//
// Without symbols the table is left as scanned and the offset is zero.
func (st *SymbolTable) Finalize(keep bool) ([]byte, error) {
	if st.finalized {
		return st.segment, errors.New("symbol table already finalized")
	}
	st.finalized = true
	if !keep {
		return nil, nil
	}

	pre, err := st.marshal()
	if err != nil {
		return nil, err
	}
	if err := st.relocate(uint32(len(pre))); err != nil {
		return nil, err
	}

	seg, err := st.marshal()
	if err != nil {
		return nil, err
	}
	if len(seg) != len(pre) {
		return nil, errors.Errorf("symbol segment changed size after relocation: %d -> %d", len(pre), len(seg))
	}
	st.segment = seg
	return seg, nil
}

// Offset returns how far addresses moved during Finalize.
func (st *SymbolTable) Offset() uint32 {
	return st.offset
}

// Segment returns the serialized symbol segment, or nil when symbols
// were not kept.
func (st *SymbolTable) Segment() []byte {
	return st.segment
}

func (st *SymbolTable) marshal() ([]byte, error) {
	seg := fbin.SymbolSegment{Labels: st.labels, Macros: st.macros}
	b, err := seg.MarshalBinary()
	if err != nil {
		return nil, errors.Wrap(err, "serializing symbol table")
	}
	return b, nil
}

func (st *SymbolTable) relocate(offset uint32) error {
	for _, syms := range [][]fbin.Symbol{st.labels, st.macros} {
		for _, s := range syms {
			if s.Kind == cpu.Address && s.Value+int64(offset) > math.MaxUint32 {
				return &OverflowError{Name: s.Name, Value: s.Value + int64(offset)}
			}
		}
	}

	st.offset = offset
	for i := range st.labels {
		st.labels[i].Value += int64(offset)
	}
	for i := range st.macros {
		if st.macros[i].Kind == cpu.Address {
			st.macros[i].Value += int64(offset)
		}
	}
	return nil
}
