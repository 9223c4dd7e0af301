package cpu

import (
	"github.com/pkg/errors"
)

// Opcode is the first byte of every encoded instruction.
type Opcode uint8

// Opcodes for the furst instruction set.
const (
	// Control
	OpDie     Opcode = 0  // die
	OpNop     Opcode = 1  // nop
	OpNspct   Opcode = 2  // nspct <addr>
	OpNspctst Opcode = 3  // nspctst <addr>
	OpTestDie Opcode = 4  // test_die
	OpCall    Opcode = 5  // call <addr>
	OpRet     Opcode = 6  // ret
	OpSwtch   Opcode = 7  // swtch
	OpJmp     Opcode = 8  // jmp <addr>
	OpJe      Opcode = 9  // je <addr>
	OpJn      Opcode = 10 // jn <addr>
	OpJl      Opcode = 11 // jl <addr>
	OpJg      Opcode = 12 // jg <addr>
	OpJls     Opcode = 13 // jls <addr>
	OpJgs     Opcode = 14 // jgs <addr>
	OpLoop    Opcode = 15 // loop <count> <begin> <end>
	OpLcont   Opcode = 16 // lcont
	OpLbrk    Opcode = 17 // lbrk

	// Stack and memory
	OpPsh    Opcode = 18 // psh <value>
	OpPop    Opcode = 19 // pop
	OpPop2   Opcode = 20 // pop2
	OpPopn   Opcode = 21 // popn <count>
	OpPshfr  Opcode = 22 // pshfr <addr>
	OpPoptr  Opcode = 23 // poptr <addr>
	OpMovtr  Opcode = 24 // movtr <addr>
	OpStktr  Opcode = 25 // stktr <addr> <addr>
	OpCpyr   Opcode = 26 // cpyr <addr> <addr>
	OpSetr   Opcode = 27 // setr <addr> <value>
	OpPshfrr Opcode = 28 // pshfrr <addr>
	OpPshfrs Opcode = 29 // pshfrs <addr>

	// Unsigned arithmetic
	OpInc Opcode = 30
	OpDec Opcode = 31
	OpAdd Opcode = 32
	OpSub Opcode = 33
	OpMul Opcode = 34
	OpDiv Opcode = 35
	OpMod Opcode = 36

	// Signed arithmetic
	OpIncs Opcode = 37
	OpDecs Opcode = 38
	OpAdds Opcode = 39
	OpSubs Opcode = 40
	OpMuls Opcode = 41
	OpDivs Opcode = 42
	OpMods Opcode = 43

	// Unsigned bitwise
	OpAnd   Opcode = 44
	OpNot   Opcode = 45
	OpXor   Opcode = 46
	OpOr    Opcode = 47
	OpLshft Opcode = 48
	OpRshft Opcode = 49
	OpLrot  Opcode = 50
	OpRrot  Opcode = 51

	// Signed bitwise
	OpAnds   Opcode = 52
	OpNots   Opcode = 53
	OpXors   Opcode = 54
	OpOrs    Opcode = 55
	OpLshfts Opcode = 56
	OpRshfts Opcode = 57
	OpLrots  Opcode = 58
	OpRrots  Opcode = 59
)

const (
	// OpCount is the number of defined opcodes.
	OpCount = 60
	// OpcodeSize is the encoded size of the opcode byte.
	OpcodeSize = 1
	// WordSize is the encoded size of every operand.
	WordSize = 4
	// MaxOperands is the largest operand count of any instruction.
	MaxOperands = 3
)

// Descriptor describes one opcode.
type Descriptor struct {
	Mnemonic string
	// Size is the total encoded size in bytes, opcode included.
	Size uint32
	// Operands is how many operand words follow the opcode byte.
	Operands int
	// Kinds holds the permitted sign kinds for each operand position.
	Kinds []KindSet
}

// Permits reports whether kind is allowed at operand position pos.
func (d Descriptor) Permits(pos int, kind SignKind) bool {
	if pos < 0 || pos >= len(d.Kinds) {
		return false
	}
	return d.Kinds[pos].Has(kind)
}

// DecodeKind is the kind a reader without symbol information should
// assume for operand position pos. Only a position that permits nothing
// but Signed reads as signed.
func (d Descriptor) DecodeKind(pos int) SignKind {
	if pos >= 0 && pos < len(d.Kinds) && d.Kinds[pos] == Kinds(Signed) {
		return Signed
	}
	return Unsigned
}

var (
	addrOrUint = Kinds(Address, Unsigned)
	anyKind    = Kinds(Unsigned, Signed, Address)
)

var mnemonics = [OpCount]string{
	"die", "nop", "nspct", "nspctst", "test_die", "call", "ret", "swtch",
	"jmp", "je", "jn", "jl", "jg", "jls", "jgs", "loop", "lcont", "lbrk",
	"psh", "pop", "pop2", "popn", "pshfr", "poptr", "movtr", "stktr",
	"cpyr", "setr", "pshfrr", "pshfrs",
	"inc", "dec", "add", "sub", "mul", "div", "mod",
	"incs", "decs", "adds", "subs", "muls", "divs", "mods",
	"and", "not", "xor", "or", "lshft", "rshft", "lrot", "rrot",
	"ands", "nots", "xors", "ors", "lshfts", "rshfts", "lrots", "rrots",
}

var sizes = [OpCount]uint32{
	OpNspct: 5, OpNspctst: 5, OpCall: 5,
	OpJmp: 5, OpJe: 5, OpJn: 5, OpJl: 5, OpJg: 5, OpJls: 5, OpJgs: 5,
	OpLoop: 13,
	OpPsh:  5, OpPopn: 5, OpPshfr: 5, OpPoptr: 5, OpMovtr: 5,
	OpStktr: 9, OpCpyr: 9, OpSetr: 9,
	OpPshfrr: 5, OpPshfrs: 5,
}

var kinds = [OpCount][]KindSet{
	OpNspct:   {addrOrUint},
	OpNspctst: {addrOrUint},
	OpCall:    {addrOrUint},
	OpJmp:     {addrOrUint},
	OpJe:      {addrOrUint},
	OpJn:      {addrOrUint},
	OpJl:      {addrOrUint},
	OpJg:      {addrOrUint},
	OpJls:     {addrOrUint},
	OpJgs:     {addrOrUint},
	OpLoop:    {Kinds(Unsigned), addrOrUint, addrOrUint},
	OpPsh:     {anyKind},
	OpPopn:    {Kinds(Unsigned)},
	OpPshfr:   {addrOrUint},
	OpPoptr:   {addrOrUint},
	OpMovtr:   {addrOrUint},
	OpStktr:   {addrOrUint, addrOrUint},
	OpCpyr:    {addrOrUint, addrOrUint},
	OpSetr:    {addrOrUint, anyKind},
	OpPshfrr:  {addrOrUint},
	OpPshfrs:  {addrOrUint},
}

var byMnemonic map[string]Opcode

func init() {
	if err := Verify(); err != nil {
		panic(err)
	}
	byMnemonic = make(map[string]Opcode, OpCount)
	for i, m := range mnemonics {
		byMnemonic[m] = Opcode(i)
	}
}

// Verify checks that the mnemonic, size and kind tables agree.
// Sizes of zero in the table mean a bare opcode.
func Verify() error {
	seen := make(map[string]bool, OpCount)
	for i := 0; i < OpCount; i++ {
		m := mnemonics[i]
		if m == "" {
			return errors.Errorf("opcode %d has no mnemonic", i)
		}
		if seen[m] {
			return errors.Errorf("mnemonic %q defined twice", m)
		}
		seen[m] = true

		size := sizes[i]
		if size == 0 {
			size = OpcodeSize
		}
		n := len(kinds[i])
		if size != OpcodeSize+WordSize*uint32(n) {
			return errors.Errorf("opcode %d (%s): size %d does not fit %d operands", i, m, size, n)
		}
		if n > MaxOperands {
			return errors.Errorf("opcode %d (%s): %d operands", i, m, n)
		}
		for pos, set := range kinds[i] {
			if set.Len() == 0 || set.Has(NoSign) || set.Has(KindInvalid) {
				return errors.Errorf("opcode %d (%s): operand %d has kinds %q", i, m, pos, set)
			}
		}
	}
	return nil
}

// Lookup returns the descriptor for op.
func Lookup(op Opcode) (Descriptor, bool) {
	if int(op) >= OpCount {
		return Descriptor{}, false
	}
	size := sizes[op]
	if size == 0 {
		size = OpcodeSize
	}
	return Descriptor{
		Mnemonic: mnemonics[op],
		Size:     size,
		Operands: len(kinds[op]),
		Kinds:    kinds[op],
	}, true
}

// ByMnemonic returns the opcode for an exact, lower-case mnemonic.
func ByMnemonic(name string) (Opcode, bool) {
	op, ok := byMnemonic[name]
	return op, ok
}

// IsMnemonic reports whether name is an instruction mnemonic.
func IsMnemonic(name string) bool {
	_, ok := byMnemonic[name]
	return ok
}

// String returns the mnemonic, or a placeholder for undefined opcodes.
func (op Opcode) String() string {
	if int(op) < OpCount {
		return mnemonics[op]
	}
	return "op?"
}
