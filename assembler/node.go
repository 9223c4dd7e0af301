package assembler

import (
	"fmt"
	"strings"

	"github.com/Urethramancer/furst/cpu"
)

// Operand is either a pending reference to a label or macro, or a
// resolved value with its sign kind.
type Operand struct {
	// Ref names the symbol for a pending operand; empty once resolved.
	Ref   string
	Kind  cpu.SignKind
	Value int64
}

// Pending reports whether the operand still refers to a symbol.
func (o Operand) Pending() bool {
	return o.Ref != ""
}

func (o Operand) String() string {
	if o.Pending() {
		return o.Ref
	}
	return fmt.Sprintf("%s(%d)", o.Kind, o.Value)
}

// Node is one instruction of the program, with the provisional address
// it was given while scanning.
type Node struct {
	Line     int
	Address  uint32
	Op       cpu.Opcode
	Operands []Operand
}

// Size returns the encoded size of the instruction.
func (n *Node) Size() uint32 {
	d, _ := cpu.Lookup(n.Op)
	return d.Size
}

func (n *Node) String() string {
	if len(n.Operands) == 0 {
		return n.Op.String()
	}
	parts := make([]string, len(n.Operands))
	for i, o := range n.Operands {
		parts[i] = o.String()
	}
	return n.Op.String() + " " + strings.Join(parts, " ")
}
