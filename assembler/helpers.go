package assembler

import (
	"github.com/pkg/errors"

	"github.com/Urethramancer/furst/cpu"
)

// packNode appends the encoding of n to dst: the opcode byte followed by
// one little-endian word per operand.
func packNode(dst []byte, n *Node) ([]byte, error) {
	d, ok := cpu.Lookup(n.Op)
	if !ok {
		return dst, errors.Errorf("no descriptor for opcode %d", n.Op)
	}
	if len(n.Operands) != d.Operands {
		return dst, errors.Wrapf(ErrOperandCount, "%s has %d operands", d.Mnemonic, len(n.Operands))
	}

	start := len(dst)
	dst = append(dst, byte(n.Op))
	for i, o := range n.Operands {
		if o.Pending() {
			return dst[:start], errors.Wrapf(ErrUnresolved, "%s operand %d: %s", d.Mnemonic, i+1, o.Ref)
		}
		var err error
		dst, err = cpu.AppendOperand(dst, o.Kind, o.Value)
		if err != nil {
			return dst[:start], errors.Wrapf(err, "%s operand %d", d.Mnemonic, i+1)
		}
	}

	if got := uint32(len(dst) - start); got != d.Size {
		return dst[:start], errors.Errorf("%s packed to %d bytes, descriptor says %d", d.Mnemonic, got, d.Size)
	}
	return dst, nil
}
