package cpu

import (
	"fmt"

	"github.com/pkg/errors"
)

// opNSPCT prints the word at an address.
func (c *CPU) opNSPCT(inst *DecodedInstruction) error {
	addr := inst.Operands[0]
	v, err := c.ReadU32(addr)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.Out, "ram[%d] = %d (%d)\n", addr, v, int32(v))
	return err
}

// opNSPCTST prints a work stack cell, counted down from the top.
func (c *CPU) opNSPCTST(inst *DecodedInstruction) error {
	n := inst.Operands[0]
	if uint64(n) >= uint64(len(c.Stack)) {
		return errors.Wrapf(ErrStackUnderflow, "cell %d of %d", n, len(c.Stack))
	}
	v, _ := c.peek(int(n))
	_, err := fmt.Fprintf(c.Out, "wstk[%d] = %d (%d)\n", n, v, int32(v))
	return err
}

// opUnimplemented handles opcodes that exist in the instruction set but
// have no defined behaviour yet.
func (c *CPU) opUnimplemented(inst *DecodedInstruction) error {
	return errors.Wrap(ErrUnimplemented, inst.Op.String())
}
