package cpu

import "github.com/pkg/errors"

// opPSH pushes its operand.
func (c *CPU) opPSH(inst *DecodedInstruction) error {
	return c.push(inst.Operands[0])
}

// opPOP handles pop, pop2 and popn.
func (c *CPU) opPOP(inst *DecodedInstruction) error {
	n := uint32(1)
	switch inst.Op {
	case OpPop2:
		n = 2
	case OpPopn:
		n = inst.Operands[0]
	}
	if uint64(n) > uint64(len(c.Stack)) {
		return errors.Wrapf(ErrStackUnderflow, "pop %d of %d", n, len(c.Stack))
	}
	c.Stack = c.Stack[:len(c.Stack)-int(n)]
	return nil
}

// opPSHFR pushes the word at an address.
func (c *CPU) opPSHFR(inst *DecodedInstruction) error {
	v, err := c.ReadU32(inst.Operands[0])
	if err != nil {
		return err
	}
	return c.push(v)
}

// opPOPTR pops the top into memory.
func (c *CPU) opPOPTR(inst *DecodedInstruction) error {
	v, err := c.pop()
	if err != nil {
		return err
	}
	return c.WriteU32(inst.Operands[0], v)
}

// opMOVTR copies the top into memory without popping it.
func (c *CPU) opMOVTR(inst *DecodedInstruction) error {
	v, err := c.peek(0)
	if err != nil {
		return err
	}
	return c.WriteU32(inst.Operands[0], v)
}

// opSETR stores the second operand at the address in the first.
func (c *CPU) opSETR(inst *DecodedInstruction) error {
	return c.WriteU32(inst.Operands[0], inst.Operands[1])
}

// opPSHFRR pushes the word at the address stored at the operand address.
func (c *CPU) opPSHFRR(inst *DecodedInstruction) error {
	ptr, err := c.ReadU32(inst.Operands[0])
	if err != nil {
		return err
	}
	v, err := c.ReadU32(ptr)
	if err != nil {
		return err
	}
	return c.push(v)
}

// opPSHFRS pushes the word at the address on top of the stack, offset by
// the operand.
func (c *CPU) opPSHFRS(inst *DecodedInstruction) error {
	ptr, err := c.peek(0)
	if err != nil {
		return err
	}
	v, err := c.ReadU32(ptr + inst.Operands[0])
	if err != nil {
		return err
	}
	return c.push(v)
}
