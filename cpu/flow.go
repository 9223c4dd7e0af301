package cpu

import "github.com/pkg/errors"

// opDIE handles die and test_die: execution stops.
func (c *CPU) opDIE(inst *DecodedInstruction) error {
	c.Running = false
	return nil
}

// opNOP handles the NOP instruction.
func (c *CPU) opNOP(inst *DecodedInstruction) error {
	return nil
}

// opCALL pushes the address of the next instruction and jumps.
func (c *CPU) opCALL(inst *DecodedInstruction) error {
	if len(c.Returns) >= ReturnDepth {
		return ErrReturnOverflow
	}
	c.Returns = append(c.Returns, c.PC)
	c.PC = inst.Operands[0]
	return nil
}

// opRET handles the RET instruction.
func (c *CPU) opRET(inst *DecodedInstruction) error {
	if len(c.Returns) == 0 {
		return ErrReturnUnderflow
	}
	c.PC = c.Returns[len(c.Returns)-1]
	c.Returns = c.Returns[:len(c.Returns)-1]
	return nil
}

// opJMP handles the JMP instruction.
func (c *CPU) opJMP(inst *DecodedInstruction) error {
	c.PC = inst.Operands[0]
	return nil
}

// opJcc handles the conditional jumps. They compare the top of the
// stack with the cell below it and leave both in place.
func (c *CPU) opJcc(inst *DecodedInstruction) error {
	top, second, err := c.topTwo()
	if err != nil {
		return err
	}

	var taken bool
	switch inst.Op {
	case OpJe:
		taken = top == second
	case OpJn:
		taken = top != second
	case OpJl:
		taken = top < second
	case OpJg:
		taken = top > second
	case OpJls:
		taken = int32(top) < int32(second)
	case OpJgs:
		taken = int32(top) > int32(second)
	default:
		return errors.Errorf("%s is not a conditional jump", inst.Op)
	}
	if taken {
		c.PC = inst.Operands[0]
	}
	return nil
}

// opLOOP sets the loop registers: count, begin and end addresses.
func (c *CPU) opLOOP(inst *DecodedInstruction) error {
	c.LoopCount = inst.Operands[0]
	c.LoopBegin = inst.Operands[1]
	c.LoopEnd = inst.Operands[2]
	return nil
}

// opLCONT jumps back to the loop start while the count lasts, otherwise
// to the loop end.
func (c *CPU) opLCONT(inst *DecodedInstruction) error {
	if c.LoopCount > 0 {
		c.LoopCount--
		c.PC = c.LoopBegin
		return nil
	}
	c.PC = c.LoopEnd
	return nil
}

// opLBRK leaves the loop.
func (c *CPU) opLBRK(inst *DecodedInstruction) error {
	c.PC = c.LoopEnd
	return nil
}
