package cpu

import (
	"math/bits"

	"github.com/pkg/errors"
)

// opALU handles arithmetic and bitwise instructions. Unary forms modify
// the top cell in place. Binary forms push top OP second and keep both
// operands on the stack.
func (c *CPU) opALU(inst *DecodedInstruction) error {
	switch inst.Op {
	case OpInc, OpIncs, OpDec, OpDecs, OpNot, OpNots:
		top, err := c.peek(0)
		if err != nil {
			return err
		}
		return c.setTop(unary(inst.Op, top))
	}

	top, second, err := c.topTwo()
	if err != nil {
		return err
	}
	v, err := binaryOp(inst.Op, top, second)
	if err != nil {
		return err
	}
	return c.push(v)
}

func unary(op Opcode, v uint32) uint32 {
	switch op {
	case OpInc, OpIncs:
		return v + 1
	case OpDec, OpDecs:
		return v - 1
	}
	return ^v
}

func binaryOp(op Opcode, a, b uint32) (uint32, error) {
	sa, sb := int32(a), int32(b)
	switch op {
	case OpAdd, OpAdds:
		return a + b, nil
	case OpSub, OpSubs:
		return a - b, nil
	case OpMul:
		return a * b, nil
	case OpMuls:
		return uint32(sa * sb), nil
	case OpDiv, OpMod:
		if b == 0 {
			return 0, ErrDivideByZero
		}
		if op == OpDiv {
			return a / b, nil
		}
		return a % b, nil
	case OpDivs, OpMods:
		if sb == 0 {
			return 0, ErrDivideByZero
		}
		if op == OpDivs {
			return uint32(sa / sb), nil
		}
		return uint32(sa % sb), nil

	case OpAnd, OpAnds:
		return a & b, nil
	case OpXor, OpXors:
		return a ^ b, nil
	case OpOr, OpOrs:
		return a | b, nil
	case OpLshft, OpLshfts:
		return a << b, nil
	case OpRshft:
		return a >> b, nil
	case OpRshfts:
		return uint32(sa >> b), nil
	case OpLrot, OpLrots:
		return bits.RotateLeft32(a, int(b%32)), nil
	case OpRrot, OpRrots:
		return bits.RotateLeft32(a, -int(b%32)), nil
	}
	return 0, errors.Errorf("%s is not an arithmetic instruction", op)
}
