package cpu

import (
	"github.com/pkg/errors"
)

// DecodedInstruction holds the parsed details of one instruction.
type DecodedInstruction struct {
	Handler  func(*CPU, *DecodedInstruction) error
	Address  uint32
	Op       Opcode
	Size     uint32
	Operands [MaxOperands]uint32
}

var handlers [OpCount]func(*CPU, *DecodedInstruction) error

func init() {
	handlers = [OpCount]func(*CPU, *DecodedInstruction) error{
		OpDie:     (*CPU).opDIE,
		OpNop:     (*CPU).opNOP,
		OpNspct:   (*CPU).opNSPCT,
		OpNspctst: (*CPU).opNSPCTST,
		OpTestDie: (*CPU).opDIE,
		OpCall:    (*CPU).opCALL,
		OpRet:     (*CPU).opRET,
		OpSwtch:   (*CPU).opUnimplemented,
		OpJmp:     (*CPU).opJMP,
		OpJe:      (*CPU).opJcc,
		OpJn:      (*CPU).opJcc,
		OpJl:      (*CPU).opJcc,
		OpJg:      (*CPU).opJcc,
		OpJls:     (*CPU).opJcc,
		OpJgs:     (*CPU).opJcc,
		OpLoop:    (*CPU).opLOOP,
		OpLcont:   (*CPU).opLCONT,
		OpLbrk:    (*CPU).opLBRK,

		OpPsh:    (*CPU).opPSH,
		OpPop:    (*CPU).opPOP,
		OpPop2:   (*CPU).opPOP,
		OpPopn:   (*CPU).opPOP,
		OpPshfr:  (*CPU).opPSHFR,
		OpPoptr:  (*CPU).opPOPTR,
		OpMovtr:  (*CPU).opMOVTR,
		OpStktr:  (*CPU).opUnimplemented,
		OpCpyr:   (*CPU).opUnimplemented,
		OpSetr:   (*CPU).opSETR,
		OpPshfrr: (*CPU).opPSHFRR,
		OpPshfrs: (*CPU).opPSHFRS,
	}
	for op := OpInc; op <= OpRrots; op++ {
		handlers[op] = (*CPU).opALU
	}
}

// Decode reads the instruction at addr and returns a structured DecodedInstruction.
func (c *CPU) Decode(addr uint32) (*DecodedInstruction, error) {
	if uint64(addr) >= uint64(len(c.Mem)) {
		return nil, errors.Wrapf(ErrMemoryRange, "fetch at %d", addr)
	}
	op := Opcode(c.Mem[addr])
	d, ok := Lookup(op)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownOpcode, "%d at %d", op, addr)
	}
	if uint64(addr)+uint64(d.Size) > uint64(len(c.Mem)) {
		return nil, errors.Wrapf(ErrMemoryRange, "%s at %d runs past the end of memory", d.Mnemonic, addr)
	}

	inst := &DecodedInstruction{
		Handler: handlers[op],
		Address: addr,
		Op:      op,
		Size:    d.Size,
	}
	for i := 0; i < d.Operands; i++ {
		inst.Operands[i], _ = ReadOperand(c.Mem[addr+OpcodeSize+uint32(i)*WordSize:], Unsigned)
	}
	return inst, nil
}
