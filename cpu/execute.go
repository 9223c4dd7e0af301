package cpu

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Execute fetches, decodes, and executes a single instruction.
func (c *CPU) Execute() error {
	if !c.Running {
		return nil
	}

	// Decode
	inst, err := c.Decode(c.PC)
	if err != nil {
		return errors.Wrap(err, "decode failed")
	}
	if inst.Handler == nil {
		return errors.Wrapf(ErrUnknownOpcode, "no handler for %s", inst.Op)
	}

	if c.Trace {
		d, _ := Lookup(inst.Op)
		c.Log.WithFields(logrus.Fields{
			"pc":       inst.Address,
			"op":       inst.Op.String(),
			"operands": inst.Operands[:d.Operands],
			"depth":    len(c.Stack),
		}).Trace("exec")
	}

	// Execute. Handlers that branch overwrite PC.
	c.PC = inst.Address + inst.Size
	c.Steps++
	if err := inst.Handler(c, inst); err != nil {
		return errors.Wrapf(err, "%s at %d", inst.Op, inst.Address)
	}
	return nil
}
