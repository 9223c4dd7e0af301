package cpu

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// ReadU32 reads a little-endian 32-bit word from memory at the given address.
func (c *CPU) ReadU32(addr uint32) (uint32, error) {
	if uint64(addr)+WordSize > uint64(len(c.Mem)) {
		return 0, errors.Wrapf(ErrMemoryRange, "read at %d", addr)
	}
	return binary.LittleEndian.Uint32(c.Mem[addr:]), nil
}

// WriteU32 writes a 32-bit word to memory at the given address in little-endian format.
func (c *CPU) WriteU32(addr uint32, val uint32) error {
	if uint64(addr)+WordSize > uint64(len(c.Mem)) {
		return errors.Wrapf(ErrMemoryRange, "write at %d", addr)
	}
	binary.LittleEndian.PutUint32(c.Mem[addr:], val)
	return nil
}

func (c *CPU) push(v uint32) error {
	if len(c.Stack) >= StackCells {
		return ErrStackOverflow
	}
	c.Stack = append(c.Stack, v)
	return nil
}

func (c *CPU) pop() (uint32, error) {
	if len(c.Stack) == 0 {
		return 0, ErrStackUnderflow
	}
	v := c.Stack[len(c.Stack)-1]
	c.Stack = c.Stack[:len(c.Stack)-1]
	return v, nil
}

// peek returns the cell n places below the top.
func (c *CPU) peek(n int) (uint32, error) {
	if n < 0 || n >= len(c.Stack) {
		return 0, errors.Wrapf(ErrStackUnderflow, "cell %d of %d", n, len(c.Stack))
	}
	return c.Stack[len(c.Stack)-1-n], nil
}

// topTwo returns the top cell and the one below it.
func (c *CPU) topTwo() (top, second uint32, err error) {
	if len(c.Stack) < 2 {
		return 0, 0, errors.Wrapf(ErrStackUnderflow, "need 2 cells, have %d", len(c.Stack))
	}
	return c.Stack[len(c.Stack)-1], c.Stack[len(c.Stack)-2], nil
}

// setTop replaces the top cell.
func (c *CPU) setTop(v uint32) error {
	if len(c.Stack) == 0 {
		return ErrStackUnderflow
	}
	c.Stack[len(c.Stack)-1] = v
	return nil
}
