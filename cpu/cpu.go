package cpu

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultMemory is the RAM size used when none is given.
	DefaultMemory = 1 << 20
	// StackCells is the capacity of the work stack in 32-bit cells.
	StackCells = 25000
	// ReturnDepth is the maximum call nesting.
	ReturnDepth = 1000
)

// VM faults.
var (
	ErrUnimplemented   = errors.New("instruction not implemented")
	ErrUnknownOpcode   = errors.New("unknown opcode")
	ErrStackUnderflow  = errors.New("work stack underflow")
	ErrStackOverflow   = errors.New("work stack overflow")
	ErrReturnUnderflow = errors.New("ret without call")
	ErrReturnOverflow  = errors.New("call depth exceeded")
	ErrMemoryRange     = errors.New("memory access out of range")
	ErrDivideByZero    = errors.New("division by zero")
	ErrStepLimit       = errors.New("step limit reached")
	ErrNotLoaded       = errors.New("no image loaded")
)

// CPU memory, stacks and registers of the furst virtual machine.
type CPU struct {
	// Mem is the whole RAM. The image is loaded at address 0.
	Mem []byte
	// PC is the program counter.
	PC uint32

	// Stack is the work stack; the last element is the top.
	Stack []uint32
	// Returns holds return addresses for call.
	Returns []uint32

	// LoopCount, LoopBegin and LoopEnd are set by loop.
	LoopCount uint32
	LoopBegin uint32
	LoopEnd   uint32

	// Steps counts executed instructions.
	Steps uint64
	// Running or not.
	Running bool

	// Out receives nspct and nspctst output.
	Out io.Writer
	// Log receives a trace entry per instruction when Trace is set.
	Log   logrus.FieldLogger
	Trace bool
}

// New creates a new CPU instance with given memory size.
func New(memsize int) *CPU {
	if memsize <= 0 {
		memsize = DefaultMemory
	}
	return &CPU{
		Mem: make([]byte, memsize),
		Out: os.Stdout,
		Log: logrus.StandardLogger(),
	}
}

// LoadImage copies a binary image to address 0 and points PC at the
// start address stored in its first word.
func (c *CPU) LoadImage(image []byte) error {
	if len(image) < WordSize {
		return errors.Errorf("image of %d bytes has no start address", len(image))
	}
	if len(image) > len(c.Mem) {
		return errors.Wrapf(ErrMemoryRange, "image of %d bytes, %d bytes of memory", len(image), len(c.Mem))
	}
	copy(c.Mem, image)
	clear(c.Mem[len(image):])

	c.Stack = c.Stack[:0]
	c.Returns = c.Returns[:0]
	c.LoopCount, c.LoopBegin, c.LoopEnd = 0, 0, 0
	c.Steps = 0
	start, err := c.ReadU32(0)
	if err != nil {
		return err
	}
	c.PC = start
	c.Running = true
	return nil
}

// Run executes instructions until the program halts. A limit of zero
// means no limit.
func (c *CPU) Run(limit uint64) error {
	if !c.Running && c.Steps == 0 {
		return ErrNotLoaded
	}
	for c.Running {
		if limit > 0 && c.Steps >= limit {
			return errors.Wrapf(ErrStepLimit, "%d steps", limit)
		}
		if err := c.Execute(); err != nil {
			c.Running = false
			return err
		}
	}
	return nil
}

// Top returns the top of the work stack.
func (c *CPU) Top() (uint32, error) {
	return c.peek(0)
}
