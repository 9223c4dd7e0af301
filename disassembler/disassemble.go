package disassembler

import (
	"fmt"
	"strings"

	"github.com/Urethramancer/furst/cpu"
)

// LabelType defines the context of a label.
type LabelType int

const (
	// JumpTarget is for a jump or loop boundary.
	JumpTarget LabelType = iota
	// SubroutineEntry is for a call target.
	SubroutineEntry
	// EntryPoint is the start address from the metadata.
	EntryPoint
)

// Disassemble decodes an image and renders it as an assembly listing.
func Disassemble(b []byte) (string, error) {
	img, err := Decode(b)
	if err != nil {
		return "", err
	}
	return Listing(img), nil
}

// Listing renders a decoded image. Control flow is followed from the
// entry point to find jump and call targets; instructions it never
// reaches are marked in the output.
func Listing(img *Image) string {
	// --- STAGE 1: Control Flow Analysis ---
	labelTargets := map[uint32]LabelType{img.Metadata.Start: EntryPoint}
	reached := make(map[uint32]bool)
	q := newQueue()
	q.push(img.Metadata.Start)

	for {
		addr, ok := q.pop()
		if !ok {
			break
		}
		inst, exists := img.InstructionAt(addr)
		if !exists || reached[addr] {
			continue
		}
		reached[addr] = true

		if !isTerminal(inst.Op) {
			q.push(addr + inst.Size())
		}
		for _, t := range branchTargets(inst) {
			q.push(t)
			if _, exists := labelTargets[t]; exists {
				continue
			}
			if inst.Op == cpu.OpCall {
				labelTargets[t] = SubroutineEntry
			} else {
				labelTargets[t] = JumpTarget
			}
		}
	}

	names := make(map[uint32]string, len(labelTargets))
	for addr, lt := range labelTargets {
		names[addr] = labelName(addr, lt)
	}
	if img.Symbols != nil {
		for _, l := range img.Symbols.Labels {
			names[uint32(l.Value)] = l.Name
		}
	}

	// --- STAGE 2: Render Final Output ---
	var out strings.Builder
	out.WriteString(formatHeader(img))

	for _, inst := range img.Instructions {
		if name, exists := names[inst.Address]; exists {
			fmt.Fprintf(&out, "%s:\n", name)
		}

		ops := make([]string, len(inst.Operands))
		for i, o := range inst.Operands {
			ops[i] = o.String()
		}
		for _, i := range targetPositions(inst.Op) {
			if name, exists := names[inst.Operands[i].Raw]; exists {
				ops[i] = name
			}
		}

		line := "    " + inst.Op.String()
		if len(ops) > 0 {
			line = fmt.Sprintf("    %-8s %s", inst.Op.String(), strings.Join(ops, " "))
		}
		notes := signedReadings(inst, names)
		if !reached[inst.Address] {
			notes = append([]string{"unreachable"}, notes...)
		}
		if len(notes) > 0 {
			line = fmt.Sprintf("%-40s # %s", line, strings.Join(notes, ", "))
		}
		out.WriteString(line)
		out.WriteByte('\n')
	}

	return out.String()
}

// signedReadings returns the signed form of each operand that was read as
// unsigned, has bit 31 set and may hold a signed value.
func signedReadings(inst Instruction, names map[uint32]string) []string {
	d, _ := cpu.Lookup(inst.Op)
	var notes []string
	for i, o := range inst.Operands {
		if o.Kind != cpu.Unsigned || o.Raw&0x80000000 == 0 || !d.Permits(i, cpu.Signed) {
			continue
		}
		if _, named := names[o.Raw]; named && isTarget(inst.Op, i) {
			continue
		}
		notes = append(notes, Operand{Kind: cpu.Signed, Raw: o.Raw}.String())
	}
	return notes
}

func isTarget(op cpu.Opcode, pos int) bool {
	for _, i := range targetPositions(op) {
		if i == pos {
			return true
		}
	}
	return false
}

// isTerminal checks if an instruction unconditionally stops linear execution.
func isTerminal(op cpu.Opcode) bool {
	switch op {
	case cpu.OpDie, cpu.OpRet, cpu.OpJmp, cpu.OpSwtch, cpu.OpLcont, cpu.OpLbrk:
		return true
	}
	return false
}

// targetPositions lists the operands of op that hold code addresses.
func targetPositions(op cpu.Opcode) []int {
	switch op {
	case cpu.OpCall, cpu.OpJmp, cpu.OpJe, cpu.OpJn, cpu.OpJl, cpu.OpJg, cpu.OpJls, cpu.OpJgs:
		return []int{0}
	case cpu.OpLoop:
		return []int{1, 2}
	}
	return nil
}

func branchTargets(inst Instruction) []uint32 {
	var targets []uint32
	for _, i := range targetPositions(inst.Op) {
		targets = append(targets, inst.Operands[i].Raw)
	}
	return targets
}
