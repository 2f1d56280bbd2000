package bytecode

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Instruction is one decoded instruction. Only the fields used by Op are
// meaningful.
type Instruction struct {
	Offset int
	Op     OpCode
	Dst    Reg
	A, B   Reg
	Cond   Reg
	Imm    int64
	Rel    int64 // jump offset relative to Offset
}

// Target returns the absolute jump destination.
func (in Instruction) Target() int {
	return in.Offset + int(in.Rel)
}

// Size returns the encoded length of the instruction.
func (in Instruction) Size() int {
	n, _ := InstructionSize(in.Op)
	return n
}

func (in Instruction) String() string {
	switch in.Op {
	case OpLoadImm:
		return fmt.Sprintf("%-8s %s, %d", in.Op, in.Dst, in.Imm)
	case OpJmp:
		return fmt.Sprintf("%-8s %+d (-> %04x)", in.Op, in.Rel, in.Target())
	case OpJmpIf:
		return fmt.Sprintf("%-8s %+d (-> %04x), %s", in.Op, in.Rel, in.Target(), in.Cond)
	default:
		return fmt.Sprintf("%-8s %s, %s, %s", in.Op, in.Dst, in.A, in.B)
	}
}

// Decode splits code into instructions. It fails on opcodes that have no
// encoding and on a truncated final instruction.
func Decode(code []byte) ([]Instruction, error) {
	var out []Instruction
	for pc := 0; pc < len(code); {
		op := OpCode(code[pc])
		size, ok := InstructionSize(op)
		if !ok {
			return out, fmt.Errorf("offset %d: cannot decode opcode %s", pc, op)
		}
		if pc+size > len(code) {
			return out, fmt.Errorf("offset %d: truncated %s instruction (%d of %d bytes)", pc, op, len(code)-pc, size)
		}

		in := Instruction{Offset: pc, Op: op}
		operands := code[pc+OpCodeSize : pc+size]
		switch {
		case op == OpLoadImm:
			in.Dst = Reg(operands[0])
			in.Imm = int64(binary.LittleEndian.Uint64(operands[1:]))
		case op == OpJmp:
			in.Rel = int64(binary.LittleEndian.Uint64(operands))
		case op == OpJmpIf:
			in.Rel = int64(binary.LittleEndian.Uint64(operands))
			in.Cond = Reg(operands[OffsetSize])
		case IsThreeReg(op):
			in.Dst, in.A, in.B = Reg(operands[0]), Reg(operands[1]), Reg(operands[2])
		}

		out = append(out, in)
		pc += size
	}
	return out, nil
}

// Disassemble renders code one instruction per line, prefixed with its
// offset.
func Disassemble(code []byte) (string, error) {
	ins, err := Decode(code)
	var sb strings.Builder
	for _, in := range ins {
		fmt.Fprintf(&sb, "%04x  %s\n", in.Offset, in)
	}
	return sb.String(), err
}
