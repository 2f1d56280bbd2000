// Package bytecode assembles the linear instruction stream a code generator
// produces: fixed-width little-endian instructions, virtual registers, and
// labels that are resolved into relative jump offsets when the stream is
// built.
package bytecode

import (
	"fmt"
	"strings"
)

// OpCode is the first byte of every instruction. Values follow declaration
// order and are part of the encoding.
type OpCode uint8

const (
	OpLoadImm OpCode = iota
	OpLoadArg
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpCmpEq
	OpCmpLt
	OpCmpGt
	OpJmp
	OpJmpIf
	OpCall
	OpRet
)

var opNames = [...]string{
	OpLoadImm: "load_imm",
	OpLoadArg: "load_arg",
	OpAdd:     "add",
	OpSub:     "sub",
	OpMul:     "mul",
	OpDiv:     "div",
	OpCmpEq:   "cmp_eq",
	OpCmpLt:   "cmp_lt",
	OpCmpGt:   "cmp_gt",
	OpJmp:     "jmp",
	OpJmpIf:   "jmp_if",
	OpCall:    "call",
	OpRet:     "ret",
}

var _ = opNames[OpRet]

func (op OpCode) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("op(%d)", uint8(op))
}

// ParseOpCode looks up an opcode by its mnemonic, ignoring case.
func ParseOpCode(name string) (OpCode, bool) {
	name = strings.ToLower(name)
	for i, n := range opNames {
		if n == name {
			return OpCode(i), true
		}
	}
	return 0, false
}

// Operand widths in bytes.
const (
	OpCodeSize = 1
	RegSize    = 1
	ImmSize    = 8
	OffsetSize = 8
)

// Encoded instruction sizes.
const (
	LoadImmSize = OpCodeSize + RegSize + ImmSize    // 10
	ArithSize   = OpCodeSize + 3*RegSize            // 4
	JmpSize     = OpCodeSize + OffsetSize           // 9
	JmpIfSize   = OpCodeSize + OffsetSize + RegSize // 10
)

// InstructionSize returns the encoded length of op. ok is false for opcodes
// that have no encoding yet (load_arg, call, ret) and for unknown values.
func InstructionSize(op OpCode) (size int, ok bool) {
	switch op {
	case OpLoadImm:
		return LoadImmSize, true
	case OpAdd, OpSub, OpMul, OpDiv, OpCmpEq, OpCmpLt, OpCmpGt:
		return ArithSize, true
	case OpJmp:
		return JmpSize, true
	case OpJmpIf:
		return JmpIfSize, true
	default:
		return 0, false
	}
}

// IsThreeReg reports whether op takes a destination and two source
// registers.
func IsThreeReg(op OpCode) bool {
	switch op {
	case OpAdd, OpSub, OpMul, OpDiv, OpCmpEq, OpCmpLt, OpCmpGt:
		return true
	}
	return false
}

// Reg is a virtual register id.
type Reg uint8

// MaxRegs is the number of distinct register ids a Reg can hold.
const MaxRegs = 256

func (r Reg) String() string {
	return fmt.Sprintf("r%d", uint8(r))
}

// Label names a byte offset that may not be known yet.
type Label uint32

func (l Label) String() string {
	return fmt.Sprintf("L%d", uint32(l))
}
