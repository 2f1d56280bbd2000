package bytecode

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrUnboundLabel is reported when a jump targets a label that was never
	// bound.
	ErrUnboundLabel = errors.New("unbound label")
	// ErrLabelRebound is reported when a label is bound more than once.
	ErrLabelRebound = errors.New("label bound twice")
	// ErrUnknownLabel is reported for labels not created by this builder.
	ErrUnknownLabel = errors.New("unknown label")
	// ErrRegisterOverflow is reported when more than MaxRegs registers are
	// allocated.
	ErrRegisterOverflow = errors.New("register ids exhausted")
)

// BuildError describes builder misuse detected by Build. Offset is the byte
// offset of the offending instruction, or -1 when the misuse is not tied to
// one.
type BuildError struct {
	Label  Label
	Offset int
	Err    error
}

func (e *BuildError) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("bytecode: %s: %v", e.Label, e.Err)
	}
	return fmt.Sprintf("bytecode: jump at offset %d to %s: %v", e.Offset, e.Label, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// pendingJump is a jump whose offset field is still zero.
type pendingJump struct {
	instrOffset int
	target      Label
}

const unbound = -1

// Builder appends instructions to a byte buffer. Jumps name their target by
// Label; offsets are filled in by Build once every label position is known.
// A Builder is not safe for concurrent use.
type Builder struct {
	code    []byte
	labels  []int // bound offset per label, or unbound
	pending []pendingJump
	regs    int

	// misuse found while emitting; reported by Build
	misuse error
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// NewReg returns a fresh register id, counting up from 0.
func (b *Builder) NewReg() Reg {
	n := b.regs
	b.regs++
	if n >= MaxRegs && b.misuse == nil {
		b.misuse = &BuildError{Offset: -1, Err: fmt.Errorf("%w: requested register %d", ErrRegisterOverflow, n)}
	}
	return Reg(n)
}

// MakeLabel returns a fresh, unbound label, counting up from 0.
func (b *Builder) MakeLabel() Label {
	b.labels = append(b.labels, unbound)
	return Label(len(b.labels) - 1)
}

// Bind sets l to the current end of the buffer.
func (b *Builder) Bind(l Label) {
	switch {
	case int(l) >= len(b.labels):
		b.fail(&BuildError{Label: l, Offset: -1, Err: ErrUnknownLabel})
	case b.labels[l] != unbound:
		b.fail(&BuildError{Label: l, Offset: -1, Err: ErrLabelRebound})
	default:
		b.labels[l] = len(b.code)
	}
}

func (b *Builder) fail(err error) {
	if b.misuse == nil {
		b.misuse = err
	}
}

// Len returns the current buffer length, which is the offset the next
// instruction will be written at.
func (b *Builder) Len() int {
	return len(b.code)
}

// Labels returns how many labels have been created.
func (b *Builder) Labels() int {
	return len(b.labels)
}

// Regs returns how many registers have been allocated.
func (b *Builder) Regs() int {
	return b.regs
}

// EmitLoadImm appends load_imm dst, imm.
func (b *Builder) EmitLoadImm(dst Reg, imm int64) {
	b.code = append(b.code, byte(OpLoadImm), byte(dst))
	b.code = binary.LittleEndian.AppendUint64(b.code, uint64(imm))
}

func (b *Builder) emitThreeReg(op OpCode, dst, a, c Reg) {
	b.code = append(b.code, byte(op), byte(dst), byte(a), byte(c))
}

// EmitAdd appends add dst, a, c.
func (b *Builder) EmitAdd(dst, a, c Reg) { b.emitThreeReg(OpAdd, dst, a, c) }

// EmitSub appends sub dst, a, c.
func (b *Builder) EmitSub(dst, a, c Reg) { b.emitThreeReg(OpSub, dst, a, c) }

// EmitMul appends mul dst, a, c.
func (b *Builder) EmitMul(dst, a, c Reg) { b.emitThreeReg(OpMul, dst, a, c) }

// EmitDiv appends div dst, a, c.
func (b *Builder) EmitDiv(dst, a, c Reg) { b.emitThreeReg(OpDiv, dst, a, c) }

// EmitCmpEq appends cmp_eq dst, a, c.
func (b *Builder) EmitCmpEq(dst, a, c Reg) { b.emitThreeReg(OpCmpEq, dst, a, c) }

// EmitCmpLt appends cmp_lt dst, a, c.
func (b *Builder) EmitCmpLt(dst, a, c Reg) { b.emitThreeReg(OpCmpLt, dst, a, c) }

// EmitCmpGt appends cmp_gt dst, a, c.
func (b *Builder) EmitCmpGt(dst, a, c Reg) { b.emitThreeReg(OpCmpGt, dst, a, c) }

// EmitThreeReg appends any of the register-to-register instructions. It
// panics if op is not one of them.
func (b *Builder) EmitThreeReg(op OpCode, dst, a, c Reg) {
	if !IsThreeReg(op) {
		panic(fmt.Sprintf("bytecode: %s is not a three-register instruction", op))
	}
	b.emitThreeReg(op, dst, a, c)
}

// EmitJmp appends an unconditional jump to target.
func (b *Builder) EmitJmp(target Label) {
	b.pending = append(b.pending, pendingJump{instrOffset: len(b.code), target: target})
	b.code = append(b.code, byte(OpJmp))
	b.code = binary.LittleEndian.AppendUint64(b.code, 0)
}

// EmitJmpIf appends a jump to target taken when cond is non-zero.
func (b *Builder) EmitJmpIf(target Label, cond Reg) {
	b.pending = append(b.pending, pendingJump{instrOffset: len(b.code), target: target})
	b.code = append(b.code, byte(OpJmpIf))
	b.code = binary.LittleEndian.AppendUint64(b.code, 0)
	b.code = append(b.code, byte(cond))
}

// Build resolves every pending jump and returns the finished code. Each
// offset is target position minus the position of the jump's own opcode
// byte. The builder is left unchanged, so Build may be called again after
// more instructions are emitted.
//
// Build fails with a *BuildError if a jump targets a label that was never
// bound or if the builder was misused while emitting.
func (b *Builder) Build() ([]byte, error) {
	if b.misuse != nil {
		return nil, b.misuse
	}

	code := make([]byte, len(b.code))
	copy(code, b.code)

	for _, j := range b.pending {
		if int(j.target) >= len(b.labels) {
			return nil, &BuildError{Label: j.target, Offset: j.instrOffset, Err: ErrUnknownLabel}
		}
		pos := b.labels[j.target]
		if pos == unbound {
			return nil, &BuildError{Label: j.target, Offset: j.instrOffset, Err: ErrUnboundLabel}
		}
		rel := int64(pos - j.instrOffset)
		binary.LittleEndian.PutUint64(code[j.instrOffset+OpCodeSize:], uint64(rel))
	}

	return code, nil
}

// MustBuild is like Build but panics on misuse. An unresolved jump is a bug
// in the caller, not an input error.
func (b *Builder) MustBuild() []byte {
	code, err := b.Build()
	if err != nil {
		panic(err)
	}
	return code
}
