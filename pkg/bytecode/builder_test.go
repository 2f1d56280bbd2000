package bytecode

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"reflect"
	"testing"
)

// le64 returns the little-endian encoding of v.
func le64(v int64) []byte {
	u := uint64(v)
	out := make([]byte, 8)
	for i := range out {
		out[i] = byte(u >> (8 * i))
	}
	return out
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestInstructionSizes(t *testing.T) {
	tests := []struct {
		op     OpCode
		size   int
		wantOk bool
	}{
		{OpLoadImm, 10, true},
		{OpAdd, 4, true},
		{OpSub, 4, true},
		{OpMul, 4, true},
		{OpDiv, 4, true},
		{OpCmpEq, 4, true},
		{OpCmpLt, 4, true},
		{OpCmpGt, 4, true},
		{OpJmp, 9, true},
		{OpJmpIf, 10, true},
		{OpLoadArg, 0, false},
		{OpCall, 0, false},
		{OpRet, 0, false},
		{OpCode(200), 0, false},
	}
	for _, tc := range tests {
		size, ok := InstructionSize(tc.op)
		if size != tc.size || ok != tc.wantOk {
			t.Errorf("InstructionSize(%s) = %d, %v; want %d, %v", tc.op, size, ok, tc.size, tc.wantOk)
		}
	}
}

func TestOpCodeValues(t *testing.T) {
	want := []OpCode{OpLoadImm, OpLoadArg, OpAdd, OpSub, OpMul, OpDiv, OpCmpEq, OpCmpLt, OpCmpGt, OpJmp, OpJmpIf, OpCall, OpRet}
	for i, op := range want {
		if int(op) != i {
			t.Errorf("%s = %d; want %d", op, op, i)
		}
	}

	if op, ok := ParseOpCode("JMP_IF"); !ok || op != OpJmpIf {
		t.Errorf("ParseOpCode(JMP_IF) = %v, %v", op, ok)
	}
	if _, ok := ParseOpCode("nop"); ok {
		t.Errorf("ParseOpCode(nop) should fail")
	}
}

func TestRegsAndLabelsCountUp(t *testing.T) {
	b := NewBuilder()
	for i := 0; i < 3; i++ {
		if r := b.NewReg(); r != Reg(i) {
			t.Errorf("NewReg #%d = %s; want r%d", i, r, i)
		}
		if l := b.MakeLabel(); l != Label(i) {
			t.Errorf("MakeLabel #%d = %s; want L%d", i, l, i)
		}
	}
	if b.Regs() != 3 || b.Labels() != 3 {
		t.Errorf("Regs/Labels = %d/%d; want 3/3", b.Regs(), b.Labels())
	}
}

func TestEmitEncoding(t *testing.T) {
	b := NewBuilder()
	b.EmitLoadImm(1, -2)
	b.EmitAdd(0, 1, 2)
	b.EmitSub(3, 4, 5)
	b.EmitMul(6, 7, 8)
	b.EmitDiv(9, 10, 11)
	b.EmitCmpEq(1, 2, 3)
	b.EmitCmpLt(4, 5, 6)
	b.EmitCmpGt(7, 8, 9)

	want := concat(
		[]byte{byte(OpLoadImm), 1}, le64(-2),
		[]byte{byte(OpAdd), 0, 1, 2},
		[]byte{byte(OpSub), 3, 4, 5},
		[]byte{byte(OpMul), 6, 7, 8},
		[]byte{byte(OpDiv), 9, 10, 11},
		[]byte{byte(OpCmpEq), 1, 2, 3},
		[]byte{byte(OpCmpLt), 4, 5, 6},
		[]byte{byte(OpCmpGt), 7, 8, 9},
	)

	got, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Build() =\n% x\nwant\n% x", got, want)
	}
	if b.Len() != len(want) {
		t.Errorf("Len() = %d; want %d", b.Len(), len(want))
	}
}

func TestForwardJump(t *testing.T) {
	b := NewBuilder()
	end := b.MakeLabel()
	b.EmitJmp(end)
	b.EmitAdd(0, 1, 2)
	b.Bind(end)

	want := concat(
		[]byte{byte(OpJmp)}, le64(13),
		[]byte{byte(OpAdd), 0, 1, 2},
	)
	got := b.MustBuild()
	if !bytes.Equal(got, want) {
		t.Errorf("got % x; want % x", got, want)
	}
}

func TestConditionalJump(t *testing.T) {
	b := NewBuilder()
	cond := b.NewReg()
	end := b.MakeLabel()
	b.EmitJmpIf(end, cond)
	b.EmitAdd(0, 1, 2)
	b.Bind(end)

	want := concat(
		[]byte{byte(OpJmpIf)}, le64(14), []byte{0},
		[]byte{byte(OpAdd), 0, 1, 2},
	)
	got := b.MustBuild()
	if !bytes.Equal(got, want) {
		t.Errorf("got % x; want % x", got, want)
	}
}

func TestBackwardJump(t *testing.T) {
	b := NewBuilder()
	loop := b.MakeLabel()
	b.Bind(loop)
	b.EmitAdd(0, 1, 2)
	b.EmitJmp(loop)

	want := concat(
		[]byte{byte(OpAdd), 0, 1, 2},
		[]byte{byte(OpJmp)}, le64(-4),
	)
	got := b.MustBuild()
	if !bytes.Equal(got, want) {
		t.Errorf("got % x; want % x", got, want)
	}
}

func TestJumpToSelf(t *testing.T) {
	b := NewBuilder()
	l := b.MakeLabel()
	b.Bind(l)
	b.EmitJmp(l)

	got := b.MustBuild()
	want := concat([]byte{byte(OpJmp)}, le64(0))
	if !bytes.Equal(got, want) {
		t.Errorf("got % x; want % x", got, want)
	}
}

func TestBuildDoesNotMutateBuilder(t *testing.T) {
	b := NewBuilder()
	l := b.MakeLabel()
	b.EmitJmp(l)
	b.Bind(l)

	first := b.MustBuild()
	b.EmitAdd(0, 0, 0)
	second := b.MustBuild()

	if !bytes.Equal(second[:len(first)], first) {
		t.Errorf("second build changed the prefix: % x vs % x", second[:len(first)], first)
	}
	if len(second) != len(first)+ArithSize {
		t.Errorf("second build length = %d; want %d", len(second), len(first)+ArithSize)
	}
}

func TestUnboundLabel(t *testing.T) {
	b := NewBuilder()
	b.EmitAdd(0, 0, 0)
	l := b.MakeLabel()
	b.EmitJmp(l)

	code, err := b.Build()
	if err == nil {
		t.Fatalf("Build succeeded with % x; want an error", code)
	}
	if !errors.Is(err, ErrUnboundLabel) {
		t.Errorf("error %v does not wrap ErrUnboundLabel", err)
	}
	var be *BuildError
	if !errors.As(err, &be) {
		t.Fatalf("error %T is not a *BuildError", err)
	}
	if be.Offset != 4 || be.Label != l {
		t.Errorf("BuildError = %+v; want offset 4, label %s", be, l)
	}
}

func TestLabelRebound(t *testing.T) {
	b := NewBuilder()
	l := b.MakeLabel()
	b.Bind(l)
	b.EmitAdd(0, 0, 0)
	b.Bind(l)

	if _, err := b.Build(); !errors.Is(err, ErrLabelRebound) {
		t.Errorf("Build error = %v; want ErrLabelRebound", err)
	}
}

func TestUnknownLabel(t *testing.T) {
	b := NewBuilder()
	b.EmitJmp(Label(7))
	if _, err := b.Build(); !errors.Is(err, ErrUnknownLabel) {
		t.Errorf("Build error = %v; want ErrUnknownLabel", err)
	}
}

func TestRegisterOverflow(t *testing.T) {
	b := NewBuilder()
	for i := 0; i < MaxRegs; i++ {
		b.NewReg()
	}
	if _, err := b.Build(); err != nil {
		t.Fatalf("Build after %d regs failed: %v", MaxRegs, err)
	}
	b.NewReg()
	if _, err := b.Build(); !errors.Is(err, ErrRegisterOverflow) {
		t.Errorf("Build error = %v; want ErrRegisterOverflow", err)
	}
}

func TestEmitThreeRegRejectsJump(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("EmitThreeReg(jmp) did not panic")
		}
	}()
	NewBuilder().EmitThreeReg(OpJmp, 0, 0, 0)
}

func TestMustBuildPanicsOnUnboundLabel(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrUnboundLabel) {
			t.Errorf("recovered %v; want an ErrUnboundLabel error", r)
		}
	}()
	b := NewBuilder()
	b.EmitJmp(b.MakeLabel())
	b.MustBuild()
}

// The unrecovered panic must end the process with a failure status.
func TestMustBuildTerminatesProcess(t *testing.T) {
	if os.Getenv("KORKA_BYTECODE_CRASH") == "1" {
		b := NewBuilder()
		b.EmitJmp(b.MakeLabel())
		b.MustBuild()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestMustBuildTerminatesProcess$")
	cmd.Env = append(os.Environ(), "KORKA_BYTECODE_CRASH=1")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) || exitErr.Success() {
		t.Fatalf("child process err = %v; want a non-zero exit", err)
	}
	if !bytes.Contains(stderr.Bytes(), []byte("unbound label")) {
		t.Errorf("child stderr does not mention the unbound label:\n%s", stderr.String())
	}
}

func TestDecodeRoundTripsBuilderOutput(t *testing.T) {
	b := NewBuilder()
	top := b.MakeLabel()
	end := b.MakeLabel()
	b.Bind(top)
	b.EmitLoadImm(0, 42)
	b.EmitCmpLt(1, 0, 2)
	b.EmitJmpIf(end, 1)
	b.EmitJmp(top)
	b.Bind(end)

	ins, err := Decode(b.MustBuild())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	want := []Instruction{
		{Offset: 0, Op: OpLoadImm, Dst: 0, Imm: 42},
		{Offset: 10, Op: OpCmpLt, Dst: 1, A: 0, B: 2},
		{Offset: 14, Op: OpJmpIf, Cond: 1, Rel: 19},
		{Offset: 24, Op: OpJmp, Rel: -24},
	}
	if !reflect.DeepEqual(ins, want) {
		t.Errorf("Decode =\n%+v\nwant\n%+v", ins, want)
	}
	if ins[2].Target() != 33 || ins[3].Target() != 0 {
		t.Errorf("targets = %d, %d; want 33, 0", ins[2].Target(), ins[3].Target())
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		code []byte
	}{
		{"no encoding", []byte{byte(OpRet)}},
		{"unknown opcode", []byte{0xFF}},
		{"truncated", []byte{byte(OpLoadImm), 0, 1, 2}},
	}
	for _, tc := range tests {
		if _, err := Decode(tc.code); err == nil {
			t.Errorf("%s: Decode(% x) succeeded; want error", tc.name, tc.code)
		}
	}
}

func TestDisassemble(t *testing.T) {
	b := NewBuilder()
	l := b.MakeLabel()
	b.Bind(l)
	b.EmitAdd(0, 1, 2)
	b.EmitJmp(l)

	got, err := Disassemble(b.MustBuild())
	if err != nil {
		t.Fatalf("Disassemble failed: %v", err)
	}
	want := "0000  add      r0, r1, r2\n" +
		"0004  jmp      -4 (-> 0000)\n"
	if got != want {
		t.Errorf("Disassemble =\n%s\nwant\n%s", got, want)
	}
}
