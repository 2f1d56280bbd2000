// Package asm turns a textual listing of korka bytecode into bytes. It is a
// thin layer over bytecode.Builder: every mnemonic maps to one Emit call and
// every named label to one bytecode.Label.
//
//	loop:
//	    cmp_lt r2, r0, r1
//	    jmp_if done, r2     ; forward reference
//	    add    r0, r0, r3
//	    jmp    loop
//	done:
package asm

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"korka/pkg/bytecode"
)

var threeRegisterOps = map[string]bytecode.OpCode{
	"ADD":    bytecode.OpAdd,
	"SUB":    bytecode.OpSub,
	"MUL":    bytecode.OpMul,
	"DIV":    bytecode.OpDiv,
	"CMP_EQ": bytecode.OpCmpEq,
	"CMP_LT": bytecode.OpCmpLt,
	"CMP_GT": bytecode.OpCmpGt,
}

// SourceMap maps the byte offset of each emitted instruction to its 1-based
// source line.
type SourceMap map[int]int

// Offsets returns the mapped offsets in ascending order.
func (m SourceMap) Offsets() []int {
	offsets := make([]int, 0, len(m))
	for off := range m {
		offsets = append(offsets, off)
	}
	sort.Ints(offsets)
	return offsets
}

type labelInfo struct {
	name    string // spelling at first sight
	label   bytecode.Label
	defined bool
	useLine int // first line that referenced the label
}

// Assembler holds the label table for one listing.
type Assembler struct {
	b      *bytecode.Builder
	labels map[string]*labelInfo
}

type parsedLine struct {
	lineNo   int
	labels   []string
	mnemonic string
	operands []string
}

func NewAssembler() *Assembler {
	return &Assembler{
		b:      bytecode.NewBuilder(),
		labels: make(map[string]*labelInfo),
	}
}

// Assemble assembles code with a fresh Assembler.
func Assemble(code string) ([]byte, SourceMap, error) {
	return NewAssembler().Assemble(code)
}

// Assemble runs a single pass over code. Forward references need no
// separate pass because the builder patches jump offsets at the end.
func (a *Assembler) Assemble(code string) ([]byte, SourceMap, error) {
	lines := strings.Split(code, "\n")
	sourceMap := make(SourceMap)

	for i, raw := range lines {
		lineNo := i + 1
		p, err := parseLine(raw, lineNo)
		if err != nil {
			return nil, nil, err
		}

		for _, lbl := range p.labels {
			info := a.lookup(lbl, 0)
			if info.defined {
				return nil, nil, fmt.Errorf("duplicate label '%s' on line %d", lbl, lineNo)
			}
			info.defined = true
			a.b.Bind(info.label)
		}

		if p.mnemonic == "" {
			continue
		}

		sourceMap[a.b.Len()] = lineNo
		if err := a.emit(p); err != nil {
			return nil, nil, err
		}
	}

	if err := a.checkUndefined(); err != nil {
		return nil, nil, err
	}

	program, err := a.b.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("assembly error: %w", err)
	}
	return program, sourceMap, nil
}

func (a *Assembler) emit(p parsedLine) error {
	mnemonic, ops, lineNo := p.mnemonic, p.operands, p.lineNo

	if opcode, ok := threeRegisterOps[mnemonic]; ok {
		if len(ops) != 3 {
			return fmt.Errorf("%s expects 3 operands on line %d", mnemonic, lineNo)
		}
		regs := make([]bytecode.Reg, 3)
		for i, op := range ops {
			r, err := parseRegister(op, lineNo)
			if err != nil {
				return err
			}
			regs[i] = r
		}
		a.b.EmitThreeReg(opcode, regs[0], regs[1], regs[2])
		return nil
	}

	switch mnemonic {
	case "LOAD_IMM":
		if len(ops) != 2 {
			return fmt.Errorf("%s expects 2 operands on line %d", mnemonic, lineNo)
		}
		dst, err := parseRegister(ops[0], lineNo)
		if err != nil {
			return err
		}
		imm, err := parseImmediate(ops[1], lineNo)
		if err != nil {
			return err
		}
		a.b.EmitLoadImm(dst, imm)
		return nil

	case "JMP":
		if len(ops) != 1 {
			return fmt.Errorf("%s expects 1 operand on line %d", mnemonic, lineNo)
		}
		target, err := a.labelOperand(ops[0], lineNo)
		if err != nil {
			return err
		}
		a.b.EmitJmp(target)
		return nil

	case "JMP_IF":
		if len(ops) != 2 {
			return fmt.Errorf("%s expects 2 operands on line %d", mnemonic, lineNo)
		}
		target, err := a.labelOperand(ops[0], lineNo)
		if err != nil {
			return err
		}
		cond, err := parseRegister(ops[1], lineNo)
		if err != nil {
			return err
		}
		a.b.EmitJmpIf(target, cond)
		return nil

	case "LOAD_ARG", "CALL", "RET":
		return fmt.Errorf("%s has no encoding yet (line %d)", strings.ToLower(mnemonic), lineNo)
	}

	return fmt.Errorf("unknown instruction on line %d: %s", lineNo, mnemonic)
}

// lookup returns the table entry for name, creating the builder label on
// first sight.
func (a *Assembler) lookup(name string, useLine int) *labelInfo {
	key := normalizeLabel(name)
	info, ok := a.labels[key]
	if !ok {
		info = &labelInfo{name: name, label: a.b.MakeLabel()}
		a.labels[key] = info
	}
	if useLine > 0 && info.useLine == 0 {
		info.useLine = useLine
	}
	return info
}

func (a *Assembler) labelOperand(token string, lineNo int) (bytecode.Label, error) {
	if !isIdentifier(token) {
		return 0, fmt.Errorf("invalid label '%s' on line %d", token, lineNo)
	}
	return a.lookup(token, lineNo).label, nil
}

// checkUndefined reports the earliest reference to a label that was never
// defined.
func (a *Assembler) checkUndefined() error {
	var missing *labelInfo
	for _, info := range a.labels {
		if info.defined || info.useLine == 0 {
			continue
		}
		if missing == nil || info.useLine < missing.useLine ||
			(info.useLine == missing.useLine && info.label < missing.label) {
			missing = info
		}
	}
	if missing == nil {
		return nil
	}
	return fmt.Errorf("undefined label '%s' on line %d", missing.name, missing.useLine)
}

func parseLine(raw string, lineNo int) (parsedLine, error) {
	p := parsedLine{lineNo: lineNo}

	line := strings.TrimSpace(stripComments(raw))
	if line == "" {
		return p, nil
	}

	for {
		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			break
		}

		beforeColon := strings.TrimSpace(line[:colon])
		if beforeColon == "" {
			return p, fmt.Errorf("invalid label on line %d", lineNo)
		}

		if strings.ContainsAny(beforeColon, " \t") {
			break
		}

		if !isIdentifier(beforeColon) {
			return p, fmt.Errorf("invalid label '%s' on line %d", beforeColon, lineNo)
		}

		p.labels = append(p.labels, beforeColon)
		line = strings.TrimSpace(line[colon+1:])
		if line == "" {
			return p, nil
		}
	}

	fields := strings.Fields(normalizeInstructionText(line))
	if len(fields) == 0 {
		return p, nil
	}

	p.mnemonic = strings.ToUpper(fields[0])
	if len(fields) > 1 {
		p.operands = fields[1:]
	}

	return p, nil
}

func stripComments(line string) string {
	semicolon := strings.Index(line, ";")
	doubleSlash := strings.Index(line, "//")

	cut := -1
	if semicolon >= 0 {
		cut = semicolon
	}
	if doubleSlash >= 0 && (cut == -1 || doubleSlash < cut) {
		cut = doubleSlash
	}
	if cut >= 0 {
		return line[:cut]
	}
	return line
}

func normalizeInstructionText(line string) string {
	return strings.ReplaceAll(line, ",", " ")
}

// parseRegister accepts r0 through r255, in either case.
func parseRegister(token string, lineNo int) (bytecode.Reg, error) {
	if len(token) < 2 || (token[0] != 'r' && token[0] != 'R') {
		return 0, fmt.Errorf("invalid register '%s' on line %d", token, lineNo)
	}
	digits := token[1:]
	if len(digits) > 1 && digits[0] == '0' {
		return 0, fmt.Errorf("invalid register '%s' on line %d", token, lineNo)
	}
	n, err := strconv.ParseUint(digits, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid register '%s' on line %d", token, lineNo)
	}
	return bytecode.Reg(n), nil
}

// parseImmediate accepts any signed 64-bit integer literal Go understands
// (decimal, 0x, 0o, 0b, with optional sign and underscores).
func parseImmediate(token string, lineNo int) (int64, error) {
	value, err := strconv.ParseInt(token, 0, 64)
	if err == nil {
		return value, nil
	}
	if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
		return 0, fmt.Errorf("immediate out of range on line %d: %s", lineNo, token)
	}
	return 0, fmt.Errorf("invalid immediate '%s' on line %d", token, lineNo)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}
			continue
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}

	return true
}

func normalizeLabel(label string) string {
	return strings.ToUpper(label)
}
