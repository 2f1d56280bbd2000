package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"korka/pkg/compiler"
)

// tokenRecord is the structured form of a token.
type tokenRecord struct {
	Type   string `json:"type" yaml:"type"`
	Lexeme string `json:"lexeme" yaml:"lexeme"`
	Value  any    `json:"value,omitempty" yaml:"value,omitempty"`
	Line   int    `json:"line" yaml:"line"`
	Column int    `json:"column" yaml:"column"`
}

func tokenRecords(tokens []compiler.Token) []tokenRecord {
	out := make([]tokenRecord, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, tokenRecord{
			Type:   tok.Type.String(),
			Lexeme: tok.Lexeme,
			Value:  tok.Value.Interface(),
			Line:   tok.Line,
			Column: tok.Column,
		})
	}
	return out
}

// resolveFormat picks the --format flag when set, else dump.format.
func (o *options) resolveFormat(flag string) (string, error) {
	format := strings.ToLower(flag)
	if format == "" {
		format = o.cfg.Dump.Format
	}
	switch format {
	case "text", "json", "yaml":
		return format, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, json or yaml)", flag)
	}
}

// writeStructured encodes v as JSON or YAML using the configured indent.
func (o *options) writeStructured(w io.Writer, format string, v any) error {
	indent := o.cfg.Dump.Indent
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", strings.Repeat(" ", indent))
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(indent)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported structured format %q", format)
	}
}
