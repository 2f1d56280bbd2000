package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"korka/pkg/asm"
	"korka/pkg/utils"
)

func newAsmCmd(opts *options) *cobra.Command {
	var output string

	asmCmd := &cobra.Command{
		Use:   "asm FILE",
		Short: "Assemble a bytecode listing",
		Long: `Assemble a textual bytecode listing into a binary file.

One instruction per line:
  load_imm rD, imm
  add|sub|mul|div|cmp_eq|cmp_lt|cmp_gt rD, rA, rB
  jmp label
  jmp_if label, rC
Labels are written "name:"; ";" and "//" start comments.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, src, err := utils.ReadSource(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}

			out := output
			if out == "" {
				if args[0] == utils.StdinPath {
					return fmt.Errorf("-o is required when reading stdin")
				}
				out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".kbc"
			}

			code, sourceMap, err := asm.Assemble(string(src))
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			opts.log.Debug("assembled", "file", name, "bytes", len(code), "instructions", len(sourceMap))

			if err := utils.WriteOutput(out, code); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d bytes to %s\n", len(code), out)
			return nil
		},
	}

	asmCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: input with .kbc extension)")
	return asmCmd
}
