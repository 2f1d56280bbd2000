package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"korka/pkg/bytecode"
	"korka/pkg/utils"
)

func newDisasmCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "disasm FILE",
		Short: "Decode a bytecode file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, code, err := utils.ReadSource(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}

			text, err := bytecode.Disassemble(code)
			fmt.Fprint(cmd.OutOrStdout(), text)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			opts.log.Debug("disassembled", "file", name, "bytes", len(code))
			return nil
		},
	}
}
