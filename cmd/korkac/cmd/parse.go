package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"korka/pkg/compiler"
	"korka/pkg/utils"
)

func newParseCmd(opts *options) *cobra.Command {
	var formatFlag string

	parseCmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Print the syntax tree of a source file (\"-\" reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := opts.resolveFormat(formatFlag)
			if err != nil {
				return err
			}

			name, src, err := utils.ReadSource(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}

			unit, err := compiler.Compile(string(src))
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), opts.diagnostic(name, err, string(src)))
				return errReported
			}
			opts.log.Debug("parsed", "file", name, "tokens", len(unit.Tokens), "nodes", unit.Pool.Len())

			out := cmd.OutOrStdout()
			if format == "text" {
				fmt.Fprintln(out, unit.Dump(opts.cfg.Dump.Indent))
				return nil
			}

			tree, err := compiler.Export(unit.Pool, unit.Root)
			if err != nil {
				return err
			}
			return opts.writeStructured(out, format, tree)
		},
	}

	parseCmd.Flags().StringVarP(&formatFlag, "format", "f", "", "output format: text, json or yaml (default from config)")
	return parseCmd
}
