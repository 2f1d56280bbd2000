package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"korka/pkg/compiler"
	"korka/pkg/utils"
)

func newLexCmd(opts *options) *cobra.Command {
	var formatFlag string

	lexCmd := &cobra.Command{
		Use:   "lex FILE",
		Short: "Print the token stream of a source file (\"-\" reads stdin)",
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

			tokens, err := compiler.Lex(string(src))
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), opts.diagnostic(name, err, string(src)))
				return errReported
			}
			opts.log.Debug("lexed", "file", name, "tokens", len(tokens))

			out := cmd.OutOrStdout()
			if format != "text" {
				return opts.writeStructured(out, format, tokenRecords(tokens))
			}
			for _, tok := range tokens {
				fmt.Fprintln(out, tok)
			}
			return nil
		},
	}

	lexCmd.Flags().StringVarP(&formatFlag, "format", "f", "", "output format: text, json or yaml (default from config)")
	return lexCmd
}
