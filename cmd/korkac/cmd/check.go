package cmd

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"korka/pkg/compiler"
	"korka/pkg/utils"
)

// checkResult is the outcome for one input file.
type checkResult struct {
	name      string
	functions int
	report    string // rendered diagnostic; empty on success
}

func newCheckCmd(opts *options) *cobra.Command {
	var jobs int

	checkCmd := &cobra.Command{
		Use:   "check FILE...",
		Short: "Lex and parse every file, reporting all failures",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if jobs <= 0 {
				jobs = opts.cfg.Check.Jobs
			}
			if i := slices.Index(args, utils.StdinPath); i >= 0 && slices.Contains(args[i+1:], utils.StdinPath) {
				return fmt.Errorf("stdin (%q) can be checked at most once", utils.StdinPath)
			}
			stdin := cmd.InOrStdin()

			results := make([]checkResult, len(args))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(jobs)

			for i, path := range args {
				g.Go(func() error {
					if err := ctx.Err(); err != nil {
						return err
					}
					results[i] = opts.checkFile(path, stdin)
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			failed := 0
			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
			for _, r := range results {
				if r.report != "" {
					failed++
					fmt.Fprintln(errOut, r.report)
					continue
				}
				fmt.Fprintf(out, "%s %s (%d functions)\n", opts.ok("ok"), r.name, r.functions)
			}

			opts.log.Debug("check finished", "files", len(args), "failed", failed, "jobs", jobs)
			if failed > 0 {
				fmt.Fprintf(errOut, "%d of %d files failed\n", failed, len(args))
				return errReported
			}
			return nil
		},
	}

	checkCmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "parallel workers (default from config)")
	return checkCmd
}

// checkFile runs the front end over one file. Each call owns its lexer,
// parser and pool. stdin is only read when path is "-".
func (o *options) checkFile(path string, stdin io.Reader) checkResult {
	name, src, err := utils.ReadSource(path, stdin)
	if err != nil {
		return checkResult{name: path, report: fmt.Sprintf("%s: %v", path, err)}
	}

	unit, err := compiler.Compile(string(src))
	if err != nil {
		return checkResult{name: name, report: o.diagnostic(name, err, string(src))}
	}
	return checkResult{name: name, functions: len(unit.Functions())}
}
