// Package cmd implements the korkac command tree.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"korka/pkg/config"
)

// errReported marks a failure whose diagnostics were already written.
var errReported = errors.New("errors reported")

// options is the state shared by every subcommand of one root.
type options struct {
	cfgFile string
	verbose bool
	noColor bool

	cfg *config.Config
	log *slog.Logger
}

// NewRootCmd builds a fresh command tree. Each call has its own flag state.
func NewRootCmd() *cobra.Command {
	opts := &options{cfg: config.Default(), log: slog.New(slog.NewTextHandler(io.Discard, nil))}

	rootCmd := &cobra.Command{
		Use:   "korkac",
		Short: "korka front end: lexer, parser and bytecode tools",
		Long: `korkac drives the korka language front end.

Commands:
  lex     - print the token stream of a source file
  parse   - print the syntax tree of a source file
  check   - lex and parse many files in parallel
  asm     - assemble a bytecode listing
  disasm  - decode a bytecode file`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (.toml, .yaml or .yml)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging to stderr")
	rootCmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable styled diagnostics")

	rootCmd.AddCommand(
		newLexCmd(opts),
		newParseCmd(opts),
		newCheckCmd(opts),
		newAsmCmd(opts),
		newDisasmCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs korkac with the process arguments.
func Execute() error {
	err := NewRootCmd().Execute()
	if err != nil && !errors.Is(err, errReported) {
		printError(err)
	}
	return err
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "korkac: %v\n", err)
}

// setup loads the config file and installs the logger.
func (o *options) setup(stderr io.Writer) error {
	cfg, err := config.Load(o.cfgFile)
	if err != nil {
		return err
	}
	o.cfg = cfg

	level, _ := cfg.SlogLevel()
	if o.verbose {
		level = slog.LevelDebug
	}
	o.log = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	o.log.Debug("config loaded", "path", o.cfgFile, "dump", cfg.Dump.Format, "jobs", cfg.Check.Jobs)
	return nil
}

func (o *options) color() bool {
	return o.cfg.Diagnostics.Color && !o.noColor
}
