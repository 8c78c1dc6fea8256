// Command lintdoc checks an architecture document for required structure.
//
//	lintdoc docs/architecture.md
//	lintdoc watch docs/architecture.md
//	lintdoc serve --port 8090
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/lintdoc/internal/config"
	"github.com/dgallion1/lintdoc/internal/lint"
	"github.com/dgallion1/lintdoc/internal/loader"
	"github.com/dgallion1/lintdoc/internal/parser"
	"github.com/dgallion1/lintdoc/internal/report"
	"github.com/dgallion1/lintdoc/internal/rules"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// exitCode carries a process status out of a cobra RunE.
type exitCode int

func (e exitCode) Error() string { return fmt.Sprintf("exit status %d", int(e)) }

func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())

	var code exitCode
	switch {
	case err == nil:
		return report.ExitOK
	case errors.As(err, &code):
		return int(code)
	default:
		// Usage and configuration errors.
		fmt.Fprintln(stderr, "lintdoc:", err)
		return report.ExitError
	}
}

type cli struct {
	stdout, stderr io.Writer

	configPath string
	format     string
	noColor    bool
	verbose    bool
}

// env is everything a subcommand needs, built from flags and config.
type env struct {
	cfg    config.Config
	linter *lint.Linter
	log    *slog.Logger
	out    report.Options
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "lintdoc <path>",
		Short: "Lint an architecture document",
		Long: `lintdoc checks that an architecture document has the sections, DTO
mentions and mapping tables a hexagonal design guide needs.

Exit status is 0 when every rule passes (warnings allowed), 1 when any rule
fails and 2 when the document cannot be loaded.`,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.setup()
			if err != nil {
				return err
			}
			return exitCode(c.lintOnce(e, args[0]))
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "config file (default "+config.DefaultPath+" if present)")
	pf.StringVar(&c.format, "format", "", "output format: text or json")
	pf.BoolVar(&c.noColor, "no-color", false, "disable colored output")
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "debug logging and details for passing rules")

	root.AddCommand(c.rulesCmd(), c.watchCmd(), c.serveCmd())
	return root
}

// setup loads config and builds the CLI env with a stderr text logger.
func (c *cli) setup() (*env, error) {
	cfg, out, err := c.load()
	if err != nil {
		return nil, err
	}
	level := slog.LevelWarn
	if c.verbose {
		level = slog.LevelDebug
	}
	return newEnv(cfg, slog.New(slog.NewTextHandler(c.stderr, &slog.HandlerOptions{Level: level})), out)
}

func (c *cli) load() (config.Config, report.Options, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, report.Options{}, err
	}
	if c.format != "" {
		cfg.Format = c.format
	}
	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return config.Config{}, report.Options{}, err
	}
	return cfg, report.Options{Format: format, NoColor: c.noColor, Verbose: c.verbose}, nil
}

func newEnv(cfg config.Config, log *slog.Logger, out report.Options) (*env, error) {
	rs, err := rules.Build(cfg.RuleSettings())
	if err != nil {
		return nil, err
	}
	l := loader.New(cfg.MaxDocumentBytes, parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext})
	return &env{
		cfg:    cfg,
		linter: lint.New(l, rules.NewChecker(rs...), log, cfg.Server.StatsWindow),
		log:    log,
		out:    out,
	}, nil
}

// lintOnce lints path and writes the report, returning the exit status.
func (c *cli) lintOnce(e *env, path string) int {
	rep, err := e.linter.LintFile(path)
	if err != nil {
		w := c.stderr
		if e.out.Format == report.JSON {
			w = c.stdout
		}
		return report.EmitError(w, path, err, e.out)
	}
	code, err := report.Emit(c.stdout, rep, e.out)
	if err != nil {
		e.log.Error("write report", "error", err)
		return report.ExitError
	}
	return code
}

func (c *cli) rulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the registered rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.setup()
			if err != nil {
				return err
			}
			registered := e.linter.Rules()
			width := 0
			for _, r := range registered {
				width = max(width, len(r.Name()))
			}
			for _, r := range registered {
				fmt.Fprintf(c.stdout, "%-*s  %s\n", width, r.Name(), r.Description())
			}
			return nil
		},
	}
}
