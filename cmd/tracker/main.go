package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jdgilhuly/premium_tracker/pkg/analysis"
	"github.com/jdgilhuly/premium_tracker/pkg/catalog"
	"github.com/jdgilhuly/premium_tracker/pkg/logging"
	"github.com/jdgilhuly/premium_tracker/pkg/report"
	"github.com/jdgilhuly/premium_tracker/pkg/snapshot"
)

var now = time.Now

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tracker",
		Short: "LLM reasoning premium tracker",
		Long: `Compare average reasoning-model prices with average base-model prices
across LLM providers and report whether the reasoning premium is collapsing.

With no arguments the compiled-in provider catalog is analyzed, the report
is printed, and a JSON snapshot is written to data/snapshots/latest.json.
The snapshot directory must already exist.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         runTrack,
	}

	root.Flags().StringP("catalog", "c", "", "Path to a YAML pricing catalog (default: built-in catalog)")
	root.Flags().StringP("output", "o", snapshot.DefaultPath, "Snapshot output path")
	root.Flags().Bool("no-color", false, "Disable colored output")
	root.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging on stderr")
	root.PersistentFlags().String("log-format", "text", "Log format: text, json")

	root.AddCommand(newValidateCmd())
	return root
}

// --- default command ---

func runTrack(cmd *cobra.Command, args []string) error {
	log := newLogger(cmd)

	cat := catalog.Default()
	if catPath, _ := cmd.Flags().GetString("catalog"); catPath != "" {
		loaded, err := catalog.Load(catPath)
		if err != nil {
			return fmt.Errorf("loading catalog: %w", err)
		}
		cat = loaded
	}
	if err := cat.Validate(); err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}
	log.Debug("catalog loaded", "providers", len(cat.Providers), "models", cat.ModelCount())

	rep := analysis.Analyze(cat, now())
	for _, p := range cat.Providers {
		if _, ok := rep.Providers[p.Name]; !ok {
			log.Debug("provider skipped: needs both base and reasoning models", "provider", p.Name)
		}
	}
	if rep.Summary == nil {
		log.Warn("no overall summary: catalog lacks base or reasoning prices")
	}

	out := cmd.OutOrStdout()
	noColor, _ := cmd.Flags().GetBool("no-color")
	report.PrintReport(out, cat, rep, !noColor && isTerminal(out))

	path, _ := cmd.Flags().GetString("output")
	if err := snapshot.Save(rep, path); err != nil {
		return err
	}
	log.Debug("snapshot written", "path", path)
	report.PrintSaved(out, path)
	return nil
}

// --- validate command ---

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <catalog.yaml>",
		Short: "Validate a pricing catalog file",
		Long: `Check a YAML pricing catalog for errors.

Reports duplicate or empty provider names, unnamed models, and negative
prices.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load(args[0])
			if err != nil {
				return fmt.Errorf("loading catalog: %w", err)
			}
			if err := cat.Validate(); err != nil {
				return fmt.Errorf("catalog validation failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Catalog %q is valid (%d providers, %d models).\n",
				args[0], len(cat.Providers), cat.ModelCount())
			return nil
		},
	}
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	format, _ := cmd.Flags().GetString("log-format")
	return logging.New(cmd.ErrOrStderr(), logging.ParseFormat(format), verbose)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
