// Package cli implements the portfolio command line tool on top of the same
// engine the API uses. Nothing is persisted between invocations.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"

	"github.com/kirillkom/portfolio-builder/internal/config"
	"github.com/kirillkom/portfolio-builder/internal/core/knowledge"
	"github.com/kirillkom/portfolio-builder/internal/core/portfolio"
)

type options struct {
	seed          uint64
	knowledgeBase string
	asJSON        bool
	width         int
}

// session is filled by the root pre-run hook before any subcommand runs.
type session struct {
	cfg    config.Config
	kb     *knowledge.KnowledgeBase
	engine *portfolio.Engine
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	s := &session{}

	rootCmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Student portfolio builder",
		Long: `Classifies document file names into portfolio categories, generates descriptions
and an "about me" summary, and exports the portfolio as PDF or XLSX.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			s.cfg = config.Load()

			path := opts.knowledgeBase
			if path == "" {
				path = s.cfg.KnowledgeBasePath
			}
			kb, err := knowledge.Load(path)
			if err != nil {
				return err
			}

			seed := opts.seed
			if !cmd.Flags().Changed("seed") {
				seed = s.cfg.RandomSeed
			}
			s.kb = kb
			s.engine = portfolio.NewEngine(kb, portfolio.RandomFromSeed(seed))
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.Uint64Var(&opts.seed, "seed", 0, "Seed for reproducible descriptions (0 picks a random one)")
	flags.StringVar(&opts.knowledgeBase, "knowledge-base", "", "Path to a knowledge base YAML overriding the built-in tables")
	flags.BoolVar(&opts.asJSON, "json", false, "Print machine-readable JSON")
	flags.IntVar(&opts.width, "width", 80, "Wrap text output at this many columns")

	rootCmd.AddCommand(newClassifyCommand(opts, s))
	rootCmd.AddCommand(newDescribeCommand(opts, s))
	rootCmd.AddCommand(newSummarizeCommand(opts, s))
	rootCmd.AddCommand(newExportCommand(opts, s))

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func writeJSON(w io.Writer, payload any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(payload)
}

func writeWrapped(w io.Writer, width int, text string) error {
	if width > 0 {
		text = wordwrap.String(text, width)
	}
	_, err := fmt.Fprintln(w, text)
	return err
}
