package cli

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kirillkom/portfolio-builder/internal/core/domain"
)

type classifiedName struct {
	Name                string          `json:"name"`
	Category            domain.Category `json:"category"`
	CategoryDescription string          `json:"categoryDescription"`
}

func newClassifyCommand(opts *options, s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "classify NAME...",
		Short: "Assign a portfolio category to each file name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs := s.engine.ClassifyNames(args)
			if opts.asJSON {
				out := make([]classifiedName, 0, len(docs))
				for _, doc := range docs {
					out = append(out, classifiedName{Name: doc.Name, Category: doc.Category, CategoryDescription: doc.CategoryDescription})
				}
				return writeJSON(cmd.OutOrStdout(), map[string]any{"documents": out})
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, doc := range docs {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", doc.Name, doc.Category, doc.CategoryDescription)
			}
			return tw.Flush()
		},
	}
}

func newDescribeCommand(opts *options, s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "describe NAME",
		Short: "Generate a description for one file name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			description := s.engine.Describe(args[0])
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"name": args[0], "description": description})
			}
			return writeWrapped(cmd.OutOrStdout(), opts.width, description)
		},
	}
}

func newSummarizeCommand(opts *options, s *session) *cobra.Command {
	var student string

	cmd := &cobra.Command{
		Use:   "summarize [--student NAME] FILE...",
		Short: "Write the \"about me\" paragraph for a set of documents",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := make([]string, len(args))
			for i, arg := range args {
				names[i] = filepath.Base(arg)
			}
			summary := s.engine.Summarize(s.engine.ClassifyNames(names), student)
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"summary": summary})
			}
			return writeWrapped(cmd.OutOrStdout(), opts.width, summary)
		},
	}
	cmd.Flags().StringVar(&student, "student", "", "Student name used in the summary")
	return cmd
}
