package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taxletterhelp/notice-intelligence/internal/intelligence/engine"
)

type analyzeOptions struct {
	userInput  string
	complexity string
}

func newAnalyzeCmd(root *RootOptions) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Analyze an IRS notice letter",
		Long: "Analyze reads the notice text from a file (or stdin when the argument\n" +
			"is \"-\" or omitted) and prints the classification, deadlines, risks, and\n" +
			"recommended next steps.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validOutputFormat(root.OutputFormat); err != nil {
				return err
			}

			text, err := readNoticeText(cmd, args)
			if err != nil {
				return err
			}

			eng := engine.New()
			result, err := eng.Analyze(cmd.Context(), text, engine.AnalyzeOptions{
				UserContext: engine.UserContext{
					UserInput:  opts.userInput,
					Complexity: opts.complexity,
				},
			})
			if err != nil {
				return err
			}

			if root.OutputFormat == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			fmt.Fprintln(cmd.OutOrStdout(), result.AnalysisOutput)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.userInput, "user-input", "", "taxpayer's own description of the situation (risk-checked)")
	cmd.Flags().StringVar(&opts.complexity, "complexity", "standard", "situation complexity (simple, standard, complex)")

	return cmd
}
