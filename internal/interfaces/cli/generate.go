package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/taxletterhelp/notice-intelligence/internal/config"
	"github.com/taxletterhelp/notice-intelligence/internal/infrastructure/generation"
	"github.com/taxletterhelp/notice-intelligence/internal/intelligence/engine"
	"github.com/taxletterhelp/notice-intelligence/internal/intelligence/playbook"
)

type generateOptions struct {
	stance          string
	explanation     string
	requestedAction string

	baseURL string
	apiKey  string
	model   string
	timeout time.Duration
}

// newGeneratorFactory builds the model client; tests override it.
var newGeneratorFactory = func(cfg config.GenerationConfig) engine.Generator {
	return generation.NewClient(cfg, zap.NewNop())
}

func newGenerateCmd(root *RootOptions) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate [file]",
		Short: "Analyze a notice and draft a response letter",
		Long: "Generate analyzes the notice text and drafts a response letter for the\n" +
			"given stance.  The stance must be one the notice type allows; the drafted\n" +
			"letter is risk-checked and sanitized before it is printed.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validOutputFormat(root.OutputFormat); err != nil {
				return err
			}
			if opts.stance == "" {
				return fmt.Errorf("--stance is required")
			}

			text, err := readNoticeText(cmd, args)
			if err != nil {
				return err
			}

			eng := engine.New()
			analysis, err := eng.Analyze(cmd.Context(), text, engine.AnalyzeOptions{})
			if err != nil {
				return err
			}

			apiKey := opts.apiKey
			if apiKey == "" {
				apiKey = os.Getenv("NOTICE_GENERATION_API_KEY")
			}
			generator := newGeneratorFactory(config.GenerationConfig{
				BaseURL:     opts.baseURL,
				APIKey:      apiKey,
				Model:       opts.model,
				Timeout:     opts.timeout,
				MaxTokens:   2048,
				Temperature: 0.3,
			})

			result, err := eng.Generate(cmd.Context(), analysis, engine.UserPosition{
				Stance:          playbook.Stance(opts.stance),
				Explanation:     opts.explanation,
				RequestedAction: opts.requestedAction,
			}, generator)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if root.OutputFormat == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			switch {
			case result.Error != nil:
				fmt.Fprintf(out, "Position not allowed: %s\n", result.Error.Message)
				fmt.Fprintf(out, "Allowed positions: %v\n", result.Error.AllowedPositions)
			case result.Warning != nil:
				fmt.Fprintf(out, "WARNING: %s\n", result.Warning.Message)
				if result.Warning.RiskReport != "" {
					fmt.Fprintln(out, result.Warning.RiskReport)
				}
				fmt.Fprintln(out, result.Warning.Recommendation)
			default:
				fmt.Fprintln(out, result.Response.ResponseLetter)
				if result.Response.AttachmentInstructions != "" {
					fmt.Fprintln(out, result.Response.AttachmentInstructions)
				}
			}
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&opts.stance, "stance", "", "taxpayer's position (e.g. agree, partial_dispute, full_dispute)")
	fl.StringVar(&opts.explanation, "explanation", "", "taxpayer's explanation supporting the stance")
	fl.StringVar(&opts.requestedAction, "requested-action", "", "specific action requested from the IRS")
	fl.StringVar(&opts.baseURL, "base-url", config.DefaultGenerationBaseURL, "chat-completions API base URL")
	fl.StringVar(&opts.apiKey, "api-key", "", "API key (defaults to NOTICE_GENERATION_API_KEY)")
	fl.StringVar(&opts.model, "model", config.DefaultGenerationModel, "model used to draft the letter")
	fl.DurationVar(&opts.timeout, "timeout", 60*time.Second, "model request timeout")

	return cmd
}
