// Package engine orchestrates the full notice intelligence pipeline:
// deterministic classification and extraction, playbook lookup, deadline and
// evidence intelligence, risk guardrails, and constrained response
// generation.  Everything except the generator call is pure logic; the
// generator produces only the letter body and its output is re-checked and
// sanitized before it reaches the caller.
package engine

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/taxletterhelp/notice-intelligence/internal/intelligence/classify"
	"github.com/taxletterhelp/notice-intelligence/internal/intelligence/deadline"
	"github.com/taxletterhelp/notice-intelligence/internal/intelligence/evidence"
	"github.com/taxletterhelp/notice-intelligence/internal/intelligence/format"
	"github.com/taxletterhelp/notice-intelligence/internal/intelligence/playbook"
	"github.com/taxletterhelp/notice-intelligence/internal/intelligence/risk"
	apperrors "github.com/taxletterhelp/notice-intelligence/pkg/errors"
)

// SystemVersion is stamped into every analysis result.
const SystemVersion = "1.0.0"

// Generator produces the body of a response letter from a constrained prompt
// pair.  Implementations must honor ctx cancellation.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return f(ctx, systemPrompt, userPrompt)
}

// ---------------------------------------------------------------------------
// Engine
// ---------------------------------------------------------------------------

// Engine runs analyses and response generation.  Safe for concurrent use.
type Engine struct {
	logger *zap.Logger
	now    func() time.Time
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger attaches a structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock overrides the time source.  Used by tests and anywhere
// deterministic output is required.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New constructs an Engine with a no-op logger and the wall clock.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ---------------------------------------------------------------------------
// Analysis
// ---------------------------------------------------------------------------

// UserContext carries optional taxpayer-supplied context for an analysis.
type UserContext struct {
	UserInput  string `json:"userInput"`
	Complexity string `json:"complexity"`
}

// AnalyzeOptions are the optional inputs to Analyze.
type AnalyzeOptions struct {
	Documents   []evidence.Document `json:"documents"`
	UserContext UserContext         `json:"userContext"`
}

// Metadata summarizes an analysis run.
type Metadata struct {
	AnalysisDate             time.Time           `json:"analysisDate"`
	SystemVersion            string              `json:"systemVersion"`
	ConfidenceLevel          classify.Confidence `json:"confidenceLevel"`
	RequiresProfessionalHelp bool                `json:"requiresProfessionalHelp"`
	RiskLevel                string              `json:"riskLevel"`
}

// AnalysisResult is the complete intelligence bundle for one notice.
type AnalysisResult struct {
	Classification             classify.NoticeClassification `json:"classification"`
	Playbook                   playbook.Playbook             `json:"playbook"`
	DeadlineIntelligence       deadline.Intelligence         `json:"deadlineIntelligence"`
	FinancialInfo              classify.FinancialInfo        `json:"financialInfo"`
	EvidenceMap                *evidence.Map                 `json:"evidenceMap,omitempty"`
	EvidenceValidation         *evidence.Validation          `json:"evidenceValidation,omitempty"`
	RiskAnalysis               *risk.Analysis                `json:"riskAnalysis,omitempty"`
	ProfessionalHelpAssessment playbook.HelpAssessment       `json:"professionalHelpAssessment"`
	ProfessionalReviewNeed     *risk.ReviewAssessment        `json:"professionalReviewNeed,omitempty"`
	AnalysisOutput             string                        `json:"analysisOutput"`
	Metadata                   Metadata                      `json:"metadata"`
}

// Analyze runs the deterministic pipeline over the raw notice text.
func (e *Engine) Analyze(ctx context.Context, letterText string, opts AnalyzeOptions) (*AnalysisResult, error) {
	if strings.TrimSpace(letterText) == "" {
		return nil, apperrors.EmptyNoticeText()
	}
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeTimeout, "analysis canceled")
	}

	now := e.now()

	classification := classify.Classify(letterText)
	deadlineInfo := classify.ExtractDeadline(letterText, now)
	financialInfo := classify.ExtractFinancials(letterText)

	pb := playbook.GetPlaybook(classification.NoticeType)
	intel := deadline.Build(classification, deadlineInfo)

	var evidenceMap *evidence.Map
	var evidenceValidation *evidence.Validation
	if len(opts.Documents) > 0 {
		m := evidence.MapEvidence(opts.Documents, classification)
		v := evidence.ValidateEvidence(m, pb)
		evidenceMap = &m
		evidenceValidation = &v
	}

	amount := 0.0
	switch {
	case financialInfo.BalanceDue != nil:
		amount = *financialInfo.BalanceDue
	case financialInfo.LargestAmount != nil:
		amount = *financialInfo.LargestAmount
	}
	complexity := opts.UserContext.Complexity
	if complexity == "" {
		complexity = "standard"
	}
	helpAssessment := playbook.AssessProfessionalHelpNeed(classification.NoticeType, amount, complexity)

	var riskAnalysis *risk.Analysis
	var reviewNeed *risk.ReviewAssessment
	if opts.UserContext.UserInput != "" {
		analysis := risk.AnalyzeRisks(opts.UserContext.UserInput)
		balance := 0.0
		if financialInfo.BalanceDue != nil {
			balance = *financialInfo.BalanceDue
		}
		review := risk.AssessProfessionalReviewNeed(analysis, classification, balance)
		riskAnalysis = &analysis
		reviewNeed = &review
	}

	output := format.FormatAnalysisOutput(format.AnalysisParams{
		Classification: classification,
		DeadlineIntel:  intel,
		FinancialInfo:  financialInfo,
		RiskAnalysis:   riskAnalysis,
		HelpAssessment: helpAssessment,
	})
	disclaimer := format.FormatDisclaimer(classification, riskAnalysis)

	riskLevel := "UNKNOWN"
	if riskAnalysis != nil {
		riskLevel = string(riskAnalysis.OverallRisk)
	}

	e.logger.Info("notice analyzed",
		zap.String("notice_type", string(classification.NoticeType)),
		zap.String("confidence", string(classification.Confidence)),
		zap.String("urgency", string(intel.Deadline.UrgencyLevel)),
		zap.Int("documents", len(opts.Documents)),
	)

	return &AnalysisResult{
		Classification:             classification,
		Playbook:                   pb,
		DeadlineIntelligence:       intel,
		FinancialInfo:              financialInfo,
		EvidenceMap:                evidenceMap,
		EvidenceValidation:         evidenceValidation,
		RiskAnalysis:               riskAnalysis,
		ProfessionalHelpAssessment: helpAssessment,
		ProfessionalReviewNeed:     reviewNeed,
		AnalysisOutput:             output + disclaimer,
		Metadata: Metadata{
			AnalysisDate:             now,
			SystemVersion:            SystemVersion,
			ConfidenceLevel:          classification.Confidence,
			RequiresProfessionalHelp: helpAssessment.RecommendProfessional,
			RiskLevel:                riskLevel,
		},
	}, nil
}

// ---------------------------------------------------------------------------
// Generation
// ---------------------------------------------------------------------------

// UserPosition is the taxpayer's stated stance and free-text inputs for
// response generation.
type UserPosition struct {
	Stance          playbook.Stance `json:"stance"`
	Explanation     string          `json:"explanation"`
	RequestedAction string          `json:"requestedAction"`
}

// PositionError reports a stance the playbook does not allow.
type PositionError struct {
	Message          string            `json:"message"`
	AllowedPositions []playbook.Stance `json:"allowedPositions"`
}

// GenerationWarning reports user input that was rejected by the safety layer
// before any generation happened.
type GenerationWarning struct {
	Message        string   `json:"message"`
	FlaggedPhrases []string `json:"flaggedPhrases,omitempty"`
	RiskReport     string   `json:"riskReport,omitempty"`
	Recommendation string   `json:"recommendation"`
}

// GenerationMetadata summarizes a generation run.
type GenerationMetadata struct {
	GenerationDate time.Time           `json:"generationDate"`
	NoticeType     classify.NoticeType `json:"noticeType"`
	UserPosition   playbook.Stance     `json:"userPosition"`
	RiskLevel      risk.Level          `json:"riskLevel"`
	RequiresReview bool                `json:"requiresReview"`
}

// GeneratedResponse is a successfully produced response package.
type GeneratedResponse struct {
	ResponseLetter         string                `json:"responseLetter"`
	RiskAnalysis           risk.Analysis         `json:"riskAnalysis"`
	SanitizationReport     *risk.SanitizeResult  `json:"sanitizationReport,omitempty"`
	ProfessionalReviewNeed risk.ReviewAssessment `json:"professionalReviewNeed"`
	AttachmentInstructions string                `json:"attachmentInstructions,omitempty"`
	Metadata               GenerationMetadata    `json:"metadata"`
}

// GenerateResult is the outcome of Generate.  Exactly one of Error, Warning
// or Response is set: policy violations are data, not Go errors.
type GenerateResult struct {
	Error    *PositionError     `json:"error,omitempty"`
	Warning  *GenerationWarning `json:"warning,omitempty"`
	Response *GeneratedResponse `json:"response,omitempty"`
}

// Generate produces a response letter from a prior analysis.  The returned
// error is non-nil only for generator failures; validation and safety
// rejections come back inside the GenerateResult.
func (e *Engine) Generate(ctx context.Context, analysis *AnalysisResult, position UserPosition, generator Generator) (*GenerateResult, error) {
	if analysis == nil {
		return nil, apperrors.InvalidParam("analysis must not be nil")
	}
	if generator == nil {
		return nil, apperrors.InvalidParam("generator must not be nil")
	}

	classification := analysis.Classification

	validation := playbook.ValidateUserPosition(classification.NoticeType, position.Stance)
	if !validation.Valid {
		return &GenerateResult{Error: &PositionError{
			Message:          validation.Message,
			AllowedPositions: validation.AllowedPositions,
		}}, nil
	}

	prohibited := playbook.CheckProhibitedLanguage(position.Explanation, classification.NoticeType)
	if prohibited.HasProhibitedLanguage {
		return &GenerateResult{Warning: &GenerationWarning{
			Message:        "Your explanation contains language that could harm your case",
			FlaggedPhrases: prohibited.FlaggedPhrases,
			Recommendation: "Please revise your explanation to avoid these phrases",
		}}, nil
	}

	inputRisk := risk.AnalyzeRisks(position.Explanation)
	if inputRisk.OverallRisk == risk.LevelCritical || inputRisk.OverallRisk == risk.LevelHigh {
		report := risk.GenerateRiskReport(inputRisk, risk.ReviewAssessment{
			NeedsReview:    true,
			Urgency:        risk.ReviewStronglyRecommended,
			Reasons:        []string{"User input contains risky language"},
			Recommendation: "WARNING: Professional review is strongly recommended before sending this response.",
		})
		return &GenerateResult{Warning: &GenerationWarning{
			Message:        "Your explanation contains statements that could increase your risk",
			RiskReport:     report,
			Recommendation: "Please review and revise your explanation, or consult a tax professional",
		}}, nil
	}

	systemPrompt := buildConstrainedSystemPrompt(classification, analysis.Playbook, analysis.DeadlineIntelligence)
	userPrompt := buildConstrainedUserPrompt(position, analysis.EvidenceMap)

	content, err := generator.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		e.logger.Error("response generation failed",
			zap.String("notice_type", string(classification.NoticeType)),
			zap.Error(err),
		)
		return nil, apperrors.GenerationFailed(err)
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.New(apperrors.ErrCodeGenerationEmptyOutput, "generator returned empty output")
	}

	outputRisk := risk.AnalyzeRisks(content)

	finalContent := content
	var sanitization *risk.SanitizeResult
	if outputRisk.OverallRisk == risk.LevelCritical || outputRisk.OverallRisk == risk.LevelHigh {
		result := risk.SanitizeText(content, outputRisk)
		finalContent = result.SanitizedText
		sanitization = &result
	}

	var evidenceMap evidence.Map
	if analysis.EvidenceMap != nil {
		evidenceMap = *analysis.EvidenceMap
	}

	now := e.now()
	letter := format.FormatResponseLetter(format.LetterParams{
		Classification:   classification,
		EvidenceMap:      evidenceMap,
		GeneratedContent: finalContent,
		Now:              now,
	})
	disclaimer := format.FormatDisclaimer(classification, &outputRisk)

	balance := 0.0
	if analysis.FinancialInfo.BalanceDue != nil {
		balance = *analysis.FinancialInfo.BalanceDue
	}
	reviewNeed := risk.AssessProfessionalReviewNeed(outputRisk, classification, balance)

	attachmentInstructions := ""
	if analysis.EvidenceMap != nil {
		attachmentInstructions = evidence.GenerateAttachmentInstructions(*analysis.EvidenceMap)
	}

	e.logger.Info("response generated",
		zap.String("notice_type", string(classification.NoticeType)),
		zap.String("stance", string(position.Stance)),
		zap.String("risk_level", string(outputRisk.OverallRisk)),
		zap.Bool("sanitized", sanitization != nil),
	)

	return &GenerateResult{Response: &GeneratedResponse{
		ResponseLetter:         letter + disclaimer,
		RiskAnalysis:           outputRisk,
		SanitizationReport:     sanitization,
		ProfessionalReviewNeed: reviewNeed,
		AttachmentInstructions: attachmentInstructions,
		Metadata: GenerationMetadata{
			GenerationDate: now,
			NoticeType:     classification.NoticeType,
			UserPosition:   position.Stance,
			RiskLevel:      outputRisk.OverallRisk,
			RequiresReview: reviewNeed.NeedsReview,
		},
	}}, nil
}
