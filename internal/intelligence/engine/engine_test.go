package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxletterhelp/notice-intelligence/internal/intelligence/classify"
	"github.com/taxletterhelp/notice-intelligence/internal/intelligence/evidence"
	"github.com/taxletterhelp/notice-intelligence/internal/intelligence/playbook"
	"github.com/taxletterhelp/notice-intelligence/internal/intelligence/risk"
	apperrors "github.com/taxletterhelp/notice-intelligence/pkg/errors"
)

var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func newTestEngine() *Engine {
	return New(WithClock(func() time.Time { return testNow }))
}

func staticGenerator(content string) Generator {
	return GeneratorFunc(func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
		return content, nil
	})
}

const cp2000Letter = `Notice CP2000
We received information that does not match your 2023 tax return.
Proposed changes to your tax return.
BALANCE DUE: $12,500.00
Penalties: $310.75
You must respond by March 30, 2026.`

func TestAnalyze_EmptyTextRejected(t *testing.T) {
	t.Parallel()

	_, err := newTestEngine().Analyze(context.Background(), "   ", AnalyzeOptions{})

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNoticeEmptyText))
}

func TestAnalyze_CP2000FullPipeline(t *testing.T) {
	t.Parallel()

	got, err := newTestEngine().Analyze(context.Background(), cp2000Letter, AnalyzeOptions{})
	require.NoError(t, err)

	assert.Equal(t, classify.NoticeCP2000, got.Classification.NoticeType)
	assert.Equal(t, "Underreported Income Notice", got.Playbook.FullName)
	require.NotNil(t, got.FinancialInfo.BalanceDue)
	assert.Equal(t, 12500.0, *got.FinancialInfo.BalanceDue)

	// 20 days out on the fixed clock.
	assert.Equal(t, 20, got.DeadlineIntelligence.Deadline.DaysRemaining)

	// $12,500 exceeds the CP2000 help threshold of $10,000.
	assert.True(t, got.ProfessionalHelpAssessment.RecommendProfessional)
	assert.Equal(t, playbook.HelpHigh, got.ProfessionalHelpAssessment.Urgency)

	assert.Nil(t, got.EvidenceMap)
	assert.Nil(t, got.RiskAnalysis)

	assert.Contains(t, got.AnalysisOutput, "SECTION 1: WHAT THIS IRS NOTICE MEANS")
	assert.Contains(t, got.AnalysisOutput, "IMPORTANT DISCLAIMER")

	assert.Equal(t, testNow, got.Metadata.AnalysisDate)
	assert.Equal(t, SystemVersion, got.Metadata.SystemVersion)
	assert.Equal(t, "UNKNOWN", got.Metadata.RiskLevel)
}

func TestAnalyze_DeterministicOutput(t *testing.T) {
	t.Parallel()

	eng := newTestEngine()

	first, err := eng.Analyze(context.Background(), cp2000Letter, AnalyzeOptions{})
	require.NoError(t, err)
	second, err := eng.Analyze(context.Background(), cp2000Letter, AnalyzeOptions{})
	require.NoError(t, err)

	assert.Equal(t, first.AnalysisOutput, second.AnalysisOutput)
}

func TestAnalyze_WithDocumentsAndUserInput(t *testing.T) {
	t.Parallel()

	got, err := newTestEngine().Analyze(context.Background(), cp2000Letter, AnalyzeOptions{
		Documents: []evidence.Document{
			{Name: "W-2", Type: "W-2"},
			{Name: "2021 return", Description: "prior year return"},
		},
		UserContext: UserContext{UserInput: "I forgot to include the 1099."},
	})
	require.NoError(t, err)

	require.NotNil(t, got.EvidenceMap)
	assert.Len(t, got.EvidenceMap.ToAttach, 1)
	assert.Len(t, got.EvidenceMap.ToExclude, 1)
	require.NotNil(t, got.EvidenceValidation)
	assert.False(t, got.EvidenceValidation.IsComplete)

	require.NotNil(t, got.RiskAnalysis)
	assert.Equal(t, 90, got.RiskAnalysis.SafetyScore)
	require.NotNil(t, got.ProfessionalReviewNeed)
	assert.Equal(t, string(risk.LevelLow), got.Metadata.RiskLevel)
}

func TestAnalyze_CP504Scenario(t *testing.T) {
	t.Parallel()

	text := "CP504 FINAL NOTICE. Notice of intent to levy. AMOUNT DUE: $8,200. You must respond within 30 days."
	got, err := newTestEngine().Analyze(context.Background(), text, AnalyzeOptions{})
	require.NoError(t, err)

	assert.Equal(t, classify.NoticeCP504, got.Classification.NoticeType)
	// CP504 help is mandatory regardless of amount.
	assert.Equal(t, playbook.HelpCritical, got.ProfessionalHelpAssessment.Urgency)
	assert.True(t, got.Metadata.RequiresProfessionalHelp)
	assert.Contains(t, got.AnalysisOutput, "CRITICAL: This notice type carries serious consequences")
}

func TestGenerate_InvalidStance(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	analysis, err := e.Analyze(context.Background(), cp2000Letter, AnalyzeOptions{})
	require.NoError(t, err)

	got, err := e.Generate(context.Background(), analysis, UserPosition{Stance: "bogus_stance"}, staticGenerator("body"))
	require.NoError(t, err)

	require.NotNil(t, got.Error)
	assert.Nil(t, got.Response)
	assert.Equal(t, []playbook.Stance{"agree", "partial_dispute", "full_dispute"}, got.Error.AllowedPositions)
	assert.Contains(t, got.Error.Message, "Invalid position")
}

func TestGenerate_ProhibitedLanguageWarning(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	analysis, err := e.Analyze(context.Background(), cp2000Letter, AnalyzeOptions{})
	require.NoError(t, err)

	got, err := e.Generate(context.Background(), analysis, UserPosition{
		Stance:      "partial_dispute",
		Explanation: "Honestly, I didn't know about the extra income.",
	}, staticGenerator("body"))
	require.NoError(t, err)

	require.NotNil(t, got.Warning)
	assert.Contains(t, got.Warning.FlaggedPhrases, "I didn't know")
	assert.Equal(t, "Please revise your explanation to avoid these phrases", got.Warning.Recommendation)
}

func TestGenerate_RiskyExplanationWarning(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	analysis, err := e.Analyze(context.Background(), cp2000Letter, AnalyzeOptions{})
	require.NoError(t, err)

	// Avoids playbook-prohibited phrases but trips the risk guardrail.
	got, err := e.Generate(context.Background(), analysis, UserPosition{
		Stance:      "full_dispute",
		Explanation: "I lied on the return and I refuse to pay.",
	}, staticGenerator("body"))
	require.NoError(t, err)

	require.NotNil(t, got.Warning)
	assert.Contains(t, got.Warning.RiskReport, "=== RISK ANALYSIS REPORT ===")
	assert.Contains(t, got.Warning.Message, "increase your risk")
}

func TestGenerate_Success(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	analysis, err := e.Analyze(context.Background(), cp2000Letter, AnalyzeOptions{
		Documents: []evidence.Document{{Name: "W-2", Type: "W-2"}},
	})
	require.NoError(t, err)

	body := "I have reviewed the notice and dispute the proposed changes for the reasons stated below."
	got, err := e.Generate(context.Background(), analysis, UserPosition{
		Stance:          "full_dispute",
		Explanation:     "The 1099 amount was already reported on Schedule C.",
		RequestedAction: "Please dismiss the proposed changes.",
	}, staticGenerator(body))
	require.NoError(t, err)

	require.NotNil(t, got.Response)
	assert.Nil(t, got.Error)
	assert.Nil(t, got.Warning)

	assert.Contains(t, got.Response.ResponseLetter, "RE: Response to CP2000")
	assert.Contains(t, got.Response.ResponseLetter, body)
	assert.Contains(t, got.Response.ResponseLetter, "Enclosures: 1")
	assert.Contains(t, got.Response.ResponseLetter, "IMPORTANT DISCLAIMER")

	assert.Equal(t, risk.LevelLow, got.Response.RiskAnalysis.OverallRisk)
	assert.Nil(t, got.Response.SanitizationReport)
	assert.True(t, strings.HasPrefix(got.Response.AttachmentInstructions, "SUPPORTING DOCUMENTATION:"))

	assert.Equal(t, testNow, got.Response.Metadata.GenerationDate)
	assert.Equal(t, playbook.Stance("full_dispute"), got.Response.Metadata.UserPosition)
}

func TestGenerate_SanitizesRiskyOutput(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	analysis, err := e.Analyze(context.Background(), cp2000Letter, AnalyzeOptions{})
	require.NoError(t, err)

	risky := "I lied about the amounts and I refuse to pay the balance."
	got, err := e.Generate(context.Background(), analysis, UserPosition{Stance: "agree"}, staticGenerator(risky))
	require.NoError(t, err)

	require.NotNil(t, got.Response)
	require.NotNil(t, got.Response.SanitizationReport)
	assert.Contains(t, got.Response.ResponseLetter, "[REMOVED: Admission of fraud]")
	assert.NotContains(t, got.Response.ResponseLetter, "I lied")
	assert.True(t, got.Response.ProfessionalReviewNeed.NeedsReview)
}

func TestGenerate_GeneratorFailure(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	analysis, err := e.Analyze(context.Background(), cp2000Letter, AnalyzeOptions{})
	require.NoError(t, err)

	failing := GeneratorFunc(func(ctx context.Context, _, _ string) (string, error) {
		return "", errors.New("upstream unavailable")
	})
	_, err = e.Generate(context.Background(), analysis, UserPosition{Stance: "agree"}, failing)

	require.Error(t, err)
	assert.True(t, apperrors.IsGeneration(err))
}

func TestGenerate_EmptyOutput(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	analysis, err := e.Analyze(context.Background(), cp2000Letter, AnalyzeOptions{})
	require.NoError(t, err)

	_, err = e.Generate(context.Background(), analysis, UserPosition{Stance: "agree"}, staticGenerator("   "))

	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeGenerationEmptyOutput))
}

func TestBuildConstrainedPrompts(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	analysis, err := e.Analyze(context.Background(), cp2000Letter, AnalyzeOptions{
		Documents: []evidence.Document{{Name: "W-2", Type: "W-2"}},
	})
	require.NoError(t, err)

	system := buildConstrainedSystemPrompt(analysis.Classification, analysis.Playbook, analysis.DeadlineIntelligence)
	assert.Contains(t, system, "response to a CP2000")
	assert.Contains(t, system, "REQUIRED TONE: neutral-factual")
	assert.Contains(t, system, `- "I didn't know"`)
	assert.Contains(t, system, "OPENING: Acknowledge receipt of CP2000")
	assert.Contains(t, system, "DEADLINE: 20 days remaining. Urgency: MODERATE")

	user := buildConstrainedUserPrompt(UserPosition{
		Stance:          "agree",
		Explanation:     "The proposed change is correct.",
		RequestedAction: "Please confirm the adjusted balance.",
	}, analysis.EvidenceMap)
	assert.Contains(t, user, "TAXPAYER POSITION: agree")
	assert.Contains(t, user, "EXPLANATION: The proposed change is correct.")
	assert.Contains(t, user, "1. W-2 - Wage income verification")
	assert.Contains(t, user, "REQUESTED ACTION: Please confirm the adjusted balance.")
}
