package format

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxletterhelp/notice-intelligence/internal/intelligence/classify"
	"github.com/taxletterhelp/notice-intelligence/internal/intelligence/deadline"
	"github.com/taxletterhelp/notice-intelligence/internal/intelligence/evidence"
	"github.com/taxletterhelp/notice-intelligence/internal/intelligence/playbook"
	"github.com/taxletterhelp/notice-intelligence/internal/intelligence/risk"
)

func intPtr(v int) *int       { return &v }
func fPtr(v float64) *float64 { return &v }

func sampleParams(nt classify.NoticeType, days int) AnalysisParams {
	cls := classify.NoticeClassification{
		NoticeType:          nt,
		Description:         "Proposed changes based on unreported income",
		Category:            classify.CategoryProposedAssessment,
		Confidence:          classify.ConfidenceHigh,
		ResponseRequired:    true,
		TypicalDeadlineDays: 30,
		EscalationRisk:      []string{"Penalties continue"},
	}
	intel := deadline.Build(cls, classify.DeadlineInfo{DaysRemaining: intPtr(days)})
	return AnalysisParams{
		Classification: cls,
		DeadlineIntel:  intel,
		FinancialInfo: classify.FinancialInfo{
			BalanceDue:           fPtr(12500),
			PenaltiesAndInterest: fPtr(310.75),
			FinancialImpact:      classify.ImpactMedium,
		},
		HelpAssessment: playbook.AssessProfessionalHelpNeed(nt, 12500, "standard"),
	}
}

func TestFormatAnalysisOutput_SectionsPresent(t *testing.T) {
	t.Parallel()

	out := FormatAnalysisOutput(sampleParams(classify.NoticeCP2000, 20))

	for _, heading := range []string{
		"SECTION 1: WHAT THIS IRS NOTICE MEANS",
		"SECTION 2: YOUR REQUIRED ACTION",
		"SECTION 3: YOUR BEST RESPONSE STRATEGY",
		"SECTION 4: WHAT HAPPENS NEXT (TIMELINE)",
		"SECTION 6: WHEN PROFESSIONAL HELP BECOMES NECESSARY",
	} {
		assert.Contains(t, out, heading)
	}
	assert.NotContains(t, out, "SECTION 5: RISK ASSESSMENT")

	assert.Contains(t, out, "Notice Type: CP2000")
	assert.Contains(t, out, "Detection Confidence: HIGH")
	assert.Contains(t, out, "Amount at Issue: $12,500")
	assert.Contains(t, out, "Penalties and Interest: $310.75")
	assert.Contains(t, out, "This is NOT a bill yet")
}

func TestFormatAnalysisOutput_RiskSectionOnlyAboveLow(t *testing.T) {
	t.Parallel()

	p := sampleParams(classify.NoticeCP2000, 20)

	flagged := risk.AnalyzeRisks("I lied about the deduction.")
	require.NotEqual(t, risk.LevelLow, flagged.OverallRisk)
	p.RiskAnalysis = &flagged
	out := FormatAnalysisOutput(p)
	assert.Contains(t, out, "SECTION 5: RISK ASSESSMENT")
	assert.Contains(t, out, "DETECTED ADMISSIONS OF FAULT:")

	clean := risk.AnalyzeRisks("Enclosed are my records.")
	p.RiskAnalysis = &clean
	out = FormatAnalysisOutput(p)
	assert.NotContains(t, out, "SECTION 5: RISK ASSESSMENT")
}

func TestFormatAnalysisOutput_UnknownTypeFallsBack(t *testing.T) {
	t.Parallel()

	out := FormatAnalysisOutput(sampleParams(classify.NoticeType("CP99"), 20))

	assert.Contains(t, out, "could not be definitively identified")
	assert.Contains(t, out, "1. READ THE NOTICE CAREFULLY")
}

func TestFormatAnalysisOutput_OverdueAndCriticalWarnings(t *testing.T) {
	t.Parallel()

	out := FormatAnalysisOutput(sampleParams(classify.NoticeCP504, -3))

	assert.Contains(t, out, "CRITICAL: This deadline has passed by 3 days")
	assert.Contains(t, out, "WARNING: IMMEDIATE ACTION REQUIRED")
}

func TestFormatAnalysisOutput_Deterministic(t *testing.T) {
	t.Parallel()

	p := sampleParams(classify.NoticeCP2000, 10)
	assert.Equal(t, FormatAnalysisOutput(p), FormatAnalysisOutput(p))
}

func TestFormatResponseLetter(t *testing.T) {
	t.Parallel()

	m := evidence.MapEvidence([]evidence.Document{{Name: "W-2", Type: "W-2"}},
		classify.NoticeClassification{NoticeType: classify.NoticeCP2000})

	letter := FormatResponseLetter(LetterParams{
		Classification:   classify.NoticeClassification{NoticeType: classify.NoticeCP2000},
		EvidenceMap:      m,
		GeneratedContent: "I have reviewed the notice and am responding as follows.",
		Now:              time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC),
	})

	assert.True(t, strings.HasPrefix(letter, "[YOUR NAME]\n"))
	assert.Contains(t, letter, "Date: March 10, 2026")
	assert.Contains(t, letter, "RE: Response to CP2000")
	assert.Contains(t, letter, "Dear Sir or Madam:")
	assert.Contains(t, letter, "1. W-2 - Wage income verification")
	assert.Contains(t, letter, "Enclosures: 1")
}

func TestFormatResponseLetter_NoAttachments(t *testing.T) {
	t.Parallel()

	letter := FormatResponseLetter(LetterParams{
		Classification:   classify.NoticeClassification{NoticeType: classify.NoticeCP14},
		GeneratedContent: "body",
		Now:              time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC),
	})

	assert.NotContains(t, letter, "SUPPORTING DOCUMENTATION:")
	assert.NotContains(t, letter, "Enclosures:")
}

func TestFormatDisclaimer(t *testing.T) {
	t.Parallel()

	base := FormatDisclaimer(classify.NoticeClassification{NoticeType: classify.NoticeCP14}, nil)
	assert.Contains(t, base, "IMPORTANT DISCLAIMER")
	assert.NotContains(t, base, "CRITICAL: This notice type")

	highNotice := FormatDisclaimer(classify.NoticeClassification{NoticeType: classify.NoticeCP504}, nil)
	assert.Contains(t, highNotice, "CRITICAL: This notice type carries serious consequences")

	flagged := risk.AnalyzeRisks("I refuse to pay and this is illegal and I will sue.")
	require.NotEqual(t, risk.LevelLow, flagged.OverallRisk)
	withRisk := FormatDisclaimer(classify.NoticeClassification{NoticeType: classify.NoticeCP14}, &flagged)
	assert.Contains(t, withRisk, "IMPORTANT: This matter involves significant risk factors")
}

func TestFormatAmount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "12,500", formatAmount(12500))
	assert.Equal(t, "310.75", formatAmount(310.75))
	assert.Equal(t, "1,234,567.5", formatAmount(1234567.5))
	assert.Equal(t, "900", formatAmount(900))
	assert.Equal(t, "-1,000", formatAmount(-1000))
}
