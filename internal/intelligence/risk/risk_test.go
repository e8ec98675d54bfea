package risk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxletterhelp/notice-intelligence/internal/intelligence/classify"
)

func TestAnalyzeRisks_CleanTextScoresFull(t *testing.T) {
	t.Parallel()

	got := AnalyzeRisks("I have enclosed the corrected Form 1099-NEC and a summary of the relevant transactions.")

	assert.Equal(t, 100, got.SafetyScore)
	assert.Equal(t, LevelLow, got.OverallRisk)
	assert.Empty(t, got.AdmissionsOfFault)
	assert.Empty(t, got.AggressiveLanguage)
}

func TestAnalyzeRisks_CriticalAdmission(t *testing.T) {
	t.Parallel()

	got := AnalyzeRisks("I intentionally left the 1099 off because I didn't report the side income.")

	// Intent (critical, -30) plus non-reporting (high, -20).
	assert.Equal(t, 50, got.SafetyScore)
	assert.Equal(t, LevelHigh, got.OverallRisk)
	require.Len(t, got.AdmissionsOfFault, 2)

	var intent *Finding
	for i := range got.AdmissionsOfFault {
		if got.AdmissionsOfFault[i].Issue == "Admission of intent" {
			intent = &got.AdmissionsOfFault[i]
		}
	}
	require.NotNil(t, intent)
	assert.Equal(t, SeverityCritical, intent.Risk)
	assert.Equal(t, "The facts and circumstances are as follows.", intent.SaferAlternative)
}

func TestAnalyzeRisks_OnePatternOneFinding(t *testing.T) {
	t.Parallel()

	got := AnalyzeRisks("I forgot the form. Later I forgot the deadline too.")

	require.Len(t, got.AdmissionsOfFault, 1)
	assert.Equal(t, "I forgot", got.AdmissionsOfFault[0].Text)
	assert.Equal(t, 90, got.SafetyScore)
}

func TestAnalyzeRisks_AggressiveAndLegal(t *testing.T) {
	t.Parallel()

	got := AnalyzeRisks("This is ridiculous. You cannot force me to pay and I refuse to pay.")

	require.Len(t, got.AggressiveLanguage, 1)
	require.Len(t, got.LegalMisstatements, 2)
	// -10 confrontational tone, -30 non-compliance, -20 confrontational legal.
	assert.Equal(t, 40, got.SafetyScore)
	assert.Equal(t, LevelHigh, got.OverallRisk)
}

func TestAnalyzeRisks_ScoreCanGoNegative(t *testing.T) {
	t.Parallel()

	got := AnalyzeRisks("I lied on my return. I intentionally hid it because I knew it was wrong. " +
		"I tried to hide the income and I refuse to pay. I will sue and this is illegal. " +
		"In prior years I also did not report it.")

	assert.Less(t, got.SafetyScore, 0)
	assert.Equal(t, LevelCritical, got.OverallRisk)
}

func TestSaferAlternative_FallsBackToGeneric(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Please rephrase to state facts without admitting fault.", SaferAlternative("something else"))
}

func TestAssessProfessionalReviewNeed_Mandatory(t *testing.T) {
	t.Parallel()

	analysis := AnalyzeRisks("I lied about the amount.")
	got := AssessProfessionalReviewNeed(analysis, classify.NoticeClassification{NoticeType: classify.NoticeCP14}, 1000)

	assert.True(t, got.NeedsReview)
	assert.Equal(t, ReviewMandatory, got.Urgency)
	assert.Contains(t, got.Recommendation, "CRITICAL: Do not send this response")
}

func TestAssessProfessionalReviewNeed_HighRiskNoticeType(t *testing.T) {
	t.Parallel()

	analysis := AnalyzeRisks("clean text")
	got := AssessProfessionalReviewNeed(analysis, classify.NoticeClassification{NoticeType: classify.NoticeCP504}, 0)

	assert.True(t, got.NeedsReview)
	assert.Equal(t, ReviewStronglyRecommended, got.Urgency)
	assert.Contains(t, got.Reasons[0], "CP504 notices carry serious consequences")
}

func TestAssessProfessionalReviewNeed_LargeAmount(t *testing.T) {
	t.Parallel()

	got := AssessProfessionalReviewNeed(AnalyzeRisks("clean"), classify.NoticeClassification{NoticeType: classify.NoticeCP14}, 26000)

	assert.True(t, got.NeedsReview)
	assert.Equal(t, ReviewStronglyRecommended, got.Urgency)
}

func TestAssessProfessionalReviewNeed_Optional(t *testing.T) {
	t.Parallel()

	got := AssessProfessionalReviewNeed(AnalyzeRisks("clean"), classify.NoticeClassification{NoticeType: classify.NoticeCP14}, 500)

	assert.False(t, got.NeedsReview)
	assert.Equal(t, ReviewOptional, got.Urgency)
	assert.Equal(t, "Professional review is optional but may be beneficial.", got.Recommendation)
}

func TestAssessProfessionalReviewNeed_MultipleCategories(t *testing.T) {
	t.Parallel()

	analysis := AnalyzeRisks("I forgot the form. This is ridiculous. The law says I am exempt.")
	require.NotEmpty(t, analysis.AdmissionsOfFault)
	require.NotEmpty(t, analysis.AggressiveLanguage)
	require.NotEmpty(t, analysis.LegalMisstatements)

	got := AssessProfessionalReviewNeed(analysis, classify.NoticeClassification{NoticeType: classify.NoticeCP14}, 100)
	assert.Contains(t, got.Reasons, "Response contains multiple categories of risk factors")
}

func TestSanitizeText_RemovesCriticalAdmissions(t *testing.T) {
	t.Parallel()

	text := "I lied about the deduction but here are my records."
	analysis := AnalyzeRisks(text)
	got := SanitizeText(text, analysis)

	assert.Contains(t, got.SanitizedText, "[REMOVED: Admission of fraud]")
	assert.NotContains(t, got.SanitizedText, "I lied")
	require.NotEmpty(t, got.Changes)
	assert.Equal(t, "I lied", got.Changes[0].Removed)
	assert.True(t, got.RequiresReview)
}

func TestSanitizeText_FlagsHighRiskWithoutRemoving(t *testing.T) {
	t.Parallel()

	text := "I did not report the bonus income."
	analysis := AnalyzeRisks(text)
	got := SanitizeText(text, analysis)

	assert.Equal(t, text, got.SanitizedText)
	require.Len(t, got.Changes, 1)
	assert.Equal(t, "I did not report", got.Changes[0].Flagged)
	assert.Empty(t, got.Changes[0].Removed)
}

func TestSanitizeText_CleanTextUntouched(t *testing.T) {
	t.Parallel()

	text := "Enclosed please find the requested documentation."
	got := SanitizeText(text, AnalyzeRisks(text))

	assert.Equal(t, text, got.SanitizedText)
	assert.Zero(t, got.ChangeCount)
	assert.False(t, got.RequiresReview)
}

func TestGenerateRiskReport(t *testing.T) {
	t.Parallel()

	analysis := AnalyzeRisks("I lied about it. This is ridiculous.")
	review := AssessProfessionalReviewNeed(analysis, classify.NoticeClassification{NoticeType: classify.NoticeCP14}, 0)

	report := GenerateRiskReport(analysis, review)

	assert.True(t, strings.HasPrefix(report, "=== RISK ANALYSIS REPORT ==="))
	assert.Contains(t, report, "Safety Score: 60/100")
	assert.Contains(t, report, "ADMISSIONS OF FAULT:")
	assert.Contains(t, report, "AGGRESSIVE LANGUAGE:")
	assert.Contains(t, report, "Reasons:")
}
