package deadline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxletterhelp/notice-intelligence/internal/intelligence/classify"
)

func intPtr(v int) *int { return &v }

func classificationFor(nt classify.NoticeType, typicalDays int) classify.NoticeClassification {
	return classify.NoticeClassification{
		NoticeType:          nt,
		TypicalDeadlineDays: typicalDays,
		EscalationRisk:      []string{"Penalties continue to accrue"},
	}
}

func TestAssess_UsesExtractedDaysOverTypical(t *testing.T) {
	t.Parallel()

	got := Assess(classificationFor(classify.NoticeCP14, 21), classify.DeadlineInfo{DaysRemaining: intPtr(5)})

	assert.Equal(t, 5, got.DaysRemaining)
	assert.Equal(t, UrgencyUrgent, got.UrgencyLevel)
}

func TestAssess_FallsBackToWithinDaysThenTypical(t *testing.T) {
	t.Parallel()

	fromNotice := Assess(classificationFor(classify.NoticeCP14, 21), classify.DeadlineInfo{DaysFromNoticeDate: intPtr(10)})
	assert.Equal(t, 10, fromNotice.DaysRemaining)

	typical := Assess(classificationFor(classify.NoticeCP14, 21), classify.DeadlineInfo{})
	assert.Equal(t, 21, typical.DaysRemaining)
	assert.Equal(t, UrgencyModerate, typical.UrgencyLevel)
}

func TestAssess_UrgencyBands(t *testing.T) {
	t.Parallel()

	cases := []struct {
		days int
		want UrgencyLevel
	}{
		{2, UrgencyCritical},
		{3, UrgencyCritical},
		{7, UrgencyUrgent},
		{14, UrgencyHigh},
		{21, UrgencyModerate},
		{45, UrgencyNormal},
	}
	for _, tc := range cases {
		got := Assess(classificationFor(classify.NoticeCP14, 30), classify.DeadlineInfo{DaysRemaining: intPtr(tc.days)})
		assert.Equal(t, tc.want, got.UrgencyLevel, "days=%d", tc.days)
	}
}

func TestAssess_RecommendedActionDaysNeverBelowOne(t *testing.T) {
	t.Parallel()

	got := Assess(classificationFor(classify.NoticeCP504, 30), classify.DeadlineInfo{DaysRemaining: intPtr(2)})
	assert.Equal(t, 1, got.RecommendedActionDays)
	assert.Equal(t, "Recommended to respond within 1 days to allow for processing time", got.RecommendedActionMessage)
}

func TestAssess_Overdue(t *testing.T) {
	t.Parallel()

	got := Assess(classificationFor(classify.NoticeCP14, 30), classify.DeadlineInfo{DaysRemaining: intPtr(-4)})
	assert.True(t, got.IsOverdue)
	assert.Equal(t, "This deadline has passed by 4 days. Immediate action required.", got.OverdueMessage)
	assert.Equal(t, UrgencyCritical, got.UrgencyLevel)
}

func TestBuildEscalation_KnownLadder(t *testing.T) {
	t.Parallel()

	cls := classificationFor(classify.NoticeCP2000, 30)
	esc := BuildEscalation(cls, Assess(cls, classify.DeadlineInfo{DaysRemaining: intPtr(10)}))

	require.Len(t, esc.EscalationSequence, 5)
	assert.Equal(t, "Current", esc.CurrentStage.Stage)
	assert.Equal(t, "If No Response", esc.NextEscalation.Stage)
	assert.Equal(t, "180+ Days", esc.FinalConsequence.Stage)
	assert.Equal(t, cls.EscalationRisk, esc.EscalationRisks)
	assert.Equal(t, "HIGH PRIORITY: You have 10 days to respond. Begin preparation immediately.", esc.TimelineWarning)
}

func TestBuildEscalation_GenericLadderForUnmappedTypes(t *testing.T) {
	t.Parallel()

	cls := classificationFor(classify.NoticeCP2501, 30)
	esc := BuildEscalation(cls, Assess(cls, classify.DeadlineInfo{}))

	require.Len(t, esc.EscalationSequence, 3)
	assert.Equal(t, "Notice Received", esc.CurrentStage.Action)
	assert.Equal(t, "Enforcement Action", esc.FinalConsequence.Action)
}

func TestBuildScenarios(t *testing.T) {
	t.Parallel()

	cls := classificationFor(classify.NoticeCP503, 10)
	esc := BuildEscalation(cls, Assess(cls, classify.DeadlineInfo{DaysRemaining: intPtr(10)}))
	sc := BuildScenarios(cls, esc)

	assert.Equal(t, "If you do not respond to this CP503 notice, here is the likely sequence of events:", sc.IfNoAction.Summary)
	require.Len(t, sc.IfNoAction.Consequences, 3)
	assert.Equal(t, "Current (0 days): CP503 - Second Reminder - Critical stage, levy action imminent", sc.IfNoAction.Consequences[0])
	assert.Len(t, sc.IfPartialResponse.Risks, 5)
	assert.Len(t, sc.IfCorrectResponse.Benefits, 5)
}

func TestBuild_CriticalWarningOnlyWhenUrgent(t *testing.T) {
	t.Parallel()

	cls := classificationFor(classify.NoticeCP504, 30)

	urgent := Build(cls, classify.DeadlineInfo{DaysRemaining: intPtr(2)})
	require.NotEmpty(t, urgent.CriticalWarning)
	assert.Contains(t, urgent.CriticalWarning, "IMMEDIATE ACTION REQUIRED")
	assert.Contains(t, urgent.CriticalWarning, "You have 2 days remaining")

	calm := Build(cls, classify.DeadlineInfo{DaysRemaining: intPtr(40)})
	assert.Empty(t, calm.CriticalWarning)
}
