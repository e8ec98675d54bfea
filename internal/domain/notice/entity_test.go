package notice

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxletterhelp/notice-intelligence/pkg/errors"
)

var now = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func TestNewAnalysisRecord(t *testing.T) {
	rec, err := NewAnalysisRecord("Notice CP2000 ...", now)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, rec.ID)
	assert.Equal(t, now, rec.CreatedAt)
	assert.Equal(t, now, rec.UpdatedAt)
}

func TestNewAnalysisRecord_EmptyText(t *testing.T) {
	_, err := NewAnalysisRecord("   ", now)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNoticeEmptyText))
}

func TestAnalysisRecord_Validate(t *testing.T) {
	rec, err := NewAnalysisRecord("Notice CP2000 ...", now)
	require.NoError(t, err)

	assert.Error(t, rec.Validate()) // notice type not yet set

	rec.NoticeType = "CP2000"
	assert.NoError(t, rec.Validate())

	rec.ID = uuid.Nil
	assert.Error(t, rec.Validate())
}

func TestNewGenerationRecord(t *testing.T) {
	analysisID := uuid.New()
	rec, err := NewGenerationRecord(analysisID, "agree", now)
	require.NoError(t, err)
	assert.Equal(t, analysisID, rec.AnalysisID)
	assert.Equal(t, "agree", rec.Stance)

	_, err = NewGenerationRecord(uuid.Nil, "agree", now)
	assert.True(t, errors.IsValidation(err))

	_, err = NewGenerationRecord(analysisID, "", now)
	assert.True(t, errors.IsValidation(err))
}

func TestGenerationRecord_Validate(t *testing.T) {
	rec, err := NewGenerationRecord(uuid.New(), "partial_dispute", now)
	require.NoError(t, err)

	assert.Error(t, rec.Validate()) // response letter missing

	rec.ResponseLetter = "[YOUR NAME]..."
	assert.NoError(t, rec.Validate())
}

func TestNewAnalysisCompletedEvent(t *testing.T) {
	rec, err := NewAnalysisRecord("Notice CP2000 ...", now)
	require.NoError(t, err)
	rec.NoticeType = "CP2000"
	rec.RiskLevel = "LOW"

	ev := NewAnalysisCompletedEvent(rec, now)
	assert.Equal(t, EventTypeAnalysisCompleted, ev.EventType)
	assert.Equal(t, rec.ID.String(), ev.AggregateID)
	assert.Equal(t, "CP2000", ev.NoticeType)
	assert.NotEmpty(t, ev.EventID)
}

func TestNewGenerationCompletedEvent(t *testing.T) {
	rec, err := NewGenerationRecord(uuid.New(), "agree", now)
	require.NoError(t, err)
	rec.RequiresReview = true

	ev := NewGenerationCompletedEvent(rec, now)
	assert.Equal(t, EventTypeGenerationCompleted, ev.EventType)
	assert.Equal(t, rec.AnalysisID.String(), ev.AnalysisID)
	assert.True(t, ev.RequiresReview)
}
