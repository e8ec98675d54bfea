package notice

import (
	"time"

	"github.com/google/uuid"
)

// Event names carried in the usage-event envelope.
const (
	EventTypeAnalysisCompleted   = "notice.analysis.completed"
	EventTypeGenerationCompleted = "notice.generation.completed"
)

// BaseEvent carries the envelope fields common to all usage events.
type BaseEvent struct {
	EventID     string    `json:"eventId"`
	EventType   string    `json:"eventType"`
	AggregateID string    `json:"aggregateId"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// AnalysisCompletedEvent is published after each stored analysis.
type AnalysisCompletedEvent struct {
	BaseEvent
	NoticeType               string `json:"noticeType"`
	Confidence               string `json:"confidence"`
	UrgencyLevel             string `json:"urgencyLevel"`
	RiskLevel                string `json:"riskLevel"`
	RequiresProfessionalHelp bool   `json:"requiresProfessionalHelp"`
}

// NewAnalysisCompletedEvent builds the event for a stored analysis record.
func NewAnalysisCompletedEvent(rec *AnalysisRecord, now time.Time) *AnalysisCompletedEvent {
	return &AnalysisCompletedEvent{
		BaseEvent: BaseEvent{
			EventID:     uuid.NewString(),
			EventType:   EventTypeAnalysisCompleted,
			AggregateID: rec.ID.String(),
			OccurredAt:  now,
		},
		NoticeType:               rec.NoticeType,
		Confidence:               rec.Confidence,
		UrgencyLevel:             rec.UrgencyLevel,
		RiskLevel:                rec.RiskLevel,
		RequiresProfessionalHelp: rec.RequiresProfessionalHelp,
	}
}

// GenerationCompletedEvent is published after each stored generation.
type GenerationCompletedEvent struct {
	BaseEvent
	AnalysisID     string `json:"analysisId"`
	Stance         string `json:"stance"`
	RiskLevel      string `json:"riskLevel"`
	RequiresReview bool   `json:"requiresReview"`
	WasSanitized   bool   `json:"wasSanitized"`
}

// NewGenerationCompletedEvent builds the event for a stored generation record.
func NewGenerationCompletedEvent(rec *GenerationRecord, now time.Time) *GenerationCompletedEvent {
	return &GenerationCompletedEvent{
		BaseEvent: BaseEvent{
			EventID:     uuid.NewString(),
			EventType:   EventTypeGenerationCompleted,
			AggregateID: rec.ID.String(),
			OccurredAt:  now,
		},
		AnalysisID:     rec.AnalysisID.String(),
		Stance:         rec.Stance,
		RiskLevel:      rec.RiskLevel,
		RequiresReview: rec.RequiresReview,
		WasSanitized:   rec.WasSanitized,
	}
}
