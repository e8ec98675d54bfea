// Package notice holds the persisted domain model for notice analyses and
// generated responses.  The intelligence pipeline itself is stateless; this
// package defines what the service stores about each run.
package notice

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taxletterhelp/notice-intelligence/pkg/errors"
)

// AnalysisRecord is one stored analysis of an IRS notice.  The denormalised
// columns (NoticeType, RiskLevel, ...) exist for filtering and reporting; the
// full pipeline output is kept verbatim in Result.
type AnalysisRecord struct {
	ID                       uuid.UUID       `json:"id"`
	NoticeType               string          `json:"noticeType"`
	Confidence               string          `json:"confidence"`
	UrgencyLevel             string          `json:"urgencyLevel"`
	RiskLevel                string          `json:"riskLevel"`
	BalanceDue               *float64        `json:"balanceDue,omitempty"`
	DaysRemaining            int             `json:"daysRemaining"`
	RequiresProfessionalHelp bool            `json:"requiresProfessionalHelp"`
	NoticeText               string          `json:"noticeText"`
	Result                   json.RawMessage `json:"result"`
	CreatedAt                time.Time       `json:"createdAt"`
	UpdatedAt                time.Time       `json:"updatedAt"`
}

// GenerationRecord is one stored response-letter generation for an analysis.
type GenerationRecord struct {
	ID             uuid.UUID       `json:"id"`
	AnalysisID     uuid.UUID       `json:"analysisId"`
	Stance         string          `json:"stance"`
	RiskLevel      string          `json:"riskLevel"`
	RequiresReview bool            `json:"requiresReview"`
	WasSanitized   bool            `json:"wasSanitized"`
	ResponseLetter string          `json:"responseLetter"`
	Result         json.RawMessage `json:"result"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// NewAnalysisRecord creates an AnalysisRecord with a fresh ID and timestamps.
func NewAnalysisRecord(noticeText string, now time.Time) (*AnalysisRecord, error) {
	if strings.TrimSpace(noticeText) == "" {
		return nil, errors.EmptyNoticeText()
	}
	return &AnalysisRecord{
		ID:         uuid.New(),
		NoticeText: noticeText,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Validate checks the record's structural invariants before persistence.
func (r *AnalysisRecord) Validate() error {
	if r.ID == uuid.Nil {
		return errors.InvalidParam("analysis record id is required")
	}
	if strings.TrimSpace(r.NoticeText) == "" {
		return errors.EmptyNoticeText()
	}
	if r.NoticeType == "" {
		return errors.InvalidParam("analysis record notice type is required")
	}
	return nil
}

// NewGenerationRecord creates a GenerationRecord with a fresh ID bound to the
// given analysis.
func NewGenerationRecord(analysisID uuid.UUID, stance string, now time.Time) (*GenerationRecord, error) {
	if analysisID == uuid.Nil {
		return nil, errors.InvalidParam("generation record analysis id is required")
	}
	if stance == "" {
		return nil, errors.InvalidParam("generation record stance is required")
	}
	return &GenerationRecord{
		ID:         uuid.New(),
		AnalysisID: analysisID,
		Stance:     stance,
		CreatedAt:  now,
	}, nil
}

// Validate checks the record's structural invariants before persistence.
func (g *GenerationRecord) Validate() error {
	if g.ID == uuid.Nil {
		return errors.InvalidParam("generation record id is required")
	}
	if g.AnalysisID == uuid.Nil {
		return errors.InvalidParam("generation record analysis id is required")
	}
	if g.ResponseLetter == "" {
		return errors.InvalidParam("generation record response letter is required")
	}
	return nil
}
