// Package notice defines the public wire types exchanged with the notice
// intelligence API.  The SDK client and any external consumer decode API
// responses into these structs; the full pipeline result is carried opaquely
// as raw JSON so the public surface does not track every internal field.
package notice

import (
	"encoding/json"
	"time"
)

// UserContext carries optional taxpayer-supplied context for an analysis.
type UserContext struct {
	UserInput  string `json:"userInput,omitempty"`
	Complexity string `json:"complexity,omitempty"`
}

// Document is a supporting document the taxpayer already has on hand.
type Document struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// AnalyzeRequest is the body of POST /api/v1/analyses.
type AnalyzeRequest struct {
	NoticeText  string      `json:"noticeText"`
	Documents   []Document  `json:"documents,omitempty"`
	UserContext UserContext `json:"userContext"`
}

// AnalyzeResponse is the reply to a successful analysis.
type AnalyzeResponse struct {
	AnalysisID string          `json:"analysisId"`
	Result     json.RawMessage `json:"result"`
}

// GenerateRequest is the body of POST /api/v1/analyses/{id}/generations.
type GenerateRequest struct {
	Stance          string `json:"stance"`
	Explanation     string `json:"explanation,omitempty"`
	RequestedAction string `json:"requestedAction,omitempty"`
}

// GenerateResponse is the reply to a generation request.  GenerationID is
// empty when the requested position was rejected or the draft only produced
// a warning; Result always carries the engine output.
type GenerateResponse struct {
	GenerationID string          `json:"generationId,omitempty"`
	Result       json.RawMessage `json:"result"`
}

// AnalysisRecord is one stored notice analysis.
type AnalysisRecord struct {
	ID                       string          `json:"id"`
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

// GenerationRecord is one stored response-letter generation.
type GenerationRecord struct {
	ID             string          `json:"id"`
	AnalysisID     string          `json:"analysisId"`
	Stance         string          `json:"stance"`
	RiskLevel      string          `json:"riskLevel"`
	RequiresReview bool            `json:"requiresReview"`
	WasSanitized   bool            `json:"wasSanitized"`
	ResponseLetter string          `json:"responseLetter"`
	Result         json.RawMessage `json:"result"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// ListAnalysesRequest carries the filters for GET /api/v1/analyses.
type ListAnalysesRequest struct {
	NoticeType string
	RiskLevel  string
	Page       int
	PageSize   int
}

// ListAnalysesResponse is a paginated page of analyses.
type ListAnalysesResponse struct {
	Analyses   []AnalysisRecord `json:"analyses"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalPages int              `json:"totalPages"`
}

// Stats summarizes the stored analyses.
type Stats struct {
	TotalAnalyses int64            `json:"totalAnalyses"`
	ByNoticeType  map[string]int64 `json:"byNoticeType"`
}
