package notice

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter narrows ListAnalyses results.  Zero values mean "no constraint";
// Limit defaults to 50 when unset.
type ListFilter struct {
	NoticeType string
	RiskLevel  string
	Limit      int
	Offset     int
}

// Repository defines the persistence contract for the notice domain.
type Repository interface {
	// Analyses
	CreateAnalysis(ctx context.Context, rec *AnalysisRecord) error
	GetAnalysis(ctx context.Context, id uuid.UUID) (*AnalysisRecord, error)
	ListAnalyses(ctx context.Context, filter ListFilter) ([]*AnalysisRecord, int64, error)
	DeleteAnalysis(ctx context.Context, id uuid.UUID) error

	// Generations
	CreateGeneration(ctx context.Context, rec *GenerationRecord) error
	GetGeneration(ctx context.Context, id uuid.UUID) (*GenerationRecord, error)
	ListGenerationsByAnalysis(ctx context.Context, analysisID uuid.UUID) ([]*GenerationRecord, error)

	// Stats
	CountByNoticeType(ctx context.Context) (map[string]int64, error)
}
