// Package repositories provides the PostgreSQL-backed implementation of the
// notice domain's Repository interface.
package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/taxletterhelp/notice-intelligence/internal/domain/notice"
	appErrors "github.com/taxletterhelp/notice-intelligence/pkg/errors"
)

const defaultListLimit = 50

// NoticeRepository is the PostgreSQL implementation of notice.Repository.
// Every method accepts a context.Context for cancellation propagation and
// uses parameterised queries exclusively.
type NoticeRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewNoticeRepository constructs a ready-to-use NoticeRepository.
func NewNoticeRepository(pool *pgxpool.Pool, logger *zap.Logger) *NoticeRepository {
	return &NoticeRepository{pool: pool, logger: logger}
}

var _ notice.Repository = (*NoticeRepository)(nil)

// ─────────────────────────────────────────────────────────────────────────────
// Analyses
// ─────────────────────────────────────────────────────────────────────────────

const analysisColumns = `id, notice_type, confidence, urgency_level, risk_level,
	balance_due, days_remaining, requires_professional_help, notice_text, result,
	created_at, updated_at`

// CreateAnalysis persists a new analysis record.
func (r *NoticeRepository) CreateAnalysis(ctx context.Context, rec *notice.AnalysisRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	const q = `INSERT INTO notice_analyses (` + analysisColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.pool.Exec(ctx, q,
		rec.ID, rec.NoticeType, rec.Confidence, rec.UrgencyLevel, rec.RiskLevel,
		rec.BalanceDue, rec.DaysRemaining, rec.RequiresProfessionalHelp,
		rec.NoticeText, rec.Result, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("failed to insert analysis", zap.String("id", rec.ID.String()), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to insert analysis")
	}
	return nil
}

// GetAnalysis fetches an analysis record by ID.
func (r *NoticeRepository) GetAnalysis(ctx context.Context, id uuid.UUID) (*notice.AnalysisRecord, error) {
	const q = `SELECT ` + analysisColumns + ` FROM notice_analyses WHERE id = $1`

	rec, err := scanAnalysis(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, appErrors.New(appErrors.ErrCodeNoticeNotFound, fmt.Sprintf("analysis %s not found", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to fetch analysis")
	}
	return rec, nil
}

// ListAnalyses returns a page of analyses matching the filter, newest first,
// together with the total count of matching rows.
func (r *NoticeRepository) ListAnalyses(ctx context.Context, filter notice.ListFilter) ([]*notice.AnalysisRecord, int64, error) {
	where, args := buildAnalysisFilter(filter)

	var total int64
	countQ := `SELECT COUNT(*) FROM notice_analyses` + where
	if err := r.pool.QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to count analyses")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	args = append(args, limit, filter.Offset)
	listQ := `SELECT ` + analysisColumns + ` FROM notice_analyses` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, listQ, args...)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to list analyses")
	}
	defer rows.Close()

	var out []*notice.AnalysisRecord
	for rows.Next() {
		rec, err := scanAnalysis(rows)
		if err != nil {
			return nil, 0, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to scan analysis row")
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to iterate analyses")
	}
	return out, total, nil
}

// DeleteAnalysis removes an analysis and, via ON DELETE CASCADE, its
// generations.
func (r *NoticeRepository) DeleteAnalysis(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM notice_analyses WHERE id = $1`, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to delete analysis")
	}
	if tag.RowsAffected() == 0 {
		return appErrors.New(appErrors.ErrCodeNoticeNotFound, fmt.Sprintf("analysis %s not found", id))
	}
	return nil
}

// buildAnalysisFilter renders the WHERE clause for ListAnalyses.
func buildAnalysisFilter(filter notice.ListFilter) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if filter.NoticeType != "" {
		args = append(args, filter.NoticeType)
		clauses = append(clauses, fmt.Sprintf("notice_type = $%d", len(args)))
	}
	if filter.RiskLevel != "" {
		args = append(args, filter.RiskLevel)
		clauses = append(clauses, fmt.Sprintf("risk_level = $%d", len(args)))
	}
	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanAnalysis(row pgx.Row) (*notice.AnalysisRecord, error) {
	rec := &notice.AnalysisRecord{}
	err := row.Scan(
		&rec.ID, &rec.NoticeType, &rec.Confidence, &rec.UrgencyLevel, &rec.RiskLevel,
		&rec.BalanceDue, &rec.DaysRemaining, &rec.RequiresProfessionalHelp,
		&rec.NoticeText, &rec.Result, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Generations
// ─────────────────────────────────────────────────────────────────────────────

const generationColumns = `id, analysis_id, stance, risk_level, requires_review,
	was_sanitized, response_letter, result, created_at`

// CreateGeneration persists a new generation record.
func (r *NoticeRepository) CreateGeneration(ctx context.Context, rec *notice.GenerationRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	const q = `INSERT INTO notice_generations (` + generationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, q,
		rec.ID, rec.AnalysisID, rec.Stance, rec.RiskLevel, rec.RequiresReview,
		rec.WasSanitized, rec.ResponseLetter, rec.Result, rec.CreatedAt,
	)
	if err != nil {
		r.logger.Error("failed to insert generation", zap.String("id", rec.ID.String()), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to insert generation")
	}
	return nil
}

// GetGeneration fetches a generation record by ID.
func (r *NoticeRepository) GetGeneration(ctx context.Context, id uuid.UUID) (*notice.GenerationRecord, error) {
	const q = `SELECT ` + generationColumns + ` FROM notice_generations WHERE id = $1`

	rec, err := scanGeneration(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, appErrors.NotFound(fmt.Sprintf("generation %s not found", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to fetch generation")
	}
	return rec, nil
}

// ListGenerationsByAnalysis returns all generations for one analysis, oldest
// first.
func (r *NoticeRepository) ListGenerationsByAnalysis(ctx context.Context, analysisID uuid.UUID) ([]*notice.GenerationRecord, error) {
	const q = `SELECT ` + generationColumns + ` FROM notice_generations
		WHERE analysis_id = $1 ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, q, analysisID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to list generations")
	}
	defer rows.Close()

	var out []*notice.GenerationRecord
	for rows.Next() {
		rec, err := scanGeneration(rows)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to scan generation row")
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to iterate generations")
	}
	return out, nil
}

func scanGeneration(row pgx.Row) (*notice.GenerationRecord, error) {
	rec := &notice.GenerationRecord{}
	err := row.Scan(
		&rec.ID, &rec.AnalysisID, &rec.Stance, &rec.RiskLevel, &rec.RequiresReview,
		&rec.WasSanitized, &rec.ResponseLetter, &rec.Result, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Stats
// ─────────────────────────────────────────────────────────────────────────────

// CountByNoticeType returns how many analyses exist per notice type.
func (r *NoticeRepository) CountByNoticeType(ctx context.Context) (map[string]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT notice_type, COUNT(*) FROM notice_analyses GROUP BY notice_type`)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to count analyses by notice type")
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var noticeType string
		var count int64
		if err := rows.Scan(&noticeType, &count); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to scan count row")
		}
		out[noticeType] = count
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "failed to iterate counts")
	}
	return out, nil
}
