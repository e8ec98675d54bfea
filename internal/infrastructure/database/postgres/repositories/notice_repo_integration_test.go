//go:build integration

// Integration tests for the notice repository.  They require a live
// PostgreSQL instance reachable via the NOTICE_TEST_DATABASE_URL environment
// variable with the schema from migrations/ already applied.
package repositories_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taxletterhelp/notice-intelligence/internal/domain/notice"
	"github.com/taxletterhelp/notice-intelligence/internal/infrastructure/database/postgres/repositories"
	appErrors "github.com/taxletterhelp/notice-intelligence/pkg/errors"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("NOTICE_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("NOTICE_TEST_DATABASE_URL not set")
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func newStoredAnalysis(t *testing.T, repo *repositories.NoticeRepository) *notice.AnalysisRecord {
	t.Helper()

	rec, err := notice.NewAnalysisRecord("Notice CP2000 - proposed changes", time.Now().UTC())
	require.NoError(t, err)
	rec.NoticeType = "CP2000"
	rec.Confidence = "HIGH"
	rec.UrgencyLevel = "MODERATE"
	rec.RiskLevel = "LOW"
	rec.Result = json.RawMessage(`{"classification":{"noticeType":"CP2000"}}`)
	require.NoError(t, repo.CreateAnalysis(context.Background(), rec))
	return rec
}

func TestNoticeRepository_AnalysisRoundTrip(t *testing.T) {
	repo := repositories.NewNoticeRepository(testPool(t), zap.NewNop())
	rec := newStoredAnalysis(t, repo)

	got, err := repo.GetAnalysis(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, "CP2000", got.NoticeType)
	assert.JSONEq(t, string(rec.Result), string(got.Result))
}

func TestNoticeRepository_GetAnalysis_NotFound(t *testing.T) {
	repo := repositories.NewNoticeRepository(testPool(t), zap.NewNop())

	_, err := repo.GetAnalysis(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, appErrors.IsNotFound(err))
}

func TestNoticeRepository_ListAnalyses_Filtered(t *testing.T) {
	repo := repositories.NewNoticeRepository(testPool(t), zap.NewNop())
	rec := newStoredAnalysis(t, repo)

	got, total, err := repo.ListAnalyses(context.Background(), notice.ListFilter{NoticeType: "CP2000", Limit: 10})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, total, int64(1))

	found := false
	for _, a := range got {
		if a.ID == rec.ID {
			found = true
		}
	}
	assert.True(t, found)
}

func TestNoticeRepository_GenerationRoundTrip(t *testing.T) {
	repo := repositories.NewNoticeRepository(testPool(t), zap.NewNop())
	analysis := newStoredAnalysis(t, repo)

	gen, err := notice.NewGenerationRecord(analysis.ID, "agree", time.Now().UTC())
	require.NoError(t, err)
	gen.RiskLevel = "LOW"
	gen.ResponseLetter = "[YOUR NAME]\n..."
	gen.Result = json.RawMessage(`{"responseLetter":"..."}`)
	require.NoError(t, repo.CreateGeneration(context.Background(), gen))

	list, err := repo.ListGenerationsByAnalysis(context.Background(), analysis.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, gen.ID, list[0].ID)
}

func TestNoticeRepository_DeleteAnalysis_CascadesGenerations(t *testing.T) {
	repo := repositories.NewNoticeRepository(testPool(t), zap.NewNop())
	analysis := newStoredAnalysis(t, repo)

	gen, err := notice.NewGenerationRecord(analysis.ID, "agree", time.Now().UTC())
	require.NoError(t, err)
	gen.ResponseLetter = "letter"
	require.NoError(t, repo.CreateGeneration(context.Background(), gen))

	require.NoError(t, repo.DeleteAnalysis(context.Background(), analysis.ID))

	_, err = repo.GetGeneration(context.Background(), gen.ID)
	assert.True(t, appErrors.IsNotFound(err))
}
