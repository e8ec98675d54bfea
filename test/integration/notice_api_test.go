//go:build integration

// End-to-end tests for the notice API.  They wire the real HTTP layer,
// application service, analysis engine, and PostgreSQL repository together
// and drive everything through the public SDK client.  A live database
// reachable via NOTICE_TEST_DATABASE_URL (schema from migrations/ applied)
// is required; the letter-drafting model is stubbed.
package integration

import (
	"context"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appnotice "github.com/taxletterhelp/notice-intelligence/internal/application/notice"
	"github.com/taxletterhelp/notice-intelligence/internal/infrastructure/database/postgres/repositories"
	"github.com/taxletterhelp/notice-intelligence/internal/intelligence/engine"
	httpserver "github.com/taxletterhelp/notice-intelligence/internal/interfaces/http"
	"github.com/taxletterhelp/notice-intelligence/internal/interfaces/http/handlers"
	"github.com/taxletterhelp/notice-intelligence/pkg/client"
	"github.com/taxletterhelp/notice-intelligence/pkg/types/notice"
)

const cp2000Notice = `Notice CP2000
Tax Year: 2023
The income reported on your tax return does not match the information
we received from third parties. Proposed amount due: $3,500.00.
Respond within 30 days of the date of this notice.`

// newAPIClient boots the full stack against the test database and returns an
// SDK client pointed at it.
func newAPIClient(t *testing.T) *client.Client {
	t.Helper()

	dsn := os.Getenv("NOTICE_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("NOTICE_TEST_DATABASE_URL not set")
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	logger := zap.NewNop()
	repo := repositories.NewNoticeRepository(pool, logger)

	generator := engine.GeneratorFunc(func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
		return "I am writing in response to the notice referenced above.", nil
	})

	service := appnotice.NewService(engine.New(), generator, repo, logger)

	router := httpserver.NewRouter(httpserver.RouterConfig{
		NoticeHandler: handlers.NewNoticeHandler(service, logger),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	c, err := client.NewClient(srv.URL)
	require.NoError(t, err)
	return c
}

func TestNoticeAPI_AnalyzeGenerateLifecycle(t *testing.T) {
	c := newAPIClient(t)
	ctx := context.Background()

	analysis, err := c.Notices().Analyze(ctx, &notice.AnalyzeRequest{
		NoticeText: cp2000Notice,
	})
	require.NoError(t, err)
	require.NotEmpty(t, analysis.AnalysisID)

	defer func() {
		assert.NoError(t, c.Notices().Delete(ctx, analysis.AnalysisID))
	}()

	rec, err := c.Notices().Get(ctx, analysis.AnalysisID)
	require.NoError(t, err)
	assert.Equal(t, "CP2000", rec.NoticeType)
	assert.Equal(t, cp2000Notice, rec.NoticeText)

	gen, err := c.Notices().Generate(ctx, analysis.AnalysisID, &notice.GenerateRequest{
		Stance:      "agree",
		Explanation: "The proposed changes are correct.",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, gen.GenerationID)

	gens, err := c.Notices().ListGenerations(ctx, analysis.AnalysisID)
	require.NoError(t, err)
	require.Len(t, gens, 1)
	assert.Equal(t, "agree", gens[0].Stance)
	assert.Contains(t, gens[0].ResponseLetter, "in response to the notice")
}

func TestNoticeAPI_RejectedStanceStoresNothing(t *testing.T) {
	c := newAPIClient(t)
	ctx := context.Background()

	analysis, err := c.Notices().Analyze(ctx, &notice.AnalyzeRequest{
		NoticeText: cp2000Notice,
	})
	require.NoError(t, err)

	defer func() {
		assert.NoError(t, c.Notices().Delete(ctx, analysis.AnalysisID))
	}()

	gen, err := c.Notices().Generate(ctx, analysis.AnalysisID, &notice.GenerateRequest{
		Stance: "refuse_to_pay",
	})
	require.NoError(t, err)
	assert.Empty(t, gen.GenerationID)

	gens, err := c.Notices().ListGenerations(ctx, analysis.AnalysisID)
	require.NoError(t, err)
	assert.Empty(t, gens)
}

func TestNoticeAPI_DeleteCascadesToGenerations(t *testing.T) {
	c := newAPIClient(t)
	ctx := context.Background()

	analysis, err := c.Notices().Analyze(ctx, &notice.AnalyzeRequest{
		NoticeText: cp2000Notice,
	})
	require.NoError(t, err)

	_, err = c.Notices().Generate(ctx, analysis.AnalysisID, &notice.GenerateRequest{
		Stance: "agree",
	})
	require.NoError(t, err)

	require.NoError(t, c.Notices().Delete(ctx, analysis.AnalysisID))

	_, err = c.Notices().Get(ctx, analysis.AnalysisID)
	require.Error(t, err)
	apiErr, ok := err.(*client.APIError)
	require.True(t, ok)
	assert.True(t, apiErr.IsNotFound())
}
