// Package notice provides the application-level service for notice analysis
// and response generation.  It sits between the HTTP/CLI handlers and the
// intelligence pipeline, adding persistence, caching, usage events, and
// metrics around the stateless engine.
package notice

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domain "github.com/taxletterhelp/notice-intelligence/internal/domain/notice"
	"github.com/taxletterhelp/notice-intelligence/internal/infrastructure/database/redis"
	"github.com/taxletterhelp/notice-intelligence/internal/infrastructure/messaging/kafka"
	"github.com/taxletterhelp/notice-intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/taxletterhelp/notice-intelligence/internal/intelligence/engine"
	"github.com/taxletterhelp/notice-intelligence/internal/intelligence/evidence"
	"github.com/taxletterhelp/notice-intelligence/internal/intelligence/playbook"
	"github.com/taxletterhelp/notice-intelligence/pkg/errors"
)

const analysisCacheTTL = time.Hour

// Service defines the application operations exposed over HTTP and the CLI.
type Service interface {
	Analyze(ctx context.Context, input *AnalyzeInput) (*AnalyzeOutput, error)
	Generate(ctx context.Context, input *GenerateInput) (*GenerateOutput, error)
	GetAnalysis(ctx context.Context, id string) (*domain.AnalysisRecord, error)
	ListAnalyses(ctx context.Context, input *ListInput) (*ListResult, error)
	DeleteAnalysis(ctx context.Context, id string) error
	ListGenerations(ctx context.Context, analysisID string) ([]*domain.GenerationRecord, error)
	Stats(ctx context.Context) (*Stats, error)
}

// AnalyzeInput contains input for analyzing a notice.
type AnalyzeInput struct {
	NoticeText  string              `json:"noticeText"`
	Documents   []evidence.Document `json:"documents,omitempty"`
	UserContext engine.UserContext  `json:"userContext"`
}

// AnalyzeOutput pairs the stored record ID with the full pipeline result.
type AnalyzeOutput struct {
	AnalysisID string                 `json:"analysisId"`
	Result     *engine.AnalysisResult `json:"result"`
}

// GenerateInput contains input for generating a response letter from a prior
// analysis.
type GenerateInput struct {
	AnalysisID      string `json:"analysisId"`
	Stance          string `json:"stance"`
	Explanation     string `json:"explanation"`
	RequestedAction string `json:"requestedAction"`
}

// GenerateOutput pairs the stored record ID (empty when the request was
// rejected before generation) with the engine result.
type GenerateOutput struct {
	GenerationID string                 `json:"generationId,omitempty"`
	Result       *engine.GenerateResult `json:"result"`
}

// ListInput contains pagination and filter input for listing analyses.
type ListInput struct {
	NoticeType string
	RiskLevel  string
	Page       int
	PageSize   int
}

// ListResult is a paginated list of analyses.
type ListResult struct {
	Analyses   []*domain.AnalysisRecord `json:"analyses"`
	Total      int64                    `json:"total"`
	Page       int                      `json:"page"`
	PageSize   int                      `json:"pageSize"`
	TotalPages int                      `json:"totalPages"`
}

// Stats summarizes stored analyses.
type Stats struct {
	TotalAnalyses int64            `json:"totalAnalyses"`
	ByNoticeType  map[string]int64 `json:"byNoticeType"`
}

type serviceImpl struct {
	engine    *engine.Engine
	generator engine.Generator
	repo      domain.Repository
	cache     redis.Cache
	publisher kafka.Publisher
	metrics   *prometheus.Metrics
	logger    *zap.Logger
	now       func() time.Time
	model     string
}

// ServiceOption customises a Service.
type ServiceOption func(*serviceImpl)

// WithCache attaches an analysis cache.
func WithCache(cache redis.Cache) ServiceOption {
	return func(s *serviceImpl) { s.cache = cache }
}

// WithPublisher attaches a usage-event publisher.
func WithPublisher(publisher kafka.Publisher) ServiceOption {
	return func(s *serviceImpl) { s.publisher = publisher }
}

// WithMetrics attaches pipeline metrics.
func WithMetrics(metrics *prometheus.Metrics) ServiceOption {
	return func(s *serviceImpl) { s.metrics = metrics }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *serviceImpl) {
		if now != nil {
			s.now = now
		}
	}
}

// WithModelName sets the model label stamped on generation metrics.
func WithModelName(model string) ServiceOption {
	return func(s *serviceImpl) { s.model = model }
}

// NewService creates the notice application service.  Cache, publisher, and
// metrics are optional; the service degrades gracefully without them.
func NewService(eng *engine.Engine, generator engine.Generator, repo domain.Repository, logger *zap.Logger, opts ...ServiceOption) Service {
	s := &serviceImpl{
		engine:    eng,
		generator: generator,
		repo:      repo,
		logger:    logger,
		now:       time.Now,
		model:     "unknown",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *serviceImpl) Analyze(ctx context.Context, input *AnalyzeInput) (*AnalyzeOutput, error) {
	start := s.now()

	rec, err := domain.NewAnalysisRecord(input.NoticeText, start.UTC())
	if err != nil {
		return nil, err
	}

	result, err := s.engine.Analyze(ctx, input.NoticeText, engine.AnalyzeOptions{
		Documents:   input.Documents,
		UserContext: input.UserContext,
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordError("analysis", string(errors.GetCode(err)))
		}
		return nil, err
	}

	rec.NoticeType = string(result.Classification.NoticeType)
	rec.Confidence = string(result.Classification.Confidence)
	rec.UrgencyLevel = string(result.DeadlineIntelligence.Deadline.UrgencyLevel)
	rec.RiskLevel = result.Metadata.RiskLevel
	rec.BalanceDue = result.FinancialInfo.BalanceDue
	rec.DaysRemaining = result.DeadlineIntelligence.Deadline.DaysRemaining
	rec.RequiresProfessionalHelp = result.Metadata.RequiresProfessionalHelp

	raw, err := json.Marshal(result)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal analysis result")
	}
	rec.Result = raw

	if err := s.repo.CreateAnalysis(ctx, rec); err != nil {
		return nil, err
	}

	s.cacheAnalysis(ctx, rec)
	s.publishAnalysisEvent(ctx, rec)

	if s.metrics != nil {
		s.metrics.RecordAnalysis(rec.NoticeType, rec.RiskLevel, time.Since(start))
		if rec.RequiresProfessionalHelp {
			s.metrics.ProfessionalHelpRec.WithLabelValues(rec.UrgencyLevel).Inc()
		}
	}

	s.logger.Info("analysis stored",
		zap.String("analysis_id", rec.ID.String()),
		zap.String("notice_type", rec.NoticeType))

	return &AnalyzeOutput{AnalysisID: rec.ID.String(), Result: result}, nil
}

func (s *serviceImpl) Generate(ctx context.Context, input *GenerateInput) (*GenerateOutput, error) {
	start := s.now()

	analysisID, err := parseID(input.AnalysisID)
	if err != nil {
		return nil, err
	}

	rec, err := s.getAnalysisRecord(ctx, analysisID)
	if err != nil {
		return nil, err
	}

	var analysis engine.AnalysisResult
	if err := json.Unmarshal(rec.Result, &analysis); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode stored analysis")
	}

	result, err := s.engine.Generate(ctx, &analysis, engine.UserPosition{
		Stance:          playbook.Stance(input.Stance),
		Explanation:     input.Explanation,
		RequestedAction: input.RequestedAction,
	}, s.generator)
	if err != nil {
		s.recordGeneration(rec.NoticeType, "error", start)
		if s.metrics != nil {
			s.metrics.RecordError("generation", string(errors.GetCode(err)))
		}
		return nil, err
	}

	switch {
	case result.Error != nil:
		s.recordGeneration(rec.NoticeType, "policy_violation", start)
		return &GenerateOutput{Result: result}, nil
	case result.Warning != nil:
		s.recordGeneration(rec.NoticeType, "warning", start)
		return &GenerateOutput{Result: result}, nil
	}

	genRec, err := domain.NewGenerationRecord(analysisID, input.Stance, start.UTC())
	if err != nil {
		return nil, err
	}
	response := result.Response
	genRec.RiskLevel = string(response.Metadata.RiskLevel)
	genRec.RequiresReview = response.Metadata.RequiresReview
	genRec.WasSanitized = response.SanitizationReport != nil
	genRec.ResponseLetter = response.ResponseLetter

	rawResp, err := json.Marshal(response)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal generation result")
	}
	genRec.Result = rawResp

	if err := s.repo.CreateGeneration(ctx, genRec); err != nil {
		return nil, err
	}

	s.publishGenerationEvent(ctx, genRec)
	s.recordGeneration(rec.NoticeType, "success", start)
	if s.metrics != nil && genRec.WasSanitized {
		s.metrics.SanitizationsTotal.Inc()
	}

	s.logger.Info("generation stored",
		zap.String("generation_id", genRec.ID.String()),
		zap.String("analysis_id", analysisID.String()),
		zap.Bool("sanitized", genRec.WasSanitized))

	return &GenerateOutput{GenerationID: genRec.ID.String(), Result: result}, nil
}

func (s *serviceImpl) GetAnalysis(ctx context.Context, id string) (*domain.AnalysisRecord, error) {
	analysisID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.getAnalysisRecord(ctx, analysisID)
}

func (s *serviceImpl) ListAnalyses(ctx context.Context, input *ListInput) (*ListResult, error) {
	page := input.Page
	if page <= 0 {
		page = 1
	}
	pageSize := input.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	records, total, err := s.repo.ListAnalyses(ctx, domain.ListFilter{
		NoticeType: input.NoticeType,
		RiskLevel:  input.RiskLevel,
		Limit:      pageSize,
		Offset:     (page - 1) * pageSize,
	})
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	return &ListResult{
		Analyses:   records,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

func (s *serviceImpl) DeleteAnalysis(ctx context.Context, id string) error {
	analysisID, err := parseID(id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteAnalysis(ctx, analysisID); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, analysisCacheKey(analysisID)); err != nil {
			s.logger.Warn("failed to evict deleted analysis from cache",
				zap.String("analysis_id", analysisID.String()), zap.Error(err))
		}
	}
	return nil
}

func (s *serviceImpl) ListGenerations(ctx context.Context, analysisID string) ([]*domain.GenerationRecord, error) {
	id, err := parseID(analysisID)
	if err != nil {
		return nil, err
	}
	// Confirm the analysis exists so unknown IDs 404 instead of listing empty.
	if _, err := s.getAnalysisRecord(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListGenerationsByAnalysis(ctx, id)
}

func (s *serviceImpl) Stats(ctx context.Context) (*Stats, error) {
	counts, err := s.repo.CountByNoticeType(ctx)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, n := range counts {
		total += n
	}
	return &Stats{TotalAnalyses: total, ByNoticeType: counts}, nil
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func parseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, errors.New(errors.ErrCodeNoticeInvalidRequest, "invalid analysis id")
	}
	return parsed, nil
}

func analysisCacheKey(id uuid.UUID) string {
	return "analysis:" + id.String()
}

// getAnalysisRecord reads through the cache when one is configured.
func (s *serviceImpl) getAnalysisRecord(ctx context.Context, id uuid.UUID) (*domain.AnalysisRecord, error) {
	if s.cache == nil {
		return s.repo.GetAnalysis(ctx, id)
	}

	var rec domain.AnalysisRecord
	err := s.cache.Get(ctx, analysisCacheKey(id), &rec)
	if err == nil {
		if s.metrics != nil {
			s.metrics.RecordCacheAccess("analysis", true)
		}
		return &rec, nil
	}
	if s.metrics != nil {
		s.metrics.RecordCacheAccess("analysis", false)
	}

	stored, err := s.repo.GetAnalysis(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cacheAnalysis(ctx, stored)
	return stored, nil
}

func (s *serviceImpl) cacheAnalysis(ctx context.Context, rec *domain.AnalysisRecord) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, analysisCacheKey(rec.ID), rec, analysisCacheTTL); err != nil {
		s.logger.Warn("failed to cache analysis",
			zap.String("analysis_id", rec.ID.String()), zap.Error(err))
	}
}

func (s *serviceImpl) publishAnalysisEvent(ctx context.Context, rec *domain.AnalysisRecord) {
	if s.publisher == nil {
		return
	}
	event := domain.NewAnalysisCompletedEvent(rec, s.now().UTC())
	if err := s.publisher.PublishAnalysisCompleted(ctx, event); err != nil {
		s.logger.Warn("failed to publish analysis event",
			zap.String("analysis_id", rec.ID.String()), zap.Error(err))
		s.recordEvent(kafka.TopicAnalysisCompleted, "error")
		return
	}
	s.recordEvent(kafka.TopicAnalysisCompleted, "success")
}

func (s *serviceImpl) publishGenerationEvent(ctx context.Context, rec *domain.GenerationRecord) {
	if s.publisher == nil {
		return
	}
	event := domain.NewGenerationCompletedEvent(rec, s.now().UTC())
	if err := s.publisher.PublishGenerationCompleted(ctx, event); err != nil {
		s.logger.Warn("failed to publish generation event",
			zap.String("generation_id", rec.ID.String()), zap.Error(err))
		s.recordEvent(kafka.TopicGenerationCompleted, "error")
		return
	}
	s.recordEvent(kafka.TopicGenerationCompleted, "success")
}

func (s *serviceImpl) recordEvent(topic, status string) {
	if s.metrics != nil {
		s.metrics.EventsPublishedTotal.WithLabelValues(topic, status).Inc()
	}
}

func (s *serviceImpl) recordGeneration(noticeType, outcome string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordGeneration(noticeType, outcome, s.model, time.Since(start))
	}
}
