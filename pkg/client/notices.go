package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/taxletterhelp/notice-intelligence/pkg/types/notice"
)

// NoticesClient exposes the notice analysis and generation endpoints.
type NoticesClient struct {
	client *Client
}

// Analyze submits notice text for analysis and returns the stored record ID
// with the full pipeline result.
func (nc *NoticesClient) Analyze(ctx context.Context, req *notice.AnalyzeRequest) (*notice.AnalyzeResponse, error) {
	if req == nil || req.NoticeText == "" {
		return nil, fmt.Errorf("client: notice text is required")
	}
	var resp notice.AnalyzeResponse
	if err := nc.client.post(ctx, "/api/v1/analyses", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Get fetches a stored analysis by ID.
func (nc *NoticesClient) Get(ctx context.Context, analysisID string) (*notice.AnalysisRecord, error) {
	if analysisID == "" {
		return nil, fmt.Errorf("client: analysis ID is required")
	}
	var rec notice.AnalysisRecord
	if err := nc.client.get(ctx, "/api/v1/analyses/"+url.PathEscape(analysisID), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns a page of stored analyses, newest first.
func (nc *NoticesClient) List(ctx context.Context, req *notice.ListAnalysesRequest) (*notice.ListAnalysesResponse, error) {
	q := url.Values{}
	if req != nil {
		if req.NoticeType != "" {
			q.Set("notice_type", req.NoticeType)
		}
		if req.RiskLevel != "" {
			q.Set("risk_level", req.RiskLevel)
		}
		if req.Page > 0 {
			q.Set("page", strconv.Itoa(req.Page))
		}
		if req.PageSize > 0 {
			q.Set("page_size", strconv.Itoa(req.PageSize))
		}
	}

	path := "/api/v1/analyses"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var resp notice.ListAnalysesResponse
	if err := nc.client.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Delete removes a stored analysis and its generations.
func (nc *NoticesClient) Delete(ctx context.Context, analysisID string) error {
	if analysisID == "" {
		return fmt.Errorf("client: analysis ID is required")
	}
	return nc.client.delete(ctx, "/api/v1/analyses/"+url.PathEscape(analysisID))
}

// Generate drafts a response letter for a prior analysis.  A rejected
// position or a risk warning is reported inside the response body, not as an
// error.
func (nc *NoticesClient) Generate(ctx context.Context, analysisID string, req *notice.GenerateRequest) (*notice.GenerateResponse, error) {
	if analysisID == "" {
		return nil, fmt.Errorf("client: analysis ID is required")
	}
	if req == nil || req.Stance == "" {
		return nil, fmt.Errorf("client: stance is required")
	}
	var resp notice.GenerateResponse
	path := "/api/v1/analyses/" + url.PathEscape(analysisID) + "/generations"
	if err := nc.client.post(ctx, path, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListGenerations returns every generation stored for an analysis, oldest
// first.
func (nc *NoticesClient) ListGenerations(ctx context.Context, analysisID string) ([]notice.GenerationRecord, error) {
	if analysisID == "" {
		return nil, fmt.Errorf("client: analysis ID is required")
	}
	var resp struct {
		Generations []notice.GenerationRecord `json:"generations"`
	}
	path := "/api/v1/analyses/" + url.PathEscape(analysisID) + "/generations"
	if err := nc.client.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Generations, nil
}

// Stats returns aggregate counts over the stored analyses.
func (nc *NoticesClient) Stats(ctx context.Context) (*notice.Stats, error) {
	var stats notice.Stats
	if err := nc.client.get(ctx, "/api/v1/analyses/stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
