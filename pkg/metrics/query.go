// Package metrics provides services for querying aggregated LLM usage data
// from Prometheus. Used by copysmithctl to produce usage reports.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/api"
	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"
)

// UsageReport holds aggregated token and cost totals, optionally scoped to
// one model.
type UsageReport struct {
	Model            string  `json:"model,omitempty"`
	Requests         int64   `json:"requests"`
	FailedRequests   int64   `json:"failed_requests"`
	PromptTokens     int64   `json:"prompt_tokens"`
	CompletionTokens int64   `json:"completion_tokens"`
	TotalTokens      int64   `json:"total_tokens"`
	TotalCost        float64 `json:"total_cost_usd"`
}

// QueryService queries the Prometheus server scraping the copysmith service.
type QueryService struct {
	queryAPI v1.API
}

// NewQueryService creates a metrics query service.
func NewQueryService(prometheusURL string) (*QueryService, error) {
	client, err := api.NewClient(api.Config{
		Address: prometheusURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Prometheus client: %w", err)
	}
	return &QueryService{queryAPI: v1.NewAPI(client)}, nil
}

// scalarOf extracts the single sample of an instant query, or zero when the
// series does not exist yet.
func (q *QueryService) scalarOf(ctx context.Context, query string) (float64, error) {
	result, _, err := q.queryAPI.Query(ctx, query, time.Now())
	if err != nil {
		return 0, fmt.Errorf("query %q failed: %w", query, err)
	}
	if vector, ok := result.(model.Vector); ok && len(vector) > 0 {
		return float64(vector[0].Value), nil
	}
	return 0, nil
}

// GetUsage aggregates tokens, costs, and request counts across all models.
func (q *QueryService) GetUsage(ctx context.Context) (*UsageReport, error) {
	report := &UsageReport{}

	queries := []struct {
		query string
		dest  *int64
	}{
		{`sum(llm_tokens_total{type="prompt"})`, &report.PromptTokens},
		{`sum(llm_tokens_total{type="completion"})`, &report.CompletionTokens},
		{`sum(llm_requests_total)`, &report.Requests},
		{`sum(llm_requests_total{status="error"})`, &report.FailedRequests},
	}
	for _, item := range queries {
		value, err := q.scalarOf(ctx, item.query)
		if err != nil {
			return nil, err
		}
		*item.dest = int64(value)
	}
	report.TotalTokens = report.PromptTokens + report.CompletionTokens

	cost, err := q.scalarOf(ctx, `sum(llm_costs_total)`)
	if err != nil {
		return nil, err
	}
	report.TotalCost = cost

	return report, nil
}

// GetUsageByModel breaks the usage report down per model.
func (q *QueryService) GetUsageByModel(ctx context.Context) (map[string]*UsageReport, error) {
	modelsResult, _, err := q.queryAPI.Query(ctx, `group by (model) (llm_tokens_total)`, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to query models: %w", err)
	}

	var models []string
	if vector, ok := modelsResult.(model.Vector); ok {
		for _, sample := range vector {
			if name, ok := sample.Metric["model"]; ok {
				models = append(models, string(name))
			}
		}
	}

	result := make(map[string]*UsageReport, len(models))
	for _, name := range models {
		report := &UsageReport{Model: name}

		queries := []struct {
			query string
			dest  *int64
		}{
			{fmt.Sprintf(`sum(llm_tokens_total{model=%q, type="prompt"})`, name), &report.PromptTokens},
			{fmt.Sprintf(`sum(llm_tokens_total{model=%q, type="completion"})`, name), &report.CompletionTokens},
			{fmt.Sprintf(`sum(llm_requests_total{model=%q})`, name), &report.Requests},
			{fmt.Sprintf(`sum(llm_requests_total{model=%q, status="error"})`, name), &report.FailedRequests},
		}
		for _, item := range queries {
			value, err := q.scalarOf(ctx, item.query)
			if err != nil {
				return nil, err
			}
			*item.dest = int64(value)
		}
		report.TotalTokens = report.PromptTokens + report.CompletionTokens

		cost, err := q.scalarOf(ctx, fmt.Sprintf(`sum(llm_costs_total{model=%q})`, name))
		if err != nil {
			return nil, err
		}
		report.TotalCost = cost

		result[name] = report
	}
	return result, nil
}
