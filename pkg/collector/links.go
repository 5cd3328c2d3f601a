package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"copysmith/pkg/config"
	"copysmith/pkg/logx"
	"copysmith/pkg/utils"
)

var urlRe = regexp.MustCompile(`https?://[^\s<>"')\]]+`)

// ExtractURLs returns every http(s) URL in the text, deduplicated in order of
// first occurrence. Plain pattern matching; markdown link syntax is not
// interpreted, so a markdown link contributes its target URL once.
func ExtractURLs(text string) []string {
	matches := urlRe.FindAllString(text, -1)
	seen := make(map[string]bool, len(matches))
	var urls []string
	for _, m := range matches {
		// Trim trailing punctuation that prose commonly glues onto URLs.
		m = strings.TrimRight(m, ".,;:!?")
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		urls = append(urls, m)
	}
	return urls
}

// Collector fetches link content and attachment images within configured
// budgets.
type Collector struct {
	httpClient *http.Client
	logger     *logx.Logger
	tokens     *utils.TokenCounter

	fetchTimeout time.Duration
	charBudget   int
	maxImgBytes  int
}

// New creates a Collector from the collector configuration section.
func New(cfg config.CollectorConfig) *Collector {
	// A nil counter degrades to the character estimate.
	tokens, _ := utils.NewTokenCounter()
	return &Collector{
		httpClient:   &http.Client{},
		logger:       logx.NewLogger("collector"),
		tokens:       tokens,
		fetchTimeout: time.Duration(cfg.FetchTimeoutSec) * time.Second,
		charBudget:   utils.CharBudget(cfg.LinkTokenBudget),
		maxImgBytes:  cfg.MaxImageBytes,
	}
}

// FetchLinks retrieves every URL concurrently, each under its own timeout so
// one hanging host cannot stall the batch. Results preserve input order.
// Failures are recorded per URL, never returned as an error.
func (c *Collector) FetchLinks(ctx context.Context, urls []string) []FetchedContent {
	results := make([]FetchedContent, len(urls))
	var wg sync.WaitGroup
	for i, u := range urls {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			results[i] = c.fetchOne(ctx, u)
		}(i, u)
	}
	wg.Wait()
	return results
}

func (c *Collector) fetchOne(ctx context.Context, url string) FetchedContent {
	fetchCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	result := FetchedContent{URL: url}

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, url, nil)
	if err != nil {
		result.Error = fmt.Sprintf("invalid URL: %v", err)
		return result
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		result.Error = fmt.Sprintf("fetch failed: %v", err)
		c.logger.Debug("Link fetch failed for %s: %v", url, err)
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		result.Error = fmt.Sprintf("HTTP %d", resp.StatusCode)
		return result
	}

	contentType := resp.Header.Get("Content-Type")
	if !isTextContentType(contentType) {
		result.Error = fmt.Sprintf("unsupported content type %q", contentType)
		return result
	}

	// Read at most double the budget; plenty for truncation detection after
	// tag stripping shrinks the text.
	body, err := io.ReadAll(io.LimitReader(resp.Body, int64(c.charBudget)*2+1))
	if err != nil {
		result.Error = fmt.Sprintf("read failed: %v", err)
		return result
	}

	text := string(body)
	if strings.Contains(contentType, "html") {
		text = HTMLToText(text)
	}
	text = strings.TrimSpace(text)

	if len(text) > c.charBudget {
		text = text[:c.charBudget]
		result.Truncated = true
	}
	result.Content = text
	c.logger.Debug("Fetched %s (%d chars, %d tokens, truncated=%v)",
		url, len(text), c.tokens.CountTokens(text), result.Truncated)
	return result
}

func isTextContentType(contentType string) bool {
	ct := strings.ToLower(contentType)
	switch {
	case strings.HasPrefix(ct, "text/"):
		return true
	case strings.Contains(ct, "json"), strings.Contains(ct, "xml"):
		return true
	}
	return false
}
