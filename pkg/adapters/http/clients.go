package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/claritydental/walkout/pkg/domain"
	"github.com/claritydental/walkout/pkg/observability"
)

// RuleEngineClient calls the external rule-engine service. Results are
// keyed by the uniqueID they were fetched for; the engine's staleness
// check forces a re-fetch whenever the form's key moves on.
type RuleEngineClient struct {
	base    string
	client  *http.Client
	metrics *observability.Metrics
}

// ClientOption configures the outbound clients.
type ClientOption func(*clientConfig)

type clientConfig struct {
	httpClient *http.Client
	metrics    *observability.Metrics
}

// WithHTTPClient overrides the transport, for tests and custom TLS.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cfg *clientConfig) { cfg.httpClient = c }
}

// WithClientMetrics records lookup latencies.
func WithClientMetrics(m *observability.Metrics) ClientOption {
	return func(cfg *clientConfig) { cfg.metrics = m }
}

func applyClientOptions(opts []ClientOption) clientConfig {
	cfg := clientConfig{
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// NewRuleEngineClient creates a client against the service base URL.
func NewRuleEngineClient(base string, opts ...ClientOption) *RuleEngineClient {
	cfg := applyClientOptions(opts)
	return &RuleEngineClient{base: base, client: cfg.httpClient, metrics: cfg.metrics}
}

// Query fetches the rule messages for a patient's walkout.
func (c *RuleEngineClient) Query(ctx context.Context, patientID, uniqueID, office string) ([]domain.RuleMessage, error) {
	start := time.Now()
	defer func() {
		if c.metrics != nil {
			c.metrics.ObserveLookup("rule_engine", time.Since(start).Seconds())
		}
	}()

	payload, err := json.Marshal(map[string]string{
		"patientId": patientID,
		"uniqueId":  uniqueID,
		"office":    office,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal lookup request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/walkout/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build lookup request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &domain.NetworkError{Op: "rule engine lookup", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.NetworkError{
			Op:  "rule engine lookup",
			Err: fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	var out struct {
		Messages []domain.RuleMessage `json:"messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode lookup response: %w", err)
	}
	return out.Messages, nil
}

// NoteAnalyzerClient calls the AI note-analysis service. The upstream
// enforces a request window; an exhausted window surfaces as
// *domain.RateLimitError carrying the Retry-After deadline so the form
// can disable its regenerate action until then.
type NoteAnalyzerClient struct {
	base    string
	client  *http.Client
	metrics *observability.Metrics
}

// NewNoteAnalyzerClient creates a client against the service base URL.
func NewNoteAnalyzerClient(base string, opts ...ClientOption) *NoteAnalyzerClient {
	cfg := applyClientOptions(opts)
	return &NoteAnalyzerClient{base: base, client: cfg.httpClient, metrics: cfg.metrics}
}

// Analyze runs the analysis over both note texts.
func (c *NoteAnalyzerClient) Analyze(ctx context.Context, providerText, hygienistText string) (domain.NoteFindings, error) {
	start := time.Now()
	defer func() {
		if c.metrics != nil {
			c.metrics.ObserveLookup("note_analyzer", time.Since(start).Seconds())
		}
	}()

	payload, err := json.Marshal(map[string]string{
		"providerNotes":  providerText,
		"hygienistNotes": hygienistText,
	})
	if err != nil {
		return domain.NoteFindings{}, fmt.Errorf("marshal analysis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/analyze", bytes.NewReader(payload))
	if err != nil {
		return domain.NoteFindings{}, fmt.Errorf("build analysis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.NoteFindings{}, &domain.NetworkError{Op: "note analysis", Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return domain.NoteFindings{}, rateLimitFrom(resp)
	default:
		return domain.NoteFindings{}, &domain.NetworkError{
			Op:  "note analysis",
			Err: fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	var findings domain.NoteFindings
	if err := json.NewDecoder(resp.Body).Decode(&findings); err != nil {
		return domain.NoteFindings{}, fmt.Errorf("decode analysis response: %w", err)
	}
	return findings, nil
}

func rateLimitFrom(resp *http.Response) *domain.RateLimitError {
	rle := &domain.RateLimitError{RetryAfter: time.Now().Add(time.Minute)}
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			rle.RetryAfter = time.Now().Add(time.Duration(secs) * time.Second)
		} else if t, err := http.ParseTime(v); err == nil {
			rle.RetryAfter = t
		}
	}
	if v := resp.Header.Get("X-RateLimit-Limit"); v != "" {
		rle.Limit, _ = strconv.Atoi(v)
	}
	if v := resp.Header.Get("X-RateLimit-Remaining"); v != "" {
		rle.Remaining, _ = strconv.Atoi(v)
	}
	return rle
}
