package analyze

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxResponseBytes = 8 << 20

// Client talks to the external matching service.
type Client interface {
	Analyze(ctx context.Context, req AnalyzeRequest) (*Analysis, error)
	DownloadReport(ctx context.Context, submissionID string) (*Report, error)
}

// Report is a generated report stream. The caller must close Body.
type Report struct {
	ContentType        string
	ContentDisposition string
	Body               io.ReadCloser
}

type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewHTTPClient(baseURL, token string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Analyze posts the request once and normalizes the reply. There is no retry.
func (c *HTTPClient) Analyze(ctx context.Context, areq AnalyzeRequest) (*Analysis, error) {
	payload, err := json.Marshal(areq)
	if err != nil {
		return nil, &AnalysisError{Err: fmt.Errorf("encode request: %w", err)}
	}
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/analyze", bytes.NewReader(payload))
	if err != nil {
		return nil, &AnalysisError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &AnalysisError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &AnalysisError{Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &AnalysisError{StatusCode: resp.StatusCode, Message: scorerMessage(body)}
	}
	return Normalize(body)
}

// DownloadReport fetches the report generated for a submission. The file is
// passed through untouched.
func (c *HTTPClient) DownloadReport(ctx context.Context, submissionID string) (*Report, error) {
	if submissionID == "" {
		return nil, fmt.Errorf("scorer: empty submission id")
	}
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/download_pdf/"+url.PathEscape(submissionID), nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("scorer: download_pdf %d %s", resp.StatusCode, string(body))
	}
	return &Report{
		ContentType:        resp.Header.Get("Content-Type"),
		ContentDisposition: resp.Header.Get("Content-Disposition"),
		Body:               resp.Body,
	}, nil
}

func (c *HTTPClient) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// scorerMessage pulls a human-readable reason out of an error body.
func scorerMessage(body []byte) string {
	var envelope map[string]any
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	for _, key := range []string{"detail", "error", "message"} {
		if s, ok := envelope[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
