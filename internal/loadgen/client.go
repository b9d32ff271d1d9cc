package loadgen

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/okian/playlab/internal/domain/analysis"
	"github.com/okian/playlab/internal/domain/model"
	"github.com/okian/playlab/internal/domain/seeds"
)

// APIError is a non-2xx answer from the service.
type APIError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"message"`
	Signal  string `json:"signal,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("http %d %s: %s", e.Status, e.Code, e.Message)
}

// JobStatus is the polled state of an async job.
type JobStatus struct {
	JobID  string          `json:"job_id"`
	Kind   string          `json:"kind"`
	Status string          `json:"status"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *APIError       `json:"error,omitempty"`
}

// Terminal reports whether the job has finished.
func (j JobStatus) Terminal() bool {
	return j.Status == "done" || j.Status == "failed"
}

type submitAck struct {
	JobID     string `json:"job_id"`
	Duplicate bool   `json:"duplicate"`
}

// Client talks to the playlab HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a Client for baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Health checks GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil, nil)
}

// Analyze runs a synchronous analysis.
func (c *Client) Analyze(ctx context.Context, in model.AnalyzeInput) (analysis.Result, error) {
	var res analysis.Result
	err := c.do(ctx, http.MethodPost, "/v1/analyze", nil, in, &res)
	return res, err
}

// Battle runs a synchronous battle.
func (c *Client) Battle(ctx context.Context, in model.BattleInput) (analysis.BattleResult, error) {
	var res analysis.BattleResult
	err := c.do(ctx, http.MethodPost, "/v1/battle", nil, in, &res)
	return res, err
}

// Seeds asks for the seed spec of a strategy.
func (c *Client) Seeds(ctx context.Context, strategy seeds.Strategy, sig seeds.Signal) (seeds.Spec, error) {
	body := struct {
		Strategy seeds.Strategy `json:"strategy"`
		Signal   seeds.Signal   `json:"signal"`
	}{strategy, sig}
	var spec seeds.Spec
	err := c.do(ctx, http.MethodPost, "/v1/seeds", nil, body, &spec)
	return spec, err
}

// SubmitAnalyze queues an analysis job. An empty key disables
// deduplication.
func (c *Client) SubmitAnalyze(ctx context.Context, key string, in model.AnalyzeInput) (id string, dup bool, err error) {
	body := struct {
		Kind    model.JobKind       `json:"kind"`
		Analyze *model.AnalyzeInput `json:"analyze"`
	}{model.JobAnalyze, &in}
	return c.submit(ctx, key, body)
}

// SubmitBattle queues a battle job.
func (c *Client) SubmitBattle(ctx context.Context, key string, in model.BattleInput) (id string, dup bool, err error) {
	body := struct {
		Kind   model.JobKind      `json:"kind"`
		Battle *model.BattleInput `json:"battle"`
	}{model.JobBattle, &in}
	return c.submit(ctx, key, body)
}

func (c *Client) submit(ctx context.Context, key string, body any) (string, bool, error) {
	header := http.Header{}
	if key != "" {
		header.Set("Idempotency-Key", key)
	}
	var ack submitAck
	if err := c.do(ctx, http.MethodPost, "/v1/jobs", header, body, &ack); err != nil {
		return "", false, err
	}
	return ack.JobID, ack.Duplicate, nil
}

// Job polls a job once.
func (c *Client) Job(ctx context.Context, id string) (JobStatus, error) {
	var st JobStatus
	err := c.do(ctx, http.MethodGet, "/v1/jobs/"+url.PathEscape(id), nil, nil, &st)
	return st, err
}

// WaitJob polls until the job is terminal or ctx ends.
func (c *Client) WaitJob(ctx context.Context, id string, every time.Duration) (JobStatus, error) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		st, err := c.Job(ctx, id)
		if err != nil {
			return st, err
		}
		if st.Terminal() {
			return st, nil
		}
		select {
		case <-ctx.Done():
			return st, ctx.Err()
		case <-t.C:
		}
	}
}

// Leaderboard fetches the top limit entries.
func (c *Client) Leaderboard(ctx context.Context, limit int) ([]Entry, error) {
	var entries []Entry
	err := c.do(ctx, http.MethodGet, "/v1/leaderboard?limit="+strconv.Itoa(limit), nil, nil, &entries)
	return entries, err
}

// Rank fetches one playlist's leaderboard row.
func (c *Client) Rank(ctx context.Context, playlistID string) (Entry, error) {
	var e Entry
	err := c.do(ctx, http.MethodGet, "/v1/rank/"+url.PathEscape(playlistID), nil, nil, &e)
	return e, err
}

func (c *Client) do(ctx context.Context, method, path string, header http.Header, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("new request %s %s: %w", method, path, err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.Unmarshal(data, apiErr)
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
