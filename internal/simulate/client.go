package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Outcome of a single check-in submission.
type Outcome int

// Submission outcomes.
const (
	OutcomeAccepted Outcome = iota
	OutcomeDuplicate
	OutcomeFailed
)

// RosterEntry is the subset of a triage entry the simulator checks.
type RosterEntry struct {
	SubjectID string `json:"subject_id"`
	Tier      string `json:"tier"`
}

// RosterSummary mirrors the triage summary counts.
type RosterSummary struct {
	Total         int `json:"total"`
	HighRiskCount int `json:"high_risk_count"`
	AlertCount    int `json:"alert_count"`
}

// Roster is the decoded GET /triage response.
type Roster struct {
	Entries []RosterEntry `json:"entries"`
	Summary RosterSummary `json:"summary"`
}

// Client talks to the wellcheck HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

// Health checks GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned %d", resp.StatusCode)
	}
	return nil
}

// RegisterSubject posts a subject. An existing subject is not an error.
func (c *Client) RegisterSubject(ctx context.Context, id string) error {
	resp, err := c.do(ctx, http.MethodPost, "/subjects", map[string]string{"id": id})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusConflict {
		return fmt.Errorf("register subject %s: status %d: %s", id, resp.StatusCode, readBody(resp))
	}
	return nil
}

// Submit posts one check-in and reports whether it raised an alert.
func (c *Client) Submit(ctx context.Context, in CheckIn) (Outcome, bool) {
	resp, err := c.do(ctx, http.MethodPost, "/checkins", in)
	if err != nil {
		return OutcomeFailed, false
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated:
		var rec struct {
			Alert bool `json:"alert"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
			return OutcomeFailed, false
		}
		return OutcomeAccepted, rec.Alert
	case http.StatusOK:
		return OutcomeDuplicate, false
	default:
		return OutcomeFailed, false
	}
}

// Roster fetches GET /triage.
func (c *Client) Roster(ctx context.Context) (Roster, error) {
	resp, err := c.do(ctx, http.MethodGet, "/triage", nil)
	if err != nil {
		return Roster{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Roster{}, fmt.Errorf("triage returned %d: %s", resp.StatusCode, readBody(resp))
	}
	var r Roster
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return Roster{}, fmt.Errorf("decode roster: %w", err)
	}
	return r, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.http.Do(req)
}

func readBody(resp *http.Response) string {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return string(bytes.TrimSpace(b))
}
