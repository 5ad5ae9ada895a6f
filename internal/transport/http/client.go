package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/url"

	"github.com/singhvigyat/scrutiny-client/internal/domain"
)

// The deployment fronts the backend with an ngrok tunnel that serves an HTML
// interstitial unless this header is present.
const (
	headerTunnelBypass      = "ngrok-skip-browser-warning"
	headerTunnelBypassValue = "true"
)

// TokenSource supplies the current bearer credential. An empty token with a
// nil error means signed out; requests are then sent unauthenticated, since
// some deployments permit anonymous status reads.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// Client talks to the quiz backend over plain JSON/HTTP. One instance is
// shared across pollers; it holds no per-session state.
type Client struct {
	bases  []string
	http   *http.Client
	tokens TokenSource
}

// NewClient builds a Client over the primary base URL plus any alternates.
// No request timeout is set; cancellation flows from the caller's context.
func NewClient(baseURL string, alternates []string, tokens TokenSource) *Client {
	bases := append([]string{baseURL}, alternates...)
	return &Client{
		bases:  bases,
		http:   &http.Client{},
		tokens: tokens,
	}
}

// SessionStatus polls the session resource through the status candidate
// chain and returns the first parseable success payload.
func (c *Client) SessionStatus(ctx context.Context, sessionID string) (map[string]any, error) {
	return c.probe(ctx, expand(c.bases, sessionStatusPaths, url.PathEscape(sessionID)))
}

// QuizDetail fetches the canonical quiz payload through its candidate chain.
func (c *Client) QuizDetail(ctx context.Context, quizID string) (map[string]any, error) {
	return c.probe(ctx, expand(c.bases, quizDetailPaths, url.PathEscape(quizID)))
}

// Join enters a session with a PIN and display name. The returned pair is
// authoritative for the current participant: its quiz id outranks any quiz
// id embedded in later polled payloads.
func (c *Client) Join(ctx context.Context, sessionID, pin, displayName string) (domain.JoinResult, error) {
	payload, err := c.post(ctx, "/api/sessions/"+url.PathEscape(sessionID)+"/join", map[string]any{
		"pin":  pin,
		"name": displayName,
	})
	if err != nil {
		return domain.JoinResult{}, err
	}
	session := domain.NormalizeSession(payload)
	result := domain.JoinResult{SessionID: session.ID, QuizID: session.QuizID}
	if result.SessionID == "" {
		result.SessionID = sessionID
	}
	return result, nil
}

// SubmitAnswers posts the participant's answers and returns the score
// summary.
func (c *Client) SubmitAnswers(ctx context.Context, sessionID string, answers []domain.AnswerSubmission) (domain.SubmitResult, error) {
	payload, err := c.post(ctx, "/api/sessions/"+url.PathEscape(sessionID)+"/submit", map[string]any{
		"answers": answers,
	})
	if err != nil {
		return domain.SubmitResult{}, err
	}
	result := domain.SubmitResult{Raw: payload}
	if score, ok := payload["score"].(float64); ok {
		result.Score = int(score)
	}
	if total, ok := payload["totalQuestions"].(float64); ok {
		result.TotalQuestions = int(total)
	}
	return result, nil
}

// probe iterates candidates strictly in order and returns the first
// parseable success payload. Candidate-level failures are recorded and
// skipped; if the list is exhausted the aggregate ChainError carries the
// last one.
func (c *Client) probe(ctx context.Context, candidates []string) (map[string]any, error) {
	var last *CandidateFailure
	for _, candidate := range candidates {
		payload, failure := c.get(ctx, candidate)
		if failure == nil {
			return payload, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Printf("probe: skipping %v", failure)
		last = failure
	}
	return nil, &ChainError{Last: last}
}

func (c *Client) get(ctx context.Context, rawURL string) (map[string]any, *CandidateFailure) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &CandidateFailure{URL: rawURL, Kind: FailureNetwork, Err: err}
	}
	c.decorate(ctx, req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &CandidateFailure{URL: rawURL, Kind: FailureNetwork, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &CandidateFailure{URL: rawURL, Kind: FailureNetwork, Err: err}
	}
	payload, kind := classifyBody(resp.StatusCode, body)
	if kind != nil {
		return nil, &CandidateFailure{URL: rawURL, Kind: *kind, Status: resp.StatusCode}
	}
	return payload, nil
}

// post issues a single JSON POST against the primary base only; write
// operations do not walk the fallback chain.
func (c *Client) post(ctx context.Context, path string, body map[string]any) (map[string]any, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.bases[0]+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.decorate(ctx, req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, CandidateFailure{URL: req.URL.String(), Kind: FailureNetwork, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, CandidateFailure{URL: req.URL.String(), Kind: FailureNetwork, Err: err}
	}
	payload, kind := classifyBody(resp.StatusCode, raw)
	if kind != nil {
		return nil, CandidateFailure{URL: req.URL.String(), Kind: *kind, Status: resp.StatusCode}
	}
	return payload, nil
}

// decorate attaches shared headers. A missing credential is non-fatal: the
// request goes out unauthenticated rather than the cycle aborting.
func (c *Client) decorate(ctx context.Context, req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerTunnelBypass, headerTunnelBypassValue)
	if c.tokens == nil {
		return
	}
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		log.Printf("token lookup failed, proceeding unauthenticated: %v", err)
		return
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
