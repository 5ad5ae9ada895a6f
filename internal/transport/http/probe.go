package http

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/singhvigyat/scrutiny-client/internal/domain"
)

// FailureKind classifies why a single probe candidate was rejected.
type FailureKind string

const (
	FailureNetwork    FailureKind = "network"
	FailureHTTPStatus FailureKind = "http-status"
	FailureNonJSON    FailureKind = "non-json"
)

// CandidateFailure records why one URL in a fallback chain was skipped.
// Individual failures are never surfaced to consumers; they are absorbed
// into the aggregate ChainError.
type CandidateFailure struct {
	URL    string
	Kind   FailureKind
	Status int
	Err    error
}

func (f CandidateFailure) Error() string {
	switch f.Kind {
	case FailureHTTPStatus:
		return fmt.Sprintf("%s: status %d", f.URL, f.Status)
	case FailureNonJSON:
		return fmt.Sprintf("%s: non-JSON body", f.URL)
	default:
		return fmt.Sprintf("%s: %v", f.URL, f.Err)
	}
}

func (f CandidateFailure) Unwrap() error { return f.Err }

// ChainError is the aggregate failure after every candidate in a chain was
// exhausted. It wraps domain.ErrNoCandidateSucceeded and carries the last
// candidate-level failure for logging.
type ChainError struct {
	Last *CandidateFailure
}

func (e *ChainError) Error() string {
	if e.Last == nil {
		return domain.ErrNoCandidateSucceeded.Error()
	}
	return fmt.Sprintf("%v (last: %v)", domain.ErrNoCandidateSucceeded, e.Last)
}

func (e *ChainError) Unwrap() error { return domain.ErrNoCandidateSucceeded }

// classifyBody decides whether a response body is usable API output.
// The body is always read as text first: the deployment's tunnel serves an
// HTML interstitial with a 200 status when the bypass header is not honored,
// so a success status alone proves nothing.
func classifyBody(status int, body []byte) (map[string]any, *FailureKind) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "<") {
		kind := FailureNonJSON
		return nil, &kind
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		kind := FailureNonJSON
		if status < 200 || status >= 300 {
			kind = FailureHTTPStatus
		}
		return nil, &kind
	}
	if status < 200 || status >= 300 {
		kind := FailureHTTPStatus
		return nil, &kind
	}
	return payload, nil
}
