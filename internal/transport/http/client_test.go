package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/singhvigyat/scrutiny-client/internal/auth"
	"github.com/singhvigyat/scrutiny-client/internal/domain"
)

func TestProbeFallsBackPastFailures(t *testing.T) {
	var laterCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/sessions/S1/status", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/api/sessions/S1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"S1","status":"waiting"}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		laterCalls.Add(1)
		w.Write([]byte(`{"id":"S1"}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(server.URL, nil, nil)
	payload, err := client.SessionStatus(context.Background(), "S1")
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if payload["id"] != "S1" {
		t.Fatalf("expected second candidate's payload, got %v", payload)
	}
	if laterCalls.Load() != 0 {
		t.Fatalf("candidates after the first success must not be called, got %d calls", laterCalls.Load())
	}
}

func TestProbeRejectsMarkupEvenOn200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Tunnel interstitial: markup body with a success status.
		w.Write([]byte("<!DOCTYPE html><html><body>checkpoint</body></html>"))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, nil)
	_, err := client.SessionStatus(context.Background(), "S1")
	if !errors.Is(err, domain.ErrNoCandidateSucceeded) {
		t.Fatalf("expected chain exhaustion, got %v", err)
	}

	var chain *ChainError
	if !errors.As(err, &chain) || chain.Last == nil {
		t.Fatalf("expected aggregate to carry the last failure, got %#v", err)
	}
	if chain.Last.Kind != FailureNonJSON {
		t.Fatalf("expected non-json failure, got %s", chain.Last.Kind)
	}
}

func TestProbeTriesAlternateBase(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"gone"}`, http.StatusGone)
	}))
	defer dead.Close()
	alive := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"S1","status":"active"}`))
	}))
	defer alive.Close()

	client := NewClient(dead.URL, []string{alive.URL}, nil)
	payload, err := client.SessionStatus(context.Background(), "S1")
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if payload["status"] != "active" {
		t.Fatalf("expected alternate base payload, got %v", payload)
	}
}

func TestRequestHeaders(t *testing.T) {
	var gotAuth, gotBypass string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotBypass = r.Header.Get(headerTunnelBypass)
		w.Write([]byte(`{"id":"S1"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, auth.StaticTokenSource("tok-123"))
	if _, err := client.SessionStatus(context.Background(), "S1"); err != nil {
		t.Fatalf("probe: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
	if gotBypass != headerTunnelBypassValue {
		t.Fatalf("expected tunnel bypass header, got %q", gotBypass)
	}
}

func TestMissingCredentialIsNonFatal(t *testing.T) {
	var sawAuth bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAuth = r.Header.Get("Authorization") != ""
		w.Write([]byte(`{"id":"S1"}`))
	}))
	defer server.Close()

	// Signed out: empty token, nil error.
	client := NewClient(server.URL, nil, auth.StaticTokenSource(""))
	if _, err := client.SessionStatus(context.Background(), "S1"); err != nil {
		t.Fatalf("cycle must run unauthenticated, got %v", err)
	}
	if sawAuth {
		t.Fatalf("expected no Authorization header when signed out")
	}
}

func TestJoinReturnsAuthoritativePair(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/sessions/S1/join" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"session":{"sessionId":"S1","quizId":"Q7","status":"waiting"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, nil)
	joined, err := client.Join(context.Background(), "S1", "4242", "Alice")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if joined.SessionID != "S1" || joined.QuizID != "Q7" {
		t.Fatalf("unexpected join result %+v", joined)
	}
}

func TestSubmitAnswersParsesScore(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions/S1/submit" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"score":3,"totalQuestions":5}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, nil)
	result, err := client.SubmitAnswers(context.Background(), "S1", []domain.AnswerSubmission{
		{QuestionID: "q1", OptionID: "o2"},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != 3 || result.TotalQuestions != 5 {
		t.Fatalf("unexpected result %+v", result)
	}
}
