package integration

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/singhvigyat/scrutiny-client/internal/app"
	"github.com/singhvigyat/scrutiny-client/internal/domain"
	filekv "github.com/singhvigyat/scrutiny-client/internal/infra/file"
	transport "github.com/singhvigyat/scrutiny-client/internal/transport/http"
)

// fakeBackend scripts a full participation flow: a lobby that activates
// after a few polls, a quiz-detail resource, and a submit endpoint.
type fakeBackend struct {
	statusCalls atomic.Int32
	quizCalls   atomic.Int32
	activateAt  int32
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/sessions/S1/join", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		fmt.Fprint(w, `{"sessionId":"S1","quizId":"Q7","status":"waiting"}`)
	})
	mux.HandleFunc("/api/sessions/S1/status", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		n := b.statusCalls.Add(1)
		if n > b.activateAt {
			fmt.Fprint(w, `{"session":{"id":"S1","status":"active","quizId":"Q7"}}`)
			return
		}
		fmt.Fprint(w, `{"session":{"id":"S1","status":"waiting"}}`)
	})
	mux.HandleFunc("/api/quizzes/Q7", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		b.quizCalls.Add(1)
		fmt.Fprint(w, `{"quiz":{"id":"Q7","title":"Capitals","questions":[{"id":"q1","prompt":"Capital of France?","options":[{"id":"o1","text":"Paris"}]}]}}`)
	})
	mux.HandleFunc("/api/sessions/S1/submit", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		fmt.Fprint(w, `{"score":1,"totalQuestions":1}`)
	})
	return mux
}

func newService(t *testing.T, baseURL string) *app.ParticipationService {
	t.Helper()
	client := transport.NewClient(baseURL, nil, nil)
	dedup, err := app.NewDedupTracker(context.Background(), filekv.NewKV(filepath.Join(t.TempDir(), "state.json")))
	if err != nil {
		t.Fatalf("tracker: %v", err)
	}
	quizzes := app.NewQuizRepository(client, time.Minute)
	return app.NewParticipationService(client, quizzes, dedup, 20*time.Millisecond)
}

func TestParticipationEndToEnd(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{activateAt: 3}
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	service := newService(t, server.URL)

	joined, err := service.Join(ctx, "S1", "4242", "Alice")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if joined.SessionID != "S1" || joined.QuizID != "Q7" {
		t.Fatalf("unexpected join result %+v", joined)
	}

	var (
		activations atomic.Int32
		waitingSeen atomic.Int32
		result      = make(chan app.ActivationResult, 1)
	)
	stop := service.Watch(ctx, joined.SessionID, joined.QuizID, app.WatchCallbacks{
		OnSessionUpdate: func(s domain.Session) {
			if s.Status == domain.StatusWaiting {
				waitingSeen.Add(1)
			}
		},
		OnSessionActivated: func(r app.ActivationResult) {
			activations.Add(1)
			select {
			case result <- r:
			default:
			}
		},
		OnError: func(err error) { t.Errorf("unexpected error: %v", err) },
	})
	defer stop()

	select {
	case r := <-result:
		if r.Quiz == nil || r.Quiz.ID != "Q7" {
			t.Fatalf("expected Q7 payload, got %+v", r.Quiz)
		}
		if len(r.Quiz.Questions) != 1 {
			t.Fatalf("expected one question, got %d", len(r.Quiz.Questions))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("activation never fired")
	}
	if waitingSeen.Load() == 0 {
		t.Fatal("expected at least one lobby update before activation")
	}

	// Let three more active ticks arrive: still exactly one activation.
	target := backend.statusCalls.Load() + 3
	deadline := time.Now().Add(5 * time.Second)
	for backend.statusCalls.Load() < target && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if activations.Load() != 1 {
		t.Fatalf("expected exactly one activation, got %d", activations.Load())
	}
	if backend.quizCalls.Load() != 1 {
		t.Fatalf("expected one quiz-detail fetch, got %d", backend.quizCalls.Load())
	}
}

func TestSubmissionGatesReActivation(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{activateAt: 0} // active from the first poll
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	service := newService(t, server.URL)

	if _, err := service.Submit(ctx, "S1", "Q7", []domain.AnswerSubmission{{QuestionID: "q1", OptionID: "o1"}}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// The poller keeps running after a submission; a new watch over the
	// still-active session must short-circuit, not re-open the quiz.
	gated := make(chan struct{}, 1)
	stop := service.Watch(ctx, "S1", "Q7", app.WatchCallbacks{
		OnSessionActivated: func(app.ActivationResult) { t.Error("quiz re-opened after submission") },
		OnSubmissionAlreadyRecorded: func() {
			select {
			case gated <- struct{}{}:
			default:
			}
		},
		OnError: func(err error) { t.Errorf("unexpected error: %v", err) },
	})
	defer stop()

	select {
	case <-gated:
	case <-time.After(5 * time.Second):
		t.Fatal("already-submitted signal never fired")
	}
	if backend.quizCalls.Load() != 0 {
		t.Fatalf("expected no quiz-detail probe, got %d", backend.quizCalls.Load())
	}

	// A repeated submit is refused locally.
	if _, err := service.Submit(ctx, "S1", "Q7", nil); err != domain.ErrAlreadySubmitted {
		t.Fatalf("expected ErrAlreadySubmitted, got %v", err)
	}
}
