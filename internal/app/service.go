package app

import (
	"context"
	"time"

	"github.com/singhvigyat/scrutiny-client/internal/domain"
)

// Backend is everything the participation flow needs from the transport
// layer.
type Backend interface {
	StatusFetcher
	Join(ctx context.Context, sessionID, pin, displayName string) (domain.JoinResult, error)
	SubmitAnswers(ctx context.Context, sessionID string, answers []domain.AnswerSubmission) (domain.SubmitResult, error)
}

// WatchCallbacks are the consumer hooks for one participation flow. All
// callbacks for one session id run on one logical timeline.
type WatchCallbacks struct {
	OnSessionUpdate             func(domain.Session)
	OnSessionActivated          func(ActivationResult)
	OnSubmissionAlreadyRecorded func()
	OnError                     func(error)
}

// ParticipationService wires join, polling, activation, and submission
// together for consumers. One instance serves any number of concurrent
// sessions; the dedup tracker is shared across all of them.
type ParticipationService struct {
	backend  Backend
	quizzes  QuizFetcher
	dedup    *DedupTracker
	interval time.Duration
}

func NewParticipationService(backend Backend, quizzes QuizFetcher, dedup *DedupTracker, interval time.Duration) *ParticipationService {
	return &ParticipationService{
		backend:  backend,
		quizzes:  quizzes,
		dedup:    dedup,
		interval: interval,
	}
}

// Join enters the session and returns the authoritative (session, quiz)
// pair for this participant.
func (s *ParticipationService) Join(ctx context.Context, sessionID, pin, displayName string) (domain.JoinResult, error) {
	return s.backend.Join(ctx, sessionID, pin, displayName)
}

// Watch starts polling sessionID and drives a fresh activation controller
// over the updates. quizID is the join-supplied id and may be empty. The
// returned stop function is synchronous: after it returns no callback fires.
// A controller is built per Watch call; re-watching a restarted session is
// the caller's (product-level) decision.
func (s *ParticipationService) Watch(ctx context.Context, sessionID, quizID string, callbacks WatchCallbacks) (stop func()) {
	controller := NewActivationController(sessionID, quizID, s.quizzes, s.dedup, ActivationCallbacks{
		OnActivated:        callbacks.OnSessionActivated,
		OnAlreadySubmitted: callbacks.OnSubmissionAlreadyRecorded,
		OnError:            callbacks.OnError,
	})
	controller.Arm()

	poller := NewPoller(s.backend, s.interval)
	return poller.Start(sessionID,
		func(session domain.Session) {
			if callbacks.OnSessionUpdate != nil {
				callbacks.OnSessionUpdate(session)
			}
			controller.Observe(ctx, session)
		},
		func(err error) {
			if callbacks.OnError != nil {
				callbacks.OnError(err)
			}
		},
	)
}

// Submit posts the participant's answers and, on success, records both
// dedup keys so the still-running poller cannot re-open the quiz.
func (s *ParticipationService) Submit(ctx context.Context, sessionID, quizID string, answers []domain.AnswerSubmission) (domain.SubmitResult, error) {
	if s.dedup != nil && s.dedup.Has(sessionID, quizID) {
		return domain.SubmitResult{}, domain.ErrAlreadySubmitted
	}
	result, err := s.backend.SubmitAnswers(ctx, sessionID, answers)
	if err != nil {
		return domain.SubmitResult{}, err
	}
	if s.dedup != nil {
		if err := s.dedup.Add(ctx, sessionID, quizID); err != nil {
			return result, err
		}
	}
	return result, nil
}
