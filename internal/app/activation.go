package app

import (
	"context"
	"log"
	"sync"

	"github.com/singhvigyat/scrutiny-client/internal/domain"
)

// ActivationState is the lifecycle of one ActivationController.
type ActivationState int

const (
	Idle ActivationState = iota
	ArmedWaiting
	Activated
	Done
)

// QuizFetcher is the slice of the quiz repository the controller needs.
type QuizFetcher interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// ActivationResult is what the consumer receives when a session activates.
// Quiz is nil when the quiz-detail chain was exhausted; Session is then the
// last normalized session so the consumer always gets a signal.
type ActivationResult struct {
	Session domain.Session
	Quiz    *domain.Quiz
}

// ActivationCallbacks are the consumer hooks for one controller.
type ActivationCallbacks struct {
	OnActivated        func(ActivationResult)
	OnAlreadySubmitted func()
	OnError            func(error)
}

// ActivationController watches normalized session updates for one session
// and fires its activation side effect exactly once, on the first observed
// `active` status. One instance per session id; Done is terminal.
type ActivationController struct {
	sessionID string
	// joinedQuizID comes from the join operation and outranks any quiz id
	// embedded in polled payloads.
	joinedQuizID string
	quizzes      QuizFetcher
	dedup        *DedupTracker
	callbacks    ActivationCallbacks

	mu    sync.Mutex
	state ActivationState
}

func NewActivationController(sessionID, joinedQuizID string, quizzes QuizFetcher, dedup *DedupTracker, callbacks ActivationCallbacks) *ActivationController {
	return &ActivationController{
		sessionID:    sessionID,
		joinedQuizID: joinedQuizID,
		quizzes:      quizzes,
		dedup:        dedup,
		callbacks:    callbacks,
		state:        Idle,
	}
}

// Arm moves the controller from Idle to ArmedWaiting. Observing updates
// before Arm is a no-op.
func (c *ActivationController) Arm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Idle {
		c.state = ArmedWaiting
	}
}

// State returns the current lifecycle state.
func (c *ActivationController) State() ActivationState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Observe feeds one normalized session update to the state machine. Repeated
// `active` updates after the first are ignored; the transition guard lives
// here, not in the poller, so re-delivery is harmless.
func (c *ActivationController) Observe(ctx context.Context, session domain.Session) {
	c.mu.Lock()
	if c.state != ArmedWaiting || !session.IsActive() {
		c.mu.Unlock()
		return
	}
	c.state = Activated
	c.mu.Unlock()

	c.activate(ctx, session)

	c.mu.Lock()
	c.state = Done
	c.mu.Unlock()
}

func (c *ActivationController) activate(ctx context.Context, session domain.Session) {
	quizID := c.resolveQuizID(session)

	if c.dedup != nil && c.dedup.Has(c.sessionID, quizID) {
		log.Printf("session %s: submission already recorded, not re-opening quiz", c.sessionID)
		if c.callbacks.OnAlreadySubmitted != nil {
			c.callbacks.OnAlreadySubmitted()
		}
		return
	}

	if quizID == "" {
		if c.callbacks.OnError != nil {
			c.callbacks.OnError(domain.ErrQuizUnresolved)
		}
		return
	}

	quiz, err := c.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		// The participant must never be left without a signal: fall back to
		// the last normalized session when the quiz chain is exhausted.
		log.Printf("session %s: quiz detail fetch failed, emitting session only: %v", c.sessionID, err)
		c.callbacks.OnActivated(ActivationResult{Session: session})
		return
	}
	c.callbacks.OnActivated(ActivationResult{Session: session, Quiz: &quiz})
}

func (c *ActivationController) resolveQuizID(session domain.Session) string {
	if c.joinedQuizID != "" {
		return c.joinedQuizID
	}
	return session.QuizID
}
