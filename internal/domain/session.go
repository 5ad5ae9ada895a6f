package domain

import (
	"fmt"
	"time"
)

// Status is the lifecycle phase of a quiz session as reported by the backend.
// Unknown strings are preserved (lower-cased) so callers can log them, but
// only the canonical values below drive state transitions.
type Status string

const (
	StatusUnknown Status = "unknown"
	StatusWaiting Status = "waiting"
	StatusActive  Status = "active"
	StatusEnded   Status = "ended"
)

// Participant is one member of a session's lobby.
type Participant struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Key returns a stable-enough identity for the participant: the backend id
// when present, else the positional index. List order is not guaranteed
// stable across polls, so positional keys are only valid within one snapshot.
func (p Participant) Key(index int) string {
	if p.ID != "" {
		return p.ID
	}
	return fmt.Sprintf("#%d", index)
}

// Session is the canonical, normalized view of one quiz-delivery instance.
// A fresh value is built on every poll tick; it is never mutated in place.
type Session struct {
	ID           string        `json:"id"`
	QuizID       string        `json:"quizId,omitempty"`
	Status       Status        `json:"status"`
	Participants []Participant `json:"participants,omitempty"`
	StartsAt     *time.Time    `json:"startsAt,omitempty"`
	EndsAt       *time.Time    `json:"endsAt,omitempty"`
	PIN          string        `json:"pin,omitempty"`
}

// IsActive reports whether the session has left the lobby and is running.
func (s Session) IsActive() bool {
	return s.Status == StatusActive
}
