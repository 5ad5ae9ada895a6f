package domain

import "errors"

var (
	// ErrSessionNotFound indicates the session resource does not exist on any
	// known endpoint.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrNoCandidateSucceeded is returned when every endpoint in a fallback
	// chain has been tried and none yielded a parseable success response.
	ErrNoCandidateSucceeded = errors.New("no endpoint candidate succeeded")
	// ErrQuizUnresolved is returned when a session activates but no quiz id
	// could be determined from either the join result or polled payloads.
	ErrQuizUnresolved = errors.New("quiz not ready yet")
	// ErrAlreadySubmitted indicates the session/quiz pair was consumed by an
	// earlier submission and must not be re-entered.
	ErrAlreadySubmitted = errors.New("submission already recorded")
)
