package domain

import (
	"strconv"
	"strings"
	"time"
)

// Alias tables for normalization. The backend has gone through several
// payload shapes; for each logical field the first present alias wins.
var (
	sessionWrapAliases   = []string{"session", "data"}
	sessionIDAliases     = []string{"id", "sessionId", "session_id", "_id"}
	quizIDAliases        = []string{"quizId", "quiz_id"}
	statusAliases        = []string{"status", "state"}
	participantsAliases  = []string{"participants", "players", "members"}
	startsAtAliases      = []string{"startsAt", "startedAt", "start_time", "startTime"}
	endsAtAliases        = []string{"endsAt", "endedAt", "end_time", "endTime"}
	pinAliases           = []string{"pin", "code", "joinCode"}
	participantIDAliases = []string{"id", "userId", "participantId", "_id"}
	nameAliases          = []string{"name", "displayName", "username"}
	emailAliases         = []string{"email", "mail"}
	quizWrapAliases      = []string{"quiz", "data"}
)

// wrapperFieldAliases marks a nested object as the real record body: any
// known field one level down means the wrapper is taken. Flat records with
// an unrelated "data" map keep their shape.
var wrapperFieldAliases = concatAliases(
	sessionIDAliases, quizIDAliases, statusAliases, participantsAliases,
	startsAtAliases, endsAtAliases, pinAliases,
	[]string{"quiz", "questions"},
)

func concatAliases(groups ...[]string) []string {
	var all []string
	for _, group := range groups {
		all = append(all, group...)
	}
	return all
}

// NormalizeSession maps an arbitrary backend record to a canonical Session.
// It never fails: unresolved fields default to zero values and StatusUnknown.
// The only nil result is for a nil input. Pure and deterministic; it runs on
// every poll tick and its output feeds transition detection.
func NormalizeSession(raw map[string]any) *Session {
	if raw == nil {
		return nil
	}
	body := unwrap(raw, sessionWrapAliases)

	s := &Session{
		ID:     firstString(body, sessionIDAliases),
		QuizID: resolveQuizID(body),
		Status: normalizeStatus(firstString(body, statusAliases)),
		PIN:    firstString(body, pinAliases),
	}
	s.StartsAt = firstTime(body, startsAtAliases)
	s.EndsAt = firstTime(body, endsAtAliases)

	if list, ok := firstValue(body, participantsAliases).([]any); ok {
		s.Participants = make([]Participant, 0, len(list))
		for _, entry := range list {
			m, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			s.Participants = append(s.Participants, Participant{
				ID:    firstString(m, participantIDAliases),
				Name:  firstString(m, nameAliases),
				Email: firstString(m, emailAliases),
			})
		}
	}
	return s
}

// NormalizeQuiz maps a raw quiz-detail payload to a Quiz, tolerating the
// wrapped `{quiz: {...}}` shape. Like NormalizeSession it never fails.
func NormalizeQuiz(raw map[string]any) *Quiz {
	if raw == nil {
		return nil
	}
	body := unwrap(raw, quizWrapAliases)

	q := &Quiz{
		ID:    firstString(body, []string{"id", "quizId", "_id"}),
		Title: firstString(body, []string{"title", "name"}),
		Raw:   raw,
	}
	list, ok := body["questions"].([]any)
	if !ok {
		return q
	}
	q.Questions = make([]Question, 0, len(list))
	for _, entry := range list {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		question := Question{
			ID:     firstString(m, []string{"id", "questionId", "_id"}),
			Prompt: firstString(m, []string{"prompt", "text", "question"}),
			Points: firstInt(m, []string{"points"}),
		}
		if question.Points == 0 {
			question.Points = 1
		}
		if opts, ok := m["options"].([]any); ok {
			for _, o := range opts {
				om, ok := o.(map[string]any)
				if !ok {
					continue
				}
				question.Options = append(question.Options, Option{
					ID:   firstString(om, []string{"id", "optionId", "_id"}),
					Text: firstString(om, []string{"text", "label"}),
				})
			}
		}
		q.Questions = append(q.Questions, question)
	}
	return q
}

// resolveQuizID probes the flat aliases first, then a quiz object nested one
// level down (either a bare id string or an object carrying one).
func resolveQuizID(body map[string]any) string {
	if id := firstString(body, quizIDAliases); id != "" {
		return id
	}
	switch quiz := body["quiz"].(type) {
	case string:
		return quiz
	case map[string]any:
		return firstString(quiz, sessionIDAliases)
	}
	return ""
}

func normalizeStatus(raw string) Status {
	if raw == "" {
		return StatusUnknown
	}
	lowered := strings.ToLower(strings.TrimSpace(raw))
	switch lowered {
	case "waiting", "lobby", "pending":
		return StatusWaiting
	case "active", "started", "running", "in_progress":
		return StatusActive
	case "ended", "finished", "closed", "complete":
		return StatusEnded
	}
	// Unknown values pass through so callers can log what the backend said.
	return Status(lowered)
}

// unwrap descends one level if the record nests its body under a known key.
func unwrap(raw map[string]any, aliases []string) map[string]any {
	for _, key := range aliases {
		inner, ok := raw[key].(map[string]any)
		if !ok {
			continue
		}
		if firstValue(inner, wrapperFieldAliases) != nil {
			return inner
		}
	}
	return raw
}

func firstValue(m map[string]any, aliases []string) any {
	for _, key := range aliases {
		if v, ok := m[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

func firstString(m map[string]any, aliases []string) string {
	switch v := firstValue(m, aliases).(type) {
	case string:
		return v
	case float64:
		// Some deployments emit numeric ids.
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

func firstInt(m map[string]any, aliases []string) int {
	if v, ok := firstValue(m, aliases).(float64); ok {
		return int(v)
	}
	return 0
}

// firstTime accepts RFC3339 strings and epoch numbers (seconds or millis).
func firstTime(m map[string]any, aliases []string) *time.Time {
	switch v := firstValue(m, aliases).(type) {
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return &t
		}
	case float64:
		sec := int64(v)
		if sec > 1e12 { // millisecond epoch
			t := time.UnixMilli(sec).UTC()
			return &t
		}
		t := time.Unix(sec, 0).UTC()
		return &t
	}
	return nil
}
