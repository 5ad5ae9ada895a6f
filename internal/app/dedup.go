package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// KV is the only persistence primitive the core requires. Get returns ""
// when the key is absent. Implementations live in internal/infra.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// dedupStateKey is the single KV slot holding the serialized dedup set.
const dedupStateKey = "scrutiny:submitted"

// DedupTracker is a durable, monotonic set of consumed session/quiz ids.
// Polling continues after a submission is recorded, so without this gate a
// still-active session would immediately re-trigger activation and re-open a
// quiz the participant already completed. Keys are namespaced (`s:` vs `q:`)
// so a session id and a quiz id never collide. Membership only grows: keys
// are never removed within the tracker's lifetime.
type DedupTracker struct {
	kv KV

	mu   sync.Mutex
	seen map[string]struct{}
}

// NewDedupTracker loads the persisted set once and serves membership checks
// from memory afterwards.
func NewDedupTracker(ctx context.Context, kv KV) (*DedupTracker, error) {
	t := &DedupTracker{kv: kv, seen: make(map[string]struct{})}

	raw, err := kv.Get(ctx, dedupStateKey)
	if err != nil {
		return nil, fmt.Errorf("load dedup state: %w", err)
	}
	if raw != "" {
		var keys []string
		if err := json.Unmarshal([]byte(raw), &keys); err != nil {
			return nil, fmt.Errorf("decode dedup state: %w", err)
		}
		for _, key := range keys {
			t.seen[key] = struct{}{}
		}
	}
	return t, nil
}

// Has reports whether either id was already consumed. Empty ids never match.
func (t *DedupTracker) Has(sessionID, quizID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if sessionID != "" {
		if _, ok := t.seen[sessionKey(sessionID)]; ok {
			return true
		}
	}
	if quizID != "" {
		if _, ok := t.seen[quizKey(quizID)]; ok {
			return true
		}
	}
	return false
}

// Add records both ids (either may be empty) and writes the full set back to
// the store. The mutex serializes concurrent adds from multiple sessions so
// no entry is lost to a lost-update race.
func (t *DedupTracker) Add(ctx context.Context, sessionID, quizID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if sessionID != "" {
		t.seen[sessionKey(sessionID)] = struct{}{}
	}
	if quizID != "" {
		t.seen[quizKey(quizID)] = struct{}{}
	}

	keys := make([]string, 0, len(t.seen))
	for key := range t.seen {
		keys = append(keys, key)
	}
	encoded, err := json.Marshal(keys)
	if err != nil {
		return err
	}
	if err := t.kv.Set(ctx, dedupStateKey, string(encoded)); err != nil {
		return fmt.Errorf("persist dedup state: %w", err)
	}
	return nil
}

func sessionKey(id string) string { return "s:" + id }
func quizKey(id string) string    { return "q:" + id }
