package app

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/singhvigyat/scrutiny-client/internal/domain"
)

// DetailFetcher is the slice of the transport client the repository needs.
type DetailFetcher interface {
	QuizDetail(ctx context.Context, quizID string) (map[string]any, error)
}

// QuizRepository caches normalized quiz payloads with a TTL to avoid
// re-walking the detail candidate chain on every activation or render.
type QuizRepository struct {
	fetcher DetailFetcher
	ttl     time.Duration
	clock   func() time.Time
	sf      singleflight.Group
	rnd     *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedQuiz
}

type cachedQuiz struct {
	quiz      domain.Quiz
	expiresAt time.Time
}

func NewQuizRepository(fetcher DetailFetcher, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		fetcher: fetcher,
		ttl:     ttl,
		clock:   time.Now,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:   make(map[string]cachedQuiz),
	}
}

// GetQuiz returns the quiz from cache or fetches it through the candidate
// chain, collapsing concurrent fetches for the same id.
func (r *QuizRepository) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[quizID]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.quiz, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(quizID, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[quizID]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.quiz, nil
		}
		r.mu.RUnlock()

		payload, err := r.fetcher.QuizDetail(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}
		quiz := domain.NormalizeQuiz(payload)
		if quiz == nil {
			return domain.Quiz{}, domain.ErrQuizNotFound
		}
		if quiz.ID == "" {
			quiz.ID = quizID
		}

		r.mu.Lock()
		r.cache[quizID] = cachedQuiz{
			quiz:      *quiz,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return *quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
