package assessment

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// QuestionSource fetches question sets from a backing store.
type QuestionSource interface {
	LoadQuestionSet(ctx context.Context, courseID string) (QuestionSet, error)
}

// CachedSource fronts a QuestionSource with a TTL cache. Question sets are
// static for the life of a session, so staleness within the TTL is fine;
// singleflight collapses concurrent loads of the same course.
type CachedSource struct {
	source QuestionSource
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedSet
}

type cachedSet struct {
	set       QuestionSet
	expiresAt time.Time
}

func NewCachedSource(source QuestionSource, ttl time.Duration) *CachedSource {
	return &CachedSource{
		source: source,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedSet),
	}
}

func (c *CachedSource) LoadQuestionSet(ctx context.Context, courseID string) (QuestionSet, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[courseID]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.set, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(courseID, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[courseID]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.set, nil
		}
		c.mu.RUnlock()

		set, err := c.source.LoadQuestionSet(ctx, courseID)
		if err != nil {
			return QuestionSet{}, err
		}

		c.mu.Lock()
		c.cache[courseID] = cachedSet{set: set, expiresAt: now.Add(c.ttlWithJitter())}
		c.mu.Unlock()
		return set, nil
	})
	if err != nil {
		return QuestionSet{}, err
	}
	return result.(QuestionSet), nil
}

func (c *CachedSource) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

// StaticSource serves question sets from an in-memory map (tests, demos).
type StaticSource struct {
	sets map[string]QuestionSet
}

func NewStaticSource(sets map[string]QuestionSet) *StaticSource {
	return &StaticSource{sets: sets}
}

func (s *StaticSource) LoadQuestionSet(_ context.Context, courseID string) (QuestionSet, error) {
	if set, ok := s.sets[courseID]; ok {
		return set, nil
	}
	return QuestionSet{}, ErrQuizNotFound
}
