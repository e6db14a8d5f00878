package assessment

import (
	"context"
	"sync"
)

// ScoreStore abstracts where ScoreRecords live (SQL, in-memory for tests).
type ScoreStore interface {
	Get(ctx context.Context, userID, courseID string) (ScoreRecord, bool, error)
	Upsert(ctx context.Context, rec ScoreRecord) error
}

// MemoryScoreStore is an in-memory ScoreStore for tests and demos.
type MemoryScoreStore struct {
	mu   sync.RWMutex
	recs map[string]ScoreRecord

	// FailUpserts makes every write fail; used to exercise the
	// best-effort persistence path.
	FailUpserts error
}

func NewMemoryScoreStore() *MemoryScoreStore {
	return &MemoryScoreStore{recs: map[string]ScoreRecord{}}
}

func (m *MemoryScoreStore) Get(_ context.Context, userID, courseID string) (ScoreRecord, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.recs[userID+"/"+courseID]
	return rec, ok, nil
}

func (m *MemoryScoreStore) Upsert(_ context.Context, rec ScoreRecord) error {
	if m.FailUpserts != nil {
		return m.FailUpserts
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs[rec.UserID+"/"+rec.CourseID] = rec
	return nil
}
