package dedup

import (
	"context"
	"sync"

	id "certdedup/pkg/domain"
	"certdedup/pkg/platform/sentinel"
)

type resultKey struct {
	subjectID   id.SubjectID
	courseID    id.CourseID
	contentHash string
}

// InMemoryResultStore favors clarity over performance; it backs unit tests
// and local development without a database.
type InMemoryResultStore struct {
	mu      sync.RWMutex
	results map[resultKey]Result
}

func NewInMemoryResultStore() *InMemoryResultStore {
	return &InMemoryResultStore{results: make(map[resultKey]Result)}
}

func (s *InMemoryResultStore) Create(_ context.Context, result Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := resultKey{result.SubjectID, result.CourseID, result.ContentHash}
	if _, exists := s.results[key]; exists {
		return sentinel.ErrConflict
	}
	s.results[key] = result
	return nil
}

func (s *InMemoryResultStore) FindByHash(_ context.Context, subjectID id.SubjectID, courseID id.CourseID, contentHash string) (Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if result, ok := s.results[resultKey{subjectID, courseID, contentHash}]; ok {
		return result, nil
	}
	return Result{}, sentinel.ErrNotFound
}
