package audit

import (
	"context"
	"sync"

	id "certdedup/pkg/domain"
)

// InMemoryStore keeps audit events in process. It backs tests and local
// development; production uses the Kafka sink alongside it.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *InMemoryStore) ListBySubject(_ context.Context, subjectID id.SubjectID) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, event := range s.events {
		if event.SubjectID == subjectID {
			out = append(out, event)
		}
	}
	return out, nil
}
