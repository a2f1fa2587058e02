package identity

import (
	"context"
	"sync"
	"time"

	id "certdedup/pkg/domain"
	"certdedup/pkg/platform/sentinel"
)

// InMemory favors clarity over performance; it backs unit tests and local
// development without a database.
type InMemory struct {
	mu      sync.RWMutex
	records map[id.SubjectID]Record
}

func NewInMemory() *InMemory {
	return &InMemory{records: make(map[id.SubjectID]Record)}
}

func (s *InMemory) Upsert(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record.DateOfBirth = DateKey(record.DateOfBirth)
	s.records[record.SubjectID] = record
	return nil
}

func (s *InMemory) FindByNormalizedIDCard(_ context.Context, value string, excludeID id.SubjectID) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if value == "" {
		return Record{}, sentinel.ErrNotFound
	}
	for _, record := range s.records {
		if record.SubjectID == excludeID {
			continue
		}
		if record.IDCardNormalized == value {
			return record, nil
		}
	}
	return Record{}, sentinel.ErrNotFound
}

func (s *InMemory) FindByComboFields(_ context.Context, name string, dob time.Time, phone string, excludeID id.SubjectID) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if name == "" || dob.IsZero() || phone == "" {
		return Record{}, sentinel.ErrNotFound
	}
	key := DateKey(dob)
	for _, record := range s.records {
		if record.SubjectID == excludeID {
			continue
		}
		if record.NameNormalized == name && record.DateOfBirth.Equal(key) && record.PhoneE164 == phone {
			return record, nil
		}
	}
	return Record{}, sentinel.ErrNotFound
}
