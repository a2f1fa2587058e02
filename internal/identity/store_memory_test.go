package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	id "certdedup/pkg/domain"
	"certdedup/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) TestUpsertSupersedes() {
	subjectID := id.SubjectID(uuid.New())
	s.Require().NoError(s.store.Upsert(s.ctx, Record{SubjectID: subjectID, IDCardNormalized: "OLD111"}))
	s.Require().NoError(s.store.Upsert(s.ctx, Record{SubjectID: subjectID, IDCardNormalized: "NEW222"}))

	_, err := s.store.FindByNormalizedIDCard(s.ctx, "OLD111", id.SubjectID{})
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	found, err := s.store.FindByNormalizedIDCard(s.ctx, "NEW222", id.SubjectID{})
	s.Require().NoError(err)
	s.Equal(subjectID, found.SubjectID)
}

func (s *MemoryStoreSuite) TestEmptyIDCardNeverMatches() {
	s.Require().NoError(s.store.Upsert(s.ctx, Record{SubjectID: id.SubjectID(uuid.New())}))

	_, err := s.store.FindByNormalizedIDCard(s.ctx, "", id.SubjectID{})
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestComboRequiresAllThreeFields() {
	s.Require().NoError(s.store.Upsert(s.ctx, Record{
		SubjectID:      id.SubjectID(uuid.New()),
		NameNormalized: "nguyen van a",
		DateOfBirth:    time.Date(1999, time.March, 14, 0, 0, 0, 0, time.UTC),
		PhoneE164:      "+84912345678",
	}))

	_, err := s.store.FindByComboFields(s.ctx, "nguyen van a", time.Time{}, "+84912345678", id.SubjectID{})
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.FindByComboFields(s.ctx, "", time.Date(1999, time.March, 14, 0, 0, 0, 0, time.UTC), "+84912345678", id.SubjectID{})
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestComboComparesAtDateGranularity() {
	subjectID := id.SubjectID(uuid.New())
	s.Require().NoError(s.store.Upsert(s.ctx, Record{
		SubjectID:      subjectID,
		NameNormalized: "nguyen van a",
		DateOfBirth:    time.Date(1999, time.March, 14, 10, 30, 0, 0, time.UTC),
		PhoneE164:      "+84912345678",
	}))

	found, err := s.store.FindByComboFields(s.ctx,
		"nguyen van a",
		time.Date(1999, time.March, 14, 2, 0, 0, 0, time.UTC),
		"+84912345678",
		id.SubjectID{},
	)
	s.Require().NoError(err)
	s.Equal(subjectID, found.SubjectID)
}
