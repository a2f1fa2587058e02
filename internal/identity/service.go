package identity

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"certdedup/internal/identity/metrics"
	"certdedup/internal/normalize"
	id "certdedup/pkg/domain"
	dErrors "certdedup/pkg/domain-errors"
	"certdedup/pkg/platform/sentinel"
)

// Service is the exact-match engine: it normalizes a candidate's identity
// fields and looks for collisions with other subjects in the store.
type Service struct {
	store       Store
	phoneRegion string
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service. phoneRegion is the default region for parsing
// phone numbers without a country prefix.
func New(store Store, phoneRegion string, opts ...Option) *Service {
	s := &Service{store: store, phoneRegion: phoneRegion, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FindDuplicate checks cand against every other subject, in strict priority
// order:
//
//  1. If the normalized id card is non-empty, only the id-card collision
//     check runs; a non-colliding id card does NOT fall through to the
//     combo check.
//  2. Otherwise, when normalized name, date of birth, and normalized phone
//     are all present, the exact triple is checked.
//  3. Otherwise the candidate is not a duplicate.
//
// Store failures propagate as transient errors, never as a negative verdict.
func (s *Service) FindDuplicate(ctx context.Context, cand Candidate, excludeID id.SubjectID) (Outcome, error) {
	if idCard := normalize.IDCard(cand.IDCard); idCard != "" {
		start := time.Now()
		match, err := s.store.FindByNormalizedIDCard(ctx, idCard, excludeID)
		s.metrics.ObserveLookup("id_card", time.Since(start))
		switch {
		case err == nil:
			s.logger.InfoContext(ctx, "identity duplicate detected",
				"reason", ReasonIDCardMatch,
				"subject_id", excludeID,
			)
			s.metrics.IncrementOutcome(string(ReasonIDCardMatch))
			return Outcome{Duplicate: true, Reason: ReasonIDCardMatch, MatchedSubject: match.SubjectID}, nil
		case errors.Is(err, sentinel.ErrNotFound):
			s.metrics.IncrementOutcome(string(ReasonNone))
			return Outcome{Reason: ReasonNone}, nil
		default:
			return Outcome{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "identity store lookup failed")
		}
	}

	name := normalize.Name(cand.Name)
	phone := normalize.ToE164(cand.Phone, s.phoneRegion)
	dob := DateKey(cand.DateOfBirth)

	if name != "" && phone != "" && !dob.IsZero() {
		start := time.Now()
		match, err := s.store.FindByComboFields(ctx, name, dob, phone, excludeID)
		s.metrics.ObserveLookup("combo", time.Since(start))
		switch {
		case err == nil:
			s.logger.InfoContext(ctx, "identity duplicate detected",
				"reason", ReasonNameDOBPhone,
				"subject_id", excludeID,
			)
			s.metrics.IncrementOutcome(string(ReasonNameDOBPhone))
			return Outcome{Duplicate: true, Reason: ReasonNameDOBPhone, MatchedSubject: match.SubjectID}, nil
		case errors.Is(err, sentinel.ErrNotFound):
			// fall through to the not-duplicate verdict
		default:
			return Outcome{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "identity store lookup failed")
		}
	}

	s.metrics.IncrementOutcome(string(ReasonNone))
	return Outcome{Reason: ReasonNone}, nil
}

// SaveProfile normalizes and persists a subject's identity fields. This is
// the profile-update path; it performs no duplicate check itself so callers
// can decide whether a positive FindDuplicate verdict blocks the save.
func (s *Service) SaveProfile(ctx context.Context, subjectID id.SubjectID, cand Candidate, now time.Time) error {
	if subjectID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "subject id is required")
	}
	record := Record{
		SubjectID:        subjectID,
		IDCardNormalized: normalize.IDCard(cand.IDCard),
		NameNormalized:   normalize.Name(cand.Name),
		DateOfBirth:      DateKey(cand.DateOfBirth),
		PhoneE164:        normalize.ToE164(cand.Phone, s.phoneRegion),
		UpdatedAt:        now,
	}
	if err := s.store.Upsert(ctx, record); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "identity store write failed")
	}
	return nil
}
