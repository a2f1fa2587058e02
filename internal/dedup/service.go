package dedup

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"certdedup/internal/adjudicate"
	"certdedup/internal/audit"
	"certdedup/internal/dedup/metrics"
	"certdedup/internal/identity"
	id "certdedup/pkg/domain"
	dErrors "certdedup/pkg/domain-errors"
	"certdedup/pkg/platform/sentinel"
	"certdedup/pkg/requestcontext"
)

// persistWorkers bounds the adjudicate/persist fan-out per batch.
const persistWorkers = 8

// AuditPublisher captures structured audit events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service is the dedup orchestrator. It combines the exact-match engine (on
// identity submission) and the similarity adjudicator (on certificate
// pre-issuance) into single adjudication decisions, and persists content
// check results for audit and idempotence.
type Service struct {
	identities *identity.Service
	scorer     Scorer
	results    ResultStore
	cache      ResultCache
	defaults   Options

	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithResultCache(cache ResultCache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

// New constructs a Service. defaults supplies the adjudication options used
// when a request does not override them.
func New(identities *identity.Service, scorer Scorer, results ResultStore, defaults Options, opts ...Option) *Service {
	s := &Service{
		identities: identities,
		scorer:     scorer,
		results:    results,
		defaults:   defaults,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckIdentity runs the exact-match check for a profile save. It performs
// no writes; callers decide whether a positive verdict blocks the save.
func (s *Service) CheckIdentity(ctx context.Context, cand identity.Candidate, subjectID id.SubjectID) (identity.Outcome, error) {
	if subjectID.IsNil() {
		return identity.Outcome{}, dErrors.New(dErrors.CodeValidation, "subject id is required")
	}

	outcome, err := s.identities.FindDuplicate(ctx, cand, subjectID)
	if err != nil {
		return identity.Outcome{}, err
	}

	s.logAudit(ctx, audit.Event{
		SubjectID: subjectID,
		Action:    audit.EventIdentityChecked,
		Decision:  decisionString(outcome.Duplicate),
		Reason:    string(outcome.Reason),
	})
	return outcome, nil
}

// CheckCertificates adjudicates a batch of candidate documents before
// issuance.
//
// Items whose content hash already has a persisted result are answered from
// that result without contacting the scorer (idempotence by content hash,
// not by request). The remaining items are scored in one upstream call;
// scorer failure fails the whole batch — an unscored item is never defaulted
// to UNIQUE. Results come back in input order.
func (s *Service) CheckCertificates(ctx context.Context, subjectID id.SubjectID, courseID id.CourseID, items []CandidateItem, opts Options) ([]Result, error) {
	ctx, span := tracer.Start(ctx, "dedup.check_certificates")
	defer span.End()
	span.SetAttributes(attribute.Int("dedup.items", len(items)))

	start := time.Now()
	defer func() { s.metrics.ObserveBatch(time.Since(start)) }()

	if subjectID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "subject id is required")
	}
	if courseID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "course id is required")
	}
	if len(items) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "at least one item is required")
	}
	for i := range items {
		if err := items[i].Validate(); err != nil {
			return nil, err
		}
	}
	opts, err := opts.withDefaults(s.defaults)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(items))
	var toScore []int

	// Phase 1: replay prior results by content hash.
	for i := range items {
		prior, err := s.findPrior(ctx, subjectID, courseID, items[i].Hash())
		switch {
		case err == nil:
			results[i] = prior
			s.metrics.IncrementReplay()
		case errors.Is(err, sentinel.ErrNotFound):
			toScore = append(toScore, i)
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "result store lookup failed")
		}
	}

	// Phase 2: one scorer call for everything unseen.
	if len(toScore) > 0 {
		scored, err := s.scoreItems(ctx, subjectID, items, toScore, opts)
		if err != nil {
			return nil, err
		}

		// Phase 3: adjudicate and persist concurrently; each item writes
		// only its own slot.
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(persistWorkers)
		for _, i := range toScore {
			g.Go(func() error {
				result, err := s.adjudicateItem(gctx, subjectID, courseID, items[i], scored[items[i].ItemID], opts)
				if err != nil {
					return err
				}
				results[i] = result
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	s.logger.InfoContext(ctx, "certificate batch adjudicated",
		"request_id", requestcontext.RequestID(ctx),
		"subject_id", subjectID,
		"course_id", courseID,
		"items", len(items),
		"scored", len(toScore),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return results, nil
}

// findPrior consults the cache first, then the store. Cache errors degrade
// to a store read; only the store is authoritative.
func (s *Service) findPrior(ctx context.Context, subjectID id.SubjectID, courseID id.CourseID, contentHash string) (Result, error) {
	if s.cache != nil {
		if result, err := s.cache.Get(ctx, subjectID, courseID, contentHash); err == nil {
			return result, nil
		}
	}
	result, err := s.results.FindByHash(ctx, subjectID, courseID, contentHash)
	if err != nil {
		return Result{}, err
	}
	s.fillCache(ctx, result)
	return result, nil
}

func (s *Service) scoreItems(ctx context.Context, subjectID id.SubjectID, items []CandidateItem, indexes []int, opts Options) (map[string][]adjudicate.Match, error) {
	batch := make([]CandidateItem, 0, len(indexes))
	for _, i := range indexes {
		batch = append(batch, items[i])
	}

	scorerStart := time.Now()
	scored, err := s.scorer.Score(ctx, batch, opts)
	s.metrics.ObserveScorer(time.Since(scorerStart), err != nil)
	if err == nil {
		// An item the scorer skipped must not fall through to UNIQUE.
		for i := range batch {
			if _, ok := scored[batch[i].ItemID]; !ok {
				return nil, dErrors.New(dErrors.CodeUnavailable, "scorer returned no verdict for item "+batch[i].ItemID)
			}
		}
		return scored, nil
	}

	s.logger.ErrorContext(ctx, "similarity scoring failed",
		"request_id", requestcontext.RequestID(ctx),
		"subject_id", subjectID,
		"items", len(batch),
		"error", err,
	)
	s.logAudit(ctx, audit.Event{
		SubjectID: subjectID,
		Action:    audit.EventCertificateCheckError,
		Reason:    dErrors.MessageOf(err),
	})
	if dErrors.HasCode(err, dErrors.CodeUnavailable) {
		return nil, err
	}
	return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "similarity scoring unavailable")
}

func (s *Service) adjudicateItem(ctx context.Context, subjectID id.SubjectID, courseID id.CourseID, item CandidateItem, matches []adjudicate.Match, opts Options) (Result, error) {
	decision := adjudicate.Classify(matches, opts.Thresholds)

	result := Result{
		ID:              id.CheckID(uuid.New()),
		SubjectID:       subjectID,
		CourseID:        courseID,
		ItemID:          item.ItemID,
		ContentHash:     item.Hash(),
		Status:          decision.Status,
		SimilarityScore: decision.Score,
		MatchedWith:     decision.Matches,
		CheckedAt:       requestcontext.Now(ctx),
	}

	err := s.results.Create(ctx, result)
	switch {
	case err == nil:
		s.metrics.IncrementOutcome(string(result.Status))
	case errors.Is(err, sentinel.ErrConflict):
		// A concurrent checker persisted first; converge on its result.
		prior, readErr := s.results.FindByHash(ctx, subjectID, courseID, result.ContentHash)
		if readErr != nil {
			return Result{}, dErrors.Wrap(readErr, dErrors.CodeUnavailable, "failed to re-read conflicting result")
		}
		result = prior
	default:
		return Result{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to persist dedup result")
	}

	s.fillCache(ctx, result)
	s.logAudit(ctx, audit.Event{
		SubjectID: subjectID,
		Action:    audit.EventCertificateAdjudged,
		Decision:  string(result.Status),
		CourseID:  courseID.String(),
		ItemID:    result.ItemID,
	})
	return result, nil
}

func (s *Service) fillCache(ctx context.Context, result Result) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, result); err != nil {
		s.logger.WarnContext(ctx, "failed to cache dedup result",
			"item_id", result.ItemID,
			"error", err,
		)
	}
}

func (s *Service) logAudit(ctx context.Context, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	event.RequestID = requestcontext.RequestID(ctx)
	event.Timestamp = requestcontext.Now(ctx)
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
		)
	}
}

func decisionString(duplicate bool) string {
	if duplicate {
		return "DUPLICATE"
	}
	return "NOT_DUPLICATE"
}
