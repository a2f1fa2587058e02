// Package handler exposes the identity-check and certificate dedup-check
// endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"certdedup/internal/dedup"
	"certdedup/internal/identity"
	"certdedup/internal/platform/middleware"
	id "certdedup/pkg/domain"
	dErrors "certdedup/pkg/domain-errors"
	"certdedup/pkg/platform/httputil"
	"certdedup/pkg/requestcontext"
)

// Service is the orchestrator surface the handler depends on.
type Service interface {
	CheckIdentity(ctx context.Context, cand identity.Candidate, subjectID id.SubjectID) (identity.Outcome, error)
	CheckCertificates(ctx context.Context, subjectID id.SubjectID, courseID id.CourseID, items []dedup.CandidateItem, opts dedup.Options) ([]dedup.Result, error)
}

// ProfileService persists identity profiles.
type ProfileService interface {
	SaveProfile(ctx context.Context, subjectID id.SubjectID, cand identity.Candidate, now time.Time) error
}

type Handler struct {
	logger   *slog.Logger
	service  Service
	profiles ProfileService
	defaults dedup.Options
}

// New creates a Handler. defaults must match the options the service falls
// back to so the response meta reports the thresholds actually applied.
func New(service Service, profiles ProfileService, defaults dedup.Options, logger *slog.Logger) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		profiles: profiles,
		defaults: defaults,
	}
}

// Register mounts the routes with the shared middleware chain.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RequestTime)
	router.Use(middleware.Subject)
	router.Post("/identity/check", h.handleIdentityCheck)
	router.Put("/identity/profile", h.handleSaveProfile)
	router.Post("/certificates/dedup-check", h.handleCertificateCheck)

	r.Mount("/", router)
}

func (h *Handler) handleIdentityCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	subjectID, ok := h.requireSubject(w, ctx, requestID)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[identityCheckRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	outcome, err := h.service.CheckIdentity(ctx, req.candidate(), subjectID)
	if err != nil {
		h.writeServiceError(w, ctx, requestID, "identity check failed", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, identityCheckResponse{
		Duplicate:      outcome.Duplicate,
		Reason:         string(outcome.Reason),
		MatchedSubject: subjectString(outcome.MatchedSubject),
	})
}

func (h *Handler) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	subjectID, ok := h.requireSubject(w, ctx, requestID)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[identityCheckRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.profiles.SaveProfile(ctx, subjectID, req.candidate(), requestcontext.Now(ctx)); err != nil {
		h.writeServiceError(w, ctx, requestID, "profile save failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCertificateCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	subjectID, ok := h.requireSubject(w, ctx, requestID)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[certificateCheckRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	opts := req.options(h.defaults)
	start := time.Now()
	results, err := h.service.CheckCertificates(ctx, subjectID, req.courseID, req.candidateItems(), opts)
	if err != nil {
		h.writeServiceError(w, ctx, requestID, "certificate dedup check failed", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, certificateCheckResponse{
		Results: results,
		Meta: checkMeta{
			Processed:          len(results),
			DurationMs:         time.Since(start).Milliseconds(),
			TopK:               opts.TopK,
			ThresholdUnique:    opts.Thresholds.Unique,
			ThresholdDuplicate: opts.Thresholds.Duplicate,
			RequestID:          requestID,
		},
	})
}

func (h *Handler) requireSubject(w http.ResponseWriter, ctx context.Context, requestID string) (id.SubjectID, bool) {
	subjectID := requestcontext.SubjectID(ctx)
	if subjectID.IsNil() {
		h.logger.WarnContext(ctx, "request without subject", "request_id", requestID)
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "subject identity is required"))
		return id.SubjectID{}, false
	}
	return subjectID, true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, ctx context.Context, requestID, msg string, err error) {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeValidation, dErrors.CodeBadRequest:
		h.logger.WarnContext(ctx, msg, "request_id", requestID, "error", err)
	default:
		h.logger.ErrorContext(ctx, msg, "request_id", requestID, "error", err)
	}
	httputil.WriteError(w, err)
}

func subjectString(subjectID id.SubjectID) string {
	if subjectID.IsNil() {
		return ""
	}
	return subjectID.String()
}
