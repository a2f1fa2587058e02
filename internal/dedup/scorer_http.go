package dedup

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"certdedup/internal/adjudicate"
	"certdedup/internal/platform/config"
	dErrors "certdedup/pkg/domain-errors"
)

var tracer = otel.Tracer("certdedup/dedup")

// HTTPScorer talks to the external AI similarity service. Request bodies are
// signed with HMAC-SHA256 in the X-Signature header; the service rejects
// unsigned traffic.
type HTTPScorer struct {
	baseURL string
	secret  string
	client  *http.Client
}

// NewHTTPScorer constructs a scorer client from configuration.
func NewHTTPScorer(cfg config.Scorer) *HTTPScorer {
	return &HTTPScorer{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		secret:  cfg.Secret,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

type scoreRequestItem struct {
	ItemID        string `json:"itemId"`
	PayloadBase64 string `json:"payloadBase64,omitempty"`
	ContentHash   string `json:"docHash,omitempty"`
	Name          string `json:"studentName,omitempty"`
	DOB           string `json:"dob,omitempty"`
	Course        string `json:"course,omitempty"`
}

type scoreRequestOptions struct {
	TopK               int     `json:"topK"`
	ThresholdUnique    float64 `json:"thresholdUnique"`
	ThresholdDuplicate float64 `json:"thresholdDuplicate"`
}

type scoreRequest struct {
	Items   []scoreRequestItem  `json:"items"`
	Options scoreRequestOptions `json:"options"`
}

type scoreResponseMatch struct {
	MatchedCandidateID string  `json:"matchedCandidateId"`
	Score              float64 `json:"score"`
	SourceRef          string  `json:"sourceRef,omitempty"`
}

type scoreResponseItem struct {
	ItemID  string               `json:"itemId"`
	Matches []scoreResponseMatch `json:"matches"`
}

type scoreResponse struct {
	Results []scoreResponseItem `json:"results"`
	Meta    json.RawMessage     `json:"meta,omitempty"`
}

func (s *HTTPScorer) Score(ctx context.Context, items []CandidateItem, opts Options) (map[string][]adjudicate.Match, error) {
	ctx, span := tracer.Start(ctx, "scorer.score")
	defer span.End()
	span.SetAttributes(attribute.Int("dedup.items", len(items)))

	req := scoreRequest{
		Items: make([]scoreRequestItem, 0, len(items)),
		Options: scoreRequestOptions{
			TopK:               opts.TopK,
			ThresholdUnique:    opts.Thresholds.Unique,
			ThresholdDuplicate: opts.Thresholds.Duplicate,
		},
	}
	for _, item := range items {
		wire := scoreRequestItem{
			ItemID:      item.ItemID,
			ContentHash: item.Hash(),
			Name:        item.DeclaredName,
			Course:      item.Course,
		}
		if len(item.Payload) > 0 {
			wire.PayloadBase64 = base64.StdEncoding.EncodeToString(item.Payload)
		}
		if !item.DateOfBirth.IsZero() {
			wire.DOB = item.DateOfBirth.UTC().Format("2006-01-02")
		}
		req.Items = append(req.Items, wire)
	}

	raw, err := s.post(ctx, "/ai/dedup/check", req)
	if err != nil {
		return nil, err
	}

	var resp scoreResponse
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&resp); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "scorer returned a malformed response")
	}

	byItem := make(map[string][]adjudicate.Match, len(resp.Results))
	for _, result := range resp.Results {
		matches := make([]adjudicate.Match, 0, len(result.Matches))
		for _, m := range result.Matches {
			if m.Score < 0 || m.Score > 1 {
				return nil, dErrors.Newf(dErrors.CodeUnavailable,
					"scorer returned score %v outside [0,1] for item %s", m.Score, result.ItemID)
			}
			matches = append(matches, adjudicate.Match{
				MatchedID: m.MatchedCandidateID,
				Score:     m.Score,
				SourceRef: m.SourceRef,
			})
		}
		byItem[result.ItemID] = matches
	}

	// Fail closed: every submitted item must have been scored.
	for _, item := range items {
		if _, ok := byItem[item.ItemID]; !ok {
			return nil, dErrors.Newf(dErrors.CodeUnavailable, "scorer response is missing item %s", item.ItemID)
		}
	}

	return byItem, nil
}

// Healthy probes the scorer's health endpoint.
func (s *HTTPScorer) Healthy(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/ai/health", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "scorer unreachable")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return dErrors.Newf(dErrors.CodeUnavailable, "scorer health returned status %d", resp.StatusCode)
	}
	return nil
}

func (s *HTTPScorer) post(ctx context.Context, endpoint string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal scorer request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build scorer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signature", s.sign(payload))

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "scorer unreachable")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to read scorer response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, dErrors.Newf(dErrors.CodeUnavailable,
			"scorer returned status %d after %s", resp.StatusCode, time.Since(start).Round(time.Millisecond))
	}
	return raw, nil
}

func (s *HTTPScorer) sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(s.secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
