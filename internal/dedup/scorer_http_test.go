package dedup

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certdedup/internal/adjudicate"
	"certdedup/internal/platform/config"
	dErrors "certdedup/pkg/domain-errors"
)

const testSecret = "shared-test-secret"

func newTestScorer(t *testing.T, handler http.HandlerFunc) *HTTPScorer {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewHTTPScorer(config.Scorer{
		BaseURL: server.URL,
		Secret:  testSecret,
		Timeout: 5 * time.Second,
	})
}

func scoreOpts() Options {
	return Options{TopK: 3, Thresholds: adjudicate.DefaultThresholds()}
}

func TestScoreSignsAndEncodesRequest(t *testing.T) {
	dob := time.Date(2001, 4, 12, 23, 30, 0, 0, time.FixedZone("ICT", 7*3600))
	items := []CandidateItem{{
		ItemID:       "item-1",
		Payload:      []byte("graduation thesis"),
		DeclaredName: "nguyen van a",
		DateOfBirth:  dob,
		Course:       "CS101",
	}}

	scorer := newTestScorer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ai/dedup/check", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		mac := hmac.New(sha256.New, []byte(testSecret))
		mac.Write(body)
		assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), r.Header.Get("X-Signature"))

		var req scoreRequest
		require.NoError(t, json.Unmarshal(body, &req))
		require.Len(t, req.Items, 1)
		assert.Equal(t, "item-1", req.Items[0].ItemID)
		assert.Equal(t, items[0].Hash(), req.Items[0].ContentHash)
		assert.NotEmpty(t, req.Items[0].PayloadBase64)
		assert.Equal(t, "2001-04-12", req.Items[0].DOB)
		assert.Equal(t, 3, req.Options.TopK)
		assert.InDelta(t, 0.80, req.Options.ThresholdUnique, 1e-9)
		assert.InDelta(t, 0.95, req.Options.ThresholdDuplicate, 1e-9)

		json.NewEncoder(w).Encode(scoreResponse{
			Results: []scoreResponseItem{{
				ItemID: "item-1",
				Matches: []scoreResponseMatch{
					{MatchedCandidateID: "prior-5", Score: 0.91, SourceRef: "cert/prior-5"},
				},
			}},
			Meta: json.RawMessage(`{"processed":1,"durationMs":12}`),
		})
	})

	scored, err := scorer.Score(context.Background(), items, scoreOpts())
	require.NoError(t, err)
	require.Len(t, scored["item-1"], 1)
	assert.Equal(t, "prior-5", scored["item-1"][0].MatchedID)
	assert.InDelta(t, 0.91, scored["item-1"][0].Score, 1e-9)
	assert.Equal(t, "cert/prior-5", scored["item-1"][0].SourceRef)
}

func TestScoreRejectsOutOfRangeScore(t *testing.T) {
	scorer := newTestScorer(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(scoreResponse{
			Results: []scoreResponseItem{{
				ItemID:  "item-1",
				Matches: []scoreResponseMatch{{MatchedCandidateID: "prior-1", Score: 1.7}},
			}},
		})
	})

	_, err := scorer.Score(context.Background(), []CandidateItem{{ItemID: "item-1", Payload: []byte("x")}}, scoreOpts())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func TestScoreMissingItemFailsClosed(t *testing.T) {
	scorer := newTestScorer(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(scoreResponse{
			Results: []scoreResponseItem{{ItemID: "item-1", Matches: nil}},
		})
	})

	items := []CandidateItem{
		{ItemID: "item-1", Payload: []byte("a")},
		{ItemID: "item-2", Payload: []byte("b")},
	}
	_, err := scorer.Score(context.Background(), items, scoreOpts())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	assert.Contains(t, err.Error(), "item-2")
}

func TestScoreUpstreamFailure(t *testing.T) {
	t.Run("http 500", func(t *testing.T) {
		scorer := newTestScorer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		_, err := scorer.Score(context.Background(), []CandidateItem{{ItemID: "i", Payload: []byte("x")}}, scoreOpts())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	})

	t.Run("undecodable body", func(t *testing.T) {
		scorer := newTestScorer(t, func(w http.ResponseWriter, _ *http.Request) {
			io.WriteString(w, "not json")
		})
		_, err := scorer.Score(context.Background(), []CandidateItem{{ItemID: "i", Payload: []byte("x")}}, scoreOpts())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	})

	t.Run("unreachable", func(t *testing.T) {
		scorer := NewHTTPScorer(config.Scorer{
			BaseURL: "http://127.0.0.1:1",
			Secret:  testSecret,
			Timeout: time.Second,
		})
		_, err := scorer.Score(context.Background(), []CandidateItem{{ItemID: "i", Payload: []byte("x")}}, scoreOpts())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	})
}

func TestHealthy(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		scorer := newTestScorer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/ai/health", r.URL.Path)
			w.WriteHeader(http.StatusOK)
		})
		assert.NoError(t, scorer.Healthy(context.Background()))
	})

	t.Run("degraded", func(t *testing.T) {
		scorer := newTestScorer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
		err := scorer.Healthy(context.Background())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	})
}
