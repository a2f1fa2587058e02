package adjudicate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	thresholds := Thresholds{Unique: 0.8, Duplicate: 0.95}

	tests := []struct {
		name       string
		matches    []Match
		wantStatus Status
		wantScore  float64
	}{
		{"below unique band", []Match{{MatchedID: "a", Score: 0.70}}, StatusUnique, 0.70},
		{"review band", []Match{{MatchedID: "a", Score: 0.85}}, StatusReview, 0.85},
		{"duplicate band", []Match{{MatchedID: "a", Score: 0.97}}, StatusDuplicate, 0.97},
		{"exactly unique threshold", []Match{{MatchedID: "a", Score: 0.80}}, StatusReview, 0.80},
		{"exactly duplicate threshold", []Match{{MatchedID: "a", Score: 0.95}}, StatusDuplicate, 0.95},
		{"no matches", nil, StatusUnique, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := Classify(tt.matches, thresholds)
			assert.Equal(t, tt.wantStatus, decision.Status)
			assert.InDelta(t, tt.wantScore, decision.Score, 1e-9)
		})
	}
}

func TestClassifyUsesBestScore(t *testing.T) {
	decision := Classify([]Match{
		{MatchedID: "low", Score: 0.40},
		{MatchedID: "high", Score: 0.96},
		{MatchedID: "mid", Score: 0.85},
	}, Thresholds{Unique: 0.8, Duplicate: 0.95})

	assert.Equal(t, StatusDuplicate, decision.Status)
	assert.InDelta(t, 0.96, decision.Score, 1e-9)

	require.Len(t, decision.Matches, 3)
	assert.Equal(t, "high", decision.Matches[0].MatchedID)
	assert.Equal(t, "mid", decision.Matches[1].MatchedID)
	assert.Equal(t, "low", decision.Matches[2].MatchedID)
}

func TestClassifyDoesNotMutateInput(t *testing.T) {
	in := []Match{{MatchedID: "a", Score: 0.1}, {MatchedID: "b", Score: 0.9}}
	Classify(in, DefaultThresholds())
	assert.Equal(t, "a", in[0].MatchedID)
	assert.Equal(t, "b", in[1].MatchedID)
}

func TestThresholdsValidate(t *testing.T) {
	assert.NoError(t, DefaultThresholds().Validate())
	assert.NoError(t, Thresholds{Unique: 0.5, Duplicate: 0.5}.Validate())
	assert.Error(t, Thresholds{Unique: 0.9, Duplicate: 0.8}.Validate())
	assert.Error(t, Thresholds{Unique: -0.1, Duplicate: 0.8}.Validate())
	assert.Error(t, Thresholds{Unique: 0.5, Duplicate: 1.1}.Validate())
}
