package handler

import "certdedup/internal/dedup"

type identityCheckResponse struct {
	Duplicate      bool   `json:"duplicate"`
	Reason         string `json:"reason"`
	MatchedSubject string `json:"matchedSubject,omitempty"`
}

type checkMeta struct {
	Processed          int     `json:"processed"`
	DurationMs         int64   `json:"durationMs"`
	TopK               int     `json:"topK"`
	ThresholdUnique    float64 `json:"thresholdUnique"`
	ThresholdDuplicate float64 `json:"thresholdDuplicate"`
	RequestID          string  `json:"requestId,omitempty"`
}

type certificateCheckResponse struct {
	Results []dedup.Result `json:"results"`
	Meta    checkMeta      `json:"meta"`
}
