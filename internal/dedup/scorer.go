package dedup

//go:generate mockgen -source=scorer.go -destination=mocks/mocks.go -package=mocks Scorer

import (
	"context"

	"certdedup/internal/adjudicate"
)

// Scorer computes pairwise similarity between submitted items and the
// previously issued corpus. It is an external black box; this core only
// consumes its scores.
//
// Score returns, for every submitted item, the top-K matches sorted
// descending by score. An item missing from the response, or a score outside
// [0,1], is a contract violation and must surface as an error — never as an
// empty match list, because an unscored item silently treated as unique would
// defeat the anti-fraud purpose.
type Scorer interface {
	Score(ctx context.Context, items []CandidateItem, opts Options) (map[string][]adjudicate.Match, error)

	// Healthy probes the scorer; used by the health endpoint.
	Healthy(ctx context.Context) error
}
