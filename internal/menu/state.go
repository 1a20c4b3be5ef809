package menu

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// State names a step of an orchestration run.
type State string

const (
	StateCheckCache         State = "CHECK_CACHE"
	StateHitFresh           State = "HIT_FRESH"
	StateHitStaleOrMiss     State = "HIT_STALE_OR_MISS"
	StateCheckNewestReview  State = "CHECK_NEWEST_REVIEW"
	StateNoNewItems         State = "NO_NEW_ITEMS"
	StateCandidateNewItems  State = "CANDIDATE_NEW_ITEMS"
	StateFilterNovelty      State = "FILTER_NOVELTY"
	StateIncrementalExtract State = "INCREMENTAL_EXTRACT"
	StateMergeAndPersist    State = "MERGE_AND_PERSIST"
	StateFullExtract        State = "FULL_EXTRACT"
	StatePersist            State = "PERSIST"
	StateTemplate           State = "TEMPLATE"
	StateGenericFallback    State = "GENERIC_FALLBACK"
	StateReturnCached       State = "RETURN_CACHED"
	StateReturn             State = "RETURN"
)

// Result labels for a finished run.
const (
	ResultCached          = "cached"
	ResultAIInitial       = "ai-initial"
	ResultAIIncremental   = "ai-incremental"
	ResultTemplate        = "template"
	ResultGenericFallback = "generic-fallback"
)

// Outcome describes how a menu was produced.
type Outcome struct {
	RequestID string
	Trail     []State
	Result    string
	Persisted bool
	Shared    bool  // served from a concurrent identical request
	Cause     error // first failure that moved the run down the ladder
}

// TrailString renders the trail as "A>B>C".
func (o Outcome) TrailString() string {
	parts := make([]string, len(o.Trail))
	for i, s := range o.Trail {
		parts[i] = string(s)
	}
	return strings.Join(parts, ">")
}

type requestIDKey struct{}

// WithRequestID attaches a request id to ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request id on ctx, or a new one.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}
