// Package menu runs the per-request menu state machine: cache check,
// incremental refresh from the newest review, full extraction on a miss,
// and the template and generic fallbacks.
package menu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/rcliao/menu-cache/internal/fallback"
	"github.com/rcliao/menu-cache/internal/model"
	"github.com/rcliao/menu-cache/internal/places"
	"github.com/rcliao/menu-cache/internal/store"
)

// Extractor turns review text into menu items.
type Extractor interface {
	Available() bool
	ExtractItems(ctx context.Context, reviewTexts []string, name string, types []string) (model.Menu, error)
	ExtractItemsFromSingle(ctx context.Context, reviewText, name string, types []string) (model.Menu, error)
}

// NoveltyFilter keeps the candidates that are not already on a menu.
type NoveltyFilter interface {
	FilterNovel(ctx context.Context, candidates model.Menu, existing []string) model.Menu
}

// Config tunes the orchestrator.
type Config struct {
	// InitialBatch is how many of the newest reviews a full extraction reads.
	// The incremental pass reads the ones after the newest up to this bound.
	InitialBatch int
	// PersistTemplates caches template menus with template provenance.
	PersistTemplates bool
	// RunTimeout bounds one run. Zero means no bound beyond the
	// per-provider timeouts.
	RunTimeout time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{InitialBatch: 5, RunTimeout: time.Minute}
}

// Orchestrator produces a menu for a restaurant id. It never fails: every
// error degrades to a template or the generic menu.
type Orchestrator struct {
	cache     *store.Cache
	places    places.Source
	extractor Extractor
	novelty   NoveltyFilter
	cfg       Config
	logger    *slog.Logger
	metrics   *Metrics
	group     singleflight.Group
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithMetrics enables metrics.
func WithMetrics(m *Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// New creates an orchestrator.
func New(cache *store.Cache, source places.Source, extractor Extractor, filter NoveltyFilter, cfg Config, opts ...Option) *Orchestrator {
	if cfg.InitialBatch <= 0 {
		cfg.InitialBatch = DefaultConfig().InitialBatch
	}
	o := &Orchestrator{
		cache:     cache,
		places:    source,
		extractor: extractor,
		novelty:   filter,
		cfg:       cfg,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type flightResult struct {
	rec *model.CachedMenuRecord
	out Outcome
}

// Menu returns the menu for restaurantID. Concurrent calls for the same id
// share one run, which ignores any one caller's cancellation.
func (o *Orchestrator) Menu(ctx context.Context, restaurantID string) (*model.CachedMenuRecord, Outcome) {
	requestID := RequestID(ctx)
	runCtx := WithRequestID(context.WithoutCancel(ctx), requestID)

	v, _, shared := o.group.Do(restaurantID, func() (interface{}, error) {
		ctx := runCtx
		if o.cfg.RunTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, o.cfg.RunTimeout)
			defer cancel()
		}
		rec, out := o.run(ctx, restaurantID)
		return flightResult{rec: rec, out: out}, nil
	})
	res := v.(flightResult)
	out := res.out
	if shared {
		out.Shared = true
		out.RequestID = requestID
	}
	return res.rec.Clone(), out
}

// run executes one state machine pass.
func (o *Orchestrator) run(ctx context.Context, id string) (rec *model.CachedMenuRecord, out Outcome) {
	start := time.Now()
	r := &runner{o: o, id: id, out: &out}
	out.RequestID = RequestID(ctx)
	logger := o.logger.With("restaurant_id", id, "request_id", out.RequestID)

	defer func() {
		if p := recover(); p != nil {
			logger.Error("Menu run panicked", "panic", p, "trail", out.TrailString())
			r.fail(fmt.Errorf("panic: %v", p))
			rec = r.generic(nil)
		}
		if rec == nil || len(rec.Menu) == 0 {
			rec = r.generic(nil)
		}
		r.enter(StateReturn)

		o.metrics.observe(out.Result, time.Since(start))
		attrs := []any{
			"result", out.Result,
			"source", rec.Source,
			"items", len(rec.Menu),
			"reviews_analyzed", rec.ReviewsAnalyzed,
			"persisted", out.Persisted,
			"trail", out.TrailString(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if out.Cause != nil {
			attrs = append(attrs, "cause", out.Cause.Error())
		}
		logger.Info("Menu served", attrs...)
	}()

	r.logger = logger
	rec = r.checkCache(ctx)
	return rec, out
}

// runner carries the state of one run.
type runner struct {
	o      *Orchestrator
	id     string
	out    *Outcome
	logger *slog.Logger
}

func (r *runner) enter(s State) {
	r.out.Trail = append(r.out.Trail, s)
}

func (r *runner) fail(err error) {
	if r.out.Cause == nil {
		r.out.Cause = err
	}
}

func (r *runner) checkCache(ctx context.Context) *model.CachedMenuRecord {
	r.enter(StateCheckCache)
	cached, state := r.o.cache.Lookup(ctx, r.id)
	if state == store.Fresh {
		r.enter(StateHitFresh)
		return r.refresh(ctx, cached)
	}
	r.enter(StateHitStaleOrMiss)
	// A stale record only carries its counters forward.
	return r.regenerate(ctx, cached)
}

// refresh checks the newest review for items missing from a fresh record.
func (r *runner) refresh(ctx context.Context, cached *model.CachedMenuRecord) *model.CachedMenuRecord {
	r.enter(StateCheckNewestReview)

	profile, err := r.o.places.FetchProfile(ctx, r.id)
	if err != nil {
		r.fail(err)
		r.logger.Warn("Places lookup failed, serving cached menu", "error", err)
		return r.returnCached(cached)
	}

	newest, ok := profile.Newest()
	if !ok || strings.TrimSpace(newest.Text) == "" {
		r.enter(StateNoNewItems)
		return r.returnCached(cached)
	}

	name := firstNonEmpty(profile.Name, cached.RestaurantName)
	candidates, err := r.o.extractor.ExtractItemsFromSingle(ctx, newest.Text, name, profile.Types)
	if err != nil {
		r.fail(err)
		r.logger.Warn("Newest review extraction failed", "error", err)
	}
	if len(candidates) == 0 {
		r.enter(StateNoNewItems)
		return r.returnCached(cached)
	}

	r.enter(StateCandidateNewItems)
	r.enter(StateFilterNovelty)
	novel := r.o.novelty.FilterNovel(ctx, candidates, cached.Menu.Names())
	if len(novel) == 0 {
		return r.returnCached(cached)
	}

	r.enter(StateIncrementalExtract)
	examined := 1
	extraTexts := profile.ReviewTexts(1, r.o.cfg.InitialBatch)
	extra, err := r.o.extractor.ExtractItems(ctx, extraTexts, name, profile.Types)
	if err != nil {
		r.fail(err)
		r.logger.Warn("Incremental extraction failed, merging newest review only", "error", err)
		extra = nil
	} else {
		examined += len(extraTexts)
	}

	r.enter(StateMergeAndPersist)
	// Deeper-batch descriptions win over the newest review's.
	updated := &model.CachedMenuRecord{
		RestaurantID:    r.id,
		RestaurantName:  name,
		Menu:            cached.Menu.Merge(novel.Merge(extra)),
		Source:          model.ProvenanceAIIncremental,
		ReviewsAnalyzed: cached.ReviewsAnalyzed + examined,
		LastUpdated:     r.o.cache.Now().UTC(),
	}
	r.logger.Debug("Merged new items", "novel", novel.Names(), "extra", len(extra))
	r.persist(ctx, updated)
	r.out.Result = ResultAIIncremental
	return updated
}

// regenerate builds a menu from scratch after a miss or a stale hit.
func (r *runner) regenerate(ctx context.Context, stale *model.CachedMenuRecord) *model.CachedMenuRecord {
	profile, err := r.o.places.FetchProfile(ctx, r.id)
	if err != nil {
		r.fail(err)
		if errors.Is(err, places.ErrNotFound) {
			r.logger.Info("Unknown restaurant id")
		} else {
			r.logger.Warn("Places lookup failed", "error", err)
		}
		return r.generic(stale)
	}

	prevAnalyzed := 0
	if stale != nil {
		prevAnalyzed = stale.ReviewsAnalyzed
	}

	if len(profile.Reviews) == 0 || !r.o.extractor.Available() {
		if !r.o.extractor.Available() {
			r.fail(errors.New("extraction unavailable"))
		}
		return r.template(ctx, profile, prevAnalyzed)
	}

	r.enter(StateFullExtract)
	texts := profile.ReviewTexts(0, r.o.cfg.InitialBatch)
	menu, err := r.o.extractor.ExtractItems(ctx, texts, profile.Name, profile.Types)
	if err != nil {
		r.fail(err)
		r.logger.Warn("Full extraction failed", "error", err)
		return r.template(ctx, profile, prevAnalyzed)
	}
	if len(menu) == 0 {
		return r.template(ctx, profile, prevAnalyzed)
	}

	r.enter(StatePersist)
	rec := &model.CachedMenuRecord{
		RestaurantID:    r.id,
		RestaurantName:  profile.Name,
		Menu:            menu,
		Source:          model.ProvenanceAIInitial,
		ReviewsAnalyzed: max(len(texts), prevAnalyzed),
		LastUpdated:     r.o.cache.Now().UTC(),
	}
	r.persist(ctx, rec)
	r.out.Result = ResultAIInitial
	return rec
}

func (r *runner) template(ctx context.Context, profile *model.RestaurantProfile, prevAnalyzed int) *model.CachedMenuRecord {
	r.enter(StateTemplate)
	rec := &model.CachedMenuRecord{
		RestaurantID:    r.id,
		RestaurantName:  profile.Name,
		Menu:            fallback.GenerateTemplate(profile.Types, profile.Name),
		Source:          model.ProvenanceTemplate,
		ReviewsAnalyzed: prevAnalyzed,
		LastUpdated:     r.o.cache.Now().UTC(),
	}
	if r.o.cfg.PersistTemplates {
		r.persist(ctx, rec)
	}
	r.out.Result = ResultTemplate
	return rec
}

// generic returns the fixed menu. It is never persisted.
func (r *runner) generic(prev *model.CachedMenuRecord) *model.CachedMenuRecord {
	r.enter(StateGenericFallback)
	rec := &model.CachedMenuRecord{
		RestaurantID: r.id,
		Menu:         fallback.GenerateGenericFallback(),
		Source:       model.ProvenanceGenericFallback,
		LastUpdated:  r.o.cache.Now().UTC(),
	}
	if prev != nil {
		rec.RestaurantName = prev.RestaurantName
		rec.ReviewsAnalyzed = prev.ReviewsAnalyzed
	}
	r.out.Result = ResultGenericFallback
	return rec
}

func (r *runner) returnCached(cached *model.CachedMenuRecord) *model.CachedMenuRecord {
	r.enter(StateReturnCached)
	r.out.Result = ResultCached
	return cached
}

// persist writes rec. Failures are logged and otherwise ignored.
func (r *runner) persist(ctx context.Context, rec *model.CachedMenuRecord) {
	err := r.o.cache.Save(ctx, rec)
	r.o.metrics.write(err == nil)
	if err != nil {
		r.logger.Warn("Cache write failed", "error", err)
		return
	}
	r.out.Persisted = true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
