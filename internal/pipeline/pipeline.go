// Package pipeline runs a triage pass over the stored docket: backfill the
// judgment flag, classify every appellate case against a snapshot of the
// corpus, and persist the outcomes.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/docketsift/internal/docket"
	"github.com/ppiankov/docketsift/internal/eligibility"
	"github.com/ppiankov/docketsift/internal/logging"
	"github.com/ppiankov/docketsift/internal/model"
	"github.com/ppiankov/docketsift/internal/names"
	"github.com/ppiankov/docketsift/internal/store"
	"github.com/ppiankov/docketsift/internal/worker"
)

// Pipeline orchestrates a triage pass
type Pipeline struct {
	store      store.Store
	rules      *docket.Rules
	detector   *docket.JudgmentDetector
	classifier *eligibility.Classifier
	matcher    *names.Matcher
	workers    int
	now        func() time.Time
	logger     *zap.Logger
}

// Option customizes a Pipeline
type Option func(*pipelineOptions)

type pipelineOptions struct {
	now    func() time.Time
	logger *zap.Logger
}

// WithClock fixes the run time used for staleness and classified_at
func WithClock(now func() time.Time) Option {
	return func(o *pipelineOptions) { o.now = now }
}

// WithLogger sets the pipeline logger
func WithLogger(l *zap.Logger) Option {
	return func(o *pipelineOptions) { o.logger = l }
}

// NewPipeline creates a pipeline over a store
func NewPipeline(cfg *model.Config, st store.Store, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}

	o := pipelineOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	logger := logging.OrNop(o.logger)
	matcher := names.NewMatcher(0)

	classifier, err := eligibility.New(cfg,
		eligibility.WithClock(o.now),
		eligibility.WithLogger(logger.Named("eligibility")),
		eligibility.WithMatcher(matcher),
	)
	if err != nil {
		return nil, fmt.Errorf("build classifier: %w", err)
	}

	return &Pipeline{
		store:      st,
		rules:      classifier.Rules(),
		detector:   docket.NewJudgmentDetector(&cfg.Docket),
		classifier: classifier,
		matcher:    matcher,
		workers:    cfg.Concurrency.Workers,
		now:        o.now,
		logger:     logger,
	}, nil
}

// Options selects what a Run classifies
type Options struct {
	CaseIDs []string // Restrict the pass to these cases; empty means all
	Workers int      // Overrides the configured worker count when > 0
	Force   bool     // Re-classify terminal outcomes too
}

// Outcome is the decision for one case in a run
type Outcome struct {
	Decision model.Decision
	Court    string
	Skipped  bool // A stored terminal outcome was reused
}

// Result summarizes a run
type Result struct {
	Outcomes   []Outcome          // Ordered by case_id
	Eligible   []model.CaseRecord // Records handed to downstream steps
	Counts     map[model.FilterReason]int
	Classified int
	Skipped    int
	Backfilled int
	Companion  int      // Companion-docket records used as corpus only
	Missing    []string // Requested case ids not in the store
	Duration   time.Duration
}

// Run executes a triage pass
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	// Parses are only shared within one corpus snapshot
	defer p.matcher.Flush()

	// 1. Load
	records, err := p.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].CaseID < records[j].CaseID })

	selected, missing := selectRecords(records, opts.CaseIDs)
	for _, id := range missing {
		p.logger.Warn("Requested case not in store", zap.String("case_id", id))
	}

	result := &Result{
		Counts:  make(map[model.FilterReason]int),
		Missing: missing,
	}
	changed := make(map[int]bool)

	// 2. Backfill the judgment flag before anything reads it
	for _, i := range selected {
		if p.detector.Backfill(&records[i]) {
			result.Backfilled++
			changed[i] = true
		}
	}

	// 3. Snapshot the corpus; classification only reads it
	corpus := make([]model.CaseRecord, len(records))
	copy(corpus, records)
	index := eligibility.NewCompanionIndex(p.rules, corpus)
	p.logger.Debug("Corpus snapshot",
		zap.Int("records", len(corpus)),
		zap.Int("companion_parties", index.Len()),
	)

	// 4. Skip companion-docket records and unchanged terminal outcomes
	var targets []*model.CaseRecord
	var targetIdx []int
	for _, i := range selected {
		rec := &records[i]
		if p.rules.IsCompanion(rec.CaseID) {
			result.Companion++
			continue
		}
		if !opts.Force && reusable(rec) {
			result.Skipped++
			result.Outcomes = append(result.Outcomes, Outcome{
				Decision: storedDecision(rec),
				Court:    rec.Court,
				Skipped:  true,
			})
			continue
		}
		targets = append(targets, rec)
		targetIdx = append(targetIdx, i)
	}

	// 5. Classify in parallel, apply in input order
	workers := p.workers
	if opts.Workers > 0 {
		workers = opts.Workers
	}
	batch := worker.NewBatchClassifier(func(rec *model.CaseRecord) model.Decision {
		return p.classifier.ClassifyWith(rec, index)
	}, workers)

	classified, err := batch.ClassifyAll(ctx, targets)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}

	at := p.now()
	for _, r := range classified {
		i := targetIdx[r.Index]
		rec := &records[i]
		rec.ApplyDecision(r.Decision, r.Fingerprint, at)
		changed[i] = true
		result.Classified++
		result.Outcomes = append(result.Outcomes, Outcome{Decision: r.Decision, Court: rec.Court})

		p.logger.Debug("Classified case",
			zap.String("case_id", rec.CaseID),
			zap.String("reason", string(r.Decision.Reason)),
			zap.String("detail", r.Decision.Detail),
		)
		if r.Decision.Eligible {
			result.Eligible = append(result.Eligible, *rec)
		}
	}

	sort.SliceStable(result.Outcomes, func(i, j int) bool {
		return result.Outcomes[i].Decision.CaseID < result.Outcomes[j].Decision.CaseID
	})
	for _, o := range result.Outcomes {
		result.Counts[o.Decision.Reason]++
	}

	// 6. Persist what changed
	if len(changed) > 0 {
		toSave := make([]model.CaseRecord, 0, len(changed))
		for i := range records {
			if changed[i] {
				toSave = append(toSave, records[i])
			}
		}
		if err := p.store.Save(ctx, toSave); err != nil {
			return nil, fmt.Errorf("save outcomes: %w", err)
		}
	}

	result.Duration = time.Since(start)
	p.logger.Info("Triage pass finished",
		zap.Int("classified", result.Classified),
		zap.Int("skipped", result.Skipped),
		zap.Int("eligible", len(result.Eligible)),
		zap.Int("backfilled", result.Backfilled),
		zap.Duration("duration", result.Duration),
	)

	return result, nil
}

// reusable reports whether a stored outcome can stand without re-running
// the rules: it is terminal and the inputs it was computed from are unchanged
func reusable(rec *model.CaseRecord) bool {
	return rec.Filtered &&
		rec.FilterReason.Terminal() &&
		rec.Fingerprint != "" &&
		rec.Fingerprint == rec.ComputeFingerprint()
}

func storedDecision(rec *model.CaseRecord) model.Decision {
	return model.Disqualified(rec.CaseID, rec.FilterReason, rec.FilterDetail)
}

// selectRecords returns the indexes of the requested records and the
// requested ids that were not found
func selectRecords(records []model.CaseRecord, ids []string) ([]int, []string) {
	if len(ids) == 0 {
		all := make([]int, len(records))
		for i := range records {
			all[i] = i
		}
		return all, nil
	}

	byID := make(map[string]int, len(records))
	for i := range records {
		byID[records[i].CaseID] = i
	}

	var selected []int
	var missing []string
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if i, ok := byID[id]; ok {
			selected = append(selected, i)
		} else {
			missing = append(missing, id)
		}
	}
	sort.Ints(selected)
	return selected, missing
}
