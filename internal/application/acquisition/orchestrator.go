// Package acquisition drives the four market-intelligence feeds for a
// submitted idea: one at a time, in a fixed order, with a mandatory delay
// between steps to stay under the upstream rate limit.  A failure in one
// category never blocks the next.
package acquisition

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/venturesonar/venturesonar/internal/config"
	"github.com/venturesonar/venturesonar/internal/domain/record"
	"github.com/venturesonar/venturesonar/internal/infrastructure/analysis"
	"github.com/venturesonar/venturesonar/internal/infrastructure/messaging/kafka"
	"github.com/venturesonar/venturesonar/internal/infrastructure/monitoring/logging"
	"github.com/venturesonar/venturesonar/internal/infrastructure/monitoring/prometheus"
	"github.com/venturesonar/venturesonar/pkg/errors"
	"github.com/venturesonar/venturesonar/pkg/geojson"
)

// Feeds is the upstream surface the orchestrator drives.  *analysis.Client
// satisfies it.
type Feeds interface {
	AudienceMap(ctx context.Context, idea string) (*geojson.FeatureCollection, error)
	FindCompetitors(ctx context.Context, idea string) (*analysis.CompetitorsResult, error)
	FindCofounders(ctx context.Context, idea string) (*analysis.CofoundersResult, error)
	FindInvestors(ctx context.Context, idea string) (*analysis.InvestorsResult, error)
	MarketAnalysis(ctx context.Context, idea string) (*record.MarketAnalysis, error)
}

type sleepFunc func(ctx context.Context, d time.Duration) error

func defaultSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Orchestrator owns the acquisition state.  A new submission supersedes the
// active run: its context is cancelled and any late writes from it are
// discarded by the run-ID guard.
type Orchestrator struct {
	feeds   Feeds
	logger  logging.Logger
	metrics *prometheus.Metrics
	sink    kafka.EventSink
	cfg     config.AcquisitionConfig
	sleep   sleepFunc
	now     func() time.Time

	mu          sync.Mutex
	state       Snapshot
	notices     []Notice
	cancelRun   context.CancelFunc
	subscribers map[int]chan Snapshot
	nextSubID   int
	wg          sync.WaitGroup

	// fetchMarket controls the trailing market-analysis call after the four
	// category steps.
	fetchMarket bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(log logging.Logger) Option {
	return func(o *Orchestrator) { o.logger = log }
}

// WithMetrics wires run instrumentation.
func WithMetrics(m *prometheus.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithEventSink publishes lifecycle events for each run.
func WithEventSink(sink kafka.EventSink) Option {
	return func(o *Orchestrator) { o.sink = sink }
}

// WithoutMarketAnalysis disables the trailing market-analysis fetch.
func WithoutMarketAnalysis() Option {
	return func(o *Orchestrator) { o.fetchMarket = false }
}

// NewOrchestrator builds an Orchestrator.
func NewOrchestrator(feeds Feeds, cfg config.AcquisitionConfig, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		feeds:       feeds,
		logger:      logging.NewNopLogger(),
		metrics:     prometheus.NewNopMetrics(),
		sink:        kafka.NopSink{},
		cfg:         cfg,
		sleep:       defaultSleep,
		now:         time.Now,
		subscribers: make(map[int]chan Snapshot),
		fetchMarket: true,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Submit starts a new acquisition run for idea and returns its run ID.  Any
// active run is superseded.  The idea must be at least MinIdeaLength runes
// after trimming.
func (o *Orchestrator) Submit(ctx context.Context, idea string) (string, error) {
	idea = strings.TrimSpace(idea)
	if utf8.RuneCountInString(idea) < o.cfg.MinIdeaLength {
		return "", errors.Newf(errors.ErrCodeAcqIdeaTooShort,
			"idea must be at least %d characters", o.cfg.MinIdeaLength)
	}

	runID := uuid.New().String()
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	o.mu.Lock()
	if o.cancelRun != nil {
		o.cancelRun()
		o.metrics.RunsSuperseded.WithLabelValues().Inc()
		o.publishEvent(kafka.RunEvent{Type: kafka.EventRunSuperseded, RunID: o.state.RunID})
	}
	o.cancelRun = cancel
	o.state = newSnapshot(runID, idea, o.now())
	o.mu.Unlock()

	o.metrics.RunsStarted.WithLabelValues().Inc()
	o.metrics.ActiveRuns.WithLabelValues().Inc()
	o.publishEvent(kafka.RunEvent{Type: kafka.EventRunStarted, RunID: runID})
	o.notifySubscribers()

	o.logger.Info("acquisition run started",
		logging.String("run_id", runID),
		logging.Int("idea_length", utf8.RuneCountInString(idea)),
	)

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer o.metrics.ActiveRuns.WithLabelValues().Dec()
		o.run(runCtx, runID, idea)
	}()
	return runID, nil
}

// run executes the sequential fetch state machine for one run.
func (o *Orchestrator) run(ctx context.Context, runID, idea string) {
	categories := record.AllCategories()
	for i, cat := range categories {
		if i > 0 {
			if err := o.sleep(ctx, o.cfg.StepDelay); err != nil {
				return
			}
		}
		if ctx.Err() != nil {
			return
		}
		o.step(ctx, runID, idea, cat)
	}

	if o.fetchMarket && ctx.Err() == nil {
		o.fetchMarketAnalysis(ctx, runID, idea)
	}

	if o.write(runID, func(s *Snapshot) {}) {
		o.publishEvent(kafka.RunEvent{Type: kafka.EventRunCompleted, RunID: runID})
		o.logger.Info("acquisition run completed", logging.String("run_id", runID))
	}
}

// step fetches one category, recording status transitions and isolating
// failures to that category.
func (o *Orchestrator) step(ctx context.Context, runID, idea string, cat record.Category) {
	if !o.write(runID, func(s *Snapshot) {
		s.Categories[cat] = CategoryState{Status: StatusLoading, UpdatedAt: o.now()}
	}) {
		return
	}
	o.publishEvent(kafka.RunEvent{Type: kafka.EventStepStarted, RunID: runID, Category: string(cat)})

	start := o.now()
	err := o.fetchCategory(ctx, runID, idea, cat)
	o.metrics.ObserveStep(string(cat), o.now().Sub(start))

	if err != nil {
		if ctx.Err() != nil {
			return
		}
		o.write(runID, func(s *Snapshot) {
			s.Categories[cat] = CategoryState{
				Status:    StatusError,
				LastError: err.Error(),
				UpdatedAt: o.now(),
			}
		})
		o.pushNotice(cat, err)
		o.publishEvent(kafka.RunEvent{
			Type:     kafka.EventStepFailed,
			RunID:    runID,
			Category: string(cat),
			Error:    err.Error(),
		})
		o.logger.Warn("category fetch failed",
			logging.String("run_id", runID),
			logging.String("category", string(cat)),
			logging.Err(err),
		)
		return
	}

	o.write(runID, func(s *Snapshot) {
		s.Categories[cat] = CategoryState{Status: StatusSuccess, UpdatedAt: o.now()}
	})
	o.publishEvent(kafka.RunEvent{Type: kafka.EventStepCompleted, RunID: runID, Category: string(cat)})
}

// fetchCategory invokes the feed for cat and stores its payload under the
// run-ID guard.
func (o *Orchestrator) fetchCategory(ctx context.Context, runID, idea string, cat record.Category) error {
	switch cat {
	case record.CategoryDemographics:
		fc, err := o.feeds.AudienceMap(ctx, idea)
		if err != nil {
			return err
		}
		points := record.DemographicPointsFrom(fc)
		o.write(runID, func(s *Snapshot) {
			s.Demographics = points
			s.TotalFound[cat] = len(fc.Features)
		})
	case record.CategoryCompetitors:
		result, err := o.feeds.FindCompetitors(ctx, idea)
		if err != nil {
			return err
		}
		o.write(runID, func(s *Snapshot) {
			s.Competitors = result.Records
			s.TotalFound[cat] = result.TotalFound
		})
	case record.CategoryCofounders:
		result, err := o.feeds.FindCofounders(ctx, idea)
		if err != nil {
			return err
		}
		o.write(runID, func(s *Snapshot) {
			s.Cofounders = result.Records
			s.TotalFound[cat] = result.TotalFound
		})
	case record.CategoryInvestors:
		result, err := o.feeds.FindInvestors(ctx, idea)
		if err != nil {
			return err
		}
		o.write(runID, func(s *Snapshot) {
			s.Investors = result.Records
			s.TotalFound[cat] = result.TotalFound
		})
	}
	return nil
}

// fetchMarketAnalysis is best-effort context for demographic selections; a
// failure here is logged and otherwise invisible.
func (o *Orchestrator) fetchMarketAnalysis(ctx context.Context, runID, idea string) {
	analysisResult, err := o.feeds.MarketAnalysis(ctx, idea)
	if err != nil {
		o.logger.Warn("market analysis unavailable",
			logging.String("run_id", runID),
			logging.Err(err),
		)
		return
	}
	o.write(runID, func(s *Snapshot) {
		s.Market = analysisResult
	})
}

// write applies fn to the state if runID is still the active run, then
// notifies subscribers.  Returns false when the run has been superseded.
func (o *Orchestrator) write(runID string, fn func(s *Snapshot)) bool {
	o.mu.Lock()
	if o.state.RunID != runID {
		o.mu.Unlock()
		return false
	}
	fn(&o.state)
	o.mu.Unlock()
	o.notifySubscribers()
	return true
}

// Snapshot returns a deep copy of the current state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.clone()
}

// Subscribe returns a channel receiving a snapshot after every state change,
// and a cancel function.  Slow subscribers miss intermediate snapshots rather
// than blocking acquisition.
func (o *Orchestrator) Subscribe() (<-chan Snapshot, func()) {
	o.mu.Lock()
	id := o.nextSubID
	o.nextSubID++
	ch := make(chan Snapshot, 8)
	o.subscribers[id] = ch
	o.mu.Unlock()

	cancel := func() {
		o.mu.Lock()
		if existing, ok := o.subscribers[id]; ok {
			delete(o.subscribers, id)
			close(existing)
		}
		o.mu.Unlock()
	}
	return ch, cancel
}

// notifySubscribers delivers the current snapshot with non-blocking sends.
// Sending under the lock keeps the sends ordered against cancel's close of
// the channel.
func (o *Orchestrator) notifySubscribers() {
	o.mu.Lock()
	defer o.mu.Unlock()
	snapshot := o.state.clone()
	for _, ch := range o.subscribers {
		select {
		case ch <- snapshot:
		default:
		}
	}
}

// pushNotice records a transient alert for a failed category.
func (o *Orchestrator) pushNotice(cat record.Category, err error) {
	now := o.now()
	notice := Notice{
		ID:        uuid.New().String(),
		Category:  cat,
		Message:   err.Error(),
		CreatedAt: now,
		ExpiresAt: now.Add(o.cfg.NoticeTTL),
	}
	o.mu.Lock()
	o.pruneNoticesLocked(now)
	o.notices = append(o.notices, notice)
	o.mu.Unlock()
}

// Notices returns the alerts that have not yet expired.
func (o *Orchestrator) Notices() []Notice {
	now := o.now()
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pruneNoticesLocked(now)
	return append([]Notice(nil), o.notices...)
}

func (o *Orchestrator) pruneNoticesLocked(now time.Time) {
	kept := o.notices[:0]
	for _, n := range o.notices {
		if now.Before(n.ExpiresAt) {
			kept = append(kept, n)
		}
	}
	o.notices = kept
}

func (o *Orchestrator) publishEvent(event kafka.RunEvent) {
	if err := o.sink.Publish(context.Background(), event); err != nil {
		o.logger.Warn("failed to publish event",
			logging.String("type", event.Type),
			logging.Err(err),
		)
	}
}

// Wait blocks until the active run's goroutine has exited without cancelling
// it.  Done() turns true once the four category steps are terminal; the
// trailing market-analysis write lands after that, so callers that want the
// final snapshot must Wait first.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Close cancels the active run and waits for its goroutine to exit.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if o.cancelRun != nil {
		o.cancelRun()
		o.cancelRun = nil
	}
	o.mu.Unlock()
	o.wg.Wait()
}
