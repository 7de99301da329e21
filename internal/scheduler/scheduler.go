// Package scheduler runs query evaluation off the rendering path and
// guarantees that only the freshest result is ever applied.
//
// Every Submit advances a monotonic generation, even when the debounce
// window swallows the dispatch, so work already in flight is superseded
// the moment the user types again. Workers are never interrupted; a slow
// worker simply risks its reply being discarded on arrival. All index
// mutation happens in Apply, on the widget's single update sequence —
// workers only ever read an immutable visibility snapshot and a read-only
// records reference.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	lerr "github.com/bigpick/bigpick/internal/errors"
	"github.com/bigpick/bigpick/internal/index"
	"github.com/bigpick/bigpick/internal/match"
)

// Records is the read-only view of the host's record collection that
// evaluation matches against. Implementations must be immutable: the host
// replaces the collection wholesale instead of mutating it.
type Records interface {
	Len() int
	Text(i int) string
}

// Outcome classifies what Apply did with a response.
type Outcome string

const (
	// OutcomeApplied means the response was fresh and its diff was applied.
	OutcomeApplied Outcome = "applied"
	// OutcomeSuperseded means a newer generation existed; nothing mutated.
	OutcomeSuperseded Outcome = "superseded"
	// OutcomeFailed means evaluation failed and the synchronous fallback
	// also could not run (no records attached).
	OutcomeFailed Outcome = "failed"
)

// State is the scheduler's visible lifecycle state.
type State string

const (
	StateIdle    State = "idle"
	StatePending State = "pending"
)

// Response carries an evaluation result back to the update sequence.
type Response struct {
	Generation uint64
	Query      string
	// ChangedIndices are the absolute indices whose visibility differs
	// from the snapshot the request was dispatched with.
	ChangedIndices []int
	// Err is set when background evaluation failed; Apply recovers it
	// with a synchronous fallback on the same generation.
	Err error
	// Elapsed is the evaluation wall time, for telemetry.
	Elapsed time.Duration

	records Records
	sync    bool
}

// request is what a worker receives: a generation stamp, the query, and
// immutable views of the records and current visibility.
type request struct {
	generation uint64
	query      string
	records    Records
	visible    *index.Bitset
	refinement bool
}

// Config configures a Scheduler.
type Config struct {
	// Workers is the number of background evaluation goroutines.
	// 0 disables background evaluation; every query runs synchronously.
	Workers int
	// Debounce is the quiet window that collapses keystroke bursts.
	Debounce time.Duration
	// QueueDepth bounds the request channel. Defaults to 4.
	QueueDepth int
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Scheduler owns search dispatch and result application for one widget.
type Scheduler struct {
	cfg     Config
	idx     *index.FilterIndex
	matcher match.Matcher
	log     *slog.Logger

	generation atomic.Uint64

	mu          sync.Mutex
	records     Records
	lastApplied string
	state       State
	timer       *time.Timer
	pending     *request

	requests  chan request
	responses chan Response

	ctx     context.Context
	cancel  context.CancelFunc
	group   *errgroup.Group
	started bool
}

// New creates a scheduler writing into the given filter index.
func New(cfg Config, idx *index.FilterIndex, m match.Matcher) *Scheduler {
	if cfg.QueueDepth <= 0 {
		cfg.QueueDepth = 4
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Scheduler{
		cfg:       cfg,
		idx:       idx,
		matcher:   m,
		log:       cfg.Logger,
		state:     StateIdle,
		requests:  make(chan request, cfg.QueueDepth),
		responses: make(chan Response, 2*cfg.QueueDepth+4),
	}
}

// Start launches the worker pool. Without workers it is a no-op; Submit
// then evaluates synchronously.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.cfg.Workers <= 0 {
		s.started = true
		return
	}
	s.started = true

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.group, s.ctx = errgroup.WithContext(s.ctx)
	for i := 0; i < s.cfg.Workers; i++ {
		s.group.Go(s.workerLoop)
	}
}

// Stop cancels workers and waits for them to drain. Pending replies are
// dropped; the caller is tearing the widget down.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	cancel := s.cancel
	group := s.group
	s.cancel, s.group = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if group != nil {
		_ = group.Wait()
	}
}

// SetRecords replaces the record collection reference. The generation
// advances so every in-flight evaluation against the old collection is
// discarded on arrival.
func (s *Scheduler) SetRecords(r Records) {
	s.generation.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = r
	s.lastApplied = ""
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.state = StateIdle
}

// Generation returns the latest submitted generation.
func (s *Scheduler) Generation() uint64 {
	return s.generation.Load()
}

// CurrentState returns the lifecycle state.
func (s *Scheduler) CurrentState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Responses is the channel the update sequence drains and feeds to Apply.
func (s *Scheduler) Responses() <-chan Response {
	return s.responses
}

// Submit registers a query. The generation advances unconditionally; the
// debounce window decides whether this exact query is ever evaluated.
// Must be called from the widget's update sequence: the visibility
// snapshot is taken here, while no mutation can be in progress.
func (s *Scheduler) Submit(query string) {
	gen := s.generation.Add(1)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.records == nil {
		return
	}
	s.state = StatePending
	s.pending = &request{
		generation: gen,
		query:      query,
		records:    s.records,
		visible:    s.idx.SnapshotVisible(),
		refinement: match.IsRefinement(s.matcher, s.lastApplied, query),
	}

	if s.cfg.Debounce <= 0 {
		req := *s.pending
		s.pending = nil
		s.mu.Unlock()
		s.dispatch(req)
		s.mu.Lock()
		return
	}

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.cfg.Debounce, s.flushPending)
}

// flushPending dispatches the last query of a burst.
func (s *Scheduler) flushPending() {
	s.mu.Lock()
	req := s.pending
	s.pending = nil
	s.mu.Unlock()

	if req != nil {
		s.dispatch(*req)
	}
}

// dispatch hands a request to the worker pool, or evaluates inline when
// no worker can take it.
func (s *Scheduler) dispatch(req request) {
	if s.cfg.Workers > 0 {
		select {
		case s.requests <- req:
			return
		default:
			// Queue full: everything queued is older than req and will
			// be discarded anyway. Degrade to inline evaluation.
			s.log.Warn("search queue full, evaluating inline",
				slog.Uint64("generation", req.generation))
		}
	}
	resp := s.evaluate(req)
	resp.sync = true
	s.deliver(resp)
}

// workerLoop consumes requests until the scheduler stops.
func (s *Scheduler) workerLoop() error {
	for {
		select {
		case <-s.ctx.Done():
			return nil
		case req := <-s.requests:
			if req.generation != s.generation.Load() {
				// Already superseded; skip the scan but still reply so
				// state observers see the discard.
				s.deliver(Response{Generation: req.generation, Query: req.query, records: req.records})
				continue
			}
			s.deliver(s.evaluate(req))
		}
	}
}

// evaluate computes the changed-visibility diff for a request. A panic in
// a custom matcher becomes a worker error the update sequence recovers
// from, not a crash.
func (s *Scheduler) evaluate(req request) (resp Response) {
	resp = Response{Generation: req.generation, Query: req.query, records: req.records}
	start := time.Now()
	defer func() {
		resp.Elapsed = time.Since(start)
		if r := recover(); r != nil {
			resp.Err = lerr.WorkerUnavailable(
				fmt.Sprintf("evaluation panicked: %v", r), nil)
			resp.ChangedIndices = nil
		}
	}()

	n := req.records.Len()
	var changed []int
	for i := 0; i < n; i++ {
		visible := req.visible.Get(i)
		if req.refinement && !visible {
			continue
		}
		if s.matcher.Match(req.records.Text(i), req.query) != visible {
			changed = append(changed, i)
		}
	}
	resp.ChangedIndices = changed
	return resp
}

// deliver pushes a response without ever blocking a worker forever.
func (s *Scheduler) deliver(resp Response) {
	select {
	case s.responses <- resp:
	default:
		s.log.Warn("response channel full, dropping result",
			slog.Uint64("generation", resp.Generation))
	}
}

// Apply consumes a response on the update sequence. Stale generations are
// discarded unconditionally; fresh failures are retried synchronously on
// the same generation before surfacing degradation.
func (s *Scheduler) Apply(resp Response) (Outcome, error) {
	if resp.Generation != s.generation.Load() {
		s.log.Debug("discarding stale search result",
			slog.Uint64("generation", resp.Generation),
			slog.Uint64("current", s.generation.Load()))
		return OutcomeSuperseded, nil
	}

	if resp.Err != nil {
		if resp.sync || resp.records == nil {
			return OutcomeFailed, resp.Err
		}
		s.log.Warn("background evaluation failed, falling back to synchronous",
			slog.Uint64("generation", resp.Generation),
			slog.String("error", resp.Err.Error()))
		s.mu.Lock()
		req := request{
			generation: resp.Generation,
			query:      resp.Query,
			records:    resp.records,
			visible:    s.idx.SnapshotVisible(),
			refinement: match.IsRefinement(s.matcher, s.lastApplied, resp.Query),
		}
		s.mu.Unlock()
		fallback := s.evaluate(req)
		fallback.sync = true
		return s.Apply(fallback)
	}

	records := resp.records
	query := resp.Query
	pred := func(i int) bool {
		return s.matcher.Match(records.Text(i), query)
	}
	if err := s.idx.ApplyPredicateDiff(resp.ChangedIndices, pred); err != nil {
		return OutcomeFailed, err
	}

	s.mu.Lock()
	s.lastApplied = query
	s.state = StateIdle
	s.mu.Unlock()

	s.log.Debug("search applied",
		slog.Uint64("generation", resp.Generation),
		slog.Int("changed", len(resp.ChangedIndices)),
		slog.Int("visible", s.idx.TotalVisible()),
		slog.Duration("elapsed", resp.Elapsed))
	return OutcomeApplied, nil
}
