// Package cascade executes selected engines in tier-ordered waves:
// every engine inside a wave runs concurrently under its own timeout,
// waves run strictly one after another, and results are merged with
// exact-URL deduplication after each wave settles.
package cascade

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/google/uuid"
	"github.com/mstrand/wavesearch/internal/registry"
	"github.com/mstrand/wavesearch/internal/search"
)

const (
	DefaultEngineTimeout       = 15 * time.Second
	DefaultMaxResultsPerEngine = 20
)

// ProgressFunc receives progress events as individual engines settle.
// It is called from worker goroutines and must not block.
type ProgressFunc func(search.ProgressEvent)

// Options tune one execution. The zero value runs all waves with defaults.
type Options struct {
	// StopAfterWave halts the cascade once that phase completes; later
	// waves are never started. Zero runs everything.
	StopAfterWave search.WavePhase

	Progress ProgressFunc

	// SearchID tags progress events; generated when zero.
	SearchID uuid.UUID
}

// WaveUpdate is one streaming emission: the wave that just settled and
// the results it contributed that were not already seen. The terminal
// update carries the Complete phase and the finalized execution result.
type WaveUpdate struct {
	Phase   search.WavePhase
	Results []search.Result
	Final   *search.ExecutionResult
}

type Executor struct {
	reg          *registry.Registry
	timeout      time.Duration
	maxPerEngine int
	logger       *slog.Logger
}

type Option func(*Executor)

func WithEngineTimeout(d time.Duration) Option {
	return func(e *Executor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

func WithMaxResultsPerEngine(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.maxPerEngine = n
		}
	}
}

func New(reg *registry.Registry, opts ...Option) (*Executor, error) {
	if reg == nil || reg.Len() == 0 {
		return nil, fmt.Errorf("cascade: registry is empty")
	}
	e := &Executor{
		reg:          reg,
		timeout:      DefaultEngineTimeout,
		maxPerEngine: DefaultMaxResultsPerEngine,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Execute runs the cascade to completion (or StopAfterWave) and returns
// the accumulated, deduplicated result. Engine faults never surface as
// errors; they are recorded in EnginesFailed. The only returned error is
// caller-side context cancellation between waves.
func (e *Executor) Execute(ctx context.Context, query string, engines []string, opts Options) (*search.ExecutionResult, error) {
	run := e.newRun(query, engines, opts)

	for _, phase := range search.Phases() {
		if err := ctx.Err(); err != nil {
			return run.finalize(), err
		}
		run.executeWave(ctx, phase)
		if opts.StopAfterWave != 0 && phase >= opts.StopAfterWave {
			break
		}
	}
	return run.finalize(), nil
}

// ExecuteStreaming runs the cascade in a goroutine, emitting a WaveUpdate
// after each wave settles and a terminal Complete update before closing
// the channel. Failure semantics match Execute.
func (e *Executor) ExecuteStreaming(ctx context.Context, query string, engines []string, opts Options) <-chan WaveUpdate {
	updates := make(chan WaveUpdate)

	go func() {
		defer close(updates)
		run := e.newRun(query, engines, opts)

		for _, phase := range search.Phases() {
			if ctx.Err() != nil {
				return
			}
			if len(run.waveEngines[phase]) > 0 {
				fresh := run.executeWave(ctx, phase)
				select {
				case updates <- WaveUpdate{Phase: phase, Results: fresh}:
				case <-ctx.Done():
					return
				}
			}
			if opts.StopAfterWave != 0 && phase >= opts.StopAfterWave {
				break
			}
		}

		if ctx.Err() != nil {
			return
		}
		select {
		case updates <- WaveUpdate{Phase: search.WaveComplete, Final: run.finalize()}:
		case <-ctx.Done():
		}
	}()

	return updates
}

// run holds the per-call state: the dedup set and accumulators are fresh
// for every Execute/ExecuteStreaming call, so a shared Executor is safe
// for concurrent use.
type run struct {
	exec        *Executor
	query       string
	opts        Options
	waveEngines map[search.WavePhase][]string

	started   time.Time
	seenURLs  map[string]bool
	all       []search.Result
	succeeded []string
	failed    []string
	waves     []search.WaveResult

	resultsSoFar atomic.Int64
}

func (e *Executor) newRun(query string, engines []string, opts Options) *run {
	if opts.SearchID == uuid.Nil {
		opts.SearchID = uuid.New()
	}

	waveEngines := make(map[search.WavePhase][]string)
	for _, code := range engines {
		phase := search.PhaseForTier(e.reg.Tier(code))
		waveEngines[phase] = append(waveEngines[phase], code)
	}

	return &run{
		exec:        e,
		query:       query,
		opts:        opts,
		waveEngines: waveEngines,
		started:     time.Now(),
		seenURLs:    make(map[string]bool),
	}
}

type engineOutcome struct {
	code    string
	results []search.Result
	err     error
}

// executeWave fans out every engine assigned to the phase, waits for all
// of them to settle, then merges their results single-threaded. Returns
// the results this wave contributed after deduplication.
func (r *run) executeWave(ctx context.Context, phase search.WavePhase) []search.Result {
	codes := r.waveEngines[phase]
	if len(codes) == 0 {
		return nil
	}

	waveStart := time.Now()
	outcomes := make([]engineOutcome, len(codes))
	var completed atomic.Int64

	// The group never carries errors; faults stay inside each outcome so
	// one engine can never cancel or delay its siblings.
	g := new(errgroup.Group)
	for i, code := range codes {
		g.Go(func() error {
			results, err := r.exec.runEngine(ctx, code, r.query)
			outcomes[i] = engineOutcome{code: code, results: results, err: err}
			r.resultsSoFar.Add(int64(len(results)))
			r.emitProgress(phase, int(completed.Add(1)), len(codes), code, err)
			return nil
		})
	}
	_ = g.Wait()

	// Single-threaded merge: the fan-out has fully joined, so the dedup
	// set needs no locking.
	var fresh []search.Result
	for _, out := range outcomes {
		if out.err != nil {
			r.failed = append(r.failed, out.code)
			r.exec.logger.Warn("engine failed",
				"engine", out.code, "phase", phase.String(), "error", out.err)
			continue
		}
		r.succeeded = append(r.succeeded, out.code)
		for _, res := range out.results {
			if r.seenURLs[res.URL] {
				continue
			}
			r.seenURLs[res.URL] = true
			r.all = append(r.all, res)
			fresh = append(fresh, res)
		}
	}

	r.waves = append(r.waves, search.WaveResult{
		Phase:      phase,
		EnginesRun: codes,
		Results:    fresh,
		Elapsed:    time.Since(waveStart),
	})
	return fresh
}

func (r *run) emitProgress(phase search.WavePhase, completed, total int, code string, err error) {
	if r.opts.Progress == nil {
		return
	}
	msg := fmt.Sprintf("engine %s completed", code)
	if err != nil {
		msg = fmt.Sprintf("engine %s failed: %v", code, err)
	}
	r.opts.Progress(search.ProgressEvent{
		SearchID:         r.opts.SearchID,
		Phase:            phase,
		EnginesCompleted: completed,
		EnginesTotal:     total,
		ResultsSoFar:     int(r.resultsSoFar.Load()),
		Elapsed:          time.Since(r.started),
		Message:          msg,
	})
}

func (r *run) finalize() *search.ExecutionResult {
	return &search.ExecutionResult{
		AllResults:       r.all,
		UniqueURLs:       len(r.all),
		EnginesSucceeded: r.succeeded,
		EnginesFailed:    r.failed,
		Waves:            r.waves,
	}
}

// runEngine invokes one adapter under the executor's own timeout. The
// adapter runs in its own goroutine so an implementation that ignores
// context cancellation still cannot block the wave. Panics are treated
// the same as returned errors.
func (e *Executor) runEngine(ctx context.Context, code, query string) ([]search.Result, error) {
	eng, ok := e.reg.Engine(code)
	if !ok {
		return nil, fmt.Errorf("engine %q not registered", code)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	type reply struct {
		results []search.Result
		err     error
	}
	done := make(chan reply, 1)

	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- reply{err: fmt.Errorf("engine %q panicked: %v", code, p)}
			}
		}()
		results, err := eng.Search(ctx, query, e.maxPerEngine)
		done <- reply{results: results, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("engine %q: %w", code, ctx.Err())
	case rep := <-done:
		if rep.err != nil {
			return nil, fmt.Errorf("engine %q: %w", code, rep.err)
		}
		return e.normalize(code, rep.results), nil
	}
}

// normalize caps the per-engine result count before merging and stamps
// engine code and tier on records the adapter left blank. The adapter's
// slice is copied first: adapters may serve results from a shared or
// cached backing array, which must never be written to.
func (e *Executor) normalize(code string, results []search.Result) []search.Result {
	n := len(results)
	if n > e.maxPerEngine {
		n = e.maxPerEngine
	}
	out := make([]search.Result, n)
	copy(out, results[:n])

	tier := e.reg.Tier(code)
	for i := range out {
		if out[i].EngineCode == "" {
			out[i].EngineCode = code
		}
		if out[i].Tier == "" {
			out[i].Tier = tier
		}
	}
	return out
}
