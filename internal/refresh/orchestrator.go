package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/five82/salecheck/internal/backend"
	"github.com/five82/salecheck/internal/badge"
	"github.com/five82/salecheck/internal/product"
	"github.com/five82/salecheck/internal/reconcile"
	"github.com/five82/salecheck/internal/state"
	"golang.org/x/sync/singleflight"
)

// Phase is a step of the refresh cycle.
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseChecking
	PhaseFetching
	PhaseMerging
	PhaseCommitting
	PhaseEmpty
	PhaseThrottled
	PhaseFailed
	PhaseCommitted
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseChecking:
		return "checking"
	case PhaseFetching:
		return "fetching"
	case PhaseMerging:
		return "merging"
	case PhaseCommitting:
		return "committing"
	case PhaseEmpty:
		return "empty"
	case PhaseThrottled:
		return "throttled"
	case PhaseFailed:
		return "failed"
	case PhaseCommitted:
		return "committed"
	default:
		return fmt.Sprintf("phase(%d)", int32(p))
	}
}

// Trigger names the wake source that started a cycle.
type Trigger int

const (
	TriggerInstall Trigger = iota
	TriggerStartup
	TriggerTimer
	TriggerManual
)

func (t Trigger) String() string {
	switch t {
	case TriggerInstall:
		return "install"
	case TriggerStartup:
		return "startup"
	case TriggerTimer:
		return "timer"
	case TriggerManual:
		return "manual"
	default:
		return fmt.Sprintf("trigger(%d)", int(t))
	}
}

// Outcome summarizes one cycle. Phase is always terminal: Empty, Throttled,
// Failed or Committed. Err is set only for Failed.
type Outcome struct {
	Trigger   Trigger
	Phase     Phase
	DropCount int
	Tracked   int
	Err       error
	StartedAt time.Time
	Duration  time.Duration
}

// Recorder receives cycle results. *telemetry.Metrics satisfies it.
type Recorder interface {
	ObserveRefresh(trigger, phase string, drops int, duration time.Duration)
	SetTracked(n int)
}

// Orchestrator runs guarded refresh cycles against the store.
type Orchestrator struct {
	store     state.Store
	fetcher   backend.PriceFetcher
	indicator badge.Indicator

	now          func() time.Time
	minInterval  time.Duration
	fetchTimeout time.Duration
	recorder     Recorder
	logger       *slog.Logger

	group singleflight.Group
	phase atomic.Int32
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithMinInterval sets the throttle interval.
func WithMinInterval(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.minInterval = d
		}
	}
}

// WithFetchTimeout bounds the remote fetch independently of the caller's context.
func WithFetchTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.fetchTimeout = d }
}

func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// New builds an Orchestrator.
func New(store state.Store, fetcher backend.PriceFetcher, indicator badge.Indicator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:       store,
		fetcher:     fetcher,
		indicator:   indicator,
		now:         time.Now,
		minInterval: DefaultMinInterval,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Phase returns the step the current cycle is in, or PhaseIdle.
func (o *Orchestrator) Phase() Phase {
	return Phase(o.phase.Load())
}

// Run executes one cycle. Concurrent calls share the in-flight cycle and its
// outcome, including the trigger that started it. The shared cycle runs under
// the first caller's ctx, so cancelling it ends the cycle for everyone. A
// later caller whose own ctx ends first stops waiting and gets a Failed
// outcome carrying ctx.Err(); the shared cycle keeps running.
func (o *Orchestrator) Run(ctx context.Context, trigger Trigger) Outcome {
	ch := o.group.DoChan("refresh", func() (any, error) {
		return o.cycle(ctx, trigger), nil
	})
	select {
	case res := <-ch:
		return res.Val.(Outcome)
	case <-ctx.Done():
		return Outcome{Trigger: trigger, Phase: PhaseFailed, Err: ctx.Err(), StartedAt: o.now()}
	}
}

var errSuperseded = errors.New("refreshed by another writer")

func (o *Orchestrator) cycle(ctx context.Context, trigger Trigger) (out Outcome) {
	out = Outcome{Trigger: trigger, StartedAt: o.now()}
	defer func() {
		out.Duration = o.now().Sub(out.StartedAt)
		o.phase.Store(int32(PhaseIdle))
		o.report(out)
	}()

	o.setPhase(PhaseChecking)
	snap, err := o.store.Load(ctx)
	if err != nil {
		return o.fail(out, fmt.Errorf("load state: %w", err))
	}
	out.Tracked = len(snap.Products)
	if len(snap.Products) == 0 {
		out.Phase = PhaseEmpty
		return out
	}
	if !ShouldRefresh(out.StartedAt, snap.LastUpdate, o.minInterval) {
		out.Phase = PhaseThrottled
		return out
	}

	o.setPhase(PhaseFetching)
	fetchCtx := ctx
	if o.fetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, o.fetchTimeout)
		defer cancel()
	}
	fresh, err := o.fetcher.RefreshPrices(fetchCtx, product.IDs(snap.Products))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, backend.ErrRemoteUnavailable) {
			err = fmt.Errorf("%w: %w", backend.ErrRemoteUnavailable, err)
		}
		return o.fail(out, fmt.Errorf("fetch prices: %w", err))
	}

	o.setPhase(PhaseMerging)
	var drops int
	committed, err := o.store.Update(ctx, func(cur *state.Snapshot) error {
		now := o.now()
		if !ShouldRefresh(now, cur.LastUpdate, o.minInterval) {
			return errSuperseded
		}
		o.setPhase(PhaseCommitting)
		res := reconcile.Reconcile(cur.Products, fresh)
		cur.Products = res.Merged
		cur.LastUpdate = &now
		drops = res.DropCount
		return nil
	})
	if errors.Is(err, errSuperseded) {
		out.Phase = PhaseThrottled
		return out
	}
	if err != nil {
		return o.fail(out, fmt.Errorf("commit state: %w", err))
	}
	out.Tracked = len(committed.Products)

	if err := o.indicator.Set(ctx, drops); err != nil {
		o.logger.Warn("Failed to update drop indicator", "drops", drops, "error", err)
	}
	out.Phase = PhaseCommitted
	out.DropCount = drops
	return out
}

func (o *Orchestrator) setPhase(p Phase) {
	o.phase.Store(int32(p))
}

func (o *Orchestrator) fail(out Outcome, err error) Outcome {
	out.Phase = PhaseFailed
	out.Err = err
	return out
}

func (o *Orchestrator) report(out Outcome) {
	attrs := []any{
		"trigger", out.Trigger.String(),
		"phase", out.Phase.String(),
		"tracked", out.Tracked,
		"drops", out.DropCount,
		"duration", out.Duration,
	}
	if out.Err != nil {
		o.logger.Error("Refresh cycle failed", append(attrs, "error", out.Err)...)
	} else {
		o.logger.Info("Refresh cycle finished", attrs...)
	}

	if o.recorder == nil {
		return
	}
	o.recorder.ObserveRefresh(out.Trigger.String(), out.Phase.String(), out.DropCount, out.Duration)
	if out.Phase != PhaseFailed {
		o.recorder.SetTracked(out.Tracked)
	}
}
