// Package dispatch keeps the page's pricing outputs in step with its inputs.
//
// Edits are debounced (trailing edge), validated against live values when
// the quiet interval elapses, and sent to the calculation service in the
// background. Every state change runs on a single event loop, so the
// "latest issued sequence number" and the page outputs need no locks. A
// response whose sequence number is not the latest is dropped.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"option-live/internal/data"
	"option-live/internal/form"
	"option-live/internal/metrics"
	"option-live/internal/model"
	"option-live/internal/page"
	"option-live/internal/render"
)

// DefaultQuiet is the debounce interval used when Options.Quiet is zero.
const DefaultQuiet = 300 * time.Millisecond

// Pricer computes prices for a validated snapshot.
type Pricer interface {
	Calculate(ctx context.Context, in model.Inputs) (*model.PricingResult, error)
}

// Options tune a Controller. The zero value is usable.
type Options struct {
	Quiet   time.Duration
	Clock   Clock
	Logger  *slog.Logger
	Metrics *metrics.Controller
	// OnRender runs on the loop after each successful render.
	OnRender func(seq uint64, st render.DisplayState)
}

// Controller is the debounced dispatcher wired to an input set and a renderer.
type Controller struct {
	loop     *Loop
	clock    Clock
	quiet    time.Duration
	inputs   *form.InputSet
	renderer *render.Renderer
	pricer   Pricer
	log      *slog.Logger
	metrics  *metrics.Controller
	onRender func(uint64, render.DisplayState)

	// Loop-owned state.
	timer       Timer
	gen         uint64
	latest      uint64
	outstanding int
	ctx         context.Context

	issued   atomic.Uint64
	inflight sync.WaitGroup
	running  atomic.Bool
}

// New binds a controller to the page. Edit listeners are attached
// immediately; nothing is dispatched until Run is called.
func New(b *page.Bindings, p Pricer, opts Options) *Controller {
	if opts.Quiet <= 0 {
		opts.Quiet = DefaultQuiet
	}
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewController(nil)
	}

	c := &Controller{
		loop:     NewLoop(),
		clock:    opts.Clock,
		quiet:    opts.Quiet,
		inputs:   form.NewInputSet(b.Inputs),
		renderer: render.New(b),
		pricer:   p,
		log:      opts.Logger.With("component", "dispatcher"),
		metrics:  opts.Metrics,
		onRender: opts.OnRender,
		ctx:      context.Background(),
	}
	c.inputs.Watch(c.Notify)
	return c
}

// Run drives the controller until ctx is done. In-flight requests are
// cancelled and awaited before Run returns.
func (c *Controller) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return nil
	}
	reqCtx, cancel := context.WithCancel(ctx)
	// The loop is not running yet, so this write cannot race with it.
	c.ctx = reqCtx

	err := c.loop.Run(ctx)

	cancel()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.inflight.Wait()
	return err
}

// Notify signals that an input changed. Safe to call from any goroutine.
func (c *Controller) Notify() {
	c.loop.Post(c.schedule)
}

// Flush waits until all work queued so far has run on the loop.
func (c *Controller) Flush(ctx context.Context) error {
	return c.loop.Flush(ctx)
}

// Latest returns the sequence number of the most recently issued request.
func (c *Controller) Latest() uint64 {
	return c.issued.Load()
}

// Display reads the current outputs on the loop.
func (c *Controller) Display(ctx context.Context) (render.DisplayState, error) {
	var st render.DisplayState
	done := make(chan struct{})
	if !c.loop.Post(func() {
		st = c.renderer.State()
		close(done)
	}) {
		return st, ErrLoopClosed
	}
	select {
	case <-done:
		return st, nil
	case <-ctx.Done():
		return st, ctx.Err()
	}
}

// Idle reports whether no quiet interval is pending and every issued request
// has completed.
func (c *Controller) Idle(ctx context.Context) (bool, error) {
	var idle bool
	done := make(chan struct{})
	if !c.loop.Post(func() {
		idle = c.timer == nil && c.outstanding == 0
		close(done)
	}) {
		return false, ErrLoopClosed
	}
	select {
	case <-done:
		return idle, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// schedule restarts the quiet interval. The generation check voids a timer
// that already fired but whose callback has not reached the loop yet.
func (c *Controller) schedule() {
	if c.timer != nil {
		c.timer.Stop()
	}
	c.gen++
	gen := c.gen
	c.timer = c.clock.AfterFunc(c.quiet, func() {
		c.loop.Post(func() { c.fire(gen) })
	})
}

func (c *Controller) fire(gen uint64) {
	if gen != c.gen {
		return
	}
	c.timer = nil

	in, ok := c.inputs.Values()
	if !ok {
		// Invalid input is silent: no request, no log.
		c.metrics.SkippedInvalid.Inc()
		return
	}

	c.latest++
	c.issued.Store(c.latest)
	req := model.RecomputeRequest{Seq: c.latest, Inputs: in}
	c.metrics.Attempts.Inc()

	c.outstanding++
	c.inflight.Add(1)
	go c.request(c.ctx, req)
}

func (c *Controller) request(ctx context.Context, req model.RecomputeRequest) {
	defer c.inflight.Done()

	start := time.Now()
	res, err := c.pricer.Calculate(ctx, req.Inputs)
	elapsed := time.Since(start)

	c.loop.Post(func() { c.complete(req, res, err, elapsed) })
}

func (c *Controller) complete(req model.RecomputeRequest, res *model.PricingResult, err error, elapsed time.Duration) {
	c.outstanding--
	c.metrics.RoundTrip.Observe(elapsed.Seconds())

	if err == nil && res == nil {
		err = fmt.Errorf("%w: empty result", data.ErrMalformedResponse)
	}
	if err != nil {
		if c.ctx.Err() != nil {
			return
		}
		kind := data.Kind(err)
		c.metrics.Failures.WithLabelValues(kind).Inc()
		c.log.Warn("pricing request failed",
			"seq", req.Seq,
			"latest", c.latest,
			"kind", kind,
			"duration", elapsed,
			"error", err)
		return
	}

	if !c.renderer.Apply(req.Seq, c.latest, res) {
		c.metrics.StaleDiscarded.Inc()
		c.log.Debug("discarded stale response", "seq", req.Seq, "latest", c.latest)
		return
	}

	c.metrics.Rendered.Inc()
	c.log.Debug("rendered", "seq", req.Seq, "duration", elapsed)
	if c.onRender != nil {
		c.onRender(req.Seq, c.renderer.State())
	}
}
