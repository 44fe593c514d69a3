package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"option-live/internal/logging"
	"option-live/internal/metrics"
	"option-live/internal/model"
	"option-live/internal/page"
	"option-live/internal/render"
)

// fakeClock only fires timers when told to.
type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeTimer struct {
	mu      sync.Mutex
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	wasActive := !t.stopped && !t.fired
	t.stopped = true
	return wasActive
}

func (c *fakeClock) AfterFunc(_ time.Duration, f func()) Timer {
	t := &fakeTimer{f: f}
	c.mu.Lock()
	c.timers = append(c.timers, t)
	c.mu.Unlock()
	return t
}

// Fire runs every pending timer and returns how many fired.
func (c *fakeClock) Fire() int {
	c.mu.Lock()
	timers := append([]*fakeTimer(nil), c.timers...)
	c.mu.Unlock()

	n := 0
	for _, t := range timers {
		t.mu.Lock()
		run := !t.stopped && !t.fired
		t.fired = t.fired || run
		t.mu.Unlock()
		if run {
			t.f()
			n++
		}
	}
	return n
}

func (c *fakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		t.mu.Lock()
		if !t.stopped && !t.fired {
			n++
		}
		t.mu.Unlock()
	}
	return n
}

type outcome struct {
	res *model.PricingResult
	err error
}

type call struct {
	in    model.Inputs
	reply chan outcome
}

// fakePricer hands every call to the test, which answers it explicitly.
type fakePricer struct {
	calls chan call
}

func (p *fakePricer) Calculate(ctx context.Context, in model.Inputs) (*model.PricingResult, error) {
	c := call{in: in, reply: make(chan outcome, 1)}
	p.calls <- c
	select {
	case o := <-c.reply:
		return o.res, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type harness struct {
	ctrl    *Controller
	clock   *fakeClock
	pricer  *fakePricer
	doc     *page.MemDocument
	metrics *metrics.Controller
	renders chan uint64
}

var defaultValues = map[model.Field]string{
	model.StockPrice:   "100",
	model.StrikePrice:  "100",
	model.InterestRate: "0.05",
	model.Maturity:     "1",
	model.Volatility:   "0.2",
}

func newHarness(t *testing.T, withGreeks bool) *harness {
	t.Helper()

	ids := page.DefaultIDs()
	doc := page.NewFormDocument(ids, defaultValues, withGreeks)
	b, err := page.Resolve(doc, ids)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	h := &harness{
		clock:   &fakeClock{},
		pricer:  &fakePricer{calls: make(chan call, 16)},
		doc:     doc,
		metrics: metrics.NewController(nil),
		renders: make(chan uint64, 16),
	}
	h.ctrl = New(b, h.pricer, Options{
		Clock:   h.clock,
		Logger:  logging.Discard(),
		Metrics: h.metrics,
		OnRender: func(seq uint64, _ render.DisplayState) {
			h.renders <- seq
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- h.ctrl.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-errc; err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("run: %v", err)
		}
	})
	return h
}

func (h *harness) edit(t *testing.T, f model.Field, v string) {
	t.Helper()
	in, ok := h.doc.MemInput(string(f))
	if !ok {
		t.Fatalf("no input %s", f)
	}
	in.SetValue(v)
}

func (h *harness) settle(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.ctrl.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
}

// elapse lets the quiet interval pass and returns how many timers fired.
func (h *harness) elapse(t *testing.T) int {
	t.Helper()
	h.settle(t)
	n := h.clock.Fire()
	h.settle(t)
	return n
}

func (h *harness) nextCall(t *testing.T) call {
	t.Helper()
	select {
	case c := <-h.pricer.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("expected a pricing request")
		return call{}
	}
}

func (h *harness) noCall(t *testing.T) {
	t.Helper()
	select {
	case c := <-h.pricer.calls:
		t.Fatalf("expected no request, got %+v", c.in)
	case <-time.After(50 * time.Millisecond):
	}
}

func (h *harness) waitRender(t *testing.T) uint64 {
	t.Helper()
	select {
	case seq := <-h.renders:
		return seq
	case <-time.After(2 * time.Second):
		t.Fatal("expected a render")
		return 0
	}
}

func (h *harness) text(t *testing.T, id string) string {
	t.Helper()
	el, ok := h.doc.MemElement(id)
	if !ok {
		t.Fatalf("no element %s", id)
	}
	return el.Text()
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func prices(call, put float64) *model.PricingResult {
	return &model.PricingResult{CallPrice: call, PutPrice: put}
}
