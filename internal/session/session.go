// Package session assembles a running controller from configuration: the
// pricing client, an in-memory page pre-filled with the configured defaults,
// and the dispatcher bound to it.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"option-live/internal/config"
	"option-live/internal/data"
	"option-live/internal/dispatch"
	"option-live/internal/metrics"
	"option-live/internal/model"
	"option-live/internal/page"
	"option-live/internal/render"

	"github.com/prometheus/client_golang/prometheus"
)

// Options customise New beyond the configuration file.
type Options struct {
	Logger     *slog.Logger
	Registerer prometheus.Registerer
	// Pricer replaces the HTTP client; used by tests and offline demos.
	Pricer   dispatch.Pricer
	OnRender func(seq uint64, st render.DisplayState)
	// NoGreeks builds a page without Greek outputs.
	NoGreeks bool
}

// Session is one page plus the controller keeping it current.
type Session struct {
	Doc        *page.MemDocument
	Controller *dispatch.Controller
	Metrics    *metrics.Controller

	cache *data.ResponseCache
}

// New builds a session from cfg. It fails with page.ErrFormMissing when the
// configured ids do not describe a complete form.
func New(cfg *config.Config, opts Options) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	doc := page.NewFormDocument(cfg.Elements, cfg.Defaults, !opts.NoGreeks)
	b, err := page.Resolve(doc, cfg.Elements)
	if err != nil {
		return nil, err
	}

	s := &Session{
		Doc:     doc,
		Metrics: metrics.NewController(opts.Registerer),
	}

	pricer := opts.Pricer
	if pricer == nil {
		client := data.NewPricingClient(cfg.Service.URL, cfg.Service.Timeout)
		client.Logger = logger.With("component", "pricing_client")
		if cfg.Service.Cache.Enabled {
			s.cache = data.NewResponseCache(cfg.Service.Cache.TTL)
			client.Cache = s.cache
		}
		pricer = client
	}

	s.Controller = dispatch.New(b, pricer, dispatch.Options{
		Quiet:    cfg.Debounce,
		Logger:   logger,
		Metrics:  s.Metrics,
		OnRender: opts.OnRender,
	})
	return s, nil
}

// Run drives the controller until ctx is done.
func (s *Session) Run(ctx context.Context) error {
	defer s.cache.Close()
	return s.Controller.Run(ctx)
}

// Input returns the page input bound to f.
func (s *Session) Input(cfg *config.Config, f model.Field) (*page.MemInput, error) {
	in, ok := s.Doc.MemInput(cfg.Elements.Inputs[f])
	if !ok {
		return nil, fmt.Errorf("%w: input %q", page.ErrFormMissing, f)
	}
	return in, nil
}

// ParseEdit splits a "field=value" line. The value is kept verbatim so that
// invalid text reaches the form exactly as typed.
func ParseEdit(line string) (model.Field, string, error) {
	name, value, ok := strings.Cut(strings.TrimSpace(line), "=")
	if !ok {
		return "", "", fmt.Errorf("expected field=value, got %q", line)
	}
	f := model.Field(strings.TrimSpace(name))
	for _, k := range model.Fields {
		if k == f {
			return f, strings.TrimSpace(value), nil
		}
	}
	return "", "", fmt.Errorf("unknown field %q (want one of %s)", name, fieldList())
}

func fieldList() string {
	names := make([]string, len(model.Fields))
	for i, f := range model.Fields {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
