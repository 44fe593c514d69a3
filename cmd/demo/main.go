package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"option-live/internal/api/handlers"
	"option-live/internal/api/router"
	"option-live/internal/config"
	"option-live/internal/data"
	"option-live/internal/logging"
	"option-live/internal/render"
	"option-live/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// Demo:
// - Load a typing script (examples/scripts/burst.yaml)
// - Optionally start the fixture API in-process and point the client at it
// - Replay the keystrokes through the full controller and print every render
// - Print the controller counters: attempts, skipped, stale discards, failures
func main() {
	scriptPath := flag.String("script", "examples/scripts/burst.yaml", "Path to YAML typing script")
	cfgPath := flag.String("config", "", "Path to YAML config (optional)")
	fixturesPath := flag.String("fixtures", "", "Optional: serve this fixture file in-process instead of calling service.url")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fail(err)
	}
	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		fail(err)
	}
	defer closer.Close()

	script, err := session.LoadScript(*scriptPath)
	if err != nil {
		fail(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *fixturesPath != "" {
		url, err := serveFixtures(ctx, *fixturesPath, logger)
		if err != nil {
			fail(err)
		}
		cfg.Service.URL = url
	}

	reg := prometheus.NewRegistry()
	start := time.Now()
	s, err := session.New(cfg, session.Options{
		Logger:     logger,
		Registerer: reg,
		OnRender: func(seq uint64, st render.DisplayState) {
			fmt.Printf("[%6s] ", time.Since(start).Round(time.Millisecond))
			_ = session.WriteDisplay(os.Stdout, seq, st)
		},
	})
	if err != nil {
		fail(err)
	}

	name := script.Name
	if name == "" {
		name = *scriptPath
	}
	fmt.Printf("Replaying %q (%d steps) against %s, debounce %s\n", name, len(script.Steps), cfg.Service.URL, cfg.Debounce)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.Run(gctx) })
	g.Go(func() error {
		defer cancel()
		if err := s.Play(gctx, cfg, script); err != nil {
			return err
		}
		// Let the last quiet interval and its request finish.
		deadline := time.Now().Add(cfg.Debounce + cfg.Service.Timeout)
		for time.Now().Before(deadline) {
			time.Sleep(cfg.Debounce)
			if idle, err := s.Controller.Idle(gctx); err != nil || idle {
				return err
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		fail(err)
	}

	printCounters(reg)
}

// serveFixtures starts the fixture API on a loopback port and returns its calculate URL.
func serveFixtures(ctx context.Context, path string, logger *slog.Logger) (string, error) {
	set, err := data.LoadFixtures(path)
	if err != nil {
		return "", err
	}

	gin.SetMode(gin.ReleaseMode)
	calc := handlers.NewCalculateHandler(set, nil, logger)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	srv := &http.Server{Handler: router.NewRouter(calc, router.Options{Logger: logging.Discard()})}
	go func() { _ = srv.Serve(ln) }()
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	fmt.Printf("Serving %d fixtures from %s on %s\n", len(set.Fixtures), path, ln.Addr())
	return "http://" + ln.Addr().String() + "/api/calculate", nil
}

func printCounters(reg prometheus.Gatherer) {
	mfs, err := reg.Gather()
	if err != nil {
		return
	}
	fmt.Println("\nCounters:")
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			if m.GetCounter() == nil {
				continue
			}
			name := strings.TrimPrefix(mf.GetName(), "option_live_")
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			fmt.Printf("  %-40s %g\n", name, m.GetCounter().GetValue())
		}
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
