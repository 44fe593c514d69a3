package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"option-live/internal/api/handlers"
	"option-live/internal/api/router"
	"option-live/internal/data"
	"option-live/internal/logging"
	"option-live/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Get configuration from environment
	port := os.Getenv("API_PORT")
	if port == "" {
		port = "5000"
	}

	logger, closer, err := logging.New(logging.Config{
		Level:    os.Getenv("LOG_LEVEL"),
		Format:   os.Getenv("LOG_FORMAT"),
		Output:   os.Getenv("LOG_OUTPUT"),
		FilePath: os.Getenv("LOG_FILE"),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()
	slog.SetDefault(logger)

	// Load fixtures; a missing file serves an empty set rather than failing.
	fixturesPath := data.GetDefaultFixturesPath()
	set, err := data.LoadFixtures(fixturesPath)
	switch {
	case err == nil:
		logger.Info("loaded fixtures", "path", fixturesPath, "count", len(set.Fixtures))
	case errors.Is(err, os.ErrNotExist):
		logger.Warn("fixtures file not found, serving none", "path", fixturesPath)
		set = &data.FixtureSet{}
	default:
		logger.Error("failed to load fixtures", "path", fixturesPath, "error", err)
		os.Exit(1)
	}

	// Set up Gin router
	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	calc := handlers.NewCalculateHandler(set, metrics.NewAPI(reg), logger)
	engine := router.NewRouter(calc, router.Options{
		Logger:      logger,
		Gatherer:    reg,
		CORSOrigins: splitOrigins(os.Getenv("CORS_ORIGINS")),
	})

	// Reload fixtures on SIGHUP.
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		for range hup {
			next, err := data.LoadFixtures(fixturesPath)
			if err != nil {
				logger.Warn("fixture reload failed", "path", fixturesPath, "error", err)
				continue
			}
			calc.SetFixtures(next)
			logger.Info("reloaded fixtures", "path", fixturesPath, "count", len(next.Fixtures))
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		logger.Error("listen failed", "addr", srv.Addr, "error", err)
		os.Exit(1)
	}

	// Start server
	logger.Info("starting fixture API", "addr", srv.Addr)
	if err := serve(ctx, srv, ln, 10*time.Second); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("fixture API stopped")
}

// serve runs srv on ln until ctx is done, then drains in-flight requests
// for up to grace before returning.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, grace time.Duration) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
