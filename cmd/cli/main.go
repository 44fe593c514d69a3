package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"option-live/internal/config"
	"option-live/internal/data"
	"option-live/internal/logging"
	"option-live/internal/model"
	"option-live/internal/page"
	"option-live/internal/render"
	"option-live/internal/session"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// errInputClosed ends a watch session once stdin is exhausted and the
// controller has settled.
var errInputClosed = errors.New("input closed")

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "watch":
		cmdWatch(os.Args[2:])
	case "quote":
		cmdQuote(os.Args[2:])
	case "config":
		cmdConfig(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli watch [--config examples/config.yaml] [--metrics-addr :9100] [--no-greeks]")
	fmt.Println("  cli quote [--config examples/config.yaml] [field=value ...]")
	fmt.Println("  cli config [--config examples/config.yaml]")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - watch reads field=value lines on stdin (e.g. stock_price=105) and prints the outputs after each render")
	fmt.Println("  - fields: stock_price, strike_price, interest_rate, maturity, volatility")
	fmt.Println("  - PRICING_SERVICE_URL overrides service.url")
}

func cmdWatch(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML config (optional)")
	metricsAddr := fs.String("metrics-addr", "", "Optional: serve Prometheus metrics on this address")
	noGreeks := fs.Bool("no-greeks", false, "Build the page without Greek outputs")
	_ = fs.Parse(args)

	cfg := loadConfig(*cfgPath)
	logger, closer := newLogger(cfg)
	defer closer.Close()

	var out sync.Mutex
	reg := prometheus.NewRegistry()
	s, err := session.New(cfg, session.Options{
		Logger:     logger,
		Registerer: reg,
		NoGreeks:   *noGreeks,
		OnRender: func(seq uint64, st render.DisplayState) {
			out.Lock()
			defer out.Unlock()
			_ = session.WriteDisplay(os.Stdout, seq, st)
		},
	})
	if errors.Is(err, page.ErrFormMissing) {
		// No form, no controller.
		logger.Info("pricing form not present; nothing to watch", "error", err)
		return
	}
	if err != nil {
		die("session", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.Run(ctx) })
	g.Go(func() error { return readEdits(ctx, os.Stdin, cfg, s, logger) })
	if *metricsAddr != "" {
		srv := &http.Server{
			Addr:              *metricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info("serving metrics", "addr", *metricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	fmt.Printf("watching %s (debounce %s); type field=value, Ctrl-D to finish\n", cfg.Service.URL, cfg.Debounce)
	if err := g.Wait(); err != nil && !errors.Is(err, errInputClosed) && !errors.Is(err, context.Canceled) {
		die("watch", err)
	}
}

// readEdits applies stdin lines to the page. At EOF it waits for the
// controller to go idle so the last edit still renders.
func readEdits(ctx context.Context, r io.Reader, cfg *config.Config, s *session.Session, logger *slog.Logger) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return settle(ctx, s, cfg)
			}
			if line == "" {
				continue
			}
			f, v, err := session.ParseEdit(line)
			if err != nil {
				logger.Warn("ignoring line", "error", err)
				continue
			}
			in, err := s.Input(cfg, f)
			if err != nil {
				return err
			}
			in.SetValue(v)
		}
	}
}

func settle(ctx context.Context, s *session.Session, cfg *config.Config) error {
	// The quiet interval may not have started yet when stdin closes.
	t := time.NewTimer(cfg.Debounce)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
		return ctx.Err()
	}

	tick := time.NewTicker(20 * time.Millisecond)
	defer tick.Stop()
	for {
		idle, err := s.Controller.Idle(ctx)
		if err != nil {
			return err
		}
		if idle {
			return errInputClosed
		}
		select {
		case <-tick.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func cmdQuote(args []string) {
	fs := flag.NewFlagSet("quote", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML config (optional)")
	_ = fs.Parse(args)

	cfg := loadConfig(*cfgPath)
	logger, closer := newLogger(cfg)
	defer closer.Close()

	values := make(map[model.Field]string, len(cfg.Defaults))
	for f, v := range cfg.Defaults {
		values[f] = v
	}
	for _, arg := range fs.Args() {
		f, v, err := session.ParseEdit(arg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		values[f] = v
	}

	var in model.Inputs
	for _, f := range model.Fields {
		v, ok := model.ParseValue(values[f])
		if !ok {
			fmt.Fprintf(os.Stderr, "%s must be a positive number, got %q\n", f, values[f])
			os.Exit(2)
		}
		in.Set(f, v)
	}

	client := data.NewPricingClient(cfg.Service.URL, cfg.Service.Timeout)
	client.Logger = logger.With("component", "pricing_client")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Service.Timeout)
	defer cancel()
	res, err := client.Calculate(ctx, in)
	if err != nil {
		logger.Warn("pricing request failed", "kind", data.Kind(err), "error", err)
		os.Exit(1)
	}

	if err := session.WriteDisplay(os.Stdout, 1, render.Format(*res)); err != nil {
		die("print", err)
	}
}

func cmdConfig(args []string) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML config (optional)")
	_ = fs.Parse(args)

	cfg, err := config.LoadUnchecked(*cfgPath)
	if err != nil {
		die("config", err)
	}
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		die("config", err)
	}
	os.Stdout.Write(raw)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		die("config", err)
	}
	return cfg
}

func newLogger(cfg *config.Config) (*slog.Logger, io.Closer) {
	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		die("logging", err)
	}
	slog.SetDefault(logger)
	return logger, closer
}

func die(what string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", what, err)
	os.Exit(1)
}
