package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"option-live/internal/data"
	"option-live/internal/model"

	"golang.org/x/sync/errgroup"
)

func main() {
	var (
		serviceURL  = flag.String("service", "", "Calculation service URL (default: $PRICING_SERVICE_URL or "+data.DefaultURL+")")
		outputPath  = flag.String("output", "", "Output file path (default: ./data/fixtures.yaml)")
		seedFile    = flag.String("seed", "", "Path to existing fixtures file to merge into")
		stocks      = flag.String("stock", "90,100,110", "Comma-separated stock prices")
		strikes     = flag.String("strike", "100", "Comma-separated strike prices")
		rates       = flag.String("rate", "0.05", "Comma-separated interest rates")
		maturities  = flag.String("maturity", "1", "Comma-separated maturities in years")
		vols        = flag.String("vol", "0.2", "Comma-separated volatilities")
		concurrency = flag.Int("concurrency", 4, "Maximum concurrent requests")
		timeout     = flag.Duration("timeout", 10*time.Second, "Per-request timeout")
	)
	flag.Parse()

	if *serviceURL == "" {
		*serviceURL = os.Getenv("PRICING_SERVICE_URL")
	}
	if *outputPath == "" {
		*outputPath = data.GetDefaultFixturesPath()
	}

	grid, err := buildGrid(*stocks, *strikes, *rates, *maturities, *vols)
	if err != nil {
		log.Fatalf("Invalid grid: %v", err)
	}

	client := data.NewPricingClient(*serviceURL, *timeout)

	// Load existing fixtures as seed if provided
	var existing []data.Fixture
	seedPath := *seedFile
	if seedPath == "" {
		seedPath = *outputPath
	}
	if set, err := data.LoadFixtures(seedPath); err == nil {
		existing = set.Fixtures
		fmt.Printf("Loaded %d existing fixtures from %s\n", len(existing), seedPath)
	}

	fmt.Printf("Recording %d input combinations from %s...\n", len(grid), client.URL)

	recorded, err := record(context.Background(), client, grid, *concurrency)
	if err != nil {
		log.Fatalf("Failed to record fixtures: %v", err)
	}

	fixtures := mergeFixtures(existing, recorded)
	set := &data.FixtureSet{
		Service:   client.URL,
		UpdatedAt: time.Now().Format(time.RFC3339),
		Fixtures:  fixtures,
	}

	// Save to file
	if err := data.SaveFixtures(set, *outputPath); err != nil {
		log.Fatalf("Failed to save fixtures: %v", err)
	}

	fmt.Printf("Saved %d fixtures to %s\n", len(fixtures), *outputPath)
}

// record queries every grid point with at most limit requests in flight.
// Failed points are reported and skipped; the run only fails if nothing succeeds.
func record(ctx context.Context, client *data.PricingClient, grid []model.Inputs, limit int) ([]data.Fixture, error) {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	var mu sync.Mutex
	out := make([]data.Fixture, 0, len(grid))
	failed := 0

	for _, in := range grid {
		in := in
		g.Go(func() error {
			res, err := client.Calculate(ctx, in)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				fmt.Printf("  ⚠️  Warning: %s failed (%s): %v\n", fixtureName(in), data.Kind(err), err)
				return nil
			}
			out = append(out, data.Fixture{
				Name:     fixtureName(in),
				Inputs:   in,
				Response: model.NewCalculateResponse(*res),
			})
			fmt.Printf("  ✓ Recorded: %s\n", fixtureName(in))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fmt.Printf("Successfully recorded %d/%d fixtures\n", len(out), len(grid))
	if len(out) == 0 && failed > 0 {
		return nil, fmt.Errorf("all %d requests failed", failed)
	}
	return out, nil
}

// mergeFixtures replaces seed entries with freshly recorded ones for the same inputs.
func mergeFixtures(seed, recorded []data.Fixture) []data.Fixture {
	byName := make(map[string]data.Fixture, len(seed)+len(recorded))
	for _, f := range seed {
		byName[fixtureKey(f)] = f
	}
	for _, f := range recorded {
		byName[fixtureKey(f)] = f
	}

	out := make([]data.Fixture, 0, len(byName))
	for _, f := range byName {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func fixtureKey(f data.Fixture) string {
	return data.CacheKey(f.Inputs)
}

func fixtureName(in model.Inputs) string {
	return fmt.Sprintf("s%g_k%g_r%g_t%g_v%g", in.StockPrice, in.StrikePrice, in.InterestRate, in.Maturity, in.Volatility)
}

func buildGrid(stocks, strikes, rates, maturities, vols string) ([]model.Inputs, error) {
	axes := make([][]float64, len(model.Fields))
	for i, raw := range []string{stocks, strikes, rates, maturities, vols} {
		vals, err := parseList(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", model.Fields[i], err)
		}
		axes[i] = vals
	}

	grid := []model.Inputs{{}}
	for i, f := range model.Fields {
		next := make([]model.Inputs, 0, len(grid)*len(axes[i]))
		for _, base := range grid {
			for _, v := range axes[i] {
				in := base
				in.Set(f, v)
				next = append(next, in)
			}
		}
		grid = next
	}
	return grid, nil
}

func parseList(raw string) ([]float64, error) {
	var out []float64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil || !model.Valid(v) {
			return nil, fmt.Errorf("%q is not a positive number", part)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no values")
	}
	return out, nil
}
