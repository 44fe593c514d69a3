package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"option-live/internal/data"
	"option-live/internal/logging"
	"option-live/internal/model"
)

func TestBuildGrid(t *testing.T) {
	grid, err := buildGrid("90,100", "100", "0.05", "0.5,1", "0.2")
	if err != nil {
		t.Fatal(err)
	}
	if len(grid) != 4 {
		t.Fatalf("expected 4 combinations, got %d", len(grid))
	}
	for _, in := range grid {
		if _, ok := in.Validate(); !ok {
			t.Fatalf("grid point %+v is not valid", in)
		}
	}

	if _, err := buildGrid("100", "-1", "0.05", "1", "0.2"); err == nil {
		t.Fatal("expected error for negative strike")
	}
	if _, err := buildGrid("100", "100", "", "1", "0.2"); err == nil {
		t.Fatal("expected error for empty axis")
	}
}

func TestRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in model.Inputs
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if in.StockPrice == 110 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]float64{
			"call_price": in.StockPrice / 10,
			"put_price":  in.StrikePrice / 20,
		})
	}))
	defer srv.Close()

	client := data.NewPricingClient(srv.URL, 5*time.Second)
	client.Logger = logging.Discard()

	grid, err := buildGrid("90,100,110", "100", "0.05", "1", "0.2")
	if err != nil {
		t.Fatal(err)
	}

	fixtures, err := record(context.Background(), client, grid, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(fixtures) != 2 {
		t.Fatalf("expected 2 recorded fixtures (one failure skipped), got %d", len(fixtures))
	}
	for _, f := range fixtures {
		if f.Response.CallPrice == nil || *f.Response.CallPrice != f.Inputs.StockPrice/10 {
			t.Fatalf("unexpected response for %s: %+v", f.Name, f.Response)
		}
	}
}

func TestMergeFixtures(t *testing.T) {
	in := model.Inputs{StockPrice: 100, StrikePrice: 100, InterestRate: 0.05, Maturity: 1, Volatility: 0.2}
	old, fresh := 1.0, 2.0
	seed := []data.Fixture{
		{Name: fixtureName(in), Inputs: in, Response: model.CalculateResponse{CallPrice: &old, PutPrice: &old}},
		{Name: "slow", Inputs: model.Inputs{StockPrice: 1, StrikePrice: 1, InterestRate: 1, Maturity: 1, Volatility: 1}, DelayMS: 500},
	}
	recorded := []data.Fixture{
		{Name: fixtureName(in), Inputs: in, Response: model.CalculateResponse{CallPrice: &fresh, PutPrice: &fresh}},
	}

	out := mergeFixtures(seed, recorded)
	if len(out) != 2 {
		t.Fatalf("expected 2 fixtures, got %d", len(out))
	}
	for _, f := range out {
		if f.Name == fixtureName(in) && *f.Response.CallPrice != 2 {
			t.Fatalf("expected fresh recording to win, got %v", *f.Response.CallPrice)
		}
	}
}
