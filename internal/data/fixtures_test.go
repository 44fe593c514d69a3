package data

import (
	"os"
	"path/filepath"
	"testing"

	"option-live/internal/model"
)

func TestFixtures_SaveLoadMatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "fixtures.yaml")

	resp := model.NewCalculateResponse(model.PricingResult{CallPrice: 10.4506, PutPrice: 5.5735})
	set := &FixtureSet{
		Service: "http://localhost:5000/api/calculate",
		Fixtures: []Fixture{
			{Name: "atm", Inputs: validInputs, Response: resp, DelayMS: 50},
		},
	}
	if err := SaveFixtures(set, path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadFixtures(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	f, ok := loaded.Match(model.Inputs{StockPrice: 100, StrikePrice: 100, InterestRate: 0.05, Maturity: 1, Volatility: 0.2})
	if !ok {
		t.Fatal("expected fixture match")
	}
	if f.DelayMS != 50 || f.Response.CallPrice == nil || *f.Response.CallPrice != 10.4506 {
		t.Fatalf("unexpected fixture: %+v", f)
	}
	if f.Response.DeltaCall != nil {
		t.Fatal("expected greeks to stay absent")
	}

	miss := validInputs
	miss.Maturity = 2
	if _, ok := loaded.Match(miss); ok {
		t.Fatal("expected no match for different maturity")
	}
}

func TestLoadFixtures_AcceptsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.json")
	body := `{"fixtures": [{"inputs": {"stock_price": 1, "strike_price": 2, "interest_rate": 3, "maturity": 4, "volatility": 5},
		"response": {"call_price": 0.5, "put_price": 0.25}, "status": 503}]}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	set, err := LoadFixtures(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(set.Fixtures) != 1 || set.Fixtures[0].Status != 503 {
		t.Fatalf("unexpected set: %+v", set)
	}
}

func TestLoadFixtures_Example(t *testing.T) {
	set, err := LoadFixtures(filepath.Join("..", "..", "examples", "fixtures.yaml"))
	if err != nil {
		t.Fatalf("example fixtures: %v", err)
	}
	fx, ok := set.Match(model.Inputs{StockPrice: 100, StrikePrice: 100, InterestRate: 0.05, Maturity: 1, Volatility: 0.2})
	if !ok {
		t.Fatal("expected the at-the-money fixture")
	}
	res, err := ToResult(fx.Response)
	if err != nil {
		t.Fatalf("example response breaks the contract: %v", err)
	}
	if res.Greeks == nil {
		t.Fatal("expected a full greek set")
	}
}
