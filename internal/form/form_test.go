package form

import (
	"testing"

	"option-live/internal/model"
	"option-live/internal/page"
)

func newSet(t *testing.T, values map[model.Field]string) (*InputSet, *page.MemDocument) {
	t.Helper()
	ids := page.DefaultIDs()
	doc := page.NewFormDocument(ids, values, false)
	b, err := page.Resolve(doc, ids)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	return NewInputSet(b.Inputs), doc
}

var defaults = map[model.Field]string{
	model.StockPrice:   "100",
	model.StrikePrice:  "100",
	model.InterestRate: "0.05",
	model.Maturity:     "1",
	model.Volatility:   "0.2",
}

func TestWatch_NotifiesOnEveryEdit(t *testing.T) {
	set, doc := newSet(t, defaults)

	n := 0
	set.Watch(func() { n++ })

	for _, f := range model.Fields {
		in, _ := doc.MemInput(string(f))
		in.SetValue("1")
	}
	if n != len(model.Fields) {
		t.Fatalf("expected %d notifications, got %d", len(model.Fields), n)
	}
}

func TestValues_ReadsLiveValues(t *testing.T) {
	set, doc := newSet(t, defaults)

	got, ok := set.Values()
	want := model.Inputs{StockPrice: 100, StrikePrice: 100, InterestRate: 0.05, Maturity: 1, Volatility: 0.2}
	if !ok || got != want {
		t.Fatalf("expected %+v, got %+v ok=%v", want, got, ok)
	}

	in, _ := doc.MemInput("maturity")
	in.SetValue("2.5")
	got, ok = set.Values()
	if !ok || got.Maturity != 2.5 {
		t.Fatalf("expected live maturity 2.5, got %+v ok=%v", got, ok)
	}
}

func TestValues_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		field model.Field
		raw   string
	}{
		{name: "negative_strike", field: model.StrikePrice, raw: "-5"},
		{name: "zero_vol", field: model.Volatility, raw: "0"},
		{name: "empty_rate", field: model.InterestRate, raw: ""},
		{name: "text_stock", field: model.StockPrice, raw: "1o0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, doc := newSet(t, defaults)
			in, _ := doc.MemInput(string(tt.field))
			in.SetValue(tt.raw)

			if _, ok := set.Values(); ok {
				t.Fatalf("expected %s=%q to fail validation", tt.field, tt.raw)
			}

			for _, st := range set.Fields() {
				if st.Field == tt.field && st.Valid {
					t.Fatalf("expected field %s to be invalid", tt.field)
				}
				if st.Field == tt.field && st.Raw != tt.raw {
					t.Fatalf("expected raw %q, got %q", tt.raw, st.Raw)
				}
			}
		})
	}
}
