package page

import (
	"errors"
	"testing"

	"option-live/internal/model"
)

func TestResolve_FullPage(t *testing.T) {
	ids := DefaultIDs()
	doc := NewFormDocument(ids, map[model.Field]string{model.StockPrice: "100"}, true)

	b, err := Resolve(doc, ids)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b.Inputs) != len(model.Fields) {
		t.Fatalf("expected %d inputs, got %d", len(model.Fields), len(b.Inputs))
	}
	if len(b.Greeks) != len(model.GreekNames) {
		t.Fatalf("expected %d greek outputs, got %d", len(model.GreekNames), len(b.Greeks))
	}
	if got := b.Inputs[model.StockPrice].Value(); got != "100" {
		t.Fatalf("expected pre-filled value, got %q", got)
	}
}

func TestResolve_GreeksOptional(t *testing.T) {
	ids := DefaultIDs()
	doc := NewFormDocument(ids, nil, false)
	doc.AddElement("gamma", "")

	b, err := Resolve(doc, ids)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b.Greeks) != 1 {
		t.Fatalf("expected only gamma bound, got %d", len(b.Greeks))
	}
	if _, ok := b.Greeks[model.Gamma]; !ok {
		t.Fatal("expected gamma to be bound")
	}
}

func TestResolve_FormMissing(t *testing.T) {
	ids := DefaultIDs()

	tests := []struct {
		name  string
		build func() *MemDocument
	}{
		{name: "empty_page", build: NewMemDocument},
		{name: "missing_input", build: func() *MemDocument {
			d := NewFormDocument(ids, nil, false)
			delete(d.inputs, "volatility")
			return d
		}},
		{name: "missing_put_output", build: func() *MemDocument {
			d := NewFormDocument(ids, nil, false)
			delete(d.elements, "put-price")
			return d
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.build(), ids)
			if !errors.Is(err, ErrFormMissing) {
				t.Fatalf("expected ErrFormMissing, got %v", err)
			}
		})
	}
}

func TestMemInput_ListenersFireOnEdit(t *testing.T) {
	in := &MemInput{}
	n := 0
	in.OnInput(func() { n++ })

	in.Type("12.5")
	if n != 4 {
		t.Fatalf("expected 4 edit events, got %d", n)
	}
	if in.Value() != "12.5" {
		t.Fatalf("expected final value 12.5, got %q", in.Value())
	}
}
