// Package render writes calculation results into the page.
package render

import (
	"math"
	"strconv"

	"option-live/internal/model"
	"option-live/internal/page"

	"github.com/shopspring/decimal"
)

const (
	pricePlaces = 2
	greekPlaces = 4
)

// DisplayState is the text currently shown in each bound output.
type DisplayState struct {
	CallPrice string
	PutPrice  string
	Greeks    map[model.Greek]string
}

// Renderer owns the page outputs. It must only be used from the controller's loop.
type Renderer struct {
	b *page.Bindings
}

// New returns a renderer writing to b's outputs.
func New(b *page.Bindings) *Renderer {
	return &Renderer{b: b}
}

// Apply renders res when seq is the latest issued sequence number and
// reports whether anything was written. Stale or empty results leave the
// page untouched.
func (r *Renderer) Apply(seq, latest uint64, res *model.PricingResult) bool {
	if res == nil || seq != latest {
		return false
	}

	r.b.CallPrice.SetText(FormatPrice(res.CallPrice))
	r.b.PutPrice.SetText(FormatPrice(res.PutPrice))

	if res.Greeks != nil {
		for _, g := range model.GreekNames {
			if el, ok := r.b.Greeks[g]; ok {
				el.SetText(FormatGreek(res.Greeks.Get(g)))
			}
		}
	}
	return true
}

// State reads the current text of every bound output.
func (r *Renderer) State() DisplayState {
	st := DisplayState{
		CallPrice: r.b.CallPrice.Text(),
		PutPrice:  r.b.PutPrice.Text(),
		Greeks:    make(map[model.Greek]string, len(r.b.Greeks)),
	}
	for g, el := range r.b.Greeks {
		st.Greeks[g] = el.Text()
	}
	return st
}

// FormatPrice renders a price as dollars with two decimals, e.g. "$10.45".
func FormatPrice(v float64) string {
	return "$" + fixed(v, pricePlaces)
}

// FormatGreek renders a Greek with four decimals, e.g. "0.6368".
func FormatGreek(v float64) string {
	return fixed(v, greekPlaces)
}

func fixed(v float64, places int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', int(places), 64)
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}

// Format renders res into a standalone DisplayState with every Greek it carries.
func Format(res model.PricingResult) DisplayState {
	st := DisplayState{
		CallPrice: FormatPrice(res.CallPrice),
		PutPrice:  FormatPrice(res.PutPrice),
		Greeks:    map[model.Greek]string{},
	}
	if res.Greeks != nil {
		for _, g := range model.GreekNames {
			st.Greeks[g] = FormatGreek(res.Greeks.Get(g))
		}
	}
	return st
}
