// Package page models the parts of the pricing page the controller touches:
// five text inputs, two price outputs and up to eight Greek outputs.
//
// The controller never looks elements up by itself. Callers resolve a
// Bindings value once with Resolve and inject it.
package page

import (
	"errors"
	"fmt"

	"option-live/internal/model"
)

// Element is an output whose text the renderer replaces.
type Element interface {
	Text() string
	SetText(string)
}

// Input is an editable field. OnInput listeners run on every edit.
type Input interface {
	Value() string
	OnInput(func())
}

// Document finds elements by id.
type Document interface {
	Input(id string) (Input, bool)
	Element(id string) (Element, bool)
}

// ErrFormMissing means the page has no pricing form to drive.
var ErrFormMissing = errors.New("pricing form not present")

// IDs names the page elements.
type IDs struct {
	Inputs    map[model.Field]string `yaml:"inputs"`
	CallPrice string                 `yaml:"call_price"`
	PutPrice  string                 `yaml:"put_price"`
	Greeks    map[model.Greek]string `yaml:"greeks"`
}

// DefaultIDs returns the ids used by the reference page markup.
func DefaultIDs() IDs {
	ids := IDs{
		Inputs:    make(map[model.Field]string, len(model.Fields)),
		CallPrice: "call-price",
		PutPrice:  "put-price",
		Greeks: map[model.Greek]string{
			model.DeltaCall: "delta-call",
			model.DeltaPut:  "delta-put",
			model.Gamma:     "gamma",
			model.Vega:      "vega",
			model.ThetaCall: "theta-call",
			model.ThetaPut:  "theta-put",
			model.RhoCall:   "rho-call",
			model.RhoPut:    "rho-put",
		},
	}
	for _, f := range model.Fields {
		ids.Inputs[f] = string(f)
	}
	return ids
}

// Bindings is the capability set handed to the controller.
// Greeks holds only the outputs that exist on the page.
type Bindings struct {
	Inputs    map[model.Field]Input
	CallPrice Element
	PutPrice  Element
	Greeks    map[model.Greek]Element
}

// Resolve looks every element up once. Missing inputs or price outputs yield
// ErrFormMissing; missing Greek outputs are simply left out.
func Resolve(doc Document, ids IDs) (*Bindings, error) {
	b := &Bindings{
		Inputs: make(map[model.Field]Input, len(model.Fields)),
		Greeks: make(map[model.Greek]Element, len(model.GreekNames)),
	}

	for _, f := range model.Fields {
		in, ok := doc.Input(ids.Inputs[f])
		if !ok {
			return nil, fmt.Errorf("%w: input %q (#%s)", ErrFormMissing, f, ids.Inputs[f])
		}
		b.Inputs[f] = in
	}

	var ok bool
	if b.CallPrice, ok = doc.Element(ids.CallPrice); !ok {
		return nil, fmt.Errorf("%w: output #%s", ErrFormMissing, ids.CallPrice)
	}
	if b.PutPrice, ok = doc.Element(ids.PutPrice); !ok {
		return nil, fmt.Errorf("%w: output #%s", ErrFormMissing, ids.PutPrice)
	}

	for _, g := range model.GreekNames {
		id := ids.Greeks[g]
		if id == "" {
			continue
		}
		if el, ok := doc.Element(id); ok {
			b.Greeks[g] = el
		}
	}
	return b, nil
}
