// Package form watches the pricing inputs and reads their live values.
package form

import (
	"option-live/internal/model"
	"option-live/internal/page"
)

// FieldState is one field's raw text and parsed value at read time.
type FieldState struct {
	Field model.Field
	Raw   string
	Value float64
	Valid bool
}

// InputSet is the fixed set of pricing inputs bound to page inputs.
type InputSet struct {
	inputs map[model.Field]page.Input
}

// NewInputSet binds the set to inputs, which must hold every model.Fields entry.
func NewInputSet(inputs map[model.Field]page.Input) *InputSet {
	return &InputSet{inputs: inputs}
}

// Watch registers notify on every field. Each edit calls notify with no
// payload; values are read later with Values.
func (s *InputSet) Watch(notify func()) {
	for _, f := range model.Fields {
		s.inputs[f].OnInput(notify)
	}
}

// Fields reads every field in order.
func (s *InputSet) Fields() []FieldState {
	out := make([]FieldState, 0, len(model.Fields))
	for _, f := range model.Fields {
		raw := s.inputs[f].Value()
		v, ok := model.ParseValue(raw)
		out = append(out, FieldState{Field: f, Raw: raw, Value: v, Valid: ok})
	}
	return out
}

// Values reads the live field values. ok is false if any field is not a
// finite number greater than zero.
func (s *InputSet) Values() (in model.Inputs, ok bool) {
	for _, st := range s.Fields() {
		if !st.Valid {
			return model.Inputs{}, false
		}
		in.Set(st.Field, st.Value)
	}
	return in, true
}
