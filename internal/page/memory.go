package page

import (
	"sync"

	"option-live/internal/model"
)

// MemDocument is an in-memory page. Safe for concurrent use.
type MemDocument struct {
	mu       sync.RWMutex
	inputs   map[string]*MemInput
	elements map[string]*MemElement
}

// NewMemDocument returns an empty page.
func NewMemDocument() *MemDocument {
	return &MemDocument{
		inputs:   map[string]*MemInput{},
		elements: map[string]*MemElement{},
	}
}

// NewFormDocument builds the standard pricing page for ids: inputs pre-filled
// from values, empty price outputs, and Greek outputs when withGreeks is set.
func NewFormDocument(ids IDs, values map[model.Field]string, withGreeks bool) *MemDocument {
	d := NewMemDocument()
	for _, f := range model.Fields {
		d.AddInput(ids.Inputs[f], values[f])
	}
	d.AddElement(ids.CallPrice, "")
	d.AddElement(ids.PutPrice, "")
	if withGreeks {
		for _, g := range model.GreekNames {
			if id := ids.Greeks[g]; id != "" {
				d.AddElement(id, "")
			}
		}
	}
	return d
}

// AddInput creates or replaces an input.
func (d *MemDocument) AddInput(id, value string) *MemInput {
	in := &MemInput{value: value}
	d.mu.Lock()
	d.inputs[id] = in
	d.mu.Unlock()
	return in
}

// AddElement creates or replaces an output element.
func (d *MemDocument) AddElement(id, text string) *MemElement {
	el := &MemElement{text: text}
	d.mu.Lock()
	d.elements[id] = el
	d.mu.Unlock()
	return el
}

// Input implements Document.
func (d *MemDocument) Input(id string) (Input, bool) {
	in, ok := d.MemInput(id)
	if !ok {
		return nil, false
	}
	return in, true
}

// Element implements Document.
func (d *MemDocument) Element(id string) (Element, bool) {
	el, ok := d.MemElement(id)
	if !ok {
		return nil, false
	}
	return el, true
}

// MemInput returns the concrete input for id.
func (d *MemDocument) MemInput(id string) (*MemInput, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	in, ok := d.inputs[id]
	return in, ok
}

// MemElement returns the concrete element for id.
func (d *MemDocument) MemElement(id string) (*MemElement, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	el, ok := d.elements[id]
	return el, ok
}

// MemInput is an in-memory text input.
type MemInput struct {
	mu        sync.Mutex
	value     string
	listeners []func()
}

// Value implements Input.
func (in *MemInput) Value() string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.value
}

// OnInput implements Input.
func (in *MemInput) OnInput(fn func()) {
	in.mu.Lock()
	in.listeners = append(in.listeners, fn)
	in.mu.Unlock()
}

// SetValue simulates an edit: it stores v and runs every listener.
func (in *MemInput) SetValue(v string) {
	in.mu.Lock()
	in.value = v
	listeners := append([]func(){}, in.listeners...)
	in.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// Type simulates typing v one keystroke at a time, firing an edit per rune.
func (in *MemInput) Type(v string) {
	runes := []rune(v)
	for i := range runes {
		in.SetValue(string(runes[:i+1]))
	}
}

// MemElement is an in-memory output element.
type MemElement struct {
	mu   sync.Mutex
	text string
}

// Text implements Element.
func (el *MemElement) Text() string {
	el.mu.Lock()
	defer el.mu.Unlock()
	return el.text
}

// SetText implements Element.
func (el *MemElement) SetText(s string) {
	el.mu.Lock()
	el.text = s
	el.mu.Unlock()
}
