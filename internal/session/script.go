package session

import (
	"context"
	"fmt"
	"os"
	"time"

	"option-live/internal/config"
	"option-live/internal/model"

	"gopkg.in/yaml.v3"
)

// Script is a recorded typing session replayed against a page.
//
//	steps:
//	  - field: stock_price
//	    type: "105"
//	    keystroke: 80ms
//	  - pause: 500ms
//	  - field: strike_price
//	    set: "-5"
type Script struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step either edits a field or pauses. Type fires one edit per character,
// Keystroke apart; Set replaces the value with a single edit.
type Step struct {
	Field     model.Field   `yaml:"field,omitempty"`
	Type      string        `yaml:"type,omitempty"`
	Set       *string       `yaml:"set,omitempty"`
	Keystroke time.Duration `yaml:"keystroke,omitempty"`
	Pause     time.Duration `yaml:"pause,omitempty"`
}

func LoadScript(path string) (*Script, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Script
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Script) Validate() error {
	for i, st := range s.Steps {
		if st.Field == "" {
			if st.Pause <= 0 {
				return fmt.Errorf("step %d: needs a field or a pause", i)
			}
			continue
		}
		if _, _, err := ParseEdit(string(st.Field) + "="); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		if st.Set == nil && st.Type == "" {
			return fmt.Errorf("step %d: %s needs type or set", i, st.Field)
		}
	}
	return nil
}

// Play performs the script's edits on the session's page, sleeping between
// keystrokes and pauses. It returns early when ctx is done.
func (s *Session) Play(ctx context.Context, cfg *config.Config, script *Script) error {
	for _, st := range script.Steps {
		if st.Field == "" {
			if err := sleep(ctx, st.Pause); err != nil {
				return err
			}
			continue
		}

		in, err := s.Input(cfg, st.Field)
		if err != nil {
			return err
		}
		switch {
		case st.Set != nil:
			in.SetValue(*st.Set)
		case st.Keystroke <= 0:
			in.Type(st.Type)
		default:
			runes := []rune(st.Type)
			for i := range runes {
				in.SetValue(string(runes[:i+1]))
				if err := sleep(ctx, st.Keystroke); err != nil {
					return err
				}
			}
		}
		if err := sleep(ctx, st.Pause); err != nil {
			return err
		}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
