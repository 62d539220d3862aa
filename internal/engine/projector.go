package engine

import (
	"fmt"

	"github.com/bivex/loreSystem-sub001/internal/axiom"
)

// Projector rebuilds a session from a stored event sequence, folding each
// event onto a freshly seeded session.
type Projector struct{}

// NewProjector creates a standard projector.
func NewProjector() *Projector {
	return &Projector{}
}

// Rebuild seeds a session and replays the events in order. The events are
// trusted history from a journal, but ordering and the one-tick interval
// are still verified so a corrupted log cannot produce an inconsistent
// session.
func (p *Projector) Rebuild(set *axiom.Set, seeds []CharacterSeed, events []Event, opts ...Option) (*Session, error) {
	s, err := NewSession(set, seeds, opts...)
	if err != nil {
		return nil, err
	}
	for _, evt := range events {
		if err := s.replay(evt); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// replay installs one journaled event. Numeric fact values arrive from
// JSON as float64 and are normalized back to int here.
func (s *Session) replay(evt Event) error {
	if evt.FromTime != s.clock {
		return fmt.Errorf("event %s out of order: from_time %d, clock %d", evt.ID, evt.FromTime, s.clock)
	}
	if evt.ToTime != evt.FromTime+1 {
		return fmt.Errorf("event %s spans [%d, %d), want one tick", evt.ID, evt.FromTime, evt.ToTime)
	}
	for i, f := range evt.Effects {
		if !s.HasCharacter(f.Character) {
			return fmt.Errorf("event %s references unseeded character %q", evt.ID, f.Character)
		}
		if f.Time != evt.ToTime {
			return fmt.Errorf("event %s effect %d carries time %d, want %d", evt.ID, i, f.Time, evt.ToTime)
		}
		switch f.Attr.Kind {
		case AttrLevel, AttrExperience, AttrStat:
			v, ok := f.Int()
			if !ok {
				return fmt.Errorf("event %s effect %d: non-integer value %v", evt.ID, i, f.Value)
			}
			evt.Effects[i].Value = v
		}
	}
	s.apply(evt)
	return nil
}
