package engine

import "fmt"

// ObservationRecord answers "why does this fact hold?": the fact itself,
// the event that produced it, the rule references the engine consulted at
// commit, and the value it replaced. Seed facts have an empty EventID and
// the cause "seed".
type ObservationRecord struct {
	Fact     Fact
	EventID  string
	Cause    string
	RuleRefs []string
	Previous *Fact
}

// Explain walks the log backward from the fact holding at time t for
// (character, attr) to its justifying event. It is a pure traversal:
// repeated calls with identical arguments return identical records.
func (s *Session) Explain(char string, a Attr, t int) (ObservationRecord, error) {
	if !s.HasCharacter(char) {
		return ObservationRecord{}, reject(RejectUnknownCharacter, "character %q", char)
	}
	fact, ok := s.FactAt(char, a, t)
	if !ok {
		return ObservationRecord{}, fmt.Errorf("no fact for %s.%s at time %d", char, a.Key(), t)
	}

	rec := ObservationRecord{Fact: fact}

	if prev, ok := s.FactAt(char, a, fact.Time-1); ok {
		p := prev
		rec.Previous = &p
	}

	if fact.Time == 0 {
		rec.Cause = "seed"
		return rec, nil
	}

	// Effects carry the producing fact explicitly, so causality is looked
	// up, never inferred. Exactly one event has ToTime == fact.Time.
	for i := len(s.log) - 1; i >= 0; i-- {
		evt := s.log[i]
		if evt.ToTime != fact.Time {
			continue
		}
		for _, eff := range evt.Effects {
			if eff.Character == char && eff.Attr == a {
				rec.EventID = evt.ID
				rec.Cause = evt.Cause
				rec.RuleRefs = append([]string(nil), evt.RuleRefs...)
				return rec, nil
			}
		}
	}

	return ObservationRecord{}, fmt.Errorf("no event produced %s.%s at time %d", char, a.Key(), fact.Time)
}
