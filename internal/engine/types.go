// Package engine implements the causally-consistent progression simulator:
// a time-indexed fact store, an append-only event log, and the commit path
// that checks every proposed change against the axiom set before it
// becomes history.
package engine

import (
	"fmt"
	"strings"
)

// AttrKind classifies which character property a fact describes.
type AttrKind string

const (
	AttrLevel      AttrKind = "level"
	AttrExperience AttrKind = "experience"
	AttrStat       AttrKind = "stat"
	AttrClass      AttrKind = "class"
	AttrEquipped   AttrKind = "equipped"
)

// Attr identifies one tracked attribute. Stat and equipped attributes carry
// a qualifier (the stat name, the item slot); the rest do not.
type Attr struct {
	Kind      AttrKind `json:"kind"`
	Qualifier string   `json:"qualifier,omitempty"`
}

// LevelAttr is the character level attribute.
func LevelAttr() Attr { return Attr{Kind: AttrLevel} }

// ExperienceAttr is the accumulated experience attribute.
func ExperienceAttr() Attr { return Attr{Kind: AttrExperience} }

// StatAttr is the attribute for a named stat.
func StatAttr(stat string) Attr { return Attr{Kind: AttrStat, Qualifier: stat} }

// ClassAttr is the class assignment attribute.
func ClassAttr() Attr { return Attr{Kind: AttrClass} }

// EquippedAttr is the attribute for a named item slot.
func EquippedAttr(slot string) Attr { return Attr{Kind: AttrEquipped, Qualifier: slot} }

// Key renders the attribute as a stable index key, e.g. "stat(strength)".
func (a Attr) Key() string {
	if a.Qualifier != "" {
		return fmt.Sprintf("%s(%s)", a.Kind, a.Qualifier)
	}
	return string(a.Kind)
}

// ParseAttr parses the Key form back into an Attr. Used by the CLI.
func ParseAttr(s string) (Attr, error) {
	if i := strings.IndexByte(s, '('); i >= 0 && strings.HasSuffix(s, ")") {
		kind := AttrKind(s[:i])
		qual := s[i+1 : len(s)-1]
		if kind != AttrStat && kind != AttrEquipped {
			return Attr{}, fmt.Errorf("attribute %q does not take a qualifier", kind)
		}
		if qual == "" {
			return Attr{}, fmt.Errorf("attribute %q requires a qualifier", kind)
		}
		return Attr{Kind: kind, Qualifier: qual}, nil
	}
	switch AttrKind(s) {
	case AttrLevel, AttrExperience, AttrClass:
		return Attr{Kind: AttrKind(s)}, nil
	case AttrStat, AttrEquipped:
		return Attr{}, fmt.Errorf("attribute %q requires a qualifier, e.g. %s(name)", s, s)
	}
	return Attr{}, fmt.Errorf("unknown attribute %q", s)
}

// Fact is a time-stamped assertion about one character attribute's value.
// Level, experience and stat facts carry int values; class and equipped
// facts carry strings. Time is the discrete tick at which the fact became
// true; seed facts sit at time 0, every other fact at its event's ToTime.
type Fact struct {
	Character string `json:"character"`
	Attr      Attr   `json:"attr"`
	Value     any    `json:"value"`
	Time      int    `json:"time"`
}

// Int returns the fact value as int, tolerating the float64 that JSON
// replay produces for numeric values.
func (f Fact) Int() (int, bool) { return toInt(f.Value) }

// Str returns the fact value as string.
func (f Fact) Str() (string, bool) {
	s, ok := f.Value.(string)
	return s, ok
}

// Event is the sole mechanism by which new facts enter the store. It
// records what triggered it, which axioms authorized it, the facts it
// produced, and the one-tick interval [FromTime, ToTime) it occupies.
type Event struct {
	ID       string   `json:"id"`
	Cause    string   `json:"cause"`
	RuleRefs []string `json:"rule_refs"`
	Effects  []Fact   `json:"effects"`
	FromTime int      `json:"from_time"`
	ToTime   int      `json:"to_time"`
}

// Message renders a short human-readable summary for CLI output.
func (e Event) Message() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[t=%d] %s (%s)", e.FromTime, e.ID, e.Cause))
	for _, f := range e.Effects {
		sb.WriteString(fmt.Sprintf("\n├─ %s.%s = %v", f.Character, f.Attr.Key(), f.Value))
	}
	return sb.String()
}

// RejectionReason classifies why a proposed change was refused.
type RejectionReason string

const (
	RejectNonPositiveAmount      RejectionReason = "non_positive_amount"
	RejectInsufficientExperience RejectionReason = "insufficient_experience"
	RejectClassDoesNotUseStat    RejectionReason = "class_does_not_use_stat"
	RejectBoundExceeded          RejectionReason = "bound_exceeded"
	RejectForbiddenCombination   RejectionReason = "forbidden_combination"
	RejectUnknownCharacter       RejectionReason = "unknown_character"
	RejectUnknownStat            RejectionReason = "unknown_stat"
	RejectUnknownClass           RejectionReason = "unknown_class"
	RejectNoSuchLevel            RejectionReason = "no_such_level"
)

// Rejection is a business-rule refusal. It is an ordinary result value, not
// an exceptional condition: callers handle it and the session is untouched.
type Rejection struct {
	Reason RejectionReason
	Detail string
}

func (r *Rejection) Error() string {
	if r.Detail == "" {
		return string(r.Reason)
	}
	return fmt.Sprintf("%s: %s", r.Reason, r.Detail)
}

func reject(reason RejectionReason, format string, args ...any) error {
	return &Rejection{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// ReasonOf extracts the rejection reason from an error, or "" if the error
// is not a rejection.
func ReasonOf(err error) RejectionReason {
	if r, ok := err.(*Rejection); ok {
		return r.Reason
	}
	return ""
}

// Snapshot is the derived current view of one character: every value is the
// latest fact at or before the query time, never a mutable field.
type Snapshot struct {
	Character  string
	Class      string
	Level      int
	Experience int
	Stats      map[string]int
	Equipped   map[string]string
}

// toInt safely extracts an int from the value types that appear after a
// JSON round trip (int, int64, float64).
func toInt(val any) (int, bool) {
	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}
