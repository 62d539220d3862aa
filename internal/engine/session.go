package engine

import (
	"fmt"
	"sort"

	"github.com/bivex/loreSystem-sub001/internal/axiom"
	"github.com/bivex/loreSystem-sub001/internal/rules"
)

// Journal is the dependency a session uses to persist committed events.
// Appends happen before the in-memory commit, so a failed write rejects
// the operation without touching session state.
type Journal interface {
	Append(evt Event) error
}

// CharacterSeed describes one character's state at time 0. Seed facts are
// the only facts not produced by an event.
type CharacterSeed struct {
	ID         string            `yaml:"id" json:"id"`
	Class      string            `yaml:"class" json:"class"`
	Level      int               `yaml:"level" json:"level"`
	Experience int               `yaml:"experience" json:"experience"`
	Stats      map[string]int    `yaml:"stats" json:"stats"`
	Equipped   map[string]string `yaml:"equipped" json:"equipped"`
}

// Session owns one simulation run: the axiom set, the global tick clock,
// the per-(character, attribute) fact index, and the append-only event log.
// A session is exclusively owned by one execution context; independent
// simulations use independent sessions.
type Session struct {
	axioms  *axiom.Set
	clock   int // FromTime of the next event
	chars   []string
	facts   map[string]map[string][]Fact // character → attr key → time-ascending facts
	log     []Event
	journal Journal
}

// Option configures a session at construction.
type Option func(*Session)

// WithJournal attaches a persistent journal; every committed event is
// appended to it before it enters the in-memory log.
func WithJournal(j Journal) Option {
	return func(s *Session) { s.journal = j }
}

// NewSession builds a session from an axiom set and seed characters.
// Seeds are validated against the axioms so the no-violation invariant
// holds from tick 0, even though seed facts carry no event.
func NewSession(set *axiom.Set, seeds []CharacterSeed, opts ...Option) (*Session, error) {
	if set == nil {
		return nil, fmt.Errorf("nil axiom set")
	}
	s := &Session{
		axioms: set,
		facts:  make(map[string]map[string][]Fact),
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, seed := range seeds {
		if seed.ID == "" {
			return nil, fmt.Errorf("seed character without an id")
		}
		if _, ok := s.facts[seed.ID]; ok {
			return nil, fmt.Errorf("duplicate seed character %q", seed.ID)
		}
		if err := s.validateSeed(seed); err != nil {
			return nil, err
		}

		level := seed.Level
		if level == 0 {
			level = 1
		}

		s.facts[seed.ID] = make(map[string][]Fact)
		s.chars = append(s.chars, seed.ID)

		s.seedFact(seed.ID, LevelAttr(), level)
		s.seedFact(seed.ID, ExperienceAttr(), seed.Experience)
		if seed.Class != "" {
			s.seedFact(seed.ID, ClassAttr(), seed.Class)
		}
		for _, stat := range sortedKeys(seed.Stats) {
			s.seedFact(seed.ID, StatAttr(stat), seed.Stats[stat])
		}
		for _, slot := range sortedStrKeys(seed.Equipped) {
			s.seedFact(seed.ID, EquippedAttr(slot), seed.Equipped[slot])
		}
	}
	sort.Strings(s.chars)

	return s, nil
}

func (s *Session) validateSeed(seed CharacterSeed) error {
	if seed.Class != "" && !s.axioms.HasClass(seed.Class) {
		return fmt.Errorf("seed %q: unknown class %q", seed.ID, seed.Class)
	}
	if seed.Level < 0 || seed.Experience < 0 {
		return fmt.Errorf("seed %q: negative level or experience", seed.ID)
	}
	for stat, v := range seed.Stats {
		bound, ok := s.axioms.StatBound(stat)
		if !ok {
			return fmt.Errorf("seed %q: unknown stat %q", seed.ID, stat)
		}
		if v < 0 || v > bound {
			return fmt.Errorf("seed %q: stat %s=%d outside [0, %d]", seed.ID, stat, v, bound)
		}
	}

	level := seed.Level
	if level == 0 {
		level = 1
	}
	ctx := rules.SnapshotContext(seed.ID, seed.Class, level, seed.Experience, seed.Stats, seed.Equipped)
	name, err := s.axioms.FirstForbidden(ctx)
	if err != nil {
		return fmt.Errorf("seed %q: %w", seed.ID, err)
	}
	if name != "" {
		return fmt.Errorf("seed %q violates forbidden combination %q", seed.ID, name)
	}
	return nil
}

func (s *Session) seedFact(char string, a Attr, value any) {
	s.facts[char][a.Key()] = []Fact{{Character: char, Attr: a, Value: value, Time: 0}}
}

// Axioms returns the session's immutable rule set.
func (s *Session) Axioms() *axiom.Set { return s.axioms }

// Characters returns all seeded character ids, sorted.
func (s *Session) Characters() []string {
	out := make([]string, len(s.chars))
	copy(out, s.chars)
	return out
}

// HasCharacter reports whether the id was seeded into this session.
func (s *Session) HasCharacter(id string) bool {
	_, ok := s.facts[id]
	return ok
}

// Events returns a copy of the event log in commit order.
func (s *Session) Events() []Event {
	out := make([]Event, len(s.log))
	copy(out, s.log)
	return out
}

// Now returns the current tick: the FromTime the next event would receive.
// All committed facts have Time <= Now.
func (s *Session) Now() int { return s.clock }

// FactAt returns the latest fact for (character, attr) with Time <= t.
func (s *Session) FactAt(char string, a Attr, t int) (Fact, bool) {
	seq := s.facts[char][a.Key()]
	for i := len(seq) - 1; i >= 0; i-- {
		if seq[i].Time <= t {
			return seq[i], true
		}
	}
	return Fact{}, false
}

// Attrs returns every attribute tracked for a character, sorted by key.
func (s *Session) Attrs(char string) []Attr {
	attrs := s.facts[char]
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Attr, len(keys))
	for i, k := range keys {
		out[i] = attrs[k][0].Attr
	}
	return out
}

// FactHistory returns every fact recorded for (character, attr) in time
// order. The returned slice is a copy.
func (s *Session) FactHistory(char string, a Attr) []Fact {
	seq := s.facts[char][a.Key()]
	out := make([]Fact, len(seq))
	copy(out, seq)
	return out
}

func (s *Session) currentInt(char string, a Attr) (int, bool) {
	f, ok := s.FactAt(char, a, s.clock)
	if !ok {
		return 0, false
	}
	return f.Int()
}

func (s *Session) currentStr(char string, a Attr) (string, bool) {
	f, ok := s.FactAt(char, a, s.clock)
	if !ok {
		return "", false
	}
	return f.Str()
}

// SnapshotAt derives the full view of one character at time t.
func (s *Session) SnapshotAt(char string, t int) (Snapshot, bool) {
	attrs, ok := s.facts[char]
	if !ok {
		return Snapshot{}, false
	}
	snap := Snapshot{
		Character: char,
		Stats:     make(map[string]int),
		Equipped:  make(map[string]string),
	}
	for _, seq := range attrs {
		var current *Fact
		for i := len(seq) - 1; i >= 0; i-- {
			if seq[i].Time <= t {
				current = &seq[i]
				break
			}
		}
		if current == nil {
			continue
		}
		switch current.Attr.Kind {
		case AttrLevel:
			snap.Level, _ = current.Int()
		case AttrExperience:
			snap.Experience, _ = current.Int()
		case AttrClass:
			snap.Class, _ = current.Str()
		case AttrStat:
			if v, ok := current.Int(); ok {
				snap.Stats[current.Attr.Qualifier] = v
			}
		case AttrEquipped:
			if v, ok := current.Str(); ok && v != "" {
				snap.Equipped[current.Attr.Qualifier] = v
			}
		}
	}
	return snap, true
}

// Snapshot derives the current view of one character.
func (s *Session) Snapshot(char string) (Snapshot, bool) {
	return s.SnapshotAt(char, s.clock)
}

// commit finalizes a proposed change: it re-asserts the global invariants
// over the candidate effects, persists the event if a journal is attached,
// and only then appends to the log and fact index. All-or-nothing.
func (s *Session) commit(cause string, refs []string, effects []Fact) (Event, error) {
	from := s.clock
	evt := Event{
		ID:       fmt.Sprintf("e%d", from),
		Cause:    cause,
		RuleRefs: refs,
		FromTime: from,
		ToTime:   from + 1,
	}
	evt.Effects = make([]Fact, len(effects))
	for i, f := range effects {
		f.Time = evt.ToTime
		evt.Effects[i] = f
	}

	if err := s.checkInvariants(evt); err != nil {
		return Event{}, err
	}

	if s.journal != nil {
		if err := s.journal.Append(evt); err != nil {
			return Event{}, fmt.Errorf("journal append failed: %w", err)
		}
	}

	s.apply(evt)
	return evt, nil
}

// apply installs a validated event into the log and fact index and
// advances the clock. Shared by commit and journal replay.
func (s *Session) apply(evt Event) {
	s.log = append(s.log, evt)
	for _, f := range evt.Effects {
		key := f.Attr.Key()
		s.facts[f.Character][key] = append(s.facts[f.Character][key], f)
	}
	s.clock = evt.ToTime
}

// checkInvariants re-asserts the fixed invariant set over a candidate
// event. The propose phase already screened each rule; this is the final
// synchronous gate before anything is written.
func (s *Session) checkInvariants(evt Event) error {
	if evt.ToTime != evt.FromTime+1 {
		return fmt.Errorf("event %s spans [%d, %d), want one tick", evt.ID, evt.FromTime, evt.ToTime)
	}
	for _, f := range evt.Effects {
		if !s.HasCharacter(f.Character) {
			return reject(RejectUnknownCharacter, "character %q", f.Character)
		}
		switch f.Attr.Kind {
		case AttrStat:
			v, ok := f.Int()
			if !ok {
				return fmt.Errorf("stat fact for %s has non-integer value %v", f.Character, f.Value)
			}
			bound, ok := s.axioms.StatBound(f.Attr.Qualifier)
			if !ok {
				return reject(RejectUnknownStat, "stat %q", f.Attr.Qualifier)
			}
			if v > bound {
				return reject(RejectBoundExceeded, "%s would reach %d, bound is %d", f.Attr.Qualifier, v, bound)
			}
		case AttrLevel:
			v, ok := f.Int()
			if !ok {
				return fmt.Errorf("level fact for %s has non-integer value %v", f.Character, f.Value)
			}
			prev, _ := s.currentInt(f.Character, LevelAttr())
			if v != prev+1 {
				return fmt.Errorf("level fact for %s jumps from %d to %d", f.Character, prev, v)
			}
		}
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedStrKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
