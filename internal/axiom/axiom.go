// Package axiom holds the immutable rule set of a simulation session.
// A Set is loaded once, validated in full, and read-only afterwards;
// it is the only source of what a legal character state looks like.
package axiom

import (
	"fmt"
	"sort"

	"github.com/bivex/loreSystem-sub001/internal/rules"
)

// Definition is the raw, YAML-friendly form of an axiom set before
// validation and predicate compilation.
type Definition struct {
	Classes    []string            `yaml:"classes"`
	Stats      map[string]StatDef  `yaml:"stats"`
	Affinities map[string][]string `yaml:"affinities"`
	Forbidden  []ForbiddenRule     `yaml:"forbidden"`
	Levels     map[int]int         `yaml:"levels"` // level → required experience
}

// StatDef declares a stat and its hard upper bound.
type StatDef struct {
	Max int `yaml:"max"`
}

// ForbiddenRule names a combination of character properties that must
// never hold. Rule is a CEL expression over the snapshot context
// (class, level, experience, stats, equipped).
type ForbiddenRule struct {
	Name string `yaml:"name"`
	Rule string `yaml:"rule"`
}

// LoadError signals a malformed axiom set. A session cannot exist with a
// partial or invalid rule set, so this is fatal at construction.
type LoadError struct {
	Detail string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("axiom set: %s: %v", e.Detail, e.Err)
	}
	return fmt.Sprintf("axiom set: %s", e.Detail)
}

func (e *LoadError) Unwrap() error { return e.Err }

// CompiledForbidden pairs a forbidden rule with its compiled predicate.
type CompiledForbidden struct {
	Name string
	Rule string
	pred rules.Predicate
}

// Set is the validated, immutable axiom store.
type Set struct {
	classes    []string
	classIdx   map[string]bool
	bounds     map[string]int
	affinities map[string]map[string]bool
	forbidden  []CompiledForbidden
	levels     map[int]int
}

// Load validates a Definition, compiles its forbidden predicates, and
// returns the immutable Set. Any defect fails the whole load.
func Load(def Definition) (*Set, error) {
	s := &Set{
		classIdx:   make(map[string]bool),
		bounds:     make(map[string]int),
		affinities: make(map[string]map[string]bool),
		levels:     make(map[int]int),
	}

	for _, c := range def.Classes {
		if c == "" {
			return nil, &LoadError{Detail: "empty class name"}
		}
		if s.classIdx[c] {
			return nil, &LoadError{Detail: fmt.Sprintf("duplicate class %q", c)}
		}
		s.classIdx[c] = true
		s.classes = append(s.classes, c)
	}
	sort.Strings(s.classes)

	for stat, d := range def.Stats {
		if stat == "" {
			return nil, &LoadError{Detail: "empty stat name"}
		}
		if d.Max <= 0 {
			return nil, &LoadError{Detail: fmt.Sprintf("stat %q has non-positive bound %d", stat, d.Max)}
		}
		s.bounds[stat] = d.Max
	}

	for class, stats := range def.Affinities {
		if !s.classIdx[class] {
			return nil, &LoadError{Detail: fmt.Sprintf("affinity references unknown class %q", class)}
		}
		set := make(map[string]bool, len(stats))
		for _, stat := range stats {
			if _, ok := s.bounds[stat]; !ok {
				return nil, &LoadError{Detail: fmt.Sprintf("affinity for class %q references unknown stat %q", class, stat)}
			}
			set[stat] = true
		}
		s.affinities[class] = set
	}

	if len(def.Forbidden) > 0 {
		reg, err := rules.NewRegistry()
		if err != nil {
			return nil, &LoadError{Detail: "predicate environment", Err: err}
		}
		seen := make(map[string]bool)
		for _, fr := range def.Forbidden {
			if fr.Name == "" {
				return nil, &LoadError{Detail: "forbidden rule without a name"}
			}
			if seen[fr.Name] {
				return nil, &LoadError{Detail: fmt.Sprintf("duplicate forbidden rule %q", fr.Name)}
			}
			seen[fr.Name] = true
			pred, err := reg.Compile(fr.Rule)
			if err != nil {
				return nil, &LoadError{Detail: fmt.Sprintf("forbidden rule %q", fr.Name), Err: err}
			}
			s.forbidden = append(s.forbidden, CompiledForbidden{Name: fr.Name, Rule: fr.Rule, pred: pred})
		}
		sort.Slice(s.forbidden, func(i, j int) bool { return s.forbidden[i].Name < s.forbidden[j].Name })
	}

	for level, xp := range def.Levels {
		if level < 2 {
			return nil, &LoadError{Detail: fmt.Sprintf("level requirement for level %d; thresholds start at level 2", level)}
		}
		if xp <= 0 {
			return nil, &LoadError{Detail: fmt.Sprintf("level %d has non-positive experience threshold %d", level, xp)}
		}
		s.levels[level] = xp
	}

	return s, nil
}

// HasClass reports whether the class is defined.
func (s *Set) HasClass(class string) bool { return s.classIdx[class] }

// Classes returns all class names in sorted order.
func (s *Set) Classes() []string {
	out := make([]string, len(s.classes))
	copy(out, s.classes)
	return out
}

// StatBound returns the upper bound for a stat, if the stat is defined.
func (s *Set) StatBound(stat string) (int, bool) {
	b, ok := s.bounds[stat]
	return b, ok
}

// Stats returns all stat names in sorted order.
func (s *Set) Stats() []string {
	out := make([]string, 0, len(s.bounds))
	for stat := range s.bounds {
		out = append(out, stat)
	}
	sort.Strings(out)
	return out
}

// ClassUsesStat reports whether the class is affiliated with the stat.
// A class with no affinity entry uses no stats at all.
func (s *Set) ClassUsesStat(class, stat string) bool {
	return s.affinities[class][stat]
}

// AffinityStats returns the stats affiliated with a class, sorted.
func (s *Set) AffinityStats(class string) []string {
	out := make([]string, 0, len(s.affinities[class]))
	for stat := range s.affinities[class] {
		out = append(out, stat)
	}
	sort.Strings(out)
	return out
}

// RequiredXP returns the experience threshold for reaching a level.
func (s *Set) RequiredXP(level int) (int, bool) {
	xp, ok := s.levels[level]
	return xp, ok
}

// Levels returns all levels with a defined threshold, sorted ascending.
func (s *Set) Levels() []int {
	out := make([]int, 0, len(s.levels))
	for l := range s.levels {
		out = append(out, l)
	}
	sort.Ints(out)
	return out
}

// Forbidden returns the compiled forbidden rules, sorted by name.
func (s *Set) Forbidden() []CompiledForbidden {
	out := make([]CompiledForbidden, len(s.forbidden))
	copy(out, s.forbidden)
	return out
}

// FirstForbidden evaluates every forbidden predicate against the snapshot
// context and returns the name of the first one that holds, or "" if the
// snapshot is legal. Evaluation order follows rule names for determinism.
func (s *Set) FirstForbidden(ctx map[string]any) (string, error) {
	for _, fr := range s.forbidden {
		hit, err := fr.pred.Eval(ctx)
		if err != nil {
			return "", fmt.Errorf("forbidden rule %q: %w", fr.Name, err)
		}
		if hit {
			return fr.Name, nil
		}
	}
	return "", nil
}
