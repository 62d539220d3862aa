package engine

import (
	"fmt"

	"github.com/bivex/loreSystem-sub001/internal/rules"
)

// Each Simulate* operation runs two phases. Propose computes the candidate
// facts without touching state; commit validates them against the axiom
// set and the invariants, then appends exactly one event. A rejection
// leaves the session byte-for-byte unchanged.

// SimulateExperienceGain adds experience to a character. Experience only
// accumulates; leveling is a separate, explicit operation and is never
// triggered implicitly here.
func (s *Session) SimulateExperienceGain(char string, amount int, cause string) (Event, error) {
	if !s.HasCharacter(char) {
		return Event{}, reject(RejectUnknownCharacter, "character %q", char)
	}
	if amount <= 0 {
		return Event{}, reject(RejectNonPositiveAmount, "experience gain of %d", amount)
	}

	current, _ := s.currentInt(char, ExperienceAttr())
	effect := Fact{Character: char, Attr: ExperienceAttr(), Value: current + amount}

	return s.commit(cause, []string{"experience_monotonic"}, []Fact{effect})
}

// SimulateLevelUp advances a character by exactly one level, gated on the
// axiom set's threshold for the next level. Experience is retained after
// leveling; thresholds are absolute, not cumulative.
func (s *Session) SimulateLevelUp(char string) (Event, error) {
	if !s.HasCharacter(char) {
		return Event{}, reject(RejectUnknownCharacter, "character %q", char)
	}

	level, _ := s.currentInt(char, LevelAttr())
	xp, _ := s.currentInt(char, ExperienceAttr())

	next := level + 1
	required, ok := s.axioms.RequiredXP(next)
	if !ok {
		return Event{}, reject(RejectNoSuchLevel, "no experience threshold defined for level %d", next)
	}
	if xp < required {
		return Event{}, reject(RejectInsufficientExperience, "%s has %d experience, level %d requires %d", char, xp, next, required)
	}

	effect := Fact{Character: char, Attr: LevelAttr(), Value: next}
	refs := []string{fmt.Sprintf("level_requirement(%d)", next)}

	return s.commit(fmt.Sprintf("level_up:%s", char), refs, []Fact{effect})
}

// SimulateStatIncrease raises a stat, gated on the character's class
// affinity and the stat's bound.
func (s *Session) SimulateStatIncrease(char, stat string, amount int, cause string) (Event, error) {
	if !s.HasCharacter(char) {
		return Event{}, reject(RejectUnknownCharacter, "character %q", char)
	}
	if amount <= 0 {
		return Event{}, reject(RejectNonPositiveAmount, "stat increase of %d", amount)
	}
	bound, ok := s.axioms.StatBound(stat)
	if !ok {
		return Event{}, reject(RejectUnknownStat, "stat %q", stat)
	}

	class, _ := s.currentStr(char, ClassAttr())
	if !s.axioms.ClassUsesStat(class, stat) {
		if class == "" {
			return Event{}, reject(RejectClassDoesNotUseStat, "%s has no class assignment", char)
		}
		return Event{}, reject(RejectClassDoesNotUseStat, "class %q is not affiliated with %q", class, stat)
	}

	current, _ := s.currentInt(char, StatAttr(stat))
	if current+amount > bound {
		return Event{}, reject(RejectBoundExceeded, "%s %s would reach %d, bound is %d", char, stat, current+amount, bound)
	}

	effect := Fact{Character: char, Attr: StatAttr(stat), Value: current + amount}
	refs := []string{
		fmt.Sprintf("affinity(%s, %s)", class, stat),
		fmt.Sprintf("stat_bound(%s)", stat),
	}

	return s.commit(cause, refs, []Fact{effect})
}

// SimulateClassAssignment assigns a class, re-running every forbidden
// predicate over the full resulting snapshot: forbidden combinations are
// defined jointly over class and equipment, so the changed field alone is
// not enough.
func (s *Session) SimulateClassAssignment(char, class, cause string) (Event, error) {
	if !s.HasCharacter(char) {
		return Event{}, reject(RejectUnknownCharacter, "character %q", char)
	}
	if !s.axioms.HasClass(class) {
		return Event{}, reject(RejectUnknownClass, "class %q", class)
	}

	snap, _ := s.Snapshot(char)
	snap.Class = class
	if err := s.checkForbidden(snap); err != nil {
		return Event{}, err
	}

	effect := Fact{Character: char, Attr: ClassAttr(), Value: class}
	refs := []string{fmt.Sprintf("class(%s)", class)}

	return s.commit(cause, refs, []Fact{effect})
}

// SimulateEquip places an item into a slot, re-running every forbidden
// predicate over the full resulting snapshot. An empty item frees the slot.
func (s *Session) SimulateEquip(char, slot, item, cause string) (Event, error) {
	if !s.HasCharacter(char) {
		return Event{}, reject(RejectUnknownCharacter, "character %q", char)
	}

	snap, _ := s.Snapshot(char)
	if item == "" {
		delete(snap.Equipped, slot)
	} else {
		snap.Equipped[slot] = item
	}
	if err := s.checkForbidden(snap); err != nil {
		return Event{}, err
	}

	effect := Fact{Character: char, Attr: EquippedAttr(slot), Value: item}
	refs := make([]string, 0, len(s.axioms.Forbidden()))
	for _, fr := range s.axioms.Forbidden() {
		refs = append(refs, fmt.Sprintf("forbidden_combination(%s)", fr.Name))
	}
	if len(refs) == 0 {
		refs = []string{"equipment_unrestricted"}
	}

	return s.commit(cause, refs, []Fact{effect})
}

// checkForbidden evaluates every forbidden predicate against a candidate
// snapshot and rejects if any holds.
func (s *Session) checkForbidden(snap Snapshot) error {
	ctx := rules.SnapshotContext(snap.Character, snap.Class, snap.Level, snap.Experience, snap.Stats, snap.Equipped)
	name, err := s.axioms.FirstForbidden(ctx)
	if err != nil {
		return fmt.Errorf("forbidden check for %s: %w", snap.Character, err)
	}
	if name != "" {
		return reject(RejectForbiddenCombination, "%q", name)
	}
	return nil
}
