// Package fol serializes a simulation session into a Prolog-like
// first-order-logic text format for an external theorem prover. Output is
// deterministic: identical session state always produces byte-identical
// files, so downstream tooling can diff or cache results.
package fol

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bivex/loreSystem-sub001/internal/engine"
)

// ExportedFiles lists the paths written by a successful export.
type ExportedFiles struct {
	Axioms     string
	State      string
	Invariants string
}

// ExportError surfaces a failed write. The in-memory session is never
// affected; a failed export simply fails that one attempt.
type ExportError struct {
	Path string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %s: %v", e.Path, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// Export writes axioms.in, state.in, and invariants.in into dir. A session
// with zero events still produces valid files.
func Export(s *engine.Session, dir string) (ExportedFiles, error) {
	files := ExportedFiles{
		Axioms:     filepath.Join(dir, "axioms.in"),
		State:      filepath.Join(dir, "state.in"),
		Invariants: filepath.Join(dir, "invariants.in"),
	}

	if err := writeFile(files.Axioms, renderAxioms(s)); err != nil {
		return ExportedFiles{}, err
	}
	if err := writeFile(files.State, renderState(s)); err != nil {
		return ExportedFiles{}, err
	}
	if err := writeFile(files.Invariants, renderInvariants()); err != nil {
		return ExportedFiles{}, err
	}

	return files, nil
}

func writeFile(path string, content []byte) error {
	if err := os.WriteFile(path, content, 0644); err != nil {
		return &ExportError{Path: path, Err: err}
	}
	return nil
}

func renderAxioms(s *engine.Session) []byte {
	var b bytes.Buffer
	set := s.Axioms()

	b.WriteString("% lore axiom set\n")
	for _, class := range set.Classes() {
		fmt.Fprintf(&b, "class(%s).\n", atom(class))
	}
	for _, stat := range set.Stats() {
		bound, _ := set.StatBound(stat)
		fmt.Fprintf(&b, "stat_bound(%s, %d).\n", atom(stat), bound)
	}
	for _, class := range set.Classes() {
		for _, stat := range set.AffinityStats(class) {
			fmt.Fprintf(&b, "uses_stat(%s, %s).\n", atom(class), atom(stat))
		}
	}
	for _, level := range set.Levels() {
		xp, _ := set.RequiredXP(level)
		fmt.Fprintf(&b, "required_xp(%d, %d).\n", level, xp)
	}
	for _, fr := range set.Forbidden() {
		fmt.Fprintf(&b, "%% %s: %s\n", fr.Name, fr.Rule)
		fmt.Fprintf(&b, "forbidden_combination(%s).\n", atom(fr.Name))
	}

	return b.Bytes()
}

func renderState(s *engine.Session) []byte {
	var b bytes.Buffer

	b.WriteString("% time-indexed fact history\n")
	for _, char := range s.Characters() {
		for _, a := range s.Attrs(char) {
			for _, f := range s.FactHistory(char, a) {
				fmt.Fprintf(&b, "%s.\n", timedFactTerm(f))
			}
		}
	}

	b.WriteString("% event log\n")
	for _, evt := range s.Events() {
		fmt.Fprintf(&b, "event(%s, %s, %d, %d).\n", atom(evt.ID), quoted(evt.Cause), evt.FromTime, evt.ToTime)
		for _, f := range evt.Effects {
			fmt.Fprintf(&b, "effect(%s, %s, %d, %d).\n", atom(evt.ID), factTerm(f), evt.FromTime, evt.ToTime)
		}
	}

	return b.Bytes()
}

// renderInvariants emits the fixed invariant set as negated existentials:
// each clause names a state no valid assignment may satisfy, suitable for
// refutation search.
func renderInvariants() []byte {
	var b bytes.Buffer

	b.WriteString("% invariants as negated existentials\n")
	b.WriteString("% no stat value may exceed its bound\n")
	b.WriteString(":- stat_value(C, S, V, T), stat_bound(S, Max), V > Max.\n")
	b.WriteString("% no stat value may reference an undeclared stat\n")
	b.WriteString(":- stat_value(C, S, V, T), \\+ stat_bound(S, _).\n")
	b.WriteString("% no character may hold an undeclared class\n")
	b.WriteString(":- class_of(C, Class, T), \\+ class(Class).\n")
	b.WriteString("% every non-seed fact is produced by exactly one event\n")
	b.WriteString(":- effect(E1, F, _, T), effect(E2, F, _, T), E1 \\= E2.\n")
	b.WriteString("% no two events share a starting time\n")
	b.WriteString(":- event(E1, _, T, _), event(E2, _, T, _), E1 \\= E2.\n")
	b.WriteString("% every event advances time by exactly one tick\n")
	b.WriteString(":- event(E, _, From, To), To =\\= From + 1.\n")
	b.WriteString("% levels never advance by more than one\n")
	b.WriteString(":- level(C, L1, T1), level(C, L2, T2), T2 > T1, L2 > L1 + 1.\n")

	return b.Bytes()
}

// timedFactTerm renders a fact as a time-indexed predicate,
// e.g. stat_value(c1, strength, 100, 3).
func timedFactTerm(f engine.Fact) string {
	term := factTerm(f)
	return fmt.Sprintf("%s, %d)", term[:len(term)-1], f.Time)
}

// factTerm renders a fact as a predicate without its time argument,
// the form used inside effect/4.
func factTerm(f engine.Fact) string {
	switch f.Attr.Kind {
	case engine.AttrLevel:
		v, _ := f.Int()
		return fmt.Sprintf("level(%s, %d)", atom(f.Character), v)
	case engine.AttrExperience:
		v, _ := f.Int()
		return fmt.Sprintf("experience(%s, %d)", atom(f.Character), v)
	case engine.AttrStat:
		v, _ := f.Int()
		return fmt.Sprintf("stat_value(%s, %s, %d)", atom(f.Character), atom(f.Attr.Qualifier), v)
	case engine.AttrClass:
		v, _ := f.Str()
		return fmt.Sprintf("class_of(%s, %s)", atom(f.Character), atom(v))
	case engine.AttrEquipped:
		v, _ := f.Str()
		if v == "" {
			v = "none"
		}
		return fmt.Sprintf("equipped(%s, %s, %s)", atom(f.Character), atom(f.Attr.Qualifier), atom(v))
	}
	return fmt.Sprintf("unknown_fact(%s)", atom(f.Character))
}

var atomPattern = regexp.MustCompile(`^[a-z][a-zA-Z0-9_]*$`)

// atom renders a string as a Prolog atom, quoting when the bare form would
// not parse as one.
func atom(s string) string {
	if atomPattern.MatchString(s) {
		return s
	}
	return quoted(s)
}

func quoted(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "\\'") + "'"
}
