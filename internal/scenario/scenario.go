// Package scenario loads YAML scenario files (seed characters plus an
// ordered list of simulation steps) and drives them through a session.
// Rejections are ordinary step outcomes, not run failures.
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bivex/loreSystem-sub001/internal/engine"
)

// Step is one requested simulation operation.
type Step struct {
	Op        string `yaml:"op"` // gain_xp, level_up, stat_increase, assign_class, equip
	Character string `yaml:"character"`
	Amount    int    `yaml:"amount"`
	Stat      string `yaml:"stat"`
	Class     string `yaml:"class"`
	Slot      string `yaml:"slot"`
	Item      string `yaml:"item"`
	Cause     string `yaml:"cause"`
}

// Scenario is a complete runnable script: who exists at time 0 and what
// happens to them, in order.
type Scenario struct {
	Characters []engine.CharacterSeed `yaml:"characters"`
	Steps      []Step                 `yaml:"steps"`
}

// LoadFile reads a scenario YAML file.
func LoadFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scenario %s: %w", path, err)
	}
	defer f.Close()

	var sc Scenario
	if err := yaml.NewDecoder(f).Decode(&sc); err != nil {
		return nil, fmt.Errorf("failed to decode scenario %s: %w", path, err)
	}
	return &sc, nil
}

// StepResult records the outcome of one step: either the committed event
// or the error that refused it.
type StepResult struct {
	Step  Step
	Event engine.Event
	Err   error
}

// Run applies each step in order. A rejected step does not stop the run;
// the session simply does not advance for it.
func Run(s *engine.Session, steps []Step) []StepResult {
	results := make([]StepResult, 0, len(steps))
	for _, step := range steps {
		evt, err := apply(s, step)
		results = append(results, StepResult{Step: step, Event: evt, Err: err})
	}
	return results
}

func apply(s *engine.Session, step Step) (engine.Event, error) {
	switch step.Op {
	case "gain_xp":
		return s.SimulateExperienceGain(step.Character, step.Amount, step.Cause)
	case "level_up":
		return s.SimulateLevelUp(step.Character)
	case "stat_increase":
		return s.SimulateStatIncrease(step.Character, step.Stat, step.Amount, step.Cause)
	case "assign_class":
		return s.SimulateClassAssignment(step.Character, step.Class, step.Cause)
	case "equip":
		return s.SimulateEquip(step.Character, step.Slot, step.Item, step.Cause)
	}
	return engine.Event{}, fmt.Errorf("unknown op %q", step.Op)
}
