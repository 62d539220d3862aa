package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bivex/loreSystem-sub001/internal/axiom"
	"github.com/bivex/loreSystem-sub001/internal/engine"
)

const scenarioYAML = `characters:
  - id: c1
    class: mage
    level: 1
    stats:
      intellect: 10
steps:
  - op: gain_xp
    character: c1
    amount: 100
    cause: quest_complete:q042
  - op: level_up
    character: c1
  - op: stat_increase
    character: c1
    stat: strength
    amount: 5
    cause: training
`

func scenarioSet(t *testing.T) *axiom.Set {
	t.Helper()
	set, err := axiom.Load(axiom.Definition{
		Classes: []string{"mage"},
		Stats: map[string]axiom.StatDef{
			"strength":  {Max: 100},
			"intellect": {Max: 100},
		},
		Affinities: map[string][]string{"mage": {"intellect"}},
		Levels:     map[int]int{2: 100},
	})
	require.NoError(t, err)
	return set
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scenarioYAML), 0644))

	sc, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, sc.Characters, 1)
	assert.Equal(t, "c1", sc.Characters[0].ID)
	require.Len(t, sc.Steps, 3)
	assert.Equal(t, "gain_xp", sc.Steps[0].Op)
	assert.Equal(t, 100, sc.Steps[0].Amount)
}

func TestRunRecordsRejections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scenarioYAML), 0644))
	sc, err := LoadFile(path)
	require.NoError(t, err)

	session, err := engine.NewSession(scenarioSet(t), sc.Characters)
	require.NoError(t, err)

	results := Run(session, sc.Steps)
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.NoError(t, results[1].Err)

	// Mages are not affiliated with strength; the run continues anyway.
	require.Error(t, results[2].Err)
	assert.Equal(t, engine.RejectClassDoesNotUseStat, engine.ReasonOf(results[2].Err))

	assert.Len(t, session.Events(), 2)
}

func TestRunUnknownOp(t *testing.T) {
	session, err := engine.NewSession(scenarioSet(t), []engine.CharacterSeed{{ID: "c1", Class: "mage"}})
	require.NoError(t, err)

	results := Run(session, []Step{{Op: "teleport", Character: "c1"}})
	require.Len(t, results, 1)
	assert.Error(t, results[0].Err)
	assert.Empty(t, session.Events())
}
