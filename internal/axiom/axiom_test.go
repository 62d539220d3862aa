package axiom

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bivex/loreSystem-sub001/internal/rules"
)

func validDefinition() Definition {
	return Definition{
		Classes: []string{"warrior", "mage"},
		Stats: map[string]StatDef{
			"strength":  {Max: 100},
			"intellect": {Max: 100},
		},
		Affinities: map[string][]string{
			"mage":    {"intellect"},
			"warrior": {"strength"},
		},
		Forbidden: []ForbiddenRule{
			{Name: "mage_heavy_armor", Rule: "class == 'mage' && 'armor' in equipped && equipped['armor'] == 'heavy_armor'"},
		},
		Levels: map[int]int{2: 100, 3: 300},
	}
}

func TestLoadValidSet(t *testing.T) {
	set, err := Load(validDefinition())
	require.NoError(t, err)

	assert.Equal(t, []string{"mage", "warrior"}, set.Classes())
	assert.True(t, set.HasClass("mage"))
	assert.False(t, set.HasClass("necromancer"))

	bound, ok := set.StatBound("strength")
	require.True(t, ok)
	assert.Equal(t, 100, bound)
	_, ok = set.StatBound("charisma")
	assert.False(t, ok)

	assert.True(t, set.ClassUsesStat("mage", "intellect"))
	assert.False(t, set.ClassUsesStat("mage", "strength"))
	assert.Equal(t, []string{"intellect"}, set.AffinityStats("mage"))

	xp, ok := set.RequiredXP(2)
	require.True(t, ok)
	assert.Equal(t, 100, xp)
	_, ok = set.RequiredXP(4)
	assert.False(t, ok)
	assert.Equal(t, []int{2, 3}, set.Levels())
}

func TestLoadFailsFast(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Definition)
	}{
		{"duplicate class", func(d *Definition) { d.Classes = append(d.Classes, "mage") }},
		{"empty class", func(d *Definition) { d.Classes = append(d.Classes, "") }},
		{"non-positive bound", func(d *Definition) { d.Stats["strength"] = StatDef{Max: 0} }},
		{"affinity unknown class", func(d *Definition) { d.Affinities["bard"] = []string{"intellect"} }},
		{"affinity unknown stat", func(d *Definition) { d.Affinities["mage"] = []string{"charisma"} }},
		{"unnamed forbidden rule", func(d *Definition) { d.Forbidden[0].Name = "" }},
		{"duplicate forbidden rule", func(d *Definition) { d.Forbidden = append(d.Forbidden, d.Forbidden[0]) }},
		{"uncompilable predicate", func(d *Definition) { d.Forbidden[0].Rule = "class ==" }},
		{"non-bool predicate", func(d *Definition) { d.Forbidden[0].Rule = "level + 1" }},
		{"threshold below level 2", func(d *Definition) { d.Levels[1] = 0 }},
		{"non-positive threshold", func(d *Definition) { d.Levels[2] = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			def := validDefinition()
			tc.mutate(&def)
			_, err := Load(def)
			require.Error(t, err)
			var loadErr *LoadError
			assert.ErrorAs(t, err, &loadErr)
		})
	}
}

func TestFirstForbidden(t *testing.T) {
	set, err := Load(validDefinition())
	require.NoError(t, err)

	ctx := rules.SnapshotContext("c1", "mage", 1, 0, nil, map[string]string{"armor": "heavy_armor"})
	name, err := set.FirstForbidden(ctx)
	require.NoError(t, err)
	assert.Equal(t, "mage_heavy_armor", name)

	ctx = rules.SnapshotContext("c1", "warrior", 1, 0, nil, map[string]string{"armor": "heavy_armor"})
	name, err = set.FirstForbidden(ctx)
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "axioms.yaml")
	content := `classes: [mage]
stats:
  intellect:
    max: 50
affinities:
  mage: [intellect]
levels:
  2: 100
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	set, err := LoadFile(path)
	require.NoError(t, err)
	bound, ok := set.StatBound("intellect")
	require.True(t, ok)
	assert.Equal(t, 50, bound)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(":\n  - ["), 0644))
	_, err = LoadFile(bad)
	require.Error(t, err)
	var loadErr *LoadError
	assert.ErrorAs(t, err, &loadErr)
}
