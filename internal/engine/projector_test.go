package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectorRebuild(t *testing.T) {
	s := testSession(t)
	s.SimulateExperienceGain("c1", 100, "quest_complete:q042")
	s.SimulateLevelUp("c1")
	s.SimulateStatIncrease("c1", "intellect", 3, "training")
	s.SimulateEquip("c2", "armor", "heavy_armor", "loot")

	rebuilt, err := NewProjector().Rebuild(testSet(t), testSeeds(), s.Events())
	require.NoError(t, err)

	assert.Equal(t, s.Events(), rebuilt.Events())
	assert.Equal(t, s.Now(), rebuilt.Now())
	for _, char := range s.Characters() {
		a, _ := s.Snapshot(char)
		b, _ := rebuilt.Snapshot(char)
		assert.Equal(t, a, b)
	}
}

func TestProjectorNormalizesJSONNumbers(t *testing.T) {
	s := testSession(t)
	s.SimulateExperienceGain("c1", 100, "quest")
	s.SimulateLevelUp("c1")

	// Round-trip through JSON the way the journal does: numeric values
	// come back as float64 and must be normalized on replay.
	data, err := json.Marshal(s.Events())
	require.NoError(t, err)
	var events []Event
	require.NoError(t, json.Unmarshal(data, &events))

	rebuilt, err := NewProjector().Rebuild(testSet(t), testSeeds(), events)
	require.NoError(t, err)

	level, ok := rebuilt.currentInt("c1", LevelAttr())
	require.True(t, ok)
	assert.Equal(t, 2, level)
	assert.IsType(t, 0, rebuilt.Events()[0].Effects[0].Value)
}

func TestProjectorRejectsOutOfOrderEvents(t *testing.T) {
	s := testSession(t)
	s.SimulateExperienceGain("c1", 10, "quest:a")
	s.SimulateExperienceGain("c1", 10, "quest:b")

	events := s.Events()
	events[0], events[1] = events[1], events[0]

	_, err := NewProjector().Rebuild(testSet(t), testSeeds(), events)
	assert.Error(t, err)
}

func TestProjectorRejectsMultiTickEvent(t *testing.T) {
	s := testSession(t)
	s.SimulateExperienceGain("c1", 10, "quest")

	events := s.Events()
	events[0].ToTime = events[0].FromTime + 2

	_, err := NewProjector().Rebuild(testSet(t), testSeeds(), events)
	assert.Error(t, err)
}
