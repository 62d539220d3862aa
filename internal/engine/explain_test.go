package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExplainFact(t *testing.T) {
	s := testSession(t)

	_, err := s.SimulateExperienceGain("c1", 100, "quest_complete:q042")
	require.NoError(t, err)
	_, err = s.SimulateLevelUp("c1")
	require.NoError(t, err)

	rec, err := s.Explain("c1", LevelAttr(), s.Now())
	require.NoError(t, err)

	assert.Equal(t, "e1", rec.EventID)
	assert.Equal(t, "level_up:c1", rec.Cause)
	assert.Equal(t, []string{"level_requirement(2)"}, rec.RuleRefs)

	v, _ := rec.Fact.Int()
	assert.Equal(t, 2, v)

	require.NotNil(t, rec.Previous)
	prev, _ := rec.Previous.Int()
	assert.Equal(t, 1, prev)
	assert.Equal(t, 0, rec.Previous.Time)
}

func TestExplainSeedFact(t *testing.T) {
	s := testSession(t)

	rec, err := s.Explain("c1", ClassAttr(), 0)
	require.NoError(t, err)

	assert.Empty(t, rec.EventID)
	assert.Equal(t, "seed", rec.Cause)
	assert.Nil(t, rec.Previous)

	class, _ := rec.Fact.Str()
	assert.Equal(t, "mage", class)
}

func TestExplainAtEarlierTime(t *testing.T) {
	s := testSession(t)

	s.SimulateExperienceGain("c1", 50, "quest:a")
	s.SimulateExperienceGain("c1", 70, "quest:b")

	// At t=1 only the first gain holds.
	rec, err := s.Explain("c1", ExperienceAttr(), 1)
	require.NoError(t, err)
	v, _ := rec.Fact.Int()
	assert.Equal(t, 50, v)
	assert.Equal(t, "quest:a", rec.Cause)
}

func TestExplainIsIdempotent(t *testing.T) {
	s := testSession(t)

	s.SimulateExperienceGain("c1", 100, "quest")
	s.SimulateLevelUp("c1")

	first, err := s.Explain("c1", LevelAttr(), s.Now())
	require.NoError(t, err)
	second, err := s.Explain("c1", LevelAttr(), s.Now())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestExplainMissingFact(t *testing.T) {
	s := testSession(t)

	_, err := s.Explain("c1", StatAttr("strength"), s.Now())
	assert.Error(t, err)

	_, err = s.Explain("ghost", LevelAttr(), 0)
	assert.Equal(t, RejectUnknownCharacter, ReasonOf(err))
}
