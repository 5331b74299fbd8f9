package condition_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/vancegreer/tactics/internal/game/condition"
)

func TestDefaultRegistry_ContainsEngineTags(t *testing.T) {
	r := condition.DefaultRegistry()
	for _, id := range []string{
		condition.TagDodging,
		condition.TagDisengaging,
		condition.TagHidden,
		condition.TagReadied,
		condition.TagHelped,
		condition.TagRaging,
	} {
		_, ok := r.Get(id)
		assert.True(t, ok, "missing default condition %q", id)
	}
}

func TestDefinition_Validate(t *testing.T) {
	bad := []*condition.Definition{
		{ID: "", DurationType: condition.DurationRounds},
		{ID: "x", DurationType: "forever"},
		{ID: "x", DurationType: condition.DurationRounds, MaxStacks: -1},
	}
	for _, d := range bad {
		assert.Error(t, d.Validate())
	}
	ok := &condition.Definition{ID: "x", DurationType: condition.DurationPermanent}
	assert.NoError(t, ok.Validate())
}

func TestActiveSet_ApplyPreservesOrder(t *testing.T) {
	r := condition.DefaultRegistry()
	s := condition.NewActiveSet()

	dodging, _ := r.Get(condition.TagDodging)
	hidden, _ := r.Get(condition.TagHidden)
	helped, _ := r.Get(condition.TagHelped)

	require.NoError(t, s.Apply(hidden, 1, -1))
	require.NoError(t, s.Apply(dodging, 1, 1))
	require.NoError(t, s.Apply(helped, 1, 1))
	// Re-applying must not move hidden to the back.
	require.NoError(t, s.Apply(hidden, 1, -1))

	assert.Equal(t, []string{condition.TagHidden, condition.TagDodging, condition.TagHelped}, s.Tags())
}

func TestActiveSet_UnstackableStaysAtOne(t *testing.T) {
	r := condition.DefaultRegistry()
	s := condition.NewActiveSet()
	dodging, _ := r.Get(condition.TagDodging)

	require.NoError(t, s.Apply(dodging, 3, 1))
	require.NoError(t, s.Apply(dodging, 2, 2))
	assert.Equal(t, 1, s.Stacks(condition.TagDodging))

	ac, ok := s.Get(condition.TagDodging)
	require.True(t, ok)
	assert.Equal(t, 2, ac.DurationRemaining, "duration extends to the longer value")
}

func TestActiveSet_TickExpiresRoundsConditions(t *testing.T) {
	r := condition.DefaultRegistry()
	s := condition.NewActiveSet()
	dodging, _ := r.Get(condition.TagDodging)
	hidden, _ := r.Get(condition.TagHidden)

	require.NoError(t, s.Apply(dodging, 1, 1))
	require.NoError(t, s.Apply(hidden, 1, -1))

	expired := s.Tick()
	assert.Equal(t, []string{condition.TagDodging}, expired)
	assert.False(t, s.Has(condition.TagDodging))
	assert.True(t, s.Has(condition.TagHidden), "permanent conditions never tick away")
}

func TestActiveSet_Property_RemoveAlwaysClears(t *testing.T) {
	r := condition.DefaultRegistry()
	defs := r.All()
	rapid.Check(t, func(rt *rapid.T) {
		s := condition.NewActiveSet()
		n := rapid.IntRange(1, len(defs)).Draw(rt, "n")
		for i := 0; i < n; i++ {
			require.NoError(rt, s.Apply(defs[i], 1, 2))
		}
		victim := defs[rapid.IntRange(0, n-1).Draw(rt, "victim")]
		s.Remove(victim.ID)
		assert.False(rt, s.Has(victim.ID))
		assert.Len(rt, s.Tags(), n-1)
	})
}

func TestLoadDirectory_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`condition:
  id: stunned
  name: Stunned
  description: cannot act
  duration_type: rounds
  max_stacks: 0
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stunned.yaml"), content, 0o644))

	r, err := condition.LoadDirectory(dir)
	require.NoError(t, err)

	stunned, ok := r.Get("stunned")
	require.True(t, ok)
	assert.Equal(t, "Stunned", stunned.Name)

	// Defaults survive alongside file-loaded definitions.
	_, ok = r.Get(condition.TagDodging)
	assert.True(t, ok)
}

func TestLoadDirectory_RejectsInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("condition: [nope"), 0o644))
	_, err := condition.LoadDirectory(dir)
	assert.Error(t, err)
}
