package ruleset_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancegreer/tactics/internal/game/combatant"
	"github.com/vancegreer/tactics/internal/game/ruleset"
)

func TestDefaultRegistry_SeedsPlayableArchetypes(t *testing.T) {
	r := ruleset.DefaultRegistry()
	require.Greater(t, r.Len(), 0)
	for _, id := range []string{"soldier", "scout", "brute", "field-medic", "winged-stalker"} {
		a, ok := r.Get(id)
		require.True(t, ok, "missing default archetype %q", id)
		assert.NoError(t, a.Validate())
	}
}

func TestValidate_CatchesBadStatBlocks(t *testing.T) {
	base := ruleset.Archetype{
		ID: "x", Name: "X", HitPoints: 10, ArmorClass: 12, Speed: 30, DamageDice: "1d6",
	}
	require.NoError(t, base.Validate())

	cases := []struct {
		name   string
		mutate func(a *ruleset.Archetype)
	}{
		{"missing id", func(a *ruleset.Archetype) { a.ID = "" }},
		{"zero hp", func(a *ruleset.Archetype) { a.HitPoints = 0 }},
		{"negative speed", func(a *ruleset.Archetype) { a.Speed = -5 }},
		{"missing dice", func(a *ruleset.Archetype) { a.DamageDice = "" }},
		{"flee threshold one", func(a *ruleset.Archetype) { a.FleeThreshold = 1.0 }},
		{"unknown role", func(a *ruleset.Archetype) { a.Role = "bard" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := base
			tc.mutate(&a)
			assert.Error(t, a.Validate())
		})
	}
}

func TestLoadDirectory_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	doc := `
id: soldier
name: Veteran Soldier
hit_points: 26
armor_class: 17
speed: 30
dex_mod: 1
attack_bonus: 6
damage_dice: 1d8+4
role: berserker
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "soldier.yaml"), []byte(doc), 0o644))

	r := ruleset.DefaultRegistry()
	require.NoError(t, r.LoadDirectory(dir))
	a, ok := r.Get("soldier")
	require.True(t, ok)
	assert.Equal(t, "Veteran Soldier", a.Name)
	assert.Equal(t, 26, a.HitPoints)
}

func TestLoadDirectory_RejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("id: bad\nname: Bad\n"), 0o644))
	r := ruleset.NewRegistry()
	assert.Error(t, r.LoadDirectory(dir), "stat block without hit points must fail validation")
}

func TestNewCombatant_CopiesStatBlock(t *testing.T) {
	r := ruleset.DefaultRegistry()
	a, ok := r.Get("winged-stalker")
	require.True(t, ok)

	c := a.NewCombatant("stalker-1", "Stalker", combatant.FactionEnemy)
	assert.Equal(t, a.HitPoints, c.CurrentHP)
	assert.Equal(t, a.HitPoints, c.MaxHP)
	assert.Equal(t, a.ArmorClass, c.AC)
	assert.Equal(t, a.FlySpeed, c.Modes.Fly)
	assert.Equal(t, "winged-stalker", c.Archetype)
	assert.Equal(t, combatant.FactionEnemy, c.Faction)
}
