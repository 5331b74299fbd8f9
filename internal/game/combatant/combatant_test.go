package combatant_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/vancegreer/tactics/internal/game/combatant"
)

func TestFaction_HostileTo(t *testing.T) {
	assert.True(t, combatant.FactionPlayer.HostileTo(combatant.FactionEnemy))
	assert.True(t, combatant.FactionEnemy.HostileTo(combatant.FactionAlly))
	assert.False(t, combatant.FactionPlayer.HostileTo(combatant.FactionAlly))
	assert.False(t, combatant.FactionEnemy.HostileTo(combatant.FactionEnemy))
}

func TestParseFaction_UnknownDefaultsToEnemy(t *testing.T) {
	assert.Equal(t, combatant.FactionPlayer, combatant.ParseFaction("player"))
	assert.Equal(t, combatant.FactionAlly, combatant.ParseFaction("ally"))
	assert.Equal(t, combatant.FactionEnemy, combatant.ParseFaction("gibberish"))
}

func TestCombatant_DamageAndHeal(t *testing.T) {
	c := &combatant.Combatant{ID: "c1", MaxHP: 20, CurrentHP: 20}
	c.ApplyDamage(7)
	assert.Equal(t, 13, c.CurrentHP)
	c.ApplyDamage(50)
	assert.Equal(t, 0, c.CurrentHP)
	c.Heal(5)
	assert.Equal(t, 5, c.CurrentHP)
	c.Heal(100)
	assert.Equal(t, 20, c.CurrentHP)
}

func TestCombatant_Property_HPStaysInRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		maxHP := rapid.IntRange(1, 100).Draw(rt, "max_hp")
		c := &combatant.Combatant{ID: "x", MaxHP: maxHP, CurrentHP: maxHP}
		for i := 0; i < rapid.IntRange(1, 20).Draw(rt, "ops"); i++ {
			if rapid.Bool().Draw(rt, "heal") {
				c.Heal(rapid.IntRange(0, 50).Draw(rt, "amount"))
			} else {
				c.ApplyDamage(rapid.IntRange(0, 50).Draw(rt, "amount"))
			}
			assert.GreaterOrEqual(rt, c.CurrentHP, 0)
			assert.LessOrEqual(rt, c.CurrentHP, maxHP)
		}
	})
}

func TestRoster_AddAndLookup(t *testing.T) {
	r := combatant.NewRoster()
	require.NoError(t, r.Add(&combatant.Combatant{ID: "a", Name: "Asha", Faction: combatant.FactionPlayer, MaxHP: 10, CurrentHP: 10}))
	require.NoError(t, r.Add(&combatant.Combatant{ID: "b", Name: "Brand", Faction: combatant.FactionEnemy, MaxHP: 8, CurrentHP: 8}))

	assert.Error(t, r.Add(&combatant.Combatant{ID: "a"}), "duplicate ID rejected")
	assert.Error(t, r.Add(nil))
	assert.Error(t, r.Add(&combatant.Combatant{}))

	got, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, "Asha", got.Name)
	assert.True(t, got.Active, "Add activates the combatant")
	assert.NotNil(t, got.Conditions)

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "b", all[1].ID)
}

func TestRoster_FactionCounts(t *testing.T) {
	r := combatant.NewRoster()
	require.NoError(t, r.Add(&combatant.Combatant{ID: "p1", Faction: combatant.FactionPlayer}))
	require.NoError(t, r.Add(&combatant.Combatant{ID: "n1", Faction: combatant.FactionAlly}))
	require.NoError(t, r.Add(&combatant.Combatant{ID: "e1", Faction: combatant.FactionEnemy}))
	require.NoError(t, r.Add(&combatant.Combatant{ID: "e2", Faction: combatant.FactionEnemy}))

	assert.Equal(t, 2, r.ActiveOnPlayerSide())
	assert.Equal(t, 2, r.ActiveEnemies())

	r.Deactivate("e1")
	r.Deactivate("e2")
	assert.Equal(t, 0, r.ActiveEnemies())
	assert.Equal(t, 2, r.ActiveOnPlayerSide())
}
