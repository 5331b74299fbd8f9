package initiative_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/vancegreer/tactics/internal/game/combatant"
	"github.com/vancegreer/tactics/internal/game/condition"
	"github.com/vancegreer/tactics/internal/game/dice"
	"github.com/vancegreer/tactics/internal/game/initiative"
)

// seqSource replays preset Intn results in order, wrapping at the end.
type seqSource struct {
	values []int
	idx    int
}

func (s *seqSource) Intn(n int) int {
	v := s.values[s.idx%len(s.values)]
	s.idx++
	return v % n
}

func rollerWith(values ...int) *dice.Roller {
	return dice.NewRoller(&seqSource{values: values}, zap.NewNop())
}

type fixture struct {
	roster  *combatant.Roster
	tracker *initiative.Tracker
}

func newFixture(t *testing.T, combatants ...*combatant.Combatant) *fixture {
	t.Helper()
	roster := combatant.NewRoster()
	tracker := initiative.NewTracker(roster, condition.DefaultRegistry())
	for _, c := range combatants {
		require.NoError(t, roster.Add(c))
		require.NoError(t, tracker.Add(c.ID))
	}
	return &fixture{roster: roster, tracker: tracker}
}

func TestRollAll_SortsByTotalThenDex(t *testing.T) {
	f := newFixture(t,
		&combatant.Combatant{ID: "a", Faction: combatant.FactionPlayer, DexMod: 0, MaxHP: 10, CurrentHP: 10},
		&combatant.Combatant{ID: "b", Faction: combatant.FactionEnemy, DexMod: 3, MaxHP: 10, CurrentHP: 10},
		&combatant.Combatant{ID: "c", Faction: combatant.FactionEnemy, DexMod: 0, MaxHP: 10, CurrentHP: 10},
	)

	// Intn results 9, 11, 14 → bases 10, 12, 15 → totals a=10, b=15, c=15.
	rolls, err := f.tracker.RollAll(rollerWith(9, 11, 14))
	require.NoError(t, err)
	require.Len(t, rolls, 3)

	order := f.tracker.Order()
	// b and c tie on total 15; b wins on dex modifier.
	assert.Equal(t, "b", order[0].CombatantID)
	assert.Equal(t, "c", order[1].CombatantID)
	assert.Equal(t, "a", order[2].CombatantID)

	assert.True(t, f.tracker.Started())
	assert.Equal(t, 1, f.tracker.Round())
	assert.Equal(t, 0, f.tracker.TurnIndex())
}

func TestRollAll_FullTiesKeepPriorOrder(t *testing.T) {
	f := newFixture(t,
		&combatant.Combatant{ID: "first", Faction: combatant.FactionPlayer, DexMod: 1},
		&combatant.Combatant{ID: "second", Faction: combatant.FactionEnemy, DexMod: 1},
	)
	_, err := f.tracker.RollAll(rollerWith(9, 9))
	require.NoError(t, err)

	order := f.tracker.Order()
	assert.Equal(t, "first", order[0].CombatantID)
	assert.Equal(t, "second", order[1].CombatantID)
}

func TestRollAll_Property_OrderIsSorted(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(2, 8).Draw(rt, "n")
		roster := combatant.NewRoster()
		tracker := initiative.NewTracker(roster, condition.DefaultRegistry())
		dexByID := make(map[string]int, n)
		values := make([]int, n)
		for i := 0; i < n; i++ {
			id := string(rune('a' + i))
			dex := rapid.IntRange(-3, 5).Draw(rt, "dex")
			dexByID[id] = dex
			require.NoError(rt, roster.Add(&combatant.Combatant{ID: id, DexMod: dex}))
			require.NoError(rt, tracker.Add(id))
			values[i] = rapid.IntRange(0, 19).Draw(rt, "roll")
		}
		_, err := tracker.RollAll(rollerWith(values...))
		require.NoError(rt, err)

		order := tracker.Order()
		for i := 1; i < len(order); i++ {
			prev, cur := order[i-1], order[i]
			assert.GreaterOrEqual(rt, prev.Total, cur.Total)
			if prev.Total == cur.Total {
				assert.GreaterOrEqual(rt, dexByID[prev.CombatantID], dexByID[cur.CombatantID])
			}
		}
	})
}

// Spec scenario: A (+5 dex) and B (-2 dex); whenever A's base roll is at
// least B's, A is ordered before B.
func TestRollAll_Property_DexWinsEqualRolls(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		aBase := rapid.IntRange(0, 19).Draw(rt, "a_base")
		bBase := rapid.IntRange(0, aBase).Draw(rt, "b_base")

		roster := combatant.NewRoster()
		tracker := initiative.NewTracker(roster, condition.DefaultRegistry())
		require.NoError(rt, roster.Add(&combatant.Combatant{ID: "A", DexMod: 5}))
		require.NoError(rt, roster.Add(&combatant.Combatant{ID: "B", DexMod: -2}))
		require.NoError(rt, tracker.Add("A"))
		require.NoError(rt, tracker.Add("B"))

		_, err := tracker.RollAll(rollerWith(aBase, bBase))
		require.NoError(rt, err)
		assert.Equal(rt, "A", tracker.Order()[0].CombatantID)
	})
}

func TestAdvance_WrapsRoundAndResetsActedFlags(t *testing.T) {
	f := newFixture(t,
		&combatant.Combatant{ID: "a", Faction: combatant.FactionPlayer, DexMod: 2},
		&combatant.Combatant{ID: "b", Faction: combatant.FactionEnemy, DexMod: 0},
	)
	_, err := f.tracker.RollAll(rollerWith(15, 5))
	require.NoError(t, err)

	cur, err := f.tracker.Current()
	require.NoError(t, err)
	assert.Equal(t, "a", cur.ID)

	next, err := f.tracker.Advance()
	require.NoError(t, err)
	assert.Equal(t, "b", next.ID)
	assert.Equal(t, 1, f.tracker.Round())
	assert.True(t, f.tracker.Order()[0].HasActed)

	next, err = f.tracker.Advance()
	require.NoError(t, err)
	assert.Equal(t, "a", next.ID)
	assert.Equal(t, 2, f.tracker.Round(), "wrap to slot 0 starts a new round")
	for _, e := range f.tracker.Order() {
		assert.False(t, e.HasActed, "round wrap clears has-acted flags")
	}
}

func TestAdvance_SkipsInactiveCombatants(t *testing.T) {
	f := newFixture(t,
		&combatant.Combatant{ID: "a", Faction: combatant.FactionPlayer},
		&combatant.Combatant{ID: "b", Faction: combatant.FactionEnemy},
		&combatant.Combatant{ID: "c", Faction: combatant.FactionEnemy},
	)
	_, err := f.tracker.RollAll(rollerWith(18, 12, 6))
	require.NoError(t, err)

	f.roster.Deactivate("b")
	next, err := f.tracker.Advance()
	require.NoError(t, err)
	assert.Equal(t, "c", next.ID)
}

func TestAdvance_Property_CurrentIsAlwaysActive(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(2, 6).Draw(rt, "n")
		roster := combatant.NewRoster()
		tracker := initiative.NewTracker(roster, condition.DefaultRegistry())
		ids := make([]string, n)
		values := make([]int, n)
		for i := 0; i < n; i++ {
			ids[i] = string(rune('a' + i))
			require.NoError(rt, roster.Add(&combatant.Combatant{ID: ids[i]}))
			require.NoError(rt, tracker.Add(ids[i]))
			values[i] = rapid.IntRange(0, 19).Draw(rt, "roll")
		}
		_, err := tracker.RollAll(rollerWith(values...))
		require.NoError(rt, err)

		// Deactivate a random subset, keeping at least one active.
		active := n
		for _, id := range ids {
			if active > 1 && rapid.Bool().Draw(rt, "deactivate") {
				roster.Deactivate(id)
				active--
			}
		}
		for i := 0; i < rapid.IntRange(1, 10).Draw(rt, "advances"); i++ {
			cur, err := tracker.Advance()
			require.NoError(rt, err)
			require.NotNil(rt, cur)
			assert.True(rt, cur.Active)
		}
	})
}

func TestAdvanceBeforeRoll_IsCallerError(t *testing.T) {
	f := newFixture(t, &combatant.Combatant{ID: "a"})
	_, err := f.tracker.Advance()
	assert.Error(t, err)
	_, err = f.tracker.Current()
	assert.Error(t, err)
}

func TestDelay_RequiresStrictlyLowerTotal(t *testing.T) {
	f := newFixture(t,
		&combatant.Combatant{ID: "a", DexMod: 0},
		&combatant.Combatant{ID: "b", DexMod: 0},
	)
	_, err := f.tracker.RollAll(rollerWith(17, 9))
	require.NoError(t, err)

	assert.Error(t, f.tracker.Delay("a", 18), "equal total is not a delay")
	assert.Error(t, f.tracker.Delay("a", 25), "higher total is not a delay")
	require.NoError(t, f.tracker.Delay("a", 5))

	order := f.tracker.Order()
	assert.Equal(t, "b", order[0].CombatantID)
	assert.Equal(t, "a", order[1].CombatantID)
	assert.Equal(t, 5, order[1].Total)
}

func TestSetInitiative_ResortsAndFollowsTurn(t *testing.T) {
	f := newFixture(t,
		&combatant.Combatant{ID: "a", DexMod: 0},
		&combatant.Combatant{ID: "b", DexMod: 0},
		&combatant.Combatant{ID: "c", DexMod: 0},
	)
	_, err := f.tracker.RollAll(rollerWith(19, 14, 4))
	require.NoError(t, err)

	// Advance so b holds the turn, then promote c above everyone.
	_, err = f.tracker.Advance()
	require.NoError(t, err)
	require.NoError(t, f.tracker.SetInitiative("c", 30))

	order := f.tracker.Order()
	assert.Equal(t, "c", order[0].CombatantID)
	cur, err := f.tracker.Current()
	require.NoError(t, err)
	assert.Equal(t, "b", cur.ID, "turn pointer follows the combatant, not the slot")
}

func TestRemove_ShiftsTurnIndex(t *testing.T) {
	f := newFixture(t,
		&combatant.Combatant{ID: "a"},
		&combatant.Combatant{ID: "b"},
		&combatant.Combatant{ID: "c"},
	)
	_, err := f.tracker.RollAll(rollerWith(18, 12, 6))
	require.NoError(t, err)
	_, err = f.tracker.Advance()
	require.NoError(t, err)

	f.tracker.Remove("a")
	cur, err := f.tracker.Current()
	require.NoError(t, err)
	assert.Equal(t, "b", cur.ID)
	assert.Len(t, f.tracker.Order(), 2)
}

func TestReady_MarksActedAndTags(t *testing.T) {
	f := newFixture(t,
		&combatant.Combatant{ID: "a"},
		&combatant.Combatant{ID: "b"},
	)
	_, err := f.tracker.RollAll(rollerWith(15, 5))
	require.NoError(t, err)

	require.NoError(t, f.tracker.Ready("a"))
	assert.True(t, f.tracker.Order()[0].HasActed)

	c, _ := f.roster.Get("a")
	assert.True(t, c.Conditions.Has(condition.TagReadied))
}

func TestOutcome(t *testing.T) {
	f := newFixture(t,
		&combatant.Combatant{ID: "p", Faction: combatant.FactionPlayer},
		&combatant.Combatant{ID: "n", Faction: combatant.FactionAlly},
		&combatant.Combatant{ID: "e", Faction: combatant.FactionEnemy},
	)
	assert.False(t, f.tracker.CombatOver())
	assert.Equal(t, initiative.ResultNone, f.tracker.Outcome())

	f.roster.Deactivate("e")
	assert.True(t, f.tracker.CombatOver())
	assert.Equal(t, initiative.ResultVictory, f.tracker.Outcome())

	f.roster.Deactivate("p")
	f.roster.Deactivate("n")
	assert.True(t, f.tracker.CombatOver())
	assert.Equal(t, initiative.ResultNone, f.tracker.Outcome(), "mutual wipe is neither victory nor defeat")
}
