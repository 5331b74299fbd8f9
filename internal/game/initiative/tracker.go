// Package initiative orders combatants and advances rounds and turns.
//
// The tracker holds ordering and index information only; every mutable
// combat stat lives in the combatant roster. Initiative order changes
// only through explicit operations: RollAll, SetInitiative, and Delay.
package initiative

import (
	"fmt"
	"sort"

	"github.com/vancegreer/tactics/internal/game/combatant"
	"github.com/vancegreer/tactics/internal/game/condition"
	"github.com/vancegreer/tactics/internal/game/dice"
)

// Entry is one slot in the initiative order.
type Entry struct {
	CombatantID string
	Base        int // raw d20 result; 0 for manual overrides and late joins
	Total       int // base + dexterity modifier, or the manual value
	HasActed    bool
}

// Roll reports the per-combatant outcome of RollAll.
type Roll struct {
	CombatantID string
	Base        int
	Modifier    int
	Total       int
}

// Result is the outcome of a finished encounter.
type Result int

const (
	ResultNone Result = iota
	ResultVictory
	ResultDefeat
)

// String returns the machine-stable result tag.
func (r Result) String() string {
	switch r {
	case ResultVictory:
		return "victory"
	case ResultDefeat:
		return "defeat"
	default:
		return "none"
	}
}

// Tracker maintains the initiative order for one encounter.
// It is not safe for concurrent use; the engine serialises access.
type Tracker struct {
	roster    *combatant.Roster
	conds     *condition.Registry
	entries   []*Entry
	round     int // 0 until initiative is rolled, then 1-based
	turnIndex int
	started   bool
}

// NewTracker creates a Tracker over the given roster.
//
// Precondition: roster and conds must be non-nil.
func NewTracker(roster *combatant.Roster, conds *condition.Registry) *Tracker {
	if roster == nil {
		panic("initiative.NewTracker: roster must not be nil")
	}
	if conds == nil {
		panic("initiative.NewTracker: condition registry must not be nil")
	}
	return &Tracker{roster: roster, conds: conds}
}

// Add appends an initiative slot for the roster combatant with id.
// Late joiners enter at the bottom of the order (Total 0) until
// SetInitiative or the next RollAll places them.
//
// Precondition: id must exist in the roster and not already have a slot.
func (t *Tracker) Add(id string) error {
	if _, ok := t.roster.Get(id); !ok {
		return fmt.Errorf("initiative: combatant %q not in roster", id)
	}
	if t.indexOf(id) >= 0 {
		return fmt.Errorf("initiative: combatant %q already tracked", id)
	}
	t.entries = append(t.entries, &Entry{CombatantID: id})
	return nil
}

// Remove deletes the initiative slot for id, shifting the current-turn
// index when the removed slot precedes it. No-op when id is untracked.
//
// Postcondition: the relative order of remaining entries is unchanged and
// the current turn still points at the same combatant when possible.
func (t *Tracker) Remove(id string) {
	idx := t.indexOf(id)
	if idx < 0 {
		return
	}
	t.entries = append(t.entries[:idx], t.entries[idx+1:]...)
	if idx < t.turnIndex {
		t.turnIndex--
	}
	if len(t.entries) > 0 && t.turnIndex >= len(t.entries) {
		t.turnIndex = 0
	}
}

// RollAll rolls initiative for every tracked combatant and re-sorts the
// order by (total, dexterity modifier) descending; equal pairs keep
// their prior relative order. Marks the encounter started: round 1,
// turn index 0, all has-acted flags cleared.
//
// Precondition: roller must be non-nil; at least one combatant tracked.
// Postcondition: Started() is true and Round() == 1.
func (t *Tracker) RollAll(roller *dice.Roller) ([]Roll, error) {
	if len(t.entries) == 0 {
		return nil, fmt.Errorf("initiative: cannot roll with no combatants")
	}
	rolls := make([]Roll, 0, len(t.entries))
	for _, e := range t.entries {
		c, ok := t.roster.Get(e.CombatantID)
		if !ok {
			return nil, fmt.Errorf("initiative: combatant %q vanished from roster", e.CombatantID)
		}
		r := roller.D20(c.DexMod)
		e.Base = r.Base
		e.Total = r.Total
		e.HasActed = false
		rolls = append(rolls, Roll{
			CombatantID: e.CombatantID,
			Base:        r.Base,
			Modifier:    c.DexMod,
			Total:       r.Total,
		})
	}
	t.sortEntries()
	t.started = true
	t.round = 1
	t.turnIndex = 0
	return rolls, nil
}

// SetInitiative overrides the total for id and re-sorts. The turn
// pointer follows the combatant whose turn it was before the re-sort.
//
// Precondition: id must be tracked.
func (t *Tracker) SetInitiative(id string, total int) error {
	idx := t.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("initiative: combatant %q not tracked", id)
	}
	t.entries[idx].Base = 0
	t.entries[idx].Total = total
	t.resortKeepingTurn(id)
	return nil
}

// Delay moves id to a strictly lower initiative total and re-sorts.
// The slot index of the current turn is preserved, so when the delaying
// combatant holds the turn, whoever rises into that slot acts next and
// the delayer acts again at its new, lower position.
//
// Precondition: id must be tracked; total must be strictly lower than
// the combatant's current total.
func (t *Tracker) Delay(id string, total int) error {
	idx := t.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("initiative: combatant %q not tracked", id)
	}
	if total >= t.entries[idx].Total {
		return fmt.Errorf("initiative: delay requires a lower total (have %d, requested %d)",
			t.entries[idx].Total, total)
	}
	current := ""
	if t.started && t.turnIndex < len(t.entries) {
		current = t.entries[t.turnIndex].CombatantID
	}
	t.entries[idx].Total = total
	t.sortEntries()
	if current != "" && current != id {
		if ci := t.indexOf(current); ci >= 0 {
			t.turnIndex = ci
		}
	}
	return nil
}

// Ready marks id as having acted this round and applies the "readied"
// condition tag for one round.
//
// Precondition: id must be tracked and present in the roster.
func (t *Tracker) Ready(id string) error {
	idx := t.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("initiative: combatant %q not tracked", id)
	}
	c, ok := t.roster.Get(id)
	if !ok {
		return fmt.Errorf("initiative: combatant %q not in roster", id)
	}
	def, ok := t.conds.Get(condition.TagReadied)
	if !ok {
		return fmt.Errorf("initiative: condition registry missing %q", condition.TagReadied)
	}
	if err := c.Conditions.Apply(def, 1, 1); err != nil {
		return err
	}
	t.entries[idx].HasActed = true
	return nil
}

// Current returns the combatant whose turn it is, scanning forward with
// wrap-around past inactive combatants. Returns nil when no combatant
// is active.
//
// Precondition: RollAll must have been called; calling earlier is a
// caller bug and returns an error.
func (t *Tracker) Current() (*combatant.Combatant, error) {
	if !t.started {
		return nil, fmt.Errorf("initiative: Current called before initiative was rolled")
	}
	for range t.entries {
		c, ok := t.roster.Get(t.entries[t.turnIndex].CombatantID)
		if ok && c.Active {
			return c, nil
		}
		t.advanceIndex()
	}
	return nil, nil
}

// Advance marks the outgoing combatant as having acted and moves to the
// next active combatant. Wrapping past the end of the order starts a
// new round and clears every has-acted flag.
//
// Precondition: RollAll must have been called; calling earlier is a
// caller bug and returns an error.
// Postcondition: when any combatant is active, the returned combatant
// is active.
func (t *Tracker) Advance() (*combatant.Combatant, error) {
	if !t.started {
		return nil, fmt.Errorf("initiative: Advance called before initiative was rolled")
	}
	if t.turnIndex < len(t.entries) {
		t.entries[t.turnIndex].HasActed = true
	}
	t.advanceIndex()
	return t.Current()
}

// advanceIndex steps the turn pointer one slot, handling the round wrap.
func (t *Tracker) advanceIndex() {
	t.turnIndex++
	if t.turnIndex >= len(t.entries) {
		t.turnIndex = 0
		t.round++
		for _, e := range t.entries {
			e.HasActed = false
		}
	}
}

// Round returns the current round: 0 before initiative is rolled.
func (t *Tracker) Round() int { return t.round }

// TurnIndex returns the current slot index in the order.
func (t *Tracker) TurnIndex() int { return t.turnIndex }

// Started reports whether initiative has been rolled.
func (t *Tracker) Started() bool { return t.started }

// Order returns a copy of the initiative entries in turn order.
func (t *Tracker) Order() []Entry {
	out := make([]Entry, len(t.entries))
	for i, e := range t.entries {
		out[i] = *e
	}
	return out
}

// CombatOver reports whether one side has no active members left.
func (t *Tracker) CombatOver() bool {
	return t.roster.ActiveEnemies() == 0 || t.roster.ActiveOnPlayerSide() == 0
}

// Outcome classifies a finished encounter: victory when the player side
// has active members and the enemy side does not, defeat in the mirror
// case, none otherwise.
func (t *Tracker) Outcome() Result {
	players := t.roster.ActiveOnPlayerSide()
	enemies := t.roster.ActiveEnemies()
	switch {
	case players > 0 && enemies == 0:
		return ResultVictory
	case enemies > 0 && players == 0:
		return ResultDefeat
	default:
		return ResultNone
	}
}

// RestoreOrder replaces the tracker's state wholesale. Used by snapshot
// restoration only; normal play must go through the explicit operations.
func (t *Tracker) RestoreOrder(entries []Entry, round, turnIndex int, started bool) {
	t.entries = make([]*Entry, len(entries))
	for i := range entries {
		e := entries[i]
		t.entries[i] = &e
	}
	t.round = round
	t.turnIndex = turnIndex
	t.started = started
}

func (t *Tracker) indexOf(id string) int {
	for i, e := range t.entries {
		if e.CombatantID == id {
			return i
		}
	}
	return -1
}

// sortEntries orders by total descending, then dexterity modifier
// descending; the stable sort preserves prior order for full ties.
func (t *Tracker) sortEntries() {
	dexOf := func(id string) int {
		if c, ok := t.roster.Get(id); ok {
			return c.DexMod
		}
		return 0
	}
	sort.SliceStable(t.entries, func(i, j int) bool {
		a, b := t.entries[i], t.entries[j]
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		return dexOf(a.CombatantID) > dexOf(b.CombatantID)
	})
}

// resortKeepingTurn re-sorts and repositions the turn pointer on the
// combatant that held the turn, falling back to the changed combatant.
func (t *Tracker) resortKeepingTurn(changed string) {
	current := changed
	if t.started && t.turnIndex < len(t.entries) {
		current = t.entries[t.turnIndex].CombatantID
	}
	t.sortEntries()
	if ci := t.indexOf(current); ci >= 0 {
		t.turnIndex = ci
	}
}
