package engine

import (
	"github.com/vancegreer/tactics/internal/game/grid"
	"github.com/vancegreer/tactics/internal/game/initiative"
)

// CombatantView is a read-only projection of one combatant for display
// and AI consumption.
type CombatantView struct {
	ID         string
	Name       string
	Faction    string
	CurrentHP  int
	MaxHP      int
	Active     bool
	Position   grid.Coord
	Conditions []string
}

// CombatState is a read-only projection of the whole encounter.
type CombatState struct {
	EncounterID string
	Phase       string
	Round       int
	TurnIndex   int
	CurrentID   string
	Order       []initiative.Entry
	Combatants  []CombatantView
}

// State returns a read-only projection of the encounter. Before
// StartCombat the projection carries only the phase.
func (e *Engine) State() CombatState {
	st := CombatState{Phase: e.phase.String()}
	if e.tracker == nil {
		return st
	}
	st.EncounterID = e.encounterID
	st.Round = e.tracker.Round()
	st.TurnIndex = e.tracker.TurnIndex()
	st.Order = e.tracker.Order()
	if e.phase == PhaseActive {
		if current, err := e.tracker.Current(); err == nil && current != nil {
			st.CurrentID = current.ID
		}
	}
	for _, c := range e.roster.All() {
		st.Combatants = append(st.Combatants, CombatantView{
			ID:         c.ID,
			Name:       c.Name,
			Faction:    c.Faction.String(),
			CurrentHP:  c.CurrentHP,
			MaxHP:      c.MaxHP,
			Active:     c.Active,
			Position:   e.positions[c.ID],
			Conditions: c.Conditions.Tags(),
		})
	}
	return st
}
