package engine

import (
	"github.com/vancegreer/tactics/internal/game/combatant"
	"github.com/vancegreer/tactics/internal/game/condition"
	"github.com/vancegreer/tactics/internal/game/grid"
)

// ReactionChecker decides which enemies may take an opportunity attack
// against a mover following path. The engine still enforces the
// one-reaction-per-round budget on top of whatever the checker returns.
type ReactionChecker interface {
	// OpportunityAttacks returns the IDs of hostile combatants entitled
	// to strike the mover, in deterministic order.
	OpportunityAttacks(roster *combatant.Roster, positions map[string]grid.Coord, moverID string, path []grid.Coord) []string
}

// AdjacencyReactions is the default checker: leaving a cell adjacent to
// an active hostile combatant provokes, unless the mover is disengaging.
type AdjacencyReactions struct{}

// OpportunityAttacks scans the path for steps that leave an enemy's
// reach. Each enemy provokes at most once per movement.
func (AdjacencyReactions) OpportunityAttacks(roster *combatant.Roster, positions map[string]grid.Coord, moverID string, path []grid.Coord) []string {
	mover, ok := roster.Get(moverID)
	if !ok || len(path) < 2 {
		return nil
	}
	if mover.Conditions.Has(condition.TagDisengaging) {
		return nil
	}
	var out []string
	for _, enemy := range roster.All() {
		if !enemy.Active || !enemy.Faction.HostileTo(mover.Faction) {
			continue
		}
		pos, ok := positions[enemy.ID]
		if !ok {
			continue
		}
		for i := 0; i < len(path)-1; i++ {
			if path[i].Chebyshev(pos) == 1 && path[i+1].Chebyshev(pos) > 1 {
				out = append(out, enemy.ID)
				break
			}
		}
	}
	return out
}
