// Package ai implements the tactical planner: it assesses the
// battlefield for one combatant and scores candidate actions with
// named additive rules, so every decision carries a human-readable
// reasoning trail.
package ai

import (
	"fmt"
	"sort"

	"github.com/vancegreer/tactics/internal/game/combatant"
	"github.com/vancegreer/tactics/internal/game/engine"
	"github.com/vancegreer/tactics/internal/game/grid"
)

// Target pairs a combatant with its battlefield position relative to
// the acting combatant.
type Target struct {
	Combatant    *combatant.Combatant
	Position     grid.Coord
	DistanceFeet int
}

// TargetEvaluator orders candidate targets best-first. The planner
// attacks down the ranking.
type TargetEvaluator interface {
	Rank(self *combatant.Combatant, targets []Target) []Target
}

// DefaultTargetEvaluator ranks hurt targets first, then close ones,
// then structurally weak ones (lowest armor class).
type DefaultTargetEvaluator struct{}

// Rank sorts a copy of targets; the input slice is untouched.
func (DefaultTargetEvaluator) Rank(self *combatant.Combatant, targets []Target) []Target {
	out := append([]Target(nil), targets...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if fa, fb := a.Combatant.HPFraction(), b.Combatant.HPFraction(); fa != fb {
			return fa < fb
		}
		if a.DistanceFeet != b.DistanceFeet {
			return a.DistanceFeet < b.DistanceFeet
		}
		return a.Combatant.AC < b.Combatant.AC
	})
	return out
}

// Assessment is the planner's view of the battlefield from one
// combatant's seat.
type Assessment struct {
	Self            *combatant.Combatant
	Position        grid.Coord
	HPFraction      float64
	Allies          []Target
	Enemies         []Target // ranked best-target-first
	AdjacentEnemies int
}

// Assess builds an Assessment for the combatant with actorID from the
// engine's current state.
//
// Precondition: actorID must exist in the engine's roster with a
// recorded position.
func Assess(e *engine.Engine, actorID string, eval TargetEvaluator) (*Assessment, error) {
	self, ok := e.Roster().Get(actorID)
	if !ok {
		return nil, fmt.Errorf("ai: no combatant %q", actorID)
	}
	pos, ok := e.Position(actorID)
	if !ok {
		return nil, fmt.Errorf("ai: combatant %q has no position", actorID)
	}
	if eval == nil {
		eval = DefaultTargetEvaluator{}
	}

	a := &Assessment{Self: self, Position: pos, HPFraction: self.HPFraction()}
	for _, other := range e.Roster().All() {
		if other.ID == self.ID || !other.Active {
			continue
		}
		opos, ok := e.Position(other.ID)
		if !ok {
			continue
		}
		t := Target{Combatant: other, Position: opos, DistanceFeet: pos.DistanceFeet(opos)}
		if self.Faction.HostileTo(other.Faction) {
			a.Enemies = append(a.Enemies, t)
			if t.DistanceFeet <= engine.MeleeRangeFeet {
				a.AdjacentEnemies++
			}
		} else {
			a.Allies = append(a.Allies, t)
		}
	}
	a.Enemies = eval.Rank(self, a.Enemies)
	return a, nil
}
