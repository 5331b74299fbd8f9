package ai

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/vancegreer/tactics/internal/game/combatant"
	"github.com/vancegreer/tactics/internal/game/condition"
	"github.com/vancegreer/tactics/internal/game/dice"
	"github.com/vancegreer/tactics/internal/game/engine"
	"github.com/vancegreer/tactics/internal/game/grid"
	"github.com/vancegreer/tactics/internal/game/ruleset"
)

// Decision is one planned course of action: the engine inputs to
// execute in order, the total score, and the reasoning trail that
// produced it. Empty Steps means the planner found nothing worth doing.
type Decision struct {
	Steps     []engine.ActionInput
	Score     float64
	Reasoning []string
}

// candidate is one course of action under evaluation.
type candidate struct {
	label          string
	steps          []engine.ActionInput
	kind           engine.ActionType // the defining step
	target         *Target
	moveCost       int
	distanceClosed int
}

// rule is one named scoring rule. It returns a score delta and the
// reason it fired; a zero delta means the rule does not apply.
type rule struct {
	name string
	eval func(p *Planner, c *candidate, a *Assessment) (float64, string)
}

// actionRules is the fixed catalog applied to every candidate, in order.
var actionRules = []rule{
	{"strike", func(p *Planner, c *candidate, a *Assessment) (float64, string) {
		if c.kind != engine.ActionAttack || c.target == nil {
			return 0, ""
		}
		return 10, fmt.Sprintf("can strike %s", c.target.Combatant.Name)
	}},
	{"kill_shot", func(p *Planner, c *candidate, a *Assessment) (float64, string) {
		if c.kind != engine.ActionAttack || c.target == nil {
			return 0, ""
		}
		if expectedDamage(a.Self) < float64(c.target.Combatant.CurrentHP) {
			return 0, ""
		}
		return 8, fmt.Sprintf("the blow could drop %s", c.target.Combatant.Name)
	}},
	{"wounded_target", func(p *Planner, c *candidate, a *Assessment) (float64, string) {
		if c.kind != engine.ActionAttack || c.target == nil {
			return 0, ""
		}
		frac := c.target.Combatant.HPFraction()
		if frac >= 1 {
			return 0, ""
		}
		return 3 * (1 - frac), fmt.Sprintf("%s is already wounded", c.target.Combatant.Name)
	}},
	{"movement_cost", func(p *Planner, c *candidate, a *Assessment) (float64, string) {
		if c.moveCost <= 0 {
			return 0, ""
		}
		return -0.05 * float64(c.moveCost), fmt.Sprintf("spends %d ft of movement", c.moveCost)
	}},
	{"close_distance", func(p *Planner, c *candidate, a *Assessment) (float64, string) {
		if c.distanceClosed <= 0 {
			return 0, ""
		}
		return 0.02 * float64(c.distanceClosed), fmt.Sprintf("closes %d ft toward the enemy", c.distanceClosed)
	}},
	{"guard_up", func(p *Planner, c *candidate, a *Assessment) (float64, string) {
		if c.kind != engine.ActionDodge || a.AdjacentEnemies == 0 {
			return 0, ""
		}
		return float64(a.AdjacentEnemies) + 2*(1-a.HPFraction),
			fmt.Sprintf("%d enemies in reach", a.AdjacentEnemies)
	}},
	{"clean_break", func(p *Planner, c *candidate, a *Assessment) (float64, string) {
		if c.kind != engine.ActionDisengage || a.AdjacentEnemies < 2 {
			return 0, ""
		}
		return 2, fmt.Sprintf("slips away from %d enemies without provoking", a.AdjacentEnemies)
	}},
	{"concealment", func(p *Planner, c *candidate, a *Assessment) (float64, string) {
		if c.kind != engine.ActionHide {
			return 0, ""
		}
		return 2, "no enemy in reach; worth vanishing"
	}},
	{"assist", func(p *Planner, c *candidate, a *Assessment) (float64, string) {
		if c.kind != engine.ActionHelp || c.target == nil {
			return 0, ""
		}
		return 1.5, fmt.Sprintf("sets up %s's next attack", c.target.Combatant.Name)
	}},
}

// Planner scores candidate actions for one combatant at a time.
type Planner struct {
	logger *zap.Logger
	rules  *ruleset.Registry
	eval   TargetEvaluator
}

// NewPlanner constructs a Planner.
//
// Precondition: logger and rules must be non-nil.
func NewPlanner(logger *zap.Logger, rules *ruleset.Registry) *Planner {
	if logger == nil {
		panic("ai.NewPlanner: logger must not be nil")
	}
	if rules == nil {
		panic("ai.NewPlanner: ruleset registry must not be nil")
	}
	return &Planner{logger: logger, rules: rules, eval: DefaultTargetEvaluator{}}
}

// SetTargetEvaluator replaces the target ranking policy.
//
// Precondition: eval must be non-nil.
func (p *Planner) SetTargetEvaluator(eval TargetEvaluator) {
	if eval == nil {
		panic("ai.SetTargetEvaluator: evaluator must not be nil")
	}
	p.eval = eval
}

// DecideAction plans the main action for the combatant with actorID.
// Below the archetype's flee threshold the planner overrides every
// candidate and retreats; otherwise it enumerates candidates and keeps
// the highest score, with earlier enumeration winning exact ties.
//
// Precondition: combat must be active and actorID must be in the
// roster.
func (p *Planner) DecideAction(e *engine.Engine, actorID string) (*Decision, error) {
	a, err := Assess(e, actorID, p.eval)
	if err != nil {
		return nil, err
	}

	if arch, ok := p.rules.Get(a.Self.Archetype); ok && arch.FleeThreshold > 0 && a.HPFraction < arch.FleeThreshold {
		return p.fleeDecision(e, a, arch), nil
	}

	candidates := p.enumerate(e, a)
	if len(candidates) == 0 {
		return &Decision{Reasoning: []string{"no viable action this turn"}}, nil
	}

	var best *Decision
	for i := range candidates {
		d := p.score(&candidates[i], a)
		if best == nil || d.Score > best.Score {
			best = d
		}
	}
	p.logger.Debug("action decided",
		zap.String("actor", actorID),
		zap.Float64("score", best.Score),
		zap.Strings("reasoning", best.Reasoning))
	return best, nil
}

// score runs the rule catalog over one candidate.
func (p *Planner) score(c *candidate, a *Assessment) *Decision {
	d := &Decision{Steps: c.steps, Reasoning: []string{c.label}}
	for _, r := range actionRules {
		delta, reason := r.eval(p, c, a)
		if reason == "" {
			continue
		}
		d.Score += delta
		d.Reasoning = append(d.Reasoning, fmt.Sprintf("%s %+.1f: %s", r.name, delta, reason))
	}
	return d
}

// enumerate builds the candidate list in a fixed order: attacks down
// the target ranking, move-then-attack, dash, dodge, disengage, hide,
// help.
func (p *Planner) enumerate(e *engine.Engine, a *Assessment) []candidate {
	ledger, ok := e.Ledger(a.Self.ID)
	if !ok || ledger.ActionUsed {
		return nil
	}
	movement := e.MovementRemaining(a.Self.ID)
	var out []candidate

	for i := range a.Enemies {
		t := &a.Enemies[i]
		if t.DistanceFeet <= engine.MeleeRangeFeet {
			out = append(out, candidate{
				label:  fmt.Sprintf("attack %s", t.Combatant.Name),
				steps:  []engine.ActionInput{{ActorID: a.Self.ID, Type: engine.ActionAttack, TargetID: t.Combatant.ID}},
				kind:   engine.ActionAttack,
				target: t,
			})
		}
	}
	for i := range a.Enemies {
		t := &a.Enemies[i]
		if t.DistanceFeet <= engine.MeleeRangeFeet {
			continue
		}
		dest, cost, ok := p.approach(e, a, t, movement)
		if !ok {
			continue
		}
		out = append(out, candidate{
			label: fmt.Sprintf("close on %s and attack", t.Combatant.Name),
			steps: []engine.ActionInput{
				{ActorID: a.Self.ID, Type: engine.ActionMove, To: dest},
				{ActorID: a.Self.ID, Type: engine.ActionAttack, TargetID: t.Combatant.ID},
			},
			kind:           engine.ActionAttack,
			target:         t,
			moveCost:       cost,
			distanceClosed: t.DistanceFeet - engine.MeleeRangeFeet,
		})
	}

	if len(a.Enemies) > 0 {
		t := &a.Enemies[0]
		if t.DistanceFeet > engine.MeleeRangeFeet {
			closed := t.DistanceFeet - engine.MeleeRangeFeet
			budget := movement + effectiveSpeed(a.Self)
			if closed > budget {
				closed = budget
			}
			out = append(out, candidate{
				label: fmt.Sprintf("dash toward %s", t.Combatant.Name),
				steps: []engine.ActionInput{
					{ActorID: a.Self.ID, Type: engine.ActionDash},
					{ActorID: a.Self.ID, Type: engine.ActionMove, To: nearestAdjacent(a.Position, t.Position)},
				},
				kind:           engine.ActionDash,
				distanceClosed: closed,
			})
		}
	}

	out = append(out, candidate{
		label: "dodge",
		steps: []engine.ActionInput{{ActorID: a.Self.ID, Type: engine.ActionDodge}},
		kind:  engine.ActionDodge,
	})
	if a.AdjacentEnemies > 0 {
		out = append(out, candidate{
			label: "disengage",
			steps: []engine.ActionInput{{ActorID: a.Self.ID, Type: engine.ActionDisengage}},
			kind:  engine.ActionDisengage,
		})
	}
	if a.AdjacentEnemies == 0 && !a.Self.Conditions.Has(condition.TagHidden) {
		out = append(out, candidate{
			label: "hide",
			steps: []engine.ActionInput{{ActorID: a.Self.ID, Type: engine.ActionHide}},
			kind:  engine.ActionHide,
		})
	}
	for i := range a.Allies {
		t := &a.Allies[i]
		if t.DistanceFeet > engine.MeleeRangeFeet {
			continue
		}
		out = append(out, candidate{
			label:  fmt.Sprintf("help %s", t.Combatant.Name),
			steps:  []engine.ActionInput{{ActorID: a.Self.ID, Type: engine.ActionHelp, TargetID: t.Combatant.ID}},
			kind:   engine.ActionHelp,
			target: t,
		})
		break
	}
	return out
}

// approach finds the cheapest fully-reachable cell adjacent to the
// target within the movement budget.
func (p *Planner) approach(e *engine.Engine, a *Assessment, t *Target, budget int) (grid.Coord, int, bool) {
	g := e.Grid()
	bestCost := -1
	var best grid.Coord
	for _, dest := range g.Neighbors(t.Position, true) {
		res := g.FindPath(grid.PathRequest{
			Start:   a.Position,
			End:     dest,
			Budget:  budget,
			MoverID: a.Self.ID,
			Profile: moveProfile(a.Self),
			IsAlly: func(id string) bool {
				o, ok := e.Roster().Get(id)
				return ok && !o.Faction.HostileTo(a.Self.Faction)
			},
		})
		if !res.Found || !res.Complete {
			continue
		}
		if bestCost < 0 || res.Cost < bestCost {
			bestCost = res.Cost
			best = dest
		}
	}
	return best, bestCost, bestCost >= 0
}

// fleeDecision retreats: dash, then run to the reachable cell that
// maximises the distance to the nearest enemy.
func (p *Planner) fleeDecision(e *engine.Engine, a *Assessment, arch *ruleset.Archetype) *Decision {
	budget := e.MovementRemaining(a.Self.ID) + effectiveSpeed(a.Self)
	cells := e.Grid().ReachableCells(grid.PathRequest{
		Start:   a.Position,
		Budget:  budget,
		MoverID: a.Self.ID,
		Profile: moveProfile(a.Self),
		IsAlly: func(id string) bool {
			o, ok := e.Roster().Get(id)
			return ok && !o.Faction.HostileTo(a.Self.Faction)
		},
	})

	best := a.Position
	bestDist := nearestEnemyFeet(a, a.Position)
	bestCost := 0
	for _, rc := range cells {
		d := nearestEnemyFeet(a, rc.Coord)
		switch {
		case d > bestDist,
			d == bestDist && rc.Cost < bestCost,
			d == bestDist && rc.Cost == bestCost && lessCoord(rc.Coord, best):
			best, bestDist, bestCost = rc.Coord, d, rc.Cost
		}
	}

	d := &Decision{
		Reasoning: []string{
			fmt.Sprintf("flee_override: hp %.0f%% below flee threshold %.0f%%",
				a.HPFraction*100, arch.FleeThreshold*100),
		},
	}
	if best == a.Position {
		// Nowhere safer to go; at least make the enemies pay to follow.
		d.Steps = []engine.ActionInput{{ActorID: a.Self.ID, Type: engine.ActionDodge}}
		d.Reasoning = append(d.Reasoning, "cornered: no safer cell reachable, dodging instead")
		return d
	}
	d.Steps = []engine.ActionInput{
		{ActorID: a.Self.ID, Type: engine.ActionDash},
		{ActorID: a.Self.ID, Type: engine.ActionMove, To: best},
	}
	d.Reasoning = append(d.Reasoning,
		fmt.Sprintf("retreating to (%d,%d), %d ft from the nearest enemy", best.X, best.Y, bestDist))
	return d
}

// nearestEnemyFeet is the distance from pos to the closest enemy.
func nearestEnemyFeet(a *Assessment, pos grid.Coord) int {
	best := -1
	for _, t := range a.Enemies {
		d := pos.DistanceFeet(t.Position)
		if best < 0 || d < best {
			best = d
		}
	}
	return best
}

// nearestAdjacent picks the cell next to target closest to from, as a
// movement destination that never lands on the target itself.
func nearestAdjacent(from, target grid.Coord) grid.Coord {
	best := target
	bestDist := -1
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			c := grid.Coord{X: target.X + dx, Y: target.Y + dy}
			d := from.Chebyshev(c)
			if bestDist < 0 || d < bestDist || (d == bestDist && lessCoord(c, best)) {
				best = c
				bestDist = d
			}
		}
	}
	return best
}

func lessCoord(a, b grid.Coord) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.X < b.X
}

// expectedDamage is the average damage of a combatant's attack,
// including the rage bonus.
func expectedDamage(c *combatant.Combatant) float64 {
	expr, err := dice.Parse(c.DamageDice)
	if err != nil {
		return 0
	}
	avg := expr.Average()
	if c.Conditions.Has(condition.TagRaging) {
		avg += 2
	}
	return avg
}

func moveProfile(c *combatant.Combatant) grid.MoveProfile {
	return grid.MoveProfile{
		CanFly:   c.Modes.Fly > 0,
		CanSwim:  c.Modes.Swim > 0,
		CanClimb: c.Modes.Climb > 0,
	}
}

func effectiveSpeed(c *combatant.Combatant) int {
	best := c.Speed
	for _, s := range []int{c.Modes.Fly, c.Modes.Swim, c.Modes.Climb} {
		if s > best {
			best = s
		}
	}
	return best
}
