package ai

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/vancegreer/tactics/internal/game/condition"
	"github.com/vancegreer/tactics/internal/game/engine"
	"github.com/vancegreer/tactics/internal/game/ruleset"
)

// bonusRules is the per-role bonus-action catalog. Each entry either
// declines or yields a scored decision.
var bonusRules = map[ruleset.Role][]rule{
	ruleset.RoleBerserker: {
		{"rage", func(p *Planner, c *candidate, a *Assessment) (float64, string) {
			if a.Self.Conditions.Has(condition.TagRaging) || len(a.Enemies) == 0 {
				return 0, ""
			}
			return 3, "enemies on the field and not yet raging"
		}},
	},
	ruleset.RoleMedic: {
		{"second_wind", func(p *Planner, c *candidate, a *Assessment) (float64, string) {
			if a.HPFraction >= 0.5 {
				return 0, ""
			}
			return 3 + 2*(0.5-a.HPFraction), fmt.Sprintf("down to %.0f%% hit points", a.HPFraction*100)
		}},
	},
	ruleset.RoleSkirmisher: {
		{"nimble_reposition", func(p *Planner, c *candidate, a *Assessment) (float64, string) {
			if a.AdjacentEnemies == 0 {
				return 0, ""
			}
			return 2.5, fmt.Sprintf("%d enemies in reach; extra footwork to slip out", a.AdjacentEnemies)
		}},
		{"nimble_reserve", func(p *Planner, c *candidate, a *Assessment) (float64, string) {
			if c.moveCost > 0 {
				return 0, ""
			}
			return 1, "movement exhausted; buying 10 more feet"
		}},
	},
}

// roleBonus maps each role to the engine action its bonus catalog
// drives.
var roleBonus = map[ruleset.Role]engine.ActionType{
	ruleset.RoleBerserker:  engine.BonusRage,
	ruleset.RoleMedic:      engine.BonusSecondWind,
	ruleset.RoleSkirmisher: engine.BonusNimbleStep,
}

// DecideBonusAction plans the bonus action for the combatant with
// actorID from its archetype's role catalog. Returns nil when no rule
// fires or the bonus slot is already spent.
func (p *Planner) DecideBonusAction(e *engine.Engine, actorID string) (*Decision, error) {
	a, err := Assess(e, actorID, p.eval)
	if err != nil {
		return nil, err
	}
	ledger, ok := e.Ledger(actorID)
	if !ok || ledger.BonusActionUsed {
		return nil, nil
	}
	arch, ok := p.rules.Get(a.Self.Archetype)
	if !ok {
		return nil, nil
	}
	rules, ok := bonusRules[arch.Role]
	if !ok {
		return nil, nil
	}

	c := candidate{
		kind:     roleBonus[arch.Role],
		moveCost: e.MovementRemaining(actorID),
	}
	d := &Decision{}
	for _, r := range rules {
		delta, reason := r.eval(p, &c, a)
		if reason == "" {
			continue
		}
		d.Score += delta
		d.Reasoning = append(d.Reasoning, fmt.Sprintf("%s %+.1f: %s", r.name, delta, reason))
	}
	if d.Score <= 0 {
		return nil, nil
	}
	d.Steps = []engine.ActionInput{{ActorID: actorID, Type: roleBonus[arch.Role]}}
	p.logger.Debug("bonus action decided",
		zap.String("actor", actorID),
		zap.String("role", string(arch.Role)),
		zap.Float64("score", d.Score),
		zap.Strings("reasoning", d.Reasoning))
	return d, nil
}
