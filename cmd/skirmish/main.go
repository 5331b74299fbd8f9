// Package main provides the skirmish binary: it builds an encounter
// from archetypes and auto-plays both sides with the tactical planner,
// printing the event log as combat unfolds.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/vancegreer/tactics/internal/config"
	"github.com/vancegreer/tactics/internal/game/ai"
	"github.com/vancegreer/tactics/internal/game/combatant"
	"github.com/vancegreer/tactics/internal/game/condition"
	"github.com/vancegreer/tactics/internal/game/dice"
	"github.com/vancegreer/tactics/internal/game/engine"
	"github.com/vancegreer/tactics/internal/game/grid"
	"github.com/vancegreer/tactics/internal/game/ruleset"
	"github.com/vancegreer/tactics/internal/observability"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file; empty = defaults + env")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Error("skirmish failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	conds := condition.DefaultRegistry()
	if cfg.Rules.ConditionDir != "" {
		loaded, err := condition.LoadDirectory(cfg.Rules.ConditionDir)
		if err != nil {
			return fmt.Errorf("loading conditions: %w", err)
		}
		conds = loaded
	}

	rules := ruleset.DefaultRegistry()
	if cfg.Rules.ArchetypeDir != "" {
		if err := rules.LoadDirectory(cfg.Rules.ArchetypeDir); err != nil {
			return fmt.Errorf("loading archetypes: %w", err)
		}
	}

	roller := dice.NewRoller(dice.NewCryptoSource(), logger.Named("dice"))
	eng := engine.NewEngine(logger.Named("engine"), roller, conds)

	g, fighters, positions, err := buildEncounter(cfg, rules)
	if err != nil {
		return err
	}

	rolls, err := eng.StartCombat(g, fighters, positions)
	if err != nil {
		return fmt.Errorf("starting combat: %w", err)
	}
	for _, r := range rolls {
		fmt.Printf("initiative: %-12s d20 %2d %+d = %d\n", r.CombatantID, r.Base, r.Modifier, r.Total)
	}

	if !cfg.AI.Enabled {
		summary, err := eng.EndCombat("ai disabled; nothing to drive the encounter")
		if err != nil {
			return err
		}
		printSummary(summary)
		return nil
	}

	planner := ai.NewPlanner(logger.Named("ai"), rules)
	if err := autoPlay(cfg, eng, planner, logger); err != nil {
		return err
	}

	for _, ev := range eng.RecentEvents(0) {
		fmt.Printf("[round %2d] %-20s %s\n", ev.Round, ev.Type, ev.Message)
	}
	if summary, ok := eng.Summary(); ok {
		printSummary(summary)
	}
	return nil
}

// autoPlay drives every turn with the planner until the encounter ends
// or the round cap is reached.
func autoPlay(cfg config.Config, eng *engine.Engine, planner *ai.Planner, logger *zap.Logger) error {
	for eng.Phase() == engine.PhaseActive {
		if eng.Round() > cfg.Rules.MaxRounds {
			if _, err := eng.EndCombat("round cap reached"); err != nil {
				return err
			}
			return nil
		}
		current, err := eng.CurrentCombatant()
		if err != nil {
			return err
		}
		if current == nil {
			if _, err := eng.EndCombat("no active combatants"); err != nil {
				return err
			}
			return nil
		}

		decision, err := planner.DecideAction(eng, current.ID)
		if err != nil {
			return err
		}
		if cfg.AI.LogReasoning {
			logger.Info("decision",
				zap.String("actor", current.ID),
				zap.Float64("score", decision.Score),
				zap.Strings("reasoning", decision.Reasoning))
		}
		executeSteps(eng, decision, logger)

		// The action may have ended the encounter (last enemy down).
		if eng.Phase() != engine.PhaseActive {
			return nil
		}
		bonus, err := planner.DecideBonusAction(eng, current.ID)
		if err != nil {
			return err
		}
		if bonus != nil {
			if cfg.AI.LogReasoning {
				logger.Info("bonus decision",
					zap.String("actor", current.ID),
					zap.Strings("reasoning", bonus.Reasoning))
			}
			executeSteps(eng, bonus, logger)
		}

		if _, err := eng.EndTurn(); err != nil {
			return err
		}
	}
	return nil
}

// executeSteps runs a decision's steps, stopping at the first rejected
// one; a rejection means the battlefield shifted under the plan.
func executeSteps(eng *engine.Engine, d *ai.Decision, logger *zap.Logger) {
	for _, step := range d.Steps {
		res, err := eng.TakeAction(step)
		if err != nil || !res.Success {
			if err != nil {
				logger.Warn("step error", zap.String("type", string(step.Type)), zap.Error(err))
			} else {
				logger.Debug("step rejected",
					zap.String("type", string(step.Type)),
					zap.String("reason", res.Reason))
			}
			return
		}
	}
}

// buildEncounter lays out the demo battlefield: a river through the
// middle, scattered walls for cover, and two squads on opposite edges.
func buildEncounter(cfg config.Config, rules *ruleset.Registry) (*grid.Grid, []*combatant.Combatant, map[string]grid.Coord, error) {
	w, h := cfg.Rules.GridWidth, cfg.Rules.GridHeight
	g, err := grid.New(w, h)
	if err != nil {
		return nil, nil, nil, err
	}
	riverY := h / 2
	for x := 0; x < w; x++ {
		if x == w/3 {
			continue // the ford
		}
		if err := g.SetTerrain(grid.Coord{X: x, Y: riverY}, grid.TerrainWater); err != nil {
			return nil, nil, nil, err
		}
	}
	for _, c := range []grid.Coord{{X: w / 4, Y: h/2 - 2}, {X: 3 * w / 4, Y: h/2 + 2}} {
		if g.InBounds(c) {
			_ = g.SetCover(c, grid.CoverHalf)
		}
	}

	squads := []struct {
		archetype string
		id        string
		name      string
		faction   combatant.Faction
		pos       grid.Coord
	}{
		{"soldier", "ash", "Ash", combatant.FactionPlayer, grid.Coord{X: 1, Y: 1}},
		{"scout", "brin", "Brin", combatant.FactionPlayer, grid.Coord{X: 3, Y: 0}},
		{"field-medic", "cole", "Cole", combatant.FactionAlly, grid.Coord{X: 2, Y: 2}},
		{"brute", "grok", "Grok", combatant.FactionEnemy, grid.Coord{X: w - 2, Y: h - 2}},
		{"soldier", "murk", "Murk", combatant.FactionEnemy, grid.Coord{X: w - 4, Y: h - 1}},
		{"winged-stalker", "vex", "Vex", combatant.FactionEnemy, grid.Coord{X: w - 3, Y: h - 3}},
	}

	var fighters []*combatant.Combatant
	positions := make(map[string]grid.Coord, len(squads))
	for _, s := range squads {
		arch, ok := rules.Get(s.archetype)
		if !ok {
			return nil, nil, nil, fmt.Errorf("unknown archetype %q", s.archetype)
		}
		fighters = append(fighters, arch.NewCombatant(s.id, s.name, s.faction))
		positions[s.id] = s.pos
	}
	return g, fighters, positions, nil
}

func printSummary(s *engine.Summary) {
	fmt.Printf("\nencounter %s: %s after %d rounds (%s)\n", s.EncounterID, s.Outcome, s.Rounds, s.Reason)
	fmt.Printf("survivors: %v, %d events logged\n", s.Survivors, s.EventCount)
}
