package engine

import (
	"fmt"

	"github.com/vancegreer/tactics/internal/game/combatant"
	"github.com/vancegreer/tactics/internal/game/grid"
	"github.com/vancegreer/tactics/internal/game/initiative"
	"github.com/vancegreer/tactics/internal/game/turn"
)

// Snapshot is a plain nested-primitive record of an encounter, suitable
// for serialization with any codec. RestoreSnapshot reproduces the
// phase, initiative order, round and turn index, positions, and stats
// exactly.
type Snapshot struct {
	EncounterID string          `json:"encounter_id" yaml:"encounter_id"`
	Phase       string          `json:"phase" yaml:"phase"`
	Round       int             `json:"round" yaml:"round"`
	TurnIndex   int             `json:"turn_index" yaml:"turn_index"`
	Started     bool            `json:"started" yaml:"started"`
	Order       []OrderSnap     `json:"order" yaml:"order"`
	Combatants  []CombatantSnap `json:"combatants" yaml:"combatants"`
	Grid        GridSnap        `json:"grid" yaml:"grid"`
	Ledgers     []LedgerSnap    `json:"ledgers" yaml:"ledgers"`
	Reactions   []string        `json:"reactions_used,omitempty" yaml:"reactions_used,omitempty"`
	Events      []Event         `json:"events" yaml:"events"`
}

// OrderSnap is one initiative slot.
type OrderSnap struct {
	CombatantID string `json:"combatant_id" yaml:"combatant_id"`
	Base        int    `json:"base" yaml:"base"`
	Total       int    `json:"total" yaml:"total"`
	HasActed    bool   `json:"has_acted" yaml:"has_acted"`
}

// CombatantSnap is one combatant's full record.
type CombatantSnap struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Faction     string          `json:"faction" yaml:"faction"`
	DexMod      int             `json:"dex_mod" yaml:"dex_mod"`
	CurrentHP   int             `json:"current_hp" yaml:"current_hp"`
	MaxHP       int             `json:"max_hp" yaml:"max_hp"`
	AC          int             `json:"ac" yaml:"ac"`
	Speed       int             `json:"speed" yaml:"speed"`
	FlySpeed    int             `json:"fly_speed,omitempty" yaml:"fly_speed,omitempty"`
	SwimSpeed   int             `json:"swim_speed,omitempty" yaml:"swim_speed,omitempty"`
	ClimbSpeed  int             `json:"climb_speed,omitempty" yaml:"climb_speed,omitempty"`
	AttackBonus int             `json:"attack_bonus" yaml:"attack_bonus"`
	DamageDice  string          `json:"damage_dice" yaml:"damage_dice"`
	Archetype   string          `json:"archetype,omitempty" yaml:"archetype,omitempty"`
	Active      bool            `json:"active" yaml:"active"`
	Position    grid.Coord      `json:"position" yaml:"position"`
	Conditions  []ConditionSnap `json:"conditions,omitempty" yaml:"conditions,omitempty"`
}

// ConditionSnap is one active condition on a combatant.
type ConditionSnap struct {
	ID       string `json:"id" yaml:"id"`
	Stacks   int    `json:"stacks" yaml:"stacks"`
	Duration int    `json:"duration" yaml:"duration"` // rounds remaining; -1 = permanent
}

// GridSnap records grid dimensions plus only the cells that differ from
// an all-normal, flat, uncovered field.
type GridSnap struct {
	Width  int        `json:"width" yaml:"width"`
	Height int        `json:"height" yaml:"height"`
	Cells  []CellSnap `json:"cells,omitempty" yaml:"cells,omitempty"`
}

// CellSnap is one non-default grid cell.
type CellSnap struct {
	X         int    `json:"x" yaml:"x"`
	Y         int    `json:"y" yaml:"y"`
	Terrain   string `json:"terrain" yaml:"terrain"`
	Elevation int    `json:"elevation" yaml:"elevation"`
	Cover     int    `json:"cover" yaml:"cover"`
}

// LedgerSnap is one combatant's per-turn resource ledger.
type LedgerSnap struct {
	CombatantID     string `json:"combatant_id" yaml:"combatant_id"`
	MovementBudget  int    `json:"movement_budget" yaml:"movement_budget"`
	MovementUsed    int    `json:"movement_used" yaml:"movement_used"`
	ActionUsed      bool   `json:"action_used" yaml:"action_used"`
	BonusActionUsed bool   `json:"bonus_action_used" yaml:"bonus_action_used"`
}

// Snapshot captures the full encounter state.
//
// Precondition: StartCombat must have been called.
func (e *Engine) Snapshot() (*Snapshot, error) {
	if e.phase == PhaseNotInCombat {
		return nil, fmt.Errorf("engine: Snapshot called before StartCombat")
	}

	snap := &Snapshot{
		EncounterID: e.encounterID,
		Phase:       e.phase.String(),
		Round:       e.tracker.Round(),
		TurnIndex:   e.tracker.TurnIndex(),
		Started:     e.tracker.Started(),
	}
	for _, entry := range e.tracker.Order() {
		snap.Order = append(snap.Order, OrderSnap{
			CombatantID: entry.CombatantID,
			Base:        entry.Base,
			Total:       entry.Total,
			HasActed:    entry.HasActed,
		})
	}
	for _, c := range e.roster.All() {
		cs := CombatantSnap{
			ID:          c.ID,
			Name:        c.Name,
			Faction:     c.Faction.String(),
			DexMod:      c.DexMod,
			CurrentHP:   c.CurrentHP,
			MaxHP:       c.MaxHP,
			AC:          c.AC,
			Speed:       c.Speed,
			FlySpeed:    c.Modes.Fly,
			SwimSpeed:   c.Modes.Swim,
			ClimbSpeed:  c.Modes.Climb,
			AttackBonus: c.AttackBonus,
			DamageDice:  c.DamageDice,
			Archetype:   c.Archetype,
			Active:      c.Active,
			Position:    e.positions[c.ID],
		}
		for _, tag := range c.Conditions.Tags() {
			ac, _ := c.Conditions.Get(tag)
			cs.Conditions = append(cs.Conditions, ConditionSnap{
				ID:       tag,
				Stacks:   ac.Stacks,
				Duration: ac.DurationRemaining,
			})
		}
		snap.Combatants = append(snap.Combatants, cs)
	}

	snap.Grid = GridSnap{Width: e.grid.Width, Height: e.grid.Height}
	for y := 0; y < e.grid.Height; y++ {
		for x := 0; x < e.grid.Width; x++ {
			cell, _ := e.grid.Cell(grid.Coord{X: x, Y: y})
			if cell.Terrain == grid.TerrainNormal && cell.Elevation == 0 && cell.Cover == grid.CoverNone {
				continue
			}
			snap.Grid.Cells = append(snap.Grid.Cells, CellSnap{
				X: x, Y: y,
				Terrain:   cell.Terrain.String(),
				Elevation: cell.Elevation,
				Cover:     cell.Cover,
			})
		}
	}

	for _, entry := range e.tracker.Order() {
		if l, ok := e.ledgers[entry.CombatantID]; ok {
			snap.Ledgers = append(snap.Ledgers, LedgerSnap{
				CombatantID:     l.CombatantID,
				MovementBudget:  l.MovementBudget,
				MovementUsed:    l.MovementUsed,
				ActionUsed:      l.ActionUsed,
				BonusActionUsed: l.BonusActionUsed,
			})
		}
	}
	for id, used := range e.reactionsUsed {
		if used {
			snap.Reactions = append(snap.Reactions, id)
		}
	}
	snap.Events = append([]Event(nil), e.events...)
	return snap, nil
}

// RestoreSnapshot rebuilds the engine's state wholesale from snap,
// replacing whatever encounter it held.
//
// Precondition: snap must be non-nil and internally consistent; every
// condition ID in it must exist in the engine's condition registry.
func (e *Engine) RestoreSnapshot(snap *Snapshot) error {
	if snap == nil {
		return fmt.Errorf("engine: RestoreSnapshot called with nil snapshot")
	}

	g, err := grid.New(snap.Grid.Width, snap.Grid.Height)
	if err != nil {
		return fmt.Errorf("engine: restoring grid: %w", err)
	}
	for _, cs := range snap.Grid.Cells {
		c := grid.Coord{X: cs.X, Y: cs.Y}
		if err := g.SetTerrain(c, grid.ParseTerrain(cs.Terrain)); err != nil {
			return fmt.Errorf("engine: restoring cell %v: %w", c, err)
		}
		if err := g.SetElevation(c, cs.Elevation); err != nil {
			return fmt.Errorf("engine: restoring cell %v: %w", c, err)
		}
		if err := g.SetCover(c, cs.Cover); err != nil {
			return fmt.Errorf("engine: restoring cell %v: %w", c, err)
		}
	}

	roster := combatant.NewRoster()
	positions := make(map[string]grid.Coord, len(snap.Combatants))
	for _, cs := range snap.Combatants {
		c := &combatant.Combatant{
			ID:          cs.ID,
			Name:        cs.Name,
			Faction:     combatant.ParseFaction(cs.Faction),
			DexMod:      cs.DexMod,
			CurrentHP:   cs.CurrentHP,
			MaxHP:       cs.MaxHP,
			AC:          cs.AC,
			Speed:       cs.Speed,
			Modes:       combatant.MovementModes{Fly: cs.FlySpeed, Swim: cs.SwimSpeed, Climb: cs.ClimbSpeed},
			AttackBonus: cs.AttackBonus,
			DamageDice:  cs.DamageDice,
			Archetype:   cs.Archetype,
		}
		if err := roster.Add(c); err != nil {
			return fmt.Errorf("engine: restoring combatant %q: %w", cs.ID, err)
		}
		if !cs.Active {
			roster.Deactivate(cs.ID)
		} else if err := g.PlaceOccupant(cs.Position, cs.ID); err != nil {
			return fmt.Errorf("engine: restoring position of %q: %w", cs.ID, err)
		}
		positions[cs.ID] = cs.Position
		for _, cond := range cs.Conditions {
			def, ok := e.conds.Get(cond.ID)
			if !ok {
				return fmt.Errorf("engine: snapshot references unknown condition %q", cond.ID)
			}
			if err := c.Conditions.Apply(def, cond.Stacks, cond.Duration); err != nil {
				return fmt.Errorf("engine: restoring condition %q on %q: %w", cond.ID, cs.ID, err)
			}
		}
	}

	tracker := initiative.NewTracker(roster, e.conds)
	entries := make([]initiative.Entry, len(snap.Order))
	for i, o := range snap.Order {
		entries[i] = initiative.Entry{
			CombatantID: o.CombatantID,
			Base:        o.Base,
			Total:       o.Total,
			HasActed:    o.HasActed,
		}
	}
	tracker.RestoreOrder(entries, snap.Round, snap.TurnIndex, snap.Started)

	ledgers := make(map[string]*turn.State, len(snap.Ledgers))
	for _, ls := range snap.Ledgers {
		ledgers[ls.CombatantID] = &turn.State{
			CombatantID:     ls.CombatantID,
			MovementBudget:  ls.MovementBudget,
			MovementUsed:    ls.MovementUsed,
			ActionUsed:      ls.ActionUsed,
			BonusActionUsed: ls.BonusActionUsed,
		}
	}

	e.encounterID = snap.EncounterID
	e.roster = roster
	e.tracker = tracker
	e.grid = g
	e.positions = positions
	e.ledgers = ledgers
	e.reactionsUsed = make(map[string]bool, len(snap.Reactions))
	for _, id := range snap.Reactions {
		e.reactionsUsed[id] = true
	}
	e.events = append([]Event(nil), snap.Events...)

	switch snap.Phase {
	case PhaseActive.String():
		e.phase = PhaseActive
		e.summary = nil
	case PhaseEnded.String():
		e.phase = PhaseEnded
	default:
		return fmt.Errorf("engine: snapshot has unknown phase %q", snap.Phase)
	}
	return nil
}
