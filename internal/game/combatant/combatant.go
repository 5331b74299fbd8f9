// Package combatant holds the single indexed store of combatant records
// shared by the initiative tracker, the combat engine, and the tactical AI.
// All mutable combat stats (hit points, active flag, condition tags) live
// here and nowhere else; the tracker keeps only ordering information.
package combatant

import (
	"fmt"

	"github.com/vancegreer/tactics/internal/game/condition"
)

// Faction categorises a combatant for reachability and victory checks.
type Faction int

const (
	FactionPlayer Faction = iota
	FactionEnemy
	FactionAlly // allied NPC; fights on the player side
)

// String returns the machine-stable faction tag.
func (f Faction) String() string {
	switch f {
	case FactionPlayer:
		return "player"
	case FactionEnemy:
		return "enemy"
	case FactionAlly:
		return "ally"
	default:
		return "unknown"
	}
}

// ParseFaction maps a faction tag back to a Faction.
// Unknown tags default to FactionEnemy, the conservative choice for
// restored data: a misfiled combatant should threaten the party rather
// than silently join it.
func ParseFaction(s string) Faction {
	switch s {
	case "player":
		return FactionPlayer
	case "ally":
		return FactionAlly
	default:
		return FactionEnemy
	}
}

// HostileTo reports whether combatants of faction f treat faction other
// as an enemy. Players and allied NPCs form one side; enemies the other.
func (f Faction) HostileTo(other Faction) bool {
	return f.onPlayerSide() != other.onPlayerSide()
}

func (f Faction) onPlayerSide() bool {
	return f == FactionPlayer || f == FactionAlly
}

// MovementModes lists a combatant's special movement speeds in feet per
// turn. Zero means the combatant lacks that mode.
type MovementModes struct {
	Fly   int
	Swim  int
	Climb int
}

// Combatant is one participant's full combat record.
//
// Invariant: 0 <= CurrentHP <= MaxHP.
type Combatant struct {
	ID          string
	Name        string
	Faction     Faction
	DexMod      int
	CurrentHP   int
	MaxHP       int
	AC          int
	Speed       int // walking speed in feet per turn
	Modes       MovementModes
	AttackBonus int
	DamageDice  string // e.g. "1d8+3"
	Archetype   string // ruleset archetype ID; drives bonus-action catalog
	Active      bool
	Conditions  *condition.ActiveSet
}

// HPFraction returns current HP as a fraction of MaxHP; 0 if MaxHP <= 0.
func (c *Combatant) HPFraction() float64 {
	if c.MaxHP <= 0 {
		return 0
	}
	return float64(c.CurrentHP) / float64(c.MaxHP)
}

// ApplyDamage reduces CurrentHP by amount, flooring at zero.
//
// Precondition: amount >= 0.
// Postcondition: CurrentHP >= 0.
func (c *Combatant) ApplyDamage(amount int) {
	c.CurrentHP -= amount
	if c.CurrentHP < 0 {
		c.CurrentHP = 0
	}
}

// Heal raises CurrentHP by amount, capped at MaxHP.
//
// Precondition: amount >= 0.
// Postcondition: CurrentHP <= MaxHP.
func (c *Combatant) Heal(amount int) {
	c.CurrentHP += amount
	if c.CurrentHP > c.MaxHP {
		c.CurrentHP = c.MaxHP
	}
}

// Roster is the indexed store of combatant records for one encounter.
// Combatants are never deleted mid-encounter; defeated ones are
// deactivated so the event log and snapshots stay coherent.
type Roster struct {
	order []string
	byID  map[string]*Combatant
}

// NewRoster creates an empty Roster.
func NewRoster() *Roster {
	return &Roster{byID: make(map[string]*Combatant)}
}

// Add registers c in the roster.
//
// Precondition: c must be non-nil with a non-empty, unused ID.
// Postcondition: c is active with a non-nil condition set.
func (r *Roster) Add(c *Combatant) error {
	if c == nil || c.ID == "" {
		return fmt.Errorf("combatant: Add requires a combatant with a non-empty ID")
	}
	if _, exists := r.byID[c.ID]; exists {
		return fmt.Errorf("combatant: duplicate ID %q", c.ID)
	}
	if c.Conditions == nil {
		c.Conditions = condition.NewActiveSet()
	}
	c.Active = true
	r.byID[c.ID] = c
	r.order = append(r.order, c.ID)
	return nil
}

// Get returns the combatant with the given ID.
func (r *Roster) Get(id string) (*Combatant, bool) {
	c, ok := r.byID[id]
	return c, ok
}

// All returns all combatants in insertion order.
func (r *Roster) All() []*Combatant {
	out := make([]*Combatant, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Len returns the number of registered combatants.
func (r *Roster) Len() int { return len(r.order) }

// Deactivate marks the combatant with id inactive. No-op when absent.
//
// Postcondition: the combatant, if present, has Active == false.
func (r *Roster) Deactivate(id string) {
	if c, ok := r.byID[id]; ok {
		c.Active = false
	}
}

// ActiveOfFaction returns the active combatants of faction f in insertion order.
func (r *Roster) ActiveOfFaction(f Faction) []*Combatant {
	var out []*Combatant
	for _, id := range r.order {
		c := r.byID[id]
		if c.Active && c.Faction == f {
			out = append(out, c)
		}
	}
	return out
}

// ActiveOnPlayerSide counts active players plus allied NPCs.
func (r *Roster) ActiveOnPlayerSide() int {
	return len(r.ActiveOfFaction(FactionPlayer)) + len(r.ActiveOfFaction(FactionAlly))
}

// ActiveEnemies counts active enemy-faction combatants.
func (r *Roster) ActiveEnemies() int {
	return len(r.ActiveOfFaction(FactionEnemy))
}
