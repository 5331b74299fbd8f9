package ruleset

import (
	"github.com/vancegreer/tactics/internal/game/combatant"
)

// NewCombatant instantiates a combatant from the archetype's stat block.
//
// Postcondition: the combatant starts at full hit points with the
// archetype recorded for AI role lookup.
func (a *Archetype) NewCombatant(id, name string, faction combatant.Faction) *combatant.Combatant {
	return &combatant.Combatant{
		ID:          id,
		Name:        name,
		Faction:     faction,
		DexMod:      a.DexMod,
		CurrentHP:   a.HitPoints,
		MaxHP:       a.HitPoints,
		AC:          a.ArmorClass,
		Speed:       a.Speed,
		Modes:       combatant.MovementModes{Fly: a.FlySpeed, Swim: a.SwimSpeed, Climb: a.ClimbSpeed},
		AttackBonus: a.AttackBonus,
		DamageDice:  a.DamageDice,
		Archetype:   a.ID,
	}
}
