// Package ruleset defines combat archetypes: the stat blocks and AI
// roles that combatants are built from. Archetypes come from YAML
// content files layered over a compiled-in default set.
package ruleset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Role names the bonus-action catalog an AI-driven combatant draws from.
type Role string

const (
	RoleSkirmisher Role = "skirmisher"
	RoleBerserker  Role = "berserker"
	RoleMedic      Role = "medic"
)

// Archetype is the stat block a combatant is instantiated from.
//
// Precondition: ID, Name, HitPoints, ArmorClass, and Speed must be
// non-zero after loading; DamageDice must be valid dice notation.
type Archetype struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	HitPoints   int    `yaml:"hit_points"`
	ArmorClass  int    `yaml:"armor_class"`
	Speed       int    `yaml:"speed"` // walking speed in feet
	FlySpeed    int    `yaml:"fly_speed"`
	SwimSpeed   int    `yaml:"swim_speed"`
	ClimbSpeed  int    `yaml:"climb_speed"`
	DexMod      int    `yaml:"dex_mod"`
	AttackBonus int    `yaml:"attack_bonus"`
	DamageDice  string `yaml:"damage_dice"`
	Role        Role   `yaml:"role"`
	// FleeThreshold is the hit-point fraction below which the AI
	// abandons its role and retreats. Zero disables fleeing.
	FleeThreshold float64 `yaml:"flee_threshold"`
}

// Validate checks the structural invariants of a loaded archetype.
func (a *Archetype) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("ruleset: archetype missing id")
	}
	if a.Name == "" {
		return fmt.Errorf("ruleset: archetype %q missing name", a.ID)
	}
	if a.HitPoints < 1 {
		return fmt.Errorf("ruleset: archetype %q has non-positive hit points", a.ID)
	}
	if a.ArmorClass < 1 {
		return fmt.Errorf("ruleset: archetype %q has non-positive armor class", a.ID)
	}
	if a.Speed < 0 || a.FlySpeed < 0 || a.SwimSpeed < 0 || a.ClimbSpeed < 0 {
		return fmt.Errorf("ruleset: archetype %q has a negative speed", a.ID)
	}
	if a.DamageDice == "" {
		return fmt.Errorf("ruleset: archetype %q missing damage dice", a.ID)
	}
	if a.FleeThreshold < 0 || a.FleeThreshold >= 1 {
		return fmt.Errorf("ruleset: archetype %q flee threshold %v outside [0,1)", a.ID, a.FleeThreshold)
	}
	switch a.Role {
	case "", RoleSkirmisher, RoleBerserker, RoleMedic:
	default:
		return fmt.Errorf("ruleset: archetype %q has unknown role %q", a.ID, a.Role)
	}
	return nil
}

// LoadArchetypes reads every .yaml file in dir and parses each as one
// Archetype document.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns all parsed, validated archetypes (may be an
// empty slice) or a non-nil error.
func LoadArchetypes(dir string) ([]*Archetype, error) {
	files, err := yamlFiles(dir)
	if err != nil {
		return nil, err
	}
	archetypes := make([]*Archetype, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var a Archetype
		if err := yaml.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("parsing archetype file %s: %w", path, err)
		}
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		archetypes = append(archetypes, &a)
	}
	return archetypes, nil
}

// yamlFiles lists the .yaml files directly inside dir, sorted by name
// so load order is deterministic.
func yamlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".yaml" {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
