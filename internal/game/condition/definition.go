// Package condition implements condition tags applied to combatants
// during an encounter: dodging, disengaging, hidden, and friends.
package condition

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Duration types for condition definitions.
const (
	DurationRounds    = "rounds"
	DurationPermanent = "permanent"
)

// Definition is the static definition of a condition tag.
// Definitions ship with compiled-in defaults and may be extended or
// overridden from YAML content files.
type Definition struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	DurationType string `yaml:"duration_type"` // "rounds" | "permanent"
	MaxStacks    int    `yaml:"max_stacks"`    // 0 = unstackable
}

// Validate checks the definition invariants.
//
// Postcondition: nil return guarantees non-empty ID and a known DurationType.
func (d *Definition) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("condition: definition has empty ID")
	}
	switch d.DurationType {
	case DurationRounds, DurationPermanent:
	default:
		return fmt.Errorf("condition %q: unknown duration_type %q", d.ID, d.DurationType)
	}
	if d.MaxStacks < 0 {
		return fmt.Errorf("condition %q: max_stacks must be >= 0", d.ID)
	}
	return nil
}

// Registry holds all known Definitions keyed by ID.
// A Registry is constructed explicitly and passed by reference to the
// engine; there is no process-wide instance.
type Registry struct {
	defs map[string]*Definition
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Definition)}
}

// Register adds def to the registry, overwriting any existing entry with the same ID.
//
// Precondition: def must not be nil and must pass Validate.
func (r *Registry) Register(def *Definition) error {
	if def == nil {
		return fmt.Errorf("condition: Register called with nil definition")
	}
	if err := def.Validate(); err != nil {
		return err
	}
	r.defs[def.ID] = def
	return nil
}

// Get returns the Definition for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*Definition, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// All returns a snapshot slice of all registered Definitions.
func (r *Registry) All() []*Definition {
	out := make([]*Definition, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	return out
}

// Built-in condition tag IDs used by the combat engine and the AI.
const (
	TagDodging     = "dodging"
	TagDisengaging = "disengaging"
	TagHidden      = "hidden"
	TagReadied     = "readied"
	TagHelped      = "helped"
	TagRaging      = "raging"
)

// DefaultRegistry returns a Registry pre-populated with the condition
// tags the engine applies itself. Content files may override these.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	defaults := []*Definition{
		{ID: TagDodging, Name: "Dodging", DurationType: DurationRounds, Description: "attack rolls against the combatant are at a penalty until its next turn"},
		{ID: TagDisengaging, Name: "Disengaging", DurationType: DurationRounds, Description: "movement does not provoke opportunity attacks this turn"},
		{ID: TagHidden, Name: "Hidden", DurationType: DurationPermanent, Description: "concealed until the combatant attacks or is discovered"},
		{ID: TagReadied, Name: "Readied", DurationType: DurationRounds, Description: "holding a prepared action for a trigger"},
		{ID: TagHelped, Name: "Helped", DurationType: DurationRounds, Description: "the next check benefits from an ally's assistance"},
		{ID: TagRaging, Name: "Raging", DurationType: DurationPermanent, Description: "berserker rage; bonus damage while active"},
	}
	for _, d := range defaults {
		// Defaults are statically valid.
		_ = r.Register(d)
	}
	return r
}

// yamlFile wraps the YAML top-level key for a condition content file.
type yamlFile struct {
	Condition *Definition `yaml:"condition"`
}

// LoadDirectory reads every *.yaml file in dir and registers each parsed
// Definition on top of the defaults.
//
// Precondition: dir must be a readable directory.
// Postcondition: returns a Registry containing defaults plus file definitions,
// or an error if any file fails to parse or validate.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("condition.LoadDirectory: reading %q: %w", dir, err)
	}
	r := DefaultRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("condition.LoadDirectory: reading %s: %w", e.Name(), err)
		}
		var f yamlFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("condition.LoadDirectory: parsing %s: %w", e.Name(), err)
		}
		if f.Condition == nil {
			return nil, fmt.Errorf("condition.LoadDirectory: %s missing top-level 'condition' key", e.Name())
		}
		if err := r.Register(f.Condition); err != nil {
			return nil, err
		}
	}
	return r, nil
}
