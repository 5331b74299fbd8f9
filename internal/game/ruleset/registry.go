package ruleset

// Registry provides archetype lookup by ID. Registries are explicit
// values wired through constructors; there is no package-level default.
type Registry struct {
	archetypes map[string]*Archetype
}

// NewRegistry returns an empty Registry.
//
// Postcondition: Returns a non-nil *Registry ready to accept
// registrations.
func NewRegistry() *Registry {
	return &Registry{archetypes: make(map[string]*Archetype)}
}

// Register adds an archetype to the registry.
//
// Precondition: a must be non-nil with a non-empty ID; if called
// multiple times with the same ID, the last call wins.
func (r *Registry) Register(a *Archetype) {
	if a == nil {
		panic("Registry.Register: precondition violated: archetype must be non-nil")
	}
	if a.ID == "" {
		panic("Registry.Register: precondition violated: archetype ID must be non-empty")
	}
	r.archetypes[a.ID] = a
}

// Get returns the archetype for id, if registered.
func (r *Registry) Get(id string) (*Archetype, bool) {
	a, ok := r.archetypes[id]
	return a, ok
}

// Len returns the number of registered archetypes.
func (r *Registry) Len() int { return len(r.archetypes) }

// LoadDirectory parses every archetype file in dir into the registry,
// overriding same-ID entries already present.
func (r *Registry) LoadDirectory(dir string) error {
	archetypes, err := LoadArchetypes(dir)
	if err != nil {
		return err
	}
	for _, a := range archetypes {
		r.Register(a)
	}
	return nil
}

// DefaultRegistry returns a registry seeded with the compiled-in
// archetypes, enough to run an encounter with no content directory.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, a := range defaultArchetypes() {
		r.Register(a)
	}
	return r
}

func defaultArchetypes() []*Archetype {
	return []*Archetype{
		{
			ID:            "soldier",
			Name:          "Soldier",
			Description:   "Line infantry: steady, armored, unimaginative.",
			HitPoints:     20,
			ArmorClass:    16,
			Speed:         30,
			DexMod:        1,
			AttackBonus:   4,
			DamageDice:    "1d8+2",
			Role:          RoleBerserker,
			FleeThreshold: 0,
		},
		{
			ID:            "scout",
			Name:          "Scout",
			Description:   "Fast and fragile; fights at the edge of reach.",
			HitPoints:     12,
			ArmorClass:    14,
			Speed:         40,
			DexMod:        3,
			AttackBonus:   5,
			DamageDice:    "1d6+3",
			Role:          RoleSkirmisher,
			FleeThreshold: 0.25,
		},
		{
			ID:            "brute",
			Name:          "Brute",
			Description:   "Slow, heavy hitter that never backs off.",
			HitPoints:     30,
			ArmorClass:    13,
			Speed:         25,
			DexMod:        0,
			AttackBonus:   5,
			DamageDice:    "2d6+3",
			Role:          RoleBerserker,
			FleeThreshold: 0,
		},
		{
			ID:            "field-medic",
			Name:          "Field Medic",
			Description:   "Keeps the line standing; runs when cornered.",
			HitPoints:     14,
			ArmorClass:    13,
			Speed:         30,
			DexMod:        2,
			AttackBonus:   3,
			DamageDice:    "1d4+1",
			Role:          RoleMedic,
			FleeThreshold: 0.5,
		},
		{
			ID:            "winged-stalker",
			Name:          "Winged Stalker",
			Description:   "Airborne raider that ignores the ground entirely.",
			HitPoints:     16,
			ArmorClass:    15,
			Speed:         20,
			FlySpeed:      50,
			DexMod:        3,
			AttackBonus:   5,
			DamageDice:    "1d6+3",
			Role:          RoleSkirmisher,
			FleeThreshold: 0.3,
		},
	}
}
