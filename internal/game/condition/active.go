package condition

import "fmt"

// Active tracks one applied condition on a combatant.
type Active struct {
	Def               *Definition
	Stacks            int
	DurationRemaining int // rounds remaining; -1 = permanent
}

// ActiveSet tracks all conditions currently applied to one combatant,
// preserving application order. It is not safe for concurrent use; the
// engine serialises access.
type ActiveSet struct {
	order      []string
	conditions map[string]*Active
}

// NewActiveSet creates an empty ActiveSet.
func NewActiveSet() *ActiveSet {
	return &ActiveSet{conditions: make(map[string]*Active)}
}

// Apply adds or updates a condition.
// Re-applying increments stacks (capped at MaxStacks; unstackable
// conditions stay at 1) and extends the duration to the longer value.
// duration is rounds remaining; use -1 for permanent.
//
// Precondition: def must not be nil.
// Postcondition: Has(def.ID) is true; application order is preserved for
// conditions already present.
func (s *ActiveSet) Apply(def *Definition, stacks, duration int) error {
	if def == nil {
		return fmt.Errorf("condition: Apply called with nil definition")
	}

	if existing, ok := s.conditions[def.ID]; ok {
		if def.MaxStacks > 0 {
			existing.Stacks += stacks
			if existing.Stacks > def.MaxStacks {
				existing.Stacks = def.MaxStacks
			}
		}
		if duration > existing.DurationRemaining {
			existing.DurationRemaining = duration
		}
		return nil
	}

	effective := stacks
	if def.MaxStacks == 0 {
		effective = 1
	} else if effective > def.MaxStacks {
		effective = def.MaxStacks
	}
	s.conditions[def.ID] = &Active{
		Def:               def,
		Stacks:            effective,
		DurationRemaining: duration,
	}
	s.order = append(s.order, def.ID)
	return nil
}

// Remove deletes the condition with the given ID. No-op when absent.
//
// Postcondition: Has(id) is false.
func (s *ActiveSet) Remove(id string) {
	if _, ok := s.conditions[id]; !ok {
		return
	}
	delete(s.conditions, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Tick decrements the DurationRemaining of all rounds-type conditions by 1
// and removes the ones that expire, returning their IDs in application order.
// Permanent conditions (DurationRemaining == -1) are unaffected.
//
// Postcondition: For every id in the returned slice, Has(id) is false.
func (s *ActiveSet) Tick() []string {
	var expired []string
	for _, id := range append([]string(nil), s.order...) {
		ac := s.conditions[id]
		if ac.Def.DurationType != DurationRounds || ac.DurationRemaining < 0 {
			continue
		}
		ac.DurationRemaining--
		if ac.DurationRemaining <= 0 {
			expired = append(expired, id)
			s.Remove(id)
		}
	}
	return expired
}

// Has reports whether the condition with id is currently active.
func (s *ActiveSet) Has(id string) bool {
	_, ok := s.conditions[id]
	return ok
}

// Stacks returns the current stack count for condition id, or 0 if not present.
func (s *ActiveSet) Stacks(id string) int {
	if ac, ok := s.conditions[id]; ok {
		return ac.Stacks
	}
	return 0
}

// Tags returns the active condition IDs in application order.
func (s *ActiveSet) Tags() []string {
	return append([]string(nil), s.order...)
}

// Get returns the Active entry for id, or (nil, false) if not present.
func (s *ActiveSet) Get(id string) (*Active, bool) {
	ac, ok := s.conditions[id]
	return ac, ok
}

// Len returns the number of active conditions.
func (s *ActiveSet) Len() int { return len(s.order) }
