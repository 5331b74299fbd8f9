// Package turn tracks the per-turn action economy for one combatant:
// movement feet, the action, and the bonus action. The engine resets a
// ledger exactly once at the start of each turn and every spend is
// checked before the corresponding effect applies.
package turn

import "fmt"

// State is the per-turn resource ledger for one combatant.
type State struct {
	CombatantID     string
	MovementBudget  int // feet available this turn, including dash extensions
	MovementUsed    int
	ActionUsed      bool
	BonusActionUsed bool
}

// NewState creates a fresh ledger for the combatant with its base speed.
func NewState(combatantID string, speed int) *State {
	return &State{CombatantID: combatantID, MovementBudget: speed}
}

// Reset restores the ledger to the start-of-turn state with the given
// movement budget.
//
// Postcondition: MovementUsed is 0 and both action flags are clear.
func (s *State) Reset(speed int) {
	s.MovementBudget = speed
	s.MovementUsed = 0
	s.ActionUsed = false
	s.BonusActionUsed = false
}

// MovementRemaining returns the feet of movement still available.
func (s *State) MovementRemaining() int {
	if rem := s.MovementBudget - s.MovementUsed; rem > 0 {
		return rem
	}
	return 0
}

// SpendMovement deducts feet of movement, failing before any deduction
// when the remaining budget cannot cover it.
func (s *State) SpendMovement(feet int) error {
	if feet < 0 {
		return fmt.Errorf("turn: movement spend must be non-negative, got %d", feet)
	}
	if feet > s.MovementRemaining() {
		return fmt.Errorf("turn: %s has %d ft remaining, cannot spend %d ft",
			s.CombatantID, s.MovementRemaining(), feet)
	}
	s.MovementUsed += feet
	return nil
}

// SpendAction consumes the turn's action.
func (s *State) SpendAction() error {
	if s.ActionUsed {
		return fmt.Errorf("turn: %s has already used an action this turn", s.CombatantID)
	}
	s.ActionUsed = true
	return nil
}

// SpendBonusAction consumes the turn's bonus action.
func (s *State) SpendBonusAction() error {
	if s.BonusActionUsed {
		return fmt.Errorf("turn: %s has already used a bonus action this turn", s.CombatantID)
	}
	s.BonusActionUsed = true
	return nil
}

// ExtendMovement grows the movement budget mid-turn, as a dash does.
//
// Precondition: feet must be non-negative.
func (s *State) ExtendMovement(feet int) error {
	if feet < 0 {
		return fmt.Errorf("turn: movement extension must be non-negative, got %d", feet)
	}
	s.MovementBudget += feet
	return nil
}
