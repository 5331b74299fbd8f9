package engine

import "github.com/vancegreer/tactics/internal/game/grid"

// ActionType names one of the actions a combatant can take on its turn.
type ActionType string

const (
	ActionAttack    ActionType = "attack"
	ActionMove      ActionType = "move"
	ActionDash      ActionType = "dash"
	ActionDisengage ActionType = "disengage"
	ActionDodge     ActionType = "dodge"
	ActionHide      ActionType = "hide"
	ActionHelp      ActionType = "help"
	ActionReady     ActionType = "ready"

	// Bonus actions, gated on the bonus-action slot instead of the
	// action slot.
	BonusRage       ActionType = "rage"
	BonusSecondWind ActionType = "second_wind"
	BonusNimbleStep ActionType = "nimble_step"
)

// IsBonus reports whether t consumes the bonus-action slot.
func (t ActionType) IsBonus() bool {
	switch t {
	case BonusRage, BonusSecondWind, BonusNimbleStep:
		return true
	}
	return false
}

// ActionInput describes one requested action.
type ActionInput struct {
	ActorID  string
	Type     ActionType
	TargetID string     // attack, help
	To       grid.Coord // move destination
}

// Rule-violation reason codes carried on failed ActionResults. These are
// in-band outcomes, not errors: the turn state is unchanged when an
// action fails with one of these.
const (
	ReasonNotYourTurn       = "not_your_turn"
	ReasonUnknownActor      = "unknown_actor"
	ReasonUnknownAction     = "unknown_action"
	ReasonActionUsed        = "action_used"
	ReasonBonusActionUsed   = "bonus_action_used"
	ReasonUnknownTarget     = "unknown_target"
	ReasonTargetDown        = "target_down"
	ReasonTargetNotHostile  = "target_not_hostile"
	ReasonTargetNotFriendly = "target_not_friendly"
	ReasonOutOfRange        = "out_of_range"
	ReasonNoLineOfSight     = "no_line_of_sight"
	ReasonNoMovement        = "no_movement"
	ReasonBadDestination    = "bad_destination"
	ReasonNoRoute           = "no_route"
	ReasonNotRaging         = "wrong_role"
)

// ActionResult is the in-band outcome of TakeAction. Success is false
// for game-rule violations; integration misuse surfaces as a Go error
// instead.
type ActionResult struct {
	Success bool
	Reason  string // stable code, set when Success is false
	Message string

	// Attack fields.
	Hit       bool
	AttackRoll int
	Damage    int
	Killed    bool

	// Move fields.
	Path      []grid.Coord
	Cost      int
	Truncated bool

	// Auxiliary roll data (stealth check for hide, heal amount for
	// second wind).
	Rolls map[string]int
}

func failure(reason, message string) ActionResult {
	return ActionResult{Success: false, Reason: reason, Message: message}
}
