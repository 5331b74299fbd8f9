package engine

import "github.com/google/uuid"

// Event types appended to the combat log.
const (
	EventCombatStarted     = "combat_started"
	EventInitiativeRolled  = "initiative_rolled"
	EventTurnStarted       = "turn_started"
	EventTurnEnded         = "turn_ended"
	EventAttack            = "attack"
	EventMove              = "move"
	EventOpportunityAttack = "opportunity_attack"
	EventConditionApplied  = "condition_applied"
	EventConditionExpired  = "condition_expired"
	EventCombatantDown     = "combatant_down"
	EventCombatEnded       = "combat_ended"
)

// Event is one append-only entry in the combat log.
type Event struct {
	ID       string         `json:"id" yaml:"id"`
	Round    int            `json:"round" yaml:"round"`
	Type     string         `json:"type" yaml:"type"`
	ActorID  string         `json:"actor_id,omitempty" yaml:"actor_id,omitempty"`
	TargetID string         `json:"target_id,omitempty" yaml:"target_id,omitempty"`
	Message  string         `json:"message" yaml:"message"`
	Data     map[string]any `json:"data,omitempty" yaml:"data,omitempty"`
}

// appendEvent records an event with a fresh ID at the current round.
func (e *Engine) appendEvent(eventType, actorID, targetID, message string, data map[string]any) Event {
	ev := Event{
		ID:       uuid.NewString(),
		Round:    e.tracker.Round(),
		Type:     eventType,
		ActorID:  actorID,
		TargetID: targetID,
		Message:  message,
		Data:     data,
	}
	e.events = append(e.events, ev)
	return ev
}

// RecentEvents returns the newest n events in chronological order.
// Passing n <= 0 or n larger than the log returns the whole log.
func (e *Engine) RecentEvents(n int) []Event {
	if n <= 0 || n > len(e.events) {
		n = len(e.events)
	}
	out := make([]Event, n)
	copy(out, e.events[len(e.events)-n:])
	return out
}
