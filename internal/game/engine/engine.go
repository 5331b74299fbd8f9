// Package engine orchestrates one combat encounter: it owns the roster,
// grid, initiative tracker, per-turn ledgers, and the append-only event
// log, and resolves every action against the rules.
//
// Rule violations come back as unsuccessful ActionResults; returned
// errors are reserved for integration misuse such as starting combat
// twice or ending a turn before combat began.
package engine

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vancegreer/tactics/internal/game/combatant"
	"github.com/vancegreer/tactics/internal/game/condition"
	"github.com/vancegreer/tactics/internal/game/dice"
	"github.com/vancegreer/tactics/internal/game/grid"
	"github.com/vancegreer/tactics/internal/game/initiative"
	"github.com/vancegreer/tactics/internal/game/turn"
)

// Phase is the lifecycle stage of an encounter. Transitions run forward
// only: NotInCombat -> Active -> Ended.
type Phase int

const (
	PhaseNotInCombat Phase = iota
	PhaseActive
	PhaseEnded
)

// String returns the machine-stable phase tag.
func (p Phase) String() string {
	switch p {
	case PhaseActive:
		return "active"
	case PhaseEnded:
		return "ended"
	default:
		return "not_in_combat"
	}
}

// MeleeRangeFeet is the reach of a basic melee attack.
const MeleeRangeFeet = 5

// selfBuffRounds makes a defensive tag applied mid-turn survive until
// the end of the combatant's next turn; ticking happens at end of own
// turn, so a one-round duration would expire before any enemy acted.
const selfBuffRounds = 2

// Summary describes a finished encounter.
type Summary struct {
	EncounterID string
	Outcome     string // victory, defeat, or none
	Reason      string
	Rounds      int
	Survivors   []string
	EventCount  int
}

// Engine runs a single encounter. It is not safe for concurrent use.
type Engine struct {
	logger  *zap.Logger
	roller  *dice.Roller
	conds   *condition.Registry
	checker ReactionChecker

	phase       Phase
	encounterID string
	roster      *combatant.Roster
	tracker     *initiative.Tracker
	grid        *grid.Grid
	positions   map[string]grid.Coord
	ledgers     map[string]*turn.State
	// reactionsUsed tracks which combatants have spent their reaction
	// this round; cleared on round wrap.
	reactionsUsed map[string]bool
	events        []Event
	summary       *Summary
}

// NewEngine creates an engine ready for StartCombat.
//
// Precondition: logger, roller, and conds must be non-nil.
func NewEngine(logger *zap.Logger, roller *dice.Roller, conds *condition.Registry) *Engine {
	if logger == nil {
		panic("engine.NewEngine: logger must not be nil")
	}
	if roller == nil {
		panic("engine.NewEngine: roller must not be nil")
	}
	if conds == nil {
		panic("engine.NewEngine: condition registry must not be nil")
	}
	return &Engine{
		logger:  logger,
		roller:  roller,
		conds:   conds,
		checker: AdjacencyReactions{},
		phase:   PhaseNotInCombat,
	}
}

// SetReactionChecker replaces the opportunity-attack policy.
//
// Precondition: must be called before StartCombat; rc must be non-nil.
func (e *Engine) SetReactionChecker(rc ReactionChecker) {
	if rc == nil {
		panic("engine.SetReactionChecker: checker must not be nil")
	}
	e.checker = rc
}

// StartCombat builds the encounter from fighters and their starting
// positions, rolls initiative, and moves the phase to Active.
//
// Precondition: the engine must be in PhaseNotInCombat; fighters must
// include at least one active combatant on each side; every fighter
// must have a position on the grid.
// Postcondition: Phase() is PhaseActive and CurrentCombatant returns
// the first combatant in initiative order.
func (e *Engine) StartCombat(g *grid.Grid, fighters []*combatant.Combatant, positions map[string]grid.Coord) ([]initiative.Roll, error) {
	if e.phase != PhaseNotInCombat {
		return nil, fmt.Errorf("engine: StartCombat called in phase %s", e.phase)
	}
	if g == nil {
		return nil, fmt.Errorf("engine: StartCombat requires a grid")
	}

	roster := combatant.NewRoster()
	for _, f := range fighters {
		if err := roster.Add(f); err != nil {
			return nil, fmt.Errorf("engine: %w", err)
		}
	}
	if roster.ActiveOnPlayerSide() == 0 || roster.ActiveEnemies() == 0 {
		return nil, fmt.Errorf("engine: StartCombat requires active combatants on both sides")
	}

	pos := make(map[string]grid.Coord, len(fighters))
	for _, f := range fighters {
		c, ok := positions[f.ID]
		if !ok {
			return nil, fmt.Errorf("engine: no starting position for %q", f.ID)
		}
		if err := g.PlaceOccupant(c, f.ID); err != nil {
			return nil, fmt.Errorf("engine: placing %q: %w", f.ID, err)
		}
		pos[f.ID] = c
	}

	tracker := initiative.NewTracker(roster, e.conds)
	for _, f := range fighters {
		if err := tracker.Add(f.ID); err != nil {
			return nil, fmt.Errorf("engine: %w", err)
		}
	}
	rolls, err := tracker.RollAll(e.roller)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	e.encounterID = uuid.NewString()
	e.roster = roster
	e.tracker = tracker
	e.grid = g
	e.positions = pos
	e.ledgers = make(map[string]*turn.State, len(fighters))
	e.reactionsUsed = make(map[string]bool)
	e.phase = PhaseActive

	e.appendEvent(EventCombatStarted, "", "",
		fmt.Sprintf("combat started with %d combatants", len(fighters)),
		map[string]any{"encounter_id": e.encounterID})
	for _, r := range rolls {
		e.appendEvent(EventInitiativeRolled, r.CombatantID, "",
			fmt.Sprintf("%s rolled initiative %d (d20 %d %+d)", r.CombatantID, r.Total, r.Base, r.Modifier),
			map[string]any{"base": r.Base, "modifier": r.Modifier, "total": r.Total})
	}

	current, err := tracker.Current()
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	e.beginTurn(current)

	e.logger.Info("combat started",
		zap.String("encounter_id", e.encounterID),
		zap.Int("combatants", len(fighters)),
		zap.String("first_turn", current.ID))
	return rolls, nil
}

// EncounterID returns the encounter's unique ID; empty before
// StartCombat.
func (e *Engine) EncounterID() string { return e.encounterID }

// Phase returns the current lifecycle phase.
func (e *Engine) Phase() Phase { return e.phase }

// Roster returns the combatant store; nil before StartCombat.
func (e *Engine) Roster() *combatant.Roster { return e.roster }

// Grid returns the combat grid; nil before StartCombat.
func (e *Engine) Grid() *grid.Grid { return e.grid }

// Position returns the recorded position of a combatant. Downed
// combatants keep their last position.
func (e *Engine) Position(id string) (grid.Coord, bool) {
	c, ok := e.positions[id]
	return c, ok
}

// MovementRemaining returns the feet of movement left on a combatant's
// current-turn ledger; 0 when it has none.
func (e *Engine) MovementRemaining(id string) int {
	if l, ok := e.ledgers[id]; ok {
		return l.MovementRemaining()
	}
	return 0
}

// Ledger returns the per-turn ledger for a combatant, if one exists.
func (e *Engine) Ledger(id string) (*turn.State, bool) {
	l, ok := e.ledgers[id]
	return l, ok
}

// Round returns the current round; 0 before combat starts.
func (e *Engine) Round() int {
	if e.tracker == nil {
		return 0
	}
	return e.tracker.Round()
}

// CurrentCombatant returns the combatant whose turn it is.
//
// Precondition: combat must be active.
func (e *Engine) CurrentCombatant() (*combatant.Combatant, error) {
	if e.phase != PhaseActive {
		return nil, fmt.Errorf("engine: no current combatant in phase %s", e.phase)
	}
	return e.tracker.Current()
}

// TakeAction resolves one action for the current combatant. Rule
// violations come back as an unsuccessful result with a stable reason
// code and leave all state unchanged.
//
// Precondition: combat must be active.
func (e *Engine) TakeAction(in ActionInput) (ActionResult, error) {
	if e.phase != PhaseActive {
		return ActionResult{}, fmt.Errorf("engine: TakeAction called in phase %s", e.phase)
	}
	actor, ok := e.roster.Get(in.ActorID)
	if !ok {
		return failure(ReasonUnknownActor, fmt.Sprintf("no combatant %q", in.ActorID)), nil
	}
	current, err := e.tracker.Current()
	if err != nil {
		return ActionResult{}, fmt.Errorf("engine: %w", err)
	}
	if current == nil || current.ID != actor.ID {
		return failure(ReasonNotYourTurn, fmt.Sprintf("it is not %s's turn", actor.Name)), nil
	}
	ledger := e.ledgers[actor.ID]

	var res ActionResult
	switch in.Type {
	case ActionAttack:
		res = e.attackAction(actor, ledger, in.TargetID)
	case ActionMove:
		res = e.moveAction(actor, ledger, in.To)
	case ActionDash:
		res = e.dashAction(actor, ledger)
	case ActionDisengage:
		res = e.tagAction(actor, ledger, condition.TagDisengaging, 1, "%s disengages")
	case ActionDodge:
		res = e.tagAction(actor, ledger, condition.TagDodging, selfBuffRounds, "%s takes the dodge action")
	case ActionHide:
		res = e.hideAction(actor, ledger)
	case ActionHelp:
		res = e.helpAction(actor, ledger, in.TargetID)
	case ActionReady:
		res = e.readyAction(actor, ledger)
	case BonusRage, BonusSecondWind, BonusNimbleStep:
		res = e.bonusAction(actor, ledger, in.Type)
	default:
		res = failure(ReasonUnknownAction, fmt.Sprintf("unknown action type %q", in.Type))
	}

	if !res.Success {
		e.logger.Debug("action rejected",
			zap.String("actor", actor.ID),
			zap.String("type", string(in.Type)),
			zap.String("reason", res.Reason))
	}
	return res, nil
}

// attackAction resolves a melee attack against a hostile target.
func (e *Engine) attackAction(actor *combatant.Combatant, ledger *turn.State, targetID string) ActionResult {
	if ledger.ActionUsed {
		return failure(ReasonActionUsed, fmt.Sprintf("%s has already acted this turn", actor.Name))
	}
	target, ok := e.roster.Get(targetID)
	if !ok {
		return failure(ReasonUnknownTarget, fmt.Sprintf("no combatant %q", targetID))
	}
	if !target.Active {
		return failure(ReasonTargetDown, fmt.Sprintf("%s is already down", target.Name))
	}
	if !actor.Faction.HostileTo(target.Faction) {
		return failure(ReasonTargetNotHostile, fmt.Sprintf("%s is not hostile to %s", target.Name, actor.Name))
	}
	from, to := e.positions[actor.ID], e.positions[target.ID]
	if from.DistanceFeet(to) > MeleeRangeFeet {
		return failure(ReasonOutOfRange,
			fmt.Sprintf("%s is %d ft away, melee reach is %d ft", target.Name, from.DistanceFeet(to), MeleeRangeFeet))
	}
	if !e.grid.LineOfSight(from, to) {
		return failure(ReasonNoLineOfSight, fmt.Sprintf("%s cannot see %s", actor.Name, target.Name))
	}

	if err := ledger.SpendAction(); err != nil {
		return failure(ReasonActionUsed, err.Error())
	}
	return e.resolveAttack(actor, target, EventAttack)
}

// resolveAttack rolls to hit and applies damage. Shared by the attack
// action and opportunity attacks.
func (e *Engine) resolveAttack(attacker, target *combatant.Combatant, eventType string) ActionResult {
	roll := e.roller.D20(attacker.AttackBonus)
	toHit := roll.Total

	// Helped and hidden both sharpen the strike; each is consumed by it.
	for _, tag := range []string{condition.TagHelped, condition.TagHidden} {
		if attacker.Conditions.Has(tag) {
			toHit += 2
			attacker.Conditions.Remove(tag)
		}
	}

	effectiveAC := target.AC + e.grid.CoverBetween(e.positions[attacker.ID], e.positions[target.ID])
	if target.Conditions.Has(condition.TagDodging) {
		effectiveAC += 2
	}

	crit := roll.Base == 20
	hit := roll.Base != 1 && (crit || toHit >= effectiveAC)

	res := ActionResult{Success: true, Hit: hit, AttackRoll: toHit}
	if hit {
		dmg := e.roller.Damage(attacker.DamageDice)
		if crit {
			dmg *= 2
		}
		if attacker.Conditions.Has(condition.TagRaging) {
			dmg += 2
		}
		target.ApplyDamage(dmg)
		res.Damage = dmg
		if target.CurrentHP == 0 {
			res.Killed = true
			e.downCombatant(target)
		}
		res.Message = fmt.Sprintf("%s hits %s for %d (rolled %d vs AC %d)",
			attacker.Name, target.Name, dmg, toHit, effectiveAC)
	} else {
		res.Message = fmt.Sprintf("%s misses %s (rolled %d vs AC %d)",
			attacker.Name, target.Name, toHit, effectiveAC)
	}

	e.appendEvent(eventType, attacker.ID, target.ID, res.Message, map[string]any{
		"roll": toHit, "hit": hit, "crit": crit, "damage": res.Damage,
	})
	e.logger.Debug("attack resolved",
		zap.String("attacker", attacker.ID),
		zap.String("target", target.ID),
		zap.Bool("hit", hit),
		zap.Int("damage", res.Damage))
	return res
}

// downCombatant deactivates a combatant at 0 HP. The roster record and
// its last position survive; the grid cell opens up.
func (e *Engine) downCombatant(c *combatant.Combatant) {
	e.roster.Deactivate(c.ID)
	if pos, ok := e.positions[c.ID]; ok {
		e.grid.ClearOccupant(pos)
	}
	e.appendEvent(EventCombatantDown, c.ID, "", fmt.Sprintf("%s is down", c.Name), nil)
	e.logger.Info("combatant down", zap.String("combatant", c.ID))
}

// moveAction walks the actor along the cheapest path toward dest,
// spending movement and provoking opportunity attacks. When the budget
// cannot cover the whole path the actor moves as far as it can.
func (e *Engine) moveAction(actor *combatant.Combatant, ledger *turn.State, dest grid.Coord) ActionResult {
	start := e.positions[actor.ID]
	req := grid.PathRequest{
		Start:   start,
		End:     dest,
		Budget:  ledger.MovementRemaining(),
		MoverID: actor.ID,
		Profile: moveProfile(actor),
		IsAlly: func(occupantID string) bool {
			o, ok := e.roster.Get(occupantID)
			return ok && !o.Faction.HostileTo(actor.Faction)
		},
	}
	res := e.grid.FindPath(req)
	if !res.Found {
		switch res.Failure {
		case grid.FailNoRoute:
			return failure(ReasonNoRoute, fmt.Sprintf("no route from %v to %v", start, dest))
		default:
			return failure(ReasonBadDestination, fmt.Sprintf("cannot move to %v: %s", dest, res.Failure))
		}
	}
	if len(res.Path) < 2 {
		return failure(ReasonNoMovement,
			fmt.Sprintf("%s has %d ft left, not enough to advance", actor.Name, ledger.MovementRemaining()))
	}

	// Opportunity attacks resolve before the move completes; a downed
	// mover stays where it was.
	for _, enemyID := range e.checker.OpportunityAttacks(e.roster, e.positions, actor.ID, res.Path) {
		if e.reactionsUsed[enemyID] {
			continue
		}
		enemy, ok := e.roster.Get(enemyID)
		if !ok || !enemy.Active {
			continue
		}
		e.reactionsUsed[enemyID] = true
		e.resolveAttack(enemy, actor, EventOpportunityAttack)
		if !actor.Active {
			return ActionResult{
				Success: true,
				Message: fmt.Sprintf("%s falls before completing the move", actor.Name),
				Path:    res.Path[:1],
			}
		}
	}

	if err := ledger.SpendMovement(res.Cost); err != nil {
		return failure(ReasonNoMovement, err.Error())
	}
	end := res.Path[len(res.Path)-1]
	e.grid.ClearOccupant(start)
	if err := e.grid.PlaceOccupant(end, actor.ID); err != nil {
		// The pathfinder guaranteed the cell; treat as unreachable.
		return failure(ReasonBadDestination, err.Error())
	}
	e.positions[actor.ID] = end

	msg := fmt.Sprintf("%s moves from %v to %v (%d ft)", actor.Name, start, end, res.Cost)
	if !res.Complete {
		msg += " and runs out of movement"
	}
	e.appendEvent(EventMove, actor.ID, "", msg, map[string]any{
		"from": start, "to": end, "cost": res.Cost, "complete": res.Complete,
	})
	return ActionResult{Success: true, Message: msg, Path: res.Path, Cost: res.Cost, Truncated: !res.Complete}
}

// dashAction spends the action to extend this turn's movement by the
// actor's speed.
func (e *Engine) dashAction(actor *combatant.Combatant, ledger *turn.State) ActionResult {
	if err := ledger.SpendAction(); err != nil {
		return failure(ReasonActionUsed, err.Error())
	}
	extra := effectiveSpeed(actor)
	_ = ledger.ExtendMovement(extra)
	msg := fmt.Sprintf("%s dashes, gaining %d ft of movement", actor.Name, extra)
	e.appendEvent(EventMove, actor.ID, "", msg, map[string]any{"dash": extra})
	return ActionResult{Success: true, Message: msg}
}

// tagAction spends the action and applies a condition tag to the actor.
func (e *Engine) tagAction(actor *combatant.Combatant, ledger *turn.State, tag string, rounds int, format string) ActionResult {
	def, ok := e.conds.Get(tag)
	if !ok {
		return failure(ReasonUnknownAction, fmt.Sprintf("condition %q not registered", tag))
	}
	if err := ledger.SpendAction(); err != nil {
		return failure(ReasonActionUsed, err.Error())
	}
	if err := actor.Conditions.Apply(def, 1, rounds); err != nil {
		return failure(ReasonUnknownAction, err.Error())
	}
	msg := fmt.Sprintf(format, actor.Name)
	e.appendEvent(EventConditionApplied, actor.ID, "", msg, map[string]any{"condition": tag})
	return ActionResult{Success: true, Message: msg}
}

// hideAction rolls a stealth check and applies the hidden tag.
func (e *Engine) hideAction(actor *combatant.Combatant, ledger *turn.State) ActionResult {
	def, ok := e.conds.Get(condition.TagHidden)
	if !ok {
		return failure(ReasonUnknownAction, "hidden condition not registered")
	}
	if err := ledger.SpendAction(); err != nil {
		return failure(ReasonActionUsed, err.Error())
	}
	stealth := e.roller.D20(actor.DexMod)
	if err := actor.Conditions.Apply(def, 1, -1); err != nil {
		return failure(ReasonUnknownAction, err.Error())
	}
	msg := fmt.Sprintf("%s hides (stealth %d)", actor.Name, stealth.Total)
	e.appendEvent(EventConditionApplied, actor.ID, "", msg, map[string]any{
		"condition": condition.TagHidden, "stealth": stealth.Total,
	})
	return ActionResult{Success: true, Message: msg, Rolls: map[string]int{"stealth": stealth.Total}}
}

// helpAction grants a friendly target the helped tag for its next
// attack.
func (e *Engine) helpAction(actor *combatant.Combatant, ledger *turn.State, targetID string) ActionResult {
	target, ok := e.roster.Get(targetID)
	if !ok {
		return failure(ReasonUnknownTarget, fmt.Sprintf("no combatant %q", targetID))
	}
	if !target.Active {
		return failure(ReasonTargetDown, fmt.Sprintf("%s is down", target.Name))
	}
	if target.ID == actor.ID || actor.Faction.HostileTo(target.Faction) {
		return failure(ReasonTargetNotFriendly, fmt.Sprintf("%s cannot help %s", actor.Name, target.Name))
	}
	def, ok := e.conds.Get(condition.TagHelped)
	if !ok {
		return failure(ReasonUnknownAction, "helped condition not registered")
	}
	if err := ledger.SpendAction(); err != nil {
		return failure(ReasonActionUsed, err.Error())
	}
	if err := target.Conditions.Apply(def, 1, selfBuffRounds); err != nil {
		return failure(ReasonUnknownAction, err.Error())
	}
	msg := fmt.Sprintf("%s helps %s", actor.Name, target.Name)
	e.appendEvent(EventConditionApplied, actor.ID, target.ID, msg, map[string]any{"condition": condition.TagHelped})
	return ActionResult{Success: true, Message: msg}
}

// readyAction marks the actor as readied for the round.
func (e *Engine) readyAction(actor *combatant.Combatant, ledger *turn.State) ActionResult {
	if ledger.ActionUsed {
		return failure(ReasonActionUsed, fmt.Sprintf("%s has already acted this turn", actor.Name))
	}
	if err := e.tracker.Ready(actor.ID); err != nil {
		return failure(ReasonUnknownAction, err.Error())
	}
	_ = ledger.SpendAction()
	msg := fmt.Sprintf("%s readies an action", actor.Name)
	e.appendEvent(EventConditionApplied, actor.ID, "", msg, map[string]any{"condition": condition.TagReadied})
	return ActionResult{Success: true, Message: msg}
}

// bonusAction resolves the role-specific bonus actions.
func (e *Engine) bonusAction(actor *combatant.Combatant, ledger *turn.State, t ActionType) ActionResult {
	if ledger.BonusActionUsed {
		return failure(ReasonBonusActionUsed, fmt.Sprintf("%s has already used a bonus action", actor.Name))
	}
	switch t {
	case BonusRage:
		def, ok := e.conds.Get(condition.TagRaging)
		if !ok {
			return failure(ReasonUnknownAction, "raging condition not registered")
		}
		if actor.Conditions.Has(condition.TagRaging) {
			return failure(ReasonNotRaging, fmt.Sprintf("%s is already raging", actor.Name))
		}
		_ = ledger.SpendBonusAction()
		if err := actor.Conditions.Apply(def, 1, -1); err != nil {
			return failure(ReasonUnknownAction, err.Error())
		}
		msg := fmt.Sprintf("%s flies into a rage", actor.Name)
		e.appendEvent(EventConditionApplied, actor.ID, "", msg, map[string]any{"condition": condition.TagRaging})
		return ActionResult{Success: true, Message: msg}

	case BonusSecondWind:
		_ = ledger.SpendBonusAction()
		heal := e.roller.Damage("1d4+2")
		actor.Heal(heal)
		msg := fmt.Sprintf("%s catches a second wind, recovering %d", actor.Name, heal)
		e.appendEvent(EventConditionApplied, actor.ID, "", msg, map[string]any{"heal": heal})
		return ActionResult{Success: true, Message: msg, Rolls: map[string]int{"heal": heal}}

	case BonusNimbleStep:
		_ = ledger.SpendBonusAction()
		_ = ledger.ExtendMovement(10)
		msg := fmt.Sprintf("%s takes a nimble step, gaining 10 ft", actor.Name)
		e.appendEvent(EventMove, actor.ID, "", msg, map[string]any{"nimble_step": 10})
		return ActionResult{Success: true, Message: msg}
	}
	return failure(ReasonUnknownAction, fmt.Sprintf("unknown bonus action %q", t))
}

// EndTurn finishes the current combatant's turn: ticks its conditions,
// advances initiative, and resets the incoming combatant's ledger. When
// one side has no active members left the encounter ends automatically
// and EndTurn returns (nil, nil).
//
// Precondition: combat must be active.
func (e *Engine) EndTurn() (*combatant.Combatant, error) {
	if e.phase != PhaseActive {
		return nil, fmt.Errorf("engine: EndTurn called in phase %s", e.phase)
	}
	current, err := e.tracker.Current()
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if current != nil {
		for _, expired := range current.Conditions.Tick() {
			e.appendEvent(EventConditionExpired, current.ID, "",
				fmt.Sprintf("%s is no longer %s", current.Name, expired),
				map[string]any{"condition": expired})
		}
		e.appendEvent(EventTurnEnded, current.ID, "", fmt.Sprintf("%s ends its turn", current.Name), nil)
	}

	if e.tracker.CombatOver() {
		e.endCombat("one side eliminated")
		return nil, nil
	}

	prevRound := e.tracker.Round()
	next, err := e.tracker.Advance()
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if e.tracker.Round() != prevRound {
		e.reactionsUsed = make(map[string]bool)
	}
	if next == nil {
		e.endCombat("no active combatants")
		return nil, nil
	}
	e.beginTurn(next)
	return next, nil
}

// beginTurn resets the incoming combatant's ledger, exactly once per
// turn start.
func (e *Engine) beginTurn(c *combatant.Combatant) {
	ledger, ok := e.ledgers[c.ID]
	if !ok {
		ledger = turn.NewState(c.ID, effectiveSpeed(c))
		e.ledgers[c.ID] = ledger
	} else {
		ledger.Reset(effectiveSpeed(c))
	}
	e.appendEvent(EventTurnStarted, c.ID, "",
		fmt.Sprintf("%s begins its turn (round %d)", c.Name, e.tracker.Round()), nil)
}

// EndCombat finishes the encounter explicitly.
//
// Precondition: combat must be active.
func (e *Engine) EndCombat(reason string) (*Summary, error) {
	if e.phase != PhaseActive {
		return nil, fmt.Errorf("engine: EndCombat called in phase %s", e.phase)
	}
	e.endCombat(reason)
	return e.summary, nil
}

// Summary returns the encounter summary once combat has ended.
func (e *Engine) Summary() (*Summary, bool) {
	return e.summary, e.summary != nil
}

func (e *Engine) endCombat(reason string) {
	var survivors []string
	for _, c := range e.roster.All() {
		if c.Active {
			survivors = append(survivors, c.ID)
		}
	}
	e.summary = &Summary{
		EncounterID: e.encounterID,
		Outcome:     e.tracker.Outcome().String(),
		Reason:      reason,
		Rounds:      e.tracker.Round(),
		Survivors:   survivors,
	}
	e.phase = PhaseEnded
	e.appendEvent(EventCombatEnded, "", "",
		fmt.Sprintf("combat ended after %d rounds: %s (%s)", e.summary.Rounds, e.summary.Outcome, reason),
		map[string]any{"outcome": e.summary.Outcome, "survivors": survivors})
	e.summary.EventCount = len(e.events)
	e.logger.Info("combat ended",
		zap.String("encounter_id", e.encounterID),
		zap.String("outcome", e.summary.Outcome),
		zap.Int("rounds", e.summary.Rounds),
		zap.Strings("survivors", survivors))
}

// moveProfile derives the pathfinder profile from a combatant's
// movement modes.
func moveProfile(c *combatant.Combatant) grid.MoveProfile {
	return grid.MoveProfile{
		CanFly:   c.Modes.Fly > 0,
		CanSwim:  c.Modes.Swim > 0,
		CanClimb: c.Modes.Climb > 0,
	}
}

// effectiveSpeed is the best of a combatant's movement speeds.
func effectiveSpeed(c *combatant.Combatant) int {
	best := c.Speed
	for _, s := range []int{c.Modes.Fly, c.Modes.Swim, c.Modes.Climb} {
		if s > best {
			best = s
		}
	}
	return best
}
