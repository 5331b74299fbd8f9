package dice

import "go.uber.org/zap"

// Roll evaluates an Expression using the given Source and returns a RollResult.
//
// Precondition: expr must come from Parse (Count >= 1, Sides >= 2); src must be non-nil.
// Postcondition: len(result.Dice) == expr.Count and
// result.Total() == sum(result.Dice) + result.Modifier.
func Roll(expr Expression, src Source) RollResult {
	rolled := make([]int, expr.Count)
	for i := range rolled {
		rolled[i] = src.Intn(expr.Sides) + 1
	}
	return RollResult{
		Expression: expr.Raw,
		Dice:       rolled,
		Modifier:   expr.Modifier,
	}
}

// D20Result holds a single d20 check roll.
type D20Result struct {
	Base  int // raw die result, 1..20
	Total int // Base + modifier
}

// Roller wraps a Source and logger to provide logged dice rolling.
// All rolls are logged at debug level with expression, dice values,
// modifier, and total.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// D20 rolls a single d20 and applies modifier.
//
// Postcondition: 1 <= result.Base <= 20; result.Total == result.Base + modifier.
func (r *Roller) D20(modifier int) D20Result {
	base := r.src.Intn(20) + 1
	result := D20Result{Base: base, Total: base + modifier}
	r.logger.Debug("d20 roll",
		zap.Int("base", result.Base),
		zap.Int("modifier", modifier),
		zap.Int("total", result.Total),
	)
	return result
}

// Damage parses notation (NdM, NdM+K, NdM-K) and rolls it, returning the total.
// Malformed notation resolves to 0 rather than failing the caller's turn;
// the parse failure is logged at warn level.
//
// Postcondition: Returns >= 0.
func (r *Roller) Damage(notation string) int {
	expr, err := Parse(notation)
	if err != nil {
		r.logger.Warn("unparseable damage notation, resolving to 0",
			zap.String("notation", notation),
			zap.Error(err),
		)
		return 0
	}
	result := Roll(expr, r.src)
	r.logger.Debug("damage roll",
		zap.String("expression", result.Expression),
		zap.Ints("dice", result.Dice),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total()),
	)
	total := result.Total()
	if total < 0 {
		return 0
	}
	return total
}

// RollExpr parses expr and rolls it, logging the result.
//
// Postcondition: Returns a RollResult or a parse error.
func (r *Roller) RollExpr(expr string) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	result := Roll(e, r.src)
	r.logger.Debug("dice roll",
		zap.String("expression", result.Expression),
		zap.Ints("dice", result.Dice),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total()),
	)
	return result, nil
}
