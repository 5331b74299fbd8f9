package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/vancegreer/tactics/internal/game/dice"
)

// seqSource returns preset values in order, wrapping at the end.
// Each value is clamped to [0, n) at call time.
type seqSource struct {
	values []int
	idx    int
}

func (s *seqSource) Intn(n int) int {
	v := s.values[s.idx%len(s.values)]
	s.idx++
	return v % n
}

func TestParse(t *testing.T) {
	tests := []struct {
		expr     string
		count    int
		sides    int
		modifier int
	}{
		{"d20", 1, 20, 0},
		{"2d6", 2, 6, 0},
		{"2d6+3", 2, 6, 3},
		{"4d8-2", 4, 8, -2},
		{"1d12+0", 1, 12, 0},
	}
	for _, tc := range tests {
		e, err := dice.Parse(tc.expr)
		require.NoError(t, err, "expr=%s", tc.expr)
		assert.Equal(t, tc.count, e.Count, "expr=%s", tc.expr)
		assert.Equal(t, tc.sides, e.Sides, "expr=%s", tc.expr)
		assert.Equal(t, tc.modifier, e.Modifier, "expr=%s", tc.expr)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, expr := range []string{"", "20", "0d6", "-1d6", "2d1", "2dx", "ad6", "2d6+x"} {
		_, err := dice.Parse(expr)
		assert.Error(t, err, "expr=%q", expr)
	}
}

func TestRoll_TotalMatchesDice(t *testing.T) {
	src := &seqSource{values: []int{3, 4}}
	result := dice.Roll(dice.MustParse("2d6+3"), src)
	assert.Equal(t, []int{4, 5}, result.Dice)
	assert.Equal(t, 3, result.Modifier)
	assert.Equal(t, 12, result.Total())
	assert.Equal(t, "2d6+3 → [4 5] +3 = 12", result.String())
}

func TestRoll_Property_TotalIsSumPlusModifier(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 10).Draw(rt, "count")
		sides := rapid.IntRange(2, 20).Draw(rt, "sides")
		mod := rapid.IntRange(-5, 10).Draw(rt, "mod")
		expr := dice.Expression{Raw: "x", Count: count, Sides: sides, Modifier: mod}
		result := dice.Roll(expr, dice.NewCryptoSource())
		require.Len(rt, result.Dice, count)
		sum := mod
		for _, d := range result.Dice {
			assert.GreaterOrEqual(rt, d, 1)
			assert.LessOrEqual(rt, d, sides)
			sum += d
		}
		assert.Equal(rt, sum, result.Total())
	})
}

func TestExpression_Average(t *testing.T) {
	assert.InDelta(t, 10.5, dice.MustParse("d20").Average(), 1e-9)
	assert.InDelta(t, 10.0, dice.MustParse("2d6+3").Average(), 1e-9)
	assert.InDelta(t, 16.0, dice.MustParse("4d8-2").Average(), 1e-9)
}

func TestRoller_D20(t *testing.T) {
	src := &seqSource{values: []int{14}}
	r := dice.NewRoller(src, zap.NewNop())
	result := r.D20(5)
	assert.Equal(t, 15, result.Base)
	assert.Equal(t, 20, result.Total)
}

func TestRoller_Damage(t *testing.T) {
	src := &seqSource{values: []int{2, 3}}
	r := dice.NewRoller(src, zap.NewNop())
	assert.Equal(t, 11, r.Damage("2d6+4")) // 3 + 4 + 4
}

func TestRoller_Damage_MalformedNotationResolvesToZero(t *testing.T) {
	r := dice.NewRoller(dice.NewCryptoSource(), zap.NewNop())
	assert.Equal(t, 0, r.Damage("not dice"))
	assert.Equal(t, 0, r.Damage(""))
}

func TestRoller_Damage_NeverNegative(t *testing.T) {
	src := &seqSource{values: []int{0}}
	r := dice.NewRoller(src, zap.NewNop())
	// 1d4-10 rolls 1, total -9, floored to 0.
	assert.Equal(t, 0, r.Damage("1d4-10"))
}
