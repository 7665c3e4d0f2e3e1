package battle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericogr/chimera-battle/internal/effect"
	"github.com/ericogr/chimera-battle/internal/game"
	"github.com/ericogr/chimera-battle/internal/subst"
)

func TestReceiveDamage(t *testing.T) {
	tests := []struct {
		name             string
		hp, shield       int
		amount           int
		pierce           bool
		wantDealt        int
		wantHP, wantShld int
	}{
		{"shield absorbs first", 20, 3, 5, false, 2, 18, 0},
		{"shield covers all", 20, 8, 5, false, 0, 20, 3},
		{"pierce ignores shield", 20, 3, 5, true, 5, 15, 3},
		{"overkill is clamped", 2, 0, 10, false, 2, 0, 0},
		{"pierce overkill", 4, 0, 9, true, 4, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBattler("Slime A", 20)
			b.HP = tt.hp
			b.ShieldPoints = tt.shield
			r, err := b.ReceiveDamage(tt.amount, tt.pierce)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDealt, r.DamageDealt)
			assert.Equal(t, tt.wantHP, b.HP)
			assert.Equal(t, tt.wantShld, b.ShieldPoints)
		})
	}
}

func TestReceiveDamage_Conservation(t *testing.T) {
	for _, amount := range []int{0, 1, 4, 7, 30} {
		b := newBattler("Slime A", 20)
		b.ShieldPoints = 5
		hp, sp := b.HP, b.ShieldPoints
		r, err := b.ReceiveDamage(amount, false)
		require.NoError(t, err)
		absorbed := sp - b.ShieldPoints
		assert.Equal(t, hp-b.HP, r.DamageDealt)
		assert.LessOrEqual(t, absorbed+r.DamageDealt, amount)
		assert.GreaterOrEqual(t, b.HP, 0)
	}
}

func TestNegativeAmounts(t *testing.T) {
	b := newBattler("Slime A", 20)
	_, err := b.ReceiveDamage(-1, false)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = b.ReceiveHeal(-1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, 20, b.HP)
}

func TestReceiveHeal_ClampsToMax(t *testing.T) {
	b := newBattler("Celine", 30)
	b.HP = 25
	r, err := b.ReceiveHeal(10)
	require.NoError(t, err)
	assert.Equal(t, 5, r.HealDone)
	assert.Equal(t, 30, b.HP)
}

func TestNameStem(t *testing.T) {
	b := newBattler("Celine, the Bold", 30)
	assert.Equal(t, "Celine", b.NameStem())
	b = newBattler("Slime A", 10)
	assert.Equal(t, "Slime A", b.NameStem())
}

func mustRule(t *testing.T, rule string) subst.Subst {
	t.Helper()
	s, err := subst.Parse(rule)
	require.NoError(t, err)
	return s
}

func TestStatus_TurnsExpireAtTurnEnd(t *testing.T) {
	b := newBattler("Slime A", 20)
	defn := effect.StatusDefinition{
		Name:        "weak",
		Rule:        mustRule(t, "[me: damaged {:d}] -> [me: damaged 1];"),
		CounterType: effect.CounterTurns,
	}
	s := b.AttachStatus(defn, 2)
	assert.Equal(t, "[Slime A: damaged {:d}]", s.Rule().Pattern)
	assert.Same(t, &b, s.Owner())

	b.OnTurnEnd()
	require.Len(t, b.Statuses(), 1)
	assert.Equal(t, 1, s.Counter)

	b.OnTurnEnd()
	assert.Empty(t, b.Statuses())
	assert.True(t, s.Expired())
	assert.Equal(t, "[Slime A: damaged 9]", s.Apply("[Slime A: damaged 9]"), "expired status is inert")
}

func TestStatus_TimesSpendPerMatch(t *testing.T) {
	b := newBattler("Slime A", 20)
	defn := effect.StatusDefinition{
		Name:        "guarded",
		Rule:        mustRule(t, "[me: damaged {:d}] -> [me: damaged 1];"),
		CounterType: effect.CounterTimes,
	}
	s := b.AttachStatus(defn, 3)

	assert.Equal(t, "[Slime A: damaged 1][Slime A: damaged 1]", s.Apply("[Slime A: damaged 4][Slime A: damaged 6]"))
	assert.Equal(t, 1, s.Counter)

	assert.Equal(t, "[Slime B: damaged 4]", s.Apply("[Slime B: damaged 4]"))
	assert.Equal(t, 1, s.Counter, "no match spends nothing")

	b.OnTurnEnd()
	assert.Equal(t, 1, s.Counter, "times statuses ignore turn ends")
}

func TestStatus_CounterVisibleToRule(t *testing.T) {
	b := newBattler("Slime A", 20)
	defn := effect.StatusDefinition{
		Name:        "stacking",
		Rule:        mustRule(t, "[me: damaged {:d}] -> [me: damaged {{m[0] + counter}}];"),
		CounterType: effect.CounterTurns,
	}
	s := b.AttachStatus(defn, 3)
	assert.Equal(t, "[Slime A: damaged 5]", s.Apply("[Slime A: damaged 2]"))
	assert.Equal(t, "stacking (3 turns)", s.String())
}

func TestNewEnemy_NamesAndIntent(t *testing.T) {
	p := game.EnemyProfile{Name: "Slime", HitPoints: 12, Description: "wobbly", Pattern: []string{"attack 3", "defend 2"}}
	a := NewEnemy(p, 1)
	c := NewEnemy(p, 3)
	assert.Equal(t, "Slime A", a.Name)
	assert.Equal(t, "Slime C", c.Name)
	assert.Equal(t, "attack 3", a.CurrentIntent)
	a.updateIntent(3)
	assert.Equal(t, "defend 2", a.CurrentIntent)
	assert.Equal(t, "wobbly", a.View().Description)
	assert.NotEqual(t, a.UUID, c.UUID)
}
