package effect

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericogr/chimera-battle/internal/card"
)

type stubResolver map[string]*card.Card

func (r stubResolver) SeekCard(expr string) (*card.Card, error) {
	if c, ok := r[strings.ToLower(strings.TrimSpace(expr))]; ok {
		return c, nil
	}
	return nil, card.ErrNotFound
}

func TestParseTargeted_ShieldCritDelay(t *testing.T) {
	target, e, err := ParseTargeted("[entity: shield 10 | crit 0.5 | delay 1]")
	require.NoError(t, err)
	assert.Equal(t, "entity", target)
	assert.Equal(t, &SinglePoint{DeltaShield: 10, CritChance: 0.5, Delay: 1, Accuracy: 1}, e)
}

func TestParseTargeted_DamageWithFlags(t *testing.T) {
	target, e, err := ParseTargeted("[entity: damaged 5 | acc 0.8 | delay 2 | pierce | drain]")
	require.NoError(t, err)
	assert.Equal(t, "entity", target)
	assert.Equal(t, &SinglePoint{DeltaHP: -5, Delay: 2, Pierce: true, Drain: true, Accuracy: 0.8}, e)
	assert.Equal(t, 5, e.Damage())
	assert.Equal(t, KindDamage, e.Kind())
}

func TestParseTargeted_Healed(t *testing.T) {
	_, e, err := ParseTargeted("[entity: healed 3 | crit 0.2 | delay 0]")
	require.NoError(t, err)
	assert.Equal(t, &SinglePoint{DeltaHP: 3, CritChance: 0.2, Accuracy: 1}, e)
	assert.Equal(t, 3, e.Heal())
	assert.Equal(t, KindHeal, e.Kind())
}

func TestParseTargeted_FractionalDamageRounds(t *testing.T) {
	_, e, err := ParseTargeted("[Slime A: damaged 6.5]")
	require.NoError(t, err)
	assert.Equal(t, -7, e.DeltaHP)
}

func TestParseTargeted_NoopAndDroppedClauses(t *testing.T) {
	_, e, err := ParseTargeted("[celine: looks around nervously]")
	require.NoError(t, err)
	assert.True(t, e.Noop)

	_, e, err = ParseTargeted("[celine: damaged lots | shield 2]")
	require.NoError(t, err)
	assert.False(t, e.Noop)
	assert.Zero(t, e.DeltaHP)
	assert.Equal(t, 2, e.DeltaShield)
}

func TestParseTargeted_StatusClause(t *testing.T) {
	span := "[Slime A: +vulnerable [1 turn] [ME: damaged {:d}] -> [ME: damaged {{m[0] * 1.25}}];]"
	target, e, err := ParseTargeted(span)
	require.NoError(t, err)
	assert.Equal(t, "Slime A", target)
	require.NotNil(t, e.AddStatus)
	assert.Equal(t, "vulnerable", e.AddStatus.Defn.Name)
	assert.Equal(t, CounterTurns, e.AddStatus.Defn.CounterType)
	assert.Equal(t, 1, e.AddStatus.Counter)
	assert.Equal(t, "[ME: damaged {:d}]", e.AddStatus.Defn.Rule.Pattern)
	assert.Equal(t, "[ME: damaged {{m[0] * 1.25}}]", e.AddStatus.Defn.Rule.Replacement)
	assert.Equal(t, KindStatus, e.Kind())
}

func TestParseStatus_Times(t *testing.T) {
	g, err := ParseStatus("+barrier [2 times] [me: damaged {:d}] if m[0] > 0 -> [me: damaged 0];")
	require.NoError(t, err)
	assert.Equal(t, CounterTimes, g.Defn.CounterType)
	assert.Equal(t, 2, g.Counter)
	assert.Equal(t, "m[0] > 0", g.Defn.Rule.Condition)

	_, err = ParseStatus("+barrier [me: damaged {:d}] -> x")
	assert.Error(t, err)
}

func TestExtractTopLevel(t *testing.T) {
	text := "You swing. [Slime A: damaged 5] ] then [x: +v [1 turn] [a] -> [b];] and [open"
	spans := ExtractTopLevel(text)
	assert.Equal(t, []string{"[Slime A: damaged 5]", "[x: +v [1 turn] [a] -> [b];]"}, spans)
}

func TestRepairSpan(t *testing.T) {
	assert.Equal(t, []string{"[a: damaged 1]"}, RepairSpan("[a: damaged 1]"))
	got := RepairSpan("[a: damaged 1; b: damaged 2; c: healed 3]")
	assert.Equal(t, []string{"[a: damaged 1]", "[b: damaged 2]", "[c: healed 3]"}, got)
}

func TestSpans(t *testing.T) {
	got := Spans("[a: damaged 1; b: damaged 2; c: shield 1] [draw 1]")
	assert.Len(t, got, 4)
	assert.Equal(t, "[draw 1]", got[3])
}

func TestParse_Globals(t *testing.T) {
	strike := card.New("Strike", "Deal 3 damage.")
	defend := card.New("Defend", "Gain 3 shield.")
	r := stubResolver{"strike": strike, "defend": defend}

	p, err := Parse("[draw 2 | delay 1]", r)
	require.NoError(t, err)
	assert.Empty(t, p.Target)
	assert.Equal(t, &DrawCards{Count: 2, Delay: 1}, p.Effect)
	assert.True(t, IsGlobal(p.Effect))

	p, err = Parse("[discard 2]", r)
	require.NoError(t, err)
	assert.Equal(t, &DiscardCards{Count: 2}, p.Effect)

	p, err = Parse("[discard Strike, Defend]", r)
	require.NoError(t, err)
	assert.Equal(t, &DiscardCards{Specific: []*card.Card{strike, defend}}, p.Effect)

	p, err = Parse("[create <Lash: Deal 2 damage twice.> * 2 | to deck_top]", r)
	require.NoError(t, err)
	cc, ok := p.Effect.(*CreateCard)
	require.True(t, ok)
	assert.Equal(t, "Lash", cc.Card.Name)
	assert.Equal(t, "Deal 2 damage twice.", cc.Card.Description)
	assert.Equal(t, 2, cc.Copies)
	assert.Equal(t, card.ZoneDeckTop, cc.Where)

	p, err = Parse("[duplicate Strike | copies 3]", r)
	require.NoError(t, err)
	assert.Equal(t, &DuplicateCard{Card: strike, Copies: 3, Where: card.ZoneHand}, p.Effect)

	p, err = Parse("[transform Strike to <Lash: Deal 2 damage twice.>]", r)
	require.NoError(t, err)
	tc, ok := p.Effect.(*TransformCard)
	require.True(t, ok)
	assert.Same(t, strike, tc.From)
	assert.Equal(t, "Lash", tc.To.Name)

	p, err = Parse("[destroy Defend]", r)
	require.NoError(t, err)
	assert.Equal(t, &DestroyCards{Cards: []*card.Card{defend}}, p.Effect)

	p, err = Parse("[destroy rule R02 | delay 1]", r)
	require.NoError(t, err)
	assert.Equal(t, &DestroyRule{RuleID: 2, Delay: 1}, p.Effect)
	assert.Equal(t, 1, p.Effect.DelayTurns())
}

func TestParse_GlobalsClosedBySemicolon(t *testing.T) {
	strike := card.New("Strike", "Deal 3 damage.")
	r := stubResolver{"strike": strike}

	p, err := Parse("[create <Lash: Deal 2 damage to a target.>;]", r)
	require.NoError(t, err)
	cc, ok := p.Effect.(*CreateCard)
	require.True(t, ok)
	assert.Equal(t, "Lash", cc.Card.Name)
	assert.Equal(t, "Deal 2 damage to a target.", cc.Card.Description)
	assert.Equal(t, 1, cc.Copies)

	p, err = Parse("[transform Strike to <Lash: Deal 2 damage to a target.>;]", r)
	require.NoError(t, err)
	tc, ok := p.Effect.(*TransformCard)
	require.True(t, ok)
	assert.Same(t, strike, tc.From)
	assert.Equal(t, "Lash", tc.To.Name)
	assert.Equal(t, "Deal 2 damage to a target.", tc.To.Description)

	p, err = Parse("[draw 2 | delay 1;]", r)
	require.NoError(t, err)
	assert.Equal(t, &DrawCards{Count: 2, Delay: 1}, p.Effect)
}

func TestParse_Errors(t *testing.T) {
	r := stubResolver{}
	_, err := Parse("[duplicate Ghost]", r)
	assert.ErrorIs(t, err, card.ErrNotFound)

	_, err = Parse("[summon 3 bats]", r)
	assert.ErrorIs(t, err, ErrUnknownGlobal)

	_, err = Parse("not a span", r)
	assert.ErrorIs(t, err, ErrMalformedSpan)

	_, err = Parse("[create <Lash> | to the moon]", r)
	assert.Error(t, err)
}

func TestParse_TargetNamedLikeGlobal(t *testing.T) {
	p, err := Parse("[Draw Golem: damaged 5]", nil)
	require.NoError(t, err)
	assert.Equal(t, "Draw Golem", p.Target)
	assert.Equal(t, -5, p.Effect.(*SinglePoint).DeltaHP)
}
