package battle

import (
	"github.com/ericogr/chimera-battle/internal/card"
	"github.com/ericogr/chimera-battle/internal/constants"
	"github.com/ericogr/chimera-battle/internal/effect"
	"github.com/ericogr/chimera-battle/internal/logging"
)

// ApplyEffect applies e immediately, bypassing the schedule. caster may be
// nil; it only matters for drain. target is ignored for global effects.
func (b *Bundle) ApplyEffect(caster, target *Battler, e effect.Effect) Applied {
	if sp, ok := e.(*effect.SinglePoint); ok {
		return b.applyTargeted(caster, target, sp)
	}
	b.applyGlobal(e)
	return Applied{Effect: e}
}

// applyTargeted rolls accuracy, then crit only on a hit.
func (b *Bundle) applyTargeted(caster, target *Battler, e *effect.SinglePoint) Applied {
	res := Applied{Target: target, Effect: e}
	if target == nil || e.Noop {
		return res
	}
	if b.rng.Float64() > e.Accuracy {
		res.Missed = true
		return res
	}
	mult := 1
	if b.rng.Float64() < e.CritChance {
		mult = 2
		res.Critical = true
	}
	deltaHP := e.DeltaHP * mult
	target.ShieldPoints = max(target.ShieldPoints+e.DeltaShield*mult, 0)

	switch {
	case deltaHP < 0:
		dr, _ := target.ReceiveDamage(-deltaHP, e.Pierce)
		res.DamageDealt = dr.DamageDealt
		if e.Drain && caster != nil && caster != target {
			_, _ = caster.ReceiveHeal(dr.DamageDealt)
		}
	case deltaHP > 0:
		_, _ = target.ReceiveHeal(deltaHP)
	}

	if e.AddStatus != nil {
		b.attachStatus(target, e.AddStatus)
	}
	return res
}

func (b *Bundle) applyGlobal(e effect.Effect) {
	switch g := e.(type) {
	case *effect.DrawCards:
		b.Cards.DrawToHand(g.Count)
	case *effect.DiscardCards:
		if g.Count > 0 {
			b.Cards.HandToGraveyard(b.sampleHand(g.Count))
		} else {
			b.Cards.HandToGraveyard(g.Specific)
		}
	case *effect.CreateCard:
		b.addCopies(g.Card, g.Copies, g.Where)
	case *effect.DuplicateCard:
		b.addCopies(g.Card, g.Copies, g.Where)
	case *effect.TransformCard:
		b.Cards.TransformCard(g.From, g.To)
	case *effect.DestroyCards:
		b.Cards.DestroyCards(g.Cards)
	case *effect.DestroyRule:
		if g.RuleID < 1 || g.RuleID >= len(b.Rules) {
			logging.Error("rule does not exist", ErrInvalidArgument, logging.Fields{constants.LogFieldRule: g.RuleID})
			return
		}
		b.Rules[g.RuleID] = ""
	}
}

// sampleHand picks n distinct hand cards at random, in hand order.
func (b *Bundle) sampleHand(n int) []*card.Card {
	hand := b.Cards.Hand
	n = min(n, len(hand))
	picked := make(map[int]bool, n)
	for _, ix := range b.rng.Perm(len(hand))[:n] {
		picked[ix] = true
	}
	out := make([]*card.Card, 0, n)
	for i, c := range hand {
		if picked[i] {
			out = append(out, c)
		}
	}
	return out
}

func (b *Bundle) addCopies(c *card.Card, copies int, where card.Zone) {
	if c == nil {
		return
	}
	cards := make([]*card.Card, 0, copies)
	for i := 0; i < copies; i++ {
		cards = append(cards, c.Duplicate())
	}
	if err := b.Cards.AddTo(where, cards...); err != nil {
		logging.Error("failed to add cards", err, logging.Fields{constants.LogFieldName: c.Name})
	}
}
