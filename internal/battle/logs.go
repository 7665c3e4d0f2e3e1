package battle

import (
	"fmt"
	"strings"

	"github.com/ericogr/chimera-battle/internal/card"
	"github.com/ericogr/chimera-battle/internal/effect"
)

func (b *Bundle) logf(format string, args ...interface{}) {
	b.Logs = append(b.Logs, fmt.Sprintf("Turn %d: ", b.TurnCounter)+fmt.Sprintf(format, args...))
}

func cardNames(cards []*card.Card) string {
	names := make([]string, 0, len(cards))
	for _, c := range cards {
		names = append(names, c.Name)
	}
	return strings.Join(names, ", ")
}

// RecordToBattleLogs appends one human readable line per applied effect.
func (b *Bundle) RecordToBattleLogs(r ResolvedEffects) {
	for _, a := range r.Entries {
		switch e := a.Effect.(type) {
		case *effect.SinglePoint:
			b.logTargeted(a, e)
		case *effect.DrawCards:
			b.logf("Draw %d cards", e.Count)
		case *effect.DiscardCards:
			if e.Count > 0 {
				b.logf("Discard %d cards", e.Count)
			} else {
				b.logf("Discard %d cards: specifically %s", len(e.Specific), cardNames(e.Specific))
			}
		case *effect.CreateCard:
			b.logf("Create %d %s", e.Copies, e.Card.Name)
		case *effect.DuplicateCard:
			b.logf("Duplicate %d %s", e.Copies, e.Card.Name)
		case *effect.TransformCard:
			b.logf("Transform %s to %s", e.From.Name, e.To.Name)
		case *effect.DestroyCards:
			b.logf("Destroy %d cards: %s", len(e.Cards), cardNames(e.Cards))
		case *effect.DestroyRule:
			b.logf("Destroy rule R%02d", e.RuleID)
		}
	}
}

func (b *Bundle) logTargeted(a Applied, e *effect.SinglePoint) {
	if a.Target == nil {
		return
	}
	name := a.Target.Name
	if a.Missed {
		b.logf("%s evaded an attack", name)
		return
	}
	switch e.Kind() {
	case effect.KindDamage:
		b.logf("%s received damage %d", name, e.Damage())
	case effect.KindHeal:
		b.logf("%s received healing %d", name, e.Heal())
	case effect.KindShieldGain:
		b.logf("%s gained shield %d", name, e.ShieldGain())
	case effect.KindShieldLoss:
		b.logf("%s lost shield %d", name, e.ShieldLoss())
	case effect.KindStatus:
		b.logf("%s received status %s", name, e.AddStatus.Defn.Name)
	default:
		b.logf("%s received other effect...", name)
	}
}
