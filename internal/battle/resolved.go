package battle

import "github.com/ericogr/chimera-battle/internal/effect"

// Applied is one effect that went through ApplyEffect. Target is nil for
// global effects. Totals count the effect as written even when it missed.
type Applied struct {
	Target      *Battler
	Effect      effect.Effect
	Missed      bool
	Critical    bool
	DamageDealt int
}

// ResolvedEffects is what one flush applied, in application order.
type ResolvedEffects struct {
	Entries []Applied
	// Rarity is the judge's significance for player plays, 0 otherwise.
	Rarity    int
	Reason    string
	Narrative string
	Outcome   Outcome
}

func (r ResolvedEffects) sum(f func(*effect.SinglePoint) int) int {
	total := 0
	for _, a := range r.Entries {
		if sp, ok := a.Effect.(*effect.SinglePoint); ok {
			total += f(sp)
		}
	}
	return total
}

func (r ResolvedEffects) TotalDamage() int { return r.sum((*effect.SinglePoint).Damage) }

func (r ResolvedEffects) TotalHeal() int { return r.sum((*effect.SinglePoint).Heal) }

func (r ResolvedEffects) TotalShieldGain() int { return r.sum((*effect.SinglePoint).ShieldGain) }

func (r ResolvedEffects) TotalShieldLoss() int { return r.sum((*effect.SinglePoint).ShieldLoss) }

// Globals returns the applied global effects.
func (r ResolvedEffects) Globals() []effect.Effect {
	var out []effect.Effect
	for _, a := range r.Entries {
		if effect.IsGlobal(a.Effect) {
			out = append(out, a.Effect)
		}
	}
	return out
}
