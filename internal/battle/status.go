package battle

import (
	"fmt"

	"github.com/ericogr/chimera-battle/internal/constants"
	"github.com/ericogr/chimera-battle/internal/effect"
	"github.com/ericogr/chimera-battle/internal/logging"
	"github.com/ericogr/chimera-battle/internal/subst"
)

// StatusEffect is a live status attached to one battler. It rewrites effect
// text through its bound rule until its counter runs out.
type StatusEffect struct {
	ID          string
	Defn        effect.StatusDefinition
	Counter     int
	Description string

	owner *Battler
	rule  subst.Subst
	seq   uint64
}

func (s *StatusEffect) Name() string { return s.Defn.Name }

func (s *StatusEffect) Owner() *Battler { return s.owner }

// Rule is the definition's rule with "me" bound to the owner.
func (s *StatusEffect) Rule() subst.Subst { return s.rule }

func (s *StatusEffect) Expired() bool { return s.Counter <= 0 }

// Apply rewrites text with the bound rule. Statuses counted in times spend
// one charge per replaced match; expired statuses return text unchanged.
func (s *StatusEffect) Apply(text string) string {
	if s.Expired() {
		return text
	}
	n, out, err := s.rule.Apply(text, map[string]interface{}{"counter": s.Counter}, true)
	if err != nil {
		logging.Warn("status rewrite failed", logging.Fields{
			constants.LogFieldStatus: s.Defn.Name,
			constants.LogFieldRule:   s.rule.String(),
			"error":                  err.Error(),
		})
		return text
	}
	if s.Defn.CounterType == effect.CounterTimes {
		s.Counter -= n
	}
	return out
}

func (s *StatusEffect) String() string {
	return fmt.Sprintf("%s (%d %s)", s.Defn.Name, s.Counter, s.Defn.CounterType)
}
