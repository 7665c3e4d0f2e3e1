// Package effect parses bracketed effect tokens embedded in narrative text,
// e.g. "[Slime A: damaged 5 | crit 0.5]" or "[draw 2 | delay 1]", into
// typed effects.
package effect

import (
	"github.com/ericogr/chimera-battle/internal/card"
	"github.com/ericogr/chimera-battle/internal/subst"
)

// Effect is one of *SinglePoint, *DrawCards, *DiscardCards, *CreateCard,
// *DuplicateCard, *TransformCard, *DestroyCards or *DestroyRule.
type Effect interface {
	// DelayTurns is how many turns after the current one the effect resolves.
	DelayTurns() int
	isEffect()
}

type CounterType string

const (
	CounterTurns CounterType = "turns"
	CounterTimes CounterType = "times"
)

// StatusDefinition is the immutable template of a status effect.
type StatusDefinition struct {
	Name        string
	Rule        subst.Subst
	CounterType CounterType
}

// StatusGrant attaches a status with the given starting counter.
type StatusGrant struct {
	Defn    StatusDefinition
	Counter int
}

// SinglePoint targets one battler. Negative DeltaHP is damage, positive is
// healing.
type SinglePoint struct {
	DeltaShield int
	DeltaHP     int
	CritChance  float64
	Delay       int
	Pierce      bool
	Drain       bool
	Accuracy    float64
	AddStatus   *StatusGrant
	Noop        bool
}

func NewSinglePoint() *SinglePoint {
	return &SinglePoint{Accuracy: 1}
}

func (e *SinglePoint) DelayTurns() int { return e.Delay }

func (e *SinglePoint) Damage() int {
	if e.DeltaHP < 0 {
		return -e.DeltaHP
	}
	return 0
}

func (e *SinglePoint) Heal() int {
	if e.DeltaHP > 0 {
		return e.DeltaHP
	}
	return 0
}

func (e *SinglePoint) ShieldGain() int {
	if e.DeltaShield > 0 {
		return e.DeltaShield
	}
	return 0
}

func (e *SinglePoint) ShieldLoss() int {
	if e.DeltaShield < 0 {
		return -e.DeltaShield
	}
	return 0
}

type Kind string

const (
	KindDamage     Kind = "damage"
	KindHeal       Kind = "heal"
	KindShieldGain Kind = "shield_gain"
	KindShieldLoss Kind = "shield_loss"
	KindStatus     Kind = "status"
	KindOther      Kind = "other"
)

// Kind classifies the effect by its dominant component, hp first.
func (e *SinglePoint) Kind() Kind {
	switch {
	case e.DeltaHP < 0:
		return KindDamage
	case e.DeltaHP > 0:
		return KindHeal
	case e.DeltaShield > 0:
		return KindShieldGain
	case e.DeltaShield < 0:
		return KindShieldLoss
	case e.AddStatus != nil:
		return KindStatus
	default:
		return KindOther
	}
}

type DrawCards struct {
	Count int
	Delay int
}

// DiscardCards discards Count random cards from the hand, or exactly the
// Specific cards when Count is zero.
type DiscardCards struct {
	Count    int
	Specific []*card.Card
	Delay    int
}

// CreateCard adds Copies fresh copies of Card to Where.
type CreateCard struct {
	Card   *card.Card
	Copies int
	Where  card.Zone
	Delay  int
}

// DuplicateCard adds Copies duplicates of an existing card to Where.
type DuplicateCard struct {
	Card   *card.Card
	Copies int
	Where  card.Zone
	Delay  int
}

// TransformCard rewrites From in place to look like To.
type TransformCard struct {
	From  *card.Card
	To    *card.Card
	Delay int
}

type DestroyCards struct {
	Cards []*card.Card
	Delay int
}

// DestroyRule strikes a numbered battle rule.
type DestroyRule struct {
	RuleID int
	Delay  int
}

func (e *DrawCards) DelayTurns() int     { return e.Delay }
func (e *DiscardCards) DelayTurns() int  { return e.Delay }
func (e *CreateCard) DelayTurns() int    { return e.Delay }
func (e *DuplicateCard) DelayTurns() int { return e.Delay }
func (e *TransformCard) DelayTurns() int { return e.Delay }
func (e *DestroyCards) DelayTurns() int  { return e.Delay }
func (e *DestroyRule) DelayTurns() int   { return e.Delay }

func (*SinglePoint) isEffect()   {}
func (*DrawCards) isEffect()     {}
func (*DiscardCards) isEffect()  {}
func (*CreateCard) isEffect()    {}
func (*DuplicateCard) isEffect() {}
func (*TransformCard) isEffect() {}
func (*DestroyCards) isEffect()  {}
func (*DestroyRule) isEffect()   {}

// IsGlobal reports whether e acts on the card zones or rules rather than on
// a battler.
func IsGlobal(e Effect) bool {
	_, single := e.(*SinglePoint)
	return !single
}

// Parsed is one parsed span. Target is empty for global effects.
type Parsed struct {
	Target string
	Effect Effect
}
