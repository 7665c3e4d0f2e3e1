package battle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ericogr/chimera-battle/internal/effect"
	"github.com/ericogr/chimera-battle/internal/game"
	"github.com/ericogr/chimera-battle/internal/judge"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrBattlerNotFound = errors.New("battler not found")
)

type DamageResult struct {
	// DamageDealt is the hp actually removed; shield absorption excluded.
	DamageDealt int
}

type HealResult struct {
	HealDone int
}

// Battler is the state shared by the player and every enemy. Battlers are
// compared by pointer; UUID is the stable key for storage and logs.
type Battler struct {
	UUID         string
	Name         string
	HP           int
	MaxHP        int
	ShieldPoints int

	statuses []*StatusEffect
}

func newBattler(name string, hp int) Battler {
	return Battler{UUID: uuid.NewString(), Name: name, HP: hp, MaxHP: hp}
}

// NameStem is the name up to the first comma ("Celine, the Bold" -> "Celine").
func (b *Battler) NameStem() string {
	stem, _, _ := strings.Cut(b.Name, ",")
	return strings.TrimSpace(stem)
}

func (b *Battler) IsDead() bool { return b.HP <= 0 }

// ReceiveDamage absorbs damage with shields first unless pierce is set.
func (b *Battler) ReceiveDamage(amount int, pierce bool) (DamageResult, error) {
	if amount < 0 {
		return DamageResult{}, fmt.Errorf("%w: damage must not be negative, got %d", ErrInvalidArgument, amount)
	}
	rest := amount
	if !pierce {
		absorbed := min(b.ShieldPoints, amount)
		b.ShieldPoints -= absorbed
		rest = amount - absorbed
	}
	dealt := min(rest, max(b.HP, 0))
	b.HP -= dealt
	return DamageResult{DamageDealt: dealt}, nil
}

func (b *Battler) ReceiveHeal(amount int) (HealResult, error) {
	if amount < 0 {
		return HealResult{}, fmt.Errorf("%w: heal must not be negative, got %d", ErrInvalidArgument, amount)
	}
	healed := max(min(b.MaxHP-b.HP, amount), 0)
	b.HP += healed
	return HealResult{HealDone: healed}, nil
}

// OnTurnStart drops shields; they never carry over between turns.
func (b *Battler) OnTurnStart() {
	b.ShieldPoints = 0
}

// OnTurnEnd ticks turn-counted statuses and prunes expired ones.
func (b *Battler) OnTurnEnd() {
	for _, s := range b.statuses {
		if s.Defn.CounterType == effect.CounterTurns {
			s.Counter--
		}
	}
	b.pruneStatuses()
}

func (b *Battler) pruneStatuses() {
	live := b.statuses[:0]
	for _, s := range b.statuses {
		if !s.Expired() {
			live = append(live, s)
		}
	}
	for i := len(live); i < len(b.statuses); i++ {
		b.statuses[i] = nil
	}
	b.statuses = live
}

// AttachStatus instantiates defn on this battler with "me" in its rule bound
// to the battler's name stem.
func (b *Battler) AttachStatus(defn effect.StatusDefinition, counter int) *StatusEffect {
	s := &StatusEffect{
		ID:      uuid.NewString(),
		Defn:    defn,
		Counter: counter,
		owner:   b,
		rule:    defn.Rule.Bind("me", b.NameStem()),
	}
	b.statuses = append(b.statuses, s)
	return s
}

// Statuses returns the statuses that have not expired, in attach order.
func (b *Battler) Statuses() []*StatusEffect {
	out := make([]*StatusEffect, 0, len(b.statuses))
	for _, s := range b.statuses {
		if !s.Expired() {
			out = append(out, s)
		}
	}
	return out
}

func (b *Battler) View() judge.BattlerView {
	v := judge.BattlerView{Name: b.Name, HP: b.HP, MaxHP: b.MaxHP, Shield: b.ShieldPoints}
	for _, s := range b.Statuses() {
		v.Statuses = append(v.Statuses, s.String())
	}
	return v
}

type PlayerBattler struct {
	Battler
	Profile game.PlayerProfile
	MP      int
	MaxMP   int
}

func NewPlayer(p game.PlayerProfile) *PlayerBattler {
	return &PlayerBattler{Battler: newBattler(p.Name, p.HitPoints), Profile: p, MP: p.MP, MaxMP: p.MP}
}

// EnemyBattler is one copy of an enemy profile. Copies of the same profile
// are told apart by a letter: "Slime A", "Slime B".
type EnemyBattler struct {
	Battler
	Profile       game.EnemyProfile
	CopyNumber    int
	CurrentIntent string
}

func NewEnemy(p game.EnemyProfile, copyNumber int) *EnemyBattler {
	e := &EnemyBattler{
		Battler:    newBattler(enemyName(p.Name, copyNumber), p.HitPoints),
		Profile:    p,
		CopyNumber: copyNumber,
	}
	e.updateIntent(0)
	return e
}

func enemyName(name string, copyNumber int) string {
	if copyNumber >= 1 && copyNumber <= 26 {
		return fmt.Sprintf("%s %c", name, 'A'+rune(copyNumber-1))
	}
	return fmt.Sprintf("%s %d", name, copyNumber)
}

func (e *EnemyBattler) Description() string { return e.Profile.Description }

func (e *EnemyBattler) updateIntent(turn int) {
	if len(e.Profile.Pattern) == 0 {
		e.CurrentIntent = ""
		return
	}
	e.CurrentIntent = e.Profile.Pattern[turn%len(e.Profile.Pattern)]
}

func (e *EnemyBattler) View() judge.BattlerView {
	v := e.Battler.View()
	v.Intent = e.CurrentIntent
	v.Description = e.Description()
	return v
}
