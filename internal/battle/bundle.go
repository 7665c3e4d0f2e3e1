// Package battle runs one encounter: battlers, their statuses, the effect
// schedule and the turn flow around the judge.
package battle

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/ericogr/chimera-battle/internal/card"
	"github.com/ericogr/chimera-battle/internal/effect"
	"github.com/ericogr/chimera-battle/internal/game"
	"github.com/ericogr/chimera-battle/internal/judge"
	"github.com/ericogr/chimera-battle/internal/schedule"
)

type Outcome string

const (
	OutcomeOngoing Outcome = "ongoing"
	OutcomeVictory Outcome = "victory"
	OutcomeDefeat  Outcome = "defeat"
)

// CancelEffect is the interceptor reply that vetoes an effect.
const CancelEffect = "cancel"

// Interceptor sees every due effect right before it applies. Target is nil
// for global effects. Returning CancelEffect drops the effect; any other
// non-empty text is parsed as effect text and scheduled after it.
type Interceptor func(target *Battler, e effect.Effect) string

// Content resolves content keys to profiles. config.Catalog implements it.
type Content interface {
	Player(key string) (game.PlayerProfile, error)
	Enemy(key string) (game.EnemyProfile, error)
	Deck(key string) ([]string, error)
	Rules() []string
	Prelude() string
}

type scheduled struct {
	caster *Battler
	target *Battler
	effect effect.Effect
}

// Bundle is the orchestrator of one encounter. It is not safe for
// concurrent use.
type Bundle struct {
	Player      *PlayerBattler
	Enemies     []*EnemyBattler
	TurnCounter int
	Cards       *card.Bundle
	// Rules is 1-indexed; index 0 is always empty.
	Rules   []string
	Logs    []string
	Prelude string

	Judge       judge.Judge
	Interpreter judge.Interpreter

	effects      schedule.Queue[scheduled]
	interceptors []Interceptor
	rng          *rand.Rand
	statusSeq    uint64
}

// New assembles a bundle. A nil rng gets a time-seeded one; pass a seeded
// rng (the same one the card bundle uses) for reproducible battles.
func New(player *PlayerBattler, enemies []*EnemyBattler, cards *card.Bundle, rng *rand.Rand) *Bundle {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Bundle{
		Player:  player,
		Enemies: enemies,
		Cards:   cards,
		Rules:   []string{""},
		rng:     rng,
	}
}

// Setup builds a fresh encounter from content keys. Enemy copies are
// numbered per profile key in order of first appearance. The hand starts
// empty; StartNewTurn deals it.
func Setup(content Content, deckKey, playerKey string, enemyKeys []string, rng *rand.Rand) (*Bundle, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	pp, err := content.Player(playerKey)
	if err != nil {
		return nil, err
	}
	lines, err := content.Deck(deckKey)
	if err != nil {
		return nil, err
	}
	deck, err := card.NewDeck(lines)
	if err != nil {
		return nil, fmt.Errorf("deck %s: %w", deckKey, err)
	}

	var order []string
	counts := map[string]int{}
	for _, k := range enemyKeys {
		if _, seen := counts[k]; !seen {
			order = append(order, k)
		}
		counts[k]++
	}
	var enemies []*EnemyBattler
	for _, k := range order {
		ep, err := content.Enemy(k)
		if err != nil {
			return nil, err
		}
		for i := 1; i <= counts[k]; i++ {
			enemies = append(enemies, NewEnemy(ep, i))
		}
	}
	if len(enemies) == 0 {
		return nil, fmt.Errorf("%w: an encounter needs at least one enemy", ErrInvalidArgument)
	}

	b := New(NewPlayer(pp), enemies, card.NewBundle(deck, rng), rng)
	b.SetRules(content.Rules())
	b.Prelude = content.Prelude()
	return b, nil
}

func (b *Bundle) SetRules(rules []string) {
	b.Rules = append([]string{""}, rules...)
}

// FormattedRules lists the live rules as "<rule> (R01)".
func (b *Bundle) FormattedRules() []string {
	var out []string
	for i, r := range b.Rules {
		if i == 0 || r == "" {
			continue
		}
		out = append(out, fmt.Sprintf("%s (R%02d)", r, i))
	}
	return out
}

// Battlers lists the player followed by the enemies still on the field.
func (b *Bundle) Battlers() []*Battler {
	out := make([]*Battler, 0, len(b.Enemies)+1)
	if b.Player != nil {
		out = append(out, &b.Player.Battler)
	}
	for _, e := range b.Enemies {
		out = append(out, &e.Battler)
	}
	return out
}

// Search finds the first battler whose name contains name, ignoring case.
func (b *Bundle) Search(name string) (*Battler, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil, fmt.Errorf("%w: empty name", ErrBattlerNotFound)
	}
	for _, bt := range b.Battlers() {
		if strings.Contains(strings.ToLower(bt.Name), needle) {
			return bt, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrBattlerNotFound, name)
}

func (b *Bundle) AddInterceptor(i Interceptor) {
	b.interceptors = append(b.interceptors, i)
}

// Pending is the number of scheduled effects not yet applied.
func (b *Bundle) Pending() int { return b.effects.Len() }

func (b *Bundle) Outcome() Outcome {
	switch {
	case b.Player != nil && b.Player.IsDead():
		return OutcomeDefeat
	case len(b.Enemies) == 0:
		return OutcomeVictory
	default:
		return OutcomeOngoing
	}
}

// liveStatuses are the postprocessors: every unexpired status on the field,
// in attach order.
func (b *Bundle) liveStatuses() []*StatusEffect {
	var out []*StatusEffect
	for _, bt := range b.Battlers() {
		out = append(out, bt.Statuses()...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

func (b *Bundle) attachStatus(target *Battler, grant *effect.StatusGrant) *StatusEffect {
	s := target.AttachStatus(grant.Defn, grant.Counter)
	b.statusSeq++
	s.seq = b.statusSeq
	return s
}

// sweepDead removes fallen enemies from the field and logs them.
func (b *Bundle) sweepDead() {
	alive := b.Enemies[:0:0]
	for _, e := range b.Enemies {
		if e.IsDead() {
			b.logf("%s has fallen.", e.Name)
			continue
		}
		alive = append(alive, e)
	}
	b.Enemies = alive
}

// Snapshot is a read-only picture of the encounter for callers outside the
// core.
type Snapshot struct {
	Turn           int                 `json:"turn"`
	Outcome        Outcome             `json:"outcome"`
	Player         judge.BattlerView   `json:"player"`
	MP             int                 `json:"mp"`
	Enemies        []judge.BattlerView `json:"enemies"`
	Hand           []*card.Card        `json:"hand"`
	DeckSize       int                 `json:"deck_size"`
	GraveyardSize  int                 `json:"graveyard_size"`
	Rules          []string            `json:"rules,omitempty"`
	PendingEffects int                 `json:"pending_effects"`
}

func (b *Bundle) Snapshot() Snapshot {
	s := Snapshot{
		Turn:           b.TurnCounter,
		Outcome:        b.Outcome(),
		Player:         b.Player.View(),
		MP:             b.Player.MP,
		Hand:           append([]*card.Card(nil), b.Cards.Hand...),
		DeckSize:       len(b.Cards.Deck),
		GraveyardSize:  len(b.Cards.Graveyard),
		Rules:          b.FormattedRules(),
		PendingEffects: b.Pending(),
	}
	for _, e := range b.Enemies {
		s.Enemies = append(s.Enemies, e.View())
	}
	return s
}

// DescribeStatuses fills in missing descriptions of live statuses through
// the interpreter. Failures leave the description empty.
func (b *Bundle) DescribeStatuses(ctx context.Context) error {
	if b.Interpreter == nil {
		return nil
	}
	var errs []error
	for _, s := range b.liveStatuses() {
		if s.Description != "" {
			continue
		}
		desc, err := b.Interpreter.Interpret(ctx, s.Defn.Name, s.Defn.Rule.String())
		if err != nil {
			errs = append(errs, fmt.Errorf("status %s: %w", s.Defn.Name, err))
			continue
		}
		s.Description = desc
	}
	return errors.Join(errs...)
}
