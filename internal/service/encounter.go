package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ericogr/chimera-battle/internal/battle"
	"github.com/ericogr/chimera-battle/internal/constants"
	"github.com/ericogr/chimera-battle/internal/eventbus"
	"github.com/ericogr/chimera-battle/internal/game"
	"github.com/ericogr/chimera-battle/internal/judge"
	"github.com/ericogr/chimera-battle/internal/logging"
	"github.com/ericogr/chimera-battle/internal/storage"
)

var (
	ErrEncounterNotFound = errors.New("encounter not found")
	ErrEncounterFinished = errors.New("encounter already finished")
	ErrCardNotInHand     = errors.New("card not in hand")
	ErrNoCardsPlayed     = errors.New("no cards played")
)

// liveEncounter is an encounter whose battle state is held in memory. mu
// serialises every call into its bundle, judge round trips included.
type liveEncounter struct {
	mu       sync.Mutex
	bundle   *battle.Bundle
	record   *game.Encounter
	logged   int
	lastUsed time.Time
}

// EncounterService hosts live encounters and mirrors their summary and
// battle logs to the repository.
type EncounterService struct {
	repo        storage.Repository
	content     battle.Content
	judge       judge.Judge
	interpreter judge.Interpreter
	seed        int64
	now         func() time.Time

	mu   sync.Mutex
	live map[string]*liveEncounter
}

// NewEncounterService wires the service. A non-zero seed makes every new
// encounter replay identically; interpreter may be nil.
func NewEncounterService(repo storage.Repository, content battle.Content, j judge.Judge, interpreter judge.Interpreter, seed int64) *EncounterService {
	return &EncounterService{
		repo:        repo,
		content:     content,
		judge:       j,
		interpreter: interpreter,
		seed:        seed,
		now:         time.Now,
		live:        map[string]*liveEncounter{},
	}
}

type CreateRequest struct {
	DeckKey   string   `json:"deck_key" binding:"required"`
	PlayerKey string   `json:"player_key" binding:"required"`
	EnemyKeys []string `json:"enemy_keys" binding:"required,min=1"`
	Seed      int64    `json:"seed"`
}

// View is an encounter as returned to clients. State is nil when the battle
// is no longer held in memory.
type View struct {
	Encounter *game.Encounter `json:"encounter"`
	State     *battle.Snapshot `json:"state,omitempty"`
}

// TurnResult is the outcome of one player action.
type TurnResult struct {
	View
	Reason    string   `json:"reason,omitempty"`
	Narrative string   `json:"narrative,omitempty"`
	Rarity    int      `json:"rarity,omitempty"`
	Totals    Totals   `json:"totals"`
	Logs      []string `json:"logs"`
}

// Totals sums the effects of one action as written, misses included.
// CardEffects counts the applied effects that act on cards or rules.
type Totals struct {
	Damage      int `json:"damage"`
	Heal        int `json:"heal"`
	ShieldGain  int `json:"shield_gain"`
	ShieldLoss  int `json:"shield_loss"`
	CardEffects int `json:"card_effects"`
}

func totalsOf(r battle.ResolvedEffects) Totals {
	return Totals{
		Damage:      r.TotalDamage(),
		Heal:        r.TotalHeal(),
		ShieldGain:  r.TotalShieldGain(),
		ShieldLoss:  r.TotalShieldLoss(),
		CardEffects: len(r.Globals()),
	}
}

func (s *EncounterService) pickSeed(requested int64) int64 {
	switch {
	case requested != 0:
		return requested
	case s.seed != 0:
		return s.seed
	default:
		return time.Now().UnixNano()
	}
}

// Create sets up a new encounter and deals the first hand.
func (s *EncounterService) Create(ctx context.Context, req CreateRequest) (*View, error) {
	seed := s.pickSeed(req.Seed)
	b, err := battle.Setup(s.content, req.DeckKey, req.PlayerKey, req.EnemyKeys, rand.New(rand.NewSource(seed)))
	if err != nil {
		return nil, err
	}
	b.Judge = s.judge
	b.Interpreter = s.interpreter
	id := uuid.NewString()
	if err := b.Cards.Events.Register(cardEventLogger(id)); err != nil {
		return nil, err
	}
	b.StartNewTurn()

	rec := &game.Encounter{
		EncounterUUID: id,
		DeckKey:       req.DeckKey,
		PlayerKey:     req.PlayerKey,
		EnemyKeys:     strings.Join(req.EnemyKeys, ","),
		Seed:          seed,
		PlayerName:    b.Player.Name,
		PlayerMaxHP:   b.Player.MaxHP,
	}
	le := &liveEncounter{bundle: b, record: rec, lastUsed: s.now()}
	if err := s.persist(le, nil); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.live[rec.EncounterUUID] = le
	s.mu.Unlock()

	logging.Info("encounter created", logging.Fields{
		constants.LogFieldEncounterID: rec.EncounterUUID,
		"enemies":                     len(b.Enemies),
		"seed":                        seed,
	})
	return le.view(), nil
}

// cardEventLogger traces card zone changes of one encounter.
func cardEventLogger(id string) eventbus.Listener {
	return func(ev eventbus.Event) {
		logging.Debug("card event", logging.Fields{
			constants.LogFieldEncounterID: id,
			"topic":                       ev.Topic,
			"items":                       len(ev.Payload),
		})
	}
}

func (le *liveEncounter) view() *View {
	snap := le.bundle.Snapshot()
	rec := *le.record
	return &View{Encounter: &rec, State: &snap}
}

func (s *EncounterService) lookup(id string) (*liveEncounter, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	le, ok := s.live[id]
	return le, ok
}

// Get returns the live view of an encounter, or only its stored summary once
// the battle state has been evicted.
func (s *EncounterService) Get(id string) (*View, error) {
	if le, ok := s.lookup(id); ok {
		le.mu.Lock()
		defer le.mu.Unlock()
		return le.view(), nil
	}
	rec, err := s.repo.GetEncounterByUUID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEncounterNotFound
		}
		return nil, err
	}
	return &View{Encounter: rec}, nil
}

func (s *EncounterService) List(limit int) ([]game.Encounter, error) {
	return s.repo.ListEncounters(limit)
}

// Logs returns the stored battle log of an encounter.
func (s *EncounterService) Logs(id string) ([]string, error) {
	if _, err := s.repo.GetEncounterByUUID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEncounterNotFound
		}
		return nil, err
	}
	rows, err := s.repo.ListBattleLogs(id)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Line)
	}
	return out, nil
}

// persist copies the bundle state into the record, saves it and appends the
// log lines produced since the last save.
func (s *EncounterService) persist(le *liveEncounter, last *battle.ResolvedEffects) error {
	b := le.bundle
	rec := le.record
	rec.TurnCounter = b.TurnCounter
	rec.Status = game.EncounterStatus(b.Outcome())
	rec.PlayerHP = b.Player.HP
	rec.EnemiesLeft = len(b.Enemies)
	if last != nil {
		rec.LastRarity = last.Rarity
		rec.LastResults = last.Narrative
	}
	if err := s.repo.SaveEncounter(rec); err != nil {
		logging.Error("failed to save encounter", err, logging.Fields{constants.LogFieldEncounterID: rec.EncounterUUID})
		return fmt.Errorf("save encounter: %w", err)
	}
	if err := s.repo.AppendBattleLogs(rec.EncounterUUID, le.logged, b.Logs[le.logged:]); err != nil {
		logging.Error("failed to append battle logs", err, logging.Fields{constants.LogFieldEncounterID: rec.EncounterUUID})
		return fmt.Errorf("append battle logs: %w", err)
	}
	le.logged = len(b.Logs)
	return nil
}
