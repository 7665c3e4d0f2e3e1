package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ericogr/chimera-battle/internal/battle"
	"github.com/ericogr/chimera-battle/internal/card"
	"github.com/ericogr/chimera-battle/internal/constants"
	"github.com/ericogr/chimera-battle/internal/logging"
)

// withLive runs fn under the encounter lock. fn is only called for encounters
// whose battle is still ongoing.
func (s *EncounterService) withLive(id string, fn func(le *liveEncounter) (*TurnResult, error)) (*TurnResult, error) {
	le, ok := s.lookup(id)
	if !ok {
		if _, err := s.Get(id); err != nil {
			return nil, err
		}
		// stored but evicted: nothing left to play
		return nil, ErrEncounterFinished
	}
	le.mu.Lock()
	defer le.mu.Unlock()
	le.lastUsed = s.now()
	if le.bundle.Outcome() != battle.OutcomeOngoing {
		return nil, ErrEncounterFinished
	}
	return fn(le)
}

// pickFromHand resolves each ref against the hand by id, short id or name.
// A card already picked is not matched twice, so "Strike" twice selects two
// copies.
func pickFromHand(hand []*card.Card, refs []string) ([]*card.Card, error) {
	used := map[string]bool{}
	var out []*card.Card
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		var found *card.Card
		for _, c := range hand {
			if used[c.ID] {
				continue
			}
			if c.ID == ref || strings.EqualFold(c.ShortID(), ref) || strings.EqualFold(c.Name, ref) {
				found = c
				break
			}
		}
		if found == nil {
			return nil, fmt.Errorf("%w: %s", ErrCardNotInHand, ref)
		}
		used[found.ID] = true
		out = append(out, found)
	}
	return out, nil
}

// PlayCards resolves the referenced hand cards through the judge. The hand
// is left as it was when resolution fails.
func (s *EncounterService) PlayCards(ctx context.Context, id string, refs []string) (*TurnResult, error) {
	if len(refs) == 0 {
		return nil, ErrNoCardsPlayed
	}
	return s.withLive(id, func(le *liveEncounter) (*TurnResult, error) {
		b := le.bundle
		cards, err := pickFromHand(b.Cards.Hand, refs)
		if err != nil {
			return nil, err
		}
		before := len(b.Logs)
		r, err := b.ResolvePlayerCards(ctx, cards)
		if err != nil {
			logging.Error("failed to resolve played cards", err, logging.Fields{constants.LogFieldEncounterID: id})
			return nil, err
		}
		b.RecordToBattleLogs(r)
		s.describe(ctx, le)
		if err := s.persist(le, &r); err != nil {
			return nil, err
		}
		return le.result(r, before), nil
	})
}

// EndTurn runs end-of-turn events, lets the enemies act and, when the battle
// goes on, deals the next hand.
func (s *EncounterService) EndTurn(ctx context.Context, id string) (*TurnResult, error) {
	return s.withLive(id, func(le *liveEncounter) (*TurnResult, error) {
		b := le.bundle
		before := len(b.Logs)
		b.EndPlayerTurn()

		var last battle.ResolvedEffects
		if b.Outcome() == battle.OutcomeOngoing {
			r, err := b.ResolveEnemyActions(ctx)
			if err != nil {
				logging.Error("failed to resolve enemy actions", err, logging.Fields{constants.LogFieldEncounterID: id})
				return nil, err
			}
			b.RecordToBattleLogs(r)
			last = r
		}
		if b.Outcome() == battle.OutcomeOngoing {
			b.StartNewTurn()
		}
		last.Outcome = b.Outcome()
		s.describe(ctx, le)
		if err := s.persist(le, &last); err != nil {
			return nil, err
		}
		logging.Debug("turn ended", logging.Fields{
			constants.LogFieldEncounterID: id,
			constants.LogFieldTurn:        b.TurnCounter,
			constants.LogFieldStatus:      string(last.Outcome),
		})
		return le.result(last, before), nil
	})
}

// ApplyEffects processes raw effect text against the encounter without
// consulting the judge.
func (s *EncounterService) ApplyEffects(id, text string) (*TurnResult, error) {
	return s.withLive(id, func(le *liveEncounter) (*TurnResult, error) {
		b := le.bundle
		before := len(b.Logs)
		r, err := b.ProcessAndFlushEffects(text, false)
		if err != nil {
			return nil, err
		}
		b.RecordToBattleLogs(r)
		if err := s.persist(le, nil); err != nil {
			return nil, err
		}
		return le.result(r, before), nil
	})
}

func (s *EncounterService) describe(ctx context.Context, le *liveEncounter) {
	if le.bundle.Interpreter == nil {
		return
	}
	if err := le.bundle.DescribeStatuses(ctx); err != nil {
		logging.Warn("some statuses could not be described", logging.Fields{
			constants.LogFieldEncounterID: le.record.EncounterUUID,
			"error":                       err.Error(),
		})
	}
}

func (le *liveEncounter) result(r battle.ResolvedEffects, logsFrom int) *TurnResult {
	return &TurnResult{
		View:      *le.view(),
		Reason:    r.Reason,
		Narrative: r.Narrative,
		Rarity:    r.Rarity,
		Totals:    totalsOf(r),
		Logs:      append([]string{}, le.bundle.Logs[logsFrom:]...),
	}
}
