package battle

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/ericogr/chimera-battle/internal/card"
	"github.com/ericogr/chimera-battle/internal/constants"
	"github.com/ericogr/chimera-battle/internal/effect"
	"github.com/ericogr/chimera-battle/internal/judge"
	"github.com/ericogr/chimera-battle/internal/logging"
)

var ErrNoJudge = errors.New("no judge configured")

// Postprocess runs text through every live status in attach order. With
// aggregate set each status sees the original text and the outputs are
// joined by newlines; otherwise they are chained.
func (b *Bundle) Postprocess(text string, aggregate bool) string {
	statuses := b.liveStatuses()
	if aggregate {
		outs := make([]string, 0, len(statuses))
		for _, s := range statuses {
			outs = append(outs, s.Apply(text))
		}
		return strings.Join(outs, "\n")
	}
	for _, s := range statuses {
		text = s.Apply(text)
	}
	return text
}

// parse turns effect text into scheduled entries. Malformed spans are logged
// and skipped; a span naming an unknown battler fails the whole text.
func (b *Bundle) parse(caster *Battler, text string) ([]scheduled, error) {
	var out []scheduled
	for _, span := range effect.Spans(text) {
		p, err := effect.Parse(span, b.Cards)
		if err != nil {
			logging.Warn("skipped effect span", logging.Fields{
				constants.LogFieldSpan: span,
				"error":                err.Error(),
			})
			continue
		}
		if sp, ok := p.Effect.(*effect.SinglePoint); ok && sp.Noop {
			continue
		}
		entry := scheduled{caster: caster, effect: p.Effect}
		if !effect.IsGlobal(p.Effect) {
			target, err := b.Search(p.Target)
			if err != nil {
				return nil, err
			}
			entry.target = target
		}
		out = append(out, entry)
	}
	return out, nil
}

func (b *Bundle) enqueue(entries []scheduled) {
	for _, e := range entries {
		b.effects.Push(b.TurnCounter+e.effect.DelayTurns(), e)
	}
}

// ProcessEffects postprocesses text through the live statuses, parses it and
// schedules every effect. It returns how many effects were scheduled.
func (b *Bundle) ProcessEffects(text string, aggregate bool) (int, error) {
	return b.processAs(nil, text, aggregate)
}

func (b *Bundle) processAs(caster *Battler, text string, aggregate bool) (int, error) {
	entries, err := b.parse(caster, b.Postprocess(text, aggregate))
	if err != nil {
		return 0, err
	}
	b.enqueue(entries)
	return len(entries), nil
}

// FlushExpiredEffects applies every effect due by the current turn, then
// removes fallen enemies.
func (b *Bundle) FlushExpiredEffects() ResolvedEffects {
	var applied []Applied
	for {
		entry, ok := b.effects.PopDue(b.TurnCounter)
		if !ok {
			break
		}
		sch := entry.Item
		if sch.target != nil && sch.target.IsDead() {
			continue
		}
		follow, cancelled := b.intercept(sch)
		if cancelled {
			continue
		}
		applied = append(applied, b.ApplyEffect(sch.caster, sch.target, sch.effect))
		b.enqueue(follow)
	}
	b.sweepDead()
	return ResolvedEffects{Entries: applied, Outcome: b.Outcome()}
}

func (b *Bundle) intercept(sch scheduled) ([]scheduled, bool) {
	var follow []scheduled
	for _, ic := range b.interceptors {
		reply := strings.TrimSpace(ic(sch.target, sch.effect))
		switch {
		case reply == "":
		case strings.EqualFold(reply, CancelEffect):
			return nil, true
		default:
			entries, err := b.parse(sch.caster, reply)
			if err != nil {
				logging.Warn("interceptor reply rejected", logging.Fields{"reply": reply, "error": err.Error()})
				continue
			}
			follow = append(follow, entries...)
		}
	}
	return follow, false
}

func (b *Bundle) ProcessAndFlushEffects(text string, aggregate bool) (ResolvedEffects, error) {
	if _, err := b.ProcessEffects(text, aggregate); err != nil {
		return ResolvedEffects{}, err
	}
	return b.FlushExpiredEffects(), nil
}

// EmitBattlerEvent broadcasts "[<name>: <event>]" through the statuses in
// aggregate mode and resolves whatever they turn it into.
func (b *Bundle) EmitBattlerEvent(bt *Battler, event string) (ResolvedEffects, error) {
	return b.ProcessAndFlushEffects(fmt.Sprintf("[%s: %s]", bt.Name, event), true)
}

// EndPlayerTurn closes the round: enemy shields drop, every battler gets an
// "end of turn" event, turn-counted statuses tick and the turn advances.
func (b *Bundle) EndPlayerTurn() []ResolvedEffects {
	for _, e := range b.Enemies {
		e.OnTurnStart()
	}
	var resolved []ResolvedEffects
	for _, bt := range b.Battlers() {
		if bt.IsDead() {
			continue
		}
		r, err := b.EmitBattlerEvent(bt, "end of turn")
		if err != nil {
			logging.Warn("end of turn event failed", logging.Fields{
				constants.LogFieldBattler: bt.Name,
				"error":                   err.Error(),
			})
			continue
		}
		if len(r.Entries) > 0 {
			b.RecordToBattleLogs(r)
			resolved = append(resolved, r)
		}
	}
	for _, bt := range b.Battlers() {
		bt.OnTurnEnd()
	}
	b.sweepDead()
	b.TurnCounter++
	return resolved
}

// StartNewTurn clears the played cards, redraws, updates enemy intents and
// drops the player's shields.
func (b *Bundle) StartNewTurn() {
	b.Cards.FlushHandResolvingToGraveyard()
	b.Cards.DrawToHand(-1)
	for _, e := range b.Enemies {
		e.updateIntent(b.TurnCounter)
	}
	b.Player.OnTurnStart()
}

func (b *Bundle) judgeRequest(cards []*card.Card, playerActions bool) judge.Request {
	req := judge.Request{
		Cards:                cards,
		Player:               b.Player.View(),
		BattleContext:        b.Prelude,
		Hand:                 handWithout(b.Cards.Hand, cards),
		ResolvePlayerActions: playerActions,
		Rules:                b.FormattedRules(),
	}
	for _, e := range b.Enemies {
		req.Enemies = append(req.Enemies, e.View())
	}
	return req
}

// handWithout lists the hand minus the cards being played.
func handWithout(hand, played []*card.Card) []*card.Card {
	out := make([]*card.Card, 0, len(hand))
	for _, c := range hand {
		if !slices.Contains(played, c) {
			out = append(out, c)
		}
	}
	return out
}

// consult asks the judge and queues its effects. commit, when set, runs once
// the judge answered and before its text is parsed; the rollback it returns
// runs if parsing fails.
func (b *Bundle) consult(ctx context.Context, caster *Battler, req judge.Request, commit func() (rollback func())) (ResolvedEffects, error) {
	if b.Judge == nil {
		return ResolvedEffects{}, ErrNoJudge
	}
	verdict, err := b.Judge.Judge(ctx, req)
	if err != nil {
		return ResolvedEffects{}, fmt.Errorf("judge: %w", err)
	}
	rollback := func() {}
	if commit != nil {
		rollback = commit()
	}
	if _, err := b.processAs(caster, verdict.Results, false); err != nil {
		rollback()
		return ResolvedEffects{}, err
	}
	r := b.FlushExpiredEffects()
	r.Reason = verdict.Reason
	r.Narrative = verdict.Results
	if req.ResolvePlayerActions {
		r.Rarity = verdict.Significance
	}
	return r, nil
}

// ResolvePlayerCards resolves cards through the judge, committing them from
// the hand to resolving once it answered. On error the hand is left as it
// was. The player is the caster of the resulting effects.
func (b *Bundle) ResolvePlayerCards(ctx context.Context, cards []*card.Card) (ResolvedEffects, error) {
	return b.consult(ctx, &b.Player.Battler, b.judgeRequest(cards, true), func() func() {
		hand := slices.Clone(b.Cards.Hand)
		b.Cards.HandToResolving(cards)
		return func() {
			b.Cards.Hand = hand
			b.Cards.Resolving = slices.DeleteFunc(b.Cards.Resolving, func(c *card.Card) bool {
				return slices.Contains(cards, c)
			})
		}
	})
}

// ResolveEnemyActions asks the judge to play out the enemies' intents.
func (b *Bundle) ResolveEnemyActions(ctx context.Context) (ResolvedEffects, error) {
	return b.consult(ctx, nil, b.judgeRequest(nil, false), nil)
}
