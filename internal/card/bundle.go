package card

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/ericogr/chimera-battle/internal/eventbus"
	"github.com/ericogr/chimera-battle/internal/logging"
)

// Zone names, also used as destinations by create/duplicate effects.
type Zone string

const (
	ZoneDeckTop   Zone = "deck_top"
	ZoneDeck      Zone = "deck"
	ZoneHand      Zone = "hand"
	ZoneGraveyard Zone = "graveyard"
	ZoneResolving Zone = "resolving"
	ZoneNone      Zone = ""
)

// Event topics emitted by Bundle.
const (
	EventDraw               = "draw"
	EventDrawExhausted      = "draw_exhausted"
	EventDrawToHand         = "draw_to_hand"
	EventHandToGraveyard    = "hand_to_graveyard"
	EventHandToResolving    = "hand_to_resolving"
	EventFlushHandResolving = "flush_hand_resolving_to_graveyard"
	EventAddToHand          = "add_to_hand"
	EventAddToGraveyard     = "add_to_graveyard"
	EventShuffleIntoDeck    = "shuffle_into_deck"
	EventAddIntoDeckTop     = "add_into_deck_top"
	EventTransformCard      = "transform_card"
	EventDestroyCards       = "destroy_cards"
)

const (
	DefaultHandLimit = 10
	DefaultDrawCount = 6
)

// Bundle owns the four card zones of one encounter. Every card is in exactly
// one zone. The deck is drawn from its end.
type Bundle struct {
	Deck      []*Card
	Hand      []*Card
	Graveyard []*Card
	Resolving []*Card

	HandLimit        int
	DefaultDrawCount int

	Events *eventbus.Bus
	rng    *rand.Rand
}

// NewBundle shuffles deck with rng and returns a bundle with empty hand,
// graveyard and resolving zones. rng is shared with the orchestrator so a
// seeded battle replays identically.
func NewBundle(deck []*Card, rng *rand.Rand) *Bundle {
	b := &Bundle{
		Deck:             append([]*Card(nil), deck...),
		HandLimit:        DefaultHandLimit,
		DefaultDrawCount: DefaultDrawCount,
		Events:           eventbus.New(),
		rng:              rng,
	}
	b.shuffle(b.Deck)
	return b
}

func (b *Bundle) shuffle(cards []*Card) {
	b.rng.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
}

// Draw removes up to n cards from the deck. A dry deck is refilled from the
// shuffled graveyard. When both are empty the draw stops short and
// EventDrawExhausted is emitted; compare len(result) with n to detect it.
func (b *Bundle) Draw(n int) []*Card {
	drawn := make([]*Card, 0, max(n, 0))
	for len(drawn) < n {
		if len(b.Deck) == 0 {
			if len(b.Graveyard) == 0 {
				logging.Warn("draw exhausted", logging.Fields{"requested": n, "drawn": len(drawn)})
				b.Events.Emit(EventDrawExhausted, n-len(drawn))
				break
			}
			b.Deck = b.Graveyard
			b.Graveyard = nil
			b.shuffle(b.Deck)
		}
		last := len(b.Deck) - 1
		drawn = append(drawn, b.Deck[last])
		b.Deck = b.Deck[:last]
	}
	b.Events.Emit(EventDraw, len(drawn))
	return drawn
}

// DrawToHand draws n cards into the hand. A negative n tops the hand up to
// DefaultDrawCount. Returns how many cards were drawn.
func (b *Bundle) DrawToHand(n int) int {
	if n < 0 {
		n = b.DefaultDrawCount - len(b.Hand)
	}
	drawn := b.Draw(n)
	b.Hand = append(b.Hand, drawn...)
	b.Events.Emit(EventDrawToHand, len(drawn))
	return len(drawn)
}

func idSet(cards []*Card) map[string]struct{} {
	s := make(map[string]struct{}, len(cards))
	for _, c := range cards {
		s[c.ID] = struct{}{}
	}
	return s
}

// takeFromHand removes the given cards from the hand, keeping the order of
// what remains, and returns the removed cards in hand order.
func (b *Bundle) takeFromHand(cards []*Card) []*Card {
	ids := idSet(cards)
	kept := b.Hand[:0:0]
	var taken []*Card
	for _, c := range b.Hand {
		if _, ok := ids[c.ID]; ok {
			taken = append(taken, c)
			continue
		}
		kept = append(kept, c)
	}
	b.Hand = kept
	return taken
}

func (b *Bundle) HandToGraveyard(cards []*Card) {
	b.Graveyard = append(b.Graveyard, b.takeFromHand(cards)...)
	b.Events.Emit(EventHandToGraveyard)
}

func (b *Bundle) HandToResolving(cards []*Card) {
	b.Resolving = append(b.Resolving, b.takeFromHand(cards)...)
	b.Events.Emit(EventHandToResolving)
}

// FlushHandResolvingToGraveyard is the end-of-round cleanup.
func (b *Bundle) FlushHandResolvingToGraveyard() {
	b.Graveyard = append(b.Graveyard, b.Hand...)
	b.Graveyard = append(b.Graveyard, b.Resolving...)
	b.Hand = nil
	b.Resolving = nil
	b.Events.Emit(EventFlushHandResolving)
}

// AddToHand puts cards into the hand; cards arriving at a full hand go to
// the graveyard instead.
func (b *Bundle) AddToHand(cards ...*Card) {
	for _, c := range cards {
		if len(b.Hand) >= b.HandLimit {
			b.Graveyard = append(b.Graveyard, c)
		} else {
			b.Hand = append(b.Hand, c)
		}
		b.Events.Emit(EventAddToHand, c.ID)
	}
}

func (b *Bundle) AddToGraveyard(cards ...*Card) {
	for _, c := range cards {
		b.Graveyard = append(b.Graveyard, c)
		b.Events.Emit(EventAddToGraveyard, c.ID)
	}
}

// ShuffleIntoDeck inserts each card at a uniformly random deck position.
func (b *Bundle) ShuffleIntoDeck(cards ...*Card) {
	for _, c := range cards {
		ix := b.rng.Intn(len(b.Deck) + 1)
		b.Deck = append(b.Deck, nil)
		copy(b.Deck[ix+1:], b.Deck[ix:])
		b.Deck[ix] = c
		b.Events.Emit(EventShuffleIntoDeck, c.ID)
	}
}

// AddIntoDeckTop places cards so they are drawn next.
func (b *Bundle) AddIntoDeckTop(cards ...*Card) {
	for _, c := range cards {
		b.Deck = append(b.Deck, c)
		b.Events.Emit(EventAddIntoDeckTop, c.ID)
	}
}

// AddTo routes cards to the given destination zone.
func (b *Bundle) AddTo(where Zone, cards ...*Card) error {
	switch where {
	case ZoneDeckTop:
		b.AddIntoDeckTop(cards...)
	case ZoneDeck:
		b.ShuffleIntoDeck(cards...)
	case ZoneHand:
		b.AddToHand(cards...)
	case ZoneGraveyard:
		b.AddToGraveyard(cards...)
	default:
		return fmt.Errorf("unknown destination zone %q", where)
	}
	return nil
}

// DestroyCards removes the cards from every zone.
func (b *Bundle) DestroyCards(cards []*Card) {
	ids := idSet(cards)
	filter := func(zone []*Card) []*Card {
		out := zone[:0:0]
		for _, c := range zone {
			if _, ok := ids[c.ID]; !ok {
				out = append(out, c)
			}
		}
		return out
	}
	b.Deck = filter(b.Deck)
	b.Hand = filter(b.Hand)
	b.Graveyard = filter(b.Graveyard)
	b.Resolving = filter(b.Resolving)
	b.Events.Emit(EventDestroyCards, cards)
}

// TransformCard rewrites from's content in place; its id and zone stay.
func (b *Bundle) TransformCard(from, to *Card) {
	from.Name = to.Name
	from.Description = to.Description
	from.ArtName = to.ArtName
	b.Events.Emit(EventTransformCard, from.ID)
}

// AllCards lists every card, zone by zone: deck, hand, graveyard, resolving.
func (b *Bundle) AllCards() []*Card {
	all := make([]*Card, 0, len(b.Deck)+len(b.Hand)+len(b.Graveyard)+len(b.Resolving))
	all = append(all, b.Deck...)
	all = append(all, b.Hand...)
	all = append(all, b.Graveyard...)
	return append(all, b.Resolving...)
}

// SeekCard resolves a card reference: "#<deck index>", a "<name...>" literal,
// a name (case-insensitive) or a short id.
func (b *Bundle) SeekCard(expr string) (*Card, error) {
	expr = strings.TrimSpace(expr)
	if rest, ok := strings.CutPrefix(expr, "#"); ok {
		ix, err := strconv.Atoi(strings.TrimSpace(rest))
		if err == nil {
			if ix < 0 || ix >= len(b.Deck) {
				return nil, fmt.Errorf("%w: deck index %d out of range", ErrNotFound, ix)
			}
			return b.Deck[ix], nil
		}
	}
	if strings.HasPrefix(expr, "<") {
		if parsed, err := Parse(expr); err == nil {
			expr = parsed.Name
		}
	}
	for _, c := range b.AllCards() {
		if strings.EqualFold(c.Name, expr) || c.ShortID() == strings.ToLower(expr) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, expr)
}

// HasCard reports the first zone holding a card with that name.
func (b *Bundle) HasCard(name string) Zone {
	zones := []struct {
		z     Zone
		cards []*Card
	}{{ZoneDeck, b.Deck}, {ZoneHand, b.Hand}, {ZoneGraveyard, b.Graveyard}}
	for _, zc := range zones {
		for _, c := range zc.cards {
			if strings.EqualFold(c.Name, name) {
				return zc.z
			}
		}
	}
	return ZoneNone
}

// CountCards counts copies of a name across deck, hand and graveyard.
func (b *Bundle) CountCards(name string) int {
	n := 0
	for _, zone := range [][]*Card{b.Deck, b.Hand, b.Graveyard} {
		for _, c := range zone {
			if strings.EqualFold(c.Name, name) {
				n++
			}
		}
	}
	return n
}
