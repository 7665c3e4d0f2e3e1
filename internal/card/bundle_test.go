package card

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericogr/chimera-battle/internal/eventbus"
)

func cards(names ...string) []*Card {
	out := make([]*Card, len(names))
	for i, n := range names {
		out[i] = New(n, "")
	}
	return out
}

func newTestBundle(deck []*Card) *Bundle {
	return NewBundle(deck, rand.New(rand.NewSource(7)))
}

func totalCards(b *Bundle) int {
	return len(b.AllCards())
}

func TestDraw_ReshufflesGraveyardMidDraw(t *testing.T) {
	b := newTestBundle(cards("a", "b", "c"))
	b.Graveyard = cards("d", "e", "f", "g")

	drawn := b.Draw(6)

	require.Len(t, drawn, 6)
	assert.Empty(t, b.Graveyard)
	assert.Len(t, b.Deck, 1)
	seen := map[string]bool{}
	for _, c := range drawn {
		assert.False(t, seen[c.ID], "card drawn twice")
		seen[c.ID] = true
	}
}

func TestDraw_ExhaustedReturnsWhatItCan(t *testing.T) {
	b := newTestBundle(cards("a", "b"))
	drawn := b.Draw(5)
	assert.Len(t, drawn, 2)

	var topics []string
	require.NoError(t, b.Events.Register(func(ev eventbus.Event) { topics = append(topics, ev.Topic) }))
	assert.Contains(t, topics, EventDrawExhausted)
	assert.Contains(t, topics, EventDraw)
}

func TestDrawToHand_TopsUpToDefault(t *testing.T) {
	b := newTestBundle(cards("a", "b", "c", "d", "e", "f", "g", "h"))
	b.Hand = cards("x", "y")

	n := b.DrawToHand(-1)

	assert.Equal(t, 4, n)
	assert.Len(t, b.Hand, DefaultDrawCount)
}

func TestAddToHand_OverflowGoesToGraveyard(t *testing.T) {
	b := newTestBundle(nil)
	b.HandLimit = 10
	b.Hand = cards("1", "2", "3", "4", "5", "6", "7", "8", "9", "10")
	extra := New("overflow", "")

	b.AddToHand(extra)

	assert.Len(t, b.Hand, 10)
	require.Len(t, b.Graveyard, 1)
	assert.Same(t, extra, b.Graveyard[0])
}

func TestHandToGraveyard_KeepsRemainingOrder(t *testing.T) {
	b := newTestBundle(nil)
	b.Hand = cards("a", "b", "c", "d")
	played := []*Card{b.Hand[1], b.Hand[3]}

	b.HandToGraveyard(played)

	require.Len(t, b.Hand, 2)
	assert.Equal(t, "a", b.Hand[0].Name)
	assert.Equal(t, "c", b.Hand[1].Name)
	assert.Equal(t, played, b.Graveyard)
}

func TestHandToResolvingAndFlush(t *testing.T) {
	b := newTestBundle(cards("d1", "d2"))
	b.Hand = cards("a", "b", "c")
	before := totalCards(b)

	b.HandToResolving([]*Card{b.Hand[0]})
	assert.Len(t, b.Resolving, 1)
	assert.Len(t, b.Hand, 2)

	b.FlushHandResolvingToGraveyard()
	assert.Empty(t, b.Hand)
	assert.Empty(t, b.Resolving)
	assert.Len(t, b.Graveyard, 3)
	assert.Equal(t, before, totalCards(b))
}

func TestShuffleIntoDeckAndDeckTop(t *testing.T) {
	b := newTestBundle(cards("a", "b", "c"))
	fresh := New("fresh", "")
	top := New("top", "")

	b.ShuffleIntoDeck(fresh)
	b.AddIntoDeckTop(top)

	assert.Len(t, b.Deck, 5)
	assert.Contains(t, b.Deck, fresh)
	assert.Same(t, top, b.Draw(1)[0])
}

func TestTransformCard_KeepsIdentity(t *testing.T) {
	b := newTestBundle(nil)
	from := New("Strike", "Deal 3 damage.")
	b.Hand = []*Card{from}
	id := from.ID

	b.TransformCard(from, New("Lash", "Deal 2 damage twice."))

	assert.Equal(t, id, from.ID)
	assert.Equal(t, "Lash", from.Name)
	assert.Equal(t, "Deal 2 damage twice.", from.Description)
	assert.Same(t, from, b.Hand[0])
}

func TestSeekCard(t *testing.T) {
	b := newTestBundle(cards("Strike", "Defend"))
	b.Hand = cards("Fireball")

	c, err := b.SeekCard("fireball")
	require.NoError(t, err)
	assert.Equal(t, "Fireball", c.Name)

	byShort, err := b.SeekCard(c.ShortID())
	require.NoError(t, err)
	assert.Same(t, c, byShort)

	byIndex, err := b.SeekCard("#0")
	require.NoError(t, err)
	assert.Same(t, b.Deck[0], byIndex)

	byLiteral, err := b.SeekCard("<Fireball: whatever>")
	require.NoError(t, err)
	assert.Same(t, c, byLiteral)

	_, err = b.SeekCard("Nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = b.SeekCard("#9")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDestroyCards(t *testing.T) {
	b := newTestBundle(cards("a", "b"))
	b.Hand = cards("c")
	victim := b.Deck[0]

	b.DestroyCards([]*Card{victim, b.Hand[0]})

	assert.Len(t, b.Deck, 1)
	assert.Empty(t, b.Hand)
	assert.NotContains(t, b.AllCards(), victim)
}

func TestHasAndCountCards(t *testing.T) {
	b := newTestBundle(cards("Strike", "Strike"))
	b.Hand = cards("Strike", "Defend")

	assert.Equal(t, ZoneDeck, b.HasCard("strike"))
	assert.Equal(t, ZoneHand, b.HasCard("Defend"))
	assert.Equal(t, ZoneNone, b.HasCard("Bash"))
	assert.Equal(t, 3, b.CountCards("STRIKE"))
}

func TestAddTo_UnknownZone(t *testing.T) {
	b := newTestBundle(nil)
	assert.Error(t, b.AddTo(Zone("void"), New("x", "")))
	require.NoError(t, b.AddTo(ZoneGraveyard, New("x", "")))
	assert.Len(t, b.Graveyard, 1)
}
