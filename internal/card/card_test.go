package card

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	c, err := Parse("<test>")
	require.NoError(t, err)
	assert.Equal(t, "test", c.Name)
	assert.Empty(t, c.Description)

	c, err = Parse("<Lash: Deal 2 damage: twice>")
	require.NoError(t, err)
	assert.Equal(t, "Lash", c.Name)
	assert.Equal(t, "Deal 2 damage: twice", c.Description)
	assert.Equal(t, "<Lash: Deal 2 damage: twice>", c.Plaintext())

	_, err = Parse("no brackets")
	assert.ErrorIs(t, err, ErrInvalidCard)
}

func TestDuplicate_NewID(t *testing.T) {
	c := New("Strike", "Deal 3 damage.")
	d := c.Duplicate()
	assert.NotEqual(t, c.ID, d.ID)
	assert.Equal(t, c.Name, d.Name)
	assert.Equal(t, c.Description, d.Description)
}

func TestShortID(t *testing.T) {
	c := &Card{ID: "00000000-0000-0000-0000-000000000000"}
	assert.Equal(t, "aaaa", c.ShortID())
	assert.Len(t, New("x", "").ShortID(), 4)
}

func TestNewDeck(t *testing.T) {
	deck, err := NewDeck([]string{"Strike*3 # Deal 3 damage.", "Fire Bolt [fire_bolt] # Burn.", "Defend"})
	require.NoError(t, err)
	require.Len(t, deck, 5)
	assert.Equal(t, "Strike", deck[0].Name)
	assert.Equal(t, "Deal 3 damage.", deck[2].Description)
	assert.Equal(t, "Fire Bolt", deck[3].Name)
	assert.Equal(t, "fire_bolt", deck[3].ArtName)
	assert.Equal(t, "Defend", deck[4].Name)

	_, err = NewDeck([]string{"Strike*zero"})
	assert.Error(t, err)
}
