package card

import (
	"encoding/base32"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotFound    = errors.New("card not found")
	ErrInvalidCard = errors.New("invalid card format")
)

// Card is a single playable card. Cards move between zones by pointer; the
// only way to obtain a second card with the same content is Duplicate.
type Card struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// ArtName overrides the artwork lookup key when the display name differs.
	ArtName string `json:"art_name,omitempty"`
}

func New(name, description string) *Card {
	return &Card{ID: uuid.NewString(), Name: name, Description: description}
}

// Duplicate copies the card content under a fresh id.
func (c *Card) Duplicate() *Card {
	d := New(c.Name, c.Description)
	d.ArtName = c.ArtName
	return d
}

// ShortID is a four character handle derived from the id, short enough for
// narrative text to reference a specific copy ("transform 5yij to ...").
func (c *Card) ShortID() string {
	raw := strings.ReplaceAll(c.ID, "-", "")
	if len(raw) < 8 {
		return strings.ToLower(raw)
	}
	b, err := hex.DecodeString(raw[:8])
	if err != nil {
		return strings.ToLower(raw[:4])
	}
	return strings.ToLower(base32.StdEncoding.EncodeToString(b))[:4]
}

// Plaintext renders the card the way effect text refers to it.
func (c *Card) Plaintext() string {
	if c.Description != "" {
		return fmt.Sprintf("<%s: %s>", c.Name, c.Description)
	}
	return fmt.Sprintf("<%s>", c.Name)
}

func (c *Card) String() string { return c.Plaintext() }

// Parse reads "<name: description>" or "<name>" into a new card.
func Parse(s string) (*Card, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "<") || !strings.HasSuffix(s, ">") || len(s) < 3 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}
	body := s[1 : len(s)-1]
	name, desc, found := strings.Cut(body, ":")
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}
	if !found {
		return New(name, ""), nil
	}
	return New(name, strings.TrimSpace(desc)), nil
}
