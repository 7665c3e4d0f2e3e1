package judge

import (
	"context"
	"fmt"
	"strings"

	"github.com/ericogr/chimera-battle/internal/constants"
	"github.com/ericogr/chimera-battle/internal/dedupe"
	"github.com/ericogr/chimera-battle/internal/game"
	"github.com/ericogr/chimera-battle/internal/keys"
	"github.com/ericogr/chimera-battle/internal/logging"
)

// Interpreter explains a status rule in one sentence for display.
type Interpreter interface {
	Interpret(ctx context.Context, name, rule string) (string, error)
}

// Plain describes a rule without any model call.
type Plain struct{}

func (Plain) Interpret(_ context.Context, name, rule string) (string, error) {
	from, to, ok := strings.Cut(strings.TrimSuffix(strings.TrimSpace(rule), ";"), "->")
	if !ok {
		return "", fmt.Errorf("status %s: rule %q has no '->'", name, rule)
	}
	return fmt.Sprintf("turns %s into %s.", strings.TrimSpace(from), strings.TrimSpace(to)), nil
}

// DescriptionStore persists status descriptions.
type DescriptionStore interface {
	GetStatusDescription(key string) (*game.StatusDescription, error)
	SaveStatusDescription(d *game.StatusDescription) error
}

// Cached wraps another Interpreter with a persistent cache. Concurrent
// requests for the same status share one upstream call.
type Cached struct {
	Store DescriptionStore
	Next  Interpreter
}

func (c *Cached) lookup(key string) (string, bool) {
	if d, err := c.Store.GetStatusDescription(key); err == nil && d != nil && d.Description != "" {
		return d.Description, true
	}
	return "", false
}

func (c *Cached) Interpret(ctx context.Context, name, rule string) (string, error) {
	key := keys.StatusKey(name, rule)
	if desc, ok := c.lookup(key); ok {
		logging.Debug("status description cache hit", logging.Fields{constants.LogFieldKey: key, constants.LogFieldSource: "db"})
		return desc, nil
	}

	ch := dedupe.StatusGroup.DoChan(key, func() (interface{}, error) {
		// another caller may have stored it while we waited
		if desc, ok := c.lookup(key); ok {
			return desc, nil
		}
		desc, err := c.Next.Interpret(ctx, name, rule)
		if err != nil {
			logging.Error("status description failed", err, logging.Fields{constants.LogFieldKey: key})
			return "", err
		}
		if err := c.Store.SaveStatusDescription(&game.StatusDescription{
			StatusKey: key, Name: name, Rule: rule, Description: desc,
		}); err != nil {
			logging.Error("failed to save status description", err, logging.Fields{constants.LogFieldKey: key})
		}
		return desc, nil
	})

	select {
	case r := <-ch:
		if r.Err != nil {
			return "", r.Err
		}
		desc, ok := r.Val.(string)
		if !ok {
			return "", fmt.Errorf("unexpected result type from singleflight")
		}
		return desc, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
