// Package judge is the boundary to the narrative judge: given the cards a
// player commits (or the enemies' turn) it returns narrative text carrying
// bracketed effect tokens, plus a significance score.
package judge

import (
	"context"
	"errors"
	"sync"

	"github.com/ericogr/chimera-battle/internal/card"
)

var ErrScriptExhausted = errors.New("scripted judge has no more results")

// BattlerView is the read-only picture of a combatant handed to the judge.
type BattlerView struct {
	Name        string   `json:"name"`
	HP          int      `json:"hp"`
	MaxHP       int      `json:"max_hp"`
	Shield      int      `json:"shield"`
	Statuses    []string `json:"statuses,omitempty"`
	Intent      string   `json:"intent,omitempty"`
	Description string   `json:"description,omitempty"`
}

type Request struct {
	Cards                []*card.Card  `json:"cards"`
	Player               BattlerView   `json:"player"`
	Enemies              []BattlerView `json:"enemies"`
	BattleContext        string        `json:"battle_context"`
	Hand                 []*card.Card  `json:"hand"`
	ResolvePlayerActions bool          `json:"resolve_player_actions"`
	Rules                []string      `json:"rules,omitempty"`
}

// Result is the judge's verdict. Only Results and Significance feed the
// battle; Reason is kept for display.
type Result struct {
	Reason       string `json:"reason"`
	Results      string `json:"results"`
	Significance int    `json:"significance"`
}

// Normalize clamps Significance into 1..3.
func (r Result) Normalize() Result {
	switch {
	case r.Significance < 1:
		r.Significance = 1
	case r.Significance > 3:
		r.Significance = 3
	}
	return r
}

type Judge interface {
	Judge(ctx context.Context, req Request) (Result, error)
}

// Func adapts a plain function to Judge.
type Func func(ctx context.Context, req Request) (Result, error)

func (f Func) Judge(ctx context.Context, req Request) (Result, error) { return f(ctx, req) }

// Scripted replays canned results in order. It records every request it
// receives, which makes it the judge of choice for tests and offline play.
type Scripted struct {
	mu       sync.Mutex
	results  []Result
	requests []Request
}

func NewScripted(results ...Result) *Scripted {
	return &Scripted{results: results}
}

// Push appends more canned results.
func (s *Scripted) Push(results ...Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, results...)
}

func (s *Scripted) Judge(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if len(s.results) == 0 {
		return Result{}, ErrScriptExhausted
	}
	r := s.results[0]
	s.results = s.results[1:]
	return r.Normalize(), nil
}

// Requests returns a copy of the requests seen so far.
func (s *Scripted) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Pending reports how many canned results are left.
func (s *Scripted) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}
