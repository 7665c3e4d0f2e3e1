package service

import (
	"context"
	"time"

	"github.com/ericogr/chimera-battle/internal/constants"
	"github.com/ericogr/chimera-battle/internal/logging"
)

// EvictIdle drops the in-memory battle of every encounter untouched for
// longer than ttl. The stored summary and logs stay readable. Encounters busy
// with a judge call are skipped and picked up on a later pass.
func (s *EncounterService) EvictIdle(ttl time.Duration) int {
	cutoff := s.now().Add(-ttl)
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, le := range s.live {
		if !le.mu.TryLock() {
			continue
		}
		idle := le.lastUsed.Before(cutoff)
		le.mu.Unlock()
		if !idle {
			continue
		}
		delete(s.live, id)
		evicted++
		logging.Info("evicted idle encounter", logging.Fields{
			constants.LogFieldEncounterID: id,
			constants.LogFieldStatus:      string(le.record.Status),
		})
	}
	return evicted
}

// Live reports how many encounters are held in memory.
func (s *EncounterService) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// StartEvictionLoop runs EvictIdle every interval until ctx is done.
func (s *EncounterService) StartEvictionLoop(ctx context.Context, interval, ttl time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.EvictIdle(ttl); n > 0 {
					logging.Debug("eviction pass finished", logging.Fields{"evicted": n})
				}
			}
		}
	}()
}
