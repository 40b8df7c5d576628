package game

import (
	"sync"
	"time"
)

// store keeps games in memory for as long as they are played. Games are session-only.
type store struct {
	mu    sync.RWMutex
	games map[string]*Game
}

func newStore() *store {
	return &store{games: make(map[string]*Game)}
}

func (s *store) add(g *Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[g.ID] = g
}

func (s *store) get(id string) (*Game, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[id]
	return g, ok
}

func (s *store) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}

// prune drops games untouched since `before` and returns how many were dropped.
func (s *store) prune(before time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	for id, g := range s.games {
		g.mu.Lock()
		stale := g.UpdatedAt.Before(before)
		g.mu.Unlock()
		if stale {
			delete(s.games, id)
			n++
		}
	}
	return n
}
