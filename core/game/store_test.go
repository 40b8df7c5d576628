package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/stemquest/core/circuit"
	"github.com/trezcool/stemquest/core/player"
)

func TestStore_prune(t *testing.T) {
	now := time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC)
	rules := Rules{Lives: 3, LevelPoints: 100, LifeBonus: 25}
	lvl := circuit.LevelSpec{ID: "l1", Title: "L1"}

	s := newStore()
	s.add(newGame("old", player.Player{ID: "p1"}, lvl, rules, now.Add(-13*time.Hour)))
	s.add(newGame("fresh", player.Player{ID: "p2"}, lvl, rules, now.Add(-time.Hour)))

	assert.Equal(t, 1, s.prune(now.Add(-gameTTL)))
	assert.Equal(t, 1, s.len())
	_, ok := s.get("old")
	assert.False(t, ok)
	_, ok = s.get("fresh")
	assert.True(t, ok)
}

func TestRules_LevelScore(t *testing.T) {
	rules := Rules{Lives: 3, LevelPoints: 100, LifeBonus: 25}
	tests := []struct {
		lives int
		want  int
	}{
		{lives: 3, want: 175},
		{lives: 2, want: 150},
		{lives: 1, want: 125},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, rules.LevelScore(tt.lives))
	}
}
