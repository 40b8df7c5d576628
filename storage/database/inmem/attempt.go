package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/stemquest/core"
	"github.com/trezcool/stemquest/core/game"
)

type attemptRepository struct {
	db *attemptTable
}

var _ game.Repository = (*attemptRepository)(nil)

func NewAttemptRepository(db *DB) game.Repository {
	return &attemptRepository{db: db.attempt}
}

func (repo *attemptRepository) CreateAttempt(_ context.Context, attempt game.Attempt) (game.Attempt, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.rows = append(repo.db.rows, attempt)
	return attempt, nil
}

func matches(a game.Attempt, filter game.AttemptFilter) bool {
	if filter.PlayerID != "" && a.PlayerID != filter.PlayerID {
		return false
	}
	if filter.LevelID != "" && a.LevelID != filter.LevelID {
		return false
	}
	if filter.Passed != nil && a.Passed != *filter.Passed {
		return false
	}
	return true
}

// compare returns -1, 0 or 1 comparing a and b on column.
func compare(a, b game.Attempt, column string) int {
	cmpInt := func(x, y int) int {
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
	switch column {
	case "created_at":
		switch {
		case a.CreatedAt.Before(b.CreatedAt):
			return -1
		case a.CreatedAt.After(b.CreatedAt):
			return 1
		}
	case "level_index":
		return cmpInt(a.LevelIndex, b.LevelIndex)
	case "score_delta":
		return cmpInt(a.ScoreDelta, b.ScoreDelta)
	case "player_id":
		switch {
		case a.PlayerID < b.PlayerID:
			return -1
		case a.PlayerID > b.PlayerID:
			return 1
		}
	}
	return 0
}

func (repo *attemptRepository) QueryAttempts(_ context.Context, filter game.AttemptFilter, orderings ...core.DBOrdering) ([]game.Attempt, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	attempts := make([]game.Attempt, 0)
	for _, a := range repo.db.rows {
		if matches(a, filter) {
			attempts = append(attempts, a)
		}
	}

	if len(orderings) == 0 {
		orderings = []core.DBOrdering{{Field: "created_at"}}
	}
	sort.SliceStable(attempts, func(i, j int) bool {
		for _, ord := range orderings {
			c := compare(attempts[i], attempts[j], ord.Field)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})

	if filter.Limit > 0 && len(attempts) > filter.Limit {
		attempts = attempts[:filter.Limit]
	}
	return attempts, nil
}

func (repo *attemptRepository) LevelStats(_ context.Context, playerID string) ([]game.LevelStats, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	byLevel := make(map[string]*game.LevelStats)
	order := make([]string, 0)
	for _, a := range repo.db.rows {
		if a.PlayerID != playerID {
			continue
		}
		st, ok := byLevel[a.LevelID]
		if !ok {
			st = &game.LevelStats{LevelID: a.LevelID}
			byLevel[a.LevelID] = st
			order = append(order, a.LevelID)
		}
		st.Attempts++
		if a.Passed {
			st.Passes++
			if a.ScoreDelta > st.BestScore {
				st.BestScore = a.ScoreDelta
			}
		}
	}

	stats := make([]game.LevelStats, 0, len(order))
	for _, id := range order {
		stats = append(stats, *byLevel[id])
	}
	return stats, nil
}

func (repo *attemptRepository) Leaderboard(_ context.Context, limit int) ([]game.LeaderboardEntry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	type key struct{ player, level string }
	best := make(map[key]int)
	entries := make(map[string]*game.LeaderboardEntry)
	for _, a := range repo.db.rows {
		if !a.Passed {
			continue
		}
		e, ok := entries[a.PlayerID]
		if !ok {
			e = &game.LeaderboardEntry{PlayerID: a.PlayerID}
			entries[a.PlayerID] = e
		}
		if a.Username > e.Username {
			e.Username = a.Username
		}
		k := key{a.PlayerID, a.LevelID}
		prev, seen := best[k]
		if !seen {
			e.LevelsCompleted++
		}
		if !seen || a.ScoreDelta > prev {
			e.Score += a.ScoreDelta - prev
			best[k] = a.ScoreDelta
		}
	}

	board := make([]game.LeaderboardEntry, 0, len(entries))
	for _, e := range entries {
		board = append(board, *e)
	}
	sort.Slice(board, func(i, j int) bool {
		if board[i].Score != board[j].Score {
			return board[i].Score > board[j].Score
		}
		return board[i].PlayerID < board[j].PlayerID
	})
	if limit > 0 && len(board) > limit {
		board = board[:limit]
	}
	return board, nil
}
