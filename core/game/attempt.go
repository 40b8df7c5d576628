package game

import (
	"context"
	"time"

	"github.com/trezcool/stemquest/core"
)

// Attempt is one "Test Circuit" verdict. Board layouts are never stored.
type Attempt struct {
	ID         string    `json:"id" db:"id"`
	PlayerID   string    `json:"player_id" db:"player_id"`
	Username   string    `json:"username" db:"username"`
	GameID     string    `json:"game_id" db:"game_id"`
	LevelID    string    `json:"level_id" db:"level_id"`
	LevelIndex int       `json:"level_index" db:"level_index"`
	Passed     bool      `json:"passed" db:"passed"`
	BulbsOn    int       `json:"bulbs_on" db:"bulbs_on"`
	MotorOn    bool      `json:"motor_on" db:"motor_on"`
	BuzzerOn   bool      `json:"buzzer_on" db:"buzzer_on"`
	ScoreDelta int       `json:"score_delta" db:"score_delta"`
	LivesLeft  int       `json:"lives_left" db:"lives_left"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"` // UTC
}

// AttemptFilter fields are ANDed. Zero values do not filter.
type AttemptFilter struct {
	PlayerID string
	LevelID  string
	Passed   *bool
	Limit    int
}

func (f *AttemptFilter) Clean() {
	f.PlayerID = core.CleanString(f.PlayerID)
	f.LevelID = core.CleanString(f.LevelID, true)
	if f.Limit < 0 {
		f.Limit = 0
	}
}

// AttemptOrderings maps API ordering fields to columns.
var AttemptOrderings = map[string]string{
	"created_at":  "created_at",
	"level_index": "level_index",
	"score_delta": "score_delta",
	"player_id":   "player_id",
}

// LevelStats aggregates a player's attempts on one level.
type LevelStats struct {
	LevelID   string `db:"level_id"`
	Attempts  int    `db:"attempts"`
	Passes    int    `db:"passes"`
	BestScore int    `db:"best_score"`
}

type LevelProgress struct {
	LevelID   string `json:"level_id"`
	Title     string `json:"title"`
	Attempts  int    `json:"attempts"`
	Passes    int    `json:"passes"`
	BestScore int    `json:"best_score"`
	Completed bool   `json:"completed"`
}

type Progress struct {
	PlayerID        string          `json:"player_id"`
	TotalScore      int             `json:"total_score"`
	LevelsCompleted int             `json:"levels_completed"`
	Levels          []LevelProgress `json:"levels"`
}

type LeaderboardEntry struct {
	PlayerID        string `json:"player_id" db:"player_id"`
	Username        string `json:"username" db:"username"`
	Score           int    `json:"score" db:"score"`
	LevelsCompleted int    `json:"levels_completed" db:"levels_completed"`
}

type Repository interface {
	CreateAttempt(ctx context.Context, attempt Attempt) (Attempt, error)
	QueryAttempts(ctx context.Context, filter AttemptFilter, orderings ...core.DBOrdering) ([]Attempt, error)
	// LevelStats returns one row per level the player attempted.
	LevelStats(ctx context.Context, playerID string) ([]LevelStats, error)
	// Leaderboard ranks players by the sum of their best score on each level, highest first.
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
}
