package testutil

import (
	"context"
	"database/sql"
	"io"
	"log"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/stemquest/core"
	"github.com/trezcool/stemquest/core/game"
	logsvc "github.com/trezcool/stemquest/services/logger"
	"github.com/trezcool/stemquest/storage/database"
)

// NewConfig returns the app config set up for tests: sqlite in memory, fixed game rules.
func NewConfig() *core.Config {
	conf := core.NewConfig()
	conf.TestMode = true
	conf.Debug = false
	conf.Database.Engine = database.SQLite
	conf.Database.Path = "file:" + uuid.New().String() + "?mode=memory&cache=shared"
	conf.Game.Lives = 3
	conf.Game.LevelPoints = 100
	conf.Game.LifeBonus = 25
	return conf
}

// NewLogger returns a logger that reports nowhere.
func NewLogger() core.Logger {
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "TEST : ", log.LstdFlags), NewConfig())
	logger.Enable(false)
	return logger
}

// PrepareDB opens a fresh, migrated in-memory database, closed when the test ends.
func PrepareDB(t *testing.T) *sql.DB {
	t.Helper()
	conf := NewConfig()
	db, err := database.Open(conf)
	if err != nil {
		t.Fatalf("PrepareDB(): %v", err)
	}
	if err = database.Migrate(db, conf.Database.Engine); err != nil {
		t.Fatalf("PrepareDB(): %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func CreateAttempt(
	t *testing.T,
	repo game.Repository,
	playerID, levelID string,
	levelIndex int,
	passed bool,
	scoreDelta int,
	createdAt time.Time,
) game.Attempt {
	t.Helper()
	attempt := game.Attempt{
		ID:         uuid.New().String(),
		PlayerID:   playerID,
		Username:   "user-" + playerID,
		GameID:     "game-" + playerID,
		LevelID:    levelID,
		LevelIndex: levelIndex,
		Passed:     passed,
		ScoreDelta: scoreDelta,
		LivesLeft:  3,
		CreatedAt:  createdAt.UTC().Truncate(time.Second),
	}
	if passed {
		attempt.BulbsOn = 1
	}
	attempt, err := repo.CreateAttempt(context.Background(), attempt)
	if err != nil {
		t.Fatalf("CreateAttempt(): %v", err)
	}
	return attempt
}

// Seed is a small attempt history shared by repository tests:
//   p1: light-the-bulb fail then pass (175), switch-control pass (150)
//   p2: light-the-bulb pass (125) then pass again (150)
//   p3: light-the-bulb fail only
type Seed struct {
	Attempts []game.Attempt // creation order
	Base     time.Time
}

func SeedAttempts(t *testing.T, repo game.Repository) Seed {
	t.Helper()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	at := func(min int) time.Time { return base.Add(time.Duration(min) * time.Minute) }

	seed := Seed{Base: base}
	seed.Attempts = append(seed.Attempts,
		CreateAttempt(t, repo, "p1", "light-the-bulb", 0, false, 0, at(0)),
		CreateAttempt(t, repo, "p1", "light-the-bulb", 0, true, 175, at(1)),
		CreateAttempt(t, repo, "p2", "light-the-bulb", 0, true, 125, at(2)),
		CreateAttempt(t, repo, "p1", "switch-control", 1, true, 150, at(3)),
		CreateAttempt(t, repo, "p3", "light-the-bulb", 0, false, 0, at(4)),
		CreateAttempt(t, repo, "p2", "light-the-bulb", 0, true, 150, at(5)),
	)
	return seed
}
