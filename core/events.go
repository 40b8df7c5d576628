package core

import (
	"context"
	"time"
)

// Event names
const (
	EventLevelCompleted = "level.completed"
	EventLevelFailed    = "level.failed"
	EventGameOver       = "game.over"
	EventGameFinished   = "game.finished"
)

// Event is a notable game outcome, shared with the rest of the portal (XP, badges, teacher dashboards).
type Event struct {
	Name       string    `json:"name"`
	PlayerID   string    `json:"player_id"`
	GameID     string    `json:"game_id"`
	LevelID    string    `json:"level_id,omitempty"`
	LevelIndex int       `json:"level_index"`
	Score      int       `json:"score"`
	Lives      int       `json:"lives"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher is any service that can publish game events.
type EventPublisher interface {
	Publish(ctx context.Context, events ...Event) error
	Close() error
}
