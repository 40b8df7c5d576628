package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/stemquest/core"
	"github.com/trezcool/stemquest/core/game"
)

const attemptColumns = `id, player_id, username, game_id, level_id, level_index, passed,
	bulbs_on, motor_on, buzzer_on, score_delta, lives_left, created_at`

type attemptRepository struct {
	db *sqlx.DB
}

var _ game.Repository = (*attemptRepository)(nil)

// NewAttemptRepository wraps db; driverName selects the placeholder style (postgres, sqlite).
func NewAttemptRepository(db *sql.DB, driverName string) game.Repository {
	return &attemptRepository{db: sqlx.NewDb(db, driverName)}
}

func (repo *attemptRepository) CreateAttempt(ctx context.Context, attempt game.Attempt) (game.Attempt, error) {
	q := `INSERT INTO level_attempts (` + attemptColumns + `) VALUES (
		:id, :player_id, :username, :game_id, :level_id, :level_index, :passed,
		:bulbs_on, :motor_on, :buzzer_on, :score_delta, :lives_left, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, attempt); err != nil {
		return game.Attempt{}, repo.checkConn(ctx, errors.Wrap(err, "inserting attempt"))
	}
	return attempt, nil
}

// checkConn turns err into a shutdown error when the database no longer answers.
func (repo *attemptRepository) checkConn(ctx context.Context, err error) error {
	if pingErr := repo.db.PingContext(ctx); pingErr != nil {
		return errors.Wrap(core.NewShutdownError("database unreachable: "+pingErr.Error()), err.Error())
	}
	return err
}

func (repo *attemptRepository) QueryAttempts(ctx context.Context, filter game.AttemptFilter, orderings ...core.DBOrdering) ([]game.Attempt, error) {
	var where []string
	var args []interface{}
	if filter.PlayerID != "" {
		where = append(where, "player_id = ?")
		args = append(args, filter.PlayerID)
	}
	if filter.LevelID != "" {
		where = append(where, "level_id = ?")
		args = append(args, filter.LevelID)
	}
	if filter.Passed != nil {
		where = append(where, "passed = ?")
		args = append(args, *filter.Passed)
	}

	var q strings.Builder
	q.WriteString("SELECT " + attemptColumns + " FROM level_attempts")
	if len(where) > 0 {
		q.WriteString(" WHERE " + strings.Join(where, " AND "))
	}

	// orderings are whitelisted by the caller
	if len(orderings) == 0 {
		orderings = []core.DBOrdering{{Field: "created_at"}}
	}
	orderBy := make([]string, 0, len(orderings)+1)
	for _, ord := range orderings {
		orderBy = append(orderBy, ord.String())
	}
	orderBy = append(orderBy, "id ASC")
	q.WriteString(" ORDER BY " + strings.Join(orderBy, ", "))

	if filter.Limit > 0 {
		q.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	}

	attempts := make([]game.Attempt, 0)
	if err := repo.db.SelectContext(ctx, &attempts, repo.db.Rebind(q.String()), args...); err != nil {
		return nil, errors.Wrap(err, "selecting attempts")
	}
	return attempts, nil
}

func (repo *attemptRepository) LevelStats(ctx context.Context, playerID string) ([]game.LevelStats, error) {
	q := repo.db.Rebind(`
		SELECT level_id,
			COUNT(*) AS attempts,
			COALESCE(SUM(CASE WHEN passed THEN 1 ELSE 0 END), 0) AS passes,
			COALESCE(MAX(CASE WHEN passed THEN score_delta ELSE 0 END), 0) AS best_score
		FROM level_attempts
		WHERE player_id = ?
		GROUP BY level_id
		ORDER BY MIN(level_index), level_id`)

	stats := make([]game.LevelStats, 0)
	if err := repo.db.SelectContext(ctx, &stats, q, playerID); err != nil {
		return nil, errors.Wrap(err, "selecting level stats")
	}
	return stats, nil
}

func (repo *attemptRepository) Leaderboard(ctx context.Context, limit int) ([]game.LeaderboardEntry, error) {
	q := repo.db.Rebind(`
		SELECT player_id, MAX(username) AS username, SUM(best) AS score, COUNT(*) AS levels_completed
		FROM (
			SELECT player_id, level_id, MAX(username) AS username, MAX(score_delta) AS best
			FROM level_attempts
			WHERE passed = ?
			GROUP BY player_id, level_id
		) AS best_per_level
		GROUP BY player_id
		ORDER BY score DESC, player_id ASC
		LIMIT ?`)

	entries := make([]game.LeaderboardEntry, 0)
	if err := repo.db.SelectContext(ctx, &entries, q, true, limit); err != nil {
		return nil, errors.Wrap(err, "selecting leaderboard")
	}
	return entries, nil
}
