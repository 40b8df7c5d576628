package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/stemquest/core"
	"github.com/trezcool/stemquest/core/game"
)

// RunRepositoryTests runs the behaviour every game.Repository must share against a fresh repo per subtest.
func RunRepositoryTests(t *testing.T, newRepo func(t *testing.T) game.Repository) {
	ctx := context.Background()
	bPtr := func(b bool) *bool { return &b }

	t.Run("QueryAttempts", func(t *testing.T) {
		repo := newRepo(t)
		seed := SeedAttempts(t, repo)
		a := seed.Attempts

		tests := []struct {
			name      string
			filter    game.AttemptFilter
			orderings []core.DBOrdering
			want      []game.Attempt
		}{
			{name: "all, newest first", want: []game.Attempt{a[5], a[4], a[3], a[2], a[1], a[0]}},
			{name: "player", filter: game.AttemptFilter{PlayerID: "p1"}, want: []game.Attempt{a[3], a[1], a[0]}},
			{name: "level", filter: game.AttemptFilter{LevelID: "switch-control"}, want: []game.Attempt{a[3]}},
			{name: "failed", filter: game.AttemptFilter{Passed: bPtr(false)}, want: []game.Attempt{a[4], a[0]}},
			{
				name:   "player & passed",
				filter: game.AttemptFilter{PlayerID: "p2", Passed: bPtr(true)},
				want:   []game.Attempt{a[5], a[2]},
			},
			{name: "limit", filter: game.AttemptFilter{Limit: 2}, want: []game.Attempt{a[5], a[4]}},
			{name: "unknown player", filter: game.AttemptFilter{PlayerID: "lol"}, want: []game.Attempt{}},
			{
				name:      "oldest first",
				orderings: []core.DBOrdering{{Field: "created_at", Ascending: true}},
				want:      []game.Attempt{a[0], a[1], a[2], a[3], a[4], a[5]},
			},
			{
				name:      "best score first",
				filter:    game.AttemptFilter{Passed: bPtr(true)},
				orderings: []core.DBOrdering{{Field: "score_delta"}, {Field: "created_at", Ascending: true}},
				want:      []game.Attempt{a[1], a[3], a[5], a[2]},
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := repo.QueryAttempts(ctx, tt.filter, tt.orderings...)
				require.NoError(t, err)
				require.Len(t, got, len(tt.want))
				for i := range tt.want {
					assert.Equal(t, tt.want[i].ID, got[i].ID, "position %d", i)
				}
			})
		}
	})

	t.Run("round trip", func(t *testing.T) {
		repo := newRepo(t)
		want := SeedAttempts(t, repo).Attempts[1]
		got, err := repo.QueryAttempts(ctx, game.AttemptFilter{PlayerID: want.PlayerID, Passed: bPtr(true)})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, want.ID, got[1].ID)
		assert.Equal(t, want.LevelID, got[1].LevelID)
		assert.Equal(t, want.ScoreDelta, got[1].ScoreDelta)
		assert.Equal(t, want.BulbsOn, got[1].BulbsOn)
		assert.True(t, want.CreatedAt.Equal(got[1].CreatedAt))
	})

	t.Run("LevelStats", func(t *testing.T) {
		repo := newRepo(t)
		SeedAttempts(t, repo)

		stats, err := repo.LevelStats(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, []game.LevelStats{
			{LevelID: "light-the-bulb", Attempts: 2, Passes: 1, BestScore: 175},
			{LevelID: "switch-control", Attempts: 1, Passes: 1, BestScore: 150},
		}, stats)

		stats, err = repo.LevelStats(ctx, "p3")
		require.NoError(t, err)
		assert.Equal(t, []game.LevelStats{{LevelID: "light-the-bulb", Attempts: 1}}, stats)

		stats, err = repo.LevelStats(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, stats)
	})

	t.Run("Leaderboard", func(t *testing.T) {
		repo := newRepo(t)
		SeedAttempts(t, repo)

		board, err := repo.Leaderboard(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, []game.LeaderboardEntry{
			{PlayerID: "p1", Username: "user-p1", Score: 325, LevelsCompleted: 2},
			{PlayerID: "p2", Username: "user-p2", Score: 150, LevelsCompleted: 1},
		}, board)

		board, err = repo.Leaderboard(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, board, 1)
	})
}
