package game_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/stemquest/core"
	"github.com/trezcool/stemquest/core/circuit"
	"github.com/trezcool/stemquest/core/game"
	"github.com/trezcool/stemquest/storage/database/inmem"
)

// failingRepo fails every insert with err.
type failingRepo struct {
	game.Repository
	err error
}

func (r failingRepo) CreateAttempt(context.Context, game.Attempt) (game.Attempt, error) {
	return game.Attempt{}, r.err
}

func TestService_TestCircuit_recordingFailures(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantShutdown bool
	}{
		{name: "transient failure is logged", err: errors.New("deadlock detected")},
		{name: "lost database", err: errors.Wrap(core.NewShutdownError("database unreachable"), "inserting attempt"), wantShutdown: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupWithRepo(t, failingRepo{Repository: inmemdb.NewAttemptRepository(inmemdb.Open()), err: tt.err})
			v, err := f.svc.Start(ctx, student)
			require.NoError(t, err)
			wireLoop(t, f.svc, v.ID, circuit.Bulb)

			verdict, err := f.svc.TestCircuit(ctx, student, v.ID)
			if tt.wantShutdown {
				require.Error(t, err)
				assert.True(t, core.IsShutdown(err))
				assert.Empty(t, f.events.Sent())
				return
			}
			require.NoError(t, err)
			assert.True(t, verdict.OK)
			assert.Len(t, f.events.Sent(), 1)
		})
	}
}
