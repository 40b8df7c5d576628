package game

import (
	"context"
	"expvar"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/trezcool/stemquest/core"
	"github.com/trezcool/stemquest/core/circuit"
	"github.com/trezcool/stemquest/core/player"
)

// games idle for longer are dropped when new ones start
const gameTTL = 12 * time.Hour

var (
	nowFunc = func() time.Time { return time.Now().UTC() } // mockable

	gamesStarted    = expvar.NewInt("games_started")
	circuitsTested  = expvar.NewInt("circuits_tested")
	levelsCompleted = expvar.NewInt("levels_completed")
)

// Observer is told about every change to a game, e.g. to push it to a live board.
type Observer interface {
	GameChanged(v View)
}

type ServiceInterface interface {
	Levels() *circuit.Catalog
	Start(ctx context.Context, p player.Player) (View, error)
	Get(ctx context.Context, p player.Player, id string) (View, error)
	Place(ctx context.Context, p player.Player, id string, ct circuit.ComponentType) (View, *circuit.PlacedComponent, error)
	Move(ctx context.Context, p player.Player, id, componentID string, x, y int) (View, error)
	Rotate(ctx context.Context, p player.Player, id, componentID string) (View, error)
	Toggle(ctx context.Context, p player.Player, id, componentID string) (View, error)
	Connect(ctx context.Context, p player.Player, id string, terminal circuit.TerminalID) (View, circuit.ConnectOutcome, error)
	TestCircuit(ctx context.Context, p player.Player, id string) (Verdict, error)
	NextLevel(ctx context.Context, p player.Player, id string) (View, error)
	ResetLevel(ctx context.Context, p player.Player, id string) (View, error)
	Restart(ctx context.Context, p player.Player, id string) (View, error)
	Evaluate(ctx context.Context, req EvaluateRequest) (Evaluation, error)
	Progress(ctx context.Context, playerID string) (Progress, error)
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
	Attempts(ctx context.Context, filter AttemptFilter, orderings ...core.DBOrdering) ([]Attempt, error)
	AddObserver(o Observer)
}

type Service struct {
	rules     Rules
	levels    *circuit.Catalog
	repo      Repository
	events    core.EventPublisher
	logger    core.Logger
	games     *store
	observers []Observer
	tracer    trace.Tracer
}

var _ ServiceInterface = (*Service)(nil)

func NewService(
	conf *core.Config,
	levels *circuit.Catalog,
	repo Repository,
	events core.EventPublisher,
	logger core.Logger,
) *Service {
	return &Service{
		rules: Rules{
			Lives:       conf.Game.Lives,
			LevelPoints: conf.Game.LevelPoints,
			LifeBonus:   conf.Game.LifeBonus,
		},
		levels: levels,
		repo:   repo,
		events: events,
		logger: logger,
		games:  newStore(),
		tracer: otel.Tracer("github.com/trezcool/stemquest/core/game"),
	}
}

// AddObserver registers o. It must be called before the service is used.
func (svc *Service) AddObserver(o Observer) {
	svc.observers = append(svc.observers, o)
}

func (svc *Service) Levels() *circuit.Catalog {
	return svc.levels
}

func (svc *Service) notify(v View) {
	for _, o := range svc.observers {
		o.GameChanged(v)
	}
}

func (svc *Service) publish(ctx context.Context, events ...core.Event) {
	if err := svc.events.Publish(ctx, events...); err != nil {
		svc.logger.Error("publishing game events", errors.Wrap(err, "publishing game events"))
	}
}

func (svc *Service) event(name string, g *Game) core.Event {
	return core.Event{
		Name:       name,
		PlayerID:   g.Player.ID,
		GameID:     g.ID,
		LevelID:    g.Level().ID,
		LevelIndex: g.LevelIndex,
		Score:      g.Score,
		Lives:      g.Lives,
		OccurredAt: nowFunc(),
	}
}

func (svc *Service) Start(ctx context.Context, p player.Player) (View, error) {
	if n := svc.games.prune(nowFunc().Add(-gameTTL)); n > 0 {
		svc.logger.Debug(fmt.Sprintf("dropped %d idle games", n))
	}

	first, _ := svc.levels.At(0)
	g := newGame(uuid.New().String(), p, first, svc.rules, nowFunc())
	svc.games.add(g)
	gamesStarted.Add(1)

	g.mu.Lock()
	v := g.view(svc.levels.Len())
	g.mu.Unlock()
	return v, nil
}

// lookup returns the game `id` if it belongs to p. Other players' games do not exist for p.
func (svc *Service) lookup(p player.Player, id string) (*Game, error) {
	g, ok := svc.games.get(id)
	if !ok || g.Player.ID != p.ID {
		return nil, ErrNotFound
	}
	return g, nil
}

// update runs fn on the locked game, then notifies observers with the new view.
func (svc *Service) update(p player.Player, id string, fn func(g *Game) error) (View, error) {
	g, err := svc.lookup(p, id)
	if err != nil {
		return View{}, err
	}

	g.mu.Lock()
	if err = fn(g); err != nil {
		g.mu.Unlock()
		return View{}, err
	}
	g.UpdatedAt = nowFunc()
	v := g.view(svc.levels.Len())
	g.mu.Unlock()

	svc.notify(v)
	return v, nil
}

func (svc *Service) Get(_ context.Context, p player.Player, id string) (View, error) {
	g, err := svc.lookup(p, id)
	if err != nil {
		return View{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.view(svc.levels.Len()), nil
}

// Place adds a component to the board. The component is nil when the palette cap is reached.
func (svc *Service) Place(_ context.Context, p player.Player, id string, ct circuit.ComponentType) (View, *circuit.PlacedComponent, error) {
	var placed *circuit.PlacedComponent
	v, err := svc.update(p, id, func(g *Game) error {
		if err := g.mustBePlaying(); err != nil {
			return err
		}
		if c, ok := g.session.PlaceComponent(ct); ok {
			placed = &c
		}
		return nil
	})
	return v, placed, err
}

func (svc *Service) Move(_ context.Context, p player.Player, id, componentID string, x, y int) (View, error) {
	return svc.update(p, id, func(g *Game) error {
		if err := g.mustBePlaying(); err != nil {
			return err
		}
		_, err := g.session.MoveComponent(componentID, x, y)
		return err
	})
}

func (svc *Service) Rotate(_ context.Context, p player.Player, id, componentID string) (View, error) {
	return svc.update(p, id, func(g *Game) error {
		if err := g.mustBePlaying(); err != nil {
			return err
		}
		_, err := g.session.RotateComponent(componentID)
		return err
	})
}

func (svc *Service) Toggle(_ context.Context, p player.Player, id, componentID string) (View, error) {
	return svc.update(p, id, func(g *Game) error {
		if err := g.mustBePlaying(); err != nil {
			return err
		}
		_, err := g.session.ToggleSwitch(componentID)
		return err
	})
}

func (svc *Service) Connect(_ context.Context, p player.Player, id string, terminal circuit.TerminalID) (View, circuit.ConnectOutcome, error) {
	var outcome circuit.ConnectOutcome
	v, err := svc.update(p, id, func(g *Game) error {
		if err := g.mustBePlaying(); err != nil {
			return err
		}
		outcome, _ = g.session.ConnectTerminal(terminal)
		return nil
	})
	return v, outcome, err
}

func (svc *Service) TestCircuit(ctx context.Context, p player.Player, id string) (Verdict, error) {
	ctx, span := svc.tracer.Start(ctx, "game.TestCircuit")
	defer span.End()

	var out outcome
	var attempt Attempt
	var events []core.Event
	v, err := svc.update(p, id, func(g *Game) error {
		level := g.Level()
		index := g.LevelIndex

		var err error
		if out, err = g.test(svc.rules); err != nil {
			return err
		}

		attempt = Attempt{
			ID:         uuid.New().String(),
			PlayerID:   g.Player.ID,
			Username:   g.Player.Username,
			GameID:     g.ID,
			LevelID:    level.ID,
			LevelIndex: index,
			Passed:     out.result.OK,
			BulbsOn:    out.result.Tallies.BulbsOn,
			MotorOn:    out.result.Tallies.MotorOn,
			BuzzerOn:   out.result.Tallies.BuzzerOn,
			ScoreDelta: out.scoreDelta,
			LivesLeft:  g.Lives,
			CreatedAt:  nowFunc(),
		}

		switch g.State {
		case StateLevelComplete:
			events = append(events, svc.event(core.EventLevelCompleted, g))
		case StateGameOver:
			events = append(events, svc.event(core.EventLevelFailed, g), svc.event(core.EventGameOver, g))
		default:
			events = append(events, svc.event(core.EventLevelFailed, g))
		}
		return nil
	})
	if err != nil {
		return Verdict{}, err
	}

	circuitsTested.Add(1)
	if out.result.OK {
		levelsCompleted.Add(1)
	}
	span.SetAttributes(
		attribute.String("game.id", id),
		attribute.String("level.id", attempt.LevelID),
		attribute.Bool("circuit.ok", out.result.OK),
		attribute.Int("circuit.bulbs_on", out.result.Tallies.BulbsOn),
	)

	// attempts are best effort, unless the database is gone for good
	if _, err = svc.repo.CreateAttempt(ctx, attempt); err != nil {
		if core.IsShutdown(err) {
			return Verdict{}, errors.Wrap(err, "recording attempt")
		}
		svc.logger.Error("recording attempt", errors.Wrap(err, "recording attempt"), p,
			map[string]interface{}{"game_id": id, "level_id": attempt.LevelID})
	}
	svc.publish(ctx, events...)

	return Verdict{
		Result:     out.result,
		Message:    out.message,
		ScoreDelta: out.scoreDelta,
		Game:       v,
	}, nil
}

func (svc *Service) NextLevel(ctx context.Context, p player.Player, id string) (View, error) {
	var finished *core.Event
	v, err := svc.update(p, id, func(g *Game) error {
		more, err := g.next(svc.levels)
		if err != nil {
			return err
		}
		if !more {
			ev := svc.event(core.EventGameFinished, g)
			finished = &ev
		}
		return nil
	})
	if err == nil && finished != nil {
		svc.publish(ctx, *finished)
	}
	return v, err
}

func (svc *Service) ResetLevel(_ context.Context, p player.Player, id string) (View, error) {
	return svc.update(p, id, func(g *Game) error {
		return g.resetLevel()
	})
}

func (svc *Service) Restart(_ context.Context, p player.Player, id string) (View, error) {
	return svc.update(p, id, func(g *Game) error {
		g.restart(svc.levels, svc.rules)
		return nil
	})
}

// EvaluateRequest is a standalone circuit to check, against a catalog level or ad hoc targets.
type EvaluateRequest struct {
	LevelID    string                    `json:"level_id" validate:"required_without=Targets"`
	Targets    *circuit.Targets          `json:"targets"`
	Components []circuit.PlacedComponent `json:"components" validate:"max=64,unique=ID,dive"`
	Wires      []circuit.Wire            `json:"wires" validate:"max=256,unique=ID,dive"`
}

type Evaluation struct {
	circuit.Result
	Powered      map[string]bool `json:"powered"`
	WiresPowered map[string]bool `json:"wires_powered"`
}

// Evaluate checks a circuit without any game around it. Nothing is recorded.
func (svc *Service) Evaluate(ctx context.Context, req EvaluateRequest) (Evaluation, error) {
	_, span := svc.tracer.Start(ctx, "game.Evaluate")
	defer span.End()

	var targets circuit.Targets
	if req.Targets != nil {
		targets = *req.Targets
	} else {
		lvl, err := svc.levels.Get(req.LevelID)
		if err != nil {
			return Evaluation{}, core.NewValidationError(err, core.FieldError{Field: "level_id", Error: "unknown level"})
		}
		targets = lvl.Targets
	}

	res, ps := circuit.EvaluateCircuit(req.Components, req.Wires, targets)
	span.SetAttributes(
		attribute.Int("circuit.components", len(req.Components)),
		attribute.Bool("circuit.ok", res.OK),
	)
	return Evaluation{Result: res, Powered: ps.Components, WiresPowered: ps.Wires}, nil
}

// Progress lists every catalog level with the player's record on it.
func (svc *Service) Progress(ctx context.Context, playerID string) (Progress, error) {
	stats, err := svc.repo.LevelStats(ctx, playerID)
	if err != nil {
		return Progress{}, errors.Wrap(err, "getting level stats")
	}
	byLevel := make(map[string]LevelStats, len(stats))
	for _, st := range stats {
		byLevel[st.LevelID] = st
	}

	prog := Progress{PlayerID: playerID, Levels: make([]LevelProgress, 0, svc.levels.Len())}
	for _, lvl := range svc.levels.All() {
		st := byLevel[lvl.ID]
		lp := LevelProgress{
			LevelID:   lvl.ID,
			Title:     lvl.Title,
			Attempts:  st.Attempts,
			Passes:    st.Passes,
			BestScore: st.BestScore,
			Completed: st.Passes > 0,
		}
		if lp.Completed {
			prog.LevelsCompleted++
			prog.TotalScore += lp.BestScore
		}
		prog.Levels = append(prog.Levels, lp)
	}
	return prog, nil
}

func (svc *Service) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	entries, err := svc.repo.Leaderboard(ctx, limit)
	return entries, errors.Wrap(err, "getting leaderboard")
}

func (svc *Service) Attempts(ctx context.Context, filter AttemptFilter, orderings ...core.DBOrdering) ([]Attempt, error) {
	filter.Clean()
	attempts, err := svc.repo.QueryAttempts(ctx, filter, core.FilterOrderings(orderings, AttemptOrderings)...)
	return attempts, errors.Wrap(err, "querying attempts")
}
