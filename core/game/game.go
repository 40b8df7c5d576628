package game

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/stemquest/core/circuit"
	"github.com/trezcool/stemquest/core/player"
)

type State string

const (
	StatePlaying       State = "playing"
	StateLevelComplete State = "level_complete"
	StateGameOver      State = "game_over"
	StateFinished      State = "finished" // every level cleared
)

// Verdict messages
const (
	MsgLevelComplete     = "Level Complete!"
	MsgCircuitIncomplete = "Circuit Incomplete"
	MsgGameOver          = "Game Over"
)

var (
	ErrNotFound         = errors.New("game not found")
	ErrNotPlaying       = errors.New("game is not in play")
	ErrLevelNotComplete = errors.New("level is not complete")
)

// Rules are the scoring knobs shared by every game.
type Rules struct {
	Lives       int
	LevelPoints int
	LifeBonus   int
}

// LevelScore is what clearing a level is worth with `lives` left.
func (r Rules) LevelScore(lives int) int {
	return r.LevelPoints + r.LifeBonus*lives
}

// Game is one run through the level catalog: lives, score and the current board.
type Game struct {
	ID         string
	Player     player.Player
	LevelIndex int
	Lives      int
	Score      int
	State      State
	LastResult *circuit.Result
	StartedAt  time.Time
	UpdatedAt  time.Time

	session *circuit.Session
	mu      sync.Mutex
}

func newGame(id string, p player.Player, first circuit.LevelSpec, rules Rules, now time.Time) *Game {
	return &Game{
		ID:        id,
		Player:    p,
		Lives:     rules.Lives,
		State:     StatePlaying,
		StartedAt: now,
		UpdatedAt: now,
		session:   circuit.NewSession(first),
	}
}

func (g *Game) Level() circuit.LevelSpec {
	return g.session.Level()
}

func (g *Game) Session() *circuit.Session {
	return g.session
}

func (g *Game) mustBePlaying() error {
	if g.State != StatePlaying {
		return ErrNotPlaying
	}
	return nil
}

// outcome is the result of testing a circuit, before anything is persisted.
type outcome struct {
	result     circuit.Result
	scoreDelta int
	message    string
}

// test evaluates the board. A pass completes the level and scores it, a failure costs a life.
func (g *Game) test(rules Rules) (outcome, error) {
	if err := g.mustBePlaying(); err != nil {
		return outcome{}, err
	}

	res := g.session.EvaluateCircuit()
	g.LastResult = &res
	out := outcome{result: res}

	switch {
	case res.OK:
		out.scoreDelta = rules.LevelScore(g.Lives)
		out.message = MsgLevelComplete
		g.Score += out.scoreDelta
		g.State = StateLevelComplete
	case g.Lives <= 1:
		g.Lives = 0
		out.message = MsgGameOver
		g.State = StateGameOver
	default:
		g.Lives--
		out.message = MsgCircuitIncomplete
	}
	return out, nil
}

// next moves on to the following level with a fresh board. It reports false when no level is left.
func (g *Game) next(levels *circuit.Catalog) (bool, error) {
	if g.State != StateLevelComplete {
		return false, ErrLevelNotComplete
	}
	g.LastResult = nil
	lvl, ok := levels.At(g.LevelIndex + 1)
	if !ok {
		g.State = StateFinished
		g.session.Reset()
		return false, nil
	}
	g.LevelIndex++
	g.session = circuit.NewSession(lvl)
	g.State = StatePlaying
	return true, nil
}

func (g *Game) resetLevel() error {
	if err := g.mustBePlaying(); err != nil {
		return err
	}
	g.LastResult = nil
	g.session.Reset()
	return nil
}

// restart starts over from the first level, with full lives and no score.
func (g *Game) restart(levels *circuit.Catalog, rules Rules) {
	first, _ := levels.At(0)
	g.LevelIndex = 0
	g.Lives = rules.Lives
	g.Score = 0
	g.State = StatePlaying
	g.LastResult = nil
	g.session = circuit.NewSession(first)
}

// View is the JSON face of a game.
type View struct {
	ID         string            `json:"id"`
	PlayerID   string            `json:"player_id"`
	Level      circuit.LevelSpec `json:"level"`
	LevelIndex int               `json:"level_index"`
	LevelCount int               `json:"level_count"`
	Lives      int               `json:"lives"`
	Score      int               `json:"score"`
	State      State             `json:"state"`
	LastResult *circuit.Result   `json:"last_result,omitempty"`
	Board      circuit.Snapshot  `json:"board"`
	StartedAt  time.Time         `json:"started_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

func (g *Game) view(levelCount int) View {
	return View{
		ID:         g.ID,
		PlayerID:   g.Player.ID,
		Level:      g.session.Level(),
		LevelIndex: g.LevelIndex,
		LevelCount: levelCount,
		Lives:      g.Lives,
		Score:      g.Score,
		State:      g.State,
		LastResult: g.LastResult,
		Board:      g.session.Snapshot(),
		StartedAt:  g.StartedAt,
		UpdatedAt:  g.UpdatedAt,
	}
}

// Verdict is the answer to "Test Circuit".
type Verdict struct {
	circuit.Result
	Message    string `json:"message"`
	ScoreDelta int    `json:"score_delta"`
	Game       View   `json:"game"`
}
