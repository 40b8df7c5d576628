package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/stemquest/core/game"
)

type progressApi struct {
	svc game.ServiceInterface
}

func registerProgressAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc game.ServiceInterface) {
	api := progressApi{svc: svc}

	ag := g.Group("", jwt)
	ag.GET("/progress", api.progress)
	ag.GET("/leaderboard", api.leaderboard)
	ag.GET("/attempts", api.attempts, reviewerMiddleware)
}

func (api *progressApi) progress(ctx echo.Context) error {
	p, err := getContextPlayer(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context player")
	}
	prog, err := api.svc.Progress(ctx.Request().Context(), p.ID)
	if err != nil {
		return errors.Wrap(err, "getting progress")
	}
	return ctx.JSON(http.StatusOK, prog)
}

func (api *progressApi) leaderboard(ctx echo.Context) error {
	board, err := api.svc.Leaderboard(ctx.Request().Context(), queryLimit(ctx))
	if err != nil {
		return errors.Wrap(err, "getting leaderboard")
	}
	if board == nil {
		board = []game.LeaderboardEntry{}
	}
	return ctx.JSON(http.StatusOK, board)
}

func (api *progressApi) attempts(ctx echo.Context) error {
	filter, err := bindAttemptFilter(ctx)
	if err != nil {
		return err
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	attempts, err := api.svc.Attempts(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying attempts")
	}
	if attempts == nil {
		attempts = []game.Attempt{}
	}
	return ctx.JSON(http.StatusOK, attempts)
}
