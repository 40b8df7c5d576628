package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/stemquest/core/circuit"
	"github.com/trezcool/stemquest/core/game"
)

type levelApi struct {
	svc game.ServiceInterface
}

// registerLevelAPI serves the level catalog. It is public so the portal can list levels before login.
func registerLevelAPI(g *echo.Group, svc game.ServiceInterface) {
	api := levelApi{svc: svc}

	lg := g.Group("/levels")
	lg.GET("", api.query)
	lg.GET("/:id", api.retrieve)
}

func (api *levelApi) query(ctx echo.Context) error {
	levels := api.svc.Levels().All()
	if levels == nil {
		levels = []circuit.LevelSpec{}
	}
	return ctx.JSON(http.StatusOK, levels)
}

func (api *levelApi) retrieve(ctx echo.Context) error {
	lvl, err := api.svc.Levels().Get(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding level")
	}
	return ctx.JSON(http.StatusOK, lvl)
}
