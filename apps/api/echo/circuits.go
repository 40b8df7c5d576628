package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/stemquest/core"
	"github.com/trezcool/stemquest/core/game"
)

type circuitApi struct {
	svc        game.ServiceInterface
	validate   *validator.Validate
	translator ut.Translator
}

func registerCircuitAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	limiter *rateLimiter,
	svc game.ServiceInterface,
	validate *validator.Validate,
	translator ut.Translator,
) {
	api := circuitApi{
		svc:        svc,
		validate:   validate,
		translator: translator,
	}

	cg := g.Group("/circuits", jwt)
	cg.POST("/evaluate", api.evaluate, limiter.middleware)
}

func (api *circuitApi) evaluate(ctx echo.Context) error {
	var data game.EvaluateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EvaluateRequest")
	}
	data.LevelID = core.CleanString(data.LevelID, true)
	if err := api.validate.Struct(data); err != nil {
		return core.TranslateValidationErrors(err, api.translator)
	}

	ev, err := api.svc.Evaluate(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "evaluating circuit")
	}
	return ctx.JSON(http.StatusOK, ev)
}
