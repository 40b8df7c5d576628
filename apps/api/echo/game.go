package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/stemquest/core"
	"github.com/trezcool/stemquest/core/circuit"
	"github.com/trezcool/stemquest/core/game"
)

type gameApi struct {
	svc        game.ServiceInterface
	validate   *validator.Validate
	translator ut.Translator
}

func registerGameAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	limiter *rateLimiter,
	svc game.ServiceInterface,
	validate *validator.Validate,
	translator ut.Translator,
) {
	api := gameApi{
		svc:        svc,
		validate:   validate,
		translator: translator,
	}

	gg := g.Group("/games", jwt)
	gg.POST("", api.start)

	dg := gg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.POST("/components", api.place)
	dg.PUT("/components/:cid", api.move)
	dg.POST("/components/:cid/rotate", api.rotate)
	dg.POST("/components/:cid/toggle", api.toggle)
	dg.POST("/terminals", api.connect)
	dg.POST("/test", api.test, limiter.middleware)
	dg.POST("/next", api.next)
	dg.POST("/reset", api.reset)
	dg.POST("/restart", api.restart)
}

func (api *gameApi) validateStruct(data interface{}) error {
	if err := api.validate.Struct(data); err != nil {
		return core.TranslateValidationErrors(err, api.translator)
	}
	return nil
}

// Handlers

func (api *gameApi) start(ctx echo.Context) error {
	p, err := getContextPlayer(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context player")
	}
	v, err := api.svc.Start(ctx.Request().Context(), p)
	if err != nil {
		return errors.Wrap(err, "starting game")
	}
	return ctx.JSON(http.StatusCreated, v)
}

func (api *gameApi) retrieve(ctx echo.Context) error {
	p, err := getContextPlayer(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context player")
	}
	v, err := api.svc.Get(ctx.Request().Context(), p, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting game")
	}
	return ctx.JSON(http.StatusOK, v)
}

func (api *gameApi) place(ctx echo.Context) error {
	var data PlaceRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PlaceRequest")
	}
	if err := api.validateStruct(data); err != nil {
		return err
	}
	ct, err := circuit.ParseComponentType(core.CleanString(data.Type, true))
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "type", Error: err.Error()})
	}

	p, err := getContextPlayer(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context player")
	}
	v, c, err := api.svc.Place(ctx.Request().Context(), p, ctx.Param("id"), ct)
	if err != nil {
		return errors.Wrap(err, "placing component")
	}

	code := http.StatusCreated
	if c == nil { // palette cap reached
		code = http.StatusOK
	}
	return ctx.JSON(code, PlaceResponse{Component: c, Game: v})
}

func (api *gameApi) move(ctx echo.Context) error {
	var data MoveRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MoveRequest")
	}
	if err := api.validateStruct(data); err != nil {
		return err
	}

	p, err := getContextPlayer(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context player")
	}
	v, err := api.svc.Move(ctx.Request().Context(), p, ctx.Param("id"), ctx.Param("cid"), *data.X, *data.Y)
	if err != nil {
		return errors.Wrap(err, "moving component")
	}
	return ctx.JSON(http.StatusOK, v)
}

func (api *gameApi) rotate(ctx echo.Context) error {
	p, err := getContextPlayer(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context player")
	}
	v, err := api.svc.Rotate(ctx.Request().Context(), p, ctx.Param("id"), ctx.Param("cid"))
	if err != nil {
		return errors.Wrap(err, "rotating component")
	}
	return ctx.JSON(http.StatusOK, v)
}

func (api *gameApi) toggle(ctx echo.Context) error {
	p, err := getContextPlayer(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context player")
	}
	v, err := api.svc.Toggle(ctx.Request().Context(), p, ctx.Param("id"), ctx.Param("cid"))
	if err != nil {
		return errors.Wrap(err, "toggling switch")
	}
	return ctx.JSON(http.StatusOK, v)
}

func (api *gameApi) connect(ctx echo.Context) error {
	var data ConnectRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ConnectRequest")
	}
	data.Terminal = core.CleanString(data.Terminal)
	if err := api.validateStruct(data); err != nil {
		return err
	}
	terminal, err := circuit.ParseTerminalID(data.Terminal)
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "terminal", Error: err.Error()})
	}

	p, err := getContextPlayer(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context player")
	}
	v, outcome, err := api.svc.Connect(ctx.Request().Context(), p, ctx.Param("id"), terminal)
	if err != nil {
		return errors.Wrap(err, "connecting terminal")
	}
	return ctx.JSON(http.StatusOK, ConnectResponse{Outcome: outcome, Game: v})
}

func (api *gameApi) test(ctx echo.Context) error {
	p, err := getContextPlayer(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context player")
	}
	verdict, err := api.svc.TestCircuit(ctx.Request().Context(), p, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "testing circuit")
	}
	return ctx.JSON(http.StatusOK, verdict)
}

func (api *gameApi) next(ctx echo.Context) error {
	p, err := getContextPlayer(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context player")
	}
	v, err := api.svc.NextLevel(ctx.Request().Context(), p, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "moving to next level")
	}
	return ctx.JSON(http.StatusOK, v)
}

func (api *gameApi) reset(ctx echo.Context) error {
	p, err := getContextPlayer(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context player")
	}
	v, err := api.svc.ResetLevel(ctx.Request().Context(), p, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "resetting level")
	}
	return ctx.JSON(http.StatusOK, v)
}

func (api *gameApi) restart(ctx echo.Context) error {
	p, err := getContextPlayer(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context player")
	}
	v, err := api.svc.Restart(ctx.Request().Context(), p, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "restarting game")
	}
	return ctx.JSON(http.StatusOK, v)
}

type (
	PlaceRequest struct {
		Type string `json:"type" validate:"required"`
	}

	// PlaceResponse.Component is null when the level's palette allows no more of that type.
	PlaceResponse struct {
		Component *circuit.PlacedComponent `json:"component"`
		Game      game.View                `json:"game"`
	}

	MoveRequest struct {
		X *int `json:"x" validate:"required"`
		Y *int `json:"y" validate:"required"`
	}

	ConnectRequest struct {
		Terminal string `json:"terminal" validate:"required,terminal"`
	}

	ConnectResponse struct {
		Outcome circuit.ConnectOutcome `json:"outcome"`
		Game    game.View              `json:"game"`
	}
)
