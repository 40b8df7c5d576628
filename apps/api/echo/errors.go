package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/stemquest/core"
	"github.com/trezcool/stemquest/core/circuit"
	"github.com/trezcool/stemquest/core/game"
	"github.com/trezcool/stemquest/core/player"
)

var (
	errUnauthorized      = echo.NewHTTPError(http.StatusUnauthorized, "player not authenticated")
	errHttpForbidden     = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errTooManyRequests   = echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
	errGameNotFound      = echo.NewHTTPError(http.StatusNotFound, game.ErrNotFound.Error())
	errComponentNotFound = echo.NewHTTPError(http.StatusNotFound, circuit.ErrUnknownComponent.Error())
	errLevelNotFound     = echo.NewHTTPError(http.StatusNotFound, circuit.ErrUnknownLevel.Error())
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		switch cause {
		case game.ErrNotFound:
			cause = errGameNotFound
		case circuit.ErrUnknownComponent:
			cause = errComponentNotFound
		case circuit.ErrUnknownLevel:
			cause = errLevelNotFound
		case game.ErrNotPlaying, game.ErrLevelNotComplete:
			cause = echo.NewHTTPError(http.StatusConflict, cause.Error())
		}

		switch origErr := cause.(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default: // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			var p player.Player
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				p = claims.Player()
			}
			logger.Error(msg, errors.Wrap(err, msg), p, map[string]interface{}{
				"method":  ctx.Request().Method,
				"route":   ctx.Path(),
				"game_id": ctx.Param("id"),
			})

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
