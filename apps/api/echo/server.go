package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/trezcool/stemquest/core"
	"github.com/trezcool/stemquest/core/game"
)

type ServerDeps struct {
	Conf       *core.Config
	Logger     core.Logger
	GameSvc    game.ServiceInterface
	Validate   *validator.Validate
	Translator ut.Translator
}

type Server struct {
	app      *echo.Echo
	http     *http.Server
	live     *liveHub
	errors   chan error
	shutdown chan os.Signal
}

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		app:      echo.New(),
		live:     newLiveHub(deps.Logger),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	deps.GameSvc.AddObserver(s.live)

	s.setup(deps)

	// echo's own server would drop the otel handler, so run a plain one around it
	s.http = &http.Server{
		Addr:         deps.Conf.Server.Address,
		Handler:      otelhttp.NewHandler(s.app, deps.Conf.AppName),
		ReadTimeout:  deps.Conf.Server.ReadTimeout,
		WriteTimeout: deps.Conf.Server.WriteTimeout,
	}
	return s
}

func (s *Server) setup(deps ServerDeps) {
	conf := deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: conf.Server.AllowOrigins}))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(deps.Logger, deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(newJWTConfig(conf))
	limiter := newRateLimiter(conf.Server.RateLimit, conf.Server.RateBurst)

	registerLevelAPI(v1, deps.GameSvc)
	registerCircuitAPI(v1, jwt, limiter, deps.GameSvc, deps.Validate, deps.Translator)
	registerGameAPI(v1, jwt, limiter, deps.GameSvc, deps.Validate, deps.Translator)
	registerLiveAPI(v1, conf, deps.GameSvc, s.live)
	registerProgressAPI(v1, jwt, deps.GameSvc)
}

// Start blocks until the server stops. Failures are sent on Errors().
func (s *Server) Start() {
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.live.closeAll()
	return s.http.Shutdown(ctx)
}

func (s *Server) Close() error {
	s.live.closeAll()
	return s.http.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.http.Handler.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to STEM Quest: Circuit Connect!")
}
