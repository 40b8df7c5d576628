package dig_container

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/stemquest/apps/api/echo"
	"github.com/trezcool/stemquest/core"
	"github.com/trezcool/stemquest/core/circuit"
	"github.com/trezcool/stemquest/core/game"
	eventsvc "github.com/trezcool/stemquest/services/events"
	logsvc "github.com/trezcool/stemquest/services/logger"
	"github.com/trezcool/stemquest/storage/database"
	sqlxrepos "github.com/trezcool/stemquest/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) *sql.DB {
	setUp := func() (*sql.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(db, conf.Database.Engine); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db
}

func newAttemptRepository(conf *core.Config, db *sql.DB) game.Repository {
	return sqlxrepos.NewAttemptRepository(db, conf.Database.Engine)
}

// newEventPublisher publishes on NATS when a URL is configured, and only logs events otherwise.
func newEventPublisher(conf *core.Config, logger core.Logger) core.EventPublisher {
	if conf.NATS.URL == "" {
		return eventsvc.NewConsoleService(logger)
	}
	pub, err := eventsvc.NewNATSService(conf, logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("connecting to NATS: %v", err), err)
	}
	return pub
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// newValidator returns a validator with every app validation registered.
func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	circuit.InitValidators(validate, translator)
	return validate
}

func newCatalog(conf *core.Config, validate *validator.Validate, logger core.Logger) *circuit.Catalog {
	levels, err := circuit.LoadCatalog(conf.Game.LevelsFile, validate)
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading level catalog: %v", err), err)
	}
	return levels
}

func newServer(
	conf *core.Config,
	logger core.Logger,
	svc game.ServiceInterface,
	validate *validator.Validate,
	translator ut.Translator,
) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		GameSvc:    svc,
		Validate:   validate,
		Translator: translator,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newAttemptRepository))
	must(c.Provide(newEventPublisher))
	must(c.Provide(newTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(newCatalog))
	must(c.Provide(game.NewService, dig.As(new(game.ServiceInterface))))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
