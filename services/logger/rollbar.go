package logsvc

import (
	"context"
	"log"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/stemquest/core"
	"github.com/trezcool/stemquest/core/player"
)

// RollbarLogger prints to std and reports to Rollbar.
type RollbarLogger struct {
	std    *log.Logger
	custom map[string]interface{} // sent with every item
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{
		std:    std,
		custom: map[string]interface{}{"app": conf.AppName},
	}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// prepare builds a Rollbar item from args: errors are kept as they are, custom data maps are merged
// and the first player.Player becomes the item's person.
func (l RollbarLogger) prepare(msg string, args []interface{}) []interface{} {
	custom := make(map[string]interface{}, len(l.custom))
	for k, v := range l.custom {
		custom[k] = v
	}
	ctx := context.Background()
	var personSet bool

	items := make([]interface{}, 0, len(args)+3)
	items = append(items, msg)
	for _, arg := range args {
		switch a := arg.(type) {
		case player.Player:
			if !personSet && a.ID != "" {
				ctx = rollbar.NewPersonContext(ctx, &rollbar.Person{Id: a.ID, Username: a.Username})
				personSet = true
			}
		case map[string]interface{}:
			for k, v := range a {
				custom[k] = v
			}
		default:
			items = append(items, arg)
		}
	}
	return append(items, custom, ctx)
}

func (l RollbarLogger) print(msg string, args []interface{}) {
	l.std.Println(msg)
	for _, arg := range args {
		if _, ok := arg.(player.Player); ok {
			continue
		}
		l.std.Printf("%+v\n", arg)
	}
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	rollbar.Debug(l.prepare(msg, args)...)
	l.print(msg, args)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rollbar.Info(l.prepare(msg, args)...)
	l.print(msg, args)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rollbar.Warning(l.prepare(msg, args)...)
	l.print(msg, args)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rollbar.Error(l.prepare(msg, args)...)
	l.print(msg, args)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rollbar.Critical(l.prepare(msg, args)...)
	l.print(msg, args)
	l.std.Fatal(msg)
}
