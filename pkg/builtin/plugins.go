package builtin

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/genx/pkg/events"
	"github.com/arthur-debert/genx/pkg/types"
)

// AppLogger makes service "logger.<name>" the container logger until the
// container stops. Options: the logger name.
var AppLogger = &types.Feature{
	Stage:       types.StagePlugin,
	Description: "Use a named logger as the app logger",
	Load: func(ctx context.Context, host types.Host, options any, name string) error {
		loggerName, ok := options.(string)
		if !ok || loggerName == "" {
			return invalidOptions(name, "expected a logger name")
		}

		var logger zerolog.Logger
		switch svc := host.GetService(LoggerServicePrefix + loggerName).(type) {
		case zerolog.Logger:
			logger = svc
		case *zerolog.Logger:
			logger = *svc
		default:
			return invalidOptions(name, "logger %q not found", loggerName)
		}

		previous := host.Logger()
		host.SetLogger(logger)
		logger.Debug().Msg("A new app logger attached")

		host.Events().On(events.Stopping, func(ctx context.Context, ev *events.Event) {
			host.SetLogger(previous)
		})
		return nil
	},
}
