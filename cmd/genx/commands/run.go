package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/genx/pkg/logging"
	"github.com/arthur-debert/genx/pkg/runnable"
)

func newRunCmd(flags *appFlags) *cobra.Command {
	var runFor time.Duration

	cmd := &cobra.Command{
		Use:     "run",
		Short:   MsgRunShort,
		Long:    MsgRunLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cmd.run")
			logger.Info().
				Str("app", flags.name).
				Dur("for", runFor).
				Msg("Starting run")

			app, err := runnable.New(flags.name, flags.options())
			if err != nil {
				return err
			}

			return app.Run(cmd.Context(), func(ctx context.Context, app *runnable.App) error {
				fmt.Fprintf(cmd.OutOrStdout(), MsgStarted+"\n", app.Name(), app.Env())
				defer fmt.Fprintf(cmd.OutOrStdout(), MsgStopped+"\n", app.Name())

				if runFor <= 0 {
					<-ctx.Done()
					return nil
				}

				timer := time.NewTimer(runFor)
				defer timer.Stop()
				select {
				case <-ctx.Done():
				case <-timer.C:
				}
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&runFor, "for", 0, MsgFlagFor)
	return cmd
}
