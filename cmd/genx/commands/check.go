package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/genx/pkg/container"
	"github.com/arthur-debert/genx/pkg/logging"
	"github.com/arthur-debert/genx/pkg/output"
)

func newCheckCmd(flags *appFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "check",
		Short:   MsgCheckShort,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cmd.check")
			ctx := cmd.Context()

			c, err := container.New(flags.name, flags.options())
			if err != nil {
				return err
			}

			startErr := c.Start(ctx)
			report := output.NewReport(c, startErr)
			stopErr := c.Stop(ctx)

			r, err := flags.renderer(cmd)
			if err != nil {
				return err
			}
			if err := r.RenderReport(report); err != nil {
				return err
			}

			if startErr != nil {
				logger.Debug().Err(startErr).Msg("Bootstrap failed")
				_ = r.RenderMessage("error", MsgCheckFail)
				return fmt.Errorf(MsgErrCheck, startErr)
			}
			if stopErr != nil {
				_ = r.RenderError(stopErr)
				return stopErr
			}
			return r.RenderMessage("success", MsgCheckOK)
		},
	}
}
