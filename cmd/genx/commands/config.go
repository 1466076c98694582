package commands

import (
	"github.com/spf13/cobra"

	"github.com/arthur-debert/genx/pkg/config"
	"github.com/arthur-debert/genx/pkg/container"
)

func newConfigCmd(flags *appFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := config.ParseFormat(format)
			if err != nil {
				return err
			}

			c, err := container.New(flags.name, flags.options())
			if err != nil {
				return err
			}
			cfg, err := config.NewFileLoader(nil).Load(cmd.Context(), c.ConfigVars())
			if err != nil {
				return err
			}

			data, err := config.Encode(cfg, f)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(config.FormatYAML), MsgFlagFormat)
	return cmd
}
