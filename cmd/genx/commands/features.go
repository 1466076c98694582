package commands

import (
	"github.com/spf13/cobra"

	"github.com/arthur-debert/genx/pkg/feature"
	"github.com/arthur-debert/genx/pkg/output"
)

func newFeaturesCmd(flags *appFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "features",
		Short:   MsgFeaturesShort,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := flags.renderer(cmd)
			if err != nil {
				return err
			}
			return r.RenderCatalog(output.NewCatalogReport(feature.DefaultCatalog()))
		},
	}
}
