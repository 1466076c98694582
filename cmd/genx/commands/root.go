package commands

import (
	"errors"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/genx/internal/version"
	"github.com/arthur-debert/genx/pkg/container"
	"github.com/arthur-debert/genx/pkg/logging"
	"github.com/arthur-debert/genx/pkg/output"
)

// DefaultAppName names the application when --name is not given
const DefaultAppName = "app"

// appFlags holds the flags shared by the commands that build a container
type appFlags struct {
	name        string
	env         string
	workingPath string
	configPath  string
	configName  string
	features    []string
	noColor     bool
}

func (f *appFlags) options() container.Options {
	return container.Options{
		Env:             f.env,
		WorkingPath:     f.workingPath,
		ConfigPath:      f.configPath,
		ConfigName:      f.configName,
		AllowedFeatures: f.features,
	}
}

func (f *appFlags) renderer(cmd *cobra.Command) (*output.Renderer, error) {
	noColor := f.noColor
	if cmd.OutOrStdout() != os.Stdout || !output.ColorEnabled(os.Stdout) {
		noColor = true
	}
	return output.NewRenderer(cmd.OutOrStdout(), noColor)
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var verbosity int
	flags := &appFlags{}

	rootCmd := &cobra.Command{
		Use:     "genx",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New(MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.CountVarP(&verbosity, "verbose", "v", MsgFlagVerbose)
	pf.StringVarP(&flags.name, "name", "n", DefaultAppName, MsgFlagName)
	pf.StringVarP(&flags.env, "env", "e", "", MsgFlagEnv)
	pf.StringVarP(&flags.workingPath, "working-path", "w", "", MsgFlagWorkingPath)
	pf.StringVar(&flags.configPath, "config-path", container.DefaultConfigPath, MsgFlagConfigPath)
	pf.StringVar(&flags.configName, "config-name", container.DefaultConfigName, MsgFlagConfigName)
	pf.StringSliceVar(&flags.features, "features", nil, MsgFlagFeatures)
	pf.BoolVar(&flags.noColor, "no-color", false, MsgFlagNoColor)

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "COMMANDS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})

	rootCmd.AddCommand(newRunCmd(flags))
	rootCmd.AddCommand(newCheckCmd(flags))
	rootCmd.AddCommand(newFeaturesCmd(flags))
	rootCmd.AddCommand(newConfigCmd(flags))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newManCmd())

	rootCmd.SetHelpCommandGroupID("misc")

	return rootCmd
}
