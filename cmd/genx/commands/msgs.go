package commands

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	MsgRootShort       = "Bootstrap applications from configuration"
	MsgRunShort        = "Start the application and run until stopped"
	MsgCheckShort      = "Start and stop the application, reporting what loaded"
	MsgFeaturesShort   = "List the features known to genx"
	MsgConfigShort     = "Print the merged configuration"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"
	MsgManShort        = "Generate man page"

	MsgFlagVerbose     = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagName        = "Application name"
	MsgFlagEnv         = "Environment name (default $GENX_ENV or development)"
	MsgFlagWorkingPath = "Working directory (default current directory)"
	MsgFlagConfigPath  = "Configuration directory, relative to the working directory"
	MsgFlagConfigName  = "Base name of configuration files"
	MsgFlagFeatures    = "Only load these configuration keys as features"
	MsgFlagNoColor     = "Disable colored output"
	MsgFlagFormat      = "Output format: yaml or toml"
	MsgFlagFor         = "Stop after this duration (0 runs until signalled)"

	MsgStarted   = "Application %s started (%s)"
	MsgStopped   = "Application %s stopped"
	MsgCheckOK   = "Bootstrap OK"
	MsgCheckFail = "Bootstrap failed"

	MsgErrNoCommand = "no command specified"
	MsgErrCheck     = "bootstrap check failed: %w"
)

var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/run-long.txt
	msgRunLongRaw string
	MsgRunLong    = strings.TrimSpace(msgRunLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)
)
