package types

import (
	"strings"

	"github.com/arthur-debert/genx/pkg/errors"
)

// Stage controls when a feature loads relative to other features
type Stage string

const (
	// StageConf features may replace the whole configuration; they run before everything else
	StageConf Stage = "Configure"

	// StageInit features prepare basic settings, e.g. settings, version, timezone
	StageInit Stage = "Initial"

	// StageService features register services, e.g. caches, clients, loggers
	StageService Stage = "Services"

	// StagePlugin features extend registered services, e.g. middlewares
	StagePlugin Stage = "Plugins"

	// StageReady features run final preparation before the container gets to work
	StageReady Stage = "Ready"
)

// MainStages lists the stages run by the scheduler after the configuration settles, in order
var MainStages = []Stage{StageInit, StageService, StagePlugin, StageReady}

// AllStages lists every recognised stage in execution order
var AllStages = append([]Stage{StageConf}, MainStages...)

// String implements fmt.Stringer
func (s Stage) String() string {
	return string(s)
}

// Valid reports whether s is one of the recognised stages
func (s Stage) Valid() bool {
	for _, known := range AllStages {
		if s == known {
			return true
		}
	}
	return false
}

// stageAliases maps short names used in configuration and CLI flags
var stageAliases = map[string]Stage{
	"conf":     StageConf,
	"config":   StageConf,
	"init":     StageInit,
	"service":  StageService,
	"services": StageService,
	"plugin":   StagePlugin,
	"plugins":  StagePlugin,
	"ready":    StageReady,
}

// ParseStage accepts either a stage value ("Initial") or a short alias ("INIT")
func ParseStage(s string) (Stage, error) {
	if st := Stage(s); st.Valid() {
		return st, nil
	}
	lowered := strings.ToLower(strings.TrimSpace(s))
	if st, ok := stageAliases[lowered]; ok {
		return st, nil
	}
	for _, known := range AllStages {
		if strings.ToLower(string(known)) == lowered {
			return known, nil
		}
	}
	return "", errors.Newf(errors.ErrUnknownStage, "unknown feature stage %q", s).
		WithDetail("stage", s)
}
