package events

// Lifecycle event names emitted by the container
const (
	ConfigLoaded = "configLoaded"
	Ready        = "ready"
	Stopping     = "stopping"
	Stopped      = "stopped"
)

// Before returns the event emitted before a stage group or load starts
func Before(what string) string {
	return "before:" + what
}

// After returns the event emitted once a stage group or load has settled
func After(what string) string {
	return "after:" + what
}

// BeforeLoad returns the event emitted before the named feature loads
func BeforeLoad(feature string) string {
	return Before("load:" + feature)
}

// AfterLoad returns the event emitted after the named feature loaded
func AfterLoad(feature string) string {
	return After("load:" + feature)
}
