package container

// State is a container lifecycle state
type State int

const (
	StateCreated State = iota
	StateStarting
	StateStarted
	StateFailed
	StateStopping
	StateStopped
)

var stateNames = map[State]string{
	StateCreated:  "created",
	StateStarting: "starting",
	StateStarted:  "started",
	StateFailed:   "failed",
	StateStopping: "stopping",
	StateStopped:  "stopped",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}
