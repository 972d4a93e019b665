package generator

// State is a step of the invocation state machine
type State int

const (
	StateIdle State = iota
	StateConfiguring
	StateInvoking
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConfiguring:
		return "configuring"
	case StateInvoking:
		return "invoking"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s ends an invocation
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}
