package page

type State int

const (
	StateInitializing State = iota
	StateLoading
	StateError
	StateEmpty
	StateReady
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	case StateEmpty:
		return "empty"
	case StateReady:
		return "ready"
	}
	return "unknown"
}

// settled reports whether a retry may re-enter loading from s.
func (s State) settled() bool {
	return s == StateReady || s == StateEmpty || s == StateError
}

func resultState(n int) State {
	if n == 0 {
		return StateEmpty
	}
	return StateReady
}
