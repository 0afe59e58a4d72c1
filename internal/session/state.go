package session

// State is the session lifecycle state.
type State int32

const (
	Loading State = iota
	Running
	Paused
	Dead
	Disposed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Dead:
		return "dead"
	case Disposed:
		return "disposed"
	}
	return "unknown"
}
