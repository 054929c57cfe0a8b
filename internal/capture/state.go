package capture

import "fmt"

type State int32

const (
	Init State = iota
	Warmup
	Running
	Draining
	Terminated
)

func (s State) String() string {
	switch s {
	case Init:
		return "init"
	case Warmup:
		return "warmup"
	case Running:
		return "running"
	case Draining:
		return "draining"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}
