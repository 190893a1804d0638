package pipeline

import "fmt"

// State is a stage of a pipeline run.
type State string

const (
	Pending     State = "pending"
	Loaded      State = "loaded"
	Profiled    State = "profiled"
	Transformed State = "transformed"
	Done        State = "done"
	Failed      State = "failed"
)

// next lists the legal forward transitions. Any non-terminal state may fail.
var next = map[State][]State{
	Pending:     {Loaded},
	Loaded:      {Profiled},
	Profiled:    {Transformed, Done},
	Transformed: {Done},
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool { return s == Done || s == Failed }

func (s State) canMove(to State) bool {
	if s.Terminal() {
		return false
	}
	if to == Failed {
		return true
	}
	for _, n := range next[s] {
		if n == to {
			return true
		}
	}
	return false
}

// advance moves the run to a new state, refusing skipped or backward steps.
func (r *Run) advance(to State) error {
	if !r.state.canMove(to) {
		return fmt.Errorf("illegal transition %s -> %s", r.state, to)
	}
	r.log.Debug().Str("from", string(r.state)).Str("to", string(to)).Msg("state")
	r.state = to
	r.History = append(r.History, to)
	return nil
}
