package model

import (
	"encoding/json"
	"strings"
)

// State is the workflow column a task lives in.
type State string

const (
	StateToDo          State = "ToDo"
	StateInProgress    State = "InProgress"
	StateAwaitFeedback State = "AwaitFeedback"
	StateDone          State = "Done"
)

// States lists the workflow states in board order.
var States = []State{StateToDo, StateInProgress, StateAwaitFeedback, StateDone}

// Index returns the position of s in the workflow, or -1 if s is unknown.
func (s State) Index() int {
	for i, st := range States {
		if st == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s is one of the four workflow states.
func (s State) Valid() bool {
	return s.Index() >= 0
}

// HasNext reports whether the task can be advanced from s.
func (s State) HasNext() bool {
	i := s.Index()
	return i >= 0 && i < len(States)-1
}

// HasPrev reports whether the task can be moved back from s.
func (s State) HasPrev() bool {
	return s.Index() > 0
}

// Next returns the following state. Done stays Done.
func (s State) Next() State {
	if !s.HasNext() {
		return s
	}
	return States[s.Index()+1]
}

// Prev returns the preceding state. ToDo stays ToDo.
func (s State) Prev() State {
	if !s.HasPrev() {
		return s
	}
	return States[s.Index()-1]
}

// Label is the column heading shown on the board.
func (s State) Label() string {
	switch s {
	case StateToDo:
		return "To do"
	case StateInProgress:
		return "In progress"
	case StateAwaitFeedback:
		return "Await feedback"
	case StateDone:
		return "Done"
	}
	return string(s)
}

// ParseState converts a stored state name into a State.
func ParseState(s string) (State, error) {
	st := State(s)
	if !st.Valid() {
		return "", ErrInvalidState
	}
	return st, nil
}

// UnmarshalJSON rejects state names outside the workflow.
func (s *State) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	st, err := ParseState(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// targetKeys are matched in order, so "todo" wins over "done" for an
// identity containing both.
var targetKeys = []struct {
	key   string
	state State
}{
	{"todo", StateToDo},
	{"inprogress", StateInProgress},
	{"awaitfeedback", StateAwaitFeedback},
	{"done", StateDone},
}

// MatchTarget finds the column named inside a drop zone identity such as
// "container-column-inprogress". ok is false when no column key is present.
func MatchTarget(identity string) (State, bool) {
	id := strings.ToLower(identity)
	for _, k := range targetKeys {
		if strings.Contains(id, k.key) {
			return k.state, true
		}
	}
	return StateToDo, false
}

// ResolveTarget returns the column for a drop zone identity, falling back
// to ToDo when nothing matches.
func ResolveTarget(identity string) State {
	st, _ := MatchTarget(identity)
	return st
}
