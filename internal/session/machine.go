// Package session implements the interactive question loop: an explicit
// state machine, the per-turn dispatch, and a line-oriented driver.
package session

import (
	"strings"

	"github.com/mwiater/routerchat/models"
)

// State is a phase of the interactive loop.
type State int

const (
	SelectingModel State = iota
	AwaitingQuestion
	Dispatching
	Terminated
)

func (s State) String() string {
	switch s {
	case SelectingModel:
		return "SelectingModel"
	case AwaitingQuestion:
		return "AwaitingQuestion"
	case Dispatching:
		return "Dispatching"
	case Terminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// ExitKeyword ends the session when typed at the question prompt, in any case.
const ExitKeyword = "quit"

// Input classifies a line read while awaiting a question.
type Input int

const (
	InputQuestion Input = iota
	InputEmpty
	InputQuit
)

// Machine is the loop state threaded through each iteration. Its methods
// return the next value and never perform I/O.
type Machine struct {
	State State
	// Model is fixed once selection succeeds.
	Model models.ModelEntry
	// Question is the pending question while Dispatching.
	Question string
}

// NewMachine starts in SelectingModel.
func NewMachine() Machine {
	return Machine{State: SelectingModel}
}

// Select resolves key. On failure the machine is returned unchanged together
// with the lookup error, so the caller can re-prompt.
func (m Machine) Select(key string) (Machine, error) {
	if m.State != SelectingModel {
		return m, nil
	}
	entry, err := models.Resolve(key)
	if err != nil {
		return m, err
	}
	m.Model = entry
	m.State = AwaitingQuestion
	return m, nil
}

// Input handles one line at the question prompt.
func (m Machine) Input(line string) (Machine, Input) {
	if m.State != AwaitingQuestion {
		return m, InputEmpty
	}
	q := strings.TrimSpace(line)
	switch {
	case strings.EqualFold(q, ExitKeyword):
		m.State = Terminated
		return m, InputQuit
	case q == "":
		return m, InputEmpty
	default:
		m.Question = q
		m.State = Dispatching
		return m, InputQuestion
	}
}

// Complete finishes a dispatched turn.
func (m Machine) Complete() Machine {
	if m.State == Dispatching {
		m.Question = ""
		m.State = AwaitingQuestion
	}
	return m
}

// Terminate ends the session from any state, e.g. on end of input.
func (m Machine) Terminate() Machine {
	m.State = Terminated
	m.Question = ""
	return m
}
