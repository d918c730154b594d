package quiz

import (
	"errors"
	"fmt"
)

type State int

const (
	StateIdle State = iota
	StateGenerating
	StateActive
	StateResults
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateGenerating:
		return "generating"
	case StateActive:
		return "active"
	case StateResults:
		return "results"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Question is one multiple-choice question. It is never modified after the
// set is accepted.
type Question struct {
	ID           string
	Prompt       string
	Options      []string
	CorrectIndex int
	Explanation  string
}

func (q Question) CorrectOption() string {
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return ""
	}
	return q.Options[q.CorrectIndex]
}

var (
	ErrIllegalTransition = errors.New("illegal quiz transition")
	ErrInvalidCount      = errors.New("question count must be positive")
	ErrOptionOutOfRange  = errors.New("option index out of range")
	ErrUnanswered        = errors.New("current question has no answer")
	ErrAtLastQuestion    = errors.New("already at the last question")
	ErrAtFirstQuestion   = errors.New("already at the first question")
	ErrNotAtLastQuestion = errors.New("submit is only allowed from the last question")
	ErrIncomplete        = errors.New("not every question has an answer")
	ErrNoQuestions       = errors.New("no questions")
)

// ValidationError rejects a generated question set that cannot be played.
type ValidationError struct {
	Index  int
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return "invalid question set: " + e.Reason
	}
	return fmt.Sprintf("invalid question %d: %s", e.Index+1, e.Reason)
}

func illegal(op string, from State) error {
	return fmt.Errorf("%w: %s while %s", ErrIllegalTransition, op, from)
}

// Validate checks that a question set is playable.
func Validate(questions []Question) error {
	if len(questions) == 0 {
		return &ValidationError{Index: -1, Reason: "no questions"}
	}
	for i, q := range questions {
		if q.Prompt == "" {
			return &ValidationError{Index: i, Reason: "empty prompt"}
		}
		if len(q.Options) < 2 {
			return &ValidationError{Index: i, Reason: "fewer than two options"}
		}
		if len(q.Options) > 26 {
			return &ValidationError{Index: i, Reason: "more than 26 options"}
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return &ValidationError{Index: i, Reason: fmt.Sprintf("correct index %d out of range", q.CorrectIndex)}
		}
	}
	return nil
}
