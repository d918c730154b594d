// Package quiz holds the quiz state machine. Session is a value; every
// transition returns a new Session and leaves the receiver untouched, so
// callers can keep or discard results freely.
//
// Failed transitions return the receiver unchanged together with the error,
// except GenerateFailed and a rejected Generated set, which move to Idle.
package quiz

import (
	"fmt"
	"math"
)

type Session struct {
	state     State
	questions []Question
	current   int
	answers   map[int]int
	completed bool
	requested int
	lastErr   string
}

func (s Session) State() State { return s.state }

func (s Session) Questions() []Question {
	out := make([]Question, len(s.questions))
	copy(out, s.questions)
	return out
}

func (s Session) Len() int { return len(s.questions) }

func (s Session) CurrentIndex() int { return s.current }

func (s Session) Completed() bool { return s.completed }

func (s Session) Requested() int { return s.requested }

// LastError is the message of the most recent failed generation.
func (s Session) LastError() string { return s.lastErr }

func (s Session) Current() (Question, bool) {
	if len(s.questions) == 0 {
		return Question{}, false
	}
	return s.questions[s.current], true
}

func (s Session) Answer(index int) (int, bool) {
	option, ok := s.answers[index]
	return option, ok
}

func (s Session) AnsweredCount() int { return len(s.answers) }

// Progress is the fraction of the set reached by the pointer.
func (s Session) Progress() float64 {
	if len(s.questions) == 0 {
		return 0
	}
	return float64(s.current+1) / float64(len(s.questions))
}

func (s Session) BeginGenerate(count int) (Session, error) {
	if s.state != StateIdle && s.state != StateResults {
		return s, illegal("generate", s.state)
	}
	return s.beginGenerate(count)
}

// Regenerate discards the current set and requests a new one.
func (s Session) Regenerate(count int) (Session, error) {
	if s.state != StateActive && s.state != StateResults {
		return s, illegal("regenerate", s.state)
	}
	return s.beginGenerate(count)
}

func (s Session) beginGenerate(count int) (Session, error) {
	if count <= 0 {
		return s, ErrInvalidCount
	}
	return Session{state: StateGenerating, requested: count}, nil
}

// Generated accepts a question set. An invalid set is discarded and the
// session returns to Idle.
func (s Session) Generated(questions []Question) (Session, error) {
	if s.state != StateGenerating {
		return s, illegal("accept questions", s.state)
	}
	if err := Validate(questions); err != nil {
		return Session{state: StateIdle, lastErr: err.Error()}, err
	}
	set := make([]Question, len(questions))
	for i, q := range questions {
		q.Options = append([]string(nil), q.Options...)
		set[i] = q
	}
	return Session{
		state:     StateActive,
		questions: set,
		answers:   map[int]int{},
		requested: s.requested,
	}, nil
}

// GenerateFailed records a failed request and returns to Idle.
func (s Session) GenerateFailed(cause error) (Session, error) {
	if s.state != StateGenerating {
		return s, illegal("fail generation", s.state)
	}
	msg := "quiz generation failed"
	if cause != nil {
		msg = cause.Error()
	}
	return Session{state: StateIdle, lastErr: msg}, nil
}

// SelectAnswer records option for the current question, replacing any
// earlier choice. The pointer does not move.
func (s Session) SelectAnswer(option int) (Session, error) {
	if s.state != StateActive {
		return s, illegal("select answer", s.state)
	}
	q := s.questions[s.current]
	if option < 0 || option >= len(q.Options) {
		return s, fmt.Errorf("%w: %d of %d", ErrOptionOutOfRange, option, len(q.Options))
	}
	next := s.withAnswers()
	next.answers[s.current] = option
	return next, nil
}

func (s Session) Next() (Session, error) {
	if s.state != StateActive {
		return s, illegal("next", s.state)
	}
	if _, ok := s.answers[s.current]; !ok {
		return s, ErrUnanswered
	}
	if s.current >= len(s.questions)-1 {
		return s, ErrAtLastQuestion
	}
	s.current++
	return s, nil
}

func (s Session) Previous() (Session, error) {
	if s.state != StateActive {
		return s, illegal("previous", s.state)
	}
	if s.current == 0 {
		return s, ErrAtFirstQuestion
	}
	s.current--
	return s, nil
}

func (s Session) CanNext() bool {
	_, answered := s.answers[s.current]
	return s.state == StateActive && answered && s.current < len(s.questions)-1
}

func (s Session) CanPrevious() bool {
	return s.state == StateActive && s.current > 0
}

func (s Session) CanSubmit() bool {
	return s.state == StateActive && s.current == len(s.questions)-1 && len(s.answers) == len(s.questions)
}

// Submit freezes the answers and moves to Results.
func (s Session) Submit() (Session, error) {
	if s.state != StateActive {
		return s, illegal("submit", s.state)
	}
	if s.current != len(s.questions)-1 {
		return s, ErrNotAtLastQuestion
	}
	if len(s.answers) != len(s.questions) {
		return s, fmt.Errorf("%w: %d of %d answered", ErrIncomplete, len(s.answers), len(s.questions))
	}
	next := s.withAnswers()
	next.state = StateResults
	next.completed = true
	return next, nil
}

// Score is the rounded percentage of correct answers.
func (s Session) Score() (int, error) {
	if s.state != StateResults {
		return 0, illegal("score", s.state)
	}
	return int(math.Round(100 * float64(s.CorrectCount()) / float64(len(s.questions)))), nil
}

func (s Session) CorrectCount() int {
	correct := 0
	for i, q := range s.questions {
		if option, ok := s.answers[i]; ok && option == q.CorrectIndex {
			correct++
		}
	}
	return correct
}

// Reset starts a retake of the same set.
func (s Session) Reset() (Session, error) {
	if s.state != StateActive && s.state != StateResults {
		return s, illegal("reset", s.state)
	}
	s.state = StateActive
	s.current = 0
	s.answers = map[int]int{}
	s.completed = false
	return s, nil
}

type ReviewItem struct {
	Index    int
	Question Question
	Chosen   int
	Correct  bool
}

// Review pairs each question with the submitted answer.
func (s Session) Review() ([]ReviewItem, error) {
	if s.state != StateResults {
		return nil, illegal("review", s.state)
	}
	items := make([]ReviewItem, 0, len(s.questions))
	for i, q := range s.questions {
		chosen := s.answers[i]
		items = append(items, ReviewItem{
			Index:    i,
			Question: q,
			Chosen:   chosen,
			Correct:  chosen == q.CorrectIndex,
		})
	}
	return items, nil
}

func (s Session) withAnswers() Session {
	answers := make(map[int]int, len(s.answers)+1)
	for k, v := range s.answers {
		answers[k] = v
	}
	s.answers = answers
	return s
}
