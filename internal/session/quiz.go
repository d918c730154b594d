package session

import (
	"context"

	"github.com/jbonatakis/studydesk/internal/quiz"
	"go.uber.org/zap"
)

type QuizJob struct {
	Ref   Ref
	Count int
	text  string
	gen   Generator
}

type QuizResult struct {
	Ref       Ref
	QuizID    string
	Questions []quiz.Question
	Err       error
}

func (e *Engine) StartQuiz(count int) (QuizJob, error) {
	if err := e.requireDocument(ExperienceQuiz); err != nil {
		return QuizJob{}, err
	}
	next, err := e.quiz.BeginGenerate(count)
	if err != nil {
		return QuizJob{}, err
	}
	e.quiz = next
	return e.quizJob(count), nil
}

// RegenerateQuiz replaces an active or finished quiz with a new set.
func (e *Engine) RegenerateQuiz(count int) (QuizJob, error) {
	if err := e.requireDocument(ExperienceQuiz); err != nil {
		return QuizJob{}, err
	}
	next, err := e.quiz.Regenerate(count)
	if err != nil {
		return QuizJob{}, err
	}
	e.quiz = next
	return e.quizJob(count), nil
}

func (e *Engine) quizJob(count int) QuizJob {
	return QuizJob{Ref: e.ref(), Count: count, text: e.doc.RawText, gen: e.gen}
}

func (j QuizJob) Run(ctx context.Context) QuizResult {
	res, err := j.gen.GenerateQuiz(ctx, j.text, j.Count)
	if err != nil {
		return QuizResult{Ref: j.Ref, Err: err}
	}
	questions := make([]quiz.Question, len(res.Questions))
	for i, q := range res.Questions {
		questions[i] = quiz.Question{
			ID:           q.ID,
			Prompt:       q.Question,
			Options:      q.Options,
			CorrectIndex: q.CorrectAnswer,
			Explanation:  q.Explanation,
		}
	}
	return QuizResult{Ref: j.Ref, QuizID: res.ID, Questions: questions}
}

// ApplyQuiz commits a finished quiz job. A failed or malformed result leaves
// the quiz idle with its error retained.
func (e *Engine) ApplyQuiz(r QuizResult) error {
	if !e.current(r.Ref) {
		e.log.Debug("discarding stale quiz", zap.Uint64("epoch", r.Ref.Epoch))
		return ErrStaleResult
	}
	if e.quiz.State() != quiz.StateGenerating {
		return nil
	}
	if r.Err != nil {
		e.log.Warn("quiz generation failed", zap.Error(r.Err))
		next, err := e.quiz.GenerateFailed(errorMessage(r.Err))
		if err != nil {
			return err
		}
		e.quiz = next
		return nil
	}
	next, err := e.quiz.Generated(r.Questions)
	e.quiz = next
	if err != nil {
		e.log.Warn("quiz rejected", zap.Error(err))
		return err
	}
	e.log.Debug("quiz ready", zap.String("quiz", r.QuizID), zap.Int("questions", next.Len()))
	return nil
}

func (e *Engine) SelectAnswer(option int) error {
	return e.stepQuiz("select", func(s quiz.Session) (quiz.Session, error) { return s.SelectAnswer(option) })
}

func (e *Engine) NextQuestion() error {
	return e.stepQuiz("next", quiz.Session.Next)
}

func (e *Engine) PreviousQuestion() error {
	return e.stepQuiz("previous", quiz.Session.Previous)
}

func (e *Engine) SubmitQuiz() error {
	return e.stepQuiz("submit", quiz.Session.Submit)
}

// RetakeQuiz restarts the current set without a new request.
func (e *Engine) RetakeQuiz() error {
	return e.stepQuiz("reset", quiz.Session.Reset)
}

func (e *Engine) stepQuiz(op string, step func(quiz.Session) (quiz.Session, error)) error {
	if err := e.requireDocument(ExperienceQuiz); err != nil {
		return err
	}
	next, err := step(e.quiz)
	if err != nil {
		e.log.Debug("quiz step rejected", zap.String("op", op), zap.Error(err))
		return err
	}
	e.quiz = next
	return nil
}
