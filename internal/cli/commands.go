package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/jbonatakis/studydesk/internal/config"
	"github.com/jbonatakis/studydesk/internal/export"
	"github.com/jbonatakis/studydesk/internal/genclient"
	"github.com/jbonatakis/studydesk/internal/quiz"
	"github.com/jbonatakis/studydesk/internal/session"
	"github.com/jbonatakis/studydesk/internal/tui"
)

func runTUI(path string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	return tui.Start(tui.Config{
		Engine:       a.engine(true),
		Uploader:     a.client,
		NumQuestions: a.cfg.Quiz.NumQuestions,
		ExportDir:    ".",
		InitialPath:  path,
		Logger:       a.log.Named("tui"),
	})
}

func runSummarize(args []string) error {
	fs := flag.NewFlagSet("summarize", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	doExport := fs.Bool("export", false, "write the summary to a text file")
	outDir := fs.String("out", ".", "directory for exported files")

	path, err := parseFileArgs(fs, args, "summarize")
	if err != nil {
		return err
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	e := a.engine(false)
	if _, err := a.open(ctx, e, path); err != nil {
		return err
	}
	job, err := e.StartSummary()
	if err != nil {
		return err
	}
	if err := e.ApplySummary(job.Run(ctx)); err != nil {
		return err
	}
	view := e.Summary()
	if view.Failure != "" {
		return fmt.Errorf("summary failed: %s", view.Failure)
	}

	name, content, err := e.ExportSummary()
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, content)
	if *doExport {
		written, err := export.Write(*outDir, name, content)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "\nsaved %s\n", written)
	}
	return nil
}

func runQuiz(args []string) error {
	fs := flag.NewFlagSet("quiz", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	count := fs.Int("count", 0, "number of questions (default from config)")
	check := fs.Bool("check", false, "answer interactively and confirm with the service")
	doExport := fs.Bool("export", false, "write the quiz to a text file")
	outDir := fs.String("out", ".", "directory for exported files")

	path, err := parseFileArgs(fs, args, "quiz")
	if err != nil {
		return err
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	n := *count
	if n == 0 {
		n = a.cfg.Quiz.NumQuestions
	}
	if n < config.MinQuizNumQuestions || n > config.MaxQuizNumQuestions {
		return UsageError{Message: fmt.Sprintf("--count must be between %d and %d", config.MinQuizNumQuestions, config.MaxQuizNumQuestions)}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	e := a.engine(false)
	if _, err := a.open(ctx, e, path); err != nil {
		return err
	}
	job, err := e.StartQuiz(n)
	if err != nil {
		return err
	}
	res := job.Run(ctx)
	if err := e.ApplyQuiz(res); err != nil {
		return fmt.Errorf("quiz rejected: %w", err)
	}
	if msg := e.Quiz().LastError(); msg != "" {
		return fmt.Errorf("quiz failed: %s", msg)
	}

	if *check {
		if err := playQuiz(ctx, a.client, e, res.QuizID); err != nil {
			return err
		}
	} else {
		_, content, err := e.ExportQuiz()
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, content)
	}

	if *doExport {
		name, content, err := e.ExportQuiz()
		if err != nil {
			return err
		}
		written, err := export.Write(*outDir, name, content)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "\nsaved %s\n", written)
	}
	return nil
}

type answerChecker interface {
	CheckAnswer(ctx context.Context, quizID string, questionID string, answer int) (genclient.AnswerResult, error)
}

// playQuiz walks the active quiz on the terminal, submits it and prints the
// review. Each answer is confirmed with the service when a quiz id is known.
func playQuiz(ctx context.Context, checker answerChecker, e *session.Engine, quizID string) error {
	for {
		s := e.Quiz()
		q, _ := s.Current()
		fmt.Fprintf(stdout, "\nQuestion %d of %d\n%s\n", s.CurrentIndex()+1, s.Len(), q.Prompt)
		for i, opt := range q.Options {
			fmt.Fprintf(stdout, "  %s) %s\n", quiz.OptionLetter(i), opt)
		}

		for {
			line, err := promptLine("Answer")
			if err != nil {
				return err
			}
			option, ok := parseOption(line, len(q.Options))
			if !ok {
				fmt.Fprintf(stdout, "Enter a letter between a and %s.\n", quiz.OptionLetter(len(q.Options)-1))
				continue
			}
			if err := e.SelectAnswer(option); err != nil {
				return err
			}
			break
		}

		if !e.Quiz().CanNext() {
			break
		}
		if err := e.NextQuestion(); err != nil {
			return err
		}
	}

	if err := e.SubmitQuiz(); err != nil {
		return err
	}
	s := e.Quiz()
	score, err := s.Score()
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "\nScore: %d%% (%d of %d correct)\n", score, s.CorrectCount(), s.Len())

	review, err := s.Review()
	if err != nil {
		return err
	}
	for _, item := range review {
		mark := "correct"
		if !item.Correct {
			mark = "incorrect, answer " + strings.ToUpper(quiz.OptionLetter(item.Question.CorrectIndex))
		}
		explanation := item.Question.Explanation
		if quizID != "" && checker != nil {
			res, err := checker.CheckAnswer(ctx, quizID, item.Question.ID, item.Chosen)
			if err != nil {
				return fmt.Errorf("check answer: %s", genclient.Detail(err))
			}
			if res.Correct != item.Correct {
				mark += " (service disagrees)"
			}
			if res.Explanation != "" {
				explanation = res.Explanation
			}
		}
		fmt.Fprintf(stdout, "%d. %s: %s\n   %s\n", item.Index+1, strings.ToUpper(quiz.OptionLetter(item.Chosen)), mark, explanation)
	}
	return nil
}

func parseOption(input string, n int) (int, bool) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return 0, false
	}
	if v, err := strconv.Atoi(input); err == nil {
		if v >= 1 && v <= n {
			return v - 1, true
		}
		return 0, false
	}
	if len(input) == 1 && input[0] >= 'a' && int(input[0]-'a') < n {
		return int(input[0] - 'a'), true
	}
	return 0, false
}

func runAsk(path string, question string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	e := a.engine(false)
	defer e.Close()
	if _, err := a.open(ctx, e, path); err != nil {
		return err
	}
	job, err := e.SendChat(ctx, question)
	if err != nil {
		return err
	}

	var failure error
	job.Run(func(ev session.ChatEvent) {
		if err := e.ApplyChat(ev); err != nil {
			return
		}
		switch {
		case ev.Err != nil:
			failure = ev.Err
		case ev.Final != nil:
			fmt.Fprint(stdout, *ev.Final)
		default:
			fmt.Fprint(stdout, ev.Delta)
		}
	})
	fmt.Fprintln(stdout)
	if failure != nil {
		if errors.Is(failure, context.Canceled) {
			return failure
		}
		return fmt.Errorf("chat failed: %s", genclient.Detail(failure))
	}
	return nil
}

func runConfigShow() error {
	root, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolve working directory: %w", err)
	}
	if err := config.LoadDotEnv(root); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	settings, err := config.ResolveSettings(root, os.LookupEnv)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tVALUE\tSOURCE")
	for _, applied := range settings.Applied {
		fmt.Fprintf(w, "%s\t%s\t%s\n", applied.Option.KeyPath, applied.Value, applied.Source)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	for _, warning := range settings.LayerWarnings {
		fmt.Fprintf(stdout, "warning: ignored %s config %s (%s)\n", warning.Source, warning.Path, warning.Kind)
	}
	return nil
}

func parseFileArgs(fs *flag.FlagSet, args []string, cmd string) (string, error) {
	// Allow the file before or after the flags.
	var positional []string
	rest := args
	for len(rest) > 0 {
		if err := fs.Parse(rest); err != nil {
			return "", UsageError{Message: err.Error()}
		}
		if fs.NArg() == 0 {
			break
		}
		positional = append(positional, fs.Arg(0))
		rest = fs.Args()[1:]
	}
	if len(positional) != 1 {
		return "", UsageError{Message: fmt.Sprintf("%s requires exactly 1 argument: <file>", cmd)}
	}
	return positional[0], nil
}
