package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

type UsageError struct {
	Message string
}

func (e UsageError) Error() string { return e.Message }

var (
	stdout       io.Writer = os.Stdout
	promptReader           = bufio.NewReader(os.Stdin)
)

func setPromptReader(r io.Reader) {
	promptReader = bufio.NewReader(r)
}

func Usage() string {
	return `studydesk: study a document with summaries, chat and quizzes

Usage:
  studydesk                      open the interactive study session
  studydesk tui [file]           open the session, optionally loading file
  studydesk summarize <file> [--export] [--out <dir>]
  studydesk quiz <file> [--count <n>] [--check] [--export] [--out <dir>]
  studydesk ask <file> <question...>
  studydesk config show

Environment:
  STUDYDESK_API_URL   generation service base URL
  STUDYDESK_DEBUG     verbose logging (true/false)
`
}

func Run(args []string) error {
	if len(args) == 0 {
		return runTUI("")
	}

	switch args[0] {
	case "help", "-h", "--help":
		fmt.Fprintln(stdout, Usage())
		return nil
	case "tui":
		if len(args) > 2 {
			return UsageError{Message: "tui takes at most 1 argument: [file]"}
		}
		path := ""
		if len(args) == 2 {
			path = args[1]
		}
		return runTUI(path)
	case "summarize":
		return runSummarize(args[1:])
	case "quiz":
		return runQuiz(args[1:])
	case "ask":
		if len(args) < 3 {
			return UsageError{Message: "ask requires 2 arguments: <file> <question>"}
		}
		return runAsk(args[1], strings.Join(args[2:], " "))
	case "config":
		if len(args) != 2 || args[1] != "show" {
			return UsageError{Message: "usage: config show"}
		}
		return runConfigShow()
	default:
		return UsageError{Message: fmt.Sprintf("unknown command: %q", args[0])}
	}
}

func promptLine(label string) (string, error) {
	if label != "" {
		fmt.Fprintf(stdout, "%s: ", label)
	}
	line, err := promptReader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	if err == io.EOF && line == "" {
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimRight(line, "\r\n"), nil
}
