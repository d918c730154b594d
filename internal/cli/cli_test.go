package cli

import (
	"bytes"
	"errors"
	"flag"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jbonatakis/studydesk/internal/config"
	"github.com/jbonatakis/studydesk/internal/genstub"
)

const notes = "Photosynthesis converts light into chemical energy. " +
	"Chlorophyll absorbs mostly blue and red light. " +
	"Oxygen is released as a byproduct of the reaction. " +
	"Glucose stores the captured energy for later use."

// setupWorkspace points the CLI at a stub service, an isolated home and a
// temp working directory holding notes.txt. It returns captured stdout.
func setupWorkspace(t *testing.T, opts genstub.Options) (*bytes.Buffer, string) {
	t.Helper()

	srv := httptest.NewServer(genstub.New(opts).Handler())
	t.Cleanup(srv.Close)

	home := t.TempDir()
	t.Cleanup(config.OverrideHomeDir(func() (string, error) { return home, nil }))
	t.Setenv(config.EnvAPIURL, srv.URL+"/api")
	t.Setenv(config.EnvDebug, "false")

	dir := t.TempDir()
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir temp: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldWD) })

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte(notes), 0o644); err != nil {
		t.Fatalf("write notes: %v", err)
	}

	var buf bytes.Buffer
	oldOut := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = oldOut })
	return &buf, dir
}

func TestRunUsageErrors(t *testing.T) {
	cases := [][]string{
		{"bogus"},
		{"ask", "notes.txt"},
		{"config"},
		{"config", "edit"},
		{"tui", "a", "b"},
		{"summarize"},
		{"quiz", "a.txt", "b.txt"},
		{"quiz", "--nope", "a.txt"},
	}
	for _, args := range cases {
		err := Run(args)
		var ue UsageError
		if !errors.As(err, &ue) {
			t.Fatalf("Run(%q) err = %v, want UsageError", args, err)
		}
	}
}

func TestRunHelpPrintsUsage(t *testing.T) {
	var buf bytes.Buffer
	oldOut := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = oldOut })

	if err := Run([]string{"--help"}); err != nil {
		t.Fatalf("help: %v", err)
	}
	if !strings.Contains(buf.String(), "studydesk summarize <file>") {
		t.Fatalf("usage missing commands: %s", buf.String())
	}
}

func TestSummarizeExports(t *testing.T) {
	out, dir := setupWorkspace(t, genstub.Options{})

	if err := Run([]string{"summarize", "notes.txt", "--export", "--out", "exports"}); err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if !strings.Contains(out.String(), "Study Summary - notes.txt") {
		t.Fatalf("missing summary header: %s", out.String())
	}
	data, err := os.ReadFile(filepath.Join(dir, "exports", "notes.txt_summary.txt"))
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.HasPrefix(string(data), "Study Summary - notes.txt\n\nQUICK NOTES:\n1. ") {
		t.Fatalf("unexpected export: %q", data)
	}
}

func TestSummarizeMissingFile(t *testing.T) {
	setupWorkspace(t, genstub.Options{})
	err := Run([]string{"summarize", "missing.pdf"})
	if err == nil || !strings.Contains(err.Error(), "missing.pdf") {
		t.Fatalf("err = %v", err)
	}
}

func TestQuizPrintsAnswerKey(t *testing.T) {
	out, _ := setupWorkspace(t, genstub.Options{})
	if err := Run([]string{"quiz", "notes.txt", "--count", "3"}); err != nil {
		t.Fatalf("quiz: %v", err)
	}
	text := out.String()
	if !strings.HasPrefix(text, "Quiz - notes.txt") {
		t.Fatalf("unexpected output: %s", text)
	}
	if strings.Count(text, "Correct Answer:") != 3 {
		t.Fatalf("expected 3 answers in %s", text)
	}
}

func TestQuizRejectsCountOutOfRange(t *testing.T) {
	setupWorkspace(t, genstub.Options{})
	var ue UsageError
	if err := Run([]string{"quiz", "notes.txt", "--count", "21"}); !errors.As(err, &ue) {
		t.Fatalf("err = %v, want UsageError", err)
	}
}

func TestQuizCheckInteractive(t *testing.T) {
	out, _ := setupWorkspace(t, genstub.Options{})
	// The stub rotates the correct option: a, b, c, d.
	setPromptReader(strings.NewReader("z\na\nb\nd\nd\n"))
	t.Cleanup(func() { setPromptReader(os.Stdin) })

	if err := Run([]string{"quiz", "--check", "--count", "4", "notes.txt"}); err != nil {
		t.Fatalf("quiz: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "Enter a letter between a and d.") {
		t.Fatalf("invalid answer not reported: %s", text)
	}
	if !strings.Contains(text, "Score: 75% (3 of 4 correct)") {
		t.Fatalf("unexpected score in %s", text)
	}
	if strings.Contains(text, "service disagrees") {
		t.Fatalf("service grading should match local grading: %s", text)
	}
}

func TestQuizCheckStopsOnEOF(t *testing.T) {
	setupWorkspace(t, genstub.Options{})
	setPromptReader(strings.NewReader("a\n"))
	t.Cleanup(func() { setPromptReader(os.Stdin) })

	err := Run([]string{"quiz", "--check", "--count", "2", "notes.txt"})
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("err = %v, want unexpected EOF", err)
	}
}

func TestAskStreams(t *testing.T) {
	out, _ := setupWorkspace(t, genstub.Options{})
	if err := Run([]string{"ask", "notes.txt", "What", "does", "chlorophyll", "absorb?"}); err != nil {
		t.Fatalf("ask: %v", err)
	}
	if !strings.Contains(out.String(), "Chlorophyll absorbs mostly blue and red light.") {
		t.Fatalf("unexpected reply: %s", out.String())
	}
}

func TestAskFallsBackWithoutStreaming(t *testing.T) {
	out, _ := setupWorkspace(t, genstub.Options{DisableStreaming: true})
	if err := Run([]string{"ask", "notes.txt", "What is released by the reaction?"}); err != nil {
		t.Fatalf("ask: %v", err)
	}
	if !strings.Contains(out.String(), "Oxygen is released") {
		t.Fatalf("unexpected reply: %s", out.String())
	}
}

func TestConfigShow(t *testing.T) {
	out, dir := setupWorkspace(t, genstub.Options{})
	cfgPath := filepath.Join(dir, ".studydesk", "config.yaml")
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(cfgPath, []byte("quiz:\n  num_questions: 7\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if err := Run([]string{"config", "show"}); err != nil {
		t.Fatalf("config show: %v", err)
	}
	lines := strings.Split(out.String(), "\n")
	find := func(key string) []string {
		for _, line := range lines {
			fields := strings.Fields(line)
			if len(fields) > 0 && fields[0] == key {
				return fields
			}
		}
		t.Fatalf("key %s missing from output:\n%s", key, out.String())
		return nil
	}
	if f := find("quiz.num_questions"); f[1] != "7" || f[2] != "local" {
		t.Fatalf("quiz row = %v", f)
	}
	if f := find("api.base_url"); f[2] != "env" {
		t.Fatalf("api row = %v", f)
	}
	if f := find("chat.streaming"); f[1] != "true" || f[2] != "default" {
		t.Fatalf("streaming row = %v", f)
	}
}

func TestParseOption(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"a", 0, true},
		{" D ", 3, true},
		{"2", 1, true},
		{"e", 0, false},
		{"0", 0, false},
		{"5", 0, false},
		{"", 0, false},
		{"ab", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseOption(tc.in, 4)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Fatalf("parseOption(%q) = %d, %v; want %d, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParseFileArgsAcceptsFlagsAfterFile(t *testing.T) {
	fs := flag.NewFlagSet("quiz", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	count := fs.Int("count", 0, "")
	path, err := parseFileArgs(fs, []string{"notes.txt", "--count", "4"}, "quiz")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if path != "notes.txt" || *count != 4 {
		t.Fatalf("path=%q count=%d", path, *count)
	}
}
