package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestBottomBarShowsDocumentName(t *testing.T) {
	m := newTestModel(t, &fakeService{})
	if out := RenderBottomBar(m); !strings.Contains(out, "no document") {
		t.Fatalf("expected placeholder, got %q", out)
	}

	m = loadedModel(t, &fakeService{})
	out := RenderBottomBar(m)
	if !strings.Contains(out, "enzymes.txt") {
		t.Fatalf("expected document name, got %q", out)
	}
	for _, hint := range []string{"[o]pen", "[r]egenerate", "e[x]port", "[q]uit"} {
		if !strings.Contains(out, hint) {
			t.Fatalf("expected hint %q in %q", hint, out)
		}
	}
}

func TestBottomBarShowsSpinnerWhileLoading(t *testing.T) {
	m := newTestModel(t, &fakeService{})
	m.actionInProgress = true
	m.actionName = "loading notes.pdf"
	out := RenderBottomBar(m)
	if !strings.Contains(out, "| loading notes.pdf") {
		t.Fatalf("expected spinner label, got %q", out)
	}
}

func TestBottomBarInputHints(t *testing.T) {
	m := newTestModel(t, &fakeService{})
	m.inputMode = InputOpen
	out := RenderBottomBar(m)
	if !strings.Contains(out, "[enter]open") || strings.Contains(out, "[q]uit") {
		t.Fatalf("unexpected open prompt hints %q", out)
	}
}

func TestLayoutBarTruncatesLeft(t *testing.T) {
	bar := layoutBar("[o]pen [tab]switch [q]uit", "notes.pdf", 20)
	if lipgloss.Width(bar) != 20 {
		t.Fatalf("width = %d, want 20", lipgloss.Width(bar))
	}
	if !strings.HasSuffix(bar, "notes.pdf") {
		t.Fatalf("expected right side kept, got %q", bar)
	}

	bar = layoutBar("left", "right", 20)
	if bar != "left"+strings.Repeat(" ", 11)+"right" {
		t.Fatalf("unexpected layout %q", bar)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("héllo", 2); got != "hé" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("abc", 0); got != "" {
		t.Fatalf("truncate = %q", got)
	}
}
