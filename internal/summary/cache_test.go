package summary

import (
	"errors"
	"testing"
	"time"
)

func TestGenerateCycle(t *testing.T) {
	c := NewCache(nil)
	if c.Status() != StatusAbsent {
		t.Fatalf("initial status = %s", c.Status())
	}
	hit, err := c.Begin("Cells are the basic unit of life.")
	if err != nil || hit {
		t.Fatalf("begin: hit=%v err=%v", hit, err)
	}
	if _, err := c.Begin("again"); !errors.Is(err, ErrGenerating) {
		t.Fatalf("concurrent begin err = %v, want ErrGenerating", err)
	}
	if err := c.Complete(Artifact{QuickNotes: []string{"n1"}, KeyTakeaways: []string{"k1"}}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	a, ok := c.Artifact()
	if !ok || a.QuickNotes[0] != "n1" {
		t.Fatalf("artifact = %+v ok=%v", a, ok)
	}
	if err := c.Complete(Artifact{}); !errors.Is(err, ErrNotPending) {
		t.Fatalf("complete while ready err = %v", err)
	}
}

func TestFailureThenRetry(t *testing.T) {
	c := NewCache(nil)
	_, _ = c.Begin("text")
	if err := c.Fail(errors.New("quota exceeded")); err != nil {
		t.Fatalf("fail: %v", err)
	}
	if c.Status() != StatusFailed || c.Failure() != "quota exceeded" {
		t.Fatalf("status = %s error = %q", c.Status(), c.Failure())
	}
	if _, ok := c.Artifact(); ok {
		t.Fatalf("failed cache exposes an artifact")
	}
	if _, err := c.Begin("text"); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if c.Status() != StatusGenerating || c.Failure() != "" {
		t.Fatalf("retry did not clear failure state")
	}
}

func TestBeginRejectsEmptyText(t *testing.T) {
	c := NewCache(nil)
	if _, err := c.Begin("  \n"); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("err = %v, want ErrEmptyText", err)
	}
	if c.Status() != StatusAbsent {
		t.Fatalf("status changed on rejected begin")
	}
}

func TestStoreHitSkipsRequest(t *testing.T) {
	store := NewStore(time.Minute)
	first := NewCache(store)
	_, _ = first.Begin("same text")
	_ = first.Complete(Artifact{QuickNotes: []string{"cached"}, KeyTakeaways: []string{"k"}})

	second := NewCache(store)
	hit, err := second.Begin("same text")
	if err != nil || !hit {
		t.Fatalf("expected store hit, hit=%v err=%v", hit, err)
	}
	if second.Status() != StatusReady {
		t.Fatalf("status = %s, want ready", second.Status())
	}

	if err := second.Invalidate(); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	hit, _ = second.Begin("same text")
	if hit {
		t.Fatalf("expected miss after invalidate")
	}
}

func TestArtifactIsCopied(t *testing.T) {
	c := NewCache(nil)
	_, _ = c.Begin("t")
	notes := []string{"original"}
	_ = c.Complete(Artifact{QuickNotes: notes, KeyTakeaways: []string{"k"}})
	notes[0] = "mutated"
	a, _ := c.Artifact()
	if a.QuickNotes[0] != "original" {
		t.Fatalf("artifact aliases caller slice")
	}
}

func TestExportText(t *testing.T) {
	c := NewCache(nil)
	if _, err := c.ExportText("bio.pdf"); !errors.Is(err, ErrNotReady) {
		t.Fatalf("err = %v, want ErrNotReady", err)
	}
	_, _ = c.Begin("t")
	_ = c.Complete(Artifact{
		QuickNotes:   []string{"Cells are units of life", "DNA stores information"},
		KeyTakeaways: []string{"Structure follows function", "Energy flows"},
	})
	got, err := c.ExportText("bio.pdf")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	want := "Study Summary - bio.pdf\n\n" +
		"QUICK NOTES:\n1. Cells are units of life\n2. DNA stores information\n\n" +
		"KEY TAKEAWAYS:\n1. Structure follows function\n\n2. Energy flows"
	if got != want {
		t.Fatalf("export mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestResetKeepsStore(t *testing.T) {
	store := NewStore(time.Minute)
	c := NewCache(store)
	_, _ = c.Begin("doc")
	_ = c.Complete(Artifact{QuickNotes: []string{"a"}, KeyTakeaways: []string{"b"}})
	c.Reset()
	if c.Status() != StatusAbsent {
		t.Fatalf("status = %s after reset", c.Status())
	}
	if store.Len() != 1 {
		t.Fatalf("store len = %d, want 1", store.Len())
	}
}
