// Package summary tracks the summary artifact of the active document.
package summary

import (
	"errors"
	"fmt"
	"strings"
)

type Status int

const (
	StatusAbsent Status = iota
	StatusGenerating
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusAbsent:
		return "absent"
	case StatusGenerating:
		return "generating"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

var (
	ErrGenerating = errors.New("summary generation already in progress")
	ErrNotPending = errors.New("no summary generation in progress")
	ErrNotReady   = errors.New("summary is not ready")
	ErrEmptyText  = errors.New("document text is empty")
)

type Artifact struct {
	QuickNotes   []string
	KeyTakeaways []string
}

func (a Artifact) clone() Artifact {
	return Artifact{
		QuickNotes:   append([]string(nil), a.QuickNotes...),
		KeyTakeaways: append([]string(nil), a.KeyTakeaways...),
	}
}

// Cache holds the single summary artifact of one document and its
// generation status. Status moves absent|failed -> generating -> ready|failed.
type Cache struct {
	status   Status
	artifact Artifact
	errMsg   string
	key      string
	store    *Store
}

// NewCache returns an absent cache. A nil store disables reuse across
// documents with identical text.
func NewCache(store *Store) *Cache {
	return &Cache{store: store}
}

func (c *Cache) Status() Status { return c.status }

// Failure is the message retained from the last failed generation.
func (c *Cache) Failure() string { return c.errMsg }

func (c *Cache) Artifact() (Artifact, bool) {
	if c.status != StatusReady {
		return Artifact{}, false
	}
	return c.artifact.clone(), true
}

// Begin starts a generation cycle for text. When a stored artifact exists for
// the same text the cache becomes ready at once and hit is true; the caller
// then skips the request.
func (c *Cache) Begin(text string) (hit bool, err error) {
	if c.status == StatusGenerating {
		return false, ErrGenerating
	}
	if strings.TrimSpace(text) == "" {
		return false, ErrEmptyText
	}
	c.key = Key(text)
	c.errMsg = ""
	if c.store != nil {
		if a, ok := c.store.Get(c.key); ok {
			c.artifact = a
			c.status = StatusReady
			return true, nil
		}
	}
	c.artifact = Artifact{}
	c.status = StatusGenerating
	return false, nil
}

func (c *Cache) Complete(a Artifact) error {
	if c.status != StatusGenerating {
		return ErrNotPending
	}
	c.artifact = a.clone()
	c.status = StatusReady
	if c.store != nil {
		c.store.Put(c.key, a)
	}
	return nil
}

func (c *Cache) Fail(cause error) error {
	if c.status != StatusGenerating {
		return ErrNotPending
	}
	c.artifact = Artifact{}
	c.status = StatusFailed
	c.errMsg = "summary generation failed"
	if cause != nil {
		c.errMsg = cause.Error()
	}
	return nil
}

// Invalidate forgets the artifact for the current document so the next Begin
// requests a fresh one.
func (c *Cache) Invalidate() error {
	if c.status == StatusGenerating {
		return ErrGenerating
	}
	if c.store != nil && c.key != "" {
		c.store.Delete(c.key)
	}
	c.status = StatusAbsent
	c.artifact = Artifact{}
	c.errMsg = ""
	return nil
}

// Reset returns to absent without touching the shared store.
func (c *Cache) Reset() {
	c.status = StatusAbsent
	c.artifact = Artifact{}
	c.errMsg = ""
	c.key = ""
}

func (c *Cache) ExportText(fileName string) (string, error) {
	if c.status != StatusReady {
		return "", ErrNotReady
	}
	return FormatExport(fileName, c.artifact), nil
}

func FormatExport(fileName string, a Artifact) string {
	return fmt.Sprintf("Study Summary - %s\n\nQUICK NOTES:\n%s\n\nKEY TAKEAWAYS:\n%s",
		fileName,
		numbered(a.QuickNotes, "\n"),
		numbered(a.KeyTakeaways, "\n\n"),
	)
}

func numbered(items []string, sep string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("%d. %s", i+1, item)
	}
	return strings.Join(lines, sep)
}
