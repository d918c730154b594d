// Package export writes study artifacts to plain-text files.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	KindSummary = "summary"
	KindQuiz    = "quiz"
)

// FileName derives the export file name from the document name, e.g.
// "biology.pdf" -> "biology_quiz.txt". Only the first ".pdf" is removed,
// wherever it occurs.
func FileName(documentName string, kind string) string {
	base := strings.Replace(filepath.Base(documentName), ".pdf", "", 1)
	if base == "" || base == "." {
		base = "document"
	}
	return fmt.Sprintf("%s_%s.txt", base, kind)
}

// Write stores content as dir/name, replacing any existing file atomically.
// It returns the written path.
func Write(dir string, name string, content string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", errors.New("export file name is empty")
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := atomicWriteFile(path, []byte(content), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	// The temp file lives next to the target so the rename stays atomic.
	tmp, err := os.CreateTemp(dir, tmpPattern(filepath.Base(path)))
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanupTmp := true

	// Leave no temp file behind when any step fails.
	defer func() {
		_ = tmp.Close()
		if cleanupTmp {
			_ = os.Remove(tmpName)
		}
	}()

	if err := tmp.Chmod(perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("fsync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp file into place: %w", err)
	}
	cleanupTmp = false

	// A rename is only durable on POSIX once the directory is synced.
	// Windows cannot sync directories this way.
	if runtime.GOOS != "windows" {
		if err := fsyncDir(dir); err != nil {
			return fmt.Errorf("fsync export directory: %w", err)
		}
	}
	return nil
}

func fsyncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}

func tmpPattern(base string) string {
	// CreateTemp replaces the trailing *.
	return fmt.Sprintf(".%s.*", base)
}
