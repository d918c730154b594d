package session

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jbonatakis/studydesk/internal/genclient"
)

// Document is the uploaded study material. It never changes after creation.
type Document struct {
	ID       string
	Name     string
	ByteSize int64
	RawText  string
}

type Uploader interface {
	UploadDocument(ctx context.Context, filename string, content io.Reader) (genclient.UploadResult, error)
}

var _ Uploader = (*genclient.Client)(nil)

// LoadDocument uploads the file at path for text extraction and returns the
// resulting Document.
func LoadDocument(ctx context.Context, up Uploader, path string) (Document, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Document{}, fmt.Errorf("document path is empty")
	}
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Document{}, fmt.Errorf("stat document: %w", err)
	}
	if info.IsDir() {
		return Document{}, fmt.Errorf("%s is a directory", path)
	}

	name := filepath.Base(path)
	res, err := up.UploadDocument(ctx, name, f)
	if err != nil {
		return Document{}, err
	}
	if strings.TrimSpace(res.Text) == "" {
		return Document{}, &genclient.ValidationError{Op: "upload document", Reason: "no text extracted"}
	}

	return Document{
		ID:       uuid.NewString(),
		Name:     name,
		ByteSize: info.Size(),
		RawText:  res.Text,
	}, nil
}
