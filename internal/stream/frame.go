package stream

import "fmt"

type FrameKind int

const (
	FrameChunk FrameKind = iota
	FrameDone
	FrameError
)

func (k FrameKind) String() string {
	switch k {
	case FrameChunk:
		return "chunk"
	case FrameDone:
		return "done"
	case FrameError:
		return "error"
	default:
		return fmt.Sprintf("FrameKind(%d)", int(k))
	}
}

// Frame is one decoded unit of the streamed chat protocol.
type Frame struct {
	Kind    FrameKind
	Content string
	Message string
	// Implicit marks a Done frame synthesized because the body ended
	// without a terminal frame.
	Implicit bool
}

func Chunk(content string) Frame { return Frame{Kind: FrameChunk, Content: content} }

func Done() Frame { return Frame{Kind: FrameDone} }

func Error(message string) Frame { return Frame{Kind: FrameError, Message: message} }

func (f Frame) Terminal() bool {
	return f.Kind == FrameDone || f.Kind == FrameError
}

// wireFrame is the JSON record carried after the data prefix.
type wireFrame struct {
	Type    string  `json:"type"`
	Content *string `json:"content,omitempty"`
	Message string  `json:"message,omitempty"`
}
