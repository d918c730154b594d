package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"
)

const defaultReadSize = 4 * 1024

// ReadError reports a transport failure while reading the body.
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string { return fmt.Sprintf("read stream: %v", e.Err) }

func (e *ReadError) Unwrap() error { return e.Err }

// ProtocolError is returned only when a drop threshold is configured and the
// number of undecodable lines exceeds it.
type ProtocolError struct {
	Dropped int
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("stream protocol: %d malformed frame lines dropped", e.Dropped)
}

type Option func(*Reader)

// WithMaxDropped fails the stream once more than n lines were dropped.
// Zero keeps the silent drop policy.
func WithMaxDropped(n int) Option {
	return func(r *Reader) {
		if n > 0 {
			r.maxDropped = n
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(r *Reader) {
		if log != nil {
			r.log = log
		}
	}
}

func WithReadSize(n int) Option {
	return func(r *Reader) {
		if n > 0 {
			r.readSize = n
		}
	}
}

// Reader yields frames from an open response body in decode order. The body
// is closed as soon as a terminal frame is produced, the body ends, a read
// fails, the context passed to Next is cancelled, or Close is called.
type Reader struct {
	body       io.ReadCloser
	dec        Decoder
	pending    []Frame
	finished   bool
	maxDropped int
	readSize   int
	log        *zap.Logger

	releaseOnce sync.Once
	released    chan struct{}
}

func NewReader(body io.ReadCloser, opts ...Option) *Reader {
	r := &Reader{
		body:     body,
		readSize: defaultReadSize,
		log:      zap.NewNop(),
		released: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Next returns the next frame. After a terminal frame or an error it returns
// io.EOF.
func (r *Reader) Next(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil && !r.finished {
		r.finish()
		return Frame{}, err
	}
	for {
		if len(r.pending) > 0 {
			frame := r.pending[0]
			r.pending = r.pending[1:]
			if frame.Terminal() {
				r.finish()
			}
			return frame, nil
		}
		if r.finished {
			return Frame{}, io.EOF
		}
		if err := r.fill(ctx); err != nil {
			r.finish()
			return Frame{}, err
		}
	}
}

func (r *Reader) fill(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, r.release)
	defer stop()

	buf := make([]byte, r.readSize)
	n, err := r.body.Read(buf)
	if n > 0 {
		r.pending = append(r.pending, r.dec.Feed(buf[:n])...)
		if r.maxDropped > 0 && r.dec.Dropped() > r.maxDropped {
			r.pending = nil
			return &ProtocolError{Dropped: r.dec.Dropped()}
		}
	}
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, io.EOF) {
		r.pending = append(r.pending, r.dec.Flush()...)
		if !containsTerminal(r.pending) {
			r.log.Debug("stream ended without terminal frame",
				zap.Int("dropped", r.dec.Dropped()))
			r.pending = append(r.pending, Frame{Kind: FrameDone, Implicit: true})
		}
		return nil
	}
	return &ReadError{Err: err}
}

func (r *Reader) finish() {
	r.finished = true
	r.pending = nil
	r.release()
	if dropped := r.dec.Dropped(); dropped > 0 {
		r.log.Debug("dropped malformed frame lines", zap.Int("dropped", dropped))
	}
}

func (r *Reader) release() {
	r.releaseOnce.Do(func() {
		_ = r.body.Close()
		close(r.released)
	})
}

// Close releases the underlying body. It is safe to call more than once.
func (r *Reader) Close() error {
	r.finished = true
	r.pending = nil
	r.release()
	return nil
}

// Released is closed once the underlying body has been closed.
func (r *Reader) Released() <-chan struct{} {
	return r.released
}

// Dropped reports the number of undecodable lines seen so far.
func (r *Reader) Dropped() int {
	return r.dec.Dropped()
}

// Consume drives r to completion, calling onChunk for every chunk before the
// next read. It returns the assembled text. An error frame is returned as a
// *RemoteError; the reader is always released.
func Consume(ctx context.Context, r *Reader, onChunk func(string)) (string, error) {
	defer r.Close()

	var b strings.Builder
	for {
		frame, err := r.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return b.String(), nil
			}
			return b.String(), err
		}
		switch frame.Kind {
		case FrameChunk:
			b.WriteString(frame.Content)
			if onChunk != nil {
				onChunk(frame.Content)
			}
		case FrameDone:
			return b.String(), nil
		case FrameError:
			return b.String(), &RemoteError{Message: frame.Message}
		}
	}
}

// RemoteError carries the message of an error frame sent by the service.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return "stream error"
	}
	return "stream error: " + e.Message
}

func containsTerminal(frames []Frame) bool {
	for _, f := range frames {
		if f.Terminal() {
			return true
		}
	}
	return false
}
