package stream

import (
	"bytes"
	"encoding/json"
	"strings"
)

const dataPrefix = "data:"

// Decoder turns arbitrarily sized byte chunks into frames. Bytes that do not
// yet form a complete line stay in a residual buffer until the next Feed.
type Decoder struct {
	buffer  []byte
	dropped int
}

func (d *Decoder) Feed(chunk []byte) []Frame {
	if len(chunk) == 0 {
		return nil
	}
	d.buffer = append(d.buffer, chunk...)

	var out []Frame
	for {
		idx := bytes.IndexByte(d.buffer, '\n')
		if idx < 0 {
			break
		}
		line := d.buffer[:idx]
		d.buffer = d.buffer[idx+1:]
		if frame, ok := d.consumeLine(line); ok {
			out = append(out, frame)
		}
	}
	if len(d.buffer) == 0 {
		d.buffer = nil
	}
	return out
}

// Flush decodes whatever remains in the residual buffer as a final line.
func (d *Decoder) Flush() []Frame {
	if len(d.buffer) == 0 {
		return nil
	}
	line := d.buffer
	d.buffer = nil
	if frame, ok := d.consumeLine(line); ok {
		return []Frame{frame}
	}
	return nil
}

// Dropped reports how many data lines could not be decoded.
func (d *Decoder) Dropped() int {
	return d.dropped
}

// Pending reports the number of buffered bytes awaiting a newline.
func (d *Decoder) Pending() int {
	return len(d.buffer)
}

func (d *Decoder) consumeLine(line []byte) (Frame, bool) {
	if len(line) > 0 && line[len(line)-1] == '\r' {
		line = line[:len(line)-1]
	}
	if len(line) == 0 {
		return Frame{}, false
	}
	text := string(line)
	if !strings.HasPrefix(text, dataPrefix) {
		return Frame{}, false
	}
	payload := strings.TrimPrefix(text[len(dataPrefix):], " ")

	frame, ok := parseFrame(payload)
	if !ok {
		d.dropped++
	}
	return frame, ok
}

func parseFrame(payload string) (Frame, bool) {
	var wf wireFrame
	if err := json.Unmarshal([]byte(payload), &wf); err != nil {
		return Frame{}, false
	}
	switch wf.Type {
	case "chunk":
		if wf.Content == nil {
			return Frame{}, false
		}
		return Chunk(*wf.Content), true
	case "done":
		return Done(), true
	case "error":
		return Error(wf.Message), true
	default:
		return Frame{}, false
	}
}
