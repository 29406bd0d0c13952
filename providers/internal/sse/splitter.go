// Package sse provides incremental Server-Sent-Events frame splitting.
//
// The splitter consumes transport chunks exactly as they arrive and
// reassembles complete event payloads regardless of where chunk
// boundaries fall: a frame, a line, the data: prefix, or the terminating
// sentinel may all be split across any number of chunks. Feeding a byte
// stream one byte at a time yields the same frames as feeding it whole.
package sse

import (
	"bytes"
	"errors"
	"strings"
)

// ErrTruncated is returned by Close when the stream ended while a frame
// was still being assembled (an unterminated data line or a frame with
// no trailing blank line).
var ErrTruncated = errors.New("sse: stream truncated mid-frame")

// dataField is the only SSE field the splitter extracts. Other fields
// (event, id, retry) and comment lines are ignored.
const dataField = "data"

// Event is one complete frame produced by the splitter.
type Event struct {
	// Data is the frame payload: all data lines of the frame joined by
	// newline, per SSE semantics. Empty for Done events.
	Data string

	// Done is true when the frame payload matched the configured
	// sentinel. No events follow a Done event.
	Done bool
}

// Splitter reassembles SSE frames from arbitrarily chunked input.
// A Splitter is single-use and not safe for concurrent use; each stream
// owns its own instance.
type Splitter struct {
	sentinel string

	buf   []byte   // unconsumed bytes of a partial line
	lines []string // data lines of the frame currently being assembled
	done  bool
}

// NewSplitter creates a Splitter. sentinel, when non-empty, is the
// literal payload (e.g. "[DONE]") that terminates the stream; it is
// matched against complete frame payloads only, so a sentinel split
// across chunks is still recognized.
func NewSplitter(sentinel string) *Splitter {
	return &Splitter{sentinel: sentinel}
}

// Write feeds one transport chunk to the splitter and returns the events
// completed by it, in wire order. Bytes after a Done event are discarded.
func (s *Splitter) Write(p []byte) []Event {
	if s.done {
		return nil
	}

	s.buf = append(s.buf, p...)

	var events []Event
	for {
		i := bytes.IndexByte(s.buf, '\n')
		if i < 0 {
			break
		}
		line := string(bytes.TrimSuffix(s.buf[:i], []byte("\r")))
		s.buf = s.buf[i+1:]

		if ev, ok := s.processLine(line); ok {
			events = append(events, ev)
			if ev.Done {
				s.done = true
				s.buf = nil
				return events
			}
		}
	}

	// Copy the leftover so the consumed prefix can be collected.
	s.buf = append([]byte(nil), s.buf...)
	return events
}

// processLine handles one complete line and reports a finished frame.
func (s *Splitter) processLine(line string) (Event, bool) {
	if line == "" {
		// Blank line terminates the current frame. Blank lines between
		// frames (keep-alives) produce nothing.
		if s.lines == nil {
			return Event{}, false
		}
		payload := strings.Join(s.lines, "\n")
		s.lines = nil
		if s.sentinel != "" && payload == s.sentinel {
			return Event{Done: true}, true
		}
		return Event{Data: payload}, true
	}

	if line[0] == ':' {
		// Comment line, used for keep-alives.
		return Event{}, false
	}

	field, value := splitField(line)
	if field != dataField {
		return Event{}, false
	}
	if s.lines == nil {
		s.lines = []string{}
	}
	s.lines = append(s.lines, value)
	return Event{}, false
}

// splitField splits "field: value" at the first colon, stripping the
// single optional space after it. A line without a colon is a field with
// an empty value.
func splitField(line string) (field, value string) {
	i := strings.IndexByte(line, ':')
	if i < 0 {
		return line, ""
	}
	field = line[:i]
	value = line[i+1:]
	value = strings.TrimPrefix(value, " ")
	return field, value
}

// Close signals end-of-stream. It returns ErrTruncated when the stream
// ended with a partial line or an unterminated frame still buffered;
// silently dropping a half-received frame would hide data loss.
func (s *Splitter) Close() error {
	if s.done {
		return nil
	}
	if len(s.buf) > 0 || s.lines != nil {
		return ErrTruncated
	}
	return nil
}
