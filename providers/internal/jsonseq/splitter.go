// Package jsonseq provides incremental splitting of concatenated JSON
// values delivered without any framing.
//
// Some endpoints stream back-to-back JSON objects with no delimiter at
// all; the only way to find value boundaries is to track brace/bracket
// nesting depth. The splitter does exactly that, honoring string
// literals and escape sequences so braces inside string values never
// perturb the count. It is chunk-boundary invariant: values split across
// any number of transport chunks, including mid-escape, reassemble
// identically.
//
// Newline-delimited JSON is a degenerate case (the newlines are
// inter-value whitespace), so the splitter handles NDJSON endpoints too.
package jsonseq

import (
	"errors"
	"fmt"
)

// ErrTruncated is returned by Close when the stream ended inside an
// unterminated JSON value.
var ErrTruncated = errors.New("jsonseq: stream truncated mid-value")

// ErrInvalidByte is returned when a byte between values is neither
// whitespace nor the start of an object or array. The splitter refuses
// to guess at malformed input rather than resynchronize silently.
var ErrInvalidByte = errors.New("jsonseq: unexpected byte between JSON values")

// Splitter extracts complete top-level JSON values from arbitrarily
// chunked input. A Splitter is single-use and not safe for concurrent
// use; each stream owns its own instance.
type Splitter struct {
	buf []byte
	pos int // scan position within buf; bytes before pos are already examined

	depth    int
	inString bool
	escaped  bool
	start    int // offset in buf where the open value began, -1 when none

	consumed int64 // total bytes scanned, for error positions
	failed   bool
}

// NewSplitter creates a Splitter positioned before the first value.
func NewSplitter() *Splitter {
	return &Splitter{start: -1}
}

// Write feeds one transport chunk to the splitter and returns the raw
// text of every value completed by it, in wire order. Frames are exact
// substrings of the input, suitable for handing straight to a JSON
// decoder. After an error the splitter stays failed.
func (s *Splitter) Write(p []byte) ([]string, error) {
	if s.failed {
		return nil, ErrInvalidByte
	}

	s.buf = append(s.buf, p...)

	var frames []string
	for ; s.pos < len(s.buf); s.pos++ {
		c := s.buf[s.pos]
		s.consumed++

		if s.inString {
			switch {
			case s.escaped:
				s.escaped = false
			case c == '\\':
				s.escaped = true
			case c == '"':
				s.inString = false
			}
			continue
		}

		switch c {
		case '"':
			if s.depth == 0 {
				return nil, s.fail(c)
			}
			s.inString = true
		case '{', '[':
			if s.depth == 0 {
				s.start = s.pos
			}
			s.depth++
		case '}', ']':
			if s.depth == 0 {
				return nil, s.fail(c)
			}
			s.depth--
			if s.depth == 0 {
				frames = append(frames, string(s.buf[s.start:s.pos+1]))
				s.start = -1
			}
		case ' ', '\t', '\r', '\n':
			// Whitespace between values.
		default:
			if s.depth == 0 {
				return nil, s.fail(c)
			}
		}
	}

	// Drop everything already emitted; keep only the open value (or
	// nothing) so the buffer never grows past one frame.
	if s.start >= 0 {
		s.buf = append([]byte(nil), s.buf[s.start:]...)
		s.pos -= s.start
		s.start = 0
	} else {
		s.buf = s.buf[:0]
		s.pos = 0
	}

	return frames, nil
}

// Close signals end-of-stream. The transport EOF is the only terminator
// for this framing, so a clean close requires depth zero.
func (s *Splitter) Close() error {
	if s.failed {
		return ErrInvalidByte
	}
	if s.depth > 0 || s.inString || s.start >= 0 {
		return ErrTruncated
	}
	return nil
}

func (s *Splitter) fail(c byte) error {
	s.failed = true
	return fmt.Errorf("%w: %q at offset %d", ErrInvalidByte, c, s.consumed-1)
}
