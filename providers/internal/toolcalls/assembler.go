// Package toolcalls assembles streaming tool-call fragments into
// complete tool calls.
package toolcalls

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/rill-labs/rill/core"
)

// ErrInvalidJSON is returned when assembled tool arguments are not valid JSON.
var ErrInvalidJSON = errors.New("tool args invalid json")

// Config controls assembler behavior.
type Config struct {
	// EmptyArgumentsJSON, when set, substitutes for tool calls that
	// accumulated no argument fragments (some providers send none for
	// zero-argument tools).
	EmptyArgumentsJSON string
}

type assemblingCall struct {
	ID        string
	Name      string
	Arguments strings.Builder
}

// Assembler accumulates fragmented tool calls keyed by stream index and
// emits canonical tool calls once the stream completes. Fragments may
// split argument JSON at arbitrary byte positions; the assembler only
// validates the concatenation at Finalize.
type Assembler struct {
	calls map[int]*assemblingCall
	cfg   Config
}

// NewAssembler creates a tool-call assembler.
func NewAssembler(cfg Config) *Assembler {
	return &Assembler{
		calls: make(map[int]*assemblingCall),
		cfg:   cfg,
	}
}

// AddFragment applies one streaming fragment, creating the call entry on
// first sight of its index. ID and Name stick once seen; Arguments
// accumulate in arrival order.
func (a *Assembler) AddFragment(f core.ToolCallDelta) {
	call, exists := a.calls[f.Index]
	if !exists {
		call = &assemblingCall{}
		a.calls[f.Index] = call
	}

	if f.ID != "" {
		call.ID = f.ID
	}
	if f.Name != "" {
		call.Name = f.Name
	}
	if f.Arguments != "" {
		call.Arguments.WriteString(f.Arguments)
	}
}

// Empty reports whether no fragments were seen.
func (a *Assembler) Empty() bool {
	return len(a.calls) == 0
}

// Finalize validates and returns assembled tool calls in index order.
func (a *Assembler) Finalize() ([]core.ToolCall, error) {
	if len(a.calls) == 0 {
		return nil, nil
	}

	maxIndex := 0
	for idx := range a.calls {
		if idx > maxIndex {
			maxIndex = idx
		}
	}

	result := make([]core.ToolCall, 0, len(a.calls))
	for i := 0; i <= maxIndex; i++ {
		call, exists := a.calls[i]
		if !exists {
			continue
		}

		args := call.Arguments.String()
		if args == "" && a.cfg.EmptyArgumentsJSON != "" {
			args = a.cfg.EmptyArgumentsJSON
		}
		if !json.Valid([]byte(args)) {
			return nil, ErrInvalidJSON
		}

		result = append(result, core.ToolCall{
			ID:        call.ID,
			Name:      call.Name,
			Arguments: json.RawMessage(args),
		})
	}

	return result, nil
}
