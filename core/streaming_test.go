package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

// feedStream builds a ChatStream and plays the given script into it from
// a goroutine: each chunk, then optionally an error or a final response.
func feedStream(chunks []ChatChunk, streamErr error, final *ChatResponse) *ChatStream {
	chunkCh := make(chan ChatChunk)
	errCh := make(chan error, 1)
	finalCh := make(chan *ChatResponse, 1)

	go func() {
		defer close(chunkCh)
		defer close(errCh)
		defer close(finalCh)

		for _, c := range chunks {
			chunkCh <- c
		}
		if streamErr != nil {
			errCh <- streamErr
			return
		}
		if final != nil {
			finalCh <- final
		}
	}()

	return &ChatStream{Ch: chunkCh, Err: errCh, Final: finalCh}
}

func TestDrainStreamSuccess(t *testing.T) {
	final := &ChatResponse{
		Model:  "gpt-4o",
		Output: "hello world",
		Usage:  TokenUsage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5},
	}
	s := feedStream([]ChatChunk{{Delta: "hello "}, {Delta: "world"}}, nil, final)

	resp, err := DrainStream(context.Background(), s)
	if err != nil {
		t.Fatalf("DrainStream() error = %v", err)
	}
	if resp.Output != "hello world" {
		t.Errorf("Output = %q, want %q", resp.Output, "hello world")
	}
	if resp.Usage.TotalTokens != 5 {
		t.Errorf("TotalTokens = %d, want 5", resp.Usage.TotalTokens)
	}
}

func TestDrainStreamFillsOutputFromDeltas(t *testing.T) {
	// A final response without assembled text gets the accumulated deltas.
	s := feedStream(
		[]ChatChunk{{Delta: "a"}, {Delta: "b"}, {Delta: "c"}},
		nil,
		&ChatResponse{Usage: TokenUsage{TotalTokens: 3}},
	)

	resp, err := DrainStream(context.Background(), s)
	if err != nil {
		t.Fatalf("DrainStream() error = %v", err)
	}
	if resp.Output != "abc" {
		t.Errorf("Output = %q, want %q", resp.Output, "abc")
	}
}

func TestDrainStreamNoFinalResponse(t *testing.T) {
	s := feedStream([]ChatChunk{{Delta: "partial "}, {Delta: "text"}}, nil, nil)

	resp, err := DrainStream(context.Background(), s)
	if err != nil {
		t.Fatalf("DrainStream() error = %v", err)
	}
	if resp.Output != "partial text" {
		t.Errorf("Output = %q, want %q", resp.Output, "partial text")
	}
}

func TestDrainStreamErrorDiscardsPartialOutput(t *testing.T) {
	cause := errors.New("connection reset")
	s := feedStream([]ChatChunk{{Delta: "partial"}}, cause, nil)

	resp, err := DrainStream(context.Background(), s)
	if !errors.Is(err, cause) {
		t.Fatalf("DrainStream() error = %v, want %v", err, cause)
	}
	if resp != nil {
		t.Errorf("resp = %+v, want nil: partial output must be discarded", resp)
	}
}

func TestDrainStreamContextCancel(t *testing.T) {
	// A stream that never produces anything must not block past ctx.
	chunkCh := make(chan ChatChunk)
	errCh := make(chan error)
	finalCh := make(chan *ChatResponse)
	s := &ChatStream{Ch: chunkCh, Err: errCh, Final: finalCh}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	var drainErr error
	go func() {
		_, drainErr = DrainStream(ctx, s)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("DrainStream did not return after cancellation")
	}
	if !errors.Is(drainErr, context.Canceled) {
		t.Errorf("DrainStream() error = %v, want context.Canceled", drainErr)
	}
}

func TestDrainStreamNil(t *testing.T) {
	if _, err := DrainStream(context.Background(), nil); !errors.Is(err, ErrBadRequest) {
		t.Errorf("DrainStream(nil) error = %v, want ErrBadRequest", err)
	}
}
