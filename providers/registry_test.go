package providers

import (
	"context"
	"strings"
	"testing"

	"github.com/rill-labs/rill/core"
)

type stubProvider struct {
	id     string
	apiKey string
}

func (s *stubProvider) ID() string               { return s.id }
func (s *stubProvider) Models() []core.ModelInfo { return nil }
func (s *stubProvider) Supports(core.Feature) bool {
	return false
}
func (s *stubProvider) Chat(context.Context, *core.ChatRequest) (*core.ChatResponse, error) {
	return nil, core.ErrNotSupported
}
func (s *stubProvider) StreamChat(context.Context, *core.ChatRequest) (*core.ChatStream, error) {
	return nil, core.ErrNotSupported
}

func TestRegistryRegisterAndCreate(t *testing.T) {
	Register("stub-a", func(apiKey string) core.Provider {
		return &stubProvider{id: "stub-a", apiKey: apiKey}
	})

	if !IsRegistered("stub-a") {
		t.Fatal("IsRegistered(stub-a) = false")
	}

	p, err := Create("stub-a", "key-123")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	sp, ok := p.(*stubProvider)
	if !ok {
		t.Fatalf("Create() = %T", p)
	}
	if sp.apiKey != "key-123" {
		t.Errorf("apiKey = %q, want key-123", sp.apiKey)
	}
}

func TestRegistryCreateUnknown(t *testing.T) {
	_, err := Create("no-such-provider", "")
	if err == nil {
		t.Fatal("Create(unknown) error = nil")
	}
	if !strings.Contains(err.Error(), "no-such-provider") {
		t.Errorf("error %q does not name the provider", err)
	}
}

func TestRegistryGetUnknown(t *testing.T) {
	if Get("also-missing") != nil {
		t.Error("Get(unknown) != nil")
	}
}

func TestRegistryListSorted(t *testing.T) {
	Register("stub-z", func(string) core.Provider { return &stubProvider{id: "stub-z"} })
	Register("stub-b", func(string) core.Provider { return &stubProvider{id: "stub-b"} })

	names := List()
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("List() not sorted: %v", names)
		}
	}
}

func TestRegistryOverwrite(t *testing.T) {
	Register("stub-dup", func(string) core.Provider { return &stubProvider{id: "v1"} })
	Register("stub-dup", func(string) core.Provider { return &stubProvider{id: "v2"} })

	p, err := Create("stub-dup", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if p.ID() != "v2" {
		t.Errorf("ID() = %q, want v2: later registration must win", p.ID())
	}
}
