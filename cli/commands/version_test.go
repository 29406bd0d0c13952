package commands

import (
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	env := newTestEnv(t, nil)

	if err := env.run("version"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	out := env.stdout.String()
	if !strings.HasPrefix(out, "rill ") {
		t.Errorf("stdout = %q", out)
	}
	if !strings.Contains(out, Version) {
		t.Errorf("stdout missing version %q: %q", Version, out)
	}
}

func TestVersionCommandVerbose(t *testing.T) {
	env := newTestEnv(t, nil)

	if err := env.run("version", "--verbose"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	out := env.stdout.String()
	for _, want := range []string{"commit:", "built:", "go:", "os/arch:"} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout missing %q: %q", want, out)
		}
	}
}
