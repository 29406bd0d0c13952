package keystore

import (
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"
)

func newTestKeystore(t *testing.T) (*FileKeystore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "keys.enc")
	ks, err := NewFileKeystore(path)
	if err != nil {
		t.Fatalf("NewFileKeystore() error = %v", err)
	}
	return ks, path
}

func TestFileKeystoreSetAndGet(t *testing.T) {
	ks, _ := newTestKeystore(t)

	if err := ks.Set("openai", "sk-test-key-12345"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	value, err := ks.Get("openai")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if value != "sk-test-key-12345" {
		t.Errorf("Get() = %q", value)
	}
}

func TestFileKeystoreGetNotFound(t *testing.T) {
	ks, _ := newTestKeystore(t)

	_, err := ks.Get("nonexistent")
	if _, ok := err.(*ErrKeyNotFound); !ok {
		t.Errorf("Get() error type = %T, want *ErrKeyNotFound", err)
	}
}

func TestFileKeystoreDelete(t *testing.T) {
	ks, _ := newTestKeystore(t)

	if err := ks.Set("ollama", "ok-test"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := ks.Delete("ollama"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err := ks.Get("ollama")
	if _, ok := err.(*ErrKeyNotFound); !ok {
		t.Error("Get() should return ErrKeyNotFound after Delete()")
	}
}

func TestFileKeystoreDeleteNotFound(t *testing.T) {
	ks, _ := newTestKeystore(t)

	err := ks.Delete("nonexistent")
	if _, ok := err.(*ErrKeyNotFound); !ok {
		t.Errorf("Delete() error type = %T, want *ErrKeyNotFound", err)
	}
}

func TestFileKeystoreListSorted(t *testing.T) {
	ks, _ := newTestKeystore(t)

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := ks.Set(name, "v"); err != nil {
			t.Fatalf("Set(%q) error = %v", name, err)
		}
	}

	names, err := ks.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if want := []string{"alpha", "mid", "zeta"}; !reflect.DeepEqual(names, want) {
		t.Errorf("List() = %v, want %v", names, want)
	}
}

func TestFileKeystorePersistsAcrossInstances(t *testing.T) {
	ks, path := newTestKeystore(t)

	if err := ks.Set("openai", "sk-persisted"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	ks2, err := NewFileKeystore(path)
	if err != nil {
		t.Fatalf("NewFileKeystore() error = %v", err)
	}
	value, err := ks2.Get("openai")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if value != "sk-persisted" {
		t.Errorf("Get() = %q", value)
	}
}

func TestFileKeystoreEncryptedOnDisk(t *testing.T) {
	ks, path := newTestKeystore(t)

	if err := ks.Set("openai", "sk-plaintext-check"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw[:len(magicHeader)]) != magicHeader {
		t.Error("file missing magic header")
	}
	if strings.Contains(string(raw), "sk-plaintext-check") {
		t.Error("key value stored in plaintext")
	}
}

func TestFileKeystoreTamperDetection(t *testing.T) {
	ks, path := newTestKeystore(t)

	if err := ks.Set("openai", "sk-tamper"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	raw[len(raw)-1] ^= 0xff
	if err := os.WriteFile(path, raw, 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := ks.Get("openai"); err == nil {
		t.Error("Get() error = nil on tampered file")
	}
}

func TestFileKeystoreFilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes not enforced on windows")
	}
	ks, path := newTestKeystore(t)

	if err := ks.Set("openai", "sk-perm"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file mode = %o, want 0600", perm)
	}
}

type staticKeySource []byte

func (s staticKeySource) GetMasterKey() ([]byte, error) { return s, nil }

func TestFileKeystoreWithSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.enc")

	ks, err := NewFileKeystoreWithSource(path, staticKeySource("master-key-material"))
	if err != nil {
		t.Fatalf("NewFileKeystoreWithSource() error = %v", err)
	}
	if err := ks.Set("openai", "sk-sourced"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// The wrong master key must not decrypt the file.
	wrong, err := NewFileKeystoreWithSource(path, staticKeySource("different-material"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := wrong.Get("openai"); err == nil {
		t.Error("Get() succeeded with wrong master key")
	}
}
