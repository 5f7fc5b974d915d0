package compiler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// testModule returns a minimal SPIR-V header followed by tag, so tests can
// tell artifacts apart by their last word.
func testModule(tag uint32) []uint32 {
	return []uint32{spirvMagic, 0x00010300, 0, 1, 0, tag}
}

// fakeBuilder writes testModule(n) for sources whose content is "ok <n>"
// and fails for anything else. It records every call.
type fakeBuilder struct {
	outDir string

	mu    sync.Mutex
	calls []string
	gate  chan struct{} // when non-nil, Build waits for a receive
}

func (b *fakeBuilder) Build(ctx context.Context, src string, _ Target) (string, error) {
	if b.gate != nil {
		select {
		case <-b.gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return "", err
	}
	content := strings.TrimSpace(string(data))

	b.mu.Lock()
	b.calls = append(b.calls, content)
	b.mu.Unlock()

	var tag uint32
	if _, err := fmt.Sscanf(content, "ok %d", &tag); err != nil {
		return "", errors.New("syntax error in scene")
	}
	out := filepath.Join(b.outDir, "scene.spv")
	return out, os.WriteFile(out, WordBytes(testModule(tag)), 0o644)
}

func (b *fakeBuilder) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls)
}

// writeScene atomically replaces path with content and the given mtime, so
// the supervisor never observes the file between write and Chtimes.
func writeScene(t *testing.T, path, content string, mod time.Time) {
	t.Helper()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(tmp, mod, mod); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}
