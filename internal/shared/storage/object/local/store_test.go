package local

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveOpenDelete(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)
	ctx := context.Background()

	key, size, mimeType, err := store.Save(ctx, "analyses", "resume.txt", strings.NewReader("Go developer"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if size != int64(len("Go developer")) {
		t.Fatalf("unexpected size %d", size)
	}
	if !strings.HasPrefix(mimeType, "text/plain") {
		t.Fatalf("unexpected mime type %q", mimeType)
	}
	if !strings.HasSuffix(key, "_resume.txt") {
		t.Fatalf("unexpected key %q", key)
	}

	rc, err := store.Open(ctx, key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "Go developer" {
		t.Fatalf("unexpected content %q", data)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, key)); !os.IsNotExist(err) {
		t.Fatalf("expected staged file removed, stat err=%v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty namespace dir to be removed, found %d entries", len(entries))
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("second delete should be a no-op, got %v", err)
	}
}

func TestRejectsTraversal(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	if _, _, _, err := store.Save(ctx, "analyses", "../escape.txt", strings.NewReader("x")); err == nil {
		t.Fatalf("expected save to reject traversal")
	}
	if _, err := store.Open(ctx, "../outside"); err == nil {
		t.Fatalf("expected open to reject traversal")
	}
	if err := store.Delete(ctx, "/abs/path"); err == nil {
		t.Fatalf("expected delete to reject absolute key")
	}
}

func TestSaveHonoursCancelledContext(t *testing.T) {
	store := New(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, _, err := store.Save(ctx, "analyses", "resume.txt", strings.NewReader("x")); err == nil {
		t.Fatalf("expected context error")
	}
}
