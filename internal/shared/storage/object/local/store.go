package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"resume-matcher/internal/shared/storage/object"
	"resume-matcher/internal/shared/util"
)

// Store implements ObjectStore using the local filesystem.
type Store struct {
	baseDir string
}

// New creates a new local object store rooted at baseDir.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Save writes the reader to disk under the namespace with a random prefix.
func (s *Store) Save(ctx context.Context, namespace string, fileName string, r io.Reader) (string, int64, string, error) {
	sanitizedName, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", 0, "", fmt.Errorf("sanitize file name: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return "", 0, "", err
	}

	dirKey := util.HashKey(namespace)
	finalName := fmt.Sprintf("%s_%s", uuid.NewString(), sanitizedName)

	dirPath := filepath.Join(s.baseDir, dirKey)
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return "", 0, "", fmt.Errorf("mkdir: %w", err)
	}

	fullPath := filepath.Join(dirPath, finalName)
	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return "", 0, "", fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	var sniff [512]byte
	n, readErr := io.ReadFull(r, sniff[:])
	if readErr != nil && readErr != io.EOF && readErr != io.ErrUnexpectedEOF {
		_ = os.Remove(fullPath)
		return "", 0, "", fmt.Errorf("read sniff: %w", readErr)
	}

	mimeType := http.DetectContentType(sniff[:n])

	size := int64(0)
	if n > 0 {
		if _, err := f.Write(sniff[:n]); err != nil {
			_ = os.Remove(fullPath)
			return "", 0, "", fmt.Errorf("write sniff: %w", err)
		}
		size += int64(n)
	}

	written, err := io.Copy(f, r)
	if err != nil {
		_ = os.Remove(fullPath)
		return "", 0, "", fmt.Errorf("write body: %w", err)
	}
	size += written

	relPath := filepath.Join(dirKey, finalName)
	return relPath, size, mimeType, nil
}

// Open opens a stored object for reading.
func (s *Store) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fullPath, err := s.resolve(storageKey)
	if err != nil {
		return nil, err
	}
	return os.Open(fullPath)
}

// Delete removes a stored object and its namespace directory once empty.
func (s *Store) Delete(ctx context.Context, storageKey string) error {
	fullPath, err := s.resolve(storageKey)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", storageKey, err)
	}
	// Fails harmlessly while other requests still stage files in the same namespace.
	_ = os.Remove(filepath.Dir(fullPath))
	return nil
}

func (s *Store) resolve(storageKey string) (string, error) {
	clean := filepath.Clean(storageKey)
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid storage key")
	}
	return filepath.Join(s.baseDir, clean), nil
}

var _ object.ObjectStore = (*Store)(nil)
