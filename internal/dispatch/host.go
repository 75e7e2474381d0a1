package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/ironsheep/caption-art/internal/adapter"
)

// ErrBlocked is returned by a Host when policy forbids the action. Blocked
// actions are not retried.
var ErrBlocked = errors.New("blocked by host policy")

// ErrUnknownHandle is returned for a handle that was never acquired or has
// been released.
var ErrUnknownHandle = errors.New("unknown download handle")

// Host is the environment's file-save affordance.
//
//go:generate mockgen -source=host.go -destination=../mocks/host.go -package=mocks -mock_names=Host=MockHost
type Host interface {
	// Acquire registers the payload and returns a transient handle for it.
	Acquire(data []byte, mimeType string) (string, error)

	// Save stores the payload under filename and returns where it went.
	Save(ctx context.Context, handle, filename string) (string, error)

	// OpenViewer exposes the payload in a separate viewing location.
	OpenViewer(ctx context.Context, handle, filename string) (string, error)

	// Release drops the handle.
	Release(handle string)

	// ExistingNames lists names already present at the save location.
	ExistingNames() ([]string, error)
}

// FileHost saves payloads into a directory. The viewer fallback writes into
// the system temp directory.
type FileHost struct {
	fs  adapter.FileSystem
	dir string

	mu      sync.Mutex
	handles map[string][]byte
}

// NewFileHost creates a host saving into dir.
func NewFileHost(fsys adapter.FileSystem, dir string) *FileHost {
	if dir == "" {
		dir = "."
	}
	return &FileHost{
		fs:      fsys,
		dir:     dir,
		handles: make(map[string][]byte),
	}
}

// Dir returns the save directory.
func (h *FileHost) Dir() string {
	return h.dir
}

func (h *FileHost) Acquire(data []byte, mimeType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty %s payload", mimeType)
	}
	handle := "blob:" + uuid.NewString()

	h.mu.Lock()
	h.handles[handle] = data
	h.mu.Unlock()

	return handle, nil
}

func (h *FileHost) Save(ctx context.Context, handle, filename string) (string, error) {
	return h.write(ctx, handle, h.dir, filename)
}

func (h *FileHost) OpenViewer(ctx context.Context, handle, filename string) (string, error) {
	return h.write(ctx, handle, filepath.Join(h.fs.TempDir(), "caption-art"), filename)
}

func (h *FileHost) Release(handle string) {
	h.mu.Lock()
	delete(h.handles, handle)
	h.mu.Unlock()
}

// ExistingNames lists the save directory. A missing directory has no names.
func (h *FileHost) ExistingNames() ([]string, error) {
	names, err := h.fs.ReadDir(h.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return names, err
}

func (h *FileHost) write(ctx context.Context, handle, dir, filename string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	h.mu.Lock()
	data, ok := h.handles[handle]
	h.mu.Unlock()
	if !ok {
		return "", ErrUnknownHandle
	}

	if filepath.Base(filename) != filename {
		return "", fmt.Errorf("%w: filename %q is not a plain name", ErrBlocked, filename)
	}

	if err := h.fs.MkdirAll(dir, 0o755); err != nil {
		return "", classify(err)
	}
	path := filepath.Join(dir, filename)
	if err := h.fs.WriteFile(path, data, 0o644); err != nil {
		return "", classify(err)
	}
	return path, nil
}

// classify maps permission failures to ErrBlocked.
func classify(err error) error {
	if errors.Is(err, os.ErrPermission) {
		return fmt.Errorf("%w: %w", ErrBlocked, err)
	}
	return err
}
