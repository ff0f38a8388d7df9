package filesystem

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/arumata/vaultkeep/internal/usecase"
)

// Adapter implements FileSystemPort using standard os and filepath packages
type Adapter struct {
	logger *slog.Logger
}

// New creates a new filesystem adapter.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		panic("filesystem adapter requires logger")
	}
	return &Adapter{logger: logger}
}

// ReadFile reads file content
func (a *Adapter) ReadFile(ctx context.Context, path string) ([]byte, error) {
	return os.ReadFile(path) // #nosec G304 - paths are controlled by usecase
}

// WriteFile writes content to file
func (a *Adapter) WriteFile(ctx context.Context, path string, data []byte, perm int) error {
	if perm < 0 || perm > 0o777 {
		perm = 0o644 // Default safe permissions
	}
	// #nosec G115 - perm is validated to be within safe range
	return os.WriteFile(path, data, fs.FileMode(perm))
}

// CreateDir creates directory with permissions
func (a *Adapter) CreateDir(ctx context.Context, path string, perm int) error {
	if perm < 0 || perm > 0o777 {
		perm = 0o755 // Default safe permissions
	}
	// #nosec G115 - perm is validated to be within safe range
	return os.MkdirAll(path, fs.FileMode(perm))
}

// Remove removes a single file or empty directory
func (a *Adapter) Remove(ctx context.Context, path string) error {
	return os.Remove(path)
}

// RemoveAll removes directory and all contents
func (a *Adapter) RemoveAll(ctx context.Context, path string) error {
	return os.RemoveAll(path)
}

// Stat returns file info
func (a *Adapter) Stat(ctx context.Context, path string) (usecase.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return &fileInfoWrapper{info}, nil
}

// Walk traverses directory tree
func (a *Adapter) Walk(ctx context.Context, root string, walkFn usecase.WalkFunc) error {
	return filepath.Walk(root, func(path string, info fs.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		var fileInfo usecase.FileInfo
		if info != nil {
			fileInfo = &fileInfoWrapper{info}
		}
		return walkFn(path, fileInfo, err)
	})
}

// ReadDir lists directory entries
func (a *Adapter) ReadDir(ctx context.Context, path string) ([]usecase.DirEntry, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	result := make([]usecase.DirEntry, 0, len(entries))
	for _, entry := range entries {
		result = append(result, &dirEntryWrapper{entry})
	}
	return result, nil
}

// Join joins path elements
func (a *Adapter) Join(elements ...string) string {
	return filepath.Join(elements...)
}

// Base returns the last element of path
func (a *Adapter) Base(path string) string {
	return filepath.Base(path)
}

// Ext returns the file extension of path
func (a *Adapter) Ext(path string) string {
	return filepath.Ext(path)
}

// IsNotExist checks if error indicates file does not exist.
// Also covers syscall.ENOTDIR (path component is not a directory).
func (a *Adapter) IsNotExist(err error) bool {
	return os.IsNotExist(err) || errors.Is(err, syscall.ENOTDIR)
}

// IsExist checks if error indicates file already exists
func (a *Adapter) IsExist(err error) bool {
	return os.IsExist(err)
}

// fileInfoWrapper adapts os.FileInfo to usecase.FileInfo
type fileInfoWrapper struct {
	info os.FileInfo
}

func (f *fileInfoWrapper) Name() string       { return f.info.Name() }
func (f *fileInfoWrapper) Size() int64        { return f.info.Size() }
func (f *fileInfoWrapper) ModTime() time.Time { return f.info.ModTime() }
func (f *fileInfoWrapper) IsDir() bool        { return f.info.IsDir() }
func (f *fileInfoWrapper) IsRegular() bool    { return f.info.Mode().IsRegular() }

// AllocatedSize returns the on-disk size of the file.
func (f *fileInfoWrapper) AllocatedSize() int64 {
	return allocatedSize(f.info)
}

// dirEntryWrapper adapts os.DirEntry to usecase.DirEntry
type dirEntryWrapper struct {
	entry os.DirEntry
}

func (d *dirEntryWrapper) Name() string { return d.entry.Name() }
func (d *dirEntryWrapper) IsDir() bool  { return d.entry.IsDir() }
