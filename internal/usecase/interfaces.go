package usecase

import "context"

// Dependencies represents all external dependencies needed by use cases
type Dependencies struct {
	FileSystem   FileSystemPort
	Lock         LockPort
	Config       ConfigPort
	Process      ProcessPort
	Notification NotificationPort
}

// Ports define the interfaces that use cases need (hexagonal architecture)

// FileSystemPort defines filesystem operations needed by use cases
type FileSystemPort interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFile(ctx context.Context, path string, data []byte, perm int) error
	CreateDir(ctx context.Context, path string, perm int) error
	Remove(ctx context.Context, path string) error
	RemoveAll(ctx context.Context, path string) error
	Stat(ctx context.Context, path string) (FileInfo, error)

	Walk(ctx context.Context, root string, walkFn WalkFunc) error
	ReadDir(ctx context.Context, path string) ([]DirEntry, error)

	Join(elements ...string) string
	Base(path string) string
	Ext(path string) string

	IsNotExist(err error) bool
	IsExist(err error) bool
}

// LockPort defines exclusive lock-marker operations needed by use cases.
// Acquire must fail when the marker already exists; there is no silent
// overwrite and no stale-lock takeover.
type LockPort interface {
	Acquire(ctx context.Context, path string, info LockInfo) error
	Release(ctx context.Context, path string) error
	Holder(ctx context.Context, path string) (bool, LockInfo, error)
}

// ConfigPort defines configuration operations needed by use cases.
// Service-level config is TOML; per-repository config is JSON.
type ConfigPort interface {
	Load(ctx context.Context, path string) (ServiceConfig, error)
	Save(ctx context.Context, path string, cfg ServiceConfig) error
	LoadRepoConfig(ctx context.Context, path string) (RepoConfig, error)
	SaveRepoConfig(ctx context.Context, path string, cfg RepoConfig) error
}

// ProcessPort defines process operations needed by use cases
type ProcessPort interface {
	GetPID() int
	IsProcessRunning(ctx context.Context, pid int) bool
}

// NotificationPort defines desktop notification operations needed by use cases
type NotificationPort interface {
	// Send sends a desktop notification. sound can be empty.
	Send(ctx context.Context, title, message, sound string) error
}
