//go:build unix

package filesystem

import (
	"os"
	"syscall"
)

// Allocated blocks are reported in 512-byte units regardless of the
// filesystem block size.
const blockUnit = 512

// allocatedSize returns the block-aligned on-disk size, falling back to the
// logical size when the stat payload is unavailable.
func allocatedSize(info os.FileInfo) int64 {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return st.Blocks * blockUnit
	}
	return info.Size()
}
