//go:build !unix

package filesystem

import "os"

// allocatedSize falls back to the logical size on platforms without a
// block-count stat field.
func allocatedSize(info os.FileInfo) int64 {
	return info.Size()
}
