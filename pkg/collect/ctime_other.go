//go:build !linux

package collect

import (
	"io/fs"
	"time"
)

// changeTime falls back to the modification time on platforms where the
// change time is not exposed through a portable stat structure.
func changeTime(info fs.FileInfo) time.Time {
	return info.ModTime()
}
