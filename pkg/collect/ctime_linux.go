//go:build linux

package collect

import (
	"io/fs"
	"syscall"
	"time"
)

// changeTime extracts the inode change time from the stat result.
func changeTime(info fs.FileInfo) time.Time {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(st.Ctim.Sec, st.Ctim.Nsec)
	}
	return info.ModTime()
}
