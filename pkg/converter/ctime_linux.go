//go:build linux

package converter

import (
	"os"
	"syscall"
	"time"
)

// creationTime returns the inode change time, which is what Linux offers in place of
// a birth time through stat(2).
func creationTime(info os.FileInfo) time.Time {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.ModTime()
	}
	return time.Unix(int64(st.Ctim.Sec), int64(st.Ctim.Nsec))
}
