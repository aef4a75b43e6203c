//go:build !linux && !darwin && !windows

package converter

import (
	"os"
	"time"
)

// creationTime falls back to the modification time where no portable creation
// time is available.
func creationTime(info os.FileInfo) time.Time {
	return info.ModTime()
}
