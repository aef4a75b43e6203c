package hooks

import (
	"io"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// maxDescribeWidth bounds the file name shown next to the spinner.
const maxDescribeWidth = 40

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// NewProgressBar returns an open-ended spinner with a running file count, written to w
// (normally os.Stderr). The line is cleared when the bar is closed.
func NewProgressBar(w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Scanning"),
		progressbar.OptionShowCount(),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
}

// shortName trims path to its base name, keeping the tail when it is still too wide.
func shortName(path string) string {
	name := filepath.Base(path)
	if r := []rune(name); len(r) > maxDescribeWidth {
		name = "…" + string(r[len(r)-maxDescribeWidth+1:])
	}
	return name
}
