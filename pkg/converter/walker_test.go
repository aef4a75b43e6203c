package converter_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stackvity/utf-converter/internal/testutil"
	"github.com/stackvity/utf-converter/pkg/converter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func walkTree(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, p := range []string{
		"/src/a.txt",
		"/src/B.TXT",
		"/src/c.md",
		"/src/d.go",
		"/src/noext",
		"/src/a.txt.1709290000.bak",
		"/src/sub/e.txt",
		"/src/sub/f.log",
		"/src/vendor/g.txt",
		"/src/.git/HEAD.txt",
		"/src/build/out.txt",
	} {
		testutil.WriteMemFile(t, fs, p, []byte("x"), time.Time{})
	}
	return fs
}

func walkOpts(fs afero.Fs, root string) *converter.Options {
	opts := converter.DefaultOptions()
	opts.RootPath = root
	opts.Fs = fs
	opts.EventHooks = &converter.NoOpHooks{}
	return &opts
}

func collect(t *testing.T, opts *converter.Options) []string {
	t.Helper()
	w, err := converter.NewWalker(opts, testutil.DiscardHandler())
	require.NoError(t, err)
	var got []string
	err = w.Walk(context.Background(), func(task converter.FileTask) error {
		got = append(got, task.RelPath)
		return nil
	})
	require.NoError(t, err)
	return got
}

func TestWalker_ExtensionFilter(t *testing.T) {
	got := collect(t, walkOpts(walkTree(t), "/src"))
	assert.Equal(t, []string{"B.TXT", "a.txt", "build/out.txt", "c.md", "sub/e.txt", "vendor/g.txt"}, got)
}

func TestWalker_ExcludeAlwaysContainsBak(t *testing.T) {
	opts := walkOpts(walkTree(t), "/src")
	opts.Include = []string{"txt", "bak"}
	opts.Exclude = []string{" MD "}
	got := collect(t, opts)
	assert.NotContains(t, got, "a.txt.1709290000.bak")
	assert.Contains(t, got, "a.txt")
}

func TestWalker_ExcludeWins(t *testing.T) {
	opts := walkOpts(walkTree(t), "/src")
	opts.Include = []string{"txt", "md"}
	opts.Exclude = []string{".txt"}
	assert.Equal(t, []string{"c.md"}, collect(t, opts))
}

func TestWalker_IgnorePatterns(t *testing.T) {
	fs := walkTree(t)
	testutil.WriteMemFile(t, fs, "/src/"+converter.IgnoreFileName, []byte("# generated\nbuild/\n\n"), time.Time{})

	opts := walkOpts(fs, "/src")
	opts.IgnorePatterns = []string{"vendor", "B.TXT"}
	got := collect(t, opts)
	assert.Equal(t, []string{"a.txt", "c.md", "sub/e.txt"}, got)
}

func TestWalker_SingleFileRoot(t *testing.T) {
	fs := walkTree(t)
	got := collect(t, walkOpts(fs, "/src/d.go"))
	assert.Equal(t, []string{"d.go"}, got, "a single file bypasses the extension filter")
}

func TestWalker_MissingRoot(t *testing.T) {
	w, err := converter.NewWalker(walkOpts(walkTree(t), "/nope"), testutil.DiscardHandler())
	require.NoError(t, err)
	err = w.Walk(context.Background(), func(converter.FileTask) error { return nil })
	assert.ErrorIs(t, err, converter.ErrRootNotFound)
}

func TestWalker_StopsOnCancel(t *testing.T) {
	w, err := converter.NewWalker(walkOpts(walkTree(t), "/src"), testutil.DiscardHandler())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	var visited int
	err = w.Walk(ctx, func(converter.FileTask) error {
		visited++
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, visited)
}

func TestWalker_CallbackErrorStopsWalk(t *testing.T) {
	w, err := converter.NewWalker(walkOpts(walkTree(t), "/src"), testutil.DiscardHandler())
	require.NoError(t, err)
	stop := errors.New("stop")
	err = w.Walk(context.Background(), func(converter.FileTask) error { return stop })
	assert.ErrorIs(t, err, stop)
}

func TestWalker_DiscoveryHook(t *testing.T) {
	hooks := &testutil.RecordingHooks{}
	opts := walkOpts(walkTree(t), "/src")
	opts.EventHooks = hooks
	got := collect(t, opts)
	assert.Equal(t, got, hooks.Discovered)
}

func TestExtension(t *testing.T) {
	tests := map[string]string{
		"a.txt":          "txt",
		"A.TXT":          "txt",
		"a.txt.123.bak":  "bak",
		"dir/x.Md":       "md",
		"noext":          "",
		".hidden":        "hidden",
		"trailing.txt\n": "txt",
		"a.txt ":         "txt",
	}
	for in, want := range tests {
		assert.Equal(t, want, converter.Extension(in), in)
	}
}
