package hooks

import (
	"bytes"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stackvity/utf-converter/pkg/converter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProgressBar struct {
	mock.Mock
}

// Add mocks the Add method.
func (m *MockProgressBar) Add(num int) error {
	args := m.Called(num)
	return args.Error(0)
}

// Describe mocks the Describe method.
func (m *MockProgressBar) Describe(description string) {
	m.Called(description)
}

// Close mocks the Close method.
func (m *MockProgressBar) Close() error {
	args := m.Called()
	return args.Error(0)
}

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)

func stripANSI(s string) string { return ansi.ReplaceAllString(s, "") }

func bufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestCLIHooks_OnFileDiscovered(t *testing.T) {
	t.Run("Verbose Enabled", func(t *testing.T) {
		logBuf := &bytes.Buffer{}
		hooks := NewCLIHooks(bufferLogger(logBuf), true, nil)
		require.NoError(t, hooks.OnFileDiscovered("docs/a.txt"))
		assert.Contains(t, logBuf.String(), "File discovered")
		assert.Contains(t, logBuf.String(), "path=docs/a.txt")
	})

	t.Run("Quiet", func(t *testing.T) {
		logBuf := &bytes.Buffer{}
		hooks := NewCLIHooks(bufferLogger(logBuf), false, nil)
		require.NoError(t, hooks.OnFileDiscovered("docs/a.txt"))
		assert.Empty(t, logBuf.String())
	})
}

func TestCLIHooks_OnFileStatusUpdate_Verbose(t *testing.T) {
	testCases := []struct {
		status   converter.Status
		message  string
		level    string
		contains string
	}{
		{converter.StatusConverted, "GB18030 -> utf-8", "level=INFO", "message=\"GB18030 -> utf-8\""},
		{converter.StatusSkipped, "already-utf", "level=DEBUG", "message=already-utf"},
		{converter.StatusFailed, "decode error", "level=ERROR", "error=\"decode error\""},
		{converter.StatusRemoved, "", "level=INFO", "status=removed"},
	}
	for _, tc := range testCases {
		t.Run(string(tc.status), func(t *testing.T) {
			logBuf := &bytes.Buffer{}
			mockBar := new(MockProgressBar)
			hooks := NewCLIHooks(bufferLogger(logBuf), true, mockBar)

			require.NoError(t, hooks.OnFileStatusUpdate("a.txt", tc.status, tc.message, 5*time.Millisecond))

			out := logBuf.String()
			assert.Contains(t, out, tc.level)
			assert.Contains(t, out, tc.contains)
			assert.Contains(t, out, "duration=5ms")
			mockBar.AssertNotCalled(t, "Describe", mock.Anything)
			mockBar.AssertNotCalled(t, "Add", mock.Anything)
		})
	}
}

func TestCLIHooks_ProgressMode(t *testing.T) {
	mockBar := new(MockProgressBar)
	mockBar.On("Describe", "a.txt").Return().Twice()
	mockBar.On("Describe", "b.txt").Return().Once()
	mockBar.On("Add", 1).Return(errors.New("ignored")).Twice()
	mockBar.On("Close").Return(nil).Once()

	logBuf := &bytes.Buffer{}
	hooks := NewCLIHooks(bufferLogger(logBuf), false, mockBar)

	require.NoError(t, hooks.OnFileStatusUpdate("docs/a.txt", converter.StatusProcessing, "", 0))
	require.NoError(t, hooks.OnFileStatusUpdate("docs/a.txt", converter.StatusConverted, "", 0))
	require.NoError(t, hooks.OnFileStatusUpdate("b.txt", converter.StatusFailed, "boom", 0))
	require.NoError(t, hooks.OnRunComplete(converter.Report{RunID: "r1", Command: converter.CommandConvert}))

	mockBar.AssertExpectations(t)
	assert.NotContains(t, logBuf.String(), "File status updated")
	assert.Contains(t, logBuf.String(), "runId=r1")
}

func TestCLIHooks_NoProgressNoVerbose(t *testing.T) {
	logBuf := &bytes.Buffer{}
	hooks := NewCLIHooks(bufferLogger(logBuf), false, nil)
	require.NoError(t, hooks.OnFileStatusUpdate("a.txt", converter.StatusFailed, "boom", 0))
	assert.Empty(t, logBuf.String(), "the library logs failures itself")
}

func TestProgressBar_DescribesCurrentFile(t *testing.T) {
	var buf bytes.Buffer
	hooks := NewCLIHooks(bufferLogger(&bytes.Buffer{}), false, NewProgressBar(&buf))

	require.NoError(t, hooks.OnFileStatusUpdate("/x/a.txt", converter.StatusProcessing, "", 0))
	require.NoError(t, hooks.OnFileStatusUpdate("/x/a.txt", converter.StatusConverted, "", 0))
	require.NoError(t, hooks.OnFileStatusUpdate("/x/c.txt", converter.StatusSkipped, "", 0))

	out := stripANSI(buf.String())
	assert.Contains(t, out, "a.txt")
	assert.Contains(t, out, "c.txt")
	assert.NotContains(t, out, "/x/")

	require.NoError(t, hooks.OnRunComplete(converter.Report{}))
}

func TestShortName(t *testing.T) {
	assert.Equal(t, "a.txt", shortName("docs/sub/a.txt"))

	long := shortName(strings.Repeat("n", 100) + ".txt")
	assert.True(t, strings.HasPrefix(long, "…"))
	assert.True(t, strings.HasSuffix(long, ".txt"))
	assert.Len(t, []rune(long), maxDescribeWidth)
}
