package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stackvity/utf-converter/pkg/converter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCommand is a helper function to execute a fresh command tree and capture output
func executeCommand(ctx context.Context, args ...string) (stdout string, stderr string, code int) {
	root := newRootCmd()
	stdoutBuf := new(bytes.Buffer)
	stderrBuf := new(bytes.Buffer)
	root.SetOut(stdoutBuf)
	root.SetErr(stderrBuf)

	code = execute(ctx, root, args)
	return stdoutBuf.String(), stderrBuf.String(), code
}

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, content, 0o644))
}

func decodeReport(t *testing.T, stdout string) converter.Report {
	t.Helper()
	var report converter.Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &report), stdout)
	return report
}

func TestRootCmdHelp(t *testing.T) {
	stdout, stderr, code := executeCommand(context.Background(), "--help")

	require.Equal(t, exitOK, code)
	assert.Empty(t, stderr)
	assert.Contains(t, stdout, "Usage:")
	assert.Contains(t, stdout, "cvt2utf [command] <path>")
	for _, sub := range []string{"convert", "detect", "cleanbak"} {
		assert.Contains(t, stdout, sub)
	}
}

func TestRootCmdHelp_AllFlagsPresent(t *testing.T) {
	root := newRootCmd()
	for _, sub := range append([]*cobra.Command{root}, root.Commands()...) {
		if sub.Name() == "help" || sub.Name() == "completion" {
			continue
		}
		args := []string{sub.Name(), "--help"}
		if sub == root {
			args = []string{"--help"}
		}
		stdout, _, code := executeCommand(context.Background(), args...)
		require.Equal(t, exitOK, code)

		sub.LocalFlags().VisitAll(func(f *pflag.Flag) {
			assert.Contains(t, stdout, "--"+f.Name, "%s help should list --%s", sub.Name(), f.Name)
			if f.Shorthand != "" {
				assert.Contains(t, stdout, "-"+f.Shorthand+",", "%s help should list -%s", sub.Name(), f.Shorthand)
			}
		})
	}
}

func TestRootCmdVersion(t *testing.T) {
	originalVersion, originalCommit, originalDate := version, commit, date
	version, commit, date = "test-1.2.3", "testcommit123", "2024-01-01T10:00:00Z"
	defer func() {
		version, commit, date = originalVersion, originalCommit, originalDate
	}()

	stdout, stderr, code := executeCommand(context.Background(), "--version")

	require.Equal(t, exitOK, code)
	assert.Empty(t, stderr)
	assert.Equal(t, "cvt2utf version test-1.2.3 (commit: testcommit123, built: 2024-01-01T10:00:00Z)\n", stdout)
}

func TestBarePathConverts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bom.txt")
	writeFile(t, path, append([]byte{0xEF, 0xBB, 0xBF}, "héllo"...))

	stdout, _, code := executeCommand(context.Background(), dir, "--output-format", "json")

	require.Equal(t, exitOK, code)
	report := decodeReport(t, stdout)
	assert.Equal(t, converter.CommandConvert, report.Command)
	require.Len(t, report.Converted, 1)
	assert.Equal(t, "utf-8-with-bom", report.Converted[0].From)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "héllo", string(got))
	backups, err := filepath.Glob(path + ".*.bak")
	require.NoError(t, err)
	assert.Len(t, backups, 1)
}

func TestConvertCmd_NoBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.md")
	writeFile(t, path, append([]byte{0xEF, 0xBB, 0xBF}, "héllo"...))

	stdout, _, code := executeCommand(context.Background(), "cvt", "--nobak", "--output-format", "json", dir)

	require.Equal(t, exitOK, code)
	report := decodeReport(t, stdout)
	require.Len(t, report.Converted, 1)
	assert.Empty(t, report.Converted[0].BackupPath)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "héllo", string(got))
	backups, err := filepath.Glob(path + ".*.bak")
	require.NoError(t, err)
	assert.Empty(t, backups)
}

func TestConvertCmd_BOMTargetLeavesBOMFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	content := append([]byte{0xEF, 0xBB, 0xBF}, "héllo"...)
	writeFile(t, path, content)

	stdout, _, code := executeCommand(context.Background(), "convert", "-b", "--output-format", "json", dir)

	require.Equal(t, exitOK, code)
	report := decodeReport(t, stdout)
	assert.Equal(t, "utf-8-with-bom", report.Summary.Target)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, converter.ReasonAlreadyTarget, report.Skipped[0].Reason)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestDetectCmd_DoesNotModify(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bom.txt")
	content := append([]byte{0xEF, 0xBB, 0xBF}, "hi"...)
	writeFile(t, path, content)

	stdout, _, code := executeCommand(context.Background(), "det", "--output-format", "json", dir)

	require.Equal(t, exitOK, code)
	report := decodeReport(t, stdout)
	require.Len(t, report.Detections, 1)
	assert.Equal(t, "utf-8-with-bom", report.Detections[0].Codec)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestCleanBakCmd_DryRun(t *testing.T) {
	dir := t.TempDir()
	bak := filepath.Join(dir, "a.txt.1709290000.bak")
	writeFile(t, bak, []byte("backup"))

	stdout, _, code := executeCommand(context.Background(), "clean", "--dry-run", "--retention", "1h", dir)

	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "Would remove")
	assert.Contains(t, stdout, "a.txt.1709290000.bak")
	assert.FileExists(t, bak)
}

func TestRootCmdErrors(t *testing.T) {
	dir := t.TempDir()

	testCases := []struct {
		name     string
		args     []string
		errorMsg string
	}{
		{
			name:     "Unknown flag",
			args:     []string{"convert", dir, "--unknown-flag"},
			errorMsg: "unknown flag: --unknown-flag",
		},
		{
			name:     "Target and u8bom together",
			args:     []string{"convert", "-t", "utf-8", "-b", dir},
			errorMsg: "none of the others can be",
		},
		{
			name:     "Invalid value type for float flag",
			args:     []string{"detect", "--threshold", "abc", dir},
			errorMsg: "invalid argument \"abc\" for \"--threshold\" flag",
		},
		{
			name:     "Missing path argument",
			args:     []string{"cleanbak"},
			errorMsg: "accepts 1 arg(s), received 0",
		},
		{
			name:     "Root does not exist",
			args:     []string{filepath.Join(dir, "missing")},
			errorMsg: converter.ErrRootNotFound.Error(),
		},
		{
			name:     "Invalid output format",
			args:     []string{"detect", "--output-format", "xml", dir},
			errorMsg: "invalid value 'xml' for key 'outputFormat'",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, stderr, code := executeCommand(context.Background(), tc.args...)
			assert.Equal(t, exitError, code)
			assert.Contains(t, stderr, tc.errorMsg)
		})
	}
}

func TestInterruptExitCode(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), []byte("x"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stdout, _, code := executeCommand(ctx, dir)

	assert.Equal(t, exitInterrupted, code)
	assert.Contains(t, stdout, "INTERRUPTED")
}
