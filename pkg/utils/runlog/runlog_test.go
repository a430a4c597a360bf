package runlog_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/funkpd/autolocal/pkg/utils/runlog"
)

func TestOpenCreatesRunScopedLogFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	logger, err := runlog.OpenWithRunID(dir, "cafe0001")
	require.NoError(t, err)

	logger.Infof("hello from the run")
	require.NoError(t, logger.Close())

	content, err := os.ReadFile(filepath.Join(dir, "autolocal-cafe0001.log"))
	require.NoError(t, err)
	require.Contains(t, string(content), "hello from the run")
	require.Contains(t, string(content), "run_id=cafe0001")
}

func TestCommandLogsArgvAndExit(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	logger, err := runlog.OpenWithRunID(dir, "cafe0002")
	require.NoError(t, err)

	logger.Command([]string{"wp", "core", "install"}, 1, 2*time.Second, "", "boom")
	require.NoError(t, logger.Close())

	content, err := os.ReadFile(filepath.Join(dir, "autolocal-cafe0002.log"))
	require.NoError(t, err)
	require.Contains(t, string(content), "core install")
	require.Contains(t, string(content), "exit=1")
	require.Contains(t, string(content), "boom")
}

func TestCommandTruncatesLongOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	logger, err := runlog.OpenWithRunID(dir, "cafe0003")
	require.NoError(t, err)

	logger.Command([]string{"wp", "post", "list"}, 0, time.Second, strings.Repeat("x", 5000), "")
	require.NoError(t, logger.Close())

	content, err := os.ReadFile(filepath.Join(dir, "autolocal-cafe0003.log"))
	require.NoError(t, err)
	require.Contains(t, string(content), "(truncated)")
	require.Less(t, len(content), 4000)
}

func TestActivityAppendsTimestampedLines(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	logger, err := runlog.OpenWithRunID(dir, "cafe0004")
	require.NoError(t, err)

	logger.Activity("seeded domain=%s page=%d", "demo.local", 7)
	logger.Activity("seeded domain=%s page=%d", "demo.local", 8)
	require.NoError(t, logger.Close())

	content, err := os.ReadFile(filepath.Join(dir, "activity.log"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], "seeded domain=demo.local page=7")

	_, err = time.Parse(time.RFC3339, strings.Fields(lines[0])[0])
	require.NoError(t, err)
}

func TestOpenGeneratesRunID(t *testing.T) {
	t.Parallel()

	logger, err := runlog.Open(t.TempDir())
	require.NoError(t, err)

	require.Len(t, logger.RunID(), 8)
	require.NoError(t, logger.Close())
}
