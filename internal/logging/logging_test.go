package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "advisor.log")

	logger, err := New(Options{File: path})
	require.NoError(t, err)
	logger.Info("turn settled", zap.String("outcome", "answered"))
	logger.Debug("hidden at info level")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "turn settled", entry["msg"])
	require.Equal(t, "answered", entry["outcome"])
	require.Equal(t, "advisor-chat", entry["app"])
	require.Contains(t, entry, "ts")
}

func TestNew_VerboseEnablesDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "advisor.log")

	logger, err := New(Options{File: path, Verbose: true})
	require.NoError(t, err)
	logger.Debug("request sent")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "request sent")
}

func TestNew_QuietKeepsWarnings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "advisor.log")

	logger, err := New(Options{File: path, Quiet: true})
	require.NoError(t, err)
	logger.Info("query settled")
	logger.Warn("query failed")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(data), "query settled")
	require.Contains(t, string(data), "query failed")
}

func TestOrNop(t *testing.T) {
	require.NotNil(t, OrNop(nil))
	l := zap.NewExample()
	require.Same(t, l, OrNop(l))
}
