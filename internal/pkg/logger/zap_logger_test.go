package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	lines := []string{
		`{"level":"INFO","timestamp":"t1","message":"first","module":"CHAT"}`,
		`not json`,
		`{"level":"ERROR","timestamp":"t2","message":"second","module":"STORE"}`,
		`{"level":"INFO","timestamp":"t3","message":"third","module":"CHAT","details":{"sender":"a"}}`,
	}
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))

	all, err := ReadEntries(path, "", 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "third", all[0].Message)
	assert.Equal(t, "a", all[0].Details["sender"])
	assert.NotEmpty(t, all[0].Id)

	info, err := ReadEntries(path, "INFO", 1, 1)
	require.NoError(t, err)
	require.Len(t, info, 1)
	assert.Equal(t, "first", info[0].Message)

	none, err := ReadEntries(path, "", 10, 5)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestReadEntriesMissingFile(t *testing.T) {
	got, err := ReadEntries(filepath.Join(t.TempDir(), "nope.log"), "", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestIsolatedLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transcript.log")
	l := NewIsolatedLogger(path)

	l.Info(ModuleChat, "turn", map[string]interface{}{"sender": "s1"})
	l.Debug(ModuleChat, "dropped below info", nil)
	_ = l.Sync()

	entries, err := l.Entries("", 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "turn", entries[0].Message)
	assert.Equal(t, ModuleChat, entries[0].Module)
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Error(ModuleApp, "ignored", map[string]interface{}{"error": "x"})

	entries, err := l.Entries("", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
