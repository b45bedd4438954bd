package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("LOG_FILE_PATH", filepath.Join(dir, "app.log"))
	t.Setenv("TRANSCRIPT_LOG_PATH", filepath.Join(dir, "transcript.log"))
	t.Setenv("SESSION_BACKEND", "file")
	t.Setenv("SESSION_FILE_PATH", filepath.Join(dir, "chat_memory.json"))
	return dir
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestReplPersistsConversation(t *testing.T) {
	dir := setupEnv(t)

	out, err := run(t, "I am Sara\n\ntuning\n:quit\n", "repl", "--sender", "term")
	require.NoError(t, err)
	assert.Contains(t, out, "al-atrash> May I know your name?")
	assert.Contains(t, out, "al-atrash> Nice to meet you, Sara! 🎶")
	assert.Contains(t, out, "al-atrash> Here’s how you can tune your Oud 🎶")

	raw, err := os.ReadFile(filepath.Join(dir, "chat_memory.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"user_name": "Sara"`)

	out, err = run(t, "", "sessions", "list")
	require.NoError(t, err)
	assert.Equal(t, "term\tSara\task_tuning_oud\n", out)

	out, err = run(t, "", "sessions", "show", "term")
	require.NoError(t, err)
	assert.Contains(t, out, `"awaiting_string_audio": true`)

	_, err = run(t, "", "sessions", "show", "ghost")
	assert.Error(t, err)
}

func TestReplEndsOnEOF(t *testing.T) {
	setupEnv(t)
	out, err := run(t, "skip", "repl")
	require.NoError(t, err)
	assert.Contains(t, out, "No problem! I'll call you my friend 🎵")
}

func TestSessionsMigrateToSQLite(t *testing.T) {
	dir := setupEnv(t)
	_, err := run(t, "I am Omar\n:quit\n", "repl", "-s", "u1")
	require.NoError(t, err)

	dbPath := filepath.Join(dir, "sessions.db")
	out, err := run(t, "", "sessions", "migrate", "--to", "sqlite", "--to-path", dbPath)
	require.NoError(t, err)
	assert.Equal(t, "migrated 1 sessions from file to sqlite\n", out)

	out, err = run(t, "", "--backend", "sqlite", "--sqlite", dbPath, "sessions", "list")
	require.NoError(t, err)
	assert.Equal(t, "u1\tOmar\t\n", out)
}

func TestSessionsMigrateRejectsSameBackend(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "", "sessions", "migrate", "--to", "file")
	assert.Error(t, err)
}

func TestReadScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.txt")
	require.NoError(t, os.WriteFile(path, []byte("\r\nhello there\r\nbye\n"), 0o644))

	lines, err := readScript(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "hello there", "bye"}, lines)
}
