package implementation

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heystack-be/internal/repository/contract"
	"heystack-be/pkg/store"
)

func sampleSessions() map[string]*store.Session {
	return map[string]*store.Session{
		"u1": store.NewSession(),
		"u2": {
			UserName:            "Sara",
			LearningTopic:       store.LearningPlayOud,
			LastTopic:           store.TopicTuning,
			LastIntent:          "ask_tuning_oud",
			AwaitingStringAudio: true,
			VideoWatched:        true,
		},
	}
}

func TestFileBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "chat_memory.json")
	b := NewFileSessionBackend(path)

	got, err := b.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got, "missing file is an empty store")

	require.NoError(t, b.Save(ctx, sampleSessions()))
	got, err = b.Load(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(sampleSessions(), got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files are cleaned up")
}

func TestFileBackendLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat_memory.json")
	require.NoError(t, NewFileSessionBackend(path).Save(context.Background(), sampleSessions()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  \"u1\": {\n    \"awaiting_name\": true\n  }")

	var doc map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "Sara", doc["u2"]["user_name"])
	assert.Equal(t, false, doc["u2"]["awaiting_name"])
	assert.Equal(t, "play_oud", doc["u2"]["learning_topic"])
}

func TestFileBackendCorrupt(t *testing.T) {
	for name, body := range map[string]string{
		"empty":   "",
		"garbage": "{\"u1\": ",
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "chat_memory.json")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

			_, err := NewFileSessionBackend(path).Load(context.Background())
			assert.ErrorIs(t, err, contract.ErrCorruptState)
		})
	}
}

func TestFileBackendNullSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat_memory.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"u1": null}`), 0o644))

	got, err := NewFileSessionBackend(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &store.Session{}, got["u1"])
}

func TestSQLiteBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	b, err := NewSQLiteSessionBackend(filepath.Join(t.TempDir(), "data", "sessions.db"))
	require.NoError(t, err)
	defer b.Close()

	got, err := b.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, b.Save(ctx, sampleSessions()))
	got, err = b.Load(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(sampleSessions(), got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}

	assertUpsert(t, b)
}

// assertUpsert saves a partial mapping over sampleSessions and checks that
// only the named senders changed
func assertUpsert(t *testing.T, b contract.SessionBackend) {
	t.Helper()
	ctx := context.Background()

	renamed := store.NewSession()
	renamed.UserName = "Omar"
	renamed.AwaitingName = false
	require.NoError(t, b.Save(ctx, map[string]*store.Session{
		"u1": renamed,
		"u3": store.NewSession(),
	}))

	got, err := b.Load(ctx)
	require.NoError(t, err)
	want := sampleSessions()
	want["u1"] = renamed
	want["u3"] = store.NewSession()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch after partial save (-want +got):\n%s", diff)
	}
}

func TestFileBackendMergesIntoDocument(t *testing.T) {
	b := NewFileSessionBackend(filepath.Join(t.TempDir(), "chat_memory.json"))
	require.NoError(t, b.Save(context.Background(), sampleSessions()))
	assertUpsert(t, b)
}

func TestFileBackendReplacesCorruptDocument(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "chat_memory.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	b := NewFileSessionBackend(path)
	require.NoError(t, b.Save(ctx, map[string]*store.Session{"u1": store.NewSession()}))

	got, err := b.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]*store.Session{"u1": store.NewSession()}, got)
}

func TestMemoryBackendUpsert(t *testing.T) {
	b := NewMemorySessionBackend()
	require.NoError(t, b.Save(context.Background(), sampleSessions()))
	assertUpsert(t, b)
	assert.Equal(t, 2, b.Saves())
}

func TestSQLiteBackendCorruptRow(t *testing.T) {
	ctx := context.Background()
	b, err := NewSQLiteSessionBackend(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.Save(ctx, sampleSessions()))
	_, err = b.(*SQLiteSessionBackend).db.ExecContext(ctx, `UPDATE chat_sessions SET state = 'nope' WHERE sender = 'u1'`)
	require.NoError(t, err)

	got, err := b.Load(ctx)
	assert.ErrorIs(t, err, contract.ErrCorruptState)
	assert.Len(t, got, 1)
	assert.Contains(t, got, "u2")
}
