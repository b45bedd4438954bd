package implementation

import (
	"context"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"heystack-be/internal/repository/contract"
	"heystack-be/pkg/database"
)

// Remote backends run only against a real server:
// REDIS_TEST_URL=redis://localhost:6379 or POSTGRES_TEST_DSN=postgres://...

func roundTrip(t *testing.T, b contract.SessionBackend) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, b.Save(ctx, sampleSessions()))
	got, err := b.Load(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(sampleSessions(), got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}

	assertUpsert(t, b)
}

func TestRedisBackendRoundTrip(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}
	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opt)

	key := "heystack:test:" + uuid.NewString()
	b := NewRedisSessionBackend(rdb, key)
	t.Cleanup(func() {
		rdb.Del(context.Background(), key)
		_ = b.Close()
	})

	roundTrip(t, b)
}

func TestPostgresBackendRoundTrip(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}
	db, err := database.NewGormDBFromDSN(dsn, false)
	require.NoError(t, err)

	b, err := NewPostgresSessionBackend(db)
	require.NoError(t, err)
	defer b.Close()
	require.NoError(t, db.Exec("DELETE FROM chat_session_states").Error)
	roundTrip(t, b)
}
