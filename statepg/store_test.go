package statepg

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestStore starts a disposable PostgreSQL container and opens a store
// against it. The returned dsn lets tests reopen the same database.
func setupTestStore(t *testing.T) (*Store, string) {
	t.Helper()

	ctx := context.Background()
	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	store, err := New(ctx, dsn, log)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	return store, dsn
}

func TestStoreRoundTrip(t *testing.T) {
	store, _ := setupTestStore(t)

	require.Nil(t, store.Get("missing"))

	store.Set("k", "v1")
	got := store.Get("k")
	require.NotNil(t, got)
	require.Equal(t, "v1", *got)

	store.Set("k", "v2")
	require.Equal(t, "v2", *store.Get("k"))

	store.Delete("k")
	require.Nil(t, store.Get("k"))
	require.NoError(t, store.Err())
}

func TestStoreBinaryKeysAndValues(t *testing.T) {
	store, _ := setupTestStore(t)

	// Contract keys are raw prefix bytes; values are binary records. Both
	// must survive bytea round trips, NUL bytes included.
	key := string([]byte{0x01, 0x00, 0xFF})
	value := string([]byte{0x00, 0x10, 0x7F, 0xFF, 0x00})
	store.Set(key, value)

	got := store.Get(key)
	require.NotNil(t, got)
	require.Equal(t, value, *got)
	require.NoError(t, store.Err())
}

func TestStoreSurvivesReopen(t *testing.T) {
	store, dsn := setupTestStore(t)

	store.Set("persist", "across reopen")
	store.Close()

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	reopened, err := New(context.Background(), dsn, log)
	require.NoError(t, err)
	defer reopened.Close()

	got := reopened.Get("persist")
	require.NotNil(t, got)
	require.Equal(t, "across reopen", *got)
}

func TestStoreEmptyValue(t *testing.T) {
	store, _ := setupTestStore(t)

	store.Set("empty", "")
	got := store.Get("empty")
	require.NotNil(t, got)
	require.Empty(t, *got)
}
