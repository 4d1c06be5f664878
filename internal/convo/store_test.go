// internal/convo/store_test.go
package convo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-assistant/internal/common/config"
	"sales-assistant/internal/common/logger"
)

func createTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := NewStore(client, config.SessionConfig{
		TTL:       1800,
		KeyPrefix: "convo",
	}, logger.NewTestLogger(t))
	return store, mr
}

func TestStoreLoadEmptySession(t *testing.T) {
	store, _ := createTestStore(t)

	state, err := store.Load(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, state.Pending)
	assert.Empty(t, state.LastSuccessful)
	assert.Empty(t, state.LastAttempted)
}

func TestStorePendingRoundTrip(t *testing.T) {
	store, _ := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetPending(ctx, "s1", "Sales in June 2025"))

	state, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Sales in June 2025", state.Pending)

	require.NoError(t, store.ClearPending(ctx, "s1"))
	state, err = store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, state.Pending)
}

func TestStoreSuccessClearsAttempted(t *testing.T) {
	store, _ := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetLastAttempted(ctx, "s1", "Sales in June"))
	require.NoError(t, store.SetLastSuccessful(ctx, "s1", "Sales in June 2025 Branch 1"))

	state, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Sales in June 2025 Branch 1", state.LastSuccessful)
	assert.Empty(t, state.LastAttempted)
}

func TestStoreSessionsAreIsolated(t *testing.T) {
	store, _ := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetLastSuccessful(ctx, "s1", "Sales in June 2025 Branch 1"))

	state, err := store.Load(ctx, "s2")
	require.NoError(t, err)
	assert.Empty(t, state.LastSuccessful)
}

func TestStoreContextExpires(t *testing.T) {
	store, mr := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetLastSuccessful(ctx, "s1", "Sales in June 2025 Branch 1"))

	mr.FastForward(1801 * time.Second)

	state, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, state.LastSuccessful)
}

func TestStoreLoadSurfacesRedisFailure(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewStore(client, config.SessionConfig{
		TTL:       1800,
		KeyPrefix: "convo",
	}, logger.NewNoOpLogger())

	mock.ExpectGet("convo:s1:pending").SetErr(errors.New("connection reset"))

	_, err := store.Load(context.Background(), "s1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s1")
}

func TestNewSessionID(t *testing.T) {
	a := NewSessionID()
	b := NewSessionID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
