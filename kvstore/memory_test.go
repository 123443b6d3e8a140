package kvstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"caltrain.dev/transit/kvstore"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := kvstore.NewMemoryStore()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, kvstore.KeyScheduleData)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Put(ctx, kvstore.KeyScheduleData, []byte(`{"v":1}`), 0, map[string]string{"v": "abc"}))

	entry, ok, err := s.Get(ctx, kvstore.KeyScheduleData)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `{"v":1}`, string(entry.Value))
	require.Equal(t, "abc", entry.Metadata["v"])
}

func TestMemoryStoreTTLExpiry(t *testing.T) {
	s := kvstore.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, kvstore.KeyRealtimeStatus, []byte("data"), time.Millisecond, nil))
	time.Sleep(5 * time.Millisecond)

	_, ok, err := s.Get(ctx, kvstore.KeyRealtimeStatus)
	require.NoError(t, err)
	require.False(t, ok, "value past its TTL must behave as absent")
}

func TestMemoryStorePutReplacesWholeValue(t *testing.T) {
	s := kvstore.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, kvstore.KeyScheduleMeta, []byte("first"), 0, map[string]string{"a": "1"}))
	require.NoError(t, s.Put(ctx, kvstore.KeyScheduleMeta, []byte("second"), 0, map[string]string{"b": "2"}))

	entry, ok, err := s.Get(ctx, kvstore.KeyScheduleMeta)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "second", string(entry.Value))
	require.Equal(t, map[string]string{"b": "2"}, entry.Metadata)
}
