package kvstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"caltrain.dev/transit/kvstore"
	"caltrain.dev/transit/testutil"
)

func TestPostgresStoreRoundTrip(t *testing.T) {
	if testutil.PostgresConnStr == "" {
		t.Skip("set testutil.PostgresConnStr to run against a live Postgres instance")
	}

	store, err := kvstore.NewPostgresStore(testutil.PostgresConnStr)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, kvstore.KeyScheduleData, []byte("hello"), 0, map[string]string{"v": "1"}))

	entry, ok, err := store.Get(ctx, kvstore.KeyScheduleData)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "hello", string(entry.Value))
}
