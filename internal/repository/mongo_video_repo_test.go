package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timmy/tubevault/internal/domain"
)

func TestMongoVideoStore_ConnectUnreachable(t *testing.T) {
	store := NewMongoVideoStore(MongoConfig{
		URI:            "mongodb://127.0.0.1:1",
		Database:       "real_estate_tours",
		Collection:     "snippets",
		ConnectTimeout: 200 * time.Millisecond,
	})

	_, err := store.Connect(context.Background())
	assert.ErrorIs(t, err, domain.ErrConnection)
}

// Runs against a live server when TEST_MONGO_URI is set.
func TestMongoVideoStore_RoundTrip(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}

	ctx := context.Background()
	store := NewMongoVideoStore(MongoConfig{
		URI:        uri,
		Database:   "tubevault_test",
		Collection: fmt.Sprintf("videos_%d", time.Now().UnixNano()),
	})
	conn, err := store.Connect(ctx)
	require.NoError(t, err)
	defer conn.Close(ctx)

	now := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, conn.Insert(ctx, sampleVideo("m1", now)))
	assert.ErrorIs(t, conn.Insert(ctx, sampleVideo("m1", now)), domain.ErrAlreadyExists)

	videos, err := conn.List(ctx)
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, "Tour m1", videos[0].Title)

	require.NoError(t, conn.Delete(ctx, "m1"))
	assert.ErrorIs(t, conn.Delete(ctx, "m1"), domain.ErrNotFound)
}
