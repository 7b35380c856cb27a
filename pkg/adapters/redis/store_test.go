package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/stepflow/pkg/adapters/redis"
	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/aretw0/stepflow/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_GraphContract(t *testing.T) {
	_, client := newTestClient(t)
	ports.RunGraphStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_RunContract(t *testing.T) {
	_, client := newTestClient(t)
	ports.RunRunStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newTestClient(t)

	// Create store with 1s TTL
	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	run := &domain.Run{
		ID:         "run-ttl",
		FinalState: domain.State{"foo": "bar"},
	}

	err := store.SaveRun(ctx, run)
	require.NoError(t, err)

	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	assert.Contains(t, runs, "run-ttl")

	// Fast forward time in miniredis for key expiration
	mr.FastForward(2 * time.Second)

	_, err = store.LoadRun(ctx, "run-ttl")
	assert.ErrorIs(t, err, domain.ErrRunNotFound)

	// Index cleanup compares against time.Now(), so real time has to pass as well.
	time.Sleep(1200 * time.Millisecond)

	runs, err = store.ListRuns(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestRedisStore_GraphsDoNotExpire(t *testing.T) {
	mr, client := newTestClient(t)
	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()

	require.NoError(t, store.SaveGraph(ctx, &domain.Graph{ID: "g", StartNode: "a"}))
	mr.FastForward(5 * time.Second)

	graph, err := store.LoadGraph(ctx, "g")
	require.NoError(t, err)
	assert.Equal(t, "a", graph.StartNode)
	assert.NotNil(t, graph.Edges)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newTestClient(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	require.NoError(t, store.SaveRun(ctx, &domain.Run{ID: "my-run", FinalState: domain.State{}}))
	require.NoError(t, store.SaveGraph(ctx, &domain.Graph{ID: "my-graph", StartNode: "a"}))

	assert.True(t, mr.Exists("custom:app:run:my-run"), "Expected run key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:run:index"), "Expected index with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:graph:my-graph"), "Expected graph key with custom prefix to exist")

	list, err := store.ListRuns(ctx)
	require.NoError(t, err)
	assert.Contains(t, list, "my-run")
}

func TestRedisStore_Ping(t *testing.T) {
	_, client := newTestClient(t)
	store := redis.NewFromClient(client)
	assert.NoError(t, store.Ping(context.Background()))
}
