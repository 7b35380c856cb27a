package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/stepflow/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix is the key namespace used when no prefix is configured.
const DefaultPrefix = "stepflow:"

// Store implements ports.GraphStore and ports.RunStore using Redis.
// Graphs and runs are stored as JSON, so numeric state values come back as float64.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for runs. Graphs never expire.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *Store) graphKey(graphID string) string {
	return s.prefix + "graph:" + graphID
}

func (s *Store) runKey(runID string) string {
	return s.prefix + "run:" + runID
}

func (s *Store) runIndexKey() string {
	return s.prefix + "run:index"
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// SaveGraph persists the graph definition to Redis.
func (s *Store) SaveGraph(ctx context.Context, graph *domain.Graph) error {
	data, err := json.Marshal(graph)
	if err != nil {
		return fmt.Errorf("failed to marshal graph: %w", err)
	}
	if err := s.client.Set(ctx, s.graphKey(graph.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save graph to redis: %w", err)
	}
	return nil
}

// LoadGraph retrieves a graph definition from Redis.
func (s *Store) LoadGraph(ctx context.Context, graphID string) (*domain.Graph, error) {
	val, err := s.client.Get(ctx, s.graphKey(graphID)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrGraphNotFound
		}
		return nil, fmt.Errorf("failed to get graph from redis: %w", err)
	}

	var graph domain.Graph
	if err := json.Unmarshal(val, &graph); err != nil {
		return nil, fmt.Errorf("failed to unmarshal graph: %w", err)
	}
	if graph.Edges == nil {
		graph.Edges = map[string]domain.Edge{}
	}
	return &graph, nil
}

// SaveRun persists the run to Redis.
func (s *Store) SaveRun(ctx context.Context, run *domain.Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	pipe := s.client.Pipeline()

	// 1. Save JSON with TTL
	// Use 0 for no expiration if ttl is not set.
	pipe.Set(ctx, s.runKey(run.ID), data, s.ttl)

	// 2. Add to Index (ZSET)
	// Score = Now + TTL. If TTL = 0, Score = +Inf (approx).
	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}

	pipe.ZAdd(ctx, s.runIndexKey(), backend.Z{
		Score:  score,
		Member: run.ID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save run to redis: %w", err)
	}
	return nil
}

// LoadRun retrieves a run from Redis.
func (s *Store) LoadRun(ctx context.Context, runID string) (*domain.Run, error) {
	val, err := s.client.Get(ctx, s.runKey(runID)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to get run from redis: %w", err)
	}

	var run domain.Run
	if err := json.Unmarshal(val, &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run: %w", err)
	}
	if run.FinalState == nil {
		run.FinalState = domain.NewState()
	}
	return &run, nil
}

// ListRuns returns the IDs of runs that have not expired.
func (s *Store) ListRuns(ctx context.Context) ([]string, error) {
	// Lazy cleanup: drop expired members from the index.
	now := float64(time.Now().Unix())
	err := s.client.ZRemRangeByScore(ctx, s.runIndexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired runs: %w", err)
	}

	runs, err := s.client.ZRange(ctx, s.runIndexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
