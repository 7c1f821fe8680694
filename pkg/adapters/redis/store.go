package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/quizgraph/pkg/domain"
	"github.com/aretw0/quizgraph/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key the store writes.
const DefaultPrefix = "quizgraph:"

// noExpiry is the index score of records saved without a TTL (2100-01-01).
const noExpiry = 4102444800

// Store implements ports.QuizStore using Redis. Records are JSON values;
// a sorted set indexes ids by expiry so List can prune lazily.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*Store)

// WithTTL sets the expiration for quiz records. Zero keeps them forever.
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

// New dials a Redis client and wraps it.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	s := &Store{
		client: client,
		prefix: DefaultPrefix,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Client exposes the underlying client, e.g. to share it with a Locker.
func (s *Store) Client() *backend.Client { return s.client }

func (s *Store) key(quizID string) string {
	return s.prefix + "quiz:" + quizID
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save writes the record and its index entry in one pipeline.
func (s *Store) Save(ctx context.Context, quizID string, rec *ports.QuizRecord) error {
	if quizID == "" {
		return domain.ErrInvalidQuizID
	}
	cp := *rec
	cp.ID = quizID
	data, err := json.Marshal(&cp)
	if err != nil {
		return fmt.Errorf("failed to marshal quiz: %w", err)
	}

	score := float64(noExpiry)
	if s.ttl > 0 {
		score = float64(s.now().Add(s.ttl).Unix())
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(quizID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: quizID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the record.
func (s *Store) Load(ctx context.Context, quizID string) (*ports.QuizRecord, error) {
	val, err := s.client.Get(ctx, s.key(quizID)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var rec ports.QuizRecord
	if err := json.Unmarshal(val, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quiz: %w", err)
	}
	return &rec, nil
}

// Delete removes the record and its index entry.
func (s *Store) Delete(ctx context.Context, quizID string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(quizID))
	pipe.ZRem(ctx, s.indexKey(), quizID)
	_, err := pipe.Exec(ctx)
	return err
}

// List prunes expired index entries, then returns the rest.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := s.now().Unix()
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("(%d", now)).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired quizzes: %w", err)
	}

	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}
	return ids, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
