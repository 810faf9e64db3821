package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MikhailRaia/slug-shortener/internal/model"
	"github.com/MikhailRaia/slug-shortener/internal/storage"
)

const keyPrefix = "shortlink:"

// Storage implements ShortLinkStore on top of Redis. Links are stored as
// JSON strings without expiry; SET NX provides the uniqueness guarantee.
type Storage struct {
	client *redis.Client
}

// NewStorage connects to the Redis server at addr.
func NewStorage(ctx context.Context, addr string) (*Storage, error) {
	if addr == "" {
		return nil, errors.New("redis address is empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   -1,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", classify(err))
	}

	return NewStorageWithClient(client), nil
}

// NewStorageWithClient wraps an already configured client.
func NewStorageWithClient(client *redis.Client) *Storage {
	return &Storage{client: client}
}

func (s *Storage) FindOne(ctx context.Context, slug string) (*model.ShortLink, error) {
	data, err := s.client.Get(ctx, keyPrefix+slug).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find slug %q: %w", slug, classify(err))
	}

	var link model.ShortLink
	if err := json.Unmarshal(data, &link); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stored link: %w", err)
	}

	return &link, nil
}

func (s *Storage) Insert(ctx context.Context, link model.ShortLink) (*model.ShortLink, error) {
	link.ID = uuid.NewString()
	link.CreatedAt = time.Now().UTC()

	data, err := json.Marshal(link)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal link: %w", err)
	}

	stored, err := s.client.SetNX(ctx, keyPrefix+link.Slug, data, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("insert slug %q: %w", link.Slug, classify(err))
	}
	if !stored {
		return nil, fmt.Errorf("insert slug %q: %w", link.Slug, storage.ErrDuplicateKey)
	}

	return &link, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Storage) Close() error {
	return s.client.Close()
}

func classify(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, redis.ErrClosed) {
		return fmt.Errorf("%w: %w", storage.ErrUnavailable, err)
	}
	return err
}
