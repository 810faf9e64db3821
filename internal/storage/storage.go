package storage

import (
	"context"
	"errors"

	"github.com/MikhailRaia/slug-shortener/internal/model"
)

var (
	// ErrDuplicateKey is returned by Insert when the slug is already taken.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrUnavailable marks connection and timeout faults of networked backends.
	ErrUnavailable = errors.New("store unavailable")
)

// ShortLinkStore persists short links. Implementations must make the
// uniqueness check and the write in Insert a single atomic step.
type ShortLinkStore interface {
	// FindOne returns the link with exactly this slug, or nil if there is none.
	FindOne(ctx context.Context, slug string) (*model.ShortLink, error)

	// Insert persists link and returns it with the store-assigned fields set.
	Insert(ctx context.Context, link model.ShortLink) (*model.ShortLink, error)
}

// Closer is implemented by stores that own resources.
type Closer interface {
	Close() error
}
