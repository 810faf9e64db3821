package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MikhailRaia/slug-shortener/internal/model"
	"github.com/MikhailRaia/slug-shortener/internal/storage"
)

// Storage implements in-memory ShortLinkStore for testing and development.
type Storage struct {
	links map[string]model.ShortLink
	mutex sync.RWMutex
}

// NewStorage creates a new in-memory storage instance.
func NewStorage() *Storage {
	return &Storage{
		links: make(map[string]model.ShortLink),
	}
}

// FindOne retrieves the link stored under slug.
func (s *Storage) FindOne(_ context.Context, slug string) (*model.ShortLink, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	link, found := s.links[slug]
	if !found {
		return nil, nil
	}

	return &link, nil
}

// Insert stores link unless its slug is already taken.
func (s *Storage) Insert(_ context.Context, link model.ShortLink) (*model.ShortLink, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.links[link.Slug]; exists {
		return nil, fmt.Errorf("insert slug %q: %w", link.Slug, storage.ErrDuplicateKey)
	}

	link.ID = uuid.NewString()
	link.CreatedAt = time.Now().UTC()
	s.links[link.Slug] = link

	return &link, nil
}

// Len returns the number of stored links.
func (s *Storage) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.links)
}
