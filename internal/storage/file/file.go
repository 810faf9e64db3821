package file

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MikhailRaia/slug-shortener/internal/model"
	"github.com/MikhailRaia/slug-shortener/internal/storage"
)

// Storage implements ShortLinkStore backed by an append-only JSONL file.
// The whole file is replayed into memory on start.
type Storage struct {
	filePath string
	links    map[string]model.ShortLink
	mu       sync.RWMutex
}

// NewStorage creates a file-backed storage at the provided path.
func NewStorage(filePath string) (*Storage, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	s := &Storage{
		filePath: filePath,
		links:    make(map[string]model.ShortLink),
	}

	if err := s.loadFromFile(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Storage) FindOne(_ context.Context, slug string) (*model.ShortLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	link, found := s.links[slug]
	if !found {
		return nil, nil
	}

	return &link, nil
}

// Insert appends link to the file. The lock is held across the write so a
// slug is never visible in memory without being persisted.
func (s *Storage) Insert(_ context.Context, link model.ShortLink) (*model.ShortLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.links[link.Slug]; exists {
		return nil, fmt.Errorf("insert slug %q: %w", link.Slug, storage.ErrDuplicateKey)
	}

	link.ID = uuid.NewString()
	link.CreatedAt = time.Now().UTC()

	if err := s.saveRecordToFile(link); err != nil {
		return nil, err
	}
	s.links[link.Slug] = link

	return &link, nil
}

func (s *Storage) loadFromFile() error {
	file, err := os.OpenFile(s.filePath, os.O_RDONLY|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	// records have no size cap beyond the request body limit, so lines are
	// read whole instead of through a fixed-size scanner buffer
	reader := bufio.NewReader(file)

	for {
		line, readErr := reader.ReadBytes('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return fmt.Errorf("error reading file: %w", readErr)
		}

		line = bytes.TrimSpace(line)
		if len(line) > 0 {
			var record model.ShortLink
			if err := json.Unmarshal(line, &record); err != nil {
				return fmt.Errorf("failed to unmarshal record: %w", err)
			}

			// first write wins, matching what Insert allowed at the time
			if _, exists := s.links[record.Slug]; !exists {
				s.links[record.Slug] = record
			}
		}

		if readErr != nil {
			return nil
		}
	}
}

func (s *Storage) saveRecordToFile(record model.ShortLink) error {
	file, err := os.OpenFile(s.filePath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file for writing: %w", err)
	}
	defer file.Close()

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	if _, err := file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}

	return nil
}
