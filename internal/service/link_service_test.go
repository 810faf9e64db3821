package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikhailRaia/slug-shortener/internal/model"
	"github.com/MikhailRaia/slug-shortener/internal/storage"
	"github.com/MikhailRaia/slug-shortener/internal/storage/memory"
)

type mockStorage struct {
	findOneFunc func(ctx context.Context, slug string) (*model.ShortLink, error)
	insertFunc  func(ctx context.Context, link model.ShortLink) (*model.ShortLink, error)
}

func (m *mockStorage) FindOne(ctx context.Context, slug string) (*model.ShortLink, error) {
	return m.findOneFunc(ctx, slug)
}

func (m *mockStorage) Insert(ctx context.Context, link model.ShortLink) (*model.ShortLink, error) {
	return m.insertFunc(ctx, link)
}

func raw(v string) json.RawMessage {
	return json.RawMessage(v)
}

func TestLinkService_Create(t *testing.T) {
	tests := []struct {
		name      string
		req       model.CreateRequest
		wantSlug  string
		wantDest  string
		wantField string
	}{
		{
			name:     "Explicit slug is lowercased",
			req:      model.CreateRequest{Dest: raw(`"https://example.com"`), Slug: raw(`"MySlug"`)},
			wantSlug: "myslug",
			wantDest: "https://example.com",
		},
		{
			name:     "Slug and dest are trimmed",
			req:      model.CreateRequest{Dest: raw(`"  https://example.com/a  "`), Slug: raw(`"  Abc  "`)},
			wantSlug: "abc",
			wantDest: "https://example.com/a",
		},
		{
			name:      "Missing dest",
			req:       model.CreateRequest{Slug: raw(`"abc"`)},
			wantField: "dest",
		},
		{
			name:      "Null dest",
			req:       model.CreateRequest{Dest: raw(`null`)},
			wantField: "dest",
		},
		{
			name:      "Blank dest",
			req:       model.CreateRequest{Dest: raw(`"   "`)},
			wantField: "dest",
		},
		{
			name:      "Dest is not a URL",
			req:       model.CreateRequest{Dest: raw(`"not-a-url"`)},
			wantField: "dest",
		},
		{
			name:      "Dest without host",
			req:       model.CreateRequest{Dest: raw(`"http://"`)},
			wantField: "dest",
		},
		{
			name:      "Dest with unsupported scheme",
			req:       model.CreateRequest{Dest: raw(`"javascript:alert(1)"`)},
			wantField: "dest",
		},
		{
			name:      "Dest is not a string",
			req:       model.CreateRequest{Dest: raw(`42`)},
			wantField: "dest",
		},
		{
			name:      "Slug is not a string",
			req:       model.CreateRequest{Dest: raw(`"https://example.com"`), Slug: raw(`{"a":1}`)},
			wantField: "slug",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var inserted *model.ShortLink
			store := &mockStorage{
				insertFunc: func(ctx context.Context, link model.ShortLink) (*model.ShortLink, error) {
					inserted = &link
					link.ID = "id-1"
					return &link, nil
				},
			}

			got, err := NewLinkService(store, nil).Create(context.Background(), tt.req)

			if tt.wantField != "" {
				var vErr *ValidationError
				require.True(t, errors.As(err, &vErr), "want ValidationError, got %v", err)
				assert.Equal(t, tt.wantField, vErr.Field)
				assert.Equal(t, tt.wantField+" "+vErr.Msg, err.Error())
				assert.Nil(t, inserted, "nothing may be persisted on validation failure")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantSlug, got.Slug)
			assert.Equal(t, tt.wantDest, got.Dest)
			assert.Equal(t, "id-1", got.ID)
		})
	}
}

func TestLinkService_CreateDestMessages(t *testing.T) {
	tests := []struct {
		dest    string
		wantErr string
	}{
		{dest: `"   "`, wantErr: "dest is a required field"},
		{dest: `"not-a-url"`, wantErr: "dest must be a valid URL"},
		{dest: `"mailto:someone@example.com"`, wantErr: "dest must be a valid URL"},
		{dest: `"https://exa mple.com"`, wantErr: "dest must be a valid URL"},
		{dest: `"ftp://files.example.com/a.txt"`},
		{dest: `"HTTPS://Example.com/Path"`},
	}

	for _, tt := range tests {
		t.Run(tt.dest, func(t *testing.T) {
			got, err := NewLinkService(memory.NewStorage(), nil).Create(context.Background(), model.CreateRequest{Dest: raw(tt.dest)})
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.NotEmpty(t, got.Slug)
				return
			}

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

type countingRecorder struct {
	created, conflicts, found, missing int
}

func (r *countingRecorder) RecordLinkCreated()  { r.created++ }
func (r *countingRecorder) RecordSlugConflict() { r.conflicts++ }
func (r *countingRecorder) RecordResolve(found bool) {
	if found {
		r.found++
	} else {
		r.missing++
	}
}

func TestLinkService_RecordsOutcomes(t *testing.T) {
	rec := &countingRecorder{}
	svc := NewLinkService(memory.NewStorage(), rec)
	ctx := context.Background()

	req := model.CreateRequest{Dest: raw(`"https://example.com"`), Slug: raw(`"taken"`)}
	_, err := svc.Create(ctx, req)
	require.NoError(t, err)
	_, err = svc.Create(ctx, req)
	require.ErrorIs(t, err, storage.ErrDuplicateKey)

	_, err = svc.Resolve(ctx, "taken")
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, "absent")
	require.NoError(t, err)

	assert.Equal(t, &countingRecorder{created: 1, conflicts: 1, found: 1, missing: 1}, rec)
}

func TestLinkService_CreateGeneratesSlug(t *testing.T) {
	for _, slug := range []string{``, `null`, `""`, `"   "`} {
		t.Run(fmt.Sprintf("slug=%s", slug), func(t *testing.T) {
			svc := NewLinkService(memory.NewStorage(), nil)

			req := model.CreateRequest{Dest: raw(`"https://example.com/long/path"`)}
			if slug != "" {
				req.Slug = raw(slug)
			}

			got, err := svc.Create(context.Background(), req)
			require.NoError(t, err)

			assert.Len(t, got.Slug, DefaultSlugLength)
			assert.Equal(t, strings.ToLower(got.Slug), got.Slug)

			resolved, err := svc.Resolve(context.Background(), got.Slug)
			require.NoError(t, err)
			require.NotNil(t, resolved)
			assert.Equal(t, "https://example.com/long/path", resolved.Dest)
		})
	}
}

func TestLinkService_CreateDuplicate(t *testing.T) {
	svc := NewLinkService(memory.NewStorage(), nil)
	ctx := context.Background()

	first, err := svc.Create(ctx, model.CreateRequest{Dest: raw(`"https://first.example"`), Slug: raw(`"same"`)})
	require.NoError(t, err)

	_, err = svc.Create(ctx, model.CreateRequest{Dest: raw(`"https://second.example"`), Slug: raw(`"SAME"`)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrDuplicateKey))

	resolved, err := svc.Resolve(ctx, "same")
	require.NoError(t, err)
	assert.Equal(t, first.Dest, resolved.Dest)
}

func TestLinkService_CreateStoreError(t *testing.T) {
	storeErr := errors.New("connection reset")
	store := &mockStorage{
		insertFunc: func(ctx context.Context, link model.ShortLink) (*model.ShortLink, error) {
			return nil, storeErr
		},
	}

	_, err := NewLinkService(store, nil).Create(context.Background(), model.CreateRequest{Dest: raw(`"https://example.com"`)})
	assert.ErrorIs(t, err, storeErr)
}

func TestLinkService_Resolve(t *testing.T) {
	tests := []struct {
		name     string
		slug     string
		mockLink *model.ShortLink
		mockErr  error
		wantNil  bool
		wantErr  bool
	}{
		{
			name:     "Link found",
			slug:     "abc12",
			mockLink: &model.ShortLink{Slug: "abc12", Dest: "https://example.com"},
		},
		{
			name:    "Link not found",
			slug:    "nope",
			wantNil: true,
		},
		{
			name:    "Store error",
			slug:    "abc12",
			mockErr: storage.ErrUnavailable,
			wantNil: true,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockStorage{
				findOneFunc: func(ctx context.Context, slug string) (*model.ShortLink, error) {
					assert.Equal(t, tt.slug, slug)
					return tt.mockLink, tt.mockErr
				},
			}

			got, err := NewLinkService(store, nil).Resolve(context.Background(), tt.slug)

			if (err != nil) != tt.wantErr {
				t.Errorf("LinkService.Resolve() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantNil {
				assert.Nil(t, got)
			} else {
				assert.Equal(t, tt.mockLink, got)
			}
		})
	}
}

func BenchmarkLinkService_Create(b *testing.B) {
	store := &mockStorage{
		insertFunc: func(ctx context.Context, link model.ShortLink) (*model.ShortLink, error) {
			return &link, nil
		},
	}
	svc := NewLinkService(store, nil)
	req := model.CreateRequest{Dest: raw(`"https://example.com/very/long/url/path"`)}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		svc.Create(context.Background(), req)
	}
}
