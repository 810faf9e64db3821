package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/MikhailRaia/slug-shortener/internal/generator"
	"github.com/MikhailRaia/slug-shortener/internal/model"
	"github.com/MikhailRaia/slug-shortener/internal/storage"
)

// DefaultSlugLength is the length of generated slugs.
const DefaultSlugLength = 5

// ValidationError reports a malformed create request.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Msg
}

// Recorder receives create and resolve outcomes. *metrics.Metrics implements it.
type Recorder interface {
	RecordLinkCreated()
	RecordSlugConflict()
	RecordResolve(found bool)
}

type nopRecorder struct{}

func (nopRecorder) RecordLinkCreated()  {}
func (nopRecorder) RecordSlugConflict() {}
func (nopRecorder) RecordResolve(bool)  {}

// destRequest is the validated form of a create request's destination.
type destRequest struct {
	Dest string `validate:"required,url,link_url"`
}

var linkSchemes = map[string]bool{"http": true, "https": true, "ftp": true}

// LinkService provides business logic for creating and resolving short links.
type LinkService struct {
	store      storage.ShortLinkStore
	recorder   Recorder
	validate   *validator.Validate
	slugLength int
}

// NewLinkService constructs a LinkService over the given store. A nil
// recorder disables outcome recording.
func NewLinkService(store storage.ShortLinkStore, recorder Recorder) *LinkService {
	if recorder == nil {
		recorder = nopRecorder{}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	// registering a tag with a non-nil func and a static name cannot fail
	_ = validate.RegisterValidation("link_url", isLinkURL)

	return &LinkService{
		store:      store,
		recorder:   recorder,
		validate:   validate,
		slugLength: DefaultSlugLength,
	}
}

// Create validates req, normalises or generates the slug and inserts the link.
// A taken slug is reported as storage.ErrDuplicateKey; callers decide how to word it.
func (s *LinkService) Create(ctx context.Context, req model.CreateRequest) (*model.ShortLink, error) {
	dest, err := s.validateDest(req.Dest)
	if err != nil {
		return nil, err
	}

	slug, err := optionalString("slug", req.Slug)
	if err != nil {
		return nil, err
	}

	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		slug, err = generator.GenerateSlug(s.slugLength)
		if err != nil {
			return nil, fmt.Errorf("generate slug: %w", err)
		}
	}

	created, err := s.store.Insert(ctx, model.ShortLink{Slug: slug, Dest: dest})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			s.recorder.RecordSlugConflict()
		}
		return nil, err
	}

	s.recorder.RecordLinkCreated()
	log.Debug().Str("slug", created.Slug).Str("dest", created.Dest).Msg("Short link created")

	return created, nil
}

// Resolve looks up slug. A missing link is reported as (nil, nil).
func (s *LinkService) Resolve(ctx context.Context, slug string) (*model.ShortLink, error) {
	link, err := s.store.FindOne(ctx, slug)
	if err != nil {
		return nil, err
	}

	s.recorder.RecordResolve(link != nil)

	return link, nil
}

func (s *LinkService) validateDest(raw json.RawMessage) (string, error) {
	dest, err := optionalString("dest", raw)
	if err != nil {
		return "", err
	}

	req := destRequest{Dest: strings.TrimSpace(dest)}
	if err := s.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
			return "", fmt.Errorf("validate dest: %w", err)
		}
		if fieldErrs[0].Tag() == "required" {
			return "", &ValidationError{Field: "dest", Msg: "is a required field"}
		}
		return "", &ValidationError{Field: "dest", Msg: "must be a valid URL"}
	}

	return req.Dest, nil
}

// optionalString decodes a JSON string. Absent and null values yield "".
func optionalString(field string, raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}

	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", &ValidationError{
			Field: field,
			Msg:   fmt.Sprintf("must be a `string` type, but the final value was: `%s`.", raw),
		}
	}

	return value, nil
}

// isLinkURL narrows the url tag to absolute links with an allowed scheme,
// a host and no embedded whitespace.
func isLinkURL(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if strings.ContainsAny(raw, " \t\r\n") {
		return false
	}

	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}

	return linkSchemes[strings.ToLower(u.Scheme)] && u.Hostname() != ""
}
