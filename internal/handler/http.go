package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/MikhailRaia/slug-shortener/internal/logger"
	"github.com/MikhailRaia/slug-shortener/internal/metrics"
	"github.com/MikhailRaia/slug-shortener/internal/middleware"
	"github.com/MikhailRaia/slug-shortener/internal/model"
	"github.com/MikhailRaia/slug-shortener/internal/pool"
	"github.com/MikhailRaia/slug-shortener/internal/storage"
)

const maxBodyBytes = 100 << 10

// ErrSlugInUse is what a client sees when the requested slug is taken.
var ErrSlugInUse = errors.New("Slug is in use")

// ErrTrailingData rejects bodies holding more than one JSON value.
var ErrTrailingData = errors.New("unexpected data after JSON body")

type LinkService interface {
	Create(ctx context.Context, req model.CreateRequest) (*model.ShortLink, error)
	Resolve(ctx context.Context, slug string) (*model.ShortLink, error)
}

type Handler struct {
	linkService LinkService
	metrics     *metrics.Metrics
	buffers     *pool.Pool[*bytes.Buffer]
}

// NewHandler builds the HTTP handler. Request metrics are recorded only when m is not nil.
func NewHandler(linkService LinkService, m *metrics.Metrics) *Handler {
	return &Handler{
		linkService: linkService,
		metrics:     m,
		buffers:     pool.New(64, func() *bytes.Buffer { return new(bytes.Buffer) }),
	}
}

func (h *Handler) RegisterRoutes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Use(logger.RequestLogger)
	if h.metrics != nil {
		r.Use(h.metrics.Instrument)
	}

	r.Use(middleware.SecureHeaders)
	r.Use(middleware.CORS())

	r.Use(middleware.GzipReader(h.writeError))
	r.Use(middleware.Compress())

	r.Get("/", h.handleHealth)
	r.Post("/create", h.handle(h.handleCreate))
	// the create route only claims POST; GET /create resolves the slug "create"
	r.Get("/create", h.handle(h.handleResolve))
	r.Get("/{id}", h.handle(h.handleResolve))

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, model.HealthResponse{Status: http.StatusOK})
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) error {
	slug := chi.URLParam(r, "id")
	if slug == "" {
		slug = strings.TrimPrefix(r.URL.Path, "/")
	} else if r.URL.RawPath != "" {
		// chi matched on the escaped path, so the param is still escaped
		unescaped, err := url.PathUnescape(slug)
		if err != nil {
			return err
		}
		slug = unescaped
	}

	link, err := h.linkService.Resolve(r.Context(), slug)
	if err != nil {
		return err
	}

	if link == nil {
		h.writeJSON(w, http.StatusNotFound, model.ErrorResponse{Msg: "Unable to find url"})
		return nil
	}

	http.Redirect(w, r, link.Dest, http.StatusFound)
	return nil
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) error {
	var req model.CreateRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	// an empty body is an empty request, so the missing dest is reported
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	var trailing json.RawMessage
	if err := dec.Decode(&trailing); !errors.Is(err, io.EOF) {
		if err == nil {
			err = ErrTrailingData
		}
		return err
	}

	created, err := h.linkService.Create(r.Context(), req)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			log.Debug().Err(err).Msg("Slug conflict")
			return ErrSlugInUse
		}
		return err
	}

	h.writeJSON(w, http.StatusOK, created)
	return nil
}
