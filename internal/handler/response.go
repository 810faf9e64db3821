package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/MikhailRaia/slug-shortener/internal/model"
	"github.com/MikhailRaia/slug-shortener/internal/service"
	"github.com/MikhailRaia/slug-shortener/internal/storage"
)

// handlerFunc is an http.HandlerFunc that forwards failures instead of writing them.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle adapts fn so every returned error goes through writeError.
func (h *Handler) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			h.writeError(w, r, err)
		}
	}
}

// writeError is the single translation point from errors to responses.
// Every kind of failure is reported as 400 with the error text as code.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	event := log.Warn()
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr), errors.Is(err, ErrSlugInUse):
		event = log.Debug()
	case errors.Is(err, storage.ErrUnavailable):
		event = log.Error()
	}
	event.Err(err).
		Str("request_id", chimiddleware.GetReqID(r.Context())).
		Str("uri", r.RequestURI).
		Msg("Request failed")

	h.writeJSON(w, http.StatusBadRequest, model.ErrorResponse{
		Msg:  "Invalid Request",
		Code: err.Error(),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	buf := h.buffers.Get()
	defer h.buffers.Put(buf)

	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	buf.Truncate(buf.Len() - 1)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
