package middleware

import (
	"compress/gzip"
	"fmt"
	"io"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Compress gzips JSON and text responses for clients that accept it.
func Compress() func(http.Handler) http.Handler {
	return chimiddleware.Compress(gzip.BestSpeed, "application/json", "text/plain", "text/html")
}

// GzipReader transparently decompresses gzipped request bodies. A body that
// is not valid gzip is handed to onError instead of the next handler.
func GzipReader(onError func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Content-Encoding") != "gzip" {
				next.ServeHTTP(w, r)
				return
			}

			gzReader, err := gzip.NewReader(r.Body)
			if err != nil {
				onError(w, r, fmt.Errorf("decompress body: %w", err))
				return
			}
			defer gzReader.Close()

			r.Body = io.NopCloser(gzReader)
			r.Header.Del("Content-Encoding")
			r.ContentLength = -1

			next.ServeHTTP(w, r)
		})
	}
}
