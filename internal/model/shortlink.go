package model

import (
	"encoding/json"
	"time"
)

// ShortLink is a persisted slug → destination mapping.
type ShortLink struct {
	ID        string    `json:"_id"`
	Slug      string    `json:"slug"`
	Dest      string    `json:"dest"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateRequest is the body of POST /create. Fields are kept raw so the
// service can tell a missing value from a value of the wrong JSON type.
type CreateRequest struct {
	Dest json.RawMessage `json:"dest"`
	Slug json.RawMessage `json:"slug"`
}

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	Msg  string `json:"msg"`
	Code string `json:"code,omitempty"`
}

// HealthResponse is the body of GET /.
type HealthResponse struct {
	Status int `json:"status"`
}
