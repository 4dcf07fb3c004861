package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/halvard/skein/internal/archive"
	"github.com/halvard/skein/internal/canvasdoc"
	"github.com/halvard/skein/internal/engine"
)

// QueryRequest is the request body for POST /query.
type QueryRequest = engine.QueryRequest

// QueryResult is the response body for POST /query.
type QueryResult = engine.QueryResult

// PlaceRequest is the request body for POST /place.
type PlaceRequest struct {
	Document string `json:"document" validate:"required"`
}

// Validate validates the place request.
func (r PlaceRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Document, validation.Required),
	)
}

// HealRequest is the request body for POST /heal.
type HealRequest struct {
	Language string `json:"language" example:"python" validate:"required"`
	Source   string `json:"source" validate:"required"`
}

// Validate validates the heal request.
func (r HealRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Language, validation.Required, validation.In(
			canvasdoc.LangPython, canvasdoc.LangCSharp, canvasdoc.LangVB)),
		validation.Field(&r.Source, validation.Required),
	)
}

// SaveDocumentRequest is the request body for PUT /documents/{name}.
type SaveDocumentRequest struct {
	Document string `json:"document" validate:"required"`
	Notes    string `json:"notes"`
}

// Validate validates the save request.
func (r SaveDocumentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Document, validation.Required),
	)
}

// DocumentListResponse wraps paginated document listings.
type DocumentListResponse struct {
	Documents []archive.DocRow `json:"documents" validate:"required"`
	Total     int              `json:"total" example:"42" validate:"required"`
}

// DocumentDetail is the response body for GET /documents/{name}.
type DocumentDetail struct {
	archive.DocRow
	Document string `json:"document"`
}
