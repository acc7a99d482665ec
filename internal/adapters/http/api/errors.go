package api

import (
	"errors"
	"net/http"

	"github.com/okian/touchline/internal/adapters/repository"
	"github.com/okian/touchline/internal/metrica"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest  = errors.New("bad request")
	ErrMissingPart = errors.New("missing multipart part")
	ErrTooLarge    = errors.New("upload too large")
)

// Error codes returned in the body of failed requests, next to the parser's
// own kinds.
const (
	codeBadRequest = "bad_request"
	codeNotFound   = "not_found"
	codeTooLarge   = "too_large"
	codeInternal   = "internal_error"
)

// classify maps an error to a status code and error code.
func classify(err error) (int, string) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr), errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge, codeTooLarge
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrMissingPart):
		return http.StatusBadRequest, codeBadRequest
	}
	switch kind := metrica.Kind(err); kind {
	case metrica.KindMalformedRecord, metrica.KindMalformedMetadata,
		metrica.KindTypeMismatch, metrica.KindMissingFile:
		return http.StatusBadRequest, kind
	}
	return http.StatusInternalServerError, codeInternal
}
