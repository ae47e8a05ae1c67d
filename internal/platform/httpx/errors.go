package httpx

import (
	"errors"
	"net/http"

	"github.com/khovp/giaokho/internal/shared"
)

// ErrValidation marks request payloads that fail structural validation.
var ErrValidation = errors.New("validation failed")

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrEmptySelection):
		Problem(w, http.StatusBadRequest, "Empty Selection", err.Error())
	case errors.Is(err, shared.ErrDataFormat):
		Problem(w, http.StatusBadGateway, "Invalid Feed Payload", err.Error())
	case errors.Is(err, shared.ErrFeedUnavailable):
		Problem(w, http.StatusBadGateway, "Feed Unavailable", err.Error())
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
