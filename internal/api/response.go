package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/erazemk/skatedesk/internal/rental"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Field string `json:"field,omitempty"`
}

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			zap.S().Errorw("Error encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, errorResponse{Error: message})
}

// rentalError maps a rental error to its HTTP status. Store failures are
// logged and reported without their cause.
func rentalError(w http.ResponseWriter, logger *zap.SugaredLogger, err error) {
	var status int
	kind := rental.KindOf(err)
	switch kind {
	case rental.KindInvalidInput:
		status = http.StatusBadRequest
	case rental.KindNotFound:
		status = http.StatusNotFound
	case rental.KindValidationError:
		status = http.StatusUnprocessableEntity
	default:
		logger.Errorw("Rental operation failed", "error", err)
		jsonResponse(w, http.StatusInternalServerError, errorResponse{Error: "internal error", Kind: string(rental.KindStoreFailure)})
		return
	}

	resp := errorResponse{Error: err.Error(), Kind: string(kind)}
	var e *rental.Error
	if errors.As(err, &e) {
		resp.Field = e.Field
	}
	jsonResponse(w, status, resp)
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// pathID parses the {id} URL parameter.
func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
