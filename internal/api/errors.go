package api

import (
	"encoding/json"
	"net/http"

	"github.com/felixgeelhaar/smartplan/internal/errors"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes one failure.
type ErrorDetail struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// StatusFor maps an error to its HTTP status by code category.
func StatusFor(err error) int {
	switch errors.CodeOf(err).Category() {
	case "REQ", "TASK", "PREF":
		return http.StatusBadRequest
	case "GRAPH":
		return http.StatusUnprocessableEntity
	case "GEN":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errorBody(err error) ErrorBody {
	spErr, ok := errors.As(err)
	if !ok {
		return ErrorBody{Error: ErrorDetail{Code: "INTERNAL", Message: "internal server error"}}
	}
	return ErrorBody{Error: ErrorDetail{
		Code:        string(spErr.Code),
		Message:     spErr.Message,
		Suggestions: spErr.Suggestions,
	}}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes err with the status StatusFor picks. Errors without a
// code are reported without their message.
func writeError(w http.ResponseWriter, err error) int {
	status := StatusFor(err)
	writeJSON(w, status, errorBody(err))
	return status
}
