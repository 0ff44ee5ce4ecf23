package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/YelzhanWeb/canteen/internal/domain"
)

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func respondData(w http.ResponseWriter, code int, message string, data any) {
	writeJSON(w, code, successResponse{Success: true, Message: message, Data: data})
}

func respondList(w http.ResponseWriter, count int, data any) {
	writeJSON(w, http.StatusOK, successResponse{Success: true, Count: &count, Data: data})
}

// respondError translates the domain error taxonomy to transport codes.
// Anything unrecognized is an internal error with the detail suppressed.
func respondError(w http.ResponseWriter, err error) {
	code := statusForError(err)

	msg := err.Error()
	if code == http.StatusInternalServerError {
		msg = "internal server error"
	}
	writeJSON(w, code, errorResponse{Success: false, Error: msg})
}

func statusForError(err error) int {
	var (
		invalidQty   *domain.InvalidQuantityError
		insufficient *domain.InsufficientStockError
		invalidTrans *domain.InvalidTransitionError
		terminal     *domain.AlreadyTerminalError
	)

	switch {
	case errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrMenuItemNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusConflict

	case errors.Is(err, domain.ErrEmptyOrder),
		errors.As(err, &invalidQty),
		errors.As(err, &insufficient),
		errors.As(err, &invalidTrans),
		errors.As(err, &terminal):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}
