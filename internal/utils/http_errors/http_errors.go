package utils

import (
	"docshare/internal/models"
	"encoding/json"
	"errors"
	"net/http"
)

// public lists the errors whose text may reach clients, most specific first.
var public = []error{
	models.ErrDuplicateContent,
	models.ErrShareExists,
	models.ErrUserExists,
	models.ErrDocumentNotFound,
	models.ErrShareNotFound,
	models.ErrUserNotFound,
	models.ErrInvalidPermissionLevel,
	models.ErrInvalidPermission,
	models.ErrTooManyRecipients,
	models.ErrUnknownRecipient,
	models.ErrInvalidStatus,
	models.ErrUnknownTemplate,
	models.ErrInvalidCredentials,
	models.ErrForbidden,
	models.ErrConflict,
	models.ErrNotFound,
	models.ErrInvalidParams,
	models.ErrStoreUnavailable,
	models.ErrMethodNotAllowed,
}

func WriteJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code": status,
			"text": msg,
		},
	})
}

// WriteStatusError answers bodiless requests such as HEAD.
func WriteStatusError(w http.ResponseWriter, status int) {
	w.WriteHeader(status)
}

func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, models.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, models.ErrInvalidParams):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	case errors.Is(err, models.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// Message is the client-facing text for err. Wrapping context is dropped.
func Message(err error) string {
	var reason *models.ReasonError
	if errors.As(err, &reason) {
		return reason.Reason
	}
	for _, e := range public {
		if errors.Is(err, e) {
			return e.Error()
		}
	}
	return models.ErrInternal.Error()
}

func WriteError(w http.ResponseWriter, err error) {
	WriteJSONError(w, StatusFor(err), Message(err))
}

// WriteData writes payload inside the {"data": ...} envelope.
func WriteData(w http.ResponseWriter, status int, payload any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	return json.NewEncoder(w).Encode(map[string]any{"data": payload})
}
