package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/roomledger/roomledger/internal/auth"
	"github.com/roomledger/roomledger/internal/ledger"
	"github.com/roomledger/roomledger/internal/service"
	"github.com/roomledger/roomledger/internal/storage"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// writeError maps domain errors onto HTTP status codes. Every failure
// surfaces explicitly; nothing is swallowed or retried.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrEmailNotVerified),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrNotEntryPayer),
		errors.Is(err, service.ErrNotRoomMember),
		errors.Is(err, service.ErrWrongRoom),
		errors.Is(err, ledger.ErrPayerCannotSettle),
		errors.Is(err, ledger.ErrNotEntryMember):
		status = http.StatusForbidden
	case errors.Is(err, storage.ErrEntryNotFound),
		errors.Is(err, storage.ErrRoomNotFound),
		errors.Is(err, storage.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, auth.ErrEmailExists),
		errors.Is(err, service.ErrAlreadyInRoom),
		errors.Is(err, storage.ErrAlreadySettled),
		errors.Is(err, ledger.ErrAlreadySettled):
		status = http.StatusConflict
	case errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, storage.ErrTokenInvalid),
		errors.Is(err, service.ErrRoomNameEmpty),
		errors.Is(err, service.ErrValidation),
		errors.Is(err, ledger.ErrNoMembers),
		errors.Is(err, ledger.ErrNonPositiveAmount),
		errors.Is(err, ledger.ErrPayerNotMember):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		slog.Error("internal error", "error", err)
		// Do not leak internals to the client.
		writeJSON(w, status, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return false
	}
	return true
}
