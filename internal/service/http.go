// Package service exposes the HTTP surface: auth, expense groups, payments,
// settlement, and wallet operations as JSON over chi.
package service

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/splitvault/backend/internal/auth"
	"github.com/splitvault/backend/internal/ledger"
	"github.com/splitvault/backend/internal/oracle"
	"github.com/splitvault/backend/internal/storage"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			slog.Error("Failed to encode response", "error", err)
		}
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
}

func readJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// statusFor maps the domain error taxonomy onto HTTP statuses: validation
// 400, authentication 401, authorization 403, missing records 404, state
// conflicts 409, oracle-trust and funds failures 422.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrInvalidTitle),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidParticipantCount),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, ledger.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ledger.ErrGroupNotFound),
		errors.Is(err, storage.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrGroupExists),
		errors.Is(err, ledger.ErrDuplicateParticipant),
		errors.Is(err, ledger.ErrAlreadySettled),
		errors.Is(err, ledger.ErrGroupFull),
		errors.Is(err, ledger.ErrNotFullyPaid),
		errors.Is(err, auth.ErrEmailExists):
		return http.StatusConflict
	case errors.Is(err, oracle.ErrStalePrice),
		errors.Is(err, oracle.ErrInvalidPrice),
		errors.Is(err, ledger.ErrInvalidPaymentAmount),
		errors.Is(err, ledger.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
