package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/AnshRaj112/portfolio-backend/internal/apperr"
)

const maxBodyBytes = 1 << 20

// Response is the JSON envelope shared by every API route.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, Response{Success: true, Message: message, Data: data})
}

func writeFail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{Success: false, Message: message})
}

// writeError maps err onto a status code. Validation, not-found and
// duplicate errors carry their own message; anything else is a 500 with
// fallback as the message and the cause under "error".
func writeError(w http.ResponseWriter, logger *zap.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		writeFail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperr.ErrNotFound):
		writeFail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, apperr.ErrDuplicateKey):
		writeFail(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error(fallback, zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Response{Success: false, Message: fallback, Error: err.Error()})
	}
}

var errInvalidBody = apperr.Invalid("", "Invalid request body")

// readBody returns the raw request body, capped at maxBodyBytes.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, errInvalidBody
	}
	return raw, nil
}

// decodeJSON decodes the request body into v. An empty body leaves v unchanged.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	raw, err := readBody(w, r)
	if err != nil {
		return err
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errInvalidBody
	}
	return nil
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
