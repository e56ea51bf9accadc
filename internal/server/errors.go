package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ppiankov/hubconn/internal/analyzer"
)

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorDetail `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", slog.String("error", err.Error()))
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: errorDetail{Code: code, Message: message}})
}

// writeRunError maps a pipeline failure onto a status code.
func writeRunError(w http.ResponseWriter, err error) {
	var cfgErr *analyzer.ConfigError
	if errors.As(err, &cfgErr) {
		writeError(w, http.StatusUnprocessableEntity, "invalid_options", cfgErr.Error())
		return
	}

	slog.Error("analysis failed", slog.String("error", err.Error()))
	writeError(w, http.StatusInternalServerError, "internal_error", "analysis failed")
}
