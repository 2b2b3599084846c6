package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"riparo-be/internal/apperror"
	"riparo-be/internal/logger"

	"go.uber.org/zap"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// writeServiceError maps a service failure to its boundary response. Details
// of unexpected failures are logged, never sent to the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		status := apperror.HTTPStatus(appErr.Kind)
		if status >= http.StatusInternalServerError {
			logger.FromCtx(r.Context()).Error("request failed", zap.Error(err))
			writeError(w, status, appErr.Code, "an internal error occurred, please retry")
			return
		}
		writeError(w, status, appErr.Code, appErr.Message)
		return
	}

	logger.FromCtx(r.Context()).Error("unexpected error kind", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "an internal error occurred, please retry")
}
