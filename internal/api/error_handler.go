package api

import (
	"net/http"

	"github.com/abacusquest/abacusquest/internal/errors"
	"github.com/abacusquest/abacusquest/internal/logger"
)

var (
	errNotFoundRoute    = &errors.AppError{Code: errors.ErrCodeNotFound, Message: "route not found", Status: http.StatusNotFound}
	errMethodNotAllowed = &errors.AppError{Code: errors.ErrCodeBadRequest, Message: "method not allowed", Status: http.StatusMethodNotAllowed}
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// handleError centralizes error handling for HTTP responses
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	appErr := errors.As(err)

	// Log based on status code
	if appErr.Status >= 500 {
		log.Error("server error: %v", appErr)
	} else if appErr.Status >= 400 {
		log.Warn("client error: %v", appErr)
	} else {
		log.Debug("error: %v", appErr)
	}

	writeJSON(w, appErr.Status, errorBody{Error: errorDetail{Code: appErr.Code, Message: appErr.Message}})
}
