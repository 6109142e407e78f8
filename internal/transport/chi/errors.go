package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/wildone/asset-share-commons/internal/domain"
	"github.com/wildone/asset-share-commons/internal/logger"
)

// ErrorCode is the machine-readable code of an error response.
type ErrorCode string

// Error codes returned by the API.
const (
	ErrorCodeBadRequest          ErrorCode = "bad_request"
	ErrorCodeUnauthorized        ErrorCode = "unauthorized"
	ErrorCodeUnsafeSearch        ErrorCode = "unsafe_search"
	ErrorCodeInvalidQuery        ErrorCode = "invalid_query"
	ErrorCodeFulltextUnsupported ErrorCode = "fulltext_not_supported"
	ErrorCodeServiceUnavailable  ErrorCode = "service_unavailable"
	ErrorCodeNotFound            ErrorCode = "not_found"
	ErrorCodeInternal            ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

var errorHandlers = []errorHandler{
	sentinelHandler(domain.ErrUnsafeSearch, http.StatusBadRequest, ErrorCodeUnsafeSearch),
	sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, ErrorCodeInvalidQuery),
	sentinelHandler(domain.ErrFulltextNotSupported, http.StatusNotImplemented, ErrorCodeFulltextUnsupported),
	sentinelHandler(domain.ErrBackendUnavailable, http.StatusServiceUnavailable, ErrorCodeServiceUnavailable),
	sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// The client sees the sentinel message only, never the wrapped chain.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

func handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	for _, h := range errorHandlers {
		if h(w, err) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternal, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}
