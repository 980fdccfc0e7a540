package transport

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/vortex-demo/internal"
	"github.com/frahmantamala/vortex-demo/pkg/logger"
)

const maxBodyBytes = 1 << 20

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteAppError writes the error envelope. Anything that is not an
// *internal.AppError becomes a generic 500 and only its detail is logged.
func (h *BaseHandler) WriteAppError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := internal.IsAppError(err)
	if !ok {
		appErr = internal.ErrInternal.WithCause(err)
	}

	lg := h.Logger
	if r != nil {
		lg = logger.From(r.Context())
	}
	if appErr.StatusCode >= http.StatusInternalServerError {
		lg.Error("http error", "status", appErr.StatusCode, "code", appErr.Code, "error", err)
	} else {
		lg.Debug("http error", "status", appErr.StatusCode, "code", appErr.Code, "message", appErr.GetDetailedMessage())
	}

	status, body := appErr.ToHTTPResponse()
	h.WriteJSON(w, status, body)
}

// DecodeJSON reads a bounded JSON body into dst.
func (h *BaseHandler) DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return internal.ErrInvalidRequestBody
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return internal.ErrInvalidRequestBody.WithCause(errors.New("empty body"))
		}
		return internal.ErrInvalidRequestBody.WithCause(err)
	}
	return nil
}

// NotFound and MethodNotAllowed give the router JSON fallbacks.
func (h *BaseHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.WriteAppError(w, r, internal.ErrRouteNotFound)
}

func (h *BaseHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.WriteAppError(w, r, internal.ErrMethodNotAllowed)
}
