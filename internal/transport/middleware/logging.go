package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/vortex-demo/pkg/logger"
)

const (
	maxLoggedBody = 4 << 10
	redacted      = "[FILTERED]"
)

// sensitiveKeys are matched as substrings of lower-cased header names and
// JSON keys. They cover what this server receives and sends: login
// passwords, the session cookie and vortex JWTs.
var sensitiveKeys = []string{
	"password",
	"session",
	"cookie",
	"jwt",
	"authorization",
	"secret",
	"token",
}

// LoggingMiddleware logs each request and its response through the
// context logger, so the request id set upstream is included.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lg := logger.From(r.Context())

		lg.Debug("incoming request",
			"method", r.Method,
			"path", r.URL.Path,
			"query", r.URL.RawQuery,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
			"headers", redactHeaders(r.Header),
			"body", redactBody(peekBody(r)),
		)

		ww := &responseWriter{ResponseWriter: w}
		next.ServeHTTP(ww, r)

		status := ww.statusCode
		if status == 0 {
			status = http.StatusOK
		}
		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}

		lg.Log(r.Context(), level, "response",
			"method", r.Method,
			"path", r.URL.Path,
			"status_code", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"response_size", ww.size,
			"body", redactBody(ww.body.Bytes()),
		)
	})
}

// responseWriter records the status, the size and the first maxLoggedBody
// bytes of the response.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int
	body       bytes.Buffer
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if room := maxLoggedBody - rw.body.Len(); room > 0 {
		rw.body.Write(b[:min(len(b), room)])
	}
	rw.size += len(b)
	return rw.ResponseWriter.Write(b)
}

// peekBody reads up to maxLoggedBody bytes and puts them back in front of
// the rest of the body.
func peekBody(r *http.Request) []byte {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	head, _ := io.ReadAll(io.LimitReader(r.Body, maxLoggedBody))
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), r.Body), r.Body}
	return head
}

func isSensitive(name string) bool {
	name = strings.ToLower(name)
	for _, key := range sensitiveKeys {
		if strings.Contains(name, key) {
			return true
		}
	}
	return false
}

func redactHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for name, values := range headers {
		if isSensitive(name) {
			out[name] = redacted
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

// redactBody returns JSON bodies with sensitive keys masked. Anything that
// is not valid JSON, truncated bodies included, is summarised by size.
func redactBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return fmt.Sprintf("[%d bytes, not logged]", len(body))
	}

	out, err := json.Marshal(redactValue(data))
	if err != nil {
		return fmt.Sprintf("[%d bytes, not logged]", len(body))
	}
	return string(out)
}

func redactValue(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, value := range v {
			if isSensitive(key) {
				out[key] = redacted
				continue
			}
			out[key] = redactValue(value)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = redactValue(item)
		}
		return out
	default:
		return v
	}
}
