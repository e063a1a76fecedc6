package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/Tomlord1122/tick/internal/domain"
	"github.com/Tomlord1122/tick/internal/logger"
)

// Envelope statuses.
const (
	statusOK    = "ok"
	statusError = "error"
)

// Envelope wraps every todo response. Exactly one of Items, Item or Message
// is set besides Status; Code accompanies Message on errors.
type Envelope struct {
	Status  string      `json:"status"`
	Items   any         `json:"items,omitempty"`
	Item    any         `json:"item,omitempty"`
	Code    domain.Kind `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
}

// httpStatus maps an error kind to a transport status. The envelope carries
// the kind itself, so clients never need the status code.
func httpStatus(k domain.Kind) int {
	switch k {
	case domain.KindInvalid:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func respondOK(w http.ResponseWriter) {
	respondWithJSON(w, http.StatusOK, Envelope{Status: statusOK})
}

func respondItems(w http.ResponseWriter, items []domain.Todo) {
	if items == nil {
		items = []domain.Todo{}
	}
	respondWithJSON(w, http.StatusOK, Envelope{Status: statusOK, Items: items})
}

func respondItem(w http.ResponseWriter, code int, item domain.Todo) {
	respondWithJSON(w, code, Envelope{Status: statusOK, Item: item})
}

func respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	kind, msg := domain.KindOf(err), err.Error()
	// drivers do not always wrap the deadline they tripped on
	if kind == domain.KindStore && errors.Is(r.Context().Err(), context.DeadlineExceeded) {
		kind, msg = domain.KindTimeout, "request timed out"
	}
	switch kind {
	case domain.KindStore:
		logger.C(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("store error")
	case domain.KindTimeout:
		logger.C(r.Context()).Warn().Err(err).Str("path", r.URL.Path).Msg("request timed out")
	}
	respondWithJSON(w, httpStatus(kind), Envelope{
		Status:  statusError,
		Code:    kind,
		Message: msg,
	})
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusNotFound, Envelope{
		Status:  statusError,
		Code:    domain.KindNotFound,
		Message: fmt.Sprintf("Route %s does not exist", r.URL.Path),
	})
}

func methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusMethodNotAllowed, Envelope{
		Status:  statusError,
		Code:    domain.KindInvalid,
		Message: fmt.Sprintf("Method %s is not allowed on %s", r.Method, r.URL.Path),
	})
}

// requestTimeout bounds the request context. Handlers observe the deadline
// through the store call and answer with a timeout envelope themselves.
func requestTimeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Get().Error().Err(err).Msg("marshal response")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"status":"error","code":"store","message":"Internal server error preparing response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// requestLogger puts chi's request id on the context logger and writes one
// access line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logger.WithRequest(r.Context(), middleware.GetReqID(r.Context()))
		r = r.WithContext(ctx)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		logger.C(ctx).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", time.Since(start)).
			Msg("request done")
	})
}

// recoverer turns a panic into a store-kind error envelope.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				logger.C(r.Context()).Error().
					Interface("panic", v).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")
				respondWithJSON(w, http.StatusInternalServerError, Envelope{
					Status:  statusError,
					Code:    domain.KindStore,
					Message: "internal server error",
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
