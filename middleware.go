package todoapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

const (
	corsAllowOrigin  = "*"
	corsAllowHeaders = "content-type, accept"
	corsAllowMethods = "OPTIONS, GET, POST, DELETE"
)

// DefaultMiddleware applies the middleware used for every request
func (a *API) DefaultMiddleware(r chi.Router) {
	r.Use(CORS)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(a.logMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestSize(a.maxBodyBytes))
}

// CORS sets the fixed cross-origin headers on every response and answers preflight requests
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := w.Header()
		header.Set("Access-Control-Allow-Origin", corsAllowOrigin)
		header.Set("Access-Control-Allow-Headers", corsAllowHeaders)
		header.Set("Access-Control-Allow-Methods", corsAllowMethods)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (a *API) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := slog.Default()
		logger = logger.With(
			"method", r.Method,
			"path", r.RequestURI,
			"host", r.Host,
			"from", r.RemoteAddr,
			"request_id", middleware.GetReqID(r.Context()),
		)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		t1 := time.Now()
		defer func() {
			logger.With(
				"status", ww.Status(),
				"bytes_written", ww.BytesWritten(),
				"time_elapsed", time.Since(t1),
			).Info("response completed")
		}()

		next.ServeHTTP(ww, r.WithContext(NewContextWithLogger(r.Context(), logger)))
	})
}

// todoExistsMiddleware reads the Todo from the ID in the URL and stores it in the request context
func (a *API) todoExistsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := GetLoggerFromContext(r.Context())

		todo, httpErr := a.GetRequestedTodo(r)
		if httpErr != nil {
			logger.Error("error getting requested todo", "status", httpErr.StatusText, "error", httpErr.ErrorText)
			_ = render.Render(w, r, httpErr)
			return
		}

		logger = logger.With(IDParamKey, todo.ID)
		logger.Debug("got todo")

		ctx := newContextWithTodo(r.Context(), todo)
		ctx = NewContextWithLogger(ctx, logger)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
