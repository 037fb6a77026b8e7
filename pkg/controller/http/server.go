package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"

	"github.com/gasyway/gasyway/pkg/usecase"
	"github.com/gasyway/gasyway/pkg/utils/errutil"
	"github.com/gasyway/gasyway/pkg/utils/logging"
)

type Server struct {
	router *chi.Mux
	auth   usecase.AdminAuthenticator
	sync   SyncUseCase
}

type Options func(*Server)

func WithAuth(auth usecase.AdminAuthenticator) Options {
	return func(s *Server) {
		s.auth = auth
	}
}

func New(sync SyncUseCase, opts ...Options) (*Server, error) {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		sync:   sync,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.sync == nil {
		return nil, goerr.New("sync use case is required")
	}
	if s.auth == nil {
		return nil, goerr.New("admin authenticator is required")
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	r.Route("/api/admin/sync", func(r chi.Router) {
		r.Use(adminAuthMiddleware(s.auth))

		r.Get("/analysis", analysisHandler(s.sync))
		r.Post("/users/{id}/fix-missing", fixMissingHandler(s.sync))
		r.Post("/users/{id}/fix-role", fixRoleHandler(s.sync))
		r.Delete("/users/{id}", removeOrphanHandler(s.sync))
		r.Post("/fix-all", fixAllHandler(s.sync))
		r.Post("/trigger", triggerHandler(s.sync))
	})

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data) //nolint:errcheck // header already committed
}
