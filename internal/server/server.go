package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pedigree-app/pedigree/pkg/errors"
	"github.com/pedigree-app/pedigree/pkg/session"
	"github.com/pedigree-app/pedigree/pkg/store"
)

// Server is the pedigree sync backend.
type Server struct {
	store    store.Store
	verifier session.Verifier
	sessions session.Store
	logger   *log.Logger
	router   chi.Router
}

// New wires a server from its collaborators. A nil verifier rejects
// every bearer token; a nil session store disables session auth.
func New(st store.Store, verifier session.Verifier, sessions session.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		store:    st,
		verifier: verifier,
		sessions: sessions,
		logger:   logger,
	}
	s.router = s.routes()
	return s
}

// NewFromConfig builds the store, session backend and verifier the
// config asks for and returns the assembled server.
func NewFromConfig(ctx context.Context, cfg Config, logger *log.Logger) (*Server, error) {
	var st store.Store
	switch cfg.Store {
	case "mongo":
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorage, err, "connect mongo")
		}
		ms := store.NewMongo(client.Database(cfg.MongoDatabase))
		if err := ms.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		st = ms
	default:
		st = store.NewMemory()
	}

	var sessions session.Store
	if cfg.RedisAddr != "" {
		sessions = session.NewRedisStore(redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}))
	} else {
		sessions = session.NewMemoryStore()
	}

	verifier := session.StaticVerifier{}
	for token, id := range cfg.DevTokens {
		verifier[token] = session.Identity{
			GoogleSub: id.GoogleSub,
			Email:     id.Email,
			Name:      id.Name,
		}
	}

	return New(st, verifier, sessions, logger), nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Get("/health", s.handleHealth)
	r.Post("/v1/auth/google", s.handleGoogleLogin)

	r.Route("/v1/pedigree/{googleSub}", func(r chi.Router) {
		r.Get("/", s.handleGetPedigree)
		r.Put("/", s.handlePutPedigree)
		r.Patch("/", s.handlePatchPedigree)
		r.Delete("/", s.handleDeletePedigree)
	})

	return r
}

// requestLogger logs one line per request with method, path, status
// and latency.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"elapsed", time.Since(start).Round(time.Millisecond),
		)
	})
}

// identity resolves the caller's identity from the Authorization
// header: first as a bearer access token via the verifier, then as a
// session ID. Returns nil when the request carries no usable
// credential.
func (s *Server) identity(r *http.Request) *session.Identity {
	token := bearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return nil
	}

	if s.verifier != nil {
		if id, err := s.verifier.Verify(r.Context(), token); err == nil && id != nil {
			return id
		}
	}
	if s.sessions != nil {
		if sess, err := s.sessions.Get(r.Context(), token); err == nil && sess != nil {
			id := sess.Identity
			return &id
		}
	}
	return nil
}

func bearerToken(authorization string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(authorization, prefix) {
		return ""
	}
	return strings.TrimSpace(authorization[len(prefix):])
}
