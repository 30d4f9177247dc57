package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/Kishan-kumar001/mern-task-manager/auth"
	"github.com/Kishan-kumar001/mern-task-manager/middleware"
	"github.com/Kishan-kumar001/mern-task-manager/models"
	"github.com/Kishan-kumar001/mern-task-manager/service"
)

const Version = "1.0.0"

var taskOperations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "task_operations_total",
		Help: "Total number of task operations by kind and outcome",
	},
	[]string{"op", "outcome"},
)

func init() {
	prometheus.MustRegister(taskOperations)
}

type Options struct {
	Env                string
	StoreTimeout       time.Duration
	CORSAllowedOrigins []string
}

type Server struct {
	Tasks *service.Tasks
	Auth  *auth.Service
	opts  Options
}

func NewServer(tasks *service.Tasks, authService *auth.Service, opts Options) *Server {
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = 5 * time.Second
	}
	if len(opts.CORSAllowedOrigins) == 0 {
		opts.CORSAllowedOrigins = []string{"*"}
	}
	return &Server{Tasks: tasks, Auth: authService, opts: opts}
}

type contextKey string

const (
	userContextKey   contextKey = "user"
	claimsContextKey contextKey = "claims"
)

func userFromContext(ctx context.Context) *models.User {
	u, _ := ctx.Value(userContextKey).(*models.User)
	return u
}

func claimsFromContext(ctx context.Context) *auth.Claims {
	c, _ := ctx.Value(claimsContextKey).(*auth.Claims)
	return c
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Authorization")
		authHeader := r.Header.Get("Authorization")
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			writeError(w, http.StatusUnauthorized, "Not authorized, no token")
			return
		}

		ctx, cancel := s.storeContext(r)
		u, claims, err := s.Auth.Authenticate(ctx, parts[1])
		cancel()
		if err != nil {
			s.authError(w, r, err)
			return
		}

		ctx = context.WithValue(r.Context(), userContextKey, u)
		ctx = context.WithValue(ctx, claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// storeContext bounds the store calls made on behalf of r.
func (s *Server) storeContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.opts.StoreTimeout)
}

func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":      "available",
		"environment": s.opts.Env,
		"version":     Version,
	})
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders)

	c := cors.New(cors.Options{
		AllowedOrigins: s.opts.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	r.Get("/healthz", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/auth/register", s.RegisterUser)
		r.Post("/auth/login", s.Login)
		r.Post("/auth/refresh", s.RefreshToken)

		// Protected endpoints
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Post("/auth/logout", s.Logout)
			r.Get("/tasks", s.GetTasks)
			r.Post("/tasks", s.CreateTask)
			r.Put("/tasks/{id}", s.UpdateTask)
			r.Delete("/tasks/{id}", s.DeleteTask)
		})
	})

	return c.Handler(r)
}
