package web

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/config"
	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/domain/ports/repository"
	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/infra/logging"
	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/infra/redis"
	"github.com/ava6969/emergent-ai-test-bed-sub000/internal/usecase"
)

// RateLimiter is what the generate endpoints need from the redis-backed
// limiter. Nil disables limiting.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type Server struct {
	genUC    usecase.GenerationUseCase
	simUC    usecase.SimulationUseCase
	personas repository.PersonaRepository
	goals    repository.GoalRepository
	orgs     repository.OrganizationRepository
	limiter  RateLimiter
	genCfg   config.GenerationConfig
	apiKey   string
	log      *zerolog.Logger
}

func NewServer(
	genUC usecase.GenerationUseCase,
	simUC usecase.SimulationUseCase,
	personas repository.PersonaRepository,
	goals repository.GoalRepository,
	orgs repository.OrganizationRepository,
	limiter RateLimiter,
	genCfg config.GenerationConfig,
	apiKey string,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		genUC:    genUC,
		simUC:    simUC,
		personas: personas,
		goals:    goals,
		orgs:     orgs,
		limiter:  limiter,
		genCfg:   genCfg,
		apiKey:   apiKey,
		log:      logger,
	}
}

// Router builds the full route tree. Health and metrics stay outside the
// auth wall; everything under /api requires the bearer key when one is
// configured.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.traceMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Route("/generate", func(r chi.Router) {
			r.With(s.rateLimit("persona")).Post("/persona", s.handleGeneratePersona)
			r.With(s.rateLimit("goal")).Post("/goal", s.handleGenerateGoal)
			r.Get("/status/{jobID}", s.handleJobStatus)
			r.Get("/status/{jobID}/stream", s.handleJobStream)
		})

		r.Route("/simulations", func(r chi.Router) {
			r.Post("/run", s.handleSimulationRun)
			r.Get("/", s.handleSimulationList)
			r.Get("/{id}", s.handleSimulationGet)
			r.Get("/{id}/status", s.handleSimulationStatus)
			r.Post("/{id}/stop", s.handleSimulationStop)
		})

		r.Route("/personas", func(r chi.Router) {
			r.Get("/", s.handlePersonaList)
			r.Post("/", s.handlePersonaCreate)
			r.Get("/{id}", s.handlePersonaGet)
			r.Put("/{id}", s.handlePersonaUpdate)
			r.Delete("/{id}", s.handlePersonaDelete)
		})
		r.Route("/goals", func(r chi.Router) {
			r.Get("/", s.handleGoalList)
			r.Post("/", s.handleGoalCreate)
			r.Get("/{id}", s.handleGoalGet)
			r.Put("/{id}", s.handleGoalUpdate)
			r.Delete("/{id}", s.handleGoalDelete)
		})
		r.Route("/organizations", func(r chi.Router) {
			r.Get("/", s.handleOrgList)
			r.Post("/", s.handleOrgCreate)
			r.Get("/{id}", s.handleOrgGet)
			r.Put("/{id}", s.handleOrgUpdate)
			r.Delete("/{id}", s.handleOrgDelete)
		})
	})

	return r
}

// traceMiddleware makes the chi request ID available to logging.With so
// log lines written below a handler carry the same trace_id.
func (s *Server) traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			r = r.WithContext(logging.WithTraceID(r.Context(), reqID))
		}
		next.ServeHTTP(w, r)
	})
}

// authMiddleware provides simple Bearer token authentication. An empty
// configured key leaves the API open, which is the local-dev default.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			http.Error(w, "Unauthorized: Malformed token", http.StatusUnauthorized)
			return
		}

		if tokenParts[1] != s.apiKey {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) rateLimit(entity string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s.limiter == nil || s.genCfg.RateLimitPerMinute <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			caller := r.RemoteAddr
			if host := strings.Split(r.RemoteAddr, ":"); len(host) > 0 {
				caller = host[0]
			}
			key := redis.SubmitKey(caller, entity)
			ok, err := s.limiter.Allow(r.Context(), key, s.genCfg.RateLimitPerMinute, time.Minute)
			if err != nil {
				// A broken limiter should not take submissions down with it.
				s.log.Warn().Err(err).Msg("rate limiter unavailable, allowing request")
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				http.Error(w, "Too many generation requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
