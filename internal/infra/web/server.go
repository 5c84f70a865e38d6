package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"shop-seo-console/internal/infra/logging"
	"shop-seo-console/internal/usecase"
)

type Server struct {
	resolutionUC *usecase.ResolutionUseCase
	auth         *AuthManager
	log          *zerolog.Logger
}

func NewServer(resolutionUC *usecase.ResolutionUseCase, auth *AuthManager, logger *zerolog.Logger) *Server {
	srvLog := logger.With().Str("component", "WebServer").Logger()
	return &Server{
		resolutionUC: resolutionUC,
		auth:         auth,
		log:          &srvLog,
	}
}

// Router builds the console API router.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(s.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api/v1/resolutions", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Post("/", submitHandler(s.resolutionUC))
		r.Get("/{jobID}", statusHandler(s.resolutionUC))
	})
	return r
}

// authMiddleware rejects requests without a valid console token and pins the
// request to the shop the token was minted for.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.auth.ParseFromRequest(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		ctx := withShopID(r.Context(), claims.ShopID)
		ctx = logging.WithShopID(ctx, claims.ShopID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := logging.WithTraceID(r.Context(), middleware.GetReqID(r.Context()))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))
		logging.With(ctx, s.log).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
