/*
This file defines the main Router, applying middleware like logging, CORS,
and IP-based rate limiting before delegating requests to specific handlers
(API, metrics, and WebSocket).
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"acaragraph/internal/pkg/auth/jwt"
	"acaragraph/internal/pkg/limiter"
	"acaragraph/internal/pkg/logx"
	"acaragraph/internal/pkg/metrics"
	"acaragraph/internal/pkg/resp"
)

const (
	RegisterRate  = 0.05
	RegisterBurst = 2
	ConnectRate   = 0.2
	ConnectBurst  = 5
)

// Router sets up the main HTTP routing table (chi.Router) for the application.
// It initializes IP-based rate limiters, configures CORS, and applies global
// and per-route middleware.
func Router(deps *AppDeps) http.Handler {
	registerLimiter := limiter.NewIPRateLimiter(rate.Limit(RegisterRate), RegisterBurst)
	connectLimiter := limiter.NewIPRateLimiter(rate.Limit(ConnectRate), ConnectBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	var wsUpgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.Environment == "development" {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-User-Id"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"status":  "ok",
			"service": "Acaragraph Server",
		}
		resp.RespondSuccess(w, r, data)
	})

	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Use(jwt.IdentityExtractorMiddleware(deps.Config.JWTSecret))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/check-code", HandleCheckCode(deps))
			auth.With(registerLimiter.Middleware).Post("/register", HandleRegister(deps))
		})

		api.Get("/messages", HandleListMessages(deps))
		api.Get("/users/online", HandleOnlineUsers(deps))
		api.Get("/users/me", HandleGetMe(deps))

		api.Route("/admin", func(admin chi.Router) {
			admin.Post("/codes", HandleCreateCode(deps))
			admin.Get("/codes", HandleListCodes(deps))
			admin.Get("/users", HandleListUsers(deps))
			admin.Post("/users/{id}/action", HandleUserAction(deps))
			admin.Get("/stats", HandleStats(deps))
			admin.Get("/settings/{key}", HandleGetSetting(deps))
			admin.Post("/settings/{key}", HandleSetSetting(deps))
		})

		if deps.StorageService != nil {
			api.Route("/files", func(files chi.Router) {
				files.Post("/presign-upload", HandlePresignUpload(deps))
				files.Get("/presign-download", HandlePresignDownload(deps))
				files.Post("/upload", HandleDirectUpload(deps))
			})
		}
	})

	r.Get("/ws", HandleWebSocket(wsUpgrader, connectLimiter, deps))

	return r
}
