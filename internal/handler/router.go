/*
Package handler provides the HTTP handlers and routing of the AlumniLink server.

This file defines the main Router, applying logging, CORS, metrics and session
middleware before delegating to the directory, messaging, AI, file and websocket
handlers.
*/
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"alumnilink/internal/pkg/auth/jwt"
	"alumnilink/internal/pkg/limiter"
	"alumnilink/internal/pkg/logx"
	"alumnilink/internal/pkg/resp"
)

const (
	// AuthRate and AuthBurst limit login and sign-up attempts per IP.
	AuthRate  = 0.5
	AuthBurst = 10

	// ConnectRate and ConnectBurst limit websocket connection attempts per IP.
	ConnectRate  = 0.2
	ConnectBurst = 5

	healthTimeout = 2 * time.Second
)

// Limiters groups the per-IP rate limiters used by the router.
type Limiters struct {
	Auth    *limiter.IPRateLimiter
	AI      *limiter.IPRateLimiter
	Connect *limiter.IPRateLimiter
}

// NewLimiters builds the limiters from the configured AI rate.
func NewLimiters(aiRate float64, aiBurst int) *Limiters {
	return &Limiters{
		Auth:    limiter.NewIPRateLimiter(rate.Limit(AuthRate), AuthBurst),
		AI:      limiter.NewIPRateLimiter(rate.Limit(aiRate), aiBurst),
		Connect: limiter.NewIPRateLimiter(rate.Limit(ConnectRate), ConnectBurst),
	}
}

// Close stops the limiters' cleanup loops.
func (l *Limiters) Close() {
	l.Auth.Close()
	l.AI.Close()
	l.Connect.Close()
}

// Router sets up the routing table.
func Router(deps *AppDeps, limiters *Limiters) http.Handler {
	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	wsUpgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.IsDevelopment() {
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
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}

	r.Get("/health", HandleHealth(deps))
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	identity := jwt.IdentityExtractorMiddleware(deps.Config.JWTSecret)
	members := jwt.RequireRole(jwt.RoleAlumni, jwt.RoleStudent)
	admins := jwt.RequireRole(jwt.RoleAdmin)

	r.Route("/api", func(api chi.Router) {
		api.Use(identity)

		api.Route("/auth", func(auth chi.Router) {
			auth.Group(func(open chi.Router) {
				open.Use(limiters.Auth.Middleware)
				open.Post("/login/student", HandleLoginStudent(deps))
				open.Post("/login/alumni", HandleLoginAlumni(deps))
				open.Post("/login/admin", HandleLoginAdmin(deps))
				open.Post("/signup/alumni", HandleSignUpAlumni(deps))
			})
			auth.With(jwt.RequireSession).Get("/me", HandleMe(deps))
		})

		api.Group(func(session chi.Router) {
			session.Use(jwt.RequireSession)

			session.Route("/alumni", func(alumni chi.Router) {
				alumni.Get("/", HandleListAlumni(deps))
				alumni.With(admins).Post("/", HandleCreateAlumni(deps))
				alumni.Get("/{id}", HandleGetAlumni(deps))
				alumni.Put("/{id}", HandleUpdateAlumni(deps))
				alumni.With(admins).Delete("/{id}", HandleDeleteAlumni(deps))
			})

			session.Route("/students", func(students chi.Router) {
				students.Get("/", HandleListStudents(deps))
				students.With(admins).Post("/", HandleCreateStudent(deps))
				students.Get("/{id}", HandleGetStudent(deps))
				students.Put("/{id}", HandleUpdateStudent(deps))
				students.With(admins).Delete("/{id}", HandleDeleteStudent(deps))
			})

			session.Route("/events", func(events chi.Router) {
				events.Get("/", HandleListEvents(deps))
				events.With(admins).Post("/", HandleCreateEvent(deps))
				events.Get("/{id}", HandleGetEvent(deps))
				events.With(admins).Put("/{id}", HandleUpdateEvent(deps))
				events.With(admins).Delete("/{id}", HandleDeleteEvent(deps))
				events.Post("/{id}/rsvp", HandleRSVP(deps))
			})

			session.With(admins).Get("/admin/overview", HandleOverview(deps))

			session.Route("/messages", func(messages chi.Router) {
				messages.Use(members)
				messages.Get("/conversations", HandleListConversations(deps))
				messages.Get("/conversations/{partnerId}", HandleGetConversation(deps))
				messages.Post("/conversations/{partnerId}", HandleSendMessage(deps))
			})

			session.Route("/ai", func(assist chi.Router) {
				assist.Use(limiters.AI.Middleware)
				assist.With(admins).Post("/invitation", HandleGenerateInvitation(deps))
				assist.Post("/mentors", HandleFindMentors(deps))
				assist.Post("/enrich", HandleEnrichProfile(deps))
			})

			session.Route("/files/avatar", func(files chi.Router) {
				files.Post("/", HandleUploadAvatar(deps))
				files.Post("/presign", HandlePresignAvatar(deps))
				files.Post("/confirm", HandleConfirmAvatar(deps))
			})
		})
	})

	r.With(identity).Get("/ws", HandleWebSocket(deps, wsUpgrader, limiters.Connect))

	return r
}

// HandleHealth reports whether the entity store backend is reachable.
func HandleHealth(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		data := map[string]string{
			"status":  "ok",
			"service": "AlumniLink Server",
			"store":   "ok",
		}

		if err := deps.Store.Backend().Ping(ctx); err != nil {
			logx.Warn("Health check: store backend unreachable", "error", err.Error())
			data["status"] = "degraded"
			data["store"] = "unreachable"
			resp.RespondJSON(w, r, http.StatusServiceUnavailable, resp.JSONResponse{
				Code:    0,
				Message: "degraded",
				Data:    data,
			})
			return
		}

		resp.RespondSuccess(w, r, data)
	}
}
