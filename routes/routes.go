package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/handlers"
	"github.com/nguyencuongabcxyz/sioux-ping-pong-sub000/middleware"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Tournament *handlers.TournamentHandler
	Match      *handlers.MatchHandler
	Group      *handlers.GroupHandler
	WebSocket  *handlers.WebSocketHandler
}

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	Logger         *slog.Logger
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	operatorOnly := func(r chi.Router) {
		r.Use(middleware.Authenticate(opts.JWTSecret, opts.Logger))
		r.Use(middleware.Authorize(middleware.RoleOperator))
	}

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Get("/ws", h.WebSocket.ServeWs)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Auth.Login)
	})

	router.Group(func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		r.Get("/groups", h.Group.ListGroups)
		r.Get("/standings", h.Tournament.GetStandings)
		r.Get("/qualification", h.Tournament.GetQualification)
		r.Get("/bracket", h.Tournament.GetBracket)
		r.Get("/stage", h.Tournament.GetStage)
		r.Get("/matches", h.Match.ListMatches)
		r.Get("/matches/{matchID}", h.Match.GetMatch)

		r.Group(func(r chi.Router) {
			operatorOnly(r)
			r.Post("/groups", h.Group.CreateGroup)
			r.Post("/groups/{groupID}/schedule", h.Group.ScheduleGroup)
			r.Post("/matches/{matchID}/result", h.Match.SubmitResult)
			r.Post("/stage/advance", h.Tournament.AdvanceStage)
			r.Post("/stage/reset", h.Tournament.ResetStage)
		})
	})
}
