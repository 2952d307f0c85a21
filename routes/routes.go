package routes

import (
	"log/slog"
	"net/http"

	_ "github.com/Dosada05/chess-league/docs" // swagger spec
	"github.com/Dosada05/chess-league/handlers"
	"github.com/Dosada05/chess-league/metrics"
	"github.com/Dosada05/chess-league/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Team       *handlers.TeamHandler
	Player     *handlers.PlayerHandler
	Official   *handlers.OfficialHandler
	Tournament *handlers.TournamentHandler
	Round      *handlers.RoundHandler
	Game       *handlers.GameHandler
	Dashboard  *handlers.DashboardHandler
	WebSocket  *handlers.WebSocketHandler
}

type Options struct {
	Logger         *slog.Logger
	Recorder       metrics.Recorder
	MetricsHandler http.Handler
	Authenticator  middleware.Authenticator
	// TokenLimiter ограничивает попытки получить токен; nil отключает ограничение.
	TokenLimiter       *middleware.IPRateLimiter
	CORSAllowedOrigins []string
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestLogger(opts.Logger, opts.Recorder))
	router.Use(chiMiddleware.Recoverer)

	if len(opts.CORSAllowedOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	router.Get("/ping", handlers.Ping)
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	if opts.MetricsHandler != nil {
		router.Handle("/metrics", opts.MetricsHandler)
	}

	// Публичные маршруты
	router.Get("/officials/verify", h.Official.VerifyOfficial)
	router.Post("/officials/verify", h.Official.VerifyOfficial)
	router.Group(func(r chi.Router) {
		if opts.TokenLimiter != nil {
			r.Use(opts.TokenLimiter.Middleware)
		}
		r.Post("/auth/token", h.Auth.IssueToken)
	})

	// Защищенные маршруты
	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(opts.Authenticator))

		r.Get("/stats", h.Dashboard.GetStats)

		r.Route("/teams", func(r chi.Router) {
			r.Post("/", h.Team.CreateTeam)
			r.Get("/", h.Team.ListTeams)
			r.Route("/{teamID}", func(r chi.Router) {
				r.Get("/", h.Team.GetTeamByID)
				r.Patch("/", h.Team.UpdateTeam)
				r.Get("/players", h.Team.ListTeamPlayers)
			})
		})

		r.Route("/players", func(r chi.Router) {
			r.Post("/", h.Player.CreatePlayer)
			r.Get("/", h.Player.ListPlayers)
			r.Route("/{playerID}", func(r chi.Router) {
				r.Get("/", h.Player.GetPlayerByID)
				r.Patch("/", h.Player.UpdatePlayer)
				r.Delete("/", h.Player.DeletePlayer)
			})
		})

		r.Route("/officials", func(r chi.Router) {
			r.Post("/", h.Official.CreateOfficial)
			r.Get("/", h.Official.ListOfficials)
			r.Route("/{officialID}", func(r chi.Router) {
				r.Get("/", h.Official.GetOfficialByID)
				r.Patch("/", h.Official.UpdateOfficial)
			})
		})

		r.Route("/tournaments", func(r chi.Router) {
			r.Post("/", h.Tournament.CreateTournament)
			r.Get("/", h.Tournament.ListTournaments)
			r.Route("/{tournamentID}", func(r chi.Router) {
				r.Get("/", h.Tournament.GetTournamentByID)
				r.Patch("/", h.Tournament.UpdateTournament)
				r.Post("/enroll", h.Tournament.Enroll)
				r.Get("/enrollments", h.Tournament.ListEnrollments)
				r.Get("/games", h.Tournament.ListTournamentGames)
				r.Get("/standings", h.Round.Standings)
				r.Get("/players/{playerID}/standing", h.Round.PlayerStanding)
				r.Get("/rounds", h.Tournament.ListRounds)
				r.Get("/rounds/{round}/preview", h.Round.PreviewRound)
				r.Post("/rounds/{round}", h.Round.OrganizeRound)
			})
		})

		r.Route("/games", func(r chi.Router) {
			r.Post("/", h.Game.CreateGame)
			r.Get("/", h.Game.ListGames)
			r.Route("/{gameID}", func(r chi.Router) {
				r.Get("/", h.Game.GetGameByID)
				r.Patch("/", h.Game.UpdateGame)
				r.Delete("/", h.Game.DeleteGame)
				r.Post("/resolve", h.Game.ResolveGame)
			})
		})
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.AuthenticateWebSocket(opts.Authenticator))
		r.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)
	})
}
