package routes

import (
	"net/http"

	"github.com/Dosada05/padel-system/handlers"
	"github.com/Dosada05/padel-system/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// SetupRoutes wires every HTTP endpoint onto the router. Read endpoints for
// published tournament data are public; everything that mutates state requires
// a company token.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	tournamentHandler *handlers.TournamentHandler,
	playerHandler *handlers.PlayerHandler,
	coupleHandler *handlers.CoupleHandler,
	courtHandler *handlers.CourtHandler,
	stagingHandler *handlers.StagingHandler,
	matchHandler *handlers.MatchHandler,
	schedulingHandler *handlers.SchedulingHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate([]byte(jwtSecret))

	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)

	router.Route("/tournaments", func(r chi.Router) {
		// Public reads for spectator pages.
		r.Get("/{tournamentID}", tournamentHandler.GetByIDHandler)
		r.Get("/{tournamentID}/full", tournamentHandler.GetFullHandler)
		r.Get("/{tournamentID}/couples", coupleHandler.ListByTournamentHandler)
		r.Get("/{tournamentID}/stages", stagingHandler.ListStagesHandler)
		r.Get("/{tournamentID}/courts", courtHandler.ListTournamentCourtsHandler)
		r.Get("/{tournamentID}/matches", matchHandler.ListByTournamentHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/", tournamentHandler.CreateHandler)
			r.Get("/", tournamentHandler.ListHandler)
			r.Patch("/{tournamentID}", tournamentHandler.UpdateHandler)
			r.Delete("/{tournamentID}", tournamentHandler.DeleteHandler)
			r.Patch("/{tournamentID}/status", tournamentHandler.UpdateStatusHandler)
			r.Post("/{tournamentID}/poster", tournamentHandler.UploadPosterHandler)

			r.Get("/{tournamentID}/standings", tournamentHandler.StandingsHandler)
			r.Post("/{tournamentID}/stats/recalculate", tournamentHandler.RecalculateStatsHandler)

			r.Post("/{tournamentID}/couples", coupleHandler.CreateHandler)
			r.Post("/{tournamentID}/stages", stagingHandler.CreateStageHandler)

			r.Post("/{tournamentID}/courts/{courtID}", courtHandler.LinkHandler)
			r.Patch("/{tournamentID}/courts/{courtID}", courtHandler.UpdateAvailabilityHandler)
			r.Delete("/{tournamentID}/courts/{courtID}", courtHandler.UnlinkHandler)
			r.Get("/{tournamentID}/courts/availability", schedulingHandler.CourtAvailabilityHandler)

			r.Post("/{tournamentID}/schedule/auto", schedulingHandler.AutoScheduleHandler)
			r.Post("/{tournamentID}/schedule/order", schedulingHandler.CalculateOrderHandler)
		})
	})

	router.Route("/players", func(r chi.Router) {
		r.Use(authenticate)

		r.Post("/", playerHandler.CreateHandler)
		r.Get("/", playerHandler.ListHandler)
		r.Get("/{playerID}", playerHandler.GetByIDHandler)
	})

	router.Route("/couples", func(r chi.Router) {
		r.Get("/{coupleID}", coupleHandler.GetByIDHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Delete("/{coupleID}", coupleHandler.RemoveHandler)
		})
	})

	router.Route("/courts", func(r chi.Router) {
		r.Use(authenticate)

		r.Post("/", courtHandler.CreateHandler)
		r.Get("/", courtHandler.ListHandler)
	})

	router.Route("/stages", func(r chi.Router) {
		r.Get("/{stageID}", stagingHandler.GetStageHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Patch("/{stageID}", stagingHandler.UpdateStageHandler)
			r.Delete("/{stageID}", stagingHandler.DeleteStageHandler)
			r.Post("/{stageID}/groups", stagingHandler.CreateGroupHandler)
			r.Post("/{stageID}/brackets", stagingHandler.CreateBracketHandler)
			r.Post("/{stageID}/assign-couples", stagingHandler.AssignCouplesHandler)
			r.Post("/{stageID}/matches/generate", stagingHandler.GenerateMatchesHandler)
		})
	})

	router.Route("/groups", func(r chi.Router) {
		r.Get("/{groupID}/couples", stagingHandler.ListGroupCouplesHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Delete("/{groupID}", stagingHandler.DeleteGroupHandler)
			r.Post("/{groupID}/couples/{coupleID}", stagingHandler.AddCoupleToGroupHandler)
			r.Delete("/{groupID}/couples/{coupleID}", stagingHandler.RemoveCoupleFromGroupHandler)
			r.Get("/{groupID}/standings", stagingHandler.GroupStandingsHandler)
		})
	})

	router.Route("/brackets", func(r chi.Router) {
		r.Use(authenticate)

		r.Patch("/{bracketID}", stagingHandler.UpdateBracketHandler)
		r.Delete("/{bracketID}", stagingHandler.DeleteBracketHandler)
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/{matchID}", matchHandler.GetByIDHandler)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Patch("/{matchID}/result", matchHandler.UpdateResultHandler)
			r.Delete("/{matchID}", matchHandler.DeleteHandler)
			r.Put("/{matchID}/schedule", schedulingHandler.ScheduleMatchHandler)
			r.Delete("/{matchID}/schedule", schedulingHandler.UnscheduleMatchHandler)
		})
	})
}
