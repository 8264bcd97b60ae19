package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Rouva01/competition-system/handlers"
	"github.com/Rouva01/competition-system/middleware"
	"github.com/Rouva01/competition-system/ratelimit"
)

// SetupRoutes wires all HTTP endpoints onto the router. Write endpoints
// and read endpoints sit behind separate rate limit classes.
func SetupRoutes(
	router *chi.Mux,
	limiter *ratelimit.Store,
	matchHandler *handlers.MatchHandler,
	tournamentHandler *handlers.TournamentHandler,
	entryHandler *handlers.EntryHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Route("/tournaments/{tournamentID}", func(r chi.Router) {
		// Read endpoints tolerate frequent polling.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Throttle(limiter, ratelimit.PollLimit))

			r.Get("/matches", matchHandler.ListMatchesHandler)
			r.Get("/standings", tournamentHandler.StandingsHandler)
			r.Get("/entries", entryHandler.ListEntriesHandler)
		})

		// Write endpoints carry the tightest quota.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Throttle(limiter, ratelimit.SubmitLimit))

			r.Post("/qualification", tournamentHandler.StartQualificationHandler)
			r.Post("/finals", tournamentHandler.GenerateFinalsHandler)
			r.Post("/finals/reset", tournamentHandler.CreateBracketResetHandler)
		})
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.Throttle(limiter, ratelimit.SubmitLimit))

		r.Post("/matches/{matchID}/result", matchHandler.SubmitResultHandler)
		r.Post("/entries/{entryID}/times", entryHandler.SubmitTimeHandler)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.Throttle(limiter, ratelimit.TokenLimit))

		r.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)
	})
}
