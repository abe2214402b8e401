package routes

import (
	"github.com/glaucius/back-to-the-loop/handlers"
	"github.com/glaucius/back-to-the-loop/middleware"
	"github.com/glaucius/back-to-the-loop/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes wires the public frontend surface (registration, live results)
// and the organizer backoffice (event CRUD, the race engine) onto one router.
func SetupRoutes(
	router *chi.Mux,
	auth *middleware.Authenticator,
	authHandler *handlers.AuthHandler,
	backyardHandler *handlers.BackyardHandler,
	raceHandler *handlers.RaceHandler,
	inscricaoHandler *handlers.InscricaoHandler,
	resultsHandler *handlers.ResultsHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	organizerRoles := []string{string(models.RoleAdmin), string(models.RoleOrganizador)}

	router.Post("/auth/atletas/register", authHandler.RegisterAtletaHandler)
	router.Post("/auth/atletas/login", authHandler.LoginAtletaHandler)
	router.Post("/auth/login", authHandler.LoginUserHandler)

	router.Route("/backyards", func(r chi.Router) {
		r.Get("/", backyardHandler.ListHandler)
		r.Get("/{backyardID}", backyardHandler.GetByIDHandler)
		r.Get("/{backyardID}/live", resultsHandler.LiveViewHandler)
		r.Get("/{backyardID}/vagas", inscricaoHandler.VagasHandler)

		// Athlete self-service, any authenticated token.
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Post("/{backyardID}/inscricoes", inscricaoHandler.RegisterHandler)
			r.Delete("/{backyardID}/inscricoes", inscricaoHandler.CancelHandler)
		})

		// Backoffice, organizers and admins only.
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(auth.Authorize(organizerRoles...))

			r.Post("/", backyardHandler.CreateHandler)
			r.Put("/{backyardID}", backyardHandler.UpdateHandler)
			r.Delete("/{backyardID}", backyardHandler.DeleteHandler)
			r.Post("/{backyardID}/images/{kind}", backyardHandler.UploadImageHandler)

			r.Get("/{backyardID}/inscricoes", inscricaoHandler.ListHandler)
			r.Post("/{backyardID}/bibs/generate", inscricaoHandler.GenerateBibsHandler)
			r.Get("/{backyardID}/bibs/next", inscricaoHandler.NextBibHandler)

			r.Post("/{backyardID}/start", raceHandler.StartEventHandler)
		})
	})

	router.Route("/loops", func(r chi.Router) {
		r.Get("/{loopID}/results", resultsHandler.LoopResultsHandler)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(auth.Authorize(organizerRoles...))

			r.Post("/{loopID}/start", raceHandler.StartLoopHandler)
			r.Post("/{loopID}/advance", raceHandler.AdvanceLoopHandler)
			r.Post("/{loopID}/eliminate-by-time", raceHandler.EliminateByTimeHandler)
		})
	})

	router.Route("/atleta-loops", func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Use(auth.Authorize(organizerRoles...))

		r.Post("/{atletaLoopID}/complete", raceHandler.CompleteAthleteLoopHandler)
		r.Post("/{atletaLoopID}/eliminate", raceHandler.EliminateAthleteHandler)
		r.Patch("/{atletaLoopID}/status", raceHandler.ChangeStatusHandler)
		r.Patch("/{atletaLoopID}/time", raceHandler.EditTimeHandler)
	})
}
