package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/restreamkit/volunteer-system/handlers"
	appMiddleware "github.com/restreamkit/volunteer-system/middleware"
)

func SetupRoutes(
	router *chi.Mux,
	auth *appMiddleware.Authenticator,
	authHandler *handlers.AuthHandler,
	bindingHandler *handlers.BindingHandler,
	requestHandler *handlers.RequestHandler,
	signupHandler *handlers.SignupHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Post("/auth/register", authHandler.RegisterHandler)
	router.Post("/auth/login", authHandler.LoginHandler)

	router.Route("/role-types", func(r chi.Router) {
		r.Get("/", bindingHandler.ListRoleTypesHandler)
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(appMiddleware.RequireAdmin)
			r.Post("/", bindingHandler.CreateRoleTypeHandler)
		})
	})

	router.Route("/events/{series}/{event}", func(r chi.Router) {
		// Публичные маршруты просмотра конфигурации ролей события
		r.Get("/bindings/effective", bindingHandler.EffectiveBindingsHandler)
		r.Get("/bindings/disabled", bindingHandler.DisabledBindingsHandler)
		r.Get("/bindings/overrides", bindingHandler.DiscordOverridesHandler)
		r.Get("/races", signupHandler.EventRacesHandler)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)

			r.Post("/bindings", bindingHandler.CreateEventBindingHandler)
			r.Post("/bindings/overrides", bindingHandler.CreateOverrideHandler)
			r.Delete("/bindings/overrides/{roleTypeID}", bindingHandler.DeleteOverrideHandler)
			r.Post("/bindings/disabled/{roleTypeID}", bindingHandler.DisableBindingHandler)
			r.Delete("/bindings/disabled/{roleTypeID}", bindingHandler.EnableBindingHandler)

			r.Get("/role-requests", requestHandler.EventRequestsHandler)
		})
	})

	router.Route("/games/{gameID}", func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Post("/bindings", bindingHandler.CreateGameBindingHandler)
		r.Get("/role-requests", requestHandler.GameRequestsHandler)
	})

	router.Route("/bindings/{bindingID}", func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Delete("/", bindingHandler.DeleteBindingHandler)
	})

	router.Route("/role-requests", func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Post("/", requestHandler.CreateRequestHandler)
		r.Get("/mine", requestHandler.MyRequestsHandler)
		r.Post("/{requestID}/approve", requestHandler.ApproveRequestHandler)
		r.Post("/{requestID}/reject", requestHandler.RejectRequestHandler)
		r.Post("/{requestID}/withdraw", requestHandler.WithdrawRequestHandler)
		r.Post("/{requestID}/revoke", requestHandler.RevokeRequestHandler)
		r.Post("/{requestID}/revoke-game", requestHandler.RevokeGameRequestHandler)
	})

	router.Route("/signups", func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Post("/", signupHandler.CreateSignupHandler)
		r.Get("/mine", signupHandler.MySignupsHandler)
		r.Post("/{signupID}/confirm", signupHandler.ConfirmSignupHandler)
		r.Post("/{signupID}/decline", signupHandler.DeclineSignupHandler)
		r.Post("/{signupID}/withdraw", signupHandler.WithdrawSignupHandler)
		r.Post("/{signupID}/revoke", signupHandler.RevokeSignupHandler)
	})

	router.Get("/races/{raceID}/signups", signupHandler.RaceSignupsHandler)
	router.Get("/ws/races/{raceID}", webSocketHandler.ServeWs)
}
