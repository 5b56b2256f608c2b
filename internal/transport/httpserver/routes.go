package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"recipe-share-go/internal/config"
	"recipe-share-go/internal/transport/httpserver/handler"
	authmw "recipe-share-go/internal/transport/httpserver/middleware"
)

type RouterDeps struct {
	Handlers   *handler.Handlers
	Auth       *authmw.Auth
	Metrics    *authmw.Metrics
	Limiter    *authmw.RateLimiter
	StaticRoot string
}

func NewRouter(cfg config.Config, deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           86400,
	}).Handler)

	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(deps.StaticRoot))))

	h := deps.Handlers
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.Middleware)
			if deps.Limiter != nil {
				r.Use(deps.Limiter.Middleware)
			}

			r.Get("/auth/me", h.AuthMe)
			r.Patch("/profile", h.UpdateProfile)
			r.Post("/profile/avatar", h.UploadAvatar)
			r.Post("/media", h.UploadMedia)

			r.Get("/recipes", h.ListRecipes)
			r.Post("/recipes", h.CreateRecipe)
			r.Get("/recipes/category/{category}", h.ListRecipesByCategory)
			r.Get("/recipes/{id}", h.GetRecipe)
			r.Put("/recipes/{id}", h.UpdateRecipe)
			r.Delete("/recipes/{id}", h.DeleteRecipe)
			r.Get("/recipes/{id}/ingredients", h.RecipeIngredients)

			r.Get("/recipes/{id}/collaborators", h.ListCollaborators)
			r.Post("/recipes/{id}/collaborators", h.InviteCollaborator)
			r.Post("/collaborations/{id}/respond", h.RespondToInvite)
			r.Patch("/collaborations/{id}", h.ChangeCollaboratorRole)
			r.Delete("/collaborations/{id}", h.RemoveCollaborator)
			r.Get("/collaborations", h.ListCollaborations)

			r.Get("/dashboard/recipes", h.DashboardRecipes)
			r.Get("/dashboard/stats", h.DashboardStats)

			r.Post("/recipes/{id}/cook", h.StartCookSession)
			r.Get("/cook/{session}", h.GetCookSession)
			r.Delete("/cook/{session}", h.EndCookSession)
			r.Post("/cook/{session}/steps/{n}/toggle", h.ToggleStep)
			r.Post("/cook/{session}/steps/{n}/timer/{action}", h.StepTimer)
		})
	})

	return r
}
