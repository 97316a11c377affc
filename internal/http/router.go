package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/ballop/merchplan/internal/http/handlers"
	rl "github.com/ballop/merchplan/internal/http/rate_limiter"
)

// NewRouter assembles the consumer-facing surface.
func NewRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(rl.Middleware)

	r.Post("/auth/login", handlers.LoginHandler)
	r.Get("/files/*", handlers.FileHandler)
	r.Get("/swagger/*", httpSwagger.Handler())

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware)

		r.Post("/auth/logout", handlers.LogoutHandler)
		r.Get("/me", handlers.MeHandler)
		r.Put("/me/profile", handlers.UpdateProfileHandler)
		r.Get("/settings/brands", handlers.GetBrandsHandler)
		r.Put("/settings/brands", handlers.UpdateBrandsHandler)

		r.Group(func(r chi.Router) {
			r.Use(RequireProfile)

			r.Get("/products", handlers.GetProductsHandler)
			r.Get("/products/{id}", handlers.GetProductByIDHandler)
			r.Post("/products", handlers.CreateProductHandler)
			r.Put("/products/{id}", handlers.UpdateProductHandler)
			r.Patch("/products/{id}", handlers.PatchProductHandler)
			r.Patch("/products/{id}/status", handlers.UpdateStatusHandler)
			r.Delete("/products/{id}", handlers.DeleteProductHandler)
			r.Post("/sku/next", handlers.GenerateSKUHandler)
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireAdmin)

			r.Get("/admin/users", handlers.ListUsersHandler)
			r.Patch("/admin/users/{uid}/role", handlers.SetUserRoleHandler)
			r.Patch("/admin/users/{uid}/status", handlers.SetUserStatusHandler)
		})
	})

	return r
}
