package api

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/erazemk/skatedesk/internal/imaging"
	"github.com/erazemk/skatedesk/internal/model"
	"github.com/erazemk/skatedesk/internal/rental"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, svc *rental.Service, logger *zap.SugaredLogger, jwtSecret string) http.Handler {
	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret, Logger: logger}
	rentalHandler := &RentalHandler{DB: db, Service: svc, Logger: logger}
	itemsHandler := &ItemsHandler{DB: db, Logger: logger, Photos: imaging.DefaultOptions}
	usersHandler := &UsersHandler{DB: db, Logger: logger}

	requireAdmin := RequireRole(model.RoleAdmin)
	requireManager := RequireRole(model.RoleManager)
	requireAgent := RequireRole(model.RoleAgent)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(chimw.Recoverer)

	r.Post("/api/auth/login", authHandler.Login)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(jwtSecret, db, logger))

		r.Put("/api/auth/password", authHandler.ChangePassword)
		r.Post("/api/auth/logout", authHandler.Logout)

		// Floor operations (agent+).
		r.Group(func(r chi.Router) {
			r.Use(requireAgent)
			r.Get("/api/dashboard", rentalHandler.Dashboard)
			r.Post("/api/scan", rentalHandler.Scan)
			r.Post("/api/items/{id}/actions", rentalHandler.Action)

			r.Get("/api/items", itemsHandler.List)
			r.Get("/api/items/{id}", itemsHandler.Get)
			r.Get("/api/items/{id}/image", itemsHandler.GetImage)
			r.Get("/api/items/{id}/activity", itemsHandler.Activity)
		})

		// Catalog (manager+).
		r.Group(func(r chi.Router) {
			r.Use(requireManager)
			r.Post("/api/items", itemsHandler.Create)
			r.Put("/api/items/{id}", itemsHandler.Update)
			r.Delete("/api/items/{id}", itemsHandler.Delete)
			r.Put("/api/items/{id}/image", itemsHandler.UploadImage)
		})

		// Users (admin only).
		r.Route("/api/users", func(r chi.Router) {
			r.Use(requireAdmin)
			r.Get("/", usersHandler.List)
			r.Post("/", usersHandler.Create)
			r.Get("/{id}", usersHandler.Get)
			r.Put("/{id}", usersHandler.Update)
			r.Put("/{id}/password", usersHandler.ResetPassword)
			r.Get("/{id}/activity", usersHandler.Activity)
			r.Delete("/{id}", usersHandler.Delete)
		})
	})

	return r
}
