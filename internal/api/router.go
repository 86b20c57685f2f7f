/**
 * @description
 * This file sets up the HTTP router for the registry-service. It defines the
 * API endpoints, associates them with their corresponding handlers, and
 * applies the authentication and role middleware per route group.
 *
 * @dependencies
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 * - github.com/go-chi/cors: CORS middleware for browser clients.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ardhi/registry-service/internal/app"
	"github.com/ardhi/registry-service/internal/domain"
	"github.com/ardhi/registry-service/internal/store"
	"github.com/ardhi/registry-service/pkg/regionsclient"
)

// Handler holds the application service and the auxiliary clients the HTTP
// layer needs.
type Handler struct {
	service        *app.Service
	regions        *regionsclient.Client
	uploadDir      string
	maxUploadBytes int64
}

// NewHandler creates a new Handler. The regions client may be nil when no
// external geography API is configured.
func NewHandler(service *app.Service, regions *regionsclient.Client, uploadDir string, maxUploadMB int64) *Handler {
	return &Handler{
		service:        service,
		regions:        regions,
		uploadDir:      uploadDir,
		maxUploadBytes: maxUploadMB << 20,
	}
}

// NewRouter creates and returns the service router.
func NewRouter(h *Handler, repo store.Repository, jwtSecret string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	authenticated := Authenticate(repo, jwtSecret)
	adminOnly := RequireRoles(domain.RoleCountyAdmin, domain.RoleNLCAdmin)
	nationalOnly := RequireRoles(domain.RoleNLCAdmin)
	countyOnly := RequireRoles(domain.RoleCountyAdmin)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.RegisterHandler)
			r.Post("/login", h.LoginHandler)
			r.Post("/refresh", h.RefreshHandler)
			r.Group(func(r chi.Router) {
				r.Use(authenticated)
				r.Post("/logout", h.LogoutHandler)
				r.Get("/me", h.CurrentUserHandler)
			})
		})

		r.Route("/parcels", func(r chi.Router) {
			r.Use(authenticated)
			r.Get("/", h.SearchParcelsHandler)
			r.Get("/search", h.SearchParcelsHandler)
			r.Get("/my", h.MyParcelsHandler)
			r.Get("/title/{titleNumber}", h.GetParcelByTitleHandler)
			r.Get("/{id}", h.GetParcelHandler)
			r.Get("/{id}/pdf", h.ParcelPDFHandler)
			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Post("/", h.CreateParcelHandler)
				r.Put("/{id}", h.UpdateParcelHandler)
				r.Delete("/{id}", h.DeleteParcelHandler)
			})
			r.With(countyOnly).Put("/{id}/county-approval", h.CountyApproveParcelHandler)
			r.With(nationalOnly).Put("/{id}/nlc-approval", h.NLCApproveParcelHandler)
		})

		r.Route("/transfers", func(r chi.Router) {
			r.Use(authenticated)
			r.Post("/", h.InitiateTransferHandler)
			r.Get("/", h.ListTransfersHandler)
			r.Get("/{id}", h.GetTransferHandler)
			r.Put("/{id}/accept", h.AcceptTransferHandler)
			r.Put("/{id}/reject", h.RejectTransferHandler)
			r.Put("/{id}/cancel", h.CancelTransferHandler)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(authenticated, nationalOnly)
			r.Post("/", h.CreateUserHandler)
			r.Get("/", h.ListUsersHandler)
			r.Get("/{id}", h.GetUserHandler)
			r.Put("/{id}", h.UpdateUserHandler)
			r.Put("/{id}/approve", h.ApproveCountyAdminHandler)
			r.Put("/{id}/deactivate", h.DeactivateUserHandler)
			r.Delete("/{id}", h.DeleteUserHandler)
		})

		r.Route("/county-admin", func(r chi.Router) {
			r.Use(authenticated, countyOnly)
			r.Get("/dashboard", h.CountyDashboardHandler)
			r.Get("/parcels", h.CountyParcelsHandler)
			r.Get("/transfers", h.CountyTransfersHandler)
			r.Put("/transfers/{id}/stop", h.StopTransferHandler)
			r.Put("/parcels/{id}/remove-fraud-flag", h.RemoveFraudFlagHandler)
		})

		r.Route("/documents", func(r chi.Router) {
			r.Use(authenticated)
			r.Post("/upload", h.UploadDocumentHandler)
			r.Get("/", h.ListDocumentsHandler)
			r.Get("/{id}", h.GetDocumentHandler)
			r.With(adminOnly).Put("/{id}/verify", h.VerifyDocumentHandler)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Use(authenticated)
			r.Get("/", h.ListNotificationsHandler)
			r.Get("/unread-count", h.UnreadCountHandler)
			r.Put("/{id}/read", h.MarkReadHandler)
			r.Put("/read-all", h.MarkAllReadHandler)
		})

		r.Route("/regions", func(r chi.Router) {
			r.Use(authenticated)
			r.Get("/counties", h.ListCountiesHandler)
			r.Get("/counties/{code}", h.GetCountyHandler)
		})
	})

	return r
}
