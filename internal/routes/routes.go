package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AnshRaj112/portfolio-backend/internal/handlers"
)

// Handlers is everything the router dispatches to.
type Handlers struct {
	Portfolio   *handlers.PortfolioHandler
	Sections    handlers.Sections
	SocialStats *handlers.SocialStatsHandler
	Auth        *handlers.AuthHandler
	Contact     *handlers.ContactHandler
	Upload      *handlers.UploadHandler
	Health      *handlers.HealthHandler
	Metrics     http.Handler
}

// Guards wraps protected route groups.
type Guards struct {
	Admin         func(http.Handler) http.Handler
	ContactSubmit func(http.Handler) http.Handler
}

func passThrough(next http.Handler) http.Handler { return next }

func SetupRoutes(r chi.Router, h Handlers, g Guards) {
	if g.Admin == nil {
		g.Admin = passThrough
	}
	if g.ContactSubmit == nil {
		g.ContactSubmit = passThrough
	}

	r.Get("/health", h.Health.Health)
	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics)
	}

	r.Route("/api/portfolio", func(r chi.Router) {
		// Public
		r.Get("/get-portfolio-data", h.Portfolio.GetPortfolioData)
		r.Get("/get-social-stats", h.SocialStats.Get)
		r.Get("/user-profile", h.Auth.UserProfile)
		r.Post("/admin-login", h.Auth.Login)
		r.Post("/forgot-password", h.Auth.ForgotPassword)
		r.Post("/reset-password", h.Auth.ResetPassword)
		r.Post("/admin-logout", h.Auth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(g.Admin)

			s := h.Sections
			r.Post("/update-headers", s.Headers.Update)
			r.Post("/update-introduction", s.Introduction.Update)
			r.Post("/update-about", s.About.Update)
			r.Post("/update-leftSides", s.LeftSides.Update)
			r.Post("/update-contacts", s.Contacts.Update)
			r.Post("/update-footer", s.Footer.Update)

			r.Post("/add-experience", s.Experiences.Add)
			r.Post("/update-experience", s.Experiences.Update)
			r.Post("/delete-experience", s.Experiences.Delete)
			r.Post("/add-project", s.Projects.Add)
			r.Post("/update-project", s.Projects.Update)
			r.Post("/delete-project", s.Projects.Delete)
			r.Post("/add-education", s.Educations.Add)
			r.Post("/update-education", s.Educations.Update)
			r.Post("/delete-education", s.Educations.Delete)
			r.Post("/add-certificate", s.Certificates.Add)
			r.Post("/update-certificate", s.Certificates.Update)
			r.Post("/delete-certificate", s.Certificates.Delete)
			r.Post("/add-skill-category", s.Skills.Add)
			r.Post("/update-skill", s.Skills.Update)
			r.Post("/delete-skill", s.Skills.Delete)

			ss := h.SocialStats
			r.Post("/add-social-stats-field", ss.AddField("Social stats field added successfully"))
			r.Post("/add-social-stats", ss.AddField("Professional stat added successfully"))
			r.Put("/update-social-stats/{fieldId}", ss.UpdateFieldByParam)
			r.Delete("/delete-social-stats/{fieldId}", ss.DeleteFieldByParam)
			r.Post("/update-social-stats-field", ss.UpdateFieldByBody)
			r.Post("/delete-social-stats-field", ss.DeleteFieldByBody)
			r.Post("/reorder-social-stats-fields", ss.Reorder)
			r.Post("/update-social-stats", ss.ReplaceAll)
			r.Post("/sync-social-stats", ss.Sync)

			r.Post("/admin-register", h.Auth.Register)
			r.Post("/update-credentials", h.Auth.UpdateCredentials)
			r.Post("/update-email", h.Auth.UpdateEmail)
		})
	})

	r.Route("/api/contact", func(r chi.Router) {
		r.With(g.ContactSubmit).Post("/submit", h.Contact.Submit)

		r.Group(func(r chi.Router) {
			r.Use(g.Admin)
			r.Get("/messages", h.Contact.Messages)
			r.Get("/messages/{id}", h.Contact.Message)
			r.Put("/messages/{id}/status", h.Contact.UpdateStatus)
			r.Delete("/messages/{id}", h.Contact.Delete)
			r.Get("/stats", h.Contact.Stats)
			r.Get("/ws", h.Contact.Feed)
		})
	})

	r.With(g.Admin).Post("/api/upload", h.Upload.UploadFile)
}
