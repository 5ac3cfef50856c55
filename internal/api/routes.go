package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Metrics(),
		Logging(h.logger),
		WithActor(),
	)

	// Каталог
	mux.Handle("GET /api/v1/templates", chain(http.HandlerFunc(h.SearchTemplates)))
	mux.Handle("GET /api/v1/templates/featured", chain(http.HandlerFunc(h.ListFeatured)))
	mux.Handle("GET /api/v1/templates/categories/{category}", chain(http.HandlerFunc(h.ListByCategory)))
	mux.Handle("GET /api/v1/templates/stats", chain(http.HandlerFunc(h.GetStats)))
	mux.Handle("GET /api/v1/organizations/templates", chain(http.HandlerFunc(h.ListOrganizationTemplates)))
	mux.Handle("POST /api/v1/templates/validate", chain(http.HandlerFunc(h.ValidateTemplate)))

	// Templates
	mux.Handle("POST /api/v1/templates", chain(http.HandlerFunc(h.CreateTemplate)))
	mux.Handle("GET /api/v1/templates/{id}", chain(http.HandlerFunc(h.GetTemplate)))
	mux.Handle("PUT /api/v1/templates/{id}", chain(http.HandlerFunc(h.UpdateTemplate)))
	mux.Handle("DELETE /api/v1/templates/{id}", chain(http.HandlerFunc(h.DeleteTemplate)))
	mux.Handle("POST /api/v1/templates/{id}/publish", chain(http.HandlerFunc(h.PublishTemplate)))
	mux.Handle("POST /api/v1/templates/{id}/use", chain(http.HandlerFunc(h.UseTemplate)))
	mux.Handle("POST /api/v1/templates/{id}/reviews", chain(http.HandlerFunc(h.ReviewTemplate)))
}
