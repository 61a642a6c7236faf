package report

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/pharmakart/pharmacy-backend/internal/modules/tenancy"
	"github.com/pharmakart/pharmacy-backend/internal/web"
)

// Handler exposes the dashboard and search endpoints.
type Handler struct {
	service  *Service
	resolver *tenancy.Resolver
	log      zerolog.Logger
}

func NewHandler(service *Service, resolver *tenancy.Resolver, log zerolog.Logger) *Handler {
	return &Handler{service: service, resolver: resolver, log: log}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Group(func(pr chi.Router) {
		pr.Use(h.resolver.Middleware)
		pr.Get("/dashboard/stats", h.stats)
		pr.Get("/dashboard/expiring", h.expiring)
		pr.Get("/dashboard/low-stock", h.lowStock)
		pr.Get("/search-items", h.search)
		pr.Get("/suggestions", h.suggestions)
	})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	shop, err := tenancy.Viewer(r.Context())
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	st, err := h.service.Stats(r.Context(), shop.ID)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	web.Respond(w, http.StatusOK, st)
}

func (h *Handler) expiring(w http.ResponseWriter, r *http.Request) {
	shop, err := tenancy.Viewer(r.Context())
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	within, _ := strconv.Atoi(r.URL.Query().Get("days"))
	alerts, err := h.service.ExpiringSoon(r.Context(), shop.ID, within)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	web.Respond(w, http.StatusOK, alerts)
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	shop, err := tenancy.Viewer(r.Context())
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	threshold, _ := strconv.Atoi(r.URL.Query().Get("threshold"))
	alerts, err := h.service.LowStock(r.Context(), shop.ID, threshold)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	web.Respond(w, http.StatusOK, alerts)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	shop, err := tenancy.Viewer(r.Context())
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	results, err := h.service.Search(r.Context(), shop.ID, r.URL.Query().Get("search"))
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	web.Respond(w, http.StatusOK, results)
}

func (h *Handler) suggestions(w http.ResponseWriter, r *http.Request) {
	shop, err := tenancy.Viewer(r.Context())
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	suggestions, err := h.service.Suggestions(r.Context(), shop.ID, r.URL.Query().Get("q"))
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	web.Respond(w, http.StatusOK, suggestions)
}
