package lifecycle

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/pharmakart/pharmacy-backend/internal/apperr"
	"github.com/pharmakart/pharmacy-backend/internal/modules/tenancy"
	"github.com/pharmakart/pharmacy-backend/internal/web"
)

// Handler exposes the manager-only shop and staff lifecycle endpoints.
type Handler struct {
	service  *Service
	resolver *tenancy.Resolver
	log      zerolog.Logger
}

func NewHandler(service *Service, resolver *tenancy.Resolver, log zerolog.Logger) *Handler {
	return &Handler{service: service, resolver: resolver, log: log}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/shops", func(r chi.Router) {
		r.Use(h.resolver.Middleware)
		r.Get("/mine", h.myShops)
		r.Post("/add", h.addShop)
		r.Route("/{shopID}", func(r chi.Router) {
			r.Put("/", h.renameShop)
			r.Delete("/", h.deleteShop)
			r.Post("/switch", h.switchShop)
			r.Get("/staffs", h.listStaff)
			r.Post("/staffs/add", h.addStaff)
			r.Delete("/staffs/{phone}", h.removeStaff)
		})
	})
}

func (h *Handler) myShops(w http.ResponseWriter, r *http.Request) {
	_, mgr, err := tenancy.ManagerOnly(r.Context())
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	shops, err := h.service.MyShops(r.Context(), mgr)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	web.Respond(w, http.StatusOK, shops)
}

func (h *Handler) addShop(w http.ResponseWriter, r *http.Request) {
	_, mgr, err := tenancy.ManagerOnly(r.Context())
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	var body struct {
		ShopName string `json:"shopname"`
	}
	if err := web.DecodeJSON(r, &body); err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	shop, err := h.service.AddShop(r.Context(), mgr, body.ShopName)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	web.Respond(w, http.StatusCreated, shop)
}

func (h *Handler) renameShop(w http.ResponseWriter, r *http.Request) {
	_, mgr, err := tenancy.ManagerOnly(r.Context())
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	shopID, err := shopParam(r)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	var body struct {
		ShopName string `json:"shopname"`
	}
	if err := web.DecodeJSON(r, &body); err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	shop, err := h.service.RenameShop(r.Context(), mgr, shopID, body.ShopName)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	web.Respond(w, http.StatusOK, shop)
}

func (h *Handler) deleteShop(w http.ResponseWriter, r *http.Request) {
	_, mgr, err := tenancy.ManagerOnly(r.Context())
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	shopID, err := shopParam(r)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	if err := h.service.DeleteShop(r.Context(), mgr, shopID); err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	web.Respond(w, http.StatusOK, map[string]string{"message": "shop deleted successfully"})
}

func (h *Handler) switchShop(w http.ResponseWriter, r *http.Request) {
	_, mgr, err := tenancy.ManagerOnly(r.Context())
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	shopID, err := shopParam(r)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	tok, shop, err := h.service.SwitchShop(r.Context(), mgr, shopID)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	web.Respond(w, http.StatusOK, map[string]interface{}{
		"token":    tok,
		"shop_id":  shop.ID,
		"shopname": shop.Name,
	})
}

func (h *Handler) addStaff(w http.ResponseWriter, r *http.Request) {
	_, mgr, err := tenancy.ManagerOnly(r.Context())
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	shopID, err := shopParam(r)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	var req AddStaffRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	st, err := h.service.AddStaff(r.Context(), mgr, shopID, req)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	web.Respond(w, http.StatusCreated, st)
}

func (h *Handler) listStaff(w http.ResponseWriter, r *http.Request) {
	_, mgr, err := tenancy.ManagerOnly(r.Context())
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	shopID, err := shopParam(r)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	staff, err := h.service.ListStaff(r.Context(), mgr, shopID)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	web.Respond(w, http.StatusOK, staff)
}

func (h *Handler) removeStaff(w http.ResponseWriter, r *http.Request) {
	_, mgr, err := tenancy.ManagerOnly(r.Context())
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	shopID, err := shopParam(r)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	if err := h.service.RemoveStaff(r.Context(), mgr, shopID, chi.URLParam(r, "phone")); err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	web.Respond(w, http.StatusOK, map[string]string{"message": "staff removed successfully"})
}

func shopParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "shopID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.New(apperr.Validation, "invalid shop id")
	}
	return id, nil
}
