package order

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/pharmakart/pharmacy-backend/internal/apperr"
	"github.com/pharmakart/pharmacy-backend/internal/modules/tenancy"
	"github.com/pharmakart/pharmacy-backend/internal/web"
)

// Handler exposes the order, fulfilment, and payment endpoints.
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

		pr.Route("/orders", func(pr chi.Router) {
			pr.Get("/", h.listOrders)
			pr.Post("/create", h.createOrder)
			pr.Route("/{orderID}", func(pr chi.Router) {
				pr.Get("/", h.getOrder)
				pr.Put("/", h.updateOrder)
				pr.Delete("/", h.deleteOrder)
			})
		})

		pr.Post("/order-items", h.addItems)
		pr.Post("/payments/add", h.recordPayment)
		pr.Get("/payments", h.listPayments)
	})
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	shop, _, err := tenancy.Operator(r.Context())
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	var req CreateOrderRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	o, err := h.service.Create(r.Context(), shop.ID, req)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	web.Respond(w, http.StatusCreated, o)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	shop, err := tenancy.Viewer(r.Context())
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	orderID, err := orderParam(r)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	o, err := h.service.Get(r.Context(), shop.ID, orderID)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	web.Respond(w, http.StatusOK, o)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	shop, err := tenancy.Viewer(r.Context())
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	orders, err := h.service.List(r.Context(), shop.ID)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	web.Respond(w, http.StatusOK, orders)
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	shop, _, err := tenancy.Operator(r.Context())
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	orderID, err := orderParam(r)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	var upd UpdateOrderRequest
	if err := web.DecodeJSON(r, &upd); err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	o, err := h.service.Update(r.Context(), shop.ID, orderID, upd)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	web.Respond(w, http.StatusOK, o)
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	shop, _, err := tenancy.Operator(r.Context())
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	orderID, err := orderParam(r)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	if err := h.service.Delete(r.Context(), shop.ID, orderID); err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	web.Respond(w, http.StatusOK, map[string]string{"message": "order deleted successfully"})
}

func (h *Handler) addItems(w http.ResponseWriter, r *http.Request) {
	shop, _, err := tenancy.Operator(r.Context())
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	var req AddItemsRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	o, err := h.service.AddItems(r.Context(), shop.ID, req)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	web.Respond(w, http.StatusCreated, o)
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	shop, _, err := tenancy.Operator(r.Context())
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	var req PaymentRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	p, err := h.service.RecordPayment(r.Context(), shop.ID, req)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	web.Respond(w, http.StatusCreated, p)
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	shop, err := tenancy.Viewer(r.Context())
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	orderID, err := strconv.ParseInt(r.URL.Query().Get("order_id"), 10, 64)
	if err != nil || orderID <= 0 {
		web.RespondError(w, h.log, apperr.New(apperr.Validation, "order_id query parameter is required"))
		return
	}
	payments, err := h.service.ListPayments(r.Context(), shop.ID, orderID)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	web.Respond(w, http.StatusOK, payments)
}

func orderParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.New(apperr.Validation, "invalid order id")
	}
	return id, nil
}
