package inventory

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/pharmakart/pharmacy-backend/internal/apperr"
	"github.com/pharmakart/pharmacy-backend/internal/modules/tenancy"
	"github.com/pharmakart/pharmacy-backend/internal/web"
)

// Handler exposes the product and batch endpoints. Every route runs behind
// the token resolver and is scoped to the shop on the token.
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

		pr.Route("/products", func(pr chi.Router) {
			pr.Get("/", h.listProducts)
			pr.Post("/", h.createProduct)
			pr.Route("/{productID}", func(pr chi.Router) {
				pr.Get("/", h.getProduct)
				pr.Put("/", h.updateProduct)
				pr.Delete("/", h.deleteProduct)
			})
		})

		pr.Route("/batches", func(pr chi.Router) {
			pr.Get("/", h.listBatches)
			pr.Post("/", h.createBatch)
			pr.Route("/{batchID}", func(pr chi.Router) {
				pr.Get("/", h.getBatch)
				pr.Put("/", h.updateBatch)
				pr.Delete("/", h.deleteBatch)
			})
		})
	})
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	shop, _, err := tenancy.Operator(r.Context())
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	var req CreateProductRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	p, err := h.service.CreateProduct(r.Context(), shop.ID, req)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	web.Respond(w, http.StatusCreated, p)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	shop, err := tenancy.Viewer(r.Context())
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	p, err := h.service.GetProduct(r.Context(), shop.ID, chi.URLParam(r, "productID"))
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	web.Respond(w, http.StatusOK, p)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	shop, err := tenancy.Viewer(r.Context())
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	products, err := h.service.ListProducts(r.Context(), shop.ID)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	web.Respond(w, http.StatusOK, products)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	shop, _, err := tenancy.Operator(r.Context())
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	var upd UpdateProductRequest
	if err := web.DecodeJSON(r, &upd); err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	p, err := h.service.UpdateProduct(r.Context(), shop.ID, chi.URLParam(r, "productID"), upd)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	web.Respond(w, http.StatusOK, p)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	shop, _, err := tenancy.Operator(r.Context())
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	if err := h.service.DeleteProduct(r.Context(), shop.ID, chi.URLParam(r, "productID")); err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	web.Respond(w, http.StatusOK, map[string]string{"message": "product deleted successfully"})
}

func (h *Handler) createBatch(w http.ResponseWriter, r *http.Request) {
	shop, _, err := tenancy.Operator(r.Context())
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	var req CreateBatchRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	b, err := h.service.CreateBatch(r.Context(), shop.ID, req)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	web.Respond(w, http.StatusCreated, b)
}

func (h *Handler) getBatch(w http.ResponseWriter, r *http.Request) {
	shop, err := tenancy.Viewer(r.Context())
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	batchID, err := batchParam(r)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	b, err := h.service.GetBatch(r.Context(), shop.ID, batchID)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	web.Respond(w, http.StatusOK, b)
}

func (h *Handler) listBatches(w http.ResponseWriter, r *http.Request) {
	shop, err := tenancy.Viewer(r.Context())
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	batches, err := h.service.ListBatches(r.Context(), shop.ID)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	web.Respond(w, http.StatusOK, batches)
}

func (h *Handler) updateBatch(w http.ResponseWriter, r *http.Request) {
	shop, _, err := tenancy.Operator(r.Context())
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	batchID, err := batchParam(r)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	var upd UpdateBatchRequest
	if err := web.DecodeJSON(r, &upd); err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	b, err := h.service.UpdateBatch(r.Context(), shop.ID, batchID, upd)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	web.Respond(w, http.StatusOK, b)
}

func (h *Handler) deleteBatch(w http.ResponseWriter, r *http.Request) {
	shop, _, err := tenancy.Operator(r.Context())
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	batchID, err := batchParam(r)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	if err := h.service.DeleteBatch(r.Context(), shop.ID, batchID); err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	web.Respond(w, http.StatusOK, map[string]string{"message": "batch deleted successfully"})
}

func batchParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "batchID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.New(apperr.Validation, "invalid batch id")
	}
	return id, nil
}
