package auth

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/pharmakart/pharmacy-backend/internal/modules/tenancy"
	"github.com/pharmakart/pharmacy-backend/internal/modules/token"
	"github.com/pharmakart/pharmacy-backend/internal/web"
)

// Handler exposes registration and login endpoints.
type Handler struct {
	service  *Service
	tokens   *token.Service
	resolver *tenancy.Resolver
	log      zerolog.Logger
}

func NewHandler(service *Service, tokens *token.Service, resolver *tenancy.Resolver, log zerolog.Logger) *Handler {
	return &Handler{service: service, tokens: tokens, resolver: resolver, log: log}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Group(func(pr chi.Router) {
		pr.Use(h.resolver.Middleware)
		pr.Post("/auth/change-password", h.changePassword)
		pr.Post("/auth/logout", h.logout)
	})
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	sess, err := h.service.Register(r.Context(), req)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	web.Respond(w, http.StatusCreated, map[string]interface{}{
		"token":    sess.Token,
		"shop_id":  sess.Shop.ID,
		"shopname": sess.Shop.Name,
		"manager":  sess.Manager,
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var creds Credentials
	if err := web.DecodeJSON(r, &creds); err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	sess, err := h.service.Login(r.Context(), creds)
	if err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	body := map[string]interface{}{
		"token":    sess.Token,
		"shop_id":  sess.Shop.ID,
		"shopname": sess.Shop.Name,
	}
	if sess.Staff != nil {
		body["is_staff"] = true
		body["staff"] = sess.Staff
	} else {
		body["is_manager"] = true
		body["manager"] = sess.Manager
	}
	web.Respond(w, http.StatusOK, body)
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	acct, _ := tenancy.AccountFrom(r.Context())
	var body struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := web.DecodeJSON(r, &body); err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	if err := h.service.ChangePassword(r.Context(), acct, body.CurrentPassword, body.NewPassword); err != nil {
		web.RespondError(w, h.log, err)
		return
	}
	web.Respond(w, http.StatusOK, map[string]string{"message": "password updated successfully"})
}

// logout revokes the presented token. With the default no-op revocation list
// the token stays valid until expiry, matching the stateless scheme.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if err := h.tokens.Revoke(r.Context(), raw); err != nil {
		web.Error(w, http.StatusUnauthorized, err.Error())
		return
	}
	web.Respond(w, http.StatusOK, map[string]string{"message": "logged out"})
}
