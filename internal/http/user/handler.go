package user

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/infaq/internal/http/auth"
	"github.com/MrJamesThe3rd/infaq/internal/http/respond"
	"github.com/MrJamesThe3rd/infaq/internal/ledger"
	"github.com/MrJamesThe3rd/infaq/internal/user"
)

type Handler struct {
	svc *user.Service
}

func NewHandler(svc *user.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/me", h.me)
	r.Get("/{id}", h.get)
}

type userResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// me registers the calling actor and returns it as stored.
func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.FromContext(r.Context())
	if actor.ID == "" {
		http.Error(w, "no acting user", http.StatusUnauthorized)
		return
	}

	if err := h.svc.Register(r.Context(), actor.ID, actor.Name); err != nil {
		respond.Error(w, r, err)
		return
	}

	h.write(w, r, actor.ID)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, chi.URLParam(r, "id"))
}

func (h *Handler) write(w http.ResponseWriter, r *http.Request, id string) {
	u, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			respond.Error(w, r, ledger.ErrNotFound)
			return
		}

		respond.Error(w, r, err)

		return
	}

	respond.JSON(w, http.StatusOK, userResponse{ID: u.ID, DisplayName: u.DisplayName})
}
