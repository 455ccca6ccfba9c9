package partners

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/meridianmar/meridian/internal/platform/httpx"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers counterparty routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/counterparties", h.list)
	r.Post("/counterparties", h.create)
	r.Get("/counterparties/{id}", h.show)
	r.Put("/counterparties/{id}", h.update)
	r.Delete("/counterparties/{id}", h.delete)
}

type counterpartyRequest struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	TaxID    string `json:"tax_id"`
	Address  string `json:"address"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	IsActive *bool  `json:"is_active"`
}

func (req counterpartyRequest) toModel() Counterparty {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return Counterparty{
		Code:     req.Code,
		Name:     req.Name,
		TaxID:    req.TaxID,
		Address:  req.Address,
		Email:    req.Email,
		Phone:    req.Phone,
		IsActive: active,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 25
	}

	filters := ListFilters{
		Page:    page,
		Limit:   limit,
		Search:  r.URL.Query().Get("search"),
		SortBy:  r.URL.Query().Get("sort"),
		SortDir: r.URL.Query().Get("dir"),
	}
	if raw := r.URL.Query().Get("active"); raw != "" {
		active := raw == "true" || raw == "1"
		filters.IsActive = &active
	}

	counterparties, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list counterparties failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"counterparties": counterparties,
		"total":          total,
		"page":           page,
		"limit":          limit,
	})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid counterparty ID")
		return
	}
	cp, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "get counterparty")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"counterparty": cp})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req counterpartyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	created, err := h.service.Create(r.Context(), req.toModel())
	if err != nil {
		h.respondError(w, err, "create counterparty")
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"counterparty": created})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid counterparty ID")
		return
	}
	var req counterpartyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.service.Update(r.Context(), id, req.toModel()); err != nil {
		h.respondError(w, err, "update counterparty")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "updated"})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid counterparty ID")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, err, "delete counterparty")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrHasDocuments):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	}
}
