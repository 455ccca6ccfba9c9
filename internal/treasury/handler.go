package treasury

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridianmar/meridian/internal/money"
	"github.com/meridianmar/meridian/internal/platform/httpx"
)

type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers treasury routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/accounts", h.listAccounts)
	r.Post("/accounts", h.createAccount)
	r.Get("/accounts/{id}", h.showAccount)
	r.Put("/accounts/{id}", h.updateAccount)

	r.Get("/cash", h.listEntries)
	r.Post("/cash", h.appendEntry)
	r.Get("/cash/balance", h.balance)
}

type accountRequest struct {
	Label    string `json:"label" validate:"required"`
	Bank     string `json:"bank" validate:"required"`
	IBAN     string `json:"iban"`
	IsActive *bool  `json:"is_active"`
}

func (req accountRequest) toModel() BankAccount {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return BankAccount{Label: req.Label, Bank: req.Bank, IBAN: req.IBAN, IsActive: active}
}

func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	account, err := h.service.CreateAccount(r.Context(), req.toModel())
	if err != nil {
		h.respondError(w, err, "create account")
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"account": account})
}

func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.ListAccounts(r.Context())
	if err != nil {
		h.respondError(w, err, "list accounts")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"accounts": accounts})
}

func (h *Handler) showAccount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid account ID")
		return
	}
	account, err := h.service.GetAccount(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "get account")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"account": account})
}

func (h *Handler) updateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid account ID")
		return
	}
	var req accountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.UpdateAccount(r.Context(), id, req.toModel()); err != nil {
		h.respondError(w, err, "update account")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "updated"})
}

type entryRequest struct {
	Label     string `json:"label" validate:"required"`
	Direction string `json:"direction" validate:"required,oneof=in out"`
	Amount    int64  `json:"amount" validate:"required,gt=0"`
	Reference string `json:"reference"`
	EntryDate string `json:"entry_date"`
}

func (h *Handler) appendEntry(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	var at time.Time
	if req.EntryDate != "" {
		parsed, err := time.Parse("2006-01-02", req.EntryDate)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid entry_date")
			return
		}
		at = parsed
	}

	var err error
	if EntryDirection(req.Direction) == DirectionOut {
		err = h.service.RecordCashOut(r.Context(), req.Label, req.Amount, req.Reference, at)
	} else {
		err = h.service.RecordCashIn(r.Context(), req.Label, req.Amount, req.Reference, at)
	}
	if err != nil {
		h.respondError(w, err, "append cash entry")
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"status": "recorded"})
}

func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	filters := EntryFilters{Direction: EntryDirection(r.URL.Query().Get("direction"))}
	if raw := r.URL.Query().Get("from"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid from date")
			return
		}
		filters.From = from
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid to date")
			return
		}
		filters.To = to
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err == nil && limit > 0 {
			filters.Limit = limit
		}
	}

	entries, err := h.service.ListEntries(r.Context(), filters)
	if err != nil {
		h.respondError(w, err, "list cash entries")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) balance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.service.CashBalance(r.Context())
	if err != nil {
		h.respondError(w, err, "cash balance")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"balance":         balance,
		"balance_display": money.Format(balance),
	})
}

func (h *Handler) respondError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrInvalidAmount):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
	case errors.Is(err, ErrDuplicateIBAN):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
