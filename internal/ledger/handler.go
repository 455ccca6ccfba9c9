package ledger

import (
	"context"
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

// Handler manages ledger endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	cache     *Cache
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, cache *Cache) *Handler {
	return &Handler{logger: logger, service: service, cache: cache, validator: validator.New()}
}

// MountRoutes registers ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/documents", h.listDocuments)
	r.Get("/aging", h.showAging)
	r.Get("/payments", h.listPayments)
	r.Post("/payments", h.createPayment)
	r.Post("/payments/group", h.createGroupPayment)
}

type documentVM struct {
	ID               int64  `json:"id"`
	Number           string `json:"number"`
	Kind             string `json:"kind"`
	CounterpartyID   int64  `json:"counterparty_id"`
	CounterpartyName string `json:"counterparty_name"`
	LinkedRef        string `json:"linked_ref,omitempty"`
	IssueDate        string `json:"issue_date"`
	DueDate          string `json:"due_date,omitempty"`
	Amount           int64  `json:"amount"`
	Paid             int64  `json:"paid"`
	Advance          int64  `json:"advance"`
	Remaining        int64  `json:"remaining"`
	Status           string `json:"status"`
	AmountDisplay    string `json:"amount_display"`
	RemainingDisplay string `json:"remaining_display"`
}

func toVM(d PayableDocument) documentVM {
	vm := documentVM{
		ID:               d.ID,
		Number:           d.Number,
		Kind:             string(d.Kind),
		CounterpartyID:   d.CounterpartyID,
		CounterpartyName: d.CounterpartyName,
		LinkedRef:        d.LinkedRef,
		IssueDate:        d.IssueDate.Format("2006-01-02"),
		Amount:           d.Amount,
		Paid:             d.Paid,
		Advance:          d.Advance,
		Remaining:        d.Remaining(),
		Status:           string(d.Status),
		AmountDisplay:    money.Format(d.Amount),
		RemainingDisplay: money.Format(d.Remaining()),
	}
	if !d.DueDate.IsZero() {
		vm.DueDate = d.DueDate.Format("2006-01-02")
	}
	return vm
}

// listDocuments serves the filtered document listing for one kind.
func (h *Handler) listDocuments(w http.ResponseWriter, r *http.Request) {
	kind := DocumentKind(r.URL.Query().Get("kind"))
	switch kind {
	case KindInvoice, KindCreditNote, KindStartNote:
	case "":
		kind = KindInvoice
	default:
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown document kind")
		return
	}

	loader := func(ctx context.Context) ([]PayableDocument, error) {
		return h.service.ListDocuments(ctx, kind, "", "")
	}
	var docs []PayableDocument
	key, err := h.cache.BuildKey(r.Context(), ListKey(kind)...)
	if err != nil {
		// Cache outage. Serve from the repository directly.
		h.logger.Warn("ledger cache unavailable", slog.Any("error", err))
		docs, err = loader(r.Context())
	} else {
		docs, err = h.cache.FetchDocuments(r.Context(), key, loader)
	}
	if err != nil {
		h.logger.Error("list documents", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	filtered := Filter(docs, r.URL.Query().Get("q"), r.URL.Query().Get("status"))
	out := make([]documentVM, 0, len(filtered))
	for _, d := range filtered {
		out = append(out, toVM(d))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"documents": out})
}

type paymentRequest struct {
	Amount      int64   `json:"amount" validate:"required,gt=0"`
	Method      string  `json:"method" validate:"required,oneof=bank_transfer cash check compensation other"`
	IsAdvance   bool    `json:"is_advance"`
	Reference   string  `json:"reference"`
	PaidAt      string  `json:"paid_at"`
	DocumentIDs []int64 `json:"document_ids" validate:"required,min=1,dive,gt=0"`
}

func (req paymentRequest) toPayment() (Payment, error) {
	var paidAt time.Time
	if req.PaidAt != "" {
		var err error
		paidAt, err = time.Parse("2006-01-02", req.PaidAt)
		if err != nil {
			return Payment{}, err
		}
	}
	return Payment{
		Amount:            req.Amount,
		Method:            PaymentMethod(req.Method),
		IsAdvance:         req.IsAdvance,
		Reference:         req.Reference,
		PaidAt:            paidAt,
		TargetDocumentIDs: req.DocumentIDs,
	}, nil
}

// createPayment records a single payment against one document.
func (h *Handler) createPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if len(req.DocumentIDs) != 1 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "single payment targets exactly one document")
		return
	}

	p, err := req.toPayment()
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid paid_at date")
		return
	}

	doc, err := h.service.RegisterPayment(r.Context(), p)
	if err != nil {
		h.respondLedgerError(w, err, "create payment")
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"document": toVM(doc)})
}

// createGroupPayment records one payment allocated across several documents.
func (h *Handler) createGroupPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	p, err := req.toPayment()
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid paid_at date")
		return
	}

	result, err := h.service.RegisterGroupPayment(r.Context(), p)
	if err != nil {
		h.respondLedgerError(w, err, "create group payment")
		return
	}

	out := make([]documentVM, 0, len(result.Documents))
	for _, d := range result.Documents {
		out = append(out, toVM(d))
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"documents":   out,
		"unallocated": result.Unallocated,
	})
}

// showAging serves the aging buckets for open invoices.
func (h *Handler) showAging(w http.ResponseWriter, r *http.Request) {
	asOf := time.Now()
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid as_of date")
			return
		}
		asOf = parsed
	}

	aging, err := h.service.CalculateAging(r.Context(), asOf)
	if err != nil {
		h.logger.Error("calculate aging", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	total := aging.Current + aging.Bucket30 + aging.Bucket60 + aging.Bucket90 + aging.Bucket120
	httpx.JSON(w, http.StatusOK, map[string]any{
		"aging":         aging,
		"total":         total,
		"total_display": money.Format(total),
	})
}

type paymentVM struct {
	Reference     string `json:"reference"`
	Amount        int64  `json:"amount"`
	Method        string `json:"method"`
	IsAdvance     bool   `json:"is_advance"`
	PaidAt        string `json:"paid_at"`
	AmountDisplay string `json:"amount_display"`
}

// listPayments serves the recent payment journal, newest first.
func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	records, err := h.service.ListPayments(r.Context(), limit)
	if err != nil {
		h.logger.Error("list payments", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]paymentVM, 0, len(records))
	for _, rec := range records {
		out = append(out, paymentVM{
			Reference:     rec.Reference,
			Amount:        rec.Amount,
			Method:        string(rec.Method),
			IsAdvance:     rec.IsAdvance,
			PaidAt:        rec.PaidAt.Format("2006-01-02"),
			AmountDisplay: money.Format(rec.Amount),
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"payments": out})
}

func (h *Handler) respondLedgerError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInsufficientSelection),
		errors.Is(err, ErrMixedCounterparty),
		errors.Is(err, ErrOverpayment),
		errors.Is(err, ErrDocumentClosed):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Payment Rejected", err.Error())
	case errors.Is(err, ErrUnknownDocument):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
