package billing

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridianmar/meridian/internal/platform/httpx"
)

// Handler manages billing endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers billing routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/invoices", h.createInvoice)
	r.Post("/credit-notes", h.createCreditNote)
	r.Post("/start-notes", h.createStartNote)
	r.Get("/documents/{id}", h.getDocument)
	r.Post("/documents/{id}/issue", h.issueDocument)
	r.Post("/documents/{id}/cancel", h.cancelDocument)
	r.Delete("/documents/{id}", h.deleteDocument)

	r.Get("/quotes", h.listQuotes)
	r.Post("/quotes", h.createQuote)
	r.Post("/quotes/{id}/send", h.sendQuote)
	r.Post("/quotes/{id}/convert", h.convertQuote)
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", raw)
}

type invoiceRequest struct {
	Number      string `json:"number"`
	ClientID    int64  `json:"client_id" validate:"required,gt=0"`
	InvoiceDate string `json:"invoice_date"`
	DueDate     string `json:"due_date"`
	TotalTTC    int64  `json:"total_ttc" validate:"required,gt=0"`
}

func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	invoiceDate, err := parseDate(req.InvoiceDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid invoice_date")
		return
	}
	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid due_date")
		return
	}

	doc, err := h.service.CreateInvoice(r.Context(), CreateInvoiceInput{
		Number:      req.Number,
		ClientID:    req.ClientID,
		InvoiceDate: invoiceDate,
		DueDate:     dueDate,
		TotalTTC:    req.TotalTTC,
	})
	if err != nil {
		h.respondError(w, err, "create invoice")
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"document": doc})
}

type creditNoteRequest struct {
	Reference     string `json:"reference"`
	ClientID      int64  `json:"client_id" validate:"required,gt=0"`
	SourceInvoice string `json:"source_invoice"`
	IssuedOn      string `json:"issued_on"`
	Total         int64  `json:"total" validate:"required,gt=0"`
}

func (h *Handler) createCreditNote(w http.ResponseWriter, r *http.Request) {
	var req creditNoteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	issuedOn, err := parseDate(req.IssuedOn)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid issued_on")
		return
	}

	doc, err := h.service.CreateCreditNote(r.Context(), CreateCreditNoteInput{
		Reference:     req.Reference,
		ClientID:      req.ClientID,
		SourceInvoice: req.SourceInvoice,
		IssuedOn:      issuedOn,
		Total:         req.Total,
	})
	if err != nil {
		h.respondError(w, err, "create credit note")
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"document": doc})
}

type startNoteRequest struct {
	NoteNumber    string `json:"note_number"`
	ClientID      int64  `json:"client_id" validate:"required,gt=0"`
	OperationRef  string `json:"operation_ref"`
	OpenedOn      string `json:"opened_on"`
	EstimateTotal int64  `json:"estimate_total" validate:"required,gt=0"`
}

func (h *Handler) createStartNote(w http.ResponseWriter, r *http.Request) {
	var req startNoteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	openedOn, err := parseDate(req.OpenedOn)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid opened_on")
		return
	}

	doc, err := h.service.CreateStartNote(r.Context(), CreateStartNoteInput{
		NoteNumber:    req.NoteNumber,
		ClientID:      req.ClientID,
		OperationRef:  req.OperationRef,
		OpenedOn:      openedOn,
		EstimateTotal: req.EstimateTotal,
	})
	if err != nil {
		h.respondError(w, err, "create start note")
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"document": doc})
}

func (h *Handler) getDocument(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid document ID")
		return
	}
	doc, err := h.service.GetDocument(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "get document")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"document": doc})
}

func (h *Handler) issueDocument(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid document ID")
		return
	}
	doc, err := h.service.IssueDocument(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "issue document")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"document": doc})
}

func (h *Handler) cancelDocument(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid document ID")
		return
	}
	if err := h.service.CancelDocument(r.Context(), id); err != nil {
		h.respondError(w, err, "cancel document")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "cancelled"})
}

func (h *Handler) deleteDocument(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid document ID")
		return
	}
	if err := h.service.DeleteDocument(r.Context(), id); err != nil {
		h.respondError(w, err, "delete document")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type quoteRequest struct {
	Number    string `json:"number"`
	ClientID  int64  `json:"client_id" validate:"required,gt=0"`
	QuoteDate string `json:"quote_date"`
	Validity  string `json:"validity"`
	Total     int64  `json:"total" validate:"required,gt=0"`
}

func (h *Handler) createQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	quoteDate, err := parseDate(req.QuoteDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid quote_date")
		return
	}
	validity, err := parseDate(req.Validity)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid validity")
		return
	}

	quote, err := h.service.CreateQuote(r.Context(), CreateQuoteInput{
		Number:    req.Number,
		ClientID:  req.ClientID,
		QuoteDate: quoteDate,
		Validity:  validity,
		Total:     req.Total,
	})
	if err != nil {
		h.respondError(w, err, "create quote")
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"quote": quote})
}

func (h *Handler) listQuotes(w http.ResponseWriter, r *http.Request) {
	quotes, err := h.service.ListQuotes(r.Context(), QuoteStatus(r.URL.Query().Get("status")))
	if err != nil {
		h.respondError(w, err, "list quotes")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"quotes": quotes})
}

func (h *Handler) sendQuote(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid quote ID")
		return
	}
	if err := h.service.MarkQuoteSent(r.Context(), id); err != nil {
		h.respondError(w, err, "send quote")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "sent"})
}

func (h *Handler) convertQuote(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid quote ID")
		return
	}
	doc, err := h.service.ConvertQuoteToInvoice(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "convert quote")
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"document": doc})
}

func (h *Handler) respondError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicateNumber):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, ErrHasPayments), errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrAlreadyConverted):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
