package transaction

import (
	"cmp"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/infaq/internal/http/auth"
	"github.com/MrJamesThe3rd/infaq/internal/http/respond"
	"github.com/MrJamesThe3rd/infaq/internal/ledger"
	"github.com/MrJamesThe3rd/infaq/internal/report"
	"github.com/MrJamesThe3rd/infaq/internal/user"
)

type Handler struct {
	ledger  *ledger.Service
	reports *report.Service
	users   *user.Service
}

func NewHandler(ledgerSvc *ledger.Service, reports *report.Service, users *user.Service) *Handler {
	return &Handler{ledger: ledgerSvc, reports: reports, users: users}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.listPeriod)
	r.Get("/recent", h.recent)
}

type createTransactionRequest struct {
	Date            string               `json:"date"`
	Category        ledger.Category      `json:"category"`
	Type            ledger.Type          `json:"type"`
	Amount          json.RawMessage      `json:"amount"`
	Description     string               `json:"description"`
	DonorName       string               `json:"donor_name"`
	DonorPhone      string               `json:"donor_phone"`
	PaymentMethod   ledger.PaymentMethod `json:"payment_method"`
	ReferenceNumber string               `json:"reference_number"`
	Notes           string               `json:"notes"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, "invalid request body: "+err.Error())
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var date time.Time

	if req.Date != "" {
		d, err := time.Parse(time.DateOnly, req.Date)
		if err != nil {
			respond.Error(w, r, &ledger.ValidationError{Field: "date", Reason: "must be formatted as YYYY-MM-DD"})
			return
		}

		date = d
	}

	actor, _ := auth.FromContext(r.Context())

	if err := h.users.Register(r.Context(), actor.ID, actor.Name); err != nil {
		// The creator name is cosmetic; recording must not depend on it.
		slog.WarnContext(r.Context(), "failed to register actor", "actor_id", actor.ID, "error", err)
	}

	tx, err := h.ledger.RecordTransaction(r.Context(), ledger.Candidate{
		Date:            date,
		Category:        req.Category,
		Type:            req.Type,
		Amount:          amount,
		Description:     req.Description,
		DonorName:       req.DonorName,
		DonorPhone:      req.DonorPhone,
		PaymentMethod:   req.PaymentMethod,
		ReferenceNumber: req.ReferenceNumber,
		Notes:           req.Notes,
		CreatedBy:       actor.ID,
	})

	stale := errors.Is(err, ledger.ErrSummaryStale)
	if err != nil && !stale {
		respond.Error(w, r, err)
		return
	}

	resp := createResponse{transactionResponse: toResponse(tx), SummaryStale: stale}
	if actor.ID != "" {
		resp.CreatorName = cmp.Or(actor.Name, actor.ID)
	}

	respond.JSON(w, http.StatusCreated, resp)
}

// parseAmount accepts a JSON integer or a string in the format the forms use
// ("150.000"). A missing amount decodes to zero and is rejected by validation.
func parseAmount(raw json.RawMessage) (int64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, &ledger.ValidationError{Field: "amount", Reason: "is not a valid string"}
		}

		return ledger.ParseAmount(s)
	}

	d, err := decimal.NewFromString(string(raw))
	if err != nil {
		return 0, &ledger.ValidationError{Field: "amount", Reason: "must be a number"}
	}

	if !d.IsInteger() {
		return 0, &ledger.ValidationError{Field: "amount", Reason: "must be a whole rupiah amount"}
	}

	if d.Abs().GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return 0, &ledger.ValidationError{Field: "amount", Reason: "is too large"}
	}

	return d.IntPart(), nil
}

func (h *Handler) recent(w http.ResponseWriter, r *http.Request) {
	limit := 0

	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			respond.BadRequest(w, "limit must be an integer")
			return
		}

		limit = n
	}

	txs, err := h.reports.GetRecentTransactions(r.Context(), limit)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(txs))
}

func (h *Handler) listPeriod(w http.ResponseWriter, r *http.Request) {
	s := r.URL.Query().Get("period")
	if s == "" {
		respond.BadRequest(w, "period query parameter is required (YYYY-MM)")
		return
	}

	period, err := ledger.ParsePeriod(s)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	txs, err := h.reports.ListPeriod(r.Context(), period)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(txs))
}
