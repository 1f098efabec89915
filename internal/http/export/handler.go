package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/infaq/internal/export"
	"github.com/MrJamesThe3rd/infaq/internal/http/respond"
	"github.com/MrJamesThe3rd/infaq/internal/ledger"
)

type Handler struct {
	svc *export.Service
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.metadata)
	r.Post("/download", h.download)
}

type exportRequest struct {
	Period string `json:"period"`
}

type transactionResponse struct {
	ID            uuid.UUID            `json:"id"`
	Date          string               `json:"date"`
	Category      ledger.Category      `json:"category"`
	Type          ledger.Type          `json:"type"`
	Amount        int64                `json:"amount"`
	Description   string               `json:"description"`
	DonorName     string               `json:"donor_name,omitempty"`
	PaymentMethod ledger.PaymentMethod `json:"payment_method"`
	CreatorName   string               `json:"creator_name,omitempty"`
}

type totalsResponse struct {
	Income  int64 `json:"income"`
	Expense int64 `json:"expense"`
	Balance int64 `json:"balance"`
}

type exportMetadataResponse struct {
	Period       string                `json:"period"`
	Transactions []transactionResponse `json:"transactions"`
	Totals       totalsResponse        `json:"totals"`
	Summary      string                `json:"summary"`
}

func toTransactionResponse(tx *ledger.Transaction) transactionResponse {
	return transactionResponse{
		ID:            tx.ID,
		Date:          tx.Date.Format(time.DateOnly),
		Category:      tx.Category,
		Type:          tx.Type,
		Amount:        tx.Amount,
		Description:   tx.Description,
		DonorName:     tx.DonorName,
		PaymentMethod: tx.PaymentMethod,
		CreatorName:   tx.CreatorName,
	}
}

// build decodes the request and builds the report. It writes the error
// response itself and returns nil in that case.
func (h *Handler) build(w http.ResponseWriter, r *http.Request) *export.Report {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, "invalid request body: "+err.Error())
		return nil
	}

	period, err := ledger.ParsePeriod(req.Period)
	if err != nil {
		respond.Error(w, r, err)
		return nil
	}

	report, err := h.svc.Build(r.Context(), period)
	if err != nil {
		respond.Error(w, r, err)
		return nil
	}

	return report
}

func (h *Handler) metadata(w http.ResponseWriter, r *http.Request) {
	report := h.build(w, r)
	if report == nil {
		return
	}

	txResponses := make([]transactionResponse, 0, len(report.Transactions))
	for _, tx := range report.Transactions {
		txResponses = append(txResponses, toTransactionResponse(tx))
	}

	respond.JSON(w, http.StatusOK, exportMetadataResponse{
		Period:       report.Period.String(),
		Transactions: txResponses,
		Totals: totalsResponse{
			Income:  report.Totals.Income,
			Expense: report.Totals.Expense,
			Balance: report.Totals.Balance,
		},
		Summary: export.GenerateSummary(report),
	})
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	report := h.build(w, r)
	if report == nil {
		return
	}

	// Render into memory first so a failure can still produce an error status.
	var buf bytes.Buffer
	if err := export.WriteArchive(&buf, report); err != nil {
		slog.ErrorContext(r.Context(), "failed to create zip", "error", err)
		respond.JSON(w, http.StatusInternalServerError, map[string]string{"error": respond.GenericFailure})

		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.ArchiveName(report)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))

	if _, err := buf.WriteTo(w); err != nil {
		slog.ErrorContext(r.Context(), "failed to write zip", "error", err)
	}
}
