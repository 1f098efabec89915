package summary

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/infaq/internal/http/respond"
	"github.com/MrJamesThe3rd/infaq/internal/ledger"
	"github.com/MrJamesThe3rd/infaq/internal/report"
)

type Handler struct {
	ledger  *ledger.Service
	reports *report.Service
}

func NewHandler(ledgerSvc *ledger.Service, reports *report.Service) *Handler {
	return &Handler{ledger: ledgerSvc, reports: reports}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/{year}/{month}", h.get)
	r.Post("/{year}/{month}/recompute", h.recompute)
}

type summaryResponse struct {
	Period       string    `json:"period"`
	Year         int       `json:"year"`
	Month        int       `json:"month"`
	TotalIncome  int64     `json:"total_income"`
	TotalExpense int64     `json:"total_expense"`
	Balance      int64     `json:"balance"`
	ComputedAt   time.Time `json:"computed_at"`
}

func toResponse(s *ledger.MonthlySummary) summaryResponse {
	return summaryResponse{
		Period:       s.Period.String(),
		Year:         s.Period.Year,
		Month:        int(s.Period.Month),
		TotalIncome:  s.Totals.Income,
		TotalExpense: s.Totals.Expense,
		Balance:      s.Totals.Balance,
		ComputedAt:   s.ComputedAt,
	}
}

func periodParam(r *http.Request) (ledger.Period, error) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		return ledger.Period{}, &ledger.ValidationError{Field: "year", Reason: "must be a number"}
	}

	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		return ledger.Period{}, &ledger.ValidationError{Field: "month", Reason: "must be a number"}
	}

	p := ledger.Period{Year: year, Month: time.Month(month)}

	return p, p.Validate()
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	period, err := periodParam(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	sum, err := h.reports.GetMonthlyTotals(r.Context(), period)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(sum))
}

func (h *Handler) recompute(w http.ResponseWriter, r *http.Request) {
	period, err := periodParam(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	sum, err := h.ledger.RecomputeSummary(r.Context(), period)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(sum))
}
