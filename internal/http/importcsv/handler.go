package importcsv

import (
	"cmp"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/infaq/internal/http/auth"
	"github.com/MrJamesThe3rd/infaq/internal/http/respond"
	"github.com/MrJamesThe3rd/infaq/internal/importer"
	"github.com/MrJamesThe3rd/infaq/internal/ledger"
	"github.com/MrJamesThe3rd/infaq/internal/user"
)

const maxUploadSize = 10 << 20

type Handler struct {
	ledger *ledger.Service
	users  *user.Service
}

func NewHandler(ledgerSvc *ledger.Service, users *user.Service) *Handler {
	return &Handler{ledger: ledgerSvc, users: users}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
	r.Post("/confirm", h.confirmImport)
}

type transactionResponse struct {
	ID          uuid.UUID       `json:"id"`
	Date        string          `json:"date"`
	Category    ledger.Category `json:"category"`
	Type        ledger.Type     `json:"type"`
	Amount      int64           `json:"amount"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

type importSuccessResponse struct {
	Imported     int                   `json:"imported"`
	Transactions []transactionResponse `json:"transactions"`
	SummaryStale bool                  `json:"summary_stale,omitempty"`
}

type candidateDTO struct {
	Date            string               `json:"date"`
	Category        ledger.Category      `json:"category"`
	Type            ledger.Type          `json:"type"`
	Amount          int64                `json:"amount"`
	Description     string               `json:"description"`
	DonorName       string               `json:"donor_name,omitempty"`
	DonorPhone      string               `json:"donor_phone,omitempty"`
	PaymentMethod   ledger.PaymentMethod `json:"payment_method,omitempty"`
	ReferenceNumber string               `json:"reference_number,omitempty"`
	Notes           string               `json:"notes,omitempty"`
	Row             int                  `json:"row,omitempty"`
}

type conflictDTO struct {
	Incoming candidateDTO        `json:"incoming"`
	Existing transactionResponse `json:"existing"`
}

type importConflictResponse struct {
	New       []candidateDTO `json:"new"`
	Conflicts []conflictDTO  `json:"conflicts"`
}

type confirmRequest struct {
	Candidates []candidateDTO `json:"candidates"`
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respond.BadRequest(w, "failed to parse form: "+err.Error())
		return
	}

	category := ledger.CategoryGeneral

	if s := r.FormValue("category"); s != "" {
		c, ok := ledger.ParseCategory(s)
		if !ok {
			respond.Error(w, r, &ledger.ValidationError{Field: "category", Reason: "is not a known category"})
			return
		}

		category = c
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.BadRequest(w, "file field is required")
		return
	}
	defer file.Close()

	actor := h.actor(r)

	parsed, err := importer.NewParser(category).Parse(file, actor.ID)
	if err != nil {
		if errors.Is(err, importer.ErrUnknownFormat) {
			respond.BadRequest(w, err.Error())
			return
		}

		respond.Error(w, r, err)

		return
	}

	slog.InfoContext(r.Context(), "parsed import file",
		"profile", parsed.Profile, "charset", parsed.Charset, "rows", len(parsed.Candidates))

	result, err := h.ledger.ImportBatch(r.Context(), parsed.Candidates)

	stale := errors.Is(err, ledger.ErrSummaryStale)
	if err != nil && !stale {
		respond.Error(w, r, err)
		return
	}

	if len(result.Conflicts) > 0 {
		resp := importConflictResponse{
			New:       make([]candidateDTO, 0, len(result.New)),
			Conflicts: make([]conflictDTO, 0, len(result.Conflicts)),
		}
		for _, c := range result.New {
			resp.New = append(resp.New, toCandidateDTO(c))
		}

		for _, c := range result.Conflicts {
			resp.Conflicts = append(resp.Conflicts, conflictDTO{
				Incoming: toCandidateDTO(c.Incoming),
				Existing: toTxResponse(c.Existing),
			})
		}

		respond.JSON(w, http.StatusConflict, resp)

		return
	}

	respond.JSON(w, http.StatusCreated, toSuccessResponse(result.Imported, stale))
}

func (h *Handler) confirmImport(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, "invalid request body: "+err.Error())
		return
	}

	actor := h.actor(r)

	candidates := make([]ledger.Candidate, 0, len(req.Candidates))

	for i, dto := range req.Candidates {
		date, err := time.Parse(time.DateOnly, dto.Date)
		if err != nil {
			respond.Error(w, r, &ledger.ValidationError{Row: cmp.Or(dto.Row, i+1), Field: "date", Reason: "must be formatted as YYYY-MM-DD"})
			return
		}

		candidates = append(candidates, ledger.Candidate{
			Date:            date,
			Category:        dto.Category,
			Type:            dto.Type,
			Amount:          dto.Amount,
			Description:     dto.Description,
			DonorName:       dto.DonorName,
			DonorPhone:      dto.DonorPhone,
			PaymentMethod:   dto.PaymentMethod,
			ReferenceNumber: dto.ReferenceNumber,
			Notes:           dto.Notes,
			CreatedBy:       actor.ID,
			Row:             dto.Row,
		})
	}

	txs, err := h.ledger.RecordBatch(r.Context(), candidates)

	stale := errors.Is(err, ledger.ErrSummaryStale)
	if err != nil && !stale {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toSuccessResponse(txs, stale))
}

// actor returns the acting user and makes sure the user directory knows it.
func (h *Handler) actor(r *http.Request) auth.Actor {
	actor, _ := auth.FromContext(r.Context())

	if err := h.users.Register(r.Context(), actor.ID, actor.Name); err != nil {
		slog.WarnContext(r.Context(), "failed to register actor", "actor_id", actor.ID, "error", err)
	}

	return actor
}

func toSuccessResponse(txs []*ledger.Transaction, stale bool) importSuccessResponse {
	responses := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		responses = append(responses, toTxResponse(tx))
	}

	return importSuccessResponse{
		Imported:     len(txs),
		Transactions: responses,
		SummaryStale: stale,
	}
}

func toTxResponse(tx *ledger.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		Date:        tx.Date.Format(time.DateOnly),
		Category:    tx.Category,
		Type:        tx.Type,
		Amount:      tx.Amount,
		Description: tx.Description,
		CreatedAt:   tx.CreatedAt,
	}
}

func toCandidateDTO(c ledger.Candidate) candidateDTO {
	return candidateDTO{
		Date:            c.Date.Format(time.DateOnly),
		Category:        c.Category,
		Type:            c.Type,
		Amount:          c.Amount,
		Description:     c.Description,
		DonorName:       c.DonorName,
		DonorPhone:      c.DonorPhone,
		PaymentMethod:   c.PaymentMethod,
		ReferenceNumber: c.ReferenceNumber,
		Notes:           c.Notes,
		Row:             c.Row,
	}
}
