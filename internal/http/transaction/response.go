package transaction

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/infaq/internal/ledger"
)

type transactionResponse struct {
	ID              uuid.UUID            `json:"id"`
	Date            string               `json:"date"`
	Category        ledger.Category      `json:"category"`
	Type            ledger.Type          `json:"type"`
	Amount          int64                `json:"amount"`
	Description     string               `json:"description"`
	DonorName       string               `json:"donor_name,omitempty"`
	DonorPhone      string               `json:"donor_phone,omitempty"`
	PaymentMethod   ledger.PaymentMethod `json:"payment_method"`
	ReferenceNumber string               `json:"reference_number,omitempty"`
	Notes           string               `json:"notes,omitempty"`
	Status          ledger.Status        `json:"status"`
	CreatedBy       string               `json:"created_by,omitempty"`
	CreatorName     string               `json:"creator_name,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
}

type createResponse struct {
	transactionResponse
	SummaryStale bool `json:"summary_stale,omitempty"`
}

func toResponse(tx *ledger.Transaction) transactionResponse {
	return transactionResponse{
		ID:              tx.ID,
		Date:            tx.Date.Format(time.DateOnly),
		Category:        tx.Category,
		Type:            tx.Type,
		Amount:          tx.Amount,
		Description:     tx.Description,
		DonorName:       tx.DonorName,
		DonorPhone:      tx.DonorPhone,
		PaymentMethod:   tx.PaymentMethod,
		ReferenceNumber: tx.ReferenceNumber,
		Notes:           tx.Notes,
		Status:          tx.Status,
		CreatedBy:       tx.CreatedBy,
		CreatorName:     tx.CreatorName,
		CreatedAt:       tx.CreatedAt,
	}
}

func toResponseList(txs []*ledger.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}
