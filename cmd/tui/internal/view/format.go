package view

import (
	"context"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/infaq/internal/export"
	"github.com/MrJamesThe3rd/infaq/internal/ledger"
)

const dbTimeout = 5 * time.Second

// FormatAmount renders a positive amount with the sign its type implies.
func FormatAmount(typ ledger.Type, amount int64) string {
	if typ == ledger.TypeExpense {
		return export.Rupiah(-amount)
	}

	return export.Rupiah(amount)
}

// FormatDate formats a time.Time into DD/MM/YYYY.
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)
