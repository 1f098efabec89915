package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type represents the direction of a transaction (income or expense).
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

// Category is the closed set of funds a transaction can be booked against.
type Category string

const (
	CategoryOperational  Category = "operational"
	CategoryConstruction Category = "construction"
	CategoryEducation    Category = "education"
	CategorySocial       Category = "social"
	CategoryRamadan      Category = "ramadan"
	CategoryGeneral      Category = "general"
)

// Categories lists every accepted category in display order.
var Categories = []Category{
	CategoryOperational,
	CategoryConstruction,
	CategoryEducation,
	CategorySocial,
	CategoryRamadan,
	CategoryGeneral,
}

// PaymentMethod describes how the money moved.
type PaymentMethod string

const (
	PaymentCash          PaymentMethod = "cash"
	PaymentBankTransfer  PaymentMethod = "bank_transfer"
	PaymentDigitalWallet PaymentMethod = "digital_wallet"
	PaymentOther         PaymentMethod = "other"
)

// PaymentMethods lists every accepted payment method in display order.
var PaymentMethods = []PaymentMethod{
	PaymentCash,
	PaymentBankTransfer,
	PaymentDigitalWallet,
	PaymentOther,
}

// Status represents the lifecycle state of a transaction.
// Only StatusVerified is ever written; StatusPending is reserved for an
// approval workflow that does not exist yet.
type Status string

const (
	StatusVerified Status = "verified"
	StatusPending  Status = "pending"
)

// Transaction is a single ledger entry. Amount is always positive and in
// minor units; the sign is carried by Type.
type Transaction struct {
	ID              uuid.UUID
	Date            time.Time
	Category        Category
	Type            Type
	Amount          int64
	Description     string
	DonorName       string
	DonorPhone      string
	PaymentMethod   PaymentMethod
	ReferenceNumber string
	Notes           string
	Status          Status
	CreatedBy       string
	CreatorName     string // Loaded via JOIN
	CreatedAt       time.Time
}

// Period returns the accounting month the transaction is attributed to.
func (t *Transaction) Period() Period {
	return PeriodOf(t.Date)
}

// Candidate is a proposed transaction before validation.
type Candidate struct {
	Date            time.Time
	Category        Category
	Type            Type
	Amount          int64
	Description     string
	DonorName       string
	DonorPhone      string
	PaymentMethod   PaymentMethod
	ReferenceNumber string
	Notes           string
	CreatedBy       string

	// Row is the 1-based source record of an imported candidate, 0 when the
	// candidate was not read from a file.
	Row int
}

// Period identifies one calendar month.
type Period struct {
	Year  int
	Month time.Month
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// ParsePeriod parses a "YYYY-MM" string.
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, &ValidationError{Field: "period", Reason: "must be formatted as YYYY-MM"}
	}

	return PeriodOf(t), nil
}

// Validate reports whether the period names a real month.
func (p Period) Validate() error {
	if p.Month < time.January || p.Month > time.December {
		return &ValidationError{Field: "month", Reason: "must be between 1 and 12"}
	}

	if p.Year < 1 || p.Year > 9999 {
		return &ValidationError{Field: "year", Reason: "must be between 1 and 9999"}
	}

	return nil
}

// Start returns the first day of the period.
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the first day of the following period (exclusive bound).
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, 0)
}

// Contains reports whether the calendar date of t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	return t.Year() == p.Year && t.Month() == p.Month
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Totals are the aggregated amounts of one period.
type Totals struct {
	Income  int64
	Expense int64
	Balance int64
}

// MonthlySummary is the cached aggregate of one period. It is derived data
// and can always be rebuilt from the transactions of the period.
type MonthlySummary struct {
	Period     Period
	Totals     Totals
	ComputedAt time.Time
}

// DateOnly truncates t to its calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
