// Package importer turns spreadsheet exports into ledger candidates.
package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/infaq/internal/encoding"
	"github.com/MrJamesThe3rd/infaq/internal/ledger"
)

// ErrUnknownFormat is returned when no header row matches a known profile.
var ErrUnknownFormat = errors.New("no matching column layout found")

// delimiters are tried in order; spreadsheets in id-ID locales export with ';'.
var delimiters = []rune{';', ',', '\t'}

var dateLayouts = []string{
	time.DateOnly,
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
}

// Result is a parsed file.
type Result struct {
	Profile    string
	Charset    string
	Candidates []ledger.Candidate
}

// Parser reads CSV exports and produces candidates. It auto-detects the
// charset, the delimiter and the column layout.
type Parser struct {
	defaultCategory ledger.Category
}

// NewParser returns a parser that books rows without a category column
// against defaultCategory.
func NewParser(defaultCategory ledger.Category) *Parser {
	if defaultCategory == "" {
		defaultCategory = ledger.CategoryGeneral
	}

	return &Parser{defaultCategory: defaultCategory}
}

// Parse reads the whole input. Rows whose date cell is empty or has no digits
// are skipped (footers, totals); any other malformed row fails the parse with
// a *ledger.ValidationError carrying its 1-based record number.
func (p *Parser) Parse(r io.Reader, createdBy string) (*Result, error) {
	dec, err := encoding.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	for _, comma := range delimiters {
		rows, err := readRows(data, comma)
		if err != nil {
			continue
		}

		profile, cols, headerIdx := detectProfile(rows)
		if profile == nil {
			continue
		}

		candidates, err := p.parseRows(profile, cols, rows[headerIdx+1:], headerIdx+1, createdBy)
		if err != nil {
			return nil, err
		}

		return &Result{Profile: profile.Name, Charset: dec.Charset, Candidates: candidates}, nil
	}

	return nil, ErrUnknownFormat
}

func readRows(data []byte, comma rune) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	return reader.ReadAll()
}

// colIndex maps lowercased column names to their index in the row.
type colIndex map[string]int

// detectProfile scans rows for a header that matches a known profile and
// returns the profile, its column map and the header row index.
func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.ToLower(strings.TrimSpace(cell))
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

func (p *Parser) parseRows(prof *Profile, cols colIndex, rows [][]string, headerRowNum int, createdBy string) ([]ledger.Candidate, error) {
	var candidates []ledger.Candidate

	for i, row := range rows {
		rowNum := headerRowNum + i + 1

		dateStr := cell(row, cols, prof.DateCol)
		if dateStr == "" {
			continue
		}

		date, ok := parseDate(dateStr)
		if !ok {
			// Totals and signature lines below the table carry no digits.
			if !strings.ContainsAny(dateStr, "0123456789") {
				continue
			}

			return nil, rowErr(rowNum, "date", fmt.Sprintf("%q is not a date", dateStr))
		}

		c := ledger.Candidate{
			Date:            date,
			Category:        p.defaultCategory,
			Description:     cell(row, cols, prof.DescCol),
			DonorName:       cell(row, cols, prof.DonorCol),
			DonorPhone:      cell(row, cols, prof.PhoneCol),
			ReferenceNumber: cell(row, cols, prof.ReferenceCol),
			Notes:           cell(row, cols, prof.NotesCol),
			CreatedBy:       createdBy,
			Row:             rowNum,
		}

		if prof.CategoryCol != "" {
			s := cell(row, cols, prof.CategoryCol)

			category, ok := ledger.ParseCategory(s)
			if !ok {
				return nil, rowErr(rowNum, "category", fmt.Sprintf("%q is not a known category", s))
			}

			c.Category = category
		}

		if s := cell(row, cols, prof.MethodCol); s != "" {
			method, ok := ledger.ParsePaymentMethod(s)
			if !ok {
				return nil, rowErr(rowNum, "payment_method", fmt.Sprintf("%q is not a known payment method", s))
			}

			c.PaymentMethod = method
		}

		var err error

		switch prof.AmountMode {
		case amountSigned:
			c.Amount, c.Type, err = parseSigned(row, cols, prof)
		case amountSplit:
			c.Amount, c.Type, err = parseSplit(row, cols, prof)
		}

		if err != nil {
			var vErr *ledger.ValidationError
			if errors.As(err, &vErr) {
				vErr.Row = rowNum
			}

			return nil, err
		}

		candidates = append(candidates, c)
	}

	return candidates, nil
}

func parseSigned(row []string, cols colIndex, prof *Profile) (int64, ledger.Type, error) {
	s := cell(row, cols, prof.TypeCol)

	typ, ok := ledger.ParseType(s)
	if !ok {
		return 0, "", &ledger.ValidationError{Field: "type", Reason: fmt.Sprintf("%q is not income or expense", s)}
	}

	amount, err := ledger.ParseAmount(cell(row, cols, prof.AmountCol))
	if err != nil {
		return 0, "", err
	}

	return amount, typ, nil
}

// parseSplit reads a bank statement row: a debit is money leaving the
// account (expense), a credit is money coming in (income).
func parseSplit(row []string, cols colIndex, prof *Profile) (int64, ledger.Type, error) {
	if s := cell(row, cols, prof.DebitCol); s != "" && !isZero(s) {
		amount, err := ledger.ParseAmount(strings.TrimPrefix(s, "-"))
		return amount, ledger.TypeExpense, err
	}

	if s := cell(row, cols, prof.CreditCol); s != "" && !isZero(s) {
		amount, err := ledger.ParseAmount(s)
		return amount, ledger.TypeIncome, err
	}

	return 0, "", &ledger.ValidationError{Field: "amount", Reason: "debit and credit are both empty"}
}

func isZero(s string) bool {
	return strings.Trim(s, "0.,- ") == ""
}

func cell(row []string, cols colIndex, name string) string {
	if name == "" {
		return ""
	}

	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func rowErr(row int, field, reason string) error {
	return &ledger.ValidationError{Row: row, Field: field, Reason: reason}
}
