package export

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/MrJamesThe3rd/infaq/internal/ledger"
	"github.com/MrJamesThe3rd/infaq/internal/summary"
)

// Lister is the read side the export needs.
type Lister interface {
	ListPeriod(ctx context.Context, period ledger.Period) ([]*ledger.Transaction, error)
}

// Report is one month of the ledger, ready to be rendered.
type Report struct {
	Period       ledger.Period
	Transactions []*ledger.Transaction
	Totals       ledger.Totals
	GeneratedAt  time.Time
}

// Service builds monthly reports. It never writes to the ledger; totals are
// folded from the listed transactions rather than read from the cache.
type Service struct {
	transactions Lister
	now          func() time.Time
}

func NewService(transactions Lister) *Service {
	return &Service{
		transactions: transactions,
		now:          time.Now,
	}
}

// Build collects the transactions of period and their totals.
func (s *Service) Build(ctx context.Context, period ledger.Period) (*Report, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}

	txs, err := s.transactions.ListPeriod(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	totals, err := summary.Fold(period, txs)
	if err != nil {
		return nil, err
	}

	return &Report{
		Period:       period,
		Transactions: txs,
		Totals:       totals,
		GeneratedAt:  s.now().UTC(),
	}, nil
}

// csvHeader matches the "buku kas" import layout so an export can be
// imported again.
var csvHeader = []string{
	"Tanggal", "Kategori", "Jenis", "Jumlah", "Keterangan",
	"Donatur", "Telepon", "Metode", "Referensi", "Catatan", "Dicatat Oleh",
}

// WriteCSV writes the transactions of r, semicolon separated.
func WriteCSV(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, tx := range r.Transactions {
		createdBy := tx.CreatorName
		if createdBy == "" {
			createdBy = tx.CreatedBy
		}

		record := []string{
			tx.Date.Format(time.DateOnly),
			tx.Category.Label(),
			tx.Type.Label(),
			strconv.FormatInt(tx.Amount, 10),
			tx.Description,
			tx.DonorName,
			tx.DonorPhone,
			tx.PaymentMethod.Label(),
			tx.ReferenceNumber,
			tx.Notes,
			createdBy,
		}

		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing transaction %s: %w", tx.ID, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

var monthNames = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// MonthName returns the Indonesian name of the period's month and year,
// e.g. "Maret 2024".
func MonthName(p ledger.Period) string {
	if p.Month < time.January || p.Month > time.December {
		return p.String()
	}

	return fmt.Sprintf("%s %d", monthNames[p.Month-1], p.Year)
}

var printer = message.NewPrinter(language.Indonesian)

// Rupiah formats an amount with Indonesian thousands separators, e.g.
// "Rp 1.500.000".
func Rupiah(amount int64) string {
	if amount < 0 {
		return printer.Sprintf("-Rp %d", -amount)
	}

	return printer.Sprintf("Rp %d", amount)
}

// GenerateSummary renders a plain-text report suitable for a notice board
// or a chat message.
func GenerateSummary(r *Report) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Laporan Kas %s\n\n", MonthName(r.Period))

	if len(r.Transactions) == 0 {
		sb.WriteString("Tidak ada transaksi.\n")
	}

	for _, tx := range r.Transactions {
		sign := "-"
		if tx.Type == ledger.TypeIncome {
			sign = "+"
		}

		fmt.Fprintf(&sb, "* %s | %s | %s | %s%s\n",
			tx.Date.Format("02/01/2006"), tx.Category.Label(), tx.Description, sign, Rupiah(tx.Amount))
	}

	fmt.Fprintf(&sb, "\nPemasukan:   %s\n", Rupiah(r.Totals.Income))
	fmt.Fprintf(&sb, "Pengeluaran: %s\n", Rupiah(r.Totals.Expense))
	fmt.Fprintf(&sb, "Saldo:       %s\n", Rupiah(r.Totals.Balance))

	return sb.String()
}

// ArchiveName is the file name used for a report archive.
func ArchiveName(r *Report) string {
	return fmt.Sprintf("laporan-kas-%s.zip", r.Period)
}

// WriteArchive writes a zip holding transactions.csv and summary.txt.
func WriteArchive(w io.Writer, r *Report) error {
	zw := zip.NewWriter(w)

	csvFile, err := zw.CreateHeader(&zip.FileHeader{Name: "transactions.csv", Method: zip.Deflate, Modified: r.GeneratedAt})
	if err != nil {
		return fmt.Errorf("creating transactions.csv: %w", err)
	}

	if err := WriteCSV(csvFile, r); err != nil {
		return err
	}

	summaryFile, err := zw.CreateHeader(&zip.FileHeader{Name: "summary.txt", Method: zip.Deflate, Modified: r.GeneratedAt})
	if err != nil {
		return fmt.Errorf("creating summary.txt: %w", err)
	}

	if _, err := io.WriteString(summaryFile, GenerateSummary(r)); err != nil {
		return fmt.Errorf("writing summary.txt: %w", err)
	}

	return zw.Close()
}

// SaveArchive writes the archive of r into outputDir and returns its path.
func SaveArchive(r *Report, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(outputDir, ArchiveName(r))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	if err := WriteArchive(f, r); err != nil {
		return "", err
	}

	return path, f.Close()
}
