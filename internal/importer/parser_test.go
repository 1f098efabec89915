package importer_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/MrJamesThe3rd/infaq/internal/importer"
	"github.com/MrJamesThe3rd/infaq/internal/ledger"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestParser_BukuKas(t *testing.T) {
	csv := `Laporan Kas Masjid Al-Ikhlas
Periode;Maret 2024

Tanggal;Kategori;Jenis;Jumlah;Keterangan;Donatur;Telepon;Metode;Referensi;Catatan
10/03/2024;Umum;Pemasukan;500.000;Infaq Jumat;Hamba Allah;;Tunai;;
12/03/2024;operasional;pengeluaran;Rp 150.000;Listrik Maret;;;Transfer Bank;INV-03;token PLN

Total;;;;
`

	p := importer.NewParser(ledger.CategoryGeneral)
	res, err := p.Parse(strings.NewReader(csv), "bendahara")
	require.NoError(t, err)
	require.Len(t, res.Candidates, 2)

	assert.Equal(t, "buku kas", res.Profile)

	first := res.Candidates[0]
	assert.Equal(t, date(2024, 3, 10), first.Date)
	assert.Equal(t, ledger.CategoryGeneral, first.Category)
	assert.Equal(t, ledger.TypeIncome, first.Type)
	assert.Equal(t, int64(500000), first.Amount)
	assert.Equal(t, "Infaq Jumat", first.Description)
	assert.Equal(t, "Hamba Allah", first.DonorName)
	assert.Equal(t, ledger.PaymentCash, first.PaymentMethod)
	assert.Equal(t, "bendahara", first.CreatedBy)

	second := res.Candidates[1]
	assert.Equal(t, ledger.CategoryOperational, second.Category)
	assert.Equal(t, ledger.TypeExpense, second.Type)
	assert.Equal(t, int64(150000), second.Amount)
	assert.Equal(t, ledger.PaymentBankTransfer, second.PaymentMethod)
	assert.Equal(t, "INV-03", second.ReferenceNumber)
	assert.Equal(t, "token PLN", second.Notes)
}

func TestParser_LedgerCommaSeparated(t *testing.T) {
	csv := `date,category,type,amount,description,payment_method
2024-03-01,ramadan,income,2500000,Zakat fitrah,digital_wallet
`

	res, err := importer.NewParser("").Parse(strings.NewReader(csv), "")
	require.NoError(t, err)
	require.Len(t, res.Candidates, 1)

	assert.Equal(t, "ledger", res.Profile)
	assert.Equal(t, ledger.CategoryRamadan, res.Candidates[0].Category)
	assert.Equal(t, int64(2500000), res.Candidates[0].Amount)
	assert.Equal(t, ledger.PaymentDigitalWallet, res.Candidates[0].PaymentMethod)
	assert.Equal(t, 2, res.Candidates[0].Row)
}

func TestParser_MutasiRekening(t *testing.T) {
	csv := `Tanggal;Keterangan;Cabang;Debet;Kredit;Saldo
05/03/2024;TRSF E-BANKING CR HAMBA ALLAH;0000;;1.000.000,00;11.000.000,00
06/03/2024;BIAYA ADM;0000;-15.000,00;0,00;10.985.000,00
`

	res, err := importer.NewParser(ledger.CategoryOperational).Parse(strings.NewReader(csv), "")
	require.NoError(t, err)
	require.Len(t, res.Candidates, 2)

	assert.Equal(t, "mutasi rekening", res.Profile)

	assert.Equal(t, ledger.TypeIncome, res.Candidates[0].Type)
	assert.Equal(t, int64(1000000), res.Candidates[0].Amount)
	assert.Equal(t, ledger.CategoryOperational, res.Candidates[0].Category)

	assert.Equal(t, ledger.TypeExpense, res.Candidates[1].Type)
	assert.Equal(t, int64(15000), res.Candidates[1].Amount)
	assert.Equal(t, "BIAYA ADM", res.Candidates[1].Description)
}

func TestParser_Windows1252(t *testing.T) {
	csv := "Tanggal;Kategori;Jenis;Jumlah;Keterangan\n01/03/2024;Sosial;Pemasukan;75.000;Santunan Café\n"

	encoded, err := charmap.Windows1252.NewEncoder().Bytes([]byte(csv))
	require.NoError(t, err)

	res, err := importer.NewParser("").Parse(bytes.NewReader(encoded), "")
	require.NoError(t, err)
	require.Len(t, res.Candidates, 1)

	assert.Equal(t, "Santunan Café", res.Candidates[0].Description)
}

func TestParser_Errors(t *testing.T) {
	type testCase struct {
		name      string
		csv       string
		wantRow   int
		wantField string
	}

	header := "Tanggal;Kategori;Jenis;Jumlah;Keterangan\n"

	tests := []testCase{
		{
			name:      "BadDate",
			csv:       header + "31/02/2024x;Umum;Pemasukan;1000;Infaq\n",
			wantRow:   2,
			wantField: "date",
		},
		{
			name:      "UnknownCategory",
			csv:       header + "01/03/2024;Umum;Pemasukan;1000;Infaq\n01/03/2024;Parkir;Pemasukan;1000;Infaq\n",
			wantRow:   3,
			wantField: "category",
		},
		{
			name:      "UnknownType",
			csv:       header + "01/03/2024;Umum;Hibah;1000;Infaq\n",
			wantRow:   2,
			wantField: "type",
		},
		{
			name:      "FractionalAmount",
			csv:       header + "01/03/2024;Umum;Pemasukan;1.000,50;Infaq\n",
			wantRow:   2,
			wantField: "amount",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := importer.NewParser("").Parse(strings.NewReader(tt.csv), "")
			require.ErrorIs(t, err, ledger.ErrValidation)

			var vErr *ledger.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantRow, vErr.Row)
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}

func TestParser_UnknownFormat(t *testing.T) {
	_, err := importer.NewParser("").Parse(strings.NewReader("foo;bar\n1;2\n"), "")
	require.ErrorIs(t, err, importer.ErrUnknownFormat)
}
