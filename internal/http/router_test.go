package http_test

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/infaq/internal/database/dbtest"
	"github.com/MrJamesThe3rd/infaq/internal/export"
	infaqHttp "github.com/MrJamesThe3rd/infaq/internal/http"
	"github.com/MrJamesThe3rd/infaq/internal/http/auth"
	exportHandler "github.com/MrJamesThe3rd/infaq/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/infaq/internal/http/importcsv"
	summaryHandler "github.com/MrJamesThe3rd/infaq/internal/http/summary"
	txHandler "github.com/MrJamesThe3rd/infaq/internal/http/transaction"
	userHandler "github.com/MrJamesThe3rd/infaq/internal/http/user"
	"github.com/MrJamesThe3rd/infaq/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/infaq/internal/ledger/store"
	"github.com/MrJamesThe3rd/infaq/internal/report"
	"github.com/MrJamesThe3rd/infaq/internal/summary"
	"github.com/MrJamesThe3rd/infaq/internal/user"
	userStore "github.com/MrJamesThe3rd/infaq/internal/user/store"
)

func newRouter(t *testing.T, authenticator *auth.Authenticator) http.Handler {
	t.Helper()

	db := dbtest.NewSQLite(t)
	store := ledgerStore.New(db, 5*time.Second)

	var (
		ledgerService = ledger.NewService(store, summary.NewAggregator(store))
		reportService = report.NewService(store, report.Limits{Default: 10, Max: 100})
		userService   = user.NewService(userStore.New(db))
		exportService = export.NewService(reportService)
	)

	return infaqHttp.New(
		infaqHttp.Options{AllowedOrigins: []string{"*"}, Timeout: 10 * time.Second},
		authenticator,
		txHandler.NewHandler(ledgerService, reportService, userService),
		summaryHandler.NewHandler(ledgerService, reportService),
		importHandler.NewHandler(ledgerService, userService),
		exportHandler.NewHandler(exportService),
		userHandler.NewHandler(userService),
	)
}

func defaultAuth() *auth.Authenticator {
	return auth.New("", auth.Actor{ID: "system", Name: "Bendahara"})
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())

	return v
}

type txBody map[string]any

func TestRouter_RecordAndSummarise(t *testing.T) {
	h := newRouter(t, defaultAuth())

	rec := doJSON(t, h, http.MethodPost, "/api/v1/transactions/", txBody{
		"date": "2024-03-10", "category": "operational", "type": "income",
		"amount": 500000, "description": "Donasi Jumat", "payment_method": "cash",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decode[map[string]any](t, rec)
	assert.Equal(t, "verified", created["status"])
	assert.Equal(t, "system", created["created_by"])
	assert.Equal(t, "Bendahara", created["creator_name"])
	assert.NotContains(t, created, "summary_stale")

	rec = doJSON(t, h, http.MethodPost, "/api/v1/transactions/", txBody{
		"date": "2024-03-10", "category": "operational", "type": "expense",
		"amount": 200000, "description": "Listrik",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, h, http.MethodGet, "/api/v1/summaries/2024/3", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	sum := decode[map[string]any](t, rec)
	assert.Equal(t, float64(500000), sum["total_income"])
	assert.Equal(t, float64(200000), sum["total_expense"])
	assert.Equal(t, float64(300000), sum["balance"])
	assert.Equal(t, "2024-03", sum["period"])

	rec = doJSON(t, h, http.MethodGet, "/api/v1/transactions/recent?limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	recent := decode[[]map[string]any](t, rec)
	require.Len(t, recent, 1)
	assert.Equal(t, "Listrik", recent[0]["description"])
	assert.Equal(t, "Bendahara", recent[0]["creator_name"])

	rec = doJSON(t, h, http.MethodGet, "/api/v1/transactions/?period=2024-03", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 2)
}

func TestRouter_Errors(t *testing.T) {
	h := newRouter(t, defaultAuth())

	type testCase struct {
		name       string
		method     string
		path       string
		body       any
		wantStatus int
	}

	tests := []testCase{
		{
			name: "ZeroAmount", method: http.MethodPost, path: "/api/v1/transactions/",
			body:       txBody{"date": "2024-03-10", "category": "general", "type": "income", "amount": 0, "description": "x"},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "BadDate", method: http.MethodPost, path: "/api/v1/transactions/",
			body:       txBody{"date": "10/03/2024", "category": "general", "type": "income", "amount": 1, "description": "x"},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "MalformedJSON", method: http.MethodPost, path: "/api/v1/transactions/",
			body:       "not an object",
			wantStatus: http.StatusBadRequest,
		},
		{name: "SummaryNeverComputed", method: http.MethodGet, path: "/api/v1/summaries/2024/5", wantStatus: http.StatusNotFound},
		{name: "SummaryBadMonth", method: http.MethodGet, path: "/api/v1/summaries/2024/13", wantStatus: http.StatusUnprocessableEntity},
		{name: "SummaryNonNumeric", method: http.MethodGet, path: "/api/v1/summaries/abc/1", wantStatus: http.StatusUnprocessableEntity},
		{name: "RecentHugeLimit", method: http.MethodGet, path: "/api/v1/transactions/recent?limit=1000000", wantStatus: http.StatusOK},
		{name: "RecentNegativeLimit", method: http.MethodGet, path: "/api/v1/transactions/recent?limit=-4", wantStatus: http.StatusOK},
		{name: "RecentNonNumericLimit", method: http.MethodGet, path: "/api/v1/transactions/recent?limit=ten", wantStatus: http.StatusBadRequest},
		{name: "PeriodMissing", method: http.MethodGet, path: "/api/v1/transactions/", wantStatus: http.StatusBadRequest},
		{name: "UnknownUser", method: http.MethodGet, path: "/api/v1/users/nobody", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestRouter_CreateAmountForms(t *testing.T) {
	h := newRouter(t, defaultAuth())

	type testCase struct {
		name       string
		amount     any
		wantStatus int
		wantAmount float64
	}

	tests := []testCase{
		{name: "Integer", amount: 150000, wantStatus: http.StatusCreated, wantAmount: 150000},
		{name: "FormattedString", amount: "150.000", wantStatus: http.StatusCreated, wantAmount: 150000},
		{name: "NonNumericString", amount: "abc", wantStatus: http.StatusUnprocessableEntity},
		{name: "Fraction", amount: 1.5, wantStatus: http.StatusUnprocessableEntity},
		{name: "Boolean", amount: true, wantStatus: http.StatusUnprocessableEntity},
		{name: "BeyondInt64", amount: json.Number("92233720368547758070"), wantStatus: http.StatusUnprocessableEntity},
		{name: "Missing", amount: nil, wantStatus: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := txBody{"date": "2024-03-10", "category": "general", "type": "income", "description": "Infaq"}
			if tt.amount != nil {
				body["amount"] = tt.amount
			}

			rec := doJSON(t, h, http.MethodPost, "/api/v1/transactions/", body)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			got := decode[map[string]any](t, rec)
			if tt.wantStatus == http.StatusCreated {
				assert.Equal(t, tt.wantAmount, got["amount"])
				return
			}

			assert.Equal(t, "amount", got["field"])
		})
	}
}

func TestRouter_RecomputeEmptyMonth(t *testing.T) {
	h := newRouter(t, defaultAuth())

	rec := doJSON(t, h, http.MethodPost, "/api/v1/summaries/2024/5/recompute", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	sum := decode[map[string]any](t, rec)
	assert.Equal(t, float64(0), sum["balance"])

	rec = doJSON(t, h, http.MethodGet, "/api/v1/summaries/2024/5", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func uploadCSV(t *testing.T, h http.Handler, csv string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer

	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "kas.csv")
	require.NoError(t, err)

	_, err = fw.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/import/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func TestRouter_ImportFlow(t *testing.T) {
	h := newRouter(t, defaultAuth())

	csv := "Tanggal;Kategori;Jenis;Jumlah;Keterangan\n" +
		"01/03/2024;Umum;Pemasukan;100.000;Kotak amal\n" +
		"02/03/2024;Operasional;Pengeluaran;25.000;Sabun\n"

	rec := uploadCSV(t, h, csv)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, float64(2), decode[map[string]any](t, rec)["imported"])

	// The same file again conflicts on every row and writes nothing.
	rec = uploadCSV(t, h, csv)
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	conflicts := decode[map[string][]any](t, rec)
	assert.Len(t, conflicts["conflicts"], 2)
	assert.Empty(t, conflicts["new"])

	rec = doJSON(t, h, http.MethodPost, "/api/v1/import/confirm", map[string]any{
		"candidates": []txBody{
			{"date": "2024-03-02", "category": "operational", "type": "expense", "amount": 25000, "description": "Sabun"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, h, http.MethodGet, "/api/v1/summaries/2024/3", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	sum := decode[map[string]any](t, rec)
	assert.Equal(t, float64(100000), sum["total_income"])
	assert.Equal(t, float64(50000), sum["total_expense"])
}

func TestRouter_ImportInvalidRow(t *testing.T) {
	h := newRouter(t, defaultAuth())

	rec := uploadCSV(t, h, "Tanggal;Kategori;Jenis;Jumlah;Keterangan\n01/03/2024;Umum;Pemasukan;0;Kosong\n")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	body := decode[map[string]any](t, rec)
	assert.Equal(t, float64(2), body["row"])
	assert.Equal(t, "amount", body["field"])
}

func TestRouter_ImportRowNumberSkipsPreambleAndHeader(t *testing.T) {
	h := newRouter(t, defaultAuth())

	csv := "Laporan Kas;\n" +
		"Tanggal;Kategori;Jenis;Jumlah;Keterangan\n" +
		"01/03/2024;Umum;Pemasukan;500;Ok\n" +
		"02/03/2024;Umum;Pemasukan;700;\n"

	rec := uploadCSV(t, h, csv)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	body := decode[map[string]any](t, rec)
	assert.Equal(t, float64(4), body["row"])
	assert.Equal(t, "description", body["field"])

	rec = doJSON(t, h, http.MethodGet, "/api/v1/transactions/recent", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]any](t, rec))
}

func TestRouter_Export(t *testing.T) {
	h := newRouter(t, defaultAuth())

	rec := doJSON(t, h, http.MethodPost, "/api/v1/transactions/", txBody{
		"date": "2024-03-10", "category": "social", "type": "income", "amount": 1500000, "description": "Santunan yatim",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/export/", map[string]string{"period": "2024-03"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	meta := decode[map[string]any](t, rec)
	assert.Contains(t, meta["summary"], "Rp 1.500.000")
	assert.Len(t, meta["transactions"], 1)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/export/download", map[string]string{"period": "2024-03"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "laporan-kas-2024-03.zip")

	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	require.NoError(t, err)
	assert.Len(t, zr.File, 2)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/export/", map[string]string{"period": "March"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRouter_AuthEnabled(t *testing.T) {
	a := auth.New("s3cret", auth.Actor{})
	h := newRouter(t, a)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/transactions/recent", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := a.Issue(auth.Actor{ID: "u-9", Name: "Pak Harun"}, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	me := decode[map[string]string](t, rec)
	assert.Equal(t, map[string]string{"id": "u-9", "display_name": "Pak Harun"}, me)

	// Health checks stay open.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	h := newRouter(t, defaultAuth())

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/transactions/", nil)
	req.Header.Set("Origin", "https://masjid.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.True(t, strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost))
}
