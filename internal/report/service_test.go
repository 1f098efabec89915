package report_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/infaq/internal/ledger"
	"github.com/MrJamesThe3rd/infaq/internal/report"
)

var march = ledger.Period{Year: 2024, Month: time.March}

func TestLimits_Clamp(t *testing.T) {
	limits := report.Limits{Default: 10, Max: 100}

	type testCase struct {
		name  string
		limit int
		want  int
	}

	tests := []testCase{
		{name: "Zero", limit: 0, want: 10},
		{name: "Negative", limit: -5, want: 10},
		{name: "One", limit: 1, want: 1},
		{name: "WithinBounds", limit: 25, want: 25},
		{name: "AtMax", limit: 100, want: 100},
		{name: "AboveMax", limit: 1000, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, limits.Clamp(tt.limit))
		})
	}
}

func TestNewService_DefaultLimits(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := report.NewService(report.NewMockRepository(ctrl), report.Limits{})
	assert.Equal(t, report.Limits{Default: 10, Max: 100}, svc.Limits())

	svc = report.NewService(report.NewMockRepository(ctrl), report.Limits{Default: 50, Max: 5})
	assert.Equal(t, report.Limits{Default: 5, Max: 5}, svc.Limits())
}

func TestService_GetRecentTransactions(t *testing.T) {
	type testCase struct {
		name      string
		limit     int
		wantLimit int
		repoErr   error
		wantErr   error
	}

	tests := []testCase{
		{name: "DefaultWhenZero", limit: 0, wantLimit: 10},
		{name: "Passthrough", limit: 3, wantLimit: 3},
		{name: "ClampedToMax", limit: 1000, wantLimit: 100},
		{name: "StorageError", limit: 5, wantLimit: 5, repoErr: errors.New("timeout"), wantErr: ledger.ErrStorage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := report.NewMockRepository(ctrl)

			var txs []*ledger.Transaction
			if tt.repoErr == nil {
				txs = []*ledger.Transaction{{ID: uuid.New()}}
			}

			repo.EXPECT().ListRecent(gomock.Any(), tt.wantLimit).Return(txs, tt.repoErr)

			svc := report.NewService(repo, report.Limits{Default: 10, Max: 100})
			got, err := svc.GetRecentTransactions(context.Background(), tt.limit)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Len(t, got, 1)
		})
	}
}

func TestService_GetMonthlyTotals(t *testing.T) {
	type testCase struct {
		name      string
		period    ledger.Period
		setupMock func(m *report.MockRepository)
		wantErr   error
	}

	stored := &ledger.MonthlySummary{Period: march, Totals: ledger.Totals{Income: 500000, Expense: 200000, Balance: 300000}}

	tests := []testCase{
		{
			name:   "Cached",
			period: march,
			setupMock: func(m *report.MockRepository) {
				m.EXPECT().GetSummary(gomock.Any(), march).Return(stored, nil)
			},
		},
		{
			name:   "NeverComputed",
			period: march,
			setupMock: func(m *report.MockRepository) {
				m.EXPECT().GetSummary(gomock.Any(), march).Return(nil, ledger.ErrNotFound)
			},
			wantErr: ledger.ErrNotFound,
		},
		{
			name:   "StorageError",
			period: march,
			setupMock: func(m *report.MockRepository) {
				m.EXPECT().GetSummary(gomock.Any(), march).Return(nil, errors.New("broken pipe"))
			},
			wantErr: ledger.ErrStorage,
		},
		{
			name:    "InvalidPeriod",
			period:  ledger.Period{Year: 2024, Month: 0},
			wantErr: ledger.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := report.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			got, err := report.NewService(repo, report.Limits{}).GetMonthlyTotals(context.Background(), tt.period)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, stored, got)
		})
	}
}

func TestService_ListPeriod(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := report.NewMockRepository(ctrl)
	repo.EXPECT().ListByPeriod(gomock.Any(), march).Return([]*ledger.Transaction{{ID: uuid.New()}, {ID: uuid.New()}}, nil)

	got, err := report.NewService(repo, report.Limits{}).ListPeriod(context.Background(), march)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
