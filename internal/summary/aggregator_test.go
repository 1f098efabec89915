package summary_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/infaq/internal/ledger"
	"github.com/MrJamesThe3rd/infaq/internal/summary"
)

var (
	march    = ledger.Period{Year: 2024, Month: time.March}
	fixedNow = time.Date(2024, 4, 1, 7, 0, 0, 0, time.UTC)
)

func tx(day int, typ ledger.Type, amount int64) *ledger.Transaction {
	return &ledger.Transaction{
		Date:   time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC),
		Type:   typ,
		Amount: amount,
	}
}

func TestFold(t *testing.T) {
	type testCase struct {
		name string
		txs  []*ledger.Transaction
		want ledger.Totals
	}

	tests := []testCase{
		{
			name: "Empty",
			want: ledger.Totals{},
		},
		{
			name: "IncomeAndExpense",
			txs: []*ledger.Transaction{
				tx(1, ledger.TypeIncome, 500000),
				tx(2, ledger.TypeExpense, 200000),
				tx(3, ledger.TypeIncome, 100000),
			},
			want: ledger.Totals{Income: 600000, Expense: 200000, Balance: 400000},
		},
		{
			name: "NegativeBalance",
			txs: []*ledger.Transaction{
				tx(5, ledger.TypeIncome, 100),
				tx(6, ledger.TypeExpense, 300),
			},
			want: ledger.Totals{Income: 100, Expense: 300, Balance: -200},
		},
		{
			name: "IgnoresOtherPeriods",
			txs: []*ledger.Transaction{
				tx(31, ledger.TypeIncome, 1000),
				{Date: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), Type: ledger.TypeIncome, Amount: 99},
				{Date: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), Type: ledger.TypeExpense, Amount: 77},
			},
			want: ledger.Totals{Income: 1000, Balance: 1000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := summary.Fold(march, tt.txs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFold_Overflow(t *testing.T) {
	const entry = int64(1_000_000_000_000_000)

	fits := make([]*ledger.Transaction, math.MaxInt64/entry)
	for i := range fits {
		fits[i] = tx(1, ledger.TypeIncome, entry)
	}

	got, err := summary.Fold(march, fits)
	require.NoError(t, err)
	assert.Equal(t, int64(len(fits))*entry, got.Income)

	_, err = summary.Fold(march, append(fits, tx(2, ledger.TypeIncome, entry)))
	assert.ErrorIs(t, err, summary.ErrOverflow)

	expenses := []*ledger.Transaction{
		tx(3, ledger.TypeExpense, math.MaxInt64),
		tx(4, ledger.TypeExpense, 1),
	}

	_, err = summary.Fold(march, expenses)
	assert.ErrorIs(t, err, summary.ErrOverflow)
}

func TestFold_OrderIndependent(t *testing.T) {
	txs := []*ledger.Transaction{
		tx(1, ledger.TypeIncome, 7),
		tx(2, ledger.TypeExpense, 3),
		tx(3, ledger.TypeIncome, 11),
	}
	reversed := []*ledger.Transaction{txs[2], txs[1], txs[0]}

	forward, err := summary.Fold(march, txs)
	require.NoError(t, err)

	backward, err := summary.Fold(march, reversed)
	require.NoError(t, err)

	assert.Equal(t, forward, backward)
}

func TestAggregator_Recompute(t *testing.T) {
	type testCase struct {
		name      string
		period    ledger.Period
		setupMock func(repo *summary.MockRepository, rtx *summary.MockRecomputeTx)
		want      *ledger.MonthlySummary
		wantErr   error
	}

	tests := []testCase{
		{
			name:   "Success",
			period: march,
			setupMock: func(repo *summary.MockRepository, rtx *summary.MockRecomputeTx) {
				want := &ledger.MonthlySummary{
					Period:     march,
					Totals:     ledger.Totals{Income: 500000, Expense: 200000, Balance: 300000},
					ComputedAt: fixedNow,
				}

				repo.EXPECT().BeginRecompute(gomock.Any(), march).Return(rtx, nil)
				rtx.EXPECT().ListByPeriod(gomock.Any(), march).Return([]*ledger.Transaction{
					tx(1, ledger.TypeIncome, 500000),
					tx(2, ledger.TypeExpense, 200000),
				}, nil)
				rtx.EXPECT().UpsertSummary(gomock.Any(), want).Return(nil)
				rtx.EXPECT().Commit().Return(nil)
				rtx.EXPECT().Rollback().Return(nil)
			},
			want: &ledger.MonthlySummary{
				Period:     march,
				Totals:     ledger.Totals{Income: 500000, Expense: 200000, Balance: 300000},
				ComputedAt: fixedNow,
			},
		},
		{
			name:   "EmptyPeriodYieldsZeroSummary",
			period: march,
			setupMock: func(repo *summary.MockRepository, rtx *summary.MockRecomputeTx) {
				repo.EXPECT().BeginRecompute(gomock.Any(), march).Return(rtx, nil)
				rtx.EXPECT().ListByPeriod(gomock.Any(), march).Return(nil, nil)
				rtx.EXPECT().UpsertSummary(gomock.Any(), gomock.Any()).Return(nil)
				rtx.EXPECT().Commit().Return(nil)
				rtx.EXPECT().Rollback().Return(nil)
			},
			want: &ledger.MonthlySummary{Period: march, ComputedAt: fixedNow},
		},
		{
			name:    "InvalidPeriod",
			period:  ledger.Period{Year: 2024, Month: 13},
			wantErr: ledger.ErrValidation,
		},
		{
			name:   "BeginFails",
			period: march,
			setupMock: func(repo *summary.MockRepository, _ *summary.MockRecomputeTx) {
				repo.EXPECT().BeginRecompute(gomock.Any(), march).Return(nil, errors.New("no connection"))
			},
			wantErr: ledger.ErrStorage,
		},
		{
			name:   "UpsertFailsWithoutCommit",
			period: march,
			setupMock: func(repo *summary.MockRepository, rtx *summary.MockRecomputeTx) {
				repo.EXPECT().BeginRecompute(gomock.Any(), march).Return(rtx, nil)
				rtx.EXPECT().ListByPeriod(gomock.Any(), march).Return(nil, nil)
				rtx.EXPECT().UpsertSummary(gomock.Any(), gomock.Any()).Return(errors.New("constraint"))
				rtx.EXPECT().Rollback().Return(nil)
			},
			wantErr: ledger.ErrStorage,
		},
		{
			name:   "CommitFails",
			period: march,
			setupMock: func(repo *summary.MockRepository, rtx *summary.MockRecomputeTx) {
				repo.EXPECT().BeginRecompute(gomock.Any(), march).Return(rtx, nil)
				rtx.EXPECT().ListByPeriod(gomock.Any(), march).Return(nil, nil)
				rtx.EXPECT().UpsertSummary(gomock.Any(), gomock.Any()).Return(nil)
				rtx.EXPECT().Commit().Return(errors.New("serialization failure"))
				rtx.EXPECT().Rollback().Return(nil)
			},
			wantErr: ledger.ErrStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := summary.NewMockRepository(ctrl)
			rtx := summary.NewMockRecomputeTx(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(repo, rtx)
			}

			agg := summary.NewAggregator(repo).WithClock(func() time.Time { return fixedNow })
			got, err := agg.Recompute(context.Background(), tt.period)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
