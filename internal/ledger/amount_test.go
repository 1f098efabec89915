package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/infaq/internal/ledger"
)

func TestParseAmount(t *testing.T) {
	type testCase struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}

	tests := []testCase{
		{name: "Plain", input: "500000", want: 500000},
		{name: "ThousandsDots", input: "1.500.000", want: 1500000},
		{name: "ZeroCents", input: "1.250,00", want: 1250},
		{name: "RupiahPrefix", input: "Rp 75.000", want: 75000},
		{name: "RupiahPrefixWithDot", input: "Rp.10.000", want: 10000},
		{name: "SpaceSeparators", input: "2 000 000", want: 2000000},
		{name: "NonBreakingSpace", input: "3\u00a0000", want: 3000},
		{name: "Empty", input: "", wantErr: true},
		{name: "Garbage", input: "lima ribu", wantErr: true},
		{name: "Fractional", input: "1.000,50", wantErr: true},
		{name: "Zero", input: "0", wantErr: true},
		{name: "Negative", input: "-5.000", wantErr: true},
		{name: "TooLarge", input: "1.000.000.000.000.000.001", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ledger.ParseAmount(tt.input)

			if tt.wantErr {
				require.ErrorIs(t, err, ledger.ErrValidation)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
