package encoding_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/infaq/internal/encoding"
)

func TestDecode(t *testing.T) {
	type testCase struct {
		name        string
		input       []byte
		wantText    string
		wantCharset string
	}

	tests := []testCase{
		{
			name:        "UTF8Passthrough",
			input:       []byte("Tanggal;Keterangan\n2024-03-10;Donasi Jum’at\n"),
			wantText:    "Tanggal;Keterangan\n2024-03-10;Donasi Jum’at\n",
			wantCharset: encoding.CharsetUTF8,
		},
		{
			name:        "UTF8BOMStripped",
			input:       append([]byte{0xEF, 0xBB, 0xBF}, []byte("Tanggal;Jumlah\n")...),
			wantText:    "Tanggal;Jumlah\n",
			wantCharset: encoding.CharsetUTF8,
		},
		{
			// "Café;Jumlah\n" with é = 0xE9 in windows-1252.
			name:        "Windows1252",
			input:       []byte{'C', 'a', 'f', 0xE9, ';', 'J', 'u', 'm', 'l', 'a', 'h', '\n'},
			wantText:    "Café;Jumlah\n",
			wantCharset: encoding.CharsetWindows1252,
		},
		{
			name:        "UTF16LEWithBOM",
			input:       []byte{0xFF, 0xFE, 'O', 0, 'K', 0, '\n', 0},
			wantText:    "OK\n",
			wantCharset: encoding.CharsetUTF16LE,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec, err := encoding.Decode(bytes.NewReader(tt.input))
			require.NoError(t, err)

			got, err := io.ReadAll(dec)
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, string(got))
			assert.Equal(t, tt.wantCharset, dec.Charset)
		})
	}
}

func TestDecode_MultibyteAtSniffBoundary(t *testing.T) {
	// Place a two-byte rune across the 4096-byte sniff window.
	input := strings.Repeat("a", 4095) + "é"

	dec, err := encoding.Decode(strings.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(dec)
	require.NoError(t, err)
	assert.Equal(t, input, string(got))
	assert.Equal(t, encoding.CharsetUTF8, dec.Charset)
}
