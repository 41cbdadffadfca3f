package encoding_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/MrJamesThe3rd/clerk/internal/encoding"
)

func readAll(t *testing.T, input []byte) string {
	t.Helper()

	r, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got)
}

func TestNewUTF8Reader_UTF8Passthrough(t *testing.T) {
	input := "sku,name,category,price\n85123A,Crème Brûlée Dish,Kitchen,4.25\n"
	assert.Equal(t, input, readAll(t, []byte(input)))
}

func TestNewUTF8Reader_Windows1252(t *testing.T) {
	encoded, err := charmap.Windows1252.NewEncoder().String("sku,name\n22310,Crème Brûlée Dish £\n")
	require.NoError(t, err)

	assert.Equal(t, "sku,name\n22310,Crème Brûlée Dish £\n", readAll(t, []byte(encoded)))
}

func TestNewUTF8Reader_UTF8BOM(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("sku,name\n")...)
	assert.Equal(t, "sku,name\n", readAll(t, input))
}

func TestNewUTF8Reader_UTF16LE(t *testing.T) {
	// "sku\n" as UTF-16 LE with BOM.
	input := []byte{0xFF, 0xFE, 's', 0, 'k', 0, 'u', 0, '\n', 0}
	assert.Equal(t, "sku\n", readAll(t, input))
}

func TestNewUTF8Reader_LargeInput(t *testing.T) {
	input := bytes.Repeat([]byte("85123A,White Hanging Heart,Home Decor,2.95\n"), 500)
	assert.Equal(t, string(input), readAll(t, input))
}

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name string
		data string
		want rune
	}{
		{name: "Comma", data: "sku,name,category,price\n1,2,3,4\n", want: ','},
		{name: "Semicolon", data: "sku;name;category;price\n1;2;3;4,50\n", want: ';'},
		{name: "Tab", data: "sku\tname\tprice\n", want: '\t'},
		{name: "QuotedCommas", data: "\"a,b,c\";\"d,e\";f\n", want: ';'},
		{name: "SingleColumn", data: "sku\n", want: ','},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, encoding.DetectDelimiter([]byte(tt.data)))
		})
	}
}
