package batch

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFile = `DESAFIO-HYPERATIVA           20180524LOTE0001000010
C1     4456897999999999
C2     4456897922969999
C3     4456897999999999

C4     4456897998199999
LOTE0001000010
`

func TestParse_TokenLayout(t *testing.T) {
	f, err := Parse(strings.NewReader(sampleFile), Options{})
	require.NoError(t, err)

	assert.Equal(t, "LOTE0001", f.Header.LotCode)
	require.NotNil(t, f.Header.LotDate)
	assert.Equal(t, time.Date(2018, 5, 24, 0, 0, 0, 0, time.UTC), *f.Header.LotDate)
	assert.Equal(t, "LOTE0001000010", f.Trailer)
	assert.Zero(t, f.Malformed)

	require.Len(t, f.Records, 4)
	assert.Equal(t, Record{Line: 2, LineIdentifier: "C", LotSequence: "1", CardNumber: "4456897999999999"}, f.Records[0])
	assert.Equal(t, "4456897922969999", f.Records[1].CardNumber)
	assert.Equal(t, 6, f.Records[3].Line, "blank lines keep physical line numbers")
	assert.Equal(t, "4", f.Records[3].LotSequence)
}

func TestParse_ColumnLayout(t *testing.T) {
	f, err := Parse(strings.NewReader(sampleFile), Options{Layout: LayoutColumns})
	require.NoError(t, err)

	require.Len(t, f.Records, 4)
	assert.Equal(t, "C", f.Records[0].LineIdentifier)
	assert.Equal(t, "1", f.Records[0].LotSequence)
	assert.Equal(t, "4456897999999999", f.Records[0].CardNumber)
}

func TestParse_ShortHeaderWithoutTrailer(t *testing.T) {
	input := "HEADER12345620260115\nA1 1234567890123456\nB2 6543210987654321\n\n"

	f, err := Parse(strings.NewReader(input), Options{})
	require.NoError(t, err)

	assert.Empty(t, f.Header.LotCode)
	assert.Nil(t, f.Header.LotDate)
	assert.Empty(t, f.Trailer)
	require.Len(t, f.Records, 2)
	assert.Equal(t, "A", f.Records[0].LineIdentifier)
	assert.Equal(t, "1", f.Records[0].LotSequence)
	assert.Equal(t, "1234567890123456", f.Records[0].CardNumber)
	assert.Equal(t, "6543210987654321", f.Records[1].CardNumber)
}

func TestParse_StrictTrailerDropsLastLine(t *testing.T) {
	input := "HEADER12345620260115\nA1 1234567890123456\nB2 6543210987654321\n"

	f, err := Parse(strings.NewReader(input), Options{StrictTrailer: true})
	require.NoError(t, err)

	require.Len(t, f.Records, 1)
	assert.Equal(t, "B2 6543210987654321", f.Trailer)
}

func TestParse_MalformedLinesAreCounted(t *testing.T) {
	input := "HEADER\nC1 4111111111111111\nGARBAGE\n   \t \nC3 4222222222222222\nLOTE0001000002\n"

	f, err := Parse(strings.NewReader(input), Options{})
	require.NoError(t, err)

	assert.Len(t, f.Records, 2)
	assert.Equal(t, 1, f.Malformed)
}

func TestParse_CountTrailerIsDropped(t *testing.T) {
	input := "HEADER12345620260115\nA1 1234567890123456\nB2 6543210987654321\nT 000002\n"

	f, err := Parse(strings.NewReader(input), Options{})
	require.NoError(t, err)

	require.Len(t, f.Records, 2)
	assert.Equal(t, "T 000002", f.Trailer)
	assert.Equal(t, "6543210987654321", f.Records[1].CardNumber)
}

func TestParse_LastDetailWithoutSequenceIsKept(t *testing.T) {
	input := "HEADER\nA1 1234567890123456\nC 4456897999999999\n"

	f, err := Parse(strings.NewReader(input), Options{})
	require.NoError(t, err)

	require.Len(t, f.Records, 2)
	assert.Empty(t, f.Trailer)
	assert.Equal(t, "4456897999999999", f.Records[1].CardNumber)
}

func TestParse_ColumnLayoutSplitRuneIsMalformed(t *testing.T) {
	input := "HEADER\nC00001 4456897999999999\nC0000\u00e9 4456897922969999\nLOTE0001000002\n"

	f, err := Parse(strings.NewReader(input), Options{Layout: LayoutColumns})
	require.NoError(t, err)

	require.Len(t, f.Records, 1)
	assert.Equal(t, 1, f.Malformed)
	assert.Equal(t, "4456897999999999", f.Records[0].CardNumber)
}

func TestParseHeader_SplitRuneLeavesLotCodeEmpty(t *testing.T) {
	header := "DESAFIO-HYPERATIVA           20180524LOTE000\u00e9"

	h := ParseHeader(header, OffsetsCurrent)

	assert.Empty(t, h.LotCode)
	require.NotNil(t, h.LotDate)
}

func TestParse_HeaderOnly(t *testing.T) {
	f, err := Parse(strings.NewReader("DESAFIO-HYPERATIVA           20180524LOTE0001000010\n"), Options{})
	require.NoError(t, err)

	assert.Empty(t, f.Records)
	assert.Empty(t, f.Trailer)
}

func TestParse_NoHeader(t *testing.T) {
	_, err := Parse(strings.NewReader("\n   \n\t\n"), Options{})

	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestParse_CRLF(t *testing.T) {
	input := "HEADER\r\nC1 4111111111111111\r\nLOTE0001000001\r\n"

	f, err := Parse(strings.NewReader(input), Options{})
	require.NoError(t, err)

	require.Len(t, f.Records, 1)
	assert.Equal(t, "4111111111111111", f.Records[0].CardNumber)
	assert.Equal(t, "LOTE0001000001", f.Trailer)
}

func TestParseHeader_Offsets(t *testing.T) {
	header := "DESAFIO-HYPERATIVA           20180524LOTE0001000010"

	current := ParseHeader(header, OffsetsCurrent)
	assert.Equal(t, "LOTE0001", current.LotCode)

	legacy := ParseHeader(header, OffsetsLegacy)
	assert.Equal(t, "4LOTE000", legacy.LotCode)
	require.NotNil(t, legacy.LotDate)
}

func TestParseHeader_InvalidDate(t *testing.T) {
	header := "DESAFIO-HYPERATIVA           2018XX24LOTE0001000010"

	h := ParseHeader(header, OffsetsCurrent)

	assert.Nil(t, h.LotDate)
	assert.Equal(t, "LOTE0001", h.LotCode)
}

func TestDecodeDetail(t *testing.T) {
	tests := []struct {
		name   string
		layout Layout
		text   string
		want   Record
		ok     bool
	}{
		{"tokens", LayoutTokens, "C12 4456897999999999", Record{LineIdentifier: "C", LotSequence: "12", CardNumber: "4456897999999999"}, true},
		{"tokens extra spaces", LayoutTokens, "  C1\t\t4456897999999999  trailing", Record{LineIdentifier: "C", LotSequence: "1", CardNumber: "4456897999999999"}, true},
		{"tokens single char id", LayoutTokens, "C 4456897999999999", Record{LineIdentifier: "C", LotSequence: "", CardNumber: "4456897999999999"}, true},
		{"tokens one token", LayoutTokens, "C14456897999999999", Record{}, false},
		{"columns", LayoutColumns, "C000001445689799999999912345", Record{LineIdentifier: "C", LotSequence: "000001", CardNumber: "4456897999999999123"}, true},
		{"columns short card", LayoutColumns, "C2     44568", Record{LineIdentifier: "C", LotSequence: "2", CardNumber: "44568"}, true},
		{"columns no card", LayoutColumns, "C2", Record{}, false},
		{"columns split rune in identifier", LayoutColumns, "\u00e9" + "00001 4456897999999999", Record{}, false},
		{"columns split rune in sequence", LayoutColumns, "C0000\u00e9 4456897999999999", Record{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Options{Layout: tt.layout}.DecodeDetail(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
