// Package batch decodes the fixed-width card batch file format: one header
// record, any number of detail records and a trailer record.
package batch

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Layout selects how detail records are decoded.
type Layout string

const (
	// LayoutTokens splits detail lines on runs of whitespace.
	LayoutTokens Layout = "tokens"
	// LayoutColumns reads detail fields at fixed columns (legacy).
	LayoutColumns Layout = "columns"
)

// HeaderOffsets are the starting byte offsets of the lot date and lot code
// inside the header record. Both fields are 8 characters wide.
type HeaderOffsets struct {
	Date int
	Code int
}

var (
	// OffsetsCurrent is the default header convention.
	OffsetsCurrent = HeaderOffsets{Date: 29, Code: 37}
	// OffsetsLegacy is the convention used by older producers of the format.
	OffsetsLegacy = HeaderOffsets{Date: 29, Code: 36}
)

const (
	headerFieldWidth = 8
	lotDateLayout    = "20060102"
	trailerMarker    = "LOTE"

	// Column layout boundaries, end exclusive.
	colIdentifierEnd = 1
	colSequenceEnd   = 7
	colCardEnd       = 26

	maxLineSize = 1024 * 1024

	// ISO/IEC 7812 card numbers are 8 to 19 digits.
	minCardNumberLength = 8
)

// ErrNoHeader is returned when the stream holds no non-blank line.
var ErrNoHeader = errors.New("batch file has no header record")

// Options controls decoding. The zero value decodes with LayoutTokens,
// OffsetsCurrent and trailer detection.
type Options struct {
	Layout Layout
	Header HeaderOffsets
	// StrictTrailer treats the last line as the trailer unconditionally.
	StrictTrailer bool
}

// Header is the lot metadata shared by every record in a batch.
type Header struct {
	LotCode string
	LotDate *time.Time
}

// Record is one decoded detail line.
type Record struct {
	Line           int
	LineIdentifier string
	LotSequence    string
	CardNumber     string
}

// File is the decoded content of a batch file.
type File struct {
	Header    Header
	Records   []Record
	Malformed int
	Trailer   string
}

type line struct {
	no   int
	text string
}

// Parse reads a batch file and decodes its header and detail records.
// Blank lines are dropped before positions are assigned, so the header is
// the first non-blank line and the trailer candidate the last one.
func Parse(r io.Reader, opts Options) (*File, error) {
	opts = opts.withDefaults()

	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrNoHeader
	}

	f := &File{Header: ParseHeader(lines[0].text, opts.Header)}

	details := lines[1:]
	if n := len(details); n > 0 {
		last := details[n-1]
		if opts.StrictTrailer || opts.isTrailer(last.text, f.Header) {
			f.Trailer = last.text
			details = details[:n-1]
		}
	}

	for _, l := range details {
		rec, ok := opts.DecodeDetail(l.text)
		if !ok {
			f.Malformed++
			continue
		}
		rec.Line = l.no
		f.Records = append(f.Records, rec)
	}

	return f, nil
}

// ParseHeader extracts the lot code and lot date from a header record.
// Fields that fall outside the line are left empty; an unparsable date
// leaves LotDate nil.
func ParseHeader(text string, off HeaderOffsets) Header {
	var h Header
	if code := field(text, off.Code, off.Code+headerFieldWidth); utf8.ValidString(code) {
		h.LotCode = code
	}

	if raw := field(text, off.Date, off.Date+headerFieldWidth); raw != "" {
		if d, err := time.Parse(lotDateLayout, raw); err == nil {
			h.LotDate = &d
		}
	}
	return h
}

// DecodeDetail decodes one detail line using the configured layout. It
// reports false when the line does not carry a card number.
func (o Options) DecodeDetail(text string) (Record, bool) {
	if o.Layout == LayoutColumns {
		return decodeColumns(text)
	}
	return decodeTokens(text)
}

func decodeTokens(text string) (Record, bool) {
	parts := strings.Fields(text)
	if len(parts) < 2 {
		return Record{}, false
	}

	first := []rune(parts[0])
	return Record{
		LineIdentifier: string(first[0]),
		LotSequence:    string(first[1:]),
		CardNumber:     parts[1],
	}, true
}

// decodeColumns slices by byte offset. A column boundary that splits a
// multibyte character makes the line malformed.
func decodeColumns(text string) (Record, bool) {
	rec := Record{
		LineIdentifier: field(text, 0, colIdentifierEnd),
		LotSequence:    field(text, colIdentifierEnd, colSequenceEnd),
		CardNumber:     field(text, colSequenceEnd, colCardEnd),
	}
	if rec.CardNumber == "" {
		return Record{}, false
	}
	for _, v := range []string{rec.LineIdentifier, rec.LotSequence, rec.CardNumber} {
		if !utf8.ValidString(v) {
			return Record{}, false
		}
	}
	return rec, true
}

// isTrailer reports whether the final line is a trailer record rather than
// a detail record.
func (o Options) isTrailer(text string, h Header) bool {
	t := strings.TrimSpace(text)
	if strings.HasPrefix(t, trailerMarker) {
		return true
	}
	if h.LotCode != "" && strings.HasPrefix(t, h.LotCode) {
		return true
	}
	if isCountTrailer(t) {
		return true
	}
	_, ok := o.DecodeDetail(text)
	return !ok
}

// isCountTrailer matches a record type word followed by a record count,
// such as "T 000002". Counts are shorter than the shortest card number.
func isCountTrailer(text string) bool {
	parts := strings.Fields(text)
	if len(parts) != 2 || len(parts[1]) >= minCardNumberLength {
		return false
	}
	return strings.IndexFunc(parts[0], func(r rune) bool { return !unicode.IsLetter(r) }) == -1 &&
		strings.IndexFunc(parts[1], func(r rune) bool { return !unicode.IsDigit(r) }) == -1
}

func (o Options) withDefaults() Options {
	if o.Layout == "" {
		o.Layout = LayoutTokens
	}
	if o.Header == (HeaderOffsets{}) {
		o.Header = OffsetsCurrent
	}
	return o
}

func readLines(r io.Reader) ([]line, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var lines []line
	no := 0
	for sc.Scan() {
		no++
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		lines = append(lines, line{no: no, text: text})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}
	return lines, nil
}

// field returns text[start:end] trimmed, clipped to the line length.
func field(text string, start, end int) string {
	if start < 0 || start >= len(text) {
		return ""
	}
	if end > len(text) {
		end = len(text)
	}
	return strings.TrimSpace(text[start:end])
}
