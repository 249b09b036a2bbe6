package dataset

import (
	"bytes"
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/skalyan/tabdash/pkg/apperr"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

// Options bound dataset loading and classification.
type Options struct {
	// MaxFilterOptions caps the distinct values a categorical column may
	// carry and still appear in the filter panel.
	MaxFilterOptions int
}

// Decode parses an uploaded file into a classified Dataset, dispatching on
// the file extension.
func Decode(name string, r io.Reader, opts Options) (*Dataset, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return DecodeCSV(r, opts)
	case ".xlsx":
		return DecodeExcel(r, opts)
	default:
		return nil, apperr.Wrapf(apperr.UnsupportedFormat, "unsupported file extension %q", filepath.Ext(name))
	}
}

// DecodeCSV parses a comma-delimited byte stream with a header row.
// Input is decoded as UTF-8 when valid, ISO 8859-1 otherwise, matching the
// legacy exports this dashboard commonly receives.
func DecodeCSV(r io.Reader, opts Options) (*Dataset, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, apperr.Wrapf(apperr.ParseFailed, "read upload: %v", err)
	}
	if !utf8.Valid(raw) {
		decoded, derr := charmap.ISO8859_1.NewDecoder().Bytes(raw)
		if derr != nil {
			return nil, apperr.Wrapf(apperr.ParseFailed, "decode latin-1: %v", derr)
		}
		raw = decoded
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperr.Wrapf(apperr.ParseFailed, "read csv: %v", err)
	}
	if len(records) == 0 {
		return nil, apperr.New(apperr.ParseFailed, "csv file is empty")
	}
	return build(records[0], records[1:], opts)
}

// DecodeExcel parses the first sheet of an XLSX byte stream.
func DecodeExcel(r io.Reader, opts Options) (*Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperr.Wrapf(apperr.ParseFailed, "open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperr.New(apperr.ParseFailed, "workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperr.Wrapf(apperr.ParseFailed, "read sheet %s: %v", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, apperr.New(apperr.ParseFailed, "first sheet is empty")
	}
	return build(rows[0], rows[1:], opts)
}

// build assembles a Dataset from a header row and data rows: headers are
// normalized, rows padded to the header width, and columns classified.
func build(header []string, data [][]string, opts Options) (*Dataset, error) {
	names := normalizeHeaders(header)
	if len(names) == 0 {
		return nil, apperr.New(apperr.ParseFailed, "header row has no columns")
	}

	rows := make([][]string, 0, len(data))
	for _, rec := range data {
		if isBlankRow(rec) {
			continue
		}
		row := make([]string, len(names))
		for i := range names {
			if i < len(rec) {
				row[i] = strings.TrimSpace(rec[i])
			}
		}
		rows = append(rows, row)
	}

	ds := &Dataset{Rows: rows}
	ds.Columns = make([]Column, len(names))
	for i, name := range names {
		ds.Columns[i] = Column{Name: name}
	}
	if err := Classify(ds, opts); err != nil {
		return nil, err
	}
	return ds, nil
}

func isBlankRow(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
