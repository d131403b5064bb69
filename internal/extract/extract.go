// Package extract reads source spreadsheet exports into raw staging frames.
// It preserves values verbatim apart from whitespace trimming; all
// interpretation belongs to the normalizers.
package extract

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Frame is a raw tabular read of one source file: the header row plus every
// data row, as strings. Short rows are padded to the header width so column
// access never goes out of range.
type Frame struct {
	Path    string
	Headers []string
	Records [][]string
}

// Cell returns the value at (row, column name), or "" when the column is
// unknown. Presence of the column is the caller's concern via HasHeader.
func (f *Frame) Cell(row int, header string) string {
	for i, h := range f.Headers {
		if h == header {
			return f.Records[row][i]
		}
	}
	return ""
}

// HasHeader reports whether the frame carries the named column.
func (f *Frame) HasHeader(header string) bool {
	_, ok := f.Index(header)
	return ok
}

// Index returns the position of the named column.
func (f *Frame) Index(header string) (int, bool) {
	for i, h := range f.Headers {
		if h == header {
			return i, true
		}
	}
	return 0, false
}

// Len returns the number of data rows.
func (f *Frame) Len() int {
	return len(f.Records)
}

// Error reports an unreadable or structurally empty source file.
type Error struct {
	Path   string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extract %s: %s", e.Path, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ReadFile reads a CSV or XLSX export by extension. XLSX reads take the
// first sheet, matching how the upstream publisher structures workbooks.
func ReadFile(path string) (*Frame, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".xlsx":
		return readXLSX(path)
	default:
		return nil, &Error{Path: path, Reason: fmt.Sprintf("unsupported file type %q", filepath.Ext(path))}
	}
}

func readCSV(path string) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &Error{Path: path, Reason: "cannot open file", Err: err}
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // exports have ragged trailing columns

	headers, err := r.Read()
	if err == io.EOF {
		return nil, &Error{Path: path, Reason: "file is empty"}
	}
	if err != nil {
		return nil, &Error{Path: path, Reason: "cannot read header row", Err: err}
	}
	headers = trimAll(headers)

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &Error{Path: path, Reason: "cannot read data row", Err: err}
		}
		records = append(records, pad(trimAll(rec), len(headers)))
	}

	return &Frame{Path: path, Headers: headers, Records: records}, nil
}

func readXLSX(path string) (*Frame, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &Error{Path: path, Reason: "cannot open workbook", Err: err}
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &Error{Path: path, Reason: "workbook has no sheets"}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &Error{Path: path, Reason: fmt.Sprintf("cannot read sheet %q", sheets[0]), Err: err}
	}
	if len(rows) == 0 {
		return nil, &Error{Path: path, Reason: "sheet is empty"}
	}

	headers := trimAll(rows[0])
	records := make([][]string, 0, len(rows)-1)
	for _, rec := range rows[1:] {
		records = append(records, pad(trimAll(rec), len(headers)))
	}

	return &Frame{Path: path, Headers: headers, Records: records}, nil
}

func trimAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

func pad(values []string, width int) []string {
	for len(values) < width {
		values = append(values, "")
	}
	return values[:width]
}
