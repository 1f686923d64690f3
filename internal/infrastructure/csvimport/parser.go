package csvimport

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parser reads a CSV with a header row into Rows keyed by header name.
// Header names are trimmed and lower-cased.
type Parser struct {
	reader    *csv.Reader
	headers   []string
	headerSet map[string]struct{}
	line      int
}

// Option configures a Parser
type Option func(*csv.Reader)

// WithDelimiter sets the field delimiter
func WithDelimiter(d rune) Option {
	return func(r *csv.Reader) { r.Comma = d }
}

// NewParser prepares r for reading. The whole input is buffered so the
// encoding is decided on every byte: a UTF-8 BOM is skipped, and input
// that is not valid UTF-8 is decoded as Windows-1252, the encoding
// spreadsheets commonly export. Callers bound the size of r.
func NewParser(r io.Reader, opts ...Option) (*Parser, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	var src io.Reader
	switch {
	case bytes.HasPrefix(data, utf8BOM):
		src = bytes.NewReader(data[len(utf8BOM):])
	case utf8.Valid(data):
		src = bytes.NewReader(data)
	default:
		src = transform.NewReader(bytes.NewReader(data), charmap.Windows1252.NewDecoder())
	}

	reader := csv.NewReader(src)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	for _, opt := range opts {
		opt(reader)
	}

	return &Parser{reader: reader, headerSet: make(map[string]struct{})}, nil
}

// ReadHeader consumes the header row
func (p *Parser) ReadHeader() error {
	record, err := p.reader.Read()
	if err == io.EOF {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	p.line = 1

	p.headers = make([]string, len(record))
	for i, h := range record {
		name := strings.ToLower(strings.TrimSpace(h))
		p.headers[i] = name
		if name != "" {
			p.headerSet[name] = struct{}{}
		}
	}
	if len(p.headerSet) == 0 {
		return ErrMissingHeader
	}
	return nil
}

// Headers returns the normalized header names in file order
func (p *Parser) Headers() []string {
	return p.headers
}

// Missing returns the names in required that the header lacks
func (p *Parser) Missing(required ...string) []string {
	var missing []string
	for _, name := range required {
		if _, ok := p.headerSet[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Row is one data line
type Row struct {
	Line int
	data map[string]string
}

// Get returns the trimmed value of column, or ""
func (r *Row) Get(column string) string {
	return r.data[column]
}

// IsEmpty reports whether every cell is blank
func (r *Row) IsEmpty() bool {
	for _, v := range r.data {
		if v != "" {
			return false
		}
	}
	return true
}

// NewRow builds a row from column values
func NewRow(line int, data map[string]string) *Row {
	return &Row{Line: line, data: data}
}

// Next returns the next row or io.EOF
func (p *Parser) Next() (*Row, error) {
	record, err := p.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	p.line++
	if err != nil {
		return nil, fmt.Errorf("error reading row %d: %w", p.line, err)
	}

	row := &Row{Line: p.line, data: make(map[string]string, len(p.headers))}
	for i, header := range p.headers {
		if header == "" {
			continue
		}
		if i < len(record) {
			row.data[header] = strings.TrimSpace(record[i])
		} else {
			row.data[header] = ""
		}
	}
	return row, nil
}

// ReadAll reads the header and every non-blank row. maxRows of zero means
// no limit.
func ReadAll(r io.Reader, maxRows int, required ...string) ([]*Row, error) {
	p, err := NewParser(r)
	if err != nil {
		return nil, err
	}
	if err := p.ReadHeader(); err != nil {
		return nil, err
	}
	if missing := p.Missing(required...); len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	var rows []*Row
	for {
		row, err := p.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if row.IsEmpty() {
			continue
		}
		if maxRows > 0 && len(rows) == maxRows {
			return nil, ErrTooManyRows
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, ErrNoDataRows
	}
	return rows, nil
}
