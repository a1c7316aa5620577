// Package feed supplies struct field values from tabular external data.
//
// A Feed is a fixed table of rows loaded from CSV, JSON or YAML. A Cursor
// walks a feed with one of three access strategies. Columns are matched to
// exported struct fields by the feed tag, the json tag, the exact field name,
// a case-insensitive name and finally a normalized identifier, so a column
// "customer_id" fills a field CustomerID.
package feed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"sigs.k8s.io/yaml"
)

var (
	ErrEmpty       = errors.New("feed has no rows")
	ErrExhausted   = errors.New("feed exhausted")
	ErrFormat      = errors.New("invalid feed data")
	ErrUnsupported = errors.New("unsupported feed format")
)

// Row maps column names to raw values. CSV values are strings; JSON and YAML
// values keep their decoded types.
type Row map[string]any

// Feed is a table of rows.
type Feed interface {
	Columns() []string
	Len() int
	Row(i int) Row
}

type table struct {
	columns []string
	rows    []Row
}

func (t *table) Columns() []string { return t.columns }
func (t *table) Len() int          { return len(t.rows) }
func (t *table) Row(i int) Row     { return t.rows[i] }

// New creates a feed from rows. Columns are the sorted union of row keys.
func New(rows ...Row) Feed {
	seen := map[string]struct{}{}
	for _, r := range rows {
		for k := range r {
			seen[k] = struct{}{}
		}
	}

	columns := make([]string, 0, len(seen))
	for k := range seen {
		columns = append(columns, k)
	}
	sort.Strings(columns)

	return &table{columns: columns, rows: slices.Clone(rows)}
}

// FromCSV reads a feed whose first record is the header.
func FromCSV(r io.Reader) (Feed, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: missing header", ErrFormat)
	}

	header := records[0]
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
		if header[i] == "" {
			return nil, fmt.Errorf("%w: empty column name at position %d", ErrFormat, i)
		}
	}

	t := &table{columns: header}
	for _, rec := range records[1:] {
		row := make(Row, len(header))
		for i, col := range header {
			row[col] = rec[i]
		}
		t.rows = append(t.rows, row)
	}

	return t, nil
}

// FromJSON reads a feed from a JSON or YAML array of objects.
func FromJSON(data []byte) (Feed, error) {
	var rows []map[string]any
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}

	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = r
	}

	return New(out...), nil
}

// LoadFile reads a feed, choosing the format from the file extension:
// .csv, .json, .yaml or .yml.
func LoadFile(path string) (Feed, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open feed: %w", err)
		}
		defer f.Close()

		return FromCSV(f)

	case ".json", ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read feed: %w", err)
		}

		return FromJSON(data)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
}
