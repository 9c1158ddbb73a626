package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// Table is a raw export slice: a header row and string cells. Ragged
// rows are tolerated; short rows read as empty cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Cell returns the value at (row, col index) or "" when the row is short.
func (t *Table) Cell(row int, col int) string {
	if col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// ColumnIndex returns the index of a named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

func newCSVReader(f io.Reader) *csv.Reader {
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	return r
}

// ReadTable reads a whole delimited export into memory.
func ReadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export %s: %w", path, err)
	}
	defer f.Close()

	r := newCSVReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read rows of %s: %w", path, err)
	}
	return &Table{Columns: header, Rows: rows}, nil
}

// ReadPreview reads the header and up to n rows, for forum detection
// and row-size estimation without loading a large file.
func ReadPreview(path string, n int) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export %s: %w", path, err)
	}
	defer f.Close()

	r := newCSVReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}

	table := &Table{Columns: header}
	for len(table.Rows) < n {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read preview row of %s: %w", path, err)
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// ChunkReader streams a large export in fixed-size row chunks so memory
// stays bounded. A parse error poisons only the chunk it occurs in; the
// reader resynchronizes on the next chunk boundary.
type ChunkReader struct {
	f       *os.File
	r       *csv.Reader
	columns []string
	size    int
}

// NewChunkReader opens path and consumes its header row.
func NewChunkReader(path string, chunkRows int) (*ChunkReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export %s: %w", path, err)
	}

	r := newCSVReader(f)
	header, err := r.Read()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}

	return &ChunkReader{f: f, r: r, columns: header, size: chunkRows}, nil
}

// Columns returns the header row.
func (c *ChunkReader) Columns() []string { return c.columns }

// Next reads the next chunk. Returns io.EOF once the file is exhausted.
// Any other error means the current chunk is lost; calling Next again
// continues with the following rows.
func (c *ChunkReader) Next() (*Table, error) {
	table := &Table{Columns: c.columns}
	for len(table.Rows) < c.size {
		row, err := c.r.Read()
		if errors.Is(err, io.EOF) {
			if len(table.Rows) == 0 {
				return nil, io.EOF
			}
			return table, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read chunk row: %w", err)
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// Close releases the underlying file.
func (c *ChunkReader) Close() error { return c.f.Close() }

// EstimateRows guesses the row count of a file from its size and the
// average byte length of the preview rows. Used only for progress and
// abort-threshold math, never for correctness.
func EstimateRows(path string, preview *Table) int64 {
	info, err := os.Stat(path)
	if err != nil || len(preview.Rows) == 0 {
		return 0
	}

	var previewBytes int64
	for _, row := range preview.Rows {
		for _, cell := range row {
			previewBytes += int64(len(cell)) + 1
		}
	}
	avg := previewBytes / int64(len(preview.Rows))
	if avg == 0 {
		return 0
	}
	return info.Size() / avg
}
