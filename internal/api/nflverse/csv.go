package nflverse

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// record is one CSV row addressed by header name
type record struct {
	header map[string]int
	fields []string
}

// str returns the first non-empty value among cols
func (r record) str(cols ...string) string {
	for _, col := range cols {
		i, ok := r.header[col]
		if !ok || i >= len(r.fields) {
			continue
		}
		if v := strings.TrimSpace(r.fields[i]); v != "" && v != "NA" {
			return v
		}
	}
	return ""
}

// floatCol returns nil for blank and NA cells
func (r record) floatCol(col string) (*float64, error) {
	v := r.str(col)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("column %s: %w", col, err)
	}
	return &f, nil
}

func (r record) intCol(col string) (int, error) {
	v := r.str(col)
	if v == "" {
		return 0, fmt.Errorf("column %s is empty", col)
	}
	// some releases write integral columns as 1.0
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return int(f), nil
	}
	return 0, fmt.Errorf("column %s: invalid integer %q", col, v)
}

// readCSV streams rows to fn. Missing required columns fail before any row is read.
func readCSV(r io.Reader, required []string, fn func(record) error) error {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true
	reader.FieldsPerRecord = -1

	head, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty csv")
		}
		return fmt.Errorf("read header: %w", err)
	}

	header := make(map[string]int, len(head))
	for i, name := range head {
		header[strings.TrimPrefix(strings.TrimSpace(name), "\ufeff")] = i
	}
	for _, col := range required {
		if _, ok := header[col]; !ok {
			return fmt.Errorf("missing column %q", col)
		}
	}

	line := 1
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		line++
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if err := fn(record{header: header, fields: fields}); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
}
