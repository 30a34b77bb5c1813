package main

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/limego/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// readReference parses a CSV whose first row holds the feature names and
// every following row one numeric sample.
func readReference(r io.Reader) (*mat.Dense, []string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, errors.Wrap(errors.ErrEmptyData, "reference csv")
		}
		return nil, nil, errors.Wrap(err, "read reference header")
	}
	names := make([]string, len(header))
	for j, h := range header {
		names[j] = strings.TrimSpace(h)
	}

	var data []float64
	rows := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, errors.Wrapf(err, "read reference row %d", rows+1)
		}
		for j, field := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "reference row %d column %q", rows+1, names[j])
			}
			data = append(data, v)
		}
		rows++
	}
	if rows == 0 {
		return nil, nil, errors.Wrap(errors.ErrEmptyData, "reference csv has no rows")
	}
	return mat.NewDense(rows, len(names), data), names, nil
}

func loadReference(path string) (*mat.Dense, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open reference %s", path)
	}
	defer f.Close()
	return readReference(f)
}

// parseQuery parses "1.5, 2, -3" into a vector.
func parseQuery(s string) ([]float64, error) {
	fields := strings.Split(s, ",")
	q := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, errors.NewInvalidInputError("limego explain", "query", "not a number", f)
		}
		q[i] = v
	}
	return q, nil
}
