// Package data loads batches of pricing requests.
package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/contactkeval/option-pricer/internal/decmath"
	"github.com/contactkeval/option-pricer/internal/pricing"
)

// Request is a single row of a batch.
type Request struct {
	ID     string
	Params pricing.OptionParameters
}

// Columns lists the header fields a batch file must carry. Their order in
// the file is free.
var Columns = []string{"id", "stock", "strike", "rate", "sigma", "maturity"}

// LoadCSV reads the batch file at path.
func LoadCSV(path string) ([]Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open batch file: %w", err)
	}
	defer f.Close()

	reqs, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reqs, nil
}

// ReadCSV parses a header row followed by one request per line. Blank lines
// are skipped; a row with an unparsable value fails the whole read.
func ReadCSV(r io.Reader) ([]Request, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("missing header")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}
	cr.FieldsPerRecord = len(header)

	var out []Request
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)

		req := Request{ID: strings.TrimSpace(row[index["id"]])}
		p := &req.Params
		for _, f := range []struct {
			name string
			dst  *decimal.Decimal
		}{
			{"stock", &p.Stock},
			{"strike", &p.Strike},
			{"rate", &p.Rate},
			{"sigma", &p.Sigma},
			{"maturity", &p.Maturity},
		} {
			raw := strings.TrimSpace(row[index[f.name]])
			d, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, fmt.Errorf("line %d: %s: invalid decimal %q", line, f.name, raw)
			}
			*f.dst = d
		}
		out = append(out, req)
	}
	return out, nil
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range Columns {
		if _, ok := index[c]; !ok {
			return nil, fmt.Errorf("header: missing column %q", c)
		}
	}
	return index, nil
}

// MaxLadder bounds the number of rows StrikeLadder may produce.
const MaxLadder = 10000

// StrikeLadder prices base across strikes from..to (inclusive) in steps of
// step. IDs are the strike values.
func StrikeLadder(base pricing.OptionParameters, from, to, step decimal.Decimal) ([]Request, error) {
	bounds := []struct {
		name string
		v    *decimal.Decimal
	}{
		{"start", &from},
		{"end", &to},
		{"step", &step},
	}
	for _, b := range bounds {
		n, err := decmath.Normalize(*b.v)
		if err != nil {
			return nil, fmt.Errorf("ladder %s: %w", b.name, err)
		}
		*b.v = n
	}
	if step.Sign() <= 0 {
		return nil, fmt.Errorf("ladder step must be positive, got %s", step)
	}
	if from.GreaterThan(to) {
		return nil, fmt.Errorf("ladder start %s is above end %s", from, to)
	}
	var out []Request
	for k := from; !k.GreaterThan(to); {
		if len(out) == MaxLadder {
			return nil, fmt.Errorf("ladder exceeds %d strikes", MaxLadder)
		}
		p := base
		p.Strike = k
		out = append(out, Request{ID: k.String(), Params: p})

		next, err := decmath.Add(k, step)
		if err != nil {
			return nil, fmt.Errorf("ladder strike: %w", err)
		}
		k = next
	}
	return out, nil
}
