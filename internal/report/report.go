// Package report prices batches of requests and writes the results.
package report

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/contactkeval/option-pricer/internal/data"
	"github.com/contactkeval/option-pricer/internal/decmath"
	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/pricing"
)

// Row is the outcome of one request. Exactly one of Price and Error is set.
type Row struct {
	ID       string  `json:"id"`
	Stock    string  `json:"stock"`
	Strike   string  `json:"strike"`
	Rate     string  `json:"rate"`
	Sigma    string  `json:"sigma"`
	Maturity string  `json:"maturity"`
	Price    string  `json:"price,omitempty"`
	Mantissa string  `json:"mantissa,omitempty"`
	Scale    *uint32 `json:"scale,omitempty"`
	Error    string  `json:"error,omitempty"`
	Kind     string  `json:"kind,omitempty"`
}

// Result is a priced batch, rows in input order.
type Result struct {
	Rows   []Row `json:"rows"`
	Priced int   `json:"priced"`
	Failed int   `json:"failed"`
}

// Price prices every request independently. A failing request is recorded
// in its row and does not stop the batch; only ctx cancellation does.
func Price(ctx context.Context, reqs []data.Request) (*Result, error) {
	rows := make([]Row, len(reqs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, req := range reqs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rows[i] = priceRow(req)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Rows: rows}
	for _, r := range rows {
		if r.Error != "" {
			res.Failed++
		} else {
			res.Priced++
		}
	}
	logger.Infof("priced %d requests, %d failed", res.Priced, res.Failed)
	return res, nil
}

func priceRow(req data.Request) Row {
	p := req.Params
	row := Row{
		ID:       req.ID,
		Stock:    decmath.Format(p.Stock),
		Strike:   decmath.Format(p.Strike),
		Rate:     decmath.Format(p.Rate),
		Sigma:    decmath.Format(p.Sigma),
		Maturity: decmath.Format(p.Maturity),
	}
	price, err := pricing.Price(p)
	if err != nil {
		logger.Debugf("request %s: %v", req.ID, err)
		row.Error = err.Error()
		row.Kind = decmath.Kind(err)
		return row
	}
	mantissa, scale := decmath.Parts(price)
	row.Price = price.String()
	row.Mantissa = mantissa.String()
	row.Scale = &scale
	return row
}

// WriteJSON writes res to prices.json in outdir.
func WriteJSON(res *Result, outdir string) error {
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outdir, "prices.json"), b, 0644)
}

// WriteCSV writes rows to prices.csv in outdir.
func WriteCSV(rows []Row, outdir string) error {
	f, err := os.Create(filepath.Join(outdir, "prices.csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	headers := []string{"id", "stock", "strike", "rate", "sigma", "maturity", "price", "mantissa", "scale", "error"}
	if err := w.Write(headers); err != nil {
		return err
	}
	for _, r := range rows {
		scale := ""
		if r.Scale != nil {
			scale = strconv.FormatUint(uint64(*r.Scale), 10)
		}
		row := []string{r.ID, r.Stock, r.Strike, r.Rate, r.Sigma, r.Maturity, r.Price, r.Mantissa, scale, r.Error}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}
