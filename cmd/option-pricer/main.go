package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/contactkeval/option-pricer/internal/config"
	"github.com/contactkeval/option-pricer/internal/contract"
	"github.com/contactkeval/option-pricer/internal/data"
	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/pricing"
	"github.com/contactkeval/option-pricer/internal/report"
	"github.com/contactkeval/option-pricer/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("option-pricer", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to YAML config")
	rest := fs.Bool("rest", false, "run as REST server")
	addr := fs.String("addr", "", "REST server listen address (overrides config)")
	batch := fs.String("batch", "", "price every row of this CSV file")
	ladder := fs.String("ladder", "", "price a strike ladder from:to:step around the default parameters")
	outDir := fs.String("out", "", "report directory for -batch and -ladder (overrides config)")
	stock := fs.String("stock", "", "spot price")
	strike := fs.String("strike", "", "strike price")
	rate := fs.String("rate", "", "risk-free rate")
	sigma := fs.String("sigma", "", "volatility")
	maturity := fs.String("maturity", "", "time to expiry in years")
	verbosity := fs.Int("v", -1, "verbosity 0=error 1=info 2=debug 3=trace (overrides config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger.SetLevel(cfg.LogLevel())
	if *verbosity >= 0 {
		logger.SetVerbosity(*verbosity)
	}

	for dst, v := range map[*string]string{
		&cfg.Defaults.Stock:    *stock,
		&cfg.Defaults.Strike:   *strike,
		&cfg.Defaults.Rate:     *rate,
		&cfg.Defaults.Sigma:    *sigma,
		&cfg.Defaults.Maturity: *maturity,
		&cfg.Server.Addr:       *addr,
		&cfg.Report.Dir:        *outDir,
	} {
		if v != "" {
			*dst = v
		}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	switch {
	case *rest:
		return server.New().ListenAndServe(cfg.Server.Addr)
	case *batch != "":
		reqs, err := data.LoadCSV(*batch)
		if err != nil {
			return fmt.Errorf("batch: %w", err)
		}
		return runBatch(ctx, cfg, reqs)
	case *ladder != "":
		base, err := cfg.Parameters()
		if err != nil {
			return fmt.Errorf("ladder: %w", err)
		}
		reqs, err := strikeLadder(base, *ladder)
		if err != nil {
			return fmt.Errorf("ladder: %w", err)
		}
		return runBatch(ctx, cfg, reqs)
	}

	p, err := cfg.Parameters()
	if err != nil {
		return err
	}
	mantissa, scale, err := contract.BlackScholes{}.ComputeWith(p)
	if err != nil {
		return fmt.Errorf("pricing failed: %w", err)
	}
	_, err = fmt.Fprintf(stdout, "price=%s mantissa=%s scale=%s\n",
		decimal.NewFromBigInt(mantissa, -int32(scale.Int64())), mantissa, scale)
	return err
}

func strikeLadder(base pricing.OptionParameters, arg string) ([]data.Request, error) {
	parts := strings.Split(arg, ":")
	if len(parts) != 3 {
		return nil, fmt.Errorf("want from:to:step, got %q", arg)
	}
	var v [3]decimal.Decimal
	for i, s := range parts {
		d, err := decimal.NewFromString(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("invalid decimal %q", s)
		}
		v[i] = d
	}
	return data.StrikeLadder(base, v[0], v[1], v[2])
}

func runBatch(ctx context.Context, cfg *config.Config, reqs []data.Request) error {
	start := time.Now()
	res, err := report.Price(ctx, reqs)
	if err != nil {
		return fmt.Errorf("batch pricing: %w", err)
	}
	if err := os.MkdirAll(cfg.Report.Dir, 0755); err != nil {
		return fmt.Errorf("could not create output dir %s: %w", cfg.Report.Dir, err)
	}
	if err := report.WriteJSON(res, cfg.Report.Dir); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	if err := report.WriteCSV(res.Rows, cfg.Report.Dir); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	logger.Infof("finished in %v, wrote %d rows (%d failed) to %s",
		time.Since(start), len(res.Rows), res.Failed, cfg.Report.Dir)
	return nil
}
