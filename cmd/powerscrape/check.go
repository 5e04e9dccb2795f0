package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Strob0t/powerscrape/internal/config"
	"github.com/Strob0t/powerscrape/internal/logger"
)

// runCheck fetches both upstream documents once and prints what was extracted.
// It fails when either upstream cannot be fetched or parsed.
func runCheck(args []string) error {
	if len(args) > 0 && (args[0] == "help" || args[0] == "--help") {
		printCheckHelp()
		return nil
	}

	flags, err := config.ParseFlags(args)
	if err != nil {
		printCheckHelp()
		return err
	}
	cfg, _, err := config.LoadWithCLI(flags)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, closeLog := logger.New(cfg.Logging)
	defer closeLog.Close()
	slog.SetDefault(log)

	d, err := newDeps(context.Background(), cfg, nil, false)
	if err != nil {
		return err
	}
	defer d.close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.Upstream.Timeout)
	defer cancel()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SOURCE\tURL\tRESULT\tDURATION")

	var errs []error

	start := time.Now()
	j, err := d.lottery.Jackpot(ctx)
	result := ""
	if err != nil {
		errs = append(errs, err)
		result = "error: " + err.Error()
	} else {
		result = formatCents(j.AmountCents)
	}
	_, _ = fmt.Fprintf(w, "jackpot\t%s\t%s\t%s\n", cfg.Upstream.JackpotURL, result, time.Since(start).Round(time.Millisecond))

	start = time.Now()
	wn, err := d.lottery.WinningNumbers(ctx)
	if err != nil {
		errs = append(errs, err)
		result = "error: " + err.Error()
	} else {
		result = "[" + strings.Join(wn.Numbers, " ") + "]"
	}
	_, _ = fmt.Fprintf(w, "winning-numbers\t%s\t%s\t%s\n", cfg.Upstream.WinningNumbersURL, result, time.Since(start).Round(time.Millisecond))

	if err := w.Flush(); err != nil {
		return err
	}
	return errors.Join(errs...)
}

// formatCents renders cents as dollars, e.g. $1,234.00.
func formatCents(cents int64) string {
	return fmt.Sprintf("$%s.%02d", humanize.Comma(cents/100), cents%100)
}

func printCheckHelp() {
	fmt.Fprintf(os.Stderr, `Usage: powerscrape check [options]

Fetches the jackpot page and the winning numbers feed once and prints the
extracted values. Exits non-zero if either fails.

Options:
  -c, --config PATH   YAML config file (default powerscrape.yaml)
  --log-level LEVEL   debug, info, warn or error

Examples:
  powerscrape check
  POWERSCRAPE_JACKPOT_URL=http://localhost:8080/ powerscrape check
`)
}
