// Command tvgdiag prints the full pointing-model verdict for a list of
// positions without starting the HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mrtommyb/tesstvgapp/internal/pointing"
	"github.com/mrtommyb/tesstvgapp/internal/position"
	"github.com/mrtommyb/tesstvgapp/internal/visibility"
)

func main() {
	pos := flag.String("pos", "234.56 -78.9,270.5 -28.2", "comma-separated position list")
	workers := flag.Int("workers", 1, "evaluation workers")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	if err := run(os.Stdout, *pos, *workers, logger); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
}

func run(out io.Writer, raw string, workers int, logger *slog.Logger) error {
	positions, err := position.Parse(raw)
	if err != nil {
		return err
	}

	cycle, err := pointing.New(pointing.Cycle1())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: %d sectors, epoch JD %.1f, obliquity %.6f deg\n",
		cycle.Name(), cycle.Config().Sectors, cycle.EpochJD(), cycle.ObliquityDeg())

	eval := visibility.NewEvaluator(cycle, workers, logger)
	results, err := eval.EvaluateAll(context.Background(), positions)
	if err != nil {
		return err
	}

	for i, p := range positions {
		r := results[i]
		cov := cycle.Coverage(p.RA, p.Dec)
		fmt.Fprintf(out, "\n[%d] %q\n", i, p.Raw)
		fmt.Fprintf(out, "  decimal:   %s\n", p.Decimal())
		fmt.Fprintf(out, "  hmsdms:    %s\n", p.HMSDMS())
		fmt.Fprintf(out, "  class:     %s\n", cycle.Classify(p.RA, p.Dec))
		fmt.Fprintf(out, "  camera:    %d (no fallback %d)\n", r.Camera, cycle.Camera(p.RA, p.Dec, false))
		fmt.Fprintf(out, "  coverage:  max=%d min=%d median=%.1f mean=%.2f\n", cov.Max, cov.Min, cov.Median, cov.Mean)

		for _, s := range cycle.Sectors(p.RA, p.Dec) {
			start, end, err := cycle.SectorWindow(s)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "    sector %2d: %s to %s\n", s, start.Format(time.DateOnly), end.Format(time.DateOnly))
		}
	}
	return nil
}
