// Command bindiff is a thin CLI wrapper gluing the core pieces
// together: it reads two exchange-format disassembly documents
// (primary and secondary, spec.md §6), runs the default matching
// pipeline, and prints a plain-text summary of the fixed points found.
//
// Result persistence and report writing are explicit Non-goals of the
// core (spec.md §1); this binary exists only so the library pieces are
// reachable as a complete program, the way the teacher's packages are
// otherwise only reachable from tests. It is deliberately not a
// reimplementation of the reference tool's UI, chooser, or report
// formats.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/flowmatch/bindiff/config"
	"github.com/flowmatch/bindiff/driver"
	"github.com/flowmatch/bindiff/exchange"
	"github.com/flowmatch/bindiff/graph"
	"github.com/flowmatch/bindiff/matchctx"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "bindiff:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("bindiff", flag.ContinueOnError)
	fs.SetOutput(stderr)
	primaryPath := fs.String("primary", "", "path to the primary side's exchange-format JSON document")
	secondaryPath := fs.String("secondary", "", "path to the secondary side's exchange-format JSON document")
	verbose := fs.Bool("v", false, "log matcher step progress at debug level")
	parallelBB := fs.Bool("parallel-bb", false, "fan basic-block matching out across function fixed points")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *primaryPath == "" || *secondaryPath == "" {
		fs.Usage()

		return fmt.Errorf("both -primary and -secondary are required")
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	primary, err := loadSide(*primaryPath)
	if err != nil {
		return fmt.Errorf("loading primary: %w", err)
	}
	secondary, err := loadSide(*secondaryPath)
	if err != nil {
		return fmt.Errorf("loading secondary: %w", err)
	}

	var cfgOpts []config.Option
	if *parallelBB {
		cfgOpts = append(cfgOpts, config.WithParallelBB())
	}
	cfg, err := config.NewDefault(cfgOpts...)
	if err != nil {
		return fmt.Errorf("building pipeline config: %w", err)
	}

	mc := matchctx.New(primary, secondary, matchctx.WithLogger(logger))
	logger.Info("run starting", "run_id", mc.RunID)

	d := driver.NewDefault(primary, secondary)
	res, err := d.Run(context.Background(), mc, cfg)
	if err != nil {
		return fmt.Errorf("running matcher: %w", err)
	}

	printSummary(stdout, primary, secondary, res)

	return nil
}

func loadSide(path string) (*graph.CallGraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	_, cg, err := exchange.Load(f)

	return cg, err
}

func printSummary(w io.Writer, primary, secondary *graph.CallGraph, res *driver.Result) {
	fmt.Fprintf(w, "primary functions:   %d\n", len(primary.Functions()))
	fmt.Fprintf(w, "secondary functions: %d\n", len(secondary.Functions()))
	fmt.Fprintf(w, "matched functions:   %d\n", len(res.FixedPoints))
	if res.Cancelled {
		fmt.Fprintln(w, "run was cancelled before the pipeline completed")
	}

	for _, fp := range res.FixedPoints {
		fmt.Fprintf(w, "  %#x <-> %#x  step=%-24s confidence=%.3f blocks=%d\n",
			fp.PrimaryAddr, fp.SecondaryAddr, fp.StepName, fp.Confidence, len(fp.BasicBlocks))
	}
}
