package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"

	"github.com/Krimson/ctg-analyzer/internal/analyzer"
	"github.com/Krimson/ctg-analyzer/internal/config"
	"github.com/Krimson/ctg-analyzer/internal/diagnosis"
)

func main() {
	segmentFlag := flag.Int("segment", -1, "print only this segment index (-1 - all segments)")
	durationFlag := flag.Float64("duration", 0, "segment duration in seconds (overrides config)")
	cleanFlag := flag.Bool("clean", false, "interpolate zero FHR samples before analysis")
	terminologyFlag := flag.String("terminology", "", "deceleration terminology: late or variable")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <recording.csv>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	opts, err := cfg.AnalyzerOptions()
	if err != nil {
		logger.Error("invalid analysis options", "error", err)
		os.Exit(1)
	}
	if *durationFlag > 0 {
		opts.SegmentDuration = *durationFlag
	}
	if *cleanFlag {
		opts.CleanZeroFHR = true
	}
	if *terminologyFlag != "" {
		terminology, err := diagnosis.ParseTerminology(*terminologyFlag)
		if err != nil {
			logger.Error("invalid terminology", "error", err)
			os.Exit(2)
		}
		opts.Terminology = terminology
	}

	if err := run(context.Background(), opts, flag.Arg(0), *segmentFlag, logger); err != nil {
		logger.Error("report failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts analyzer.Options, path string, only int, logger *slog.Logger) error {
	service, err := analyzer.NewService(opts, nil, nil, nil, logger)
	if err != nil {
		return err
	}

	handle, err := service.LoadSignal(ctx, path)
	if err != nil {
		return err
	}
	defer service.Close(ctx, handle)

	summary, err := service.Summary(ctx, handle)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d rows, %.2f Hz, %d segments\n\n", summary.Filename, summary.Rows, summary.SamplingRate, summary.TotalSegments)

	first, last := 0, summary.TotalSegments-1
	if only >= 0 {
		first, last = only, only
	}

	for i := first; i <= last; i++ {
		analysis, err := service.SegmentAnalysis(ctx, handle, i)
		if err != nil {
			return err
		}

		fmt.Printf("Segment %d/%d [%.2f s - %.2f s]\n", i+1, summary.TotalSegments, analysis.Start, analysis.End)
		if err := analyzer.WriteTable(os.Stdout, analyzer.BuildReport(analysis)); err != nil {
			return err
		}
		fmt.Println()
	}
	return nil
}
