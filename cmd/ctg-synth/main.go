package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/Krimson/ctg-analyzer/internal/synth"
)

func main() {
	cfg := synth.DefaultConfig()

	output := flag.String("output", "data/synthetic_ctg.csv", "Выходной CSV файл (- для stdout)")
	flag.DurationVar(&cfg.Duration, "duration", cfg.Duration, "Длительность записи")
	flag.Float64Var(&cfg.SampleRate, "rate", cfg.SampleRate, "Частота дискретизации, Гц")
	flag.Int64Var(&cfg.Seed, "seed", 0, "Seed генератора (0 - случайный)")
	flag.Float64Var(&cfg.FHR.BaseValue, "fhr", cfg.FHR.BaseValue, "Базовая ЧСС плода, bpm")
	flag.Float64Var(&cfg.FHR.Variability, "variability", cfg.FHR.Variability, "Амплитуда шума ЧСС, bpm")
	flag.Float64Var(&cfg.FHR.DropoutRate, "dropout", 0, "Доля отсчетов с потерей сигнала")
	flag.BoolVar(&cfg.Deceleration.Enabled, "late", false, "Добавить поздние децелерации после каждого сокращения")
	flag.Parse()

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{TimeFormat: time.TimeOnly}))

	series, err := synth.Generate(cfg)
	if err != nil {
		logger.Error("failed to generate recording", "error", err)
		os.Exit(2)
	}

	if *output == "-" {
		err = synth.WriteCSV(os.Stdout, series)
	} else {
		err = synth.WriteFile(*output, series)
	}
	if err != nil {
		logger.Error("failed to write recording", "error", err)
		os.Exit(1)
	}

	logger.Info("recording generated",
		"output", *output,
		"rows", series.Len(),
		"duration", cfg.Duration,
		"late_decelerations", cfg.Deceleration.Enabled,
	)
}
