package detect

import (
	"fmt"
)

// Config содержит пороги детектора акселераций и децелераций
type Config struct {
	ThresholdHigh float64 // bpm, выше - кандидат в акселерацию
	ThresholdLow  float64 // bpm, ниже - кандидат в децелерацию
	MinDuration   float64 // сек, включительно
	MaxDuration   float64 // сек, исключительно
	MinAmplitude  float64 // bpm, отклонение от базовой линии
}

// DefaultConfig возвращает стандартные пороги КТГ
func DefaultConfig() Config {
	return Config{
		ThresholdHigh: 160,
		ThresholdLow:  110,
		MinDuration:   15,
		MaxDuration:   120,
		MinAmplitude:  15,
	}
}

// Validate проверяет согласованность порогов
func (c Config) Validate() error {
	if c.ThresholdLow >= c.ThresholdHigh {
		return fmt.Errorf("threshold_low (%.1f) must be below threshold_high (%.1f)", c.ThresholdLow, c.ThresholdHigh)
	}
	if c.MinDuration < 0 {
		return fmt.Errorf("min_duration must not be negative: %.1f", c.MinDuration)
	}
	if c.MaxDuration <= c.MinDuration {
		return fmt.Errorf("max_duration (%.1f) must exceed min_duration (%.1f)", c.MaxDuration, c.MinDuration)
	}
	if c.MinAmplitude < 0 {
		return fmt.Errorf("min_amplitude must not be negative: %.1f", c.MinAmplitude)
	}
	return nil
}

// Detector ищет акселерации и децелерации ЧСС плода
type Detector struct {
	cfg Config
}

// NewDetector создает детектор с заданными порогами
func NewDetector(cfg Config) *Detector {
	return &Detector{cfg: cfg}
}

// Accelerations находит акселерации относительно медианы ЧСС
func (d *Detector) Accelerations(times, fhr []float64) []Interval {
	return d.accelerations(times, fhr, Baseline(fhr))
}

// Decelerations находит децелерации относительно медианы ЧСС
func (d *Detector) Decelerations(times, fhr []float64) []Interval {
	return d.decelerations(times, fhr, Baseline(fhr))
}

// Detect строит полный набор событий сегмента.
// Базовая линия считается один раз на вызов и общая для обоих сканов.
func (d *Detector) Detect(times, fhr []float64, contractions []Contraction) EventSet {
	baseline := Baseline(fhr)

	decelerations := d.decelerations(times, fhr, baseline)
	early, late := Classify(decelerations, contractions)

	return EventSet{
		Accelerations:      d.accelerations(times, fhr, baseline),
		Decelerations:      decelerations,
		EarlyDecelerations: early,
		LateDecelerations:  late,
	}
}

func (d *Detector) accelerations(times, fhr []float64, baseline float64) []Interval {
	if len(times) != len(fhr) {
		return make([]Interval, 0)
	}

	above := func(i int) bool {
		return fhr[i] > d.cfg.ThresholdHigh && fhr[i]-baseline >= d.cfg.MinAmplitude
	}
	return Intervals(times, above, d.cfg.MinDuration, d.cfg.MaxDuration)
}

func (d *Detector) decelerations(times, fhr []float64, baseline float64) []Interval {
	if len(times) != len(fhr) {
		return make([]Interval, 0)
	}

	below := func(i int) bool {
		return fhr[i] < d.cfg.ThresholdLow && baseline-fhr[i] >= d.cfg.MinAmplitude
	}
	return Intervals(times, below, d.cfg.MinDuration, d.cfg.MaxDuration)
}
