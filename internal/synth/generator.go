// Package synth генерирует синтетические записи КТГ для демонстраций и тестов.
package synth

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/Krimson/ctg-analyzer/internal/signal"
)

// ErrInvalidConfig - несогласованные параметры генератора
var ErrInvalidConfig = errors.New("invalid generator configuration")

// Config - параметры синтетической записи
type Config struct {
	Duration   time.Duration
	SampleRate float64 // Гц
	Seed       int64   // 0 - случайный seed

	FHR          FHRConfig
	TOCO         TOCOConfig
	Deceleration DecelerationConfig
}

// FHRConfig - ЧСС плода: базовое значение с равномерным шумом
type FHRConfig struct {
	MinValue    float64
	MaxValue    float64
	BaseValue   float64
	Variability float64 // амплитуда шума, bpm

	// Доля отсчетов с потерей сигнала (FHR = 0)
	DropoutRate float64
}

// TOCOConfig - маточные сокращения: подъем, плато, спад по трети длительности
type TOCOConfig struct {
	RestingTone            float64
	FirstContraction       time.Duration
	MinContractionInterval time.Duration
	MaxContractionInterval time.Duration
	ContractionDuration    time.Duration
	PeakIntensity          float64
}

// DecelerationConfig - поздние децелерации после пика каждого сокращения
type DecelerationConfig struct {
	Enabled  bool
	Delay    time.Duration // от пика сокращения до начала снижения
	Duration time.Duration
	Depth    float64 // bpm ниже базового значения
}

// DefaultConfig возвращает 10 минут нормальной записи при 4 Гц
func DefaultConfig() Config {
	return Config{
		Duration:   10 * time.Minute,
		SampleRate: 4,
		FHR: FHRConfig{
			MinValue:    50,
			MaxValue:    210,
			BaseValue:   140,
			Variability: 5,
		},
		TOCO: TOCOConfig{
			RestingTone:            10,
			FirstContraction:       10 * time.Second,
			MinContractionInterval: 3 * time.Minute,
			MaxContractionInterval: 5 * time.Minute,
			ContractionDuration:    45 * time.Second,
			PeakIntensity:          80,
		},
		Deceleration: DecelerationConfig{
			Delay:    10 * time.Second,
			Duration: 40 * time.Second,
			Depth:    40,
		},
	}
}

// Validate проверяет параметры генератора
func (c Config) Validate() error {
	if c.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrInvalidConfig)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive", ErrInvalidConfig)
	}
	if c.FHR.MinValue >= c.FHR.MaxValue {
		return fmt.Errorf("%w: fhr min (%.1f) must be below max (%.1f)", ErrInvalidConfig, c.FHR.MinValue, c.FHR.MaxValue)
	}
	if c.FHR.Variability < 0 {
		return fmt.Errorf("%w: variability must not be negative", ErrInvalidConfig)
	}
	if c.FHR.DropoutRate < 0 || c.FHR.DropoutRate >= 1 {
		return fmt.Errorf("%w: dropout rate must be in [0, 1)", ErrInvalidConfig)
	}
	if c.TOCO.ContractionDuration <= 0 {
		return fmt.Errorf("%w: contraction duration must be positive", ErrInvalidConfig)
	}
	if c.TOCO.MinContractionInterval < c.TOCO.ContractionDuration {
		return fmt.Errorf("%w: contraction interval must not be shorter than contraction", ErrInvalidConfig)
	}
	if c.TOCO.MaxContractionInterval < c.TOCO.MinContractionInterval {
		return fmt.Errorf("%w: max contraction interval is below min", ErrInvalidConfig)
	}
	if c.Deceleration.Enabled && c.Deceleration.Duration <= 0 {
		return fmt.Errorf("%w: deceleration duration must be positive", ErrInvalidConfig)
	}
	return nil
}

// Generate строит запись с шагом 1/SampleRate. Одинаковый Seed дает одинаковую запись.
func Generate(cfg Config) (signal.Series, error) {
	if err := cfg.Validate(); err != nil {
		return signal.Series{}, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	n := int(math.Floor(cfg.Duration.Seconds()*cfg.SampleRate + 1e-9))
	series := signal.Series{
		Time: make([]float64, n),
		FHR:  make([]float64, n),
		UC:   make([]float64, n),
	}

	starts := contractionStarts(cfg, rng)
	uc := newToco(cfg.TOCO, starts)
	drops := newDecelerations(cfg, starts)

	for i := 0; i < n; i++ {
		t := float64(i) / cfg.SampleRate
		series.Time[i] = t
		series.UC[i] = uc.value(t)

		fhr := cfg.FHR.BaseValue - drops.drop(t)
		if cfg.FHR.Variability > 0 {
			fhr += (rng.Float64()*2 - 1) * cfg.FHR.Variability
		}
		fhr = math.Max(cfg.FHR.MinValue, math.Min(cfg.FHR.MaxValue, fhr))
		if cfg.FHR.DropoutRate > 0 && rng.Float64() < cfg.FHR.DropoutRate {
			fhr = 0
		}
		series.FHR[i] = math.Round(fhr*10) / 10
	}

	return series, nil
}

// contractionStarts раскладывает начала сокращений со случайными интервалами
func contractionStarts(cfg Config, rng *rand.Rand) []float64 {
	total := cfg.Duration.Seconds()
	minInterval := cfg.TOCO.MinContractionInterval.Seconds()
	spread := cfg.TOCO.MaxContractionInterval.Seconds() - minInterval

	starts := make([]float64, 0)
	for t := cfg.TOCO.FirstContraction.Seconds(); t < total; {
		starts = append(starts, t)
		t += minInterval + rng.Float64()*spread
	}
	return starts
}

type toco struct {
	cfg    TOCOConfig
	starts []float64
}

func newToco(cfg TOCOConfig, starts []float64) toco {
	return toco{cfg: cfg, starts: starts}
}

// value возвращает UC в момент t: тонус покоя плюс трапеция текущего сокращения
func (g toco) value(t float64) float64 {
	duration := g.cfg.ContractionDuration.Seconds()
	phase := duration / 3

	for _, start := range g.starts {
		elapsed := t - start
		if elapsed < 0 || elapsed >= duration {
			continue
		}

		switch {
		case elapsed < phase:
			return g.cfg.RestingTone + elapsed/phase*g.cfg.PeakIntensity
		case elapsed < 2*phase:
			return g.cfg.RestingTone + g.cfg.PeakIntensity
		default:
			return g.cfg.RestingTone + (duration-elapsed)/phase*g.cfg.PeakIntensity
		}
	}
	return g.cfg.RestingTone
}

// PeakTime возвращает момент пика сокращения, начавшегося в start
func (c TOCOConfig) PeakTime(start float64) float64 {
	return start + c.ContractionDuration.Seconds()/3
}

type decelerations struct {
	onsets   []float64
	duration float64
	depth    float64
}

func newDecelerations(cfg Config, starts []float64) decelerations {
	d := decelerations{
		duration: cfg.Deceleration.Duration.Seconds(),
		depth:    cfg.Deceleration.Depth,
	}
	if !cfg.Deceleration.Enabled {
		return d
	}
	for _, start := range starts {
		d.onsets = append(d.onsets, cfg.TOCO.PeakTime(start)+cfg.Deceleration.Delay.Seconds())
	}
	return d
}

// drop возвращает снижение ЧСС в момент t: трапеция с фронтами по четверти длительности
func (d decelerations) drop(t float64) float64 {
	ramp := d.duration / 4
	for _, onset := range d.onsets {
		elapsed := t - onset
		if elapsed < 0 || elapsed > d.duration {
			continue
		}

		switch {
		case elapsed < ramp:
			return elapsed / ramp * d.depth
		case elapsed > d.duration-ramp:
			return (d.duration - elapsed) / ramp * d.depth
		default:
			return d.depth
		}
	}
	return 0
}
