package analyzer

import (
	"fmt"

	"github.com/Krimson/ctg-analyzer/internal/detect"
	"github.com/Krimson/ctg-analyzer/internal/diagnosis"
	"github.com/Krimson/ctg-analyzer/internal/signal"
	"github.com/Krimson/ctg-analyzer/internal/variability"
)

// Options - параметры анализа
type Options struct {
	SegmentDuration float64
	LTVWindow       int
	CleanZeroFHR    bool
	Detect          detect.Config
	Thresholds      diagnosis.Thresholds
	Terminology     diagnosis.Terminology
}

// DefaultOptions возвращает стандартные параметры анализа
func DefaultOptions() Options {
	return Options{
		SegmentDuration: signal.DefaultSegmentDuration,
		LTVWindow:       variability.DefaultLTVWindow,
		Detect:          detect.DefaultConfig(),
		Thresholds:      diagnosis.DefaultThresholds(),
		Terminology:     diagnosis.TerminologyLate,
	}
}

// Validate проверяет параметры анализа
func (o Options) Validate() error {
	if o.SegmentDuration <= 0 {
		return fmt.Errorf("segment duration must be positive: %.2f", o.SegmentDuration)
	}
	if o.LTVWindow <= 0 {
		return fmt.Errorf("ltv window must be positive: %d", o.LTVWindow)
	}
	if err := o.Detect.Validate(); err != nil {
		return fmt.Errorf("invalid detector config: %w", err)
	}
	if err := o.Thresholds.Validate(); err != nil {
		return fmt.Errorf("invalid diagnosis thresholds: %w", err)
	}
	if _, err := diagnosis.ParseTerminology(string(o.Terminology)); err != nil {
		return err
	}
	return nil
}
