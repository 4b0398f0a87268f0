package signal

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

// DefaultSegmentDuration - длительность сегмента по умолчанию, сек
const DefaultSegmentDuration = 120.0

// Signal - загруженная запись КТГ, разбитая на сегменты
type Signal struct {
	samplingRate      float64
	samplesPerSegment int
	rows              int
	segments          []*Segment
}

// New оценивает частоту дискретизации и режет ряд на полные сегменты
// длительностью duration секунд. Неполный хвост отбрасывается.
func New(series Series, duration float64) (*Signal, error) {
	if series.Len() != len(series.FHR) || series.Len() != len(series.UC) {
		return nil, &FormatError{Reason: fmt.Sprintf("column lengths differ: time=%d fhr=%d uc=%d",
			len(series.Time), len(series.FHR), len(series.UC))}
	}
	if duration <= 0 {
		return nil, fmt.Errorf("%w: segment duration must be positive, got %.2f", ErrDegenerateInput, duration)
	}

	rate, err := EstimateSamplingRate(series.Time)
	if err != nil {
		return nil, err
	}

	// Небольшой допуск, чтобы 120 * 3.9999999 не превращалось в 479
	perSegment := int(math.Floor(duration*rate + 1e-9))
	if perSegment <= 0 {
		return nil, fmt.Errorf("%w: segment of %.2f s holds no samples at %.4f Hz", ErrDegenerateInput, duration, rate)
	}

	sig := &Signal{
		samplingRate:      rate,
		samplesPerSegment: perSegment,
		rows:              series.Len(),
		segments:          make([]*Segment, 0, series.Len()/perSegment),
	}

	for start := 0; start+perSegment <= series.Len(); start += perSegment {
		end := start + perSegment
		sig.segments = append(sig.segments, newSegment(
			len(sig.segments),
			series.Time[start:end],
			series.FHR[start:end],
			series.UC[start:end],
		))
	}

	return sig, nil
}

// EstimateSamplingRate возвращает 1 / медиана разностей соседних отметок времени
func EstimateSamplingRate(times []float64) (float64, error) {
	if len(times) < 2 {
		return 0, fmt.Errorf("%w: at least two samples required, got %d", ErrDegenerateInput, len(times))
	}

	diffs := make([]float64, len(times)-1)
	for i := 1; i < len(times); i++ {
		diffs[i-1] = times[i] - times[i-1]
	}

	median, err := stats.Median(diffs)
	if err != nil {
		return 0, fmt.Errorf("failed to compute median time step: %w", err)
	}
	if median <= 0 || math.IsNaN(median) {
		return 0, fmt.Errorf("%w: median time step is %.6f", ErrDegenerateInput, median)
	}

	return 1 / median, nil
}

// SamplingRate возвращает оценку частоты дискретизации, Гц
func (s *Signal) SamplingRate() float64 {
	return s.samplingRate
}

// SamplesPerSegment возвращает число отсчетов в каждом сегменте
func (s *Signal) SamplesPerSegment() int {
	return s.samplesPerSegment
}

// Rows возвращает число строк исходного ряда
func (s *Signal) Rows() int {
	return s.rows
}

// TotalSegments возвращает число полных сегментов
func (s *Signal) TotalSegments() int {
	return len(s.segments)
}

// Segment возвращает сегмент по индексу
func (s *Signal) Segment(index int) (*Segment, error) {
	if index < 0 || index >= len(s.segments) {
		return nil, IndexError(index, len(s.segments))
	}
	return s.segments[index], nil
}
