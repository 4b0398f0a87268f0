package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeTimes возвращает n отметок времени с шагом step начиная с 0
func makeTimes(n int, step float64) []float64 {
	times := make([]float64, n)
	for i := range times {
		times[i] = float64(i) * step
	}
	return times
}

func constant(n int, value float64) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = value
	}
	return values
}

// fillRange присваивает value всем отсчетам с временем в [from, to]
func fillRange(times, values []float64, from, to, value float64) {
	for i, t := range times {
		if t >= from && t <= to {
			values[i] = value
		}
	}
}

func assertSortedDisjoint(t *testing.T, intervals []Interval) {
	t.Helper()
	for i, iv := range intervals {
		assert.Less(t, iv.Start, iv.End, "interval %d must have start < end", i)
		if i > 0 {
			assert.Less(t, intervals[i-1].End, iv.Start, "interval %d overlaps its predecessor", i)
		}
	}
}

func TestRuns(t *testing.T) {
	values := []float64{0, 1, 1, 0, 1, 0, 0, 1, 1, 1}
	runs := Runs(len(values), func(i int) bool { return values[i] > 0 })

	require.Len(t, runs, 3)
	assert.Equal(t, Run{First: 1, Last: 2}, runs[0])
	assert.Equal(t, Run{First: 4, Last: 4}, runs[1])
	assert.Equal(t, Run{First: 7, Last: 9}, runs[2])
}

func TestRuns_Empty(t *testing.T) {
	assert.Empty(t, Runs(0, func(int) bool { return true }))
	assert.Empty(t, Runs(5, func(int) bool { return false }))
}

func TestIntervals_DurationBounds(t *testing.T) {
	times := makeTimes(200, 1)
	values := constant(200, 0)
	fillRange(times, values, 10, 25, 1)  // 15 s - ровно минимум
	fillRange(times, values, 40, 53, 1)  // 13 s - короче минимума
	fillRange(times, values, 70, 90, 1)  // 20 s - ровно максимум, исключается
	fillRange(times, values, 120, 139, 1) // 19 s

	intervals := Intervals(times, func(i int) bool { return values[i] > 0 }, 15, 20)

	require.Len(t, intervals, 2)
	assert.Equal(t, Interval{Start: 10, End: 25}, intervals[0])
	assert.Equal(t, Interval{Start: 120, End: 139}, intervals[1])
}

func TestIntervals_ZeroLengthRunDropped(t *testing.T) {
	times := makeTimes(10, 1)
	values := constant(10, 0)
	values[4] = 1

	intervals := Intervals(times, func(i int) bool { return values[i] > 0 }, 0, 100)
	assert.Empty(t, intervals)
}

func TestBaseline(t *testing.T) {
	assert.Equal(t, 0.0, Baseline(nil))
	assert.Equal(t, 3.0, Baseline([]float64{5, 1, 3}))
	assert.Equal(t, 2.5, Baseline([]float64{4, 1, 2, 3}))
}

func TestDetector_FlatSignal(t *testing.T) {
	times := makeTimes(480, 0.25)
	fhr := constant(480, 140)
	uc := constant(480, 20)

	events := NewDetector(DefaultConfig()).Detect(times, fhr, ExtractContractions(times, uc))

	assert.Empty(t, events.Accelerations)
	assert.Empty(t, events.Decelerations)
	assert.Empty(t, events.EarlyDecelerations)
	assert.Empty(t, events.LateDecelerations)
}

func TestDetector_SpikeOfMinDuration(t *testing.T) {
	cfg := DefaultConfig()
	times := makeTimes(480, 0.25)
	fhr := constant(480, 140)
	fillRange(times, fhr, 40, 40+cfg.MinDuration, 180)

	accelerations := NewDetector(cfg).Accelerations(times, fhr)

	require.Len(t, accelerations, 1)
	assert.Equal(t, Interval{Start: 40, End: 55}, accelerations[0])
}

func TestDetector_SpikeShorterThanMinDuration(t *testing.T) {
	times := makeTimes(480, 0.25)
	fhr := constant(480, 140)
	fillRange(times, fhr, 40, 54.75, 180)

	assert.Empty(t, NewDetector(DefaultConfig()).Accelerations(times, fhr))
}

func TestDetector_RunClosedAtSegmentEnd(t *testing.T) {
	times := makeTimes(120, 1)
	fhr := constant(120, 140)
	fillRange(times, fhr, 100, 119, 90)

	decelerations := NewDetector(DefaultConfig()).Decelerations(times, fhr)

	require.Len(t, decelerations, 1)
	assert.Equal(t, Interval{Start: 100, End: 119}, decelerations[0])
}

func TestDetector_RejectedRunIsNotRescanned(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxDuration = 20

	times := makeTimes(120, 1)
	fhr := constant(120, 140)
	fillRange(times, fhr, 10, 40, 90) // 30 s - длиннее максимума

	assert.Empty(t, NewDetector(cfg).Decelerations(times, fhr))
}

func TestDetector_AmplitudeRequired(t *testing.T) {
	times := makeTimes(120, 1)
	fhr := constant(120, 170)
	fillRange(times, fhr, 20, 60, 180) // выше 160, но всего на 10 bpm выше базовой линии

	assert.Empty(t, NewDetector(DefaultConfig()).Accelerations(times, fhr))
}

func TestDetector_IntervalsSortedAndBounded(t *testing.T) {
	cfg := DefaultConfig()
	times := makeTimes(480, 0.5)
	fhr := constant(480, 140)
	fillRange(times, fhr, 10, 30, 175)
	fillRange(times, fhr, 30.5, 31, 140)
	fillRange(times, fhr, 31.5, 60, 178)
	fillRange(times, fhr, 80, 90, 95)
	fillRange(times, fhr, 100, 130, 92)
	fillRange(times, fhr, 150, 151, 90)
	fillRange(times, fhr, 170, 200, 96)

	events := NewDetector(cfg).Detect(times, fhr, nil)

	for _, list := range [][]Interval{events.Accelerations, events.Decelerations} {
		assertSortedDisjoint(t, list)
		for _, iv := range list {
			assert.GreaterOrEqual(t, iv.Duration(), cfg.MinDuration)
			assert.Less(t, iv.Duration(), cfg.MaxDuration)
		}
	}
	assert.Len(t, events.Accelerations, 2)
	assert.Len(t, events.Decelerations, 2)
}

func TestDetector_Idempotent(t *testing.T) {
	times := makeTimes(240, 0.5)
	fhr := constant(240, 140)
	fillRange(times, fhr, 20, 45, 90)
	uc := constant(240, 10)
	fillRange(times, uc, 10, 30, 50)
	fillRange(times, uc, 18, 18, 70)

	d := NewDetector(DefaultConfig())
	contractions := ExtractContractions(times, uc)

	assert.Equal(t, d.Detect(times, fhr, contractions), d.Detect(times, fhr, contractions))
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.ThresholdLow = 170
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.MaxDuration = 10
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.MinAmplitude = -1
	assert.Error(t, cfg.Validate())
}
