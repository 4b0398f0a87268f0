package variability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShortTerm(t *testing.T) {
	// 120 bpm -> 500 ms, 150 bpm -> 400 ms
	fhr := []float64{120, 150, 120, 150}

	assert.InDelta(t, 100.0, ShortTerm(fhr), 1e-9)
}

func TestShortTerm_SkipsNonPositive(t *testing.T) {
	fhr := []float64{120, 0, -5, 150}

	assert.InDelta(t, 100.0, ShortTerm(fhr), 1e-9)
}

func TestShortTerm_Degenerate(t *testing.T) {
	assert.Equal(t, 0.0, ShortTerm(nil))
	assert.Equal(t, 0.0, ShortTerm([]float64{140}))
	assert.Equal(t, 0.0, ShortTerm([]float64{0, 0, 140}))
}

func TestShortTerm_Flat(t *testing.T) {
	fhr := make([]float64, 100)
	for i := range fhr {
		fhr[i] = 140
	}
	assert.Equal(t, 0.0, ShortTerm(fhr))
}

func TestLongTerm(t *testing.T) {
	// Окно [130, 150] - std 10, окно [140, 140] - std 0
	fhr := []float64{130, 150, 140, 140}

	assert.InDelta(t, 5.0, LongTerm(fhr, 2), 1e-9)
}

func TestLongTerm_ShortTailIgnored(t *testing.T) {
	// Хвост из одного отсчета не образует окна
	fhr := []float64{130, 150, 200}

	assert.InDelta(t, 10.0, LongTerm(fhr, 2), 1e-9)
}

func TestLongTerm_DefaultWindow(t *testing.T) {
	fhr := make([]float64, 240)
	for i := range fhr {
		if i%2 == 0 {
			fhr[i] = 130
		} else {
			fhr[i] = 150
		}
	}

	assert.InDelta(t, 10.0, LongTerm(fhr, 0), 1e-9)
	assert.InDelta(t, 10.0, LongTerm(fhr, DefaultLTVWindow), 1e-9)
}

func TestLongTerm_Empty(t *testing.T) {
	assert.Equal(t, 0.0, LongTerm(nil, DefaultLTVWindow))
	assert.Equal(t, 0.0, LongTerm([]float64{140}, DefaultLTVWindow))
}

func TestTrend(t *testing.T) {
	times := []float64{0, 1, 2, 3, 4}
	fhr := []float64{140, 141, 142, 143, 144}

	assert.InDelta(t, 60.0, Trend(times, fhr), 1e-9)
}

func TestTrend_Degenerate(t *testing.T) {
	assert.Equal(t, 0.0, Trend(nil, nil))
	assert.Equal(t, 0.0, Trend([]float64{1}, []float64{140}))
	assert.Equal(t, 0.0, Trend([]float64{5, 5, 5}, []float64{140, 150, 160}))
	assert.Equal(t, 0.0, Trend([]float64{0, 1}, []float64{140}))
}
