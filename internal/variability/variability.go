package variability

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// DefaultLTVWindow - размер окна LTV в отсчетах
const DefaultLTVWindow = 120

// ShortTerm вычисляет кратковременную вариабельность (STV) в миллисекундах.
// Отсчеты с ЧСС <= 0 пропускаются, остальные переводятся в RR-интервалы 60000/bpm,
// результат - среднее модулей соседних разностей. Меньше двух валидных отсчетов - 0.
func ShortTerm(fhr []float64) float64 {
	rr := make([]float64, 0, len(fhr))
	for _, bpm := range fhr {
		if bpm <= 0 {
			continue
		}
		rr = append(rr, 60000/bpm)
	}

	if len(rr) < 2 {
		return 0
	}

	var sum float64
	for i := 1; i < len(rr); i++ {
		sum += math.Abs(rr[i] - rr[i-1])
	}
	return sum / float64(len(rr)-1)
}

// LongTerm вычисляет долговременную вариабельность (LTV) в bpm:
// среднее популяционных стандартных отклонений по последовательным окнам window отсчетов.
// Окна короче двух отсчетов не учитываются.
func LongTerm(fhr []float64, window int) float64 {
	if window <= 0 {
		window = DefaultLTVWindow
	}

	deviations := make([]float64, 0, len(fhr)/window+1)
	for start := 0; start < len(fhr); start += window {
		end := min(start+window, len(fhr))
		if end-start < 2 {
			continue
		}

		sd, err := stats.StandardDeviationPopulation(fhr[start:end])
		if err != nil {
			continue
		}
		deviations = append(deviations, sd)
	}

	mean, err := stats.Mean(deviations)
	if err != nil {
		return 0
	}
	return mean
}

// Trend возвращает наклон линейной регрессии ЧСС по времени в bpm/мин.
// Для вырожденных рядов (меньше двух точек, нулевой разброс времени) - 0.
func Trend(times, fhr []float64) float64 {
	if len(times) < 2 || len(times) != len(fhr) {
		return 0
	}
	if stat.Variance(times, nil) == 0 {
		return 0
	}

	_, slope := stat.LinearRegression(times, fhr, nil, false)
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return 0
	}
	return slope * 60
}
