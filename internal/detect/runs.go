package detect

import (
	"github.com/montanaflynn/stats"
)

// Run - максимальная серия подряд идущих отсчетов [First, Last], удовлетворяющих предикату
type Run struct {
	First int
	Last  int
}

// Runs сканирует n отсчетов слева направо и возвращает непересекающиеся серии,
// на которых выполняется pred. Отсчет, вошедший в серию, повторно не рассматривается.
func Runs(n int, pred func(i int) bool) []Run {
	var runs []Run

	i := 0
	for i < n {
		if !pred(i) {
			i++
			continue
		}

		j := i
		for j+1 < n && pred(j+1) {
			j++
		}

		runs = append(runs, Run{First: i, Last: j})
		i = j + 1
	}

	return runs
}

// Intervals переводит серии в интервалы времени и оставляет только те,
// чья длительность лежит в [minDuration, maxDuration).
// Серия, не закрывшаяся до конца ряда, закрывается на последнем отсчете.
func Intervals(times []float64, pred func(i int) bool, minDuration, maxDuration float64) []Interval {
	intervals := make([]Interval, 0)

	for _, run := range Runs(len(times), pred) {
		iv := Interval{Start: times[run.First], End: times[run.Last]}
		duration := iv.Duration()

		// Отброшенная серия не пересматривается: курсор уже за ней
		if duration <= 0 || duration < minDuration || duration >= maxDuration {
			continue
		}
		intervals = append(intervals, iv)
	}

	return intervals
}

// Baseline возвращает медиану значений (0 для пустого ряда)
func Baseline(values []float64) float64 {
	median, err := stats.Median(values)
	if err != nil {
		return 0
	}
	return median
}
