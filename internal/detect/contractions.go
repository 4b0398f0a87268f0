package detect

// ExtractContractions выделяет сокращения из канала UC.
// Базовая линия - медиана UC. Сокращение начинается на первом отсчете выше базовой линии
// и заканчивается на первом отсчете, вернувшемся к ней (или на последнем отсчете ряда).
// Вырожденные сокращения, у которых пик совпадает с границей, отбрасываются.
func ExtractContractions(times, uc []float64) []Contraction {
	contractions := make([]Contraction, 0)

	n := len(uc)
	if n == 0 || len(times) != n {
		return contractions
	}

	baseline := Baseline(uc)
	above := func(i int) bool { return uc[i] > baseline }

	for _, run := range Runs(n, above) {
		peak := run.First
		for i := run.First + 1; i <= run.Last; i++ {
			if uc[i] > uc[peak] {
				peak = i
			}
		}

		end := run.Last
		if run.Last+1 < n {
			end = run.Last + 1
		}

		c := Contraction{
			Start: times[run.First],
			Peak:  times[peak],
			End:   times[end],
		}
		if c.Peak > c.Start && c.End > c.Peak {
			contractions = append(contractions, c)
		}
	}

	return contractions
}
