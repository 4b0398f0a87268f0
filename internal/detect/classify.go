package detect

// Classify соотносит интервалы с сокращениями.
// Для каждого интервала берется первое пересекающееся сокращение:
// интервал ранний, если начался не позже пика, иначе поздний.
// Интервал без пересечений не попадает ни в один список.
func Classify(intervals []Interval, contractions []Contraction) (early, late []Interval) {
	early = make([]Interval, 0)
	late = make([]Interval, 0)

	for _, iv := range intervals {
		for _, c := range contractions {
			if !c.Overlaps(iv) {
				continue
			}

			if iv.Start <= c.Peak {
				early = append(early, iv)
			} else {
				late = append(late, iv)
			}
			break
		}
	}

	return early, late
}
