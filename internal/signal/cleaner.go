package signal

// FillZeroFHR заменяет выпавшие отсчеты ЧСС (<= 0) линейной интерполяцией
// между соседними валидными отсчетами. На краях берется ближайшее валидное значение.
// Ряд без валидных отсчетов возвращается без изменений. Исходный ряд не изменяется.
func FillZeroFHR(s Series) (Series, int) {
	out := s.Clone()
	fhr := out.FHR

	prev := -1
	filled := 0
	for i := 0; i <= len(fhr); i++ {
		if i < len(fhr) && fhr[i] <= 0 {
			continue
		}

		// [prev+1, i) - разрыв между валидными отсчетами prev и i
		for j := prev + 1; j < i; j++ {
			switch {
			case prev < 0 && i == len(fhr):
				continue
			case prev < 0:
				fhr[j] = fhr[i]
			case i == len(fhr):
				fhr[j] = fhr[prev]
			default:
				fhr[j] = interpolate(out.Time, fhr, prev, i, j)
			}
			filled++
		}
		prev = i
	}

	return out, filled
}

func interpolate(times, values []float64, left, right, at int) float64 {
	span := times[right] - times[left]
	if span == 0 {
		// равномерно по индексу, если время не различает соседей
		ratio := float64(at-left) / float64(right-left)
		return values[left] + (values[right]-values[left])*ratio
	}
	ratio := (times[at] - times[left]) / span
	return values[left] + (values[right]-values[left])*ratio
}
