package detect

// Interval - временной интервал события в секундах (границы включительно)
type Interval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration возвращает длительность интервала в секундах
func (iv Interval) Duration() float64 {
	return iv.End - iv.Start
}

// Contraction - маточное сокращение: начало, пик и конец в секундах
type Contraction struct {
	Start float64 `json:"start"`
	Peak  float64 `json:"peak"`
	End   float64 `json:"end"`
}

// Duration возвращает длительность сокращения в секундах
func (c Contraction) Duration() float64 {
	return c.End - c.Start
}

// Overlaps проверяет пересечение сокращения с интервалом [start, end]
func (c Contraction) Overlaps(iv Interval) bool {
	return iv.Start <= c.End && iv.End >= c.Start
}

// EventSet - результат одного вызова детектора
type EventSet struct {
	Accelerations      []Interval `json:"accelerations"`
	Decelerations      []Interval `json:"decelerations"`
	EarlyDecelerations []Interval `json:"early_decelerations"`
	LateDecelerations  []Interval `json:"late_decelerations"`
}

// Clone создает независимую копию набора событий
func (es EventSet) Clone() EventSet {
	return EventSet{
		Accelerations:      cloneIntervals(es.Accelerations),
		Decelerations:      cloneIntervals(es.Decelerations),
		EarlyDecelerations: cloneIntervals(es.EarlyDecelerations),
		LateDecelerations:  cloneIntervals(es.LateDecelerations),
	}
}

func cloneIntervals(src []Interval) []Interval {
	dst := make([]Interval, len(src))
	copy(dst, src)
	return dst
}
