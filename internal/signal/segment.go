package signal

import (
	"github.com/Krimson/ctg-analyzer/internal/detect"
)

// Segment - неизменяемое окно сигнала фиксированной длительности.
// Сокращения вычисляются один раз при создании.
type Segment struct {
	index        int
	time         []float64
	fhr          []float64
	uc           []float64
	contractions []detect.Contraction
}

func newSegment(index int, time, fhr, uc []float64) *Segment {
	s := &Segment{
		index: index,
		time:  cloneFloats(time),
		fhr:   cloneFloats(fhr),
		uc:    cloneFloats(uc),
	}
	s.contractions = detect.ExtractContractions(s.time, s.uc)
	return s
}

// Index возвращает порядковый номер сегмента в сигнале
func (s *Segment) Index() int {
	return s.index
}

// Len возвращает число отсчетов сегмента
func (s *Segment) Len() int {
	return len(s.time)
}

// Start возвращает время первого отсчета
func (s *Segment) Start() float64 {
	if len(s.time) == 0 {
		return 0
	}
	return s.time[0]
}

// End возвращает время последнего отсчета
func (s *Segment) End() float64 {
	if len(s.time) == 0 {
		return 0
	}
	return s.time[len(s.time)-1]
}

// Series возвращает копию данных сегмента
func (s *Segment) Series() Series {
	return Series{
		Time: cloneFloats(s.time),
		FHR:  cloneFloats(s.fhr),
		UC:   cloneFloats(s.uc),
	}
}

// Contractions возвращает копию списка сокращений
func (s *Segment) Contractions() []detect.Contraction {
	out := make([]detect.Contraction, len(s.contractions))
	copy(out, s.contractions)
	return out
}

// Detect запускает детектор событий на данных сегмента без копирования
func (s *Segment) Detect(d *detect.Detector) detect.EventSet {
	return d.Detect(s.time, s.fhr, s.contractions)
}

// Baseline возвращает медиану ЧСС сегмента
func (s *Segment) Baseline() float64 {
	return detect.Baseline(s.fhr)
}

// View передает срезы сегмента в функцию только для чтения.
// Функция не должна изменять или сохранять срезы.
func (s *Segment) View(fn func(time, fhr, uc []float64)) {
	fn(s.time, s.fhr, s.uc)
}
