package models

import (
	"errors"
	"time"
)

// RawSeries - исходные колонки записи КТГ
type RawSeries struct {
	Time []float64 `json:"time"`
	FHR  []float64 `json:"fhr"`
	UC   []float64 `json:"uc"`
}

// Recording - загруженная запись, хранится в кэше для повторного открытия по handle
type Recording struct {
	Handle    string    `json:"handle"`
	Filename  string    `json:"filename"`
	Series    RawSeries `json:"series"`
	CreatedAt time.Time `json:"created_at"`
}

// CatalogEntry - строка каталога записей (только метаданные, без результатов анализа)
type CatalogEntry struct {
	Handle        string    `json:"handle"`
	Filename      string    `json:"filename"`
	Rows          int       `json:"rows"`
	SamplingRate  float64   `json:"sampling_rate"`
	TotalSegments int       `json:"total_segments"`
	CreatedAt     time.Time `json:"created_at"`
}

// RecordingSummary - сводка по открытой записи
type RecordingSummary struct {
	Handle        string         `json:"handle"`
	Filename      string         `json:"filename"`
	Rows          int            `json:"rows"`
	SamplingRate  float64        `json:"sampling_rate"`
	TotalSegments int            `json:"total_segments"`
	Verdicts      map[string]int `json:"verdicts"`
	CreatedAt     time.Time      `json:"created_at"`
}

// SegmentSummary - краткий итог по сегменту для ленты воспроизведения
type SegmentSummary struct {
	Handle        string  `json:"handle"`
	Index         int     `json:"index"`
	TotalSegments int     `json:"total_segments"`
	Start         float64 `json:"start"`
	End           float64 `json:"end"`
	Baseline      float64 `json:"baseline"`
	STV           float64 `json:"stv"`
	LTV           float64 `json:"ltv"`
	Accelerations int     `json:"accelerations"`
	Decelerations int     `json:"decelerations"`
	Overall       string  `json:"overall"`
}

// LoadResponse - ответ на загрузку записи
type LoadResponse struct {
	Handle        string  `json:"handle"`
	Filename      string  `json:"filename"`
	SamplingRate  float64 `json:"sampling_rate"`
	TotalSegments int     `json:"total_segments"`
}

// ErrorResponse - тело ответа с ошибкой
type ErrorResponse struct {
	Error string `json:"error"`
}

// Ошибки
var (
	ErrRecordingNotFound = errors.New("recording not found")
	ErrRecordingExpired  = errors.New("recording expired")
)
