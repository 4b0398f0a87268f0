package signal

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Имена обязательных колонок (сравнение без учета регистра)
const (
	ColumnTime = "time"
	ColumnFHR  = "fhr"
	ColumnUC   = "uc"
)

// Series - выровненные по индексу колонки входного файла
type Series struct {
	Time []float64 `json:"time"`
	FHR  []float64 `json:"fhr"`
	UC   []float64 `json:"uc"`
}

// Len возвращает число строк ряда
func (s Series) Len() int {
	return len(s.Time)
}

// Clone создает независимую копию ряда
func (s Series) Clone() Series {
	return Series{
		Time: cloneFloats(s.Time),
		FHR:  cloneFloats(s.FHR),
		UC:   cloneFloats(s.UC),
	}
}

// ReadFile открывает CSV-файл и разбирает его
func ReadFile(path string) (Series, error) {
	file, err := os.Open(path)
	if err != nil {
		return Series{}, fmt.Errorf("failed to open signal file %s: %w", path, err)
	}
	defer file.Close()

	series, err := Parse(file)
	if err != nil {
		return Series{}, fmt.Errorf("failed to parse signal file %s: %w", path, err)
	}
	return series, nil
}

// Parse читает CSV с заголовком и колонками time, FHR, UC.
// Лишние колонки игнорируются. Отсутствующая колонка, нечисловое значение,
// NaN или бесконечность - FormatError.
func Parse(r io.Reader) (Series, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Series{}, &FormatError{Reason: "empty input, header expected"}
		}
		return Series{}, &FormatError{Reason: "failed to read header", Err: err}
	}

	columns := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, exists := columns[name]; !exists {
			columns[name] = i
		}
	}

	required := []string{ColumnTime, ColumnFHR, ColumnUC}
	index := make([]int, len(required))
	for i, name := range required {
		idx, ok := columns[name]
		if !ok {
			return Series{}, &FormatError{Column: name, Reason: "missing required column"}
		}
		index[i] = idx
	}

	series := Series{
		Time: make([]float64, 0),
		FHR:  make([]float64, 0),
		UC:   make([]float64, 0),
	}
	targets := []*[]float64{&series.Time, &series.FHR, &series.UC}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Series{}, &FormatError{Reason: "malformed csv record", Err: err}
		}
		if isBlank(record) {
			continue
		}
		line, _ := reader.FieldPos(0)

		for i, idx := range index {
			if idx >= len(record) {
				return Series{}, &FormatError{Line: line, Column: required[i], Reason: "value is missing"}
			}

			value, err := strconv.ParseFloat(strings.TrimSpace(record[idx]), 64)
			if err != nil {
				return Series{}, &FormatError{Line: line, Column: required[i], Reason: "value is not numeric", Err: err}
			}
			if math.IsNaN(value) || math.IsInf(value, 0) {
				return Series{}, &FormatError{Line: line, Column: required[i], Reason: "value is not finite"}
			}
			*targets[i] = append(*targets[i], value)
		}
	}

	return series, nil
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

func cloneFloats(src []float64) []float64 {
	dst := make([]float64, len(src))
	copy(dst, src)
	return dst
}
