package synth

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Krimson/ctg-analyzer/internal/signal"
)

// WriteCSV пишет запись в формате time,FHR,UC
func WriteCSV(w io.Writer, series signal.Series) error {
	if series.Len() != len(series.FHR) || series.Len() != len(series.UC) {
		return fmt.Errorf("column length mismatch: time=%d fhr=%d uc=%d", len(series.Time), len(series.FHR), len(series.UC))
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"time", "FHR", "UC"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i := range series.Time {
		record := []string{
			formatValue(series.Time[i]),
			formatValue(series.FHR[i]),
			formatValue(series.UC[i]),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteFile создает файл (и директорию) и пишет в него запись
func WriteFile(path string, series signal.Series) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", path, err)
	}

	if err := WriteCSV(file, series); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
