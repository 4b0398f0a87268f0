package analyzer

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
)

// ReportRow - строка таблицы анализа сегмента
type ReportRow struct {
	Metric string `json:"metric"`
	Value  string `json:"value"`
	Result string `json:"result"`
}

// Report строит таблицу Metric / Value / Result для сегмента; последняя строка - итог
func (s *Service) Report(ctx context.Context, handle string, index int) ([]ReportRow, error) {
	a, err := s.SegmentAnalysis(ctx, handle, index)
	if err != nil {
		return nil, err
	}
	return BuildReport(a), nil
}

// BuildReport переводит результат анализа в строки таблицы
func BuildReport(a Analysis) []ReportRow {
	d := a.Diagnosis
	ev := a.Events

	return []ReportRow{
		{Metric: "FHR Baseline", Value: formatFloat(a.Metrics.Baseline), Result: d.BaselineStatus},
		{Metric: "Short Term Variability", Value: formatFloat(a.Metrics.STV), Result: d.VariabilityStatus},
		{Metric: "Long Term Variability", Value: formatFloat(a.Metrics.LTV), Result: d.VariabilityStatus},
		{Metric: "BPM Trend", Value: formatFloat(a.Metrics.BPMTrend)},
		{Metric: "Contractions", Value: strconv.Itoa(a.Metrics.Contractions)},
		{Metric: "Accelerations", Value: strconv.Itoa(len(ev.Accelerations)), Result: d.AccelerationStatus},
		{Metric: "Decelerations", Value: strconv.Itoa(len(ev.Decelerations)), Result: d.DecelerationStatus},
		{Metric: "Early Decelerations", Value: strconv.Itoa(len(ev.EarlyDecelerations))},
		{Metric: "Late Decelerations", Value: strconv.Itoa(len(ev.LateDecelerations))},
		{Metric: "Results", Result: d.Overall},
	}
}

// WriteTable печатает таблицу с выравниванием колонок
func WriteTable(w io.Writer, rows []ReportRow) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "Metric\tValue\tResults")
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", row.Metric, row.Value, row.Result)
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write report table: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
