// Package notify публикует сводки по загруженным записям в MQTT.
package notify

import (
	"encoding/json"
	"time"

	"github.com/Krimson/ctg-analyzer/pkg/models"
)

// DefaultTopic - топик сводок по записям
const DefaultTopic = "ctg/analyzer/recordings"

// Publisher публикует сводку по записи
type Publisher interface {
	PublishSummary(summary models.RecordingSummary) error
	Close() error
}

// Payload - структура MQTT-сообщения
type Payload struct {
	Recording RecordingPayload `json:"recording"`
}

// RecordingPayload - сводка по записи
type RecordingPayload struct {
	Timestamp     string         `json:"timestamp"`
	Handle        string         `json:"handle"`
	Filename      string         `json:"filename"`
	SamplingRate  float64        `json:"sampling_rate"`
	TotalSegments int            `json:"total_segments"`
	Verdicts      map[string]int `json:"verdicts"`
}

// FormatPayload сериализует сводку в JSON
func FormatPayload(summary models.RecordingSummary) ([]byte, error) {
	verdicts := summary.Verdicts
	if verdicts == nil {
		verdicts = map[string]int{}
	}

	payload := Payload{
		Recording: RecordingPayload{
			Timestamp:     summary.CreatedAt.UTC().Format(time.RFC3339),
			Handle:        summary.Handle,
			Filename:      summary.Filename,
			SamplingRate:  summary.SamplingRate,
			TotalSegments: summary.TotalSegments,
			Verdicts:      verdicts,
		},
	}
	return json.Marshal(payload)
}

// Nop ничего не публикует; используется, когда брокер не настроен
type Nop struct{}

func (Nop) PublishSummary(models.RecordingSummary) error {
	return nil
}

func (Nop) Close() error {
	return nil
}
