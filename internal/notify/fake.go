package notify

import (
	"sync"

	"github.com/Krimson/ctg-analyzer/pkg/models"
)

// FakePublisher запоминает опубликованные сводки для тестов
type FakePublisher struct {
	mu        sync.Mutex
	Summaries []models.RecordingSummary
	Payloads  [][]byte
	Err       error
	Closed    bool
}

func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

func (f *FakePublisher) PublishSummary(summary models.RecordingSummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Err != nil {
		return f.Err
	}

	payload, err := FormatPayload(summary)
	if err != nil {
		return err
	}
	f.Summaries = append(f.Summaries, summary)
	f.Payloads = append(f.Payloads, payload)
	return nil
}

// Count возвращает число опубликованных сводок
func (f *FakePublisher) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Summaries)
}

func (f *FakePublisher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}
