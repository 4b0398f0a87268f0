package notify

import (
	"errors"

	"github.com/Krimson/ctg-analyzer/pkg/models"
)

// Multi рассылает сводку нескольким издателям
type Multi []Publisher

// NewMulti пропускает nil-издателей
func NewMulti(publishers ...Publisher) Multi {
	m := make(Multi, 0, len(publishers))
	for _, p := range publishers {
		if p != nil {
			m = append(m, p)
		}
	}
	return m
}

// PublishSummary отправляет сводку каждому издателю; ошибки объединяются
func (m Multi) PublishSummary(summary models.RecordingSummary) error {
	var errs []error
	for _, p := range m {
		if err := p.PublishSummary(summary); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, p := range m {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
