package analyzer

import (
	"context"

	"github.com/Krimson/ctg-analyzer/pkg/models"
)

// RecordingStore хранит исходные ряды, чтобы открыть handle повторно после перезапуска
type RecordingStore interface {
	SaveRecording(ctx context.Context, rec *models.Recording) error
	GetRecording(ctx context.Context, handle string) (*models.Recording, error)
	DeleteRecording(ctx context.Context, handle string) error
}

// Catalog хранит метаданные загруженных записей
type Catalog interface {
	SaveEntry(ctx context.Context, entry *models.CatalogEntry) error
	ListEntries(ctx context.Context, limit, offset int) ([]models.CatalogEntry, error)
	DeleteEntry(ctx context.Context, handle string) error
}
