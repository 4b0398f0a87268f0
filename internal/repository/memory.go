package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Krimson/ctg-analyzer/pkg/models"
)

// MemoryStore - хранилище записей в памяти, заменяет Redis без внешних зависимостей
type MemoryStore struct {
	recordings map[string]memoryItem
	mutex      sync.RWMutex
	ttl        time.Duration
	now        func() time.Time
}

type memoryItem struct {
	recording models.Recording
	expiresAt time.Time
}

// NewMemoryStore создает хранилище; ttl <= 0 - без истечения
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		recordings: make(map[string]memoryItem),
		ttl:        ttl,
		now:        time.Now,
	}
}

func (m *MemoryStore) SaveRecording(ctx context.Context, rec *models.Recording) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	item := memoryItem{recording: *rec}
	item.recording.Series = models.RawSeries{
		Time: append([]float64(nil), rec.Series.Time...),
		FHR:  append([]float64(nil), rec.Series.FHR...),
		UC:   append([]float64(nil), rec.Series.UC...),
	}
	if m.ttl > 0 {
		item.expiresAt = m.now().Add(m.ttl)
	}

	m.recordings[rec.Handle] = item
	return nil
}

func (m *MemoryStore) GetRecording(ctx context.Context, handle string) (*models.Recording, error) {
	m.mutex.RLock()
	item, exists := m.recordings[handle]
	m.mutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", models.ErrRecordingNotFound, handle)
	}
	if !item.expiresAt.IsZero() && m.now().After(item.expiresAt) {
		m.mutex.Lock()
		delete(m.recordings, handle)
		m.mutex.Unlock()
		return nil, fmt.Errorf("%w: %s", models.ErrRecordingExpired, handle)
	}

	rec := item.recording
	return &rec, nil
}

func (m *MemoryStore) DeleteRecording(ctx context.Context, handle string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	delete(m.recordings, handle)
	return nil
}

func (m *MemoryStore) CheckConnection(ctx context.Context) error {
	return nil
}

// Len возвращает число хранимых записей
func (m *MemoryStore) Len() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.recordings)
}

func (m *MemoryStore) Close() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.recordings = make(map[string]memoryItem)
	return nil
}

// MemoryCatalog - каталог записей в памяти, заменяет PostgreSQL
type MemoryCatalog struct {
	entries map[string]models.CatalogEntry
	mutex   sync.RWMutex
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		entries: make(map[string]models.CatalogEntry),
	}
}

func (c *MemoryCatalog) SaveEntry(ctx context.Context, entry *models.CatalogEntry) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[entry.Handle] = *entry
	return nil
}

func (c *MemoryCatalog) GetEntry(ctx context.Context, handle string) (*models.CatalogEntry, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.entries[handle]
	if !exists {
		return nil, fmt.Errorf("%w: %s", models.ErrRecordingNotFound, handle)
	}
	return &entry, nil
}

// ListEntries возвращает записи от новых к старым
func (c *MemoryCatalog) ListEntries(ctx context.Context, limit, offset int) ([]models.CatalogEntry, error) {
	c.mutex.RLock()
	entries := make([]models.CatalogEntry, 0, len(c.entries))
	for _, entry := range c.entries {
		entries = append(entries, entry)
	}
	c.mutex.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].Handle < entries[j].Handle
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})

	if offset >= len(entries) {
		return make([]models.CatalogEntry, 0), nil
	}
	entries = entries[max(offset, 0):]
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}

func (c *MemoryCatalog) DeleteEntry(ctx context.Context, handle string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.entries, handle)
	return nil
}

func (c *MemoryCatalog) CheckConnection(ctx context.Context) error {
	return nil
}

func (c *MemoryCatalog) Close() error {
	return nil
}
