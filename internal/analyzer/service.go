package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Krimson/ctg-analyzer/internal/detect"
	"github.com/Krimson/ctg-analyzer/internal/diagnosis"
	"github.com/Krimson/ctg-analyzer/internal/notify"
	"github.com/Krimson/ctg-analyzer/internal/signal"
	"github.com/Krimson/ctg-analyzer/internal/variability"
	"github.com/Krimson/ctg-analyzer/pkg/models"
)

// ErrHandleNotFound - неизвестный или закрытый handle
var ErrHandleNotFound = errors.New("handle not found")

// Metrics - численные показатели сегмента
type Metrics struct {
	Baseline     float64 `json:"baseline"`
	STV          float64 `json:"stv"`
	LTV          float64 `json:"ltv"`
	BPMTrend     float64 `json:"bpm_trend"`
	Contractions int     `json:"contractions"`
}

// Analysis - полный результат анализа сегмента
type Analysis struct {
	Index     int              `json:"index"`
	Start     float64          `json:"start"`
	End       float64          `json:"end"`
	Events    detect.EventSet  `json:"events"`
	Metrics   Metrics          `json:"metrics"`
	Diagnosis diagnosis.Result `json:"diagnosis"`
}

type recording struct {
	handle    string
	filename  string
	signal    *signal.Signal
	createdAt time.Time

	// *signal.Segment -> *Analysis, живет вместе с записью
	memo sync.Map
}

// Service - граница ядра анализа: запросы по (handle, index) без состояния курсора
type Service struct {
	opts     Options
	detector *detect.Detector
	engine   *diagnosis.Engine
	store    RecordingStore
	catalog  Catalog
	notifier notify.Publisher
	logger   *slog.Logger

	mu         sync.RWMutex
	recordings map[string]*recording

	now       func() time.Time
	newHandle func() string
}

// NewService создает сервис анализа. store, catalog и notifier необязательны.
func NewService(opts Options, store RecordingStore, catalog Catalog, notifier notify.Publisher, logger *slog.Logger) (*Service, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analyzer options: %w", err)
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		opts:       opts,
		detector:   detect.NewDetector(opts.Detect),
		engine:     diagnosis.NewEngine(opts.Thresholds, opts.Terminology),
		store:      store,
		catalog:    catalog,
		notifier:   notifier,
		logger:     logger.With("component", "analyzer"),
		recordings: make(map[string]*recording),
		now:        time.Now,
		newHandle:  func() string { return uuid.New().String() },
	}, nil
}

// Options возвращает параметры анализа
func (s *Service) Options() Options {
	return s.opts
}

// LoadSignal загружает CSV-файл и возвращает handle записи
func (s *Service) LoadSignal(ctx context.Context, path string) (string, error) {
	series, err := signal.ReadFile(path)
	if err != nil {
		return "", err
	}
	return s.load(ctx, filepath.Base(path), series)
}

// LoadSignalReader разбирает CSV из потока, режет на сегменты и регистрирует запись
func (s *Service) LoadSignalReader(ctx context.Context, name string, r io.Reader) (string, error) {
	series, err := signal.Parse(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return s.load(ctx, name, series)
}

func (s *Service) load(ctx context.Context, name string, series signal.Series) (string, error) {
	rec, err := s.build(s.newHandle(), name, series, s.now().UTC())
	if err != nil {
		return "", err
	}

	s.register(rec)
	s.logger.Info("signal loaded",
		"handle", rec.handle,
		"filename", name,
		"rows", rec.signal.Rows(),
		"sampling_rate", rec.signal.SamplingRate(),
		"segments", rec.signal.TotalSegments(),
	)

	s.persist(ctx, rec, series)

	summary := s.summarize(rec)
	if err := s.notifier.PublishSummary(summary); err != nil {
		s.logger.Warn("failed to publish recording summary", "handle", rec.handle, "error", err)
	}

	return rec.handle, nil
}

func (s *Service) build(handle, name string, series signal.Series, createdAt time.Time) (*recording, error) {
	if s.opts.CleanZeroFHR {
		var filled int
		series, filled = signal.FillZeroFHR(series)
		if filled > 0 {
			s.logger.Debug("zero FHR samples interpolated", "filename", name, "samples", filled)
		}
	}

	sig, err := signal.New(series, s.opts.SegmentDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to segment %s: %w", name, err)
	}

	return &recording{
		handle:    handle,
		filename:  name,
		signal:    sig,
		createdAt: createdAt,
	}, nil
}

func (s *Service) register(rec *recording) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordings[rec.handle] = rec
}

// persist сохраняет исходный ряд и строку каталога; ошибки хранилищ не прерывают загрузку
func (s *Service) persist(ctx context.Context, rec *recording, series signal.Series) {
	if s.store != nil {
		raw := &models.Recording{
			Handle:   rec.handle,
			Filename: rec.filename,
			Series: models.RawSeries{
				Time: series.Time,
				FHR:  series.FHR,
				UC:   series.UC,
			},
			CreatedAt: rec.createdAt,
		}
		if err := s.store.SaveRecording(ctx, raw); err != nil {
			s.logger.Warn("failed to cache recording", "handle", rec.handle, "error", err)
		}
	}

	if s.catalog != nil {
		entry := &models.CatalogEntry{
			Handle:        rec.handle,
			Filename:      rec.filename,
			Rows:          rec.signal.Rows(),
			SamplingRate:  rec.signal.SamplingRate(),
			TotalSegments: rec.signal.TotalSegments(),
			CreatedAt:     rec.createdAt,
		}
		if err := s.catalog.SaveEntry(ctx, entry); err != nil {
			s.logger.Warn("failed to save catalog entry", "handle", rec.handle, "error", err)
		}
	}
}

// lookup находит запись по handle; при промахе пытается восстановить ее из хранилища
func (s *Service) lookup(ctx context.Context, handle string) (*recording, error) {
	s.mu.RLock()
	rec, ok := s.recordings[handle]
	s.mu.RUnlock()
	if ok {
		return rec, nil
	}

	if s.store == nil {
		return nil, fmt.Errorf("%w: %s", ErrHandleNotFound, handle)
	}

	raw, err := s.store.GetRecording(ctx, handle)
	if err != nil {
		if errors.Is(err, models.ErrRecordingNotFound) || errors.Is(err, models.ErrRecordingExpired) {
			return nil, fmt.Errorf("%w: %s", ErrHandleNotFound, handle)
		}
		return nil, fmt.Errorf("failed to restore recording %s: %w", handle, err)
	}

	series := signal.Series{Time: raw.Series.Time, FHR: raw.Series.FHR, UC: raw.Series.UC}
	rec, err = s.build(raw.Handle, raw.Filename, series, raw.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild recording %s: %w", handle, err)
	}

	s.mu.Lock()
	if existing, ok := s.recordings[handle]; ok {
		rec = existing
	} else {
		s.recordings[handle] = rec
	}
	s.mu.Unlock()

	s.logger.Info("recording restored from store", "handle", handle, "segments", rec.signal.TotalSegments())
	return rec, nil
}

func (s *Service) segment(ctx context.Context, handle string, index int) (*recording, *signal.Segment, error) {
	rec, err := s.lookup(ctx, handle)
	if err != nil {
		return nil, nil, err
	}
	seg, err := rec.signal.Segment(index)
	if err != nil {
		return nil, nil, err
	}
	return rec, seg, nil
}

// TotalSegments возвращает число сегментов записи
func (s *Service) TotalSegments(ctx context.Context, handle string) (int, error) {
	rec, err := s.lookup(ctx, handle)
	if err != nil {
		return 0, err
	}
	return rec.signal.TotalSegments(), nil
}

// SegmentSeries возвращает копию данных сегмента
func (s *Service) SegmentSeries(ctx context.Context, handle string, index int) (signal.Series, error) {
	_, seg, err := s.segment(ctx, handle, index)
	if err != nil {
		return signal.Series{}, err
	}
	return seg.Series(), nil
}

// SegmentEvents возвращает события сегмента
func (s *Service) SegmentEvents(ctx context.Context, handle string, index int) (detect.EventSet, error) {
	rec, seg, err := s.segment(ctx, handle, index)
	if err != nil {
		return detect.EventSet{}, err
	}
	return s.analyze(rec, seg).Events.Clone(), nil
}

// SegmentContractions возвращает сокращения сегмента
func (s *Service) SegmentContractions(ctx context.Context, handle string, index int) ([]detect.Contraction, error) {
	_, seg, err := s.segment(ctx, handle, index)
	if err != nil {
		return nil, err
	}
	return seg.Contractions(), nil
}

// SegmentMetrics возвращает показатели сегмента
func (s *Service) SegmentMetrics(ctx context.Context, handle string, index int) (Metrics, error) {
	rec, seg, err := s.segment(ctx, handle, index)
	if err != nil {
		return Metrics{}, err
	}
	return s.analyze(rec, seg).Metrics, nil
}

// SegmentDiagnosis возвращает заключение по сегменту
func (s *Service) SegmentDiagnosis(ctx context.Context, handle string, index int) (diagnosis.Result, error) {
	rec, seg, err := s.segment(ctx, handle, index)
	if err != nil {
		return diagnosis.Result{}, err
	}
	return s.analyze(rec, seg).Diagnosis, nil
}

// SegmentAnalysis возвращает события, показатели и заключение одним вызовом
func (s *Service) SegmentAnalysis(ctx context.Context, handle string, index int) (Analysis, error) {
	rec, seg, err := s.segment(ctx, handle, index)
	if err != nil {
		return Analysis{}, err
	}
	a := *s.analyze(rec, seg)
	a.Events = a.Events.Clone()
	return a, nil
}

// analyze вычисляет результат сегмента один раз и кэширует его по указателю на сегмент
func (s *Service) analyze(rec *recording, seg *signal.Segment) *Analysis {
	if cached, ok := rec.memo.Load(seg); ok {
		return cached.(*Analysis)
	}

	events := seg.Detect(s.detector)
	contractions := seg.Contractions()
	_, lateAccelerations := detect.Classify(events.Accelerations, contractions)

	var metrics Metrics
	seg.View(func(times, fhr, _ []float64) {
		metrics = Metrics{
			Baseline:     seg.Baseline(),
			STV:          variability.ShortTerm(fhr),
			LTV:          variability.LongTerm(fhr, s.opts.LTVWindow),
			BPMTrend:     variability.Trend(times, fhr),
			Contractions: len(contractions),
		}
	})

	result := s.engine.Diagnose(diagnosis.Findings{
		Baseline:              metrics.Baseline,
		STV:                   metrics.STV,
		LTV:                   metrics.LTV,
		HasAccelerations:      len(events.Accelerations) > 0,
		HasLateAccelerations:  len(lateAccelerations) > 0,
		HasDecelerations:      len(events.Decelerations) > 0,
		HasEarlyDecelerations: len(events.EarlyDecelerations) > 0,
		HasLateDecelerations:  len(events.LateDecelerations) > 0,
	})

	a := &Analysis{
		Index:     seg.Index(),
		Start:     seg.Start(),
		End:       seg.End(),
		Events:    events,
		Metrics:   metrics,
		Diagnosis: result,
	}

	actual, _ := rec.memo.LoadOrStore(seg, a)
	return actual.(*Analysis)
}

// Summary возвращает сводку по записи с распределением итоговых заключений
func (s *Service) Summary(ctx context.Context, handle string) (models.RecordingSummary, error) {
	rec, err := s.lookup(ctx, handle)
	if err != nil {
		return models.RecordingSummary{}, err
	}
	return s.summarize(rec), nil
}

func (s *Service) summarize(rec *recording) models.RecordingSummary {
	verdicts := make(map[string]int)
	for i := 0; i < rec.signal.TotalSegments(); i++ {
		seg, err := rec.signal.Segment(i)
		if err != nil {
			continue
		}
		verdicts[s.analyze(rec, seg).Diagnosis.Overall]++
	}

	return models.RecordingSummary{
		Handle:        rec.handle,
		Filename:      rec.filename,
		Rows:          rec.signal.Rows(),
		SamplingRate:  rec.signal.SamplingRate(),
		TotalSegments: rec.signal.TotalSegments(),
		Verdicts:      verdicts,
		CreatedAt:     rec.createdAt,
	}
}

// SegmentSummary возвращает краткий итог по сегменту
func (s *Service) SegmentSummary(ctx context.Context, handle string, index int) (models.SegmentSummary, error) {
	rec, err := s.lookup(ctx, handle)
	if err != nil {
		return models.SegmentSummary{}, err
	}
	seg, err := rec.signal.Segment(index)
	if err != nil {
		return models.SegmentSummary{}, err
	}

	a := s.analyze(rec, seg)
	return models.SegmentSummary{
		Handle:        handle,
		Index:         index,
		TotalSegments: rec.signal.TotalSegments(),
		Start:         a.Start,
		End:           a.End,
		Baseline:      a.Metrics.Baseline,
		STV:           a.Metrics.STV,
		LTV:           a.Metrics.LTV,
		Accelerations: len(a.Events.Accelerations),
		Decelerations: len(a.Events.Decelerations),
		Overall:       a.Diagnosis.Overall,
	}, nil
}

// List возвращает каталог записей; без каталога - открытые в памяти записи
func (s *Service) List(ctx context.Context, limit, offset int) ([]models.CatalogEntry, error) {
	if s.catalog != nil {
		entries, err := s.catalog.ListEntries(ctx, limit, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to list recordings: %w", err)
		}
		return entries, nil
	}

	s.mu.RLock()
	entries := make([]models.CatalogEntry, 0, len(s.recordings))
	for _, rec := range s.recordings {
		entries = append(entries, models.CatalogEntry{
			Handle:        rec.handle,
			Filename:      rec.filename,
			Rows:          rec.signal.Rows(),
			SamplingRate:  rec.signal.SamplingRate(),
			TotalSegments: rec.signal.TotalSegments(),
			CreatedAt:     rec.createdAt,
		})
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].Handle < entries[j].Handle
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})

	if offset < 0 {
		offset = 0
	}
	if offset >= len(entries) {
		return make([]models.CatalogEntry, 0), nil
	}
	entries = entries[offset:]
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}

// Close закрывает handle и удаляет запись из хранилищ
func (s *Service) Close(ctx context.Context, handle string) error {
	s.mu.Lock()
	_, ok := s.recordings[handle]
	delete(s.recordings, handle)
	s.mu.Unlock()

	if !ok {
		if s.store == nil {
			return fmt.Errorf("%w: %s", ErrHandleNotFound, handle)
		}
		if _, err := s.store.GetRecording(ctx, handle); err != nil {
			if errors.Is(err, models.ErrRecordingNotFound) || errors.Is(err, models.ErrRecordingExpired) {
				return fmt.Errorf("%w: %s", ErrHandleNotFound, handle)
			}
			return fmt.Errorf("failed to check recording %s: %w", handle, err)
		}
	}

	if s.store != nil {
		if err := s.store.DeleteRecording(ctx, handle); err != nil {
			return fmt.Errorf("failed to delete recording %s: %w", handle, err)
		}
	}
	if s.catalog != nil {
		if err := s.catalog.DeleteEntry(ctx, handle); err != nil {
			return fmt.Errorf("failed to delete catalog entry %s: %w", handle, err)
		}
	}

	s.logger.Info("recording closed", "handle", handle)
	return nil
}

// OpenHandles возвращает число записей, открытых в памяти
func (s *Service) OpenHandles() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.recordings)
}
