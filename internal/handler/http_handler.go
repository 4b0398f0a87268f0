package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Krimson/ctg-analyzer/internal/analyzer"
	"github.com/Krimson/ctg-analyzer/internal/signal"
	"github.com/Krimson/ctg-analyzer/pkg/models"
)

// maxUploadMemory - лимит памяти при разборе multipart формы
const maxUploadMemory = 32 << 20

// HTTPHandler обрабатывает HTTP запросы к анализатору (Presentation Layer)
type HTTPHandler struct {
	service *analyzer.Service
	logger  *slog.Logger
}

// NewHTTPHandler создает новый HTTP обработчик
func NewHTTPHandler(service *analyzer.Service, logger *slog.Logger) *HTTPHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPHandler{
		service: service,
		logger:  logger.With("component", "http"),
	}
}

// NewRouter собирает все маршруты сервиса. ws и healthz могут быть nil.
func NewRouter(h *HTTPHandler, ws http.Handler, healthz http.Handler) *mux.Router {
	router := mux.NewRouter()
	h.RegisterRoutes(router)

	if ws != nil {
		router.Handle("/ws", ws).Methods("GET")
	}
	if healthz != nil {
		router.Handle("/healthz", healthz).Methods("GET")
	}

	router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	router.Use(enableCORS)
	return router
}

// RegisterRoutes регистрирует маршруты в роутере
func (h *HTTPHandler) RegisterRoutes(router *mux.Router) {
	api := router.PathPrefix("/api/recordings").Subrouter()

	api.HandleFunc("", h.UploadRecording).Methods("POST")
	api.HandleFunc("", h.ListRecordings).Methods("GET")
	api.HandleFunc("/{handle}", h.GetRecording).Methods("GET")
	api.HandleFunc("/{handle}", h.CloseRecording).Methods("DELETE")

	segments := api.PathPrefix("/{handle}/segments/{index:[0-9]+}").Subrouter()
	segments.HandleFunc("", h.GetSegment).Methods("GET")
	segments.HandleFunc("/series", h.GetSegmentSeries).Methods("GET")
	segments.HandleFunc("/events", h.GetSegmentEvents).Methods("GET")
	segments.HandleFunc("/metrics", h.GetSegmentMetrics).Methods("GET")
	segments.HandleFunc("/diagnosis", h.GetSegmentDiagnosis).Methods("GET")
	segments.HandleFunc("/report", h.GetSegmentReport).Methods("GET")
}

// UploadRecording загружает CSV файл записи КТГ
// @Summary Загрузить запись КТГ
// @Description Принимает CSV с колонками time, FHR, UC, режет запись на сегменты и возвращает handle
// @Tags Recordings
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV файл записи (time, FHR, UC)"
// @Success 201 {object} models.LoadResponse "Запись загружена"
// @Failure 400 {object} models.ErrorResponse "Неверный формат файла"
// @Failure 500 {object} models.ErrorResponse "Ошибка обработки"
// @Router /api/recordings [post]
func (h *HTTPHandler) UploadRecording(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(w, http.StatusBadRequest, "Failed to parse form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to get file: "+err.Error())
		return
	}
	defer file.Close()

	handle, err := h.service.LoadSignalReader(r.Context(), header.Filename, file)
	if err != nil {
		h.fail(w, err, "Failed to load recording")
		return
	}

	summary, err := h.service.Summary(r.Context(), handle)
	if err != nil {
		h.fail(w, err, "Failed to summarize recording")
		return
	}

	respondJSON(w, http.StatusCreated, models.LoadResponse{
		Handle:        handle,
		Filename:      summary.Filename,
		SamplingRate:  summary.SamplingRate,
		TotalSegments: summary.TotalSegments,
	})
}

// ListRecordings возвращает каталог записей
// @Summary Список записей
// @Tags Recordings
// @Produce json
// @Param limit query int false "Размер страницы" default(50)
// @Param offset query int false "Смещение" default(0)
// @Success 200 {object} map[string]interface{} "Каталог записей"
// @Failure 500 {object} models.ErrorResponse "Ошибка хранилища"
// @Router /api/recordings [get]
func (h *HTTPHandler) ListRecordings(w http.ResponseWriter, r *http.Request) {
	limit := getQueryInt(r, "limit", 50)
	offset := getQueryInt(r, "offset", 0)

	entries, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		h.fail(w, err, "Failed to list recordings")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"recordings": entries,
		"limit":      limit,
		"offset":     offset,
		"count":      len(entries),
	})
}

// GetRecording возвращает сводку по записи
// @Summary Сводка по записи
// @Description Частота дискретизации, число сегментов и распределение итоговых заключений
// @Tags Recordings
// @Produce json
// @Param handle path string true "Handle записи"
// @Success 200 {object} models.RecordingSummary
// @Failure 404 {object} models.ErrorResponse "Запись не найдена"
// @Router /api/recordings/{handle} [get]
func (h *HTTPHandler) GetRecording(w http.ResponseWriter, r *http.Request) {
	handle := mux.Vars(r)["handle"]

	summary, err := h.service.Summary(r.Context(), handle)
	if err != nil {
		h.fail(w, err, "Failed to get recording")
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// CloseRecording закрывает handle
// @Summary Закрыть запись
// @Tags Recordings
// @Produce json
// @Param handle path string true "Handle записи"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.ErrorResponse "Запись не найдена"
// @Router /api/recordings/{handle} [delete]
func (h *HTTPHandler) CloseRecording(w http.ResponseWriter, r *http.Request) {
	handle := mux.Vars(r)["handle"]

	if err := h.service.Close(r.Context(), handle); err != nil {
		h.fail(w, err, "Failed to close recording")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Recording closed successfully",
		"handle":  handle,
	})
}

// GetSegment возвращает полный анализ сегмента
// @Summary Анализ сегмента
// @Tags Segments
// @Produce json
// @Param handle path string true "Handle записи"
// @Param index path int true "Индекс сегмента"
// @Success 200 {object} analyzer.Analysis
// @Failure 404 {object} models.ErrorResponse "Запись или сегмент не найдены"
// @Router /api/recordings/{handle}/segments/{index} [get]
func (h *HTTPHandler) GetSegment(w http.ResponseWriter, r *http.Request) {
	handle, index, ok := h.segmentParams(w, r)
	if !ok {
		return
	}

	analysis, err := h.service.SegmentAnalysis(r.Context(), handle, index)
	if err != nil {
		h.fail(w, err, "Failed to analyze segment")
		return
	}

	respondJSON(w, http.StatusOK, analysis)
}

// GetSegmentSeries возвращает данные сегмента
// @Summary Данные сегмента
// @Tags Segments
// @Produce json
// @Param handle path string true "Handle записи"
// @Param index path int true "Индекс сегмента"
// @Success 200 {object} signal.Series
// @Failure 404 {object} models.ErrorResponse "Запись или сегмент не найдены"
// @Router /api/recordings/{handle}/segments/{index}/series [get]
func (h *HTTPHandler) GetSegmentSeries(w http.ResponseWriter, r *http.Request) {
	handle, index, ok := h.segmentParams(w, r)
	if !ok {
		return
	}

	series, err := h.service.SegmentSeries(r.Context(), handle, index)
	if err != nil {
		h.fail(w, err, "Failed to get segment series")
		return
	}

	respondJSON(w, http.StatusOK, series)
}

// GetSegmentEvents возвращает акселерации, децелерации и сокращения сегмента
// @Summary События сегмента
// @Tags Segments
// @Produce json
// @Param handle path string true "Handle записи"
// @Param index path int true "Индекс сегмента"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.ErrorResponse "Запись или сегмент не найдены"
// @Router /api/recordings/{handle}/segments/{index}/events [get]
func (h *HTTPHandler) GetSegmentEvents(w http.ResponseWriter, r *http.Request) {
	handle, index, ok := h.segmentParams(w, r)
	if !ok {
		return
	}

	events, err := h.service.SegmentEvents(r.Context(), handle, index)
	if err != nil {
		h.fail(w, err, "Failed to get segment events")
		return
	}
	contractions, err := h.service.SegmentContractions(r.Context(), handle, index)
	if err != nil {
		h.fail(w, err, "Failed to get segment contractions")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"accelerations":       events.Accelerations,
		"decelerations":       events.Decelerations,
		"early_decelerations": events.EarlyDecelerations,
		"late_decelerations":  events.LateDecelerations,
		"contractions":        contractions,
	})
}

// GetSegmentMetrics возвращает численные показатели сегмента
// @Summary Показатели сегмента
// @Description Базовая линия, STV, LTV, тренд ЧСС и число сокращений
// @Tags Segments
// @Produce json
// @Param handle path string true "Handle записи"
// @Param index path int true "Индекс сегмента"
// @Success 200 {object} analyzer.Metrics
// @Failure 404 {object} models.ErrorResponse "Запись или сегмент не найдены"
// @Router /api/recordings/{handle}/segments/{index}/metrics [get]
func (h *HTTPHandler) GetSegmentMetrics(w http.ResponseWriter, r *http.Request) {
	handle, index, ok := h.segmentParams(w, r)
	if !ok {
		return
	}

	metrics, err := h.service.SegmentMetrics(r.Context(), handle, index)
	if err != nil {
		h.fail(w, err, "Failed to get segment metrics")
		return
	}

	respondJSON(w, http.StatusOK, metrics)
}

// GetSegmentDiagnosis возвращает заключение по сегменту
// @Summary Заключение по сегменту
// @Tags Segments
// @Produce json
// @Param handle path string true "Handle записи"
// @Param index path int true "Индекс сегмента"
// @Success 200 {object} diagnosis.Result
// @Failure 404 {object} models.ErrorResponse "Запись или сегмент не найдены"
// @Router /api/recordings/{handle}/segments/{index}/diagnosis [get]
func (h *HTTPHandler) GetSegmentDiagnosis(w http.ResponseWriter, r *http.Request) {
	handle, index, ok := h.segmentParams(w, r)
	if !ok {
		return
	}

	result, err := h.service.SegmentDiagnosis(r.Context(), handle, index)
	if err != nil {
		h.fail(w, err, "Failed to get segment diagnosis")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetSegmentReport возвращает таблицу анализа сегмента
// @Summary Таблица анализа
// @Description Строки Metric / Value / Results. С format=text отдает выровненную текстовую таблицу.
// @Tags Segments
// @Produce json
// @Produce plain
// @Param handle path string true "Handle записи"
// @Param index path int true "Индекс сегмента"
// @Param format query string false "json или text" default(json)
// @Success 200 {array} analyzer.ReportRow
// @Failure 404 {object} models.ErrorResponse "Запись или сегмент не найдены"
// @Router /api/recordings/{handle}/segments/{index}/report [get]
func (h *HTTPHandler) GetSegmentReport(w http.ResponseWriter, r *http.Request) {
	handle, index, ok := h.segmentParams(w, r)
	if !ok {
		return
	}

	rows, err := h.service.Report(r.Context(), handle, index)
	if err != nil {
		h.fail(w, err, "Failed to build segment report")
		return
	}

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if err := analyzer.WriteTable(w, rows); err != nil {
			h.logger.Error("failed to write report table", "error", err)
		}
		return
	}

	respondJSON(w, http.StatusOK, rows)
}

// ===== Утилиты =====

func (h *HTTPHandler) segmentParams(w http.ResponseWriter, r *http.Request) (string, int, bool) {
	vars := mux.Vars(r)
	index, err := strconv.Atoi(vars["index"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid segment index")
		return "", 0, false
	}
	return vars["handle"], index, true
}

// fail переводит ошибку сервиса в HTTP статус
func (h *HTTPHandler) fail(w http.ResponseWriter, err error, message string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(message, "error", err)
	} else {
		h.logger.Debug(message, "status", status, "error", err)
	}
	respondError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, signal.ErrFormat), errors.Is(err, signal.ErrDegenerateInput):
		return http.StatusBadRequest
	case errors.Is(err, analyzer.ErrHandleNotFound), errors.Is(err, signal.ErrIndexOutOfRange):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, models.ErrorResponse{Error: message})
}

func getQueryInt(r *http.Request, key string, defaultValue int) int {
	valueStr := r.URL.Query().Get(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			return
		}

		next.ServeHTTP(w, r)
	})
}
