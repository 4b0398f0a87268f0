package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Krimson/ctg-analyzer/internal/analyzer"
	"github.com/Krimson/ctg-analyzer/internal/notify"
	"github.com/Krimson/ctg-analyzer/internal/repository"
	"github.com/Krimson/ctg-analyzer/pkg/models"
)

// flatCSV - запись с постоянной ЧСС 140 и UC 20 при 4 Гц
func flatCSV(rows int) string {
	var b strings.Builder
	b.WriteString("time,FHR,UC\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "%.2f,140,20\n", float64(i)*0.25)
	}
	return b.String()
}

func newTestRouter(t *testing.T) (http.Handler, *analyzer.Service) {
	t.Helper()
	svc, err := analyzer.NewService(
		analyzer.DefaultOptions(),
		repository.NewMemoryStore(0),
		repository.NewMemoryCatalog(),
		notify.NewFakePublisher(),
		nil,
	)
	require.NoError(t, err)

	healthz := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return NewRouter(NewHTTPHandler(svc, nil), nil, healthz), svc
}

func uploadRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/recordings", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func do(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func upload(t *testing.T, router http.Handler, rows int) models.LoadResponse {
	t.Helper()
	rec := do(router, uploadRequest(t, "ctg.csv", flatCSV(rows)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp models.LoadResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestUploadRecording(t *testing.T) {
	router, _ := newTestRouter(t)

	resp := upload(t, router, 1000)

	assert.NotEmpty(t, resp.Handle)
	assert.Equal(t, "ctg.csv", resp.Filename)
	assert.InDelta(t, 4.0, resp.SamplingRate, 1e-9)
	assert.Equal(t, 2, resp.TotalSegments)
}

func TestUploadRecording_BadFormat(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(router, uploadRequest(t, "bad.csv", "time,FHR\n0,140\n"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp models.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Contains(t, resp.Error, "invalid signal format")
}

func TestUploadRecording_NonFiniteValue(t *testing.T) {
	router, svc := newTestRouter(t)
	content := strings.Replace(flatCSV(480), "\n1.00,140,20\n", "\n1.00,NaN,20\n", 1)
	require.Contains(t, content, "NaN")

	rec := do(router, uploadRequest(t, "nan.csv", content))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "not finite")
	assert.Equal(t, 0, svc.OpenHandles())
}

func TestUploadRecording_Degenerate(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(router, uploadRequest(t, "one.csv", "time,FHR,UC\n0,140,10\n"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadRecording_MissingFile(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/recordings", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")

	assert.Equal(t, http.StatusBadRequest, do(router, req).Code)
}

func TestGetRecordingAndList(t *testing.T) {
	router, _ := newTestRouter(t)
	loaded := upload(t, router, 480)

	rec := do(router, httptest.NewRequest(http.MethodGet, "/api/recordings/"+loaded.Handle, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var summary models.RecordingSummary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&summary))
	assert.Equal(t, loaded.Handle, summary.Handle)
	assert.Equal(t, 1, summary.TotalSegments)

	rec = do(router, httptest.NewRequest(http.MethodGet, "/api/recordings?limit=10", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Recordings []models.CatalogEntry `json:"recordings"`
		Count      int                   `json:"count"`
		Limit      int                   `json:"limit"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.Equal(t, 1, list.Count)
	assert.Equal(t, 10, list.Limit)
	assert.Equal(t, loaded.Handle, list.Recordings[0].Handle)
}

func TestSegmentEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)
	loaded := upload(t, router, 480)
	base := "/api/recordings/" + loaded.Handle + "/segments/0"

	rec := do(router, httptest.NewRequest(http.MethodGet, base+"/series", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var series struct {
		Time []float64 `json:"time"`
		FHR  []float64 `json:"fhr"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&series))
	assert.Len(t, series.Time, 480)

	rec = do(router, httptest.NewRequest(http.MethodGet, base+"/events", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var events map[string][]json.RawMessage
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&events))
	assert.Empty(t, events["accelerations"])
	assert.Empty(t, events["decelerations"])
	assert.Contains(t, events, "contractions")

	rec = do(router, httptest.NewRequest(http.MethodGet, base+"/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var metrics analyzer.Metrics
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&metrics))
	assert.Equal(t, 140.0, metrics.Baseline)
	assert.Equal(t, 0.0, metrics.STV)

	rec = do(router, httptest.NewRequest(http.MethodGet, base+"/diagnosis", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "overall")

	rec = do(router, httptest.NewRequest(http.MethodGet, base, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var analysis analyzer.Analysis
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&analysis))
	assert.Equal(t, 0, analysis.Index)
}

func TestSegmentReport(t *testing.T) {
	router, _ := newTestRouter(t)
	loaded := upload(t, router, 480)
	base := "/api/recordings/" + loaded.Handle + "/segments/0/report"

	rec := do(router, httptest.NewRequest(http.MethodGet, base, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var rows []analyzer.ReportRow
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&rows))
	require.NotEmpty(t, rows)
	assert.Equal(t, "FHR Baseline", rows[0].Metric)

	rec = do(router, httptest.NewRequest(http.MethodGet, base+"?format=text", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rec.Body.String(), "Metric")
}

func TestSegmentErrors(t *testing.T) {
	router, _ := newTestRouter(t)
	loaded := upload(t, router, 480)

	rec := do(router, httptest.NewRequest(http.MethodGet, "/api/recordings/"+loaded.Handle+"/segments/1/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "out of range")

	rec = do(router, httptest.NewRequest(http.MethodGet, "/api/recordings/missing/segments/0/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "handle not found")

	rec = do(router, httptest.NewRequest(http.MethodGet, "/api/recordings/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCloseRecording(t *testing.T) {
	router, svc := newTestRouter(t)
	loaded := upload(t, router, 480)

	rec := do(router, httptest.NewRequest(http.MethodDelete, "/api/recordings/"+loaded.Handle, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, svc.OpenHandles())

	_, err := svc.Summary(context.Background(), loaded.Handle)
	assert.ErrorIs(t, err, analyzer.ErrHandleNotFound)

	rec = do(router, httptest.NewRequest(http.MethodDelete, "/api/recordings/"+loaded.Handle, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthzAndCORS(t *testing.T) {
	router, _ := newTestRouter(t)

	assert.Equal(t, http.StatusOK, do(router, httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)

	rec := do(router, httptest.NewRequest(http.MethodGet, "/api/recordings", nil))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
