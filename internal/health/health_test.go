package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

func TestCheck_DefaultServing(t *testing.T) {
	h := NewHealthServer()

	resp, err := h.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{})

	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.Status)
}

func TestCheck_UnknownService(t *testing.T) {
	h := NewHealthServer()

	_, err := h.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: "unknown"})

	require.Error(t, err)
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestCheck_StatusTransitions(t *testing.T) {
	h := NewHealthServer()
	req := &grpc_health_v1.HealthCheckRequest{Service: ServiceName}

	h.SetServingStatus(ServiceName)
	resp, err := h.Check(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.Status)

	h.SetNotServingStatus(ServiceName)
	resp, err = h.Check(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, resp.Status)
}

func TestRunProbes(t *testing.T) {
	h := NewHealthServer()
	h.SetServingStatus(ServiceName)
	h.AddProbe("redis", func(context.Context) error { return nil })

	report, healthy := h.RunProbes(context.Background())
	assert.True(t, healthy)
	assert.Equal(t, "ok", report.Status)
	assert.Equal(t, "ok", report.Checks["redis"])

	h.AddProbe("postgres", func(context.Context) error { return errors.New("connection refused") })

	report, healthy = h.RunProbes(context.Background())
	assert.False(t, healthy)
	assert.Equal(t, "unavailable", report.Status)
	assert.Equal(t, "connection refused", report.Checks["postgres"])
}

func TestServeHTTP(t *testing.T) {
	h := NewHealthServer()
	h.SetServingStatus(ServiceName)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var report Report
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
	assert.Equal(t, "ok", report.Status)

	h.SetNotServingStatus(ServiceName)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

type watchStream struct {
	grpc.ServerStream
	ctx     context.Context
	updates chan grpc_health_v1.HealthCheckResponse_ServingStatus
}

func newWatchStream(ctx context.Context) *watchStream {
	return &watchStream{ctx: ctx, updates: make(chan grpc_health_v1.HealthCheckResponse_ServingStatus, 8)}
}

func (s *watchStream) Context() context.Context {
	return s.ctx
}

func (s *watchStream) Send(resp *grpc_health_v1.HealthCheckResponse) error {
	s.updates <- resp.Status
	return nil
}

func (s *watchStream) next(t *testing.T) grpc_health_v1.HealthCheckResponse_ServingStatus {
	t.Helper()
	select {
	case st := <-s.updates:
		return st
	case <-time.After(2 * time.Second):
		t.Fatal("no status update")
		return grpc_health_v1.HealthCheckResponse_UNKNOWN
	}
}

func startWatch(h *HealthServer, service string, stream *watchStream) chan error {
	done := make(chan error, 1)
	go func() {
		done <- h.Watch(&grpc_health_v1.HealthCheckRequest{Service: service}, stream)
	}()
	return done
}

func TestWatch_StatusChanges(t *testing.T) {
	h := NewHealthServer()
	h.SetServingStatus(ServiceName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stream := newWatchStream(ctx)
	done := startWatch(h, ServiceName, stream)

	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, stream.next(t))

	h.SetNotServingStatus(ServiceName)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, stream.next(t))

	h.SetServingStatus(ServiceName)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, stream.next(t))

	cancel()
	select {
	case err := <-done:
		assert.Equal(t, codes.Canceled, status.Code(err))
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not return after cancel")
	}
}

func TestWatch_UnknownServiceThenRegistered(t *testing.T) {
	h := NewHealthServer()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stream := newWatchStream(ctx)
	startWatch(h, ServiceName, stream)

	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVICE_UNKNOWN, stream.next(t))

	h.SetServingStatus(ServiceName)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, stream.next(t))
}

func TestShutdown_EndsWatchers(t *testing.T) {
	h := NewHealthServer()
	h.SetServingStatus("")
	h.SetServingStatus(ServiceName)

	stream := newWatchStream(context.Background())
	done := startWatch(h, ServiceName, stream)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, stream.next(t))

	h.Shutdown()

	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, stream.next(t))
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not return after shutdown")
	}

	h.SetServingStatus(ServiceName)
	resp, err := h.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, resp.Status)

	resp, err = h.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, resp.Status)

	late := newWatchStream(context.Background())
	require.NoError(t, h.Watch(&grpc_health_v1.HealthCheckRequest{Service: ServiceName}, late))
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, late.next(t))
}
