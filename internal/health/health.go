package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// ServiceName - имя сервиса анализатора в gRPC health
const ServiceName = "ctg.v1.Analyzer"

// Probe проверяет одну зависимость (Redis, PostgreSQL и т.п.)
type Probe func(ctx context.Context) error

type HealthServer struct {
	grpc_health_v1.UnimplementedHealthServer
	mu       sync.RWMutex
	services map[string]grpc_health_v1.HealthCheckResponse_ServingStatus
	watchers map[string]map[chan grpc_health_v1.HealthCheckResponse_ServingStatus]struct{}
	shutdown bool

	probesMu sync.RWMutex
	probes   map[string]Probe
	timeout  time.Duration
}

func NewHealthServer() *HealthServer {
	return &HealthServer{
		services: make(map[string]grpc_health_v1.HealthCheckResponse_ServingStatus),
		watchers: make(map[string]map[chan grpc_health_v1.HealthCheckResponse_ServingStatus]struct{}),
		probes:   make(map[string]Probe),
		timeout:  2 * time.Second,
	}
}

func (h *HealthServer) Check(ctx context.Context, req *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	servingStatus, exists := h.services[req.GetService()]
	if !exists {
		if req.GetService() == "" {
			return &grpc_health_v1.HealthCheckResponse{
				Status: grpc_health_v1.HealthCheckResponse_SERVING,
			}, nil
		}
		return nil, status.Error(codes.NotFound, "service not found")
	}

	return &grpc_health_v1.HealthCheckResponse{
		Status: servingStatus,
	}, nil
}

// Watch отправляет текущий статус и затем каждое его изменение.
// Поток завершается после Shutdown или при отмене контекста клиента.
func (h *HealthServer) Watch(req *grpc_health_v1.HealthCheckRequest, stream grpc_health_v1.Health_WatchServer) error {
	service := req.GetService()
	updates := make(chan grpc_health_v1.HealthCheckResponse_ServingStatus, 1)

	h.mu.Lock()
	current := h.currentStatus(service)
	if h.shutdown {
		h.mu.Unlock()
		return stream.Send(&grpc_health_v1.HealthCheckResponse{Status: current})
	}
	if h.watchers[service] == nil {
		h.watchers[service] = make(map[chan grpc_health_v1.HealthCheckResponse_ServingStatus]struct{})
	}
	h.watchers[service][updates] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		if set, ok := h.watchers[service]; ok {
			delete(set, updates)
			if len(set) == 0 {
				delete(h.watchers, service)
			}
		}
		h.mu.Unlock()
	}()

	if err := stream.Send(&grpc_health_v1.HealthCheckResponse{Status: current}); err != nil {
		return err
	}

	last := current
	for {
		select {
		case next, ok := <-updates:
			if !ok {
				return nil
			}
			if next == last {
				continue
			}
			last = next
			if err := stream.Send(&grpc_health_v1.HealthCheckResponse{Status: next}); err != nil {
				return err
			}
		case <-stream.Context().Done():
			return status.Error(codes.Canceled, "stream has ended")
		}
	}
}

// currentStatus вызывается под h.mu
func (h *HealthServer) currentStatus(service string) grpc_health_v1.HealthCheckResponse_ServingStatus {
	if servingStatus, ok := h.services[service]; ok {
		return servingStatus
	}
	if service == "" {
		return grpc_health_v1.HealthCheckResponse_SERVING
	}
	return grpc_health_v1.HealthCheckResponse_SERVICE_UNKNOWN
}

func (h *HealthServer) SetServingStatus(service string) {
	h.setStatus(service, grpc_health_v1.HealthCheckResponse_SERVING)
}

func (h *HealthServer) SetNotServingStatus(service string) {
	h.setStatus(service, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
}

func (h *HealthServer) setStatus(service string, status grpc_health_v1.HealthCheckResponse_ServingStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.shutdown {
		return
	}
	h.services[service] = status
	h.notify(service, status)
}

// notify вызывается под h.mu; медленный наблюдатель получает только последний статус
func (h *HealthServer) notify(service string, status grpc_health_v1.HealthCheckResponse_ServingStatus) {
	for updates := range h.watchers[service] {
		select {
		case <-updates:
		default:
		}
		updates <- status
	}
}

// Shutdown переводит все сервисы в NOT_SERVING, рассылает статус наблюдателям
// и завершает их потоки. Последующие изменения статуса игнорируются.
func (h *HealthServer) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.shutdown {
		return
	}
	h.shutdown = true

	for service := range h.services {
		h.services[service] = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	if _, ok := h.services[""]; !ok {
		h.services[""] = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}

	for service, set := range h.watchers {
		for updates := range set {
			select {
			case <-updates:
			default:
			}
			updates <- h.currentStatus(service)
			close(updates)
		}
		delete(h.watchers, service)
	}
}

// AddProbe регистрирует проверку зависимости
func (h *HealthServer) AddProbe(name string, probe Probe) {
	h.probesMu.Lock()
	defer h.probesMu.Unlock()
	h.probes[name] = probe
}

// Report - результат проверки для /healthz
type Report struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// RunProbes выполняет все проверки; ok=false, если хотя бы одна не прошла
func (h *HealthServer) RunProbes(ctx context.Context) (Report, bool) {
	h.probesMu.RLock()
	names := make([]string, 0, len(h.probes))
	for name := range h.probes {
		names = append(names, name)
	}
	sort.Strings(names)
	probes := make([]Probe, len(names))
	for i, name := range names {
		probes[i] = h.probes[name]
	}
	h.probesMu.RUnlock()

	report := Report{Status: "ok", Checks: make(map[string]string, len(names))}
	healthy := true
	for i, name := range names {
		probeCtx, cancel := context.WithTimeout(ctx, h.timeout)
		err := probes[i](probeCtx)
		cancel()

		if err != nil {
			report.Checks[name] = err.Error()
			healthy = false
			continue
		}
		report.Checks[name] = "ok"
	}

	h.mu.RLock()
	serving := h.services[ServiceName]
	h.mu.RUnlock()
	if serving == grpc_health_v1.HealthCheckResponse_NOT_SERVING {
		healthy = false
	}

	if !healthy {
		report.Status = "unavailable"
	}
	return report, healthy
}

// ServeHTTP отвечает на /healthz
func (h *HealthServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	report, healthy := h.RunProbes(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(report)
}
