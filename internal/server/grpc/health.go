// Package grpcserver exposes the standard gRPC health service for the contact
// API, backed by periodic store liveness probes.
package grpcserver

import (
	"context"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/and161185/contact-keeper/internal/repository"
)

// ServiceName is the health service key reported alongside the overall ("") status.
const ServiceName = "contactkeeper.v1.Contacts"

const probeTimeout = 2 * time.Second

// Health serves grpc.health.v1 and tracks store liveness.
type Health struct {
	srv      *grpc.Server
	hs       *health.Server
	pinger   repository.Pinger
	log      *zap.Logger
	interval time.Duration

	mu      sync.Mutex
	serving bool
	probed  bool
}

// NewHealth builds the gRPC server with interceptors and registers health
// (and reflection when dev is set). Status starts as NOT_SERVING until the first probe.
func NewHealth(pinger repository.Pinger, log *zap.Logger, interval time.Duration, dev bool) *Health {
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			RecoverUnary(log),
			LoggingUnary(log),
		),
	)
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(s, hs)
	if dev {
		reflection.Register(s)
	}
	return &Health{srv: s, hs: hs, pinger: pinger, log: log, interval: interval}
}

// Serve accepts connections on lis until Stop.
func (h *Health) Serve(lis net.Listener) error { return h.srv.Serve(lis) }

// Watch probes the store immediately and then every interval until ctx is done.
func (h *Health) Watch(ctx context.Context) {
	h.Probe(ctx)
	t := time.NewTicker(h.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			h.Probe(ctx)
		}
	}
}

// Probe pings the store once and publishes the result.
func (h *Health) Probe(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	err := h.pinger.Ping(pctx)
	ok := err == nil

	h.mu.Lock()
	changed := !h.probed || ok != h.serving
	h.serving, h.probed = ok, true
	h.mu.Unlock()

	st := healthpb.HealthCheckResponse_SERVING
	if !ok {
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.hs.SetServingStatus("", st)
	h.hs.SetServingStatus(ServiceName, st)

	if changed {
		if ok {
			h.log.Info("health: store reachable")
		} else {
			h.log.Warn("health: store unreachable", zap.Error(err))
		}
	}
}

// Stop marks everything NOT_SERVING and stops gracefully, forcing after timeout.
func (h *Health) Stop(timeout time.Duration) {
	h.hs.Shutdown()
	done := make(chan struct{})
	go func() {
		h.srv.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		h.srv.Stop()
	}
}
