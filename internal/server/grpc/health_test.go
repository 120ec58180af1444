package grpcserver

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

type switchPinger struct{ down atomic.Bool }

func (p *switchPinger) Ping(context.Context) error {
	if p.down.Load() {
		return errors.New("db down")
	}
	return nil
}

const bufSize = 1 << 20

func startBufHealth(t *testing.T, h *Health) (healthpb.HealthClient, func()) {
	t.Helper()
	lis := bufconn.Listen(bufSize)
	go func() { _ = h.Serve(lis) }()
	dialer := func(context.Context, string) (net.Conn, error) { return lis.Dial() }
	cc, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(dialer), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	stop := func() { _ = cc.Close(); h.Stop(time.Second); _ = lis.Close() }
	return healthpb.NewHealthClient(cc), stop
}

func check(t *testing.T, cl healthpb.HealthClient, svc string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := cl.Check(ctx, &healthpb.HealthCheckRequest{Service: svc})
	if err != nil {
		t.Fatalf("Check(%q): %v", svc, err)
	}
	return resp.GetStatus()
}

func TestHealth_ProbeFlipsStatus(t *testing.T) {
	t.Parallel()

	p := &switchPinger{}
	h := NewHealth(p, zaptest.NewLogger(t), time.Hour, false)
	cl, stop := startBufHealth(t, h)
	defer stop()

	if got := check(t, cl, ServiceName); got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("before probe: %v", got)
	}

	h.Probe(context.Background())
	if got := check(t, cl, ""); got != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("after ok probe: %v", got)
	}

	p.down.Store(true)
	h.Probe(context.Background())
	if got := check(t, cl, ServiceName); got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("after failed probe: %v", got)
	}
}

func TestHealth_WatchStopsWithContext(t *testing.T) {
	t.Parallel()

	p := &switchPinger{}
	h := NewHealth(p, zaptest.NewLogger(t), 10*time.Millisecond, true)
	cl, stop := startBufHealth(t, h)
	defer stop()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { h.Watch(ctx); close(done) }()

	deadline := time.Now().Add(2 * time.Second)
	for check(t, cl, "") != healthpb.HealthCheckResponse_SERVING {
		if time.Now().After(deadline) {
			t.Fatalf("watch never reported SERVING")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Watch did not return after cancel")
	}
}
