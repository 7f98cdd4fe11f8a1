package health

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type stubPinger struct {
	err error
}

func (s *stubPinger) Ping(ctx context.Context) error {
	return s.err
}

func status(t *testing.T, m *Monitor, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := m.Server().Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.Status
}

func TestMonitorProbe(t *testing.T) {
	pinger := &stubPinger{}
	m := NewMonitor(pinger, time.Second, hclog.NewNullLogger())

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, m, ""))

	m.Probe(context.Background())
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(t, m, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(t, m, ServiceName))

	pinger.err = errors.New("connection refused")
	m.Probe(context.Background())
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, m, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, m, ServiceName))
}

func TestMonitorLogsTransitions(t *testing.T) {
	var buf bytes.Buffer
	logger := hclog.New(&hclog.LoggerOptions{Output: &buf, Level: hclog.Info})

	pinger := &stubPinger{err: errors.New("connection refused")}
	m := NewMonitor(pinger, time.Second, logger)

	// the first probe is reported even though the status stays NOT_SERVING
	m.Probe(context.Background())
	assert.Equal(t, 1, strings.Count(buf.String(), "Storage unreachable"))

	m.Probe(context.Background())
	assert.Equal(t, 1, strings.Count(buf.String(), "Storage unreachable"), "unchanged status is not logged again")

	pinger.err = nil
	m.Probe(context.Background())
	assert.Equal(t, 1, strings.Count(buf.String(), "Storage reachable"))
}

func TestMonitorRunShutdown(t *testing.T) {
	m := NewMonitor(&stubPinger{}, 10*time.Millisecond, hclog.NewNullLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return status(t, m, ServiceName) == healthpb.HealthCheckResponse_SERVING
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, m, ServiceName))
}
