// Package health reports storage reachability over the standard gRPC
// health checking protocol.
package health

import (
	"context"
	"time"

	"github.com/hashicorp/go-hclog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the service reported alongside the overall ("") status
const ServiceName = "product-catalog"

// Pinger is anything whose reachability can be probed
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor probes a Pinger on an interval and mirrors the result into a
// gRPC health server
type Monitor struct {
	server   *health.Server
	pinger   Pinger
	interval time.Duration
	timeout  time.Duration
	logger   hclog.Logger

	// last reported reachability, nil before the first probe
	serving *bool
}

func NewMonitor(pinger Pinger, interval time.Duration, logger hclog.Logger) *Monitor {
	s := health.NewServer()
	s.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	s.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return &Monitor{
		server:   s,
		pinger:   pinger,
		interval: interval,
		timeout:  interval / 2,
		logger:   logger,
	}
}

// Register exposes the health service on s
func (m *Monitor) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, m.server)
}

// Server returns the underlying health server
func (m *Monitor) Server() *health.Server {
	return m.server
}

// Probe pings once and updates the reported status
func (m *Monitor) Probe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	err := m.pinger.Ping(ctx)
	serving := err == nil

	status := healthpb.HealthCheckResponse_SERVING
	if !serving {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	m.server.SetServingStatus("", status)
	m.server.SetServingStatus(ServiceName, status)

	if m.serving == nil || *m.serving != serving {
		if serving {
			m.logger.Info("Storage reachable", "status", status)
		} else {
			m.logger.Error("Storage unreachable", "error", err)
		}
		m.serving = &serving
	}
}

// Run probes until ctx is done, then marks every service NOT_SERVING
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Probe(ctx)
	for {
		select {
		case <-ticker.C:
			m.Probe(ctx)
		case <-ctx.Done():
			m.server.Shutdown()
			return
		}
	}
}
