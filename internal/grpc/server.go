package grpcserver

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"classifieds/internal/config"
	"classifieds/internal/logger"
)

// ServiceName is the health service name reported next to the overall ("") status.
const ServiceName = "classifieds"

const pingTimeout = 2 * time.Second

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StartGRPC starts the gRPC health endpoint on the configured address and returns a
// shutdown function. An empty address disables the endpoint; the returned function is
// then a no-op.
func StartGRPC(cfg *config.Config, db Pinger) (func(context.Context) error, error) {
	if cfg == nil {
		panic("config is required")
	}
	if cfg.GRPC.Address == "" {
		return func(context.Context) error { return nil }, nil
	}

	lis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return nil, err
	}
	logger.Infof("gRPC health listening on %s", lis.Addr())
	return serve(lis, db), nil
}

// serve registers the health service on a new server bound to lis.
func serve(lis net.Listener, db Pinger) func(context.Context) error {
	srv := grpc.NewServer()
	hs := newDBHealthServer(db)
	healthpb.RegisterHealthServer(srv, hs)

	go func() {
		if err := srv.Serve(lis); err != nil {
			logger.Warningf("gRPC server stopped: %v", err)
		}
	}()

	return func(ctx context.Context) error {
		hs.Shutdown()
		done := make(chan struct{})
		go func() { srv.GracefulStop(); close(done) }()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			srv.Stop()
			return ctx.Err()
		}
	}
}

// dbHealthServer is the stock health server with every Check preceded by a database
// ping, so the reported status follows the database.
type dbHealthServer struct {
	*health.Server
	db Pinger
}

func newDBHealthServer(db Pinger) *dbHealthServer {
	hs := &dbHealthServer{Server: health.NewServer(), db: db}
	hs.refresh(context.Background())
	return hs
}

func (s *dbHealthServer) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	s.refresh(ctx)
	return s.Server.Check(ctx, req)
}

func (s *dbHealthServer) refresh(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if s.db != nil {
		ctx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := s.db.Ping(ctx); err != nil {
			logger.Warningf("database ping failed: %v", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.SetServingStatus("", status)
	s.SetServingStatus(ServiceName, status)
}
