package grpcserver

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/proto"

	"classifieds/internal/config"
	"classifieds/internal/testutil"
	"classifieds/repository"
)

type flakyPinger struct {
	down atomic.Bool
}

func (p *flakyPinger) Ping(context.Context) error {
	if p.down.Load() {
		return errors.New("connection refused")
	}
	return nil
}

func TestHealthCheck_FollowsDatabase(t *testing.T) {
	db := &flakyPinger{}
	hs := newDBHealthServer(db)
	ctx := context.Background()

	resp, err := hs.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	db.down.Store(true)
	resp, err = hs.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())

	_, err = hs.Check(ctx, &healthpb.HealthCheckRequest{Service: "unknown"})
	assert.Error(t, err)
}

func TestServe_OverNetwork(t *testing.T) {
	store := repository.NewStore(testutil.OpenInMemoryDB(t, t.Name()))
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	shutdown := serve(lis, store)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = shutdown(ctx)
	})

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	want := &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}
	assert.True(t, proto.Equal(want, resp), "got %v", resp)
}

func TestStartGRPC_DisabledWithoutAddress(t *testing.T) {
	cfg := &config.Config{}
	shutdown, err := StartGRPC(cfg, &flakyPinger{})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
