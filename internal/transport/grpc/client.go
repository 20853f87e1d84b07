package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/example/faultchar/characterization/domain"
	"github.com/example/faultchar/characterization/driver"
)

// RemoteExecutor executes test inputs on a remote faultchar.v1.Executor.
type RemoteExecutor struct {
	conn *grpc.ClientConn
}

var _ driver.Executor = (*RemoteExecutor)(nil)

// Dial connects to an executor server. Without options the connection is
// unencrypted.
func Dial(addr string, opts ...grpc.DialOption) (*RemoteExecutor, error) {
	if len(opts) == 0 {
		opts = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to executor %s: %w", addr, err)
	}
	return NewRemoteExecutor(conn), nil
}

// NewRemoteExecutor wraps an existing connection.
func NewRemoteExecutor(conn *grpc.ClientConn) *RemoteExecutor {
	return &RemoteExecutor{conn: conn}
}

// Execute implements driver.Executor.
func (e *RemoteExecutor) Execute(ctx context.Context, c domain.Combination) (domain.TestResult, error) {
	req, err := encodeCombination(c)
	if err != nil {
		return domain.TestResult{}, err
	}
	resp := new(structpb.Struct)
	if err := e.conn.Invoke(ctx, executeMethod, req, resp); err != nil {
		return domain.TestResult{}, fromStatus(err)
	}
	return decodeResult(resp)
}

// Ready reports whether the remote executor service is serving.
func (e *RemoteExecutor) Ready(ctx context.Context) (bool, error) {
	resp, err := healthpb.NewHealthClient(e.conn).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return false, fromStatus(err)
	}
	return resp.GetStatus() == healthpb.HealthCheckResponse_SERVING, nil
}

// Close closes the connection.
func (e *RemoteExecutor) Close() error {
	return e.conn.Close()
}
