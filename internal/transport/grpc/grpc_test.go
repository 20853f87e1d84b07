package grpc

import (
	"context"
	"errors"
	"net"
	"testing"

	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/example/faultchar/characterization/domain"
	"github.com/example/faultchar/characterization/driver"
)

const x = domain.NoValue

func startServer(t *testing.T, executor driver.Executor, opts ...ServerOption) *RemoteExecutor {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	server := NewServer(executor, append([]ServerOption{WithServerLogger(zaptest.NewLogger(t))}, opts...)...)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = server.ServeListener(lis)
	}()

	remote, err := Dial("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() {
		_ = remote.Close()
		server.GracefulStop()
		<-done
	})
	return remote
}

func TestRemoteExecutorRoundTrip(t *testing.T) {
	fake := driver.NewFakeExecutor(domain.NewCombination(1, x, 2))
	remote := startServer(t, fake)

	tests := []struct {
		input domain.Combination
		want  domain.TestOutcome
	}{
		{domain.NewCombination(1, 0, 2), domain.OutcomeFail},
		{domain.NewCombination(0, 0, 2), domain.OutcomePass},
	}
	for _, tt := range tests {
		result, err := remote.Execute(context.Background(), tt.input)
		if err != nil {
			t.Fatalf("Execute(%s) error = %v", tt.input, err)
		}
		if result.Outcome != tt.want {
			t.Errorf("Execute(%s) = %s, want %s", tt.input, result.Outcome, tt.want)
		}
		if result.IsFailed() && result.Cause == nil {
			t.Errorf("Execute(%s) lost the failure cause", tt.input)
		}
	}

	calls := fake.GetCalls()
	if len(calls) != 2 || calls[0] != tests[0].input {
		t.Errorf("server executed %v", calls)
	}
}

func TestRemoteExecutorErrors(t *testing.T) {
	model, err := domain.NewTestModel(1, []int{2, 2}, nil, nil)
	if err != nil {
		t.Fatalf("NewTestModel() error = %v", err)
	}
	broken := domain.NewCombination(0, 1)
	fake := driver.NewFakeExecutor().WithInfraFailures(broken, -1)
	remote := startServer(t, fake, WithModel(model))

	t.Run("infrastructure failure", func(t *testing.T) {
		_, err := remote.Execute(context.Background(), broken)
		if err == nil {
			t.Fatal("Execute() error = nil, want error")
		}
		if got := status.Code(errors.Unwrap(err)); got != codes.Unavailable {
			t.Errorf("status code = %s, want Unavailable", got)
		}
	})

	t.Run("outside the model", func(t *testing.T) {
		_, err := remote.Execute(context.Background(), domain.NewCombination(0, 1, 1))
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("Execute() error = %v, want ErrInvalidArgument", err)
		}
	})
}

func TestRemoteExecutorReady(t *testing.T) {
	remote := startServer(t, driver.NewFakeExecutor())
	ready, err := remote.Ready(context.Background())
	if err != nil {
		t.Fatalf("Ready() error = %v", err)
	}
	if !ready {
		t.Error("Ready() = false, want true")
	}
}

func TestRecoveryInterceptor(t *testing.T) {
	panicking := driver.ExecutorFunc(func(context.Context, domain.Combination) (domain.TestResult, error) {
		panic("boom")
	})
	remote := startServer(t, panicking)

	_, err := remote.Execute(context.Background(), domain.NewCombination(0))
	if got := status.Code(errors.Unwrap(err)); got != codes.Internal {
		t.Errorf("status code = %s (err %v), want Internal", got, err)
	}
}

func TestDecodeCombination(t *testing.T) {
	valid, _ := encodeCombination(domain.NewCombination(2, 0, 1))
	got, err := decodeCombination(valid)
	if err != nil || got != domain.NewCombination(2, 0, 1) {
		t.Fatalf("decodeCombination() = %s, %v", got, err)
	}

	tests := map[string]map[string]any{
		"missing values": {},
		"not a list":     {"values": "1,2"},
		"fraction":       {"values": []any{1.5}},
		"negative":       {"values": []any{-1}},
		"string element": {"values": []any{"a"}},
	}
	for name, fields := range tests {
		t.Run(name, func(t *testing.T) {
			s, err := structpb.NewStruct(fields)
			if err != nil {
				t.Fatalf("NewStruct() error = %v", err)
			}
			if _, err := decodeCombination(s); !errors.Is(err, domain.ErrInvalidArgument) {
				t.Errorf("decodeCombination() error = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestDecodeResult(t *testing.T) {
	failed, _ := encodeResult(domain.Failed(errors.New("exit status 2")))
	r, err := decodeResult(failed)
	if err != nil || !r.IsFailed() || r.Cause == nil || r.Cause.Error() != "exit status 2" {
		t.Errorf("decodeResult(failed) = %v, %v", r, err)
	}

	passed, _ := encodeResult(domain.Passed())
	if r, err := decodeResult(passed); err != nil || !r.IsSuccessful() {
		t.Errorf("decodeResult(passed) = %v, %v", r, err)
	}

	empty, _ := structpb.NewStruct(map[string]any{})
	if _, err := decodeResult(empty); err == nil {
		t.Error("decodeResult(empty) error = nil, want error")
	}
}
