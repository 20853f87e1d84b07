package grpc

import (
	"context"
	"errors"
	"fmt"
	"math"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/example/faultchar/characterization/domain"
)

// Wire format of faultchar.v1.Executor/Execute, carried in google.protobuf.Struct:
//
//	request  {"values": [1, 0, 2]}
//	response {"passed": true} or {"passed": false, "cause": "exit status 1"}

func encodeCombination(c domain.Combination) (*structpb.Struct, error) {
	values := make([]any, c.Len())
	for i, v := range c.Values() {
		values[i] = v
	}
	return structpb.NewStruct(map[string]any{"values": values})
}

func decodeCombination(s *structpb.Struct) (domain.Combination, error) {
	field, ok := s.GetFields()["values"]
	if !ok {
		return domain.Combination{}, fmt.Errorf("%w: request has no values", domain.ErrInvalidArgument)
	}
	list := field.GetListValue()
	if list == nil {
		return domain.Combination{}, fmt.Errorf("%w: values must be a list", domain.ErrInvalidArgument)
	}
	values := make([]int, len(list.GetValues()))
	for i, v := range list.GetValues() {
		n, ok := v.GetKind().(*structpb.Value_NumberValue)
		if !ok || n.NumberValue != math.Trunc(n.NumberValue) || n.NumberValue < 0 || n.NumberValue > math.MaxInt32 {
			return domain.Combination{}, fmt.Errorf("%w: value %d is not a value index", domain.ErrInvalidArgument, i)
		}
		values[i] = int(n.NumberValue)
	}
	return domain.NewCombination(values...), nil
}

func encodeResult(r domain.TestResult) (*structpb.Struct, error) {
	fields := map[string]any{"passed": r.IsSuccessful()}
	if r.IsFailed() && r.Cause != nil {
		fields["cause"] = r.Cause.Error()
	}
	return structpb.NewStruct(fields)
}

func decodeResult(s *structpb.Struct) (domain.TestResult, error) {
	field, ok := s.GetFields()["passed"]
	if !ok {
		return domain.TestResult{}, errors.New("response has no outcome")
	}
	if _, ok := field.GetKind().(*structpb.Value_BoolValue); !ok {
		return domain.TestResult{}, errors.New("response outcome must be a boolean")
	}
	if field.GetBoolValue() {
		return domain.Passed(), nil
	}
	var cause error
	if msg := s.GetFields()["cause"].GetStringValue(); msg != "" {
		cause = errors.New(msg)
	}
	return domain.Failed(cause), nil
}

// toStatus maps executor errors to gRPC status errors.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return status.Error(codes.Unavailable, err.Error())
	}
}

// fromStatus maps gRPC status errors back to the errors the driver understands.
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.InvalidArgument:
		return fmt.Errorf("%w: remote: %s", domain.ErrInvalidArgument, st.Message())
	case codes.DeadlineExceeded:
		return fmt.Errorf("remote: %s: %w", st.Message(), context.DeadlineExceeded)
	case codes.Canceled:
		return fmt.Errorf("remote: %s: %w", st.Message(), context.Canceled)
	default:
		return fmt.Errorf("remote executor: %w", err)
	}
}
