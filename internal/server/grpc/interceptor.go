package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	args := []any{"method", info.FullMethod, "code", status.Code(err).String(), "duration", time.Since(start).String()}
	if err != nil {
		s.logger.Warn(ctx, "grpc request failed", append(args, "error", err)...)
		return resp, err
	}
	s.logger.Debug(ctx, "grpc request", args...)
	return resp, nil
}

func (s *GRPCServer) streamLoggingInterceptor(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	start := time.Now()
	err := handler(srv, ss)

	s.logger.Debug(ss.Context(), "grpc stream closed",
		"method", info.FullMethod, "code", status.Code(err).String(), "duration", time.Since(start).String())
	return err
}
