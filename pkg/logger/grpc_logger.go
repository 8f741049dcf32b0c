package logger

import (
	"context"
	"path"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// NewGrpcUnaryServerInterceptor logs every unary call with its status code and duration.
func NewGrpcUnaryServerInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		logGrpcCall(logger, "gRPC call", info.FullMethod, err,
			zap.Duration("grpc.duration", time.Since(start)))

		return resp, err
	}
}

// NewGrpcStreamServerInterceptor logs every stream with its message counts.
func NewGrpcStreamServerInterceptor(logger *zap.Logger) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		wrapped := &countingServerStream{ServerStream: ss}

		err := handler(srv, wrapped)

		logGrpcCall(logger, "gRPC stream", info.FullMethod, err,
			zap.Int("grpc.recv_count", wrapped.recvCount),
			zap.Int("grpc.send_count", wrapped.sendCount),
			zap.Duration("grpc.duration", time.Since(start)))

		return err
	}
}

// ServerOptions returns the interceptor options for grpc.NewServer.
func ServerOptions(logger *zap.Logger) []grpc.ServerOption {
	return []grpc.ServerOption{
		grpc.UnaryInterceptor(NewGrpcUnaryServerInterceptor(logger)),
		grpc.StreamInterceptor(NewGrpcStreamServerInterceptor(logger)),
	}
}

func logGrpcCall(logger *zap.Logger, msg, fullMethod string, err error, extra ...zap.Field) {
	code := status.Code(err)

	fields := append([]zap.Field{
		zap.String("grpc.service", path.Dir(fullMethod)[1:]),
		zap.String("grpc.method", path.Base(fullMethod)),
		zap.String("grpc.code", code.String()),
	}, extra...)
	if err != nil {
		fields = append(fields, zap.Error(err))
	}

	switch code {
	case codes.OK:
		logger.Debug(msg+" completed", fields...)
	case codes.Canceled, codes.DeadlineExceeded, codes.ResourceExhausted,
		codes.Aborted, codes.Unavailable, codes.DataLoss, codes.NotFound:
		logger.Warn(msg+" failed", fields...)
	default:
		logger.Error(msg+" failed", fields...)
	}
}

type countingServerStream struct {
	grpc.ServerStream
	recvCount int
	sendCount int
}

func (w *countingServerStream) RecvMsg(m interface{}) error {
	err := w.ServerStream.RecvMsg(m)
	if err == nil {
		w.recvCount++
	}
	return err
}

func (w *countingServerStream) SendMsg(m interface{}) error {
	err := w.ServerStream.SendMsg(m)
	if err == nil {
		w.sendCount++
	}
	return err
}
