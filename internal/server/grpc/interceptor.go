package grpc

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/accessconsole/internal/common"
	"github.com/dmitrijs2005/accessconsole/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const operatorKey ctxKey = "operator"

func firstValue(md metadata.MD, key string) string {
	if values := md.Get(key); len(values) > 0 {
		return values[0]
	}
	return ""
}

func operatorFromContext(ctx context.Context) string {
	op, _ := ctx.Value(operatorKey).(string)
	return op
}

// loggingInterceptor logs every call with the operator and batch id headers
// and the resulting status code.
func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	md, _ := metadata.FromIncomingContext(ctx)

	resp, err := handler(ctx, req)

	s.logger.Info(ctx, "request",
		"method", info.FullMethod,
		"operator", firstValue(md, common.OperatorHeaderName),
		"batch", firstValue(md, common.BatchHeaderName),
		"code", status.Code(err).String(),
		"elapsed", time.Since(start).String(),
	)
	return resp, err
}

// operatorInterceptor puts the calling operator into the context. With a
// secret configured the operator comes from a verified token and must match
// the operator header when one is sent.
func (s *GRPCServer) operatorInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	operator := firstValue(md, common.OperatorHeaderName)

	if len(s.jwtSecret) > 0 {
		token := strings.TrimPrefix(firstValue(md, common.TokenHeaderName), "Bearer ")
		if token == "" {
			return nil, status.Error(codes.Unauthenticated, "missing token")
		}

		claimed, err := auth.OperatorFromToken(token, s.jwtSecret)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}
		if operator != "" && operator != claimed {
			return nil, status.Error(codes.PermissionDenied, "token issued to another operator")
		}
		operator = claimed
	}

	return handler(context.WithValue(ctx, operatorKey, operator), req)
}
