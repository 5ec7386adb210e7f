package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/accessconsole/internal/common"
	"github.com/dmitrijs2005/accessconsole/internal/logging"
	"github.com/dmitrijs2005/accessconsole/internal/server/services"
	"github.com/dmitrijs2005/accessconsole/internal/wire"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func (s *GRPCServer) Poll(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	tag, err := wire.DecodePoll(req)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	updates, err := s.tree.Poll(ctx, tag)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return wire.EncodeResponse(wire.Response{tag: updates}), nil
}

func (s *GRPCServer) Submit(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	tag, sub, err := wire.DecodeSubmission(req)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	ctx = logging.ContextWith(ctx, "operator", operatorFromContext(ctx), "table", tag)

	resp, err := s.tree.Submit(ctx, tag, sub)
	if err != nil {
		s.logger.Warn(ctx, "submission rejected", "error", err.Error())
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "submission applied",
		"objects", len(sub.Objects), "deleted", len(sub.Deleted), "changed", resp.Len())
	return wire.EncodeResponse(resp), nil
}

// toStatus maps domain errors to gRPC codes. Rejections carry the error
// text so the operator can see what was wrong; anything else is internal.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, wire.ErrMalformed):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, services.ErrUnknownTable):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, common.ErrUnknownOID), errors.Is(err, common.ErrReadOnly):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		s.logger.Error(ctx, err.Error())
		return status.Error(codes.Internal, common.ErrInternal.Error())
	}
}
