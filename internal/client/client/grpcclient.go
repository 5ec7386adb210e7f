package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/accessconsole/internal/common"
	"github.com/dmitrijs2005/accessconsole/internal/schema"
	"github.com/dmitrijs2005/accessconsole/internal/wire"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const defaultTimeout = 10 * time.Second

type GRPCClient struct {
	endpointURL string
	operator    string
	timeout     time.Duration
	conn        *grpc.ClientConn
}

// WithBatchID tags outgoing calls made with ctx with a commit batch id.
func WithBatchID(ctx context.Context, id string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, common.BatchHeaderName, id)
}

type tokenCredentials string

func (t tokenCredentials) GetRequestMetadata(context.Context, ...string) (map[string]string, error) {
	return map[string]string{common.TokenHeaderName: "Bearer " + string(t)}, nil
}

func (tokenCredentials) RequireTransportSecurity() bool { return false }

// WithToken attaches an operator token to every call. Servers started
// without a secret ignore it.
func WithToken(token string) grpc.DialOption {
	return grpc.WithPerRPCCredentials(tokenCredentials(token))
}

func withOperator(ctx context.Context, operator string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.OperatorHeaderName, operator)
	return metadata.NewOutgoingContext(ctx, md)
}

func (c *GRPCClient) operatorInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if c.operator != "" {
		ctx = withOperator(ctx, c.operator)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGRPCClient connects lazily to endpointURL. Extra dial options are
// appended to the defaults (insecure transport, operator interceptor).
func NewGRPCClient(endpointURL, operator string, timeout time.Duration, opts ...grpc.DialOption) (*GRPCClient, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &GRPCClient{endpointURL: endpointURL, operator: operator, timeout: timeout}

	dial := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.operatorInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dial...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	return c, nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func (c *GRPCClient) Poll(ctx context.Context, tag schema.Tag) (wire.Response, error) {
	return c.invoke(ctx, wire.PollMethod, wire.EncodePoll(tag))
}

func (c *GRPCClient) Submit(ctx context.Context, tag schema.Tag, sub wire.Submission) (wire.Response, error) {
	return c.invoke(ctx, wire.SubmitMethod, wire.EncodeSubmission(tag, sub))
}

func (c *GRPCClient) invoke(ctx context.Context, method string, req *structpb.Struct) (wire.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, method, req, out); err != nil {
		return nil, mapError(err)
	}

	resp, err := wire.DecodeResponse(out)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", method, err)
	}
	return resp, nil
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrUnavailable
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.InvalidArgument, codes.FailedPrecondition, codes.NotFound, codes.AlreadyExists:
		return &RejectedError{Message: st.Message()}
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
