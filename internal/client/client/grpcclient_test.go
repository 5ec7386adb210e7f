package client

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/accessconsole/internal/common"
	"github.com/dmitrijs2005/accessconsole/internal/oid"
	"github.com/dmitrijs2005/accessconsole/internal/schema"
	"github.com/dmitrijs2005/accessconsole/internal/wire"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

type fakeConsole struct {
	lastMD  metadata.MD
	lastTag schema.Tag
	lastSub wire.Submission

	resp wire.Response
	err  error
}

func (f *fakeConsole) Poll(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	f.lastMD, _ = metadata.FromIncomingContext(ctx)
	tag, err := wire.DecodePoll(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	f.lastTag = tag
	if f.err != nil {
		return nil, f.err
	}
	return wire.EncodeResponse(f.resp), nil
}

func (f *fakeConsole) Submit(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	f.lastMD, _ = metadata.FromIncomingContext(ctx)
	tag, sub, err := wire.DecodeSubmission(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	f.lastTag, f.lastSub = tag, sub
	if f.err != nil {
		return nil, f.err
	}
	return wire.EncodeResponse(f.resp), nil
}

func startBufServer(t *testing.T, srv wire.ConsoleServer) *GRPCClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	wire.RegisterConsoleServer(s, srv)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	c, err := NewGRPCClient("passthrough:///bufnet", "alice", time.Second,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestGRPCClient_Poll(t *testing.T) {
	f := &fakeConsole{resp: wire.Response{
		schema.Cards: {{OID: "0.4.1", Value: ""}, {OID: "0.4.1.1", Value: "Alice"}},
	}}
	c := startBufServer(t, f)

	resp, err := c.Poll(context.Background(), schema.Cards)

	require.NoError(t, err)
	assert.Equal(t, schema.Cards, f.lastTag)
	assert.Empty(t, cmp.Diff(f.resp, resp))
	assert.Equal(t, []string{"alice"}, f.lastMD.Get(common.OperatorHeaderName))
}

func TestGRPCClient_SubmitCarriesBatchID(t *testing.T) {
	f := &fakeConsole{resp: wire.Response{schema.Cards: {{OID: "0.4.1.1", Value: "Bob"}}}}
	c := startBufServer(t, f)

	sub := wire.Submission{
		Objects: []wire.Object{{OID: "0.4.1.1", Value: "Bob"}},
		Deleted: []oid.OID{"0.4.2"},
	}
	resp, err := c.Submit(WithBatchID(context.Background(), "batch-1"), schema.Cards, sub)

	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(sub, f.lastSub))
	assert.Equal(t, 1, resp.Len())
	assert.Equal(t, []string{"batch-1"}, f.lastMD.Get(common.BatchHeaderName))
}

func TestGRPCClient_RejectionKeepsServerMessage(t *testing.T) {
	f := &fakeConsole{err: status.Error(codes.FailedPrecondition, "card 0.4.9 does not exist")}
	c := startBufServer(t, f)

	_, err := c.Submit(context.Background(), schema.Cards, wire.Submission{})

	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "card 0.4.9 does not exist", rejected.Message)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"unavailable", status.Error(codes.Unavailable, "down"), ErrUnavailable},
		{"deadline", status.Error(codes.DeadlineExceeded, "slow"), ErrUnavailable},
		{"context deadline", context.DeadlineExceeded, ErrUnavailable},
		{"unauthenticated", status.Error(codes.Unauthenticated, "who"), ErrUnauthorized},
		{"permission", status.Error(codes.PermissionDenied, "no"), ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapError(tt.in), tt.want)
		})
	}

	assert.NoError(t, mapError(nil))

	err := mapError(status.Error(codes.Internal, "boom"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnavailable))
	assert.Contains(t, err.Error(), "rpc error")
}

func TestGRPCClient_WithTokenSendsHeader(t *testing.T) {
	f := &fakeConsole{resp: wire.Response{}}

	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	wire.RegisterConsoleServer(s, f)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	c, err := NewGRPCClient("passthrough:///bufnet", "alice", time.Second,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		WithToken("tok"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	_, err = c.Poll(context.Background(), schema.Cards)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bearer tok"}, f.lastMD.Get(common.TokenHeaderName))
}
