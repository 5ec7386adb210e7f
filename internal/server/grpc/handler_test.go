package grpc

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/accessconsole/internal/common"
	"github.com/dmitrijs2005/accessconsole/internal/logging"
	"github.com/dmitrijs2005/accessconsole/internal/oid"
	"github.com/dmitrijs2005/accessconsole/internal/schema"
	"github.com/dmitrijs2005/accessconsole/internal/server/services"
	"github.com/dmitrijs2005/accessconsole/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type fakeTree struct {
	lastTag schema.Tag
	lastSub wire.Submission

	updates []wire.Update
	resp    wire.Response
	err     error
}

func (f *fakeTree) Poll(ctx context.Context, tag schema.Tag) ([]wire.Update, error) {
	f.lastTag = tag
	return f.updates, f.err
}

func (f *fakeTree) Submit(ctx context.Context, tag schema.Tag, sub wire.Submission) (wire.Response, error) {
	f.lastTag, f.lastSub = tag, sub
	return f.resp, f.err
}

func TestPoll_EncodesTableUpdates(t *testing.T) {
	tree := &fakeTree{updates: []wire.Update{{OID: "0.3.1", Value: "ok"}, {OID: "0.3.1.1", Value: "Front Door"}}}
	s := NewGRPCServer("", logging.Nop(), tree, "")

	out, err := s.Poll(context.Background(), wire.EncodePoll(schema.Doors))
	require.NoError(t, err)
	assert.Equal(t, schema.Doors, tree.lastTag)

	r, err := wire.DecodeResponse(out)
	require.NoError(t, err)
	assert.Equal(t, tree.updates, r[schema.Doors])
}

func TestSubmit_PassesSubmission(t *testing.T) {
	tree := &fakeTree{resp: wire.Response{schema.Cards: {{OID: "0.4.1.1", Value: "Alice"}}}}
	s := NewGRPCServer("", logging.Nop(), tree, "")

	sub := wire.Submission{Objects: []wire.Object{{OID: "0.4.1.1", Value: "Alice"}}}
	out, err := s.Submit(context.Background(), wire.EncodeSubmission(schema.Cards, sub))
	require.NoError(t, err)
	assert.Equal(t, sub.Objects, tree.lastSub.Objects)

	r, err := wire.DecodeResponse(out)
	require.NoError(t, err)
	assert.Equal(t, tree.resp, r)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code codes.Code
		msg  string
	}{
		{"unknown oid", fmt.Errorf("%w: record 0.4.9 does not exist", common.ErrUnknownOID), codes.FailedPrecondition, "unknown oid: record 0.4.9 does not exist"},
		{"read only", fmt.Errorf("%w: events", common.ErrReadOnly), codes.FailedPrecondition, "table is read only: events"},
		{"unknown table", fmt.Errorf("%w: \"x\"", services.ErrUnknownTable), codes.NotFound, "unknown table: \"x\""},
		{"internal", errors.New("disk on fire"), codes.Internal, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewGRPCServer("", logging.Nop(), &fakeTree{err: tt.err}, "")

			_, err := s.Submit(context.Background(), wire.EncodeSubmission(schema.Cards, wire.Submission{}))
			st, _ := status.FromError(err)
			assert.Equal(t, tt.code, st.Code())
			assert.Equal(t, tt.msg, st.Message())
		})
	}
}

func TestMalformedRequest(t *testing.T) {
	s := NewGRPCServer("", logging.Nop(), &fakeTree{}, "")

	_, err := s.Poll(context.Background(), &structpb.Struct{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	bad := wire.EncodeSubmission(schema.Cards, wire.Submission{Deleted: []oid.OID{""}})
	_, err = s.Submit(context.Background(), bad)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}
