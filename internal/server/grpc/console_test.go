package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/accessconsole/internal/client/client"
	"github.com/dmitrijs2005/accessconsole/internal/logging"
	"github.com/dmitrijs2005/accessconsole/internal/schema"
	"github.com/dmitrijs2005/accessconsole/internal/server/auth"
	"github.com/dmitrijs2005/accessconsole/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/accessconsole/internal/server/services"
	"github.com/dmitrijs2005/accessconsole/internal/wire"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
)

// startTree serves the demo site over bufconn and returns a dialer for it.
func startTree(t *testing.T, secret string) func(opts ...grpc.DialOption) *client.GRPCClient {
	t.Helper()
	ctx := context.Background()

	db, m, err := repomanager.Open(ctx, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	tree := services.NewTreeService(db, m, schema.Default())
	_, err = tree.Seed(ctx, services.DemoSite())
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	srv := NewGRPCServer("", logging.Nop(), tree, secret).NewServer()
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	return func(opts ...grpc.DialOption) *client.GRPCClient {
		opts = append(opts, grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
		c, err := client.NewGRPCClient("passthrough:///bufnet", "alice", time.Second, opts...)
		require.NoError(t, err)
		t.Cleanup(func() { _ = c.Close() })
		return c
	}
}

func TestConsoleRoundTrip(t *testing.T) {
	c := startTree(t, "")()
	ctx := context.Background()

	r, err := c.Poll(ctx, schema.Groups)
	require.NoError(t, err)
	assert.Contains(t, r[schema.Groups], wire.Update{OID: "0.5.1.1", Value: "Staff"})

	r, err = c.Submit(ctx, schema.Groups, wire.Submission{Objects: []wire.Object{{OID: "0.5.2.2.2", Value: "true"}}})
	require.NoError(t, err)
	assert.Equal(t, []wire.Update{{OID: "0.5.2.2.2", Value: "true"}}, r[schema.Groups])

	r, err = c.Submit(ctx, schema.Groups, wire.Submission{Objects: []wire.Object{{OID: wire.NewRecordOID, Value: wire.NewRecordValue}}})
	require.NoError(t, err)
	assert.Equal(t, wire.Update{OID: "0.5.3", Value: services.StatusNew}, r[schema.Groups][0])
}

func TestConsoleRejection(t *testing.T) {
	c := startTree(t, "")()

	_, err := c.Submit(context.Background(), schema.Cards, wire.Submission{Objects: []wire.Object{{OID: "0.4.99.1", Value: "x"}}})

	var rejected *client.RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Contains(t, rejected.Message, "0.4.99")

	_, err = c.Submit(context.Background(), schema.Events, wire.Submission{Objects: []wire.Object{{OID: "0.6.1.4", Value: "x"}}})
	require.ErrorAs(t, err, &rejected)
	assert.Contains(t, rejected.Message, "read only")
}

func TestConsoleTokens(t *testing.T) {
	dial := startTree(t, "secret")

	_, err := dial().Poll(context.Background(), schema.Cards)
	assert.ErrorIs(t, err, client.ErrUnauthorized)

	tok, err := auth.GenerateToken("alice", []byte("secret"), time.Hour)
	require.NoError(t, err)

	r, err := dial(client.WithToken(tok)).Poll(context.Background(), schema.Cards)
	require.NoError(t, err)
	assert.NotEmpty(t, r[schema.Cards])
}
