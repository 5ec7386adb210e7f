// Package grpc exposes the device tree over the console gRPC service.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/accessconsole/internal/logging"
	"github.com/dmitrijs2005/accessconsole/internal/schema"
	"github.com/dmitrijs2005/accessconsole/internal/wire"
	"google.golang.org/grpc"
)

// Tree is the device tree the server answers from.
type Tree interface {
	Poll(ctx context.Context, tag schema.Tag) ([]wire.Update, error)
	Submit(ctx context.Context, tag schema.Tag, sub wire.Submission) (wire.Response, error)
}

type GRPCServer struct {
	address   string
	tree      Tree
	logger    logging.Logger
	jwtSecret []byte
}

// NewGRPCServer builds a server for tree. An empty secretKey accepts
// requests without operator tokens.
func NewGRPCServer(a string, l logging.Logger, tree Tree, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		tree:      tree,
		jwtSecret: []byte(secretKey),
	}
}

// NewServer returns a gRPC server with the console service and the
// interceptors registered, ready to Serve.
func (s *GRPCServer) NewServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.operatorInterceptor))
	wire.RegisterConsoleServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
