package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/accessconsole/internal/client/client"
	"github.com/dmitrijs2005/accessconsole/internal/client/config"
	"github.com/dmitrijs2005/accessconsole/internal/client/services"
	"github.com/dmitrijs2005/accessconsole/internal/logging"
	"github.com/dmitrijs2005/accessconsole/internal/schema"
	"google.golang.org/grpc"
)

type App struct {
	config   *config.Config
	registry *schema.Registry
	console  *services.Console
	client   client.Client
	logger   logging.Logger

	outMu   sync.Mutex
	out     io.Writer
	reader  *bufio.Reader
	confirm bool
}

func NewApp(c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogFormat, os.Stderr, c.Debug)
	if err != nil {
		return nil, err
	}

	var opts []grpc.DialOption
	if c.Token != "" {
		opts = append(opts, client.WithToken(c.Token))
	}

	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr, c.Operator, c.RequestTimeout, opts...)
	if err != nil {
		return nil, err
	}

	a := newApp(c, schema.Default(), apiClient, logger, os.Stdout, os.Stdin)
	a.confirm = interactive()
	return a, nil
}

func newApp(c *config.Config, registry *schema.Registry, cl client.Client, logger logging.Logger, out io.Writer, in io.Reader) *App {
	a := &App{
		config:   c,
		registry: registry,
		client:   cl,
		logger:   logger,
		out:      out,
		reader:   bufio.NewReader(in),
	}
	a.console = services.NewConsole(cl, registry,
		services.WithLogger(logger),
		services.WithNotifier(a),
		services.WithTables(c.TableTags(registry)...),
		services.WithChunkSize(c.IngestChunkSize),
		services.WithTombstoneGrace(c.TombstoneGrace),
		services.WithIntervals(c.PollInterval, c.SweepInterval),
	)
	return a
}

// Run starts the background poll loop and the REPL. It returns when the
// operator exits or ctx is done.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		_ = a.console.Run(ctx)
	}()

	a.println("Access console (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader, a.writer(), a.confirm)
	return a.client.Close()
}

// Notify prints a notice between REPL lines.
func (a *App) Notify(kind services.NoticeKind, msg string) {
	a.println(fmt.Sprintf("[%s] %s", kind, msg))
}

func (a *App) status() string {
	st := a.console.Stats()
	switch {
	case st.Conflicts > 0:
		return fmt.Sprintf(" (%d modified, %d conflict)", st.Modified, st.Conflicts)
	case st.Modified > 0 || st.Pending > 0:
		return fmt.Sprintf(" (%d modified, %d pending)", st.Modified, st.Pending)
	default:
		return ""
	}
}

func (a *App) println(args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintln(a.out, args...)
}

// writer serializes REPL output with notices from the background loop.
func (a *App) writer() io.Writer {
	return lockedWriter{mu: &a.outMu, w: a.out}
}

type lockedWriter struct {
	mu *sync.Mutex
	w  io.Writer
}

func (l lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
