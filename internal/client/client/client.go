package client

import (
	"context"

	"github.com/dmitrijs2005/accessconsole/internal/schema"
	"github.com/dmitrijs2005/accessconsole/internal/wire"
)

// Client is the console's view of the device tree server.
type Client interface {
	Close() error
	// Poll fetches the current leaves of one table.
	Poll(ctx context.Context, tag schema.Tag) (wire.Response, error)
	// Submit sends one commit batch for a table. A successful response is a
	// leaf update stream like the one Poll returns.
	Submit(ctx context.Context, tag schema.Tag, sub wire.Submission) (wire.Response, error)
}
