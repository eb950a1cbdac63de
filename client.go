package eventstore

import (
	"context"

	"github.com/streamforge/eventstore-go/protos/persistent"
	"github.com/streamforge/eventstore-go/protos/streams"
)

// ClientConfig configures envelope-level concerns: the default credentials
// a call attaches when it passes none of its own (the executor a Client
// talks through is passed to NewClient separately). RPC-specific options (expected
// revision, read direction, filters, ...) are passed per call, not kept
// here: builder option types are out of scope, this only covers what every
// call needs regardless of which command it is.
type ClientConfig struct {
	DefaultCredentials *Credentials
}

// Client is the entry point for every command this package implements. It
// holds no connection state of its own; a NodeExecutor supplies channels
// per call, so a single Client is safe to share across goroutines and
// across a changing cluster topology.
type Client struct {
	executor NodeExecutor
	config   ClientConfig
}

// NewClient wraps executor with the commands in this package.
func NewClient(executor NodeExecutor, config ClientConfig) *Client {
	return &Client{executor: executor, config: config}
}

func (c *Client) credentials(override *Credentials) *Credentials {
	if override != nil {
		return override
	}
	if c.config.DefaultCredentials != nil {
		return c.config.DefaultCredentials
	}
	return c.executor.DefaultCredentials()
}

func (c *Client) streamsClient(ctx context.Context) (streams.StreamsClient, error) {
	conn, err := c.executor.Channel(ctx)
	if err != nil {
		return nil, errTransport(err)
	}
	return streams.NewStreamsClient(conn), nil
}

func (c *Client) persistentClient(ctx context.Context) (persistent.PersistentSubscriptionsClient, error) {
	conn, err := c.executor.Channel(ctx)
	if err != nil {
		return nil, errTransport(err)
	}
	return persistent.NewPersistentSubscriptionsClient(conn), nil
}
