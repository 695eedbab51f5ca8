package mongo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"docbrains-backend/internal/shared/telemetry"
)

// Collection names shared by the document and chat repositories.
const (
	DocumentsCollection = "documents"
	ChatCollection      = "chat_messages"
)

// Options controls client connectivity.
type Options struct {
	ConnectTimeout time.Duration
	PingTimeout    time.Duration
	MaxPoolSize    uint64
}

// DefaultOptions returns defaults for long-running processes.
func DefaultOptions() Options {
	return Options{
		ConnectTimeout: 10 * time.Second,
		PingTimeout:    5 * time.Second,
		MaxPoolSize:    20,
	}
}

// Connect opens a client against uri and verifies the primary is reachable.
// Callers own the returned client and must Disconnect it.
func Connect(ctx context.Context, uri string, opts Options) (*mongo.Client, error) {
	if strings.TrimSpace(uri) == "" {
		return nil, fmt.Errorf("MONGO_URL is empty")
	}

	clientOpts := options.Client().ApplyURI(uri)
	if opts.ConnectTimeout > 0 {
		clientOpts.SetConnectTimeout(opts.ConnectTimeout)
	}
	if opts.MaxPoolSize > 0 {
		clientOpts.SetMaxPoolSize(opts.MaxPoolSize)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := Ping(ctx, client, opts.PingTimeout); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	telemetry.Info("mongo.init", map[string]any{"max_pool": opts.MaxPoolSize})
	return client, nil
}

// Ping checks the primary within timeout (5s when unset).
func Ping(ctx context.Context, client *mongo.Client, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping mongo: %w", err)
	}
	return nil
}
