package database

import (
	"context"
	"time"

	"github.com/surrealdb/surrealdb.go"

	"github.com/nfrund/neuralfeed/internal/config"
)

// Client runs typed queries for records of type T over a managed
// Connection, applying the configured timeouts.
type Client[T any] struct {
	conn           *Connection
	queryTimeout   time.Duration
	executeTimeout time.Duration
}

// NewClient creates a type-safe client. Timeouts come from cfg and must be
// positive.
func NewClient[T any](conn *Connection, cfg config.Provider) (*Client[T], error) {
	if conn == nil {
		return nil, NewDBError(ErrInvalidInput, "connection cannot be nil")
	}
	if cfg.GetDBQueryTimeout() <= 0 {
		return nil, NewDBError(ErrInvalidInput, "DB_QUERY_TIMEOUT must be a positive duration")
	}
	if cfg.GetDBExecuteTimeout() <= 0 {
		return nil, NewDBError(ErrInvalidInput, "DB_EXECUTE_TIMEOUT must be a positive duration")
	}
	return &Client[T]{
		conn:           conn,
		queryTimeout:   cfg.GetDBQueryTimeout(),
		executeTimeout: cfg.GetDBExecuteTimeout(),
	}, nil
}

// Query returns every record produced by query.
func (c *Client[T]) Query(ctx context.Context, query string, params map[string]any) ([]T, error) {
	ctx, cancel := getTimeoutFromContext(ctx, c.queryTimeout, ContextKeyQueryTimeout)
	defer cancel()

	var out []T
	err := c.conn.WithConnection(ctx, func(db *surrealdb.DB) error {
		var err error
		out, err = Query[T](ctx, db, query, params)
		return err
	})
	return out, err
}

// QueryOne returns the single record produced by query, or nil.
func (c *Client[T]) QueryOne(ctx context.Context, query string, params map[string]any) (*T, error) {
	ctx, cancel := getTimeoutFromContext(ctx, c.queryTimeout, ContextKeyQueryTimeout)
	defer cancel()

	var out *T
	err := c.conn.WithConnection(ctx, func(db *surrealdb.DB) error {
		var err error
		out, err = QueryOne[T](ctx, db, query, params)
		return err
	})
	return out, err
}

// Write runs a mutating statement and returns the affected record, or nil.
func (c *Client[T]) Write(ctx context.Context, query string, params map[string]any) (*T, error) {
	ctx, cancel := getTimeoutFromContext(ctx, c.executeTimeout, ContextKeyExecuteTimeout)
	defer cancel()

	var out *T
	err := c.conn.WithConnection(ctx, func(db *surrealdb.DB) error {
		var err error
		out, err = QueryOne[T](ctx, db, query, params)
		return err
	})
	return out, err
}

// Execute runs a statement whose result is discarded.
func (c *Client[T]) Execute(ctx context.Context, query string, params map[string]any) error {
	ctx, cancel := getTimeoutFromContext(ctx, c.executeTimeout, ContextKeyExecuteTimeout)
	defer cancel()

	return c.conn.WithConnection(ctx, func(db *surrealdb.DB) error {
		return Execute(ctx, db, query, params)
	})
}
