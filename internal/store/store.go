// Package store implements source and target store access on database/sql.
//
// Every entity sync gets its own pair of sessions: one dedicated *sql.Conn per
// side, so session settings (read-only mode) and the write transaction stay on
// a single server connection.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"trade-sync/internal/dialect"
	"trade-sync/internal/reconcile"
)

// Endpoint names a database/sql driver and its connection string.
type Endpoint struct {
	Driver string
	DSN    string
}

// Connector opens store sessions for the sync engine.
type Connector struct {
	Source Endpoint
	Target Endpoint

	// ConnectTimeout bounds connection establishment only. Zero means no timeout.
	ConnectTimeout time.Duration

	// ParamLimit lowers the bind parameters used per statement below the dialect maximum.
	ParamLimit int
}

var _ reconcile.Connector = (*Connector)(nil)

// OpenSource implements reconcile.Connector.
func (c *Connector) OpenSource(ctx context.Context) (reconcile.SourceStore, error) {
	return c.ConnectSource(ctx)
}

// OpenTarget implements reconcile.Connector.
func (c *Connector) OpenTarget(ctx context.Context) (reconcile.TargetStore, error) {
	return c.ConnectTarget(ctx)
}

// ConnectSource opens a read-only session on the source store.
// Read-only mode is requested in the DSN and, where the database supports it,
// applied again to the session before it is handed out.
func (c *Connector) ConnectSource(ctx context.Context) (*Source, error) {
	d, err := c.dialect(c.Source.Driver)
	if err != nil {
		return nil, &reconcile.ConnectionError{Side: reconcile.SideSource, Err: err}
	}

	dsn, err := d.ReadOnlyDSN(c.Source.DSN)
	if err != nil {
		return nil, &reconcile.ConnectionError{Side: reconcile.SideSource, Err: err}
	}

	h, err := open(ctx, reconcile.SideSource, c.Source.Driver, dsn, d, c.ConnectTimeout)
	if err != nil {
		return nil, err
	}

	if stmt := d.ReadOnlySession(); stmt != "" {
		if _, err := h.conn.ExecContext(ctx, stmt); err != nil {
			h.Close()
			return nil, &reconcile.ConnectionError{
				Side: reconcile.SideSource,
				Err:  fmt.Errorf("failed to enable read-only session: %w", err),
			}
		}
	}
	return &Source{handle: h}, nil
}

// ConnectTarget opens a read-write session on the target store.
func (c *Connector) ConnectTarget(ctx context.Context) (*Target, error) {
	d, err := c.dialect(c.Target.Driver)
	if err != nil {
		return nil, &reconcile.ConnectionError{Side: reconcile.SideTarget, Err: err}
	}

	h, err := open(ctx, reconcile.SideTarget, c.Target.Driver, c.Target.DSN, d, c.ConnectTimeout)
	if err != nil {
		return nil, err
	}
	return &Target{handle: h}, nil
}

func (c *Connector) dialect(driver string) (dialect.Dialect, error) {
	d, err := dialect.GetDialect(driver)
	if err != nil {
		return nil, err
	}
	return dialect.WithParamLimit(d, c.ParamLimit), nil
}

// handle is one open session: the pool it came from and the reserved connection.
type handle struct {
	side reconcile.Side
	db   *sql.DB
	conn *sql.Conn
	d    dialect.Dialect
}

func open(ctx context.Context, side reconcile.Side, driver, dsn string, d dialect.Dialect, timeout time.Duration) (*handle, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, &reconcile.ConnectionError{Side: side, Err: fmt.Errorf("failed to open db: %w", err)}
	}

	connCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		connCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	conn, err := db.Conn(connCtx)
	if err != nil {
		db.Close()
		return nil, &reconcile.ConnectionError{Side: side, Err: fmt.Errorf("failed to connect to db: %w", err)}
	}
	if err := conn.PingContext(connCtx); err != nil {
		conn.Close()
		db.Close()
		return nil, &reconcile.ConnectionError{Side: side, Err: fmt.Errorf("failed to connect to db: %w", err)}
	}

	return &handle{side: side, db: db, conn: conn, d: d}, nil
}

// Close releases the session and its pool.
func (h *handle) Close() error {
	connErr := h.conn.Close()
	dbErr := h.db.Close()
	if connErr != nil {
		return connErr
	}
	return dbErr
}

// Dialect returns the SQL dialect of the session.
func (h *handle) Dialect() dialect.Dialect { return h.d }

// IDs resolves the identity set of table.
func (h *handle) IDs(ctx context.Context, table, key string) (reconcile.IdentitySet, error) {
	ids, err := ResolveIdentitySet(ctx, h.conn, h.d, table, key)
	if err != nil {
		return nil, &reconcile.QueryError{Side: h.side, Op: "select ids", Table: table, Err: err}
	}
	return ids, nil
}

// Count returns the current row count of table.
func (h *handle) Count(ctx context.Context, table string) (int, error) {
	var n int
	if err := h.conn.QueryRowContext(ctx, h.d.CountQuery(table)).Scan(&n); err != nil {
		return 0, &reconcile.QueryError{Side: h.side, Op: "count", Table: table, Err: err}
	}
	return n, nil
}

func (h *handle) queryError(op, table string, err error) error {
	return &reconcile.QueryError{Side: h.side, Op: op, Table: table, Err: err}
}
