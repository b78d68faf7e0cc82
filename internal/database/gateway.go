package database

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Result is the outcome of a raw query.
type Result struct {
	Rows         []map[string]any
	RowsAffected int64
}

// Gateway executes parameterized SQL against the shared pool. Every call is
// bounded by the gateway's query timeout.
type Gateway struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewGateway(db *gorm.DB, timeout time.Duration) *Gateway {
	return &Gateway{db: db, timeout: timeout}
}

// DB returns the underlying handle, bound to a transaction when the gateway
// was obtained from Transaction. It carries no deadline; repositories use
// Conn instead.
func (g *Gateway) DB() *gorm.DB {
	return g.db
}

// Conn returns the handle bound to ctx and the gateway's query timeout.
// The handle is a fresh session, so several statements may be chained from
// it. cancel must be called once they have finished.
func (g *Gateway) Conn(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := g.withTimeout(ctx)
	return g.db.WithContext(ctx), cancel
}

func (g *Gateway) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.timeout)
}

// Query runs sql with positional args and returns rows as column maps.
func (g *Gateway) Query(ctx context.Context, sql string, args ...any) (*Result, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	rows := make([]map[string]any, 0)
	if err := g.db.WithContext(ctx).Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		for k, v := range row {
			row[k] = normalize(v)
		}
	}
	return &Result{Rows: rows, RowsAffected: int64(len(rows))}, nil
}

// normalize gives column values the same Go types on every driver. SQLite
// leaves untyped expressions such as COUNT(*) as *interface{}, and MySQL
// returns text and DECIMAL columns as []byte.
func normalize(v any) any {
	switch x := v.(type) {
	case *any:
		if x == nil {
			return nil
		}
		return normalize(*x)
	case []byte:
		return string(x)
	case int:
		return int64(x)
	case int32:
		return int64(x)
	}
	return v
}

// Scan runs sql and scans the rows into dest (a pointer to a struct, slice
// or scalar).
func (g *Gateway) Scan(ctx context.Context, dest any, sql string, args ...any) error {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	return g.db.WithContext(ctx).Raw(sql, args...).Scan(dest).Error
}

// Exec runs a statement and reports affected rows.
func (g *Gateway) Exec(ctx context.Context, sql string, args ...any) (*Result, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	tx := g.db.WithContext(ctx).Exec(sql, args...)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &Result{RowsAffected: tx.RowsAffected}, nil
}

// Transaction runs fn on a single connection. fn's error (or panic) rolls
// back and is returned unchanged; otherwise the transaction commits.
func (g *Gateway) Transaction(ctx context.Context, fn func(tx *Gateway) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Gateway{db: tx, timeout: g.timeout})
	})
}
