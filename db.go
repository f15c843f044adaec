package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DB executes generated SQL against the CRM PostgreSQL database. Each query
// runs on a short-lived connection so a statement that poisons its session
// cannot affect the next attempt.
type DB struct {
	cfg     DatabaseConfig
	connect func() (*sql.DB, error) // test hook
}

// NewDB builds an executor from connection parameters. No connection is made
// until the first query.
func NewDB(cfg DatabaseConfig) *DB {
	d := &DB{cfg: cfg}
	d.connect = func() (*sql.DB, error) {
		return sql.Open("pgx", cfg.DSN())
	}
	return d
}

// Ping verifies the database is reachable with the configured credentials.
func (d *DB) Ping(ctx context.Context) error {
	conn, err := d.connect()
	if err != nil {
		return &DatabaseError{Err: fmt.Errorf("open connection: %w", err)}
	}
	defer func() { _ = conn.Close() }()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		if logger != nil {
			logger.Error("Database ping failed", "error", err, "host", d.cfg.Host, "database", d.cfg.Name)
		}
		return &DatabaseError{Err: fmt.Errorf("ping: %w", err)}
	}
	return nil
}

// ExecuteQuery runs one read query and maps every row to a column-keyed
// record. Column order from the statement is preserved in the result set so
// renderers can lay tables out the way the query wrote them.
func (d *DB) ExecuteQuery(ctx context.Context, sqlText string) (*ResultSet, error) {
	conn, err := d.connect()
	if err != nil {
		if logger != nil {
			logger.Error("Failed to open database connection", "error", err, "host", d.cfg.Host)
		}
		return nil, &DatabaseError{Err: fmt.Errorf("open connection: %w", err)}
	}
	defer func() { _ = conn.Close() }()

	start := time.Now()
	rows, err := conn.QueryContext(ctx, sqlText)
	if err != nil {
		if logger != nil {
			logger.Error("Query execution failed", "error", err, "sql", sqlText)
		}
		return nil, &DatabaseError{Err: err}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, &DatabaseError{Err: fmt.Errorf("read columns: %w", err)}
	}

	results := &ResultSet{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			if logger != nil {
				logger.Error("Failed to scan result row", "error", err, "sql", sqlText)
			}
			return nil, &DatabaseError{Err: fmt.Errorf("scan row: %w", err)}
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			row[col] = normalizeValue(values[i])
		}
		results.Rows = append(results.Rows, row)
	}

	if err := rows.Err(); err != nil {
		if logger != nil {
			logger.Error("Row iteration error", "error", err, "sql", sqlText, "rows_read", len(results.Rows))
		}
		return nil, &DatabaseError{Err: err}
	}

	if logger != nil {
		logger.Info("Query executed", "rows", len(results.Rows), "duration", time.Since(start))
	}

	return results, nil
}

// normalizeValue converts driver-specific scan values into JSON-friendly Go
// types. Byte slices carry text and numeric values through the pgx driver.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
