// Package driver abstracts the database connection boundary the engine
// calls out to for EXPLAIN plans. It is the only part of the pipeline that
// may block.
//
// Grounded on the teacher's internal/analyzer package (NewMySQLAnalyzer,
// NewPostgresAnalyzer, NewSQLiteAnalyzer and their executeExplain methods),
// reworked to return raw tabular rows and/or a raw plan tree instead of a
// reduced QueryPlan{Cost, UsesIndex, FullScan} struct — internal/planparser
// owns interpreting that raw shape now.
package driver

import (
	"context"
	"database/sql"
)

// Interface is implemented by each supported database dialect's EXPLAIN
// adapter.
type Interface interface {
	// Explain runs EXPLAIN for sql and returns whichever of tabularRows or
	// planTree this dialect produces; the other is nil. args are the
	// query's bind parameters, forwarded verbatim to avoid re-interpolating
	// the statement.
	Explain(ctx context.Context, query string, args []interface{}) (tabularRows []map[string]interface{}, planTree []byte, err error)

	// DriverName identifies the SQL dialect, matching the names registered
	// in internal/dialects ("mysql", "postgres", "sqlite").
	DriverName() string
}

// MySQL adapts a *sql.DB to Interface using EXPLAIN FORMAT=JSON.
type MySQL struct {
	db *sql.DB
}

func NewMySQL(db *sql.DB) *MySQL { return &MySQL{db: db} }

func (d *MySQL) DriverName() string { return "mysql" }

func (d *MySQL) Explain(ctx context.Context, query string, args []interface{}) ([]map[string]interface{}, []byte, error) {
	var rawJSON string
	err := d.db.QueryRowContext(ctx, "EXPLAIN FORMAT=JSON "+query, args...).Scan(&rawJSON)
	if err != nil {
		return nil, nil, err
	}
	return nil, []byte(rawJSON), nil
}

// Postgres adapts a *sql.DB to Interface using EXPLAIN (FORMAT JSON).
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

func (d *Postgres) DriverName() string { return "postgres" }

func (d *Postgres) Explain(ctx context.Context, query string, args []interface{}) ([]map[string]interface{}, []byte, error) {
	var rawJSON string
	err := d.db.QueryRowContext(ctx, "EXPLAIN (FORMAT JSON) "+query, args...).Scan(&rawJSON)
	if err != nil {
		return nil, nil, err
	}
	return nil, []byte(rawJSON), nil
}

// SQLite adapts a *sql.DB to Interface using EXPLAIN QUERY PLAN, which
// returns tabular rows with no JSON form.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(db *sql.DB) *SQLite { return &SQLite{db: db} }

func (d *SQLite) DriverName() string { return "sqlite" }

func (d *SQLite) Explain(ctx context.Context, query string, args []interface{}) ([]map[string]interface{}, []byte, error) {
	rows, err := d.db.QueryContext(ctx, "EXPLAIN QUERY PLAN "+query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var tabular []map[string]interface{}
	for rows.Next() {
		values := make([]interface{}, len(cols))
		pointers := make([]interface{}, len(cols))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, nil, err
		}
		row := make(map[string]interface{}, len(cols))
		for i, col := range cols {
			row[col] = values[i]
		}
		tabular = append(tabular, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	return tabular, nil, nil
}

// DetailText flattens SQLite's EXPLAIN QUERY PLAN rows into the
// newline-joined "detail" text internal/planparser expects, tolerating
// either the 4-column legacy form (id, parent, notused, detail) or any
// schema that carries a "detail" column.
func DetailText(rows []map[string]interface{}) string {
	var lines []string
	for _, row := range rows {
		if detail, ok := row["detail"]; ok {
			if s, ok := detail.(string); ok {
				lines = append(lines, s)
				continue
			}
			if b, ok := detail.([]byte); ok {
				lines = append(lines, string(b))
			}
		}
	}
	joined := ""
	for i, line := range lines {
		if i > 0 {
			joined += "\n"
		}
		joined += line
	}
	return joined
}
