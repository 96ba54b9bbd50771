package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Default pricing parameters installed on first initialization.
const (
	DefaultDistanceCoefficient = 0.5
	DefaultWeightCoefficient   = 0.5
	DefaultBaseCost            = 5.0
)

// Seed inserts the default coefficients row if none exists.
// Idempotent: re-running against an initialized database is a no-op.
// Reports whether a row was inserted.
func Seed(ctx context.Context, conn *sql.DB, dialect Dialect) (bool, error) {
	query := `
    INSERT INTO delivery_coefficients (id, distance_coefficient, weight_coefficient, base_cost, updated_at)
    VALUES (1, ?, ?, ?, ?)
    ON CONFLICT (id) DO NOTHING`
	if dialect == DialectPostgres {
		query = Rebind(query)
	}

	res, err := conn.ExecContext(ctx, query,
		DefaultDistanceCoefficient,
		DefaultWeightCoefficient,
		DefaultBaseCost,
		time.Now().UTC().Unix(),
	)
	if err != nil {
		return false, fmt.Errorf("seed coefficients: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Rebind rewrites ? placeholders to the $N form postgres expects.
// Queries in this codebase never contain literal question marks.
func Rebind(query string) string {
	out := make([]byte, 0, len(query)+8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			out = append(out, fmt.Sprintf("$%d", n)...)
			continue
		}
		out = append(out, query[i])
	}
	return string(out)
}
