// Package store is the persistence layer over database/sql, shared by
// the JSON API and the admin pages.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"jwfoods/api/internal/db"
)

// PageSize is the fixed page size of the admin list views.
const PageSize = 20

// ErrNotConfigured means the coefficients row (or its table) does not
// exist yet, i.e. the initdb command has not been run.
var ErrNotConfigured = errors.New("delivery coefficients not configured")

// Coefficients is the singleton pricing configuration row.
type Coefficients struct {
	ID                  int64     `json:"id"`
	DistanceCoefficient float64   `json:"distance_coefficient"`
	WeightCoefficient   float64   `json:"weight_coefficient"`
	BaseCost            float64   `json:"base_cost"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Contact is one inbound contact-form submission. Append-only.
type Contact struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       *string   `json:"phone"`
	Message     string    `json:"message"`
	Reference   string    `json:"reference"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Calculation is one logged pricing request. Append-only.
type Calculation struct {
	ID             int64     `json:"id"`
	Distance       float64   `json:"distance"`
	Weight         float64   `json:"weight"`
	CalculatedCost float64   `json:"calculated_cost"`
	CalculatedAt   time.Time `json:"calculated_at"`
}

// Page is one slice of an ordered listing.
type Page[T any] struct {
	Items   []T
	Page    int
	PerPage int
	Total   int
}

func (p Page[T]) TotalPages() int {
	if p.Total == 0 {
		return 0
	}
	return (p.Total + p.PerPage - 1) / p.PerPage
}

func (p Page[T]) HasPrev() bool { return p.Page > 1 }
func (p Page[T]) HasNext() bool { return p.Page < p.TotalPages() }
func (p Page[T]) PrevPage() int { return p.Page - 1 }
func (p Page[T]) NextPage() int { return p.Page + 1 }

// Store wraps a database connection plus its dialect.
type Store struct {
	conn    *sql.DB
	dialect db.Dialect
}

func New(conn *sql.DB, dialect db.Dialect) *Store {
	return &Store{conn: conn, dialect: dialect}
}

func (s *Store) Close() error {
	return s.conn.Close()
}

// Ping probes connectivity for the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// Reset destructively recreates the schema.
func (s *Store) Reset(ctx context.Context) error {
	return db.Reset(ctx, s.conn, s.dialect)
}

// SeedDefaults inserts the default coefficients row if none exists.
// Reports whether a row was inserted.
func (s *Store) SeedDefaults(ctx context.Context) (bool, error) {
	return db.Seed(ctx, s.conn, s.dialect)
}

func (s *Store) rebind(query string) string {
	if s.dialect == db.DialectPostgres {
		return db.Rebind(query)
	}
	return query
}

// notConfigured reports whether err means the coefficients table is
// missing, which happens when the API is started before initdb.
func notConfigured(err error) bool {
	if errors.Is(err, sql.ErrNoRows) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "42P01" {
		return true
	}
	return strings.Contains(err.Error(), "no such table")
}

// CurrentCoefficients returns the singleton coefficients row, or
// ErrNotConfigured when it (or its table) does not exist.
func (s *Store) CurrentCoefficients(ctx context.Context) (Coefficients, error) {
	row := s.conn.QueryRowContext(ctx, `
    SELECT id, distance_coefficient, weight_coefficient, base_cost, updated_at
    FROM delivery_coefficients
    WHERE id = 1`)

	var c Coefficients
	var updated int64
	if err := row.Scan(&c.ID, &c.DistanceCoefficient, &c.WeightCoefficient, &c.BaseCost, &updated); err != nil {
		if notConfigured(err) {
			return Coefficients{}, ErrNotConfigured
		}
		return Coefficients{}, fmt.Errorf("select coefficients: %w", err)
	}
	c.UpdatedAt = time.Unix(updated, 0).UTC()
	return c, nil
}

// UpdateCoefficients writes the singleton row in place, creating it if
// absent, and refreshes updated_at. Concurrent updates are
// last-writer-wins.
func (s *Store) UpdateCoefficients(ctx context.Context, distanceCoeff, weightCoeff, baseCost float64) (Coefficients, error) {
	now := time.Now().UTC()
	_, err := s.conn.ExecContext(ctx, s.rebind(`
    INSERT INTO delivery_coefficients (id, distance_coefficient, weight_coefficient, base_cost, updated_at)
    VALUES (1, ?, ?, ?, ?)
    ON CONFLICT (id) DO UPDATE SET
      distance_coefficient = excluded.distance_coefficient,
      weight_coefficient = excluded.weight_coefficient,
      base_cost = excluded.base_cost,
      updated_at = excluded.updated_at`),
		distanceCoeff, weightCoeff, baseCost, now.Unix())
	if err != nil {
		return Coefficients{}, fmt.Errorf("upsert coefficients: %w", err)
	}
	return Coefficients{
		ID:                  1,
		DistanceCoefficient: distanceCoeff,
		WeightCoefficient:   weightCoeff,
		BaseCost:            baseCost,
		UpdatedAt:           now.Truncate(time.Second),
	}, nil
}

// InsertCalculation appends one pricing log entry and returns it.
func (s *Store) InsertCalculation(ctx context.Context, distance, weight, cost float64) (Calculation, error) {
	now := time.Now().UTC()
	row := s.conn.QueryRowContext(ctx, s.rebind(`
    INSERT INTO delivery_calculations (distance, weight, calculated_cost, calculated_at)
    VALUES (?, ?, ?, ?)
    RETURNING id`),
		distance, weight, cost, now.Unix())

	var id int64
	if err := row.Scan(&id); err != nil {
		return Calculation{}, fmt.Errorf("insert calculation: %w", err)
	}
	return Calculation{
		ID:             id,
		Distance:       distance,
		Weight:         weight,
		CalculatedCost: cost,
		CalculatedAt:   now.Truncate(time.Second),
	}, nil
}

// InsertContact appends one contact submission and returns it.
func (s *Store) InsertContact(ctx context.Context, name, email string, phone *string, message, reference string) (Contact, error) {
	now := time.Now().UTC()
	row := s.conn.QueryRowContext(ctx, s.rebind(`
    INSERT INTO contact_submissions (name, email, phone, message, reference, submitted_at)
    VALUES (?, ?, ?, ?, ?, ?)
    RETURNING id`),
		name, email, phone, message, reference, now.Unix())

	var id int64
	if err := row.Scan(&id); err != nil {
		return Contact{}, fmt.Errorf("insert contact: %w", err)
	}
	return Contact{
		ID:          id,
		Name:        name,
		Email:       email,
		Phone:       phone,
		Message:     message,
		Reference:   reference,
		SubmittedAt: now.Truncate(time.Second),
	}, nil
}

// RecentCalculations returns up to limit entries, newest first.
func (s *Store) RecentCalculations(ctx context.Context, limit int) ([]Calculation, error) {
	rows, err := s.conn.QueryContext(ctx, s.rebind(`
    SELECT id, distance, weight, calculated_cost, calculated_at
    FROM delivery_calculations
    ORDER BY calculated_at DESC, id DESC
    LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("select calculations: %w", err)
	}
	defer rows.Close()
	return scanCalculations(rows)
}

// RecentContacts returns up to limit entries, newest first.
func (s *Store) RecentContacts(ctx context.Context, limit int) ([]Contact, error) {
	rows, err := s.conn.QueryContext(ctx, s.rebind(`
    SELECT id, name, email, phone, message, reference, submitted_at
    FROM contact_submissions
    ORDER BY submitted_at DESC, id DESC
    LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("select contacts: %w", err)
	}
	defer rows.Close()
	return scanContacts(rows)
}

// ListCalculations returns one 1-based page, newest first. Pages past
// the end are empty, not an error.
func (s *Store) ListCalculations(ctx context.Context, page int) (Page[Calculation], error) {
	if page < 1 {
		page = 1
	}
	out := Page[Calculation]{Page: page, PerPage: PageSize}

	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM delivery_calculations`).Scan(&out.Total); err != nil {
		return out, fmt.Errorf("count calculations: %w", err)
	}

	rows, err := s.conn.QueryContext(ctx, s.rebind(`
    SELECT id, distance, weight, calculated_cost, calculated_at
    FROM delivery_calculations
    ORDER BY calculated_at DESC, id DESC
    LIMIT ? OFFSET ?`), PageSize, (page-1)*PageSize)
	if err != nil {
		return out, fmt.Errorf("select calculations: %w", err)
	}
	defer rows.Close()

	out.Items, err = scanCalculations(rows)
	return out, err
}

// ListContacts returns one 1-based page, newest first.
func (s *Store) ListContacts(ctx context.Context, page int) (Page[Contact], error) {
	if page < 1 {
		page = 1
	}
	out := Page[Contact]{Page: page, PerPage: PageSize}

	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM contact_submissions`).Scan(&out.Total); err != nil {
		return out, fmt.Errorf("count contacts: %w", err)
	}

	rows, err := s.conn.QueryContext(ctx, s.rebind(`
    SELECT id, name, email, phone, message, reference, submitted_at
    FROM contact_submissions
    ORDER BY submitted_at DESC, id DESC
    LIMIT ? OFFSET ?`), PageSize, (page-1)*PageSize)
	if err != nil {
		return out, fmt.Errorf("select contacts: %w", err)
	}
	defer rows.Close()

	out.Items, err = scanContacts(rows)
	return out, err
}

func scanCalculations(rows *sql.Rows) ([]Calculation, error) {
	items := []Calculation{}
	for rows.Next() {
		var c Calculation
		var at int64
		if err := rows.Scan(&c.ID, &c.Distance, &c.Weight, &c.CalculatedCost, &at); err != nil {
			return nil, fmt.Errorf("scan calculation: %w", err)
		}
		c.CalculatedAt = time.Unix(at, 0).UTC()
		items = append(items, c)
	}
	return items, rows.Err()
}

func scanContacts(rows *sql.Rows) ([]Contact, error) {
	items := []Contact{}
	for rows.Next() {
		var c Contact
		var at int64
		var phone sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &phone, &c.Message, &c.Reference, &at); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		if phone.Valid {
			c.Phone = &phone.String
		}
		c.SubmittedAt = time.Unix(at, 0).UTC()
		items = append(items, c)
	}
	return items, rows.Err()
}
