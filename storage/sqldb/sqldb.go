// Package sqldb implements todoapi.Storage with a SQL table accessed through a bounded connection pool.
// PostgreSQL and SQLite are supported and selected from the database URL.
package sqldb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/calvinmclean/todoapi"
	"github.com/lib/pq"
	"github.com/pocketbase/dbx"

	_ "modernc.org/sqlite"
)

const (
	TableName = "todos"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	DefaultMaxOpenConns    = 10
	DefaultMaxIdleConns    = 5
	DefaultConnMaxLifetime = 30 * time.Minute
	DefaultQueryTimeout    = 5 * time.Second

	sqliteMemory = ":memory:"
)

var schemas = map[string]string{
	DriverPostgres: `CREATE TABLE IF NOT EXISTS todos (
		id SERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		completed BOOLEAN,
		url TEXT
	)`,
	DriverSQLite: `CREATE TABLE IF NOT EXISTS todos (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		completed BOOLEAN,
		url TEXT
	)`,
}

var columns = []string{"id", "title", "completed", "url"}

// Config has the connection string and pool settings. Zero values use the defaults
type Config struct {
	// URL is postgres://..., postgresql://..., sqlite://<path> or sqlite::memory:
	URL string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// QueryTimeout bounds each operation, including waiting for a pooled connection
	QueryTimeout time.Duration
}

// row is the stored representation. Optional columns are nullable
type row struct {
	ID        int64   `db:"id"`
	Title     string  `db:"title"`
	Completed *bool   `db:"completed"`
	URL       *string `db:"url"`
}

func (r row) todo() *todoapi.Todo {
	return &todoapi.Todo{ID: r.ID, Title: r.Title, Completed: r.Completed, URL: r.URL}
}

// Storage implements todoapi.Storage using a dbx.DB
type Storage struct {
	db      *dbx.DB
	timeout time.Duration
}

var _ todoapi.Storage = &Storage{}

// ParseURL returns the driver name and data source name for a database URL
func ParseURL(rawURL string) (string, string, error) {
	switch {
	case strings.HasPrefix(rawURL, "postgres://"), strings.HasPrefix(rawURL, "postgresql://"):
		return DriverPostgres, rawURL, nil
	case rawURL == "sqlite::memory:", rawURL == "sqlite://:memory:":
		return DriverSQLite, sqliteMemory, nil
	}

	path, ok := strings.CutPrefix(rawURL, "sqlite://")
	if !ok {
		return "", "", fmt.Errorf("unsupported database URL %q: expected postgres:// or sqlite://", redact(rawURL))
	}
	if path == "" {
		return "", "", fmt.Errorf("missing sqlite file path in %q", rawURL)
	}

	return DriverSQLite, path + "?_pragma=busy_timeout(5000)", nil
}

// Open connects to the database from cfg.URL, configures the pool and creates the todos table if it does not exist
func Open(ctx context.Context, cfg Config) (*Storage, error) {
	driverName, dsn, err := ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	db, err := dbx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	configurePool(db.DB(), cfg, dsn == sqliteMemory)

	s := New(db, cfg.QueryTimeout)

	err = s.Migrate(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func configurePool(pool *sql.DB, cfg Config, memory bool) {
	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = DefaultMaxOpenConns
	}
	maxIdle := cfg.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = min(DefaultMaxIdleConns, maxOpen)
	}
	lifetime := cfg.ConnMaxLifetime
	if lifetime <= 0 {
		lifetime = DefaultConnMaxLifetime
	}

	// every connection to :memory: is a separate database
	if memory {
		maxOpen, maxIdle, lifetime = 1, 1, 0
	}

	pool.SetMaxOpenConns(maxOpen)
	pool.SetMaxIdleConns(maxIdle)
	pool.SetConnMaxLifetime(lifetime)
}

// New creates Storage from an existing connection pool
func New(db *dbx.DB, queryTimeout time.Duration) *Storage {
	if queryTimeout <= 0 {
		queryTimeout = DefaultQueryTimeout
	}
	return &Storage{db: db, timeout: queryTimeout}
}

// Migrate creates the todos table if it does not exist
func (s *Storage) Migrate(ctx context.Context) error {
	schema, ok := schemas[s.db.DriverName()]
	if !ok {
		return fmt.Errorf("unsupported driver %q", s.db.DriverName())
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.db.NewQuery(schema).WithContext(ctx).Execute()
	if err != nil {
		return classify(fmt.Errorf("error creating table: %w", err))
	}
	return nil
}

// Ping checks that a connection can be acquired
func (s *Storage) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.db.DB().PingContext(ctx)
	if err != nil {
		return unavailable(err)
	}
	return nil
}

// Close closes the connection pool
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) List(ctx context.Context) ([]*todoapi.Todo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var rows []row
	err := s.db.Select(columns...).
		From(TableName).
		OrderBy("id").
		WithContext(ctx).
		All(&rows)
	if err != nil {
		return nil, classify(fmt.Errorf("error listing todos: %w", err))
	}

	results := make([]*todoapi.Todo, 0, len(rows))
	for _, r := range rows {
		results = append(results, r.todo())
	}

	return results, nil
}

func (s *Storage) Get(ctx context.Context, id int64) (*todoapi.Todo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var r row
	err := s.db.Select(columns...).
		From(TableName).
		Where(dbx.HashExp{"id": id}).
		WithContext(ctx).
		One(&r)
	if err != nil {
		return nil, classify(fmt.Errorf("error getting todo %d: %w", id, err))
	}

	return r.todo(), nil
}

// Create inserts the Todo and returns the row as it was stored
func (s *Storage) Create(ctx context.Context, todo *todoapi.Todo) (*todoapi.Todo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var r row
	err := s.db.NewQuery(
		"INSERT INTO todos (title, completed, url) VALUES ({:title}, {:completed}, {:url}) RETURNING id, title, completed, url",
	).Bind(dbx.Params{
		"title":     todo.Title,
		"completed": todo.Completed,
		"url":       todo.URL,
	}).WithContext(ctx).One(&r)
	if err != nil {
		return nil, classify(fmt.Errorf("error inserting todo: %w", err))
	}

	return r.todo(), nil
}

// DeleteAll truncates the table. Sequences are not reset so IDs are not reused
func (s *Storage) DeleteAll(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.db.TruncateTable(TableName).WithContext(ctx).Execute()
	if err != nil {
		return classify(fmt.Errorf("error deleting todos: %w", err))
	}
	return nil
}

// classify converts driver errors to todoapi.ErrNotFound and todoapi.ErrUnavailable
func classify(err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%w: %w", todoapi.ErrNotFound, err)
	case isUnavailable(err):
		return unavailable(err)
	}
	return err
}

func isUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, driver.ErrBadConn) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		// connection_exception, insufficient_resources, operator_intervention
		case "08", "53", "57":
			return true
		}
	}

	return false
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", todoapi.ErrUnavailable, err)
}

// redact hides the password of a URL for error messages
func redact(rawURL string) string {
	scheme, rest, ok := strings.Cut(rawURL, "://")
	if !ok {
		return rawURL
	}
	userInfo, host, ok := strings.Cut(rest, "@")
	if !ok {
		return rawURL
	}
	user, _, _ := strings.Cut(userInfo, ":")
	return fmt.Sprintf("%s://%s:xxxxx@%s", scheme, user, host)
}
