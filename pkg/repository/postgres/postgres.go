package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/m-mizutani/goerr/v2"

	"github.com/gasyway/gasyway/pkg/domain/interfaces"
)

const (
	DefaultUsersTable    = "public.users"
	DefaultIdentityTable = "auth.users"
)

// Postgres is a Repository backed by a PostgreSQL users table. When the identity
// provider shares the database (as GoTrue does with auth.users) it can also provision
// the auto-sync trigger.
type Postgres struct {
	db            *sql.DB
	usersTable    string
	identityTable string
	user          *userRepository
}

var (
	_ interfaces.Repository         = &Postgres{}
	_ interfaces.TriggerProvisioner = &Postgres{}
)

type Option func(*Postgres)

// WithUsersTable sets the schema-qualified name of the application users table
func WithUsersTable(name string) Option {
	return func(p *Postgres) {
		p.usersTable = name
	}
}

// WithIdentityTable sets the schema-qualified name of the identity provider's table the
// auto-sync trigger is attached to
func WithIdentityTable(name string) Option {
	return func(p *Postgres) {
		p.identityTable = name
	}
}

// New opens a connection pool and verifies it with a ping
func New(ctx context.Context, dsn string, opts ...Option) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open database")
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to ping database")
	}

	return NewWithDB(db, opts...), nil
}

// NewWithDB wraps an existing pool. Close closes db.
func NewWithDB(db *sql.DB, opts ...Option) *Postgres {
	p := &Postgres{
		db:            db,
		usersTable:    DefaultUsersTable,
		identityTable: DefaultIdentityTable,
	}
	for _, opt := range opts {
		opt(p)
	}

	p.user = newUserRepository(db, quoteQualified(p.usersTable))
	return p
}

func (p *Postgres) User() interfaces.UserRepository {
	return p.user
}

func (p *Postgres) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// EnsureSchema creates the users table when it does not exist yet
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, SchemaSQL(p.usersTable)); err != nil {
		return goerr.Wrap(err, "failed to create users table", goerr.V("table", p.usersTable))
	}
	return nil
}

// quoteQualified quotes each dot-separated part of a schema-qualified identifier
func quoteQualified(name string) string {
	parts := strings.Split(name, ".")
	for i, part := range parts {
		parts[i] = pq.QuoteIdentifier(part)
	}
	return strings.Join(parts, ".")
}

const uniqueViolation = pq.ErrorCode("23505")

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return false
}
