package postgres

import "fmt"

// SchemaSQL returns the DDL of the application users table
func SchemaSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id                    TEXT PRIMARY KEY,
	email                 TEXT NOT NULL DEFAULT '',
	role                  TEXT NOT NULL,
	status                TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'blocked', 'deleted')),
	first_name            TEXT NOT NULL DEFAULT '',
	last_name             TEXT NOT NULL DEFAULT '',
	phone                 TEXT NOT NULL DEFAULT '',
	gdpr_consent          BOOLEAN NOT NULL,
	locale                TEXT NOT NULL,
	first_login_completed BOOLEAN NOT NULL,
	created_at            TIMESTAMPTZ NOT NULL,
	updated_at            TIMESTAMPTZ NOT NULL,
	last_login            TIMESTAMPTZ NOT NULL
)`, quoteQualified(table))
}
