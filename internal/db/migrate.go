package db

import (
	"context"
	"database/sql"
)

type DB struct {
	*sql.DB
}

const migration = `
CREATE TABLE IF NOT EXISTS users (
    id text PRIMARY KEY,
    email text NOT NULL,
    name text NOT NULL DEFAULT '',
    role text NOT NULL DEFAULT 'estudiante',
    is_verified boolean NOT NULL DEFAULT false,
    picture text NOT NULL DEFAULT '',
    bio text NOT NULL DEFAULT '',
    skills text[] NOT NULL DEFAULT '{}',
    github_url text NOT NULL DEFAULT '',
    linkedin_url text NOT NULL DEFAULT '',
    portfolio_url text NOT NULL DEFAULT '',
    company_name text NOT NULL DEFAULT '',
    company_document text NOT NULL DEFAULT '',
    password_hash text NOT NULL DEFAULT '',
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_unique
ON users (LOWER(email)) WHERE email <> '';
`

func RunMigration(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, migration)
	return err
}
