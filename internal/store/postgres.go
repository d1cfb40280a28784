package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/mayasama5/upe-program-sub001/internal/auth"
	"github.com/mayasama5/upe-program-sub001/internal/db"
)

const uniqueViolation = "23505"

// PostgresStore is the canonical user store.
type PostgresStore struct {
	db *db.DB
}

func NewPostgresStore(db *db.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const userColumns = `
	id, email, name, role, is_verified, picture, bio, skills,
	github_url, linkedin_url, portfolio_url,
	company_name, company_document, password_hash,
	created_at, updated_at
`

func scanUser(row *sql.Row) (*User, error) {
	var u User
	var role string
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &role, &u.IsVerified,
		&u.Picture, &u.Bio, pq.Array(&u.Skills),
		&u.GithubURL, &u.LinkedinURL, &u.PortfolioURL,
		&u.CompanyName, &u.CompanyDocument, &u.PasswordHash,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Role = auth.Role(role)
	return &u, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id))
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`, email))
}

func (s *PostgresStore) Create(ctx context.Context, u *User) error {
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.Skills == nil {
		u.Skills = []string{}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (
			id, email, name, role, is_verified, picture, bio, skills,
			github_url, linkedin_url, portfolio_url,
			company_name, company_document, password_hash,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`,
		u.ID, u.Email, u.Name, string(u.Role), u.IsVerified,
		u.Picture, u.Bio, pq.Array(u.Skills),
		u.GithubURL, u.LinkedinURL, u.PortfolioURL,
		u.CompanyName, u.CompanyDocument, u.PasswordHash,
		u.CreatedAt, u.UpdatedAt,
	)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrEmailTaken
	}
	return err
}

func (s *PostgresStore) UpdateRole(ctx context.Context, id string, role auth.Role) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET role = $2, updated_at = NOW()
		WHERE id = $1
	`, id, string(role))
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
