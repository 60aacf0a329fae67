package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/authcore/authcore/internal/common"
	"github.com/authcore/authcore/internal/dbx"
	"github.com/authcore/authcore/internal/server/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Constraint names from the accounts migration; a unique violation is mapped
// back to the duplicate-field error by the constraint that fired.
const (
	usernameConstraint = "accounts_username_key"
	emailConstraint    = "accounts_email_key"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {

	account.ID = uuid.NewString()

	query :=
		`INSERT INTO accounts (id, username, email, first_name, last_name, password_hash)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		account.ID, account.Username, account.Email,
		account.FirstName, account.LastName, account.PasswordHash).Scan(&account.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case usernameConstraint:
				return nil, common.ErrDuplicateUsername
			case emailConstraint:
				return nil, common.ErrDuplicateEmail
			}
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	query :=
		`SELECT id, username, email, first_name, last_name, password_hash, created_at
		 FROM accounts
		 WHERE username = $1
		 `

	return r.findOne(ctx, query, username)
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	query :=
		`SELECT id, username, email, first_name, last_name, password_hash, created_at
		 FROM accounts
		 WHERE id = $1
		 `

	return r.findOne(ctx, query, id)
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, arg any) (*models.Account, error) {
	account := &models.Account{}

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&account.ID, &account.Username, &account.Email,
		&account.FirstName, &account.LastName, &account.PasswordHash, &account.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}
