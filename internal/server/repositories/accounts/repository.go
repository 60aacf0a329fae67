package accounts

import (
	"context"

	"github.com/authcore/authcore/internal/server/models"
)

// Repository is the account store. Create must be atomic with respect to the
// uniqueness checks: two concurrent calls with the same username or email
// must not both succeed.
type Repository interface {
	// Create assigns ID and CreatedAt, persists the account, and returns it.
	// Conflicts yield common.ErrDuplicateUsername or common.ErrDuplicateEmail.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)

	// FindByUsername returns common.ErrorNotFound when no account matches.
	// The match is case-sensitive.
	FindByUsername(ctx context.Context, username string) (*models.Account, error)

	// FindByID returns common.ErrorNotFound when no account matches.
	FindByID(ctx context.Context, id string) (*models.Account, error)
}
