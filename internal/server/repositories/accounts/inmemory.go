package accounts

import (
	"context"
	"sync"
	"time"

	"github.com/authcore/authcore/internal/common"
	"github.com/authcore/authcore/internal/server/models"
	"github.com/google/uuid"
)

// InMemoryRepository keeps accounts in process memory. It is used in tests
// and when the server runs without a database DSN. The mutex is held across
// the uniqueness check and the insert, which gives Create the same atomicity
// the Postgres implementation gets from its unique constraints.
type InMemoryRepository struct {
	mu         sync.RWMutex
	byID       map[string]*models.Account
	byUsername map[string]string
	byEmail    map[string]string
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byID:       make(map[string]*models.Account),
		byUsername: make(map[string]string),
		byEmail:    make(map[string]string),
	}
}

func (r *InMemoryRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byUsername[account.Username]; ok {
		return nil, common.ErrDuplicateUsername
	}
	if _, ok := r.byEmail[account.Email]; ok {
		return nil, common.ErrDuplicateEmail
	}

	stored := *account
	stored.ID = uuid.NewString()
	stored.CreatedAt = time.Now().UTC()

	r.byID[stored.ID] = &stored
	r.byUsername[stored.Username] = stored.ID
	r.byEmail[stored.Email] = stored.ID

	out := stored
	return &out, nil
}

func (r *InMemoryRepository) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *r.byID[id]
	return &out, nil
}

func (r *InMemoryRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *account
	return &out, nil
}
