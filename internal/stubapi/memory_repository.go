package stubapi

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/talentloop/portal/internal/core/domain"
	"github.com/talentloop/portal/internal/core/ports"
)

var _ ports.AccountRepository = (*MemoryAccountRepository)(nil)

// MemoryAccountRepository keeps accounts for the lifetime of the process.
// Returned accounts are copies.
type MemoryAccountRepository struct {
	mu       sync.RWMutex
	byID     map[string]*ports.Account
	idByMail map[string]string
}

func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{
		byID:     make(map[string]*ports.Account),
		idByMail: make(map[string]string),
	}
}

func cloneAccount(a *ports.Account) *ports.Account {
	clone := *a
	clone.Roles = domain.NewRoleSet(a.Roles.Names()...)
	return &clone
}

func (r *MemoryAccountRepository) Create(_ context.Context, account *ports.Account) (*ports.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.idByMail[account.Email]; exists {
		return nil, domain.ErrUserExists
	}
	stored := cloneAccount(account)
	stored.ID = uuid.NewString()
	r.byID[stored.ID] = stored
	r.idByMail[stored.Email] = stored.ID
	return cloneAccount(stored), nil
}

func (r *MemoryAccountRepository) FindByEmail(_ context.Context, email string) (*ports.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.idByMail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneAccount(r.byID[id]), nil
}

func (r *MemoryAccountRepository) FindByID(_ context.Context, id string) (*ports.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneAccount(a), nil
}

func (r *MemoryAccountRepository) Update(_ context.Context, account *ports.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[account.ID]; !ok {
		return domain.ErrUserNotFound
	}
	stored := cloneAccount(account)
	stored.Email = r.byID[account.ID].Email
	r.byID[account.ID] = stored
	return nil
}
