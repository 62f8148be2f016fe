package ports

import (
	"context"

	"github.com/talentloop/portal/internal/core/domain"
)

// Account is a user record as held by the development backend.
type Account struct {
	domain.User
	PasswordHash string
}

// AccountRepository persists accounts for the development backend.
type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)
	Create(ctx context.Context, account *Account) (*Account, error)
	Update(ctx context.Context, account *Account) error
}
