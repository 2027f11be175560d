package ports

import (
	"context"

	"github.com/casaflow/casaflow/internal/core/domain/user"
	"github.com/casaflow/casaflow/internal/core/domain/verification"
	"github.com/google/uuid"
)

// UserRepository abstracts account persistence.
type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	Update(ctx context.Context, u *user.User) error
	// MarkEmailVerified flips email_verified exactly once; verified
	// accounts are left untouched.
	MarkEmailVerified(ctx context.Context, id uuid.UUID) error
}

// RegistrationResult combines the created account with the outcome of the
// verification code issuance triggered by registration.
type RegistrationResult struct {
	User  *user.User
	Issue *verification.IssueResult
}

// UserService defines account business operations.
type UserService interface {
	Register(ctx context.Context, req *user.RegisterRequest) (*RegistrationResult, error)
	GetUser(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)
}
