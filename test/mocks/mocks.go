package mocks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/casaflow/casaflow/internal/core/domain/auth"
	"github.com/casaflow/casaflow/internal/core/domain/property"
	"github.com/casaflow/casaflow/internal/core/domain/user"
	"github.com/casaflow/casaflow/internal/core/domain/verification"
	"github.com/casaflow/casaflow/internal/core/ports"
)

// UserRepositoryMock is a lightweight mock for UserRepository
type UserRepositoryMock struct {
	CreateFn            func(ctx context.Context, u *user.User) error
	GetByIDFn           func(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByEmailFn        func(ctx context.Context, email string) (*user.User, error)
	UpdateFn            func(ctx context.Context, u *user.User) error
	MarkEmailVerifiedFn func(ctx context.Context, id uuid.UUID) error
}

func (m *UserRepositoryMock) Create(ctx context.Context, u *user.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, u)
	}
	return nil
}
func (m *UserRepositoryMock) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, user.ErrNotFound
}
func (m *UserRepositoryMock) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	return nil, user.ErrNotFound
}
func (m *UserRepositoryMock) Update(ctx context.Context, u *user.User) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, u)
	}
	return nil
}
func (m *UserRepositoryMock) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	if m.MarkEmailVerifiedFn != nil {
		return m.MarkEmailVerifiedFn(ctx, id)
	}
	return nil
}

// VerificationRepositoryMock is a lightweight mock for VerificationRepository
type VerificationRepositoryMock struct {
	GetFn               func(ctx context.Context, email string) (*verification.Record, error)
	IssueCodeFn         func(ctx context.Context, p ports.IssueParams) (*verification.Record, error)
	IncrementAttemptsFn func(ctx context.Context, email, codeHash string, maxAttempts int) (int, error)
	DeleteFn            func(ctx context.Context, email string) error
}

func (m *VerificationRepositoryMock) Get(ctx context.Context, email string) (*verification.Record, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, email)
	}
	return nil, verification.ErrNotFound
}
func (m *VerificationRepositoryMock) IssueCode(ctx context.Context, p ports.IssueParams) (*verification.Record, error) {
	if m.IssueCodeFn != nil {
		return m.IssueCodeFn(ctx, p)
	}
	return &verification.Record{
		Email:           p.Email,
		CodeHash:        p.CodeHash,
		ExpiresAt:       p.ExpiresAt,
		SendCount:       1,
		WindowStartedAt: p.Now,
		LastSentAt:      p.Now,
		CreatedAt:       p.Now,
	}, nil
}
func (m *VerificationRepositoryMock) IncrementAttempts(ctx context.Context, email, codeHash string, maxAttempts int) (int, error) {
	if m.IncrementAttemptsFn != nil {
		return m.IncrementAttemptsFn(ctx, email, codeHash, maxAttempts)
	}
	return 1, nil
}
func (m *VerificationRepositoryMock) Delete(ctx context.Context, email string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, email)
	}
	return nil
}

// NotifierMock records sent codes
type NotifierMock struct {
	SendVerificationCodeFn func(ctx context.Context, to, name, code string) error
}

func (m *NotifierMock) SendVerificationCode(ctx context.Context, to, name, code string) error {
	if m.SendVerificationCodeFn != nil {
		return m.SendVerificationCodeFn(ctx, to, name, code)
	}
	return nil
}

// CodeGeneratorMock returns a fixed code
type CodeGeneratorMock struct {
	GenerateFn func() (string, error)
}

func (m *CodeGeneratorMock) Generate() (string, error) {
	if m.GenerateFn != nil {
		return m.GenerateFn()
	}
	return "123456", nil
}

// CodeHasherMock hashes codes with a reversible marker instead of bcrypt
type CodeHasherMock struct {
	HashFn   func(code string) (string, error)
	VerifyFn func(code, hash string) bool
}

func (m *CodeHasherMock) Hash(code string) (string, error) {
	if m.HashFn != nil {
		return m.HashFn(code)
	}
	return "hash:" + code, nil
}
func (m *CodeHasherMock) Verify(code, hash string) bool {
	if m.VerifyFn != nil {
		return m.VerifyFn(code, hash)
	}
	return hash == "hash:"+code
}

// OTPRateLimiterMock allows everything unless told otherwise
type OTPRateLimiterMock struct {
	AllowFn func(rec *verification.Record, now time.Time) error
}

func (m *OTPRateLimiterMock) Allow(rec *verification.Record, now time.Time) error {
	if m.AllowFn != nil {
		return m.AllowFn(rec, now)
	}
	return nil
}

// UserServiceMock is a lightweight mock for UserService
type UserServiceMock struct {
	RegisterFn       func(ctx context.Context, req *user.RegisterRequest) (*ports.RegistrationResult, error)
	GetUserFn        func(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetUserByEmailFn func(ctx context.Context, email string) (*user.User, error)
}

func (m *UserServiceMock) Register(ctx context.Context, req *user.RegisterRequest) (*ports.RegistrationResult, error) {
	if m.RegisterFn != nil {
		return m.RegisterFn(ctx, req)
	}
	return nil, fmt.Errorf("not implemented")
}
func (m *UserServiceMock) GetUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	if m.GetUserFn != nil {
		return m.GetUserFn(ctx, id)
	}
	return nil, user.ErrNotFound
}
func (m *UserServiceMock) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	if m.GetUserByEmailFn != nil {
		return m.GetUserByEmailFn(ctx, email)
	}
	return nil, user.ErrNotFound
}

// AuthServiceMock is a lightweight mock for AuthService
type AuthServiceMock struct {
	LoginFn         func(ctx context.Context, req *auth.LoginRequest) (*auth.AuthTokens, error)
	ValidateTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)
}

func (m *AuthServiceMock) Login(ctx context.Context, req *auth.LoginRequest) (*auth.AuthTokens, error) {
	if m.LoginFn != nil {
		return m.LoginFn(ctx, req)
	}
	return nil, fmt.Errorf("invalid credentials")
}
func (m *AuthServiceMock) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, tokenString)
	}
	return nil, fmt.Errorf("invalid token")
}

// VerificationServiceMock is a lightweight mock for VerificationService
type VerificationServiceMock struct {
	IssueCodeFn  func(ctx context.Context, email string) (*verification.IssueResult, error)
	VerifyCodeFn func(ctx context.Context, email, code string) error
}

func (m *VerificationServiceMock) IssueCode(ctx context.Context, email string) (*verification.IssueResult, error) {
	if m.IssueCodeFn != nil {
		return m.IssueCodeFn(ctx, email)
	}
	return &verification.IssueResult{ExpiresIn: 600, Sent: true}, nil
}
func (m *VerificationServiceMock) VerifyCode(ctx context.Context, email, code string) error {
	if m.VerifyCodeFn != nil {
		return m.VerifyCodeFn(ctx, email, code)
	}
	return nil
}

// PropertyServiceMock is a lightweight mock for PropertyService
type PropertyServiceMock struct {
	CreatePropertyFn func(ctx context.Context, ownerID uuid.UUID, req *property.CreatePropertyRequest) (*property.Property, error)
	GetPropertyFn    func(ctx context.Context, id uuid.UUID) (*property.Property, error)
	UpdatePropertyFn func(ctx context.Context, id, actorID uuid.UUID, req *property.UpdatePropertyRequest) (*property.Property, error)
	DeletePropertyFn func(ctx context.Context, id, actorID uuid.UUID) error
	ListPropertiesFn func(ctx context.Context, city string, limit, offset int) ([]*property.Property, int, error)
}

func (m *PropertyServiceMock) CreateProperty(ctx context.Context, ownerID uuid.UUID, req *property.CreatePropertyRequest) (*property.Property, error) {
	if m.CreatePropertyFn != nil {
		return m.CreatePropertyFn(ctx, ownerID, req)
	}
	return nil, fmt.Errorf("not implemented")
}
func (m *PropertyServiceMock) GetProperty(ctx context.Context, id uuid.UUID) (*property.Property, error) {
	if m.GetPropertyFn != nil {
		return m.GetPropertyFn(ctx, id)
	}
	return nil, fmt.Errorf("not found")
}
func (m *PropertyServiceMock) UpdateProperty(ctx context.Context, id, actorID uuid.UUID, req *property.UpdatePropertyRequest) (*property.Property, error) {
	if m.UpdatePropertyFn != nil {
		return m.UpdatePropertyFn(ctx, id, actorID, req)
	}
	return nil, fmt.Errorf("not found")
}
func (m *PropertyServiceMock) DeleteProperty(ctx context.Context, id, actorID uuid.UUID) error {
	if m.DeletePropertyFn != nil {
		return m.DeletePropertyFn(ctx, id, actorID)
	}
	return nil
}
func (m *PropertyServiceMock) ListProperties(ctx context.Context, city string, limit, offset int) ([]*property.Property, int, error) {
	if m.ListPropertiesFn != nil {
		return m.ListPropertiesFn(ctx, city, limit, offset)
	}
	return nil, 0, nil
}

// RateLimiterServiceMock allows all requests by default
type RateLimiterServiceMock struct {
	AllowFn func(ctx context.Context, clientKey string) (bool, int, int, time.Time, error)
}

func (m *RateLimiterServiceMock) Allow(ctx context.Context, clientKey string) (bool, int, int, time.Time, error) {
	if m.AllowFn != nil {
		return m.AllowFn(ctx, clientKey)
	}
	return true, 100, 100, time.Now().Add(time.Minute), nil
}
