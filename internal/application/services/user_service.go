package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/casaflow/casaflow/internal/core/domain/user"
	"github.com/casaflow/casaflow/internal/core/domain/verification"
	"github.com/casaflow/casaflow/internal/core/ports"
	"github.com/casaflow/casaflow/internal/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// ErrEmailTaken rejects registration with an address that already has an
// account, verified or not.
var ErrEmailTaken = errors.New("email is already taken")

type UserService struct {
	repo         ports.UserRepository
	verification ports.VerificationService
	logger       *logrus.Logger
}

func NewUserService(repo ports.UserRepository, verificationSvc ports.VerificationService, logger *logrus.Logger) ports.UserService {
	return &UserService{
		repo:         repo,
		verification: verificationSvc,
		logger:       logger,
	}
}

// Register creates an unverified account and triggers the first
// verification code issuance. Issuance failure does not fail
// registration; the client can request a resend.
func (s *UserService) Register(ctx context.Context, req *user.RegisterRequest) (*ports.RegistrationResult, error) {
	email := verification.NormalizeEmail(req.Email)

	if err := utils.ValidatePasswordStrength(req.Password); err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser := &user.User{
		ID:            uuid.New(),
		Email:         email,
		PasswordHash:  string(hashedPassword),
		Name:          req.Name,
		Phone:         req.Phone,
		EmailVerified: false,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	if err := s.repo.Create(ctx, newUser); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	issue, err := s.verification.IssueCode(ctx, email)
	if err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{
				"user_id": newUser.ID,
				"email":   newUser.Email,
			}).WithError(err).Warn("failed to issue verification code after registration")
		}
		issue = &verification.IssueResult{Sent: false}
	}

	return &ports.RegistrationResult{User: newUser, Issue: issue}, nil
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.repo.GetByEmail(ctx, verification.NormalizeEmail(email))
}
