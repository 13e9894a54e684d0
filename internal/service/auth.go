package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"

	"trkart/internal/models"
	"trkart/internal/repository"
	"trkart/internal/session"
)

// AuthService handles registration, login, and session resolution
type AuthService struct {
	customers repository.CustomerRepository
	sessions  session.Store
}

// NewAuthService creates a new AuthService
func NewAuthService(customers repository.CustomerRepository, sessions session.Store) *AuthService {
	return &AuthService{
		customers: customers,
		sessions:  sessions,
	}
}

// Register creates a new customer with a bcrypt-hashed credential
func (s *AuthService) Register(ctx context.Context, fullName, email, password string) (*models.Customer, error) {
	if fullName == "" || email == "" || password == "" {
		return nil, &ServiceError{
			Code:    ErrCodeValidation,
			Message: "Full name, email, and password are required",
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, &ServiceError{
			Code:    ErrCodeInternalError,
			Message: fmt.Sprintf("failed to hash password: %v", err),
		}
	}

	customerNumber, err := randomDigits(10)
	if err != nil {
		return nil, &ServiceError{
			Code:    ErrCodeInternalError,
			Message: fmt.Sprintf("failed to generate customer number: %v", err),
		}
	}

	customer := &models.Customer{
		CustomerNumber: customerNumber,
		FullName:       fullName,
		Email:          email,
		PasswordHash:   string(hash),
		Verified:       true,
	}

	if err := s.customers.Create(ctx, customer); err != nil {
		if errors.Is(err, models.ErrDuplicateEmail) {
			return nil, &ServiceError{
				Code:    ErrCodeEmailTaken,
				Message: "A customer with this email already exists",
			}
		}
		return nil, &ServiceError{
			Code:    ErrCodeInternalError,
			Message: "failed to create customer",
			Err:     err,
		}
	}

	return customer, nil
}

// Login verifies the credential and mints a new session. The session
// lives 1 hour, or 7 days when rememberMe is set.
func (s *AuthService) Login(ctx context.Context, email, password string, rememberMe bool) (*models.Session, error) {
	customer, err := s.customers.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, errInvalidCredentials()
		}
		return nil, &ServiceError{
			Code:    ErrCodeInternalError,
			Message: "failed to look up customer",
			Err:     err,
		}
	}

	if bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte(password)) != nil {
		return nil, errInvalidCredentials()
	}

	sess, err := s.sessions.Create(ctx, models.Identity{
		CustomerID: customer.ID,
		Email:      customer.Email,
		FullName:   customer.FullName,
	}, rememberMe)
	if err != nil {
		return nil, &ServiceError{
			Code:    ErrCodeInternalError,
			Message: "failed to create session",
			Err:     err,
		}
	}

	return sess, nil
}

// Logout invalidates the session token. Unknown and already expired
// tokens are treated as logged out.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Delete(ctx, token); err != nil {
		return &ServiceError{
			Code:    ErrCodeInternalError,
			Message: "failed to invalidate session",
			Err:     err,
		}
	}
	return nil
}

// Resolve maps a session token to the authenticated identity. The
// bool result is false for absent or expired tokens.
func (s *AuthService) Resolve(ctx context.Context, token string) (models.Identity, bool, error) {
	sess, ok, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		return models.Identity{}, false, &ServiceError{
			Code:    ErrCodeInternalError,
			Message: "failed to resolve session",
			Err:     err,
		}
	}
	if !ok {
		return models.Identity{}, false, nil
	}
	return sess.Identity(), true, nil
}

// errInvalidCredentials deliberately does not distinguish a missing
// account from a wrong password.
func errInvalidCredentials() *ServiceError {
	return &ServiceError{
		Code:    ErrCodeUnauthorized,
		Message: "Invalid email or password",
	}
}

// randomDigits generates n random decimal digits
func randomDigits(n int) (string, error) {
	digits := make([]byte, n)
	for i := range digits {
		v, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + v.Int64())
	}
	return string(digits), nil
}
