package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"bankapi/internal/shared/apperr"
	"bankapi/internal/shared/logger"
)

// bcrypt only reads the first 72 bytes of a password.
const maxPasswordBytes = 72

// PasswordHasher hashes and checks credentials.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) error
}

// TokenIssuer issues signed identity tokens.
type TokenIssuer interface {
	Generate(userID int64, email string) (string, error)
}

// Service registers users and exchanges credentials for access tokens.
type Service struct {
	repo   Repository
	hasher PasswordHasher
	tokens TokenIssuer
}

func NewService(repo Repository, hasher PasswordHasher, tokens TokenIssuer) *Service {
	return &Service{repo: repo, hasher: hasher, tokens: tokens}
}

type RegisterParams struct {
	Name     string
	Email    string
	Password string
}

type LoginResult struct {
	AccessToken string
	User        *User
}

// Register creates a user with a hashed password.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*User, error) {
	name := strings.TrimSpace(params.Name)
	email := normalizeEmail(params.Email)
	if name == "" || email == "" || params.Password == "" {
		return nil, ErrMissingFields
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(params.Password) > maxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to hash password", err)
	}

	u, err := s.repo.Create(ctx, CreateUserParams{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	log := logger.FromContext(ctx)
	log.Info().Int64("user_id", u.ID).Msg("user registered")
	return u, nil
}

// Login verifies credentials and issues an access token. Unknown emails and
// wrong passwords fail with the same error.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if err := s.hasher.Verify(u.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(u.ID, u.Email)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to issue token", err)
	}

	return &LoginResult{AccessToken: token, User: u}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
