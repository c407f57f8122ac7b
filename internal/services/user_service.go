package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"authbot/internal/models"
	"authbot/internal/repositories"
)

const maxFieldLen = 100

// CodeIssuer is the part of the ledger that registration and login use.
type CodeIssuer interface {
	Issue(ctx context.Context, userID int) (*models.LinkingCode, error)
}

type LoginResult struct {
	User        *models.User
	AccessToken string
	Code        *models.LinkingCode
}

type UserService interface {
	Register(ctx context.Context, email, password, name string) (*models.User, *models.LinkingCode, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	IssueCode(ctx context.Context, userID int) (*models.LinkingCode, error)
	GetUserByID(ctx context.Context, id int) (*models.User, error)
}

type userService struct {
	repo         repositories.UserRepository
	codes        CodeIssuer
	authService  AuthService
	emailService EmailService
	log          *zap.Logger
}

func NewUserService(repo repositories.UserRepository, codes CodeIssuer, authService AuthService, emailService EmailService, log *zap.Logger) UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &userService{
		repo:         repo,
		codes:        codes,
		authService:  authService,
		emailService: emailService,
		log:          log,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates the account and issues its first linking code.
func (s *userService) Register(ctx context.Context, email, password, name string) (*models.User, *models.LinkingCode, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	switch {
	case email == "" || utf8.RuneCountInString(email) > maxFieldLen:
		return nil, nil, fmt.Errorf("%w: email is required (max %d chars)", ErrInvalidInput, maxFieldLen)
	case name == "" || utf8.RuneCountInString(name) > maxFieldLen:
		return nil, nil, fmt.Errorf("%w: name is required (max %d chars)", ErrInvalidInput, maxFieldLen)
	case len(password) < 6:
		return nil, nil, fmt.Errorf("%w: password must be at least 6 characters", ErrInvalidInput)
	}

	hash, err := s.authService.HashPassword(password)
	if err != nil {
		if errors.Is(err, ErrPasswordTooLong) {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil, nil, err
	}

	user := &models.User{Email: email, PasswordHash: hash, Name: name}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, nil, fmt.Errorf("email %q: %w", email, ErrConflict)
		}
		return nil, nil, storageErr("create user", err)
	}
	s.log.Info("[auth][register] user created", zap.Int("user_id", user.ID))

	if s.emailService != nil {
		if err := s.emailService.SendWelcomeEmail(user.Email, user.Name); err != nil {
			// warn but do not fail registration
			s.log.Warn("[auth][register] welcome email failed", zap.Int("user_id", user.ID), zap.Error(err))
		}
	}

	code, err := s.codes.Issue(ctx, user.ID)
	if err != nil {
		return user, nil, err
	}
	return user, code, nil
}

// Login checks the password and, on success, returns an access token and a fresh linking code.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *userService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.log.Info("[auth][login] unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, storageErr("get user by email", err)
	}
	if !s.authService.CheckPassword(user.PasswordHash, password) {
		s.log.Info("[auth][login] password mismatch", zap.Int("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	token, _, err := s.authService.NewAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	code, err := s.codes.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	s.log.Info("[auth][login] success", zap.Int("user_id", user.ID))
	return &LoginResult{User: user, AccessToken: token, Code: code}, nil
}

func (s *userService) IssueCode(ctx context.Context, userID int) (*models.LinkingCode, error) {
	if _, err := s.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.codes.Issue(ctx, userID)
}

func (s *userService) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, storageErr("get user", err)
	}
	return u, nil
}
