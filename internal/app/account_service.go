package app

import (
	"context"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"hiring-contest-service/internal/domain"
)

// AccountService registers and authenticates users.
type AccountService struct {
	users UserRepository
	clock Clock
	log   logrus.FieldLogger
	cost  int
}

// AccountOption customizes an AccountService.
type AccountOption func(*AccountService)

// WithPasswordCost sets the bcrypt cost used for new password hashes.
func WithPasswordCost(cost int) AccountOption {
	return func(s *AccountService) { s.cost = cost }
}

func NewAccountService(users UserRepository, log logrus.FieldLogger, opts ...AccountOption) *AccountService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &AccountService{users: users, clock: SystemClock{}, log: log, cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignUp creates an account. The email must parse as a bare address and be unused.
func (s *AccountService) SignUp(ctx context.Context, email, password string, role domain.Role) (domain.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return domain.User{}, err
	}
	if password == "" {
		return domain.User{}, domain.ErrInvalidPassword
	}
	if !role.Valid() {
		return domain.User{}, domain.ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return domain.User{}, errors.Wrap(err, "hash password")
	}
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Role:         role,
		PasswordHash: string(hash),
		CreatedAt:    s.clock.Now(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return domain.User{}, err
	}
	s.log.WithFields(logrus.Fields{"user_id": user.ID, "role": role}).Info("account created")
	return user, nil
}

// Login checks credentials. Every mismatch yields domain.ErrInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, email, password string) (domain.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.User{}, domain.ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if user.PasswordHash == "" {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	return user, nil
}

// AnonymousLogin returns a throwaway identity for the role. It is not stored.
func (s *AccountService) AnonymousLogin(role domain.Role) (domain.User, error) {
	if !role.Valid() {
		return domain.User{}, domain.ErrInvalidRole
	}
	tag := "anonymous-" + strings.ToLower(string(role))
	return domain.User{
		ID:        tag + "-" + uuid.NewString(),
		Email:     tag,
		Role:      role,
		Anonymous: true,
		CreatedAt: s.clock.Now(),
	}, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", domain.ErrInvalidEmail
	}
	return email, nil
}
