package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/onlyarts/service-core-go/internal/status"
	"github.com/ovaphlow/onlyarts/service-core-go/internal/user/entity"
	"github.com/ovaphlow/onlyarts/service-core-go/pkg/utilities"
)

// Repository is the persistence the service needs; repo.UserRepo implements it.
// Lookups return nil, nil when the user is absent.
type Repository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	UpdatePassword(ctx context.Context, id, hash string) (bool, error)
	UpdateStatus(ctx context.Context, id string, s status.Flags) (bool, error)
}

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrEmailTaken     = errors.New("this email already exist in the system")
	ErrBadCredentials = errors.New("invalid credentials")
	ErrBanned         = errors.New("your account has been banned")
	ErrRemoved        = errors.New("your account has been removed")
	// ErrCredentialMismatch is the credential error of change-password.
	ErrCredentialMismatch = errors.New("old password does not match")
	ErrInvalidInput       = errors.New("email and password are required")
)

// userIDLength matches the VARCHAR(20) id column.
const userIDLength = 20

// UserService orchestrates registration, authentication and credential changes.
type UserService struct {
	repo   Repository
	hasher PasswordHasher
	logger *zap.SugaredLogger
	now    func() time.Time
}

func NewUserService(r Repository, hasher PasswordHasher, logger *zap.SugaredLogger) *UserService {
	if hasher == nil {
		hasher = BcryptHasher{Cost: 12}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &UserService{repo: r, hasher: hasher, logger: logger, now: time.Now}
}

// RegisterInput is the profile a new account is created with.
type RegisterInput struct {
	RoleID    string
	FirstName string
	LastName  string
	Avatar    string
	Phone     string
	Email     string
	Address   string
	Bio       string
	Password  string
}

func normalizeEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }

// Register creates an account; the password is stored hashed only.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, ErrInvalidInput
	}
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &entity.User{
		ID:           utilities.NewNumericID(userIDLength),
		RoleID:       in.RoleID,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Avatar:       in.Avatar,
		Phone:        in.Phone,
		Email:        email,
		Address:      in.Address,
		Bio:          in.Bio,
		JoinDate:     s.now().UTC(),
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate checks email and password and rejects banned or removed accounts.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrBadCredentials
	}
	if !s.hasher.Verify(u.PasswordHash, password) {
		return nil, ErrBadCredentials
	}
	// account state is only revealed to the password holder
	if u.IsBanned() {
		return nil, ErrBanned
	}
	if u.IsRemoved() {
		return nil, ErrRemoved
	}
	if s.hasher.NeedsRehash(u.PasswordHash) {
		if h, err := s.hasher.Hash(password); err == nil {
			if _, err := s.repo.UpdatePassword(ctx, u.ID, h); err != nil {
				s.logger.Warnw("password rehash failed", "user_id", u.ID, "err", err)
			} else {
				u.PasswordHash = h
			}
		}
	}
	return u, nil
}

// GetByID returns ErrUserNotFound when absent.
func (s *UserService) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// GetByEmail returns ErrUserNotFound when absent.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// ChangePassword replaces the password after verifying the old one.
// On ErrCredentialMismatch the stored hash is untouched.
func (s *UserService) ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(u.PasswordHash, oldPassword) {
		return ErrCredentialMismatch
	}
	return s.setPassword(ctx, u.ID, newPassword)
}

// ResetPassword replaces the password without the old one; callers must
// have validated a reset token first.
func (s *UserService) ResetPassword(ctx context.Context, id, newPassword string) error {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.setPassword(ctx, u.ID, newPassword)
}

func (s *UserService) setPassword(ctx context.Context, id, pw string) error {
	if pw == "" {
		return ErrInvalidInput
	}
	hash, err := s.hasher.Hash(pw)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	ok, err := s.repo.UpdatePassword(ctx, id, hash)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUserNotFound
	}
	return nil
}

// SetOnline flips the online bit, leaving banned/removed untouched.
func (s *UserService) SetOnline(ctx context.Context, id string, online bool) error {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u.IsOnline() == online {
		return nil
	}
	ok, err := s.repo.UpdateStatus(ctx, u.ID, u.WithOnline(online))
	if err != nil {
		return err
	}
	if !ok {
		return ErrUserNotFound
	}
	return nil
}
