package auth

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"parkly/internal/database"
	"parkly/internal/domain"
	"parkly/internal/pkg/errs"
	"parkly/internal/repository"
)

// Service contains all business logic for authentication
type Service struct {
	tx      *database.TxRunner
	users   *repository.UserRepository
	wallets WalletOpener
	jwt     TokenIssuer
	cost    int
	log     *zap.Logger
}

func NewService(tx *database.TxRunner, users *repository.UserRepository, wallets WalletOpener, jwt TokenIssuer, log *zap.Logger) *Service {
	return &Service{
		tx:      tx,
		users:   users,
		wallets: wallets,
		jwt:     jwt,
		cost:    bcrypt.DefaultCost,
		log:     log,
	}
}

// Register creates the user and an empty wallet atomically.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validateEmailUnique(ctx, email); err != nil {
		return nil, err
	}

	hashed, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: hashed,
		Role:         domain.RoleUser,
	}

	err = s.tx.WithinTx(ctx, func(tx *gorm.DB) error {
		if err := s.users.WithTx(tx).Create(ctx, user); err != nil {
			if database.IsUniqueViolation(err) {
				return ErrEmailAlreadyExists
			}
			return errs.Internal(err, "create user")
		}
		_, err := s.wallets.CreateWallet(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		return nil, errs.Internal(err, "register")
	}

	s.log.Info("user registered", zap.Int64("user_id", user.ID))
	user.PasswordHash = ""
	return user, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, errs.Internal(err, "get user by email")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, errs.Internal(err, "generate token")
	}

	user.PasswordHash = ""
	return &LoginResult{User: user, AccessToken: token}, nil
}

func (s *Service) GetMe(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, errs.Internal(err, "get user")
	}
	user.PasswordHash = ""
	return user, nil
}

// VerifyPassword re-checks a logged in user's password before destructive
// operations.
func (s *Service) VerifyPassword(ctx context.Context, userID int64, plaintext string) (bool, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(plaintext)) == nil, nil
}

// ChangePassword replaces the password after re-checking the current one.
// Issued tokens stay valid until they expire.
func (s *Service) ChangePassword(ctx context.Context, userID int64, req ChangePasswordRequest) error {
	ok, err := s.VerifyPassword(ctx, userID, req.CurrentPassword)
	if err != nil {
		return errs.Internal(err, "verify password")
	}
	if !ok {
		return ErrWrongPassword
	}
	if req.NewPassword == req.CurrentPassword {
		return ErrPasswordUnchanged
	}

	hashed, err := s.hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, hashed); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return errs.Internal(err, "update password")
	}

	s.log.Info("password changed", zap.Int64("user_id", userID))
	return nil
}

func (s *Service) validateEmailUnique(ctx context.Context, email string) error {
	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return ErrEmailAlreadyExists
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return errs.Internal(err, "check email")
}

func (s *Service) hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", errs.Internal(err, "hash password")
	}
	return string(hashed), nil
}
