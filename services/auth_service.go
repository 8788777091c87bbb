package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/restreamkit/volunteer-system/models"
	"github.com/restreamkit/volunteer-system/repositories"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// AuthService регистрирует пользователей и выдаёт JWT-токены.
type AuthService struct {
	txRunner  repositories.TxRunner
	userRepo  repositories.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewAuthService(txRunner repositories.TxRunner, userRepo repositories.UserRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		txRunner:  txRunner,
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

type RegisterInput struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DiscordID   *int64 `json:"discord_id,omitempty"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, string, error) {
	validation := NewValidationError()
	if input.DisplayName == "" {
		validation.Add("display_name", "display name is required")
	}
	if input.Email == "" {
		validation.Add("email", "email is required")
	}
	if len(input.Password) < minPasswordLength {
		validation.Add("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if err := validation.ErrOrNil(); err != nil {
		return nil, "", err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		DisplayName:  input.DisplayName,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Role:         models.RoleVolunteer,
		DiscordID:    input.DiscordID,
	}

	err = s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.userRepo.Create(ctx, exec, user); err != nil {
			if errors.Is(err, repositories.ErrUserEmailConflict) {
				return ErrUserEmailConflict
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	user.PasswordHash = ""
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.User, string, error) {
	var user *models.User
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		var getErr error
		user, getErr = s.userRepo.GetByEmail(ctx, exec, input.Email)
		return getErr
	})
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to find user by email: %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to compare password hash: %w", err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}
	user.PasswordHash = ""
	return user, token, nil
}

// GetUser загружает пользователя по идентификатору из JWT-клеймов.
func (s *AuthService) GetUser(ctx context.Context, userID int) (*models.User, error) {
	var user *models.User
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		var getErr error
		user, getErr = s.userRepo.GetByID(ctx, exec, userID)
		return getErr
	})
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user %d: %w", userID, err)
	}
	return user, nil
}

func (s *AuthService) issueToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    string(user.Role),
		"exp":     time.Now().Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
