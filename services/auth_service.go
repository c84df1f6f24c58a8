package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/dcode-github/realestate_console/models"
	"github.com/dcode-github/realestate_console/repositories"
	"github.com/dcode-github/realestate_console/utils"
)

const RoleAdmin = "admin"

type LoginResult struct {
	User  *models.User
	Token string
}

type AuthService struct {
	users  repositories.UserRepository
	logger logrus.FieldLogger
}

func NewAuthService(users repositories.UserRepository, logger logrus.FieldLogger) *AuthService {
	return &AuthService{users: users, logger: logger}
}

var errInvalidCredentials = &utils.AppError{
	StatusCode: http.StatusUnauthorized,
	Code:       utils.ErrCodeInvalidCredentials,
	Message:    "Invalid credentials",
}

// Login checks a plaintext password against the stored bcrypt hash and
// issues a signed token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, errInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, utils.PersistenceError("Server error", err)
	}
	if user == nil {
		s.logger.WithField("username", username).Info("Login for unknown user")
		return nil, errInvalidCredentials
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		s.logger.WithField("username", username).Info("Password does not match")
		return nil, errInvalidCredentials
	}

	token, err := utils.GenerateJWT(user.Username, user.Role)
	if err != nil {
		return nil, utils.PersistenceError("Failed to generate token", err)
	}
	user.Password = ""
	return &LoginResult{User: user, Token: token}, nil
}

// CreateUser stores a user with a hashed password.
func (s *AuthService) CreateUser(ctx context.Context, username, password, role string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, utils.ValidationError("Username and password are required", nil)
	}
	if role == "" {
		role = RoleAdmin
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, utils.PersistenceError("Failed to hash password", err)
	}
	user := &models.User{Username: username, Password: hashed, Role: role}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, utils.ConflictError("Username already exists", err)
		}
		return nil, utils.PersistenceError("Failed to create user", err)
	}
	user.Password = ""
	return user, nil
}
