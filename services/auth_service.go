package services

import (
	"fmt"
	"time"

	"chat-relay/auth"
	"chat-relay/errors"
	"chat-relay/repositories"
)

type IAuthService interface {
	Register(req auth.RegisterRequest) (Token, repositories.User, error)
	Login(req auth.LoginRequest) (Token, repositories.User, error)
	GetUser(id string) (repositories.User, error)
}

type Token string

// AuthService implements account registration and login on top of the
// user repository. It issues the credential the relay's optional join
// gate verifies.
type AuthService struct {
	users  repositories.IUserRepository
	tokens *auth.TokenManager
}

func NewAuthService(users repositories.IUserRepository, tokens *auth.TokenManager) IAuthService {
	return &AuthService{users: users, tokens: tokens}
}

func (s *AuthService) Register(req auth.RegisterRequest) (Token, repositories.User, error) {
	// Validate business rules before any expensive cryptographic work.
	if err := auth.ValidateRegister(req); err != nil {
		return "", repositories.User{}, fmt.Errorf("registration rejected: %w", err)
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return "", repositories.User{}, fmt.Errorf("hashing failed: %w", err)
	}

	user, err := s.users.CreateUser(req.Username, req.Email, req.DisplayName, hashed)
	if err != nil {
		return "", repositories.User{}, err // propagates ErrUserAlreadyExists
	}

	token, err := s.tokens.Generate(user.ID, user.Username)
	if err != nil {
		return "", repositories.User{}, errors.ErrTokenGeneration
	}
	return Token(token), user, nil
}

func (s *AuthService) Login(req auth.LoginRequest) (Token, repositories.User, error) {
	if err := auth.ValidateLogin(req); err != nil {
		return "", repositories.User{}, errors.ErrInvalidCredentials
	}

	// A missing account and a wrong password look identical to the caller
	// to prevent user enumeration.
	user, err := s.users.GetByEmail(req.Email)
	if err != nil {
		return "", repositories.User{}, errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(req.Password, user.PasswordHash)
	if err != nil || !match {
		return "", repositories.User{}, errors.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.users.TouchLastLogin(user.ID, now); err == nil {
		user.LastLogin = &now
	}

	token, err := s.tokens.Generate(user.ID, user.Username)
	if err != nil {
		return "", repositories.User{}, errors.ErrTokenGeneration
	}
	return Token(token), user, nil
}

func (s *AuthService) GetUser(id string) (repositories.User, error) {
	return s.users.GetByID(id)
}
