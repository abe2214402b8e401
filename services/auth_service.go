package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glaucius/back-to-the-loop/models"
	"github.com/glaucius/back-to-the-loop/repositories"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type RegisterAtletaInput struct {
	Nome           string     `json:"nome"`
	CPF            string     `json:"cpf"`
	Email          string     `json:"email"`
	Password       string     `json:"password"`
	DataNascimento *time.Time `json:"data_nascimento,omitempty"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthService authenticates both populations: athletes on the public
// frontend and backoffice users (admin/organizador). Tokens carry the role
// so the capability middleware can gate organizer operations; the engine
// itself never sees roles.
type AuthService interface {
	RegisterAtleta(ctx context.Context, input RegisterAtletaInput) (*models.Atleta, string, error)
	LoginAtleta(ctx context.Context, input LoginInput) (*models.Atleta, string, error)
	LoginUser(ctx context.Context, input LoginInput) (*models.User, string, error)
}

type authService struct {
	atletaRepo repositories.AtletaRepository
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenTTL   time.Duration
}

func NewAuthService(atletaRepo repositories.AtletaRepository, userRepo repositories.UserRepository, jwtSecret string, tokenTTL time.Duration) AuthService {
	return &authService{
		atletaRepo: atletaRepo,
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTL,
	}
}

func (s *authService) RegisterAtleta(ctx context.Context, input RegisterAtletaInput) (*models.Atleta, string, error) {
	if len(input.Password) < minPasswordLength {
		return nil, "", ErrPasswordTooShort
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	atleta := &models.Atleta{
		Nome:           input.Nome,
		CPF:            input.CPF,
		Email:          input.Email,
		PasswordHash:   string(hashedPassword),
		DataNascimento: input.DataNascimento,
	}
	if err := s.atletaRepo.Create(ctx, atleta); err != nil {
		if errors.Is(err, repositories.ErrAtletaEmailConflict) || errors.Is(err, repositories.ErrAtletaCPFConflict) {
			return nil, "", ErrAuthEmailTaken
		}
		return nil, "", fmt.Errorf("failed to create athlete: %w", err)
	}

	token, err := s.issueToken(atleta.ID, models.RoleAtleta)
	if err != nil {
		return nil, "", err
	}
	atleta.PasswordHash = ""
	return atleta, token, nil
}

func (s *authService) LoginAtleta(ctx context.Context, input LoginInput) (*models.Atleta, string, error) {
	atleta, err := s.atletaRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrAtletaNotFound) {
			return nil, "", ErrAuthInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to find athlete by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(atleta.PasswordHash), []byte(input.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, "", ErrAuthInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to compare password hash: %w", err)
	}

	token, err := s.issueToken(atleta.ID, models.RoleAtleta)
	if err != nil {
		return nil, "", err
	}
	atleta.PasswordHash = ""
	return atleta, token, nil
}

func (s *authService) LoginUser(ctx context.Context, input LoginInput) (*models.User, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, "", ErrAuthInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to find user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, "", ErrAuthInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to compare password hash: %w", err)
	}

	token, err := s.issueToken(user.ID, user.Role)
	if err != nil {
		return nil, "", err
	}
	user.PasswordHash = ""
	return user, token, nil
}

func (s *authService) issueToken(subjectID int, role models.UserRole) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": subjectID,
		"role":    string(role),
		"iat":     now.Unix(),
		"exp":     now.Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
