package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glaucius/back-to-the-loop/models"
	"github.com/glaucius/back-to-the-loop/repositories"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct{ users map[string]*models.User }

func (r fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.users[user.Email] = user
	return nil
}

func (r fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	r.users[user.Email] = user
	return nil
}

const testSecret = "test-secret"

func newAuthServiceForTest(s *fakeState, users fakeUserRepo) AuthService {
	return NewAuthService(fakeAtletaRepo{s}, users, testSecret, time.Hour)
}

func TestRegisterAndLoginAtleta(t *testing.T) {
	s := newFakeState()
	svc := newAuthServiceForTest(s, fakeUserRepo{users: map[string]*models.User{}})

	atleta, token, err := svc.RegisterAtleta(context.Background(), RegisterAtletaInput{
		Nome:     "Ana",
		CPF:      "12345678900",
		Email:    "ana@example.com",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("RegisterAtleta: %v", err)
	}
	if atleta.PasswordHash != "" {
		t.Error("password hash must not leak out of the service")
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims["role"] != string(models.RoleAtleta) {
		t.Errorf("role claim = %v, want atleta", claims["role"])
	}

	if _, _, err := svc.LoginAtleta(context.Background(), LoginInput{Email: "ana@example.com", Password: "correct-horse"}); err != nil {
		t.Errorf("LoginAtleta: %v", err)
	}
	if _, _, err := svc.LoginAtleta(context.Background(), LoginInput{Email: "ana@example.com", Password: "wrong"}); !errors.Is(err, ErrAuthInvalidCredentials) {
		t.Errorf("wrong password: err = %v, want ErrAuthInvalidCredentials", err)
	}
	if _, _, err := svc.LoginAtleta(context.Background(), LoginInput{Email: "ghost@example.com", Password: "x"}); !errors.Is(err, ErrAuthInvalidCredentials) {
		t.Errorf("unknown email: err = %v, want ErrAuthInvalidCredentials", err)
	}
}

func TestRegisterAtletaRejectsShortPassword(t *testing.T) {
	svc := newAuthServiceForTest(newFakeState(), fakeUserRepo{users: map[string]*models.User{}})
	if _, _, err := svc.RegisterAtleta(context.Background(), RegisterAtletaInput{Email: "a@b.c", Password: "curta"}); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("err = %v, want ErrPasswordTooShort", err)
	}
}

func TestRegisterAtletaDuplicateEmail(t *testing.T) {
	s := newFakeState()
	svc := newAuthServiceForTest(s, fakeUserRepo{users: map[string]*models.User{}})

	input := RegisterAtletaInput{Nome: "Ana", Email: "ana@example.com", Password: "correct-horse"}
	if _, _, err := svc.RegisterAtleta(context.Background(), input); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, _, err := svc.RegisterAtleta(context.Background(), input); !errors.Is(err, ErrAuthEmailTaken) {
		t.Errorf("err = %v, want ErrAuthEmailTaken", err)
	}
}

func TestLoginUser(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("organizer-pass"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatal(err)
	}
	users := fakeUserRepo{users: map[string]*models.User{
		"org@example.com": {ID: 7, Nome: "Org", Email: "org@example.com", PasswordHash: string(hash), Role: models.RoleOrganizador},
	}}
	svc := newAuthServiceForTest(newFakeState(), users)

	user, token, err := svc.LoginUser(context.Background(), LoginInput{Email: "org@example.com", Password: "organizer-pass"})
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}
	if user.PasswordHash != "" {
		t.Error("password hash must not leak out of the service")
	}

	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	}); err != nil {
		t.Fatalf("token parse: %v", err)
	}
	if claims["role"] != string(models.RoleOrganizador) {
		t.Errorf("role claim = %v, want organizador", claims["role"])
	}
}
