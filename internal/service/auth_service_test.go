package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/kodelab-api/internal/dto"
	"github.com/noah-isme/kodelab-api/internal/models"
)

type stubStudentRepo struct {
	student models.Student
}

func (s *stubStudentRepo) FindActiveByName(ctx context.Context, fullName string) (models.Student, error) {
	if s.student.ID == 0 || !strings.EqualFold(s.student.FullName, fullName) {
		return models.Student{}, gorm.ErrRecordNotFound
	}
	return s.student, nil
}

func (s *stubStudentRepo) GetByID(ctx context.Context, id uint) (models.Student, error) {
	if s.student.ID != id {
		return models.Student{}, gorm.ErrRecordNotFound
	}
	return s.student, nil
}

func authFixture(t *testing.T) (*stubStudentRepo, AuthService) {
	t.Helper()
	student := models.Student{ID: 3, ClassGroupID: 2, FullName: "Alex Kim", IsActive: true}
	require.NoError(t, student.SetPIN("123456"))

	repo := &stubStudentRepo{student: student}
	svc := NewAuthService(repo, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop(), AuthConfig{
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
	})
	return repo, svc
}

func TestLoginIssuesTokenWithIdentityClaims(t *testing.T) {
	_, svc := authFixture(t)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{FullName: "alex kim", PIN: "123456"})
	require.NoError(t, err)
	require.Equal(t, uint(3), resp.Student.ID)

	token, err := jwt.Parse(resp.Token, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims := token.Claims.(jwt.MapClaims)
	require.Equal(t, float64(3), claims["student_id"])
	require.Equal(t, float64(2), claims["class_id"])
}

func TestLoginRejectsWrongPIN(t *testing.T) {
	_, svc := authFixture(t)

	_, err := svc.Login(context.Background(), dto.LoginRequest{FullName: "Alex Kim", PIN: "654321"})
	require.True(t, errors.Is(err, ErrInvalidCredentials))
}

func TestLoginRejectsUnknownStudent(t *testing.T) {
	_, svc := authFixture(t)

	_, err := svc.Login(context.Background(), dto.LoginRequest{FullName: "Nobody Here", PIN: "123456"})
	require.True(t, errors.Is(err, ErrStudentNotFound))
}

func TestLoginValidatesPINFormat(t *testing.T) {
	_, svc := authFixture(t)

	_, err := svc.Login(context.Background(), dto.LoginRequest{FullName: "Alex Kim", PIN: "12"})
	var validationErrors validator.ValidationErrors
	require.True(t, errors.As(err, &validationErrors))
}

func TestMeReturnsProfile(t *testing.T) {
	_, svc := authFixture(t)

	resp, err := svc.Me(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, "Alex Kim", resp.FullName)
}
