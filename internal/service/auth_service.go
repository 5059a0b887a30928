package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/kodelab-api/internal/dto"
	"github.com/noah-isme/kodelab-api/internal/repository"
)

// AuthService exposes student authentication operations.
type AuthService interface {
	Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error)
	Me(ctx context.Context, studentID uint) (dto.StudentResponse, error)
}

// AuthConfig describes token issuance knobs.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type authService struct {
	students  repository.StudentRepository
	validator *validator.Validate
	logger    zerolog.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs a new auth service.
func NewAuthService(studentRepo repository.StudentRepository, validate *validator.Validate, logger zerolog.Logger, cfg AuthConfig) AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 8 * time.Hour
	}

	return &authService{
		students:  studentRepo,
		validator: validate,
		logger:    logger.With().Str("component", "auth_service").Logger(),
		config:    cfg,
		now:       time.Now,
	}
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LoginResponse{}, err
	}

	student, err := s.students.FindActiveByName(ctx, payload.FullName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LoginResponse{}, ErrStudentNotFound
		}
		return dto.LoginResponse{}, err
	}

	if !student.CheckPIN(payload.PIN) {
		return dto.LoginResponse{}, ErrInvalidCredentials
	}

	now := s.now()
	claims := jwt.MapClaims{
		"sub":        strconv.FormatUint(uint64(student.ID), 10),
		"student_id": student.ID,
		"class_id":   student.ClassGroupID,
		"iat":        now.Unix(),
		"exp":        now.Add(s.config.TokenTTL).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return dto.LoginResponse{}, err
	}

	s.logger.Info().Uint("student_id", student.ID).Uint("class_id", student.ClassGroupID).Msg("student logged in")

	return dto.LoginResponse{
		Token:   token,
		Student: dto.NewStudentResponse(student),
	}, nil
}

func (s *authService) Me(ctx context.Context, studentID uint) (dto.StudentResponse, error) {
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentResponse{}, ErrStudentNotFound
		}
		return dto.StudentResponse{}, err
	}

	return dto.NewStudentResponse(student), nil
}
