package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/kodelab-api/internal/models"
)

// StudentRepository exposes persistence helpers for student accounts.
type StudentRepository interface {
	FindActiveByName(ctx context.Context, fullName string) (models.Student, error)
	GetByID(ctx context.Context, id uint) (models.Student, error)
}

// NewStudentRepository constructs a student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

type studentRepository struct {
	db *gorm.DB
}

func (r *studentRepository) FindActiveByName(ctx context.Context, fullName string) (models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).
		Preload("ClassGroup").
		Where("LOWER(full_name) = LOWER(?) AND is_active = ?", fullName, true).
		First(&student).Error
	if err != nil {
		return models.Student{}, err
	}
	return student, nil
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).
		Preload("ClassGroup").
		Where("is_active = ?", true).
		First(&student, id).Error
	if err != nil {
		return models.Student{}, err
	}
	return student, nil
}
