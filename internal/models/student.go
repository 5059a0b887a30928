package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// ClassGroup is a named class (e.g. "7A") whose students share session access.
type ClassGroup struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:32;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Student is a platform account identified by full name within a class and a 6-digit PIN.
type Student struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	FullName     string     `gorm:"size:120;not null;uniqueIndex:uniq_student_in_class" json:"full_name"`
	ClassGroupID uint       `gorm:"not null;uniqueIndex:uniq_student_in_class" json:"class_group_id"`
	PINHash      string     `gorm:"size:256;not null" json:"-"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	ClassGroup   ClassGroup `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"class_group"`
}

// SetPIN stores a bcrypt hash of the given PIN. Format validation happens at the DTO layer.
func (s *Student) SetPIN(pin string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.PINHash = string(hash)
	return nil
}

// CheckPIN reports whether the given PIN matches the stored hash.
func (s Student) CheckPIN(pin string) bool {
	return bcrypt.CompareHashAndPassword([]byte(s.PINHash), []byte(pin)) == nil
}
