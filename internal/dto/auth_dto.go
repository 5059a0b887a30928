package dto

import "github.com/noah-isme/kodelab-api/internal/models"

// LoginRequest is the name+PIN credentials payload.
type LoginRequest struct {
	FullName string `json:"full_name" validate:"required,min=1,max=120"`
	PIN      string `json:"pin" validate:"required,len=6,numeric"`
}

// ClassGroupResponse describes a class group to API consumers.
type ClassGroupResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// StudentResponse describes the authenticated student.
type StudentResponse struct {
	ID       uint               `json:"id"`
	FullName string             `json:"full_name"`
	Class    ClassGroupResponse `json:"class"`
}

// LoginResponse carries the issued token and the student profile.
type LoginResponse struct {
	Token   string          `json:"token"`
	Student StudentResponse `json:"student"`
}

// NewStudentResponse builds a student DTO from a model.
func NewStudentResponse(student models.Student) StudentResponse {
	return StudentResponse{
		ID:       student.ID,
		FullName: student.FullName,
		Class: ClassGroupResponse{
			ID:   student.ClassGroupID,
			Name: student.ClassGroup.Name,
		},
	}
}
