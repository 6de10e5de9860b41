package roster

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound means no roster row matched the id.
	ErrNotFound = errors.New("roster entry not found")
	// ErrDuplicateRoll means another student already has the roll number.
	ErrDuplicateRoll = errors.New("roll number already in use")
)

// Student is one roster row. Display fields are denormalized into attendance
// entries at mark time; editing a student does not rewrite past entries.
type Student struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	RollNumber      string    `json:"rollNumber"`
	Grade           string    `json:"grade"`
	GuardianContact string    `json:"guardianContact,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Teacher is the roster view of a teacher account: display fields only, no
// credentials. Status comes from the account verification flow.
type Teacher struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	EmployeeNumber string    `json:"employeeNumber"`
	Department     string    `json:"department"`
	Phone          string    `json:"phone,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Repository is the persistence surface for roster data.
type Repository interface {
	ListStudents(ctx context.Context) ([]Student, error)
	GetStudent(ctx context.Context, id string) (Student, error)
	CreateStudent(ctx context.Context, s Student) error
	UpdateStudent(ctx context.Context, s Student) error
	DeleteStudent(ctx context.Context, id string) error
	StudentIDs(ctx context.Context) ([]string, error)

	ListTeachers(ctx context.Context) ([]Teacher, error)
	GetTeacher(ctx context.Context, id string) (Teacher, error)
	UpdateTeacher(ctx context.Context, t Teacher) error
	DeleteTeacher(ctx context.Context, id string) error
	VerifiedTeacherIDs(ctx context.Context) ([]string, error)
}
