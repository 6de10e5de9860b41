package roster

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"schoolportal/internal/attendance"
)

// ErrValidation wraps client input problems so handlers can map them to 400.
var ErrValidation = errors.New("invalid roster input")

// Service owns roster reads and writes and implements the attendance
// package's Roster interface.
type Service struct {
	repo Repository
}

// NewService creates a roster service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Students returns the full student roster.
func (s *Service) Students(ctx context.Context) ([]Student, error) {
	return s.repo.ListStudents(ctx)
}

// AddStudent validates and creates a student with a fresh id.
func (s *Service) AddStudent(ctx context.Context, st Student) (Student, error) {
	st.Name = strings.TrimSpace(st.Name)
	st.RollNumber = strings.TrimSpace(st.RollNumber)
	if st.Name == "" || st.RollNumber == "" {
		return Student{}, errors.Join(ErrValidation, errors.New("name and roll number are required"))
	}
	st.ID = uuid.NewString()
	if err := s.repo.CreateStudent(ctx, st); err != nil {
		return Student{}, err
	}
	return s.repo.GetStudent(ctx, st.ID)
}

// UpdateStudent applies edits to an existing student.
func (s *Service) UpdateStudent(ctx context.Context, st Student) (Student, error) {
	st.Name = strings.TrimSpace(st.Name)
	st.RollNumber = strings.TrimSpace(st.RollNumber)
	if st.ID == "" || st.Name == "" || st.RollNumber == "" {
		return Student{}, errors.Join(ErrValidation, errors.New("id, name and roll number are required"))
	}
	if err := s.repo.UpdateStudent(ctx, st); err != nil {
		return Student{}, err
	}
	return s.repo.GetStudent(ctx, st.ID)
}

// DeleteStudent removes a student. Historical attendance rows are kept.
func (s *Service) DeleteStudent(ctx context.Context, id string) error {
	return s.repo.DeleteStudent(ctx, id)
}

// Teachers returns the staff roster including unverified accounts.
func (s *Service) Teachers(ctx context.Context) ([]Teacher, error) {
	return s.repo.ListTeachers(ctx)
}

// UpdateTeacher edits roster fields of a teacher account; credentials and
// verification status are owned by the account service.
func (s *Service) UpdateTeacher(ctx context.Context, t Teacher) (Teacher, error) {
	t.Name = strings.TrimSpace(t.Name)
	if t.ID == "" || t.Name == "" {
		return Teacher{}, errors.Join(ErrValidation, errors.New("id and name are required"))
	}
	if err := s.repo.UpdateTeacher(ctx, t); err != nil {
		return Teacher{}, err
	}
	return s.repo.GetTeacher(ctx, t.ID)
}

// DeleteTeacher removes a teacher account and its roster row.
func (s *Service) DeleteTeacher(ctx context.Context, id string) error {
	return s.repo.DeleteTeacher(ctx, id)
}

// Lookup resolves an id to its display snapshot for attendance entries.
// Unknown ids surface as attendance.ErrUnknownEntity so mark stays a guarded
// no-op; unverified teachers are not markable.
func (s *Service) Lookup(ctx context.Context, kind, id string) (string, string, error) {
	switch kind {
	case "student":
		st, err := s.repo.GetStudent(ctx, id)
		if errors.Is(err, ErrNotFound) {
			return "", "", attendance.ErrUnknownEntity
		}
		if err != nil {
			return "", "", err
		}
		return st.Name, st.Grade, nil
	case "teacher":
		t, err := s.repo.GetTeacher(ctx, id)
		if errors.Is(err, ErrNotFound) {
			return "", "", attendance.ErrUnknownEntity
		}
		if err != nil {
			return "", "", err
		}
		if t.Status != "verified" {
			return "", "", attendance.ErrUnknownEntity
		}
		return t.Name, t.Department, nil
	}
	return "", "", attendance.ErrUnknownEntity
}

// IDs enumerates roster ids for a kind; used by the rollover to record a
// final status for every known entity.
func (s *Service) IDs(ctx context.Context, kind string) ([]string, error) {
	if kind == "teacher" {
		return s.repo.VerifiedTeacherIDs(ctx)
	}
	return s.repo.StudentIDs(ctx)
}
