package homework

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrValidation wraps client input problems so handlers can map them to 400.
var ErrValidation = errors.New("invalid homework input")

const dateLayout = "2006-01-02"

// Service validates and stores homework assignments.
type Service struct {
	repo Repository
}

// NewService creates a homework service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns all assignments ordered by due date.
func (s *Service) List(ctx context.Context) ([]Homework, error) {
	return s.repo.List(ctx)
}

// Add validates and creates an assignment. An empty assigned date defaults to
// today.
func (s *Service) Add(ctx context.Context, h Homework) (Homework, error) {
	if h.AssignedDate == "" {
		h.AssignedDate = time.Now().Format(dateLayout)
	}
	if err := validate(h); err != nil {
		return Homework{}, err
	}
	h.ID = uuid.NewString()
	if err := s.repo.Create(ctx, h); err != nil {
		return Homework{}, err
	}
	return s.repo.Get(ctx, h.ID)
}

// Update applies edits to an existing assignment.
func (s *Service) Update(ctx context.Context, h Homework) (Homework, error) {
	if h.ID == "" {
		return Homework{}, errors.Join(ErrValidation, errors.New("id is required"))
	}
	if err := validate(h); err != nil {
		return Homework{}, err
	}
	if err := s.repo.Update(ctx, h); err != nil {
		return Homework{}, err
	}
	return s.repo.Get(ctx, h.ID)
}

// Delete removes an assignment.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func validate(h Homework) error {
	if strings.TrimSpace(h.Title) == "" {
		return errors.Join(ErrValidation, errors.New("title is required"))
	}
	assigned, err := time.Parse(dateLayout, h.AssignedDate)
	if err != nil {
		return errors.Join(ErrValidation, errors.New("assigned date must be YYYY-MM-DD"))
	}
	due, err := time.Parse(dateLayout, h.DueDate)
	if err != nil {
		return errors.Join(ErrValidation, errors.New("due date must be YYYY-MM-DD"))
	}
	if due.Before(assigned) {
		return errors.Join(ErrValidation, errors.New("due date precedes assigned date"))
	}
	return nil
}
