package student

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrStudentNotFound = errors.New("student not found")
	ErrInvalidInput    = errors.New("invalid input")
)

// Service owns the roster rules the transport layer must not be able to
// bypass: field normalization and id guards live here, not in the handler.
type Service interface {
	CreateStudent(ctx context.Context, student *Student) (*Student, error)
	GetAllStudents(ctx context.Context) ([]Student, error)
	GetStudentByID(ctx context.Context, id int) (*Student, error)
	UpdateStudent(ctx context.Context, student *Student) error
	DeleteStudent(ctx context.Context, id int) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{
		repo: repo,
	}
}

func (s *service) CreateStudent(ctx context.Context, student *Student) (*Student, error) {
	if err := normalizeRosterFields(student); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, student)
}

func (s *service) GetAllStudents(ctx context.Context) ([]Student, error) {
	return s.repo.GetAll(ctx)
}

func (s *service) GetStudentByID(ctx context.Context, id int) (*Student, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: id must be positive", ErrInvalidInput)
	}
	return s.repo.GetByID(ctx, id)
}

// UpdateStudent replaces all roster fields of an existing student.
func (s *service) UpdateStudent(ctx context.Context, student *Student) error {
	if student.ID <= 0 {
		return fmt.Errorf("%w: id must be positive", ErrInvalidInput)
	}
	if err := normalizeRosterFields(student); err != nil {
		return err
	}
	return s.repo.Update(ctx, student)
}

// DeleteStudent removes the student if present. Unknown ids are a silent
// no-op so repeated deletes stay safe.
func (s *service) DeleteStudent(ctx context.Context, id int) error {
	if id <= 0 {
		return fmt.Errorf("%w: id must be positive", ErrInvalidInput)
	}
	return s.repo.Delete(ctx, id)
}

// normalizeRosterFields trims surrounding whitespace and enforces the roster
// field rules even for callers that skip request validation.
func normalizeRosterFields(student *Student) error {
	student.Name = strings.TrimSpace(student.Name)
	student.Email = strings.TrimSpace(student.Email)
	student.Major = strings.TrimSpace(student.Major)

	if student.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if student.Major == "" {
		return fmt.Errorf("%w: major is required", ErrInvalidInput)
	}
	if !strings.Contains(student.Email, "@") {
		return fmt.Errorf("%w: email must contain '@'", ErrInvalidInput)
	}
	return nil
}
