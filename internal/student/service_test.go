package student_test

import (
	"context"
	"testing"

	"github.com/EngSenku/ensat/internal/student"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepository struct {
	created *student.Student
	updated *student.Student
	deleted []int
}

func (r *stubRepository) Create(_ context.Context, s *student.Student) (*student.Student, error) {
	r.created = s
	return s, nil
}

func (r *stubRepository) GetAll(context.Context) ([]student.Student, error) {
	return []student.Student{}, nil
}

func (r *stubRepository) GetByID(_ context.Context, id int) (*student.Student, error) {
	return &student.Student{ID: id}, nil
}

func (r *stubRepository) Update(_ context.Context, s *student.Student) error {
	r.updated = s
	return nil
}

func (r *stubRepository) Delete(_ context.Context, id int) error {
	r.deleted = append(r.deleted, id)
	return nil
}

func TestService_NormalizesRosterFields(t *testing.T) {
	repo := &stubRepository{}
	service := student.NewService(repo)
	ctx := context.Background()

	created, err := service.CreateStudent(ctx, &student.Student{
		Name:  "  Omar  ",
		Email: " omar@ensat.ac.ma ",
		Major: "\tGI\n",
	})
	require.NoError(t, err)
	assert.Equal(t, "Omar", created.Name)
	assert.Equal(t, "omar@ensat.ac.ma", created.Email)
	assert.Equal(t, "GI", created.Major)
	assert.Same(t, created, repo.created)
}

func TestService_RejectsInvalidRosterFields(t *testing.T) {
	repo := &stubRepository{}
	service := student.NewService(repo)
	ctx := context.Background()

	cases := []struct {
		name    string
		student *student.Student
	}{
		{"WhitespaceOnlyName", &student.Student{Name: "   ", Email: "omar@ensat.ac.ma", Major: "GI"}},
		{"EmptyMajor", &student.Student{Name: "Omar", Email: "omar@ensat.ac.ma", Major: ""}},
		{"EmailWithoutAt", &student.Student{Name: "Omar", Email: "omar.ensat.ac.ma", Major: "GI"}},
	}

	for _, tc := range cases {
		t.Run("Create_"+tc.name, func(t *testing.T) {
			_, err := service.CreateStudent(ctx, tc.student)
			require.ErrorIs(t, err, student.ErrInvalidInput)
		})
	}

	// Rules hold for updates too, regardless of transport-level validation
	err := service.UpdateStudent(ctx, &student.Student{ID: 1, Name: " ", Email: "omar@ensat.ac.ma", Major: "GI"})
	require.ErrorIs(t, err, student.ErrInvalidInput)

	assert.Nil(t, repo.created)
	assert.Nil(t, repo.updated)
}

func TestService_RejectsNonPositiveIDs(t *testing.T) {
	repo := &stubRepository{}
	service := student.NewService(repo)
	ctx := context.Background()

	_, err := service.GetStudentByID(ctx, 0)
	require.ErrorIs(t, err, student.ErrInvalidInput)

	err = service.UpdateStudent(ctx, &student.Student{ID: -1, Name: "Omar", Email: "omar@ensat.ac.ma", Major: "GI"})
	require.ErrorIs(t, err, student.ErrInvalidInput)

	err = service.DeleteStudent(ctx, 0)
	require.ErrorIs(t, err, student.ErrInvalidInput)
	assert.Empty(t, repo.deleted)
}
