package roster

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolportal/internal/attendance"
)

type fakeRepo struct {
	students map[string]Student
	teachers map[string]Teacher
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{students: map[string]Student{}, teachers: map[string]Teacher{}}
}

func (f *fakeRepo) ListStudents(context.Context) ([]Student, error) {
	out := make([]Student, 0, len(f.students))
	for _, s := range f.students {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeRepo) GetStudent(_ context.Context, id string) (Student, error) {
	s, ok := f.students[id]
	if !ok {
		return Student{}, ErrNotFound
	}
	return s, nil
}

func (f *fakeRepo) CreateStudent(_ context.Context, s Student) error {
	for _, existing := range f.students {
		if existing.RollNumber == s.RollNumber {
			return ErrDuplicateRoll
		}
	}
	f.students[s.ID] = s
	return nil
}

func (f *fakeRepo) UpdateStudent(_ context.Context, s Student) error {
	if _, ok := f.students[s.ID]; !ok {
		return ErrNotFound
	}
	f.students[s.ID] = s
	return nil
}

func (f *fakeRepo) DeleteStudent(_ context.Context, id string) error {
	if _, ok := f.students[id]; !ok {
		return ErrNotFound
	}
	delete(f.students, id)
	return nil
}

func (f *fakeRepo) StudentIDs(context.Context) ([]string, error) {
	ids := make([]string, 0, len(f.students))
	for id := range f.students {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeRepo) ListTeachers(context.Context) ([]Teacher, error) {
	out := make([]Teacher, 0, len(f.teachers))
	for _, t := range f.teachers {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeRepo) GetTeacher(_ context.Context, id string) (Teacher, error) {
	t, ok := f.teachers[id]
	if !ok {
		return Teacher{}, ErrNotFound
	}
	return t, nil
}

func (f *fakeRepo) UpdateTeacher(_ context.Context, t Teacher) error {
	existing, ok := f.teachers[t.ID]
	if !ok {
		return ErrNotFound
	}
	t.Status = existing.Status
	f.teachers[t.ID] = t
	return nil
}

func (f *fakeRepo) DeleteTeacher(_ context.Context, id string) error {
	if _, ok := f.teachers[id]; !ok {
		return ErrNotFound
	}
	delete(f.teachers, id)
	return nil
}

func (f *fakeRepo) VerifiedTeacherIDs(context.Context) ([]string, error) {
	var ids []string
	for _, t := range f.teachers {
		if t.Status == "verified" {
			ids = append(ids, t.ID)
		}
	}
	return ids, nil
}

func TestAddStudent(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	st, err := svc.AddStudent(context.Background(), Student{Name: "  Asha ", RollNumber: " 17 ", Grade: "Grade 5"})
	require.NoError(t, err)
	assert.NotEmpty(t, st.ID)
	assert.Equal(t, "Asha", st.Name)
	assert.Equal(t, "17", st.RollNumber)
}

func TestAddStudentValidation(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.AddStudent(context.Background(), Student{Name: "", RollNumber: "17"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.AddStudent(context.Background(), Student{Name: "Asha", RollNumber: "   "})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAddStudentDuplicateRoll(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.AddStudent(context.Background(), Student{Name: "Asha", RollNumber: "17"})
	require.NoError(t, err)
	_, err = svc.AddStudent(context.Background(), Student{Name: "Ben", RollNumber: "17"})
	assert.ErrorIs(t, err, ErrDuplicateRoll)
}

func TestUpdateStudent(t *testing.T) {
	svc := NewService(newFakeRepo())

	st, err := svc.AddStudent(context.Background(), Student{Name: "Asha", RollNumber: "17"})
	require.NoError(t, err)

	st.Grade = "Grade 6"
	got, err := svc.UpdateStudent(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, "Grade 6", got.Grade)

	_, err = svc.UpdateStudent(context.Background(), Student{ID: "missing", Name: "X", RollNumber: "1"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteStudent(t *testing.T) {
	svc := NewService(newFakeRepo())

	st, err := svc.AddStudent(context.Background(), Student{Name: "Asha", RollNumber: "17"})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteStudent(context.Background(), st.ID))
	assert.ErrorIs(t, svc.DeleteStudent(context.Background(), st.ID), ErrNotFound)
}

func TestLookupStudent(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	st, err := svc.AddStudent(context.Background(), Student{Name: "Asha", RollNumber: "17", Grade: "Grade 5"})
	require.NoError(t, err)

	name, detail, err := svc.Lookup(context.Background(), "student", st.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha", name)
	assert.Equal(t, "Grade 5", detail)

	_, _, err = svc.Lookup(context.Background(), "student", "ghost")
	assert.ErrorIs(t, err, attendance.ErrUnknownEntity)
}

func TestLookupTeacherVerificationGate(t *testing.T) {
	repo := newFakeRepo()
	repo.teachers["T1"] = Teacher{ID: "T1", Name: "Mr. Rao", Department: "Maths", Status: "verified"}
	repo.teachers["T2"] = Teacher{ID: "T2", Name: "Ms. New", Department: "Arts", Status: "pending"}
	svc := NewService(repo)

	name, detail, err := svc.Lookup(context.Background(), "teacher", "T1")
	require.NoError(t, err)
	assert.Equal(t, "Mr. Rao", name)
	assert.Equal(t, "Maths", detail)

	_, _, err = svc.Lookup(context.Background(), "teacher", "T2")
	assert.ErrorIs(t, err, attendance.ErrUnknownEntity, "unverified teachers are not markable")

	_, _, err = svc.Lookup(context.Background(), "janitor", "T1")
	assert.ErrorIs(t, err, attendance.ErrUnknownEntity)
}

func TestIDs(t *testing.T) {
	repo := newFakeRepo()
	repo.teachers["T1"] = Teacher{ID: "T1", Status: "verified"}
	repo.teachers["T2"] = Teacher{ID: "T2", Status: "pending"}
	svc := NewService(repo)

	st, err := svc.AddStudent(context.Background(), Student{Name: "Asha", RollNumber: "17"})
	require.NoError(t, err)

	ids, err := svc.IDs(context.Background(), "student")
	require.NoError(t, err)
	assert.Equal(t, []string{st.ID}, ids)

	ids, err = svc.IDs(context.Background(), "teacher")
	require.NoError(t, err)
	assert.Equal(t, []string{"T1"}, ids)
}
