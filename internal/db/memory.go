package db

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/model"
	apperrors "github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/pkg/errors"
)

// MemoryStore is an in-process Store used by tests and local development.
// RunInTx snapshots the data set and restores it when the function errors,
// giving the same all-or-nothing behavior the SQL store gets from a real
// transaction.
type MemoryStore struct {
	mu   sync.Mutex
	data *memData
	inTx bool
}

type memData struct {
	teachers    map[string]model.Teacher
	students    []model.Student
	courses     []model.Course
	exercises   []model.Exercise
	enrollments []model.Enrollment
	grades      map[string]model.GradeRecord // student|exercise
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: &memData{
		teachers: make(map[string]model.Teacher),
		grades:   make(map[string]model.GradeRecord),
	}}
}

func (d *memData) clone() *memData {
	c := &memData{
		teachers:    make(map[string]model.Teacher, len(d.teachers)),
		students:    append([]model.Student(nil), d.students...),
		courses:     append([]model.Course(nil), d.courses...),
		exercises:   append([]model.Exercise(nil), d.exercises...),
		enrollments: append([]model.Enrollment(nil), d.enrollments...),
		grades:      make(map[string]model.GradeRecord, len(d.grades)),
	}
	for k, v := range d.teachers {
		c.teachers[k] = v
	}
	for k, v := range d.grades {
		c.grades[k] = v
	}
	return c
}

func (m *MemoryStore) RunInTx(ctx context.Context, fn func(Store) error) error {
	if m.inTx {
		return fn(m)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.data
	m.data = snapshot.clone()
	m.inTx = true
	err := fn(m)
	m.inTx = false
	if err != nil {
		m.data = snapshot
		return err
	}
	return nil
}

func gradeKey(studentID, exerciseID string) string {
	return studentID + "|" + exerciseID
}

func (m *MemoryStore) CreateTeacher(ctx context.Context, teacher *model.Teacher) error {
	if teacher.ID == "" {
		teacher.ID = newID()
	}
	teacher.CreatedAt = time.Now()
	m.data.teachers[teacher.ID] = *teacher
	return nil
}

func (m *MemoryStore) GetTeacher(ctx context.Context, id string) (*model.Teacher, error) {
	if t, ok := m.data.teachers[id]; ok {
		return &t, nil
	}
	return nil, apperrors.ErrTeacherNotFound
}

func (m *MemoryStore) GetTeacherByEmail(ctx context.Context, email string) (*model.Teacher, error) {
	for _, t := range m.data.teachers {
		if strings.EqualFold(t.Email, email) {
			return &t, nil
		}
	}
	return nil, apperrors.ErrTeacherNotFound
}

func (m *MemoryStore) CreateStudent(ctx context.Context, student *model.Student) error {
	if student.ID == "" {
		student.ID = newID()
	}
	student.CreatedAt = time.Now()
	student.IsActive = true
	m.data.students = append(m.data.students, *student)
	return nil
}

func (m *MemoryStore) GetStudent(ctx context.Context, id string) (*model.Student, error) {
	for _, st := range m.data.students {
		if st.ID == id {
			return &st, nil
		}
	}
	return nil, apperrors.ErrStudentNotFound
}

func (m *MemoryStore) GetStudentByEmail(ctx context.Context, email string) (*model.Student, error) {
	for _, st := range m.data.students {
		if strings.EqualFold(st.Email, email) {
			return &st, nil
		}
	}
	return nil, apperrors.ErrStudentNotFound
}

func (m *MemoryStore) ListActiveStudents(ctx context.Context) ([]model.Student, error) {
	var out []model.Student
	for _, st := range m.data.students {
		if st.IsActive {
			out = append(out, st)
		}
	}
	return out, nil
}

func (m *MemoryStore) CreateCourse(ctx context.Context, course *model.Course) error {
	for _, c := range m.data.courses {
		if c.Code == course.Code {
			return apperrors.ErrDuplicateCourse
		}
	}
	if course.ID == "" {
		course.ID = newID()
	}
	course.CreatedAt = time.Now()
	course.IsActive = true
	m.data.courses = append(m.data.courses, *course)
	return nil
}

func (m *MemoryStore) GetCourse(ctx context.Context, id string) (*model.Course, error) {
	for _, c := range m.data.courses {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, apperrors.ErrCourseNotFound
}

func (m *MemoryStore) GetCourseByCode(ctx context.Context, code string) (*model.Course, error) {
	for _, c := range m.data.courses {
		if c.Code == code {
			return &c, nil
		}
	}
	return nil, apperrors.ErrCourseNotFound
}

func (m *MemoryStore) ListCoursesByTeacher(ctx context.Context, teacherID string) ([]model.Course, error) {
	var out []model.Course
	for _, c := range m.data.courses {
		if c.TeacherID == teacherID && c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MemoryStore) DeactivateCourse(ctx context.Context, id string) error {
	for i, c := range m.data.courses {
		if c.ID == id {
			m.data.courses[i].IsActive = false
			return nil
		}
	}
	return apperrors.ErrCourseNotFound
}

func (m *MemoryStore) CreateExercise(ctx context.Context, exercise *model.Exercise) error {
	if exercise.ID == "" {
		exercise.ID = newID()
	}
	exercise.CreatedAt = time.Now()
	exercise.IsActive = true
	if exercise.MaxScore == 0 {
		exercise.MaxScore = model.DefaultMaxScore
	}
	m.data.exercises = append(m.data.exercises, *exercise)
	return nil
}

func (m *MemoryStore) GetExerciseByName(ctx context.Context, courseID, name string) (*model.Exercise, error) {
	for _, e := range m.data.exercises {
		if e.CourseID == courseID && e.Name == name {
			return &e, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) ListActiveExercises(ctx context.Context, courseID string) ([]model.Exercise, error) {
	var out []model.Exercise
	for _, e := range m.data.exercises {
		if e.CourseID == courseID && e.IsActive {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MemoryStore) CreateEnrollment(ctx context.Context, enrollment *model.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = newID()
	}
	enrollment.EnrolledAt = time.Now()
	enrollment.IsActive = true
	m.data.enrollments = append(m.data.enrollments, *enrollment)
	return nil
}

func (m *MemoryStore) HasActiveEnrollment(ctx context.Context, studentID, courseID string) (bool, error) {
	for _, e := range m.data.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID && e.IsActive {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) ListActiveEnrollments(ctx context.Context, courseID string) ([]model.Enrollment, error) {
	var out []model.Enrollment
	for _, e := range m.data.enrollments {
		if e.CourseID == courseID && e.IsActive {
			if st, err := m.GetStudent(ctx, e.StudentID); err == nil {
				e.StudentName = st.Name
				e.StudentEmail = st.Email
			}
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MemoryStore) ListEnrollmentsByStudent(ctx context.Context, studentID string) ([]model.Enrollment, error) {
	var out []model.Enrollment
	for _, e := range m.data.enrollments {
		if e.StudentID == studentID && e.IsActive {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MemoryStore) UpsertGradeRecord(ctx context.Context, record *model.GradeRecord) error {
	if !record.Status.Valid() {
		return apperrors.ValidationError{Field: "status", Value: record.Status, Message: "unknown grade status"}
	}
	if record.ID == "" {
		record.ID = newID()
	}
	now := time.Now()
	key := gradeKey(record.StudentID, record.ExerciseID)
	if existing, ok := m.data.grades[key]; ok {
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
	} else {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	m.data.grades[key] = *record
	return nil
}

func (m *MemoryStore) ListGradeRecordsByCourse(ctx context.Context, courseID string) ([]model.GradeRecord, error) {
	active := make(map[string]bool)
	for _, e := range m.data.exercises {
		if e.CourseID == courseID && e.IsActive {
			active[e.ID] = true
		}
	}
	var out []model.GradeRecord
	for _, g := range m.data.grades {
		if active[g.ExerciseID] {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *MemoryStore) ListGradeRecordsByStudentAndCourse(ctx context.Context, studentID, courseID string) ([]model.GradeRecord, error) {
	records, err := m.ListGradeRecordsByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	var out []model.GradeRecord
	for _, g := range records {
		if g.StudentID == studentID {
			out = append(out, g)
		}
	}
	return out, nil
}
