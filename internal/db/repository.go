package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/model"
	apperrors "github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/pkg/errors"
)

// Store is the persistence boundary for the gradebook domain. RunInTx runs
// the given function against a transaction-scoped Store; an error return
// rolls every write back, which is what makes ingestion all-or-nothing.
type Store interface {
	RunInTx(ctx context.Context, fn func(Store) error) error

	CreateTeacher(ctx context.Context, teacher *model.Teacher) error
	GetTeacher(ctx context.Context, id string) (*model.Teacher, error)
	GetTeacherByEmail(ctx context.Context, email string) (*model.Teacher, error)

	CreateStudent(ctx context.Context, student *model.Student) error
	GetStudent(ctx context.Context, id string) (*model.Student, error)
	GetStudentByEmail(ctx context.Context, email string) (*model.Student, error)
	ListActiveStudents(ctx context.Context) ([]model.Student, error)

	CreateCourse(ctx context.Context, course *model.Course) error
	GetCourse(ctx context.Context, id string) (*model.Course, error)
	GetCourseByCode(ctx context.Context, code string) (*model.Course, error)
	ListCoursesByTeacher(ctx context.Context, teacherID string) ([]model.Course, error)
	DeactivateCourse(ctx context.Context, id string) error

	CreateExercise(ctx context.Context, exercise *model.Exercise) error
	GetExerciseByName(ctx context.Context, courseID, name string) (*model.Exercise, error)
	ListActiveExercises(ctx context.Context, courseID string) ([]model.Exercise, error)

	CreateEnrollment(ctx context.Context, enrollment *model.Enrollment) error
	HasActiveEnrollment(ctx context.Context, studentID, courseID string) (bool, error)
	ListActiveEnrollments(ctx context.Context, courseID string) ([]model.Enrollment, error)
	ListEnrollmentsByStudent(ctx context.Context, studentID string) ([]model.Enrollment, error)

	UpsertGradeRecord(ctx context.Context, record *model.GradeRecord) error
	ListGradeRecordsByCourse(ctx context.Context, courseID string) ([]model.GradeRecord, error)
	ListGradeRecordsByStudentAndCourse(ctx context.Context, studentID, courseID string) ([]model.GradeRecord, error)
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type store struct {
	db *sql.DB // nil when transaction-scoped
	q  querier
}

func NewStore(db *sql.DB) Store {
	return &store{db: db, q: db}
}

func (s *store) RunInTx(ctx context.Context, fn func(Store) error) error {
	if s.db == nil {
		// Already inside a transaction; reuse it.
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(&store{q: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

func newID() string {
	return uuid.NewString()
}

// Teachers

func (s *store) CreateTeacher(ctx context.Context, teacher *model.Teacher) error {
	if teacher.ID == "" {
		teacher.ID = newID()
	}
	teacher.CreatedAt = time.Now()

	query := `INSERT INTO teachers (id, name, email, password_hash, created_at)
			  VALUES (?, ?, ?, ?, ?)`
	_, err := s.q.ExecContext(ctx, query,
		teacher.ID, teacher.Name, teacher.Email, teacher.PasswordHash, teacher.CreatedAt)
	return err
}

func (s *store) GetTeacher(ctx context.Context, id string) (*model.Teacher, error) {
	query := `SELECT id, name, email, password_hash, created_at FROM teachers WHERE id = ?`
	return scanTeacher(s.q.QueryRowContext(ctx, query, id))
}

func (s *store) GetTeacherByEmail(ctx context.Context, email string) (*model.Teacher, error) {
	query := `SELECT id, name, email, password_hash, created_at FROM teachers WHERE email = ?`
	return scanTeacher(s.q.QueryRowContext(ctx, query, email))
}

func scanTeacher(row *sql.Row) (*model.Teacher, error) {
	var t model.Teacher
	err := row.Scan(&t.ID, &t.Name, &t.Email, &t.PasswordHash, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrTeacherNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Students

func (s *store) CreateStudent(ctx context.Context, student *model.Student) error {
	if student.ID == "" {
		student.ID = newID()
	}
	student.CreatedAt = time.Now()
	student.IsActive = true

	query := `INSERT INTO students (id, name, email, password_hash, code, is_active, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := s.q.ExecContext(ctx, query,
		student.ID, student.Name, student.Email, student.PasswordHash,
		student.Code, student.IsActive, student.CreatedAt)
	return err
}

func (s *store) GetStudent(ctx context.Context, id string) (*model.Student, error) {
	query := `SELECT id, name, email, password_hash, code, is_active, created_at
			  FROM students WHERE id = ?`
	return scanStudent(s.q.QueryRowContext(ctx, query, id))
}

func (s *store) GetStudentByEmail(ctx context.Context, email string) (*model.Student, error) {
	query := `SELECT id, name, email, password_hash, code, is_active, created_at
			  FROM students WHERE email = ?`
	return scanStudent(s.q.QueryRowContext(ctx, query, email))
}

func scanStudent(row *sql.Row) (*model.Student, error) {
	var st model.Student
	err := row.Scan(&st.ID, &st.Name, &st.Email, &st.PasswordHash, &st.Code, &st.IsActive, &st.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrStudentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *store) ListActiveStudents(ctx context.Context) ([]model.Student, error) {
	query := `SELECT id, name, email, password_hash, code, is_active, created_at
			  FROM students WHERE is_active = TRUE`

	rows, err := s.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		var st model.Student
		if err := rows.Scan(&st.ID, &st.Name, &st.Email, &st.PasswordHash,
			&st.Code, &st.IsActive, &st.CreatedAt); err != nil {
			return nil, err
		}
		students = append(students, st)
	}
	return students, rows.Err()
}

// Courses

func (s *store) CreateCourse(ctx context.Context, course *model.Course) error {
	if course.ID == "" {
		course.ID = newID()
	}
	course.CreatedAt = time.Now()
	course.IsActive = true

	query := `INSERT INTO courses (id, course_code, name, description, teacher_id, is_active, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := s.q.ExecContext(ctx, query,
		course.ID, course.Code, course.Name, course.Description,
		course.TeacherID, course.IsActive, course.CreatedAt)
	if isDuplicateKey(err) {
		return apperrors.ErrDuplicateCourse
	}
	return err
}

func (s *store) GetCourse(ctx context.Context, id string) (*model.Course, error) {
	query := `SELECT id, course_code, name, description, teacher_id, is_active, created_at
			  FROM courses WHERE id = ?`
	return scanCourse(s.q.QueryRowContext(ctx, query, id))
}

func (s *store) GetCourseByCode(ctx context.Context, code string) (*model.Course, error) {
	query := `SELECT id, course_code, name, description, teacher_id, is_active, created_at
			  FROM courses WHERE course_code = ?`
	return scanCourse(s.q.QueryRowContext(ctx, query, code))
}

func scanCourse(row *sql.Row) (*model.Course, error) {
	var c model.Course
	err := row.Scan(&c.ID, &c.Code, &c.Name, &c.Description, &c.TeacherID, &c.IsActive, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *store) ListCoursesByTeacher(ctx context.Context, teacherID string) ([]model.Course, error) {
	query := `SELECT id, course_code, name, description, teacher_id, is_active, created_at
			  FROM courses WHERE teacher_id = ? AND is_active = TRUE ORDER BY created_at DESC`

	rows, err := s.q.QueryContext(ctx, query, teacherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		var c model.Course
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Description,
			&c.TeacherID, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func (s *store) DeactivateCourse(ctx context.Context, id string) error {
	query := `UPDATE courses SET is_active = FALSE WHERE id = ?`
	result, err := s.q.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.ErrCourseNotFound
	}
	return nil
}

// Exercises

func (s *store) CreateExercise(ctx context.Context, exercise *model.Exercise) error {
	if exercise.ID == "" {
		exercise.ID = newID()
	}
	exercise.CreatedAt = time.Now()
	exercise.IsActive = true
	if exercise.MaxScore == 0 {
		exercise.MaxScore = model.DefaultMaxScore
	}

	query := `INSERT INTO exercises (id, course_id, name, max_score, is_active, created_at)
			  VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.q.ExecContext(ctx, query,
		exercise.ID, exercise.CourseID, exercise.Name,
		exercise.MaxScore, exercise.IsActive, exercise.CreatedAt)
	return err
}

func (s *store) GetExerciseByName(ctx context.Context, courseID, name string) (*model.Exercise, error) {
	query := `SELECT id, course_id, name, max_score, is_active, created_at
			  FROM exercises WHERE course_id = ? AND name = ?`

	var e model.Exercise
	err := s.q.QueryRowContext(ctx, query, courseID, name).Scan(
		&e.ID, &e.CourseID, &e.Name, &e.MaxScore, &e.IsActive, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *store) ListActiveExercises(ctx context.Context, courseID string) ([]model.Exercise, error) {
	query := `SELECT id, course_id, name, max_score, is_active, created_at
			  FROM exercises WHERE course_id = ? AND is_active = TRUE ORDER BY created_at`

	rows, err := s.q.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exercises []model.Exercise
	for rows.Next() {
		var e model.Exercise
		if err := rows.Scan(&e.ID, &e.CourseID, &e.Name, &e.MaxScore, &e.IsActive, &e.CreatedAt); err != nil {
			return nil, err
		}
		exercises = append(exercises, e)
	}
	return exercises, rows.Err()
}

// Enrollments

func (s *store) CreateEnrollment(ctx context.Context, enrollment *model.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = newID()
	}
	enrollment.EnrolledAt = time.Now()
	enrollment.IsActive = true

	query := `INSERT INTO enrollments (id, student_id, course_id, is_active, enrolled_at)
			  VALUES (?, ?, ?, ?, ?)`
	_, err := s.q.ExecContext(ctx, query,
		enrollment.ID, enrollment.StudentID, enrollment.CourseID,
		enrollment.IsActive, enrollment.EnrolledAt)
	return err
}

func (s *store) HasActiveEnrollment(ctx context.Context, studentID, courseID string) (bool, error) {
	query := `SELECT COUNT(*) FROM enrollments
			  WHERE student_id = ? AND course_id = ? AND is_active = TRUE`

	var count int
	if err := s.q.QueryRowContext(ctx, query, studentID, courseID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *store) ListActiveEnrollments(ctx context.Context, courseID string) ([]model.Enrollment, error) {
	query := `SELECT e.id, e.student_id, e.course_id, e.is_active, e.enrolled_at, s.name, s.email
			  FROM enrollments e
			  JOIN students s ON s.id = e.student_id
			  WHERE e.course_id = ? AND e.is_active = TRUE
			  ORDER BY e.enrolled_at`

	rows, err := s.q.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var enrollments []model.Enrollment
	for rows.Next() {
		var e model.Enrollment
		if err := rows.Scan(&e.ID, &e.StudentID, &e.CourseID, &e.IsActive,
			&e.EnrolledAt, &e.StudentName, &e.StudentEmail); err != nil {
			return nil, err
		}
		enrollments = append(enrollments, e)
	}
	return enrollments, rows.Err()
}

func (s *store) ListEnrollmentsByStudent(ctx context.Context, studentID string) ([]model.Enrollment, error) {
	query := `SELECT id, student_id, course_id, is_active, enrolled_at
			  FROM enrollments WHERE student_id = ? AND is_active = TRUE
			  ORDER BY enrolled_at`

	rows, err := s.q.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var enrollments []model.Enrollment
	for rows.Next() {
		var e model.Enrollment
		if err := rows.Scan(&e.ID, &e.StudentID, &e.CourseID, &e.IsActive, &e.EnrolledAt); err != nil {
			return nil, err
		}
		enrollments = append(enrollments, e)
	}
	return enrollments, rows.Err()
}

// Grade records

func (s *store) UpsertGradeRecord(ctx context.Context, record *model.GradeRecord) error {
	if !record.Status.Valid() {
		return apperrors.ValidationError{Field: "status", Value: record.Status, Message: "unknown grade status"}
	}
	if record.ID == "" {
		record.ID = newID()
	}
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now

	query := `INSERT INTO grade_records
				(id, student_id, exercise_id, status, score, submitted_at, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE
				status = VALUES(status),
				score = VALUES(score),
				submitted_at = VALUES(submitted_at),
				updated_at = VALUES(updated_at)`
	_, err := s.q.ExecContext(ctx, query,
		record.ID, record.StudentID, record.ExerciseID, record.Status,
		record.Score, record.SubmittedAt, record.CreatedAt, record.UpdatedAt)
	return err
}

func (s *store) ListGradeRecordsByCourse(ctx context.Context, courseID string) ([]model.GradeRecord, error) {
	query := `SELECT g.id, g.student_id, g.exercise_id, g.status, g.score, g.submitted_at, g.created_at, g.updated_at
			  FROM grade_records g
			  JOIN exercises ex ON ex.id = g.exercise_id
			  WHERE ex.course_id = ? AND ex.is_active = TRUE`

	return s.queryGradeRecords(ctx, query, courseID)
}

func (s *store) ListGradeRecordsByStudentAndCourse(ctx context.Context, studentID, courseID string) ([]model.GradeRecord, error) {
	query := `SELECT g.id, g.student_id, g.exercise_id, g.status, g.score, g.submitted_at, g.created_at, g.updated_at
			  FROM grade_records g
			  JOIN exercises ex ON ex.id = g.exercise_id
			  WHERE g.student_id = ? AND ex.course_id = ? AND ex.is_active = TRUE`

	return s.queryGradeRecords(ctx, query, studentID, courseID)
}

func (s *store) queryGradeRecords(ctx context.Context, query string, args ...interface{}) ([]model.GradeRecord, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.GradeRecord
	for rows.Next() {
		var g model.GradeRecord
		if err := rows.Scan(&g.ID, &g.StudentID, &g.ExerciseID, &g.Status,
			&g.Score, &g.SubmittedAt, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		records = append(records, g)
	}
	return records, rows.Err()
}

// MySQL error 1062: duplicate entry for a unique key. Course-code races
// between concurrent ingestions resolve here, at the storage boundary.
func isDuplicateKey(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == 1062
}
