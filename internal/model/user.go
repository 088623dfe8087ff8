package model

import "time"

type Role string

const (
	RoleTeacher Role = "TEACHER"
	RoleStudent Role = "STUDENT"
)

type Teacher struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Student email is the business key; the ingestion pipeline synthesizes one
// when the gradebook carries no contact address. A student is shared across
// every course they are enrolled in.
type Student struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Code         string    `json:"code" db:"code"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Enrollment links a student to a course. At most one active enrollment
// exists per (student, course) pair.
type Enrollment struct {
	ID         string    `json:"id" db:"id"`
	StudentID  string    `json:"student_id" db:"student_id"`
	CourseID   string    `json:"course_id" db:"course_id"`
	IsActive   bool      `json:"is_active" db:"is_active"`
	EnrolledAt time.Time `json:"enrolled_at" db:"enrolled_at"`

	// Populated by course-scoped queries.
	StudentName  string `json:"student_name,omitempty" db:"student_name"`
	StudentEmail string `json:"student_email,omitempty" db:"student_email"`
}
