package model

import "time"

// Course is identified externally by its unique course code. Courses are
// never hard-deleted, only deactivated.
type Course struct {
	ID          string    `json:"id" db:"id"`
	Code        string    `json:"course_code" db:"course_code"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	TeacherID   string    `json:"teacher_id" db:"teacher_id"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Exercise belongs to exactly one course; its name is unique within the
// course. A header column with different text is a different exercise even
// when it means the same assignment.
type Exercise struct {
	ID        string    `json:"id" db:"id"`
	CourseID  string    `json:"course_id" db:"course_id"`
	Name      string    `json:"name" db:"name"`
	MaxScore  int       `json:"max_score" db:"max_score"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

const DefaultMaxScore = 100
