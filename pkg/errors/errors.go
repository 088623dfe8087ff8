package errors

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyFile          = errors.New("uploaded file is empty")
	ErrInvalidFileFormat  = errors.New("invalid file format")
	ErrCourseNotFound     = errors.New("course not found")
	ErrTeacherNotFound    = errors.New("teacher not found")
	ErrStudentNotFound    = errors.New("student not found")
	ErrNotEnrolled        = errors.New("student is not enrolled in this course")
	ErrDuplicateCourse    = errors.New("course code already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
)

type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s' with value '%v': %s",
		e.Field, e.Value, e.Message)
}

// RecoveryWarning records a heuristic correction applied while parsing a
// gradebook row (truncated name, suspected embedded grades, unparsable
// token). Warnings never abort an ingestion; they are collected into the
// result's error list of an otherwise successful run.
type RecoveryWarning struct {
	Row     int
	Message string
}

func (w RecoveryWarning) Error() string {
	return fmt.Sprintf("row %d: %s", w.Row, w.Message)
}

func NewRecoveryWarning(row int, format string, args ...interface{}) RecoveryWarning {
	return RecoveryWarning{Row: row, Message: fmt.Sprintf(format, args...)}
}
