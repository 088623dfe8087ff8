package model

import "time"

// GradeStatus is a closed classification: every gradebook cell maps to
// exactly one of the four values. Consumers switch exhaustively so a new
// status cannot be added without touching every site.
type GradeStatus string

const (
	GradeStatusCorrect      GradeStatus = "CORRECT"
	GradeStatusIncorrect    GradeStatus = "INCORRECT"
	GradeStatusPending      GradeStatus = "PENDING"
	GradeStatusNotSubmitted GradeStatus = "NOT_SUBMITTED"
)

func (s GradeStatus) Valid() bool {
	switch s {
	case GradeStatusCorrect, GradeStatusIncorrect, GradeStatusPending, GradeStatusNotSubmitted:
		return true
	}
	return false
}

// GradeRecord holds one (student, exercise) cell. Score is set only for
// CORRECT and INCORRECT records; SubmittedAt only when the score was
// recorded by the ingestion pass that produced the record. Re-ingesting the
// same cell overwrites the prior record rather than duplicating it.
type GradeRecord struct {
	ID          string      `json:"id" db:"id"`
	StudentID   string      `json:"student_id" db:"student_id"`
	ExerciseID  string      `json:"exercise_id" db:"exercise_id"`
	Status      GradeStatus `json:"status" db:"status"`
	Score       *int        `json:"score,omitempty" db:"score"`
	SubmittedAt *time.Time  `json:"submitted_at,omitempty" db:"submitted_at"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}
