package model

import "time"

type UploadRequest struct {
	CourseCode  string `json:"course_code" form:"course_code"`
	CourseName  string `json:"course_name" form:"course_name"`
	Description string `json:"description" form:"description"`
}

type UploadResponse struct {
	Success        bool     `json:"success"`
	Message        string   `json:"message"`
	CourseID       string   `json:"course_id,omitempty"`
	CourseName     string   `json:"course_name,omitempty"`
	TotalStudents  int      `json:"total_students"`
	TotalExercises int      `json:"total_exercises"`
	Errors         []string `json:"errors,omitempty"`
}

type CreateCourseRequest struct {
	CourseCode  string `json:"course_code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CourseResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	CourseCode     string    `json:"course_code"`
	TeacherName    string    `json:"teacher_name"`
	CreatedAt      time.Time `json:"created_at"`
	IsActive       bool      `json:"is_active"`
	TotalStudents  int       `json:"total_students"`
	TotalExercises int       `json:"total_exercises"`
}

// CourseStatistics aggregates every grade record of a course in one pass.
// The correct/incorrect/pending/not-submitted figures are per-record totals
// across all students, the same rule the per-exercise rows use, so course
// totals are always the sum of the exercise rows.
type CourseStatistics struct {
	CourseID           string               `json:"course_id"`
	CourseName         string               `json:"course_name"`
	TotalStudents      int                  `json:"total_students"`
	TotalExercises     int                  `json:"total_exercises"`
	CorrectCount       int                  `json:"correct_count"`
	IncorrectCount     int                  `json:"incorrect_count"`
	PendingCount       int                  `json:"pending_count"`
	NotSubmittedCount  int                  `json:"not_submitted_count"`
	AverageScore       float64              `json:"average_score"`
	ExerciseStatistics []ExerciseStatistics `json:"exercise_statistics"`
	StudentPerformance []StudentPerformance `json:"student_performance"`
}

type ExerciseStatistics struct {
	ExerciseName      string  `json:"exercise_name"`
	TotalRecords      int     `json:"total_records"`
	CorrectCount      int     `json:"correct_count"`
	IncorrectCount    int     `json:"incorrect_count"`
	PendingCount      int     `json:"pending_count"`
	NotSubmittedCount int     `json:"not_submitted_count"`
	AverageScore      float64 `json:"average_score"`
}

type StudentPerformance struct {
	StudentName          string  `json:"student_name"`
	StudentEmail         string  `json:"student_email"`
	TotalExercises       int     `json:"total_exercises"`
	CorrectCount         int     `json:"correct_count"`
	IncorrectCount       int     `json:"incorrect_count"`
	PendingCount         int     `json:"pending_count"`
	NotSubmittedCount    int     `json:"not_submitted_count"`
	AverageScore         float64 `json:"average_score"`
	CompletionPercentage float64 `json:"completion_percentage"`
}

type CourseSummary struct {
	CourseID             string    `json:"course_id"`
	CourseName           string    `json:"course_name"`
	CourseCode           string    `json:"course_code"`
	TeacherName          string    `json:"teacher_name"`
	EnrolledAt           time.Time `json:"enrolled_at"`
	TotalExercises       int       `json:"total_exercises"`
	CompletedExercises   int       `json:"completed_exercises"`
	AverageScore         float64   `json:"average_score"`
	CompletionPercentage float64   `json:"completion_percentage"`
}

type StudentCourses struct {
	StudentID    string          `json:"student_id"`
	StudentName  string          `json:"student_name"`
	StudentEmail string          `json:"student_email"`
	Courses      []CourseSummary `json:"courses"`
}

type ExerciseGrade struct {
	ExerciseID   string     `json:"exercise_id"`
	ExerciseName string     `json:"exercise_name"`
	Score        *int       `json:"score,omitempty"`
	Status       string     `json:"status"`
	SubmittedAt  *time.Time `json:"submitted_at,omitempty"`
	MaxScore     int        `json:"max_score"`
}

type StudentGrades struct {
	StudentID            string          `json:"student_id"`
	StudentName          string          `json:"student_name"`
	CourseID             string          `json:"course_id"`
	CourseName           string          `json:"course_name"`
	TotalExercises       int             `json:"total_exercises"`
	CorrectCount         int             `json:"correct_count"`
	IncorrectCount       int             `json:"incorrect_count"`
	PendingCount         int             `json:"pending_count"`
	NotSubmittedCount    int             `json:"not_submitted_count"`
	AverageScore         float64         `json:"average_score"`
	CompletionPercentage float64         `json:"completion_percentage"`
	ExerciseGrades       []ExerciseGrade `json:"exercise_grades"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	Role      Role   `json:"role"`
	Name      string `json:"name"`
	ExpiresIn int    `json:"expires_in"`
}
