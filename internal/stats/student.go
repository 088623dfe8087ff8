package stats

import (
	"context"

	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/model"
	apperrors "github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/pkg/errors"
)

// StudentCourses summarizes every course the student is enrolled in.
func (s *Service) StudentCourses(ctx context.Context, studentID string) (*model.StudentCourses, error) {
	student, err := s.store.GetStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	enrollments, err := s.store.ListEnrollmentsByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	summaries := make([]model.CourseSummary, 0, len(enrollments))
	for _, enrollment := range enrollments {
		summary, err := s.courseSummary(ctx, studentID, enrollment)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *summary)
	}

	return &model.StudentCourses{
		StudentID:    student.ID,
		StudentName:  student.Name,
		StudentEmail: student.Email,
		Courses:      summaries,
	}, nil
}

// StudentGrades returns the student's per-exercise breakdown for one
// course: one entry per active exercise, with exercises the student has no
// record for rendered as NOT_SUBMITTED.
func (s *Service) StudentGrades(ctx context.Context, studentID, courseID string) (*model.StudentGrades, error) {
	student, err := s.store.GetStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	enrolled, err := s.store.HasActiveEnrollment(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, apperrors.ErrNotEnrolled
	}

	course, err := s.store.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	exercises, err := s.store.ListActiveExercises(ctx, courseID)
	if err != nil {
		return nil, err
	}
	records, err := s.store.ListGradeRecordsByStudentAndCourse(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}

	var t tally
	byExercise := make(map[string]*model.GradeRecord, len(records))
	for i := range records {
		record := &records[i]
		t.add(record)
		byExercise[record.ExerciseID] = record
	}

	grades := make([]model.ExerciseGrade, 0, len(exercises))
	for _, exercise := range exercises {
		grade := model.ExerciseGrade{
			ExerciseID:   exercise.ID,
			ExerciseName: exercise.Name,
			Status:       string(model.GradeStatusNotSubmitted),
			MaxScore:     exercise.MaxScore,
		}
		if record, ok := byExercise[exercise.ID]; ok {
			grade.Status = string(record.Status)
			grade.Score = record.Score
			grade.SubmittedAt = record.SubmittedAt
		}
		grades = append(grades, grade)
	}

	totalExercises := len(exercises)

	return &model.StudentGrades{
		StudentID:            student.ID,
		StudentName:          student.Name,
		CourseID:             course.ID,
		CourseName:           course.Name,
		TotalExercises:       totalExercises,
		CorrectCount:         t.correct,
		IncorrectCount:       t.incorrect,
		PendingCount:         t.pending,
		NotSubmittedCount:    t.notSubmitted,
		AverageScore:         t.average(),
		CompletionPercentage: completion(t.attempted(), totalExercises),
		ExerciseGrades:       grades,
	}, nil
}

func (s *Service) courseSummary(ctx context.Context, studentID string, enrollment model.Enrollment) (*model.CourseSummary, error) {
	course, err := s.store.GetCourse(ctx, enrollment.CourseID)
	if err != nil {
		return nil, err
	}
	teacher, err := s.store.GetTeacher(ctx, course.TeacherID)
	if err != nil {
		return nil, err
	}
	exercises, err := s.store.ListActiveExercises(ctx, course.ID)
	if err != nil {
		return nil, err
	}
	records, err := s.store.ListGradeRecordsByStudentAndCourse(ctx, studentID, course.ID)
	if err != nil {
		return nil, err
	}

	var t tally
	for i := range records {
		t.add(&records[i])
	}

	completed := t.correct + t.incorrect
	totalExercises := len(exercises)

	return &model.CourseSummary{
		CourseID:             course.ID,
		CourseName:           course.Name,
		CourseCode:           course.Code,
		TeacherName:          teacher.Name,
		EnrolledAt:           enrollment.EnrolledAt,
		TotalExercises:       totalExercises,
		CompletedExercises:   completed,
		AverageScore:         t.average(),
		CompletionPercentage: completion(completed, totalExercises),
	}, nil
}
