package stats

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/db"
	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/logger"
	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/model"
)

// SnapshotCache stores computed course statistics. A cached snapshot may be
// stale relative to an in-flight ingestion; ingestion invalidates the key
// after commit, and the TTL bounds staleness in the worst case.
type SnapshotCache interface {
	Get(ctx context.Context, courseID string) (*model.CourseStatistics, bool)
	Set(ctx context.Context, courseID string, stats *model.CourseStatistics)
}

// Service computes dashboard aggregates from persisted grade records. All
// figures for a course come from a single pass over its records.
type Service struct {
	store db.Store
	cache SnapshotCache
	log   zerolog.Logger
}

func NewService(store db.Store, cache SnapshotCache) *Service {
	return &Service{store: store, cache: cache, log: logger.Get()}
}

// tally accumulates the per-status counts and the score sum for one
// exercise, one student, or the whole course. Scores contribute from both
// CORRECT and INCORRECT records; PENDING and NOT_SUBMITTED never carry one.
type tally struct {
	correct      int
	incorrect    int
	pending      int
	notSubmitted int
	scoreSum     int
	scoreCount   int
}

func (t *tally) add(record *model.GradeRecord) {
	switch record.Status {
	case model.GradeStatusCorrect:
		t.correct++
	case model.GradeStatusIncorrect:
		t.incorrect++
	case model.GradeStatusPending:
		t.pending++
	case model.GradeStatusNotSubmitted:
		t.notSubmitted++
	}
	if record.Score != nil {
		t.scoreSum += *record.Score
		t.scoreCount++
	}
}

func (t *tally) total() int {
	return t.correct + t.incorrect + t.pending + t.notSubmitted
}

func (t *tally) average() float64 {
	if t.scoreCount == 0 {
		return 0
	}
	return float64(t.scoreSum) / float64(t.scoreCount)
}

// attempted counts the records contributing to completion; NOT_SUBMITTED
// explicitly does not count.
func (t *tally) attempted() int {
	return t.correct + t.incorrect + t.pending
}

// CourseStatistics aggregates one course. Course-level correct/incorrect
// figures use the same per-record rule as the exercise rows, so the course
// numbers always equal the sum of the exercise rows.
func (s *Service) CourseStatistics(ctx context.Context, courseID string) (*model.CourseStatistics, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, courseID); ok {
			return cached, nil
		}
	}

	course, err := s.store.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	exercises, err := s.store.ListActiveExercises(ctx, courseID)
	if err != nil {
		return nil, err
	}
	enrollments, err := s.store.ListActiveEnrollments(ctx, courseID)
	if err != nil {
		return nil, err
	}
	records, err := s.store.ListGradeRecordsByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	var courseTally tally
	byExercise := make(map[string]*tally, len(exercises))
	byStudent := make(map[string]*tally, len(enrollments))

	for i := range records {
		record := &records[i]
		courseTally.add(record)

		et := byExercise[record.ExerciseID]
		if et == nil {
			et = &tally{}
			byExercise[record.ExerciseID] = et
		}
		et.add(record)

		st := byStudent[record.StudentID]
		if st == nil {
			st = &tally{}
			byStudent[record.StudentID] = st
		}
		st.add(record)
	}

	totalExercises := len(exercises)

	exerciseStats := make([]model.ExerciseStatistics, 0, len(exercises))
	for _, exercise := range exercises {
		t := byExercise[exercise.ID]
		if t == nil {
			t = &tally{}
		}
		exerciseStats = append(exerciseStats, model.ExerciseStatistics{
			ExerciseName:      exercise.Name,
			TotalRecords:      t.total(),
			CorrectCount:      t.correct,
			IncorrectCount:    t.incorrect,
			PendingCount:      t.pending,
			NotSubmittedCount: t.notSubmitted,
			AverageScore:      t.average(),
		})
	}

	performance := make([]model.StudentPerformance, 0, len(enrollments))
	for _, enrollment := range enrollments {
		t := byStudent[enrollment.StudentID]
		if t == nil {
			t = &tally{}
		}
		performance = append(performance, model.StudentPerformance{
			StudentName:          enrollment.StudentName,
			StudentEmail:         enrollment.StudentEmail,
			TotalExercises:       totalExercises,
			CorrectCount:         t.correct,
			IncorrectCount:       t.incorrect,
			PendingCount:         t.pending,
			NotSubmittedCount:    t.notSubmitted,
			AverageScore:         t.average(),
			CompletionPercentage: completion(t.attempted(), totalExercises),
		})
	}

	result := &model.CourseStatistics{
		CourseID:           course.ID,
		CourseName:         course.Name,
		TotalStudents:      len(enrollments),
		TotalExercises:     totalExercises,
		CorrectCount:       courseTally.correct,
		IncorrectCount:     courseTally.incorrect,
		PendingCount:       courseTally.pending,
		NotSubmittedCount:  courseTally.notSubmitted,
		AverageScore:       courseTally.average(),
		ExerciseStatistics: exerciseStats,
		StudentPerformance: performance,
	}

	if s.cache != nil {
		s.cache.Set(ctx, courseID, result)
	}
	return result, nil
}

// TeacherCourses lists a teacher's active courses with enrollment and
// exercise counts.
func (s *Service) TeacherCourses(ctx context.Context, teacherID string) ([]model.CourseResponse, error) {
	teacher, err := s.store.GetTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	courses, err := s.store.ListCoursesByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	responses := make([]model.CourseResponse, 0, len(courses))
	for _, course := range courses {
		resp, err := s.courseResponse(ctx, &course, teacher.Name)
		if err != nil {
			return nil, err
		}
		responses = append(responses, *resp)
	}
	return responses, nil
}

func (s *Service) CourseDetails(ctx context.Context, courseID string) (*model.CourseResponse, error) {
	course, err := s.store.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	teacher, err := s.store.GetTeacher(ctx, course.TeacherID)
	if err != nil {
		return nil, err
	}
	return s.courseResponse(ctx, course, teacher.Name)
}

func (s *Service) courseResponse(ctx context.Context, course *model.Course, teacherName string) (*model.CourseResponse, error) {
	enrollments, err := s.store.ListActiveEnrollments(ctx, course.ID)
	if err != nil {
		return nil, err
	}
	exercises, err := s.store.ListActiveExercises(ctx, course.ID)
	if err != nil {
		return nil, err
	}

	return &model.CourseResponse{
		ID:             course.ID,
		Name:           course.Name,
		Description:    course.Description,
		CourseCode:     course.Code,
		TeacherName:    teacherName,
		CreatedAt:      course.CreatedAt,
		IsActive:       course.IsActive,
		TotalStudents:  len(enrollments),
		TotalExercises: len(exercises),
	}, nil
}

func completion(attempted, totalExercises int) float64 {
	if totalExercises == 0 {
		return 0
	}
	return float64(attempted) / float64(totalExercises) * 100
}
