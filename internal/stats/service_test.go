package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/db"
	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/model"
	apperrors "github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/pkg/errors"
)

// seedCourse builds one course with two exercises and two students. E1 has a
// correct grade (90) and an incorrect one (40); E2 was submitted by nobody.
func seedCourse(t *testing.T) *db.MemoryStore {
	t.Helper()
	ctx := context.Background()
	store := db.NewMemoryStore()

	teacher := &model.Teacher{ID: "t1", Name: "Prof. Vega", Email: "vega@example.com"}
	if err := store.CreateTeacher(ctx, teacher); err != nil {
		t.Fatal(err)
	}
	course := &model.Course{ID: "c1", Code: "MATH101", Name: "Mathematics", TeacherID: "t1"}
	if err := store.CreateCourse(ctx, course); err != nil {
		t.Fatal(err)
	}
	for _, e := range []*model.Exercise{
		{ID: "e1", CourseID: "c1", Name: "E1"},
		{ID: "e2", CourseID: "c1", Name: "E2"},
	} {
		if err := store.CreateExercise(ctx, e); err != nil {
			t.Fatal(err)
		}
	}
	for _, s := range []*model.Student{
		{ID: "s1", Name: "Ana Torres", Email: "ana.torres@estudiante.com"},
		{ID: "s2", Name: "Luis Pérez", Email: "luis.prez@estudiante.com"},
	} {
		if err := store.CreateStudent(ctx, s); err != nil {
			t.Fatal(err)
		}
		if err := store.CreateEnrollment(ctx, &model.Enrollment{StudentID: s.ID, CourseID: "c1"}); err != nil {
			t.Fatal(err)
		}
	}

	now := time.Now()
	score90, score40 := 90, 40
	records := []*model.GradeRecord{
		{StudentID: "s1", ExerciseID: "e1", Status: model.GradeStatusCorrect, Score: &score90, SubmittedAt: &now},
		{StudentID: "s2", ExerciseID: "e1", Status: model.GradeStatusIncorrect, Score: &score40, SubmittedAt: &now},
		{StudentID: "s1", ExerciseID: "e2", Status: model.GradeStatusNotSubmitted},
		{StudentID: "s2", ExerciseID: "e2", Status: model.GradeStatusNotSubmitted},
	}
	for _, r := range records {
		if err := store.UpsertGradeRecord(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	return store
}

func TestCourseStatistics(t *testing.T) {
	store := seedCourse(t)
	svc := NewService(store, nil)

	got, err := svc.CourseStatistics(context.Background(), "c1")
	if err != nil {
		t.Fatal(err)
	}

	if got.TotalStudents != 2 || got.TotalExercises != 2 {
		t.Fatalf("totals = %d students / %d exercises, want 2/2",
			got.TotalStudents, got.TotalExercises)
	}
	if got.CorrectCount != 1 || got.IncorrectCount != 1 || got.NotSubmittedCount != 2 || got.PendingCount != 0 {
		t.Fatalf("course counts = correct %d incorrect %d pending %d not-submitted %d",
			got.CorrectCount, got.IncorrectCount, got.PendingCount, got.NotSubmittedCount)
	}
	// Scored records are 90 and 40, so both averages are 65.0.
	if got.AverageScore != 65.0 {
		t.Fatalf("course average = %v, want 65.0", got.AverageScore)
	}

	if len(got.ExerciseStatistics) != 2 {
		t.Fatalf("expected 2 exercise rows, got %d", len(got.ExerciseStatistics))
	}
	e1 := got.ExerciseStatistics[0]
	if e1.ExerciseName != "E1" || e1.CorrectCount != 1 || e1.IncorrectCount != 1 || e1.AverageScore != 65.0 {
		t.Fatalf("E1 row = %+v", e1)
	}
	e2 := got.ExerciseStatistics[1]
	if e2.ExerciseName != "E2" || e2.NotSubmittedCount != 2 || e2.AverageScore != 0 {
		t.Fatalf("E2 row = %+v", e2)
	}

	if len(got.StudentPerformance) != 2 {
		t.Fatalf("expected 2 performance rows, got %d", len(got.StudentPerformance))
	}
	for _, p := range got.StudentPerformance {
		if p.CompletionPercentage != 50.0 {
			t.Fatalf("%s completion = %v, want 50.0", p.StudentName, p.CompletionPercentage)
		}
	}
}

func TestCourseStatisticsUnknownCourse(t *testing.T) {
	svc := NewService(db.NewMemoryStore(), nil)
	if _, err := svc.CourseStatistics(context.Background(), "missing"); !errors.Is(err, apperrors.ErrCourseNotFound) {
		t.Fatalf("err = %v, want ErrCourseNotFound", err)
	}
}

type fakeCache struct {
	stored map[string]*model.CourseStatistics
	gets   int
	sets   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{stored: make(map[string]*model.CourseStatistics)}
}

func (f *fakeCache) Get(ctx context.Context, courseID string) (*model.CourseStatistics, bool) {
	f.gets++
	s, ok := f.stored[courseID]
	return s, ok
}

func (f *fakeCache) Set(ctx context.Context, courseID string, stats *model.CourseStatistics) {
	f.sets++
	f.stored[courseID] = stats
}

func TestCourseStatisticsSnapshotCache(t *testing.T) {
	store := seedCourse(t)
	cache := newFakeCache()
	svc := NewService(store, cache)
	ctx := context.Background()

	first, err := svc.CourseStatistics(ctx, "c1")
	if err != nil {
		t.Fatal(err)
	}
	if cache.sets != 1 {
		t.Fatalf("cache sets = %d, want 1", cache.sets)
	}

	second, err := svc.CourseStatistics(ctx, "c1")
	if err != nil {
		t.Fatal(err)
	}
	if cache.sets != 1 {
		t.Fatalf("second call recomputed, cache sets = %d", cache.sets)
	}
	if first != second {
		t.Fatal("expected the cached snapshot back")
	}
}

func TestTeacherCourses(t *testing.T) {
	store := seedCourse(t)
	svc := NewService(store, nil)

	courses, err := svc.TeacherCourses(context.Background(), "t1")
	if err != nil {
		t.Fatal(err)
	}
	if len(courses) != 1 {
		t.Fatalf("expected 1 course, got %d", len(courses))
	}
	c := courses[0]
	if c.CourseCode != "MATH101" || c.TeacherName != "Prof. Vega" {
		t.Fatalf("course = %+v", c)
	}
	if c.TotalStudents != 2 || c.TotalExercises != 2 {
		t.Fatalf("counts = %d students / %d exercises", c.TotalStudents, c.TotalExercises)
	}
}

func TestStudentCourses(t *testing.T) {
	store := seedCourse(t)
	svc := NewService(store, nil)

	got, err := svc.StudentCourses(context.Background(), "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Courses) != 1 {
		t.Fatalf("expected 1 course summary, got %d", len(got.Courses))
	}
	summary := got.Courses[0]
	// s1 completed only E1 (CORRECT); PENDING does not count as completed.
	if summary.CompletedExercises != 1 {
		t.Fatalf("completed = %d, want 1", summary.CompletedExercises)
	}
	if summary.AverageScore != 90.0 {
		t.Fatalf("average = %v, want 90.0", summary.AverageScore)
	}
	if summary.CompletionPercentage != 50.0 {
		t.Fatalf("completion = %v, want 50.0", summary.CompletionPercentage)
	}
}

func TestStudentGrades(t *testing.T) {
	store := seedCourse(t)
	svc := NewService(store, nil)

	got, err := svc.StudentGrades(context.Background(), "s2", "c1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.ExerciseGrades) != 2 {
		t.Fatalf("expected one entry per exercise, got %d", len(got.ExerciseGrades))
	}
	if got.ExerciseGrades[0].Status != string(model.GradeStatusIncorrect) {
		t.Fatalf("E1 status = %s", got.ExerciseGrades[0].Status)
	}
	if got.ExerciseGrades[1].Status != string(model.GradeStatusNotSubmitted) {
		t.Fatalf("E2 status = %s", got.ExerciseGrades[1].Status)
	}
	if got.AverageScore != 40.0 {
		t.Fatalf("average = %v, want 40.0", got.AverageScore)
	}
	if got.CompletionPercentage != 50.0 {
		t.Fatalf("completion = %v, want 50.0", got.CompletionPercentage)
	}
}

func TestStudentGradesRequiresEnrollment(t *testing.T) {
	store := seedCourse(t)
	ctx := context.Background()

	outsider := &model.Student{ID: "s9", Name: "Outsider", Email: "outsider@estudiante.com"}
	if err := store.CreateStudent(ctx, outsider); err != nil {
		t.Fatal(err)
	}

	svc := NewService(store, nil)
	if _, err := svc.StudentGrades(ctx, "s9", "c1"); !errors.Is(err, apperrors.ErrNotEnrolled) {
		t.Fatalf("err = %v, want ErrNotEnrolled", err)
	}
}
