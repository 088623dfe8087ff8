package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/db"
	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/gradebook"
	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/identity"
	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/logger"
	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/model"
	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/storage"
	apperrors "github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/pkg/errors"
)

// StatsInvalidator drops any cached statistics snapshot for a course after
// its grade records change.
type StatsInvalidator interface {
	Invalidate(ctx context.Context, courseID string) error
}

// Service runs the ingestion pipeline: decode, parse, resolve identities,
// classify and upsert, all inside one transaction. A failure at any point
// leaves course, exercise, enrollment and grade state untouched; gradebooks
// are re-uploaded mid-term all the time and a half-applied update would
// silently corrupt reported grades.
type Service struct {
	store   db.Store
	archive storage.Storage
	cache   StatsInvalidator
	log     zerolog.Logger
}

func NewService(store db.Store, archive storage.Storage, cache StatsInvalidator) *Service {
	return &Service{
		store:   store,
		archive: archive,
		cache:   cache,
		log:     logger.Get(),
	}
}

type summary struct {
	course    *model.Course
	students  int
	exercises int
	warnings  []string
}

// ProcessGradebook ingests one uploaded gradebook for the given teacher.
// Validation problems are reported in the response's error list with no
// state change; any other failure rolls the whole unit of work back.
func (s *Service) ProcessGradebook(ctx context.Context, filename string, data []byte, req model.UploadRequest, teacherID string) (*model.UploadResponse, error) {
	log := s.log.With().Str("course_code", req.CourseCode).Str("file", filename).Logger()

	if errs := validateUpload(filename, data, req); len(errs) > 0 {
		return errorResponse(errs), nil
	}

	decoder, err := gradebook.DecoderFor(filename)
	if err != nil {
		return errorResponse([]string{"file must be a .csv or .xlsx gradebook"}), nil
	}

	rows, err := decoder.Rows(data)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to decode gradebook")
		return errorResponse([]string{fmt.Sprintf("could not read file: %v", err)}), nil
	}

	table, err := gradebook.NewParser().Parse(rows)
	if err != nil {
		return errorResponse([]string{"gradebook has no header row"}), nil
	}

	var result summary
	err = s.store.RunInTx(ctx, func(tx db.Store) error {
		r, err := s.ingest(ctx, tx, table, req, teacherID)
		if err != nil {
			return err
		}
		result = *r
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrTeacherNotFound) {
			return errorResponse([]string{"submitting teacher does not exist"}), nil
		}
		log.Error().Err(err).Msg("Ingestion failed, rolled back")
		return nil, err
	}

	log.Info().
		Int("students", result.students).
		Int("exercises", result.exercises).
		Msg("Gradebook ingested")

	s.afterCommit(ctx, filename, data, result.course)

	return &model.UploadResponse{
		Success:        true,
		Message:        "gradebook processed successfully",
		CourseID:       result.course.ID,
		CourseName:     result.course.Name,
		TotalStudents:  result.students,
		TotalExercises: result.exercises,
		Errors:         result.warnings,
	}, nil
}

func (s *Service) ingest(ctx context.Context, tx db.Store, table *gradebook.Table, req model.UploadRequest, teacherID string) (*summary, error) {
	course, err := s.resolveCourse(ctx, tx, req, teacherID)
	if err != nil {
		return nil, err
	}

	exercises, err := s.resolveExercises(ctx, tx, course, table.Exercises)
	if err != nil {
		return nil, err
	}

	students, err := tx.ListActiveStudents(ctx)
	if err != nil {
		return nil, err
	}
	enrollments, err := tx.ListActiveEnrollments(ctx, course.ID)
	if err != nil {
		return nil, err
	}
	resolver := identity.NewResolver(tx, students, enrollments)

	now := time.Now()
	for _, row := range table.Rows {
		student, _, err := resolver.Resolve(ctx, row.Name)
		if err != nil {
			return nil, err
		}

		enrolled, err := tx.HasActiveEnrollment(ctx, student.ID, course.ID)
		if err != nil {
			return nil, err
		}
		if !enrolled {
			if err := tx.CreateEnrollment(ctx, &model.Enrollment{
				StudentID: student.ID,
				CourseID:  course.ID,
			}); err != nil {
				return nil, err
			}
		}

		for i := 0; i < len(exercises) && i < len(row.Tokens); i++ {
			cls := gradebook.Classify(row.Tokens[i])

			record := &model.GradeRecord{
				StudentID:  student.ID,
				ExerciseID: exercises[i].ID,
				Status:     cls.Status,
				Score:      cls.Score,
			}
			if cls.Submitted {
				record.SubmittedAt = &now
			}
			if err := tx.UpsertGradeRecord(ctx, record); err != nil {
				return nil, err
			}
		}
	}

	warnings := make([]string, 0, len(table.Warnings))
	for _, w := range table.Warnings {
		warnings = append(warnings, w.Error())
	}

	return &summary{
		course:    course,
		students:  len(table.Rows),
		exercises: len(exercises),
		warnings:  warnings,
	}, nil
}

// resolveCourse fetches the course by its unique code or creates it,
// attaching the submitting teacher only on creation. A re-upload to an
// existing code never changes the owning teacher, name or description.
func (s *Service) resolveCourse(ctx context.Context, tx db.Store, req model.UploadRequest, teacherID string) (*model.Course, error) {
	course, err := tx.GetCourseByCode(ctx, req.CourseCode)
	if err == nil {
		return course, nil
	}
	if !errors.Is(err, apperrors.ErrCourseNotFound) {
		return nil, err
	}

	if _, err := tx.GetTeacher(ctx, teacherID); err != nil {
		return nil, err
	}

	course = &model.Course{
		Code:        req.CourseCode,
		Name:        req.CourseName,
		Description: req.Description,
		TeacherID:   teacherID,
	}
	if err := tx.CreateCourse(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *Service) resolveExercises(ctx context.Context, tx db.Store, course *model.Course, names []string) ([]model.Exercise, error) {
	exercises := make([]model.Exercise, 0, len(names))
	for _, name := range names {
		existing, err := tx.GetExerciseByName(ctx, course.ID, name)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			exercises = append(exercises, *existing)
			continue
		}

		exercise := &model.Exercise{
			CourseID: course.ID,
			Name:     name,
			MaxScore: model.DefaultMaxScore,
		}
		if err := tx.CreateExercise(ctx, exercise); err != nil {
			return nil, err
		}
		exercises = append(exercises, *exercise)
	}
	return exercises, nil
}

// afterCommit archives the raw upload and drops the cached statistics
// snapshot. Both are best effort: the ingestion is already committed.
func (s *Service) afterCommit(ctx context.Context, filename string, data []byte, course *model.Course) {
	if s.archive != nil {
		key := fmt.Sprintf("gradebooks/%s/%d%s",
			course.Code, time.Now().Unix(), strings.ToLower(filepath.Ext(filename)))
		if err := s.archive.Upload(ctx, key, bytes.NewReader(data)); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("Failed to archive gradebook")
		}
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, course.ID); err != nil {
			s.log.Warn().Err(err).Str("course_id", course.ID).Msg("Failed to invalidate stats cache")
		}
	}
}

func validateUpload(filename string, data []byte, req model.UploadRequest) []string {
	var errs []string
	if len(data) == 0 {
		errs = append(errs, apperrors.ErrEmptyFile.Error())
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".csv" && ext != ".xlsx" {
		errs = append(errs, "file must be a .csv or .xlsx gradebook")
	}
	if strings.TrimSpace(req.CourseCode) == "" {
		errs = append(errs, "course_code is required")
	}
	if strings.TrimSpace(req.CourseName) == "" {
		errs = append(errs, "course_name is required")
	}
	return errs
}

func errorResponse(errs []string) *model.UploadResponse {
	return &model.UploadResponse{
		Success: false,
		Message: "gradebook could not be processed",
		Errors:  errs,
	}
}
