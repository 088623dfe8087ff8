package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/auth"
	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/config"
	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/db"
	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/ingest"
	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/logger"
	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/model"
	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/stats"
	apperrors "github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/pkg/errors"
)

type Handler struct {
	store       db.Store
	authService *auth.Service
	ingestion   *ingest.Service
	statistics  *stats.Service
	cfg         *config.Config
	log         zerolog.Logger
}

func NewHandler(
	store db.Store,
	authService *auth.Service,
	ingestion *ingest.Service,
	statistics *stats.Service,
	cfg *config.Config,
) *Handler {
	return &Handler{
		store:       store,
		authService: authService,
		ingestion:   ingestion,
		statistics:  statistics,
		cfg:         cfg,
		log:         logger.Get(),
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.authService.Register(c.Request.Context(), req); err != nil {
		var vErr apperrors.ValidationError
		switch {
		case errors.As(err, &vErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
		case errors.Is(err, apperrors.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			h.log.Error().Err(err).Msg("Registration failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "registered"})
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		h.log.Error().Err(err).Msg("Login failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UploadGradebook ingests one gradebook file for the authenticated teacher.
func (h *Handler) UploadGradebook(c *gin.Context) {
	claims := claimsFrom(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
		return
	}
	if h.cfg.Server.MaxUploadBytes > 0 && fileHeader.Size > h.cfg.Server.MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}

	req := model.UploadRequest{
		CourseCode:  c.PostForm("course_code"),
		CourseName:  c.PostForm("course_name"),
		Description: c.PostForm("description"),
	}

	resp, err := h.ingestion.ProcessGradebook(c.Request.Context(), fileHeader.Filename, data, req, claims.UserID)
	if err != nil {
		h.log.Error().Err(err).Str("course_code", req.CourseCode).Msg("Ingestion error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process gradebook"})
		return
	}

	status := http.StatusOK
	if !resp.Success {
		status = http.StatusBadRequest
	}
	c.JSON(status, resp)
}

func (h *Handler) CreateCourse(c *gin.Context) {
	claims := claimsFrom(c)

	var req model.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.CourseCode == "" || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "course_code and name are required"})
		return
	}

	course := &model.Course{
		Code:        req.CourseCode,
		Name:        req.Name,
		Description: req.Description,
		TeacherID:   claims.UserID,
	}
	if err := h.store.CreateCourse(c.Request.Context(), course); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateCourse) {
			c.JSON(http.StatusConflict, gin.H{"error": "course code already exists"})
			return
		}
		h.log.Error().Err(err).Msg("Course creation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, course)
}

func (h *Handler) TeacherCourses(c *gin.Context) {
	claims := claimsFrom(c)

	courses, err := h.statistics.TeacherCourses(c.Request.Context(), claims.UserID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list courses")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, courses)
}

func (h *Handler) CourseDetails(c *gin.Context) {
	course, ok := h.ownedCourse(c)
	if !ok {
		return
	}

	details, err := h.statistics.CourseDetails(c.Request.Context(), course.ID)
	if err != nil {
		h.log.Error().Err(err).Str("course_id", course.ID).Msg("Failed to load course")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *Handler) CourseStatistics(c *gin.Context) {
	course, ok := h.ownedCourse(c)
	if !ok {
		return
	}

	result, err := h.statistics.CourseStatistics(c.Request.Context(), course.ID)
	if err != nil {
		h.log.Error().Err(err).Str("course_id", course.ID).Msg("Failed to compute statistics")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) DeactivateCourse(c *gin.Context) {
	course, ok := h.ownedCourse(c)
	if !ok {
		return
	}

	if err := h.store.DeactivateCourse(c.Request.Context(), course.ID); err != nil {
		h.log.Error().Err(err).Str("course_id", course.ID).Msg("Failed to deactivate course")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "course deactivated"})
}

func (h *Handler) StudentCourses(c *gin.Context) {
	claims := claimsFrom(c)

	result, err := h.statistics.StudentCourses(c.Request.Context(), claims.UserID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list student courses")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) StudentGrades(c *gin.Context) {
	claims := claimsFrom(c)
	courseID := c.Param("course_id")

	result, err := h.statistics.StudentGrades(c.Request.Context(), claims.UserID, courseID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrCourseNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
		case errors.Is(err, apperrors.ErrNotEnrolled):
			c.JSON(http.StatusForbidden, gin.H{"error": "not enrolled in this course"})
		default:
			h.log.Error().Err(err).Str("course_id", courseID).Msg("Failed to load grades")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.cfg.App.Name,
		"version": h.cfg.App.Version,
	})
}

// ownedCourse loads the course in the path and checks the authenticated
// teacher owns it.
func (h *Handler) ownedCourse(c *gin.Context) (*model.Course, bool) {
	claims := claimsFrom(c)
	courseID := c.Param("course_id")

	course, err := h.store.GetCourse(c.Request.Context(), courseID)
	if err != nil {
		if errors.Is(err, apperrors.ErrCourseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
		} else {
			h.log.Error().Err(err).Str("course_id", courseID).Msg("Failed to load course")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return nil, false
	}

	if course.TeacherID != claims.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "course belongs to another teacher"})
		return nil, false
	}
	return course, true
}
