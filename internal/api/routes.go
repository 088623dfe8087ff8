package api

import (
	"github.com/gin-gonic/gin"

	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/auth"
	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/model"
)

func SetupRoutes(router *gin.Engine, handler *Handler, authService *auth.Service) {
	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", handler.Register)
			authGroup.POST("/login", handler.Login)
		}

		teacher := v1.Group("/teacher", AuthMiddleware(authService, model.RoleTeacher))
		{
			teacher.POST("/courses", handler.CreateCourse)
			teacher.POST("/courses/upload", handler.UploadGradebook)
			teacher.GET("/courses", handler.TeacherCourses)
			teacher.GET("/courses/:course_id", handler.CourseDetails)
			teacher.GET("/courses/:course_id/statistics", handler.CourseStatistics)
			teacher.DELETE("/courses/:course_id", handler.DeactivateCourse)
		}

		student := v1.Group("/student", AuthMiddleware(authService, model.RoleStudent))
		{
			student.GET("/courses", handler.StudentCourses)
			student.GET("/courses/:course_id/grades", handler.StudentGrades)
		}
	}
}
