package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/config"
	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/db"
	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/model"
	apperrors "github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/pkg/errors"
)

type Claims struct {
	UserID string     `json:"user_id"`
	Name   string     `json:"name"`
	Role   model.Role `json:"role"`
	jwt.RegisteredClaims
}

type Service struct {
	store       db.Store
	secret      []byte
	tokenExpiry time.Duration
}

func NewService(store db.Store, cfg *config.Config) *Service {
	expiry := cfg.Auth.TokenExpiry
	if expiry == 0 {
		expiry = 24 * time.Hour
	}
	return &Service{
		store:       store,
		secret:      []byte(cfg.Auth.JWTSecret),
		tokenExpiry: expiry,
	}
}

func (s *Service) Register(ctx context.Context, req model.RegisterRequest) error {
	if req.Role != model.RoleTeacher && req.Role != model.RoleStudent {
		return apperrors.ValidationError{Field: "role", Value: req.Role, Message: "must be TEACHER or STUDENT"}
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return apperrors.ValidationError{Field: "email", Value: req.Email, Message: "email and password are required"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	switch req.Role {
	case model.RoleTeacher:
		if _, err := s.store.GetTeacherByEmail(ctx, email); err == nil {
			return apperrors.ErrEmailTaken
		} else if !errors.Is(err, apperrors.ErrTeacherNotFound) {
			return err
		}
		return s.store.CreateTeacher(ctx, &model.Teacher{
			Name:         req.Name,
			Email:        email,
			PasswordHash: string(hash),
		})
	default:
		if _, err := s.store.GetStudentByEmail(ctx, email); err == nil {
			return apperrors.ErrEmailTaken
		} else if !errors.Is(err, apperrors.ErrStudentNotFound) {
			return err
		}
		return s.store.CreateStudent(ctx, &model.Student{
			Name:         req.Name,
			Email:        email,
			PasswordHash: string(hash),
			IsActive:     true,
		})
	}
}

func (s *Service) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var (
		id, name, hash string
		role           model.Role
	)

	if teacher, err := s.store.GetTeacherByEmail(ctx, email); err == nil {
		id, name, hash, role = teacher.ID, teacher.Name, teacher.PasswordHash, model.RoleTeacher
	} else if !errors.Is(err, apperrors.ErrTeacherNotFound) {
		return nil, err
	} else if student, err := s.store.GetStudentByEmail(ctx, email); err == nil {
		id, name, hash, role = student.ID, student.Name, student.PasswordHash, model.RoleStudent
	} else if !errors.Is(err, apperrors.ErrStudentNotFound) {
		return nil, err
	} else {
		return nil, apperrors.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.issueToken(id, name, role)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Token:     token,
		Role:      role,
		Name:      name,
		ExpiresIn: int(s.tokenExpiry.Seconds()),
	}, nil
}

func (s *Service) issueToken(userID, name string, role model.Role) (string, error) {
	claims := Claims{
		UserID: userID,
		Name:   name,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.tokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "gradebook-service",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// VerifyToken parses and validates a bearer token, rejecting any token not
// signed with HMAC.
func (s *Service) VerifyToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
