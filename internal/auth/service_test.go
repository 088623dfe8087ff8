package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/config"
	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/db"
	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/model"
	apperrors "github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/pkg/errors"
)

func newTestService() (*Service, *db.MemoryStore) {
	store := db.NewMemoryStore()
	cfg := &config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.TokenExpiry = time.Hour
	return NewService(store, cfg), store
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	err := svc.Register(ctx, model.RegisterRequest{
		Name:     "Prof. Vega",
		Email:    "Vega@Example.com",
		Password: "s3cret",
		Role:     model.RoleTeacher,
	})
	if err != nil {
		t.Fatal(err)
	}

	// Login is case-insensitive on email.
	resp, err := svc.Login(ctx, model.LoginRequest{Email: "vega@example.com", Password: "s3cret"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Role != model.RoleTeacher {
		t.Fatalf("role = %s, want TEACHER", resp.Role)
	}
	if resp.ExpiresIn != 3600 {
		t.Fatalf("expires_in = %d, want 3600", resp.ExpiresIn)
	}

	claims, err := svc.VerifyToken(resp.Token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Role != model.RoleTeacher || claims.Name != "Prof. Vega" {
		t.Fatalf("claims = %+v", claims)
	}
	if claims.UserID == "" {
		t.Fatal("claims missing user ID")
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	var valErr apperrors.ValidationError

	err := svc.Register(ctx, model.RegisterRequest{Email: "x@y.com", Password: "p", Role: "ADMIN"})
	if !errors.As(err, &valErr) {
		t.Fatalf("unknown role: err = %v, want validation error", err)
	}

	err = svc.Register(ctx, model.RegisterRequest{Password: "p", Role: model.RoleStudent})
	if !errors.As(err, &valErr) {
		t.Fatalf("missing email: err = %v, want validation error", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	req := model.RegisterRequest{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "pw",
		Role:     model.RoleStudent,
	}
	if err := svc.Register(ctx, req); err != nil {
		t.Fatal(err)
	}
	if err := svc.Register(ctx, req); !errors.Is(err, apperrors.ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if err := svc.Register(ctx, model.RegisterRequest{
		Name: "Ana", Email: "ana@example.com", Password: "right", Role: model.RoleStudent,
	}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		req  model.LoginRequest
	}{
		{"wrong password", model.LoginRequest{Email: "ana@example.com", Password: "wrong"}},
		{"unknown email", model.LoginRequest{Email: "ghost@example.com", Password: "right"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Login(ctx, tt.req); !errors.Is(err, apperrors.ErrInvalidCredentials) {
				t.Fatalf("err = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestVerifyTokenRejectsForeignSignature(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if err := svc.Register(ctx, model.RegisterRequest{
		Name: "Ana", Email: "ana@example.com", Password: "pw", Role: model.RoleStudent,
	}); err != nil {
		t.Fatal(err)
	}
	resp, err := svc.Login(ctx, model.LoginRequest{Email: "ana@example.com", Password: "pw"})
	if err != nil {
		t.Fatal(err)
	}

	otherCfg := &config.Config{}
	otherCfg.Auth.JWTSecret = "different-secret"
	other := NewService(db.NewMemoryStore(), otherCfg)

	if _, err := other.VerifyToken(resp.Token); err == nil {
		t.Fatal("token signed with another secret must be rejected")
	}
	if _, err := svc.VerifyToken("not.a.token"); err == nil {
		t.Fatal("malformed token must be rejected")
	}
}
