package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/accounts-api/internal/api/middleware"
	"github.com/99minutos/accounts-api/internal/api/validate"
	"github.com/99minutos/accounts-api/internal/core/domain"
	"github.com/99minutos/accounts-api/internal/core/ports"
)

type stubUserService struct {
	createFn  func(ctx context.Context, caller domain.Principal, in ports.CreateUserInput) (*domain.User, error)
	listFn    func(ctx context.Context) ([]*domain.User, error)
	getFn     func(ctx context.Context, id string) (*domain.User, error)
	updateFn  func(ctx context.Context, caller domain.Principal, id string, in ports.UpdateUserInput) (*domain.User, error)
	deleteFn  func(ctx context.Context, id string) error
	restoreFn func(ctx context.Context, id string) (*domain.User, error)
}

func (s *stubUserService) Create(ctx context.Context, caller domain.Principal, in ports.CreateUserInput) (*domain.User, error) {
	return s.createFn(ctx, caller, in)
}

func (s *stubUserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.listFn(ctx)
}

func (s *stubUserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.getFn(ctx, id)
}

func (s *stubUserService) Update(ctx context.Context, caller domain.Principal, id string, in ports.UpdateUserInput) (*domain.User, error) {
	return s.updateFn(ctx, caller, id, in)
}

func (s *stubUserService) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func (s *stubUserService) Restore(ctx context.Context, id string) (*domain.User, error) {
	return s.restoreFn(ctx, id)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validate.New()
	return e
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func sampleUser(id string) *domain.User {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return &domain.User{
		ID:           id,
		Username:     "alice",
		Name:         "Alice",
		PasswordHash: "$2a$10$secret",
		Role:         domain.RoleUser,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

func TestUserHandler_Create_Success(t *testing.T) {
	e := newEcho()
	stub := &stubUserService{
		createFn: func(ctx context.Context, caller domain.Principal, in ports.CreateUserInput) (*domain.User, error) {
			if !caller.Anonymous() {
				t.Fatalf("expected anonymous caller, got %+v", caller)
			}
			if in.Username != "alice" || in.Name != "Alice" || in.Password != "secret1" || in.Role != nil {
				t.Fatalf("unexpected input: %+v", in)
			}
			return sampleUser("u-1"), nil
		},
	}
	h := NewUserHandler(stub)

	req := jsonRequest(http.MethodPost, "/users", `{"username":" alice ","password":"secret1","name":"Alice "}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	middleware.WithPrincipal(c, domain.Principal{})

	if err := middleware.Validate[CreateUserRequest]()(h.Create)(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	resp := decodeBody(t, rec)
	if resp["id"] != "u-1" || resp["username"] != "alice" || resp["role_id"] != float64(1) {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if _, leaked := resp["password_hash"]; leaked {
		t.Fatal("password hash leaked")
	}
	if strings.Contains(rec.Body.String(), "secret") {
		t.Fatalf("response contains secret material: %s", rec.Body.String())
	}
}

func TestUserHandler_Create_PassesRole(t *testing.T) {
	e := newEcho()
	stub := &stubUserService{
		createFn: func(ctx context.Context, caller domain.Principal, in ports.CreateUserInput) (*domain.User, error) {
			if in.Role == nil || *in.Role != domain.RolePrivileged {
				t.Fatalf("expected privileged role, got %v", in.Role)
			}
			return nil, domain.ErrForbidden
		},
	}
	h := NewUserHandler(stub)

	req := jsonRequest(http.MethodPost, "/users", `{"username":"a","password":"secret1","name":"A","role_id":2}`)
	c := e.NewContext(req, httptest.NewRecorder())
	middleware.WithPrincipal(c, domain.Principal{})

	err := middleware.Validate[CreateUserRequest]()(h.Create)(c)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestUserHandler_Create_ValidationStopsBeforeService(t *testing.T) {
	e := newEcho()
	h := NewUserHandler(&stubUserService{
		createFn: func(context.Context, domain.Principal, ports.CreateUserInput) (*domain.User, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	})

	req := jsonRequest(http.MethodPost, "/users", `{"username":"a","password":"123","name":"A"}`)
	c := e.NewContext(req, httptest.NewRecorder())

	err := middleware.Validate[CreateUserRequest]()(h.Create)(c)
	var fe validate.FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	if len(fe) != 1 || fe[0].Message != "password needs to be at least 6 characters long" {
		t.Fatalf("unexpected errors: %+v", fe)
	}
}

func TestUserHandler_Create_WithoutPrincipal(t *testing.T) {
	e := newEcho()
	h := NewUserHandler(&stubUserService{})

	req := jsonRequest(http.MethodPost, "/users", `{"username":"a","password":"secret1","name":"A"}`)
	c := e.NewContext(req, httptest.NewRecorder())

	err := middleware.Validate[CreateUserRequest]()(h.Create)(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestUserHandler_List(t *testing.T) {
	e := newEcho()
	h := NewUserHandler(&stubUserService{
		listFn: func(context.Context) ([]*domain.User, error) {
			return []*domain.User{sampleUser("u-1"), sampleUser("u-2")}, nil
		},
	})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/users", nil), rec)

	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp) != 2 || resp[0]["id"] != "u-1" || resp[1]["id"] != "u-2" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if strings.Contains(rec.Body.String(), "secret") {
		t.Fatal("password hash leaked")
	}
}

func TestUserHandler_List_EmptyIsArray(t *testing.T) {
	e := newEcho()
	h := NewUserHandler(&stubUserService{
		listFn: func(context.Context) ([]*domain.User, error) { return nil, nil },
	})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/users", nil), rec)

	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Fatalf("expected [], got %s", got)
	}
}

func TestUserHandler_Get_NotFound(t *testing.T) {
	e := newEcho()
	h := NewUserHandler(&stubUserService{
		getFn: func(_ context.Context, id string) (*domain.User, error) {
			if id != "missing" {
				t.Fatalf("unexpected id %q", id)
			}
			return nil, domain.ErrUserNotFound
		},
	})

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/users/missing", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("missing")

	if err := h.Get(c); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserHandler_Update(t *testing.T) {
	e := newEcho()
	caller := domain.Principal{ID: "u-1", Role: domain.RoleUser}
	h := NewUserHandler(&stubUserService{
		updateFn: func(_ context.Context, p domain.Principal, id string, in ports.UpdateUserInput) (*domain.User, error) {
			if p != caller || id != "u-1" {
				t.Fatalf("unexpected caller/id: %+v %s", p, id)
			}
			if in.Name == nil || *in.Name != "Alicia" || in.Password != nil || in.Role != nil {
				t.Fatalf("unexpected input: %+v", in)
			}
			u := sampleUser(id)
			u.Name = *in.Name
			return u, nil
		},
	})

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPatch, "/users/u-1", `{"name":"  Alicia "}`), rec)
	c.SetParamNames("id")
	c.SetParamValues("u-1")
	middleware.WithPrincipal(c, caller)

	if err := middleware.Validate[UpdateUserRequest]()(h.Update)(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if resp := decodeBody(t, rec); resp["name"] != "Alicia" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestUserHandler_Delete(t *testing.T) {
	e := newEcho()
	h := NewUserHandler(&stubUserService{
		deleteFn: func(_ context.Context, id string) error {
			if id != "u-2" {
				t.Fatalf("unexpected id %q", id)
			}
			return nil
		},
	})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/users/u-2", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("u-2")

	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 {
		t.Fatalf("expected empty 204, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestUserHandler_Restore(t *testing.T) {
	e := newEcho()
	h := NewUserHandler(&stubUserService{
		restoreFn: func(_ context.Context, id string) (*domain.User, error) {
			return sampleUser(id), nil
		},
	})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/users/u-3/restore", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("u-3")

	if err := h.Restore(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decodeBody(t, rec)
	if resp["id"] != "u-3" || resp["archived_at"] != nil {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}
