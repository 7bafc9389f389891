package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/omar-arnous/acquisitions/internal/core/domain"
)

func withPrincipal(req *http.Request, p domain.Principal) *http.Request {
	return req.WithContext(domain.WithPrincipal(req.Context(), p))
}

func TestUserHandler_List(t *testing.T) {
	e := newTestEcho()
	admin := domain.Principal{ID: "1", Email: "root@example.com", Role: domain.RoleAdmin}
	stub := &stubAccountService{
		listFn: func(ctx context.Context, p domain.Principal) ([]*domain.User, error) {
			if p != admin {
				t.Fatalf("unexpected principal: %+v", p)
			}
			return []*domain.User{
				{ID: "1", Name: "Root", Email: "root@example.com", Role: domain.RoleAdmin},
				{ID: "2", Name: "Ann", Email: "ann@example.com", Role: domain.RoleUser},
			}, nil
		},
	}
	handler := NewUserHandler(stub, testCookie)

	rec := httptest.NewRecorder()
	c := e.NewContext(withPrincipal(httptest.NewRequest(http.MethodGet, "/api/users", nil), admin), rec)

	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Message string           `json:"message"`
		Users   []map[string]any `json:"users"`
		Count   int              `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Count != 2 || len(resp.Users) != 2 || resp.Users[1]["email"] != "ann@example.com" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestUserHandler_RequiresPrincipal(t *testing.T) {
	e := newTestEcho()
	handler := NewUserHandler(&stubAccountService{}, testCookie)

	routes := map[string]func(echo.Context) error{
		"list":   handler.List,
		"get":    handler.Get,
		"update": handler.Update,
		"delete": handler.Delete,
	}
	for name, fn := range routes {
		c := e.NewContext(jsonRequest(http.MethodPut, "/api/users/1", `{"name":"x"}`), httptest.NewRecorder())
		c.SetParamNames("id")
		c.SetParamValues("1")
		if err := fn(c); !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("%s: expected unauthorized, got %v", name, err)
		}
	}
}

func TestUserHandler_Get(t *testing.T) {
	e := newTestEcho()
	caller := domain.Principal{ID: "1", Role: domain.RoleUser}
	stub := &stubAccountService{
		getFn: func(ctx context.Context, p domain.Principal, id string) (*domain.User, error) {
			if id == "404" {
				return nil, domain.ErrUserNotFound
			}
			return &domain.User{ID: id, Name: "Ann", Email: "ann@example.com", Role: domain.RoleUser}, nil
		},
	}
	handler := NewUserHandler(stub, testCookie)

	rec := httptest.NewRecorder()
	c := e.NewContext(withPrincipal(httptest.NewRequest(http.MethodGet, "/", nil), caller), rec)
	c.SetParamNames("id")
	c.SetParamValues("2")

	if err := handler.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if user, ok := resp["user"].(map[string]any); !ok || user["id"] != "2" {
		t.Fatalf("unexpected payload: %+v", resp)
	}

	c = e.NewContext(withPrincipal(httptest.NewRequest(http.MethodGet, "/", nil), caller), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("404")
	if err := handler.Get(c); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUserHandler_Update_PartialBody(t *testing.T) {
	e := newTestEcho()
	caller := domain.Principal{ID: "1", Role: domain.RoleUser}
	stub := &stubAccountService{
		updateFn: func(ctx context.Context, p domain.Principal, id string, in domain.UpdateUserInput) (*domain.User, error) {
			if id != "1" || p != caller {
				t.Fatalf("unexpected target %s for %+v", id, p)
			}
			if in.Name == nil || *in.Name != "New Name" {
				t.Fatalf("expected name in input, got %+v", in)
			}
			if in.Email != nil || in.Password != nil || in.Role != nil {
				t.Fatalf("absent fields must stay nil: %+v", in)
			}
			return &domain.User{ID: id, Name: *in.Name, Role: domain.RoleUser}, nil
		},
	}
	handler := NewUserHandler(stub, testCookie)

	rec := httptest.NewRecorder()
	c := e.NewContext(withPrincipal(jsonRequest(http.MethodPut, "/", `{"name":"New Name"}`), caller), rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := handler.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUserHandler_Update_RoleAndErrors(t *testing.T) {
	e := newTestEcho()
	caller := domain.Principal{ID: "1", Role: domain.RoleUser}
	stub := &stubAccountService{
		updateFn: func(ctx context.Context, p domain.Principal, id string, in domain.UpdateUserInput) (*domain.User, error) {
			if in.Role == nil || *in.Role != domain.RoleAdmin {
				t.Fatalf("expected role in input, got %+v", in)
			}
			return nil, domain.NewError(domain.KindForbidden, "only administrators can change roles")
		},
	}
	handler := NewUserHandler(stub, testCookie)

	c := e.NewContext(withPrincipal(jsonRequest(http.MethodPut, "/", `{"role":"admin"}`), caller), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("1")
	if err := handler.Update(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	c = e.NewContext(withPrincipal(jsonRequest(http.MethodPut, "/", `{"email":"nope"}`), caller), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("1")
	if err := handler.Update(c); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}

	body := `{"password":"` + strings.Repeat("a", 73) + `"}`
	c = e.NewContext(withPrincipal(jsonRequest(http.MethodPut, "/", body), caller), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("1")
	if err := handler.Update(c); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for long password, got %v", err)
	}
}

func TestUserHandler_Delete_SelfClearsCookie(t *testing.T) {
	e := newTestEcho()
	caller := domain.Principal{ID: "2", Role: domain.RoleUser}
	stub := &stubAccountService{
		deleteFn: func(ctx context.Context, p domain.Principal, id string) (*domain.User, error) {
			return &domain.User{ID: id, Email: "ann@example.com", Role: domain.RoleUser}, nil
		},
	}
	handler := NewUserHandler(stub, testCookie)

	rec := httptest.NewRecorder()
	c := e.NewContext(withPrincipal(httptest.NewRequest(http.MethodDelete, "/", nil), caller), rec)
	c.SetParamNames("id")
	c.SetParamValues("2")

	if err := handler.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if cookie := findCookie(rec, "token"); cookie == nil || cookie.MaxAge >= 0 {
		t.Fatalf("expected cleared cookie, got %+v", cookie)
	}
}

func TestUserHandler_Delete_AdminSelfForbidden(t *testing.T) {
	e := newTestEcho()
	admin := domain.Principal{ID: "1", Role: domain.RoleAdmin}
	stub := &stubAccountService{
		deleteFn: func(ctx context.Context, p domain.Principal, id string) (*domain.User, error) {
			return nil, domain.NewError(domain.KindForbidden, "administrators cannot delete their own account")
		},
	}
	handler := NewUserHandler(stub, testCookie)

	rec := httptest.NewRecorder()
	c := e.NewContext(withPrincipal(httptest.NewRequest(http.MethodDelete, "/", nil), admin), rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := handler.Delete(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if findCookie(rec, "token") != nil {
		t.Fatalf("cookie must stay untouched on failure")
	}
}
