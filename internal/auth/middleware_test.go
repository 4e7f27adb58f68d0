package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/shop-service/internal/domain"
	apperrors "github.com/spec-kit/shop-service/pkg/util/errorutil"
)

type fakeUsers struct {
	users map[string]*domain.User
	err   error
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func newTestApp(mw *AuthMiddleware, extra ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"success": false, "message": de.Message})
		},
	})
	handlers := append([]fiber.Handler{mw.Handle}, extra...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		user, ok := UserFromContext(c)
		if !ok {
			return errors.New("no user in context")
		}
		return c.JSON(fiber.Map{"id": user.ID, "hash": user.PasswordHash})
	})
	app.Get("/protected", handlers...)
	return app
}

func doRequest(t *testing.T, app *fiber.App, header string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &body))
	return resp.StatusCode, body
}

func TestAuthMiddleware(t *testing.T) {
	tokens := NewTokenManager("mw-secret", 15)
	users := &fakeUsers{users: map[string]*domain.User{
		"active":   {ID: "active", Role: domain.RoleUser, Active: true},
		"disabled": {ID: "disabled", Role: domain.RoleUser, Active: false},
	}}
	app := newTestApp(NewAuthMiddleware(tokens, users))

	activeToken, _, err := tokens.GenerateToken("active")
	require.NoError(t, err)
	disabledToken, _, err := tokens.GenerateToken("disabled")
	require.NoError(t, err)
	ghostToken, _, err := tokens.GenerateToken("ghost")
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		status  int
		message string
	}{
		{name: "missing header", header: "", status: http.StatusUnauthorized, message: "no token"},
		{name: "wrong scheme", header: "Basic abc", status: http.StatusUnauthorized, message: "no token"},
		{name: "garbage token", header: "Bearer not-a-jwt", status: http.StatusUnauthorized, message: "invalid token"},
		{name: "unknown user", header: "Bearer " + ghostToken, status: http.StatusUnauthorized, message: "user not found"},
		{name: "inactive user", header: "Bearer " + disabledToken, status: http.StatusUnauthorized, message: "inactive"},
		{name: "ok", header: "Bearer " + activeToken, status: http.StatusOK},
		{name: "case insensitive scheme", header: "bearer " + activeToken, status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doRequest(t, app, tt.header)
			assert.Equal(t, tt.status, status)
			if tt.message != "" {
				assert.Equal(t, tt.message, body["message"])
				assert.Equal(t, false, body["success"])
			} else {
				assert.Equal(t, "active", body["id"])
			}
		})
	}
}

func TestAuthMiddleware_RejectsDeactivatedUserWithLiveToken(t *testing.T) {
	tokens := NewTokenManager("mw-secret", 15)
	users := &fakeUsers{users: map[string]*domain.User{
		"u1": {ID: "u1", Role: domain.RoleUser, Active: true},
	}}
	app := newTestApp(NewAuthMiddleware(tokens, users))

	token, _, err := tokens.GenerateToken("u1")
	require.NoError(t, err)

	status, _ := doRequest(t, app, "Bearer "+token)
	require.Equal(t, http.StatusOK, status)

	users.users["u1"].Active = false

	status, body := doRequest(t, app, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "inactive", body["message"])
}

func TestAuthMiddleware_StoreFailureIsInternal(t *testing.T) {
	tokens := NewTokenManager("mw-secret", 15)
	app := newTestApp(NewAuthMiddleware(tokens, &fakeUsers{err: errors.New("db down")}))

	token, _, err := tokens.GenerateToken("u1")
	require.NoError(t, err)

	status, body := doRequest(t, app, "Bearer "+token)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal server error", body["message"])
}

func TestRequireRole(t *testing.T) {
	tokens := NewTokenManager("mw-secret", 15)
	users := &fakeUsers{users: map[string]*domain.User{
		"admin":    {ID: "admin", Role: domain.RoleAdmin, Active: true},
		"customer": {ID: "customer", Role: domain.RoleUser, Active: true},
	}}
	app := newTestApp(NewAuthMiddleware(tokens, users), RequireAdmin())

	adminToken, _, err := tokens.GenerateToken("admin")
	require.NoError(t, err)
	customerToken, _, err := tokens.GenerateToken("customer")
	require.NoError(t, err)

	status, _ := doRequest(t, app, "Bearer "+adminToken)
	assert.Equal(t, http.StatusOK, status)

	status, body := doRequest(t, app, "Bearer "+customerToken)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "insufficient role", body["message"])
}

func TestRequireRole_WithoutGate(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
		},
	})
	app.Get("/admin", RequireAdmin(), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
