package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/meeting-whisperer/internal/domain/entities"
	"github.com/johnquangdev/meeting-whisperer/pkg/jwt"
)

type userMap map[uuid.UUID]*entities.User

func (u userMap) FindByID(_ context.Context, id uuid.UUID) (*entities.User, error) {
	if user, ok := u[id]; ok {
		return user, nil
	}
	return nil, entities.ErrUserNotFound
}

func runAuth(t *testing.T, users userMap, header string) (int, uuid.UUID) {
	t.Helper()
	e := echo.New()
	tokens := jwt.NewManager("secret", time.Minute, "test")

	var seen uuid.UUID
	handler := EchoAuth(tokens, users, nil)(func(c echo.Context) error {
		seen, _ = c.Get(UserIDKey).(uuid.UUID)
		return c.NoContent(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler(c)
	if err != nil {
		he, ok := err.(*echo.HTTPError)
		if !ok {
			t.Fatalf("unexpected error %v", err)
		}
		return he.Code, seen
	}
	return rec.Code, seen
}

func TestEchoAuth(t *testing.T) {
	tokens := jwt.NewManager("secret", time.Minute, "test")
	active := entities.NewUser("bob@x.test", "Bob")
	inactive := entities.NewUser("old@x.test", "Old")
	inactive.IsActive = false
	users := userMap{active.ID: active, inactive.ID: inactive}

	activeToken, _ := tokens.GenerateAccessToken(active.ID, active.Email, string(active.Role))
	inactiveToken, _ := tokens.GenerateAccessToken(inactive.ID, inactive.Email, string(inactive.Role))
	unknownToken, _ := tokens.GenerateAccessToken(uuid.New(), "x@x.test", "member")

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"malformed", "Token abc", http.StatusUnauthorized},
		{"garbage", "Bearer abc", http.StatusUnauthorized},
		{"unknown user", "Bearer " + unknownToken, http.StatusUnauthorized},
		{"inactive user", "Bearer " + inactiveToken, http.StatusForbidden},
		{"ok", "Bearer " + activeToken, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, seen := runAuth(t, users, tt.header)
			if code != tt.want {
				t.Fatalf("got %d, want %d", code, tt.want)
			}
			if tt.want == http.StatusNoContent && seen != active.ID {
				t.Fatalf("user_id not set, got %s", seen)
			}
		})
	}
}

func TestEchoAuth_ExpiredMessage(t *testing.T) {
	user := entities.NewUser("bob@x.test", "Bob")
	expired, _ := jwt.NewManager("secret", -time.Hour, "test").GenerateAccessToken(user.ID, user.Email, string(user.Role))

	handler := EchoAuth(jwt.NewManager("secret", time.Minute, "test"), userMap{user.ID: user}, nil)(func(c echo.Context) error {
		t.Fatal("handler must not run")
		return nil
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	err := handler(echo.New().NewContext(req, httptest.NewRecorder()))

	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized || he.Message != "Token expired" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestRequireRole(t *testing.T) {
	admin := entities.NewUser("root@x.test", "Root")
	admin.Role = entities.RoleAdmin
	member := entities.NewUser("bob@x.test", "Bob")

	mw := RequireRole(entities.RoleAdmin)(func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	for _, tt := range []struct {
		name string
		user *entities.User
		want int
	}{
		{"admin", admin, http.StatusNoContent},
		{"member", member, http.StatusForbidden},
		{"anonymous", nil, http.StatusUnauthorized},
	} {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
			if tt.user != nil {
				c.Set(UserKey, tt.user)
			}
			var code int
			if err := mw(c); err != nil {
				code = err.(*echo.HTTPError).Code
			} else {
				code = rec.Code
			}
			if code != tt.want {
				t.Fatalf("got %d, want %d", code, tt.want)
			}
		})
	}
}

func TestExtractToken_Cookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: "from-cookie"})
	if got := ExtractToken(req); got != "from-cookie" {
		t.Fatalf("got %q", got)
	}
}
