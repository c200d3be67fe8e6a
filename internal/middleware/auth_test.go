package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anoa.com/bragboard/internal/entity"
	"anoa.com/bragboard/internal/middleware"
	userRepo "anoa.com/bragboard/internal/modules/user/repository"
	"anoa.com/bragboard/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, secret, subject string, ttl time.Duration) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func newRouter(t *testing.T) (*gin.Engine, *entity.User, *entity.User) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	employee := testutil.CreateUser(t, db, "Dewi", "Finance")
	admin := testutil.CreateAdmin(t, db, "Root")

	auth := middleware.NewAuthMiddleware(userRepo.NewUserRepository(db), "secret")

	r := gin.New()
	api := r.Group("/api", auth.RequireAuth())
	api.GET("/whoami", func(c *gin.Context) {
		actor, err := middleware.ActorFrom(c)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": actor.UserID, "role": actor.Role})
	})
	api.GET("/admin", auth.RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/ws", auth.RequireAuthWS(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	return r, employee, admin
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	r, employee, _ := newRouter(t)

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"garbage", "not-a-jwt", http.StatusUnauthorized},
		{"wrong secret", sign(t, "other", employee.ID.String(), time.Hour), http.StatusUnauthorized},
		{"expired", sign(t, "secret", employee.ID.String(), -time.Minute), http.StatusUnauthorized},
		{"unknown user", sign(t, "secret", uuid.NewString(), time.Hour), http.StatusUnauthorized},
		{"valid", sign(t, "secret", employee.ID.String(), time.Hour), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, "/api/whoami", tt.token)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRequireAuthIgnoresQueryToken(t *testing.T) {
	r, employee, _ := newRouter(t)

	w := do(r, "/api/whoami?token="+sign(t, "secret", employee.ID.String(), time.Hour), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthWSAcceptsQueryToken(t *testing.T) {
	r, employee, _ := newRouter(t)
	token := sign(t, "secret", employee.ID.String(), time.Hour)

	assert.Equal(t, http.StatusNoContent, do(r, "/ws?token="+token, "").Code)
	assert.Equal(t, http.StatusNoContent, do(r, "/ws", token).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/ws?token=not-a-jwt", "").Code)
}

func TestRequireAdmin(t *testing.T) {
	r, employee, admin := newRouter(t)

	assert.Equal(t, http.StatusForbidden, do(r, "/api/admin", sign(t, "secret", employee.ID.String(), time.Hour)).Code)
	assert.Equal(t, http.StatusNoContent, do(r, "/api/admin", sign(t, "secret", admin.ID.String(), time.Hour)).Code)
}
