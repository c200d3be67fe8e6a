package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anoa.com/bragboard/internal/config"
	leaderboardDto "anoa.com/bragboard/internal/modules/leaderboard/dto"
	shoutoutDto "anoa.com/bragboard/internal/modules/shoutout/dto"
	userDto "anoa.com/bragboard/internal/modules/user/dto"
	"anoa.com/bragboard/internal/server"
	"anoa.com/bragboard/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:                "test",
		AllowedOrigins:        "http://localhost:3000",
		JWTSecret:             "test-secret",
		JWTTTL:                time.Hour,
		FeedTimezone:          time.UTC,
		CommentMaxLength:      3000,
		Weights:               config.Weights{ShoutoutSent: 5, ReactionReceived: 2, CommentReceived: 2, ReactionGiven: 1},
		NotificationRetention: 24 * time.Hour,
		JobTimeout:            time.Minute,
	}
}

type client struct {
	t      *testing.T
	router http.Handler
}

func (c client) do(method, path, token string, body any) *httptest.ResponseRecorder {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	return w
}

func (c client) register(name, department string) userDto.AuthResponse {
	c.t.Helper()

	w := c.do(http.MethodPost, "/api/auth/register", "", userDto.RegisterInput{
		Name:       name,
		Email:      name + "@example.com",
		Password:   "password123",
		Department: department,
	})
	require.Equal(c.t, http.StatusCreated, w.Code, w.Body.String())

	var resp userDto.AuthResponse
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func newClient(t *testing.T) client {
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)

	srv, err := server.NewServer(testConfig(), server.Deps{DB: db}, zap.NewNop())
	require.NoError(t, err)
	return client{t: t, router: srv.Handler()}
}

func TestHealthAndMetrics(t *testing.T) {
	c := newClient(t)

	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/health", "", nil).Code)

	w := c.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	c := newClient(t)

	for _, path := range []string{"/api/posts", "/api/leaderboard/global", "/api/notifications", "/api/admin/stats"} {
		assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, path, "", nil).Code, path)
	}
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/api/posts", "garbage", nil).Code)
}

func TestRecognitionFlow(t *testing.T) {
	c := newClient(t)

	ana := c.register("ana", "Engineering")
	budi := c.register("budi", "Engineering")

	w := c.do(http.MethodPost, "/api/posts", ana.AccessToken, shoutoutDto.CreateShoutoutRequest{
		RecipientIDs: []uuid.UUID{budi.User.ID},
		Message:      "Thanks for the release!",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Data shoutoutDto.ShoutoutResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = c.do(http.MethodPost, "/api/posts/"+created.Data.ID.String()+"/react?type=clap", budi.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = c.do(http.MethodGet, "/api/leaderboard/global", budi.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var board struct {
		Data leaderboardDto.LeaderboardResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &board))
	require.Len(t, board.Data.Entries, 2)
	assert.Equal(t, ana.User.ID, board.Data.Entries[0].User.ID)
	assert.Equal(t, 5, board.Data.Entries[0].Score)
	assert.Equal(t, budi.User.ID, board.Data.Entries[1].User.ID)
	assert.Equal(t, 1, board.Data.Entries[1].Score)

	w = c.do(http.MethodGet, "/api/notifications/unread-count", budi.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":1}`, w.Body.String())

	assert.Equal(t, http.StatusForbidden, c.do(http.MethodGet, "/api/admin/stats", ana.AccessToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, c.do(http.MethodGet, "/api/reports", ana.AccessToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, c.do(http.MethodPut, "/api/users/"+budi.User.ID.String()+"/role", ana.AccessToken,
		map[string]string{"role": "admin"}).Code)

	w = c.do(http.MethodGet, "/api/users/departments", ana.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":["Engineering"]}`, w.Body.String())
	assert.Equal(t, http.StatusServiceUnavailable, c.do(http.MethodGet, "/api/search/token", ana.AccessToken, nil).Code)
}
