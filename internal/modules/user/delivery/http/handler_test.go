package http_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	userHttp "anoa.com/bragboard/internal/modules/user/delivery/http"
	"anoa.com/bragboard/internal/modules/user/dto"
	"anoa.com/bragboard/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuth struct {
	gotState string
	gotCode  string
	err      error
}

func (s *stubAuth) Register(context.Context, dto.RegisterInput) (*dto.AuthResponse, error) {
	return nil, nil
}

func (s *stubAuth) Login(context.Context, dto.LoginInput) (*dto.AuthResponse, error) {
	return nil, nil
}

func (s *stubAuth) GoogleLoginURL(state string) (string, error) {
	s.gotState = state
	return "https://accounts.example/auth?state=" + url.QueryEscape(state), nil
}

func (s *stubAuth) GoogleCallback(_ context.Context, code string) (*dto.AuthResponse, error) {
	s.gotCode = code
	if s.err != nil {
		return nil, s.err
	}
	return &dto.AuthResponse{AccessToken: "jwt-abc", TokenType: "Bearer", ExpiresIn: 42}, nil
}

func newRouter(auth *stubAuth) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := userHttp.NewAuthHandler(auth, "http://app.example/")
	r := gin.New()
	r.GET("/api/auth/google", h.GoogleLogin)
	r.GET("/api/auth/google/callback", h.GoogleCallback)
	return r
}

func login(t *testing.T, r http.Handler) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/auth/google", nil))
	require.Equal(t, http.StatusTemporaryRedirect, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, "/api/auth/google", cookies[0].Path)
	return cookies[0]
}

func callback(r http.Handler, query string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?"+query, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGoogleLoginPinsState(t *testing.T) {
	auth := &stubAuth{}
	r := newRouter(auth)

	cookie := login(t, r)
	assert.NotEmpty(t, auth.gotState)
	assert.Equal(t, auth.gotState, cookie.Value)
}

func TestGoogleCallbackRedirectsWithFragment(t *testing.T) {
	auth := &stubAuth{}
	r := newRouter(auth)
	cookie := login(t, r)

	w := callback(r, "code=c-1&state="+cookie.Value, cookie)
	require.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "c-1", auth.gotCode)

	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/auth/google/callback", loc.Path)
	assert.Empty(t, loc.RawQuery, "tokens must not travel in the query string")
	frag, err := url.ParseQuery(loc.Fragment)
	require.NoError(t, err)
	assert.Equal(t, "jwt-abc", frag.Get("access_token"))
	assert.Equal(t, "42", frag.Get("expires_in"))
}

func TestGoogleCallbackChecksState(t *testing.T) {
	auth := &stubAuth{}
	r := newRouter(auth)
	cookie := login(t, r)

	assert.Equal(t, http.StatusUnauthorized, callback(r, "code=c-1&state=forged", cookie).Code)
	assert.Equal(t, http.StatusUnauthorized, callback(r, "code=c-1&state="+cookie.Value, nil).Code)
	assert.Equal(t, http.StatusBadRequest, callback(r, "state="+cookie.Value, cookie).Code)
	assert.Empty(t, auth.gotCode)
}

func TestGoogleCallbackErrorRedirect(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"client error keeps message", fmt.Errorf("%w: email domain must be @corp.example", apperror.ErrForbidden), "forbidden: email domain must be @corp.example"},
		{"server error is masked", fmt.Errorf("db down"), "sign-in failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(&stubAuth{err: tt.err})
			cookie := login(t, r)

			w := callback(r, "code=c-1&state="+cookie.Value, cookie)
			require.Equal(t, http.StatusTemporaryRedirect, w.Code)
			loc, err := url.Parse(w.Header().Get("Location"))
			require.NoError(t, err)
			assert.Equal(t, "/login", loc.Path)
			assert.Equal(t, tt.want, loc.Query().Get("error"))
		})
	}
}
