package http

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"anoa.com/bragboard/internal/middleware"
	"anoa.com/bragboard/internal/modules/user/dto"
	userService "anoa.com/bragboard/internal/modules/user/service"
	"anoa.com/bragboard/pkg/apperror"
	"anoa.com/bragboard/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	oauthStateCookie = "bragboard_oauth_state"
	oauthCookiePath  = "/api/auth/google"
)

type AuthHandler struct {
	authService userService.AuthService
	frontendURL string
}

func NewAuthHandler(authService userService.AuthService, frontendURL string) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input dto.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.authService.Register(c.Request.Context(), input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input dto.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.authService.Login(c.Request.Context(), input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// GoogleLogin redirects to Google's consent page. The state parameter is
// pinned in a short-lived cookie and checked by GoogleCallback.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	state := uuid.NewString()
	authURL, err := h.authService.GoogleLoginURL(state)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, 600, oauthCookiePath, "", c.Request.TLS != nil, true)
	c.Redirect(http.StatusTemporaryRedirect, authURL)
}

// GoogleCallback finishes sign-in and hands the tokens to the frontend in
// the URL fragment, which browsers never send to servers.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	state, err := c.Cookie(oauthStateCookie)
	if err != nil || state == "" || c.Query("state") != state {
		response.ResponseError(c, fmt.Errorf("%w: invalid oauth state", apperror.ErrUnauthorized))
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, oauthCookiePath, "", c.Request.TLS != nil, true)

	code := c.Query("code")
	if code == "" {
		response.ResponseError(c, fmt.Errorf("%w: code is required", apperror.ErrInvalidInput))
		return
	}

	res, err := h.authService.GoogleCallback(c.Request.Context(), code)
	if err != nil {
		message := err.Error()
		if apperror.MapErrorToStatus(err) >= http.StatusInternalServerError {
			message = "sign-in failed"
		}
		c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"/login?"+url.Values{"error": {message}}.Encode())
		return
	}

	fragment := url.Values{
		"access_token": {res.AccessToken},
		"token_type":   {res.TokenType},
		"expires_in":   {strconv.FormatInt(res.ExpiresIn, 10)},
	}
	if res.SearchToken != "" {
		fragment.Set("search_token", res.SearchToken)
	}
	c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"/auth/google/callback#"+fragment.Encode())
}

type UserHandler struct {
	userService userService.UserService
}

func NewUserHandler(userService userService.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) Me(c *gin.Context) {
	actor, err := middleware.ActorFrom(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.userService.Me(c.Request.Context(), actor)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": users})
}

func (h *UserHandler) Departments(c *gin.Context) {
	departments, err := h.userService.Departments(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": departments})
}
