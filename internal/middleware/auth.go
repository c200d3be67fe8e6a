package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"anoa.com/bragboard/internal/entity"
	userRepo "anoa.com/bragboard/internal/modules/user/repository"
	"anoa.com/bragboard/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const actorKey = "actor"

type AuthMiddleware struct {
	userRepo userRepo.UserRepository
	secret   string
}

func NewAuthMiddleware(userRepo userRepo.UserRepository, secret string) *AuthMiddleware {
	return &AuthMiddleware{
		userRepo: userRepo,
		secret:   secret,
	}
}

// RequireAuth resolves the bearer token to a user and stores the caller as
// an entity.Actor on the context.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		m.authenticate(c, bearerToken(c))
	}
}

// RequireAuthWS also accepts the token as a "token" query parameter, since
// browsers cannot set headers on websocket upgrades. Mount it only on the
// websocket route.
func (m *AuthMiddleware) RequireAuthWS() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		m.authenticate(c, tokenString)
	}
}

func bearerToken(c *gin.Context) string {
	if parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2); len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

func (m *AuthMiddleware) authenticate(c *gin.Context, tokenString string) {
	if tokenString == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
		return
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.secret), nil
	})
	if err != nil || !token.Valid {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token claims"})
		return
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token claims"})
		return
	}

	user, err := m.userRepo.FindByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": http.StatusText(http.StatusInternalServerError)})
		return
	}

	c.Set("user_id", user.ID.String())
	c.Set(actorKey, entity.ActorFromUser(user))
	c.Next()
}

func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := ActorFrom(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			return
		}

		if !actor.IsModerator() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}

		c.Next()
	}
}

// ActorFrom returns the caller stored by RequireAuth.
func ActorFrom(c *gin.Context) (entity.Actor, error) {
	v, ok := c.Get(actorKey)
	if !ok {
		return entity.Actor{}, apperror.ErrUnauthorized
	}
	actor, ok := v.(entity.Actor)
	if !ok || actor.IsZero() {
		return entity.Actor{}, apperror.ErrUnauthorized
	}
	return actor, nil
}

// SetActor stores an actor on the context; handler tests use it in place of
// RequireAuth.
func SetActor(actor entity.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", actor.UserID.String())
		c.Set(actorKey, actor)
		c.Next()
	}
}
