package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	domain "github.com/BruksfildServices01/sacrament-scheduler/internal/domain/appointment"
)

const ContextActor = "actor"

// AuthMiddleware turns a bearer token into the request actor. Tokens are
// issued elsewhere; claims: sub (user id), role, churchId (staff only).
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error_code": "missing_authorization_header"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error_code": "invalid_authorization_header"})
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenMalformed
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error_code": "invalid_token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error_code": "invalid_token_claims"})
			return
		}

		userID, ok := claims["sub"].(float64)
		if !ok || userID <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error_code": "invalid_token_payload"})
			return
		}

		actor := domain.Actor{UserID: uint(userID), Role: domain.RoleApplicant}
		if role, _ := claims["role"].(string); role != "" {
			actor.Role = role
		}
		if churchID, ok := claims["churchId"].(float64); ok && churchID > 0 {
			id := uint(churchID)
			actor.ChurchID = &id
		}

		c.Set(ContextActor, actor)
		c.Next()
	}
}

func ActorFrom(c *gin.Context) domain.Actor {
	return c.MustGet(ContextActor).(domain.Actor)
}

// RequireStaff lets through staff and admins only.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ActorFrom(c).IsStaff() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error_code": "staff_only"})
			return
		}
		c.Next()
	}
}
