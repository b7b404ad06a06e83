package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/expense-tracker/pkg/helpers"
	"github.com/oksasatya/expense-tracker/pkg/response"
)

// CtxUserIDKey holds the authenticated user id in the gin context.
const CtxUserIDKey = "userID"

// Auth validates the bearer token in the Authorization header and sets userID
// in the Gin context on success.
func Auth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Error(c, http.StatusUnauthorized, "Access denied. No token provided.", nil)
			return
		}
		claims, err := jwt.ParseToken(token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "Invalid or expired token", nil)
			return
		}
		c.Set(CtxUserIDKey, claims.UserID())
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
