package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/innut/innut/internal/auth"
	"github.com/innut/innut/pkg/errors"
	"github.com/innut/innut/pkg/response"
)

const (
	CtxClaimsKey         = "authClaims"
	CtxUserIDKey         = "userID"
	CtxOrganizationIDKey = "organizationID"
	CtxRoleKey           = "role"
)

// Auth enforces JWT authentication using the supplied JWT service.
func Auth(jwt *iauth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		claims, err := jwt.ValidateAccessToken(token)
		if err != nil {
			// Normalise all validation failures to 401
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		SetClaims(c, claims)
		c.Next()
	}
}

// SetClaims propagates a verified identity into the request context.
func SetClaims(c *gin.Context, claims *iauth.Claims) {
	c.Set(CtxClaimsKey, claims)
	c.Set(CtxUserIDKey, claims.UserID)
	if claims.OrganizationID != "" {
		c.Set(CtxOrganizationIDKey, claims.OrganizationID)
	}
	if claims.Role != "" {
		c.Set(CtxRoleKey, claims.Role)
	}
}

// Claims returns the verified claims stored by Auth, if any.
func Claims(c *gin.Context) (*iauth.Claims, bool) {
	value, ok := c.Get(CtxClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := value.(*iauth.Claims)
	return claims, ok && claims != nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	if len(header) < 8 || !strings.EqualFold(header[:7], "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[7:])
	return token, token != ""
}
