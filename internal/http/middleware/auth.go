package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/accredify/accredify-backend/internal/pkg/logger"
	"github.com/accredify/accredify-backend/internal/services"
)

const capabilitiesKey = "capabilities"

// roleClaims is the JWT payload shape issued by the identity collaborator:
// a subject plus a list of role grants, each optionally department-scoped.
type roleClaims struct {
	jwt.RegisteredClaims
	Roles []struct {
		Role         string `json:"role"`
		DepartmentID string `json:"department_id,omitempty"`
	} `json:"roles"`
}

type AuthMiddleware struct {
	log    *logger.Logger
	secret []byte
}

func NewAuthMiddleware(log *logger.Logger, secret string) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), secret: []byte(secret)}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "missing or invalid token", "code": "unauthorized"},
			})
			return
		}

		caps, err := am.capabilitiesFromToken(tokenString)
		if err != nil {
			am.log.Debug("token rejected", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "missing or invalid token", "code": "unauthorized"},
			})
			return
		}

		c.Set(capabilitiesKey, caps)
		c.Next()
	}
}

// capabilitiesFromToken resolves the caller's role set once per request; the
// result travels through the gin context so handlers never re-derive roles.
func (am *AuthMiddleware) capabilitiesFromToken(tokenString string) (services.Capabilities, error) {
	var claims roleClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return am.secret, nil
	})
	if err != nil {
		return services.Capabilities{}, err
	}
	if !token.Valid {
		return services.Capabilities{}, fmt.Errorf("invalid token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return services.Capabilities{}, fmt.Errorf("invalid subject: %w", err)
	}

	caps := services.Capabilities{UserID: userID}
	for _, r := range claims.Roles {
		claim := services.RoleClaim{Role: r.Role}
		if r.DepartmentID != "" {
			dept, err := uuid.Parse(r.DepartmentID)
			if err != nil {
				return services.Capabilities{}, fmt.Errorf("invalid department in role claim: %w", err)
			}
			claim.DepartmentID = &dept
		}
		caps.Claims = append(caps.Claims, claim)
	}
	return caps, nil
}

// CapabilitiesFrom fetches the capability set attached by RequireAuth.
func CapabilitiesFrom(c *gin.Context) (services.Capabilities, bool) {
	v, ok := c.Get(capabilitiesKey)
	if !ok {
		return services.Capabilities{}, false
	}
	caps, ok := v.(services.Capabilities)
	return caps, ok
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}
