package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/grantflow/logging"
	"github.com/dev-mohitbeniwal/grantflow/model"
	"github.com/dev-mohitbeniwal/grantflow/util"
)

// Claims carries the caller identity. Only the email claim is trusted for
// authorization decisions.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

var errMissingEmailClaim = errors.New("token has no email claim")

// AuthMiddleware verifies an HMAC-signed bearer token and stores the
// normalized email claim under util.ActorContextKey.
func AuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			logger.Warn("No bearer token provided", zap.String("path", c.Request.URL.Path))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		claims, err := ParseToken(strings.TrimPrefix(header, "Bearer "), secret)
		if err != nil {
			logger.Warn("Rejected bearer token", zap.Error(err), zap.String("path", c.Request.URL.Path))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		actor := model.NormalizeEmail(claims.Email)
		c.Set(util.ActorContextKey, actor)
		c.Request = c.Request.WithContext(logger.NewContext(c.Request.Context(), zap.String("actor", actor)))
		c.Next()
	}
}

// ParseToken validates signature, expiry and the email claim.
func ParseToken(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what you expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token or wrong claims type")
	}
	if model.NormalizeEmail(claims.Email) == "" {
		return nil, errMissingEmailClaim
	}
	return claims, nil
}

// SignToken mints a token for email. Used by grantctl and tests.
func SignToken(email string, secret []byte, claims jwt.RegisteredClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: claims, Email: email})
	return token.SignedString(secret)
}
