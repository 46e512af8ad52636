package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const contextKeyUserID = "auth_user_id"

// bearerAuth validates the Authorization header's bearer token (HS256) and
// stores the subject claim for handlers.
func bearerAuth(signingKey string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		if header == "" {
			abortWithError(ctx, http.StatusUnauthorized, codeUnauthorized, "missing bearer token")
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortWithError(ctx, http.StatusUnauthorized, codeUnauthorized, "invalid authorization header")
			return
		}
		userID, err := validateToken(parts[1], signingKey)
		if err != nil {
			abortWithError(ctx, http.StatusUnauthorized, codeUnauthorized, "invalid token")
			return
		}
		ctx.Set(contextKeyUserID, userID)
		ctx.Next()
	}
}

func validateToken(tokenString string, signingKey string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(signingKey), nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", fmt.Errorf("token invalid")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("unexpected claims type")
	}
	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return "", fmt.Errorf("missing subject claim")
	}
	return subject, nil
}

func authedUserID(ctx *gin.Context) string {
	value, ok := ctx.Get(contextKeyUserID)
	if !ok {
		return ""
	}
	userID, _ := value.(string)
	return userID
}
