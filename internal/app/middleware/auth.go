package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/sirupsen/logrus"

	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/ds"
	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/redis"
	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/role"
)

const jwtPrefix = "Bearer "

type AuthMiddleware struct {
	secret      string
	redisClient *redis.Client
}

func NewAuthMiddleware(secret string, redisClient *redis.Client) *AuthMiddleware {
	return &AuthMiddleware{
		secret:      secret,
		redisClient: redisClient,
	}
}

// WithAuthCheck validates the bearer token and, when roles are given,
// requires the caller to hold one of them.
func (am *AuthMiddleware) WithAuthCheck(assignedRoles ...role.Role) gin.HandlerFunc {
	return func(gCtx *gin.Context) {
		jwtStr := gCtx.GetHeader("Authorization")

		if jwtStr == "" {
			gCtx.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"status":  "error",
				"message": "authorization header is missing",
			})
			return
		}

		if !strings.HasPrefix(jwtStr, jwtPrefix) {
			gCtx.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"status":  "error",
				"message": "invalid authorization header format",
			})
			return
		}

		jwtStr = jwtStr[len(jwtPrefix):]

		// a blacklisted token means the user logged out
		err := am.redisClient.CheckJWTInBlacklist(gCtx.Request.Context(), jwtStr)
		if err == nil {
			gCtx.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"status":  "error",
				"message": "token is blacklisted",
			})
			return
		}
		if !redis.IsNilErr(err) {
			gCtx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"status":  "error",
				"message": "server error",
			})
			logrus.Error(err)
			return
		}

		token, err := jwt.ParseWithClaims(jwtStr, &ds.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(am.secret), nil
		})

		if err != nil || !token.Valid {
			gCtx.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"status":  "error",
				"message": "invalid token",
			})
			return
		}

		myClaims, ok := token.Claims.(*ds.JWTClaims)
		if !ok {
			gCtx.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"status":  "error",
				"message": "invalid token claims",
			})
			return
		}

		if len(assignedRoles) > 0 {
			authorized := false
			for _, assignedRole := range assignedRoles {
				if assignedRole == role.Role(myClaims.Role) {
					authorized = true
					break
				}
			}

			if !authorized {
				gCtx.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"status":  "error",
					"message": "insufficient permissions",
				})
				return
			}
		}

		gCtx.Set("userID", myClaims.UserID)
		gCtx.Set("userEmail", myClaims.Email)
		gCtx.Set("userRole", myClaims.Role)
		gCtx.Set("tokenString", jwtStr)

		gCtx.Next()
	}
}
