package handler

import (
	"crypto/sha1"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/sirupsen/logrus"

	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/ds"
	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/dto"
	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/role"
)

func generateHashString(s string) string {
	h := sha1.New()
	h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil))
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration data"
// @Success 201 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/auth/register [post]
func (h *Handler) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.errorResponse(ctx, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	exists, err := h.Repository.UserExistsByLogin(req.Login)
	if err != nil {
		h.serverError(ctx, err)
		return
	}
	if exists {
		h.errorResponse(ctx, http.StatusConflict, "user with this login already exists")
		return
	}

	user, err := h.Repository.CreateUser(req.Login, generateHashString(req.Password), req.Email, req.FullName, req.Role)
	if err != nil {
		h.serverError(ctx, err)
		return
	}

	logrus.Infof("user %s registered", user.Login)
	h.successResponse(ctx, http.StatusCreated, "user registered", dto.UserResponse{
		ID:       user.ID,
		Login:    user.Login,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     role.Role(user.Role).String(),
	})
}

// Login godoc
// @Summary Log in and receive a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /api/auth/login [post]
func (h *Handler) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		h.errorResponse(ctx, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	user, err := h.Repository.GetUserByLogin(req.Login)
	if err != nil || user.Password != generateHashString(req.Password) {
		h.errorResponse(ctx, http.StatusForbidden, "invalid login or password")
		return
	}

	cfg := h.Config.JWT
	token := jwt.NewWithClaims(cfg.SigningMethod, &ds.JWTClaims{
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(cfg.ExpiresIn).Unix(),
			IssuedAt:  time.Now().Unix(),
			Issuer:    "uniclo-sub016",
		},
		UserID: user.ID,
		Email:  user.Email,
		Role:   role.Role(user.Role),
	})

	signed, err := token.SignedString([]byte(cfg.Token))
	if err != nil {
		h.serverError(ctx, err)
		return
	}

	h.successResponse(ctx, http.StatusOK, "login successful", gin.H{
		"access_token": signed,
		"token_type":   "Bearer",
		"expires_in":   int(cfg.ExpiresIn.Seconds()),
		"user": dto.UserResponse{
			ID:       user.ID,
			Login:    user.Login,
			Email:    user.Email,
			FullName: user.FullName,
			Role:     role.Role(user.Role).String(),
		},
	})
}

// Logout godoc
// @Summary Log out and blacklist the current token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SuccessResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /api/auth/logout [post]
func (h *Handler) Logout(ctx *gin.Context) {
	tokenString := ctx.GetString("tokenString")
	if tokenString == "" {
		h.errorResponse(ctx, http.StatusForbidden, "no token to revoke")
		return
	}

	err := h.RedisClient.WriteJWTToBlacklist(ctx.Request.Context(), tokenString, h.Config.JWT.ExpiresIn)
	if err != nil {
		h.serverError(ctx, err)
		return
	}

	h.successResponse(ctx, http.StatusOK, "logged out", nil)
}

// Profile godoc
// @Summary Current user profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SuccessResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /api/auth/profile [get]
func (h *Handler) Profile(ctx *gin.Context) {
	userID, err := getUserFromContext(ctx)
	if err != nil {
		h.errorResponse(ctx, http.StatusForbidden, err.Error())
		return
	}

	user, err := h.Repository.GetUserByID(userID)
	if err != nil {
		h.errorResponse(ctx, http.StatusNotFound, "user not found")
		return
	}

	h.successResponse(ctx, http.StatusOK, "", dto.UserResponse{
		ID:       user.ID,
		Login:    user.Login,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     role.Role(user.Role).String(),
	})
}
