package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/clients"
	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/config"
	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/dto"
	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/middleware"
	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/redis"
	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/repository"
	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/role"
	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/storage"
)

// Handler wires every HTTP endpoint to its dependencies. All collaborators
// are injected so tests can substitute fakes.
type Handler struct {
	Config      *config.Config
	Repository  Datastore
	RedisClient SessionStore
	Cloud       clients.Cloud
	Paystack    clients.Paystack
	Minio       ProofStorage
}

func NewHandler(
	cfg *config.Config,
	r *repository.Repository,
	redisClient *redis.Client,
	cloud clients.Cloud,
	paystack clients.Paystack,
	minio *storage.MinIOClient,
) *Handler {
	return &Handler{
		Config:      cfg,
		Repository:  r,
		RedisClient: redisClient,
		Cloud:       cloud,
		Paystack:    paystack,
		Minio:       minio,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine, authMiddleware *middleware.AuthMiddleware) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Register)
			auth.POST("/login", h.Login)
			auth.POST("/logout", authMiddleware.WithAuthCheck(), h.Logout)
			auth.GET("/profile", authMiddleware.WithAuthCheck(), h.Profile)
		}

		tags := api.Group("/tags")
		{
			tags.GET("", authMiddleware.WithAuthCheck(), h.GetTags)
			tags.POST("", authMiddleware.WithAuthCheck(role.Admin), h.CreateTag)
			tags.DELETE("/:id", authMiddleware.WithAuthCheck(role.Admin), h.DeleteTag)
		}

		catalog := api.Group("/catalog", authMiddleware.WithAuthCheck())
		{
			catalog.GET("/projects", h.GetProjects)
			catalog.GET("/products", h.GetProducts)
			catalog.GET("/subnets", h.GetSubnets)
			catalog.GET("/security-groups", h.GetSecurityGroups)
			catalog.GET("/key-pairs", h.GetKeyPairs)
		}

		wiz := api.Group("/wizard", authMiddleware.WithAuthCheck())
		{
			wiz.POST("", h.CreateWizardSession)
			wiz.GET("/:session_id", h.GetWizardSession)
			wiz.PUT("/:session_id/fields", h.UpdateDraftField)
			wiz.PUT("/:session_id/toggle", h.ToggleDraftValue)
			wiz.POST("/:session_id/requests", h.CommitDraft)
			wiz.DELETE("/:session_id/requests/:index", h.RemoveRequest)
			wiz.POST("/:session_id/next", h.NextStep)
			wiz.POST("/:session_id/back", h.PreviousStep)
			wiz.PUT("/:session_id/payment/option", h.SelectPaymentOption)
			wiz.POST("/:session_id/payment", h.Pay)
			wiz.POST("/:session_id/close", h.CloseWizardSession)
		}

		// paystack redirects the user's browser here, no bearer token
		api.GET("/payment/callback", h.PaymentCallback)

		orders := api.Group("/orders", authMiddleware.WithAuthCheck())
		{
			orders.GET("", h.GetOrders)
			orders.GET("/:reference", h.GetOrder)
			orders.POST("/:reference/proof", h.UploadPaymentProof)
			orders.GET("/:reference/proof", h.DownloadPaymentProof)
		}
	}
}

func (h *Handler) errorResponse(ctx *gin.Context, statusCode int, message string) {
	ctx.JSON(statusCode, dto.ErrorResponse{
		Status:  "error",
		Message: message,
	})
}

func (h *Handler) successResponse(ctx *gin.Context, statusCode int, message string, data interface{}) {
	ctx.JSON(statusCode, dto.SuccessResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

func (h *Handler) serverError(ctx *gin.Context, err error) {
	logrus.Error(err)
	h.errorResponse(ctx, http.StatusInternalServerError, "internal server error")
}

func getUserFromContext(ctx *gin.Context) (uint, error) {
	userID, exists := ctx.Get("userID")
	if !exists {
		return 0, fmt.Errorf("user not found in context")
	}

	id, ok := userID.(uint)
	if !ok {
		return 0, fmt.Errorf("invalid user ID type in context")
	}

	return id, nil
}
