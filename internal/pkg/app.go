package pkg

import (
	"context"
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/clients"
	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/config"
	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/dsn"
	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/handler"
	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/middleware"
	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/redis"
	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/repository"
	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/storage"
)

type Application struct {
	Config  *config.Config
	Router  *gin.Engine
	Handler *handler.Handler
}

func NewApp(ctx context.Context) (*Application, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	repo, err := repository.New(dsn.FromEnv())
	if err != nil {
		return nil, fmt.Errorf("repository error: %w", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}

	minioClient, err := storage.NewMinIOClient(
		cfg.Minio.Endpoint,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.Bucket,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		return nil, fmt.Errorf("minio error: %w", err)
	}

	cloud := clients.NewCloud(cfg.Upstream)
	paystack := clients.NewPaystack(cfg.Paystack)

	h := handler.NewHandler(cfg, repo, redisClient, cloud, paystack, minioClient)
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Token, redisClient)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))

	h.RegisterRoutes(router, authMiddleware)

	return &Application{
		Config:  cfg,
		Router:  router,
		Handler: h,
	}, nil
}

func (a *Application) Run() error {
	addr := fmt.Sprintf("%s:%d", a.Config.ServiceHost, a.Config.ServicePort)
	logrus.Infof("server starting on %s", addr)
	return a.Router.Run(addr)
}
