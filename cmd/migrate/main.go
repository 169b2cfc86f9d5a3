package main

import (
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/dsn"
	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/repository"
)

func main() {
	_ = godotenv.Load()

	connStr := dsn.FromEnv()
	if connStr == "" {
		logrus.Fatal("database environment variables are not set")
	}

	// repository.New runs the schema migration on connect
	if _, err := repository.New(connStr); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}

	logrus.Info("migration complete")
}
