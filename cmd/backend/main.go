package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/UnicloudAfrica/uniclo-sub016/internal/pkg"
)

// @title Instance Provisioning Wizard API
// @version 1.0
// @description Guided provisioning and payment flow for UniCloud instances.

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	logrus.Info("application start")

	app, err := pkg.NewApp(context.Background())
	if err != nil {
		logrus.Fatalf("failed to initialize application: %v", err)
	}

	if err := app.Run(); err != nil {
		logrus.Fatalf("server stopped: %v", err)
	}
}
