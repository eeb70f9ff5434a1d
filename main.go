package main

import (
	"github.com/goblogdev/goblog/config"
	"github.com/goblogdev/goblog/models"
	"github.com/goblogdev/goblog/routes"
	"github.com/goblogdev/goblog/utils"
)

func main() {
	cfg := config.Load()

	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.User{}, &models.Article{}, &models.Comment{}, &models.Like{})

	r := routes.SetupRouter(db)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
