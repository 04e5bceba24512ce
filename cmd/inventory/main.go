package main

import (
	"fmt"
	"log"
	"net/http"

	"ev-service-center/internal/client"
	"ev-service-center/internal/notify"
	"ev-service-center/internal/wire"
	"ev-service-center/pkg/database"
	"ev-service-center/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := utils.InitLogger(config.App.LogPath, "inventory", config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting inventory service",
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	notifications := client.NewNotificationClient(config.Internal.NotificationURL, config.Internal.Token, config.Internal.ClientTimeout, logger)
	notifier := notify.NewNotifier(notifications, logger)
	defer notifier.Close()

	app := wire.Inventory(db, config, notifier, logger)

	addr := fmt.Sprintf(":%s", config.App.Port)
	logger.Info("Inventory service listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, app.Router); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}
