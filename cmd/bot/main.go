package main

import (
	"context"
	"net/http"

	"kitsubot/internal/config"
	"kitsubot/internal/container"
	"kitsubot/internal/handlers"
	"kitsubot/internal/logger"

	"github.com/joho/godotenv"
)

func main() {
	logger.Init()
	log := logger.Get()

	err := godotenv.Load(".env.local")
	if err != nil {
		log.Info("No .env file found, using system environment variables")
	}

	botToken, port := config.TelegramConfig()
	if botToken == "" {
		log.Fatal("BOT_TOKEN is required. Set it in .env file or as environment variable")
	}

	ctx := context.Background()

	c, err := container.New(ctx, botToken)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize services")
	}
	defer c.Close()

	if _, err := c.Users.Refresh(ctx); err != nil {
		log.WithError(err).Fatal("Failed to load account directory")
	}

	http.HandleFunc("/webhook", handlers.WebhookHandler(c.Handler, c.Logger))

	log.Infof("Bot starting on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, nil))
}
