package container

import (
	"context"
	"fmt"
	"time"

	"kitsubot/internal/bot"
	"kitsubot/internal/config"
	"kitsubot/internal/database"
	"kitsubot/internal/logger"
	"kitsubot/internal/services"
	"kitsubot/internal/storage"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type Container struct {
	DB       *pgxpool.Pool
	Redis    *redis.Client
	Logger   *logrus.Logger
	Telegram *services.TelegramClient
	Kitsu    *services.KitsuClient
	Users    *storage.UserDirectory
	Handler  *bot.Handler
}

func New(ctx context.Context, botToken string) (*Container, error) {
	logger := logger.Get()

	if err := database.RunMigrations(logger); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	db, err := newDatabase(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	redisClient, err := newRedis(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	telegram := services.NewTelegramClient(botToken, logger)
	kitsu := services.NewKitsuClientWithConfig(&services.KitsuClientConfig{
		BaseURL: config.KitsuConfig(),
		Timeout: 30 * time.Second,
		Logger:  logger,
		Redis:   redisClient,
	})
	users := storage.NewUserDirectory(db, logger)

	return &Container{
		DB:       db,
		Redis:    redisClient,
		Logger:   logger,
		Telegram: telegram,
		Kitsu:    kitsu,
		Users:    users,
		Handler:  bot.NewHandler(telegram, kitsu, users, logger),
	}, nil
}

func (c *Container) Close() {
	if c.Redis != nil {
		c.Redis.Close()
		c.Logger.Info("Redis connection closed")
	}
	if c.DB != nil {
		c.DB.Close()
		c.Logger.Info("Database connection closed")
	}
}

func newDatabase(ctx context.Context) (*pgxpool.Pool, error) {
	host, port, user, password, databaseName := config.DatabaseConfig()

	if host == "" || port == "" || user == "" || password == "" || databaseName == "" {
		return nil, fmt.Errorf("missing required database configuration")
	}

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, databaseName)

	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = time.Minute * 30
	config.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Get().Info("Database connection successful")
	return pool, nil
}

func newRedis(ctx context.Context) (*redis.Client, error) {
	host, port, password := config.RedisConfig()

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: password,
		DB:       0,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Get().Info("Redis connection successful")
	return client, nil
}
