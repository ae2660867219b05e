package config

import "os"

// TelegramConfig returns bot token, listen port
func TelegramConfig() (string, string) {
	token := os.Getenv("BOT_TOKEN")
	port := GetEnv("PORT", "8080")
	return token, port
}

// KitsuConfig returns the base URL of the Kitsu API
func KitsuConfig() string {
	return GetEnv("KITSU_API_URL", "https://kitsu.io/api/edge")
}

// DatabaseConfig returns host, port, user, password, database name
func DatabaseConfig() (string, string, string, string, string) {
	host := GetEnv("DB_HOST", "postgres")
	port := GetEnv("DB_PORT", "5432")
	user := GetEnv("DB_USER", "")
	password := GetEnv("DB_PASS", "")
	databaseName := GetEnv("DB_NAME", "")
	return host, port, user, password, databaseName
}

// RedisConfig returns host, port, password
func RedisConfig() (string, string, string) {
	host := GetEnv("R_HOST", "redis")
	port := GetEnv("R_PORT", "6379")
	password := GetEnv("R_PASS", "")
	return host, port, password
}

// GetEnv retrieves values from environment files based on the key it matches,
// returns a string (value) if not empty
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
