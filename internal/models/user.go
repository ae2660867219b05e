package models

import "time"

// Account links a Telegram user to a Kitsu profile and its access token.
type Account struct {
	TelegramId int64     `json:"telegram_id" db:"telegram_id"`
	KitsuId    int64     `json:"kitsu_id" db:"kitsu_id"`
	Token      string    `json:"token" db:"token"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
