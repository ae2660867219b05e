package storage

import (
	"context"
	"fmt"
	"sync"

	"kitsubot/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// UserDirectory holds the linked Telegram/Kitsu accounts. Rows live in
// postgres; Refresh loads them into an in-memory map so the lookups the
// dispatcher needs stay synchronous.
type UserDirectory struct {
	db     *pgxpool.Pool
	logger *logrus.Logger

	mu       sync.RWMutex
	accounts map[int64]models.Account
}

func NewUserDirectory(db *pgxpool.Pool, logger *logrus.Logger) *UserDirectory {
	return &UserDirectory{
		db:       db,
		logger:   logger,
		accounts: make(map[int64]models.Account),
	}
}

// Refresh reloads every linked account from the database, replaces the
// in-memory map and returns the loaded accounts.
func (d *UserDirectory) Refresh(ctx context.Context) ([]models.Account, error) {
	query := `
	SELECT telegram_id, kitsu_id, token, created_at, updated_at
	FROM accounts
	`

	rows, err := d.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]models.Account, 0)
	for rows.Next() {
		var account models.Account
		err := rows.Scan(
			&account.TelegramId,
			&account.KitsuId,
			&account.Token,
			&account.CreatedAt,
			&account.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read accounts: %w", err)
	}

	byTelegramId := make(map[int64]models.Account, len(accounts))
	for _, account := range accounts {
		byTelegramId[account.TelegramId] = account
	}

	d.mu.Lock()
	d.accounts = byTelegramId
	d.mu.Unlock()

	d.logger.WithField("accounts", len(accounts)).Info("Account directory refreshed")

	return accounts, nil
}

// KitsuId returns the Kitsu profile id linked to a Telegram user.
func (d *UserDirectory) KitsuId(telegramId int64) (int64, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	account, ok := d.accounts[telegramId]
	if !ok {
		return 0, false
	}
	return account.KitsuId, true
}

// Token returns the access token of a Telegram user, provided the stored
// link matches the Kitsu id the caller is acting on.
func (d *UserDirectory) Token(telegramId, kitsuId int64) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	account, ok := d.accounts[telegramId]
	if !ok || account.KitsuId != kitsuId || account.Token == "" {
		return "", false
	}
	return account.Token, true
}
