package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mearah/craftbom/internal/repository"
)

// Settings keys
const (
	SettingKeyTaxRate = "tax_rate"

	// DefaultTaxRate matches the market's standard transaction tax percentage
	DefaultTaxRate = 5.0
)

// SettingsStore implements repository.Settings for PostgreSQL
type SettingsStore struct {
	db *pgxpool.Pool
}

// NewSettingsStore creates a new SettingsStore
func NewSettingsStore(db *pgxpool.Pool) repository.Settings {
	return &SettingsStore{db: db}
}

// GetSetting retrieves a setting value, returning defaultValue when unset
func (s *SettingsStore) GetSetting(ctx context.Context, key, defaultValue string) (string, error) {
	var value string
	err := s.db.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return defaultValue, nil
		}
		return "", fmt.Errorf("failed to get setting: %w", err)
	}

	return value, nil
}

// SetSetting inserts or updates a setting value
func (s *SettingsStore) SetSetting(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`
	if _, err := s.db.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set setting: %w", err)
	}

	return nil
}

// GetTaxRate returns the transaction tax rate percentage
func (s *SettingsStore) GetTaxRate(ctx context.Context) (float64, error) {
	value, err := s.GetSetting(ctx, SettingKeyTaxRate, strconv.FormatFloat(DefaultTaxRate, 'f', -1, 64))
	if err != nil {
		return 0, err
	}

	rate, err := strconv.ParseFloat(value, 64)
	if err != nil {
		// A garbled stored value falls back to the default rather than failing reports
		return DefaultTaxRate, nil
	}

	return rate, nil
}

// SetTaxRate stores the transaction tax rate percentage
func (s *SettingsStore) SetTaxRate(ctx context.Context, rate float64) error {
	return s.SetSetting(ctx, SettingKeyTaxRate, strconv.FormatFloat(rate, 'f', -1, 64))
}
