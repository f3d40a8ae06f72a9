package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"ledger/internal/core"
)

// SettingsStore is a small key/value store. The default currency lives here
// and is handed explicitly to entry creation.
type SettingsStore struct {
	store    SettingStore
	fallback string
}

// NewSettingsStore uses fallback as the default currency until one is set.
func NewSettingsStore(store SettingStore, fallback string) *SettingsStore {
	return &SettingsStore{store: store, fallback: fallback}
}

func (s *SettingsStore) Get(ctx context.Context, key string) (string, bool, error) {
	return s.store.GetSetting(ctx, key)
}

// Set upserts key. The default currency key is normalised and validated.
func (s *SettingsStore) Set(ctx context.Context, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return &core.ValidationError{Field: "key", Err: errors.New("empty setting key")}
	}
	if key == core.SettingDefaultCurrency {
		return s.SetDefaultCurrency(ctx, value)
	}
	return s.store.SetSetting(ctx, key, value)
}

// DefaultCurrency returns the stored default or the configured fallback.
func (s *SettingsStore) DefaultCurrency(ctx context.Context) (string, error) {
	v, ok, err := s.store.GetSetting(ctx, core.SettingDefaultCurrency)
	if err != nil {
		return "", err
	}
	if !ok || v == "" {
		return s.fallback, nil
	}
	return v, nil
}

func (s *SettingsStore) SetDefaultCurrency(ctx context.Context, code string) error {
	normalized, err := core.NormalizeCurrency(code)
	if err != nil {
		return &core.ValidationError{Field: "value", Err: err}
	}
	if err := s.store.SetSetting(ctx, core.SettingDefaultCurrency, normalized); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Default currency updated", "currency", normalized)
	return nil
}

// EnsureDefaults seeds the default currency on first start.
func (s *SettingsStore) EnsureDefaults(ctx context.Context) error {
	wrote, err := s.store.SetSettingIfAbsent(ctx, core.SettingDefaultCurrency, s.fallback)
	if err != nil {
		return fmt.Errorf("seed default currency: %w", err)
	}
	if wrote {
		slog.InfoContext(ctx, "Seeded default currency", "currency", s.fallback)
	}
	return nil
}

func (s *SettingsStore) Fallback() string {
	return s.fallback
}
