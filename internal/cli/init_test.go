package cli

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"ledger/internal/config"
	"ledger/internal/core"
	"ledger/internal/log"
	"ledger/internal/storage"
)

func TestWireServices(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	defer repo.Close()

	tests := []struct {
		name      string
		ttl       time.Duration
		wantCache bool
	}{
		{"cached", time.Minute, true},
		{"uncached", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{FallbackCurrency: "EUR", TagCacheTTL: tt.ttl}
			w, err := WireServices(context.Background(), cfg, repo, nil)
			if err != nil {
				t.Fatalf("WireServices: %v", err)
			}
			if (w.TagCache != nil) != tt.wantCache {
				t.Fatalf("TagCache = %v, want cache %v", w.TagCache, tt.wantCache)
			}

			tags, err := w.Tags.ListAll(context.Background())
			if err != nil || len(tags) == 0 {
				t.Fatalf("ListAll: %d tags, %v", len(tags), err)
			}
		})
	}

	// The first wiring seeded the fallback; later wirings keep it.
	v, ok, err := repo.GetSetting(context.Background(), core.SettingDefaultCurrency)
	if err != nil || !ok || v != "EUR" {
		t.Fatalf("seeded default currency = %q %v %v", v, ok, err)
	}
}

func TestSetupLoggerFallsBackToInfo(t *testing.T) {
	logger := SetupLogger(&config.Config{LogLevel: "loud", LogFormat: "json"}, log.ComponentWorker)
	if logger.Component() != log.ComponentWorker {
		t.Fatalf("component = %q", logger.Component())
	}
}

func TestInitPublisherDisabled(t *testing.T) {
	client, err := InitPublisher(log.New(log.DefaultConfig()), &config.Config{})
	if client != nil || err != nil {
		t.Fatalf("InitPublisher = %v, %v", client, err)
	}
}
