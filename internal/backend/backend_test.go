package backend

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"ledger/internal/config"
	"ledger/internal/log"
	"ledger/internal/sheets/memory"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{ExportBackend: "ftp"}); err == nil {
		t.Fatalf("expected error for unknown backend")
	}

	cfg, err := FromAppConfig(&config.Config{
		ExportBackend:            "sheets",
		GoogleSpreadsheetID:      "sheet-id",
		GoogleSheetName:          "Transactions",
		GoogleServiceAccountJSON: "{}",
	})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if cfg.Type != MirrorSheets || cfg.GoogleSpreadsheetID != "sheet-id" {
		t.Fatalf("config = %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"none", Config{Type: MirrorNone}, false},
		{"memory", Config{Type: MirrorMemory}, false},
		{"unknown", Config{Type: "ftp"}, true},
		{"sheets without id", Config{Type: MirrorSheets, GoogleSheetName: "T", GoogleServiceAccountJSON: "{}"}, true},
		{"sheets without credentials", Config{Type: MirrorSheets, GoogleSpreadsheetID: "x", GoogleSheetName: "T"}, true},
		{"sheets complete", Config{Type: MirrorSheets, GoogleSpreadsheetID: "x", GoogleSheetName: "T", GoogleServiceAccountFile: "/sa.json"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateMirror(t *testing.T) {
	f := NewFactory(log.New(log.Config{Level: slog.LevelError, Output: io.Discard}))
	ctx := context.Background()

	res, err := f.CreateMirror(ctx, Config{Type: MirrorMemory})
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if _, ok := res.Mirror.(*memory.Mirror); !ok {
		t.Fatalf("mirror = %T", res.Mirror)
	}

	res, err = f.CreateMirror(ctx, Config{Type: MirrorNone})
	if err != nil || res.Mirror != nil {
		t.Fatalf("none: %+v, %v", res, err)
	}

	if _, err := f.CreateMirror(ctx, Config{Type: MirrorSheets}); err == nil {
		t.Fatalf("expected validation error for incomplete sheets config")
	}
}
