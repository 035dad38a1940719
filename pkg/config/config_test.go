package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if !cfg.App.IsProd() {
		t.Fatalf("expected production env by default, got %q", cfg.App.Env)
	}
	if cfg.App.LogFormat != LogFormatJSON {
		t.Fatalf("expected json log format, got %q", cfg.App.LogFormat)
	}
	if cfg.DB.BusyTimeout != 5*time.Second {
		t.Fatalf("expected busy timeout 5s, got %v", cfg.DB.BusyTimeout)
	}
	if cfg.DB.MaxOpenConns != 1 {
		t.Fatalf("expected single connection, got %d", cfg.DB.MaxOpenConns)
	}
	if cfg.Schema.RecordBackfillBatch != 2000 || cfg.Schema.ItemBackfillBatch != 3000 {
		t.Fatalf("unexpected backfill batches %+v", cfg.Schema)
	}
	if cfg.Export.ChunkSize != 500 {
		t.Fatalf("expected export chunk 500, got %d", cfg.Export.ChunkSize)
	}
	if cfg.Export.Secret != "197781" {
		t.Fatalf("unexpected default export secret %q", cfg.Export.Secret)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv(EnvAppEnv, "dev")
	t.Setenv(EnvLogFormat, "CONSOLE")
	t.Setenv(EnvDBPath, "/tmp/pawn/sales.sqlite")
	t.Setenv(EnvRecordBackfillSize, "10")
	t.Setenv(EnvExportChunkSize, "50")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if !cfg.App.IsDev() {
		t.Fatalf("expected dev env, got %q", cfg.App.Env)
	}
	if cfg.App.LogFormat != LogFormatConsole {
		t.Fatalf("expected normalized console format, got %q", cfg.App.LogFormat)
	}
	if cfg.Paths.DBPath != "/tmp/pawn/sales.sqlite" {
		t.Fatalf("unexpected db path %q", cfg.Paths.DBPath)
	}
	if cfg.DB.Path != "" {
		t.Fatalf("resolved db path must not come from env, got %q", cfg.DB.Path)
	}
	if cfg.Schema.RecordBackfillBatch != 10 {
		t.Fatalf("expected record batch 10, got %d", cfg.Schema.RecordBackfillBatch)
	}
	if cfg.Export.ChunkSize != 50 {
		t.Fatalf("expected chunk 50, got %d", cfg.Export.ChunkSize)
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		EnvLogFormat:          "xml",
		EnvItemBackfillSize:   "0",
		EnvExportChunkSize:    "-1",
		EnvDBBusyTimeout:      "soon",
		EnvRecordBackfillSize: "many",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected %s=%q to fail", key, value)
			}
		})
	}
}

func TestLoad_RequiresSomeExportSecret(t *testing.T) {
	t.Setenv(EnvExportSecret, " ")
	if _, err := Load(); err == nil {
		t.Fatal("expected blank export secret without hash to fail")
	}

	t.Setenv(EnvExportSecretHash, "$argon2id$v=19$m=8,t=1,p=1$c2FsdHNhbHQ$aGFzaGhhc2hoYXNoaGFzaA")
	if _, err := Load(); err != nil {
		t.Fatalf("hash alone should be enough: %v", err)
	}
}
