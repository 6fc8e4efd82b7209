package backend

import (
	"context"
	"path/filepath"
	"testing"

	"moneta/internal/config"
)

func TestFromAppConfig(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		wantErr bool
	}{
		{"sqlite", "sqlite", false},
		{"postgres", "postgres", false},
		{"memory", "memory", false},
		{"sheets is gone", "sheets", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromAppConfig(&config.Config{DataBackend: tt.backend})
			if (err != nil) != tt.wantErr {
				t.Errorf("FromAppConfig(%q) error = %v, wantErr %v", tt.backend, err, tt.wantErr)
			}
		})
	}

	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		store, err := Open(ctx, Config{Type: MemoryBackend})
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		defer store.Close()
	})

	t.Run("sqlite", func(t *testing.T) {
		store, err := Open(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "m.db")})
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		defer store.Close()
	})

	t.Run("postgres requires a url", func(t *testing.T) {
		if _, err := Open(ctx, Config{Type: PostgresBackend}); err == nil {
			t.Error("expected validation error")
		}
	})
}
