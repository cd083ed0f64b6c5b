package bot

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadConfig_WithValidToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "test-token-123")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DiscordToken != "test-token-123" {
		t.Errorf("expected token %q, got %q", "test-token-123", cfg.DiscordToken)
	}
}

func TestLoadConfig_WithEmptyToken(t *testing.T) {
	// Clear the environment variable
	t.Setenv("DISCORD_TOKEN", "")

	_, err := LoadConfig()
	if err == nil {
		t.Error("expected error for missing token, got nil")
	}
}

func TestLoadConfig_LogLevel(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		set     bool
		want    slog.Level
		wantErr bool
	}{
		{name: "default", set: false, want: slog.LevelInfo},
		{name: "debug", value: "debug", set: true, want: slog.LevelDebug},
		{name: "upper case", value: "WARN", set: true, want: slog.LevelWarn},
		{name: "invalid", value: "loud", set: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DISCORD_TOKEN", "test-token")
			if tt.set {
				t.Setenv("LOG_LEVEL", tt.value)
			}

			cfg, err := LoadConfig()
			if tt.wantErr {
				if err == nil {
					t.Error("expected error for invalid level")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.LogLevel != tt.want {
				t.Errorf("expected level %v, got %v", tt.want, cfg.LogLevel)
			}
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "test-token")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("expected 10s shutdown timeout, got %v", cfg.ShutdownTimeout)
	}
	if cfg.CommandGuildID != "" {
		t.Errorf("expected global command registration, got guild %q", cfg.CommandGuildID)
	}

	t.Setenv("COMMAND_GUILD_ID", "123")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	cfg, err = LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CommandGuildID != "123" || cfg.ShutdownTimeout != 3*time.Second {
		t.Errorf("expected overrides, got %+v", cfg)
	}
}
