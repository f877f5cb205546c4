package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(PathEnv, "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.General.DatabasePath != "irlcord.db" {
		t.Errorf("Expected default database path, got %q", cfg.General.DatabasePath)
	}
	if cfg.Commands.EventChangeHost != "event change host" {
		t.Errorf("Expected default change host phrase, got %q", cfg.Commands.EventChangeHost)
	}
	if cfg.Terminology.Terms().Group != "Circle" {
		t.Errorf("Expected default group word 'Circle', got %q", cfg.Terminology.Terms().Group)
	}
}

func TestLoadFileKeepsDefaultsForMissingKeys(t *testing.T) {
	path := writeConfig(t, `
general:
  admin_user_ids: ["1001", "1002"]
  timezone: "America/New_York"
terminology:
  group_singular: "Crew"
commands:
  group_create: "crew new"
logging:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !cfg.IsAdmin("1002") || cfg.IsAdmin("1003") {
		t.Errorf("Unexpected admin list: %v", cfg.General.AdminUserIDs)
	}
	if cfg.Terminology.GroupSingular != "Crew" || cfg.Terminology.GroupPlural != "Circles" {
		t.Errorf("Expected Crew/Circles, got %s/%s", cfg.Terminology.GroupSingular, cfg.Terminology.GroupPlural)
	}
	phrases := cfg.Commands.Phrases()
	if phrases["group_create"] != "crew new" || phrases["group_join"] != "circle join" {
		t.Errorf("Unexpected phrases: %v", phrases)
	}

	loc, err := cfg.Location()
	if err != nil || loc.String() != "America/New_York" {
		t.Errorf("Expected America/New_York, got %v (%v)", loc, err)
	}
	level, _ := cfg.LogLevel()
	if level != slog.LevelDebug {
		t.Errorf("Expected debug level, got %v", level)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, `
general:
  bot_token: "from-file"
  database_path: "file.db"
http:
  addr: ":9000"
`)
	t.Setenv("DISCORD_BOT_TOKEN", "from-env")
	t.Setenv("IRLCORD_DATABASE_PATH", "/var/lib/irlcord.db")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("IRLCORD_ADMIN_USER_IDS", "1,2,3")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.General.BotToken != "from-env" {
		t.Errorf("Expected token from env, got %q", cfg.General.BotToken)
	}
	if cfg.General.DatabasePath != "/var/lib/irlcord.db" {
		t.Errorf("Expected database path from env, got %q", cfg.General.DatabasePath)
	}
	if cfg.HTTP.Addr != ":9000" {
		t.Errorf("Expected addr from file, got %q", cfg.HTTP.Addr)
	}
	if cfg.HTTP.JWTSecret != "s3cret" {
		t.Errorf("Expected jwt secret from env, got %q", cfg.HTTP.JWTSecret)
	}
	if len(cfg.General.AdminUserIDs) != 3 {
		t.Errorf("Expected 3 admins from env, got %v", cfg.General.AdminUserIDs)
	}
}

func TestLoadPathFromEnvironment(t *testing.T) {
	path := writeConfig(t, "general:\n  guild_id: \"42\"\n")
	t.Setenv(PathEnv, path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.General.GuildID != "42" {
		t.Errorf("Expected guild id 42, got %q", cfg.General.GuildID)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad timezone", "general:\n  timezone: \"Mars/Olympus\"\n"},
		{"bad level", "logging:\n  level: \"loud\"\n"},
		{"bad yaml", "general: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}
