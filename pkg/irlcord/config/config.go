// Package config loads the bot configuration.
//
// Configuration comes from a single YAML file named by the --config flag or
// the IRLCORD_CONFIG environment variable. Missing keys keep their defaults.
// A handful of deployment settings (secrets, paths, listen address) can then
// be overridden from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/azlyth/irlcord/pkg/irlcord/present"
)

// PathEnv names the environment variable holding the config file path.
const PathEnv = "IRLCORD_CONFIG"

// Config is the full bot configuration.
type Config struct {
	General     GeneralConfig     `yaml:"general"`
	Terminology TerminologyConfig `yaml:"terminology"`
	Commands    CommandsConfig    `yaml:"commands"`
	HTTP        HTTPConfig        `yaml:"http"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// GeneralConfig holds the chat connection and storage settings.
type GeneralConfig struct {
	BotToken     string   `yaml:"bot_token" env:"DISCORD_BOT_TOKEN"`
	AdminUserIDs []string `yaml:"admin_user_ids" env:"IRLCORD_ADMIN_USER_IDS" envSeparator:","`
	GuildID      string   `yaml:"guild_id" env:"IRLCORD_GUILD_ID"`
	DatabasePath string   `yaml:"database_path" env:"IRLCORD_DATABASE_PATH"`

	// Timezone is an IANA name used to read event dates and times.
	Timezone string `yaml:"timezone" env:"IRLCORD_TIMEZONE"`
}

// TerminologyConfig holds the display words.
type TerminologyConfig struct {
	GroupSingular  string `yaml:"group_singular"`
	GroupPlural    string `yaml:"group_plural"`
	EventSingular  string `yaml:"event_singular"`
	EventPlural    string `yaml:"event_plural"`
	LeaderSingular string `yaml:"leader_singular"`
	LeaderPlural   string `yaml:"leader_plural"`
}

// CommandsConfig maps each command to the phrase that triggers it.
type CommandsConfig struct {
	EventCreate     string `yaml:"event_create"`
	EventModify     string `yaml:"event_modify"`
	EventConfirm    string `yaml:"event_confirm"`
	EventUnconfirm  string `yaml:"event_unconfirm"`
	EventWaitlist   string `yaml:"event_waitlist"`
	EventInfo       string `yaml:"event_info"`
	EventChangeHost string `yaml:"event_change_host"`
	GroupCreate     string `yaml:"group_create"`
	GroupJoin       string `yaml:"group_join"`
	GroupLeave      string `yaml:"group_leave"`
	GroupInfo       string `yaml:"group_info"`
	GroupModify     string `yaml:"group_modify"`
	ProfileUpdate   string `yaml:"profile_update"`
	Help            string `yaml:"help"`
}

// HTTPConfig configures the HTTP API.
type HTTPConfig struct {
	Enabled   bool   `yaml:"enabled" env:"IRLCORD_HTTP_ENABLED"`
	Addr      string `yaml:"addr" env:"IRLCORD_HTTP_ADDR"`
	JWTSecret string `yaml:"jwt_secret" env:"JWT_SECRET"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level string `yaml:"level" env:"IRLCORD_LOG_LEVEL"`

	// File receives JSON logs in addition to stderr. Empty disables it.
	File string `yaml:"file" env:"IRLCORD_LOG_FILE"`
}

// Default returns the configuration used for keys the file leaves out.
func Default() *Config {
	return &Config{
		General: GeneralConfig{
			DatabasePath: "irlcord.db",
			Timezone:     "Local",
		},
		Terminology: TerminologyConfig{
			GroupSingular:  "Circle",
			GroupPlural:    "Circles",
			EventSingular:  "Event",
			EventPlural:    "Events",
			LeaderSingular: "Leader",
			LeaderPlural:   "Leaders",
		},
		Commands: CommandsConfig{
			EventCreate:     "event new",
			EventModify:     "event modify",
			EventConfirm:    "event confirm",
			EventUnconfirm:  "event unconfirm",
			EventWaitlist:   "event waitlist",
			EventInfo:       "event info",
			EventChangeHost: "event change host",
			GroupCreate:     "circle new",
			GroupJoin:       "circle join",
			GroupLeave:      "circle leave",
			GroupInfo:       "circle info",
			GroupModify:     "circle modify",
			ProfileUpdate:   "profile update",
			Help:            "help",
		},
		HTTP: HTTPConfig{
			Enabled: false,
			Addr:    ":8080",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "irlcord.log",
		},
	}
}

// Load reads the file at path (or at $IRLCORD_CONFIG when path is empty) over
// the defaults and applies environment overrides. With neither set, only
// defaults and the environment are used.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(PathEnv)
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("error parsing environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("error parsing config file %s: %w", path, err)
	}
	return nil
}

// Validate checks values that would otherwise fail later at startup.
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if c.General.DatabasePath == "" {
		return fmt.Errorf("general.database_path must not be empty")
	}
	return nil
}

// Location returns the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.General.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.General.Timezone, err)
	}
	return loc, nil
}

// LogLevel returns the configured slog level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.Logging.Level, err)
	}
	return level, nil
}

// IsAdmin reports whether userID is listed as a bot administrator.
func (c *Config) IsAdmin(userID string) bool {
	return slices.Contains(c.General.AdminUserIDs, userID)
}

// Terms converts the configured words for rendering.
func (t TerminologyConfig) Terms() present.Terminology {
	return present.Terminology{
		Group:   t.GroupSingular,
		Groups:  t.GroupPlural,
		Event:   t.EventSingular,
		Events:  t.EventPlural,
		Leader:  t.LeaderSingular,
		Leaders: t.LeaderPlural,
	}
}

// Phrases returns the trigger phrase for each command name.
func (c CommandsConfig) Phrases() map[string]string {
	return map[string]string{
		"event_create":      c.EventCreate,
		"event_modify":      c.EventModify,
		"event_confirm":     c.EventConfirm,
		"event_unconfirm":   c.EventUnconfirm,
		"event_waitlist":    c.EventWaitlist,
		"event_info":        c.EventInfo,
		"event_change_host": c.EventChangeHost,
		"group_create":      c.GroupCreate,
		"group_join":        c.GroupJoin,
		"group_leave":       c.GroupLeave,
		"group_info":        c.GroupInfo,
		"group_modify":      c.GroupModify,
		"profile_update":    c.ProfileUpdate,
		"help":              c.Help,
	}
}
