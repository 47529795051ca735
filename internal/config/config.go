package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/kalambet/slaymom/internal/broadcast"
)

// Secret store coordinates.
const (
	secretService       = "slaymom"
	discordTokenAccount = "discord_token"
	apiTokenAccount     = "api_token"
)

type Config struct {
	Discord     DiscordConfig
	Bot         BotConfig
	Affirmation AffirmationConfig
	Storage     StorageConfig
	Server      ServerConfig
	Log         LogConfig
	MCP         MCPConfig
	Flow        FlowConfig
}

type DiscordConfig struct {
	Token string
}

type BotConfig struct {
	Prefix string
}

type AffirmationConfig struct {
	ChannelID string
	Time      string // HH:MM, local time
}

type StorageConfig struct {
	DataDir string
}

type ServerConfig struct {
	Port int
}

type LogConfig struct {
	Level string
}

type MCPConfig struct {
	Stdio bool
}

type FlowConfig struct {
	ConfirmTimeout time.Duration
	VentTimeout    time.Duration
	VentReplyDelay time.Duration
}

func defaults() Config {
	return Config{
		Bot:         BotConfig{Prefix: "!"},
		Affirmation: AffirmationConfig{Time: broadcast.DefaultTime.String()},
		Storage:     StorageConfig{DataDir: defaultDataDir()},
		Server:      ServerConfig{Port: 4100},
		Log:         LogConfig{Level: "info"},
		Flow: FlowConfig{
			ConfirmTimeout: 30 * time.Second,
			VentTimeout:    10 * time.Minute,
			VentReplyDelay: 2 * time.Second,
		},
	}
}

// Load reads configuration from the platform-native backend, environment
// variables, and platform secret store.
//
// A .env file in the working directory is loaded first; it never
// overrides variables already set in the environment.
//
// On macOS the backend is UserDefaults (domain: com.slaymom.bot) and
// secrets fall back to the macOS Keychain. On Linux the backend is a JSON
// file at $XDG_CONFIG_HOME/slaymom/config.json and secrets fall back to
// $XDG_DATA_HOME/slaymom/secrets.json.
//
// Load does not require the Discord token; Validate does.
func Load() (Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return Config{}, err
	}
	return loadWith(newPlatformBackend(), NewKeychain())
}

func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("reading %s: %w", path, err)
}

// Keychain abstracts the platform secret store.
type Keychain interface {
	Get(service, account string) (string, error)
	Set(service, account, value string) error
}

func loadWith(b Backend, kc Keychain) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	if cfg.Discord.Token == "" {
		if tok, err := kc.Get(secretService, discordTokenAccount); err == nil && tok != "" {
			cfg.Discord.Token = tok
		}
	}

	return cfg, nil
}

// Validate reports settings the bot cannot run with.
func (c Config) Validate() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("missing required config: Discord bot token. "+
			"Set it via environment variable DISCORD_TOKEN (a .env file works too)%s", tokenHint())
	}
	if strings.TrimSpace(c.Bot.Prefix) == "" {
		return errors.New("bot.prefix must not be empty")
	}
	if _, err := broadcast.ParseTimeOfDay(c.Affirmation.Time); err != nil {
		return fmt.Errorf("affirmation.time: %w", err)
	}
	for name, d := range map[string]time.Duration{
		"flow.confirm_timeout": c.Flow.ConfirmTimeout,
		"flow.vent_timeout":    c.Flow.VentTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	return nil
}

// platformKeychain reads and writes the platform secret store.
type platformKeychain struct{}

// NewKeychain returns the platform secret store.
func NewKeychain() Keychain { return platformKeychain{} }

func (platformKeychain) Get(service, account string) (string, error) {
	out, err := keychainGet(service, account)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func (platformKeychain) Set(service, account, value string) error {
	return keychainSet(service, account, value)
}
